package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/dailyschedule/internal/apperr"
)

const sessionColumns = `id, uid, tracking_id, category_id, category_name, title, description,
	start_time, end_time, status, duration, notes, tags, created_at, updated_at`

// StartSession inserts a session in the active state. It fails with
// ErrActiveSessionExists if the user already has an active session.
func (s *Store) StartSession(ctx context.Context, ts TimeSession) (*TimeSession, error) {
	if ts.ID == "" {
		ts.ID = uuid.NewString()
	}
	if ts.TrackingID == "" {
		ts.TrackingID = "track_" + ts.ID
	}
	if ts.StartTime.IsZero() {
		ts.StartTime = s.now()
	}
	tags, err := json.Marshal(nonNilTags(ts.Tags))
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	now := s.stamp()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO time_sessions (id, uid, tracking_id, category_id, category_name, title, description,
			start_time, status, notes, tags, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'active', ?, ?, ?, ?)`,
		ts.ID, ts.UID, ts.TrackingID, ts.CategoryID, ts.CategoryName, ts.Title, ts.Description,
		formatTime(ts.StartTime), ts.Notes, string(tags), now, now,
	)
	if isUniqueViolation(err) {
		return nil, ErrActiveSessionExists
	}
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return s.GetSession(ctx, ts.UID, ts.ID)
}

// CompleteSession stops an active session at end. The duration is always
// derived from the stored start time and never negative. The owning
// category's running totals are updated in the same transaction.
func (s *Store) CompleteSession(ctx context.Context, uid, id string, end time.Time) (*TimeSession, error) {
	end = end.UTC().Truncate(time.Millisecond)

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var startStr, status, categoryID string
		err := tx.QueryRowContext(ctx,
			`SELECT start_time, status, category_id FROM time_sessions WHERE uid = ? AND id = ?`, uid, id,
		).Scan(&startStr, &status, &categoryID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("session", id)
		}
		if err != nil {
			return fmt.Errorf("get session start: %w", err)
		}
		if SessionStatus(status) == StatusCompleted {
			return apperr.Invalid("status", "session %s is already completed", id)
		}

		duration := end.Sub(parseTime(startStr)).Milliseconds()
		if duration < 0 {
			duration = 0
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE time_sessions SET end_time = ?, status = 'completed', duration = ?, updated_at = ?
			 WHERE uid = ? AND id = ?`,
			formatTime(end), duration, s.stamp(), uid, id,
		); err != nil {
			return fmt.Errorf("stop session: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE categories SET total_time_spent = total_time_spent + ?, total_sessions = total_sessions + 1
			 WHERE uid = ? AND id = ?`,
			duration, uid, categoryID,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetSession(ctx, uid, id)
}

func (s *Store) GetSession(ctx context.Context, uid, id string) (*TimeSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM time_sessions WHERE uid = ? AND id = ?`, uid, id)
	ts, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("session", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return ts, nil
}

// ActiveSessions returns the user's active sessions, newest first. Outside
// of imported data there is at most one.
func (s *Store) ActiveSessions(ctx context.Context, uid string) ([]TimeSession, error) {
	return s.ListSessions(ctx, uid, SessionFilter{Status: StatusActive})
}

// ListSessions returns sessions matching f, newest first.
func (s *Store) ListSessions(ctx context.Context, uid string, f SessionFilter) ([]TimeSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM time_sessions WHERE uid = ?`
	args := []any{uid}

	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	if f.CategoryID != "" {
		query += ` AND category_id = ?`
		args = append(args, f.CategoryID)
	}
	if f.From != nil {
		query += ` AND start_time >= ?`
		args = append(args, formatTime(*f.From))
	}
	if f.To != nil {
		query += ` AND start_time < ?`
		args = append(args, formatTime(*f.To))
	}
	query += ` ORDER BY start_time DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []TimeSession
	for rows.Next() {
		ts, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *ts)
	}
	return sessions, rows.Err()
}

// UpdateSessionNotes changes the notes of a session. Notes and tags are the
// only fields that may change after completion.
func (s *Store) UpdateSessionNotes(ctx context.Context, uid, id, notes string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE time_sessions SET notes = ?, updated_at = ? WHERE uid = ? AND id = ?`,
		notes, s.stamp(), uid, id,
	)
	if err != nil {
		return fmt.Errorf("update session notes: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("session", id)
	}
	return nil
}

func (s *Store) UpdateSessionTags(ctx context.Context, uid, id string, tags []string) error {
	data, err := json.Marshal(nonNilTags(tags))
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE time_sessions SET tags = ?, updated_at = ? WHERE uid = ? AND id = ?`,
		string(data), s.stamp(), uid, id,
	)
	if err != nil {
		return fmt.Errorf("update session tags: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("session", id)
	}
	return nil
}

// TrackedBetween sums completed session durations (ms) that started in
// [from, to).
func (s *Store) TrackedBetween(ctx context.Context, uid string, from, to time.Time) (int64, error) {
	var total sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(duration), 0)
		FROM time_sessions
		WHERE uid = ? AND status = 'completed'
		  AND start_time >= ? AND start_time < ?`,
		uid, formatTime(from), formatTime(to),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("tracked total: %w", err)
	}
	return total.Int64, nil
}

func scanSession(r rowScanner) (*TimeSession, error) {
	ts := &TimeSession{}
	var startTime, status, tags, createdAt, updatedAt string
	var endTime sql.NullString
	var duration sql.NullInt64
	err := r.Scan(&ts.ID, &ts.UID, &ts.TrackingID, &ts.CategoryID, &ts.CategoryName, &ts.Title,
		&ts.Description, &startTime, &endTime, &status, &duration, &ts.Notes, &tags, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	ts.StartTime = parseTime(startTime)
	if endTime.Valid {
		t := parseTime(endTime.String)
		ts.EndTime = &t
	}
	ts.Status = SessionStatus(status)
	if duration.Valid {
		d := duration.Int64
		ts.Duration = &d
	}
	if err := json.Unmarshal([]byte(tags), &ts.Tags); err != nil {
		ts.Tags = nil
	}
	ts.CreatedAt = parseTime(createdAt)
	ts.UpdatedAt = parseTime(updatedAt)
	return ts, nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sadopc/dailyschedule/internal/apperr"
)

const scheduleColumns = `id, uid, schedule_key, category_id, category_name, title, description,
	start_time, end_time, days_of_week, is_recurring, is_active, priority, estimated_duration,
	created_at, updated_at`

func (s *Store) InsertSchedule(ctx context.Context, sc Schedule) (*Schedule, error) {
	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	if sc.Key == "" {
		sc.Key = "sch_" + sc.ID
	}
	now := s.stamp()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO schedules (id, uid, schedule_key, category_id, category_name, title, description,
			start_time, end_time, days_of_week, is_recurring, is_active, priority, estimated_duration,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sc.ID, sc.UID, sc.Key, sc.CategoryID, sc.CategoryName, sc.Title, sc.Description,
		sc.StartTime, sc.EndTime, joinDays(sc.Days), boolInt(sc.Recurring), boolInt(sc.Active),
		int(sc.Priority), sc.EstimatedDuration, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert schedule: %w", err)
	}
	return s.GetSchedule(ctx, sc.UID, sc.ID)
}

func (s *Store) GetSchedule(ctx context.Context, uid, id string) (*Schedule, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE uid = ? AND id = ?`, uid, id)
	sc, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("schedule", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule %s: %w", id, err)
	}
	return sc, nil
}

// ListSchedules returns the user's schedules ordered by start time.
func (s *Store) ListSchedules(ctx context.Context, uid string, activeOnly bool) ([]Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE uid = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY start_time, title`

	rows, err := s.db.QueryContext(ctx, query, uid)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []Schedule
	for rows.Next() {
		sc, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *sc)
	}
	return schedules, rows.Err()
}

func (s *Store) UpdateSchedule(ctx context.Context, sc Schedule) (*Schedule, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE schedules SET category_id = ?, category_name = ?, title = ?, description = ?,
			start_time = ?, end_time = ?, days_of_week = ?, is_recurring = ?, is_active = ?,
			priority = ?, estimated_duration = ?, updated_at = ?
		 WHERE uid = ? AND id = ?`,
		sc.CategoryID, sc.CategoryName, sc.Title, sc.Description, sc.StartTime, sc.EndTime,
		joinDays(sc.Days), boolInt(sc.Recurring), boolInt(sc.Active), int(sc.Priority),
		sc.EstimatedDuration, s.stamp(), sc.UID, sc.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update schedule %s: %w", sc.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.NotFound("schedule", sc.ID)
	}
	return s.GetSchedule(ctx, sc.UID, sc.ID)
}

// SetScheduleActive changes only the active flag.
func (s *Store) SetScheduleActive(ctx context.Context, uid, id string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE schedules SET is_active = ?, updated_at = ? WHERE uid = ? AND id = ?`,
		boolInt(active), s.stamp(), uid, id,
	)
	if err != nil {
		return fmt.Errorf("set schedule active %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("schedule", id)
	}
	return nil
}

func (s *Store) DeleteSchedule(ctx context.Context, uid, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM schedules WHERE uid = ? AND id = ?`, uid, id)
	if err != nil {
		return fmt.Errorf("delete schedule %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("schedule", id)
	}
	return nil
}

func scanSchedule(r rowScanner) (*Schedule, error) {
	sc := &Schedule{}
	var days, createdAt, updatedAt string
	var recurring, active, priority int
	err := r.Scan(&sc.ID, &sc.UID, &sc.Key, &sc.CategoryID, &sc.CategoryName, &sc.Title, &sc.Description,
		&sc.StartTime, &sc.EndTime, &days, &recurring, &active, &priority, &sc.EstimatedDuration,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	sc.Days = splitDays(days)
	sc.Recurring = recurring == 1
	sc.Active = active == 1
	sc.Priority = Priority(priority)
	sc.CreatedAt = parseTime(createdAt)
	sc.UpdatedAt = parseTime(updatedAt)
	return sc, nil
}

func joinDays(days []int) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

func splitDays(v string) []int {
	if v == "" {
		return nil
	}
	var days []int
	for _, p := range strings.Split(v, ",") {
		if d, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
			days = append(days, d)
		}
	}
	return days
}

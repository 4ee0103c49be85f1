package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sadopc/dailyschedule/internal/apperr"
)

const categoryColumns = `id, uid, category_key, name, description, color, icon, kind, parent_key,
	is_active, total_time_spent, total_sessions, created_at, updated_at`

// InsertCategory stores a new category. An empty ID is replaced with a fresh
// one; totals always start at zero.
func (s *Store) InsertCategory(ctx context.Context, c Category) (*Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := s.stamp()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, uid, category_key, name, description, color, icon, kind, parent_key,
			is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UID, c.Key, c.Name, c.Description, c.Color, c.Icon, string(c.Kind), c.ParentKey,
		boolInt(c.Active), now, now,
	)
	if isUniqueViolation(err) {
		return nil, apperr.Invalid("name", "a category named %q already exists here", c.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return s.GetCategory(ctx, c.UID, c.ID)
}

// EnsureCategory inserts c unless a category with the same key already
// exists for the user, and returns the persisted record either way.
// Concurrent callers never produce two rows for one key.
func (s *Store) EnsureCategory(ctx context.Context, c Category) (*Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := s.stamp()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, uid, category_key, name, description, color, icon, kind, parent_key,
			is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(uid, category_key) DO NOTHING`,
		c.ID, c.UID, c.Key, c.Name, c.Description, c.Color, c.Icon, string(c.Kind), c.ParentKey,
		boolInt(c.Active), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("ensure category %q: %w", c.Key, err)
	}
	return s.GetCategoryByKey(ctx, c.UID, c.Key)
}

func (s *Store) GetCategory(ctx context.Context, uid, id string) (*Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE uid = ? AND id = ?`, uid, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("category", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get category %s: %w", id, err)
	}
	return c, nil
}

func (s *Store) GetCategoryByKey(ctx context.Context, uid, key string) (*Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE uid = ? AND category_key = ?`, uid, key)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("category", key)
	}
	if err != nil {
		return nil, fmt.Errorf("get category by key %s: %w", key, err)
	}
	return c, nil
}

// ListCategories returns the user's categories ordered by creation time.
func (s *Store) ListCategories(ctx context.Context, uid string, activeOnly bool) ([]Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE uid = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY created_at, name`

	rows, err := s.db.QueryContext(ctx, query, uid)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

// UpdateCategory overwrites the editable fields of an existing category.
func (s *Store) UpdateCategory(ctx context.Context, c Category) (*Category, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, description = ?, color = ?, icon = ?, parent_key = ?,
			is_active = ?, updated_at = ?
		 WHERE uid = ? AND id = ?`,
		c.Name, c.Description, c.Color, c.Icon, c.ParentKey, boolInt(c.Active), s.stamp(), c.UID, c.ID,
	)
	if isUniqueViolation(err) {
		return nil, apperr.Invalid("name", "a category named %q already exists here", c.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("update category %s: %w", c.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.NotFound("category", c.ID)
	}
	return s.GetCategory(ctx, c.UID, c.ID)
}

// DeleteCategory removes a category. Sessions recorded against it are kept.
func (s *Store) DeleteCategory(ctx context.Context, uid, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE uid = ? AND id = ?`, uid, id)
	if err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("category", id)
	}
	return nil
}

func scanCategory(r rowScanner) (*Category, error) {
	c := &Category{}
	var kind, createdAt, updatedAt string
	var parent sql.NullString
	var active int
	err := r.Scan(&c.ID, &c.UID, &c.Key, &c.Name, &c.Description, &c.Color, &c.Icon, &kind, &parent,
		&active, &c.TotalTimeSpent, &c.TotalSessions, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.Kind = CategoryKind(kind)
	if parent.Valid {
		p := parent.String
		c.ParentKey = &p
	}
	c.Active = active == 1
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return c, nil
}

package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	bolt "go.etcd.io/bbolt"

	"github.com/sadopc/dailyschedule/internal/store"
)

// SyncSource is the primary store the mirror copies from.
type SyncSource interface {
	ListCategories(ctx context.Context, uid string, activeOnly bool) ([]store.Category, error)
	ListSchedules(ctx context.Context, uid string, activeOnly bool) ([]store.Schedule, error)
	ListSessions(ctx context.Context, uid string, f store.SessionFilter) ([]store.TimeSession, error)
}

// Sync replaces the mirror with the user's current data from src in one
// transaction and returns the resulting collection sizes.
func (c *Client) Sync(ctx context.Context, src SyncSource, uid string) (map[Collection]Size, error) {
	categories, err := src.ListCategories(ctx, uid, false)
	if err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}
	schedules, err := src.ListSchedules(ctx, uid, false)
	if err != nil {
		return nil, fmt.Errorf("read schedules: %w", err)
	}
	sessions, err := src.ListSessions(ctx, uid, store.SessionFilter{})
	if err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}

	err = c.db.Update(func(tx *bolt.Tx) error {
		if err := clearTx(tx); err != nil {
			return err
		}
		for _, cat := range categories {
			if err := putJSON(tx, Categories, cat.ID, cat); err != nil {
				return err
			}
		}
		for _, sc := range schedules {
			if err := putJSON(tx, Schedules, sc.ID, sc); err != nil {
				return err
			}
		}
		for _, ts := range sessions {
			if err := putJSON(tx, Sessions, ts.ID, ts); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.Stats()
}

func putJSON(tx *bolt.Tx, col Collection, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", col, id, err)
	}
	return tx.Bucket([]byte(col)).Put([]byte(id), data)
}

func decodeAll[T any](c *Client, col Collection) ([]T, error) {
	var out []T
	err := c.db.View(func(tx *bolt.Tx) error {
		b, err := bucket(tx, col)
		if err != nil {
			return err
		}
		return b.ForEach(func(k, v []byte) error {
			var item T
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("decode %s %s: %w", col, k, err)
			}
			out = append(out, item)
			return nil
		})
	})
	return out, err
}

// ListCategories reads the user's mirrored categories in creation order.
func (c *Client) ListCategories(_ context.Context, uid string, activeOnly bool) ([]store.Category, error) {
	all, err := decodeAll[store.Category](c, Categories)
	if err != nil {
		return nil, err
	}
	var out []store.Category
	for _, cat := range all {
		if cat.UID == uid && (!activeOnly || cat.Active) {
			out = append(out, cat)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ListSchedules reads the user's mirrored schedules ordered by start time.
func (c *Client) ListSchedules(_ context.Context, uid string, activeOnly bool) ([]store.Schedule, error) {
	all, err := decodeAll[store.Schedule](c, Schedules)
	if err != nil {
		return nil, err
	}
	var out []store.Schedule
	for _, sc := range all {
		if sc.UID == uid && (!activeOnly || sc.Active) {
			out = append(out, sc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

// ListSessions applies f to the user's mirrored sessions, newest first.
func (c *Client) ListSessions(_ context.Context, uid string, f store.SessionFilter) ([]store.TimeSession, error) {
	all, err := decodeAll[store.TimeSession](c, Sessions)
	if err != nil {
		return nil, err
	}
	var out []store.TimeSession
	for _, ts := range all {
		if ts.UID != uid {
			continue
		}
		if f.Status != "" && ts.Status != f.Status {
			continue
		}
		if f.CategoryID != "" && ts.CategoryID != f.CategoryID {
			continue
		}
		if f.From != nil && ts.StartTime.Before(*f.From) {
			continue
		}
		if f.To != nil && !ts.StartTime.Before(*f.To) {
			continue
		}
		out = append(out, ts)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

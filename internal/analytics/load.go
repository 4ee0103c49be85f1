package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/sadopc/dailyschedule/internal/apperr"
	"github.com/sadopc/dailyschedule/internal/store"
)

// Source is where Load reads sessions and categories from. Both the SQLite
// store and the offline mirror satisfy it.
type Source interface {
	ListSessions(ctx context.Context, uid string, f store.SessionFilter) ([]store.TimeSession, error)
	ListCategories(ctx context.Context, uid string, activeOnly bool) ([]store.Category, error)
}

// Report is a breakdown together with its per-day series.
type Report struct {
	Breakdown
	Days []DayTotal
}

// Load fetches the user's data for the range and computes its breakdown.
// If either fetch fails the engine is not run and a single
// *apperr.PersistenceError carrying every fetch failure is returned.
func Load(ctx context.Context, src Source, uid string, kind RangeKind, now time.Time) (Breakdown, error) {
	r, err := LoadReport(ctx, src, uid, kind, now)
	return r.Breakdown, err
}

// LoadReport is Load plus the daily series, both computed from one fetch.
func LoadReport(ctx context.Context, src Source, uid string, kind RangeKind, now time.Time) (Report, error) {
	start, end := RangeFor(kind, now)

	sessions, sessErr := src.ListSessions(ctx, uid, store.SessionFilter{
		Status: store.StatusCompleted,
		From:   &start,
		To:     &end,
	})
	categories, catErr := src.ListCategories(ctx, uid, true)
	if err := errors.Join(sessErr, catErr); err != nil {
		return Report{}, &apperr.PersistenceError{Op: "load analytics", Err: err}
	}
	return Report{
		Breakdown: ComputeBreakdown(sessions, categories, start, end),
		Days:      Daily(sessions, start, end),
	}, nil
}

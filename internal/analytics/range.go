package analytics

import (
	"context"
	"strings"
	"time"

	"github.com/sadopc/dailyschedule/internal/apperr"
)

type RangeKind string

const (
	RangeWeek  RangeKind = "week"
	RangeMonth RangeKind = "month"
	RangeYear  RangeKind = "year"
)

var Ranges = []RangeKind{RangeWeek, RangeMonth, RangeYear}

// ParseRange accepts "week", "month" or "year" in any case.
func ParseRange(s string) (RangeKind, error) {
	k := RangeKind(strings.ToLower(strings.TrimSpace(s)))
	for _, r := range Ranges {
		if k == r {
			return k, nil
		}
	}
	return "", apperr.Invalid("range", "unknown range %q, want week, month or year", s)
}

// RangeSetting is the stored preference naming the default range.
const RangeSetting = "analytics_range"

type SettingReader interface {
	GetSetting(ctx context.Context, key string) (string, error)
}

// PreferredRange returns the stored range preference, or fallback when it
// is unset or not a known range.
func PreferredRange(ctx context.Context, s SettingReader, fallback RangeKind) RangeKind {
	v, err := s.GetSetting(ctx, RangeSetting)
	if err != nil {
		return fallback
	}
	k, err := ParseRange(v)
	if err != nil {
		return fallback
	}
	return k
}

// Next cycles week → month → year → week.
func (k RangeKind) Next() RangeKind {
	for i, r := range Ranges {
		if r == k {
			return Ranges[(i+1)%len(Ranges)]
		}
	}
	return RangeWeek
}

// Label returns a short human-readable description of the range.
func (k RangeKind) Label() string {
	switch k {
	case RangeMonth:
		return "This month"
	case RangeYear:
		return "This year"
	}
	return "Last 7 days"
}

// RangeFor returns [start, end) for kind relative to now: week is the last
// seven days, month and year start at the first of the current month or
// year in now's location. Unknown kinds fall back to week.
func RangeFor(kind RangeKind, now time.Time) (time.Time, time.Time) {
	switch kind {
	case RangeMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), now
	case RangeYear:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), now
	}
	return now.Add(-7 * 24 * time.Hour), now
}

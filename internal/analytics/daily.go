package analytics

import (
	"time"

	"github.com/sadopc/dailyschedule/internal/store"
)

type DayTotal struct {
	Date    time.Time
	Minutes float64
}

// Daily buckets completed session time by the calendar day the session
// started on, one entry per day from from through to, in from's location.
func Daily(sessions []store.TimeSession, from, to time.Time) []DayTotal {
	loc := from.Location()
	first := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	to = to.In(loc)
	last := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, loc)

	var days []DayTotal
	index := make(map[string]int)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		index[d.Format(time.DateOnly)] = len(days)
		days = append(days, DayTotal{Date: d})
	}

	for _, s := range sessions {
		if !s.Completed() || s.Duration == nil || *s.Duration <= 0 {
			continue
		}
		key := s.StartTime.In(loc).Format(time.DateOnly)
		if i, ok := index[key]; ok {
			days[i].Minutes += float64(*s.Duration) / 60000
		}
	}
	return days
}

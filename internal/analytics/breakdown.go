// Package analytics aggregates completed time sessions into a per-category
// breakdown over a time range.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sadopc/dailyschedule/internal/category"
	"github.com/sadopc/dailyschedule/internal/store"
)

// SubTotal is the accumulated time of one sub-category.
type SubTotal struct {
	Category store.Category
	Minutes  float64
	Sessions int
	Percent  int
}

// MainTotal is the accumulated time of one main category, including the
// time of all its sub-categories.
type MainTotal struct {
	Category store.Category
	Minutes  float64
	Sessions int
	Percent  int
	Subs     []SubTotal
}

// Breakdown is the result of one aggregation pass. Main holds every
// resolved main category, including those with no time; use Visible for
// display.
type Breakdown struct {
	Start         time.Time
	End           time.Time
	TotalMinutes  float64
	TotalSessions int
	// Time from sessions whose category no longer resolves. It is part of
	// the totals but of no category bucket.
	UnattributedMinutes  float64
	UnattributedSessions int
	Main                 []MainTotal
}

// ComputeBreakdown groups the completed sessions that started in
// [start, end) by category. Percentages are math.Round(100*part/total)
// against the overall total, for mains and subs alike. Sessions without a
// positive duration are ignored.
func ComputeBreakdown(sessions []store.TimeSession, categories []store.Category, start, end time.Time) Breakdown {
	b := Breakdown{Start: start, End: end}

	mains := category.Mains("", categories)
	b.Main = make([]MainTotal, len(mains))
	mainIdx := make(map[string]int, len(mains))
	byID := make(map[string]int, len(mains))
	for i, m := range mains {
		b.Main[i] = MainTotal{Category: m}
		mainIdx[m.Key] = i
		byID[m.ID] = i
	}

	type subRef struct{ main, sub int }
	subIdx := make(map[string]subRef)
	for _, c := range categories {
		if c.Kind != store.KindSub || !c.Active {
			continue
		}
		mi, ok := mainIdx[c.Parent()]
		if !ok {
			continue
		}
		subIdx[c.ID] = subRef{mi, len(b.Main[mi].Subs)}
		b.Main[mi].Subs = append(b.Main[mi].Subs, SubTotal{Category: c})
	}

	for _, s := range sessions {
		if !s.Completed() || s.Duration == nil || *s.Duration <= 0 {
			continue
		}
		if s.StartTime.Before(start) || !s.StartTime.Before(end) {
			continue
		}
		minutes := float64(*s.Duration) / 60000
		b.TotalMinutes += minutes
		b.TotalSessions++

		if ref, ok := subIdx[s.CategoryID]; ok {
			m := &b.Main[ref.main]
			m.Minutes += minutes
			m.Sessions++
			m.Subs[ref.sub].Minutes += minutes
			m.Subs[ref.sub].Sessions++
			continue
		}
		if mi, ok := byID[s.CategoryID]; ok {
			b.Main[mi].Minutes += minutes
			b.Main[mi].Sessions++
			continue
		}
		b.UnattributedMinutes += minutes
		b.UnattributedSessions++
	}

	for i := range b.Main {
		m := &b.Main[i]
		m.Percent = Percent(m.Minutes, b.TotalMinutes)
		for j := range m.Subs {
			m.Subs[j].Percent = Percent(m.Subs[j].Minutes, b.TotalMinutes)
		}
		sort.SliceStable(m.Subs, func(x, y int) bool { return m.Subs[x].Minutes > m.Subs[y].Minutes })
	}
	sort.SliceStable(b.Main, func(x, y int) bool { return b.Main[x].Minutes > b.Main[y].Minutes })
	return b
}

// Percent returns part as a rounded share of total, or 0 if total is zero.
func Percent(part, total float64) int {
	if total <= 0 || part <= 0 {
		return 0
	}
	return int(math.Round(100 * part / total))
}

// Visible returns the main categories with tracked time, each holding only
// the sub-categories with tracked time.
func (b Breakdown) Visible() []MainTotal {
	var out []MainTotal
	for _, m := range b.Main {
		if m.Minutes <= 0 {
			continue
		}
		subs := make([]SubTotal, 0, len(m.Subs))
		for _, s := range m.Subs {
			if s.Minutes > 0 {
				subs = append(subs, s)
			}
		}
		m.Subs = subs
		out = append(out, m)
	}
	return out
}

// FormatMinutes renders a minute count as "45m" or "2h 5m".
func FormatMinutes(minutes float64) string {
	total := int(math.Round(minutes))
	if total < 60 {
		return fmt.Sprintf("%dm", total)
	}
	return fmt.Sprintf("%dh %dm", total/60, total%60)
}

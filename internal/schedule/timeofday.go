package schedule

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time without a date, in minutes after
// midnight.
type TimeOfDay int

// ParseTimeOfDay parses a 24-hour "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil || len(s) != 5 {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Kitchen formats the time on a 12-hour clock, e.g. "9:05 AM".
func (t TimeOfDay) Kitchen() string {
	return time.Date(2000, 1, 1, t.Hour(), t.Minute(), 0, 0, time.UTC).Format(time.Kitchen)
}

// On returns the instant at this time of day on the date of d, in d's
// location.
func (t TimeOfDay) On(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, t.Hour(), t.Minute(), 0, 0, d.Location())
}

// Span returns end minus start on a common date, or zero if end is not
// after start. Schedules never wrap past midnight.
func Span(start, end TimeOfDay) time.Duration {
	if end <= start {
		return 0
	}
	return time.Duration(end-start) * time.Minute
}

// Weekday maps t to an ISO weekday, 1 = Monday through 7 = Sunday.
func Weekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

var dayNames = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// DayName returns the short name of an ISO weekday.
func DayName(d int) string {
	if d < 1 || d > 7 {
		return "?"
	}
	return dayNames[d-1]
}

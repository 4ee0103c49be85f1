package schedule

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in   string
		want TimeOfDay
		ok   bool
	}{
		{"00:00", 0, true},
		{"09:05", 9*60 + 5, true},
		{"23:59", 23*60 + 59, true},
		{"9:05", 0, false},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"", 0, false},
		{"noon", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.in)
		if tt.ok && err != nil {
			t.Errorf("ParseTimeOfDay(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if !tt.ok {
			if err == nil {
				t.Errorf("ParseTimeOfDay(%q) expected error", tt.in)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimeOfDay(%q) = %d, want %d", tt.in, got, tt.want)
		}
		if got.String() != tt.in {
			t.Errorf("String() = %q, want %q", got.String(), tt.in)
		}
	}
}

func TestSpan(t *testing.T) {
	nine, _ := ParseTimeOfDay("09:00")
	eight, _ := ParseTimeOfDay("08:00")
	half, _ := ParseTimeOfDay("10:30")

	if d := Span(nine, half); d != 90*time.Minute {
		t.Errorf("Span(09:00, 10:30) = %v", d)
	}
	if d := Span(nine, eight); d != 0 {
		t.Errorf("Span(09:00, 08:00) = %v, want 0", d)
	}
	if d := Span(nine, nine); d != 0 {
		t.Errorf("Span(09:00, 09:00) = %v, want 0", d)
	}
}

func TestWeekday(t *testing.T) {
	// 2026-03-02 is a Monday.
	monday := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		if got := Weekday(monday.AddDate(0, 0, i)); got != i+1 {
			t.Errorf("day %d: Weekday = %d, want %d", i, got, i+1)
		}
	}
}

func TestKitchenAndOn(t *testing.T) {
	tod, _ := ParseTimeOfDay("14:05")
	if tod.Kitchen() != "2:05PM" {
		t.Errorf("Kitchen() = %q", tod.Kitchen())
	}
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	at := tod.On(day)
	if at.Hour() != 14 || at.Minute() != 5 || at.Day() != 2 {
		t.Errorf("On() = %v", at)
	}
}

func TestDayName(t *testing.T) {
	if DayName(1) != "Mon" || DayName(7) != "Sun" || DayName(9) != "?" {
		t.Error("unexpected day names")
	}
}

package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/dailyschedule/internal/category"
	"github.com/sadopc/dailyschedule/internal/config"
	"github.com/sadopc/dailyschedule/internal/schedule"
	"github.com/sadopc/dailyschedule/internal/store"
	"github.com/sadopc/dailyschedule/internal/tracker"
)

// Services is everything the views read from and write to.
type Services struct {
	UID        string
	Store      *store.Store
	Categories *category.Service
	Schedules  *schedule.Service
	Tracker    *tracker.Controller
	Config     *config.Config
	Log        *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

func (s Services) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewCategories
	viewSchedules
	viewTracker
	viewAnalytics
	viewSettings
)

var viewNames = []string{"Dashboard", "Categories", "Schedules", "Tracker", "Analytics", "Settings"}

func (v viewState) String() string { return viewNames[v] }

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
	op      string
	err     error
}

type tickMsg time.Time

type snapshotMsg tracker.Snapshot

// dataChangedMsg tells every loaded view that stored data changed.
type dataChangedMsg struct {
	status string
}

// --- Helpers ---

func infoStatus(format string, args ...any) tea.Msg {
	return statusMsg{text: fmt.Sprintf(format, args...)}
}

// changed reports a successful write and makes every view reload.
func changed(format string, args ...any) tea.Msg {
	return dataChangedMsg{status: fmt.Sprintf(format, args...)}
}

// failed reports err in the footer. The app also logs it under op.
func failed(op string, err error) tea.Msg {
	return statusMsg{text: fmt.Sprintf("%s: %v", op, err), isError: true, op: op, err: err}
}

// confirmDeletes reports whether deletes ask first. Unreadable settings
// fall back to asking.
func confirmDeletes(svc Services) bool {
	v, err := svc.Store.GetSetting(context.Background(), "confirm_delete")
	if err != nil {
		return true
	}
	return v != "false"
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatMillis(ms *int64) string {
	if ms == nil {
		return formatDuration(0)
	}
	return formatDuration(time.Duration(*ms) * time.Millisecond)
}

// clockLayout returns the time layout for the clock_format setting.
func clockLayout(format string) string {
	if format == "24h" {
		return "15:04"
	}
	return time.Kitchen
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns midnight of the first day of t's week. weekStart is
// "monday" or "sunday".
func startOfWeek(t time.Time, weekStart string) time.Time {
	day := startOfDay(t)
	offset := int(day.Weekday())
	if weekStart != "sunday" {
		offset = (offset + 6) % 7
	}
	return day.AddDate(0, 0, -offset)
}

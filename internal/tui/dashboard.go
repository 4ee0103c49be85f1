package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/dailyschedule/internal/analytics"
	"github.com/sadopc/dailyschedule/internal/category"
	"github.com/sadopc/dailyschedule/internal/schedule"
	"github.com/sadopc/dailyschedule/internal/store"
	"github.com/sadopc/dailyschedule/internal/tracker"
)

type dashboardModel struct {
	svc    Services
	width  int
	height int
	now    time.Time

	today         []store.Schedule
	icons         map[string]string
	categoryCount int
	todayMinutes  float64
	weekMinutes   float64
	completed     int
	goalSecs      int
	clockFormat   string

	tracking tracker.Snapshot
	elapsed  time.Duration
	goal     progress.Model
}

func newDashboardModel(svc Services) dashboardModel {
	return dashboardModel{
		svc:         svc,
		now:         svc.now(),
		clockFormat: "12h",
		goal:        progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
	d.goal.Width = max(10, w-30)
}

type dashboardDataMsg struct {
	today         []store.Schedule
	icons         map[string]string
	categoryCount int
	todayMinutes  float64
	weekMinutes   float64
	completed     int
	goalSecs      int
	clockFormat   string
}

func (d dashboardModel) loadData() tea.Cmd {
	svc := d.svc
	return func() tea.Msg {
		ctx := context.Background()
		now := svc.now()

		today, err := svc.Schedules.Today(ctx, now)
		if err != nil {
			return failed("load today's schedules", err)
		}
		cats, err := svc.Categories.All(ctx)
		if err != nil {
			return failed("load categories", err)
		}

		weekStart, _ := svc.Store.GetSetting(ctx, "week_start")
		from := startOfWeek(now, weekStart)
		if day := startOfDay(now); day.Before(from) {
			from = day
		}
		sessions, err := svc.Store.ListSessions(ctx, svc.UID, store.SessionFilter{
			Status: store.StatusCompleted,
			From:   &from,
		})
		if err != nil {
			return failed("load sessions", err)
		}

		msg := dashboardDataMsg{
			today:         today,
			icons:         make(map[string]string, len(cats)),
			categoryCount: len(cats),
			goalSecs:      svc.Store.SettingInt(ctx, "daily_goal", 8*3600),
			clockFormat:   "12h",
		}
		for _, c := range cats {
			msg.icons[c.ID] = c.Icon
		}
		if v, err := svc.Store.GetSetting(ctx, "clock_format"); err == nil {
			msg.clockFormat = v
		}
		dayStart := startOfDay(now)
		todayMs, err := svc.Store.TrackedBetween(ctx, svc.UID, dayStart, dayStart.AddDate(0, 0, 1))
		if err != nil {
			return failed("load today total", err)
		}
		msg.todayMinutes = float64(todayMs) / 60000
		weekFrom := startOfWeek(now, weekStart)
		for _, day := range analytics.Daily(sessions, from, now) {
			if !day.Date.Before(weekFrom) {
				msg.weekMinutes += day.Minutes
			}
		}
		for _, s := range sessions {
			if !s.StartTime.Before(dayStart) {
				msg.completed++
			}
		}
		return msg
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.today = msg.today
		d.icons = msg.icons
		d.categoryCount = msg.categoryCount
		d.todayMinutes = msg.todayMinutes
		d.weekMinutes = msg.weekMinutes
		d.completed = msg.completed
		d.goalSecs = msg.goalSecs
		d.clockFormat = msg.clockFormat
		return d, nil

	case snapshotMsg:
		d.tracking = tracker.Snapshot(msg)
		return d, nil

	case tickMsg:
		d.now = time.Time(msg)
		d.elapsed = d.svc.Tracker.Elapsed(d.now)
		return d, nil

	case dataChangedMsg:
		return d, d.loadData()
	}
	return d, nil
}

// greeting follows the hour of t: morning before noon, afternoon before
// five, evening after.
func greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good Morning"
	case h < 17:
		return "Good Afternoon"
	}
	return "Good Evening"
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	w := d.width - 4

	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderWelcome(w),
		d.renderTracking(w),
		d.renderStats(w),
		d.renderToday(w),
	)
}

func (d dashboardModel) renderWelcome(w int) string {
	hello := titleStyle.Render(fmt.Sprintf("%s, %s!", greeting(d.now), d.svc.UID))
	clock := mutedStyle.Render("Current time: " + d.now.Format(clockLayout(d.clockFormat)))
	date := highlightStyle.Render(d.now.Format("Monday, Jan 2"))

	left := lipgloss.JoinVertical(lipgloss.Left, hello, clock)
	gap := max(1, w-6-lipgloss.Width(left)-lipgloss.Width(date))
	return panelStyle.Width(w).Render(
		lipgloss.JoinHorizontal(lipgloss.Top, left, strings.Repeat(" ", gap), date),
	)
}

func (d dashboardModel) renderTracking(w int) string {
	if d.tracking.Active == nil {
		content := lipgloss.JoinVertical(lipgloss.Center,
			timerStyle.Width(w-6).Render("00:00:00"),
			mutedStyle.Render("■  NOT TRACKING"),
			mutedStyle.Render("Press 4 to pick a category"),
		)
		return panelStyle.Width(w).Render(content)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		timerRunningStyle.Width(w-6).Render(formatDuration(d.elapsed)),
		successStyle.Render("●  TRACKING"),
		highlightStyle.Render(d.tracking.Active.CategoryName),
	)
	return activePanelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderStats(w int) string {
	stat := func(label, value string) string {
		return lipgloss.JoinVertical(lipgloss.Left,
			mutedStyle.Render(label),
			titleStyle.Render(value),
		)
	}
	cell := lipgloss.NewStyle().Width((w - 6) / 4)
	row := lipgloss.JoinHorizontal(lipgloss.Top,
		cell.Render(stat("Categories", strconv.Itoa(d.categoryCount))),
		cell.Render(stat("Today's Schedule", strconv.Itoa(len(d.today)))),
		cell.Render(stat("Completed", strconv.Itoa(d.completed))),
		cell.Render(stat("This week", analytics.FormatMinutes(d.weekMinutes))),
	)

	ratio := 0.0
	if d.goalSecs > 0 {
		ratio = min(1, d.todayMinutes*60/float64(d.goalSecs))
	}
	goal := fmt.Sprintf("%s  %s of %s",
		d.goal.ViewAs(ratio),
		analytics.FormatMinutes(d.todayMinutes),
		analytics.FormatMinutes(float64(d.goalSecs)/60),
	)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, row, "", goal))
}

func (d dashboardModel) renderToday(w int) string {
	title := titleStyle.Render("Today's Schedule")
	if len(d.today) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("Nothing scheduled today. Press 3 to add a schedule."),
		))
	}

	layout := clockLayout(d.clockFormat)
	nowTOD := schedule.TimeOfDay(d.now.Hour()*60 + d.now.Minute())

	rows := []string{title}
	for _, s := range d.today {
		start, _ := schedule.ParseTimeOfDay(s.StartTime)
		end, _ := schedule.ParseTimeOfDay(s.EndTime)
		when := fmt.Sprintf("%s - %s", start.On(d.now).Format(layout), end.On(d.now).Format(layout))

		marker := "  "
		style := normalItemStyle
		switch {
		case nowTOD >= start && nowTOD < end:
			marker = successStyle.Render("▶ ")
			style = selectedItemStyle
		case nowTOD >= end:
			style = mutedStyle
		}
		icon := category.Glyph(d.icons[s.CategoryID])
		rows = append(rows, marker+style.Render(fmt.Sprintf("%-19s %s %s", when, icon, s.Title))+
			mutedStyle.Render("  "+s.CategoryName))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

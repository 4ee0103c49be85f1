package tui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/dailyschedule/internal/analytics"
	"github.com/sadopc/dailyschedule/internal/store"
)

type settingsModel struct {
	svc    Services
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	dailyGoal      *string
	weekStart      *string
	clockFormat    *string
	analyticsRange *string
	recentLimit    *string
	confirmDelete  *bool
}

func newSettingsModel(svc Services) settingsModel {
	dg, ws, cf, ar, rl := "", "", "", "", ""
	cd := true
	return settingsModel{
		svc:            svc,
		dailyGoal:      &dg,
		weekStart:      &ws,
		clockFormat:    &cf,
		analyticsRange: &ar,
		recentLimit:    &rl,
		confirmDelete:  &cd,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) capturing() bool { return s.formActive }

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		settings, err := svc.Store.GetAllSettings(context.Background())
		if err != nil {
			return failed("load settings", err)
		}
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case dataChangedMsg:
		return s, s.refresh()
	}

	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, keys.Enter) || key.Matches(msg, keys.Edit) {
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.dailyGoal = secsToHours(s.getVal("daily_goal", "28800"))
	*s.weekStart = s.getVal("week_start", "monday")
	*s.clockFormat = s.getVal("clock_format", "12h")
	*s.analyticsRange = s.getVal("analytics_range", "week")
	*s.recentLimit = s.getVal("recent_limit", "10")
	*s.confirmDelete = s.getVal("confirm_delete", "true") != "false"

	rangeOpts := make([]huh.Option[string], len(analytics.Ranges))
	for i, k := range analytics.Ranges {
		rangeOpts[i] = huh.NewOption(k.Label(), string(k))
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Daily goal (hours)").Value(s.dailyGoal).Validate(positiveFloat),
			huh.NewSelect[string]().Title("Week starts on").
				Options(
					huh.NewOption("Monday", "monday"),
					huh.NewOption("Sunday", "sunday"),
				).Value(s.weekStart),
			huh.NewSelect[string]().Title("Clock").
				Options(
					huh.NewOption("12-hour", "12h"),
					huh.NewOption("24-hour", "24h"),
				).Value(s.clockFormat),
		).Title("General"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Default analytics range").Options(rangeOpts...).Value(s.analyticsRange),
			huh.NewInput().Title("Recent sessions shown").Value(s.recentLimit).Validate(positiveInt),
			huh.NewConfirm().Title("Confirm before deleting?").Value(s.confirmDelete),
		).Title("Views"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func positiveFloat(v string) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}

func positiveInt(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a whole number above zero")
	}
	return nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, s.saveCmd()
	}

	return s, cmd
}

func (s settingsModel) saveCmd() tea.Cmd {
	svc := s.svc
	values := map[string]string{
		"daily_goal":      hoursToSecs(*s.dailyGoal),
		"week_start":      *s.weekStart,
		"clock_format":    *s.clockFormat,
		"analytics_range": *s.analyticsRange,
		"recent_limit":    *s.recentLimit,
		"confirm_delete":  strconv.FormatBool(*s.confirmDelete),
	}
	return func() tea.Msg {
		ctx := context.Background()
		for k, v := range values {
			if err := svc.Store.SetSetting(ctx, k, v); err != nil {
				return failed("save settings", err)
			}
		}
		return changed("Settings saved")
	}
}

func (s settingsModel) getVal(k, fallback string) string {
	for _, setting := range s.settings {
		if setting.Key == k {
			return setting.Value
		}
	}
	return fallback
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	if cfg := s.svc.Config; cfg != nil {
		rows = append(rows, "", mutedStyle.Render("  Config file: "+cfg.File))
		rows = append(rows, mutedStyle.Render("  Database:    "+cfg.Database.Path))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case "daily_goal":
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%.1f hours", float64(secs)/3600)
		}
	case "analytics_range":
		if r, err := analytics.ParseRange(v); err == nil {
			return r.Label()
		}
	case "recent_limit":
		return v + " sessions"
	case "confirm_delete":
		if v == "false" {
			return "no"
		}
		return "yes"
	}
	return v
}

func secsToHours(s string) string {
	if secs, err := strconv.Atoi(s); err == nil {
		return strconv.FormatFloat(float64(secs)/3600, 'f', -1, 64)
	}
	return s
}

func hoursToSecs(s string) string {
	if hours, err := strconv.ParseFloat(s, 64); err == nil {
		return strconv.Itoa(int(hours * 3600))
	}
	return s
}

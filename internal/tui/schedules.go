package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/dailyschedule/internal/category"
	"github.com/sadopc/dailyschedule/internal/schedule"
	"github.com/sadopc/dailyschedule/internal/store"
)

// scheduleFields backs the schedule form. It is held by pointer so the
// bound values survive model copies.
type scheduleFields struct {
	categoryID  string
	title       string
	description string
	start       string
	end         string
	days        []int
	recurring   bool
	priority    int
}

type schedulesModel struct {
	svc    Services
	width  int
	height int

	schedules  []store.Schedule
	categories []store.Category
	cursor     int

	formActive bool
	form       *huh.Form
	editingID  string
	fields     *scheduleFields

	confirming    bool
	confirmTarget store.Schedule
}

func newSchedulesModel(svc Services) schedulesModel {
	return schedulesModel{svc: svc, fields: &scheduleFields{}}
}

func (s *schedulesModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s schedulesModel) capturing() bool { return s.formActive || s.confirming }

type schedulesDataMsg struct {
	schedules  []store.Schedule
	categories []store.Category
}

func (s schedulesModel) refresh() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		ctx := context.Background()
		list, err := svc.Schedules.List(ctx)
		if err != nil {
			return failed("load schedules", err)
		}
		cats, err := svc.Categories.All(ctx)
		if err != nil {
			return failed("load categories", err)
		}
		return schedulesDataMsg{schedules: list, categories: cats}
	}
}

func (s schedulesModel) update(msg tea.Msg) (schedulesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case schedulesDataMsg:
		s.schedules = msg.schedules
		s.categories = msg.categories
		if s.cursor >= len(s.schedules) {
			s.cursor = max(0, len(s.schedules)-1)
		}
		return s, nil

	case dataChangedMsg:
		return s, s.refresh()
	}

	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		if s.confirming {
			s.confirming = false
			if key.Matches(msg, keys.Confirm) {
				return s, s.deleteCmd(s.confirmTarget)
			}
			return s, nil
		}
		return s.updateList(msg)
	}
	return s, nil
}

func (s schedulesModel) selected() (store.Schedule, bool) {
	if s.cursor < 0 || s.cursor >= len(s.schedules) {
		return store.Schedule{}, false
	}
	return s.schedules[s.cursor], true
}

func (s schedulesModel) updateList(msg tea.KeyMsg) (schedulesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if s.cursor > 0 {
			s.cursor--
		}
	case key.Matches(msg, keys.Down):
		if s.cursor < len(s.schedules)-1 {
			s.cursor++
		}
	case key.Matches(msg, keys.New):
		if len(s.categories) == 0 {
			return s, func() tea.Msg { return infoStatus("No categories to schedule") }
		}
		return s.showForm(store.Schedule{
			CategoryID: s.categories[0].ID,
			StartTime:  "09:00",
			EndTime:    "10:00",
			Days:       []int{1, 2, 3, 4, 5},
			Recurring:  true,
			Priority:   store.PriorityMedium,
		})
	case key.Matches(msg, keys.Edit):
		if sc, ok := s.selected(); ok {
			return s.showForm(sc)
		}
	case key.Matches(msg, keys.Toggle):
		if sc, ok := s.selected(); ok {
			return s, s.toggleCmd(sc)
		}
	case key.Matches(msg, keys.Delete):
		sc, ok := s.selected()
		if !ok {
			return s, nil
		}
		if !confirmDeletes(s.svc) {
			return s, s.deleteCmd(sc)
		}
		s.confirming = true
		s.confirmTarget = sc
	}
	return s, nil
}

func (s schedulesModel) toggleCmd(sc store.Schedule) tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		updated, err := svc.Schedules.ToggleActive(context.Background(), sc.ID)
		if err != nil {
			return failed("toggle schedule", err)
		}
		state := "paused"
		if updated.Active {
			state = "active"
		}
		return changed("%s is %s", updated.Title, state)
	}
}

func (s schedulesModel) deleteCmd(sc store.Schedule) tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		if err := svc.Schedules.Delete(context.Background(), sc.ID); err != nil {
			return failed("delete schedule", err)
		}
		return changed("Deleted %s", sc.Title)
	}
}

func validTime(v string) error {
	_, err := schedule.ParseTimeOfDay(v)
	return err
}

func (s schedulesModel) showForm(sc store.Schedule) (schedulesModel, tea.Cmd) {
	*s.fields = scheduleFields{
		categoryID:  sc.CategoryID,
		title:       sc.Title,
		description: sc.Description,
		start:       sc.StartTime,
		end:         sc.EndTime,
		days:        append([]int(nil), sc.Days...),
		recurring:   sc.Recurring,
		priority:    int(sc.Priority),
	}
	s.editingID = sc.ID

	catOpts := make([]huh.Option[string], 0, len(s.categories))
	for _, c := range s.categories {
		label := category.Glyph(c.Icon) + " " + c.Name
		if !c.IsMain() {
			label = "  └ " + label
		}
		catOpts = append(catOpts, huh.NewOption(label, c.ID))
	}
	dayOpts := make([]huh.Option[int], 7)
	for d := 1; d <= 7; d++ {
		dayOpts[d-1] = huh.NewOption(schedule.DayName(d), d)
	}

	f := s.fields
	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Category").Options(catOpts...).Value(&f.categoryID).Height(8),
			huh.NewInput().Title("Title").Value(&f.title).Validate(func(v string) error {
				if strings.TrimSpace(v) == "" {
					return fmt.Errorf("title is required")
				}
				return nil
			}),
			huh.NewInput().Title("Description").Value(&f.description),
		),
		huh.NewGroup(
			huh.NewInput().Title("Start (HH:MM)").Value(&f.start).Validate(validTime),
			huh.NewInput().Title("End (HH:MM)").Value(&f.end).Validate(validTime),
			huh.NewMultiSelect[int]().Title("Days").Options(dayOpts...).Value(&f.days).
				Validate(func(v []int) error {
					if len(v) == 0 {
						return fmt.Errorf("pick at least one day")
					}
					return nil
				}),
			huh.NewConfirm().Title("Repeat weekly?").Value(&f.recurring),
			huh.NewSelect[int]().Title("Priority").Options(
				huh.NewOption("Low", int(store.PriorityLow)),
				huh.NewOption("Medium", int(store.PriorityMedium)),
				huh.NewOption("High", int(store.PriorityHigh)),
			).Value(&f.priority),
		),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s schedulesModel) updateForm(msg tea.Msg) (schedulesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		s.formActive = false
		s.form = nil
		return s, nil
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

func (s schedulesModel) saveCmd() tea.Cmd {
	svc := s.svc
	id := s.editingID
	f := *s.fields
	return func() tea.Msg {
		ctx := context.Background()
		cat, err := svc.Categories.Resolve(ctx, f.categoryID)
		if err != nil {
			return failed("save schedule", err)
		}
		in := schedule.Input{
			CategoryID:  cat.ID,
			Title:       f.title,
			Description: f.description,
			StartTime:   f.start,
			EndTime:     f.end,
			Days:        f.days,
			Recurring:   f.recurring,
			Priority:    store.Priority(f.priority),
		}
		if id == "" {
			sc, err := svc.Schedules.Create(ctx, in)
			if err != nil {
				return failed("create schedule", err)
			}
			return changed("Scheduled %s", sc.Title)
		}
		sc, err := svc.Schedules.Update(ctx, id, in)
		if err != nil {
			return failed("update schedule", err)
		}
		return changed("Updated %s", sc.Title)
	}
}

func shortDays(days []int) string {
	if len(days) == 7 {
		return "Every day"
	}
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = schedule.DayName(d)
	}
	return strings.Join(names, " ")
}

func (s schedulesModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := "New Schedule"
		if s.editingID != "" {
			title = "Edit Schedule"
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", s.form.View()),
		)
	}

	if s.confirming {
		return dangerPanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			errorStyle.Render(fmt.Sprintf("Delete schedule %q?", s.confirmTarget.Title)),
			"",
			mutedStyle.Render("y: delete  any other key: cancel"),
		))
	}

	rows := []string{titleStyle.Render("Schedules"), ""}
	if len(s.schedules) == 0 {
		rows = append(rows, mutedStyle.Render("No schedules yet. Press n to create one."))
	}
	for i, sc := range s.schedules {
		status := successStyle.Render("●")
		if !sc.Active {
			status = mutedStyle.Render("○")
		}
		priority := sc.Priority.String()
		if sc.Priority == store.PriorityHigh {
			priority = warningStyle.Render(priority)
		}
		line := fmt.Sprintf("%s %s-%s  %-24s %-14s",
			status, sc.StartTime, sc.EndTime, sc.Title, shortDays(sc.Days))
		rows = append(rows, cursorRow(i == s.cursor, line)+" "+priority+subtitleStyle.Render("  "+sc.CategoryName))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  t: toggle  d: delete  esc: back"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

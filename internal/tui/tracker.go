package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/dailyschedule/internal/category"
	"github.com/sadopc/dailyschedule/internal/store"
	"github.com/sadopc/dailyschedule/internal/tracker"
)

type trackerPane int

const (
	panePicker trackerPane = iota
	paneRecent
)

type trackerModel struct {
	svc    Services
	width  int
	height int

	rows   []categoryRow
	cursor int

	recent       []store.TimeSession
	recentCursor int
	pane         trackerPane

	snapshot tracker.Snapshot
	elapsed  time.Duration

	formActive bool
	form       *huh.Form
	editingID  string
	formNotes  *string
	formTags   *string
}

func newTrackerModel(svc Services) trackerModel {
	notes, tags := "", ""
	return trackerModel{
		svc:       svc,
		snapshot:  svc.Tracker.Snapshot(),
		formNotes: &notes,
		formTags:  &tags,
	}
}

func (t *trackerModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

func (t trackerModel) capturing() bool { return t.formActive }

type trackerDataMsg struct {
	rows   []categoryRow
	recent []store.TimeSession
}

func (t trackerModel) refresh() tea.Cmd {
	svc := t.svc
	return func() tea.Msg {
		ctx := context.Background()
		tree, err := svc.Categories.Tree(ctx)
		if err != nil {
			return failed("load categories", err)
		}
		limit := svc.Store.SettingInt(ctx, "recent_limit", 10)
		recent, err := svc.Tracker.Recent(ctx, limit)
		if err != nil {
			return failed("load recent sessions", err)
		}
		return trackerDataMsg{rows: flattenTree(tree), recent: recent}
	}
}

func (t trackerModel) update(msg tea.Msg) (trackerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case trackerDataMsg:
		t.rows = msg.rows
		t.recent = msg.recent
		t.cursor = min(t.cursor, max(0, len(t.rows)-1))
		t.recentCursor = min(t.recentCursor, max(0, len(t.recent)-1))
		return t, nil

	case snapshotMsg:
		t.snapshot = tracker.Snapshot(msg)
		t.elapsed = t.svc.Tracker.Elapsed(t.svc.now())
		if t.snapshot.Completed != nil {
			return t, t.refresh()
		}
		return t, nil

	case tickMsg:
		t.elapsed = t.svc.Tracker.Elapsed(time.Time(msg))
		return t, nil

	case dataChangedMsg:
		return t, t.refresh()
	}

	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		return t.updateKeys(msg)
	}
	return t, nil
}

func (t trackerModel) updateKeys(msg tea.KeyMsg) (trackerModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Left):
		t.pane = panePicker
	case key.Matches(msg, keys.Right):
		t.pane = paneRecent
	case key.Matches(msg, keys.Up):
		if t.pane == panePicker && t.cursor > 0 {
			t.cursor--
		}
		if t.pane == paneRecent && t.recentCursor > 0 {
			t.recentCursor--
		}
	case key.Matches(msg, keys.Down):
		if t.pane == panePicker && t.cursor < len(t.rows)-1 {
			t.cursor++
		}
		if t.pane == paneRecent && t.recentCursor < len(t.recent)-1 {
			t.recentCursor++
		}
	case key.Matches(msg, keys.Select):
		if t.pane == panePicker && t.cursor < len(t.rows) {
			return t, t.selectCmd(t.rows[t.cursor].cat)
		}
	case key.Matches(msg, keys.Stop):
		return t, t.stopCmd()
	case key.Matches(msg, keys.Notes):
		if t.pane == paneRecent && t.recentCursor < len(t.recent) {
			return t.showNotesForm(t.recent[t.recentCursor])
		}
	}
	return t, nil
}

func (t trackerModel) selectCmd(cat store.Category) tea.Cmd {
	svc := t.svc
	return func() tea.Msg {
		ctx := context.Background()
		resolved, err := svc.Categories.Resolve(ctx, cat.ID)
		if err != nil {
			return failed("start tracking", err)
		}
		snap, err := svc.Tracker.SelectCategory(ctx, *resolved)
		if err != nil {
			return failed("start tracking", err)
		}
		if snap.Active == nil {
			return changed("Stopped %s", resolved.Name)
		}
		return changed("Tracking %s", resolved.Name)
	}
}

func (t trackerModel) stopCmd() tea.Cmd {
	svc := t.svc
	return func() tea.Msg {
		if svc.Tracker.State() == tracker.Idle {
			return infoStatus("Not tracking")
		}
		done, err := svc.Tracker.Stop(context.Background())
		if err != nil {
			return failed("stop tracking", err)
		}
		return changed("Stopped %s after %s", done.CategoryName, formatMillis(done.Duration))
	}
}

func (t trackerModel) showNotesForm(s store.TimeSession) (trackerModel, tea.Cmd) {
	*t.formNotes = s.Notes
	*t.formTags = strings.Join(s.Tags, ", ")
	t.editingID = s.ID

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().Title("Notes").Value(t.formNotes).Lines(4),
			huh.NewInput().Title("Tags").Description("Comma separated").Value(t.formTags),
		),
	).WithShowHelp(true)

	t.formActive = true
	return t, t.form.Init()
}

func (t trackerModel) updateForm(msg tea.Msg) (trackerModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		t.formActive = false
		t.form = nil
		return t, nil
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}
	if t.form.State == huh.StateCompleted {
		t.formActive = false
		return t, t.saveNotesCmd()
	}
	return t, cmd
}

func splitTags(v string) []string {
	var tags []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

func (t trackerModel) saveNotesCmd() tea.Cmd {
	svc := t.svc
	id, notes, tags := t.editingID, *t.formNotes, splitTags(*t.formTags)
	return func() tea.Msg {
		ctx := context.Background()
		if err := svc.Tracker.UpdateNotes(ctx, id, notes); err != nil {
			return failed("save notes", err)
		}
		if err := svc.Tracker.UpdateTags(ctx, id, tags); err != nil {
			return failed("save tags", err)
		}
		return changed("Notes saved")
	}
}

func (t trackerModel) view() string {
	w := t.width - 4

	if t.formActive && t.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Session Notes"), "", t.form.View()),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		t.renderClock(w),
		lipgloss.JoinHorizontal(lipgloss.Top, t.renderPicker(w/2), t.renderRecent(w-w/2)),
	)
}

func (t trackerModel) renderClock(w int) string {
	if t.snapshot.Active == nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center,
			timerStyle.Width(w-6).Render("00:00:00"),
			mutedStyle.Render("Pick a category and press enter to start"),
		))
	}
	active := t.snapshot.Active
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center,
		timerRunningStyle.Width(w-6).Render(formatDuration(t.elapsed)),
		successStyle.Render("●  "+active.CategoryName),
		mutedStyle.Render("since "+active.StartTime.Local().Format("15:04")+"  x: stop"),
	))
}

func (t trackerModel) renderPicker(w int) string {
	style := panelStyle
	if t.pane == panePicker {
		style = activePanelStyle
	}
	var activeID string
	if t.snapshot.Active != nil {
		activeID = t.snapshot.Active.CategoryID
	}

	rows := []string{titleStyle.Render("Categories"), ""}
	for i, row := range t.rows {
		label := category.Glyph(row.cat.Icon) + " " + row.cat.Name
		if !row.cat.IsMain() {
			label = "  └ " + label
		}
		if row.cat.ID == activeID {
			label += successStyle.Render(" ●")
		}
		rows = append(rows, cursorRow(t.pane == panePicker && i == t.cursor, label))
	}
	return style.Width(w).Render(strings.Join(rows, "\n"))
}

func (t trackerModel) renderRecent(w int) string {
	style := panelStyle
	if t.pane == paneRecent {
		style = activePanelStyle
	}

	rows := []string{titleStyle.Render("Recent Sessions"), ""}
	if len(t.recent) == 0 {
		rows = append(rows, mutedStyle.Render("Nothing tracked yet"))
	}
	for i, s := range t.recent {
		line := fmt.Sprintf("%s  %s  %s",
			s.StartTime.Local().Format("Jan 02 15:04"), formatMillis(s.Duration), s.CategoryName)
		rows = append(rows, cursorRow(t.pane == paneRecent && i == t.recentCursor, line))
		if s.Notes != "" || len(s.Tags) > 0 {
			extra := s.Notes
			if len(s.Tags) > 0 {
				extra = strings.TrimSpace(extra + " #" + strings.Join(s.Tags, " #"))
			}
			rows = append(rows, mutedStyle.Render("    "+extra))
		}
	}
	rows = append(rows, "", mutedStyle.Render("  ←/→: switch pane  m: notes"))
	return style.Width(w).Render(strings.Join(rows, "\n"))
}

package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/dailyschedule/internal/tracker"
)

// App is the root Bubble Tea model.
type App struct {
	svc    Services
	width  int
	height int

	// history is the navigation stack; its last entry is the current view
	// and its first is always the dashboard.
	history  []viewState
	showHelp bool

	dashboard  dashboardModel
	categories categoriesModel
	schedules  schedulesModel
	tracker    trackerModel
	analytics  analyticsModel
	settings   settingsModel

	snapshots   <-chan tracker.Snapshot
	unsubscribe func()

	help        help.Model
	status      string
	statusError bool
}

func NewApp(svc Services) App {
	h := help.New()
	h.ShowAll = false

	ch, cancel := svc.Tracker.Subscribe()
	return App{
		svc:         svc,
		history:     []viewState{viewDashboard},
		dashboard:   newDashboardModel(svc),
		categories:  newCategoriesModel(svc),
		schedules:   newSchedulesModel(svc),
		tracker:     newTrackerModel(svc),
		analytics:   newAnalyticsModel(svc),
		settings:    newSettingsModel(svc),
		snapshots:   ch,
		unsubscribe: cancel,
		help:        h,
	}
}

func (a App) Init() tea.Cmd {
	snap := a.svc.Tracker.Snapshot()
	return tea.Batch(
		a.dashboard.Init(),
		func() tea.Msg { return snapshotMsg(snap) },
		waitForSnapshot(a.snapshots),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForSnapshot delivers the next tracker snapshot. It is re-issued after
// every delivery; a closed channel ends the loop.
func waitForSnapshot(ch <-chan tracker.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}

func (a App) current() viewState { return a.history[len(a.history)-1] }

// navigate makes v the current view. A view appears at most once in the
// history: revisiting one moves it to the top, and the dashboard resets
// the history to its root.
func (a *App) navigate(v viewState) tea.Cmd {
	if v == a.history[0] {
		a.history = a.history[:1:1]
		return a.refreshCurrentView()
	}
	if a.current() != v {
		h := make([]viewState, 0, len(a.history)+1)
		for i, s := range a.history {
			if i == 0 || s != v {
				h = append(h, s)
			}
		}
		a.history = append(h, v)
	}
	return a.refreshCurrentView()
}

// back returns to the previous view. The dashboard is never popped.
func (a *App) back() tea.Cmd {
	if len(a.history) <= 1 {
		return nil
	}
	a.history = a.history[:len(a.history)-1]
	return a.refreshCurrentView()
}

// tabFor maps the number keys to views, or returns -1.
func tabFor(msg tea.KeyMsg) viewState {
	tabs := []key.Binding{keys.Tab1, keys.Tab2, keys.Tab3, keys.Tab4, keys.Tab5, keys.Tab6}
	for i, b := range tabs {
		if key.Matches(msg, b) {
			return viewState(i)
		}
	}
	return -1
}

func (a App) quit() (tea.Model, tea.Cmd) {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	return a, tea.Quit
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.categories.setSize(a.width, contentHeight)
		a.schedules.setSize(a.width, contentHeight)
		a.tracker.setSize(a.width, contentHeight)
		a.analytics.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// If a child view is capturing input (e.g. form), delegate first.
		if a.isCapturing() {
			if msg.String() == "ctrl+c" {
				return a.quit()
			}
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a.quit()
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Back):
			cmd := a.back()
			return a, cmd
		case tabFor(msg) >= 0:
			cmd := a.navigate(tabFor(msg))
			return a, cmd
		case key.Matches(msg, keys.Tab):
			cmd := a.navigate((a.current() + 1) % viewState(len(viewNames)))
			return a, cmd
		}

	case tickMsg:
		var cmd1, cmd2 tea.Cmd
		a.dashboard, cmd1 = a.dashboard.update(msg)
		a.tracker, cmd2 = a.tracker.update(msg)
		return a, tea.Batch(tickCmd(), cmd1, cmd2)

	case snapshotMsg:
		var cmd1, cmd2 tea.Cmd
		a.dashboard, cmd1 = a.dashboard.update(msg)
		a.tracker, cmd2 = a.tracker.update(msg)
		return a, tea.Batch(waitForSnapshot(a.snapshots), cmd1, cmd2)

	case statusMsg:
		a.status = msg.text
		a.statusError = msg.isError
		if msg.err != nil && a.svc.Log != nil {
			a.svc.Log.Error(msg.op, "err", msg.err)
		}
		return a, nil

	case dataChangedMsg:
		if msg.status != "" {
			a.status = msg.status
			a.statusError = false
		}
		cmd := a.broadcast(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

// broadcast delivers msg to every view, not only the visible one.
func (a *App) broadcast(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, 6)
	a.dashboard, cmds[0] = a.dashboard.update(msg)
	a.categories, cmds[1] = a.categories.update(msg)
	a.schedules, cmds[2] = a.schedules.update(msg)
	a.tracker, cmds[3] = a.tracker.update(msg)
	a.analytics, cmds[4] = a.analytics.update(msg)
	a.settings, cmds[5] = a.settings.update(msg)
	return tea.Batch(cmds...)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.current() {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewCategories:
		a.categories, cmd = a.categories.update(msg)
	case viewSchedules:
		a.schedules, cmd = a.schedules.update(msg)
	case viewTracker:
		a.tracker, cmd = a.tracker.update(msg)
	case viewAnalytics:
		a.analytics, cmd = a.analytics.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isCapturing() bool {
	switch a.current() {
	case viewCategories:
		return a.categories.capturing()
	case viewSchedules:
		return a.schedules.capturing()
	case viewTracker:
		return a.tracker.capturing()
	case viewSettings:
		return a.settings.capturing()
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.current() {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewCategories:
		return a.categories.refresh()
	case viewSchedules:
		return a.schedules.refresh()
	case viewTracker:
		return a.tracker.refresh()
	case viewAnalytics:
		return a.analytics.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.current() {
	case viewDashboard:
		content = a.dashboard.view()
	case viewCategories:
		content = a.categories.view()
	case viewSchedules:
		content = a.schedules.view()
	case viewTracker:
		content = a.tracker.view()
	case viewAnalytics:
		content = a.analytics.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(1, a.height-headerHeight-footerHeight)

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.current() {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("dailyschedule")
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusError {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	trackingInfo := ""
	if snap := a.tracker.snapshot; snap.Active != nil {
		trackingInfo = successStyle.Render(" ● " + snap.Active.CategoryName + " " + formatDuration(a.tracker.elapsed))
	}

	left := footerStyle.Render(helpView)
	right := trackingInfo + status

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/dailyschedule/internal/analytics"
	"github.com/sadopc/dailyschedule/internal/category"
	"github.com/sadopc/dailyschedule/internal/export"
)

type analyticsModel struct {
	svc    Services
	width  int
	height int

	kind      analytics.RangeKind
	kindSet   bool
	breakdown analytics.Breakdown
	days      []analytics.DayTotal
	loaded    bool

	cursor   int
	expanded map[string]bool

	chart    barchart.Model
	hasChart bool
}

func newAnalyticsModel(svc Services) analyticsModel {
	kind := analytics.RangeWeek
	if svc.Config != nil {
		kind = svc.Config.DefaultRange()
	}
	return analyticsModel{
		svc:      svc,
		kind:     kind,
		expanded: make(map[string]bool),
		chart:    barchart.New(60, 12),
	}
}

func (a *analyticsModel) setSize(w, h int) {
	a.width = w
	a.height = h
	a.buildChart()
}

type analyticsDataMsg struct {
	kind      analytics.RangeKind
	breakdown analytics.Breakdown
	days      []analytics.DayTotal
}

type pdfDoneMsg struct {
	path string
}

func (a analyticsModel) refresh() tea.Cmd {
	svc := a.svc
	kind, kindSet := a.kind, a.kindSet
	return func() tea.Msg {
		ctx := context.Background()
		now := svc.now()

		if !kindSet {
			kind = analytics.PreferredRange(ctx, svc.Store, kind)
		}

		r, err := analytics.LoadReport(ctx, svc.Store, svc.UID, kind, now)
		if err != nil {
			return failed("load analytics", err)
		}
		return analyticsDataMsg{
			kind:      kind,
			breakdown: r.Breakdown,
			days:      r.Days,
		}
	}
}

func (a analyticsModel) update(msg tea.Msg) (analyticsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case analyticsDataMsg:
		a.kind = msg.kind
		a.breakdown = msg.breakdown
		a.days = msg.days
		a.loaded = true
		a.cursor = min(a.cursor, max(0, len(a.breakdown.Visible())-1))
		a.buildChart()
		return a, nil

	case dataChangedMsg:
		return a, a.refresh()

	case pdfDoneMsg:
		return a, func() tea.Msg { return infoStatus("Exported to %s", msg.path) }

	case tea.KeyMsg:
		visible := a.breakdown.Visible()
		switch {
		case key.Matches(msg, keys.Range):
			a.kind = a.kind.Next()
			a.kindSet = true
			a.cursor = 0
			return a, a.refresh()
		case key.Matches(msg, keys.Up):
			if a.cursor > 0 {
				a.cursor--
			}
		case key.Matches(msg, keys.Down):
			if a.cursor < len(visible)-1 {
				a.cursor++
			}
		case key.Matches(msg, keys.Expand):
			if a.cursor < len(visible) {
				k := visible[a.cursor].Category.Key
				a.expanded[k] = !a.expanded[k]
			}
		case key.Matches(msg, keys.Export):
			return a, a.exportCmd()
		}
	}
	return a, nil
}

func (a analyticsModel) exportCmd() tea.Cmd {
	b, kind := a.breakdown, a.kind
	return func() tea.Msg {
		home, err := os.UserHomeDir()
		if err != nil {
			return failed("export pdf", err)
		}
		path := filepath.Join(home, fmt.Sprintf("dailyschedule-%s-%s.pdf", kind, b.End.Format("2006-01-02")))
		if err := export.BreakdownPDF(b, "Time Breakdown: "+kind.Label(), path); err != nil {
			return failed("export pdf", err)
		}
		return pdfDoneMsg{path: path}
	}
}

// chartBuckets returns one bar per day, or per month for a year range.
func chartBuckets(kind analytics.RangeKind, days []analytics.DayTotal) []barchart.BarData {
	style := lipgloss.NewStyle().Foreground(colorPrimary)
	var bars []barchart.BarData

	if kind == analytics.RangeYear {
		index := make(map[time.Month]int)
		for _, d := range days {
			i, ok := index[d.Date.Month()]
			if !ok {
				i = len(bars)
				index[d.Date.Month()] = i
				bars = append(bars, barchart.BarData{
					Label:  d.Date.Format("Jan"),
					Values: []barchart.BarValue{{Name: "hours", Style: style}},
				})
			}
			bars[i].Values[0].Value += d.Minutes / 60
		}
		return bars
	}

	label := "Mon 02"
	if kind == analytics.RangeMonth {
		label = "02"
	}
	for _, d := range days {
		bars = append(bars, barchart.BarData{
			Label:  d.Date.Format(label),
			Values: []barchart.BarValue{{Name: "hours", Value: d.Minutes / 60, Style: style}},
		})
	}
	return bars
}

func (a *analyticsModel) buildChart() {
	chartWidth := max(20, a.width-8)
	chartHeight := 10
	if a.height > 40 {
		chartHeight = 14
	}

	a.chart = barchart.New(chartWidth, chartHeight)
	a.hasChart = false
	bars := chartBuckets(a.kind, a.days)
	for _, bar := range bars {
		if bar.Values[0].Value > 0 {
			a.hasChart = true
			break
		}
	}
	if a.hasChart {
		a.chart.PushAll(bars)
		a.chart.Draw()
	}
}

func (a analyticsModel) view() string {
	w := a.width - 4

	var tabs []string
	for _, k := range analytics.Ranges {
		if k == a.kind {
			tabs = append(tabs, activeTabStyle.Render(k.Label()))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(k.Label()))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		append([]string{titleStyle.Render("Analytics"), "  "}, tabs...)...,
	)

	if !a.loaded {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, header, "", mutedStyle.Render("Loading...")))
	}

	b := a.breakdown
	summary := mutedStyle.Render(fmt.Sprintf("%s to %s  ·  %s in %d sessions",
		b.Start.Format("Jan 02"), b.End.Format("Jan 02, 2006"),
		analytics.FormatMinutes(b.TotalMinutes), b.TotalSessions))

	nav := mutedStyle.Render("  r: range  enter: expand  E: export pdf")

	chart := mutedStyle.Render("  No daily totals yet")
	if a.hasChart {
		chart = a.chart.View()
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		header, summary, "", chart, "", a.renderBreakdown(w), "", nav,
	))
}

func (a analyticsModel) renderBreakdown(w int) string {
	visible := a.breakdown.Visible()
	if len(visible) == 0 {
		return mutedStyle.Render("  No time tracked in this period")
	}

	barWidth := max(10, min(40, w-50))
	var rows []string
	for i, m := range visible {
		marker := "▸"
		if a.expanded[m.Category.Key] {
			marker = "▾"
		}
		if len(m.Subs) == 0 {
			marker = " "
		}
		filled := barWidth * m.Percent / 100
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(m.Category.Color)).Render(strings.Repeat("█", filled)) +
			mutedStyle.Render(strings.Repeat("░", barWidth-filled))
		line := fmt.Sprintf("%s %s %-26s %s %8s %3d%%",
			marker, category.Glyph(m.Category.Icon), m.Category.Name, bar,
			analytics.FormatMinutes(m.Minutes), m.Percent)
		rows = append(rows, cursorRow(i == a.cursor, line))

		if !a.expanded[m.Category.Key] {
			continue
		}
		for _, s := range m.Subs {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("      └ %-24s %8s %3d%%  %d sessions",
				s.Category.Name, analytics.FormatMinutes(s.Minutes), s.Percent, s.Sessions)))
		}
	}
	if a.breakdown.UnattributedSessions > 0 {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("    Deleted categories: %s in %d sessions",
			analytics.FormatMinutes(a.breakdown.UnattributedMinutes), a.breakdown.UnattributedSessions)))
	}
	return strings.Join(rows, "\n")
}

package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"github.com/urfave/cli/v2"

	"github.com/sadopc/dailyschedule/internal/analytics"
	"github.com/sadopc/dailyschedule/internal/apperr"
	"github.com/sadopc/dailyschedule/internal/category"
	"github.com/sadopc/dailyschedule/internal/export"
	"github.com/sadopc/dailyschedule/internal/schedule"
	"github.com/sadopc/dailyschedule/internal/store"
)

func (r *runner) categoriesAction(ctx *cli.Context) error {
	cats, err := r.categories()
	if err != nil {
		return err
	}
	tree, err := cats.Tree(ctx.Context)
	if err != nil {
		return err
	}

	var items pterm.LeveledList
	for _, n := range tree {
		items = append(items, pterm.LeveledListItem{Level: 0, Text: category.Glyph(n.Main.Icon) + " " + n.Main.Name})
		for _, s := range n.Subs {
			items = append(items, pterm.LeveledListItem{Level: 1, Text: category.Glyph(s.Icon) + " " + s.Name})
		}
	}
	return pterm.DefaultTree.WithRoot(putils.TreeFromLeveledList(items)).Render()
}

func (r *runner) schedulesAction(ctx *cli.Context) error {
	sch, err := r.schedules()
	if err != nil {
		return err
	}

	var list []store.Schedule
	title := "All schedules"
	switch {
	case ctx.Bool(allFlag.Name):
		list, err = sch.List(ctx.Context)
	case ctx.IsSet(dayFlag.Name):
		day := ctx.Int(dayFlag.Name)
		list, err = sch.ForWeekday(ctx.Context, day)
		title = schedule.DayName(day)
	default:
		now := r.now()
		list, err = sch.Today(ctx.Context, now)
		title = "Today, " + now.Format("Monday")
	}
	if err != nil {
		return err
	}

	pterm.DefaultSection.Println(title)
	if len(list) == 0 {
		pterm.Info.Println("No schedules")
		return nil
	}

	printTable(os.Stdout, scheduleRows(list))
	return nil
}

func scheduleRows(list []store.Schedule) [][]string {
	rows := [][]string{{"TIME", "TITLE", "CATEGORY", "DAYS", "PRIORITY", "ACTIVE"}}
	for _, s := range list {
		days := make([]string, len(s.Days))
		for i, d := range s.Days {
			days[i] = schedule.DayName(d)
		}
		active := "yes"
		if !s.Active {
			active = "no"
		}
		rows = append(rows, []string{
			s.StartTime + "-" + s.EndTime,
			s.Title,
			s.CategoryName,
			strings.Join(days, " "),
			s.Priority.String(),
			active,
		})
	}
	return rows
}

// analyticsRange picks the range from the flag, then the stored
// preference, then the config file. The offline mirror holds no settings.
func (r *runner) analyticsRange(ctx context.Context, flag string, prefs analytics.SettingReader) (analytics.RangeKind, error) {
	if flag != "" {
		return analytics.ParseRange(flag)
	}
	if prefs == nil {
		return r.cfg.DefaultRange(), nil
	}
	return analytics.PreferredRange(ctx, prefs, r.cfg.DefaultRange()), nil
}

func (r *runner) analyticsAction(ctx *cli.Context) error {
	var (
		src   analytics.Source
		prefs analytics.SettingReader
	)
	if ctx.Bool(offlineFlag.Name) {
		m, err := r.openMirror()
		if err != nil {
			return err
		}
		defer m.Close()
		src = m
	} else {
		s, err := r.openStore()
		if err != nil {
			return err
		}
		src, prefs = s, s
	}

	kind, err := r.analyticsRange(ctx.Context, ctx.String(rangeFlag.Name), prefs)
	if err != nil {
		return err
	}

	b, err := analytics.Load(ctx.Context, src, r.cfg.User, kind, r.now())
	if err != nil {
		r.log.Error("load analytics", "range", kind, "err", err)
		return err
	}
	printBreakdown(b, kind)

	if path := ctx.String(pdfFlag.Name); path != "" {
		if err := export.BreakdownPDF(b, "Time breakdown: "+kind.Label(), path); err != nil {
			return err
		}
		pterm.Success.Printfln("PDF written to %s", path)
	}
	return nil
}

func printBreakdown(b analytics.Breakdown, kind analytics.RangeKind) {
	pterm.DefaultSection.Println(kind.Label())
	pterm.Info.Printfln("Total %s in %d sessions", analytics.FormatMinutes(b.TotalMinutes), b.TotalSessions)

	visible := b.Visible()
	if len(visible) == 0 {
		pterm.Info.Println("No time tracked in this period")
		return
	}

	var bars pterm.Bars
	rows := [][]string{{"CATEGORY", "TIME", "SHARE", "SESSIONS"}}
	for _, m := range visible {
		bars = append(bars, pterm.Bar{Label: m.Category.Name, Value: m.Percent})
		rows = append(rows, []string{
			m.Category.Name,
			analytics.FormatMinutes(m.Minutes),
			fmt.Sprintf("%d%%", m.Percent),
			fmt.Sprint(m.Sessions),
		})
		for _, s := range m.Subs {
			rows = append(rows, []string{
				"  └ " + s.Category.Name,
				analytics.FormatMinutes(s.Minutes),
				fmt.Sprintf("%d%%", s.Percent),
				fmt.Sprint(s.Sessions),
			})
		}
	}
	if b.UnattributedSessions > 0 {
		rows = append(rows, []string{
			"(deleted categories)",
			analytics.FormatMinutes(b.UnattributedMinutes),
			fmt.Sprintf("%d%%", analytics.Percent(b.UnattributedMinutes, b.TotalMinutes)),
			fmt.Sprint(b.UnattributedSessions),
		})
	}

	_ = pterm.DefaultBarChart.WithHorizontal().WithBars(bars).WithShowValue().Render()
	printTable(os.Stdout, rows)
}

func (r *runner) exportAction(ctx *cli.Context) error {
	format := strings.ToLower(ctx.String(formatFlag.Name))
	if format != "csv" && format != "json" {
		return apperr.Invalid("format", "%q is not one of csv, json", format)
	}

	s, err := r.openStore()
	if err != nil {
		return err
	}
	sessions, err := s.ListSessions(ctx.Context, r.cfg.User, store.SessionFilter{})
	if err != nil {
		return apperr.Persistence("list sessions", err)
	}
	categories, err := s.ListCategories(ctx.Context, r.cfg.User, false)
	if err != nil {
		return apperr.Persistence("list categories", err)
	}

	path := ctx.String(outFlag.Name)
	if path == "" {
		path = fmt.Sprintf("dailyschedule-sessions-%s.%s", r.now().Format("2006-01-02"), format)
	}

	byID := export.ByID(categories)
	if format == "csv" {
		err = export.ToCSV(sessions, byID, path)
	} else {
		err = export.ToJSON(sessions, byID, path)
	}
	if err != nil {
		return err
	}

	r.log.Info("sessions exported", "path", path, "count", len(sessions))
	pterm.Success.Printfln("Exported %d sessions to %s", len(sessions), path)
	return nil
}

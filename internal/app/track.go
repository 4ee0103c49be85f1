package app

import (
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/sadopc/dailyschedule/internal/apperr"
	"github.com/sadopc/dailyschedule/internal/store"
	"github.com/sadopc/dailyschedule/internal/tracker"
)

const noSessionsMsg = "No completed sessions yet"

// trackStartAction starts tracking the named category. If that category is
// already being tracked nothing changes.
func (r *runner) trackStartAction(ctx *cli.Context) error {
	ref := strings.TrimSpace(strings.Join(ctx.Args().Slice(), " "))
	if ref == "" {
		return apperr.Invalid("category", "a category name, key or id is required")
	}

	cats, err := r.categories()
	if err != nil {
		return err
	}
	cat, err := cats.Resolve(ctx.Context, ref)
	if err != nil {
		return err
	}

	trk, err := r.tracker(ctx.Context)
	if err != nil {
		return err
	}
	if snap := trk.Snapshot(); snap.Active != nil && snap.Active.CategoryID == cat.ID {
		pterm.Info.Printfln("Already tracking %s for %s", cat.Name, formatElapsed(trk.Elapsed(r.now())))
		return nil
	}

	snap, err := trk.SelectCategory(ctx.Context, *cat)
	if err != nil {
		r.log.Error("start tracking", "category", cat.ID, "err", err)
		return err
	}
	if snap.Completed != nil {
		pterm.Info.Printfln("Stopped %s after %s", snap.Completed.CategoryName, formatMillis(snap.Completed.Duration))
	}
	pterm.Success.Printfln("Tracking %s", cat.Name)
	return nil
}

func (r *runner) trackStopAction(ctx *cli.Context) error {
	trk, err := r.tracker(ctx.Context)
	if err != nil {
		return err
	}
	if trk.State() == tracker.Idle {
		pterm.Info.Println("Nothing is being tracked")
		return nil
	}
	done, err := trk.Stop(ctx.Context)
	if err != nil {
		r.log.Error("stop tracking", "err", err)
		return err
	}
	pterm.Success.Printfln("Stopped %s after %s", done.CategoryName, formatMillis(done.Duration))
	return nil
}

func (r *runner) trackStatusAction(ctx *cli.Context) error {
	trk, err := r.tracker(ctx.Context)
	if err != nil {
		return err
	}
	snap := trk.Snapshot()
	if snap.Active == nil {
		pterm.Info.Println("Nothing is being tracked")
		return nil
	}
	pterm.Info.Printfln("Tracking %s since %s (%s)",
		snap.Active.CategoryName,
		snap.Active.StartTime.Local().Format(time.Kitchen),
		formatElapsed(trk.Elapsed(r.now())))
	return nil
}

func (r *runner) trackRecentAction(ctx *cli.Context) error {
	trk, err := r.tracker(ctx.Context)
	if err != nil {
		return err
	}
	sessions, err := trk.Recent(ctx.Context, ctx.Int(limitFlag.Name))
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		pterm.Info.Println(noSessionsMsg)
		return nil
	}
	printTable(os.Stdout, sessionRows(sessions))
	return nil
}

func sessionRows(sessions []store.TimeSession) [][]string {
	rows := [][]string{{"#", "CATEGORY", "START", "DURATION", "TAGS"}}
	for i := range sessions {
		s := sessions[i]
		rows = append(rows, []string{
			pterm.Sprint(i + 1),
			s.CategoryName,
			s.StartTime.Local().Format("Jan 02, 2006 03:04 PM"),
			formatMillis(s.Duration),
			strings.Join(s.Tags, " · "),
		})
	}
	return rows
}

func formatElapsed(d time.Duration) string {
	return d.Truncate(time.Second).String()
}

func formatMillis(ms *int64) string {
	if ms == nil {
		return "0s"
	}
	return formatElapsed(time.Duration(*ms) * time.Millisecond)
}

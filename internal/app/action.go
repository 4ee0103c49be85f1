package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/sadopc/dailyschedule/internal/category"
	"github.com/sadopc/dailyschedule/internal/config"
	"github.com/sadopc/dailyschedule/internal/logging"
	"github.com/sadopc/dailyschedule/internal/mirror"
	"github.com/sadopc/dailyschedule/internal/reminder"
	"github.com/sadopc/dailyschedule/internal/schedule"
	"github.com/sadopc/dailyschedule/internal/store"
	"github.com/sadopc/dailyschedule/internal/tracker"
	"github.com/sadopc/dailyschedule/internal/tui"
)

var errMirrorDisabled = errors.New("the offline mirror is disabled; set mirror.enabled in the config file")

// runner holds what the actions share for one invocation.
type runner struct {
	cfg       *config.Config
	log       *slog.Logger
	logCloser io.Closer
	store     *store.Store
	now       func() time.Time
}

func (r *runner) beforeAction(ctx *cli.Context) error {
	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	if ctx.Bool(noColorFlag.Name) || os.Getenv("NO_COLOR") != "" {
		disableStyling()
	}

	configFile, dataDir, err := config.Paths()
	if err != nil {
		return err
	}
	if v := ctx.String(configFlag.Name); v != "" {
		configFile = v
	}
	if v := ctx.String(dataDirFlag.Name); v != "" {
		dataDir = v
	}

	cfg, err := config.Load(configFile, dataDir)
	if err != nil {
		return err
	}
	if v := ctx.String(userFlag.Name); v != "" {
		cfg.User = v
	}

	r.cfg = cfg
	r.log, r.logCloser = logging.New(logging.Options{
		Path:      cfg.Log.Path,
		Level:     cfg.Log.Level,
		MaxSizeMB: cfg.Log.MaxSizeMB,
	})
	if r.now == nil {
		r.now = time.Now
	}
	r.log.Debug("config loaded", "file", cfg.File, "user", cfg.User)
	return nil
}

func (r *runner) afterAction(_ *cli.Context) error {
	var errs []error
	if r.store != nil {
		errs = append(errs, r.store.Close())
		r.store = nil
	}
	if r.logCloser != nil {
		errs = append(errs, r.logCloser.Close())
		r.logCloser = nil
	}
	return errors.Join(errs...)
}

func (r *runner) openStore() (*store.Store, error) {
	if r.store != nil {
		return r.store, nil
	}
	s, err := store.New(r.cfg.Database.Path)
	if err != nil {
		r.log.Error("open database", "path", r.cfg.Database.Path, "err", err)
		return nil, err
	}
	r.store = s
	return s, nil
}

func (r *runner) openMirror() (*mirror.Client, error) {
	if !r.cfg.Mirror.Enabled {
		return nil, errMirrorDisabled
	}
	m, err := mirror.Open(r.cfg.Mirror.Path)
	if err != nil {
		r.log.Error("open mirror", "path", r.cfg.Mirror.Path, "err", err)
		return nil, err
	}
	return m, nil
}

func (r *runner) categories() (*category.Service, error) {
	s, err := r.openStore()
	if err != nil {
		return nil, err
	}
	return category.NewService(s, r.cfg.User), nil
}

func (r *runner) schedules() (*schedule.Service, error) {
	cats, err := r.categories()
	if err != nil {
		return nil, err
	}
	return schedule.NewService(r.store, cats, r.cfg.User), nil
}

// tracker returns a controller already loaded with the active session.
func (r *runner) tracker(ctx context.Context) (*tracker.Controller, error) {
	s, err := r.openStore()
	if err != nil {
		return nil, err
	}
	c := tracker.New(s, r.cfg.User, r.log)
	c.SetClock(r.now)
	if err := c.Load(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *runner) reminders(sch *schedule.Service) *reminder.Scheduler {
	return reminder.New(
		func(ctx context.Context) ([]store.Schedule, error) { return sch.List(ctx) },
		reminder.DesktopNotifier{AppName: "DailySchedule"},
		r.cfg.Reminders.Lead,
		time.Local,
		r.log,
	)
}

// defaultAction opens the terminal UI. Reminders run alongside it when
// enabled.
func (r *runner) defaultAction(ctx *cli.Context) error {
	cats, err := r.categories()
	if err != nil {
		return err
	}
	sch := schedule.NewService(r.store, cats, r.cfg.User)
	trk, err := r.tracker(ctx.Context)
	if err != nil {
		return err
	}

	if r.cfg.Reminders.Enabled {
		rem := r.reminders(sch)
		if err := rem.Start(ctx.Context); err != nil {
			r.log.Warn("reminders unavailable", "err", err)
		} else {
			defer rem.Stop()
		}
	}

	m := tui.NewApp(tui.Services{
		UID:        r.cfg.User,
		Store:      r.store,
		Categories: cats,
		Schedules:  sch,
		Tracker:    trk,
		Config:     r.cfg,
		Log:        r.log,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx.Context))
	_, err = p.Run()
	return err
}

// remindAction runs the reminder scheduler until interrupted.
func (r *runner) remindAction(ctx *cli.Context) error {
	sch, err := r.schedules()
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rem := r.reminders(sch)
	if err := rem.Start(sigCtx); err != nil {
		return err
	}
	defer rem.Stop()

	next := rem.Entries()
	pterm.Info.Printfln("Watching %d schedules (lead %s). Press Ctrl+C to stop.", len(next), r.cfg.Reminders.Lead)
	for _, t := range next {
		if !t.IsZero() {
			pterm.Println("  next: " + t.Format("Mon Jan 2 15:04"))
		}
	}

	<-sigCtx.Done()
	fmt.Println()
	pterm.Info.Println("Reminders stopped")
	return nil
}

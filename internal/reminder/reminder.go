// Package reminder raises a desktop notification shortly before each
// active schedule starts.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/robfig/cron/v3"

	"github.com/sadopc/dailyschedule/internal/schedule"
	"github.com/sadopc/dailyschedule/internal/store"
)

const reloadInterval = 10 * time.Minute

type Notifier interface {
	Notify(title, message string) error
}

// DesktopNotifier sends notifications through the OS notification service.
type DesktopNotifier struct {
	AppName string
}

func (d DesktopNotifier) Notify(title, message string) error {
	if d.AppName != "" {
		beeep.AppName = d.AppName
	}
	return beeep.Notify(title, message, "")
}

// Loader returns the schedules to remind about.
type Loader func(ctx context.Context) ([]store.Schedule, error)

// Scheduler keeps one cron entry per active schedule and refreshes them
// periodically so edits made elsewhere are picked up.
type Scheduler struct {
	cron   *cron.Cron
	load   Loader
	notify Notifier
	lead   time.Duration
	log    *slog.Logger

	mu      sync.Mutex
	entries []cron.EntryID
}

func New(load Loader, notify Notifier, lead time.Duration, loc *time.Location, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		load:   load,
		notify: notify,
		lead:   lead,
		log:    log,
	}
}

// Start registers the reminders and runs the cron loop in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.Reload(ctx); err != nil {
		return err
	}
	spec := fmt.Sprintf("@every %ds", int(reloadInterval.Seconds()))
	if _, err := s.cron.AddFunc(spec, func() {
		if _, err := s.Reload(ctx); err != nil {
			s.log.Error("reload reminders", "err", err)
		}
	}); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Reload replaces the registered reminders with the current schedules and
// returns how many were registered.
func (s *Scheduler) Reload(ctx context.Context) (int, error) {
	schedules, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.entries {
		s.cron.Remove(id)
	}
	s.entries = s.entries[:0]

	for _, sc := range schedules {
		if !sc.Active {
			continue
		}
		spec, err := BuildSpec(sc, s.lead)
		if err != nil {
			s.log.Warn("skipping schedule", "schedule", sc.ID, "err", err)
			continue
		}
		title, body := Message(sc)
		id, err := s.cron.AddFunc(spec, func() {
			if err := s.notify.Notify(title, body); err != nil {
				s.log.Error("send reminder", "schedule", sc.ID, "err", err)
			}
		})
		if err != nil {
			s.log.Warn("skipping schedule", "schedule", sc.ID, "spec", spec, "err", err)
			continue
		}
		s.entries = append(s.entries, id)
	}
	s.log.Info("reminders loaded", "count", len(s.entries))
	return len(s.entries), nil
}

// Entries returns the next run time of every registered reminder.
func (s *Scheduler) Entries() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	var next []time.Time
	for _, id := range s.entries {
		next = append(next, s.cron.Entry(id).Next)
	}
	return next
}

// BuildSpec returns the cron spec (with seconds) that fires lead before the
// schedule's start on each of its weekdays. A lead reaching past midnight
// fires at 00:00 the same day.
func BuildSpec(sc store.Schedule, lead time.Duration) (string, error) {
	start, err := schedule.ParseTimeOfDay(sc.StartTime)
	if err != nil {
		return "", err
	}
	if len(sc.Days) == 0 {
		return "", fmt.Errorf("schedule %q has no days", sc.Title)
	}

	at := start - schedule.TimeOfDay(lead/time.Minute)
	if at < 0 {
		at = 0
	}

	days := make([]string, 0, len(sc.Days))
	for _, d := range sc.Days {
		if d < 1 || d > 7 {
			return "", fmt.Errorf("invalid weekday %d", d)
		}
		// cron counts Sunday as 0.
		days = append(days, strconv.Itoa(d%7))
	}

	// cron format: second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * %s", at.Minute(), at.Hour(), strings.Join(days, ",")), nil
}

// Message returns the notification title and body for a schedule.
func Message(sc store.Schedule) (string, string) {
	title := fmt.Sprintf("%s at %s", sc.Title, sc.StartTime)
	body := fmt.Sprintf("%s, %s to %s", sc.CategoryName, sc.StartTime, sc.EndTime)
	if sc.Description != "" {
		body += "\n" + sc.Description
	}
	return title, body
}

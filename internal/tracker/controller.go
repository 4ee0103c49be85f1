// Package tracker owns the "currently tracking" state: at most one active
// time session per user, started and stopped by selecting categories.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sadopc/dailyschedule/internal/apperr"
	"github.com/sadopc/dailyschedule/internal/store"
)

type State int

const (
	Idle State = iota
	Tracking
)

func (s State) String() string {
	if s == Tracking {
		return "tracking"
	}
	return "idle"
}

// Repository is the session persistence the controller needs.
// *store.Store satisfies it.
type Repository interface {
	StartSession(ctx context.Context, ts store.TimeSession) (*store.TimeSession, error)
	CompleteSession(ctx context.Context, uid, id string, end time.Time) (*store.TimeSession, error)
	ActiveSessions(ctx context.Context, uid string) ([]store.TimeSession, error)
	ListSessions(ctx context.Context, uid string, f store.SessionFilter) ([]store.TimeSession, error)
	UpdateSessionNotes(ctx context.Context, uid, id, notes string) error
	UpdateSessionTags(ctx context.Context, uid, id string, tags []string) error
}

// Snapshot is the observable controller state. Active is nil when idle;
// Completed is the session closed by the transition that produced the
// snapshot, if any.
type Snapshot struct {
	State     State
	Active    *store.TimeSession
	Completed *store.TimeSession
}

// Controller is the single source of truth for the active session. Every
// transition writes to the store first and only then changes local state,
// so a failed write leaves the controller as it was.
type Controller struct {
	repo Repository
	uid  string
	now  func() time.Time
	log  *slog.Logger

	mu     sync.Mutex
	active *store.TimeSession
	subs   map[int]chan Snapshot
	nextID int
}

func New(repo Repository, uid string, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		repo: repo,
		uid:  uid,
		now:  time.Now,
		log:  log,
		subs: make(map[int]chan Snapshot),
	}
}

// SetClock replaces the time source used for session boundaries.
func (c *Controller) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Load replaces local state with the store's. If more than one active
// session is found, the newest is kept and the others are completed at its
// start time.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked(ctx)
}

func (c *Controller) loadLocked(ctx context.Context) error {
	active, err := c.repo.ActiveSessions(ctx, c.uid)
	if err != nil {
		return apperr.Persistence("load active session", err)
	}
	if len(active) == 0 {
		c.active = nil
		c.publishLocked(nil)
		return nil
	}

	newest := active[0]
	for _, stale := range active[1:] {
		if _, err := c.repo.CompleteSession(ctx, c.uid, stale.ID, newest.StartTime); err != nil {
			return apperr.Persistence("close stale session", err)
		}
		c.log.Warn("closed stale active session", "session", stale.ID, "category", stale.CategoryName)
	}
	c.active = &newest
	c.publishLocked(nil)
	return nil
}

// SelectCategory is the tracking toggle. Idle starts a session for cat;
// selecting the active category stops it; selecting another category stops
// the current session and starts a new one.
func (c *Controller) SelectCategory(ctx context.Context, cat store.Category) (Snapshot, error) {
	if cat.ID == "" {
		return c.Snapshot(), apperr.Invalid("category", "category is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var completed *store.TimeSession
	if c.active != nil {
		prev := c.active.CategoryID
		done, err := c.stopLocked(ctx)
		switch {
		case apperr.IsNotFound(err) || apperr.IsValidation(err):
			// Already stopped elsewhere; the toggle has nothing left to stop.
			if prev == cat.ID {
				return c.snapshotLocked(nil), nil
			}
		case err != nil:
			return c.snapshotLocked(nil), err
		default:
			completed = done
		}
		if done != nil && done.CategoryID == cat.ID {
			c.publishLocked(completed)
			return c.snapshotLocked(completed), nil
		}
	}

	ts, err := c.repo.StartSession(ctx, store.TimeSession{
		UID:          c.uid,
		CategoryID:   cat.ID,
		CategoryName: cat.Name,
		Title:        cat.Name,
		Description:  cat.Description,
		StartTime:    c.now(),
	})
	if errors.Is(err, store.ErrActiveSessionExists) {
		// Another instance started a session; adopt it.
		if lerr := c.loadLocked(ctx); lerr != nil {
			c.log.Error("reload after conflict", "err", lerr)
		}
		return c.snapshotLocked(completed), apperr.Persistence("start session", err)
	}
	if err != nil {
		c.publishLocked(completed)
		return c.snapshotLocked(completed), apperr.Persistence("start session", err)
	}

	c.active = ts
	c.log.Info("tracking started", "session", ts.ID, "category", ts.CategoryName)
	c.publishLocked(completed)
	return c.snapshotLocked(completed), nil
}

// Stop completes the active session.
func (c *Controller) Stop(ctx context.Context) (*store.TimeSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return nil, apperr.Invalid("session", "nothing is being tracked")
	}
	done, err := c.stopLocked(ctx)
	if err != nil {
		return nil, err
	}
	c.publishLocked(done)
	return done, nil
}

func (c *Controller) stopLocked(ctx context.Context) (*store.TimeSession, error) {
	done, err := c.repo.CompleteSession(ctx, c.uid, c.active.ID, c.now())
	if apperr.IsNotFound(err) || apperr.IsValidation(err) {
		// Stopped or removed elsewhere; local state is stale.
		c.active = nil
		c.publishLocked(nil)
		return nil, err
	}
	if err != nil {
		return nil, apperr.Persistence("stop session", err)
	}
	c.active = nil
	c.log.Info("tracking stopped", "session", done.ID, "category", done.CategoryName, "duration_ms", *done.Duration)
	return done, nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return Idle
	}
	return Tracking
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(nil)
}

func (c *Controller) snapshotLocked(completed *store.TimeSession) Snapshot {
	snap := Snapshot{State: Idle, Completed: completed}
	if c.active != nil {
		a := *c.active
		snap.State = Tracking
		snap.Active = &a
	}
	return snap
}

// Elapsed returns the running time of the active session at now, or zero
// when idle.
func (c *Controller) Elapsed(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return 0
	}
	return c.active.Elapsed(now)
}

// Subscribe returns a channel that receives a snapshot after every state
// change. A subscriber that falls behind only sees the latest snapshot.
// The returned func unsubscribes and closes the channel.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	ch := make(chan Snapshot, 1)
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs, id)
			close(ch)
		})
	}
}

func (c *Controller) publishLocked(completed *store.TimeSession) {
	snap := c.snapshotLocked(completed)
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

// Recent returns the latest completed sessions, newest first.
func (c *Controller) Recent(ctx context.Context, limit int) ([]store.TimeSession, error) {
	sessions, err := c.repo.ListSessions(ctx, c.uid, store.SessionFilter{
		Status: store.StatusCompleted,
		Limit:  limit,
	})
	if err != nil {
		return nil, apperr.Persistence("list recent sessions", err)
	}
	return sessions, nil
}

func (c *Controller) UpdateNotes(ctx context.Context, sessionID, notes string) error {
	return apperr.Persistence("update notes", c.repo.UpdateSessionNotes(ctx, c.uid, sessionID, notes))
}

func (c *Controller) UpdateTags(ctx context.Context, sessionID string, tags []string) error {
	return apperr.Persistence("update tags", c.repo.UpdateSessionTags(ctx, c.uid, sessionID, tags))
}

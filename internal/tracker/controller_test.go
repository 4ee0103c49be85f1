package tracker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sadopc/dailyschedule/internal/apperr"
	"github.com/sadopc/dailyschedule/internal/store"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestController(t *testing.T) (*Controller, *store.Store, *clock) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	clk := &clock{t: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	c := New(s, "ada", quiet)
	c.SetClock(clk.now)
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	return c, s, clk
}

var (
	catA = store.Category{ID: "a", Name: "Reading", Kind: store.KindSub}
	catB = store.Category{ID: "b", Name: "Gym", Kind: store.KindSub}
)

// ============================================================
// State machine
// ============================================================

func TestStartsIdle(t *testing.T) {
	c, _, _ := newTestController(t)
	if c.State() != Idle {
		t.Fatalf("expected idle, got %v", c.State())
	}
	if c.Elapsed(time.Now()) != 0 {
		t.Fatal("idle controller should report zero elapsed")
	}
}

func TestSelectStartsTracking(t *testing.T) {
	c, _, clk := newTestController(t)
	snap, err := c.SelectCategory(context.Background(), catA)
	if err != nil {
		t.Fatal(err)
	}
	if snap.State != Tracking || snap.Active == nil {
		t.Fatalf("expected tracking snapshot, got %+v", snap)
	}
	if snap.Active.CategoryID != "a" || snap.Active.CategoryName != "Reading" {
		t.Fatalf("session bound to wrong category: %+v", snap.Active)
	}
	if !snap.Active.StartTime.Equal(clk.t) {
		t.Fatalf("start = %v, want %v", snap.Active.StartTime, clk.t)
	}
	if snap.Completed != nil {
		t.Fatal("nothing should be completed on first start")
	}
}

func TestSelectSameCategoryStops(t *testing.T) {
	c, s, clk := newTestController(t)
	ctx := context.Background()
	c.SelectCategory(ctx, catA)
	clk.advance(25 * time.Minute)

	snap, err := c.SelectCategory(ctx, catA)
	if err != nil {
		t.Fatal(err)
	}
	if snap.State != Idle || snap.Active != nil {
		t.Fatalf("expected idle, got %+v", snap)
	}
	if snap.Completed == nil || *snap.Completed.Duration != (25*time.Minute).Milliseconds() {
		t.Fatalf("expected a 25m completed session, got %+v", snap.Completed)
	}
	active, _ := s.ActiveSessions(ctx, "ada")
	if len(active) != 0 {
		t.Fatal("store should have no active session")
	}
}

func TestSwitchCategory(t *testing.T) {
	c, s, clk := newTestController(t)
	ctx := context.Background()
	c.SelectCategory(ctx, catA)
	clk.advance(10 * time.Minute)

	snap, err := c.SelectCategory(ctx, catB)
	if err != nil {
		t.Fatal(err)
	}
	if snap.State != Tracking || snap.Active.CategoryID != "b" {
		t.Fatalf("expected tracking B, got %+v", snap)
	}

	completed, _ := s.ListSessions(ctx, "ada", store.SessionFilter{Status: store.StatusCompleted})
	if len(completed) != 1 || completed[0].CategoryID != "a" {
		t.Fatalf("expected exactly one completed session for A, got %+v", completed)
	}
	if *completed[0].Duration <= 0 {
		t.Fatal("A should have a positive duration")
	}
	active, _ := s.ActiveSessions(ctx, "ada")
	if len(active) != 1 || active[0].CategoryID != "b" {
		t.Fatalf("expected exactly one active session for B, got %+v", active)
	}
}

func TestStop(t *testing.T) {
	c, _, clk := newTestController(t)
	ctx := context.Background()
	c.SelectCategory(ctx, catA)
	clk.advance(time.Minute)

	done, err := c.Stop(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if done.Status != store.StatusCompleted {
		t.Fatal("stopped session should be completed")
	}
	if c.State() != Idle {
		t.Fatal("expected idle after stop")
	}
	if _, err := c.Stop(ctx); !apperr.IsValidation(err) {
		t.Fatalf("stop while idle should be a validation error, got %v", err)
	}
}

func TestSelectRequiresCategory(t *testing.T) {
	c, _, _ := newTestController(t)
	if _, err := c.SelectCategory(context.Background(), store.Category{}); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestElapsed(t *testing.T) {
	c, _, clk := newTestController(t)
	c.SelectCategory(context.Background(), catA)
	if got := c.Elapsed(clk.t.Add(90 * time.Second)); got != 90*time.Second {
		t.Fatalf("elapsed = %v", got)
	}
	if got := c.Elapsed(clk.t.Add(-time.Minute)); got != 0 {
		t.Fatalf("elapsed before start should be 0, got %v", got)
	}
}

// ============================================================
// Loading and conflicts
// ============================================================

func TestLoadAdoptsActiveSession(t *testing.T) {
	c, s, clk := newTestController(t)
	ctx := context.Background()
	c.SelectCategory(ctx, catA)

	other := New(s, "ada", quiet)
	other.SetClock(clk.now)
	if err := other.Load(ctx); err != nil {
		t.Fatal(err)
	}
	snap := other.Snapshot()
	if snap.State != Tracking || snap.Active.CategoryID != "a" {
		t.Fatalf("second controller should adopt the active session, got %+v", snap)
	}
}

func TestStaleControllerConflict(t *testing.T) {
	c, s, clk := newTestController(t)
	ctx := context.Background()

	stale := New(s, "ada", quiet)
	stale.SetClock(clk.now)
	stale.Load(ctx)

	c.SelectCategory(ctx, catA)

	_, err := stale.SelectCategory(ctx, catB)
	if !errors.Is(err, store.ErrActiveSessionExists) {
		t.Fatalf("expected active session conflict, got %v", err)
	}
	snap := stale.Snapshot()
	if snap.State != Tracking || snap.Active.CategoryID != "a" {
		t.Fatalf("stale controller should adopt the winner, got %+v", snap)
	}
	active, _ := s.ActiveSessions(ctx, "ada")
	if len(active) != 1 {
		t.Fatalf("never two active sessions, got %d", len(active))
	}
}

func TestSwitchAfterExternalStop(t *testing.T) {
	c, s, clk := newTestController(t)
	ctx := context.Background()
	c.SelectCategory(ctx, catA)

	other := New(s, "ada", quiet)
	other.SetClock(clk.now)
	other.Load(ctx)
	clk.advance(5 * time.Minute)
	if _, err := other.Stop(ctx); err != nil {
		t.Fatal(err)
	}

	snap, err := c.SelectCategory(ctx, catB)
	if err != nil {
		t.Fatalf("switch after external stop should succeed, got %v", err)
	}
	if snap.State != Tracking || snap.Active.CategoryID != "b" {
		t.Fatalf("expected tracking B, got %+v", snap)
	}
	active, _ := s.ActiveSessions(ctx, "ada")
	if len(active) != 1 || active[0].CategoryID != "b" {
		t.Fatalf("expected one active session for B, got %+v", active)
	}
}

func TestReselectAfterExternalStop(t *testing.T) {
	c, s, clk := newTestController(t)
	ctx := context.Background()
	c.SelectCategory(ctx, catA)

	other := New(s, "ada", quiet)
	other.SetClock(clk.now)
	other.Load(ctx)
	other.Stop(ctx)

	snap, err := c.SelectCategory(ctx, catA)
	if err != nil {
		t.Fatalf("reselect after external stop should not fail, got %v", err)
	}
	if snap.State != Idle || snap.Active != nil {
		t.Fatalf("expected idle, got %+v", snap)
	}
	active, _ := s.ActiveSessions(ctx, "ada")
	if len(active) != 0 {
		t.Fatalf("nothing should be started, got %+v", active)
	}
}

// memRepo is an in-memory Repository that, unlike the SQLite store, does
// not enforce a single active session.
type memRepo struct {
	sessions []store.TimeSession
	failNext error
}

func (m *memRepo) StartSession(_ context.Context, ts store.TimeSession) (*store.TimeSession, error) {
	if err := m.failNext; err != nil {
		m.failNext = nil
		return nil, err
	}
	ts.ID = ts.CategoryID + "-" + ts.StartTime.Format("150405")
	ts.Status = store.StatusActive
	m.sessions = append(m.sessions, ts)
	return &ts, nil
}

func (m *memRepo) CompleteSession(_ context.Context, _, id string, end time.Time) (*store.TimeSession, error) {
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			d := end.Sub(m.sessions[i].StartTime).Milliseconds()
			if d < 0 {
				d = 0
			}
			m.sessions[i].Status = store.StatusCompleted
			m.sessions[i].EndTime = &end
			m.sessions[i].Duration = &d
			out := m.sessions[i]
			return &out, nil
		}
	}
	return nil, apperr.NotFound("session", id)
}

func (m *memRepo) ActiveSessions(context.Context, string) ([]store.TimeSession, error) {
	var out []store.TimeSession
	for i := len(m.sessions) - 1; i >= 0; i-- {
		if m.sessions[i].Status == store.StatusActive {
			out = append(out, m.sessions[i])
		}
	}
	return out, nil
}

func (m *memRepo) ListSessions(context.Context, string, store.SessionFilter) ([]store.TimeSession, error) {
	return m.sessions, nil
}

func (m *memRepo) UpdateSessionNotes(context.Context, string, string, string) error { return nil }

func (m *memRepo) UpdateSessionTags(context.Context, string, string, []string) error { return nil }

func TestLoadReconcilesMultipleActive(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo := &memRepo{sessions: []store.TimeSession{
		{ID: "old", CategoryID: "a", StartTime: base, Status: store.StatusActive},
		{ID: "new", CategoryID: "b", StartTime: base.Add(time.Hour), Status: store.StatusActive},
	}}
	c := New(repo, "ada", quiet)
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	snap := c.Snapshot()
	if snap.Active == nil || snap.Active.ID != "new" {
		t.Fatalf("newest session should stay active, got %+v", snap.Active)
	}
	old := repo.sessions[0]
	if old.Status != store.StatusCompleted || *old.Duration != time.Hour.Milliseconds() {
		t.Fatalf("older session should be closed at the newer start, got %+v", old)
	}
}

func TestFailedStartLeavesStateUnchanged(t *testing.T) {
	repo := &memRepo{failNext: errors.New("connection reset")}
	c := New(repo, "ada", quiet)
	c.Load(context.Background())

	_, err := c.SelectCategory(context.Background(), catA)
	if !apperr.IsPersistence(err) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if c.State() != Idle {
		t.Fatal("failed write must not change local state")
	}
}

// ============================================================
// Subscriptions
// ============================================================

func TestSubscribeReceivesSnapshots(t *testing.T) {
	c, _, _ := newTestController(t)
	ch, cancel := c.Subscribe()
	defer cancel()

	c.SelectCategory(context.Background(), catA)
	snap := <-ch
	if snap.State != Tracking {
		t.Fatalf("expected tracking snapshot, got %v", snap.State)
	}
}

func TestSlowSubscriberSeesLatest(t *testing.T) {
	c, _, clk := newTestController(t)
	ctx := context.Background()
	ch, cancel := c.Subscribe()
	defer cancel()

	c.SelectCategory(ctx, catA)
	clk.advance(time.Minute)
	c.SelectCategory(ctx, catB)
	clk.advance(time.Minute)
	c.Stop(ctx)

	snap := <-ch
	if snap.State != Idle || snap.Completed == nil || snap.Completed.CategoryID != "b" {
		t.Fatalf("expected only the latest snapshot, got %+v", snap)
	}
	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra snapshot %+v", extra)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	c, _, _ := newTestController(t)
	ch, cancel := c.Subscribe()
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed")
	}
	// Publishing after unsubscribe must not panic.
	c.SelectCategory(context.Background(), catA)
}

// ============================================================
// Recent sessions
// ============================================================

func TestRecentAndNotes(t *testing.T) {
	c, s, clk := newTestController(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		c.SelectCategory(ctx, catA)
		clk.advance(time.Minute)
		c.Stop(ctx)
		clk.advance(time.Minute)
	}

	recent, err := c.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 recent sessions, got %d", len(recent))
	}
	if err := c.UpdateNotes(ctx, recent[0].ID, "good focus"); err != nil {
		t.Fatal(err)
	}
	if err := c.UpdateTags(ctx, recent[0].ID, []string{"deep"}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetSession(ctx, "ada", recent[0].ID)
	if got.Notes != "good focus" || len(got.Tags) != 1 {
		t.Fatalf("notes/tags not stored: %+v", got)
	}
}

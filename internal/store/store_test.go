package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sadopc/dailyschedule/internal/apperr"
)

const testUID = "ada"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func mainCategory(uid, key, name string) Category {
	return Category{UID: uid, Key: key, Name: name, Color: "#10B981", Icon: "work", Kind: KindMain, Active: true}
}

func subCategory(uid, key, name, parent string) Category {
	return Category{UID: uid, Key: key, Name: name, Color: "#3B82F6", Icon: "default", Kind: KindSub,
		ParentKey: strPtr(parent), Active: true}
}

// insertCompleted is a test helper that records a completed session of the
// given length starting at start.
func insertCompleted(t *testing.T, s *Store, categoryID string, start time.Time, length time.Duration) *TimeSession {
	t.Helper()
	ctx := context.Background()
	ts, err := s.StartSession(ctx, TimeSession{UID: testUID, CategoryID: categoryID, StartTime: start})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	done, err := s.CompleteSession(ctx, testUID, ts.ID, start.Add(length))
	if err != nil {
		t.Fatalf("complete session: %v", err)
	}
	return done
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/dailyschedule.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen — should succeed and not re-migrate
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestPragmasConfigured(t *testing.T) {
	s := newTestStore(t)

	var fk int
	s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Categories
// ============================================================

func TestInsertAndGetCategory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.InsertCategory(ctx, subCategory(testUID, "cat_1", "Reading", "predefined-study-learning"))
	if err != nil {
		t.Fatal(err)
	}
	if c.ID == "" {
		t.Fatal("expected generated ID")
	}
	if c.Name != "Reading" || c.Kind != KindSub || c.Parent() != "predefined-study-learning" {
		t.Fatalf("unexpected category: %+v", c)
	}
	if c.TotalTimeSpent != 0 || c.TotalSessions != 0 {
		t.Fatal("new category should start with zero totals")
	}
	if c.CreatedAt.IsZero() {
		t.Fatal("CreatedAt should be set")
	}

	byKey, err := s.GetCategoryByKey(ctx, testUID, "cat_1")
	if err != nil {
		t.Fatal(err)
	}
	if byKey.ID != c.ID {
		t.Fatalf("lookup by key returned %s, want %s", byKey.ID, c.ID)
	}
}

func TestMainCategoryHasNoParent(t *testing.T) {
	s := newTestStore(t)
	c, err := s.InsertCategory(context.Background(), mainCategory(testUID, "main_x", "Hobbies"))
	if err != nil {
		t.Fatal(err)
	}
	if c.ParentKey != nil {
		t.Fatalf("main category should have nil parent, got %q", *c.ParentKey)
	}
	if !c.IsMain() {
		t.Fatal("expected main kind")
	}
}

func TestEnsureCategoryIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := mainCategory(testUID, "predefined-work-income", "Work / Income")

	first, err := s.EnsureCategory(ctx, c)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.EnsureCategory(ctx, c)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Fatalf("second ensure created a new record: %s vs %s", first.ID, second.ID)
	}

	all, _ := s.ListCategories(ctx, testUID, false)
	if len(all) != 1 {
		t.Fatalf("expected 1 persisted category, got %d", len(all))
	}
}

func TestEnsureCategoryPerUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a, _ := s.EnsureCategory(ctx, mainCategory("ada", "predefined-work-income", "Work"))
	b, _ := s.EnsureCategory(ctx, mainCategory("bob", "predefined-work-income", "Work"))
	if a.ID == b.ID {
		t.Fatal("users should get separate records for the same key")
	}
}

func TestSubCategoryDuplicateNameRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.InsertCategory(ctx, subCategory(testUID, "cat_1", "Reading", "p1")); err != nil {
		t.Fatal(err)
	}
	_, err := s.InsertCategory(ctx, subCategory(testUID, "cat_2", "reading", "p1"))
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for case-insensitive duplicate, got %v", err)
	}
}

func TestSubCategorySameNameDifferentParents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.InsertCategory(ctx, subCategory(testUID, "cat_1", "Reading", "p1")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.InsertCategory(ctx, subCategory(testUID, "cat_2", "Reading", "p2")); err != nil {
		t.Fatalf("same name under another parent should be allowed: %v", err)
	}
}

func TestGetCategoryNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetCategory(context.Background(), testUID, "missing")
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListCategoriesScopedAndFiltered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.InsertCategory(ctx, subCategory(testUID, "cat_1", "Reading", "p1"))
	inactive := subCategory(testUID, "cat_2", "Old", "p1")
	inactive.Active = false
	s.InsertCategory(ctx, inactive)
	s.InsertCategory(ctx, subCategory("bob", "cat_3", "Bob's", "p1"))

	all, err := s.ListCategories(ctx, testUID, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 categories for user, got %d", len(all))
	}
	active, _ := s.ListCategories(ctx, testUID, true)
	if len(active) != 1 || active[0].Name != "Reading" {
		t.Fatalf("expected only active Reading, got %+v", active)
	}
}

func TestListCategoriesEmpty(t *testing.T) {
	s := newTestStore(t)
	categories, err := s.ListCategories(context.Background(), testUID, false)
	if err != nil {
		t.Fatal(err)
	}
	if categories != nil {
		t.Fatalf("expected nil slice, got %d items", len(categories))
	}
}

func TestUpdateCategory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c, _ := s.InsertCategory(ctx, subCategory(testUID, "cat_1", "Reading", "p1"))

	c.Name = "Deep Reading"
	c.Color = "#EF4444"
	c.ParentKey = strPtr("p2")
	updated, err := s.UpdateCategory(ctx, *c)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "Deep Reading" || updated.Color != "#EF4444" || updated.Parent() != "p2" {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.Key != "cat_1" {
		t.Fatal("stable key must not change on update")
	}
}

func TestUpdateCategoryNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.UpdateCategory(context.Background(), subCategory(testUID, "cat_1", "x", "p1"))
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteCategoryKeepsSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c, _ := s.InsertCategory(ctx, subCategory(testUID, "cat_1", "Reading", "p1"))
	insertCompleted(t, s, c.ID, time.Now().Add(-time.Hour), 30*time.Minute)

	if err := s.DeleteCategory(ctx, testUID, c.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetCategory(ctx, testUID, c.ID); !apperr.IsNotFound(err) {
		t.Fatal("category should be gone")
	}
	sessions, _ := s.ListSessions(ctx, testUID, SessionFilter{})
	if len(sessions) != 1 {
		t.Fatalf("historical session should survive deletion, got %d", len(sessions))
	}
	if err := s.DeleteCategory(ctx, testUID, c.ID); !apperr.IsNotFound(err) {
		t.Fatalf("second delete should report not found, got %v", err)
	}
}

// ============================================================
// Schedules
// ============================================================

func sampleSchedule(start, end string, days ...int) Schedule {
	return Schedule{
		UID: testUID, CategoryID: "c1", CategoryName: "Reading", Title: "Morning read",
		StartTime: start, EndTime: end, Days: days, Recurring: true, Active: true, Priority: PriorityMedium,
	}
}

func TestInsertAndGetSchedule(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sc := sampleSchedule("09:00", "10:30", 1, 3, 5)
	sc.EstimatedDuration = 90 * 60 * 1000

	got, err := s.InsertSchedule(ctx, sc)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID == "" || got.Key == "" {
		t.Fatal("expected generated ID and key")
	}
	if len(got.Days) != 3 || got.Days[0] != 1 || got.Days[2] != 5 {
		t.Fatalf("days not round-tripped: %v", got.Days)
	}
	if got.Priority != PriorityMedium || !got.Recurring || !got.Active {
		t.Fatalf("flags not round-tripped: %+v", got)
	}
	if got.EstimatedDuration != 90*60*1000 {
		t.Fatalf("estimated duration = %d", got.EstimatedDuration)
	}
	if !got.HasDay(3) || got.HasDay(2) {
		t.Fatal("HasDay mismatch")
	}
}

func TestListSchedulesOrderedByStart(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.InsertSchedule(ctx, sampleSchedule("14:00", "15:00", 1))
	s.InsertSchedule(ctx, sampleSchedule("08:30", "09:00", 1))
	off := sampleSchedule("07:00", "08:00", 1)
	off.Active = false
	s.InsertSchedule(ctx, off)

	all, err := s.ListSchedules(ctx, testUID, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].StartTime != "07:00" || all[2].StartTime != "14:00" {
		t.Fatalf("unexpected order: %+v", all)
	}
	active, _ := s.ListSchedules(ctx, testUID, true)
	if len(active) != 2 {
		t.Fatalf("expected 2 active schedules, got %d", len(active))
	}
}

func TestUpdateAndToggleSchedule(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sc, _ := s.InsertSchedule(ctx, sampleSchedule("09:00", "10:00", 1))

	sc.Title = "Evening read"
	sc.Days = []int{6, 7}
	updated, err := s.UpdateSchedule(ctx, *sc)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Title != "Evening read" || len(updated.Days) != 2 {
		t.Fatalf("update not applied: %+v", updated)
	}

	if err := s.SetScheduleActive(ctx, testUID, sc.ID, false); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetSchedule(ctx, testUID, sc.ID)
	if got.Active {
		t.Fatal("schedule should be inactive")
	}
	if got.Title != "Evening read" {
		t.Fatal("toggle must not touch other fields")
	}
}

func TestDeleteSchedule(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sc, _ := s.InsertSchedule(ctx, sampleSchedule("09:00", "10:00", 1))
	if err := s.DeleteSchedule(ctx, testUID, sc.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetSchedule(ctx, testUID, sc.ID); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := s.SetScheduleActive(ctx, testUID, sc.ID, true); !apperr.IsNotFound(err) {
		t.Fatalf("toggle on missing schedule should be not found, got %v", err)
	}
}

// ============================================================
// Sessions
// ============================================================

func TestStartAndCompleteSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	ts, err := s.StartSession(ctx, TimeSession{UID: testUID, CategoryID: "c1", CategoryName: "Reading", StartTime: start})
	if err != nil {
		t.Fatal(err)
	}
	if ts.Status != StatusActive || ts.EndTime != nil || ts.Duration != nil {
		t.Fatalf("new session should be active without end/duration: %+v", ts)
	}
	if ts.TrackingID == "" {
		t.Fatal("tracking id should be generated")
	}
	if ts.Tags == nil {
		t.Fatal("tags should decode to an empty slice")
	}

	end := start.Add(25*time.Minute + 1500*time.Millisecond)
	done, err := s.CompleteSession(ctx, testUID, ts.ID, end)
	if err != nil {
		t.Fatal(err)
	}
	if done.Status != StatusCompleted || done.EndTime == nil || done.Duration == nil {
		t.Fatalf("completed session missing fields: %+v", done)
	}
	if want := done.EndTime.Sub(done.StartTime).Milliseconds(); *done.Duration != want {
		t.Fatalf("duration = %d, want end-start = %d", *done.Duration, want)
	}
	if *done.Duration != 1501500 {
		t.Fatalf("duration = %d, want 1501500", *done.Duration)
	}
}

func TestCompleteSessionNeverNegative(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	ts, _ := s.StartSession(ctx, TimeSession{UID: testUID, CategoryID: "c1", StartTime: start})

	done, err := s.CompleteSession(ctx, testUID, ts.ID, start.Add(-time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if *done.Duration != 0 {
		t.Fatalf("clock skew should clamp to 0, got %d", *done.Duration)
	}
}

func TestSecondActiveSessionRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.StartSession(ctx, TimeSession{UID: testUID, CategoryID: "c1"}); err != nil {
		t.Fatal(err)
	}
	_, err := s.StartSession(ctx, TimeSession{UID: testUID, CategoryID: "c2"})
	if !errors.Is(err, ErrActiveSessionExists) {
		t.Fatalf("expected ErrActiveSessionExists, got %v", err)
	}
	// Another user is unaffected.
	if _, err := s.StartSession(ctx, TimeSession{UID: "bob", CategoryID: "c1"}); err != nil {
		t.Fatalf("other user should be able to start: %v", err)
	}
}

func TestCompleteSessionTwiceRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ts, _ := s.StartSession(ctx, TimeSession{UID: testUID, CategoryID: "c1"})
	if _, err := s.CompleteSession(ctx, testUID, ts.ID, time.Now()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CompleteSession(ctx, testUID, ts.ID, time.Now()); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCompleteSessionNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CompleteSession(context.Background(), testUID, "nope", time.Now())
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCompleteSessionUpdatesCategoryTotals(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c, _ := s.InsertCategory(ctx, subCategory(testUID, "cat_1", "Reading", "p1"))
	start := time.Now().Add(-2 * time.Hour)
	insertCompleted(t, s, c.ID, start, 30*time.Minute)
	insertCompleted(t, s, c.ID, start.Add(time.Hour), 15*time.Minute)

	got, _ := s.GetCategory(ctx, testUID, c.ID)
	if got.TotalSessions != 2 {
		t.Fatalf("total sessions = %d, want 2", got.TotalSessions)
	}
	if got.TotalTimeSpent != (45 * time.Minute).Milliseconds() {
		t.Fatalf("total time = %d", got.TotalTimeSpent)
	}
}

func TestActiveSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	active, err := s.ActiveSessions(ctx, testUID)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Fatal("expected no active sessions")
	}
	s.StartSession(ctx, TimeSession{UID: testUID, CategoryID: "c1"})
	active, _ = s.ActiveSessions(ctx, testUID)
	if len(active) != 1 {
		t.Fatalf("expected 1 active session, got %d", len(active))
	}
}

func TestListSessionsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	insertCompleted(t, s, "c1", base, 10*time.Minute)
	insertCompleted(t, s, "c2", base.Add(time.Hour), 10*time.Minute)
	insertCompleted(t, s, "c1", base.Add(2*time.Hour), 10*time.Minute)
	s.StartSession(ctx, TimeSession{UID: testUID, CategoryID: "c1", StartTime: base.Add(3 * time.Hour)})

	all, _ := s.ListSessions(ctx, testUID, SessionFilter{})
	if len(all) != 4 {
		t.Fatalf("expected 4 sessions, got %d", len(all))
	}
	if !all[0].StartTime.After(all[1].StartTime) {
		t.Fatal("sessions should be newest first")
	}

	completed, _ := s.ListSessions(ctx, testUID, SessionFilter{Status: StatusCompleted})
	if len(completed) != 3 {
		t.Fatalf("expected 3 completed, got %d", len(completed))
	}

	byCat, _ := s.ListSessions(ctx, testUID, SessionFilter{CategoryID: "c1"})
	if len(byCat) != 3 {
		t.Fatalf("expected 3 for c1, got %d", len(byCat))
	}

	from := base.Add(30 * time.Minute)
	to := base.Add(2 * time.Hour)
	ranged, _ := s.ListSessions(ctx, testUID, SessionFilter{From: &from, To: &to})
	if len(ranged) != 1 || ranged[0].CategoryID != "c2" {
		t.Fatalf("range should be half-open [from, to): %+v", ranged)
	}

	limited, _ := s.ListSessions(ctx, testUID, SessionFilter{Limit: 2})
	if len(limited) != 2 {
		t.Fatalf("expected 2 with limit, got %d", len(limited))
	}
}

func TestUpdateSessionNotesAndTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ts := insertCompleted(t, s, "c1", time.Now().Add(-time.Hour), time.Minute)

	if err := s.UpdateSessionNotes(ctx, testUID, ts.ID, "chapter 3"); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateSessionTags(ctx, testUID, ts.ID, []string{"book", "focus"}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetSession(ctx, testUID, ts.ID)
	if got.Notes != "chapter 3" || len(got.Tags) != 2 || got.Tags[1] != "focus" {
		t.Fatalf("notes/tags not saved: %+v", got)
	}
	if *got.Duration != *ts.Duration {
		t.Fatal("notes update must not change duration")
	}
	if err := s.UpdateSessionNotes(ctx, testUID, "missing", "x"); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTrackedBetween(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	insertCompleted(t, s, "c1", day.Add(9*time.Hour), 30*time.Minute)
	insertCompleted(t, s, "c1", day.Add(13*time.Hour), 15*time.Minute)
	insertCompleted(t, s, "c1", day.Add(-time.Hour), time.Hour)
	s.StartSession(ctx, TimeSession{UID: testUID, CategoryID: "c1", StartTime: day.Add(20 * time.Hour)})

	total, err := s.TrackedBetween(ctx, testUID, day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if total != (45 * time.Minute).Milliseconds() {
		t.Fatalf("total = %d, want 45m in ms", total)
	}
}

func TestTrackedBetweenEmpty(t *testing.T) {
	s := newTestStore(t)
	total, err := s.TrackedBetween(context.Background(), testUID, time.Now().Add(-time.Hour), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Fatalf("expected 0, got %d", total)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	defaults := map[string]string{
		"analytics_range": "week",
		"clock_format":    "12h",
		"confirm_delete":  "true",
		"daily_goal":      "28800",
		"recent_limit":    "10",
		"week_start":      "monday",
	}
	for k, want := range defaults {
		got, err := s.GetSetting(ctx, k)
		if err != nil {
			t.Fatalf("get %s: %v", k, err)
		}
		if got != want {
			t.Fatalf("setting %s = %q, want %q", k, got, want)
		}
	}
}

func TestSetSettingOverwrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.SetSetting(ctx, "analytics_range", "month")
	s.SetSetting(ctx, "analytics_range", "year")
	v, _ := s.GetSetting(ctx, "analytics_range")
	if v != "year" {
		t.Fatalf("expected year, got %q", v)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetSetting(context.Background(), "nonexistent"); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSettingInt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if got := s.SettingInt(ctx, "recent_limit", 5); got != 10 {
		t.Fatalf("recent_limit = %d, want 10", got)
	}
	s.SetSetting(ctx, "recent_limit", "abc")
	if got := s.SettingInt(ctx, "recent_limit", 5); got != 5 {
		t.Fatalf("malformed value should fall back, got %d", got)
	}
	if got := s.SettingInt(ctx, "missing", 7); got != 7 {
		t.Fatalf("missing value should fall back, got %d", got)
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	settings, err := s.GetAllSettings(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(settings) != 6 {
		t.Fatalf("expected 6 default settings, got %d", len(settings))
	}
	for i := 1; i < len(settings); i++ {
		if settings[i].Key < settings[i-1].Key {
			t.Fatal("settings should be sorted by key")
		}
	}
}

func TestCloseStore(t *testing.T) {
	s, _ := NewMemory()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ListCategories(context.Background(), testUID, false); err == nil {
		t.Fatal("expected error after close")
	}
}

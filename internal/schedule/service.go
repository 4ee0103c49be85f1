// Package schedule manages recurring weekly time blocks bound to a
// category.
package schedule

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sadopc/dailyschedule/internal/apperr"
	"github.com/sadopc/dailyschedule/internal/store"
)

// Repository is the persistence the service needs. *store.Store satisfies it.
type Repository interface {
	InsertSchedule(ctx context.Context, sc store.Schedule) (*store.Schedule, error)
	GetSchedule(ctx context.Context, uid, id string) (*store.Schedule, error)
	ListSchedules(ctx context.Context, uid string, activeOnly bool) ([]store.Schedule, error)
	UpdateSchedule(ctx context.Context, sc store.Schedule) (*store.Schedule, error)
	SetScheduleActive(ctx context.Context, uid, id string, active bool) error
	DeleteSchedule(ctx context.Context, uid, id string) error
}

// CategoryLookup resolves the category a schedule is bound to.
type CategoryLookup interface {
	Lookup(ctx context.Context, id string) (*store.Category, error)
}

type Service struct {
	repo       Repository
	categories CategoryLookup
	uid        string
}

func NewService(repo Repository, categories CategoryLookup, uid string) *Service {
	return &Service{repo: repo, categories: categories, uid: uid}
}

// Input holds the form fields of a schedule.
type Input struct {
	CategoryID  string
	Title       string
	Description string
	StartTime   string
	EndTime     string
	Days        []int
	Recurring   bool
	Priority    store.Priority
}

// Create validates in and stores a new, active schedule.
func (s *Service) Create(ctx context.Context, in Input) (*store.Schedule, error) {
	sc, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	sc.UID = s.uid
	sc.Active = true
	created, err := s.repo.InsertSchedule(ctx, *sc)
	if err != nil {
		return nil, apperr.Persistence("create schedule", err)
	}
	return created, nil
}

// Update replaces the form fields of schedule id. The active flag is kept.
func (s *Service) Update(ctx context.Context, id string, in Input) (*store.Schedule, error) {
	existing, err := s.repo.GetSchedule(ctx, s.uid, id)
	if err != nil {
		return nil, apperr.Persistence("get schedule", err)
	}
	sc, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	sc.ID = existing.ID
	sc.UID = existing.UID
	sc.Key = existing.Key
	sc.Active = existing.Active
	updated, err := s.repo.UpdateSchedule(ctx, *sc)
	if err != nil {
		return nil, apperr.Persistence("update schedule", err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return apperr.Persistence("delete schedule", s.repo.DeleteSchedule(ctx, s.uid, id))
}

// ToggleActive flips the active flag of schedule id and returns the new
// state.
func (s *Service) ToggleActive(ctx context.Context, id string) (*store.Schedule, error) {
	sc, err := s.repo.GetSchedule(ctx, s.uid, id)
	if err != nil {
		return nil, apperr.Persistence("get schedule", err)
	}
	if err := s.repo.SetScheduleActive(ctx, s.uid, id, !sc.Active); err != nil {
		return nil, apperr.Persistence("toggle schedule", err)
	}
	sc.Active = !sc.Active
	return sc, nil
}

// List returns every schedule ordered by start time.
func (s *Service) List(ctx context.Context) ([]store.Schedule, error) {
	all, err := s.repo.ListSchedules(ctx, s.uid, false)
	if err != nil {
		return nil, apperr.Persistence("list schedules", err)
	}
	sortByStart(all)
	return all, nil
}

// ForWeekday returns the active schedules that occur on the ISO weekday,
// ordered by start time. Non-recurring schedules match on their weekdays
// every week, the same as recurring ones.
func (s *Service) ForWeekday(ctx context.Context, weekday int) ([]store.Schedule, error) {
	if weekday < 1 || weekday > 7 {
		return nil, apperr.Invalid("weekday", "weekday %d out of range 1-7", weekday)
	}
	active, err := s.repo.ListSchedules(ctx, s.uid, true)
	if err != nil {
		return nil, apperr.Persistence("list schedules", err)
	}
	return filterWeekday(active, weekday), nil
}

// Today returns the schedules for the weekday of now.
func (s *Service) Today(ctx context.Context, now time.Time) ([]store.Schedule, error) {
	return s.ForWeekday(ctx, Weekday(now))
}

func filterWeekday(schedules []store.Schedule, weekday int) []store.Schedule {
	var out []store.Schedule
	for _, sc := range schedules {
		if sc.Active && sc.HasDay(weekday) {
			out = append(out, sc)
		}
	}
	sortByStart(out)
	return out
}

func sortByStart(schedules []store.Schedule) {
	sort.SliceStable(schedules, func(i, j int) bool {
		a, _ := ParseTimeOfDay(schedules[i].StartTime)
		b, _ := ParseTimeOfDay(schedules[j].StartTime)
		return a < b
	})
}

func (s *Service) build(ctx context.Context, in Input) (*store.Schedule, error) {
	if strings.TrimSpace(in.CategoryID) == "" {
		return nil, apperr.Invalid("category", "category is required")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Invalid("title", "title is required")
	}
	days, err := normalizeDays(in.Days)
	if err != nil {
		return nil, err
	}
	start, err := ParseTimeOfDay(in.StartTime)
	if err != nil {
		return nil, apperr.Invalid("startTime", "%v", err)
	}
	end, err := ParseTimeOfDay(in.EndTime)
	if err != nil {
		return nil, apperr.Invalid("endTime", "%v", err)
	}
	priority := in.Priority
	if priority == 0 {
		priority = store.PriorityMedium
	}
	if !priority.Valid() {
		return nil, apperr.Invalid("priority", "priority must be 1, 2 or 3")
	}

	c, err := s.categories.Lookup(ctx, in.CategoryID)
	if apperr.IsNotFound(err) {
		return nil, apperr.Invalid("category", "category %q does not exist", in.CategoryID)
	}
	if err != nil {
		return nil, err
	}

	return &store.Schedule{
		CategoryID:        c.ID,
		CategoryName:      c.Name,
		Title:             title,
		Description:       strings.TrimSpace(in.Description),
		StartTime:         start.String(),
		EndTime:           end.String(),
		Days:              days,
		Recurring:         in.Recurring,
		Priority:          priority,
		EstimatedDuration: Span(start, end).Milliseconds(),
	}, nil
}

// normalizeDays validates an ISO weekday set and returns it sorted without
// duplicates.
func normalizeDays(days []int) ([]int, error) {
	if len(days) == 0 {
		return nil, apperr.Invalid("daysOfWeek", "pick at least one day")
	}
	seen := make(map[int]bool, len(days))
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d < 1 || d > 7 {
			return nil, apperr.Invalid("daysOfWeek", "day %d out of range 1-7", d)
		}
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Ints(out)
	return out, nil
}

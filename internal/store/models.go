package store

import "time"

type CategoryKind string

const (
	KindMain CategoryKind = "main"
	KindSub  CategoryKind = "sub"
)

// Category is either a top-level grouping (main) or a leaf grouping (sub)
// that time is tracked against. Key is the stable identifier that
// sub-categories reference through ParentKey.
type Category struct {
	ID             string       `json:"id"`
	UID            string       `json:"uid"`
	Key            string       `json:"categoryId"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	Color          string       `json:"color"`
	Icon           string       `json:"icon"`
	Kind           CategoryKind `json:"type"`
	ParentKey      *string      `json:"parentCategoryId"`
	Active         bool         `json:"isActive"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
	TotalTimeSpent int64        `json:"totalTimeSpent"` // milliseconds
	TotalSessions  int          `json:"totalSessions"`
}

func (c Category) IsMain() bool { return c.Kind == KindMain }

// Parent returns the parent key, or "" for main categories.
func (c Category) Parent() string {
	if c.ParentKey == nil {
		return ""
	}
	return *c.ParentKey
}

type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	}
	return "unknown"
}

func (p Priority) Valid() bool { return p >= PriorityLow && p <= PriorityHigh }

// Schedule is a recurring weekly time block bound to a category. Start and
// end are wall-clock "HH:MM" strings; Days holds ISO weekdays (1 = Monday).
type Schedule struct {
	ID                string    `json:"id"`
	UID               string    `json:"uid"`
	Key               string    `json:"scheduleId"`
	CategoryID        string    `json:"categoryId"`
	CategoryName      string    `json:"categoryName"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	StartTime         string    `json:"startTime"`
	EndTime           string    `json:"endTime"`
	Days              []int     `json:"daysOfWeek"`
	Recurring         bool      `json:"isRecurring"`
	Active            bool      `json:"isActive"`
	Priority          Priority  `json:"priority"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
	EstimatedDuration int64     `json:"estimatedDuration"` // milliseconds
}

// HasDay reports whether the schedule occurs on the ISO weekday.
func (s Schedule) HasDay(weekday int) bool {
	for _, d := range s.Days {
		if d == weekday {
			return true
		}
	}
	return false
}

type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusCompleted SessionStatus = "completed"
)

// TimeSession is one start-to-stop interval tracked against a category.
// Duration is only set once the session is completed.
type TimeSession struct {
	ID           string        `json:"id"`
	UID          string        `json:"uid"`
	TrackingID   string        `json:"trackingId"`
	CategoryID   string        `json:"categoryId"`
	CategoryName string        `json:"categoryName"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	StartTime    time.Time     `json:"startTime"`
	EndTime      *time.Time    `json:"endTime,omitempty"`
	Status       SessionStatus `json:"status"`
	Duration     *int64        `json:"duration,omitempty"` // milliseconds
	Notes        string        `json:"notes"`
	Tags         []string      `json:"tags"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

func (s TimeSession) Completed() bool { return s.Status == StatusCompleted }

// Elapsed returns the recorded duration for completed sessions and the
// running time up to now for active ones.
func (s TimeSession) Elapsed(now time.Time) time.Duration {
	if s.Duration != nil {
		return time.Duration(*s.Duration) * time.Millisecond
	}
	if d := now.Sub(s.StartTime); d > 0 {
		return d
	}
	return 0
}

type Setting struct {
	Key   string
	Value string
}

// SessionFilter is used to filter time sessions in queries.
type SessionFilter struct {
	Status     SessionStatus
	CategoryID string
	From       *time.Time
	To         *time.Time
	Limit      int
}

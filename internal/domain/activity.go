package domain

import (
	"context"
	"time"
)

// ActivityType is the closed set of activity kinds.
type ActivityType string

const (
	ActivityTalk        ActivityType = "talk"
	ActivityWorkshop    ActivityType = "workshop"
	ActivityCompetition ActivityType = "competition"
)

// Valid reports whether t is one of the known activity types.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityTalk, ActivityWorkshop, ActivityCompetition:
		return true
	}
	return false
}

// Activity represents a schedulable conference session.
// swagger:model Activity
type Activity struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Type        ActivityType `json:"type"`
	Speaker     string       `json:"speaker"`
	Location    string       `json:"location"`
	StartTime   time.Time    `json:"start_time"`
	EndTime     time.Time    `json:"end_time"`
	Capacity    int          `json:"capacity"`
	Published   bool         `json:"published"`
	Active      bool         `json:"active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// AvailableAt reports whether the activity accepts new enrollments at the
// given instant. Capacity is checked separately, under the enrollment
// transaction's row lock.
func (a *Activity) AvailableAt(now time.Time) bool {
	return a.Published && a.Active && now.Before(a.EndTime)
}

// InProgressAt reports whether the activity is running at the given instant.
func (a *Activity) InProgressAt(now time.Time) bool {
	return !now.Before(a.StartTime) && now.Before(a.EndTime)
}

// ActivityRepository defines the interface for activity storage.
type ActivityRepository interface {
	Create(ctx context.Context, activity *Activity) error
	GetByID(ctx context.Context, id string) (*Activity, error)
	ListPublished(ctx context.Context, params PaginationParams) ([]*Activity, int, error)
	SetFlags(ctx context.Context, id string, published, active bool) (*Activity, error)
}

// ActivityService defines catalog operations.
type ActivityService interface {
	Create(ctx context.Context, activity *Activity) (*Activity, error)
	GetByID(ctx context.Context, id string) (*Activity, error)
	ListPublished(ctx context.Context, params PaginationParams) ([]*Activity, int, error)
	SetFlags(ctx context.Context, id string, published, active bool) (*Activity, error)
}

package domain

import (
	"context"
	"time"
)

// AttendanceStatus is the closed set of enrollment attendance states.
type AttendanceStatus string

const (
	AttendanceNotCheckedIn AttendanceStatus = "not_checked_in"
	AttendanceCheckedIn    AttendanceStatus = "checked_in"
)

// Enrollment represents a user's registration for one activity. At most one
// enrollment exists per (user, activity) pair; AttendedAt is set exactly when
// the status flips to checked_in and never changes afterwards.
// swagger:model Enrollment
type Enrollment struct {
	ID         string           `json:"id"`
	UserID     string           `json:"user_id"`
	ActivityID string           `json:"activity_id"`
	Status     AttendanceStatus `json:"status"`
	AttendedAt *time.Time       `json:"attended_at,omitempty"`
	TokenID    string           `json:"token_id"`
	Cancelled  bool             `json:"cancelled"`
	CreatedAt  time.Time        `json:"created_at"`
}

// NewEnrollment returns a not-checked-in Enrollment for the given pair.
func NewEnrollment(id, userID, activityID, tokenID string, createdAt time.Time) *Enrollment {
	return &Enrollment{
		ID:         id,
		UserID:     userID,
		ActivityID: activityID,
		Status:     AttendanceNotCheckedIn,
		TokenID:    tokenID,
		CreatedAt:  createdAt,
	}
}

// EnrollmentWithActivity bundles an enrollment with its activity and token,
// as returned by list queries ordered by activity start time.
type EnrollmentWithActivity struct {
	Enrollment *Enrollment `json:"enrollment"`
	Activity   *Activity   `json:"activity"`
	Token      *QrToken    `json:"token"`
}

// EnrollmentRepository defines storage operations for enrollments. Register
// persists the enrollment and its token as a single transaction; a partially
// created pair must never be observable.
type EnrollmentRepository interface {
	// Register locks the activity row, re-checks availability and capacity,
	// and inserts the enrollment together with its QR token. Returns
	// ErrNotFound, ErrActivityUnavailable, ErrActivityFull, or
	// ErrAlreadyEnrolled on the corresponding violations.
	Register(ctx context.Context, enrollment *Enrollment, token *QrToken, now time.Time) error
	GetByID(ctx context.Context, id string) (*Enrollment, error)
	GetByActivityAndUser(ctx context.Context, activityID, userID string) (*Enrollment, error)
	// ListForUser returns the user's enrollments joined with their activities
	// and tokens, ordered by activity start time ascending.
	ListForUser(ctx context.Context, userID string) ([]*EnrollmentWithActivity, error)
	CountActive(ctx context.Context, activityID string) (int, error)
	Cancel(ctx context.Context, id string) error
}

// ActivityRegistration is the per-activity outcome of a batch registration.
type ActivityRegistration struct {
	ActivityID string      `json:"activity_id"`
	Enrollment *Enrollment `json:"enrollment,omitempty"`
	Token      *QrToken    `json:"token,omitempty"`
	Err        error       `json:"-"`
}

// EnrollmentService defines attendee-facing registration operations.
type EnrollmentService interface {
	// Register enrolls the user in each of the given activities and reports a
	// per-activity outcome. A confirmation email is sent when at least one
	// registration succeeds.
	Register(ctx context.Context, userID string, activityIDs []string) ([]*ActivityRegistration, error)
	ListForUser(ctx context.Context, userID string) ([]*EnrollmentWithActivity, error)
	Cancel(ctx context.Context, userID, enrollmentID string) error
}

// CheckInResult is what a check-in station displays after a successful verify.
type CheckInResult struct {
	Enrollment *Enrollment `json:"enrollment"`
	User       *User       `json:"user"`
	Activity   *Activity   `json:"activity"`
}

// AttendanceService verifies QR tokens and marks attendance.
type AttendanceService interface {
	// Verify consumes the token and flips the enrollment to checked_in.
	// Fails with ErrNotFound, ErrTokenExpired, or ErrTokenAlreadyUsed;
	// concurrent calls on the same token succeed exactly once.
	Verify(ctx context.Context, tokenID string) (*CheckInResult, error)
}

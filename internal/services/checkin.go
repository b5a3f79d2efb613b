package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"conferencepass/internal/domain"
)

type checkinService struct {
	tokenRepo      domain.QrTokenRepository
	enrollmentRepo domain.EnrollmentRepository
	userRepo       domain.UserRepository
	activityRepo   domain.ActivityRepository
	now            func() time.Time
}

// NewCheckinService creates the AttendanceService backing the check-in stations.
func NewCheckinService(
	tokenRepo domain.QrTokenRepository,
	enrollmentRepo domain.EnrollmentRepository,
	userRepo domain.UserRepository,
	activityRepo domain.ActivityRepository,
) domain.AttendanceService {
	return &checkinService{
		tokenRepo:      tokenRepo,
		enrollmentRepo: enrollmentRepo,
		userRepo:       userRepo,
		activityRepo:   activityRepo,
		now:            time.Now,
	}
}

// Verify consumes the presented token and marks its enrollment checked in.
// Expiry is evaluated here against the service clock, not by a sweep, so an
// expired-but-unconsumed token always fails with ErrTokenExpired. The actual
// consumption is a conditional update in the repository, which is what makes
// concurrent presentations of the same token resolve to a single success.
func (s *checkinService) Verify(ctx context.Context, tokenID string) (*domain.CheckInResult, error) {
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return nil, fmt.Errorf("%w: missing token", domain.ErrInvalidInput)
	}

	token, err := s.tokenRepo.GetByTokenID(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if token.ExpiredAt(s.now()) {
		return nil, domain.ErrTokenExpired
	}
	if token.Consumed {
		return nil, domain.ErrTokenAlreadyUsed
	}

	enrollmentID, err := s.tokenRepo.Consume(ctx, tokenID, s.now())
	if err != nil {
		return nil, err
	}

	enrollment, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	user, err := s.userRepo.GetByID(ctx, enrollment.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	activity, err := s.activityRepo.GetByID(ctx, enrollment.ActivityID)
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}

	return &domain.CheckInResult{
		Enrollment: enrollment,
		User:       user,
		Activity:   activity,
	}, nil
}

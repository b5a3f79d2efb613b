package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"conferencepass/internal/domain"
)

type enrollmentService struct {
	activityRepo   domain.ActivityRepository
	enrollmentRepo domain.EnrollmentRepository
	userRepo       domain.UserRepository
	tokenIssuer    domain.QrTokenIssuer
	emailService   domain.EmailService
	now            func() time.Time
}

// NewEnrollmentService creates an EnrollmentService with the given
// repositories and ports. emailService may be nil to skip confirmations.
func NewEnrollmentService(
	activityRepo domain.ActivityRepository,
	enrollmentRepo domain.EnrollmentRepository,
	userRepo domain.UserRepository,
	tokenIssuer domain.QrTokenIssuer,
	emailService domain.EmailService,
) domain.EnrollmentService {
	return &enrollmentService{
		activityRepo:   activityRepo,
		enrollmentRepo: enrollmentRepo,
		userRepo:       userRepo,
		tokenIssuer:    tokenIssuer,
		emailService:   emailService,
		now:            time.Now,
	}
}

// Register enrolls the user in each requested activity and reports one
// outcome per activity. A failure on one activity does not abort the rest;
// each enrollment and its token are persisted atomically by the repository.
func (s *enrollmentService) Register(ctx context.Context, userID string, activityIDs []string) ([]*domain.ActivityRegistration, error) {
	if len(activityIDs) == 0 {
		return nil, fmt.Errorf("%w: no activities requested", domain.ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(activityIDs))
	results := make([]*domain.ActivityRegistration, 0, len(activityIDs))
	for _, activityID := range activityIDs {
		if _, dup := seen[activityID]; dup {
			continue
		}
		seen[activityID] = struct{}{}
		results = append(results, s.registerOne(ctx, userID, activityID))
	}

	if s.emailService != nil {
		s.sendConfirmation(ctx, userID, results)
	}
	return results, nil
}

func (s *enrollmentService) registerOne(ctx context.Context, userID, activityID string) *domain.ActivityRegistration {
	result := &domain.ActivityRegistration{ActivityID: activityID}

	activity, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		result.Err = err
		return result
	}

	now := s.now()
	enrollmentID := uuid.New().String()
	token, err := s.tokenIssuer.Issue(enrollmentID, activity.EndTime, now)
	if err != nil {
		result.Err = fmt.Errorf("issue token: %w", err)
		return result
	}

	enrollment := domain.NewEnrollment(enrollmentID, userID, activityID, token.TokenID, now)
	if err := s.enrollmentRepo.Register(ctx, enrollment, token, now); err != nil {
		result.Err = err
		return result
	}

	result.Enrollment = enrollment
	result.Token = token
	return result
}

// sendConfirmation emails a summary of the user's confirmed enrollments.
// Failures are logged, not returned: the enrollments are already committed
// and must not be rolled back over a mail problem.
func (s *enrollmentService) sendConfirmation(ctx context.Context, userID string, results []*domain.ActivityRegistration) {
	succeeded := false
	for _, r := range results {
		if r.Err == nil {
			succeeded = true
			break
		}
	}
	if !succeeded {
		return
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		log.Printf("[ENROLLMENT] confirmation skipped, user lookup failed: %v", err)
		return
	}
	items, err := s.enrollmentRepo.ListForUser(ctx, userID)
	if err != nil {
		log.Printf("[ENROLLMENT] confirmation skipped, listing enrollments failed: %v", err)
		return
	}
	data := &domain.EnrollmentConfirmationEmailData{
		Email:   user.Email,
		Name:    user.DisplayName(),
		Summary: Compose(user.DisplayName(), items, s.now()),
	}
	if err := s.emailService.SendEnrollmentConfirmation(ctx, data); err != nil {
		log.Printf("[ENROLLMENT] confirmation email failed for %s: %v", user.Email, err)
	}
}

func (s *enrollmentService) ListForUser(ctx context.Context, userID string) ([]*domain.EnrollmentWithActivity, error) {
	items, err := s.enrollmentRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return items, nil
}

func (s *enrollmentService) Cancel(ctx context.Context, userID, enrollmentID string) error {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get enrollment: %w", err)
	}
	if enrollment.UserID != userID {
		return domain.ErrForbidden
	}
	if enrollment.Status == domain.AttendanceCheckedIn {
		return fmt.Errorf("%w: already checked in", domain.ErrInvalidInput)
	}
	return s.enrollmentRepo.Cancel(ctx, enrollmentID)
}

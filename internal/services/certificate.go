package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"conferencepass/internal/domain"
)

type certificateService struct {
	certRepo       domain.CertificateRepository
	enrollmentRepo domain.EnrollmentRepository
	activityRepo   domain.ActivityRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	now            func() time.Time
}

// NewCertificateService creates a CertificateService. emailService may be nil
// to skip issuance notifications.
func NewCertificateService(
	certRepo domain.CertificateRepository,
	enrollmentRepo domain.EnrollmentRepository,
	activityRepo domain.ActivityRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
) domain.CertificateService {
	return &certificateService{
		certRepo:       certRepo,
		enrollmentRepo: enrollmentRepo,
		activityRepo:   activityRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		now:            time.Now,
	}
}

func (s *certificateService) Issue(ctx context.Context, enrollmentID string) (*domain.Certificate, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Status != domain.AttendanceCheckedIn {
		return nil, domain.ErrNotCheckedIn
	}
	activity, err := s.activityRepo.GetByID(ctx, enrollment.ActivityID)
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	now := s.now()
	if now.Before(activity.EndTime) {
		return nil, fmt.Errorf("%w: activity has not ended yet", domain.ErrInvalidInput)
	}

	issuedAt := now
	cert := &domain.Certificate{
		ID:           uuid.New().String(),
		EnrollmentID: enrollmentID,
		SerialCode:   uuid.New().String(),
		Status:       domain.CertificateIssued,
		IssuedAt:     &issuedAt,
		CreatedAt:    now,
	}
	if err := s.certRepo.Create(ctx, cert); err != nil {
		return nil, err
	}

	if s.emailService != nil {
		if user, uerr := s.userRepo.GetByID(ctx, enrollment.UserID); uerr == nil {
			data := &domain.CertificateIssuedEmailData{
				Email:         user.Email,
				Name:          user.DisplayName(),
				ActivityTitle: activity.Title,
				SerialCode:    cert.SerialCode,
			}
			if merr := s.emailService.SendCertificateIssued(ctx, data); merr != nil {
				log.Printf("[CERTIFICATE] issuance email failed for %s: %v", user.Email, merr)
			}
		}
	}
	return cert, nil
}

func (s *certificateService) Revoke(ctx context.Context, serial string) error {
	cert, err := s.certRepo.GetBySerial(ctx, serial)
	if err != nil {
		return err
	}
	if cert.Status == domain.CertificateRevoked {
		return nil
	}
	return s.certRepo.SetStatus(ctx, cert.ID, domain.CertificateRevoked, cert.IssuedAt)
}

func (s *certificateService) ListForUser(ctx context.Context, userID string) ([]*domain.CertificateWithActivity, error) {
	return s.certRepo.ListForUser(ctx, userID)
}

func (s *certificateService) VerifyBySerial(ctx context.Context, serial string) (*domain.Certificate, error) {
	cert, err := s.certRepo.GetBySerial(ctx, serial)
	if err != nil {
		return nil, err
	}
	if cert.Status != domain.CertificateIssued {
		return nil, domain.ErrNotFound
	}
	return cert, nil
}

package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"conferencepass/internal/domain"
)

type activityService struct {
	activityRepo domain.ActivityRepository
	now          func() time.Time
}

// NewActivityService creates an ActivityService backed by the given repository.
func NewActivityService(activityRepo domain.ActivityRepository) domain.ActivityService {
	return &activityService{activityRepo: activityRepo, now: time.Now}
}

func (s *activityService) Create(ctx context.Context, a *domain.Activity) (*domain.Activity, error) {
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if !a.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown activity type %q", domain.ErrInvalidInput, a.Type)
	}
	if !a.EndTime.After(a.StartTime) {
		return nil, fmt.Errorf("%w: end time must be after start time", domain.ErrInvalidInput)
	}
	if a.Capacity < 0 {
		return nil, fmt.Errorf("%w: capacity must not be negative", domain.ErrInvalidInput)
	}

	now := s.now()
	a.ID = uuid.New().String()
	a.CreatedAt = now
	a.UpdatedAt = now
	if err := s.activityRepo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create activity: %w", err)
	}
	return a, nil
}

func (s *activityService) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	return s.activityRepo.GetByID(ctx, id)
}

func (s *activityService) ListPublished(ctx context.Context, params domain.PaginationParams) ([]*domain.Activity, int, error) {
	return s.activityRepo.ListPublished(ctx, params)
}

func (s *activityService) SetFlags(ctx context.Context, id string, published, active bool) (*domain.Activity, error) {
	return s.activityRepo.SetFlags(ctx, id, published, active)
}

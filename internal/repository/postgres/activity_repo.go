package postgres

import (
	"context"
	"database/sql"
	"errors"

	"conferencepass/internal/domain"
)

type activityRepository struct {
	DB *sql.DB
}

// NewActivityRepository returns a domain.ActivityRepository implemented with Postgres.
func NewActivityRepository(db *sql.DB) domain.ActivityRepository {
	return &activityRepository{DB: db}
}

func (r *activityRepository) Create(ctx context.Context, a *domain.Activity) error {
	query := `
		INSERT INTO activities (id, title, description, type, speaker, location, start_time, end_time, capacity, published, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.DB.ExecContext(ctx, query,
		a.ID, a.Title, a.Description, a.Type, a.Speaker, a.Location,
		a.StartTime, a.EndTime, a.Capacity, a.Published, a.Active, a.CreatedAt, a.UpdatedAt)
	return err
}

func (r *activityRepository) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	query := `
		SELECT id, title, description, type, speaker, location, start_time, end_time, capacity, published, active, created_at, updated_at
		FROM activities
		WHERE id = $1
	`
	a := &domain.Activity{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.Title, &a.Description, &a.Type, &a.Speaker, &a.Location,
		&a.StartTime, &a.EndTime, &a.Capacity, &a.Published, &a.Active, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *activityRepository) ListPublished(ctx context.Context, params domain.PaginationParams) ([]*domain.Activity, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities WHERE published = TRUE`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, title, description, type, speaker, location, start_time, end_time, capacity, published, active, created_at, updated_at
		FROM activities
		WHERE published = TRUE
		ORDER BY start_time ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var activities []*domain.Activity
	for rows.Next() {
		a := &domain.Activity{}
		if err := rows.Scan(
			&a.ID, &a.Title, &a.Description, &a.Type, &a.Speaker, &a.Location,
			&a.StartTime, &a.EndTime, &a.Capacity, &a.Published, &a.Active, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if activities == nil {
		activities = []*domain.Activity{}
	}
	return activities, total, nil
}

func (r *activityRepository) SetFlags(ctx context.Context, id string, published, active bool) (*domain.Activity, error) {
	query := `
		UPDATE activities
		SET published = $2, active = $3, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query, id, published, active)
	if err != nil {
		return nil, err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

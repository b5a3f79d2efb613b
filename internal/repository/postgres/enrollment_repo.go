package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"conferencepass/internal/domain"
)

type enrollmentRepository struct {
	DB *sql.DB
}

// NewEnrollmentRepository returns a domain.EnrollmentRepository implemented with Postgres.
func NewEnrollmentRepository(db *sql.DB) domain.EnrollmentRepository {
	return &enrollmentRepository{DB: db}
}

// Register creates the enrollment and its QR token in one transaction.
//
// The activity row is locked with SELECT ... FOR UPDATE so the availability
// and capacity checks cannot race with a concurrent registration: competing
// transactions serialize on the row lock and re-read the committed count.
// The partial unique index on (user_id, activity_id) WHERE cancelled = FALSE
// backs the one-enrollment-per-pair invariant even if two transactions slip
// past the pre-check; its violation maps to ErrAlreadyEnrolled.
func (r *enrollmentRepository) Register(ctx context.Context, enrollment *domain.Enrollment, token *domain.QrToken, now time.Time) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var published, active bool
	var capacity int
	var endTime time.Time
	err = tx.QueryRowContext(ctx, `
		SELECT published, active, capacity, end_time
		FROM activities
		WHERE id = $1
		FOR UPDATE
	`, enrollment.ActivityID).Scan(&published, &active, &capacity, &endTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("lock activity row: %w", err)
	}

	if !published || !active || !now.Before(endTime) {
		return domain.ErrActivityUnavailable
	}

	var activeCount int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM enrollments
		WHERE activity_id = $1 AND cancelled = FALSE
	`, enrollment.ActivityID).Scan(&activeCount)
	if err != nil {
		return fmt.Errorf("count enrollments: %w", err)
	}
	if capacity > 0 && activeCount >= capacity {
		return domain.ErrActivityFull
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO enrollments (id, user_id, activity_id, status, token_id, cancelled, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
	`, enrollment.ID, enrollment.UserID, enrollment.ActivityID, enrollment.Status, enrollment.TokenID, enrollment.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrAlreadyEnrolled
		}
		return fmt.Errorf("insert enrollment: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO qr_tokens (id, token_id, enrollment_id, issued_at, expires_at, consumed)
		VALUES ($1, $2, $3, $4, $5, FALSE)
	`, token.ID, token.TokenID, token.EnrollmentID, token.IssuedAt, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert qr token: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *enrollmentRepository) GetByID(ctx context.Context, id string) (*domain.Enrollment, error) {
	query := `
		SELECT id, user_id, activity_id, status, attended_at, token_id, cancelled, created_at
		FROM enrollments
		WHERE id = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *enrollmentRepository) GetByActivityAndUser(ctx context.Context, activityID, userID string) (*domain.Enrollment, error) {
	query := `
		SELECT id, user_id, activity_id, status, attended_at, token_id, cancelled, created_at
		FROM enrollments
		WHERE activity_id = $1 AND user_id = $2 AND cancelled = FALSE
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, activityID, userID))
}

func (r *enrollmentRepository) scanOne(row *sql.Row) (*domain.Enrollment, error) {
	e := &domain.Enrollment{}
	err := row.Scan(&e.ID, &e.UserID, &e.ActivityID, &e.Status, &e.AttendedAt, &e.TokenID, &e.Cancelled, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *enrollmentRepository) ListForUser(ctx context.Context, userID string) ([]*domain.EnrollmentWithActivity, error) {
	query := `
		SELECT e.id, e.user_id, e.activity_id, e.status, e.attended_at, e.token_id, e.cancelled, e.created_at,
		       a.id, a.title, a.description, a.type, a.speaker, a.location, a.start_time, a.end_time, a.capacity, a.published, a.active, a.created_at, a.updated_at,
		       t.id, t.token_id, t.enrollment_id, t.issued_at, t.expires_at, t.consumed, t.consumed_at
		FROM enrollments e
		JOIN activities a ON a.id = e.activity_id
		JOIN qr_tokens t ON t.enrollment_id = e.id
		WHERE e.user_id = $1 AND e.cancelled = FALSE
		ORDER BY a.start_time ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.EnrollmentWithActivity
	for rows.Next() {
		e := &domain.Enrollment{}
		a := &domain.Activity{}
		t := &domain.QrToken{}
		err := rows.Scan(
			&e.ID, &e.UserID, &e.ActivityID, &e.Status, &e.AttendedAt, &e.TokenID, &e.Cancelled, &e.CreatedAt,
			&a.ID, &a.Title, &a.Description, &a.Type, &a.Speaker, &a.Location, &a.StartTime, &a.EndTime, &a.Capacity, &a.Published, &a.Active, &a.CreatedAt, &a.UpdatedAt,
			&t.ID, &t.TokenID, &t.EnrollmentID, &t.IssuedAt, &t.ExpiresAt, &t.Consumed, &t.ConsumedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, &domain.EnrollmentWithActivity{Enrollment: e, Activity: a, Token: t})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.EnrollmentWithActivity{}
	}
	return items, nil
}

func (r *enrollmentRepository) CountActive(ctx context.Context, activityID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM enrollments
		WHERE activity_id = $1 AND cancelled = FALSE
	`, activityID).Scan(&count)
	return count, err
}

func (r *enrollmentRepository) Cancel(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE enrollments SET cancelled = TRUE
		WHERE id = $1 AND cancelled = FALSE AND status = 'not_checked_in'
	`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

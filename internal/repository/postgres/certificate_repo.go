package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"conferencepass/internal/domain"
)

type certificateRepository struct {
	DB *sql.DB
}

// NewCertificateRepository returns a domain.CertificateRepository implemented with Postgres.
func NewCertificateRepository(db *sql.DB) domain.CertificateRepository {
	return &certificateRepository{DB: db}
}

func (r *certificateRepository) Create(ctx context.Context, c *domain.Certificate) error {
	query := `
		INSERT INTO certificates (id, enrollment_id, serial_code, status, issued_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.DB.ExecContext(ctx, query, c.ID, c.EnrollmentID, c.SerialCode, c.Status, c.IssuedAt, c.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrAlreadyCertified
		}
		return err
	}
	return nil
}

func (r *certificateRepository) GetBySerial(ctx context.Context, serial string) (*domain.Certificate, error) {
	query := `
		SELECT id, enrollment_id, serial_code, status, issued_at, created_at
		FROM certificates
		WHERE serial_code = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, serial))
}

func (r *certificateRepository) GetByEnrollmentID(ctx context.Context, enrollmentID string) (*domain.Certificate, error) {
	query := `
		SELECT id, enrollment_id, serial_code, status, issued_at, created_at
		FROM certificates
		WHERE enrollment_id = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, enrollmentID))
}

func (r *certificateRepository) scanOne(row *sql.Row) (*domain.Certificate, error) {
	c := &domain.Certificate{}
	err := row.Scan(&c.ID, &c.EnrollmentID, &c.SerialCode, &c.Status, &c.IssuedAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *certificateRepository) ListForUser(ctx context.Context, userID string) ([]*domain.CertificateWithActivity, error) {
	query := `
		SELECT c.id, c.enrollment_id, c.serial_code, c.status, c.issued_at, c.created_at,
		       a.id, a.title, a.description, a.type, a.speaker, a.location, a.start_time, a.end_time, a.capacity, a.published, a.active, a.created_at, a.updated_at
		FROM certificates c
		JOIN enrollments e ON e.id = c.enrollment_id
		JOIN activities a ON a.id = e.activity_id
		WHERE e.user_id = $1
		ORDER BY a.start_time ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.CertificateWithActivity
	for rows.Next() {
		c := &domain.Certificate{}
		a := &domain.Activity{}
		err := rows.Scan(
			&c.ID, &c.EnrollmentID, &c.SerialCode, &c.Status, &c.IssuedAt, &c.CreatedAt,
			&a.ID, &a.Title, &a.Description, &a.Type, &a.Speaker, &a.Location, &a.StartTime, &a.EndTime, &a.Capacity, &a.Published, &a.Active, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, &domain.CertificateWithActivity{Certificate: c, Activity: a})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.CertificateWithActivity{}
	}
	return items, nil
}

func (r *certificateRepository) SetStatus(ctx context.Context, id string, status domain.CertificateStatus, issuedAt *time.Time) error {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE certificates SET status = $2, issued_at = $3 WHERE id = $1
	`, id, status, issuedAt)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

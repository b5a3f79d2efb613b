package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"conferencepass/internal/domain"
)

type qrTokenRepository struct {
	DB *sql.DB
}

// NewQrTokenRepository returns a domain.QrTokenRepository implemented with Postgres.
func NewQrTokenRepository(db *sql.DB) domain.QrTokenRepository {
	return &qrTokenRepository{DB: db}
}

func (r *qrTokenRepository) GetByTokenID(ctx context.Context, tokenID string) (*domain.QrToken, error) {
	query := `
		SELECT id, token_id, enrollment_id, issued_at, expires_at, consumed, consumed_at
		FROM qr_tokens
		WHERE token_id = $1
	`
	t := &domain.QrToken{}
	err := r.DB.QueryRowContext(ctx, query, tokenID).Scan(
		&t.ID, &t.TokenID, &t.EnrollmentID, &t.IssuedAt, &t.ExpiresAt, &t.Consumed, &t.ConsumedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// Consume flips the token to consumed and marks its enrollment checked in,
// as one transaction. The UPDATE is guarded on consumed = FALSE, so of N
// concurrent callers exactly one sees an affected row; the rest get
// ErrTokenAlreadyUsed (or ErrNotFound if the token never existed).
func (r *qrTokenRepository) Consume(ctx context.Context, tokenID string, at time.Time) (enrollmentID string, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	err = tx.QueryRowContext(ctx, `
		UPDATE qr_tokens
		SET consumed = TRUE, consumed_at = $2
		WHERE token_id = $1 AND consumed = FALSE
		RETURNING enrollment_id
	`, tokenID, at).Scan(&enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			if probeErr := tx.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM qr_tokens WHERE token_id = $1)`, tokenID).Scan(&exists); probeErr != nil {
				return "", fmt.Errorf("probe token: %w", probeErr)
			}
			if !exists {
				return "", domain.ErrNotFound
			}
			return "", domain.ErrTokenAlreadyUsed
		}
		return "", fmt.Errorf("consume token: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE enrollments
		SET status = 'checked_in', attended_at = $2
		WHERE id = $1 AND status = 'not_checked_in'
	`, enrollmentID, at)
	if err != nil {
		return "", fmt.Errorf("mark attendance: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("commit transaction: %w", err)
	}
	return enrollmentID, nil
}

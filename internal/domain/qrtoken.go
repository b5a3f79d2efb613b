package domain

import (
	"context"
	"time"
)

// QrToken is a single-use credential bound to one enrollment. TokenID is
// opaque and cryptographically unguessable; Consumed transitions false→true
// exactly once and never reverses.
// swagger:model QrToken
type QrToken struct {
	ID           string     `json:"id"`
	TokenID      string     `json:"token_id"`
	EnrollmentID string     `json:"enrollment_id"`
	IssuedAt     time.Time  `json:"issued_at"`
	ExpiresAt    time.Time  `json:"expires_at"`
	Consumed     bool       `json:"consumed"`
	ConsumedAt   *time.Time `json:"consumed_at,omitempty"`
}

// ExpiredAt reports whether the token is past its expiration at the given
// instant. Expiry is evaluated lazily at verification time; there is no sweep.
func (t *QrToken) ExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// QrTokenIssuer mints tokens for new enrollments.
type QrTokenIssuer interface {
	// Issue returns a token whose TokenID carries at least 128 bits of
	// entropy and whose expiry is the activity end plus a grace margin.
	Issue(enrollmentID string, activityEnd time.Time, issuedAt time.Time) (*QrToken, error)
}

// QrTokenRepository defines storage operations for QR tokens.
type QrTokenRepository interface {
	GetByTokenID(ctx context.Context, tokenID string) (*QrToken, error)
	// Consume marks the token consumed and the linked enrollment checked in,
	// in one transaction guarded on consumed = FALSE. Returns the enrollment
	// ID on success, ErrNotFound if the token does not exist, and
	// ErrTokenAlreadyUsed if another caller consumed it first.
	Consume(ctx context.Context, tokenID string, at time.Time) (enrollmentID string, err error)
}

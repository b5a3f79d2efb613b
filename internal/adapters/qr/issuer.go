// Package qr mints the single-use tokens encoded into attendee QR codes.
package qr

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"conferencepass/internal/domain"
)

// tokenBytes is the entropy of a token ID. 16 bytes = 128 bits, enough that
// collisions and guessing are both negligible.
const tokenBytes = 16

type issuer struct {
	grace time.Duration
}

// NewIssuer returns a QrTokenIssuer whose tokens expire at the activity end
// plus the given grace margin, so a token stays valid for the whole activity
// window and a while after.
func NewIssuer(grace time.Duration) domain.QrTokenIssuer {
	return &issuer{grace: grace}
}

func (i *issuer) Issue(enrollmentID string, activityEnd time.Time, issuedAt time.Time) (*domain.QrToken, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &domain.QrToken{
		ID:           uuid.New().String(),
		TokenID:      hex.EncodeToString(b),
		EnrollmentID: enrollmentID,
		IssuedAt:     issuedAt,
		ExpiresAt:    activityEnd.Add(i.grace),
	}, nil
}

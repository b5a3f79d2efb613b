package domain

import (
	"context"
	"time"
)

// CertificateStatus is the closed set of certificate states.
type CertificateStatus string

const (
	CertificatePending CertificateStatus = "pending"
	CertificateIssued  CertificateStatus = "issued"
	CertificateRevoked CertificateStatus = "revoked"
)

// Certificate attests attendance for one enrollment. Revocation is a status
// flip; certificates are never deleted.
// swagger:model Certificate
type Certificate struct {
	ID           string            `json:"id"`
	EnrollmentID string            `json:"enrollment_id"`
	SerialCode   string            `json:"serial_code"`
	Status       CertificateStatus `json:"status"`
	IssuedAt     *time.Time        `json:"issued_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// CertificateWithActivity bundles a certificate with the activity it covers.
type CertificateWithActivity struct {
	Certificate *Certificate `json:"certificate"`
	Activity    *Activity    `json:"activity"`
}

// CertificateRepository defines storage operations for certificates.
type CertificateRepository interface {
	Create(ctx context.Context, cert *Certificate) error
	GetBySerial(ctx context.Context, serial string) (*Certificate, error)
	GetByEnrollmentID(ctx context.Context, enrollmentID string) (*Certificate, error)
	ListForUser(ctx context.Context, userID string) ([]*CertificateWithActivity, error)
	SetStatus(ctx context.Context, id string, status CertificateStatus, issuedAt *time.Time) error
}

// CertificateService defines certificate issuance and verification.
type CertificateService interface {
	// Issue creates an issued certificate for a checked-in enrollment once
	// its activity has ended. Fails with ErrNotCheckedIn before check-in,
	// ErrInvalidInput before the activity end, and ErrAlreadyCertified on a
	// duplicate.
	Issue(ctx context.Context, enrollmentID string) (*Certificate, error)
	Revoke(ctx context.Context, serial string) error
	ListForUser(ctx context.Context, userID string) ([]*CertificateWithActivity, error)
	VerifyBySerial(ctx context.Context, serial string) (*Certificate, error)
}

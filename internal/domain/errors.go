package domain

import "errors"

// Sentinel errors shared across services and repositories. Repositories map
// driver-level failures (sql.ErrNoRows, unique violations) onto these so the
// delivery layer can translate them to status codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")

	ErrAlreadyEnrolled     = errors.New("already enrolled in this activity")
	ErrActivityFull        = errors.New("activity has no remaining capacity")
	ErrActivityUnavailable = errors.New("activity is not open for enrollment")

	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenAlreadyUsed = errors.New("token has already been used")

	ErrAlreadyCertified = errors.New("certificate already issued for this enrollment")
	ErrNotCheckedIn     = errors.New("enrollment has no attendance record")
)

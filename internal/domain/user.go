package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already in use")
)

// ProfileKind tags which profile, if any, a user carries.
type ProfileKind string

const (
	ProfileNone    ProfileKind = "none"
	ProfileStaff   ProfileKind = "staff"
	ProfileStudent ProfileKind = "student"
)

// StaffProfile is the staff-side profile attached to a user.
type StaffProfile struct {
	Department string `json:"department"`
	Role       string `json:"role"`
}

// StudentProfile is the student-side profile attached to a user.
type StudentProfile struct {
	StudentCode string `json:"student_code"`
	Program     string `json:"program"`
}

// User represents an account. A user carries exactly one of the two profiles
// or none, tagged by ProfileKind; the two pointers are never both set.
// swagger:model User
type User struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	Name         string          `json:"name"`
	LastName     string          `json:"last_name"`
	PasswordHash string          `json:"-"`
	Salt         string          `json:"-"`
	ProfileKind  ProfileKind     `json:"profile_kind"`
	Staff        *StaffProfile   `json:"staff_profile,omitempty"`
	Student      *StudentProfile `json:"student_profile,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// IsStaff reports whether the user carries a staff profile.
func (u *User) IsStaff() bool {
	return u.ProfileKind == ProfileStaff && u.Staff != nil
}

// DisplayName returns the name used in emails and check-in screens.
func (u *User) DisplayName() string {
	if u.Name == "" {
		return u.Email
	}
	if u.LastName == "" {
		return u.Name
	}
	return u.Name + " " + u.LastName
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues access tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, staff bool, expiry time.Duration) (string, error)
}

// TokenVerifier verifies an access token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
	// SetProfile replaces the user's profile. Exactly one of staff/student
	// may be non-nil; passing both nil clears the profile.
	SetProfile(ctx context.Context, userID string, staff *StaffProfile, student *StudentProfile) error
}

// UserService defines account and authentication operations.
type UserService interface {
	SignUp(ctx context.Context, email, password, name, lastName string) (*User, error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
	SetProfile(ctx context.Context, userID string, staff *StaffProfile, student *StudentProfile) (*User, error)
}

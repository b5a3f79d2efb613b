package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"conferencepass/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

// NewUserRepository returns a domain.UserRepository implemented with Postgres.
// Staff and student profiles live in side tables keyed by user_id; the user
// row carries no profile columns and the scan derives ProfileKind from which
// side table has a row.
func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, salt, name, last_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.DB.ExecContext(ctx, query, u.ID, u.Email, u.PasswordHash, u.Salt, u.Name, u.LastName, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

const userSelect = `
	SELECT u.id, u.email, u.password_hash, u.salt, u.name, u.last_name, u.created_at, u.updated_at,
	       sp.department, sp.role,
	       st.student_code, st.program
	FROM users u
	LEFT JOIN staff_profiles sp ON sp.user_id = u.id
	LEFT JOIN student_profiles st ON st.user_id = u.id
`

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(r.DB.QueryRowContext(ctx, userSelect+` WHERE u.email = $1`, email))
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.scanUser(r.DB.QueryRowContext(ctx, userSelect+` WHERE u.id = $1`, id))
}

func (r *userRepository) scanUser(row *sql.Row) (*domain.User, error) {
	u := &domain.User{}
	var department, role, studentCode, program sql.NullString
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Salt, &u.Name, &u.LastName, &u.CreatedAt, &u.UpdatedAt,
		&department, &role, &studentCode, &program)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	switch {
	case department.Valid:
		u.ProfileKind = domain.ProfileStaff
		u.Staff = &domain.StaffProfile{Department: department.String, Role: role.String}
	case studentCode.Valid:
		u.ProfileKind = domain.ProfileStudent
		u.Student = &domain.StudentProfile{StudentCode: studentCode.String, Program: program.String}
	default:
		u.ProfileKind = domain.ProfileNone
	}
	return u, nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET email = $2, name = $3, last_name = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query, u.ID, u.Email, u.Name, u.LastName, u.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SetProfile replaces the user's profile in one transaction. Both side tables
// are cleared before the insert, which keeps the mutual-exclusion invariant
// at the storage level regardless of the previous kind.
func (r *userRepository) SetProfile(ctx context.Context, userID string, staff *domain.StaffProfile, student *domain.StudentProfile) (err error) {
	if staff != nil && student != nil {
		return domain.ErrInvalidInput
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM staff_profiles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear staff profile: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM student_profiles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear student profile: %w", err)
	}

	switch {
	case staff != nil:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO staff_profiles (user_id, department, role)
			VALUES ($1, $2, $3)
		`, userID, staff.Department, staff.Role)
	case student != nil:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO student_profiles (user_id, student_code, program)
			VALUES ($1, $2, $3)
		`, userID, student.StudentCode, student.Program)
	}
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"conferencepass/internal/domain"

	"github.com/stretchr/testify/require"
)

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "salt", "name", "last_name", "created_at", "updated_at",
		"department", "role", "student_code", "program",
	})
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{
		ID: "u1", Email: "ana@example.com", PasswordHash: "hash", Salt: "salt",
		Name: "Ana", LastName: "Silva", CreatedAt: repoClock, UpdatedAt: repoClock,
	}

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs("u1", "ana@example.com", "hash", "salt", "Ana", "Silva", repoClock, repoClock).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewUserRepository(db).Create(ctx, user))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`INSERT INTO users`).
			WillReturnError(&pq.Error{Code: "23505"})

		require.ErrorIs(t, NewUserRepository(db).Create(ctx, user), domain.ErrDuplicateEmail)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("user with staff profile", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := userRows().AddRow(
			"u1", "ana@example.com", "hash", "salt", "Ana", "Silva", repoClock, repoClock,
			"Ops", "coordinator", nil, nil,
		)
		mock.ExpectQuery(`FROM users u`).WithArgs("u1").WillReturnRows(rows)

		user, err := NewUserRepository(db).GetByID(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, domain.ProfileStaff, user.ProfileKind)
		require.NotNil(t, user.Staff)
		require.Equal(t, "Ops", user.Staff.Department)
		require.Nil(t, user.Student)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("user with student profile", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := userRows().AddRow(
			"u2", "leo@example.com", "hash", "salt", "Leo", "", repoClock, repoClock,
			nil, nil, "S-1001", "CS",
		)
		mock.ExpectQuery(`FROM users u`).WithArgs("u2").WillReturnRows(rows)

		user, err := NewUserRepository(db).GetByID(ctx, "u2")
		require.NoError(t, err)
		require.Equal(t, domain.ProfileStudent, user.ProfileKind)
		require.NotNil(t, user.Student)
		require.Equal(t, "S-1001", user.Student.StudentCode)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("user without profile", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := userRows().AddRow(
			"u3", "zoe@example.com", "hash", "salt", "Zoe", "", repoClock, repoClock,
			nil, nil, nil, nil,
		)
		mock.ExpectQuery(`FROM users u`).WithArgs("u3").WillReturnRows(rows)

		user, err := NewUserRepository(db).GetByID(ctx, "u3")
		require.NoError(t, err)
		require.Equal(t, domain.ProfileNone, user.ProfileKind)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM users u`).WithArgs("ghost").WillReturnRows(userRows())

		_, err = NewUserRepository(db).GetByID(ctx, "ghost")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_SetProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("set staff profile clears both side tables first", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM staff_profiles`).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM student_profiles`).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO staff_profiles`).
			WithArgs("u1", "Ops", "coordinator").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = NewUserRepository(db).SetProfile(ctx, "u1", &domain.StaffProfile{Department: "Ops", Role: "coordinator"}, nil)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("both profiles rejected before any query", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		err = NewUserRepository(db).SetProfile(ctx, "u1",
			&domain.StaffProfile{Department: "Ops"},
			&domain.StudentProfile{StudentCode: "S-1001"})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

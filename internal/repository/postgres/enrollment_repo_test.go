package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"conferencepass/internal/domain"

	"github.com/stretchr/testify/require"
)

var repoClock = time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

func registerFixtures() (*domain.Enrollment, *domain.QrToken) {
	enrollment := domain.NewEnrollment("e1", "u1", "a1", "tok-1", repoClock)
	token := &domain.QrToken{
		ID:           "qt1",
		TokenID:      "tok-1",
		EnrollmentID: "e1",
		IssuedAt:     repoClock,
		ExpiresAt:    repoClock.Add(4 * time.Hour),
	}
	return enrollment, token
}

func TestEnrollmentRepository_Register(t *testing.T) {
	ctx := context.Background()
	endTime := repoClock.Add(2 * time.Hour)

	activityRow := func(published, active bool, capacity int) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"published", "active", "capacity", "end_time"}).
			AddRow(published, active, capacity, endTime)
	}

	tests := []struct {
		name  string
		mock  func(mock sqlmock.Sqlmock)
		errIs error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT published, active, capacity, end_time`).
					WithArgs("a1").
					WillReturnRows(activityRow(true, true, 10))
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM enrollments`).
					WithArgs("a1").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
				mock.ExpectExec(`INSERT INTO enrollments`).
					WithArgs("e1", "u1", "a1", string(domain.AttendanceNotCheckedIn), "tok-1", repoClock).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`INSERT INTO qr_tokens`).
					WithArgs("qt1", "tok-1", "e1", repoClock, repoClock.Add(4*time.Hour)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "activity not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT published, active, capacity, end_time`).
					WithArgs("a1").
					WillReturnRows(sqlmock.NewRows([]string{"published", "active", "capacity", "end_time"}))
				mock.ExpectRollback()
			},
			errIs: domain.ErrNotFound,
		},
		{
			name: "unpublished activity is unavailable",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT published, active, capacity, end_time`).
					WithArgs("a1").
					WillReturnRows(activityRow(false, true, 10))
				mock.ExpectRollback()
			},
			errIs: domain.ErrActivityUnavailable,
		},
		{
			name: "capacity reached",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT published, active, capacity, end_time`).
					WithArgs("a1").
					WillReturnRows(activityRow(true, true, 2))
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM enrollments`).
					WithArgs("a1").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
				mock.ExpectRollback()
			},
			errIs: domain.ErrActivityFull,
		},
		{
			name: "unique violation maps to ErrAlreadyEnrolled",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT published, active, capacity, end_time`).
					WithArgs("a1").
					WillReturnRows(activityRow(true, true, 10))
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM enrollments`).
					WithArgs("a1").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
				mock.ExpectExec(`INSERT INTO enrollments`).
					WillReturnError(&pq.Error{Code: "23505"})
				mock.ExpectRollback()
			},
			errIs: domain.ErrAlreadyEnrolled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEnrollmentRepository(db)

			enrollment, token := registerFixtures()
			err = repo.Register(ctx, enrollment, token, repoClock)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEnrollmentRepository_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE enrollments SET cancelled = TRUE`).
			WithArgs("e1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewEnrollmentRepository(db)
		require.NoError(t, repo.Cancel(ctx, "e1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already cancelled or checked in", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE enrollments SET cancelled = TRUE`).
			WithArgs("e1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewEnrollmentRepository(db)
		require.ErrorIs(t, repo.Cancel(ctx, "e1"), domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEnrollmentRepository_ListForUser(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cols := []string{
		"e_id", "e_user_id", "e_activity_id", "e_status", "e_attended_at", "e_token_id", "e_cancelled", "e_created_at",
		"a_id", "a_title", "a_description", "a_type", "a_speaker", "a_location", "a_start_time", "a_end_time", "a_capacity", "a_published", "a_active", "a_created_at", "a_updated_at",
		"t_id", "t_token_id", "t_enrollment_id", "t_issued_at", "t_expires_at", "t_consumed", "t_consumed_at",
	}
	start := repoClock.Add(time.Hour)
	rows := sqlmock.NewRows(cols).AddRow(
		"e1", "u1", "a1", "not_checked_in", nil, "tok-1", false, repoClock,
		"a1", "Opening Talk", "", "talk", "Dana", "Hall A", start, start.Add(time.Hour), 100, true, true, repoClock, repoClock,
		"qt1", "tok-1", "e1", repoClock, start.Add(3*time.Hour), false, nil,
	)
	mock.ExpectQuery(`FROM enrollments e`).WithArgs("u1").WillReturnRows(rows)

	repo := NewEnrollmentRepository(db)
	items, err := repo.ListForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "e1", items[0].Enrollment.ID)
	require.Equal(t, "Opening Talk", items[0].Activity.Title)
	require.Equal(t, "tok-1", items[0].Token.TokenID)
	require.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-adm-api/internal/models"
)

func newAttendanceRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAttendanceRepositoryUpsertInsert(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO attendance")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("att-1"))

	record := &models.Attendance{EnrollmentID: "enr-1", Date: date, Present: true}
	require.NoError(t, repo.Upsert(context.Background(), record))
	require.Equal(t, "att-1", record.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryUpsertOverwrite(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	// The conflict branch keeps the existing row's id.
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (enrollment_id, date) DO UPDATE SET status = EXCLUDED.status")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("att-existing"))

	record := &models.Attendance{ID: "att-new", EnrollmentID: "enr-1", Date: time.Now(), Present: false}
	require.NoError(t, repo.Upsert(context.Background(), record))
	require.Equal(t, "att-existing", record.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositorySummary(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM attendance WHERE enrollment_id = $1")).
		WithArgs("enr-1").
		WillReturnRows(sqlmock.NewRows([]string{"present", "absent"}).AddRow(9, 1))

	summary, err := repo.Summary(context.Background(), "enr-1")
	require.NoError(t, err)
	require.Equal(t, 9, summary.Present)
	require.Equal(t, 1, summary.Absent)
	require.Equal(t, 10, summary.Total)
	require.InDelta(t, 90.0, summary.Percent, 1e-9)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositorySummaryEmpty(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM attendance WHERE enrollment_id = $1")).
		WithArgs("enr-9").
		WillReturnRows(sqlmock.NewRows([]string{"present", "absent"}).AddRow(0, 0))

	summary, err := repo.Summary(context.Background(), "enr-9")
	require.NoError(t, err)
	require.Zero(t, summary.Total)
	require.Zero(t, summary.Percent)
}

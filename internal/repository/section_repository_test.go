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

func newSectionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSectionRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newSectionRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_sections")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	section := &models.ClassSection{
		CourseID:    "course-1",
		LecturerID:  "lect-1",
		TermID:      "term-1",
		RoomID:      "room-1",
		MaxStudents: 30,
		Schedule:    3,
		StartDate:   time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(context.Background(), section))
	require.NotEmpty(t, section.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryExistsClash(t *testing.T) {
	db, mock, cleanup := newSectionRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	section := &models.ClassSection{
		LecturerID: "lect-1",
		RoomID:     "room-1",
		Schedule:   3,
		StartDate:  time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC),
	}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM class_sections")).
		WithArgs(section.Schedule, section.StartDate, section.EndDate, section.LecturerID, section.RoomID).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	clash, err := repo.ExistsClash(context.Background(), section)
	require.NoError(t, err)
	require.True(t, clash)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryExistsClashNone(t *testing.T) {
	db, mock, cleanup := newSectionRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM class_sections")).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	clash, err := repo.ExistsClash(context.Background(), &models.ClassSection{Schedule: 5})
	require.NoError(t, err)
	require.False(t, clash)
	require.NoError(t, mock.ExpectationsWereMet())
}

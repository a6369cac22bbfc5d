package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyward-dev/flightline-api/internal/models"
)

func newStudentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var studentSignalColumns = []string{
	"id", "course_id", "full_name", "callsign", "standing", "lessons_complete", "no_show_count",
	"last_session_at", "graduated_at", "created_at", "updated_at",
	"recency_days", "slot_count", "activity_count", "completions", "score", "has_active_booking",
}

func TestStudentRepositoryListWithSignalsMapsFilterToStanding(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	now := time.Now().UTC()
	rows := sqlmock.NewRows(studentSignalColumns).
		AddRow("stud-1", "course-1", "Kara Voss", "KV", "active", true, 0, now, nil, now, now, 12, 3, 8, 6, 42.5, false)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.course_id = $1 AND s.standing = $2")).
		WithArgs("course-1", models.StandingActive).
		WillReturnRows(rows)

	students, err := repo.ListWithSignals(context.Background(), "course-1", models.RosterFilterActive)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, 12, students[0].RecencyDays)
	assert.Equal(t, 3, students[0].SlotCount)
	assert.Equal(t, 42.5, students[0].Score)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListWithSignalsGraduates(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.course_id = $1 AND s.standing = $2")).
		WithArgs("course-1", models.StandingGraduated).
		WillReturnRows(sqlmock.NewRows(studentSignalColumns))

	_, err := repo.ListWithSignals(context.Background(), "course-1", models.RosterFilterGraduates)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListWithSignalsUnknownFilter(t *testing.T) {
	db, _, cleanup := newStudentRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	_, err := repo.ListWithSignals(context.Background(), "course-1", "expelled")
	require.Error(t, err)
}

func TestStudentRepositoryIncrementNoShow(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE students SET no_show_count = no_show_count + 1")).
		WithArgs("stud-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"no_show_count"}).AddRow(2))

	count, err := repo.IncrementNoShow(context.Background(), db, "stud-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositorySuspend(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET standing = $2")).
		WithArgs("stud-1", models.StandingSuspended, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Suspend(context.Background(), "stud-1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

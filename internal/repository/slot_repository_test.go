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

func newSlotRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var slotColumns = []string{"id", "course_id", "student_id", "year", "week", "start_at", "end_at", "status", "status_info", "created_at", "updated_at"}

func TestSlotRepositoryListWeekOrdersByRosterThenStart(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()

	repo := NewSlotRepository(db)
	now := time.Now().UTC()
	rows := sqlmock.NewRows(slotColumns).
		AddRow("slot-1", "course-1", "stud-1", 2026, 10, now, now.Add(time.Hour), "", "", now, now).
		AddRow("slot-2", "course-1", "stud-2", 2026, 10, now, now.Add(time.Hour), "booked", "", now, now)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY st.created_at ASC, sl.start_at ASC")).
		WithArgs("course-1", 2026, 10).
		WillReturnRows(rows)

	slots, err := repo.ListWeek(context.Background(), models.SlotFilter{CourseID: "course-1", Year: 2026, Week: 10})
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "stud-1", slots[0].StudentID)
	assert.Equal(t, models.SlotStatusBooked, slots[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryListWeekFiltersStudent(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()

	repo := NewSlotRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("AND sl.student_id = $4")).
		WithArgs("course-1", 2026, 10, "stud-1").
		WillReturnRows(sqlmock.NewRows(slotColumns))

	_, err := repo.ListWeek(context.Background(), models.SlotFilter{CourseID: "course-1", Year: 2026, Week: 10, StudentID: "stud-1"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryReplaceWeekDeletesOnlyOpenPostings(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()

	repo := NewSlotRepository(db)
	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM slots WHERE course_id = $1 AND student_id = $2 AND year = $3 AND week = $4 AND status = ''")).
		WithArgs("course-1", "stud-1", 2026, 10).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO slots")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	slots := []models.Slot{{StartAt: start, EndAt: start.Add(time.Hour)}}
	err := repo.ReplaceWeek(context.Background(), "course-1", "stud-1", 2026, 10, slots)
	require.NoError(t, err)
	assert.NotEmpty(t, slots[0].ID)
	assert.Equal(t, "course-1", slots[0].CourseID)
	assert.Equal(t, 10, slots[0].Week)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryReplaceWeekRollsBackOnInsertFailure(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()

	repo := NewSlotRepository(db)
	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM slots")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO slots")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.ReplaceWeek(context.Background(), "course-1", "stud-1", 2026, 10,
		[]models.Slot{{StartAt: start, EndAt: start.Add(time.Hour)}})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()

	repo := NewSlotRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE slots SET status = $2, status_info = $3")).
		WithArgs("slot-1", models.SlotStatusBooked, "bk-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatusWithTx(context.Background(), db, "slot-1", models.SlotStatusBooked, "bk-1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryDeleteStaleBefore(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()

	repo := NewSlotRepository(db)
	cutoff := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM slots WHERE status = '' AND end_at < $1")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 12))

	removed, err := repo.DeleteStaleBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(12), removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

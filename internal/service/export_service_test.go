package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyward-dev/flightline-api/internal/models"
	appErrors "github.com/skyward-dev/flightline-api/pkg/errors"
	"github.com/skyward-dev/flightline-api/pkg/storage"
)

type fakeExportBookings struct {
	bookings []models.BookingDetail
	err      error
}

func (f *fakeExportBookings) ListWeek(context.Context, string, int, int) ([]models.BookingDetail, error) {
	return f.bookings, f.err
}

func exportBooking(student, exercise string, confirmed bool) models.BookingDetail {
	start := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)
	return models.BookingDetail{
		Booking:      models.Booking{ID: "bk-1", Confirmed: confirmed, Active: true},
		StartAt:      start,
		EndAt:        start.Add(time.Hour),
		StudentName:  student,
		ExerciseName: exercise,
	}
}

func TestWeekSheetCSV(t *testing.T) {
	repo := &fakeExportBookings{bookings: []models.BookingDetail{
		exportBooking("Kara Voss", "Air Exercise 9", true),
	}}
	svc := NewExportService(repo, nil, true, nil)

	result, err := svc.WeekSheet(context.Background(), "course-1", 2026, 10, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "schedule-2026-W10.csv", result.Filename)

	content := string(result.Content)
	assert.True(t, strings.HasPrefix(content, "Date,Start,End,Student,Exercise,Status"))
	assert.Contains(t, content, "Kara Voss")
	assert.Contains(t, content, "Air Exercise 9")
	assert.Contains(t, content, "BOOKED")
}

func TestWeekSheetMarksTentativeRows(t *testing.T) {
	repo := &fakeExportBookings{bookings: []models.BookingDetail{
		exportBooking("Kara Voss", "Air Exercise 9", false),
	}}
	svc := NewExportService(repo, nil, true, nil)

	result, err := svc.WeekSheet(context.Background(), "course-1", 2026, 10, FormatCSV)
	require.NoError(t, err)
	assert.Contains(t, string(result.Content), "TENTATIVE")
}

func TestWeekSheetPDF(t *testing.T) {
	repo := &fakeExportBookings{bookings: []models.BookingDetail{
		exportBooking("Kara Voss", "Air Exercise 9", true),
	}}
	svc := NewExportService(repo, nil, true, nil)

	result, err := svc.WeekSheet(context.Background(), "course-1", 2026, 10, FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, "schedule-2026-W10.pdf", result.Filename)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestWeekSheetDisabled(t *testing.T) {
	svc := NewExportService(&fakeExportBookings{}, nil, false, nil)

	_, err := svc.WeekSheet(context.Background(), "course-1", 2026, 10, FormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestWeekSheetUnknownFormat(t *testing.T) {
	svc := NewExportService(&fakeExportBookings{}, nil, true, nil)

	_, err := svc.WeekSheet(context.Background(), "course-1", 2026, 10, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestWeekSheetArchivesCopy(t *testing.T) {
	repo := &fakeExportBookings{bookings: []models.BookingDetail{
		exportBooking("Kara Voss", "Air Exercise 9", true),
	}}
	archive, err := storage.NewArchive(t.TempDir())
	require.NoError(t, err)
	svc := NewExportService(repo, archive, true, nil)

	result, err := svc.WeekSheet(context.Background(), "course-1", 2026, 10, FormatCSV)
	require.NoError(t, err)

	file, err := archive.Open("course-1/" + result.Filename)
	require.NoError(t, err)
	defer file.Close()
	stored, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, result.Content, stored)
}

func TestWeekSheetEmptyWeek(t *testing.T) {
	svc := NewExportService(&fakeExportBookings{}, nil, true, nil)

	result, err := svc.WeekSheet(context.Background(), "course-1", 2026, 10, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "Date,Start,End,Student,Exercise,Status\n", string(result.Content))
}

package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyward-dev/flightline-api/internal/models"
	appErrors "github.com/skyward-dev/flightline-api/pkg/errors"
)

type fakeLogbookBookings struct {
	bookings []models.BookingDetail
	err      error
}

func (f *fakeLogbookBookings) ListByStudent(context.Context, string) ([]models.BookingDetail, error) {
	return f.bookings, f.err
}

type fakeLogbookStudents struct {
	err error
}

func (f *fakeLogbookStudents) FindByID(context.Context, string) (*models.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Student{ID: "stud-1"}, nil
}

func gradedBooking(id string, grade float64) models.BookingDetail {
	gradedAt := time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC)
	return models.BookingDetail{
		Booking: models.Booking{
			ID:           id,
			ExerciseID:   "ex-1",
			InstructorID: "inst-1",
			Grade:        &grade,
			GradeNotes:   "steep turns need work",
			GradedAt:     &gradedAt,
		},
		StartAt:      gradedAt.Add(-2 * time.Hour),
		EndAt:        gradedAt.Add(-time.Hour),
		ExerciseName: "Air Exercise 9",
	}
}

func TestSessionsGradeDecidesVariant(t *testing.T) {
	bookings := &fakeLogbookBookings{bookings: []models.BookingDetail{
		gradedBooking("bk-pass", 2.5),
		gradedBooking("bk-fail", 0),
	}}
	svc := NewLogbookService(bookings, &fakeLogbookStudents{}, nil)

	resp, err := svc.Sessions(context.Background(), "stud-1")
	require.NoError(t, err)
	require.Len(t, resp.Sessions, 2)

	pass := resp.Sessions[0]
	assert.Equal(t, models.SessionGraded, pass.Status.Kind)
	require.NotNil(t, pass.Status.Grade)
	assert.Equal(t, 2.5, pass.Status.Grade.Grade)
	assert.Nil(t, pass.Status.Booking)

	fail := resp.Sessions[1]
	assert.Equal(t, models.SessionObjectiveNotMet, fail.Status.Kind)
	require.NotNil(t, fail.Status.Grade)
}

func TestSessionsMinimumPassingGrade(t *testing.T) {
	bookings := &fakeLogbookBookings{bookings: []models.BookingDetail{
		gradedBooking("bk-edge", PassingGrade),
	}}
	svc := NewLogbookService(bookings, &fakeLogbookStudents{}, nil)

	resp, err := svc.Sessions(context.Background(), "stud-1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionGraded, resp.Sessions[0].Status.Kind)
}

func TestSessionsActiveBookingVariants(t *testing.T) {
	start := time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC)
	bookings := &fakeLogbookBookings{bookings: []models.BookingDetail{
		{
			Booking: models.Booking{ID: "bk-firm", InstructorID: "inst-1", Confirmed: true, Active: true},
			StartAt: start, EndAt: start.Add(time.Hour),
		},
		{
			Booking: models.Booking{ID: "bk-soft", InstructorID: "inst-2", Confirmed: false, Active: true},
			StartAt: start.Add(2 * time.Hour), EndAt: start.Add(3 * time.Hour),
		},
	}}
	svc := NewLogbookService(bookings, &fakeLogbookStudents{}, nil)

	resp, err := svc.Sessions(context.Background(), "stud-1")
	require.NoError(t, err)
	require.Len(t, resp.Sessions, 2)

	assert.Equal(t, models.SessionBooked, resp.Sessions[0].Status.Kind)
	require.NotNil(t, resp.Sessions[0].Status.Booking)
	assert.Equal(t, "inst-1", resp.Sessions[0].Status.Booking.InstructorID)
	assert.Nil(t, resp.Sessions[0].Status.Grade)

	assert.Equal(t, models.SessionTentative, resp.Sessions[1].Status.Kind)
}

func TestSessionsDropsUngradedNoShows(t *testing.T) {
	cancelled := time.Date(2026, time.January, 20, 8, 0, 0, 0, time.UTC)
	bookings := &fakeLogbookBookings{bookings: []models.BookingDetail{
		{
			Booking: models.Booking{ID: "bk-noshow", NoShow: true, Active: false, CancelledAt: &cancelled},
			StartAt: cancelled, EndAt: cancelled.Add(time.Hour),
		},
		gradedBooking("bk-pass", 2),
	}}
	svc := NewLogbookService(bookings, &fakeLogbookStudents{}, nil)

	resp, err := svc.Sessions(context.Background(), "stud-1")
	require.NoError(t, err)
	require.Len(t, resp.Sessions, 1)
	assert.Equal(t, "bk-pass", resp.Sessions[0].BookingID)
}

func TestSessionsUnknownStudent(t *testing.T) {
	svc := NewLogbookService(&fakeLogbookBookings{}, &fakeLogbookStudents{err: sql.ErrNoRows}, nil)

	_, err := svc.Sessions(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSessionsEmptyLogbook(t *testing.T) {
	svc := NewLogbookService(&fakeLogbookBookings{}, &fakeLogbookStudents{}, nil)

	resp, err := svc.Sessions(context.Background(), "stud-1")
	require.NoError(t, err)
	assert.Empty(t, resp.Sessions)
}

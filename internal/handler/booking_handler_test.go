package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/skyward-dev/flightline-api/internal/dto"
	"github.com/skyward-dev/flightline-api/internal/models"
	appErrors "github.com/skyward-dev/flightline-api/pkg/errors"
)

type bookingServiceMock struct {
	captured    dto.CreateBookingRequest
	createErr   error
	cancelErr   error
	noShowErr   error
	cancelledID string
	noShowID    string
}

func (m *bookingServiceMock) Create(_ context.Context, req dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	m.captured = req
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &dto.BookingResponse{Booking: models.Booking{ID: "bk-1"}}, nil
}

func (m *bookingServiceMock) Cancel(_ context.Context, id string) error {
	m.cancelledID = id
	return m.cancelErr
}

func (m *bookingServiceMock) RecordNoShow(_ context.Context, id string) error {
	m.noShowID = id
	return m.noShowErr
}

func (m *bookingServiceMock) Find(context.Context, string) (*models.BookingDetail, error) {
	return &models.BookingDetail{Booking: models.Booking{ID: "bk-1"}}, nil
}

func validBookingPayload() []byte {
	return []byte(`{
		"course_id": "course-1",
		"student_id": "stud-1",
		"instructor_id": "inst-1",
		"exercise_id": "ex-1",
		"start_at": "2026-03-02T09:00:00Z",
		"end_at": "2026-03-02T10:00:00Z",
		"confirmed": true
	}`)
}

func TestBookingHandlerCreateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &bookingServiceMock{}
	handler := &BookingHandler{service: mockSvc}

	req, _ := http.NewRequest(http.MethodPost, "/bookings", bytes.NewReader(validBookingPayload()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "stud-1", mockSvc.captured.StudentID)
	require.True(t, mockSvc.captured.Confirmed)
}

func TestBookingHandlerCreateConflictReturns409(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conflict := &models.BookingConflictError{Conflict: models.BookingDetail{
		Booking:      models.Booking{ID: "bk-existing"},
		StudentName:  "Kara Voss",
		ExerciseName: "Air Exercise 9",
	}}
	mockSvc := &bookingServiceMock{
		createErr: appErrors.Wrap(conflict, appErrors.ErrBookingConflict.Code, appErrors.ErrBookingConflict.Status, conflict.Error()),
	}
	handler := &BookingHandler{service: mockSvc}

	req, _ := http.NewRequest(http.MethodPost, "/bookings", bytes.NewReader(validBookingPayload()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Create(c)

	require.Equal(t, http.StatusConflict, w.Code)
	var envelope struct {
		Data  dto.ConflictResponse `json:"data"`
		Error *appErrors.Error     `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	require.Equal(t, appErrors.ErrBookingConflict.Code, envelope.Error.Code)
	require.Equal(t, "bk-existing", envelope.Data.Conflict.ID)
}

func TestBookingHandlerCreateInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &BookingHandler{service: &bookingServiceMock{}}

	req, _ := http.NewRequest(http.MethodPost, "/bookings", bytes.NewReader([]byte(`{"course_id":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandlerCreateFillsInstructorFromClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &bookingServiceMock{}
	handler := &BookingHandler{service: mockSvc}

	payload := []byte(`{
		"course_id": "course-1",
		"student_id": "stud-1",
		"exercise_id": "ex-1",
		"start_at": "2026-03-02T09:00:00Z",
		"end_at": "2026-03-02T10:00:00Z"
	}`)
	req, _ := http.NewRequest(http.MethodPost, "/bookings", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("currentUser", &models.Claims{UserID: "inst-9", Role: models.RoleInstructor})

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "inst-9", mockSvc.captured.InstructorID)
}

func TestBookingHandlerCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &bookingServiceMock{}
	handler := &BookingHandler{service: mockSvc}

	req, _ := http.NewRequest(http.MethodDelete, "/bookings/bk-1", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "bk-1"}}

	handler.Cancel(c)
	c.Writer.WriteHeaderNow()

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "bk-1", mockSvc.cancelledID)
}

func TestBookingHandlerNoShowNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &bookingServiceMock{noShowErr: appErrors.Clone(appErrors.ErrNotFound, "booking not found")}
	handler := &BookingHandler{service: mockSvc}

	req, _ := http.NewRequest(http.MethodPost, "/bookings/ghost/no-show", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "ghost"}}

	handler.NoShow(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "ghost", mockSvc.noShowID)
}

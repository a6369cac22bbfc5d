package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/skyward-dev/flightline-api/internal/dto"
	"github.com/skyward-dev/flightline-api/internal/models"
)

type availabilityServiceMock struct {
	postedCourse  string
	postedStudent string
	captured      dto.PostAvailabilityRequest
	postErr       error
	grid          *dto.WeekGridResponse
	gridYear      int
	gridWeek      int
}

func (m *availabilityServiceMock) PostWeek(_ context.Context, courseID, studentID string, req dto.PostAvailabilityRequest) error {
	m.postedCourse = courseID
	m.postedStudent = studentID
	m.captured = req
	return m.postErr
}

func (m *availabilityServiceMock) WeekGrid(_ context.Context, courseID string, year, week int) (*dto.WeekGridResponse, error) {
	m.gridYear = year
	m.gridWeek = week
	if m.grid != nil {
		return m.grid, nil
	}
	return &dto.WeekGridResponse{CourseID: courseID, Year: year, Week: week}, nil
}

func TestAvailabilityHandlerPostWeek(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &availabilityServiceMock{}
	handler := &AvailabilityHandler{service: mockSvc}

	payload := []byte(`{"year": 2026, "week": 10, "slots": [{"start_at": "2026-03-02T09:00:00Z", "end_at": "2026-03-02T10:00:00Z"}]}`)
	req, _ := http.NewRequest(http.MethodPut, "/courses/course-1/students/stud-1/availability", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "course-1"}, {Key: "sid", Value: "stud-1"}}

	handler.PostWeek(c)
	c.Writer.WriteHeaderNow()

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "course-1", mockSvc.postedCourse)
	require.Equal(t, "stud-1", mockSvc.postedStudent)
	require.Len(t, mockSvc.captured.Slots, 1)
}

func TestAvailabilityHandlerPostWeekSelfOnlyForStudents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &availabilityServiceMock{}
	handler := &AvailabilityHandler{service: mockSvc}

	payload := []byte(`{"year": 2026, "week": 10}`)
	req, _ := http.NewRequest(http.MethodPut, "/courses/course-1/students/stud-2/availability", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "course-1"}, {Key: "sid", Value: "stud-2"}}
	c.Set("currentUser", &models.Claims{UserID: "stud-1", Role: models.RoleStudent})

	handler.PostWeek(c)

	require.Equal(t, http.StatusForbidden, w.Code)
	require.Empty(t, mockSvc.postedStudent)
}

func TestAvailabilityHandlerWeekGridParsesQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &availabilityServiceMock{}
	handler := &AvailabilityHandler{service: mockSvc}

	req, _ := http.NewRequest(http.MethodGet, "/courses/course-1/availability?year=2026&week=10", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "course-1"}}

	handler.WeekGrid(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 2026, mockSvc.gridYear)
	require.Equal(t, 10, mockSvc.gridWeek)
}

func TestAvailabilityHandlerWeekGridRejectsBadQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &AvailabilityHandler{service: &availabilityServiceMock{}}

	req, _ := http.NewRequest(http.MethodGet, "/courses/course-1/availability?week=soon", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "course-1"}}

	handler.WeekGrid(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skyward-dev/flightline-api/internal/dto"
	"github.com/skyward-dev/flightline-api/internal/models"
	"github.com/skyward-dev/flightline-api/internal/service"
	appErrors "github.com/skyward-dev/flightline-api/pkg/errors"
	"github.com/skyward-dev/flightline-api/pkg/response"
)

type availabilityService interface {
	PostWeek(ctx context.Context, courseID, studentID string, req dto.PostAvailabilityRequest) error
	WeekGrid(ctx context.Context, courseID string, year, week int) (*dto.WeekGridResponse, error)
}

// AvailabilityHandler exposes availability posting and the week grid.
type AvailabilityHandler struct {
	service availabilityService
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(svc *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

// PostWeek godoc
// @Summary Replace a student's availability postings for one week
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param sid path string true "Student ID"
// @Param payload body dto.PostAvailabilityRequest true "Week postings"
// @Success 204
// @Router /courses/{id}/students/{sid}/availability [put]
func (h *AvailabilityHandler) PostWeek(c *gin.Context) {
	courseID := c.Param("id")
	studentID := c.Param("sid")

	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleStudent && claims.UserID != studentID {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "students may only post their own availability"))
		return
	}

	var req dto.PostAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability payload"))
		return
	}
	if err := h.service.PostWeek(c.Request.Context(), courseID, studentID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// WeekGrid godoc
// @Summary Packed day-by-lane availability grid for a course week
// @Tags Availability
// @Produce json
// @Param id path string true "Course ID"
// @Param year query int false "ISO year (defaults to current)"
// @Param week query int false "ISO week (defaults to current)"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/availability [get]
func (h *AvailabilityHandler) WeekGrid(c *gin.Context) {
	courseID := c.Param("id")
	year, week, err := weekQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	grid, err := h.service.WeekGrid(c.Request.Context(), courseID, year, week)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// weekQuery parses year/week query params, defaulting to the current ISO week.
func weekQuery(c *gin.Context) (int, int, error) {
	nowYear, nowWeek := time.Now().UTC().ISOWeek()
	year, week := nowYear, nowWeek

	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, appErrors.Clone(appErrors.ErrValidation, "year must be an integer")
		}
		year = parsed
	}
	if raw := c.Query("week"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, appErrors.Clone(appErrors.ErrValidation, "week must be an integer")
		}
		week = parsed
	}
	return year, week, nil
}

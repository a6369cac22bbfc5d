package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skyward-dev/flightline-api/internal/dto"
	"github.com/skyward-dev/flightline-api/internal/models"
	"github.com/skyward-dev/flightline-api/internal/service"
	"github.com/skyward-dev/flightline-api/pkg/response"
)

type rosterService interface {
	Rank(ctx context.Context, courseID string, strategy models.RankStrategy, filter models.RosterFilter) (*dto.RosterResponse, error)
}

// RosterHandler exposes the ranked course roster.
type RosterHandler struct {
	service rosterService
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(svc *service.RosterService) *RosterHandler {
	return &RosterHandler{service: svc}
}

// Roster godoc
// @Summary Ranked roster for a course
// @Description Orders students by booking priority. Strategy "availability" puts booking-ready students first; "score" orders by the composite score.
// @Tags Roster
// @Produce json
// @Param id path string true "Course ID"
// @Param strategy query string false "score or availability" default(availability)
// @Param filter query string false "active, onhold, suspended or graduates" default(active)
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/roster [get]
func (h *RosterHandler) Roster(c *gin.Context) {
	roster, err := h.service.Rank(c.Request.Context(),
		c.Param("id"),
		models.RankStrategy(c.Query("strategy")),
		models.RosterFilter(c.Query("filter")),
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

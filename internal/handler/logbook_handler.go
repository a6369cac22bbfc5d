package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skyward-dev/flightline-api/internal/dto"
	"github.com/skyward-dev/flightline-api/internal/service"
	"github.com/skyward-dev/flightline-api/pkg/response"
)

type logbookService interface {
	Sessions(ctx context.Context, studentID string) (*dto.LogbookResponse, error)
}

// LogbookHandler exposes a student's session history.
type LogbookHandler struct {
	service logbookService
}

// NewLogbookHandler constructs the handler.
func NewLogbookHandler(svc *service.LogbookService) *LogbookHandler {
	return &LogbookHandler{service: svc}
}

// Logbook godoc
// @Summary Session logbook for a student
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/logbook [get]
func (h *LogbookHandler) Logbook(c *gin.Context) {
	logbook, err := h.service.Sessions(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logbook, nil)
}

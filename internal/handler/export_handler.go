package handler

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/skyward-dev/flightline-api/internal/service"
	"github.com/skyward-dev/flightline-api/pkg/response"
)

type exportService interface {
	WeekSheet(ctx context.Context, courseID string, year, week int, format service.ExportFormat) (*service.ExportResult, error)
}

// ExportHandler serves downloadable weekly booking sheets.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// WeekSheet godoc
// @Summary Export the week's bookings as CSV or PDF
// @Tags Exports
// @Produce octet-stream
// @Param id path string true "Course ID"
// @Param year query int false "ISO year (defaults to current)"
// @Param week query int false "ISO week (defaults to current)"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /courses/{id}/bookings/export [get]
func (h *ExportHandler) WeekSheet(c *gin.Context) {
	year, week, err := weekQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format := service.ExportFormat(c.DefaultQuery("format", string(service.FormatCSV)))

	result, err := h.service.WeekSheet(c.Request.Context(), c.Param("id"), year, week, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(200, result.ContentType, result.Content)
}

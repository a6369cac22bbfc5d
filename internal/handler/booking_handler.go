package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skyward-dev/flightline-api/internal/dto"
	"github.com/skyward-dev/flightline-api/internal/models"
	"github.com/skyward-dev/flightline-api/internal/service"
	appErrors "github.com/skyward-dev/flightline-api/pkg/errors"
	"github.com/skyward-dev/flightline-api/pkg/response"
)

type bookingService interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (*dto.BookingResponse, error)
	Cancel(ctx context.Context, id string) error
	RecordNoShow(ctx context.Context, id string) error
	Find(ctx context.Context, id string) (*models.BookingDetail, error)
}

// BookingHandler exposes the booking workflow.
type BookingHandler struct {
	service bookingService
}

// NewBookingHandler constructs the handler.
func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{service: svc}
}

// Create godoc
// @Summary Book a training session on a student interval
// @Description Rejects with 409 and the conflicting booking when either participant is already booked on an overlapping interval.
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.CreateBookingRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}

	if claims := claimsFromContext(c); claims != nil && req.InstructorID == "" {
		req.InstructorID = claims.UserID
	}

	booking, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		var conflictErr *models.BookingConflictError
		if errors.As(err, &conflictErr) {
			appErr := appErrors.FromError(err)
			c.JSON(appErr.Status, response.Envelope{
				Data:  dto.ConflictResponse{Conflict: conflictErr.Conflict},
				Error: appErr,
			})
			return
		}
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// Get godoc
// @Summary Fetch one booking with its slot detail
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	detail, err := h.service.Find(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Cancel godoc
// @Summary Cancel a booking
// @Description Inside the grace window the student's slot is returned to the open pool; past it the slot is removed.
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 204
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Cancel(c *gin.Context) {
	if err := h.service.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// NoShow godoc
// @Summary Record a student no-show for a booking
// @Description Cancels the booking, counts the absence, and suspends the student once the threshold is crossed.
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 204
// @Router /bookings/{id}/no-show [post]
func (h *BookingHandler) NoShow(c *gin.Context) {
	if err := h.service.RecordNoShow(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

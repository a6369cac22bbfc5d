package dto

import (
	"time"

	"github.com/skyward-dev/flightline-api/internal/models"
)

// CreateBookingRequest is an instructor's claim on a student interval.
type CreateBookingRequest struct {
	CourseID     string    `json:"course_id" validate:"required"`
	StudentID    string    `json:"student_id" validate:"required"`
	InstructorID string    `json:"instructor_id" validate:"required"`
	ExerciseID   string    `json:"exercise_id" validate:"required"`
	StartAt      time.Time `json:"start_at" validate:"required"`
	EndAt        time.Time `json:"end_at" validate:"required"`
	Confirmed    bool      `json:"confirmed"`
}

// BookingResponse returns the created booking with its slot detail.
type BookingResponse struct {
	Booking models.Booking `json:"booking"`
	Slot    models.Slot    `json:"slot"`
}

// ConflictResponse surfaces the booking that blocked a save.
type ConflictResponse struct {
	Conflict models.BookingDetail `json:"conflict"`
}

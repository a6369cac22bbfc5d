package models

import (
	"fmt"
	"time"
)

// Booking represents an instructor's claim on a slot for a training exercise.
type Booking struct {
	ID           string     `db:"id" json:"id"`
	CourseID     string     `db:"course_id" json:"course_id"`
	StudentID    string     `db:"student_id" json:"student_id"`
	InstructorID string     `db:"instructor_id" json:"instructor_id"`
	ExerciseID   string     `db:"exercise_id" json:"exercise_id"`
	SlotID       string     `db:"slot_id" json:"slot_id"`
	Confirmed    bool       `db:"confirmed" json:"confirmed"`
	Active       bool       `db:"active" json:"active"`
	NoShow       bool       `db:"no_show" json:"no_show"`
	Grade        *float64   `db:"grade" json:"grade,omitempty"`
	GradeNotes   string     `db:"grade_notes" json:"grade_notes,omitempty"`
	GradedAt     *time.Time `db:"graded_at" json:"graded_at,omitempty"`
	CancelledAt  *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// BookingDetail joins a booking with its slot interval and display names for
// conflict reporting and week sheets.
type BookingDetail struct {
	Booking
	StartAt      time.Time `db:"start_at" json:"start_at"`
	EndAt        time.Time `db:"end_at" json:"end_at"`
	Year         int       `db:"year" json:"year"`
	Week         int       `db:"week" json:"week"`
	StudentName  string    `db:"student_name" json:"student_name"`
	ExerciseName string    `db:"exercise_name" json:"exercise_name"`
}

// OverlapsInterval reports whether the booking's slot touches or intersects
// the candidate interval (boundary-inclusive, matching Slot.Overlaps).
func (b BookingDetail) OverlapsInterval(startAt, endAt time.Time) bool {
	return !b.StartAt.After(endAt) && !startAt.After(b.EndAt)
}

// BookingConflictError is returned when a prospective booking would
// double-book the instructor or the student.
type BookingConflictError struct {
	Conflict BookingDetail `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *BookingConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("booking conflicts with %s (%s) at %s",
		e.Conflict.StudentName,
		e.Conflict.ExerciseName,
		e.Conflict.StartAt.Format("2006-01-02 15:04"),
	)
}

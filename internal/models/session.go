package models

import "time"

// SessionStatusKind enumerates the closed set of session states shown in a
// student's logbook.
type SessionStatusKind string

const (
	SessionGraded          SessionStatusKind = "graded"
	SessionBooked          SessionStatusKind = "booked"
	SessionTentative       SessionStatusKind = "tentative"
	SessionObjectiveNotMet SessionStatusKind = "objective-not-met"
)

// GradeInfo carries the grading outcome for a graded session.
type GradeInfo struct {
	Grade    float64   `json:"grade"`
	Notes    string    `json:"notes,omitempty"`
	GradedAt time.Time `json:"graded_at"`
}

// BookingRef points at the booking backing an upcoming session.
type BookingRef struct {
	BookingID    string `json:"booking_id"`
	InstructorID string `json:"instructor_id"`
	Confirmed    bool   `json:"confirmed"`
}

// SessionStatus is a tagged union: exactly one of Grade or Booking is set
// depending on Kind. The variant is decided once at assembly time so
// downstream consumers never re-inspect raw status strings.
type SessionStatus struct {
	Kind    SessionStatusKind `json:"kind"`
	Grade   *GradeInfo        `json:"grade,omitempty"`
	Booking *BookingRef       `json:"booking,omitempty"`
}

// GradedStatus builds the graded variant. A passing grade yields
// SessionGraded, a failing one SessionObjectiveNotMet.
func GradedStatus(grade float64, notes string, gradedAt time.Time, passed bool) SessionStatus {
	kind := SessionGraded
	if !passed {
		kind = SessionObjectiveNotMet
	}
	return SessionStatus{
		Kind:  kind,
		Grade: &GradeInfo{Grade: grade, Notes: notes, GradedAt: gradedAt},
	}
}

// BookedStatus builds the booked or tentative variant from a booking.
func BookedStatus(ref BookingRef) SessionStatus {
	kind := SessionTentative
	if ref.Confirmed {
		kind = SessionBooked
	}
	return SessionStatus{Kind: kind, Booking: &ref}
}

// Session is one logbook entry: an exercise flown (or scheduled) with its
// resolved status.
type Session struct {
	BookingID    string        `json:"booking_id"`
	ExerciseID   string        `json:"exercise_id"`
	ExerciseName string        `json:"exercise_name"`
	StartAt      time.Time     `json:"start_at"`
	EndAt        time.Time     `json:"end_at"`
	Status       SessionStatus `json:"status"`
}

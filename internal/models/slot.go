package models

import "time"

// SlotStatus tracks the booking lifecycle of a posted slot.
type SlotStatus string

const (
	// SlotStatusOpen marks an unbooked availability posting.
	SlotStatusOpen      SlotStatus = ""
	SlotStatusTentative SlotStatus = "tentative"
	SlotStatusBooked    SlotStatus = "booked"
)

// Slot represents one posted availability interval for a student within an
// ISO week. Start and end are half-open in storage but overlap checks treat
// the boundary as inclusive.
type Slot struct {
	ID         string     `db:"id" json:"id"`
	CourseID   string     `db:"course_id" json:"course_id"`
	StudentID  string     `db:"student_id" json:"student_id"`
	Year       int        `db:"year" json:"year"`
	Week       int        `db:"week" json:"week"`
	StartAt    time.Time  `db:"start_at" json:"start_at"`
	EndAt      time.Time  `db:"end_at" json:"end_at"`
	Status     SlotStatus `db:"status" json:"status"`
	StatusInfo string     `db:"status_info" json:"status_info,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// Overlaps reports whether two intervals touch or intersect in time. The
// boundary is inclusive on purpose: a slot ending at 10:00 overlaps one
// starting at 10:00, so back-to-back postings by different students still
// force separate lanes.
func (s Slot) Overlaps(other Slot) bool {
	return !s.StartAt.After(other.EndAt) && !other.StartAt.After(s.EndAt)
}

// SameOwner reports whether both slots were posted by the same student.
func (s Slot) SameOwner(other Slot) bool {
	return s.StudentID == other.StudentID
}

// SlotFilter narrows slot queries to a course-week bucket.
type SlotFilter struct {
	CourseID  string
	Year      int
	Week      int
	StudentID string
}

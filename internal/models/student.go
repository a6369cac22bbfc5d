package models

import "time"

// StudentStanding is the roster state of a student within a course.
type StudentStanding string

const (
	StandingActive    StudentStanding = "active"
	StandingOnHold    StudentStanding = "onhold"
	StandingSuspended StudentStanding = "suspended"
	StandingGraduated StudentStanding = "graduated"
)

// RankStrategy selects how the roster is ordered.
type RankStrategy string

const (
	// RankByScore orders purely by the composite priority score.
	RankByScore RankStrategy = "score"
	// RankByAvailability applies the three-bucket segmentation that puts
	// booking-ready students first.
	RankByAvailability RankStrategy = "availability"
)

// Student is a course participant.
type Student struct {
	ID              string          `db:"id" json:"id"`
	CourseID        string          `db:"course_id" json:"course_id"`
	FullName        string          `db:"full_name" json:"full_name"`
	Callsign        string          `db:"callsign" json:"callsign,omitempty"`
	Standing        StudentStanding `db:"standing" json:"standing"`
	LessonsComplete bool            `db:"lessons_complete" json:"lessons_complete"`
	NoShowCount     int             `db:"no_show_count" json:"no_show_count"`
	LastSessionAt   *time.Time      `db:"last_session_at" json:"last_session_at,omitempty"`
	GraduatedAt     *time.Time      `db:"graduated_at" json:"graduated_at,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// StudentWithSignals carries a student plus the per-student scheduling
// signals the ranker consumes. Signals are computed fresh on every roster
// fetch and never persisted.
type StudentWithSignals struct {
	Student
	RecencyDays      int     `db:"recency_days" json:"recency_days"`
	SlotCount        int     `db:"slot_count" json:"slot_count"`
	ActivityCount    int     `db:"activity_count" json:"activity_count"`
	Completions      int     `db:"completions" json:"completions"`
	Score            float64 `db:"score" json:"score"`
	HasActiveBooking bool    `db:"has_active_booking" json:"has_active_booking"`
}

// RosterFilter selects which roster segment is fetched.
type RosterFilter string

const (
	RosterFilterActive    RosterFilter = "active"
	RosterFilterOnHold    RosterFilter = "onhold"
	RosterFilterSuspended RosterFilter = "suspended"
	RosterFilterGraduates RosterFilter = "graduates"
)

// Valid reports whether the filter is one of the known segments.
func (f RosterFilter) Valid() bool {
	switch f {
	case RosterFilterActive, RosterFilterOnHold, RosterFilterSuspended, RosterFilterGraduates:
		return true
	}
	return false
}

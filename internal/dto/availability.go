package dto

import (
	"time"

	"github.com/skyward-dev/flightline-api/internal/models"
)

// SlotInterval is one posted interval within a week save.
type SlotInterval struct {
	StartAt time.Time `json:"start_at" validate:"required"`
	EndAt   time.Time `json:"end_at" validate:"required"`
}

// PostAvailabilityRequest replaces a student's postings for one ISO week.
// Saving always supersedes the previous posting set for that week.
type PostAvailabilityRequest struct {
	Year  int            `json:"year" validate:"required"`
	Week  int            `json:"week" validate:"required,min=1,max=53"`
	Slots []SlotInterval `json:"slots"`
}

// DayLanes is the packed lane layout for one weekday. Lanes is indexed by
// lane, each lane holding its slots in placement order.
type DayLanes struct {
	Weekday int             `json:"weekday"`
	Date    time.Time       `json:"date"`
	Lanes   [][]models.Slot `json:"lanes"`
}

// WeekGridResponse is the day x lane grid for one course week.
type WeekGridResponse struct {
	CourseID string     `json:"course_id"`
	Year     int        `json:"year"`
	Week     int        `json:"week"`
	MaxLanes int        `json:"max_lanes"`
	Days     []DayLanes `json:"days"`
}

package dto

import "github.com/skyward-dev/flightline-api/internal/models"

// RankedStudent is one roster row with its computed position.
type RankedStudent struct {
	models.StudentWithSignals
	Rank int `json:"rank"`
	// WaitAlert flags students whose recency exceeds the configured
	// posting-wait window. Display only, never part of the ordering.
	WaitAlert bool `json:"wait_alert"`
	// OnHoldCandidate flags students idle past the on-hold period, also
	// display only.
	OnHoldCandidate bool `json:"on_hold_candidate"`
}

// RosterResponse is the ranked roster plus the dashboard wait metric.
type RosterResponse struct {
	CourseID        string              `json:"course_id"`
	Strategy        models.RankStrategy `json:"strategy"`
	Filter          models.RosterFilter `json:"filter"`
	Students        []RankedStudent     `json:"students"`
	AverageWaitDays int                 `json:"average_wait_days"`
}

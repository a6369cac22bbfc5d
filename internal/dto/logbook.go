package dto

import "github.com/skyward-dev/flightline-api/internal/models"

// LogbookResponse lists a student's sessions newest first.
type LogbookResponse struct {
	StudentID string           `json:"student_id"`
	Sessions  []models.Session `json:"sessions"`
}

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradedStatusVariants(t *testing.T) {
	gradedAt := time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC)

	passed := GradedStatus(2, "solid circuit work", gradedAt, true)
	assert.Equal(t, SessionGraded, passed.Kind)
	require.NotNil(t, passed.Grade)
	assert.Equal(t, 2.0, passed.Grade.Grade)
	assert.Nil(t, passed.Booking)

	failed := GradedStatus(0, "", gradedAt, false)
	assert.Equal(t, SessionObjectiveNotMet, failed.Kind)
	require.NotNil(t, failed.Grade)
	assert.Nil(t, failed.Booking)
}

func TestBookedStatusVariants(t *testing.T) {
	firm := BookedStatus(BookingRef{BookingID: "bk-1", InstructorID: "inst-1", Confirmed: true})
	assert.Equal(t, SessionBooked, firm.Kind)
	require.NotNil(t, firm.Booking)
	assert.Nil(t, firm.Grade)

	soft := BookedStatus(BookingRef{BookingID: "bk-2", InstructorID: "inst-1"})
	assert.Equal(t, SessionTentative, soft.Kind)
}

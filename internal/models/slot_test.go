package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func interval(startHour, endHour int) Slot {
	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	return Slot{
		StartAt: day.Add(time.Duration(startHour) * time.Hour),
		EndAt:   day.Add(time.Duration(endHour) * time.Hour),
	}
}

func TestSlotOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b Slot
		want bool
	}{
		{"disjoint", interval(9, 10), interval(12, 13), false},
		{"partial overlap", interval(9, 11), interval(10, 12), true},
		{"contained", interval(9, 13), interval(10, 11), true},
		{"identical", interval(9, 10), interval(9, 10), true},
		{"touching boundaries count as overlap", interval(9, 10), interval(10, 11), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Overlaps(tc.b))
			assert.Equal(t, tc.want, tc.b.Overlaps(tc.a), "overlap must be symmetric")
		})
	}
}

func TestSlotSameOwner(t *testing.T) {
	a := Slot{StudentID: "stud-1"}
	b := Slot{StudentID: "stud-1"}
	c := Slot{StudentID: "stud-2"}

	assert.True(t, a.SameOwner(b))
	assert.False(t, a.SameOwner(c))
}

func TestBookingDetailOverlapsIntervalMatchesSlotSemantics(t *testing.T) {
	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	detail := BookingDetail{StartAt: day.Add(10 * time.Hour), EndAt: day.Add(11 * time.Hour)}

	assert.True(t, detail.OverlapsInterval(day.Add(11*time.Hour), day.Add(12*time.Hour)))
	assert.False(t, detail.OverlapsInterval(day.Add(11*time.Hour+time.Second), day.Add(12*time.Hour)))
}

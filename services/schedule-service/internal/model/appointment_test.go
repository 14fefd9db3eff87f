package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOccupiesSlot(t *testing.T) {
	assert.True(t, StatusScheduled.OccupiesSlot())
	assert.True(t, StatusCompleted.OccupiesSlot())
	assert.True(t, StatusNoShow.OccupiesSlot())
	assert.False(t, StatusCancelled.OccupiesSlot())
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to AppointmentStatus
		want     bool
	}{
		{StatusScheduled, StatusCompleted, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusScheduled, StatusNoShow, true},
		{StatusScheduled, StatusScheduled, false},
		{StatusScheduled, "Rescheduled", false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusScheduled, false},
		{StatusNoShow, StatusCompleted, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, SessionCouple.Valid())
	assert.False(t, SessionType("Family").Valid())
	assert.True(t, ModePhysical.Valid())
	assert.False(t, MeetingMode("").Valid())
	assert.True(t, StatusNoShow.Valid())
	assert.False(t, AppointmentStatus("No-Show").Valid())
}

func TestClientName(t *testing.T) {
	d := PracticeData{Clients: []Client{{ID: "c-1", Name: "Jane Doe"}}}
	assert.Equal(t, "Jane Doe", d.ClientName("c-1"))
	assert.Empty(t, d.ClientName("c-2"))
}

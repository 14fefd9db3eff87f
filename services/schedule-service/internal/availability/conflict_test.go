package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/model"
)

func appt(id, date, start string, duration int, status model.AppointmentStatus) model.Appointment {
	return model.Appointment{
		ID:        id,
		ClientID:  "client-" + id,
		Date:      date,
		StartTime: start,
		Duration:  duration,
		Type:      model.SessionIndividual,
		Mode:      model.ModeOnline,
		Status:    status,
	}
}

func TestFindConflictBoundaries(t *testing.T) {
	existing := []model.Appointment{appt("a", "2024-03-01", "09:00", 50, model.StatusScheduled)}

	cases := []struct {
		name     string
		start    string
		duration int
		conflict bool
	}{
		{"back to back after", "09:50", 50, false},
		{"back to back before", "08:10", 50, false},
		{"one minute overlap at end", "09:49", 11, true},
		{"one minute overlap at start", "08:11", 50, true},
		{"inside", "09:10", 10, true},
		{"covering", "08:00", 180, true},
		{"identical", "09:00", 50, true},
		{"far later", "14:00", 60, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FindConflict(existing, "2024-03-01", tc.start, tc.duration)
			require.NoError(t, err)
			if tc.conflict {
				require.NotNil(t, got)
				assert.Equal(t, "a", got.ID)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestFindConflictIgnoresCancelledAndOtherDates(t *testing.T) {
	existing := []model.Appointment{
		appt("cancelled", "2024-03-01", "09:00", 50, model.StatusCancelled),
		appt("other-day", "2024-03-02", "09:00", 50, model.StatusScheduled),
	}
	got, err := FindConflict(existing, "2024-03-01", "09:00", 50)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindConflictCompletedAndNoShowStillOccupy(t *testing.T) {
	for _, status := range []model.AppointmentStatus{model.StatusCompleted, model.StatusNoShow} {
		existing := []model.Appointment{appt("past", "2024-03-01", "09:00", 50, status)}
		got, err := FindConflict(existing, "2024-03-01", "09:30", 30)
		require.NoError(t, err)
		require.NotNil(t, got, string(status))
		assert.Equal(t, "past", got.ID)
	}
}

func TestFindConflictReturnsFirstInInputOrder(t *testing.T) {
	existing := []model.Appointment{
		appt("early", "2024-03-01", "10:00", 60, model.StatusScheduled),
		appt("late", "2024-03-01", "09:00", 90, model.StatusScheduled),
	}
	for i := 0; i < 3; i++ {
		got, err := FindConflict(existing, "2024-03-01", "10:15", 15)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "early", got.ID)
	}
}

func TestFindConflictAcrossMidnight(t *testing.T) {
	existing := []model.Appointment{appt("night", "2024-03-01", "23:30", 60, model.StatusScheduled)}

	got, err := FindConflict(existing, "2024-03-01", "23:45", 30)
	require.NoError(t, err)
	assert.NotNil(t, got)

	// The spill past midnight is not projected onto the next date.
	got, err = FindConflict(existing, "2024-03-02", "00:00", 30)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindConflictDoesNotMutateInput(t *testing.T) {
	existing := []model.Appointment{appt("a", "2024-03-01", "09:00", 50, model.StatusScheduled)}
	snapshot := append([]model.Appointment(nil), existing...)

	got, err := FindConflict(existing, "2024-03-01", "09:30", 30)
	require.NoError(t, err)
	got.ClientID = "changed"
	assert.Equal(t, snapshot, existing)
}

func TestFindConflictMalformed(t *testing.T) {
	_, err := FindConflict(nil, "2024-03-01", "25:00", 30)
	assert.ErrorIs(t, err, ErrMalformedTime)

	existing := []model.Appointment{appt("bad", "2024-03-01", "9am", 50, model.StatusScheduled)}
	_, err = FindConflict(existing, "2024-03-01", "09:00", 30)
	assert.ErrorIs(t, err, ErrMalformedTime)
	assert.Contains(t, err.Error(), "appointment bad")

	// A malformed row on another date is never inspected.
	_, err = FindConflict(existing, "2024-03-02", "09:00", 30)
	assert.NoError(t, err)
}

func TestNonOverlappingPairsNeverConflict(t *testing.T) {
	for start := 0; start < 600; start += 7 {
		for dur := 1; dur <= 120; dur += 13 {
			s, _ := MinutesToTime(start)
			existing := []model.Appointment{appt("x", "2024-03-01", s, dur, model.StatusScheduled)}

			after, err := MinutesToTime(start + dur)
			require.NoError(t, err)
			got, err := FindConflict(existing, "2024-03-01", after, 30)
			require.NoError(t, err)
			require.Nil(t, got, "start=%d dur=%d", start, dur)

			inside, _ := MinutesToTime(start + dur - 1)
			got, err = FindConflict(existing, "2024-03-01", inside, 30)
			require.NoError(t, err)
			require.NotNil(t, got, "start=%d dur=%d", start, dur)
		}
	}
}

func TestFindConflictRejectsNonPositiveDuration(t *testing.T) {
	existing := []model.Appointment{appt("a", "2024-03-01", "09:00", 50, model.StatusScheduled)}
	for _, d := range []int{0, -30} {
		got, err := FindConflict(existing, "2024-03-01", "09:00", d)
		assert.ErrorIs(t, err, ErrInvalidDuration, "duration=%d", d)
		assert.Nil(t, got)
	}
}

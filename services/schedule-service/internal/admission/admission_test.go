package admission

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/model"
)

func existingAt0900() []model.Appointment {
	return []model.Appointment{{
		ID:             "appt-1",
		PractitionerID: "prac-1",
		ClientID:       "client-jane",
		Date:           "2024-03-01",
		StartTime:      "09:00",
		Duration:       50,
		Type:           model.SessionIndividual,
		Mode:           model.ModeOnline,
		Status:         model.StatusScheduled,
	}}
}

func rejection(t *testing.T, err error) *Rejection {
	t.Helper()
	var rej *Rejection
	require.True(t, errors.As(err, &rej), "expected *Rejection, got %v", err)
	return rej
}

func TestProposeOverlapRejected(t *testing.T) {
	existing := existingAt0900()
	_, err := Propose(model.Draft{ClientID: "client-bob", Date: "2024-03-01", StartTime: "09:30", Duration: 30}, existing, "prac-1")

	rej := rejection(t, err)
	assert.Equal(t, KindSchedulingConflict, rej.Kind)
	require.NotNil(t, rej.Conflict)
	assert.Equal(t, "appt-1", rej.Conflict.ID)
	assert.Equal(t, existingAt0900(), existing)
}

func TestProposeBackToBackAccepted(t *testing.T) {
	existing := existingAt0900()
	got, err := Propose(model.Draft{ClientID: "client-bob", Date: "2024-03-01", StartTime: "09:50", Duration: 30}, existing, "prac-1")
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.NotEqual(t, "appt-1", got.ID)
	assert.Equal(t, "prac-1", got.PractitionerID)
	assert.Equal(t, "client-bob", got.ClientID)
	assert.Equal(t, 30, got.Duration)
	assert.Equal(t, model.StatusScheduled, got.Status)
	assert.Len(t, existing, 1)
}

func TestProposeMissingClientSkipsConflictCheck(t *testing.T) {
	// A malformed stored row would surface as MalformedTime if the conflict
	// check ran.
	existing := []model.Appointment{{ID: "bad", Date: "2024-03-01", StartTime: "9am", Duration: 50, Status: model.StatusScheduled}}
	_, err := Propose(model.Draft{ClientID: "  ", Date: "2024-03-01", StartTime: "09:00"}, existing, "prac-1")

	rej := rejection(t, err)
	assert.Equal(t, KindIncompleteFields, rej.Kind)
	assert.Equal(t, []string{"clientId"}, rej.Fields)
	assert.Nil(t, rej.Conflict)
}

func TestProposeValidationOrder(t *testing.T) {
	cases := []struct {
		name         string
		draft        model.Draft
		practitioner string
		kind         Kind
		fields       []string
	}{
		{"all missing", model.Draft{}, "", KindIncompleteFields, []string{"clientId", "date", "startTime", "practitionerId"}},
		{"missing practitioner", model.Draft{ClientID: "c", Date: "2024-03-01", StartTime: "10:00"}, " ", KindIncompleteFields, []string{"practitionerId"}},
		{"bad date", model.Draft{ClientID: "c", Date: "2024-02-30", StartTime: "10:00"}, "p", KindMalformedTime, []string{"date"}},
		{"bad time", model.Draft{ClientID: "c", Date: "2024-03-01", StartTime: "24:00"}, "p", KindMalformedTime, []string{"startTime"}},
		{"bad time before bad duration", model.Draft{ClientID: "c", Date: "2024-03-01", StartTime: "7:00", Duration: -5}, "p", KindMalformedTime, []string{"startTime"}},
		{"negative duration", model.Draft{ClientID: "c", Date: "2024-03-01", StartTime: "10:00", Duration: -5}, "p", KindInvalidDuration, []string{"duration"}},
		{"unknown type", model.Draft{ClientID: "c", Date: "2024-03-01", StartTime: "10:00", Type: "Family"}, "p", KindInvalidField, []string{"type"}},
		{"unknown mode and status", model.Draft{ClientID: "c", Date: "2024-03-01", StartTime: "10:00", Mode: "Phone", Status: "Pending"}, "p", KindInvalidField, []string{"mode", "status"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Propose(tc.draft, existingAt0900(), tc.practitioner)
			rej := rejection(t, err)
			assert.Equal(t, tc.kind, rej.Kind)
			assert.Equal(t, tc.fields, rej.Fields)
		})
	}
}

func TestProposeDefaults(t *testing.T) {
	got, err := Propose(model.Draft{ClientID: "c", Date: "2024-03-02", StartTime: "10:00"}, nil, "p")
	require.NoError(t, err)
	assert.Equal(t, DefaultDuration, got.Duration)
	assert.Equal(t, model.SessionIndividual, got.Type)
	assert.Equal(t, model.ModeOnline, got.Mode)
	assert.Equal(t, model.StatusScheduled, got.Status)

	a := New(WithDefaultDuration(45))
	got, err = a.Propose(model.Draft{ClientID: "c", Date: "2024-03-02", StartTime: "10:00", Type: model.SessionCouple, Mode: model.ModePhysical}, nil, "p")
	require.NoError(t, err)
	assert.Equal(t, 45, got.Duration)
	assert.Equal(t, model.SessionCouple, got.Type)
	assert.Equal(t, model.ModePhysical, got.Mode)
}

func TestProposeDefaultDurationCanConflict(t *testing.T) {
	// 08:15 + 50 runs into the 09:00 session.
	_, err := Propose(model.Draft{ClientID: "c", Date: "2024-03-01", StartTime: "08:15"}, existingAt0900(), "p")
	assert.Equal(t, KindSchedulingConflict, rejection(t, err).Kind)
}

func TestProposeCancelledSlotIsFree(t *testing.T) {
	existing := existingAt0900()
	existing[0].Status = model.StatusCancelled
	_, err := Propose(model.Draft{ClientID: "c", Date: "2024-03-01", StartTime: "09:00"}, existing, "p")
	assert.NoError(t, err)
}

func TestProposeCompletedSlotStillOccupied(t *testing.T) {
	existing := existingAt0900()
	existing[0].Status = model.StatusCompleted
	_, err := Propose(model.Draft{ClientID: "c", Date: "2024-03-01", StartTime: "09:10", Duration: 20}, existing, "p")
	assert.Equal(t, KindSchedulingConflict, rejection(t, err).Kind)
}

func TestProposeMalformedStoredRow(t *testing.T) {
	existing := []model.Appointment{{ID: "bad", Date: "2024-03-01", StartTime: "9am", Duration: 50, Status: model.StatusScheduled}}
	_, err := Propose(model.Draft{ClientID: "c", Date: "2024-03-01", StartTime: "09:00"}, existing, "p")
	rej := rejection(t, err)
	assert.Equal(t, KindMalformedTime, rej.Kind)
	assert.Contains(t, rej.Detail, "bad")
}

func TestProposeRegeneratesCollidingID(t *testing.T) {
	ids := []string{"appt-1", "", "appt-2"}
	calls := 0
	a := New(WithIDFunc(func() string {
		id := ids[calls]
		calls++
		return id
	}))

	got, err := a.Propose(model.Draft{ClientID: "c", Date: "2024-03-01", StartTime: "11:00"}, existingAt0900(), "p")
	require.NoError(t, err)
	assert.Equal(t, "appt-2", got.ID)
	assert.Equal(t, 3, calls)
}

func TestProposeGivesUpOnStuckIDFunc(t *testing.T) {
	for _, stuck := range []string{"appt-1", ""} {
		calls := 0
		a := New(WithIDFunc(func() string {
			calls++
			return stuck
		}))

		_, err := a.Propose(model.Draft{ClientID: "c", Date: "2024-03-01", StartTime: "11:00"}, existingAt0900(), "p")
		assert.ErrorIs(t, err, ErrIDExhausted)
		var rej *Rejection
		assert.False(t, errors.As(err, &rej))
		assert.Equal(t, maxIDAttempts, calls)
	}
}

func TestProposeTrimsFields(t *testing.T) {
	got, err := Propose(model.Draft{ClientID: " c ", Date: " 2024-03-01", StartTime: "11:00 "}, nil, "p")
	require.NoError(t, err)
	assert.Equal(t, "c", got.ClientID)
	assert.Equal(t, "2024-03-01", got.Date)
	assert.Equal(t, "11:00", got.StartTime)
}

func TestRejectionMessage(t *testing.T) {
	_, err := Propose(model.Draft{ClientID: "c", Date: "2024-03-01", StartTime: "09:30", Duration: 30}, existingAt0900(), "p")
	rej := rejection(t, err)

	names := map[string]string{"client-jane": "Jane Doe"}
	assert.Equal(t, "Conflict detected: 09:00 is occupied by a session with Jane Doe.",
		rej.Message(func(id string) string { return names[id] }))
	assert.Equal(t, "Conflict detected: 09:00 is occupied by a session with another client.", rej.Message(nil))

	incomplete := &Rejection{Kind: KindIncompleteFields, Fields: []string{"clientId", "date"}}
	assert.Equal(t, "Please fill in all required fields: clientId, date.", incomplete.Message(nil))
	assert.Equal(t, "IncompleteFields: clientId, date", incomplete.Error())
}

func TestAuditDetails(t *testing.T) {
	appt := existingAt0900()[0]
	assert.Equal(t, "Scheduled Individual on 2024-03-01", AuditDetails(appt))

	appt.Status = model.StatusNoShow
	assert.Equal(t, "Changed Individual on 2024-03-01 from Scheduled to No-show", StatusAuditDetails(appt, model.StatusScheduled))
}

func TestValidateNeedsNoSchedule(t *testing.T) {
	a := New()

	_, err := a.Validate(model.Draft{Date: "2024-03-01"}, "p")
	assert.Equal(t, KindIncompleteFields, rejection(t, err).Kind)

	got, err := a.Validate(model.Draft{ClientID: " c ", Date: "2024-03-01", StartTime: "09:00"}, "p")
	require.NoError(t, err)
	assert.Empty(t, got.ID)
	assert.Equal(t, "c", got.ClientID)
	assert.Equal(t, DefaultDuration, got.Duration)
	assert.Equal(t, model.StatusScheduled, got.Status)
}

package outbox

import (
	"encoding/json"
	"time"

	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/model"
)

// Topic names. The Kafka topic equals EventType.
const (
	EventAppointmentScheduled     = "practice.appointment.scheduled.v1"
	EventAppointmentStatusChanged = "practice.appointment.status_changed.v1"
)

// Event is the envelope written to the outbox table.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

type AppointmentPayload struct {
	PractitionerID string            `json:"practitioner_id"`
	Appointment    model.Appointment `json:"appointment"`
	PreviousStatus string            `json:"previous_status,omitempty"`
	OccurredAt     string            `json:"occurred_at"`
}

// AppointmentEvent builds an outbox event for appt. previous is empty for
// newly scheduled appointments.
func AppointmentEvent(eventType string, appt model.Appointment, previous model.AppointmentStatus, at time.Time) (Event, error) {
	payload, err := json.Marshal(AppointmentPayload{
		PractitionerID: appt.PractitionerID,
		Appointment:    appt,
		PreviousStatus: string(previous),
		OccurredAt:     at.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return Event{}, err
	}
	return Event{
		AggregateType: "appointment",
		// Keyed by practitioner so one practitioner's events stay ordered
		// within a partition.
		AggregateID: appt.PractitionerID,
		EventType:   eventType,
		Payload:     payload,
	}, nil
}

// Package admission validates appointment drafts against a practitioner's
// current schedule and turns accepted drafts into appointments.
package admission

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/availability"
	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/model"
)

const (
	DefaultDuration = 50

	ActionScheduled     = "APPOINTMENT_SCHEDULED"
	ActionStatusChanged = "APPOINTMENT_STATUS_CHANGED"

	maxIDAttempts = 16
)

// ErrIDExhausted means the identifier generator kept returning empty or
// already used identifiers.
var ErrIDExhausted = errors.New("admission: no unused appointment id")

// Admitter runs the admission pipeline. The zero value is not usable; use New.
type Admitter struct {
	newID           func() string
	defaultDuration int
}

type Option func(*Admitter)

// WithIDFunc replaces the identifier generator. fn must eventually return a
// non-empty identifier not already in the schedule; Propose gives up after a
// bounded number of attempts.
func WithIDFunc(fn func() string) Option {
	return func(a *Admitter) { a.newID = fn }
}

// WithDefaultDuration sets the duration given to drafts that leave it at 0.
func WithDefaultDuration(minutes int) Option {
	return func(a *Admitter) {
		if minutes > 0 {
			a.defaultDuration = minutes
		}
	}
}

func New(opts ...Option) *Admitter {
	a := &Admitter{
		newID:           uuid.NewString,
		defaultDuration: DefaultDuration,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var std = New()

func (a *Admitter) DefaultDuration() int { return a.defaultDuration }

// Propose runs the default Admitter.
func Propose(draft model.Draft, existing []model.Appointment, practitionerID string) (model.Appointment, error) {
	return std.Propose(draft, existing, practitionerID)
}

// Validate runs the checks that need no schedule, in the same order as
// Propose, and returns the draft with defaults applied and no ID. A non-nil
// error is always a *Rejection.
func (a *Admitter) Validate(draft model.Draft, practitionerID string) (model.Appointment, error) {
	clientID := strings.TrimSpace(draft.ClientID)
	date := strings.TrimSpace(draft.Date)
	start := strings.TrimSpace(draft.StartTime)

	var missing []string
	if clientID == "" {
		missing = append(missing, "clientId")
	}
	if date == "" {
		missing = append(missing, "date")
	}
	if start == "" {
		missing = append(missing, "startTime")
	}
	if strings.TrimSpace(practitionerID) == "" {
		missing = append(missing, "practitionerId")
	}
	if len(missing) > 0 {
		return model.Appointment{}, &Rejection{Kind: KindIncompleteFields, Fields: missing}
	}

	if _, err := availability.ParseDate(date); err != nil {
		return model.Appointment{}, &Rejection{Kind: KindMalformedTime, Fields: []string{"date"}, Detail: err.Error()}
	}
	if _, err := availability.TimeToMinutes(start); err != nil {
		return model.Appointment{}, &Rejection{Kind: KindMalformedTime, Fields: []string{"startTime"}, Detail: err.Error()}
	}

	duration := draft.Duration
	if duration == 0 {
		duration = a.defaultDuration
	}
	if duration < 0 {
		return model.Appointment{}, &Rejection{Kind: KindInvalidDuration, Fields: []string{"duration"}, Detail: fmt.Sprintf("%d minutes", duration)}
	}

	typ := draft.Type
	if typ == "" {
		typ = model.SessionIndividual
	}
	mode := draft.Mode
	if mode == "" {
		mode = model.ModeOnline
	}
	status := draft.Status
	if status == "" {
		status = model.StatusScheduled
	}
	var invalid []string
	if !typ.Valid() {
		invalid = append(invalid, "type")
	}
	if !mode.Valid() {
		invalid = append(invalid, "mode")
	}
	if !status.Valid() {
		invalid = append(invalid, "status")
	}
	if len(invalid) > 0 {
		return model.Appointment{}, &Rejection{Kind: KindInvalidField, Fields: invalid}
	}

	return model.Appointment{
		PractitionerID: practitionerID,
		ClientID:       clientID,
		Date:           date,
		StartTime:      start,
		Duration:       duration,
		Type:           typ,
		Mode:           mode,
		Status:         status,
	}, nil
}

// Propose validates draft against existing and, when it passes, returns the
// finalized appointment owned by practitionerID. Validation stops at the
// first failure. Validation failures are a *Rejection; the only other error
// is ErrIDExhausted. existing is not modified and the new appointment is
// not added to it.
func (a *Admitter) Propose(draft model.Draft, existing []model.Appointment, practitionerID string) (model.Appointment, error) {
	appt, err := a.Validate(draft, practitionerID)
	if err != nil {
		return model.Appointment{}, err
	}

	conflict, err := availability.FindConflict(existing, appt.Date, appt.StartTime, appt.Duration)
	if err != nil {
		// The draft was already checked, so this is a stored row with a bad
		// start time.
		return model.Appointment{}, &Rejection{Kind: KindMalformedTime, Detail: err.Error()}
	}
	if conflict != nil {
		return model.Appointment{}, &Rejection{Kind: KindSchedulingConflict, Conflict: conflict}
	}

	appt.ID, err = a.uniqueID(existing)
	if err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}

func (a *Admitter) uniqueID(existing []model.Appointment) (string, error) {
	taken := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		taken[e.ID] = struct{}{}
	}
	for i := 0; i < maxIDAttempts; i++ {
		id := a.newID()
		if _, dup := taken[id]; !dup && id != "" {
			return id, nil
		}
	}
	return "", ErrIDExhausted
}

// AuditDetails is the audit-log text for a newly scheduled appointment.
func AuditDetails(appt model.Appointment) string {
	return fmt.Sprintf("Scheduled %s on %s", appt.Type, appt.Date)
}

// StatusAuditDetails is the audit-log text for a status transition.
func StatusAuditDetails(appt model.Appointment, from model.AppointmentStatus) string {
	return fmt.Sprintf("Changed %s on %s from %s to %s", appt.Type, appt.Date, from, appt.Status)
}

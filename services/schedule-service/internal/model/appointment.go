package model

import "time"

type SessionType string

const (
	SessionIndividual SessionType = "Individual"
	SessionCouple     SessionType = "Couple"
	SessionGroup      SessionType = "Group"
)

func (t SessionType) Valid() bool {
	switch t {
	case SessionIndividual, SessionCouple, SessionGroup:
		return true
	}
	return false
}

type MeetingMode string

const (
	ModeOnline   MeetingMode = "Online"
	ModePhysical MeetingMode = "Physical"
)

func (m MeetingMode) Valid() bool {
	return m == ModeOnline || m == ModePhysical
}

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "Scheduled"
	StatusCompleted AppointmentStatus = "Completed"
	StatusCancelled AppointmentStatus = "Cancelled"
	StatusNoShow    AppointmentStatus = "No-show"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// OccupiesSlot reports whether an appointment in this status still blocks its
// time. Completed and No-show keep their slot; only Cancelled releases it.
func (s AppointmentStatus) OccupiesSlot() bool {
	return s != StatusCancelled
}

// CanTransition allows Scheduled to move to any other status. Every other
// status is terminal.
func CanTransition(from, to AppointmentStatus) bool {
	return from == StatusScheduled && to != StatusScheduled && to.Valid()
}

// Appointment is one session in a practitioner's calendar. Date is
// YYYY-MM-DD and StartTime is HH:MM (24-hour); Duration is in minutes.
type Appointment struct {
	ID             string            `json:"id"`
	PractitionerID string            `json:"practitionerId"`
	ClientID       string            `json:"clientId"`
	Date           string            `json:"date"`
	StartTime      string            `json:"startTime"`
	Duration       int               `json:"duration"`
	Type           SessionType       `json:"type"`
	Mode           MeetingMode       `json:"mode"`
	Status         AppointmentStatus `json:"status"`
}

// Draft is a candidate appointment before admission. It has no identifier
// and no owner; both are assigned only when the draft is accepted.
type Draft struct {
	ClientID  string            `json:"clientId"`
	Date      string            `json:"date"`
	StartTime string            `json:"startTime"`
	Duration  int               `json:"duration"`
	Type      SessionType       `json:"type,omitempty"`
	Mode      MeetingMode       `json:"mode,omitempty"`
	Status    AppointmentStatus `json:"status,omitempty"`
}

type ClientStatus string

const (
	ClientProspect   ClientStatus = "Prospect"
	ClientActive     ClientStatus = "Active"
	ClientInactive   ClientStatus = "Inactive"
	ClientDischarged ClientStatus = "Discharged"
)

type Client struct {
	ID             string       `json:"id"`
	PractitionerID string       `json:"practitionerId"`
	Name           string       `json:"name"`
	Email          string       `json:"email"`
	Phone          string       `json:"phone"`
	Status         ClientStatus `json:"status"`
	CreatedAt      time.Time    `json:"createdAt"`
}

type NoteStatus string

const (
	NoteDraft     NoteStatus = "Draft"
	NoteFinalized NoteStatus = "Finalized"
)

type ClinicalNote struct {
	ID             string     `json:"id"`
	PractitionerID string     `json:"practitionerId"`
	ClientID       string     `json:"clientId"`
	Category       string     `json:"category"`
	Title          string     `json:"title"`
	Status         NoteStatus `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// PracticeData is everything loaded for one practitioner.
type PracticeData struct {
	Clients      []Client       `json:"clients"`
	Appointments []Appointment  `json:"appointments"`
	Notes        []ClinicalNote `json:"notes"`
}

// ClientName returns the client's name, or "" when unknown.
func (d PracticeData) ClientName(clientID string) string {
	for _, c := range d.Clients {
		if c.ID == clientID {
			return c.Name
		}
	}
	return ""
}

package admission

import (
	"fmt"
	"strings"

	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/model"
)

type Kind string

const (
	KindIncompleteFields   Kind = "IncompleteFields"
	KindMalformedTime      Kind = "MalformedTime"
	KindInvalidDuration    Kind = "InvalidDuration"
	KindInvalidField       Kind = "InvalidField"
	KindSchedulingConflict Kind = "SchedulingConflict"
)

// Rejection is the reason a draft was not admitted. Fields names the
// offending draft fields; Conflict is set only for KindSchedulingConflict.
type Rejection struct {
	Kind     Kind               `json:"kind"`
	Fields   []string           `json:"fields,omitempty"`
	Conflict *model.Appointment `json:"conflict,omitempty"`
	Detail   string             `json:"detail,omitempty"`
}

func (r *Rejection) Error() string {
	switch r.Kind {
	case KindSchedulingConflict:
		if r.Conflict != nil {
			return fmt.Sprintf("scheduling conflict with appointment %s at %s", r.Conflict.ID, r.Conflict.StartTime)
		}
		return "scheduling conflict"
	case KindIncompleteFields, KindInvalidField:
		return fmt.Sprintf("%s: %s", r.Kind, strings.Join(r.Fields, ", "))
	default:
		if r.Detail != "" {
			return fmt.Sprintf("%s: %s", r.Kind, r.Detail)
		}
		return string(r.Kind)
	}
}

// Message renders the rejection for the person submitting the draft.
// clientName may be nil or return "" for unknown clients.
func (r *Rejection) Message(clientName func(id string) string) string {
	switch r.Kind {
	case KindIncompleteFields:
		return "Please fill in all required fields: " + strings.Join(r.Fields, ", ") + "."
	case KindMalformedTime:
		return "Please enter the date as YYYY-MM-DD and the start time as HH:MM."
	case KindInvalidDuration:
		return "Session duration must be a positive number of minutes."
	case KindInvalidField:
		return "Unsupported value for: " + strings.Join(r.Fields, ", ") + "."
	case KindSchedulingConflict:
		who := ""
		start := ""
		if r.Conflict != nil {
			start = r.Conflict.StartTime
			if clientName != nil {
				who = clientName(r.Conflict.ClientID)
			}
		}
		if who == "" {
			who = "another client"
		}
		return fmt.Sprintf("Conflict detected: %s is occupied by a session with %s.", start, who)
	}
	return "The appointment could not be scheduled."
}

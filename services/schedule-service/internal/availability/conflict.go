package availability

import (
	"fmt"

	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/model"
)

// Slot is the half-open interval [Start, End) in minutes since midnight.
// End may run past 1440 for sessions that cross midnight; such sessions are
// still only compared against appointments on their own date.
type Slot struct {
	Start int
	End   int
}

// Overlaps uses half-open semantics, so back-to-back slots do not overlap.
func (s Slot) Overlaps(o Slot) bool {
	return s.Start < o.End && s.End > o.Start
}

func NewSlot(startTime string, duration int) (Slot, error) {
	start, err := TimeToMinutes(startTime)
	if err != nil {
		return Slot{}, err
	}
	return Slot{Start: start, End: start + duration}, nil
}

// FindConflict returns the first appointment in existing, in input order,
// that shares date, is not cancelled, and overlaps the proposed slot. It
// returns nil when there is none. existing is never modified; the returned
// appointment is a copy. A non-positive duration is rejected with
// ErrInvalidDuration.
func FindConflict(existing []model.Appointment, date, startTime string, duration int) (*model.Appointment, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDuration, duration)
	}
	proposed, err := NewSlot(startTime, duration)
	if err != nil {
		return nil, err
	}
	for _, appt := range existing {
		if appt.Date != date || !appt.Status.OccupiesSlot() {
			continue
		}
		slot, err := NewSlot(appt.StartTime, appt.Duration)
		if err != nil {
			return nil, fmt.Errorf("appointment %s: %w", appt.ID, err)
		}
		if proposed.Overlaps(slot) {
			found := appt
			return &found, nil
		}
	}
	return nil, nil
}

// BusySlots lists the occupied slots on date, in input order.
func BusySlots(existing []model.Appointment, date string) ([]Slot, error) {
	var busy []Slot
	for _, appt := range existing {
		if appt.Date != date || !appt.Status.OccupiesSlot() {
			continue
		}
		slot, err := NewSlot(appt.StartTime, appt.Duration)
		if err != nil {
			return nil, fmt.Errorf("appointment %s: %w", appt.ID, err)
		}
		busy = append(busy, slot)
	}
	return busy, nil
}

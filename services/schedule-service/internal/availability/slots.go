package availability

import (
	"fmt"

	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/model"
)

// FreeSlots returns the HH:MM start times within [windowStart, windowEnd)
// where a session of length duration would not conflict with existing on
// date. Candidates are spaced step minutes apart starting at windowStart.
func FreeSlots(existing []model.Appointment, date, windowStart, windowEnd string, duration, step int) ([]string, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDuration, duration)
	}
	if step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %d", step)
	}
	ws, err := TimeToMinutes(windowStart)
	if err != nil {
		return nil, err
	}
	we, err := TimeToMinutes(windowEnd)
	if err != nil {
		return nil, err
	}
	if we <= ws || ws+duration > we {
		return nil, nil
	}

	busy, err := BusySlots(existing, date)
	if err != nil {
		return nil, err
	}

	var starts []string
	for t := ws; t+duration <= we; t += step {
		if overlapsAny(Slot{Start: t, End: t + duration}, busy) {
			continue
		}
		s, err := MinutesToTime(t)
		if err != nil {
			return nil, err
		}
		starts = append(starts, s)
	}
	return starts, nil
}

func overlapsAny(s Slot, busy []Slot) bool {
	for _, b := range busy {
		if s.Overlaps(b) {
			return true
		}
	}
	return false
}

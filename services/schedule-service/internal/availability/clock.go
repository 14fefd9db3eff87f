package availability

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedTime is returned for time-of-day or date strings that do not
// parse, or whose components are out of range.
var ErrMalformedTime = errors.New("malformed time")

// ErrInvalidDuration is returned when a proposed session length is not positive.
var ErrInvalidDuration = errors.New("duration must be positive")

const (
	MinutesPerDay = 24 * 60
	DateLayout    = "2006-01-02"
)

// TimeToMinutes converts a 24-hour "HH:MM" string to minutes since midnight.
func TimeToMinutes(hhmm string) (int, error) {
	if len(hhmm) != 5 || hhmm[2] != ':' {
		return 0, fmt.Errorf("%w: %q is not HH:MM", ErrMalformedTime, hhmm)
	}
	h, okH := twoDigits(hhmm[0], hhmm[1])
	m, okM := twoDigits(hhmm[3], hhmm[4])
	if !okH || !okM {
		return 0, fmt.Errorf("%w: %q is not numeric", ErrMalformedTime, hhmm)
	}
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("%w: %q is out of range", ErrMalformedTime, hhmm)
	}
	return h*60 + m, nil
}

// MinutesToTime is the inverse of TimeToMinutes for 0 <= minutes < 1440.
func MinutesToTime(minutes int) (string, error) {
	if minutes < 0 || minutes >= MinutesPerDay {
		return "", fmt.Errorf("%w: %d minutes is outside one day", ErrMalformedTime, minutes)
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60), nil
}

// ParseDate validates a YYYY-MM-DD calendar date.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrMalformedTime, date)
	}
	return t, nil
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intPtr(n int) *int {
	return &n
}

func strPtr(s string) *string {
	return &s
}

// ParseTempoTotal accepts "HH:MM:SS" or a raw number of seconds and returns
// the total in seconds. Rejected before any mutation on malformed input.
func ParseTempoTotal(input string) (int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidTimeFormat)
	}

	if strings.Contains(input, ":") {
		parts := strings.Split(input, ":")
		if len(parts) != 3 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, input)
		}
		h, errH := strconv.Atoi(parts[0])
		m, errM := strconv.Atoi(parts[1])
		s, errS := strconv.Atoi(parts[2])
		if errH != nil || errM != nil || errS != nil || h < 0 || m < 0 || m > 59 || s < 0 || s > 59 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, input)
		}
		return h*3600 + m*60 + s, nil
	}

	seconds, err := strconv.Atoi(input)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, input)
	}
	return seconds, nil
}

// ParseTempoFim combines an "HH:MM:SS" clock reading with a reference date,
// the way organizers punch finish times off a wall clock. A reading earlier
// on the clock than the reference crossed midnight and lands on the next day.
func ParseTempoFim(input string, reference time.Time) (time.Time, error) {
	clock, err := time.Parse("15:04:05", strings.TrimSpace(input))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, input)
	}
	y, mo, d := reference.Date()
	combined := time.Date(y, mo, d, clock.Hour(), clock.Minute(), clock.Second(), 0, reference.Location())
	if combined.Before(reference) {
		combined = combined.AddDate(0, 0, 1)
	}
	return combined, nil
}

// FormatTempo renders a duration in seconds as "MM:SS" for the UI layer.
func FormatTempo(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	return fmt.Sprintf("%02d:%02d", totalSeconds/60, totalSeconds%60)
}

package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatTimestamp renders seconds as "H:MM:SS" (or "M:SS" under an hour).
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// ParseTimestamp converts a timestamp like "1:23:45" or "45:23" to seconds.
func ParseTimestamp(timestamp string) (float64, error) {
	parts := strings.Split(timestamp, ":")
	var hours, minutes, seconds float64
	var err error

	switch len(parts) {
	case 3: // H:MM:SS
		if hours, err = strconv.ParseFloat(parts[0], 64); err != nil {
			return 0, fmt.Errorf("invalid hours: %w", err)
		}
		if minutes, err = strconv.ParseFloat(parts[1], 64); err != nil {
			return 0, fmt.Errorf("invalid minutes: %w", err)
		}
		if seconds, err = strconv.ParseFloat(parts[2], 64); err != nil {
			return 0, fmt.Errorf("invalid seconds: %w", err)
		}
	case 2: // MM:SS
		if minutes, err = strconv.ParseFloat(parts[0], 64); err != nil {
			return 0, fmt.Errorf("invalid minutes: %w", err)
		}
		if seconds, err = strconv.ParseFloat(parts[1], 64); err != nil {
			return 0, fmt.Errorf("invalid seconds: %w", err)
		}
	case 1: // plain seconds
		if seconds, err = strconv.ParseFloat(parts[0], 64); err != nil {
			return 0, fmt.Errorf("invalid seconds: %w", err)
		}
	default:
		return 0, fmt.Errorf("invalid timestamp format: %s", timestamp)
	}

	return hours*3600 + minutes*60 + seconds, nil
}

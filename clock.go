package multimodal

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseClockTime parses "HH:MM:SS" (hours could exceed 24) into offset since midnight.
// Plain number of seconds is accepted too. Empty string gives zero offset
func parseClockTime(str string) (time.Duration, error) {
	str = strings.TrimSpace(str)
	if str == "" {
		return 0, nil
	}
	parts := strings.Split(str, ":")
	if len(parts) == 1 {
		seconds, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, fmt.Errorf("Bad time value '%s'", str)
		}
		return time.Duration(seconds * float64(time.Second)), nil
	}
	if len(parts) != 3 && len(parts) != 2 {
		return 0, fmt.Errorf("Bad time value '%s'", str)
	}
	total := 0.0
	multipliers := []float64{3600, 60, 1}
	for i, part := range parts {
		value, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, fmt.Errorf("Bad time value '%s'", str)
		}
		total += value * multipliers[i]
	}
	return time.Duration(total * float64(time.Second)), nil
}

// formatClockTime is the inverse of parseClockTime
func formatClockTime(d time.Duration) string {
	seconds := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

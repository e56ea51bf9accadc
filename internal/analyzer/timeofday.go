package analyzer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ppiankov/hubconn/internal/models"
)

// MinutesPerDay is added once when a departure wraps past midnight.
const MinutesPerDay = 24 * 60

// ParseError reports a malformed time-of-day value
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid time of day %q: %s", e.Input, e.Reason)
}

// ParseTimeOfDay converts "HH:MM" into minutes after midnight.
func ParseTimeOfDay(text string) (int, error) {
	parts := strings.Split(text, ":")
	if len(parts) != 2 {
		return 0, &ParseError{Input: text, Reason: "expected H:M"}
	}

	hours, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, &ParseError{Input: text, Reason: "hour is not an integer"}
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, &ParseError{Input: text, Reason: "minute is not an integer"}
	}

	if hours < 0 || hours > 23 {
		return 0, &ParseError{Input: text, Reason: "hour must be between 0 and 23"}
	}
	if minutes < 0 || minutes > 59 {
		return 0, &ParseError{Input: text, Reason: "minute must be between 0 and 59"}
	}

	return hours*60 + minutes, nil
}

// GroundTime returns the minutes between hub arrival and hub departure.
// A negative difference is treated as a single midnight rollover.
func GroundTime(arrival, departure int) int {
	diff := departure - arrival
	if diff < 0 {
		diff += MinutesPerDay
	}
	return diff
}

// Classify returns Connected when minConnect <= ground <= maxConnect.
func Classify(ground, minConnect, maxConnect int) models.Status {
	if ground >= minConnect && ground <= maxConnect {
		return models.StatusConnected
	}
	return models.StatusDisconnect
}

package parser

import (
	"fmt"
	"strings"
)

// TimeParseError represents a time parsing error with helpful suggestions.
type TimeParseError struct {
	Input    string
	Field    string
	Message  string
	Examples []string
}

func (e *TimeParseError) Error() string {
	return fmt.Sprintf("invalid %s '%s': %s", e.Field, e.Input, e.Message)
}

// NewTimeParseError creates a new time parse error with examples.
func NewTimeParseError(field, input, message string, examples ...string) *TimeParseError {
	return &TimeParseError{
		Input:    input,
		Field:    field,
		Message:  message,
		Examples: examples,
	}
}

// FormatWithExamples returns the error message with example suggestions.
func (e *TimeParseError) FormatWithExamples() string {
	var sb strings.Builder
	sb.WriteString(e.Error())

	if len(e.Examples) > 0 {
		sb.WriteString("\n\nValid examples:\n")
		for _, ex := range e.Examples {
			sb.WriteString("  - ")
			sb.WriteString(ex)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// ClockExamples lists accepted window times.
var ClockExamples = []string{
	"09:00",
	"13:30",
	"23:59",
}

// DateExamples lists accepted schedule dates.
var DateExamples = []string{
	"2026-03-14T09:00",
	"2026-03-14",
	"tomorrow at 9am",
	"next friday",
}

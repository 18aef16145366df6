package parser

import (
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

// layouts are tried before falling back to natural-language parsing.
var layouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
}

// ParseScheduleDate parses the date an event is scheduled for. It accepts the
// calendar's datetime-local form ("2026-03-14T09:00"), a plain date, or a
// natural-language expression such as "next friday at 9am".
func ParseScheduleDate(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, NewTimeParseError("date", input, "date is required", DateExamples...)
	}
	if strings.EqualFold(input, "now") {
		return now, nil
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, input, now.Location()); err == nil {
			return t, nil
		}
	}

	cfg := &dateparser.Configuration{
		CurrentTime: now,
	}
	result, err := dateparser.Parse(cfg, input)
	if err != nil {
		return time.Time{}, NewTimeParseError("date", input, "unrecognised date", DateExamples...)
	}

	return result.Time, nil
}

// CombineDateAndStart returns the scheduled instant for an event. When the date
// carries no time of day and a start clock is given, the start clock is used.
func CombineDateAndStart(date time.Time, start string) (time.Time, error) {
	if start == "" || date.Hour() != 0 || date.Minute() != 0 {
		return date, nil
	}
	return ApplyClock(date, start)
}

// Package parser provides time parsing and formatting helpers for maintenance
// schedules: clock-time validation, 12-hour display, minute truncation and
// natural-language schedule dates.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultEndTime is the end of a maintenance window when none is given.
const DefaultEndTime = "23:59"

// clockRegex matches exactly two digits, a colon, and two digits.
var clockRegex = regexp.MustCompile(`^[0-9]{2}:[0-9]{2}$`)

// IsClockTime reports whether s is a zero-padded "HH:MM" string.
// "9:00" is rejected; "09:00" is accepted.
func IsClockTime(s string) bool {
	return clockRegex.MatchString(s)
}

// FormatTimeToAMPM converts "HH:MM" to a 12-hour display string like "2:30 PM".
// Empty input returns empty output. Hour 0 becomes 12 AM, hour 12 stays 12 PM.
func FormatTimeToAMPM(s string) string {
	if s == "" {
		return ""
	}

	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return s
	}
	hours, err := strconv.Atoi(hh)
	if err != nil {
		return s
	}

	period := "AM"
	if hours >= 12 {
		period = "PM"
	}
	switch {
	case hours > 12:
		hours -= 12
	case hours == 0:
		hours = 12
	}

	return fmt.Sprintf("%d:%s %s", hours, mm, period)
}

// TruncateToMinute drops seconds and sub-second precision, in t's location.
func TruncateToMinute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

// SameMinute reports whether a and b fall in the same wall-clock minute.
func SameMinute(a, b time.Time) bool {
	return TruncateToMinute(a).Equal(TruncateToMinute(b.In(a.Location())))
}

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsToday reports whether t falls on the same local calendar day as now.
func IsToday(t, now time.Time) bool {
	return StartOfDay(t).Equal(StartOfDay(now))
}

// FormatDate renders a scheduled date the way the calendar shows it.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("Mon, Jan 2 2006")
}

// ApplyClock sets the hour and minute of t from an "HH:MM" string.
func ApplyClock(t time.Time, clock string) (time.Time, error) {
	if !IsClockTime(clock) {
		return t, NewTimeParseError("time", clock, "expected HH:MM", ClockExamples...)
	}
	h, _ := strconv.Atoi(clock[:2])
	m, _ := strconv.Atoi(clock[3:])
	if h > 23 || m > 59 {
		return t, NewTimeParseError("time", clock, "hour or minute out of range", ClockExamples...)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), h, m, 0, 0, t.Location()), nil
}

// Package export writes upcoming maintenance to iCalendar files.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/manav03panchal/aircare/internal/model"
	"github.com/manav03panchal/aircare/internal/parser"
)

// ProductID identifies aircare as the calendar's producer.
const ProductID = "-//aircare//maintenance schedule//EN"

// defaultVisit is the length used when an entry has no usable end time.
const defaultVisit = time.Hour

// UID returns the stable VEVENT uid for an event id.
func UID(eventID string) string {
	return eventID + "@aircare"
}

// Calendar builds a VCALENDAR with one VEVENT per entry.
func Calendar(entries []model.CalendarEntry, units []model.ACUnit, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	cal.SetName("AC maintenance")

	for _, e := range entries {
		addEvent(cal, e, units, stamp)
	}
	return cal
}

func addEvent(cal *ical.Calendar, e model.CalendarEntry, units []model.ACUnit, stamp time.Time) {
	src := e.Source
	start, end := visitBounds(e)

	ev := cal.AddEvent(UID(e.ID))
	ev.SetDtStampTime(stamp)
	if !src.CreatedAt.IsZero() {
		ev.SetCreatedTime(src.CreatedAt)
	}
	ev.SetStartAt(start)
	ev.SetEndAt(end)

	title := src.Title
	if title == "" {
		title = model.DefaultEventTitle
	}
	ev.SetSummary(fmt.Sprintf("%s: %s", title, e.Title))

	location := src.Location
	if u := model.FindUnit(units, src.ACRef); u != nil && u.Location != "" {
		location = u.Location
	}
	if location != "" {
		ev.SetLocation(location)
	}

	ev.SetDescription(description(src))
}

// visitBounds applies the entry's clock window to its date. A missing or
// inverted end falls back to a one-hour visit.
func visitBounds(e model.CalendarEntry) (time.Time, time.Time) {
	start := e.ScheduledAt
	if e.Window.Start != "" {
		if t, err := parser.ApplyClock(start, e.Window.Start); err == nil {
			start = t
		}
	}

	end := start.Add(defaultVisit)
	if e.Window.End != "" {
		if t, err := parser.ApplyClock(start, e.Window.End); err == nil && t.After(start) {
			end = t
		}
	}
	return start, end
}

func description(ev model.MaintenanceEvent) string {
	lines := []string{"Status: " + ev.StatusLabel()}
	if len(ev.Tasks) > 0 {
		lines = append(lines, "Tasks: "+ev.TaskList())
	}
	if len(ev.AssignedEmployees) > 0 {
		lines = append(lines, "Assigned: "+strings.Join(ev.AssignedEmployees, ", "))
	}
	if ev.Summary != "" {
		lines = append(lines, "Summary: "+ev.Summary)
	}
	return strings.Join(lines, "\n")
}

// WriteICS serializes the calendar for entries to w.
func WriteICS(w io.Writer, entries []model.CalendarEntry, units []model.ACUnit, stamp time.Time) error {
	_, err := io.WriteString(w, Calendar(entries, units, stamp).Serialize())
	return err
}

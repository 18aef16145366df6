// Package projection turns the raw event and AC unit lists into the views the
// calendar, dashboard and history screens show. Everything here is a pure
// function of its inputs.
package projection

import (
	"sort"
	"strings"
	"time"

	"github.com/manav03panchal/aircare/internal/model"
	"github.com/manav03panchal/aircare/internal/parser"
)

// Project maps every event scheduled today or later to its calendar entry.
// Events dated before local midnight of now are left out. The entry title is
// the AC unit's name, or the raw reference when the unit is unknown.
func Project(events []model.MaintenanceEvent, units []model.ACUnit, now time.Time) map[string]model.CalendarEntry {
	midnight := parser.StartOfDay(now)
	entries := make(map[string]model.CalendarEntry, len(events))

	for _, ev := range events {
		if ev.ScheduledAt.Before(midnight) {
			continue
		}
		entries[ev.ID] = model.CalendarEntry{
			ID:          ev.ID,
			Title:       DisplayUnit(ev.ACRef, units),
			ScheduledAt: ev.ScheduledAt,
			Window: model.TimeWindow{
				Start: ev.Window.Start,
				End:   ev.Window.End,
			},
			Source: ev,
		}
	}
	return entries
}

// Sorted returns the entries ordered by scheduled time, then id.
func Sorted(entries map[string]model.CalendarEntry) []model.CalendarEntry {
	out := make([]model.CalendarEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out
}

// DisplayUnit returns the unit name for ref, falling back to ref itself.
func DisplayUnit(ref string, units []model.ACUnit) string {
	if u := model.FindUnit(units, ref); u != nil && u.Name != "" {
		return u.Name
	}
	return ref
}

// RecentHistory keeps completed events dated strictly before today, newest
// first, at most limit of them. A limit of zero or less means no cap.
func RecentHistory(history []model.MaintenanceEvent, now time.Time, limit int) []model.MaintenanceEvent {
	midnight := parser.StartOfDay(now)

	out := make([]model.MaintenanceEvent, 0, len(history))
	for _, ev := range history {
		if ev.Status && ev.ScheduledAt.Before(midnight) {
			out = append(out, ev)
		}
	}
	SortNewestFirst(out)

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SortNewestFirst orders events by scheduled time, latest first.
func SortNewestFirst(events []model.MaintenanceEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].ScheduledAt.After(events[j].ScheduledAt)
	})
}

// Buckets splits one employee's assignments for the dashboard.
type Buckets struct {
	All       []model.MaintenanceEvent
	Ongoing   []model.MaintenanceEvent
	Completed []model.MaintenanceEvent
}

// Assigned builds the dashboard buckets for userID. Ongoing work is pending
// and was created on or before today; completed is everything with status
// set.
func Assigned(events []model.MaintenanceEvent, userID string, now time.Time) Buckets {
	endOfToday := parser.StartOfDay(now).AddDate(0, 0, 1)

	var b Buckets
	for _, ev := range events {
		if !ev.IsAssignedTo(userID) {
			continue
		}
		b.All = append(b.All, ev)

		switch {
		case ev.Status:
			b.Completed = append(b.Completed, ev)
		case ev.CreatedAt.IsZero() || ev.CreatedAt.Before(endOfToday):
			b.Ongoing = append(b.Ongoing, ev)
		}
	}
	return b
}

// Search returns the events whose id, AC unit name or text fields contain
// term, case-insensitively. An empty term matches everything.
func Search(events []model.MaintenanceEvent, units []model.ACUnit, term string) []model.MaintenanceEvent {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return append([]model.MaintenanceEvent(nil), events...)
	}

	var out []model.MaintenanceEvent
	for _, ev := range events {
		if matches(ev, units, term) {
			out = append(out, ev)
		}
	}
	return out
}

func matches(ev model.MaintenanceEvent, units []model.ACUnit, term string) bool {
	fields := []string{
		ev.ID,
		ev.Title,
		ev.ACRef,
		ev.Summary,
		ev.Location,
		ev.StatusLabel(),
		parser.FormatDate(ev.ScheduledAt),
	}
	fields = append(fields, ev.Tasks...)
	if u := model.FindUnit(units, ev.ACRef); u != nil {
		fields = append(fields, u.Name, u.Code, u.Location)
	}

	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// ForUnit returns the events recorded against one unit, newest first.
func ForUnit(events []model.MaintenanceEvent, unit model.ACUnit) []model.MaintenanceEvent {
	var out []model.MaintenanceEvent
	for _, ev := range events {
		if unit.Matches(ev.ACRef) {
			out = append(out, ev)
		}
	}
	SortNewestFirst(out)
	return out
}

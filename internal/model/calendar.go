package model

import "time"

// CalendarEntry is the calendar-facing view of a future maintenance event.
// Window fields are always strings, empty when unset.
type CalendarEntry struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	ScheduledAt time.Time        `json:"scheduled_at"`
	Window      TimeWindow       `json:"window"`
	Source      MaintenanceEvent `json:"source"`
}

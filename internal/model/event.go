package model

import (
	"slices"
	"strings"
	"time"
)

// Default values applied when an event is created without them.
const (
	DefaultEventTitle    = "Maintenance Event"
	DefaultEventLocation = "No location provided"
	DefaultEventSummary  = "No summary provided"
)

// TaskTypes is the fixed vocabulary of maintenance tasks offered when
// scheduling. Names outside it are kept as-is.
var TaskTypes = []string{
	"General Cleaning",
	"Filter Replacement",
	"Coolant Refill",
	"Electrical Inspection",
	"Fan Check",
	"Duct Cleaning",
	"Compressor Inspection",
	"Thermostat Testing",
	"Leakage Check",
}

// IsKnownTask reports whether name is one of TaskTypes.
func IsKnownTask(name string) bool {
	return slices.Contains(TaskTypes, name)
}

// TimeWindow is the start and end clock time of a maintenance visit, as
// "HH:MM" strings. Either may be empty.
type TimeWindow struct {
	Start string `json:"time_start"`
	End   string `json:"time_end"`
}

// MaintenanceEvent is a scheduled maintenance visit to one AC unit.
type MaintenanceEvent struct {
	ID                string     `json:"id"`
	Title             string     `json:"title,omitempty"`
	ACRef             string     `json:"ac_ref"`
	ScheduledAt       time.Time  `json:"scheduled_at"`
	Window            TimeWindow `json:"window"`
	Tasks             []string   `json:"tasks"`
	AssignedEmployees []string   `json:"assigned_employees"`
	Status            bool       `json:"status"`
	Summary           string     `json:"summary,omitempty"`
	Location          string     `json:"location,omitempty"`
	CreatedAt         time.Time  `json:"created_at,omitempty"`
}

// IsCompleted returns true once the visit has been marked done.
func (e *MaintenanceEvent) IsCompleted() bool {
	return e.Status
}

// StatusLabel returns "Completed" or "Pending".
func (e *MaintenanceEvent) StatusLabel() string {
	if e.Status {
		return "Completed"
	}
	return "Pending"
}

// IsAssignedTo reports whether the employee id is on the event.
func (e *MaintenanceEvent) IsAssignedTo(employeeID string) bool {
	return employeeID != "" && slices.Contains(e.AssignedEmployees, employeeID)
}

// TaskList returns the tasks joined for display.
func (e *MaintenanceEvent) TaskList() string {
	return strings.Join(e.Tasks, ", ")
}

// EventDetail is the server's expanded view of one event, with the AC unit
// and employee records resolved, plus recent completed history of the unit.
type EventDetail struct {
	Event     MaintenanceEvent   `json:"event"`
	AC        *ACUnit            `json:"ac,omitempty"`
	Employees []Employee         `json:"employees,omitempty"`
	History   []MaintenanceEvent `json:"history,omitempty"`
}

// EmployeeNames returns "first last" for each assigned employee.
func (d *EventDetail) EmployeeNames() []string {
	names := make([]string, 0, len(d.Employees))
	for _, emp := range d.Employees {
		names = append(names, emp.FullName())
	}
	return names
}

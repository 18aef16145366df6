package output

import (
	"time"

	"github.com/manav03panchal/aircare/internal/model"
	"github.com/manav03panchal/aircare/internal/projection"
)

// JSONFormatter provides JSON-specific formatting.
type JSONFormatter struct {
	*Formatter
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(f *Formatter) *JSONFormatter {
	return &JSONFormatter{Formatter: f}
}

// ErrorResponse represents an error in JSON.
type ErrorResponse struct {
	Status     string `json:"status"`
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

// StatusResponse acknowledges a mutation.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	ID      string `json:"id,omitempty"`
}

// EventOutput represents a maintenance event in JSON output.
type EventOutput struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	ACRef             string   `json:"ac_ref"`
	Unit              string   `json:"unit"`
	Date              string   `json:"date"`
	TimeStart         string   `json:"time_start"`
	TimeEnd           string   `json:"time_end"`
	Tasks             []string `json:"tasks"`
	AssignedEmployees []string `json:"assigned_employees"`
	Status            string   `json:"status"`
	Completed         bool     `json:"completed"`
	Location          string   `json:"location,omitempty"`
	Summary           string   `json:"summary,omitempty"`
}

// NewEventOutput creates an EventOutput; units resolve the display name.
func NewEventOutput(ev model.MaintenanceEvent, units []model.ACUnit) *EventOutput {
	out := &EventOutput{
		ID:                ev.ID,
		Title:             ev.Title,
		ACRef:             ev.ACRef,
		Unit:              projection.DisplayUnit(ev.ACRef, units),
		TimeStart:         ev.Window.Start,
		TimeEnd:           ev.Window.End,
		Tasks:             nonNil(ev.Tasks),
		AssignedEmployees: nonNil(ev.AssignedEmployees),
		Status:            ev.StatusLabel(),
		Completed:         ev.Status,
		Location:          ev.Location,
		Summary:           ev.Summary,
	}
	if !ev.ScheduledAt.IsZero() {
		out.Date = ev.ScheduledAt.Format(time.RFC3339)
	}
	return out
}

// NewEventOutputs converts a slice of events.
func NewEventOutputs(events []model.MaintenanceEvent, units []model.ACUnit) []*EventOutput {
	out := make([]*EventOutput, len(events))
	for i, ev := range events {
		out[i] = NewEventOutput(ev, units)
	}
	return out
}

// EventsResponse represents an event listing.
type EventsResponse struct {
	Events []*EventOutput `json:"events"`
	Count  int            `json:"count"`
}

// NewEventsResponse creates an EventsResponse.
func NewEventsResponse(events []model.MaintenanceEvent, units []model.ACUnit) *EventsResponse {
	return &EventsResponse{Events: NewEventOutputs(events, units), Count: len(events)}
}

// UpcomingOutput is one calendar entry in JSON output.
type UpcomingOutput struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Start     string `json:"start"`
	TimeStart string `json:"time_start"`
	TimeEnd   string `json:"time_end"`
}

// NewUpcomingResponse converts calendar entries.
func NewUpcomingResponse(entries []model.CalendarEntry) []*UpcomingOutput {
	out := make([]*UpcomingOutput, len(entries))
	for i, e := range entries {
		out[i] = &UpcomingOutput{
			ID:        e.ID,
			Title:     e.Title,
			Start:     e.ScheduledAt.Format(time.RFC3339),
			TimeStart: e.Window.Start,
			TimeEnd:   e.Window.End,
		}
	}
	return out
}

// UnitOutput represents an AC unit in JSON output.
type UnitOutput struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Watts    int    `json:"watts,omitempty"`
}

// NewUnitOutput creates a UnitOutput.
func NewUnitOutput(u model.ACUnit) *UnitOutput {
	return &UnitOutput{ID: u.ID, Code: u.Code, Name: u.Name, Location: u.Location, Watts: u.Watts}
}

// NewUnitOutputs converts a slice of units.
func NewUnitOutputs(units []model.ACUnit) []*UnitOutput {
	out := make([]*UnitOutput, len(units))
	for i, u := range units {
		out[i] = NewUnitOutput(u)
	}
	return out
}

// EventDetailResponse is one event with its unit, assignees and history.
type EventDetailResponse struct {
	Event     *EventOutput   `json:"event"`
	Unit      *UnitOutput    `json:"unit,omitempty"`
	Employees []*UserOutput  `json:"employees"`
	History   []*EventOutput `json:"history"`
}

// NewEventDetailResponse creates an EventDetailResponse.
func NewEventDetailResponse(d *model.EventDetail, units []model.ACUnit) *EventDetailResponse {
	resp := &EventDetailResponse{
		Event:     NewEventOutput(d.Event, units),
		Employees: NewUserOutputs(d.Employees),
		History:   NewEventOutputs(d.History, units),
	}
	if d.AC != nil {
		resp.Unit = NewUnitOutput(*d.AC)
		resp.Event.Unit = d.AC.DisplayName()
	}
	return resp
}

// UnitHistoryResponse is one unit with its events.
type UnitHistoryResponse struct {
	Unit   *UnitOutput    `json:"unit"`
	Events []*EventOutput `json:"events"`
}

// UserOutput represents an employee in JSON output. Passwords never appear.
type UserOutput struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	Age       int    `json:"age,omitempty"`
	Birthdate string `json:"birthdate,omitempty"`
	Address   string `json:"address,omitempty"`
}

// NewUserOutput creates a UserOutput.
func NewUserOutput(u model.Employee) *UserOutput {
	return &UserOutput{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		Age:       u.Age,
		Birthdate: u.Birthdate,
		Address:   u.Address,
	}
}

// NewUserOutputs converts a slice of employees.
func NewUserOutputs(users []model.Employee) []*UserOutput {
	out := make([]*UserOutput, len(users))
	for i, u := range users {
		out[i] = NewUserOutput(u)
	}
	return out
}

// SessionResponse is the whoami output.
type SessionResponse struct {
	LoggedIn bool        `json:"logged_in"`
	UserID   string      `json:"user_id,omitempty"`
	Role     string      `json:"role,omitempty"`
	User     *UserOutput `json:"user,omitempty"`
}

// StatsOutput is one employee's task breakdown.
type StatsOutput struct {
	EmployeeID string            `json:"employee_id"`
	Name       string            `json:"name"`
	Total      int               `json:"total"`
	Tasks      []model.TaskCount `json:"tasks"`
}

// NewStatsOutput creates a StatsOutput.
func NewStatsOutput(s model.EmployeeStats) *StatsOutput {
	return &StatsOutput{
		EmployeeID: s.EmployeeID,
		Name:       s.Name,
		Total:      s.Total(),
		Tasks:      s.Breakdown(),
	}
}

// StatsResponse represents the statistics listing.
type StatsResponse struct {
	Employees []*StatsOutput `json:"employees"`
}

// NewStatsResponse creates a StatsResponse.
func NewStatsResponse(stats []model.EmployeeStats) *StatsResponse {
	out := make([]*StatsOutput, len(stats))
	for i, s := range stats {
		out[i] = NewStatsOutput(s)
	}
	return &StatsResponse{Employees: out}
}

// DashboardResponse is an employee's assigned work.
type DashboardResponse struct {
	User      *UserOutput    `json:"user,omitempty"`
	Assigned  int            `json:"assigned"`
	Ongoing   []*EventOutput `json:"ongoing"`
	Completed []*EventOutput `json:"completed"`
	Stats     *StatsOutput   `json:"stats,omitempty"`
}

// NewDashboardResponse creates a DashboardResponse.
func NewDashboardResponse(user *model.Employee, b projection.Buckets, units []model.ACUnit, stats *model.EmployeeStats) *DashboardResponse {
	resp := &DashboardResponse{
		Assigned:  len(b.All),
		Ongoing:   NewEventOutputs(b.Ongoing, units),
		Completed: NewEventOutputs(b.Completed, units),
	}
	if user != nil {
		resp.User = NewUserOutput(*user)
	}
	if stats != nil {
		resp.Stats = NewStatsOutput(*stats)
	}
	return resp
}

// WebhookOutput represents a webhook in JSON output.
type WebhookOutput struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	URL       string `json:"url"`
	Enabled   bool   `json:"enabled"`
	LastUsed  string `json:"last_used,omitempty"`
	LastEvent string `json:"last_event_id,omitempty"`
	LastError string `json:"last_error,omitempty"`
	Delivered int    `json:"delivered"`
	Failed    int    `json:"failed"`
}

// NewWebhookOutput creates a WebhookOutput with the URL masked.
func NewWebhookOutput(w *model.Webhook) *WebhookOutput {
	out := &WebhookOutput{
		Name:      w.Name,
		Type:      w.Type,
		URL:       w.MaskedURL(),
		Enabled:   w.Enabled,
		LastEvent: w.LastEventID,
		LastError: w.LastError,
		Delivered: w.Delivered,
		Failed:    w.Failed,
	}
	if !w.LastUsed.IsZero() {
		out.LastUsed = w.LastUsed.Format(time.RFC3339)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

package gateway

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/manav03panchal/aircare/internal/model"
)

// Wire types mirror the server's documents. The server is loose about a few
// fields, so these accept more than one shape:
//   - acID is either the unit's storage id or the populated unit document;
//   - assignedEmployee(s) is a list of ids or of populated employee documents;
//   - dates arrive as RFC 3339 or as a bare datetime-local string.

var null = []byte("null")

// acRef is an AC reference that may arrive populated.
type acRef struct {
	ID   string
	Unit *model.ACUnit
}

func (r *acRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, null) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}

	var unit model.ACUnit
	if err := json.Unmarshal(data, &unit); err != nil {
		return err
	}
	r.Unit = &unit
	r.ID = unit.ID
	return nil
}

func (r acRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

// employeeRefs is a list of employee ids, possibly populated.
type employeeRefs struct {
	IDs       []string
	Employees []model.Employee
}

func (r *employeeRefs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, null) {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || bytes.Equal(item, null) {
			continue
		}
		if item[0] == '"' {
			var id string
			if err := json.Unmarshal(item, &id); err != nil {
				return err
			}
			r.IDs = append(r.IDs, id)
			continue
		}

		var emp model.Employee
		if err := json.Unmarshal(item, &emp); err != nil {
			return err
		}
		r.Employees = append(r.Employees, emp)
		if emp.ID != "" {
			r.IDs = append(r.IDs, emp.ID)
		}
	}
	return nil
}

func (r employeeRefs) MarshalJSON() ([]byte, error) {
	if r.IDs == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.IDs)
}

// wireTime accepts the date layouts the server and old clients produce.
type wireTime struct {
	time.Time
}

var wireLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func (t *wireTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), null) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var lastErr error
	for _, layout := range wireLayouts {
		parsed, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			t.Time = parsed
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func (t wireTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return null, nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// detailsDTO is the nested "details" block of a maintenance document.
type detailsDTO struct {
	ACID              acRef        `json:"acID"`
	Location          string       `json:"location,omitempty"`
	AssignedEmployees employeeRefs `json:"assignedEmployees"`
	TimeStart         string       `json:"timeStart"`
	TimeEnd           string       `json:"timeEnd"`
	Status            bool         `json:"status"`
	Summary           string       `json:"summary,omitempty"`
}

// eventDTO is a maintenance document as listed by the server.
type eventDTO struct {
	ID               string       `json:"_id,omitempty"`
	Title            string       `json:"title,omitempty"`
	ACID             acRef        `json:"acID"`
	Date             wireTime     `json:"date"`
	Tasks            []string     `json:"tasks"`
	Details          detailsDTO   `json:"details"`
	AssignedEmployee employeeRefs `json:"assignedEmployee,omitzero"`
	CreatedAt        wireTime     `json:"createdAt,omitzero"`
}

// detailDTO is a maintenance document with the unit and employees populated.
type detailDTO struct {
	eventDTO
	ACDetails         *model.ACUnit `json:"acDetails,omitempty"`
	AssignedEmployees employeeRefs  `json:"assignedEmployees"`
}

func (d *eventDTO) toModel() model.MaintenanceEvent {
	acID := d.ACID.ID
	if acID == "" {
		acID = d.Details.ACID.ID
	}

	assigned := d.Details.AssignedEmployees.IDs
	if len(assigned) == 0 {
		assigned = d.AssignedEmployee.IDs
	}

	tasks := d.Tasks
	if tasks == nil {
		tasks = []string{}
	}

	return model.MaintenanceEvent{
		ID:          d.ID,
		Title:       d.Title,
		ACRef:       acID,
		ScheduledAt: d.Date.Time,
		Window: model.TimeWindow{
			Start: d.Details.TimeStart,
			End:   d.Details.TimeEnd,
		},
		Tasks:             tasks,
		AssignedEmployees: assigned,
		Status:            d.Details.Status,
		Summary:           d.Details.Summary,
		Location:          d.Details.Location,
		CreatedAt:         d.CreatedAt.Time,
	}
}

func (d *detailDTO) toModel() *model.EventDetail {
	detail := &model.EventDetail{Event: d.eventDTO.toModel()}

	switch {
	case d.ACDetails != nil:
		detail.AC = d.ACDetails
	case d.ACID.Unit != nil:
		detail.AC = d.ACID.Unit
	case d.Details.ACID.Unit != nil:
		detail.AC = d.Details.ACID.Unit
	}

	seen := make(map[string]bool)
	for _, group := range [][]model.Employee{
		d.AssignedEmployee.Employees,
		d.AssignedEmployees.Employees,
		d.Details.AssignedEmployees.Employees,
	} {
		for _, emp := range group {
			if emp.ID != "" && seen[emp.ID] {
				continue
			}
			seen[emp.ID] = true
			detail.Employees = append(detail.Employees, emp)
		}
	}

	if len(detail.Event.AssignedEmployees) == 0 {
		detail.Event.AssignedEmployees = d.AssignedEmployees.IDs
	}

	return detail
}

// fromModel builds the document sent on create and update.
func fromModel(ev model.MaintenanceEvent) eventDTO {
	tasks := ev.Tasks
	if tasks == nil {
		tasks = []string{}
	}

	return eventDTO{
		ID:    ev.ID,
		Title: ev.Title,
		ACID:  acRef{ID: ev.ACRef},
		Date:  wireTime{ev.ScheduledAt},
		Tasks: tasks,
		Details: detailsDTO{
			ACID:              acRef{ID: ev.ACRef},
			Location:          ev.Location,
			AssignedEmployees: employeeRefs{IDs: ev.AssignedEmployees},
			TimeStart:         ev.Window.Start,
			TimeEnd:           ev.Window.End,
			Status:            ev.Status,
			Summary:           ev.Summary,
		},
	}
}

func toModels(dtos []eventDTO) []model.MaintenanceEvent {
	events := make([]model.MaintenanceEvent, 0, len(dtos))
	for i := range dtos {
		events = append(events, dtos[i].toModel())
	}
	return events
}

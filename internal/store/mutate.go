package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/manav03panchal/aircare/internal/errors"
	"github.com/manav03panchal/aircare/internal/logging"
	"github.com/manav03panchal/aircare/internal/model"
	"github.com/manav03panchal/aircare/internal/parser"
)

// Draft is a new event as entered by a privileged user.
type Draft struct {
	Title             string
	ACRef             string
	Date              time.Time
	Window            model.TimeWindow
	Tasks             []string
	AssignedEmployees []string
	Location          string
	Summary           string
}

// Patch holds the fields an update changes. Nil fields are left as the
// server currently has them.
type Patch struct {
	Title             *string
	ACRef             *string
	Date              *time.Time
	Start             *string
	End               *string
	Tasks             *[]string
	AssignedEmployees *[]string
	Status            *bool
	Summary           *string
	Location          *string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.ACRef == nil && p.Date == nil && p.Start == nil &&
		p.End == nil && p.Tasks == nil && p.AssignedEmployees == nil &&
		p.Status == nil && p.Summary == nil && p.Location == nil
}

// ValidateClock rejects anything but zero-padded 24-hour HH:MM.
func ValidateClock(field, value string) error {
	if !parser.IsClockTime(value) {
		return errors.NewValidationError(field, value, "must be HH:MM in 24-hour time", errors.ErrInvalidClockTime)
	}
	return nil
}

// Create validates the draft, submits it, and adds the stored event to the
// known set. The AC reference may be a storage id or a unit code; it is
// sent as the storage id.
func (s *Store) Create(ctx context.Context, d Draft) (*model.MaintenanceEvent, error) {
	ev, err := s.prepare(d)
	if err != nil {
		return nil, err
	}

	created, err := s.gw.CreateMaintenance(ctx, ev)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.events[created.ID] = *created
	s.mu.Unlock()

	logging.InfoContext(ctx, "maintenance event created",
		logging.KeyEventID, created.ID,
		logging.KeyACID, created.ACRef)
	s.publish(Change{Kind: ChangeCreated, EventID: created.ID})
	return created, nil
}

// prepare turns a draft into the event to submit, applying defaults and
// checking the unit and the time window.
func (s *Store) prepare(d Draft) (model.MaintenanceEvent, error) {
	unit, ok := s.Unit(strings.TrimSpace(d.ACRef))
	if !ok {
		return model.MaintenanceEvent{}, errors.NewValidationError("acRef", d.ACRef, "does not match a known AC unit", errors.ErrUnknownACUnit)
	}

	if d.Date.IsZero() {
		return model.MaintenanceEvent{}, errors.NewValidationError("date", "", "is required", errors.ErrInvalidDate)
	}

	end := d.Window.End
	if end == "" {
		end = s.opts.DefaultEndTime
	}
	if err := ValidateClock("timeStart", d.Window.Start); err != nil {
		return model.MaintenanceEvent{}, err
	}
	if err := ValidateClock("timeEnd", end); err != nil {
		return model.MaintenanceEvent{}, err
	}

	ev := model.MaintenanceEvent{
		Title:             d.Title,
		ACRef:             unit.ID,
		ScheduledAt:       d.Date,
		Window:            model.TimeWindow{Start: d.Window.Start, End: end},
		Tasks:             d.Tasks,
		AssignedEmployees: d.AssignedEmployees,
		Location:          d.Location,
		Summary:           d.Summary,
	}
	if ev.Title == "" {
		ev.Title = model.DefaultEventTitle
	}
	if ev.Location == "" {
		ev.Location = unit.Location
	}
	if ev.Location == "" {
		ev.Location = model.DefaultEventLocation
	}
	if ev.Summary == "" {
		ev.Summary = model.DefaultEventSummary
	}
	if ev.Tasks == nil {
		ev.Tasks = []string{}
	}
	if ev.AssignedEmployees == nil {
		ev.AssignedEmployees = []string{}
	}
	return ev, nil
}

// CreateSeries expands an RRULE starting at the draft's date and creates one
// event per occurrence through Create. It stops at the first failure and
// returns what was created so far.
func (s *Store) CreateSeries(ctx context.Context, d Draft, rule string) ([]model.MaintenanceEvent, error) {
	occurrences, err := s.expand(d.Date, rule)
	if err != nil {
		return nil, err
	}

	created := make([]model.MaintenanceEvent, 0, len(occurrences))
	for _, at := range occurrences {
		draft := d
		draft.Date = at
		ev, err := s.Create(ctx, draft)
		if err != nil {
			return created, fmt.Errorf("occurrence %s: %w", at.Format("2006-01-02"), err)
		}
		created = append(created, *ev)
	}
	return created, nil
}

// seriesHorizon bounds open-ended rules.
const seriesHorizon = 2 * 365 * 24 * time.Hour

func (s *Store) expand(start time.Time, rule string) ([]time.Time, error) {
	if start.IsZero() {
		return nil, errors.NewValidationError("date", "", "is required", errors.ErrInvalidDate)
	}

	rule = strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:")
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, errors.NewValidationError("repeat", rule, "is not a valid RRULE", err)
	}
	r.DTStart(start)

	occ := r.Between(start, start.Add(seriesHorizon), true)
	if len(occ) > s.opts.SeriesLimit {
		occ = occ[:s.opts.SeriesLimit]
	}
	return occ, nil
}

// Update merges patch into the server's current copy of the event, not the
// local one, and submits the result. A missing event is a NotFoundError.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (*model.MaintenanceEvent, error) {
	current, err := s.gw.GetMaintenance(ctx, id)
	if err != nil {
		return nil, err
	}

	ev, err := s.merge(current.Event, patch)
	if err != nil {
		return nil, err
	}

	updated, err := s.gw.UpdateMaintenance(ctx, ev)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.events[id] = *updated
	if d, ok := s.details[id]; ok {
		cp := *d
		cp.Event = *updated
		s.details[id] = &cp
	}
	s.mu.Unlock()

	logging.InfoContext(ctx, "maintenance event updated", logging.KeyEventID, id)
	s.publish(Change{Kind: ChangeUpdated, EventID: id})
	return updated, nil
}

func (s *Store) merge(ev model.MaintenanceEvent, p Patch) (model.MaintenanceEvent, error) {
	if p.Title != nil {
		ev.Title = *p.Title
	}
	if p.ACRef != nil {
		unit, ok := s.Unit(*p.ACRef)
		if !ok {
			return ev, errors.NewValidationError("acRef", *p.ACRef, "does not match a known AC unit", errors.ErrUnknownACUnit)
		}
		ev.ACRef = unit.ID
	}
	if p.Date != nil {
		ev.ScheduledAt = *p.Date
	}
	if p.Start != nil {
		if err := ValidateClock("timeStart", *p.Start); err != nil {
			return ev, err
		}
		ev.Window.Start = *p.Start
	}
	if p.End != nil {
		if err := ValidateClock("timeEnd", *p.End); err != nil {
			return ev, err
		}
		ev.Window.End = *p.End
	}
	if p.Tasks != nil {
		ev.Tasks = *p.Tasks
	}
	if p.AssignedEmployees != nil {
		ev.AssignedEmployees = *p.AssignedEmployees
	}
	if p.Status != nil {
		ev.Status = *p.Status
	}
	if p.Summary != nil {
		ev.Summary = *p.Summary
	}
	if p.Location != nil {
		ev.Location = *p.Location
	}
	return ev, nil
}

// Complete marks an event done with a summary.
func (s *Store) Complete(ctx context.Context, id, summary string) (*model.MaintenanceEvent, error) {
	done := true
	p := Patch{Status: &done}
	if summary != "" {
		p.Summary = &summary
	}
	return s.Update(ctx, id, p)
}

// Remove deletes an event. Its detail must have been loaded first; without
// it Remove returns a PreconditionError and sends nothing.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.RLock()
	_, loaded := s.details[id]
	s.mu.RUnlock()
	if !loaded {
		return errors.NewPreconditionError("delete event "+id, "its detail has not been loaded", errors.ErrNoEventSelected)
	}

	if err := s.gw.DeleteMaintenance(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.events, id)
	delete(s.details, id)
	s.mu.Unlock()

	logging.InfoContext(ctx, "maintenance event deleted", logging.KeyEventID, id)
	s.publish(Change{Kind: ChangeRemoved, EventID: id})
	return nil
}

// AddUnit creates an AC unit.
func (s *Store) AddUnit(ctx context.Context, unit model.ACUnit) (*model.ACUnit, error) {
	created, err := s.gw.CreateACUnit(ctx, unit)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.units = append(s.units, *created)
	s.mu.Unlock()

	s.publish(Change{Kind: ChangeUnits})
	return created, nil
}

// EditUnit replaces a unit's fields.
func (s *Store) EditUnit(ctx context.Context, unit model.ACUnit) (*model.ACUnit, error) {
	updated, err := s.gw.UpdateACUnit(ctx, unit)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	units := make([]model.ACUnit, 0, len(s.units))
	for _, u := range s.units {
		if u.ID == updated.ID {
			u = *updated
		}
		units = append(units, u)
	}
	s.units = units
	s.mu.Unlock()

	s.publish(Change{Kind: ChangeUnits})
	return updated, nil
}

// DeleteUnit removes a unit. Events that reference it stay; they display
// the raw reference from then on.
func (s *Store) DeleteUnit(ctx context.Context, id string) error {
	if err := s.gw.DeleteACUnit(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	units := make([]model.ACUnit, 0, len(s.units))
	for _, u := range s.units {
		if u.ID != id {
			units = append(units, u)
		}
	}
	s.units = units
	s.mu.Unlock()

	s.publish(Change{Kind: ChangeUnits})
	return nil
}

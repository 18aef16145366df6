// Package store holds the canonical in-memory copy of the maintenance events
// and AC units, applies validated mutations through the gateway, and tells
// subscribers what changed.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/manav03panchal/aircare/internal/config"
	"github.com/manav03panchal/aircare/internal/errors"
	"github.com/manav03panchal/aircare/internal/logging"
	"github.com/manav03panchal/aircare/internal/model"
	"github.com/manav03panchal/aircare/internal/projection"
)

// Gateway is the remote collection the store reads and writes.
type Gateway interface {
	ListMaintenance(ctx context.Context) ([]model.MaintenanceEvent, error)
	GetMaintenance(ctx context.Context, id string) (*model.EventDetail, error)
	ListMaintenanceByAC(ctx context.Context, acID string) ([]model.MaintenanceEvent, error)
	CreateMaintenance(ctx context.Context, ev model.MaintenanceEvent) (*model.MaintenanceEvent, error)
	UpdateMaintenance(ctx context.Context, ev model.MaintenanceEvent) (*model.MaintenanceEvent, error)
	DeleteMaintenance(ctx context.Context, id string) error

	ListACUnits(ctx context.Context) ([]model.ACUnit, error)
	CreateACUnit(ctx context.Context, unit model.ACUnit) (*model.ACUnit, error)
	UpdateACUnit(ctx context.Context, unit model.ACUnit) (*model.ACUnit, error)
	DeleteACUnit(ctx context.Context, id string) error
}

// ChangeKind says what a Change did.
type ChangeKind int

const (
	ChangeReloaded ChangeKind = iota
	ChangeCreated
	ChangeUpdated
	ChangeRemoved
	ChangeUnits
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeReloaded:
		return "reloaded"
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeRemoved:
		return "removed"
	case ChangeUnits:
		return "units"
	default:
		return "unknown"
	}
}

// Change is published to subscribers after every successful mutation.
type Change struct {
	Kind    ChangeKind
	EventID string
}

// Options configures a Store.
type Options struct {
	// Now is the clock used for the upcoming and history filters.
	Now func() time.Time
	// HistoryLimit caps GetDetailWithHistory's history. Zero uses the
	// configured default.
	HistoryLimit int
	// DefaultEndTime fills a draft's missing end time.
	DefaultEndTime string
	// SeriesLimit caps how many occurrences CreateSeries submits.
	SeriesLimit int
}

// Store is safe for concurrent use. Subscriber callbacks run outside the
// lock, on the goroutine that made the change.
type Store struct {
	gw   Gateway
	opts Options

	mu      sync.RWMutex
	events  map[string]model.MaintenanceEvent
	units   []model.ACUnit
	details map[string]*model.EventDetail

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

// New creates an empty store. Call Refresh to load it.
func New(gw Gateway, opts Options) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = config.Global.Events.HistoryLimit
	}
	if opts.DefaultEndTime == "" {
		opts.DefaultEndTime = config.Global.Events.DefaultEndTime
	}
	if opts.SeriesLimit <= 0 {
		opts.SeriesLimit = config.Global.Events.SeriesLimit
	}

	return &Store{
		gw:      gw,
		opts:    opts,
		events:  make(map[string]model.MaintenanceEvent),
		details: make(map[string]*model.EventDetail),
		subs:    make(map[int]func(Change)),
	}
}

// Subscribe registers fn for every change. The returned func unregisters it.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) publish(c Change) {
	s.subMu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}

// Refresh reloads events and units. A failed list keeps the previous copy of
// that list; the errors are returned joined after whatever did load is
// applied.
func (s *Store) Refresh(ctx context.Context) error {
	events, evErr := s.gw.ListMaintenance(ctx)
	if evErr != nil {
		logging.WarnContext(ctx, "could not load maintenance events",
			logging.KeyOperation, "refresh",
			logging.KeyError, evErr)
	}
	units, unitErr := s.gw.ListACUnits(ctx)
	if unitErr != nil {
		logging.WarnContext(ctx, "could not load AC units",
			logging.KeyOperation, "refresh",
			logging.KeyError, unitErr)
	}

	s.mu.Lock()
	if evErr == nil {
		s.events = make(map[string]model.MaintenanceEvent, len(events))
		for _, ev := range events {
			if ev.ID == "" {
				continue
			}
			s.events[ev.ID] = ev
		}
	}
	if unitErr == nil {
		s.units = units
	}
	count := len(s.events)
	s.mu.Unlock()

	logging.DebugContext(ctx, "store refreshed", logging.KeyCount, count)
	s.publish(Change{Kind: ChangeReloaded})
	return errors.Join(evErr, unitErr)
}

// ListUpcoming returns the calendar entries for today and later, in time
// order. It never fails; an unloaded store yields an empty list.
func (s *Store) ListUpcoming() []model.CalendarEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return projection.Sorted(projection.Project(s.eventsLocked(), s.units, s.opts.Now()))
}

// Events returns every known event ordered by scheduled time.
func (s *Store) Events() []model.MaintenanceEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := s.eventsLocked()
	sort.Slice(events, func(i, j int) bool {
		if events[i].ScheduledAt.Equal(events[j].ScheduledAt) {
			return events[i].ID < events[j].ID
		}
		return events[i].ScheduledAt.Before(events[j].ScheduledAt)
	})
	return events
}

// Event returns one known event.
func (s *Store) Event(id string) (model.MaintenanceEvent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.events[id]
	return ev, ok
}

// Units returns the known AC units.
func (s *Store) Units() []model.ACUnit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.ACUnit(nil), s.units...)
}

// Unit looks a unit up by storage id or code.
func (s *Store) Unit(ref string) (model.ACUnit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u := model.FindUnit(s.units, ref); u != nil {
		return *u, true
	}
	return model.ACUnit{}, false
}

// Now returns the store's clock reading.
func (s *Store) Now() time.Time {
	return s.opts.Now()
}

func (s *Store) eventsLocked() []model.MaintenanceEvent {
	events := make([]model.MaintenanceEvent, 0, len(s.events))
	for _, ev := range s.events {
		events = append(events, ev)
	}
	return events
}

// Detail fetches an event's populated detail and remembers it as loaded.
func (s *Store) Detail(ctx context.Context, id string) (*model.EventDetail, error) {
	detail, err := s.gw.GetMaintenance(ctx, id)
	if err != nil {
		return nil, err
	}

	cp := *detail
	s.mu.Lock()
	s.details[id] = &cp
	s.mu.Unlock()
	return detail, nil
}

// LoadedDetail returns the detail last fetched for id, if any.
func (s *Store) LoadedDetail(id string) (*model.EventDetail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.details[id]
	return d, ok
}

// GetDetailWithHistory fetches the event detail and the unit's recent
// completed maintenance: status set, dated before today, newest first,
// capped at the history limit. A failed history fetch leaves History empty.
func (s *Store) GetDetailWithHistory(ctx context.Context, id string) (*model.EventDetail, error) {
	detail, err := s.Detail(ctx, id)
	if err != nil {
		return nil, err
	}

	acID := detail.Event.ACRef
	if acID == "" && detail.AC != nil {
		acID = detail.AC.ID
	}
	if acID == "" {
		detail.History = []model.MaintenanceEvent{}
		return detail, nil
	}

	history, err := s.gw.ListMaintenanceByAC(ctx, acID)
	if err != nil {
		logging.WarnContext(ctx, "could not load unit history",
			logging.KeyEventID, id,
			logging.KeyACID, acID,
			logging.KeyError, err)
		history = nil
	}
	detail.History = projection.RecentHistory(history, s.opts.Now(), s.opts.HistoryLimit)
	return detail, nil
}

// UnitHistory returns every event recorded against the unit, newest first.
func (s *Store) UnitHistory(ctx context.Context, ref string) (model.ACUnit, []model.MaintenanceEvent, error) {
	unit, ok := s.Unit(ref)
	if !ok {
		return model.ACUnit{}, nil, errors.NewNotFoundError("AC unit", ref)
	}

	events, err := s.gw.ListMaintenanceByAC(ctx, unit.ID)
	if err != nil {
		return unit, nil, err
	}
	projection.SortNewestFirst(events)
	return unit, events, nil
}

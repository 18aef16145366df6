package scheduler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/manav03panchal/aircare/internal/logging"
	"github.com/manav03panchal/aircare/internal/model"
	"github.com/manav03panchal/aircare/internal/notify"
	"github.com/manav03panchal/aircare/internal/parser"
	"github.com/manav03panchal/aircare/internal/storage"
)

// EventSource lists the events currently known to the client.
type EventSource interface {
	Events() []model.MaintenanceEvent
}

// DetailFetcher loads an event's populated detail.
type DetailFetcher interface {
	GetMaintenance(ctx context.Context, id string) (*model.EventDetail, error)
}

// EventNotifier raises one notification per event when the wall clock
// reaches the event's scheduled minute.
//
// An event is armed while it is known and unfired. It fires when now and
// its scheduled time fall in the same minute and neither the durable flag
// nor the in-process set marks it fired. Fired is terminal. A failed detail
// fetch leaves the event armed, so the next tick retries it.
type EventNotifier struct {
	source  EventSource
	fetch   DetailFetcher
	fired   *storage.NotifiedRepo
	handoff *storage.HandoffRepo
	sink    notify.Notifier
	remote  notify.Notifier
	now     func() time.Time
	metrics *Metrics

	mu       sync.Mutex
	session  map[string]bool
	inflight map[string]bool
	onAck    []func(eventID string)

	wg sync.WaitGroup
}

// NotifierOptions wires an EventNotifier.
type NotifierOptions struct {
	Source  EventSource
	Fetch   DetailFetcher
	Fired   *storage.NotifiedRepo
	Handoff *storage.HandoffRepo
	// Sink raises the notification locally. The event is marked fired as
	// soon as it returns.
	Sink    notify.Notifier
	// Remote is delivered to after the event is marked fired, so a slow
	// webhook cannot leave a raised event unmarked. Optional.
	Remote  notify.Notifier
	Now     func() time.Time
	// Metrics is optional.
	Metrics *Metrics
}

// NewEventNotifier creates a notifier.
func NewEventNotifier(opts NotifierOptions) *EventNotifier {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &EventNotifier{
		source:   opts.Source,
		fetch:    opts.Fetch,
		fired:    opts.Fired,
		handoff:  opts.Handoff,
		sink:     opts.Sink,
		remote:   opts.Remote,
		now:      now,
		metrics:  opts.Metrics,
		session:  make(map[string]bool),
		inflight: make(map[string]bool),
	}
}

// Check evaluates every known event once. Due events are fetched and raised
// on their own goroutines so one slow fetch does not hold up the rest.
func (n *EventNotifier) Check(ctx context.Context) {
	now := n.now()
	n.metrics.RecordCheck(now)
	for _, ev := range n.source.Events() {
		if ev.ID == "" || ev.ScheduledAt.IsZero() {
			continue
		}
		if !parser.SameMinute(now, ev.ScheduledAt) {
			continue
		}
		if !n.claim(ctx, ev.ID) {
			continue
		}

		n.wg.Add(1)
		go func(ev model.MaintenanceEvent) {
			defer n.wg.Done()
			n.fire(ctx, ev)
		}(ev)
	}
}

// Wait blocks until every raise started by Check has finished.
func (n *EventNotifier) Wait() {
	n.wg.Wait()
}

// claim reserves an event for raising. It fails when the event already
// fired, durably or in this process, or another tick is raising it.
func (n *EventNotifier) claim(ctx context.Context, id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.session[id] || n.inflight[id] {
		return false
	}

	done, err := n.fired.IsNotified(id)
	if err != nil {
		logging.WarnContext(ctx, "could not read notified flag",
			logging.KeyEventID, id,
			logging.KeyError, err)
		return false
	}
	if done {
		n.session[id] = true
		return false
	}

	n.inflight[id] = true
	return true
}

func (n *EventNotifier) release(id string) {
	n.mu.Lock()
	delete(n.inflight, id)
	n.mu.Unlock()
}

func (n *EventNotifier) fire(ctx context.Context, ev model.MaintenanceEvent) {
	ctx = logging.EnsureRequestID(ctx)

	detail, err := n.fetch.GetMaintenance(ctx, ev.ID)
	if err != nil {
		logging.WarnContext(ctx, "could not fetch event for notification",
			logging.KeyEventID, ev.ID,
			logging.KeyError, err)
		n.metrics.RecordFetchFailure(n.now(), err)
		n.release(ev.ID)
		return
	}

	note := Compose(ev, detail)
	start := time.Now()
	if err := n.sink.Notify(ctx, note); err != nil {
		n.sinkFailed(ctx, ev.ID, err)
	}
	n.metrics.RecordRaised(n.now(), time.Since(start))

	n.markFired(ctx, ev.ID)

	if n.remote != nil {
		if err := n.remote.Notify(ctx, note); err != nil {
			n.sinkFailed(ctx, ev.ID, err)
		}
	}
}

func (n *EventNotifier) sinkFailed(ctx context.Context, id string, err error) {
	logging.WarnContext(ctx, "notification sink failed",
		logging.KeyEventID, id,
		logging.KeyError, err)
	n.metrics.RecordSinkFailure(n.now(), err)
}

// markFired records the event as fired in the session set and durably.
func (n *EventNotifier) markFired(ctx context.Context, id string) {
	n.mu.Lock()
	n.session[id] = true
	delete(n.inflight, id)
	n.mu.Unlock()

	if _, err := n.fired.MarkNotified(id, n.now()); err != nil {
		logging.ErrorContext(ctx, "could not persist notified flag",
			logging.KeyEventID, id,
			logging.KeyError, err)
		return
	}
	logging.InfoContext(ctx, "maintenance notification raised", logging.KeyEventID, id)
}

// Fired reports whether id fired in this process or an earlier one.
func (n *EventNotifier) Fired(id string) bool {
	n.mu.Lock()
	inSession := n.session[id]
	n.mu.Unlock()
	if inSession {
		return true
	}
	done, err := n.fired.IsNotified(id)
	return err == nil && done
}

// OnAcknowledge registers fn to run when a notification is acknowledged.
func (n *EventNotifier) OnAcknowledge(fn func(eventID string)) {
	n.mu.Lock()
	n.onAck = append(n.onAck, fn)
	n.mu.Unlock()
}

// Acknowledge records that the user opened the notification for id. The id
// is persisted for the detail view to pick up on its next load, and the
// registered callbacks are told directly.
func (n *EventNotifier) Acknowledge(id string) error {
	if n.handoff != nil {
		if err := n.handoff.Set(id); err != nil {
			return err
		}
	}

	n.mu.Lock()
	fns := append([]func(string){}, n.onAck...)
	n.mu.Unlock()

	for _, fn := range fns {
		fn(id)
	}
	return nil
}

// Placeholders used when a detail field is empty.
const (
	noTitle     = "No Title"
	noID        = "No ID"
	noLocation  = "No Location"
	noEmployees = "No employees assigned"
	noTasks     = "No Tasks"
)

// Compose builds the notification for an event from its fetched detail.
func Compose(ev model.MaintenanceEvent, detail *model.EventDetail) *model.Notification {
	if detail == nil {
		detail = &model.EventDetail{Event: ev}
	}
	full := detail.Event
	if full.ID == "" {
		full = ev
	}

	title := firstNonEmpty(full.Title, ev.Title, noTitle)

	acID := ""
	location := ""
	if detail.AC != nil {
		acID = detail.AC.Code
		location = detail.AC.Location
	}
	acID = firstNonEmpty(acID, full.ACRef, noID)
	location = firstNonEmpty(location, full.Location, noLocation)

	employees := noEmployees
	if names := detail.EmployeeNames(); len(names) > 0 {
		employees = strings.Join(names, ", ")
	}

	tasks := full.Tasks
	if len(tasks) == 0 {
		tasks = ev.Tasks
	}
	taskList := noTasks
	if len(tasks) > 0 {
		taskList = strings.Join(tasks, ", ")
	}

	n := model.NewNotification(model.NotifyMaintenance, model.NotificationTitle, "")
	n.EventID = ev.ID
	return n.
		WithField("Title", title).
		WithField("Date", parser.FormatDate(full.ScheduledAt)).
		WithField("Aircon ID", acID).
		WithField("Location", location).
		WithField("Time Start", parser.FormatTimeToAMPM(full.Window.Start)).
		WithField("Time End", parser.FormatTimeToAMPM(full.Window.End)).
		WithField("Assigned Employees", employees).
		WithField("Tasks", taskList)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/manav03panchal/aircare/internal/gateway"
	"github.com/manav03panchal/aircare/internal/gateway/gatewaytest"
	"github.com/manav03panchal/aircare/internal/model"
	"github.com/manav03panchal/aircare/internal/notify"
	"github.com/manav03panchal/aircare/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 9, 0, 42, 0, time.Local)

type staticSource []model.MaintenanceEvent

func (s staticSource) Events() []model.MaintenanceEvent { return s }

type recorder struct {
	mu    sync.Mutex
	notes []*model.Notification
}

func (r *recorder) Notify(_ context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notes)
}

func setupTestDB(t *testing.T) *storage.DB {
	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type harness struct {
	srv    *gatewaytest.Server
	client *gateway.Client
	db     *storage.DB
	rec    *recorder
	events staticSource
	ids    []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := gatewaytest.NewServer(t)
	unit := srv.AddUnit(model.ACUnit{Code: "AC-101", Name: "Lobby", Location: "Ground floor"})
	emp := srv.AddUser(model.Employee{Username: "ana", FirstName: "Ana", LastName: "Cruz"}, "pw")

	due := testNow.Truncate(time.Minute).Add(5 * time.Second)
	id := srv.AddEvent(gatewaytest.Event{
		Title:   "Quarterly",
		ACID:    unit.ID,
		Date:    due,
		Tasks:   []string{"Fan Check", "Coolant Refill"},
		Details: gatewaytest.Details{TimeStart: "09:00", TimeEnd: "23:59", AssignedEmployees: []string{emp.ID}},
	})
	later := srv.AddEvent(gatewaytest.Event{ACID: unit.ID, Date: due.Add(time.Minute)})

	client := gateway.New(gateway.Options{BaseURL: srv.URL, MaxRetries: 1})
	events, err := client.ListMaintenance(context.Background())
	require.NoError(t, err)

	return &harness{
		srv:    srv,
		client: client,
		db:     setupTestDB(t),
		rec:    &recorder{},
		events: events,
		ids:    []string{id, later},
	}
}

func (h *harness) notifier(db *storage.DB, now time.Time) *EventNotifier {
	return NewEventNotifier(NotifierOptions{
		Source:  h.events,
		Fetch:   h.client,
		Fired:   storage.NewNotifiedRepo(db),
		Handoff: storage.NewHandoffRepo(db),
		Sink:    h.rec,
		Now:     func() time.Time { return now },
	})
}

// =============================================================================
// Firing
// =============================================================================

func TestCheckFiresOnceAcrossTicks(t *testing.T) {
	h := newHarness(t)
	n := h.notifier(h.db, testNow)

	for i := 0; i < 5; i++ {
		n.Check(context.Background())
		n.Wait()
	}

	assert.Equal(t, 1, h.rec.count())
	assert.True(t, n.Fired(h.ids[0]))
	assert.False(t, n.Fired(h.ids[1]))
	assert.Equal(t, 1, h.srv.DetailCalls(h.ids[0]))
	assert.Equal(t, 0, h.srv.DetailCalls(h.ids[1]))

	done, err := storage.NewNotifiedRepo(h.db).IsNotified(h.ids[0])
	require.NoError(t, err)
	assert.True(t, done)
}

func TestCheckConcurrentTicks(t *testing.T) {
	h := newHarness(t)
	n := h.notifier(h.db, testNow)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.Check(context.Background())
		}()
	}
	wg.Wait()
	n.Wait()

	assert.Equal(t, 1, h.rec.count())
}

func TestCheckDoesNotRefireAfterReload(t *testing.T) {
	h := newHarness(t)

	first := h.notifier(h.db, testNow)
	first.Check(context.Background())
	first.Wait()
	require.Equal(t, 1, h.rec.count())

	// A fresh process has an empty session set but the same durable flags.
	second := h.notifier(h.db, testNow.Add(10*time.Second))
	second.Check(context.Background())
	second.Wait()

	assert.Equal(t, 1, h.rec.count())
	assert.True(t, second.Fired(h.ids[0]))
}

func TestCheckDoesNotRefireAfterReopeningDatabase(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()

	db, err := storage.Open(storage.Options{Path: dir})
	require.NoError(t, err)
	n := h.notifier(db, testNow)
	n.Check(context.Background())
	n.Wait()
	require.NoError(t, db.Close())
	require.Equal(t, 1, h.rec.count())

	db, err = storage.Open(storage.Options{Path: dir})
	require.NoError(t, err)
	defer db.Close()

	n = h.notifier(db, testNow)
	n.Check(context.Background())
	n.Wait()
	assert.Equal(t, 1, h.rec.count())
}

func TestCheckIgnoresOtherMinutes(t *testing.T) {
	h := newHarness(t)

	n := h.notifier(h.db, testNow.Add(-time.Minute))
	n.Check(context.Background())
	n.Wait()
	assert.Equal(t, 0, h.rec.count())

	n = h.notifier(h.db, testNow.Add(time.Minute))
	n.Check(context.Background())
	n.Wait()
	require.Equal(t, 1, h.rec.count())
	id, _ := h.rec.notes[0].Field("Title")
	assert.Equal(t, "No Title", id)
	assert.Equal(t, h.ids[1], h.rec.notes[0].EventID)
}

func TestCheckRetriesAfterFetchFailure(t *testing.T) {
	h := newHarness(t)
	n := h.notifier(h.db, testNow)

	h.srv.FailDetail(h.ids[0], 1)
	n.Check(context.Background())
	n.Wait()

	assert.Equal(t, 0, h.rec.count())
	assert.False(t, n.Fired(h.ids[0]))

	n.Check(context.Background())
	n.Wait()

	assert.Equal(t, 1, h.rec.count())
	assert.True(t, n.Fired(h.ids[0]))
	assert.Equal(t, 2, h.srv.DetailCalls(h.ids[0]))
}

func TestCheckMarksFiredWhenSinkFails(t *testing.T) {
	h := newHarness(t)
	calls := 0
	n := NewEventNotifier(NotifierOptions{
		Source: h.events,
		Fetch:  h.client,
		Fired:  storage.NewNotifiedRepo(h.db),
		Sink: notify.NotifierFunc(func(context.Context, *model.Notification) error {
			calls++
			return assert.AnError
		}),
		Now: func() time.Time { return testNow },
	})

	n.Check(context.Background())
	n.Wait()
	n.Check(context.Background())
	n.Wait()

	assert.Equal(t, 1, calls)
	assert.True(t, n.Fired(h.ids[0]))
}

func TestCheckMarksFiredBeforeRemoteDelivery(t *testing.T) {
	h := newHarness(t)
	fired := storage.NewNotifiedRepo(h.db)

	release := make(chan struct{})
	delivering := make(chan struct{})
	var persistedFirst bool
	n := NewEventNotifier(NotifierOptions{
		Source: h.events,
		Fetch:  h.client,
		Fired:  fired,
		Sink:   h.rec,
		Remote: notify.NotifierFunc(func(context.Context, *model.Notification) error {
			persistedFirst, _ = fired.IsNotified(h.ids[0])
			close(delivering)
			<-release
			return nil
		}),
		Now: func() time.Time { return testNow },
	})

	n.Check(context.Background())
	<-delivering

	// A second process over the same database while the webhook hangs.
	again := &recorder{}
	restarted := NewEventNotifier(NotifierOptions{
		Source: h.events,
		Fetch:  h.client,
		Fired:  fired,
		Sink:   again,
		Now:    func() time.Time { return testNow },
	})
	restarted.Check(context.Background())
	restarted.Wait()

	close(release)
	n.Wait()

	assert.True(t, persistedFirst)
	assert.Equal(t, 1, h.rec.count())
	assert.Equal(t, 0, again.count())
	assert.Equal(t, 1, h.srv.DetailCalls(h.ids[0]))
}

func TestCheckRemoteFailureRecorded(t *testing.T) {
	h := newHarness(t)
	metrics := NewMetrics()
	n := NewEventNotifier(NotifierOptions{
		Source: h.events,
		Fetch:  h.client,
		Fired:  storage.NewNotifiedRepo(h.db),
		Sink:   h.rec,
		Remote: notify.NotifierFunc(func(context.Context, *model.Notification) error {
			return assert.AnError
		}),
		Now:     func() time.Time { return testNow },
		Metrics: metrics,
	})

	n.Check(context.Background())
	n.Wait()

	assert.Equal(t, 1, h.rec.count())
	assert.True(t, n.Fired(h.ids[0]))
	snap := metrics.Snapshot()
	assert.Equal(t, int64(1), snap.SinkFailuresTotal)
	assert.Equal(t, int64(1), snap.RaisedTotal)
}

func TestCheckRecordsMetrics(t *testing.T) {
	h := newHarness(t)
	m := NewMetrics()
	n := NewEventNotifier(NotifierOptions{
		Source:  h.events,
		Fetch:   h.client,
		Fired:   storage.NewNotifiedRepo(h.db),
		Sink:    h.rec,
		Now:     func() time.Time { return testNow },
		Metrics: m,
	})

	h.srv.FailDetail(h.ids[0], 1)
	for i := 0; i < 3; i++ {
		n.Check(context.Background())
		n.Wait()
	}

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.ChecksTotal)
	assert.Equal(t, int64(1), snap.RaisedTotal)
	assert.Equal(t, int64(1), snap.FetchFailuresTotal)
	assert.Equal(t, int64(0), snap.SinkFailuresTotal)
	assert.Equal(t, int64(1), snap.ErrorsByCategory["fetch"])
	require.NotNil(t, snap.LastRaisedAt)
	assert.True(t, snap.LastRaisedAt.Equal(testNow))
	assert.NotEmpty(t, snap.LastError)

	data, err := m.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"raised_total": 1`)
}

func TestNilMetricsIgnored(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordCheck(testNow)
		m.RecordRaised(testNow, time.Millisecond)
		m.RecordSinkFailure(testNow, assert.AnError)
		m.RecordFetchFailure(testNow, assert.AnError)
	})
}

// =============================================================================
// Body
// =============================================================================

func TestComposeFromDetail(t *testing.T) {
	h := newHarness(t)
	n := h.notifier(h.db, testNow)
	n.Check(context.Background())
	n.Wait()

	require.Equal(t, 1, h.rec.count())
	note := h.rec.notes[0]

	assert.Equal(t, model.NotificationTitle, note.Title)
	assert.Equal(t, model.NotifyMaintenance, note.Type)
	assert.Equal(t, h.ids[0], note.EventID)

	var names []string
	for _, f := range note.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Title", "Date", "Aircon ID", "Location", "Time Start", "Time End", "Assigned Employees", "Tasks"}, names)

	want := map[string]string{
		"Title":              "Quarterly",
		"Date":               "Sat, Mar 14 2026",
		"Aircon ID":          "AC-101",
		"Location":           "Ground floor",
		"Time Start":         "9:00 AM",
		"Time End":           "11:59 PM",
		"Assigned Employees": "Ana Cruz",
		"Tasks":              "Fan Check, Coolant Refill",
	}
	for name, value := range want {
		got, ok := note.Field(name)
		assert.True(t, ok, name)
		assert.Equal(t, value, got, name)
	}
}

func TestComposeDefaults(t *testing.T) {
	ev := model.MaintenanceEvent{ID: "e1", ScheduledAt: testNow}
	note := Compose(ev, &model.EventDetail{Event: ev})

	expect := map[string]string{
		"Title":              "No Title",
		"Aircon ID":          "No ID",
		"Location":           "No Location",
		"Time Start":         "",
		"Time End":           "",
		"Assigned Employees": "No employees assigned",
		"Tasks":              "No Tasks",
	}
	for name, value := range expect {
		got, _ := note.Field(name)
		assert.Equal(t, value, got, name)
	}

	withRef := Compose(model.MaintenanceEvent{ID: "e2", ACRef: "orphan-ref"}, nil)
	got, _ := withRef.Field("Aircon ID")
	assert.Equal(t, "orphan-ref", got)
}

// =============================================================================
// Acknowledgment
// =============================================================================

func TestAcknowledge(t *testing.T) {
	h := newHarness(t)
	n := h.notifier(h.db, testNow)

	var opened []string
	n.OnAcknowledge(func(id string) { opened = append(opened, id) })

	require.NoError(t, n.Acknowledge(h.ids[0]))
	assert.Equal(t, []string{h.ids[0]}, opened)

	id, ok, err := storage.NewHandoffRepo(h.db).Take()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, h.ids[0], id)
}

// =============================================================================
// Scheduler
// =============================================================================

func TestSchedulerEvery(t *testing.T) {
	s := NewScheduler()

	id, err := s.Every(500*time.Millisecond, func() {})
	require.NoError(t, err)
	require.Len(t, s.Entries(), 1)

	s.Start()
	assert.False(t, s.NextRun().IsZero())
	s.RemoveJob(id)
	s.Stop()
	assert.Empty(t, s.Entries())
}

func TestSchedulerNextRunEmpty(t *testing.T) {
	assert.True(t, NewScheduler().NextRun().IsZero())
}

func TestStartWatch(t *testing.T) {
	h := newHarness(t)
	n := h.notifier(h.db, testNow)

	var mu sync.Mutex
	refreshed := 0
	s, err := StartWatch(context.Background(), WatchOptions{
		Notifier: n,
		Refresh: func(context.Context) error {
			mu.Lock()
			refreshed++
			mu.Unlock()
			return nil
		},
		CheckInterval:   time.Second,
		RefreshInterval: time.Second,
	})
	require.NoError(t, err)
	defer s.Stop()

	require.Eventually(t, func() bool { return h.rec.count() == 1 }, 5*time.Second, 50*time.Millisecond)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return refreshed > 0
	}, 5*time.Second, 50*time.Millisecond)
	assert.Len(t, s.Entries(), 2)
}

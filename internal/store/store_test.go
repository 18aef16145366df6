package store

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/manav03panchal/aircare/internal/errors"
	"github.com/manav03panchal/aircare/internal/gateway"
	"github.com/manav03panchal/aircare/internal/gateway/gatewaytest"
	"github.com/manav03panchal/aircare/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.Local)

func day(offset, hour int) time.Time {
	return time.Date(testNow.Year(), testNow.Month(), testNow.Day()+offset, hour, 0, 0, 0, time.Local)
}

type fixture struct {
	srv   *gatewaytest.Server
	store *Store
	unit  model.ACUnit
}

func setup(t *testing.T) *fixture {
	t.Helper()
	srv := gatewaytest.NewServer(t)
	unit := srv.AddUnit(model.ACUnit{Code: "AC-101", Name: "Lobby", Location: "Ground floor"})

	client := gateway.New(gateway.Options{BaseURL: srv.URL, MaxRetries: 1})
	s := New(client, Options{
		Now:            func() time.Time { return testNow },
		HistoryLimit:   3,
		DefaultEndTime: "23:59",
		SeriesLimit:    10,
	})
	require.NoError(t, s.Refresh(context.Background()))

	return &fixture{srv: srv, store: s, unit: unit}
}

func (f *fixture) draft() Draft {
	return Draft{
		ACRef:  f.unit.Code,
		Date:   day(1, 9),
		Window: model.TimeWindow{Start: "09:00", End: "10:00"},
		Tasks:  []string{"Fan Check"},
	}
}

// =============================================================================
// Create
// =============================================================================

func TestCreateRejectsUnpaddedClock(t *testing.T) {
	f := setup(t)

	d := f.draft()
	d.Window = model.TimeWindow{Start: "9:00", End: "10:00"}
	_, err := f.store.Create(context.Background(), d)

	assert.True(t, errors.IsValidationError(err))
	assert.ErrorIs(t, err, errors.ErrInvalidClockTime)
	assert.Equal(t, 0, f.srv.RequestsTo(http.MethodPost, "/api/maintenance"))
	assert.Empty(t, f.store.ListUpcoming())
}

func TestCreateAcceptsPaddedClock(t *testing.T) {
	f := setup(t)

	created, err := f.store.Create(context.Background(), f.draft())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	upcoming := f.store.ListUpcoming()
	require.Len(t, upcoming, 1)
	assert.Equal(t, created.ID, upcoming[0].ID)
	assert.Equal(t, "Lobby", upcoming[0].Title)
	assert.Equal(t, model.TimeWindow{Start: "09:00", End: "10:00"}, upcoming[0].Window)
}

func TestCreateAppliesDefaults(t *testing.T) {
	f := setup(t)

	d := f.draft()
	d.Window.End = ""
	created, err := f.store.Create(context.Background(), d)
	require.NoError(t, err)

	stored, ok := f.srv.Event(created.ID)
	require.True(t, ok)
	assert.Equal(t, f.unit.ID, stored.ACID)
	assert.Equal(t, model.DefaultEventTitle, stored.Title)
	assert.Equal(t, "Ground floor", stored.Details.Location)
	assert.Equal(t, model.DefaultEventSummary, stored.Details.Summary)
	assert.Equal(t, "23:59", stored.Details.TimeEnd)
	assert.False(t, stored.Details.Status)
}

func TestCreateValidation(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name   string
		mutate func(*Draft)
		field  string
	}{
		{"unknown unit", func(d *Draft) { d.ACRef = "AC-404" }, "acRef"},
		{"missing start", func(d *Draft) { d.Window.Start = "" }, "timeStart"},
		{"bad end", func(d *Draft) { d.Window.End = "10:0" }, "timeEnd"},
		{"missing date", func(d *Draft) { d.Date = time.Time{} }, "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := f.draft()
			tt.mutate(&d)
			_, err := f.store.Create(context.Background(), d)

			var ve *errors.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
	assert.Equal(t, 0, f.srv.EventCount())
}

func TestCreateGatewayFailureLeavesStateAlone(t *testing.T) {
	f := setup(t)
	f.srv.FailNext(1)

	_, err := f.store.Create(context.Background(), f.draft())
	_, ok := errors.AsGatewayError(err)
	assert.True(t, ok)
	assert.Empty(t, f.store.ListUpcoming())
}

func TestCreateSeries(t *testing.T) {
	f := setup(t)

	created, err := f.store.CreateSeries(context.Background(), f.draft(), "RRULE:FREQ=WEEKLY;COUNT=3")
	require.NoError(t, err)
	require.Len(t, created, 3)
	assert.Equal(t, 3, f.srv.EventCount())

	for i, ev := range created {
		assert.True(t, ev.ScheduledAt.Equal(day(1+7*i, 9)), "occurrence %d at %v", i, ev.ScheduledAt)
	}
}

func TestCreateSeriesCapsOpenRules(t *testing.T) {
	f := setup(t)

	created, err := f.store.CreateSeries(context.Background(), f.draft(), "FREQ=DAILY")
	require.NoError(t, err)
	assert.Len(t, created, 10)
}

func TestCreateSeriesRejectsBadRule(t *testing.T) {
	f := setup(t)

	_, err := f.store.CreateSeries(context.Background(), f.draft(), "FREQ=SOMETIMES")
	assert.True(t, errors.IsValidationError(err))
	assert.Equal(t, 0, f.srv.EventCount())
}

// =============================================================================
// Update / Complete
// =============================================================================

func TestUpdateMergesIntoServerCopy(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.store.Create(ctx, f.draft())
	require.NoError(t, err)

	// Another session edits the location after we loaded.
	stored, _ := f.srv.Event(created.ID)
	stored.Details.Location = "Moved to roof"
	f.srv.AddEvent(stored)

	summary := "Cleaned coils"
	updated, err := f.store.Update(ctx, created.ID, Patch{Summary: &summary})
	require.NoError(t, err)
	assert.Equal(t, "Cleaned coils", updated.Summary)
	assert.Equal(t, "Moved to roof", updated.Location)

	after, _ := f.srv.Event(created.ID)
	assert.Equal(t, "Moved to roof", after.Details.Location)
	assert.Equal(t, "Cleaned coils", after.Details.Summary)

	local, ok := f.store.Event(created.ID)
	require.True(t, ok)
	assert.Equal(t, "Cleaned coils", local.Summary)
}

func TestUpdateLeavesReturnedDetailAlone(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.store.Create(ctx, f.draft())
	require.NoError(t, err)
	shown, err := f.store.GetDetailWithHistory(ctx, created.ID)
	require.NoError(t, err)
	before := shown.Event.Summary

	summary := "Cleaned coils"
	_, err = f.store.Update(ctx, created.ID, Patch{Summary: &summary})
	require.NoError(t, err)

	assert.Equal(t, before, shown.Event.Summary)
	loaded, ok := f.store.LoadedDetail(created.ID)
	require.True(t, ok)
	assert.Equal(t, "Cleaned coils", loaded.Event.Summary)
	assert.NotSame(t, shown, loaded)
}

func TestUpdateNotFound(t *testing.T) {
	f := setup(t)

	done := true
	_, err := f.store.Update(context.Background(), gatewaytest.NewID(), Patch{Status: &done})
	assert.True(t, errors.IsNotFoundError(err))
}

func TestUpdateValidatesClock(t *testing.T) {
	f := setup(t)
	created, err := f.store.Create(context.Background(), f.draft())
	require.NoError(t, err)

	bad := "7:30"
	_, err = f.store.Update(context.Background(), created.ID, Patch{Start: &bad})
	assert.True(t, errors.IsValidationError(err))
	assert.Equal(t, 0, f.srv.RequestsTo(http.MethodPut, "/api/maintenance/"+created.ID))
}

func TestComplete(t *testing.T) {
	f := setup(t)
	created, err := f.store.Create(context.Background(), f.draft())
	require.NoError(t, err)

	done, err := f.store.Complete(context.Background(), created.ID, "All good")
	require.NoError(t, err)
	assert.True(t, done.Status)
	assert.Equal(t, "All good", done.Summary)

	stored, _ := f.srv.Event(created.ID)
	assert.True(t, stored.Details.Status)
}

// =============================================================================
// Remove
// =============================================================================

func TestRemoveRequiresLoadedDetail(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	created, err := f.store.Create(ctx, f.draft())
	require.NoError(t, err)

	err = f.store.Remove(ctx, created.ID)
	assert.True(t, errors.IsPreconditionError(err))
	assert.Equal(t, 1, f.srv.EventCount())

	_, err = f.store.Detail(ctx, created.ID)
	require.NoError(t, err)
	require.NoError(t, f.store.Remove(ctx, created.ID))

	assert.Equal(t, 0, f.srv.EventCount())
	_, ok := f.store.Event(created.ID)
	assert.False(t, ok)
	_, ok = f.store.LoadedDetail(created.ID)
	assert.False(t, ok)
}

// =============================================================================
// Detail with history
// =============================================================================

func TestGetDetailWithHistory(t *testing.T) {
	f := setup(t)

	add := func(offset int, done bool) string {
		return f.srv.AddEvent(gatewaytest.Event{
			ACID:    f.unit.ID,
			Date:    day(offset, 9),
			Details: gatewaytest.Details{Status: done},
		})
	}

	// 5 completed in the past, 2 pending, 1 completed today.
	d5 := add(-5, true)
	add(-20, true)
	d1 := add(-1, true)
	add(-9, true)
	d3 := add(-3, true)
	add(-2, false)
	add(-4, false)
	add(0, true)
	current := add(1, false)

	// Another unit's history never leaks in.
	f.srv.AddEvent(gatewaytest.Event{ACID: "other", Date: day(-1, 12), Details: gatewaytest.Details{Status: true}})

	detail, err := f.store.GetDetailWithHistory(context.Background(), current)
	require.NoError(t, err)
	require.NotNil(t, detail.AC)
	assert.Equal(t, "AC-101", detail.AC.Code)

	require.Len(t, detail.History, 3)
	assert.Equal(t, []string{d1, d3, d5}, []string{detail.History[0].ID, detail.History[1].ID, detail.History[2].ID})
	for _, ev := range detail.History {
		assert.True(t, ev.Status)
		assert.True(t, ev.ScheduledAt.Before(day(0, 0)))
	}

	_, loaded := f.store.LoadedDetail(current)
	assert.True(t, loaded)
}

func TestGetDetailWithHistoryNotFound(t *testing.T) {
	f := setup(t)

	_, err := f.store.GetDetailWithHistory(context.Background(), gatewaytest.NewID())
	assert.True(t, errors.IsNotFoundError(err))
}

// historyDown is a gateway whose by-unit listing always fails.
type historyDown struct {
	*gateway.Client
}

func (historyDown) ListMaintenanceByAC(context.Context, string) ([]model.MaintenanceEvent, error) {
	return nil, &errors.GatewayError{Method: http.MethodGet, Endpoint: "/api/maintenance/by-ac", Status: http.StatusServiceUnavailable}
}

func TestGetDetailHistoryFailureDegrades(t *testing.T) {
	f := setup(t)
	id := f.srv.AddEvent(gatewaytest.Event{ACID: f.unit.ID, Date: day(1, 9)})
	f.srv.AddEvent(gatewaytest.Event{ACID: f.unit.ID, Date: day(-1, 9), Details: gatewaytest.Details{Status: true}})

	client := gateway.New(gateway.Options{BaseURL: f.srv.URL, MaxRetries: 1})
	s := New(historyDown{client}, Options{Now: func() time.Time { return testNow }})

	detail, err := s.GetDetailWithHistory(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, detail.Event.ID)
	assert.NotNil(t, detail.History)
	assert.Empty(t, detail.History)
}

// =============================================================================
// Units
// =============================================================================

func TestDeleteUnitKeepsEvents(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.store.Create(ctx, f.draft())
	require.NoError(t, err)

	require.NoError(t, f.store.DeleteUnit(ctx, f.unit.ID))
	require.NoError(t, f.store.Refresh(ctx))

	upcoming := f.store.ListUpcoming()
	require.Len(t, upcoming, 1)
	assert.Equal(t, created.ID, upcoming[0].ID)
	assert.Equal(t, f.unit.ID, upcoming[0].Title)
	assert.Empty(t, f.store.Units())
}

func TestUnitLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	unit, err := f.store.AddUnit(ctx, model.ACUnit{Code: "AC-202", Name: "Kitchen"})
	require.NoError(t, err)
	assert.Len(t, f.store.Units(), 2)

	unit.Name = "Staff Kitchen"
	_, err = f.store.EditUnit(ctx, *unit)
	require.NoError(t, err)

	got, ok := f.store.Unit("AC-202")
	require.True(t, ok)
	assert.Equal(t, "Staff Kitchen", got.Name)

	f.srv.AddEvent(gatewaytest.Event{ACID: unit.ID, Date: day(-3, 9)})
	f.srv.AddEvent(gatewaytest.Event{ACID: unit.ID, Date: day(-1, 9)})

	_, history, err := f.store.UnitHistory(ctx, "AC-202")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].ScheduledAt.After(history[1].ScheduledAt))

	_, _, err = f.store.UnitHistory(ctx, "nope")
	assert.True(t, errors.IsNotFoundError(err))
}

// =============================================================================
// Refresh and subscriptions
// =============================================================================

func TestRefreshKeepsPreviousOnFailure(t *testing.T) {
	f := setup(t)
	f.srv.AddEvent(gatewaytest.Event{ACID: f.unit.ID, Date: day(1, 9)})
	require.NoError(t, f.store.Refresh(context.Background()))
	require.Len(t, f.store.Events(), 1)

	f.srv.FailNext(1)
	err := f.store.Refresh(context.Background())
	assert.Error(t, err)
	assert.Len(t, f.store.Events(), 1)
	assert.Len(t, f.store.Units(), 1)
}

func TestListUpcomingExcludesPast(t *testing.T) {
	f := setup(t)
	f.srv.AddEvent(gatewaytest.Event{ACID: f.unit.ID, Date: day(-1, 9)})
	f.srv.AddEvent(gatewaytest.Event{ACID: f.unit.ID, Date: day(0, 8)})
	require.NoError(t, f.store.Refresh(context.Background()))

	assert.Len(t, f.store.Events(), 2)
	assert.Len(t, f.store.ListUpcoming(), 1)
}

func TestSubscribe(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	var mu sync.Mutex
	var changes []Change
	unsubscribe := f.store.Subscribe(func(c Change) {
		mu.Lock()
		changes = append(changes, c)
		mu.Unlock()
	})

	created, err := f.store.Create(ctx, f.draft())
	require.NoError(t, err)
	_, err = f.store.Complete(ctx, created.ID, "")
	require.NoError(t, err)

	unsubscribe()
	unsubscribe()
	require.NoError(t, f.store.Refresh(ctx))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, changes, 2)
	assert.Equal(t, Change{Kind: ChangeCreated, EventID: created.ID}, changes[0])
	assert.Equal(t, ChangeUpdated, changes[1].Kind)
	assert.Equal(t, "updated", changes[1].Kind.String())
}

package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/aircare/internal/model"
)

var stamp = time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)

func entry(id string, at time.Time, window model.TimeWindow) model.CalendarEntry {
	return model.CalendarEntry{
		ID:          id,
		Title:       "Lobby",
		ScheduledAt: at,
		Window:      window,
		Source: model.MaintenanceEvent{
			ID:          id,
			ACRef:       "u1",
			ScheduledAt: at,
			Window:      window,
			Tasks:       []string{"Fan Check", "Coolant Refill"},
		},
	}
}

func parse(t *testing.T, data []byte) []*ical.VEvent {
	t.Helper()
	cal, err := ical.ParseCalendar(bytes.NewReader(data))
	require.NoError(t, err)
	return cal.Events()
}

func TestWriteICS(t *testing.T) {
	day := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	units := []model.ACUnit{{ID: "u1", Code: "AC-101", Name: "Lobby", Location: "Ground floor"}}

	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, []model.CalendarEntry{
		entry("e1", day, model.TimeWindow{Start: "09:00", End: "11:30"}),
	}, units, stamp))

	out := buf.String()
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, ProductID)

	events := parse(t, buf.Bytes())
	require.Len(t, events, 1)
	ev := events[0]

	assert.Equal(t, "e1@aircare", ev.GetProperty(ical.ComponentPropertyUniqueId).Value)
	assert.Equal(t, "Maintenance Event: Lobby", ev.GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "Ground floor", ev.GetProperty(ical.ComponentPropertyLocation).Value)

	start, err := ev.GetStartAt()
	require.NoError(t, err)
	end, err := ev.GetEndAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(day.Add(9*time.Hour)), start.String())
	assert.True(t, end.Equal(day.Add(11*time.Hour+30*time.Minute)), end.String())

	desc := ev.GetProperty(ical.ComponentPropertyDescription).Value
	assert.Contains(t, desc, "Pending")
	assert.Contains(t, desc, "Fan Check")
}

func TestVisitBoundsDefaults(t *testing.T) {
	day := time.Date(2026, 3, 20, 14, 0, 0, 0, time.UTC)

	start, end := visitBounds(entry("a", day, model.TimeWindow{}))
	assert.Equal(t, day, start)
	assert.Equal(t, day.Add(time.Hour), end)

	start, end = visitBounds(entry("b", day, model.TimeWindow{Start: "16:00", End: "15:00"}))
	assert.Equal(t, 16, start.Hour())
	assert.Equal(t, start.Add(time.Hour), end)

	start, _ = visitBounds(entry("c", day, model.TimeWindow{Start: "9:00"}))
	assert.Equal(t, day, start)
}

func TestCalendarOneEventPerEntry(t *testing.T) {
	day := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	cal := Calendar([]model.CalendarEntry{
		entry("e1", day, model.TimeWindow{}),
		entry("e2", day.AddDate(0, 0, 7), model.TimeWindow{}),
	}, nil, stamp)

	events := cal.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "e2@aircare", events[1].GetProperty(ical.ComponentPropertyUniqueId).Value)
}

func TestCalendarEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, nil, nil, stamp))
	assert.True(t, strings.HasPrefix(buf.String(), "BEGIN:VCALENDAR"))
	assert.Empty(t, parse(t, buf.Bytes()))
}

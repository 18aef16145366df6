package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/aircare/internal/model"
	"github.com/manav03panchal/aircare/internal/projection"
)

var (
	testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)
	units   = []model.ACUnit{{ID: "u1", Code: "AC-101", Name: "Lobby", Location: "Ground floor", Watts: 1500}}
)

func newCLI(format Format) (*CLIFormatter, *bytes.Buffer) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf, Format: format, ColorMode: ColorNever}
	return NewCLIFormatter(f), &buf
}

// =============================================================================
// Formatter Tests
// =============================================================================

func TestNewFormatter(t *testing.T) {
	f := NewFormatter()
	assert.Equal(t, FormatCLI, f.Format)
	assert.Equal(t, ColorAuto, f.ColorMode)
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"cli", "json", "plain"} {
		f, err := ParseFormat(s)
		require.NoError(t, err)
		assert.Equal(t, Format(s), f)
	}

	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCLI, f)

	_, err = ParseFormat("yaml")
	assert.Error(t, err)
}

func TestFormatterIsColorEnabled(t *testing.T) {
	t.Run("color_always", func(t *testing.T) {
		f := &Formatter{ColorMode: ColorAlways, Format: FormatCLI}
		assert.True(t, f.IsColorEnabled())
	})

	t.Run("color_never", func(t *testing.T) {
		f := &Formatter{ColorMode: ColorNever, Format: FormatCLI}
		assert.False(t, f.IsColorEnabled())
	})

	t.Run("plain_never_colors", func(t *testing.T) {
		f := &Formatter{ColorMode: ColorAlways, Format: FormatPlain}
		assert.False(t, f.IsColorEnabled())
	})

	t.Run("color_auto_non_terminal", func(t *testing.T) {
		var buf bytes.Buffer
		f := &Formatter{Writer: &buf, ColorMode: ColorAuto, Format: FormatCLI}
		assert.False(t, f.IsColorEnabled())
		assert.False(t, IsTerminal(&buf))
	})
}

func TestFormatterJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf}

	require.NoError(t, f.JSON(map[string]int{"count": 2}))
	assert.Equal(t, "{\n  \"count\": 2\n}\n", buf.String())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{2 * time.Hour, "2h"},
		{2*time.Hour + 15*time.Minute, "2h 15m"},
		{49 * time.Hour, "2d 1h"},
		{72 * time.Hour, "3d"},
		{-90 * time.Minute, "1h 30m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.d), tt.d.String())
	}
}

func TestFormatRelative(t *testing.T) {
	assert.Equal(t, "now", FormatRelative(testNow.Add(20*time.Second), testNow))
	assert.Equal(t, "in 2h 15m", FormatRelative(testNow.Add(135*time.Minute), testNow))
	assert.Equal(t, "3d ago", FormatRelative(testNow.Add(-72*time.Hour), testNow))
}

func TestFormatWhen(t *testing.T) {
	assert.Equal(t, "Sat, Mar 14 2026 10:00", FormatWhen(testNow))
	assert.Equal(t, "", FormatWhen(time.Time{}))
	assert.Equal(t, "2026-03-14", FormatDay(testNow))
}

// =============================================================================
// CLI Tests
// =============================================================================

func TestCLIMessages(t *testing.T) {
	c, buf := newCLI(FormatCLI)

	c.Success("saved")
	c.Warning("careful")
	c.Error("failed")
	c.Muted("quiet")

	assert.Equal(t, "✓ saved\n⚠ careful\n✗ failed\nquiet\n", buf.String())
}

func TestPrintUpcoming(t *testing.T) {
	c, buf := newCLI(FormatCLI)
	ev := model.MaintenanceEvent{ID: "e1", ACRef: "u1", Tasks: []string{"Fan Check"}}
	entries := []model.CalendarEntry{{
		ID:          "e1",
		Title:       "Lobby",
		ScheduledAt: testNow.Add(2 * time.Hour),
		Window:      model.TimeWindow{Start: "12:00", End: "13:30"},
		Source:      ev,
	}}

	c.PrintUpcoming(entries, testNow)

	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "in 2h")
	assert.Contains(t, out, "12:00 PM - 1:30 PM")
	assert.Contains(t, out, "Fan Check")
}

func TestPrintUpcomingEmpty(t *testing.T) {
	c, buf := newCLI(FormatCLI)
	c.PrintUpcoming(nil, testNow)
	assert.Equal(t, "No upcoming maintenance.\n", buf.String())
}

func TestPrintEventsPlain(t *testing.T) {
	c, buf := newCLI(FormatPlain)
	c.PrintEvents([]model.MaintenanceEvent{
		{ID: "e1", ACRef: "u1", ScheduledAt: testNow, Status: true, Tasks: []string{"Fan Check"}},
		{ID: "e2", ACRef: "gone", ScheduledAt: testNow},
	}, units)

	assert.Equal(t,
		"e1\t2026-03-14\tLobby\tCompleted\tFan Check\n"+
			"e2\t2026-03-14\tgone\tPending\t-\n",
		buf.String())
}

func TestPrintTableAligns(t *testing.T) {
	c, buf := newCLI(FormatCLI)
	c.PrintTable([]string{"A", "B"}, []TableRow{
		{Columns: []string{"long value", "x"}},
		{Columns: []string{"s", "y"}},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "A           B", lines[0])
	assert.Equal(t, "long value  x", lines[2])
	assert.Equal(t, "s           y", lines[3])
}

func TestPrintEventDetail(t *testing.T) {
	c, buf := newCLI(FormatCLI)
	d := &model.EventDetail{
		Event: model.MaintenanceEvent{
			ID:          "e1",
			Title:       "Quarterly",
			ACRef:       "u1",
			ScheduledAt: testNow,
			Window:      model.TimeWindow{Start: "09:00", End: "17:00"},
			Tasks:       []string{"Fan Check"},
		},
		AC:        &units[0],
		Employees: []model.Employee{{FirstName: "Ana", LastName: "Cruz"}},
		History: []model.MaintenanceEvent{
			{ID: "h1", ScheduledAt: testNow.AddDate(0, -1, 0), Tasks: []string{"Coolant Refill"}, Summary: "topped up", Status: true},
		},
	}

	c.PrintEventDetail(d, units)

	out := buf.String()
	assert.Contains(t, out, "Quarterly")
	assert.Contains(t, out, "Lobby")
	assert.Contains(t, out, "Ground floor")
	assert.Contains(t, out, "9:00 AM - 5:00 PM")
	assert.Contains(t, out, "Ana Cruz")
	assert.Contains(t, out, "Pending")
	assert.Contains(t, out, "Recent history")
	assert.Contains(t, out, "topped up")
}

func TestPrintStats(t *testing.T) {
	c, buf := newCLI(FormatCLI)
	c.PrintStats([]model.EmployeeStats{{
		EmployeeID: "emp1",
		Name:       "Ana Cruz",
		TaskCounts: map[string]int{"Fan Check": 3, "Coolant Refill": 1},
	}})

	out := buf.String()
	assert.Contains(t, out, "Ana Cruz  4 tasks")
	assert.Less(t, strings.Index(out, "Fan Check"), strings.Index(out, "Coolant Refill"))
}

func TestPrintDashboard(t *testing.T) {
	c, buf := newCLI(FormatCLI)
	pending := model.MaintenanceEvent{ID: "e1", ACRef: "u1", ScheduledAt: testNow}
	done := model.MaintenanceEvent{ID: "e2", ACRef: "u1", ScheduledAt: testNow, Status: true}

	c.PrintDashboard(&model.Employee{FirstName: "Ana", LastName: "Cruz"},
		projection.Buckets{All: []model.MaintenanceEvent{pending, done}, Ongoing: []model.MaintenanceEvent{pending}, Completed: []model.MaintenanceEvent{done}},
		units, nil)

	out := buf.String()
	assert.Contains(t, out, "Dashboard for Ana Cruz")
	assert.Contains(t, out, "Assigned:   2")
	assert.Contains(t, out, "Ongoing:    1")
	assert.NotContains(t, out, "Task breakdown")
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░", ProgressBar(50, 10))
	assert.Equal(t, "░░░░░░░░░░", ProgressBar(-5, 10))
	assert.Equal(t, "██████████", ProgressBar(150, 10))
}

// =============================================================================
// JSON Tests
// =============================================================================

func TestNewEventOutput(t *testing.T) {
	ev := model.MaintenanceEvent{ID: "e1", ACRef: "u1", ScheduledAt: testNow}
	out := NewEventOutput(ev, units)

	assert.Equal(t, "Lobby", out.Unit)
	assert.Equal(t, "Pending", out.Status)
	assert.NotNil(t, out.Tasks)
	assert.NotNil(t, out.AssignedEmployees)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tasks":[]`)
	assert.Contains(t, string(data), `"time_start":""`)
}

func TestNewEventDetailResponse(t *testing.T) {
	d := &model.EventDetail{
		Event: model.MaintenanceEvent{ID: "e1", ACRef: "u1"},
		AC:    &model.ACUnit{ID: "u1", Code: "AC-101"},
	}
	resp := NewEventDetailResponse(d, nil)

	require.NotNil(t, resp.Unit)
	assert.Equal(t, "AC-101", resp.Event.Unit)
	assert.Empty(t, resp.Employees)
	assert.NotNil(t, resp.History)
}

func TestNewStatsResponse(t *testing.T) {
	resp := NewStatsResponse([]model.EmployeeStats{{EmployeeID: "e", TaskCounts: map[string]int{"Fan Check": 2}}})
	require.Len(t, resp.Employees, 1)
	assert.Equal(t, 2, resp.Employees[0].Total)
	assert.Equal(t, []model.TaskCount{{Task: "Fan Check", Count: 2}}, resp.Employees[0].Tasks)
}

func TestNewDashboardResponse(t *testing.T) {
	resp := NewDashboardResponse(nil, projection.Buckets{}, units, nil)
	assert.Nil(t, resp.User)
	assert.Equal(t, 0, resp.Assigned)
	assert.NotNil(t, resp.Ongoing)
}

func TestNewWebhookOutputMasksURL(t *testing.T) {
	w := model.NewWebhook("ops", model.WebhookTypeDiscord, "https://discord.com/api/webhooks/123456/abcdefghijklmnop")
	out := NewWebhookOutput(w)

	assert.True(t, strings.HasSuffix(out.URL, "***"))
	assert.Empty(t, out.LastUsed)
}

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// MaintenanceEvent Tests
// =============================================================================

func TestMaintenanceEventStatus(t *testing.T) {
	ev := &MaintenanceEvent{}
	assert.False(t, ev.IsCompleted())
	assert.Equal(t, "Pending", ev.StatusLabel())

	ev.Status = true
	assert.True(t, ev.IsCompleted())
	assert.Equal(t, "Completed", ev.StatusLabel())
}

func TestMaintenanceEventIsAssignedTo(t *testing.T) {
	ev := &MaintenanceEvent{AssignedEmployees: []string{"u1", "u2"}}

	assert.True(t, ev.IsAssignedTo("u2"))
	assert.False(t, ev.IsAssignedTo("u3"))
	assert.False(t, ev.IsAssignedTo(""))
}

func TestIsKnownTask(t *testing.T) {
	assert.Len(t, TaskTypes, 9)
	assert.True(t, IsKnownTask("Coolant Refill"))
	assert.False(t, IsKnownTask("coolant refill"))
	assert.False(t, IsKnownTask("Paint Job"))
}

func TestEventDetailEmployeeNames(t *testing.T) {
	d := &EventDetail{Employees: []Employee{
		{FirstName: "Ana", LastName: "Cruz"},
		{FirstName: "Ben"},
	}}
	assert.Equal(t, []string{"Ana Cruz", "Ben"}, d.EmployeeNames())
}

// =============================================================================
// ACUnit Tests
// =============================================================================

func TestFindUnit(t *testing.T) {
	units := []ACUnit{
		{ID: "65f0a1", Code: "AC-101", Name: "Lobby"},
		{ID: "65f0a2", Code: "AC-102", Name: "Server Room"},
	}

	assert.Equal(t, "Lobby", FindUnit(units, "65f0a1").Name)
	assert.Equal(t, "Server Room", FindUnit(units, "AC-102").Name)
	assert.Nil(t, FindUnit(units, "AC-999"))
	assert.Nil(t, FindUnit(units, ""))
}

func TestACUnitDisplayName(t *testing.T) {
	assert.Equal(t, "Lobby", (&ACUnit{Code: "AC-1", Name: "Lobby"}).DisplayName())
	assert.Equal(t, "AC-1", (&ACUnit{Code: "AC-1"}).DisplayName())
}

func TestACUnitNameContains(t *testing.T) {
	u := &ACUnit{Name: "Server Room"}
	assert.True(t, u.NameContains("server"))
	assert.True(t, u.NameContains(""))
	assert.False(t, u.NameContains("lobby"))
}

// =============================================================================
// Stats Tests
// =============================================================================

func TestEmployeeStatsBreakdown(t *testing.T) {
	s := &EmployeeStats{TaskCounts: map[string]int{
		"Fan Check":          2,
		"Coolant Refill":     5,
		"Filter Replacement": 2,
	}}

	assert.Equal(t, 9, s.Total())
	assert.Equal(t, []TaskCount{
		{Task: "Coolant Refill", Count: 5},
		{Task: "Fan Check", Count: 2},
		{Task: "Filter Replacement", Count: 2},
	}, s.Breakdown())
}

// =============================================================================
// Notification Tests
// =============================================================================

func TestNotificationFieldsKeepOrder(t *testing.T) {
	n := NewNotification(NotifyMaintenance, NotificationTitle, "")
	n.WithField("Title", "Quarterly").
		WithField("Date", "Sat, Mar 14 2026").
		WithField("Tasks", "No Tasks")

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, ColorWarning, n.Color)
	assert.Equal(t, "Title: Quarterly\nDate: Sat, Mar 14 2026\nTasks: No Tasks", n.Body())

	v, ok := n.Field("Date")
	assert.True(t, ok)
	assert.Equal(t, "Sat, Mar 14 2026", v)

	_, ok = n.Field("Missing")
	assert.False(t, ok)
}

func TestNotificationLabels(t *testing.T) {
	n := &Notification{Type: NotifyMaintenance}
	assert.Equal(t, "Maintenance Reminder", n.TypeLabel())
	assert.Equal(t, "wrench", n.Icon())

	n.Type = "other"
	assert.Equal(t, "Notification", n.TypeLabel())
	assert.Equal(t, ColorInfo, DefaultColorForType(n.Type))
}

// =============================================================================
// FiredRecord Tests
// =============================================================================

func TestNewFiredRecord(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	r := NewFiredRecord("ev1", at)

	assert.Equal(t, "notifiedEvent_ev1", r.GetKey())
	assert.Equal(t, "ev1", r.EventID)
	assert.Equal(t, at, r.FiredAt)
}

// =============================================================================
// Webhook Tests
// =============================================================================

func TestWebhookHelpers(t *testing.T) {
	wh := NewWebhook("ops", WebhookTypeSlack, "https://hooks.slack.com/services/T000/B000/XXXXXXXXXXXXXXXX")

	assert.Equal(t, "webhook:ops", wh.GetKey())
	assert.True(t, wh.Enabled)
	assert.Contains(t, wh.MaskedURL(), "***")
	assert.True(t, IsValidWebhookName("ops-alerts_1"))
	assert.False(t, IsValidWebhookName("-bad"))
	assert.True(t, IsValidWebhookType(WebhookTypeTeams))
	assert.False(t, IsValidWebhookType("email"))
	assert.Equal(t, WebhookTypeDiscord, DetectWebhookType("https://discord.com/api/webhooks/1/abc"))
	assert.Equal(t, WebhookTypeGeneric, DetectWebhookType("https://example.com/hook"))
}

func TestWebhookMaskedURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://hooks.slack.com/services/T000/B000/XXXX", "https://hooks.slack.com/***"},
		{"https://example.com", "https://example.com"},
		{"not a url at all", "not a url at***"},
		{"short", "***"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, (&Webhook{URL: tt.url}).MaskedURL())
		})
	}
}

func TestWebhookRecordDelivery(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	wh := NewWebhook("ops", WebhookTypeGeneric, "https://example.com/hook")

	wh.RecordDelivery("evt-1", at, assert.AnError)
	assert.True(t, wh.Failing())
	assert.Equal(t, "evt-1", wh.LastEventID)
	assert.Equal(t, 1, wh.Failed)

	wh.RecordDelivery("", at.Add(time.Minute), nil)
	assert.False(t, wh.Failing())
	assert.Equal(t, "evt-1", wh.LastEventID, "test sends keep the last event")
	assert.Equal(t, 1, wh.Delivered)
	assert.Equal(t, at.Add(time.Minute), wh.LastUsed)

	wh.RecordDelivery("evt-2", at.Add(time.Hour), nil)
	assert.Equal(t, "evt-2", wh.LastEventID)
	assert.Equal(t, 2, wh.Delivered)
	assert.Equal(t, 1, wh.Failed)
}

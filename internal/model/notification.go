package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NotificationType defines the type of notification.
type NotificationType string

// Notification types.
const (
	NotifyMaintenance NotificationType = "maintenance"
	NotifyTest        NotificationType = "test"
)

// NotificationTitle is the heading of every maintenance notification.
const NotificationTitle = "Upcoming Maintenance"

// Field is a labelled line of a notification body.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Notification represents a notification to be raised.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	EventID   string           `json:"event_id,omitempty"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Fields    []Field          `json:"fields,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Color     int              `json:"color,omitempty"` // Hex color for embeds
}

// NewNotification creates a new notification.
func NewNotification(t NotificationType, title, message string) *Notification {
	return &Notification{
		ID:        uuid.NewString(),
		Type:      t,
		Title:     title,
		Message:   message,
		Timestamp: time.Now(),
		Color:     DefaultColorForType(t),
	}
}

// WithField appends a field. Fields keep insertion order.
func (n *Notification) WithField(name, value string) *Notification {
	n.Fields = append(n.Fields, Field{Name: name, Value: value})
	return n
}

// WithColor sets the embed color.
func (n *Notification) WithColor(color int) *Notification {
	n.Color = color
	return n
}

// Field returns the value of the named field and whether it was present.
func (n *Notification) Field(name string) (string, bool) {
	for _, f := range n.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Body renders the fields as "Name: Value" lines.
func (n *Notification) Body() string {
	lines := make([]string, 0, len(n.Fields))
	for _, f := range n.Fields {
		lines = append(lines, f.Name+": "+f.Value)
	}
	return strings.Join(lines, "\n")
}

// Notification colors (Discord-compatible hex values).
const (
	ColorWarning = 0xFEE75C // Yellow
	ColorInfo    = 0x5865F2 // Blurple
	ColorPrimary = 0x3498DB // Blue
)

// DefaultColorForType returns the default color for a notification type.
func DefaultColorForType(t NotificationType) int {
	switch t {
	case NotifyMaintenance:
		return ColorWarning
	case NotifyTest:
		return ColorPrimary
	default:
		return ColorInfo
	}
}

// Icon returns an emoji shortcode for the notification type.
func (n *Notification) Icon() string {
	switch n.Type {
	case NotifyMaintenance:
		return "wrench"
	case NotifyTest:
		return "test_tube"
	default:
		return "bell"
	}
}

// TypeLabel returns a human-readable label for the notification type.
func (n *Notification) TypeLabel() string {
	switch n.Type {
	case NotifyMaintenance:
		return "Maintenance Reminder"
	case NotifyTest:
		return "Test Notification"
	default:
		return "Notification"
	}
}

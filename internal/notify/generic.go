package notify

import (
	"encoding/json"

	"github.com/manav03panchal/aircare/internal/model"
)

// GenericFormatter posts the notification as plain JSON.
type GenericFormatter struct{}

type genericPayload struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	EventID   string        `json:"event_id,omitempty"`
	Title     string        `json:"title"`
	Message   string        `json:"message,omitempty"`
	Body      string        `json:"body"`
	Fields    []model.Field `json:"fields,omitempty"`
	Timestamp string        `json:"timestamp"`
	Color     int           `json:"color,omitempty"`
}

// Format converts a notification to the generic payload. Body carries the
// fields pre-rendered as "Name: Value" lines.
func (f *GenericFormatter) Format(n *model.Notification) ([]byte, error) {
	return json.Marshal(genericPayload{
		ID:        n.ID,
		Type:      string(n.Type),
		EventID:   n.EventID,
		Title:     n.Title,
		Message:   n.Message,
		Body:      n.Body(),
		Fields:    n.Fields,
		Timestamp: n.Timestamp.UTC().Format(timestampLayout),
		Color:     colorOf(n),
	})
}

// ContentType returns the content type for generic webhooks.
func (f *GenericFormatter) ContentType() string {
	return "application/json"
}

// Package notify raises maintenance notifications on the terminal and fans
// them out to the configured webhooks.
package notify

import (
	"github.com/manav03panchal/aircare/internal/model"
)

// Footer is the product name shown under webhook messages.
const Footer = "aircare"

// timestampLayout is used for machine-readable webhook timestamps.
const timestampLayout = "2006-01-02T15:04:05Z07:00"

// Formatter formats notifications for a specific webhook type.
type Formatter interface {
	// Format converts a notification into the webhook-specific payload.
	Format(n *model.Notification) ([]byte, error)

	// ContentType returns the HTTP Content-Type for the payload.
	ContentType() string
}

// GetFormatter returns the appropriate formatter for a webhook type.
func GetFormatter(webhookType string) Formatter {
	switch webhookType {
	case model.WebhookTypeDiscord:
		return &DiscordFormatter{}
	case model.WebhookTypeSlack:
		return &SlackFormatter{}
	case model.WebhookTypeTeams:
		return &TeamsFormatter{}
	default:
		return &GenericFormatter{}
	}
}

func colorOf(n *model.Notification) int {
	if n.Color != 0 {
		return n.Color
	}
	return model.DefaultColorForType(n.Type)
}

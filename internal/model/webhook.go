package model

import (
	"net/url"
	"regexp"
	"strings"
	"time"
)

// PrefixWebhook is the database key prefix for webhooks.
const PrefixWebhook = "webhook"

// Webhook types. The type picks the payload formatter.
const (
	WebhookTypeDiscord = "discord"
	WebhookTypeSlack   = "slack"
	WebhookTypeTeams   = "teams"
	WebhookTypeGeneric = "generic"
)

// webhookHosts maps URL fragments to the chat service that issues them.
var webhookHosts = []struct {
	fragment string
	kind     string
}{
	{"discord.com/api/webhooks", WebhookTypeDiscord},
	{"hooks.slack.com", WebhookTypeSlack},
	{"outlook.office.com/webhook", WebhookTypeTeams},
	{"webhook.office.com", WebhookTypeTeams},
}

var webhookNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]{0,49}$`)

// Webhook is a chat or HTTP endpoint that receives maintenance notifications
// alongside the terminal. It remembers the last event it was sent, so a
// technician can tell whether the latest due visit reached the channel.
type Webhook struct {
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	URL       string    `json:"url"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`

	LastUsed    time.Time `json:"last_used,omitempty"`
	LastEventID string    `json:"last_event_id,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	Delivered   int       `json:"delivered"`
	Failed      int       `json:"failed"`
}

// SetKey sets the database key for this webhook.
func (w *Webhook) SetKey(key string) {
	w.Key = key
}

// GetKey returns the database key for this webhook.
func (w *Webhook) GetKey() string {
	return w.Key
}

// RecordDelivery notes one delivery attempt. Test sends carry no event id
// and leave LastEventID as it was.
func (w *Webhook) RecordDelivery(eventID string, at time.Time, err error) {
	w.LastUsed = at
	if eventID != "" {
		w.LastEventID = eventID
	}
	if err != nil {
		w.Failed++
		w.LastError = err.Error()
		return
	}
	w.Delivered++
	w.LastError = ""
}

// Failing reports whether the most recent delivery failed.
func (w *Webhook) Failing() bool {
	return w.LastError != ""
}

// MaskedURL keeps the scheme and host and hides the path, which carries the
// channel token for every supported service.
func (w *Webhook) MaskedURL() string {
	u, err := url.Parse(w.URL)
	if err != nil || u.Host == "" {
		if len(w.URL) > 12 {
			return w.URL[:12] + "***"
		}
		return "***"
	}
	if u.Path == "" || u.Path == "/" {
		return u.Scheme + "://" + u.Host
	}
	return u.Scheme + "://" + u.Host + "/***"
}

// WebhookKey returns the database key for the named webhook.
func WebhookKey(name string) string {
	return PrefixWebhook + ":" + name
}

// NewWebhook creates an enabled webhook.
func NewWebhook(name, kind, rawURL string) *Webhook {
	return &Webhook{
		Key:       WebhookKey(name),
		Name:      name,
		Type:      kind,
		URL:       rawURL,
		Enabled:   true,
		CreatedAt: time.Now(),
	}
}

// IsValidWebhookType reports whether kind has a payload formatter.
func IsValidWebhookType(kind string) bool {
	switch kind {
	case WebhookTypeDiscord, WebhookTypeSlack, WebhookTypeTeams, WebhookTypeGeneric:
		return true
	}
	return false
}

// IsValidWebhookName accepts up to 50 letters, digits, dashes and
// underscores, starting with a letter or digit.
func IsValidWebhookName(name string) bool {
	return webhookNamePattern.MatchString(name)
}

// DetectWebhookType guesses the service from the URL, falling back to
// generic JSON.
func DetectWebhookType(rawURL string) string {
	lower := strings.ToLower(rawURL)
	for _, h := range webhookHosts {
		if strings.Contains(lower, h.fragment) {
			return h.kind
		}
	}
	return WebhookTypeGeneric
}

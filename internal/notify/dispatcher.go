package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/manav03panchal/aircare/internal/errors"
	"github.com/manav03panchal/aircare/internal/logging"
	"github.com/manav03panchal/aircare/internal/model"
	"github.com/manav03panchal/aircare/internal/storage"
)

// Dispatcher sends notifications to all enabled webhooks.
type Dispatcher struct {
	webhookRepo *storage.WebhookRepo
	httpClient  *HTTPClient
}

// NewDispatcher creates a new notification dispatcher.
func NewDispatcher(webhookRepo *storage.WebhookRepo) *Dispatcher {
	return &Dispatcher{
		webhookRepo: webhookRepo,
		httpClient:  NewHTTPClient(),
	}
}

// WithHTTPClient replaces the HTTP client.
func (d *Dispatcher) WithHTTPClient(c *HTTPClient) *Dispatcher {
	d.httpClient = c
	return d
}

// DispatchResult contains the result of dispatching to a single webhook.
type DispatchResult struct {
	WebhookName string
	Success     bool
	StatusCode  int
	Duration    time.Duration
	Error       error
}

// SendNotification sends a notification to all enabled webhooks concurrently.
func (d *Dispatcher) SendNotification(ctx context.Context, n *model.Notification) []DispatchResult {
	webhooks, err := d.webhookRepo.ListEnabled()
	if err != nil {
		return []DispatchResult{{
			WebhookName: "all",
			Error:       fmt.Errorf("failed to list webhooks: %w", err),
		}}
	}

	if len(webhooks) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	results := make([]DispatchResult, len(webhooks))

	for i, webhook := range webhooks {
		wg.Add(1)
		go func(idx int, wh *model.Webhook) {
			defer wg.Done()
			results[idx] = d.sendToWebhook(ctx, n, wh)
		}(i, webhook)
	}

	wg.Wait()
	return results
}

// Notify sends to every enabled webhook and returns the failures joined.
func (d *Dispatcher) Notify(ctx context.Context, n *model.Notification) error {
	var errs []error
	for _, r := range d.SendNotification(ctx, n) {
		if r.Error != nil {
			logging.WarnContext(ctx, "webhook delivery failed",
				logging.KeyWebhook, r.WebhookName,
				logging.KeyStatus, r.StatusCode,
				logging.KeyError, r.Error)
			errs = append(errs, fmt.Errorf("webhook %s: %w", r.WebhookName, r.Error))
			continue
		}
		logging.DebugContext(ctx, "webhook delivered",
			logging.KeyWebhook, r.WebhookName,
			logging.KeyDuration, r.Duration.Milliseconds())
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) sendToWebhook(ctx context.Context, n *model.Notification, webhook *model.Webhook) DispatchResult {
	result := DispatchResult{WebhookName: webhook.Name}

	formatter := GetFormatter(webhook.Type)
	payload, err := formatter.Format(n)
	if err != nil {
		result.Error = fmt.Errorf("failed to format notification: %w", err)
		d.recordDelivery(webhook.Name, n.EventID, result.Error)
		return result
	}

	sendResult := d.httpClient.Send(ctx, webhook.URL, formatter.ContentType(), payload)

	result.StatusCode = sendResult.StatusCode
	result.Duration = sendResult.Duration
	result.Error = sendResult.Error
	result.Success = sendResult.Error == nil

	d.recordDelivery(webhook.Name, n.EventID, sendResult.Error)
	return result
}

// recordDelivery adds the attempt to the webhook's record. Failures here are
// not reported; the delivery result already is.
func (d *Dispatcher) recordDelivery(name, eventID string, err error) {
	_ = d.webhookRepo.RecordDelivery(name, eventID, time.Now(), err)
}

// SendToSingle sends a notification to a single webhook by name, enabled
// or not.
func (d *Dispatcher) SendToSingle(ctx context.Context, n *model.Notification, webhookName string) DispatchResult {
	webhook, err := d.webhookRepo.Get(webhookName)
	if err != nil {
		return DispatchResult{WebhookName: webhookName, Error: err}
	}

	return d.sendToWebhook(ctx, n, webhook)
}

// TestWebhook sends a sample maintenance reminder to one webhook.
func (d *Dispatcher) TestWebhook(ctx context.Context, webhookName string) DispatchResult {
	n := model.NewNotification(model.NotifyTest, "aircare test",
		"This is a test notification from aircare. If you see this, your webhook is configured correctly.").
		WithField("Webhook", webhookName).
		WithField("Time", time.Now().Format("3:04 PM"))

	return d.SendToSingle(ctx, n, webhookName)
}

// CountEnabledWebhooks returns the number of enabled webhooks.
func (d *Dispatcher) CountEnabledWebhooks() int {
	webhooks, err := d.webhookRepo.ListEnabled()
	if err != nil {
		return 0
	}
	return len(webhooks)
}

package storage

import (
	"fmt"
	"time"

	"github.com/manav03panchal/aircare/internal/errors"
	"github.com/manav03panchal/aircare/internal/model"
)

// WebhookRepo stores the webhook sinks maintenance notifications fan out to,
// with each sink's delivery record.
type WebhookRepo struct {
	db *DB
}

// NewWebhookRepo creates a webhook repository.
func NewWebhookRepo(db *DB) *WebhookRepo {
	return &WebhookRepo{db: db}
}

// Create stores a new webhook. A name already in use is ErrWebhookExists.
func (r *WebhookRepo) Create(wh *model.Webhook) error {
	wh.Key = model.WebhookKey(wh.Name)
	if wh.CreatedAt.IsZero() {
		wh.CreatedAt = time.Now()
	}
	stored, err := r.db.SetIfAbsent(wh)
	if err != nil {
		return err
	}
	if !stored {
		return fmt.Errorf("%w: %s", errors.ErrWebhookExists, wh.Name)
	}
	return nil
}

// Get returns the named webhook, or ErrWebhookNotFound.
func (r *WebhookRepo) Get(name string) (*model.Webhook, error) {
	wh := &model.Webhook{}
	if err := r.db.Get(model.WebhookKey(name), wh); err != nil {
		if IsErrKeyNotFound(err) {
			return nil, fmt.Errorf("%w: %s", errors.ErrWebhookNotFound, name)
		}
		return nil, err
	}
	return wh, nil
}

// List returns every webhook ordered by key.
func (r *WebhookRepo) List() ([]*model.Webhook, error) {
	return GetAllByPrefix(r.db, model.PrefixWebhook+":", func() *model.Webhook {
		return &model.Webhook{}
	})
}

// ListEnabled returns the webhooks a raised notification is sent to.
func (r *WebhookRepo) ListEnabled() ([]*model.Webhook, error) {
	all, err := r.List()
	if err != nil {
		return nil, err
	}
	enabled := all[:0]
	for _, wh := range all {
		if wh.Enabled {
			enabled = append(enabled, wh)
		}
	}
	return enabled, nil
}

// Delete removes the named webhook.
func (r *WebhookRepo) Delete(name string) error {
	return r.db.Delete(model.WebhookKey(name))
}

// Exists reports whether a webhook with the name is stored.
func (r *WebhookRepo) Exists(name string) (bool, error) {
	return r.db.Exists(model.WebhookKey(name))
}

// SetEnabled turns a webhook on or off.
func (r *WebhookRepo) SetEnabled(name string, enabled bool) error {
	return r.modify(name, func(wh *model.Webhook) { wh.Enabled = enabled })
}

// RecordDelivery adds one delivery attempt of eventID to the webhook's
// record. eventID is empty for test sends.
func (r *WebhookRepo) RecordDelivery(name, eventID string, at time.Time, lastErr error) error {
	return r.modify(name, func(wh *model.Webhook) { wh.RecordDelivery(eventID, at, lastErr) })
}

func (r *WebhookRepo) modify(name string, fn func(*model.Webhook)) error {
	wh, err := r.Get(name)
	if err != nil {
		return err
	}
	fn(wh)
	return r.db.Set(wh)
}

package storage

import (
	"time"

	"github.com/manav03panchal/aircare/internal/model"
)

// NotifiedRepo holds the durable per-event "notification raised" flags.
// Flags are never removed, so an event id notifies at most once.
type NotifiedRepo struct {
	db *DB
}

// NewNotifiedRepo creates a new notified-flag repository.
func NewNotifiedRepo(db *DB) *NotifiedRepo {
	return &NotifiedRepo{db: db}
}

// IsNotified reports whether the event's flag is set.
func (r *NotifiedRepo) IsNotified(eventID string) (bool, error) {
	return r.db.Exists(model.GenerateNotifiedKey(eventID))
}

// MarkNotified sets the flag. It returns false if the flag was already set.
func (r *NotifiedRepo) MarkNotified(eventID string, at time.Time) (bool, error) {
	return r.db.SetIfAbsent(model.NewFiredRecord(eventID, at))
}

// Get returns the fired record for an event.
func (r *NotifiedRepo) Get(eventID string) (*model.FiredRecord, error) {
	rec := &model.FiredRecord{}
	if err := r.db.Get(model.GenerateNotifiedKey(eventID), rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns every fired record.
func (r *NotifiedRepo) List() ([]*model.FiredRecord, error) {
	return GetAllByPrefix(r.db, model.PrefixNotified, func() *model.FiredRecord {
		return &model.FiredRecord{}
	})
}

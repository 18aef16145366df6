package model

import "time"

// FiredRecord marks an event whose notification has been raised. Its presence
// is the durable "already notified" flag.
type FiredRecord struct {
	Key     string    `json:"key"`
	EventID string    `json:"event_id"`
	FiredAt time.Time `json:"fired_at"`
}

// SetKey sets the database key for this record.
func (f *FiredRecord) SetKey(key string) {
	f.Key = key
}

// GetKey returns the database key for this record.
func (f *FiredRecord) GetKey() string {
	return f.Key
}

// GenerateNotifiedKey returns the durable flag key for an event.
func GenerateNotifiedKey(eventID string) string {
	return PrefixNotified + eventID
}

// NewFiredRecord creates a record for an event fired at t.
func NewFiredRecord(eventID string, t time.Time) *FiredRecord {
	return &FiredRecord{
		Key:     GenerateNotifiedKey(eventID),
		EventID: eventID,
		FiredAt: t,
	}
}

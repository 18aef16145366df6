package storage

import (
	"github.com/manav03panchal/aircare/internal/model"
)

// HandoffRepo stores the id of the event whose notification was acknowledged,
// for the detail view to open on its next load.
type HandoffRepo struct {
	db *DB
}

// NewHandoffRepo creates a new hand-off repository.
func NewHandoffRepo(db *DB) *HandoffRepo {
	return &HandoffRepo{db: db}
}

// Set records the event to show.
func (r *HandoffRepo) Set(eventID string) error {
	return r.db.SetBytes(model.KeyEventToShow, []byte(eventID))
}

// Peek returns the pending event id without consuming it.
func (r *HandoffRepo) Peek() (string, bool, error) {
	data, err := r.db.GetBytes(model.KeyEventToShow)
	if err != nil {
		if IsErrKeyNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), len(data) > 0, nil
}

// Take returns the pending event id and clears it.
func (r *HandoffRepo) Take() (string, bool, error) {
	data, err := r.db.TakeBytes(model.KeyEventToShow)
	if err != nil {
		if IsErrKeyNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), len(data) > 0, nil
}

package storage

import (
	"encoding/json"

	"github.com/manav03panchal/aircare/internal/model"
)

// SessionRepo persists the signed-in user's token, id and profile under the
// same three keys the web client used.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Load returns the stored session. A missing session is not an error; the
// returned session simply has no token.
func (r *SessionRepo) Load() (model.Session, error) {
	var s model.Session

	token, err := r.db.GetBytes(model.KeyToken)
	if err != nil && !IsErrKeyNotFound(err) {
		return s, err
	}
	s.Token = string(token)

	userID, err := r.db.GetBytes(model.KeyUserID)
	if err != nil && !IsErrKeyNotFound(err) {
		return s, err
	}
	s.UserID = string(userID)

	raw, err := r.db.GetBytes(model.KeyUser)
	if err != nil && !IsErrKeyNotFound(err) {
		return s, err
	}
	if len(raw) > 0 {
		var user model.Employee
		if err := json.Unmarshal(raw, &user); err == nil {
			s.User = &user
		}
	}

	return s, nil
}

// Save stores every part of the session. Empty parts are removed.
func (r *SessionRepo) Save(s model.Session) error {
	if err := r.setOrDelete(model.KeyToken, []byte(s.Token)); err != nil {
		return err
	}
	if err := r.setOrDelete(model.KeyUserID, []byte(s.UserID)); err != nil {
		return err
	}

	var user []byte
	if s.User != nil {
		data, err := json.Marshal(s.User)
		if err != nil {
			return err
		}
		user = data
	}
	return r.setOrDelete(model.KeyUser, user)
}

// Clear removes the session keys.
func (r *SessionRepo) Clear() error {
	for _, key := range []string{model.KeyToken, model.KeyUserID, model.KeyUser} {
		if err := r.db.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func (r *SessionRepo) setOrDelete(key string, value []byte) error {
	if len(value) == 0 {
		return r.db.Delete(key)
	}
	return r.db.SetBytes(key, value)
}

// Package session holds the signed-in user for the lifetime of the process
// and persists it so the next run starts signed in.
package session

import (
	"context"
	"sync"

	"github.com/manav03panchal/aircare/internal/errors"
	"github.com/manav03panchal/aircare/internal/logging"
	"github.com/manav03panchal/aircare/internal/model"
	"github.com/manav03panchal/aircare/internal/storage"
)

// Authenticator is the part of the gateway used to sign in.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (model.Credentials, error)
	GetUser(ctx context.Context, id string) (*model.Employee, error)
}

// Manager is the process-wide session context. It is constructed once and
// passed to whatever needs the current credential.
type Manager struct {
	mu      sync.RWMutex
	current model.Session
	repo    *storage.SessionRepo
}

// NewManager loads the stored session, if any.
func NewManager(repo *storage.SessionRepo) (*Manager, error) {
	s, err := repo.Load()
	if err != nil {
		return nil, errors.NewSystemErrorWithOp("load session", "failed to read stored session", err)
	}
	return &Manager{current: s, repo: repo}, nil
}

// Get returns a copy of the current session.
func (m *Manager) Get() model.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Token returns the current credential, or "" when signed out. It has the
// shape of a gateway token source.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Token
}

// UserID returns the signed-in employee id.
func (m *Manager) UserID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.UserID
}

// Set replaces the session and persists it.
func (m *Manager) Set(s model.Session) error {
	if err := m.repo.Save(s); err != nil {
		return errors.NewSystemErrorWithOp("save session", "failed to store session", err)
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	return nil
}

// Clear signs out and removes the stored session.
func (m *Manager) Clear() error {
	if err := m.repo.Clear(); err != nil {
		return errors.NewSystemErrorWithOp("clear session", "failed to remove stored session", err)
	}

	m.mu.Lock()
	m.current = model.Session{}
	m.mu.Unlock()
	return nil
}

// RequireLogin returns ErrNotLoggedIn when no credential is held.
func (m *Manager) RequireLogin() error {
	if m.Token() == "" {
		return errors.ErrNotLoggedIn
	}
	return nil
}

// Login signs in through auth, fetches the user's profile and stores all of
// it. A failed profile fetch still leaves the user signed in.
func (m *Manager) Login(ctx context.Context, auth Authenticator, username, password string) (model.Session, error) {
	creds, err := auth.Login(ctx, username, password)
	if err != nil {
		return model.Session{}, err
	}

	s := model.Session{Token: creds.Token, UserID: creds.UserID}

	// The profile request needs the new token.
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	if creds.UserID != "" {
		user, err := auth.GetUser(ctx, creds.UserID)
		if err != nil {
			logging.WarnContext(ctx, "could not fetch user profile",
				logging.KeyUserID, creds.UserID,
				logging.KeyError, err)
		} else {
			s.User = user
		}
	}

	if err := m.Set(s); err != nil {
		return model.Session{}, err
	}

	logging.InfoContext(ctx, "signed in",
		logging.KeyUserID, creds.UserID,
		"token", logging.MaskToken(creds.Token))
	return s, nil
}

package session

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/manav03panchal/aircare/internal/errors"
	"github.com/manav03panchal/aircare/internal/gateway"
	"github.com/manav03panchal/aircare/internal/gateway/gatewaytest"
	"github.com/manav03panchal/aircare/internal/model"
	"github.com/manav03panchal/aircare/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *storage.DB {
	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func staticToken(tok string) func() string {
	return func() string { return tok }
}

func TestHasRole(t *testing.T) {
	unsigned := "eyJhbGciOiJub25lIn0." +
		base64.RawURLEncoding.EncodeToString([]byte(`{"role":"admin"}`)) + "."

	tests := []struct {
		name     string
		token    string
		required string
		want     bool
	}{
		{"no credential", "", model.RoleAdmin, false},
		{"garbage", "not-a-token", model.RoleAdmin, false},
		{"bad base64", "a.%%%.c", model.RoleAdmin, false},
		{"staff token", gatewaytest.SignToken("u1", model.RoleStaff), model.RoleAdmin, false},
		{"admin token", gatewaytest.SignToken("u1", model.RoleAdmin), model.RoleAdmin, true},
		{"staff asks staff", gatewaytest.SignToken("u1", model.RoleStaff), model.RoleStaff, true},
		{"no role claim", gatewaytest.SignToken("u1", ""), model.RoleAdmin, false},
		{"empty required", gatewaytest.SignToken("u1", model.RoleAdmin), "", false},
		{"unsigned token", unsigned, model.RoleAdmin, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewRoleGate(staticToken(tt.token))
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.want, gate.HasRole(tt.required))
			})
		})
	}
}

func TestRoleGateNilSource(t *testing.T) {
	gate := NewRoleGate(nil)
	assert.False(t, gate.HasRole(model.RoleAdmin))
	assert.ErrorIs(t, gate.Require(model.RoleAdmin), errors.ErrForbidden)
}

func TestRoleGateFollowsCredentialChange(t *testing.T) {
	tok := gatewaytest.SignToken("u1", model.RoleStaff)
	gate := NewRoleGate(func() string { return tok })

	assert.False(t, gate.HasRole(model.RoleAdmin))

	tok = gatewaytest.SignToken("u1", model.RoleAdmin)
	assert.True(t, gate.HasRole(model.RoleAdmin))
	assert.NoError(t, gate.Require(model.RoleAdmin))

	tok = ""
	assert.False(t, gate.HasRole(model.RoleAdmin))
	assert.Equal(t, "", gate.Role())
}

func TestManagerSetGetClear(t *testing.T) {
	db := setupTestDB(t)

	m, err := NewManager(storage.NewSessionRepo(db))
	require.NoError(t, err)
	assert.False(t, m.Get().IsLoggedIn())
	assert.ErrorIs(t, m.RequireLogin(), errors.ErrNotLoggedIn)

	s := model.Session{Token: "tok", UserID: "u1", User: &model.Employee{ID: "u1", Username: "ana"}}
	require.NoError(t, m.Set(s))
	assert.Equal(t, "tok", m.Token())
	assert.Equal(t, "u1", m.UserID())
	assert.NoError(t, m.RequireLogin())

	// A second manager over the same store sees the session.
	again, err := NewManager(storage.NewSessionRepo(db))
	require.NoError(t, err)
	got := again.Get()
	assert.Equal(t, "tok", got.Token)
	require.NotNil(t, got.User)
	assert.Equal(t, "ana", got.User.Username)

	require.NoError(t, m.Clear())
	assert.False(t, m.Get().IsLoggedIn())

	cleared, err := NewManager(storage.NewSessionRepo(db))
	require.NoError(t, err)
	assert.False(t, cleared.Get().IsLoggedIn())
}

func TestManagerLogin(t *testing.T) {
	db := setupTestDB(t)
	srv := gatewaytest.NewServer(t)
	admin := srv.AddUser(model.Employee{Username: "root", FirstName: "Ro", Role: model.RoleAdmin}, "secret")

	m, err := NewManager(storage.NewSessionRepo(db))
	require.NoError(t, err)
	client := gateway.New(gateway.Options{BaseURL: srv.URL, Token: m.Token})
	gate := NewRoleGate(m.Token)

	s, err := m.Login(context.Background(), client, "root", "secret")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, s.UserID)
	require.NotNil(t, s.User)
	assert.Equal(t, "Ro", s.User.FirstName)
	assert.True(t, gate.HasRole(model.RoleAdmin))

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "Bearer "+s.Token, reqs[1].Authorization)
}

func TestManagerLoginFailure(t *testing.T) {
	db := setupTestDB(t)
	srv := gatewaytest.NewServer(t)

	m, err := NewManager(storage.NewSessionRepo(db))
	require.NoError(t, err)
	client := gateway.New(gateway.Options{BaseURL: srv.URL, Token: m.Token})

	_, err = m.Login(context.Background(), client, "nobody", "pw")
	require.Error(t, err)
	assert.False(t, m.Get().IsLoggedIn())
}

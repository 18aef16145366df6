package session

import (
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"github.com/manav03panchal/aircare/internal/errors"
)

// RoleClaim is the token claim that carries the user's role.
const RoleClaim = "role"

// RoleGate decides which privileged actions the client offers. It reads the
// role claim without verifying the token signature, so it is a display
// convenience only; the server enforces roles on every mutating endpoint.
type RoleGate struct {
	token func() string

	mu        sync.Mutex
	cachedFor string
	role      string
	decoded   bool
}

// NewRoleGate creates a gate over the given credential source.
func NewRoleGate(token func() string) *RoleGate {
	return &RoleGate{token: token}
}

// Role returns the decoded role, or "" when there is none.
func (g *RoleGate) Role() string {
	tok := ""
	if g.token != nil {
		tok = g.token()
	}
	if tok == "" {
		return ""
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.decoded || g.cachedFor != tok {
		g.role = decodeRole(tok)
		g.cachedFor = tok
		g.decoded = true
	}
	return g.role
}

// HasRole reports whether the current credential carries required. It is
// false with no credential, an undecodable one, or a different role.
func (g *RoleGate) HasRole(required string) bool {
	if required == "" {
		return false
	}
	return g.Role() == required
}

// Require returns ErrForbidden unless HasRole(required).
func (g *RoleGate) Require(required string) error {
	if !g.HasRole(required) {
		return errors.ErrForbidden
	}
	return nil
}

func decodeRole(tok string) (role string) {
	defer func() {
		if recover() != nil {
			role = ""
		}
	}()

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return ""
	}
	r, _ := claims[RoleClaim].(string)
	return r
}

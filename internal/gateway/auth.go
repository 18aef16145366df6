package gateway

import (
	"context"
	"net/http"

	"github.com/manav03panchal/aircare/internal/errors"
	"github.com/manav03panchal/aircare/internal/model"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges a username and password for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (model.Credentials, error) {
	var creds model.Credentials

	path := c.routes.Login
	body, err := c.do(ctx, http.MethodPost, path, loginRequest{Username: username, Password: password})
	if err != nil {
		return creds, err
	}

	if err := decodeInto(http.MethodPost, path, body, &creds); err != nil {
		return creds, err
	}
	if creds.Token == "" {
		return creds, &errors.GatewayError{Method: http.MethodPost, Endpoint: path, Status: http.StatusOK, Message: "response has no token"}
	}
	return creds, nil
}

// EmployeeStatistics fetches per-employee task counts. The endpoint requires
// a bearer token.
func (c *Client) EmployeeStatistics(ctx context.Context) ([]model.EmployeeStats, error) {
	if c.token() == "" {
		return nil, errors.ErrNotLoggedIn
	}

	path := c.routes.Statistics
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	stats := []model.EmployeeStats{}
	if err := decodeInto(http.MethodGet, path, body, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

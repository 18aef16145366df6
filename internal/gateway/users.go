package gateway

import (
	"context"
	"net/http"

	"github.com/manav03panchal/aircare/internal/errors"
	"github.com/manav03panchal/aircare/internal/model"
)

const resourceUser = "user"

// ListUsers fetches every account.
func (c *Client) ListUsers(ctx context.Context) ([]model.Employee, error) {
	path := c.routes.Users
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	users := []model.Employee{}
	if err := decodeInto(http.MethodGet, path, body, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches one account.
func (c *Client) GetUser(ctx context.Context, id string) (*model.Employee, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}

	path := resourcePath(c.routes.Users, id)
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, errors.NewNotFoundError(resourceUser, id)
		}
		return nil, err
	}

	var user model.Employee
	if err := decodeInto(http.MethodGet, path, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser replaces an account's profile fields.
func (c *Client) UpdateUser(ctx context.Context, user model.Employee) (*model.Employee, error) {
	if err := requireID("id", user.ID); err != nil {
		return nil, err
	}

	path := resourcePath(c.routes.Users, user.ID)
	body, err := c.do(ctx, http.MethodPut, path, user)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, errors.NewNotFoundError(resourceUser, user.ID)
		}
		return nil, err
	}

	var updated model.Employee
	if err := decode(body, &updated); err != nil || updated.ID == "" {
		return &user, nil
	}
	return &updated, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	if err := requireID("id", id); err != nil {
		return err
	}

	_, err := c.do(ctx, http.MethodDelete, resourcePath(c.routes.Users, id), nil)
	if isStatus(err, http.StatusNotFound) {
		return errors.NewNotFoundError(resourceUser, id)
	}
	return err
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, reg model.Registration) (*model.Employee, error) {
	path := c.routes.Users
	body, err := c.do(ctx, http.MethodPost, path, reg)
	if err != nil {
		return nil, err
	}

	var created model.Employee
	if err := decode(body, &created); err != nil || created.ID == "" {
		created = reg.Employee
	}
	return &created, nil
}

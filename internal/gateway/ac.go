package gateway

import (
	"context"
	"net/http"

	"github.com/manav03panchal/aircare/internal/errors"
	"github.com/manav03panchal/aircare/internal/model"
)

const resourceUnit = "AC unit"

// ListACUnits fetches the AC inventory.
func (c *Client) ListACUnits(ctx context.Context) ([]model.ACUnit, error) {
	path := c.routes.ACUnits
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	units := []model.ACUnit{}
	if err := decodeInto(http.MethodGet, path, body, &units); err != nil {
		return nil, err
	}
	return units, nil
}

// CreateACUnit adds a unit to the inventory.
func (c *Client) CreateACUnit(ctx context.Context, unit model.ACUnit) (*model.ACUnit, error) {
	path := c.routes.ACUnits
	unit.ID = ""
	body, err := c.do(ctx, http.MethodPost, path, unit)
	if err != nil {
		return nil, err
	}

	var created model.ACUnit
	if err := decodeInto(http.MethodPost, path, body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateACUnit replaces a unit's fields.
func (c *Client) UpdateACUnit(ctx context.Context, unit model.ACUnit) (*model.ACUnit, error) {
	if err := requireID("id", unit.ID); err != nil {
		return nil, err
	}

	path := resourcePath(c.routes.ACUnits, unit.ID)
	body, err := c.do(ctx, http.MethodPut, path, unit)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, errors.NewNotFoundError(resourceUnit, unit.ID)
		}
		return nil, err
	}

	var updated model.ACUnit
	if err := decode(body, &updated); err != nil || updated.ID == "" {
		return &unit, nil
	}
	return &updated, nil
}

// DeleteACUnit removes a unit. Events that reference it are left alone.
func (c *Client) DeleteACUnit(ctx context.Context, id string) error {
	if err := requireID("id", id); err != nil {
		return err
	}

	_, err := c.do(ctx, http.MethodDelete, resourcePath(c.routes.ACUnits, id), nil)
	if isStatus(err, http.StatusNotFound) {
		return errors.NewNotFoundError(resourceUnit, id)
	}
	return err
}

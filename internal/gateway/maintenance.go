package gateway

import (
	"context"
	"net/http"

	"github.com/manav03panchal/aircare/internal/errors"
	"github.com/manav03panchal/aircare/internal/model"
)

const resourceEvent = "maintenance event"

// ListMaintenance fetches every maintenance event.
func (c *Client) ListMaintenance(ctx context.Context) ([]model.MaintenanceEvent, error) {
	path := c.routes.Maintenance
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var dtos []eventDTO
	if err := decodeInto(http.MethodGet, path, body, &dtos); err != nil {
		return nil, err
	}
	return toModels(dtos), nil
}

// GetMaintenance fetches one event with its AC unit and employees populated.
func (c *Client) GetMaintenance(ctx context.Context, id string) (*model.EventDetail, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}

	path := resourcePath(c.routes.Maintenance, id)
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, errors.NewNotFoundError(resourceEvent, id)
		}
		return nil, err
	}

	var dto detailDTO
	if err := decodeInto(http.MethodGet, path, body, &dto); err != nil {
		return nil, err
	}
	if dto.ID == "" {
		return nil, errors.NewNotFoundError(resourceEvent, id)
	}
	return dto.toModel(), nil
}

// ListMaintenanceByAC fetches every event recorded against one AC unit.
func (c *Client) ListMaintenanceByAC(ctx context.Context, acID string) ([]model.MaintenanceEvent, error) {
	if err := requireID("acID", acID); err != nil {
		return nil, err
	}

	path := resourcePath(c.routes.Maintenance+"/by-ac", acID)
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return []model.MaintenanceEvent{}, nil
		}
		return nil, err
	}

	var dtos []eventDTO
	if err := decodeInto(http.MethodGet, path, body, &dtos); err != nil {
		return nil, err
	}
	return toModels(dtos), nil
}

// CreateMaintenance posts a new event and returns the stored document.
func (c *Client) CreateMaintenance(ctx context.Context, ev model.MaintenanceEvent) (*model.MaintenanceEvent, error) {
	path := c.routes.Maintenance
	ev.ID = ""
	body, err := c.do(ctx, http.MethodPost, path, fromModel(ev))
	if err != nil {
		return nil, err
	}

	var dto eventDTO
	if err := decodeInto(http.MethodPost, path, body, &dto); err != nil {
		return nil, err
	}
	if dto.ID == "" {
		return nil, &errors.GatewayError{Method: http.MethodPost, Endpoint: path, Status: http.StatusOK, Message: "response has no _id"}
	}

	created := dto.toModel()
	return &created, nil
}

// UpdateMaintenance replaces an event. When the server answers without the
// document, the sent event is returned.
func (c *Client) UpdateMaintenance(ctx context.Context, ev model.MaintenanceEvent) (*model.MaintenanceEvent, error) {
	if err := requireID("id", ev.ID); err != nil {
		return nil, err
	}

	path := resourcePath(c.routes.Maintenance, ev.ID)
	body, err := c.do(ctx, http.MethodPut, path, fromModel(ev))
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, errors.NewNotFoundError(resourceEvent, ev.ID)
		}
		return nil, err
	}

	var dto eventDTO
	if err := decode(body, &dto); err != nil || dto.ID == "" {
		return &ev, nil
	}

	updated := dto.toModel()
	return &updated, nil
}

// DeleteMaintenance removes an event.
func (c *Client) DeleteMaintenance(ctx context.Context, id string) error {
	if err := requireID("id", id); err != nil {
		return err
	}

	_, err := c.do(ctx, http.MethodDelete, resourcePath(c.routes.Maintenance, id), nil)
	if isStatus(err, http.StatusNotFound) {
		return errors.NewNotFoundError(resourceEvent, id)
	}
	return err
}

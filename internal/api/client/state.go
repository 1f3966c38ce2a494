package client

import (
	"context"

	"github.com/donaldgifford/deal-notifier/internal/api/handlers"
)

// GetState returns the daemon's notification state.
func (c *Client) GetState(ctx context.Context) (*handlers.StateBody, error) {
	var st handlers.StateBody
	if err := c.get(ctx, "/api/v1/state", &st); err != nil {
		return nil, err
	}
	return &st, nil
}

package client

import (
	"context"

	"github.com/donaldgifford/deal-notifier/internal/api/handlers"
	"github.com/donaldgifford/deal-notifier/internal/engine"
)

// TriggerRun asks the daemon to run one report cycle and waits for it.
func (c *Client) TriggerRun(ctx context.Context) (*engine.Result, error) {
	var res engine.Result
	if err := c.post(ctx, "/api/v1/run", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetLastRun returns the daemon's most recent finished run.
func (c *Client) GetLastRun(ctx context.Context) (*handlers.LastRunBody, error) {
	var last handlers.LastRunBody
	if err := c.get(ctx, "/api/v1/last-run", &last); err != nil {
		return nil, err
	}
	return &last, nil
}

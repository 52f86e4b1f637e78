package api

import (
	"context"

	"github.com/ssukssuk/planterm/internal/model"
)

// Home fetches the aggregate dashboard snapshot for the main plant.
func (c *Client) Home(ctx context.Context) (*model.HomeSnapshot, error) {
	var snapshot model.HomeSnapshot
	if err := c.Get(ctx, "/home", &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

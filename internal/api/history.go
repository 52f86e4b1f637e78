package api

import (
	"context"
	"fmt"

	"github.com/ssukssuk/planterm/internal/model"
)

// PlantHistory fetches growth measurements and sensor-alert counts for
// the last periodDays days.
func (c *Client) PlantHistory(ctx context.Context, plantID, periodDays int) (*model.History, error) {
	var history model.History
	path := fmt.Sprintf("/history/plants/%d?period=%d", plantID, periodDays)
	if err := c.Get(ctx, path, &history); err != nil {
		return nil, err
	}
	return &history, nil
}

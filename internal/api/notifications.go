package api

import (
	"context"

	"github.com/ssukssuk/planterm/internal/model"
)

// TodayNotifications fetches the notification feed for the current
// calendar day. The server decides where the day boundary falls and
// reports it in the batch's Date field.
func (c *Client) TodayNotifications(ctx context.Context) (*model.NotificationBatch, error) {
	var batch model.NotificationBatch
	if err := c.Post(ctx, "/notifications/list", struct{}{}, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

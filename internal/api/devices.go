package api

import (
	"context"
	"strings"

	"github.com/ssukssuk/planterm/internal/model"
)

// ClaimDevice pairs a planter device by its serial number. Serials are
// case-insensitive on the device label, so the value is upcased before
// submission.
func (c *Client) ClaimDevice(ctx context.Context, serial string) (*model.DeviceClaim, error) {
	var claim model.DeviceClaim
	err := c.Post(ctx, "/devices/claim", map[string]string{
		"serial": strings.ToUpper(strings.TrimSpace(serial)),
	}, &claim)
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

// ListDevices fetches the devices paired to this account.
func (c *Client) ListDevices(ctx context.Context) ([]model.Device, error) {
	var devices []model.Device
	if err := c.Get(ctx, "/devices", &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

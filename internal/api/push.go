package api

import "context"

// RegisterPushToken uploads a push-delivery token so the service can
// route alerts to this installation. Delivery itself is the push
// provider's job; the client only registers the token.
func (c *Client) RegisterPushToken(ctx context.Context, token, platform, mobileDeviceID string) error {
	return c.Post(ctx, "/fcm/token", map[string]string{
		"token":          token,
		"platform":       platform,
		"mobileDeviceId": mobileDeviceID,
	}, nil)
}

// UpdatePushSetting toggles server-side push delivery for this account.
func (c *Client) UpdatePushSetting(ctx context.Context, enabled bool) error {
	return c.Patch(ctx, "/fcm/setting", map[string]bool{
		"enabled": enabled,
	}, nil)
}

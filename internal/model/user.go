package model

// User is the authenticated account profile.
type User struct {
	UserID   int    `json:"userId"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Mode     string `json:"mode"`
}

// Device is a paired planter device.
type Device struct {
	DeviceID string `json:"deviceId"`
	Serial   string `json:"serial"`
	Paired   bool   `json:"paired"`
}

// DeviceClaim is the result of claiming a device by serial number.
type DeviceClaim struct {
	DeviceID  string  `json:"deviceId"`
	Serial    string  `json:"serial"`
	Paired    bool    `json:"paired"`
	ClaimedAt APITime `json:"claimedAt"`
}

package model

// Notification is a single server-generated alert about the main plant.
// Notifications are immutable once received; display order is by
// CreatedAt descending (most recent first).
type Notification struct {
	// NotificationID is the server-assigned identifier.
	NotificationID int `json:"notificationId"`

	// Message is the human-readable alert text.
	Message string `json:"message"`

	// CreatedAt is when the server generated this notification. It is
	// the value compared against the local seen-state watermarks.
	CreatedAt APITime `json:"createdAt"`
}

// NotificationBatch is the server's notification feed for "today".
// Date is the calendar day the batch belongs to, as determined by the
// server; it scopes the locally persisted watermarks rather than being a
// property of each notification.
type NotificationBatch struct {
	Date          string         `json:"date"`
	Notifications []Notification `json:"notifications"`
}

package storage

import "errors"

// ErrNotFound is returned by Get when no value is stored under a key.
var ErrNotFound = errors.New("storage: key not found")

// Well-known keys shared by the session manager, the notification
// reconciler, and the UI caches.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeySavedEmail   = "savedEmail"

	KeyNotifSeenList    = "notifSeenState:list"
	KeyNotifSeenBalloon = "notifSeenState:balloon"

	KeyPlantID        = "plantId"
	KeyPlantName      = "plantName"
	KeyPlantMode      = "plantMode"
	KeyPushEnabled    = "pushEnabled"
	KeyMobileDeviceID = "mobileDeviceId"
)

// Storage is the key-value persistence capability injected into the
// session manager and the notification reconciler. Implementations must
// complete each call fully before returning; there is no concurrent
// writer discipline beyond that.
type Storage interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(key, value string) error

	// Remove deletes the value under key. Removing an absent key is a no-op.
	Remove(key string) error
}

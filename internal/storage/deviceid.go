package storage

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// DeviceID returns this installation's stable identifier for push-token
// registration, generating and persisting one on first use.
func DeviceID(s Storage) (string, error) {
	id, err := s.Get(KeyMobileDeviceID)
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("reading device id: %w", err)
	}

	id = uuid.New().String()
	if err := s.Set(KeyMobileDeviceID, id); err != nil {
		return "", fmt.Errorf("persisting device id: %w", err)
	}
	return id, nil
}

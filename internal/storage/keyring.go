package storage

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "planterm"

// KeyringStorage implements Storage on the system keyring. It holds the
// credential pair and the remembered login email.
type KeyringStorage struct {
	ring keyring.Keyring
}

// NewKeyringStorage opens the system keyring for the application.
func NewKeyringStorage() (*KeyringStorage, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/planterm/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("planterm-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &KeyringStorage{ring: ring}, nil
}

// Get returns the value stored under key, or ErrNotFound.
func (s *KeyringStorage) Get(key string) (string, error) {
	item, err := s.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores value under key, overwriting any previous value.
func (s *KeyringStorage) Set(key, value string) error {
	err := s.ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Remove deletes the value under key. Removing an absent key is a no-op.
func (s *KeyringStorage) Remove(key string) error {
	err := s.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

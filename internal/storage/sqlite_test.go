package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssukssuk/planterm/internal/storage"
	"github.com/ssukssuk/planterm/tests/testutil"
)

func TestSetGetRoundtrip(t *testing.T) {
	s := testutil.NewTestStorage(t)

	require.NoError(t, s.Set("greeting", "hello"))
	value, err := s.Get("greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", value)

	// Overwrite replaces the previous value.
	require.NoError(t, s.Set("greeting", "bye"))
	value, err = s.Get("greeting")
	require.NoError(t, err)
	assert.Equal(t, "bye", value)
}

func TestGetMissingKeyReturnsNotFound(t *testing.T) {
	s := testutil.NewTestStorage(t)

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := testutil.NewTestStorage(t)

	require.NoError(t, s.Set("k", "v"))
	require.NoError(t, s.Remove("k"))
	_, err := s.Get("k")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Removing an absent key is a no-op.
	require.NoError(t, s.Remove("k"))
}

func TestDeviceIDIsStable(t *testing.T) {
	s := testutil.NewTestStorage(t)

	first, err := storage.DeviceID(s)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := storage.DeviceID(s)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

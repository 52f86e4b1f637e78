package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssukssuk/planterm/internal/model"
)

func TestAPITimeAcceptsServerFormats(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want time.Time
	}{
		{
			name: "rfc3339",
			in:   `"2026-09-01T10:30:00Z"`,
			want: time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			name: "zone-less seconds",
			in:   `"2026-09-01T10:30:45"`,
			want: time.Date(2026, 9, 1, 10, 30, 45, 0, time.UTC),
		},
		{
			name: "zone-less minutes",
			in:   `"2026-09-01T10:30"`,
			want: time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			name: "fractional seconds",
			in:   `"2026-09-01T10:30:45.123"`,
			want: time.Date(2026, 9, 1, 10, 30, 45, 123000000, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got model.APITime
			require.NoError(t, json.Unmarshal([]byte(tc.in), &got))
			assert.True(t, got.Equal(tc.want), "got %v want %v", got.Time, tc.want)
		})
	}
}

func TestAPITimeNullAndEmpty(t *testing.T) {
	var got model.APITime
	require.NoError(t, json.Unmarshal([]byte(`null`), &got))
	assert.True(t, got.IsZero())

	require.NoError(t, json.Unmarshal([]byte(`""`), &got))
	assert.True(t, got.IsZero())
}

func TestAPITimeRejectsGarbage(t *testing.T) {
	var got model.APITime
	assert.Error(t, json.Unmarshal([]byte(`"next tuesday"`), &got))
}

func TestAPITimeAfterIsStrict(t *testing.T) {
	earlier := model.APITime{Time: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)}
	later := model.APITime{Time: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)}

	assert.True(t, later.After(earlier))
	assert.False(t, earlier.After(later))
	assert.False(t, later.After(later), "equal timestamps are not strictly after")
}

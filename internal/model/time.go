package model

import (
	"fmt"
	"strings"
	"time"
)

// apiTimeLayouts lists the timestamp formats the service emits. The
// backend serializes zone-less local datetimes with varying precision,
// so each layout is tried in order.
var apiTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// APITime wraps time.Time with tolerant JSON decoding for the service's
// timestamp formats. Zone-less values are interpreted as UTC.
type APITime struct {
	time.Time
}

func (t *APITime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range apiTimeLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (t APITime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339Nano) + `"`), nil
}

// After reports whether t is strictly later than other.
func (t APITime) After(other APITime) bool {
	return t.Time.After(other.Time)
}

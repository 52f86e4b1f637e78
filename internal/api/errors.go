package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionExpired marks an irrecoverable authorization failure: the
// stored refresh credential was rejected (or the refresh call failed) and
// local credentials have been cleared. The UI layer is expected to route
// to the login surface when it sees this; the client itself never changes
// navigation state.
var ErrSessionExpired = errors.New("session expired")

// errNoRefreshToken signals that recovery from a 401 is impossible because
// no refresh credential is stored. The original error is propagated and
// the credential store is left untouched.
var errNoRefreshToken = errors.New("no refresh token stored")

// StatusError reports a response with a non-success HTTP status.
type StatusError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unexpected status %d on %s %s: %s",
			e.StatusCode, e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("unexpected status %d on %s %s",
		e.StatusCode, e.Method, e.Path)
}

// APIError reports a 2xx response whose envelope carried success=false.
type APIError struct {
	Method  string
	Path    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("service error on %s %s: %s", e.Method, e.Path, e.Message)
}

// IsUnauthorized reports whether err (or any error in its chain) is a
// 401 status error.
func IsUnauthorized(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) &&
		statusErr.StatusCode == http.StatusUnauthorized
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ssukssuk/planterm/internal/storage"
)

// Client is the HTTP client for the planter service. It attaches the
// stored bearer credential to every request and, when a request fails
// with 401, performs a coalesced credential refresh and replays the
// original request exactly once.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// refreshClient issues the credential-refresh call. It must stay
	// separate from httpClient: a refresh that itself returned 401 would
	// otherwise recurse into another refresh.
	refreshClient *http.Client

	tokens  storage.Storage
	logger  *zap.Logger
	refresh singleflight.Group
}

// NewClient creates a client for the service rooted at baseURL. The
// tokens storage holds the credential pair and the remembered login.
func NewClient(baseURL string, timeout time.Duration, tokens storage.Storage, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    &http.Client{Timeout: timeout},
		refreshClient: &http.Client{Timeout: timeout},
		tokens:        tokens,
		logger:        logger,
	}
}

// envelope is the service's uniform response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// response captures a completed HTTP exchange.
type response struct {
	statusCode int
	body       []byte
}

// Get performs an HTTP GET request and unmarshals the envelope's data.
func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs an HTTP POST request with a JSON body and unmarshals the
// envelope's data.
func (c *Client) Post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// Patch performs an HTTP PATCH request with a JSON body and unmarshals
// the envelope's data.
func (c *Client) Patch(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPatch, path, body, result)
}

// Delete performs an HTTP DELETE request and unmarshals the envelope's data.
func (c *Client) Delete(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodDelete, path, nil, result)
}

// do runs the full request lifecycle: attach the stored bearer credential,
// send, and on a 401 refresh the credential and replay the original
// request. The replay happens at most once per originating request; a 401
// on the replayed call is surfaced unchanged.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		payload = data
	}

	// Absence of a stored token means "unauthenticated"; the request
	// proceeds without an Authorization header.
	token, err := c.tokens.Get(storage.KeyAccessToken)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("reading access token: %w", err)
	}

	resp, err := c.send(ctx, method, path, payload, token)
	if err != nil {
		return err
	}

	if resp.statusCode == http.StatusUnauthorized {
		newToken, refreshErr := c.refreshAccessToken(ctx)
		if refreshErr != nil {
			if errors.Is(refreshErr, errNoRefreshToken) {
				// Nothing to recover with and nothing to clear; surface
				// the original authorization failure.
				return c.statusError(resp, method, path)
			}
			return refreshErr
		}

		c.logger.Debug("replaying request after token refresh",
			zap.String("method", method), zap.String("path", path))

		resp, err = c.send(ctx, method, path, payload, newToken)
		if err != nil {
			return err
		}
	}

	return c.decode(resp, method, path, result)
}

// send executes a single HTTP exchange and drains the body.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string) (*response, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &response{statusCode: resp.StatusCode, body: respBody}, nil
}

// decode maps a completed exchange onto the caller's result value.
func (c *Client) decode(resp *response, method, path string, result interface{}) error {
	if resp.statusCode < 200 || resp.statusCode >= 300 {
		return c.statusError(resp, method, path)
	}

	if resp.statusCode == http.StatusNoContent || len(resp.body) == 0 {
		return nil
	}

	// The envelope's success flag is authoritative even when the caller
	// discards the payload; a 2xx status alone does not mean the
	// operation took effect.
	var env envelope
	if err := json.Unmarshal(resp.body, &env); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}

	if !env.Success {
		return &APIError{Method: method, Path: path, Message: env.Message}
	}

	// A success envelope with no data leaves the result at its zero
	// value; callers treat missing payloads as "no update".
	if result == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}

	if err := json.Unmarshal(env.Data, result); err != nil {
		return fmt.Errorf("unmarshaling data from %s %s: %w", method, path, err)
	}

	return nil
}

// statusError builds a StatusError carrying any message the envelope had.
func (c *Client) statusError(resp *response, method, path string) error {
	var env envelope
	message := ""
	if json.Unmarshal(resp.body, &env) == nil {
		message = env.Message
	}
	return &StatusError{
		StatusCode: resp.statusCode,
		Method:     method,
		Path:       path,
		Message:    message,
	}
}

// refreshTokens is the payload of a successful refresh call. A rotated
// refresh token is optional; when absent the old one stays valid.
type refreshTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// refreshAccessToken obtains a fresh access credential. Concurrent
// callers share a single underlying refresh call, so a burst of 401s
// cannot race refresh-token rotation against itself.
func (c *Client) refreshAccessToken(ctx context.Context) (string, error) {
	v, err, _ := c.refresh.Do("refresh", func() (interface{}, error) {
		return c.doRefresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// doRefresh performs the actual refresh exchange. Any failure past the
// missing-refresh-token check expires the session: the credential pair
// and remembered login are purged and ErrSessionExpired is surfaced.
func (c *Client) doRefresh(ctx context.Context) (interface{}, error) {
	refreshToken, err := c.tokens.Get(storage.KeyRefreshToken)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && refreshToken == "") {
		return nil, errNoRefreshToken
	}
	if err != nil {
		return nil, fmt.Errorf("reading refresh token: %w", err)
	}

	c.logger.Info("access token expired, refreshing")

	payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return nil, fmt.Errorf("marshaling refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+"/auth/refresh", bytes.NewReader(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("creating refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.refreshClient.Do(req)
	if err != nil {
		return nil, c.expireSession(fmt.Errorf("executing refresh request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.expireSession(fmt.Errorf("reading refresh response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.expireSession(fmt.Errorf("refresh rejected with status %d", resp.StatusCode))
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, c.expireSession(fmt.Errorf("unmarshaling refresh response: %w", err))
	}

	var tokens refreshTokens
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &tokens); err != nil {
			return nil, c.expireSession(fmt.Errorf("unmarshaling refresh tokens: %w", err))
		}
	}
	if tokens.AccessToken == "" {
		return nil, c.expireSession(errors.New("refresh response missing access token"))
	}

	if err := c.tokens.Set(storage.KeyAccessToken, tokens.AccessToken); err != nil {
		return nil, c.expireSession(fmt.Errorf("persisting access token: %w", err))
	}
	if tokens.RefreshToken != "" {
		if err := c.tokens.Set(storage.KeyRefreshToken, tokens.RefreshToken); err != nil {
			return nil, c.expireSession(fmt.Errorf("persisting refresh token: %w", err))
		}
	}

	c.logger.Info("access token refreshed")
	return tokens.AccessToken, nil
}

// expireSession purges the credential pair and remembered login, then
// wraps cause in ErrSessionExpired so callers can route to login.
func (c *Client) expireSession(cause error) error {
	c.logger.Warn("token refresh failed, clearing session", zap.Error(cause))

	for _, key := range []string{
		storage.KeyAccessToken,
		storage.KeyRefreshToken,
		storage.KeySavedEmail,
	} {
		if err := c.tokens.Remove(key); err != nil {
			c.logger.Warn("clearing credential failed",
				zap.String("key", key), zap.Error(err))
		}
	}

	return fmt.Errorf("%w: %v", ErrSessionExpired, cause)
}

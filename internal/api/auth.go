package api

import (
	"context"
	"fmt"

	"github.com/ssukssuk/planterm/internal/model"
	"github.com/ssukssuk/planterm/internal/storage"
)

// Login authenticates with the service and persists the credential pair.
// When remember is set the email is stored for the next login form;
// otherwise any remembered email is removed.
func (c *Client) Login(ctx context.Context, email, password string, remember bool) error {
	var tokens refreshTokens
	err := c.Post(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &tokens)
	if err != nil {
		return err
	}
	if tokens.AccessToken == "" {
		return &APIError{Method: "POST", Path: "/auth/login", Message: "login response missing access token"}
	}

	if err := c.tokens.Set(storage.KeyAccessToken, tokens.AccessToken); err != nil {
		return fmt.Errorf("persisting access token: %w", err)
	}
	if tokens.RefreshToken != "" {
		if err := c.tokens.Set(storage.KeyRefreshToken, tokens.RefreshToken); err != nil {
			return fmt.Errorf("persisting refresh token: %w", err)
		}
	}

	if remember {
		if err := c.tokens.Set(storage.KeySavedEmail, email); err != nil {
			return fmt.Errorf("persisting saved email: %w", err)
		}
	} else if err := c.tokens.Remove(storage.KeySavedEmail); err != nil {
		return fmt.Errorf("removing saved email: %w", err)
	}

	return nil
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, email, password, nickname string) error {
	return c.Post(ctx, "/auth/signup", map[string]string{
		"email":    email,
		"password": password,
		"nickname": nickname,
	}, nil)
}

// Logout invalidates the server session and removes the credential pair.
// The remembered email survives logout so the next login form can prefill.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.Post(ctx, "/auth/logout", struct{}{}, nil); err != nil {
		return err
	}
	return c.clearCredentialPair()
}

// Withdraw deletes the account and removes the credential pair.
func (c *Client) Withdraw(ctx context.Context) error {
	if err := c.Delete(ctx, "/auth/withdraw", nil); err != nil {
		return err
	}
	return c.clearCredentialPair()
}

func (c *Client) clearCredentialPair() error {
	if err := c.tokens.Remove(storage.KeyAccessToken); err != nil {
		return fmt.Errorf("removing access token: %w", err)
	}
	if err := c.tokens.Remove(storage.KeyRefreshToken); err != nil {
		return fmt.Errorf("removing refresh token: %w", err)
	}
	return nil
}

// SavedEmail returns the remembered login email, or "" when none is stored.
func (c *Client) SavedEmail() string {
	email, err := c.tokens.Get(storage.KeySavedEmail)
	if err != nil {
		return ""
	}
	return email
}

// LoggedIn reports whether an access credential is currently stored.
func (c *Client) LoggedIn() bool {
	token, err := c.tokens.Get(storage.KeyAccessToken)
	return err == nil && token != ""
}

// Me fetches the authenticated account profile.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.Get(ctx, "/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateNickname changes the account's display name.
func (c *Client) UpdateNickname(ctx context.Context, nickname string) error {
	return c.Patch(ctx, "/auth/nickname", map[string]string{
		"nickname": nickname,
	}, nil)
}

// UpdatePassword changes the account password.
func (c *Client) UpdatePassword(ctx context.Context, current, next string) error {
	return c.Patch(ctx, "/auth/password", map[string]string{
		"currentPassword": current,
		"newPassword":     next,
	}, nil)
}

// ChangeMode switches the planter between AUTO and MANUAL care modes.
func (c *Client) ChangeMode(ctx context.Context, mode string) error {
	return c.Patch(ctx, "/auth/mode", map[string]string{
		"mode": mode,
	}, nil)
}

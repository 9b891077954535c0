package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/docforge/docforge/internal/models"
)

// tokenResponse is the wire shape of the login and refresh endpoints.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

func decodeTokenResponse(body []byte) (*models.AuthSession, error) {
	var tokens tokenResponse
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("token response carries no access token")
	}

	session := &models.AuthSession{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}
	if tokens.ExpiresIn > 0 {
		session.ExpiresAt = time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
	}
	return session, nil
}

// Login exchanges credentials for a token pair and installs the session.
// The endpoint is form-encoded and keyed by username, not email.
func (c *Client) Login(ctx context.Context, username, password string) (*models.AuthSession, error) {
	if strings.TrimSpace(username) == "" {
		return nil, &ValidationError{Field: "username", Message: "must not be empty"}
	}

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	encoded := form.Encode()

	resp, err := c.Do(ctx, Request{
		Method:      http.MethodPost,
		Path:        "/api/auth/login",
		ContentType: "application/x-www-form-urlencoded",
		Body:        func() (io.Reader, error) { return strings.NewReader(encoded), nil },
		NoAuth:      true,
	})
	if err != nil {
		return nil, err
	}

	session, err := decodeTokenResponse(resp.Body)
	if err != nil {
		return nil, err
	}

	if err := c.sessions.Set(session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return session, nil
}

// RegisterInput is the input for creating a user account.
type RegisterInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new user account. It does not log the user in.
func (c *Client) Register(ctx context.Context, input RegisterInput) error {
	if strings.TrimSpace(input.Username) == "" {
		return &ValidationError{Field: "username", Message: "must not be empty"}
	}
	if strings.TrimSpace(input.Email) == "" {
		return &ValidationError{Field: "email", Message: "must not be empty"}
	}

	payload, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal register request: %w", err)
	}

	_, err = c.Do(ctx, Request{
		Method:      http.MethodPost,
		Path:        "/api/users",
		ContentType: "application/json",
		Body:        func() (io.Reader, error) { return bytes.NewReader(payload), nil },
		NoAuth:      true,
	})
	return err
}

// Logout destroys the local session. The server keeps no session state.
func (c *Client) Logout() error {
	return c.sessions.Clear()
}

// ExchangeGitHubCode trades an OAuth callback code for a GitHub access
// token via the backend proxy, keeping the client secret server-side.
func (c *Client) ExchangeGitHubCode(ctx context.Context, code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", &ValidationError{Field: "code", Message: "must not be empty"}
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.JSON(ctx, http.MethodPost, "/api/auth/github/callback", map[string]string{"code": code}, &result); err != nil {
		return "", err
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("github token exchange returned no token")
	}
	return result.AccessToken, nil
}

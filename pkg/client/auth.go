package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mesh-intelligence/orchard/pkg/types"
)

// Login exchanges credentials for a session token and stores it.
func (c *Client) Login(ctx context.Context, creds types.LoginCredentials) (*types.LoginResponse, error) {
	if creds.Username == "" {
		return nil, &ValidationError{Field: "username", Message: "username is required"}
	}
	if creds.Password == "" {
		return nil, &ValidationError{Field: "password", Message: "password is required"}
	}

	resp, err := call[*types.LoginResponse](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/api/auth/login/",
		JSON:   creds,
	})
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.Token == "" {
		return nil, &APIError{
			Kind: ErrMalformedResponse, Method: http.MethodPost, Path: "/api/auth/login/",
			StatusCode: http.StatusOK, Err: errors.New("login response carries no token"),
		}
	}
	if err := c.session.Set(resp.Token); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return resp, nil
}

// Logout ends the session on the backend and clears the local credential.
// The credential is cleared even when the backend call fails; a 401 means
// the session was already gone and is not reported as an error.
func (c *Client) Logout(ctx context.Context) error {
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/auth/logout/"}, nil)
	if clearErr := c.session.Clear(); clearErr != nil {
		return fmt.Errorf("clear session: %w", clearErr)
	}
	if errors.Is(err, ErrAuthExpired) {
		return nil
	}
	return err
}

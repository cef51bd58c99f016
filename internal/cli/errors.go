package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mesh-intelligence/orchard/pkg/client"
)

// exitError carries an explicit exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func sysError(err error) error {
	return &exitError{code: exitSysError, err: err}
}

// failure attaches the message shown when the backend gives none.
type failure struct {
	fallback string
	err      error
}

func (f *failure) Error() string { return f.fallback + ": " + f.err.Error() }
func (f *failure) Unwrap() error { return f.err }

func withFallback(err error, fallback string) error {
	if err == nil {
		return nil
	}
	return &failure{fallback: fallback, err: err}
}

// describe maps err to an exit code and the line printed for the user.
func describe(err error) (int, string) {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code, ee.err.Error()
	}

	fallback := err.Error()
	var f *failure
	if errors.As(err, &f) {
		fallback = f.fallback
	}

	switch {
	case errors.Is(err, errNotLoggedIn):
		return exitUserError, "not logged in; run 'orchard login' first"
	case errors.Is(err, client.ErrAuthExpired):
		return exitUserError, "session expired; run 'orchard login' to sign in again"
	case errors.Is(err, client.ErrValidation):
		return exitUserError, client.Message(err, fallback)
	case errors.Is(err, client.ErrNetwork):
		return exitSysError, fmt.Sprintf("%s: backend unreachable", fallback)
	case errors.Is(err, client.ErrMalformedResponse):
		return exitSysError, fmt.Sprintf("%s: unexpected response from backend", fallback)
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		msg := fmt.Sprintf("%s (HTTP %d)", apiErr.Message(fallback), apiErr.StatusCode)
		if apiErr.StatusCode >= http.StatusInternalServerError {
			return exitSysError, msg
		}
		return exitUserError, msg
	}
	return exitUserError, err.Error()
}

package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Failure kinds. Every error returned by Client matches exactly one of
// them with errors.Is.
var (
	// ErrAuthExpired means the backend answered 401. The credential that was
	// sent has already been cleared from the session store.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrRequestFailed means the backend answered with a non-2xx status
	// other than 401.
	ErrRequestFailed = errors.New("request failed")

	// ErrNetwork means no response was received.
	ErrNetwork = errors.New("network error")

	// ErrMalformedResponse means a 2xx response body could not be decoded
	// into the declared response type.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrValidation means the input was rejected before any request was made.
	ErrValidation = errors.New("validation error")
)

// APIError describes a failed backend call.
type APIError struct {
	// Kind is one of ErrAuthExpired, ErrRequestFailed, ErrNetwork or
	// ErrMalformedResponse.
	Kind       error
	Method     string
	Path       string
	StatusCode int
	RequestID  string

	// Body is the raw response body, unmodified. Detail is Body decoded as
	// JSON, or nil when the body is not JSON.
	Body   []byte
	Detail any

	// Err is the underlying cause, if any.
	Err error
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %v", e.Method, e.Path, e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if msg := e.Message(""); msg != "" {
		fmt.Fprintf(&b, ": %s", msg)
	} else if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *APIError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Message returns the backend-provided message from the error body (the
// "error", "message" or "detail" field, in that order), or fallback when the
// body carries none.
func (e *APIError) Message(fallback string) string {
	obj, ok := e.Detail.(map[string]any)
	if !ok {
		return fallback
	}
	for _, key := range []string{"error", "message", "detail"} {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// ValidationError is a client-side input error. It never reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Unwrap makes a ValidationError match ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// Message returns err's user-facing text: the backend message for an
// APIError, the validation message for a ValidationError, otherwise fallback.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message(fallback)
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	return fallback
}

func decodeDetail(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil
	}
	return v
}

// Package client is the typed gateway to the orchard backend.
//
// Every backend call goes through Client.Do, which attaches the session
// credential before the request is sent and classifies the outcome before
// control returns to the caller:
//
//   - 2xx: the JSON body is decoded into the caller's value unmodified. An
//     empty or null body is an error when the caller expects an object.
//   - 401: the credential that was sent is expired in the session store and
//     an APIError matching ErrAuthExpired is returned.
//   - other non-2xx: an APIError matching ErrRequestFailed carries the status
//     and the error body.
//   - no response: an APIError matching ErrNetwork wraps the transport error.
//
// The client performs no retries and sets no timeout of its own; bound a
// call with its context.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/orchard/pkg/session"
)

// HeaderRequestID carries a per-request correlation id.
const HeaderRequestID = "X-Request-ID"

// ErrInvalidBaseURL is returned when the backend origin is not an absolute
// http or https URL.
var ErrInvalidBaseURL = errors.New("base URL must be an absolute http(s) URL")

// errNoObject is the cause of a malformed response whose body was empty or
// null where an object was expected.
var errNoObject = errors.New("response carried no object")

// Request describes one backend call.
type Request struct {
	Method string
	// Path is relative to the base URL, including its trailing slash.
	Path  string
	Query url.Values
	// JSON is encoded as the request body when non-nil.
	JSON any
	// Form is encoded as multipart/form-data when non-nil.
	Form *Form
}

// Client talks to the orchard backend.
type Client struct {
	mu      sync.RWMutex
	baseURL *url.URL

	http    *http.Client
	session session.Store
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a Client for the backend at baseURL that reads and expires
// the credential in store.
func New(baseURL string, store session.Store, opts ...Option) (*Client, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	c := &Client{
		http:    &http.Client{},
		session: store,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.Configure(baseURL); err != nil {
		return nil, err
	}
	return c, nil
}

// Configure sets the backend origin. All later calls are relative to it.
func (c *Client) Configure(baseURL string) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""

	c.mu.Lock()
	c.baseURL = u
	c.mu.Unlock()
	return nil
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL.String()
}

// Session returns the store the client reads the credential from.
func (c *Client) Session() session.Store {
	return c.session
}

// Do sends req and decodes a successful response into out. out may be nil
// to discard the body, a *[]byte or *json.RawMessage to receive the raw
// body, or a pointer to any JSON-decodable value.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return err
	}

	requestID := uuid.NewString()
	httpReq.Header.Set(HeaderRequestID, requestID)
	httpReq.Header.Set("Accept", "application/json")

	// The credential is read once per request so that a 401 expires exactly
	// the token that was rejected.
	sent, authenticated := c.session.Token()
	if authenticated {
		httpReq.Header.Set("Authorization", "Bearer "+sent)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug("backend unreachable",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return &APIError{Kind: ErrNetwork, Method: req.Method, Path: req.Path, RequestID: requestID, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Kind: ErrNetwork, Method: req.Method, Path: req.Path, StatusCode: resp.StatusCode, RequestID: requestID, Err: err}
	}

	c.logger.Debug("backend request",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("elapsed", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.expire(sent, authenticated, req, requestID)
		return &APIError{
			Kind: ErrAuthExpired, Method: req.Method, Path: req.Path,
			StatusCode: resp.StatusCode, RequestID: requestID,
			Body: body, Detail: decodeDetail(body),
		}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &APIError{
			Kind: ErrRequestFailed, Method: req.Method, Path: req.Path,
			StatusCode: resp.StatusCode, RequestID: requestID,
			Body: body, Detail: decodeDetail(body),
		}
	}

	err = decodeInto(body, out)
	if err == nil && missingObject(out) {
		err = errNoObject
	}
	if err != nil {
		return &APIError{
			Kind: ErrMalformedResponse, Method: req.Method, Path: req.Path,
			StatusCode: resp.StatusCode, RequestID: requestID,
			Body: body, Err: err,
		}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	if req.JSON != nil && req.Form != nil {
		return nil, fmt.Errorf("%s %s: request cannot carry both JSON and form bodies", req.Method, req.Path)
	}

	c.mu.RLock()
	u := *c.baseURL
	c.mu.RUnlock()
	u.Path += req.Path
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.JSON != nil:
		data, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", req.Method, req.Path, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	case req.Form != nil:
		var buf bytes.Buffer
		ct, err := req.Form.encode(&buf)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s form: %w", req.Method, req.Path, err)
		}
		body = &buf
		contentType = ct
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", req.Method, req.Path, err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	return httpReq, nil
}

func (c *Client) expire(sent string, authenticated bool, req Request, requestID string) {
	if !authenticated {
		return
	}
	cleared, err := c.session.Expire(sent)
	if err != nil {
		c.logger.Error("clear expired credential",
			zap.String("request_id", requestID),
			zap.Error(err))
		return
	}
	if cleared {
		c.logger.Warn("session expired",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.String("request_id", requestID))
	}
}

func decodeInto(body []byte, out any) error {
	switch v := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*v = append([]byte(nil), body...)
		return nil
	case *json.RawMessage:
		*v = append(json.RawMessage(nil), body...)
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// missingObject reports whether out points at a nil pointer after decoding,
// which is what an empty or null body leaves behind for an object result.
// Slices and maps may legitimately stay nil.
func missingObject(out any) bool {
	v := reflect.ValueOf(out)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return false
	}
	e := v.Elem()
	return e.Kind() == reflect.Pointer && e.IsNil()
}

// call sends req and returns the decoded response.
func call[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var out T
	if err := c.Do(ctx, req, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

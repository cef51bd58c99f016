// Package view holds the state behind each orchard screen. A screen issues
// one backend call at a time through pkg/client, keeps the last result or
// error, and ignores responses that arrive after it was closed or after a
// newer call superseded them.
package view

import (
	"context"
	"errors"
	"sync"
)

// ErrDiscarded is returned by Load when the screen was closed, or a newer
// load started, before the fetch completed. The screen state is unchanged.
var ErrDiscarded = errors.New("view: result discarded")

// Status is the lifecycle stage of a screen.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Screen holds the state of one fetch-and-render screen. The zero value is
// an idle, live screen.
type Screen[T any] struct {
	mu     sync.Mutex
	gen    uint64
	closed bool
	status Status
	data   T
	err    error
}

// Load runs fetch and records its outcome. On failure the previous data is
// kept alongside the error.
func (s *Screen[T]) Load(ctx context.Context, fetch func(context.Context) (T, error)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrDiscarded
	}
	s.gen++
	gen := s.gen
	s.status = StatusLoading
	s.mu.Unlock()

	data, err := fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.gen != gen {
		return ErrDiscarded
	}
	if err != nil {
		s.status = StatusError
		s.err = err
		return err
	}
	s.status = StatusSuccess
	s.data = data
	s.err = nil
	return nil
}

// Snapshot returns the current status, data and error.
func (s *Screen[T]) Snapshot() (Status, T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.data, s.err
}

// Data returns the last successfully loaded value.
func (s *Screen[T]) Data() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Err returns the error of the last load, or nil.
func (s *Screen[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close marks the screen as gone. Loads in flight complete but their
// results are dropped; later loads return ErrDiscarded immediately.
func (s *Screen[T]) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Package session holds the credential shared by every backend call.
//
// A Store is the single process-scoped slot for the session token. The
// API client reads it before each request and expires it on a 401; login
// and logout are the only other writers. Memory keeps the token in the
// process, Persistent writes it through to a Slot so it survives restarts.
package session

import "errors"

// TokenKey is the fixed key the token is stored under in a persisted Slot.
const TokenKey = "authToken"

// ErrSlotClosed is returned by a Slot that is no longer usable.
var ErrSlotClosed = errors.New("session slot is closed")

// Store is the session credential slot.
type Store interface {
	// Token returns the current token and whether one is set.
	Token() (string, bool)

	// Set replaces the current token. An empty token is equivalent to Clear.
	Set(token string) error

	// Clear removes the token. Clearing an empty store is a no-op.
	Clear() error

	// Expire clears the token only if it still equals token, and reports
	// whether it did. Callers that observed a rejected credential use it so
	// that a newer login is never discarded and concurrent rejections of the
	// same credential clear the store exactly once.
	Expire(token string) (bool, error)
}

// Slot is a persistent key-value slot a Persistent store writes through to.
type Slot interface {
	Get(key string) (value string, ok bool, err error)
	Put(key, value string) error
	Delete(key string) error
}

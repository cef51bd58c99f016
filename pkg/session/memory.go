package session

import "sync"

// Memory is a Store that lives only as long as the process.
type Memory struct {
	mu    sync.RWMutex
	token string
}

// NewMemory returns a Memory store holding token. Pass "" for an
// unauthenticated store.
func NewMemory(token string) *Memory {
	return &Memory{token: token}
}

// Token returns the current token.
func (m *Memory) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

// Set replaces the current token.
func (m *Memory) Set(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

// Clear removes the token.
func (m *Memory) Clear() error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return nil
}

// Expire clears the token if it still equals token.
func (m *Memory) Expire(token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token == "" || m.token != token {
		return false, nil
	}
	m.token = ""
	return true, nil
}

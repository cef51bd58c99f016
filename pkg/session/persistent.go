package session

import (
	"fmt"
	"sync"
)

// Persistent is a Store backed by a Slot. Every mutation is written through
// to the slot before the in-process copy changes, so a failed write leaves
// the store unchanged.
type Persistent struct {
	mu    sync.RWMutex
	slot  Slot
	token string
}

// Open loads the saved token, if any, from slot.
func Open(slot Slot) (*Persistent, error) {
	token, _, err := slot.Get(TokenKey)
	if err != nil {
		return nil, fmt.Errorf("load session token: %w", err)
	}
	return &Persistent{slot: slot, token: token}, nil
}

// Token returns the current token.
func (p *Persistent) Token() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token, p.token != ""
}

// Set stores token in the slot and makes it current.
func (p *Persistent) Set(token string) error {
	if token == "" {
		return p.Clear()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.slot.Put(TokenKey, token); err != nil {
		return fmt.Errorf("save session token: %w", err)
	}
	p.token = token
	return nil
}

// Clear removes the token from the slot.
func (p *Persistent) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clearLocked()
}

// Expire clears the token if it still equals token.
func (p *Persistent) Expire(token string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if token == "" || p.token != token {
		return false, nil
	}
	if err := p.clearLocked(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Persistent) clearLocked() error {
	if p.token == "" {
		return nil
	}
	if err := p.slot.Delete(TokenKey); err != nil {
		return fmt.Errorf("delete session token: %w", err)
	}
	p.token = ""
	return nil
}

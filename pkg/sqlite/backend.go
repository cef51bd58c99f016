// Package sqlite exposes the SQLite-backed session slot while keeping the
// implementation internal.
package sqlite

import (
	"fmt"
	"io"

	"github.com/mesh-intelligence/orchard/internal/sqlite"
	"github.com/mesh-intelligence/orchard/pkg/session"
)

// OpenSession attaches a SQLite slot in dataDir and opens a persistent
// session store on top of it. The returned closer detaches the slot; the
// store must not be used after it is closed.
//
// Example:
//
//	store, closer, err := sqlite.OpenSession("/home/me/.local/share/orchard")
//	if err != nil {
//	    return err
//	}
//	defer closer.Close()
func OpenSession(dataDir string) (*session.Persistent, io.Closer, error) {
	backend := sqlite.NewBackend()
	if err := backend.Attach(sqlite.Config{DataDir: dataDir}); err != nil {
		return nil, nil, fmt.Errorf("attach session slot: %w", err)
	}
	store, err := session.Open(backend)
	if err != nil {
		backend.Detach()
		return nil, nil, err
	}
	return store, backend, nil
}

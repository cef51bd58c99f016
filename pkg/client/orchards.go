package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mesh-intelligence/orchard/pkg/types"
)

func orchardPath(id int) string { return fmt.Sprintf("/api/orchards/%d/", id) }

// ListOrchards returns every orchard visible to the user.
func (c *Client) ListOrchards(ctx context.Context) ([]types.Orchard, error) {
	return call[[]types.Orchard](ctx, c, Request{Method: http.MethodGet, Path: "/api/orchards/"})
}

// GetOrchard returns one orchard.
func (c *Client) GetOrchard(ctx context.Context, id int) (*types.Orchard, error) {
	return call[*types.Orchard](ctx, c, Request{Method: http.MethodGet, Path: orchardPath(id)})
}

// CreateOrchard creates an orchard and returns it as stored.
func (c *Client) CreateOrchard(ctx context.Context, o types.Orchard) (*types.Orchard, error) {
	return call[*types.Orchard](ctx, c, Request{Method: http.MethodPost, Path: "/api/orchards/", JSON: o})
}

// UpdateOrchard replaces an orchard.
func (c *Client) UpdateOrchard(ctx context.Context, id int, o types.Orchard) (*types.Orchard, error) {
	return call[*types.Orchard](ctx, c, Request{Method: http.MethodPut, Path: orchardPath(id), JSON: o})
}

// DeleteOrchard deletes an orchard.
func (c *Client) DeleteOrchard(ctx context.Context, id int) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: orchardPath(id)}, nil)
}

package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mesh-intelligence/orchard/pkg/types"
)

func treeHealthPath(id int) string { return fmt.Sprintf("/api/tree-health/%d/", id) }

// ListTreeHealth returns every health record.
func (c *Client) ListTreeHealth(ctx context.Context) ([]types.TreeHealth, error) {
	return call[[]types.TreeHealth](ctx, c, Request{Method: http.MethodGet, Path: "/api/tree-health/"})
}

// GetTreeHealth returns one health record.
func (c *Client) GetTreeHealth(ctx context.Context, id int) (*types.TreeHealth, error) {
	return call[*types.TreeHealth](ctx, c, Request{Method: http.MethodGet, Path: treeHealthPath(id)})
}

// CreateTreeHealth records the health of a tree.
func (c *Client) CreateTreeHealth(ctx context.Context, h types.TreeHealth) (*types.TreeHealth, error) {
	return call[*types.TreeHealth](ctx, c, Request{Method: http.MethodPost, Path: "/api/tree-health/", JSON: h})
}

// UpdateTreeHealth replaces a health record.
func (c *Client) UpdateTreeHealth(ctx context.Context, id int, h types.TreeHealth) (*types.TreeHealth, error) {
	return call[*types.TreeHealth](ctx, c, Request{Method: http.MethodPut, Path: treeHealthPath(id), JSON: h})
}

// DeleteTreeHealth deletes a health record.
func (c *Client) DeleteTreeHealth(ctx context.Context, id int) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: treeHealthPath(id)}, nil)
}

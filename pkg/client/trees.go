package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mesh-intelligence/orchard/pkg/types"
)

func treePath(id int) string { return fmt.Sprintf("/api/trees/%d/", id) }

// ListTrees returns every tree.
func (c *Client) ListTrees(ctx context.Context) ([]types.Tree, error) {
	return call[[]types.Tree](ctx, c, Request{Method: http.MethodGet, Path: "/api/trees/"})
}

// GetTree returns one tree.
func (c *Client) GetTree(ctx context.Context, id int) (*types.Tree, error) {
	return call[*types.Tree](ctx, c, Request{Method: http.MethodGet, Path: treePath(id)})
}

// CreateTree creates a tree.
func (c *Client) CreateTree(ctx context.Context, t types.Tree) (*types.Tree, error) {
	return call[*types.Tree](ctx, c, Request{Method: http.MethodPost, Path: "/api/trees/", JSON: t})
}

// UpdateTree replaces a tree.
func (c *Client) UpdateTree(ctx context.Context, id int, t types.Tree) (*types.Tree, error) {
	return call[*types.Tree](ctx, c, Request{Method: http.MethodPut, Path: treePath(id), JSON: t})
}

// DeleteTree deletes a tree.
func (c *Client) DeleteTree(ctx context.Context, id int) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: treePath(id)}, nil)
}

// BulkCreateTrees creates several trees in one call. The response shape is
// backend-defined and returned raw.
func (c *Client) BulkCreateTrees(ctx context.Context, trees []types.Tree) (map[string]any, error) {
	if len(trees) == 0 {
		return nil, &ValidationError{Field: "trees", Message: "at least one tree is required"}
	}
	return call[map[string]any](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/api/bulk-create-trees/",
		JSON:   types.BulkCreateTreesRequest{Trees: trees},
	})
}

package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mesh-intelligence/orchard/pkg/client"
	"github.com/mesh-intelligence/orchard/pkg/types"
)

// readTrees loads trees from path, or from stdin when path is "-". Both a
// bare array and a {"trees": [...]} object are accepted.
func readTrees(stdin io.Reader, path string) ([]types.Tree, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read trees: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var trees []types.Tree
		if err := json.Unmarshal(data, &trees); err != nil {
			return nil, fmt.Errorf("parse trees: %w", err)
		}
		return trees, nil
	}
	var req types.BulkCreateTreesRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse trees: %w", err)
	}
	return req.Trees, nil
}

func readImages(paths []string) ([]client.File, error) {
	files := make([]client.File, 0, len(paths))
	for _, p := range paths {
		f, err := client.ReadFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

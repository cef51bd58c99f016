package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mesh-intelligence/orchard/pkg/types"
)

func scannedImagePath(id int) string { return fmt.Sprintf("/api/scanned-images/%d/", id) }

// NoImageError is the validation error for an upload with no image.
func NoImageError() *ValidationError {
	return &ValidationError{Field: FieldImage, Message: "please select an image first"}
}

// ListScannedImages returns every uploaded image.
func (c *Client) ListScannedImages(ctx context.Context) ([]types.ScannedImage, error) {
	return call[[]types.ScannedImage](ctx, c, Request{Method: http.MethodGet, Path: "/api/scanned-images/"})
}

// GetScannedImage returns one uploaded image.
func (c *Client) GetScannedImage(ctx context.Context, id int) (*types.ScannedImage, error) {
	return call[*types.ScannedImage](ctx, c, Request{Method: http.MethodGet, Path: scannedImagePath(id)})
}

// UploadScannedImage uploads a leaf image for a tree.
func (c *Client) UploadScannedImage(ctx context.Context, treeID int, image File) (*types.ScannedImage, error) {
	if image.Empty() {
		return nil, NoImageError()
	}
	form := NewForm().
		File(FieldImage, image).
		Field(FieldTree, strconv.Itoa(treeID))
	return call[*types.ScannedImage](ctx, c, Request{Method: http.MethodPost, Path: "/api/scanned-images/", Form: form})
}

// DeleteScannedImage deletes an uploaded image.
func (c *Client) DeleteScannedImage(ctx context.Context, id int) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: scannedImagePath(id)}, nil)
}

// BulkUpload uploads several images for one tree.
func (c *Client) BulkUpload(ctx context.Context, treeID int, images []File) (*types.BulkUploadResult, error) {
	if len(images) == 0 {
		return nil, &ValidationError{Field: FieldImages, Message: "please select at least one image"}
	}
	form := NewForm()
	for _, img := range images {
		if img.Empty() {
			return nil, &ValidationError{Field: FieldImages, Message: fmt.Sprintf("%s is empty", img.Name)}
		}
		form.File(FieldImages, img)
	}
	form.Field(FieldTree, strconv.Itoa(treeID))
	return call[*types.BulkUploadResult](ctx, c, Request{Method: http.MethodPost, Path: "/api/bulk-upload/", Form: form})
}

// Predict classifies a leaf image.
func (c *Client) Predict(ctx context.Context, image File) (*types.PredictionResult, error) {
	if image.Empty() {
		return nil, NoImageError()
	}
	return call[*types.PredictionResult](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/api/predict/",
		Form:   NewForm().File(FieldImage, image),
	})
}

// AnalyzeNDVI computes vegetation-index statistics for an image.
func (c *Client) AnalyzeNDVI(ctx context.Context, image File) (*types.NDVIAnalysis, error) {
	if image.Empty() {
		return nil, NoImageError()
	}
	return call[*types.NDVIAnalysis](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/api/ndvi-analysis/",
		Form:   NewForm().File(FieldImage, image),
	})
}

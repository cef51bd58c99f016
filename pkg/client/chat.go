package client

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/orchard/pkg/types"
)

// ChatRequest is one message to the assistant, optionally scoped to an
// orchard and carrying an image.
type ChatRequest struct {
	Message   string
	OrchardID int
	Image     *File
}

// Chat sends a message to the assistant.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*types.ChatResponse, error) {
	hasImage := req.Image != nil && !req.Image.Empty()
	if strings.TrimSpace(req.Message) == "" && !hasImage {
		return nil, &ValidationError{Field: FieldMessage, Message: "enter a message or attach an image"}
	}

	form := NewForm().Field(FieldMessage, req.Message)
	if req.OrchardID != 0 {
		form.Field(FieldOrchardID, strconv.Itoa(req.OrchardID))
	}
	if hasImage {
		form.File(FieldImage, *req.Image)
	}
	return call[*types.ChatResponse](ctx, c, Request{Method: http.MethodPost, Path: "/api/chat/", Form: form})
}

package view

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mesh-intelligence/orchard/pkg/client"
	"github.com/mesh-intelligence/orchard/pkg/types"
)

// MsgChatFailed is shown when a chat message fails without a backend
// message.
const MsgChatFailed = "Failed to send message"

// Chatter sends messages to the assistant.
type Chatter interface {
	Chat(ctx context.Context, req client.ChatRequest) (*types.ChatResponse, error)
}

// Conversation is the assistant chat screen.
type Conversation struct {
	api       Chatter
	orchardID int
	now       func() time.Time

	mu       sync.Mutex
	messages []types.ChatMessage
	pending  int
	closed   bool
	err      error
}

// NewConversation starts an empty conversation, scoped to orchardID when it
// is non-zero.
func NewConversation(api Chatter, orchardID int) *Conversation {
	return &Conversation{api: api, orchardID: orchardID, now: time.Now}
}

// OrchardID returns the orchard the conversation is scoped to.
func (c *Conversation) OrchardID() int { return c.orchardID }

// Send appends the user message, asks the assistant and appends its answer.
// A message must carry text or an image. On failure the user message stays
// in the history and the error is recorded.
func (c *Conversation) Send(ctx context.Context, message string, image *client.File) (*types.ChatResponse, error) {
	hasImage := image != nil && !image.Empty()
	if strings.TrimSpace(message) == "" && !hasImage {
		return nil, &client.ValidationError{Field: client.FieldMessage, Message: "enter a message or attach an image"}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrDiscarded
	}
	c.messages = append(c.messages, types.ChatMessage{Role: types.RoleUser, Content: message, Timestamp: c.stamp()})
	c.pending++
	c.err = nil
	c.mu.Unlock()

	resp, err := c.api.Chat(ctx, client.ChatRequest{Message: message, OrchardID: c.orchardID, Image: image})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending--
	if c.closed {
		return nil, ErrDiscarded
	}
	if err == nil && resp == nil {
		err = &client.APIError{Kind: client.ErrMalformedResponse, Method: http.MethodPost, Path: "/api/chat/"}
	}
	if err != nil {
		c.err = err
		return nil, err
	}
	c.messages = append(c.messages, types.ChatMessage{Role: types.RoleAssistant, Content: resp.Answer, Timestamp: c.stamp()})
	if resp.AgenticAction != "" {
		c.messages = append(c.messages, types.ChatMessage{Role: types.RoleSystem, Content: resp.AgenticAction, Timestamp: c.stamp()})
	}
	return resp, nil
}

func (c *Conversation) stamp() string {
	return c.now().UTC().Format(time.RFC3339)
}

// Messages returns a copy of the history.
func (c *Conversation) Messages() []types.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.ChatMessage(nil), c.messages...)
}

// Busy reports whether a message is awaiting its answer.
func (c *Conversation) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending > 0
}

// Err returns the error of the last failed send, cleared by the next send.
func (c *Conversation) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close drops answers still in flight.
func (c *Conversation) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

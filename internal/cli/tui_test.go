package cli

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/orchard/internal/view"
	"github.com/mesh-intelligence/orchard/pkg/client"
	"github.com/mesh-intelligence/orchard/pkg/types"
)

type sent struct {
	message string
	image   *client.File
}

type fakeSession struct {
	mu       sync.Mutex
	orchard  int
	err      error
	sent     []sent
	messages []types.ChatMessage
}

func (f *fakeSession) Send(_ context.Context, message string, image *client.File) (*types.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{message: message, image: image})
	f.messages = append(f.messages, types.ChatMessage{Role: types.RoleUser, Content: message})
	if f.err != nil {
		return nil, f.err
	}
	resp := &types.ChatResponse{Answer: "answer to " + message}
	f.messages = append(f.messages, types.ChatMessage{Role: types.RoleAssistant, Content: resp.Answer})
	return resp, nil
}

func (f *fakeSession) Messages() []types.ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.ChatMessage(nil), f.messages...)
}

func (f *fakeSession) OrchardID() int { return f.orchard }

func update(t *testing.T, m chatModel, msg tea.Msg) (chatModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	cm, ok := next.(chatModel)
	require.True(t, ok)
	return cm, cmd
}

func typeLine(t *testing.T, m chatModel, text string) (chatModel, tea.Cmd) {
	t.Helper()
	m.input.SetValue(text)
	return update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

// reply runs the send command carried by a batch and returns its result.
func reply(t *testing.T, cmd tea.Cmd) replyMsg {
	t.Helper()
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	for _, c := range batch {
		if c == nil {
			continue
		}
		if r, ok := c().(replyMsg); ok {
			return r
		}
	}
	t.Fatal("no reply in batch")
	return replyMsg{}
}

func sized(t *testing.T, conv chatSession) chatModel {
	t.Helper()
	m, _ := update(t, newChatModel(context.Background(), conv), tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func TestChatModel_SendAndReply(t *testing.T) {
	conv := &fakeSession{orchard: 3}
	m := sized(t, conv)
	assert.Contains(t, m.View(), "Orchard Assistant - orchard 3")

	m, cmd := typeLine(t, m, "is row 3 ok?")
	assert.True(t, m.waiting)
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.View(), "Thinking...")

	m, _ = update(t, m, reply(t, cmd))
	assert.False(t, m.waiting)
	assert.Empty(t, m.err)
	require.Len(t, conv.sent, 1)
	assert.Equal(t, "is row 3 ok?", conv.sent[0].message)
	assert.Contains(t, m.renderHistory(), "answer to is row 3 ok?")
}

func TestChatModel_IgnoresEmptyAndBusyInput(t *testing.T) {
	conv := &fakeSession{}
	m := sized(t, conv)

	m, cmd := typeLine(t, m, "   ")
	assert.Nil(t, cmd)
	assert.False(t, m.waiting)

	m, _ = typeLine(t, m, "first")
	_, cmd = typeLine(t, m, "second")
	assert.Nil(t, cmd, "enter is ignored while a reply is pending")
}

func TestChatModel_AttachImage(t *testing.T) {
	conv := &fakeSession{}
	m := sized(t, conv)
	path := writeLeaf(t, "leaf.jpg")

	m, cmd := typeLine(t, m, "/image "+path)
	assert.Nil(t, cmd)
	require.NotNil(t, m.image)
	assert.Equal(t, "Attached leaf.jpg", m.status)

	m, cmd = typeLine(t, m, "")
	assert.NotNil(t, m.image, "the image stays attached until the reply")
	m, _ = update(t, m, reply(t, cmd))
	assert.Nil(t, m.image)
	assert.Empty(t, m.status)
	require.Len(t, conv.sent, 1)
	require.NotNil(t, conv.sent[0].image)
	assert.Equal(t, "leaf.jpg", conv.sent[0].image.Name)

	m, _ = typeLine(t, m, "/image "+filepath.Join(t.TempDir(), "missing.jpg"))
	assert.Nil(t, m.image)
	assert.NotEmpty(t, m.err)
}

func TestChatModel_FailedSendKeepsImage(t *testing.T) {
	conv := &fakeSession{err: &client.APIError{Kind: client.ErrRequestFailed, StatusCode: 502}}
	m := sized(t, conv)

	m, _ = typeLine(t, m, "/image "+writeLeaf(t, "leaf.jpg"))
	m, cmd := typeLine(t, m, "what is this?")
	m, _ = update(t, m, reply(t, cmd))
	assert.Equal(t, view.MsgChatFailed, m.err)
	require.NotNil(t, m.image)
	assert.Equal(t, "leaf.jpg", m.image.Name)

	conv.err = nil
	m, cmd = typeLine(t, m, "what is this?")
	m, _ = update(t, m, reply(t, cmd))
	assert.Nil(t, m.image)
	require.Len(t, conv.sent, 2)
	require.NotNil(t, conv.sent[1].image, "the retry resends the image")
	assert.Equal(t, "leaf.jpg", conv.sent[1].image.Name)
}

func TestChatModel_Detach(t *testing.T) {
	m := sized(t, &fakeSession{})
	m, _ = typeLine(t, m, "/image "+writeLeaf(t, "leaf.jpg"))
	m, _ = typeLine(t, m, "/detach")
	assert.Nil(t, m.image)
	assert.Empty(t, m.status)
}

func TestChatModel_FailureShowsFallback(t *testing.T) {
	conv := &fakeSession{err: &client.APIError{Kind: client.ErrRequestFailed, StatusCode: 500}}
	m := sized(t, conv)

	m, cmd := typeLine(t, m, "hello")
	m, _ = update(t, m, reply(t, cmd))
	assert.Equal(t, view.MsgChatFailed, m.err)
	assert.False(t, m.expired)
}

func TestChatModel_ExpiredSessionQuits(t *testing.T) {
	conv := &fakeSession{err: &client.APIError{Kind: client.ErrAuthExpired, StatusCode: 401}}
	m := sized(t, conv)

	m, cmd := typeLine(t, m, "hello")
	m, cmd = update(t, m, reply(t, cmd))
	assert.True(t, m.expired)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestChatModel_QuitKeys(t *testing.T) {
	m := sized(t, &fakeSession{})
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	_, cmd = typeLine(t, m, "/quit")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestChatModel_ViewBeforeSize(t *testing.T) {
	m := newChatModel(context.Background(), &fakeSession{})
	assert.Equal(t, "Loading...", m.View())
}

package view

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/orchard/internal/backendtest"
	"github.com/mesh-intelligence/orchard/pkg/client"
	"github.com/mesh-intelligence/orchard/pkg/types"
)

func leaf() client.File {
	return client.File{Name: "leaf.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff, 0xe0, 1, 2, 3}}
}

func TestPrediction_Submit(t *testing.T) {
	srv, c := newBackend(t)
	p := NewPrediction(c)

	err := p.Submit(context.Background(), client.File{})
	require.ErrorIs(t, err, client.ErrValidation)
	assert.Equal(t, "please select an image first", client.Message(err, MsgPredictionFailed))
	assert.Empty(t, srv.Requests())
	status, _, _ := p.Snapshot()
	assert.Equal(t, StatusIdle, status)

	require.NoError(t, p.Submit(context.Background(), leaf()))
	assert.Equal(t, srv.Prediction, *p.Data())
}

func TestPrediction_FailureKeepsFallback(t *testing.T) {
	srv, c := newBackend(t)
	srv.Fail(http.MethodPost, "/api/predict/", http.StatusInternalServerError, "")
	p := NewPrediction(c)

	err := p.Submit(context.Background(), leaf())
	require.ErrorIs(t, err, client.ErrRequestFailed)
	assert.Equal(t, MsgPredictionFailed, client.Message(p.Err(), MsgPredictionFailed))
}

func TestAnalytics(t *testing.T) {
	srv, c := newBackend(t)
	a := NewAnalytics(c, 2)
	defer a.Close()
	ctx := context.Background()

	require.ErrorIs(t, a.AnalyzeNDVI(ctx, client.File{}), client.ErrValidation)
	require.NoError(t, a.AnalyzeNDVI(ctx, leaf()))
	assert.Equal(t, srv.NDVI, *a.NDVI.Data())

	require.NoError(t, a.DetectAnomalies(ctx, 0))
	assert.Equal(t, "30", srv.Last().Query.Get("days_back"))
	assert.Equal(t, "2", srv.Last().Query.Get("orchard_id"))
	assert.Equal(t, "Last 30 days", a.Anomalies.Data().Period)

	require.NoError(t, a.DetectAnomalies(ctx, 90))
	assert.Equal(t, "90", srv.Last().Query.Get("days_back"))

	require.NoError(t, a.LoadTrends(ctx, 0))
	assert.Equal(t, "6", srv.Last().Query.Get("months_back"))
	require.NoError(t, a.LoadTrends(ctx, 12))
	assert.Equal(t, "Last 12 months", a.Trends.Data().TrendAnalysis.Period)

	n := len(srv.Requests())
	assert.ErrorIs(t, a.DetectAnomalies(ctx, 14), client.ErrValidation)
	assert.ErrorIs(t, a.LoadTrends(ctx, 5), client.ErrValidation)
	assert.Len(t, srv.Requests(), n)
}

func TestAnalytics_ScreensFailIndependently(t *testing.T) {
	srv, c := newBackend(t)
	srv.Fail(http.MethodGet, "/api/health-trends/", http.StatusServiceUnavailable, `{"message":"trend engine offline"}`)
	a := NewAnalytics(c, 0)
	ctx := context.Background()

	require.NoError(t, a.DetectAnomalies(ctx, 7))
	require.Error(t, a.LoadTrends(ctx, 3))

	assert.NoError(t, a.Anomalies.Err())
	assert.Equal(t, "trend engine offline", client.Message(a.Trends.Err(), MsgTrendsFailed))
	assert.False(t, srv.Last().Query.Has("orchard_id"))
}

func TestConversation_Send(t *testing.T) {
	srv, c := newBackend(t)
	srv.Canned(func(s *backendtest.Server) { s.ChatAction = "" })
	conv := NewConversation(c, 4)
	ctx := context.Background()

	_, err := conv.Send(ctx, "  ", nil)
	require.ErrorIs(t, err, client.ErrValidation)
	assert.Empty(t, conv.Messages())
	assert.Empty(t, srv.Requests())

	resp, err := conv.Send(ctx, "how are the trees?", nil)
	require.NoError(t, err)
	assert.Equal(t, "You asked: how are the trees?", resp.Answer)
	assert.Equal(t, []string{"4"}, srv.Last().Fields[client.FieldOrchardID])

	img := leaf()
	_, err = conv.Send(ctx, "", &img)
	require.NoError(t, err, "an image alone can be sent")

	msgs := conv.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, types.RoleUser, msgs[0].Role)
	assert.Equal(t, "how are the trees?", msgs[0].Content)
	assert.NotEmpty(t, msgs[0].Timestamp)
	assert.Equal(t, types.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "You asked:  (with image)", msgs[3].Content)
	assert.False(t, conv.Busy())
}

func TestConversation_AgenticActionIsRecorded(t *testing.T) {
	srv, c := newBackend(t)
	srv.Canned(func(s *backendtest.Server) { s.ChatAction = "Scheduled a scan for tree 7" })
	conv := NewConversation(c, 0)

	_, err := conv.Send(context.Background(), "scan tree 7", nil)
	require.NoError(t, err)

	msgs := conv.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, types.RoleSystem, msgs[2].Role)
	assert.Equal(t, "Scheduled a scan for tree 7", msgs[2].Content)
}

func TestConversation_FailureKeepsUserMessage(t *testing.T) {
	srv, c := newBackend(t)
	srv.Fail(http.MethodPost, "/api/chat/", http.StatusBadGateway, `{"error":"assistant unavailable"}`)
	conv := NewConversation(c, 0)

	_, err := conv.Send(context.Background(), "hello", nil)
	require.ErrorIs(t, err, client.ErrRequestFailed)

	msgs := conv.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, "assistant unavailable", client.Message(conv.Err(), MsgChatFailed))

	srv.Recover(http.MethodPost, "/api/chat/")
	_, err = conv.Send(context.Background(), "again", nil)
	require.NoError(t, err)
	assert.NoError(t, conv.Err())
}

func TestConversation_CloseDropsLateAnswer(t *testing.T) {
	srv, c := newBackend(t)
	release := srv.Block(http.MethodPost, "/api/chat/")
	conv := NewConversation(c, 0)

	done := make(chan error, 1)
	go func() {
		_, err := conv.Send(context.Background(), "slow", nil)
		done <- err
	}()

	require.Eventually(t, conv.Busy, testWait, testTick)
	conv.Close()
	release()

	assert.ErrorIs(t, <-done, ErrDiscarded)
	assert.Len(t, conv.Messages(), 1)

	_, err := conv.Send(context.Background(), "after close", nil)
	assert.ErrorIs(t, err, ErrDiscarded)
}

type silentChatter struct{}

func (silentChatter) Chat(context.Context, client.ChatRequest) (*types.ChatResponse, error) {
	return nil, nil
}

func TestConversation_NoReplyIsAnError(t *testing.T) {
	conv := NewConversation(silentChatter{}, 0)
	defer conv.Close()

	resp, err := conv.Send(context.Background(), "hello", nil)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, client.ErrMalformedResponse)
	assert.ErrorIs(t, conv.Err(), client.ErrMalformedResponse)
	require.Len(t, conv.Messages(), 1)
	assert.Equal(t, types.RoleUser, conv.Messages()[0].Role)
}

func TestConversation_EmptyBackendReply(t *testing.T) {
	srv, c := newBackend(t)
	srv.Fail(http.MethodPost, "/api/chat/", http.StatusOK, "")
	conv := NewConversation(c, 0)
	defer conv.Close()

	_, err := conv.Send(context.Background(), "hello", nil)
	assert.ErrorIs(t, err, client.ErrMalformedResponse)
	assert.Len(t, conv.Messages(), 1)
}

package client

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/orchard/internal/backendtest"
	"github.com/mesh-intelligence/orchard/pkg/session"
	"github.com/mesh-intelligence/orchard/pkg/types"
)

func loggedIn(t *testing.T) (*backendtest.Server, *Client) {
	t.Helper()
	srv := backendtest.New(t)
	return srv, newTestClient(t, srv.URL, session.NewMemory(srv.IssueToken("alice")))
}

func jpeg(size int) File {
	data := bytes.Repeat([]byte{0x42}, size)
	copy(data, []byte{0xff, 0xd8, 0xff, 0xe0})
	return File{Name: "leaf.jpg", ContentType: "image/jpeg", Data: data}
}

func TestPredict_SendsMultipartAndKeepsResultVerbatim(t *testing.T) {
	srv, c := loggedIn(t)
	want := types.PredictionResult{
		Prediction: types.DiseaseAppleScab,
		Confidence: 0.87,
		ClassNames: []string{"apple_scab", "black_rot", "cedar_apple_rust", "healthy"},
		ImageURL:   "/media/predictions/a.jpg",
	}
	srv.Canned(func(s *backendtest.Server) { s.Prediction = want })

	got, err := c.Predict(context.Background(), jpeg(2<<20))
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	rec := srv.Last()
	assert.Equal(t, "/api/predict/", rec.Path)
	assert.Contains(t, rec.ContentType, "multipart/form-data")
	assert.Nil(t, rec.JSON)
	require.Len(t, rec.Files[FieldImage], 1)
	assert.Equal(t, "leaf.jpg", rec.Files[FieldImage][0].Filename)
	assert.Equal(t, "image/jpeg", rec.Files[FieldImage][0].ContentType)
	assert.Equal(t, 2<<20, rec.Files[FieldImage][0].Size)
}

func TestUploads_RejectMissingImageWithoutRequest(t *testing.T) {
	srv, c := loggedIn(t)
	ctx := context.Background()

	_, err := c.Predict(ctx, File{})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = c.AnalyzeNDVI(ctx, File{Name: "empty.jpg"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = c.UploadScannedImage(ctx, 1, File{})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = c.BulkUpload(ctx, 1, nil)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = c.BulkUpload(ctx, 1, []File{jpeg(10), {Name: "blank.jpg"}})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = c.Chat(ctx, ChatRequest{Message: "   "})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = c.BulkCreateTrees(ctx, nil)
	assert.ErrorIs(t, err, ErrValidation)

	assert.Empty(t, srv.Requests())

	_, err = c.Predict(ctx, File{})
	assert.Equal(t, "please select an image first", Message(err, ""))
}

func TestAnalyzeNDVI(t *testing.T) {
	srv, c := loggedIn(t)

	got, err := c.AnalyzeNDVI(context.Background(), jpeg(64))
	require.NoError(t, err)
	assert.Equal(t, srv.NDVI, *got)
	assert.Equal(t, "/api/ndvi-analysis/", srv.Last().Path)
	assert.Len(t, srv.Last().Files[FieldImage], 1)
}

func TestUploadScannedImage_SendsTreeField(t *testing.T) {
	srv, c := loggedIn(t)

	img, err := c.UploadScannedImage(context.Background(), 7, jpeg(128))
	require.NoError(t, err)
	assert.Equal(t, 7, img.Tree)
	assert.NotZero(t, img.ID)

	rec := srv.Last()
	assert.Equal(t, []string{"7"}, rec.Fields[FieldTree])
	assert.Len(t, rec.Files[FieldImage], 1)
}

func TestBulkUpload_RepeatsImagesPart(t *testing.T) {
	srv, c := loggedIn(t)

	a, b := jpeg(32), jpeg(48)
	b.Name = "leaf2.jpg"
	res, err := c.BulkUpload(context.Background(), 3, []File{a, b})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Uploaded)
	assert.EqualValues(t, 3, res.Raw["tree"])

	rec := srv.Last()
	assert.Equal(t, "/api/bulk-upload/", rec.Path)
	require.Len(t, rec.Files[FieldImages], 2)
	assert.Equal(t, "leaf.jpg", rec.Files[FieldImages][0].Filename)
	assert.Equal(t, "leaf2.jpg", rec.Files[FieldImages][1].Filename)
	assert.Equal(t, []string{"3"}, rec.Fields[FieldTree])
	assert.Empty(t, rec.Files[FieldImage])
}

func TestChat_FormFields(t *testing.T) {
	srv, c := loggedIn(t)
	img := jpeg(16)

	resp, err := c.Chat(context.Background(), ChatRequest{Message: "is this scab?", OrchardID: 4, Image: &img})
	require.NoError(t, err)
	assert.Equal(t, "You asked: is this scab? (with image)", resp.Answer)

	rec := srv.Last()
	assert.Equal(t, []string{"is this scab?"}, rec.Fields[FieldMessage])
	assert.Equal(t, []string{"4"}, rec.Fields[FieldOrchardID])
	assert.Len(t, rec.Files[FieldImage], 1)

	_, err = c.Chat(context.Background(), ChatRequest{Image: &img})
	require.NoError(t, err, "an image alone is a valid message")
	_, err = c.Chat(context.Background(), ChatRequest{Message: "hello"})
	require.NoError(t, err)
	assert.Empty(t, srv.Last().Fields[FieldOrchardID])
}

func TestAnalytics_QueryParameters(t *testing.T) {
	srv, c := loggedIn(t)
	ctx := context.Background()

	an, err := c.DetectAnomalies(ctx, AnomalyQuery{OrchardID: 2, DaysBack: 7})
	require.NoError(t, err)
	assert.Equal(t, "Last 7 days", an.Period)
	assert.Equal(t, "2", srv.Last().Query.Get("orchard_id"))
	assert.Equal(t, "7", srv.Last().Query.Get("days_back"))

	tr, err := c.HealthTrends(ctx, TrendsQuery{MonthsBack: 12})
	require.NoError(t, err)
	assert.Equal(t, "Last 12 months", tr.TrendAnalysis.Period)
	assert.False(t, srv.Last().Query.Has("orchard_id"))

	rep, err := c.GenerateReport(ctx, ReportQuery{Type: types.ReportTypeTrends})
	require.NoError(t, err)
	assert.Equal(t, types.ReportTypeTrends, rep.ReportInfo.ReportType)
	assert.Equal(t, "trends", srv.Last().Query.Get("type"))

	_, err = c.GenerateReport(ctx, ReportQuery{})
	require.NoError(t, err)
	assert.Empty(t, srv.Last().Query)
}

func TestOrchards_CRUD(t *testing.T) {
	srv, c := loggedIn(t)
	ctx := context.Background()

	created, err := c.CreateOrchard(ctx, types.Orchard{Name: "North", Location: "Hill", Size: 2.5})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "application/json", srv.Last().ContentType)
	assert.JSONEq(t, `"North"`, string(mustField(t, srv.Last().JSON, "name")))

	list, err := c.ListOrchards(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	created.Name = "North Block"
	updated, err := c.UpdateOrchard(ctx, created.ID, *created)
	require.NoError(t, err)
	assert.Equal(t, "North Block", updated.Name)
	assert.Equal(t, http.MethodPut, srv.Last().Method)

	got, err := c.GetOrchard(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "North Block", got.Name)

	require.NoError(t, c.DeleteOrchard(ctx, created.ID))
	_, err = c.GetOrchard(ctx, created.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Not found.", apiErr.Message(""))
}

func TestTreesAndHealth(t *testing.T) {
	srv, c := loggedIn(t)
	ctx := context.Background()

	res, err := c.BulkCreateTrees(ctx, []types.Tree{{Name: "A1", Orchard: 1}, {Name: "A2", Orchard: 1}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res["created"])
	assert.Len(t, srv.Trees(), 2)

	tree, err := c.GetTree(ctx, srv.Trees()[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "A1", tree.Name)

	h, err := c.CreateTreeHealth(ctx, types.TreeHealth{Tree: tree.ID, HealthStatus: types.HealthDiseaseDetected, SeverityLevel: types.SeverityMedium})
	require.NoError(t, err)
	records, err := c.ListTreeHealth(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, h.ID, records[0].ID)
	assert.False(t, records[0].IsHealthy())
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.jpg")
	require.NoError(t, os.WriteFile(path, jpeg(512).Data, 0o600))

	f, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "scan.jpg", f.Name)
	assert.Equal(t, "image/jpeg", f.ContentType)
	assert.Len(t, f.Data, 512)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.jpg"))
	assert.Error(t, err)
}

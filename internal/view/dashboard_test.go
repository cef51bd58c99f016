package view

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/orchard/internal/backendtest"
	"github.com/mesh-intelligence/orchard/pkg/client"
	"github.com/mesh-intelligence/orchard/pkg/session"
	"github.com/mesh-intelligence/orchard/pkg/types"
)

func newBackend(t *testing.T) (*backendtest.Server, *client.Client) {
	t.Helper()
	srv := backendtest.New(t)
	c, err := client.New(srv.URL, session.NewMemory(srv.IssueToken("alice")),
		client.WithHTTPClient(&http.Client{Transport: &http.Transport{DisableKeepAlives: true}}))
	require.NoError(t, err)
	return srv, c
}

func seedDashboard(srv *backendtest.Server) {
	srv.AddOrchard(types.Orchard{Name: "North", Location: "Hill", Size: 4})
	srv.AddOrchard(types.Orchard{Name: "South", Location: "Valley", Size: 2})
	srv.AddOrchard(types.Orchard{Name: "East", Location: "Ridge"})

	srv.AddTree(types.Tree{Name: "Gala 1", Species: "Gala", Age: 5, Orchard: 1})
	srv.AddTree(types.Tree{Orchard: 1})
	srv.AddTree(types.Tree{Name: "Fuji 1", Species: "Fuji", Orchard: 2})

	statuses := []string{
		types.HealthHealthy, types.HealthDiseaseDetected, types.HealthNeedsAttention,
		types.HealthHealthy, types.HealthDiseaseDetected, types.HealthDiseaseDetected,
		types.HealthNeedsAttention, types.HealthDiseaseDetected,
	}
	for i, st := range statuses {
		srv.AddHealth(types.TreeHealth{Tree: i%3 + 1, HealthStatus: st, SeverityLevel: types.SeverityLow})
	}
}

func TestLoadDashboard_DerivesOverview(t *testing.T) {
	srv, c := newBackend(t)
	seedDashboard(srv)

	d, err := LoadDashboard(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, 3, d.TotalOrchards)
	assert.Equal(t, 3, d.TotalTrees)
	assert.Equal(t, 8, d.TotalHealthRecords)
	assert.Equal(t, srv.Stats.Stats.TotalAnalyses, d.TotalImages)
	assert.Equal(t, srv.Stats.Stats, d.Stats)

	require.Len(t, d.RecentOrchards, 2)
	assert.Equal(t, "North", d.RecentOrchards[0].Name)
	assert.Equal(t, "South", d.RecentOrchards[1].Name)

	require.Len(t, d.RecentTrees, 2)
	assert.Equal(t, "Gala 1", d.RecentTrees[0].Name)
	assert.Equal(t, "Tree 2", d.RecentTrees[1].Name)
	assert.Equal(t, "Unknown", d.RecentTrees[1].Species)

	require.Len(t, d.RecentImages, 1)
	assert.Equal(t, RecentImage{ID: 9, ImageURL: "leaf9.jpg", UploadedAt: "2024-05-01T09:00:00Z"}, d.RecentImages[0])

	require.Len(t, d.HealthAlerts, 5)
	for _, h := range d.HealthAlerts {
		assert.NotEqual(t, types.HealthHealthy, h.HealthStatus)
	}
	assert.Equal(t, 2, d.HealthAlerts[0].ID)
}

func TestLoadDashboard_IssuesAllFourCalls(t *testing.T) {
	srv, c := newBackend(t)

	_, err := LoadDashboard(context.Background(), c)
	require.NoError(t, err)

	paths := map[string]bool{}
	for _, r := range srv.Requests() {
		paths[r.Path] = true
	}
	assert.Equal(t, map[string]bool{
		"/api/dashboard/":   true,
		"/api/orchards/":    true,
		"/api/trees/":       true,
		"/api/tree-health/": true,
	}, paths)
}

func TestLoadDashboard_WaitsForSlowestCall(t *testing.T) {
	srv, c := newBackend(t)
	release := srv.Block(http.MethodGet, "/api/tree-health/")

	done := make(chan error, 1)
	go func() {
		_, err := LoadDashboard(context.Background(), c)
		done <- err
	}()

	require.Eventually(t, func() bool { return len(srv.Requests()) == 4 }, 2*time.Second, 5*time.Millisecond,
		"all four calls are issued before any completes")
	select {
	case <-done:
		t.Fatal("dashboard resolved before every call settled")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	require.NoError(t, <-done)
}

func TestLoadDashboard_AnyFailureFailsWhole(t *testing.T) {
	srv, c := newBackend(t)
	seedDashboard(srv)
	srv.Fail(http.MethodGet, "/api/trees/", http.StatusInternalServerError, `{"error":"db down"}`)

	d, err := LoadDashboard(context.Background(), c)
	assert.Nil(t, d, "no partial dashboard is returned")
	require.ErrorIs(t, err, client.ErrRequestFailed)
	assert.Equal(t, "db down", client.Message(err, MsgDashboardFailed))
}

func TestLoadDashboard_Empty(t *testing.T) {
	_, c := newBackend(t)

	d, err := LoadDashboard(context.Background(), c)
	require.NoError(t, err)
	assert.Zero(t, d.TotalOrchards)
	assert.Empty(t, d.RecentOrchards)
	assert.Empty(t, d.RecentTrees)
	assert.Empty(t, d.HealthAlerts)
}

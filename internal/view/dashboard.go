package view

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/orchard/pkg/types"
)

// MsgDashboardFailed is shown when any dashboard call fails.
const MsgDashboardFailed = "Failed to load dashboard data"

const (
	recentOrchardLimit = 2
	recentTreeLimit    = 2
	healthAlertLimit   = 5
)

// DashboardAPI is the part of the client the dashboard needs.
type DashboardAPI interface {
	Dashboard(ctx context.Context) (*types.DashboardStats, error)
	ListOrchards(ctx context.Context) ([]types.Orchard, error)
	ListTrees(ctx context.Context) ([]types.Tree, error)
	ListTreeHealth(ctx context.Context) ([]types.TreeHealth, error)
}

// RecentImage is a recently analyzed image as the dashboard lists it.
type RecentImage struct {
	ID         int    `json:"id"`
	ImageURL   string `json:"image_url"`
	UploadedAt string `json:"uploaded_at"`
}

// Dashboard is the overview derived from the four dashboard calls.
type Dashboard struct {
	TotalOrchards      int                `json:"total_orchards"`
	TotalTrees         int                `json:"total_trees"`
	TotalImages        int                `json:"total_images"`
	TotalHealthRecords int                `json:"total_health_records"`
	Stats              types.Stats        `json:"stats"`
	RecentOrchards     []types.Orchard    `json:"recent_orchards"`
	RecentTrees        []types.Tree       `json:"recent_trees"`
	RecentImages       []RecentImage      `json:"recent_images"`
	HealthAlerts       []types.TreeHealth `json:"health_alerts"`
}

// LoadDashboard fetches dashboard statistics, orchards, trees and health
// records concurrently. It returns once all four calls have settled; if any
// of them fails the whole dashboard fails and no partial result is returned.
func LoadDashboard(ctx context.Context, api DashboardAPI) (*Dashboard, error) {
	var (
		stats    *types.DashboardStats
		orchards []types.Orchard
		trees    []types.Tree
		health   []types.TreeHealth
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats, err = api.Dashboard(gctx)
		return err
	})
	g.Go(func() (err error) {
		orchards, err = api.ListOrchards(gctx)
		return err
	})
	g.Go(func() (err error) {
		trees, err = api.ListTrees(gctx)
		return err
	})
	g.Go(func() (err error) {
		health, err = api.ListTreeHealth(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return buildDashboard(stats, orchards, trees, health), nil
}

func buildDashboard(stats *types.DashboardStats, orchards []types.Orchard, trees []types.Tree, health []types.TreeHealth) *Dashboard {
	d := &Dashboard{
		TotalOrchards:      len(orchards),
		TotalTrees:         len(trees),
		TotalHealthRecords: len(health),
		RecentOrchards:     head(orchards, recentOrchardLimit),
		RecentTrees:        make([]types.Tree, 0, recentTreeLimit),
		RecentImages:       []RecentImage{},
		HealthAlerts:       make([]types.TreeHealth, 0, healthAlertLimit),
	}
	if stats != nil {
		d.Stats = stats.Stats
		d.TotalImages = stats.Stats.TotalAnalyses
		for _, a := range stats.RecentAnalyses {
			d.RecentImages = append(d.RecentImages, RecentImage{ID: a.ID, ImageURL: a.Filename, UploadedAt: a.Timestamp})
		}
	}

	for _, t := range head(trees, recentTreeLimit) {
		if t.Name == "" {
			t.Name = "Tree " + strconv.Itoa(t.ID)
		}
		if t.Species == "" {
			t.Species = "Unknown"
		}
		d.RecentTrees = append(d.RecentTrees, t)
	}

	for _, h := range health {
		if len(d.HealthAlerts) == healthAlertLimit {
			break
		}
		if !h.IsHealthy() {
			d.HealthAlerts = append(d.HealthAlerts, h)
		}
	}
	return d
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		s = s[:n]
	}
	return append([]T{}, s...)
}

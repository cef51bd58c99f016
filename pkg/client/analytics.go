package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mesh-intelligence/orchard/pkg/types"
)

// AnomalyQuery selects the records scanned for anomalies. A zero OrchardID
// covers all orchards; a zero DaysBack lets the backend pick the window.
type AnomalyQuery struct {
	OrchardID int
	DaysBack  int
}

// TrendsQuery selects the window of a health-trend analysis.
type TrendsQuery struct {
	OrchardID  int
	MonthsBack int
}

// ReportQuery selects the orchard and kind of a generated report.
type ReportQuery struct {
	OrchardID int
	Type      string
}

func analyticsQuery(orchardID int, key string, n int) url.Values {
	q := url.Values{}
	if orchardID != 0 {
		q.Set(FieldOrchardID, strconv.Itoa(orchardID))
	}
	if n != 0 {
		q.Set(key, strconv.Itoa(n))
	}
	return q
}

// DetectAnomalies runs anomaly detection over recent health records.
func (c *Client) DetectAnomalies(ctx context.Context, q AnomalyQuery) (*types.AnomalyDetection, error) {
	return call[*types.AnomalyDetection](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/api/anomaly-detection/",
		Query:  analyticsQuery(q.OrchardID, "days_back", q.DaysBack),
	})
}

// HealthTrends analyzes how orchard health changed month by month.
func (c *Client) HealthTrends(ctx context.Context, q TrendsQuery) (*types.HealthTrends, error) {
	return call[*types.HealthTrends](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/api/health-trends/",
		Query:  analyticsQuery(q.OrchardID, "months_back", q.MonthsBack),
	})
}

// GenerateReport asks the backend to synthesize a health report.
func (c *Client) GenerateReport(ctx context.Context, q ReportQuery) (*types.HealthReport, error) {
	query := url.Values{}
	if q.OrchardID != 0 {
		query.Set(FieldOrchardID, strconv.Itoa(q.OrchardID))
	}
	if q.Type != "" {
		query.Set("type", q.Type)
	}
	return call[*types.HealthReport](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/api/generate-report/",
		Query:  query,
	})
}

// Dashboard returns the headline statistics and recent analyses.
func (c *Client) Dashboard(ctx context.Context) (*types.DashboardStats, error) {
	return call[*types.DashboardStats](ctx, c, Request{Method: http.MethodGet, Path: "/api/dashboard/"})
}

package view

import (
	"context"
	"fmt"
	"slices"

	"github.com/mesh-intelligence/orchard/pkg/client"
	"github.com/mesh-intelligence/orchard/pkg/types"
)

// Fallback messages for the analytics screen.
const (
	MsgNDVIFailed      = "NDVI analysis failed"
	MsgAnomaliesFailed = "Anomaly detection failed"
	MsgTrendsFailed    = "Health trends analysis failed"
)

// Windows offered for anomaly detection and trend analysis.
var (
	DaysBackOptions   = []int{7, 30, 90}
	MonthsBackOptions = []int{3, 6, 12}
)

const (
	DefaultDaysBack   = 30
	DefaultMonthsBack = 6
)

// AnalyticsAPI is the part of the client the analytics screen needs.
type AnalyticsAPI interface {
	AnalyzeNDVI(ctx context.Context, image client.File) (*types.NDVIAnalysis, error)
	DetectAnomalies(ctx context.Context, q client.AnomalyQuery) (*types.AnomalyDetection, error)
	HealthTrends(ctx context.Context, q client.TrendsQuery) (*types.HealthTrends, error)
}

// Analytics is the advanced-analytics screen: NDVI, anomaly detection and
// health trends, each with its own state. OrchardID 0 covers all orchards.
type Analytics struct {
	NDVI      Screen[*types.NDVIAnalysis]
	Anomalies Screen[*types.AnomalyDetection]
	Trends    Screen[*types.HealthTrends]

	api       AnalyticsAPI
	orchardID int
}

// NewAnalytics returns an analytics screen scoped to orchardID.
func NewAnalytics(api AnalyticsAPI, orchardID int) *Analytics {
	return &Analytics{api: api, orchardID: orchardID}
}

// AnalyzeNDVI computes vegetation-index statistics for image.
func (a *Analytics) AnalyzeNDVI(ctx context.Context, image client.File) error {
	if image.Empty() {
		return client.NoImageError()
	}
	return a.NDVI.Load(ctx, func(ctx context.Context) (*types.NDVIAnalysis, error) {
		return a.api.AnalyzeNDVI(ctx, image)
	})
}

// DetectAnomalies scans the last daysBack days. Zero selects
// DefaultDaysBack.
func (a *Analytics) DetectAnomalies(ctx context.Context, daysBack int) error {
	daysBack, err := pickWindow("days back", daysBack, DefaultDaysBack, DaysBackOptions)
	if err != nil {
		return err
	}
	return a.Anomalies.Load(ctx, func(ctx context.Context) (*types.AnomalyDetection, error) {
		return a.api.DetectAnomalies(ctx, client.AnomalyQuery{OrchardID: a.orchardID, DaysBack: daysBack})
	})
}

// LoadTrends analyzes the last monthsBack months. Zero selects
// DefaultMonthsBack.
func (a *Analytics) LoadTrends(ctx context.Context, monthsBack int) error {
	monthsBack, err := pickWindow("months back", monthsBack, DefaultMonthsBack, MonthsBackOptions)
	if err != nil {
		return err
	}
	return a.Trends.Load(ctx, func(ctx context.Context) (*types.HealthTrends, error) {
		return a.api.HealthTrends(ctx, client.TrendsQuery{OrchardID: a.orchardID, MonthsBack: monthsBack})
	})
}

// Close drops every result still in flight.
func (a *Analytics) Close() {
	a.NDVI.Close()
	a.Anomalies.Close()
	a.Trends.Close()
}

func pickWindow(field string, n, def int, options []int) (int, error) {
	if n == 0 {
		return def, nil
	}
	if !slices.Contains(options, n) {
		return 0, &client.ValidationError{Field: field, Message: fmt.Sprintf("must be one of %v", options)}
	}
	return n, nil
}

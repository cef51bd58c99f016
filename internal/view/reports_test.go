package view

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/orchard/pkg/client"
	"github.com/mesh-intelligence/orchard/pkg/types"
)

func TestReports_Generate(t *testing.T) {
	srv, c := newBackend(t)
	r := NewReports(c)

	require.NoError(t, r.Generate(context.Background(), 0, ""))
	assert.Equal(t, types.ReportTypeComprehensive, srv.Last().Query.Get("type"))
	assert.Equal(t, types.ReportTypeComprehensive, r.Data().ReportInfo.ReportType)

	require.NoError(t, r.Generate(context.Background(), 3, types.ReportTypeSummary))
	assert.Equal(t, "3", srv.Last().Query.Get("orchard_id"))
	assert.Equal(t, types.ReportTypeSummary, r.Data().ReportInfo.ReportType)

	n := len(srv.Requests())
	err := r.Generate(context.Background(), 0, "weekly")
	assert.ErrorIs(t, err, client.ErrValidation)
	assert.Len(t, srv.Requests(), n)
}

func TestReportText(t *testing.T) {
	rep := &types.HealthReport{
		ReportInfo: types.ReportInfo{
			GeneratedAt: "2024-05-01T12:00:00Z",
			ReportType:  types.ReportTypeComprehensive,
			Orchard:     types.ReportOrchard{Name: "North", Location: "Hill"},
		},
		Summary: types.ReportSummary{
			TotalTrees: 12, TotalHealthRecords: 30, TotalImagesAnalyzed: 55,
			RecentActivity: types.RecentActivity{HealthRecordsLast30Days: 8, ImagesAnalyzedLast30Days: 14},
		},
		HealthAnalysis: types.HealthAnalysis{
			HealthDistribution: map[string]int{"healthy": 20, "disease_detected": 10},
			DiseaseAnalysis: map[string]types.DiseaseStats{
				"black_rot":  {Count: 4, AvgConfidence: 0.9},
				"apple_scab": {Count: 6, AvgConfidence: 0.8423},
			},
			OverallHealthScore: 66.7,
		},
		Recommendations: []types.Recommendation{
			{Priority: "high", Recommendation: "Apply fungicide to rows 3-5"},
			{Priority: "Low", Recommendation: "Rescan in two weeks"},
		},
	}

	want := `ORCHARD HEALTH REPORT
Generated: 2024-05-01 12:00:00
Orchard: North
Location: Hill
Report Type: comprehensive

SUMMARY
Total Trees: 12
Total Health Records: 30
Total Images Analyzed: 55
Recent Activity (30 days):
- Health Records: 8
- Images Analyzed: 14

HEALTH ANALYSIS
Overall Health Score: 66.7%

Health Distribution:
- disease_detected: 10
- healthy: 20

Disease Analysis:
- apple_scab: 6 cases, 84.2% avg confidence
- black_rot: 4 cases, 90.0% avg confidence

RECOMMENDATIONS
1. [HIGH] Apply fungicide to rows 3-5
2. [LOW] Rescan in two weeks
`
	assert.Equal(t, want, ReportText(rep, time.UTC))
}

func TestReportText_UnparsableTimestampIsKept(t *testing.T) {
	rep := &types.HealthReport{ReportInfo: types.ReportInfo{GeneratedAt: "yesterday"}}
	assert.Contains(t, ReportText(rep, time.UTC), "Generated: yesterday\n")
}

func TestReportFilename(t *testing.T) {
	at := time.Date(2024, 5, 1, 23, 30, 0, 0, time.FixedZone("X", -3*3600))
	assert.Equal(t, "orchard-report-2024-05-02.txt", ReportFilename(at))
}

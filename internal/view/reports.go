package view

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mesh-intelligence/orchard/pkg/client"
	"github.com/mesh-intelligence/orchard/pkg/types"
)

// MsgReportFailed is shown when report generation fails without a backend
// message.
const MsgReportFailed = "Failed to generate report"

// ReportTypes lists the report kinds the backend produces.
var ReportTypes = []string{types.ReportTypeComprehensive, types.ReportTypeSummary, types.ReportTypeTrends}

// Reporter generates health reports.
type Reporter interface {
	GenerateReport(ctx context.Context, q client.ReportQuery) (*types.HealthReport, error)
}

// Reports is the report-generator screen.
type Reports struct {
	Screen[*types.HealthReport]
	api Reporter
}

// NewReports returns a report screen backed by api.
func NewReports(api Reporter) *Reports {
	return &Reports{api: api}
}

// Generate requests a report of reportType for orchardID (0 for all
// orchards). An empty reportType selects a comprehensive report.
func (r *Reports) Generate(ctx context.Context, orchardID int, reportType string) error {
	if reportType == "" {
		reportType = types.ReportTypeComprehensive
	}
	if !slices.Contains(ReportTypes, reportType) {
		return &client.ValidationError{Field: "type", Message: fmt.Sprintf("must be one of %s", strings.Join(ReportTypes, ", "))}
	}
	return r.Load(ctx, func(ctx context.Context) (*types.HealthReport, error) {
		return r.api.GenerateReport(ctx, client.ReportQuery{OrchardID: orchardID, Type: reportType})
	})
}

// ReportFilename names the downloaded report after the day it was saved.
func ReportFilename(t time.Time) string {
	return "orchard-report-" + t.UTC().Format(time.DateOnly) + ".txt"
}

// ReportText renders rep as the plain-text download. Timestamps are shown
// in loc. Map sections are listed in key order.
func ReportText(rep *types.HealthReport, loc *time.Location) string {
	var b strings.Builder
	info := rep.ReportInfo

	b.WriteString("ORCHARD HEALTH REPORT\n")
	fmt.Fprintf(&b, "Generated: %s\n", localTime(info.GeneratedAt, loc))
	fmt.Fprintf(&b, "Orchard: %s\n", info.Orchard.Name)
	fmt.Fprintf(&b, "Location: %s\n", info.Orchard.Location)
	fmt.Fprintf(&b, "Report Type: %s\n", info.ReportType)

	s := rep.Summary
	b.WriteString("\nSUMMARY\n")
	fmt.Fprintf(&b, "Total Trees: %d\n", s.TotalTrees)
	fmt.Fprintf(&b, "Total Health Records: %d\n", s.TotalHealthRecords)
	fmt.Fprintf(&b, "Total Images Analyzed: %d\n", s.TotalImagesAnalyzed)
	b.WriteString("Recent Activity (30 days):\n")
	fmt.Fprintf(&b, "- Health Records: %d\n", s.RecentActivity.HealthRecordsLast30Days)
	fmt.Fprintf(&b, "- Images Analyzed: %d\n", s.RecentActivity.ImagesAnalyzedLast30Days)

	h := rep.HealthAnalysis
	b.WriteString("\nHEALTH ANALYSIS\n")
	fmt.Fprintf(&b, "Overall Health Score: %s%%\n", strconv.FormatFloat(h.OverallHealthScore, 'f', -1, 64))

	b.WriteString("\nHealth Distribution:\n")
	for _, status := range sortedKeys(h.HealthDistribution) {
		fmt.Fprintf(&b, "- %s: %d\n", status, h.HealthDistribution[status])
	}

	b.WriteString("\nDisease Analysis:\n")
	for _, disease := range sortedKeys(h.DiseaseAnalysis) {
		d := h.DiseaseAnalysis[disease]
		fmt.Fprintf(&b, "- %s: %d cases, %.1f%% avg confidence\n", disease, d.Count, d.AvgConfidence*100)
	}

	b.WriteString("\nRECOMMENDATIONS\n")
	for i, rec := range rep.Recommendations {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, strings.ToUpper(rec.Priority), rec.Recommendation)
	}
	return b.String()
}

func localTime(raw string, loc *time.Location) string {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return raw
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(time.DateTime)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

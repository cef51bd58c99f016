package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/orchard/internal/view"
	"github.com/mesh-intelligence/orchard/pkg/types"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		orchardID  int
		reportType string
		download   bool
		outDir     string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate an orchard health report",
		Long: "Report asks the backend for a health report and renders it. With\n" +
			"--download the plain-text report is also saved as\n" +
			"orchard-report-YYYY-MM-DD.txt in --output.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := view.NewReports(a.api)
			if err := r.Generate(cmd.Context(), orchardID, reportType); err != nil {
				return withFallback(err, view.MsgReportFailed)
			}
			rep := r.Data()

			if download {
				path := filepath.Join(outDir, view.ReportFilename(a.now()))
				if err := os.WriteFile(path, []byte(view.ReportText(rep, time.Local)), 0o644); err != nil {
					return sysError(fmt.Errorf("save report: %w", err))
				}
				fmt.Fprintf(a.errOut, "Saved %s\n", path)
			}
			return a.emit(rep, func(w io.Writer) {
				fmt.Fprint(w, renderMarkdown(reportMarkdown(rep)))
			})
		},
	}
	cmd.Flags().IntVar(&orchardID, "orchard", 0, "limit to one orchard")
	cmd.Flags().StringVar(&reportType, "type", types.ReportTypeComprehensive, "report type ("+strings.Join(view.ReportTypes, ", ")+")")
	cmd.Flags().BoolVar(&download, "download", false, "also save the report as a text file")
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "directory for --download")
	return cmd
}

// reportMarkdown lays the report out for terminal rendering.
func reportMarkdown(rep *types.HealthReport) string {
	var b strings.Builder
	info := rep.ReportInfo
	fmt.Fprintf(&b, "# Orchard Health Report\n\n")
	fmt.Fprintf(&b, "**Orchard:** %s  \n**Location:** %s  \n**Type:** %s  \n**Generated:** %s\n\n",
		info.Orchard.Name, info.Orchard.Location, info.ReportType, info.GeneratedAt)

	s := rep.Summary
	b.WriteString("## Summary\n\n")
	b.WriteString("| Trees | Health records | Images analyzed | Records (30d) | Images (30d) |\n")
	b.WriteString("|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %d |\n\n", s.TotalTrees, s.TotalHealthRecords, s.TotalImagesAnalyzed,
		s.RecentActivity.HealthRecordsLast30Days, s.RecentActivity.ImagesAnalyzedLast30Days)

	h := rep.HealthAnalysis
	b.WriteString("## Health Analysis\n\n")
	fmt.Fprintf(&b, "Overall health score: **%s%%**\n\n", strconv.FormatFloat(h.OverallHealthScore, 'f', -1, 64))
	if len(h.HealthDistribution) > 0 {
		b.WriteString("| Status | Count |\n|---|---|\n")
		for _, k := range sortedKeys(h.HealthDistribution) {
			fmt.Fprintf(&b, "| %s | %d |\n", k, h.HealthDistribution[k])
		}
		b.WriteString("\n")
	}
	if len(h.DiseaseAnalysis) > 0 {
		b.WriteString("| Disease | Cases | Avg confidence |\n|---|---|---|\n")
		for _, k := range sortedKeys(h.DiseaseAnalysis) {
			d := h.DiseaseAnalysis[k]
			fmt.Fprintf(&b, "| %s | %d | %s |\n", view.DiseaseName(k), d.Count, percent(d.AvgConfidence))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Recommendations\n\n")
	if len(rep.Recommendations) == 0 {
		b.WriteString("_No recommendations._\n")
	}
	for i, rec := range rep.Recommendations {
		fmt.Fprintf(&b, "%d. **[%s]** %s", i+1, strings.ToUpper(rec.Priority), rec.Recommendation)
		if rec.Category != "" {
			fmt.Fprintf(&b, " _(%s)_", rec.Category)
		}
		b.WriteString("\n")
	}
	return b.String()
}

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/orchard/internal/view"
	"github.com/mesh-intelligence/orchard/pkg/client"
	"github.com/mesh-intelligence/orchard/pkg/types"
)

func newPredictCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "predict <image>",
		Short: "Classify the disease on a leaf image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := client.ReadFile(args[0])
			if err != nil {
				return err
			}
			p := view.NewPrediction(a.api)
			if err := p.Submit(cmd.Context(), f); err != nil {
				return withFallback(err, view.MsgPredictionFailed)
			}
			res := p.Data()
			return a.emit(res, func(w io.Writer) { printPrediction(w, res) })
		},
	}
}

func printPrediction(w io.Writer, res *types.PredictionResult) {
	heading(w, "Prediction")
	field(w, "Result:", badge(view.DiseaseTone(res.Prediction), view.DiseaseName(res.Prediction)))
	field(w, "Confidence:", percent(res.Confidence))
	names := make([]string, 0, len(res.ClassNames))
	for _, n := range res.ClassNames {
		names = append(names, view.DiseaseName(n))
	}
	field(w, "Classes:", strings.Join(names, ", "))
	if res.ImageURL != "" {
		field(w, "Image:", res.ImageURL)
	}
}

func newNDVICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ndvi <image>",
		Short: "Compute vegetation-index statistics for an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := client.ReadFile(args[0])
			if err != nil {
				return err
			}
			an := view.NewAnalytics(a.api, 0)
			if err := an.AnalyzeNDVI(cmd.Context(), f); err != nil {
				return withFallback(err, view.MsgNDVIFailed)
			}
			res := an.NDVI.Data()
			return a.emit(res, func(w io.Writer) {
				heading(w, "NDVI Analysis")
				s := res.NDVIStatistics
				field(w, "Mean:", fmt.Sprintf("%.3f", s.Mean))
				field(w, "Std deviation:", fmt.Sprintf("%.3f", s.Std))
				field(w, "Min:", fmt.Sprintf("%.3f", s.Min))
				field(w, "Max:", fmt.Sprintf("%.3f", s.Max))
				field(w, "Assessment:", colored(view.HealthColor(res.HealthAssessment), res.HealthAssessment))
				if res.Message != "" {
					fmt.Fprintln(w, dimStyle.Render(res.Message))
				}
			})
		},
	}
}

func newAnomaliesCmd(a *app) *cobra.Command {
	var orchardID, days int
	cmd := &cobra.Command{
		Use:   "anomalies",
		Short: "Detect unusual health patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			an := view.NewAnalytics(a.api, orchardID)
			if err := an.DetectAnomalies(cmd.Context(), days); err != nil {
				return withFallback(err, view.MsgAnomaliesFailed)
			}
			res := an.Anomalies.Data()
			return a.emit(res, func(w io.Writer) {
				s := res.AnomalyAnalysis
				heading(w, "Anomaly Detection")
				field(w, "Period:", res.Period)
				field(w, "Records:", s.TotalRecords)
				field(w, "Healthy:", s.HealthyCount)
				field(w, "Diseased:", s.DiseasedCount)
				field(w, "Disease rate:", fmt.Sprintf("%.1f%%", s.DiseaseRate))
				field(w, "Anomalies:", s.AnomaliesDetected)
				renderTable(w, []string{"Severity", "Type", "Description", "Value"}, rows(s.Anomalies, func(an types.Anomaly) []string {
					return []string{colored(view.SeverityColor(an.Severity), an.Severity), an.Type, an.Description, fmt.Sprintf("%.2f", an.Value)}
				}))
			})
		},
	}
	cmd.Flags().IntVar(&orchardID, "orchard", 0, "limit to one orchard")
	cmd.Flags().IntVar(&days, "days", view.DefaultDaysBack, fmt.Sprintf("days to look back (%s)", joinInts(view.DaysBackOptions)))
	return cmd
}

func newTrendsCmd(a *app) *cobra.Command {
	var orchardID, months int
	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Show month-by-month health trends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			an := view.NewAnalytics(a.api, orchardID)
			if err := an.LoadTrends(cmd.Context(), months); err != nil {
				return withFallback(err, view.MsgTrendsFailed)
			}
			res := an.Trends.Data()
			return a.emit(res, func(w io.Writer) {
				t := res.TrendAnalysis
				heading(w, "Health Trends")
				field(w, "Period:", t.Period)
				field(w, "Records:", t.TotalRecords)
				field(w, "Direction:", t.TrendDirection)
				field(w, "Magnitude:", fmt.Sprintf("%.1f", t.TrendMagnitude))
				renderTable(w,
					[]string{"Month", "Records", "Healthy", "Apple Scab", "Black Rot", "Cedar Rust", "Stressed", "Disease rate"},
					rows(t.MonthlyTrends, func(m types.MonthlyTrend) []string {
						return []string{
							m.Month, itoa(m.TotalRecords), itoa(m.Healthy), itoa(m.AppleScab),
							itoa(m.BlackRot), itoa(m.CedarAppleRust), itoa(m.Stressed),
							fmt.Sprintf("%.1f%%", m.DiseaseRate),
						}
					}))
			})
		},
	}
	cmd.Flags().IntVar(&orchardID, "orchard", 0, "limit to one orchard")
	cmd.Flags().IntVar(&months, "months", view.DefaultMonthsBack, fmt.Sprintf("months to look back (%s)", joinInts(view.MonthsBackOptions)))
	return cmd
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = itoa(n)
	}
	return strings.Join(parts, ", ")
}

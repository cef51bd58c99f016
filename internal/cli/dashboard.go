package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/orchard/internal/view"
	"github.com/mesh-intelligence/orchard/pkg/types"
)

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the orchard overview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := view.LoadDashboard(cmd.Context(), a.api)
			if err != nil {
				return withFallback(err, view.MsgDashboardFailed)
			}
			return a.emit(d, func(w io.Writer) { printDashboard(w, d) })
		},
	}
}

func printDashboard(w io.Writer, d *view.Dashboard) {
	heading(w, "Orchard Dashboard")
	field(w, "Orchards:", d.TotalOrchards)
	field(w, "Trees:", d.TotalTrees)
	field(w, "Images analyzed:", d.TotalImages)
	field(w, "Health records:", d.TotalHealthRecords)
	field(w, "Accuracy rate:", fmt.Sprintf("%.1f%%", d.Stats.AccuracyRate))
	field(w, "Active alerts:", d.Stats.ActiveAlerts)
	field(w, "Processing time:", fmt.Sprintf("%.1fs", d.Stats.ProcessingTime))

	fmt.Fprintln(w)
	heading(w, "Recent Orchards")
	renderTable(w, orchardColumns, rows(d.RecentOrchards, orchardRow))

	fmt.Fprintln(w)
	heading(w, "Recent Trees")
	renderTable(w, treeColumns, rows(d.RecentTrees, treeRow))

	fmt.Fprintln(w)
	heading(w, "Recent Images")
	renderTable(w, []string{"ID", "Image", "Uploaded"}, rows(d.RecentImages, func(img view.RecentImage) []string {
		return []string{itoa(img.ID), img.ImageURL, img.UploadedAt}
	}))

	fmt.Fprintln(w)
	heading(w, "Health Alerts")
	renderTable(w, []string{"ID", "Tree", "Status", "Disease"}, rows(d.HealthAlerts, func(h types.TreeHealth) []string {
		return []string{itoa(h.ID), itoa(h.Tree), badge(view.HealthStatusTone(h.HealthStatus), h.HealthStatus), orDash(view.DiseaseName(h.DiseaseType))}
	}))
}

func rows[T any](items []T, row func(T) []string) [][]string {
	out := make([][]string, 0, len(items))
	for _, it := range items {
		out = append(out, row(it))
	}
	return out
}

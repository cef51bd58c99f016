package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/orchard/internal/view"
	"github.com/mesh-intelligence/orchard/pkg/client"
	"github.com/mesh-intelligence/orchard/pkg/types"
)

var imageColumns = []string{"ID", "Tree", "Image", "Uploaded", "Prediction", "Confidence"}

func imageRow(img types.ScannedImage) []string {
	prediction, confidence := "-", "-"
	if img.PredictionResult != nil {
		prediction = badge(view.DiseaseTone(*img.PredictionResult), view.DiseaseName(*img.PredictionResult))
	}
	if img.ConfidenceScore != nil {
		confidence = percent(*img.ConfidenceScore)
	}
	return []string{itoa(img.ID), itoa(img.Tree), img.Image, orDash(img.UploadedAt), prediction, confidence}
}

func newImagesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "Manage scanned leaf images",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List scanned images",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				imgs, err := a.api.ListScannedImages(cmd.Context())
				if err != nil {
					return withFallback(err, "Failed to list images")
				}
				return a.emit(imgs, func(w io.Writer) { renderTable(w, imageColumns, rows(imgs, imageRow)) })
			},
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show one scanned image",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				img, err := a.api.GetScannedImage(cmd.Context(), id)
				if err != nil {
					return withFallback(err, "Failed to load image")
				}
				return a.emit(img, func(w io.Writer) { renderTable(w, imageColumns, [][]string{imageRow(*img)}) })
			},
		},
		&cobra.Command{
			Use:   "upload <tree-id> <image>",
			Short: "Upload a leaf image for a tree",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				treeID, err := parseID(args[0])
				if err != nil {
					return err
				}
				f, err := client.ReadFile(args[1])
				if err != nil {
					return err
				}
				img, err := a.api.UploadScannedImage(cmd.Context(), treeID, f)
				if err != nil {
					return withFallback(err, "Upload failed")
				}
				return a.emit(img, func(w io.Writer) {
					fmt.Fprintf(w, "Uploaded %s as image %d\n", f.Name, img.ID)
				})
			},
		},
		&cobra.Command{
			Use:   "bulk-upload <tree-id> <image>...",
			Short: "Upload several leaf images for a tree",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				treeID, err := parseID(args[0])
				if err != nil {
					return err
				}
				files, err := readImages(args[1:])
				if err != nil {
					return err
				}
				res, err := a.api.BulkUpload(cmd.Context(), treeID, files)
				if err != nil {
					return withFallback(err, "Bulk upload failed")
				}
				return a.emit(res, func(w io.Writer) {
					fmt.Fprintf(w, "Sent %d images for tree %d\n", len(files), treeID)
					if _, ok := res.Raw["uploaded"]; ok {
						field(w, "Uploaded:", strconv.Itoa(res.Uploaded))
					}
					if _, ok := res.Raw["failed"]; ok {
						field(w, "Failed:", strconv.Itoa(res.Failed))
					}
				})
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a scanned image",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if err := a.api.DeleteScannedImage(cmd.Context(), id); err != nil {
					return withFallback(err, "Failed to delete image")
				}
				return a.emit(map[string]any{"deleted": id}, func(w io.Writer) {
					fmt.Fprintf(w, "Deleted image %d\n", id)
				})
			},
		},
	)
	return cmd
}

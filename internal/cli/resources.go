package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mesh-intelligence/orchard/internal/view"
	"github.com/mesh-intelligence/orchard/pkg/types"
)

// Flag value kinds for resource fields.
const (
	kindString = iota
	kindInt
	kindFloat
)

// fieldFlag maps a command-line flag to a JSON field of a resource.
type fieldFlag struct {
	flag     string
	key      string
	kind     int
	usage    string
	required bool
}

// resource describes the CRUD commands of one backend collection.
type resource[T any] struct {
	name     string
	singular string
	fields   []fieldFlag
	columns  []string
	row      func(T) []string
	detail   func(io.Writer, T)

	list   func(context.Context) ([]T, error)
	get    func(context.Context, int) (*T, error)
	create func(context.Context, T) (*T, error)
	update func(context.Context, int, T) (*T, error)
	remove func(context.Context, int) error
}

func (r resource[T]) command(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   r.name,
		Short: "Manage " + r.name,
	}
	cmd.AddCommand(r.listCmd(a), r.getCmd(a), r.createCmd(a), r.updateCmd(a), r.deleteCmd(a))
	return cmd
}

func (r resource[T]) listCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List " + r.name,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := r.list(cmd.Context())
			if err != nil {
				return withFallback(err, "Failed to list "+r.name)
			}
			return a.emit(items, func(w io.Writer) { renderTable(w, r.columns, rows(items, r.row)) })
		},
	}
}

func (r resource[T]) getCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one " + r.singular,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			item, err := r.get(cmd.Context(), id)
			if err != nil {
				return withFallback(err, "Failed to load "+r.singular)
			}
			return a.emit(item, func(w io.Writer) { r.detail(w, *item) })
		},
	}
}

func (r resource[T]) createCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a " + r.singular,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var v T
			if err := r.apply(cmd.Flags(), &v); err != nil {
				return err
			}
			created, err := r.create(cmd.Context(), v)
			if err != nil {
				return withFallback(err, "Failed to create "+r.singular)
			}
			return a.emit(created, func(w io.Writer) { r.detail(w, *created) })
		},
	}
	r.bind(cmd.Flags())
	for _, f := range r.fields {
		if f.required {
			cmd.MarkFlagRequired(f.flag)
		}
	}
	return cmd
}

// updateCmd fetches the current record, applies the flags that were set
// and writes the result back.
func (r resource[T]) updateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a " + r.singular,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			cur, err := r.get(cmd.Context(), id)
			if err != nil {
				return withFallback(err, "Failed to load "+r.singular)
			}
			if err := r.apply(cmd.Flags(), cur); err != nil {
				return err
			}
			updated, err := r.update(cmd.Context(), id, *cur)
			if err != nil {
				return withFallback(err, "Failed to update "+r.singular)
			}
			return a.emit(updated, func(w io.Writer) { r.detail(w, *updated) })
		},
	}
	r.bind(cmd.Flags())
	return cmd
}

func (r resource[T]) deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + r.singular,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := r.remove(cmd.Context(), id); err != nil {
				return withFallback(err, "Failed to delete "+r.singular)
			}
			return a.emit(map[string]any{"deleted": id}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted %s %d\n", r.singular, id)
			})
		},
	}
}

func (r resource[T]) bind(fs *pflag.FlagSet) {
	for _, f := range r.fields {
		switch f.kind {
		case kindInt:
			fs.Int(f.flag, 0, f.usage)
		case kindFloat:
			fs.Float64(f.flag, 0, f.usage)
		default:
			fs.String(f.flag, "", f.usage)
		}
	}
}

// apply overlays the flags that were set on the command line onto v, going
// through the JSON form so flag names map onto wire field names.
func (r resource[T]) apply(fs *pflag.FlagSet, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	obj := map[string]any{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	for _, f := range r.fields {
		if !fs.Changed(f.flag) {
			continue
		}
		var val any
		switch f.kind {
		case kindInt:
			val, err = fs.GetInt(f.flag)
		case kindFloat:
			val, err = fs.GetFloat64(f.flag)
		default:
			val, err = fs.GetString(f.flag)
		}
		if err != nil {
			return err
		}
		obj[f.key] = val
	}

	data, err = json.Marshal(obj)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", s)
	}
	return id, nil
}

var (
	orchardColumns = []string{"ID", "Name", "Location", "Size (acres)"}
	treeColumns    = []string{"ID", "Name", "Species", "Age", "Orchard"}
	healthColumns  = []string{"ID", "Tree", "Status", "Disease", "Severity", "Checked"}
)

func orchardRow(o types.Orchard) []string {
	return []string{itoa(o.ID), o.Name, orDash(o.Location), strconv.FormatFloat(o.Size, 'f', -1, 64)}
}

func treeRow(t types.Tree) []string {
	return []string{itoa(t.ID), t.Name, orDash(t.Species), itoa(t.Age), itoa(t.Orchard)}
}

func healthRow(h types.TreeHealth) []string {
	return []string{
		itoa(h.ID), itoa(h.Tree),
		badge(view.HealthStatusTone(h.HealthStatus), h.HealthStatus),
		orDash(view.DiseaseName(h.DiseaseType)),
		badge(view.PriorityTone(h.SeverityLevel), h.SeverityLevel),
		orDash(h.LastChecked),
	}
}

func newOrchardsCmd(a *app) *cobra.Command {
	return resource[types.Orchard]{
		name:     "orchards",
		singular: "orchard",
		fields: []fieldFlag{
			{flag: "name", key: "name", usage: "orchard name", required: true},
			{flag: "location", key: "location", usage: "where the orchard is"},
			{flag: "size", key: "size", kind: kindFloat, usage: "size in acres"},
		},
		columns: orchardColumns,
		row:     orchardRow,
		detail: func(w io.Writer, o types.Orchard) {
			heading(w, o.Name)
			field(w, "ID:", o.ID)
			field(w, "Location:", orDash(o.Location))
			field(w, "Size (acres):", o.Size)
			field(w, "Owner:", orDash(o.Owner))
			field(w, "Created:", orDash(o.CreatedAt))
			if len(o.Trees) > 0 {
				renderTable(w, treeColumns, rows(o.Trees, treeRow))
			}
		},
		list:   func(ctx context.Context) ([]types.Orchard, error) { return a.api.ListOrchards(ctx) },
		get:    func(ctx context.Context, id int) (*types.Orchard, error) { return a.api.GetOrchard(ctx, id) },
		create: func(ctx context.Context, o types.Orchard) (*types.Orchard, error) { return a.api.CreateOrchard(ctx, o) },
		update: func(ctx context.Context, id int, o types.Orchard) (*types.Orchard, error) {
			return a.api.UpdateOrchard(ctx, id, o)
		},
		remove: func(ctx context.Context, id int) error { return a.api.DeleteOrchard(ctx, id) },
	}.command(a)
}

func newTreesCmd(a *app) *cobra.Command {
	cmd := resource[types.Tree]{
		name:     "trees",
		singular: "tree",
		fields: []fieldFlag{
			{flag: "name", key: "name", usage: "tree name", required: true},
			{flag: "orchard", key: "orchard", kind: kindInt, usage: "orchard id", required: true},
			{flag: "species", key: "species", usage: "apple variety"},
			{flag: "age", key: "age", kind: kindInt, usage: "age in years"},
			{flag: "location", key: "location", usage: "row or position in the orchard"},
			{flag: "planted", key: "planted_date", usage: "planting date (YYYY-MM-DD)"},
		},
		columns: treeColumns,
		row:     treeRow,
		detail: func(w io.Writer, t types.Tree) {
			heading(w, t.Name)
			field(w, "ID:", t.ID)
			field(w, "Orchard:", t.Orchard)
			field(w, "Species:", orDash(t.Species))
			field(w, "Age:", t.Age)
			field(w, "Location:", orDash(t.Location))
			field(w, "Planted:", orDash(t.PlantedDate))
		},
		list:   func(ctx context.Context) ([]types.Tree, error) { return a.api.ListTrees(ctx) },
		get:    func(ctx context.Context, id int) (*types.Tree, error) { return a.api.GetTree(ctx, id) },
		create: func(ctx context.Context, t types.Tree) (*types.Tree, error) { return a.api.CreateTree(ctx, t) },
		update: func(ctx context.Context, id int, t types.Tree) (*types.Tree, error) {
			return a.api.UpdateTree(ctx, id, t)
		},
		remove: func(ctx context.Context, id int) error { return a.api.DeleteTree(ctx, id) },
	}.command(a)
	cmd.AddCommand(newBulkCreateTreesCmd(a))
	return cmd
}

func newHealthCmd(a *app) *cobra.Command {
	return resource[types.TreeHealth]{
		name:     "health",
		singular: "health record",
		fields: []fieldFlag{
			{flag: "tree", key: "tree", kind: kindInt, usage: "tree id", required: true},
			{flag: "status", key: "health_status", usage: "healthy, disease_detected or needs_attention", required: true},
			{flag: "severity", key: "severity_level", usage: "low, medium or high", required: true},
			{flag: "disease", key: "disease_type", usage: "detected disease"},
			{flag: "notes", key: "notes", usage: "free-form notes"},
		},
		columns: healthColumns,
		row:     healthRow,
		detail: func(w io.Writer, h types.TreeHealth) {
			heading(w, fmt.Sprintf("Health record %d", h.ID))
			field(w, "Tree:", h.Tree)
			field(w, "Status:", badge(view.HealthStatusTone(h.HealthStatus), h.HealthStatus))
			field(w, "Disease:", orDash(view.DiseaseName(h.DiseaseType)))
			field(w, "Severity:", badge(view.PriorityTone(h.SeverityLevel), h.SeverityLevel))
			field(w, "Notes:", orDash(h.Notes))
			field(w, "Last checked:", orDash(h.LastChecked))
		},
		list:   func(ctx context.Context) ([]types.TreeHealth, error) { return a.api.ListTreeHealth(ctx) },
		get:    func(ctx context.Context, id int) (*types.TreeHealth, error) { return a.api.GetTreeHealth(ctx, id) },
		create: func(ctx context.Context, h types.TreeHealth) (*types.TreeHealth, error) { return a.api.CreateTreeHealth(ctx, h) },
		update: func(ctx context.Context, id int, h types.TreeHealth) (*types.TreeHealth, error) {
			return a.api.UpdateTreeHealth(ctx, id, h)
		},
		remove: func(ctx context.Context, id int) error { return a.api.DeleteTreeHealth(ctx, id) },
	}.command(a)
}

func newBulkCreateTreesCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "bulk-create",
		Short: "Create many trees from a JSON file",
		Long: "Bulk-create reads a JSON array of trees, or an object with a \"trees\"\n" +
			"array, from --file (\"-\" for standard input) and creates them in one call.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			trees, err := readTrees(a.in, file)
			if err != nil {
				return err
			}
			res, err := a.api.BulkCreateTrees(cmd.Context(), trees)
			if err != nil {
				return withFallback(err, "Failed to create trees")
			}
			return a.emit(res, func(w io.Writer) {
				fmt.Fprintf(w, "Submitted %d trees\n", len(trees))
				if n, ok := res["created"]; ok {
					field(w, "Created:", n)
				}
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with the trees (- for stdin)")
	cmd.MarkFlagRequired("file")
	return cmd
}

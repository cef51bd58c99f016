package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the orchard release, overridden at link time.
var Version = "0.1.0"

const modulePath = "github.com/mesh-intelligence/orchard"

func newVersionCmd() *cobra.Command {
	return withAuth(&cobra.Command{
		Use:   "version",
		Short: "Print the orchard version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "orchard v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}, authNone)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/orchard/internal/paths"
)

func newInitCmd(a *app) *cobra.Command {
	return withAuth(&cobra.Command{
		Use:   "init",
		Short: "Create the orchard configuration and session store",
		Long: "Init writes a default config.yaml to the configuration directory, unless\n" +
			"one exists, and creates the session database in the data directory.",
		Args: cobra.NoArgs,
		RunE: a.runInit,
	}, authOptional)
}

// runInit relies on setup having opened the session store, which creates
// the data directory and database.
func (a *app) runInit(cmd *cobra.Command, _ []string) error {
	cfg := configFile{
		BaseURL:  a.api.BaseURL(),
		DataDir:  a.flags.dataDir,
		LogLevel: a.cfg.GetString(cfgKeyLogLevel),
	}
	written, err := writeConfigIfMissing(a.configDir, cfg)
	if err != nil {
		return sysError(err)
	}

	if written {
		fmt.Fprintf(a.out, "Wrote %s\n", paths.ConfigFile(a.configDir))
	} else {
		fmt.Fprintf(a.out, "Config already present in %s\n", a.configDir)
	}
	fmt.Fprintln(a.out, "Orchard initialized successfully")
	return nil
}

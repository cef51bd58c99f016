// Package cli implements the orchard command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/orchard/internal/paths"
	"github.com/mesh-intelligence/orchard/pkg/client"
	"github.com/mesh-intelligence/orchard/pkg/session"
	"github.com/mesh-intelligence/orchard/pkg/sqlite"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Command annotation controlling what setup a command needs.
const (
	annotationAuth = "orchard/auth"

	authRequired = ""         // stored credential required
	authOptional = "optional" // session opened, credential not required
	authNone     = "none"     // no config, session or client
)

// errNotLoggedIn is returned by commands that need a session when none is
// stored.
var errNotLoggedIn = errors.New("not logged in")

// rootFlags holds global flag values.
type rootFlags struct {
	configDir string
	dataDir   string
	baseURL   string
	jsonMode  bool
	verbose   bool
}

// app is the state shared by the commands of one invocation.
type app struct {
	flags rootFlags

	in     io.Reader
	out    io.Writer
	errOut io.Writer
	now    func() time.Time

	// Set by setup.
	configDir string
	cfg       *viper.Viper
	logger    *zap.Logger
	store     session.Store
	closer    io.Closer
	api       *client.Client

	// interactive replaces the chat TUI in tests.
	interactive func(cmd *cobra.Command, conv chatSession) error
}

// NewRootCmd creates the top-level "orchard" command writing to the
// process standard streams.
func NewRootCmd() *cobra.Command {
	return newRootCmd(newApp(os.Stdin, os.Stdout, os.Stderr))
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{in: in, out: out, errOut: errOut, now: time.Now}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "orchard",
		Short: "Monitor orchard health from the terminal",
		Long: "orchard talks to the orchard health backend: manage orchards, trees and\n" +
			"health records, classify leaf images, run analytics, generate reports\n" +
			"and chat with the orchard assistant.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (env "+paths.EnvConfigDir+")")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "session data directory (env "+paths.EnvDataDir+")")
	pf.StringVar(&a.flags.baseURL, "base-url", "", "backend URL (env "+envBaseURL+", default "+defaultBaseURL+")")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "print backend responses as JSON")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "log every backend request")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newDashboardCmd(a),
		newOrchardsCmd(a),
		newTreesCmd(a),
		newHealthCmd(a),
		newImagesCmd(a),
		newPredictCmd(a),
		newNDVICmd(a),
		newAnomaliesCmd(a),
		newTrendsCmd(a),
		newReportCmd(a),
		newChatCmd(a),
	)
	return root
}

// Execute runs the CLI against os.Args and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return run(ctx, newApp(os.Stdin, os.Stdout, os.Stderr), os.Args[1:])
}

func run(ctx context.Context, a *app, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	a.close()
	if err == nil {
		return exitSuccess
	}
	code, msg := describe(err)
	fmt.Fprintln(a.errOut, "Error: "+msg)
	return code
}

// setup resolves configuration and opens the session and client the
// command asks for.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	mode := cmd.Annotations[annotationAuth]
	if mode == authNone || cmd.Name() == "help" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	a.configDir = configDir

	cfg, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}
	a.cfg = cfg

	logger, err := newLogger(a.errOut, cfg.GetString(cfgKeyLogLevel), a.flags.verbose)
	if err != nil {
		return &exitError{code: exitUserError, err: err}
	}
	a.logger = logger

	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, cfg.GetString(cfgKeyDataDir))
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	store, closer, err := sqlite.OpenSession(dataDir)
	if err != nil {
		return sysError(err)
	}
	a.store, a.closer = store, closer

	baseURL := a.flags.baseURL
	if baseURL == "" {
		baseURL = cfg.GetString(cfgKeyBaseURL)
	}
	api, err := client.New(baseURL, store, client.WithLogger(logger))
	if err != nil {
		return &exitError{code: exitUserError, err: err}
	}
	a.api = api

	logger.Debug("orchard ready",
		zap.String("command", cmd.CommandPath()),
		zap.String("base_url", api.BaseURL()),
		zap.String("config_dir", configDir),
		zap.String("data_dir", dataDir))

	if _, ok := store.Token(); !ok && mode == authRequired {
		return errNotLoggedIn
	}
	return nil
}

func (a *app) close() {
	if a.closer != nil {
		a.closer.Close()
		a.closer = nil
	}
	if a.logger != nil {
		a.logger.Sync()
	}
}

func withAuth(cmd *cobra.Command, mode string) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationAuth] = mode
	return cmd
}

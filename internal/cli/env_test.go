package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/orchard/internal/backendtest"
)

// testEnv runs the CLI in-process against a fake backend with isolated
// configuration and data directories.
type testEnv struct {
	t         *testing.T
	Backend   *backendtest.Server
	ConfigDir string
	DataDir   string
	Now       time.Time

	// Interactive replaces the chat TUI when set.
	Interactive func(cmd *cobra.Command, conv chatSession) error
}

// result is the outcome of one CLI invocation.
type result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv(envBaseURL, "")
	t.Setenv("ORCHARD_LOG_LEVEL", "")
	return &testEnv{
		t:         t,
		Backend:   backendtest.New(t),
		ConfigDir: t.TempDir(),
		DataDir:   t.TempDir(),
		Now:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Run invokes orchard with args and stdin.
func (e *testEnv) Run(stdin string, args ...string) result {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	a := newApp(strings.NewReader(stdin), &stdout, &stderr)
	a.now = func() time.Time { return e.Now }
	a.interactive = e.Interactive

	full := append([]string{
		"--config-dir", e.ConfigDir,
		"--data-dir", e.DataDir,
		"--base-url", e.Backend.URL,
	}, args...)
	code := run(context.Background(), a, full)
	return result{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: code}
}

// MustRun invokes orchard and fails the test on a non-zero exit.
func (e *testEnv) MustRun(args ...string) result {
	e.t.Helper()
	r := e.Run("", args...)
	require.Equal(e.t, exitSuccess, r.ExitCode, "orchard %v failed\nstdout: %s\nstderr: %s", args, r.Stdout, r.Stderr)
	return r
}

// Login registers alice on the backend and logs in through the CLI.
func (e *testEnv) Login() {
	e.t.Helper()
	e.Backend.AddUser("alice", "secret")
	e.MustRun("login", "-u", "alice", "-p", "secret")
}

func parseJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), "output: %s", s)
	return v
}

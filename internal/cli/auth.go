package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/orchard/pkg/types"
)

func newLoginCmd(a *app) *cobra.Command {
	var creds types.LoginCredentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the orchard backend",
		Long: "Login exchanges a username and password for a session token and stores\n" +
			"it in the session database. The password is read from standard input\n" +
			"when --password is not given.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if creds.Password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				pw, err := readLine(a.in)
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				creds.Password = pw
			}

			resp, err := a.api.Login(cmd.Context(), creds)
			if err != nil {
				return withFallback(err, "Login failed")
			}
			return a.emit(resp.User, func(w io.Writer) {
				name := resp.User.Username
				if name == "" {
					name = creds.Username
				}
				fmt.Fprintf(w, "Logged in as %s\n", name)
			})
		},
	}
	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "account password")
	cmd.MarkFlagRequired("username")
	return withAuth(cmd, authOptional)
}

func newLogoutCmd(a *app) *cobra.Command {
	return withAuth(&cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, ok := a.store.Token(); !ok {
				fmt.Fprintln(a.out, "Not logged in")
				return nil
			}
			if err := a.api.Logout(cmd.Context()); err != nil {
				return withFallback(err, "Logout failed")
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}, authOptional)
}

type whoami struct {
	BaseURL       string `json:"base_url"`
	Authenticated bool   `json:"authenticated"`
}

func newWhoamiCmd(a *app) *cobra.Command {
	return withAuth(&cobra.Command{
		Use:   "whoami",
		Short: "Show the backend and whether a session is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, ok := a.store.Token()
			info := whoami{BaseURL: a.api.BaseURL(), Authenticated: ok}
			return a.emit(info, func(w io.Writer) {
				field(w, "Backend:", info.BaseURL)
				if ok {
					field(w, "Session:", "logged in")
				} else {
					field(w, "Session:", "not logged in")
				}
			})
		},
	}, authOptional)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

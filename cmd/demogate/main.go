// Command demogate manages demo access tokens and runs the voice demo
// from a terminal.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tolutally/matchbox-web/internal/client"
	"github.com/tolutally/matchbox-web/internal/version"
)

// Exit codes
const (
	exitFailure  = 1
	exitRejected = 2
	exitConfig   = 3
)

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// globalFlags are shared by every command that talks to the server.
type globalFlags struct {
	server      string
	adminSecret string
	timeout     time.Duration
	insecure    bool
}

func (g *globalFlags) apiClient() (*client.APIClient, error) {
	c, err := client.NewAPIClient(
		g.server,
		client.WithAdminSecret(g.adminSecret),
		client.WithAPITimeout(g.timeout),
		client.WithInsecureTLS(g.insecure),
	)
	if err != nil {
		return nil, codeError(exitConfig, "%s", err)
	}
	return c, nil
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		// cobra already printed the error
		os.Exit(exitFailure)
	}
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:          "demogate",
		Short:        "Manage demo access tokens and run the voice demo",
		Version:      version.String(),
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.server, "server", envOr("DEMOGATE_URL", "http://localhost:8080"), "Demo gate server base URL")
	pf.StringVar(&g.adminSecret, "admin-password", os.Getenv("ADMIN_PASSWORD"), "Admin password for token management")
	pf.DurationVar(&g.timeout, "timeout", 10*time.Second, "Request timeout")
	pf.BoolVar(&g.insecure, "insecure", false, "Skip TLS certificate verification")

	root.AddCommand(
		newTokensCmd(&g),
		newValidateCmd(&g),
		newDemoCmd(&g),
		newUsageCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			version.Fprint(cmd.OutOrStdout())
		},
	}
}

// apiError maps client errors to exit codes.
func apiError(action string, err error) error {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.StatusCode < 500:
		return codeError(exitRejected, "%s: %s", action, apiErr)
	case errors.Is(err, client.ErrEndpointNotFound):
		return codeError(exitConfig, "%s: server has no such endpoint (check --server)", action)
	default:
		return codeError(exitFailure, "%s: %s", action, err)
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Package commands wires the cobra command tree of nexusprobe.
package commands

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/nexus-automation/nexusprobe/internal/config"
)

// Environment is everything a command reads from or writes to the outside.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer
	Getenv config.Getenv
}

// NewRootCmd builds the command tree. Without a sub command the probe runs.
func NewRootCmd(env *Environment) *cobra.Command {
	app := &app{env: env}

	rootCmd := &cobra.Command{
		Use:   "nexusprobe",
		Short: "Read-only diagnostics for the nexus_modelos listing",
		Long: `nexusprobe checks why the model listing shows fewer rows than its counter.

It runs a count query, the listing query with its joins and, when the listing
comes back empty or fails, a query without joins. Nothing is ever written.

Credentials are read from the environment (or a .env file):
- NEXT_PUBLIC_SUPABASE_URL or SUPABASE_URL
- SUPABASE_SERVICE_ROLE_KEY or SUPABASE_KEY`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(env.Stdout)
	rootCmd.SetErr(env.Stderr)

	rootCmd.PersistentFlags().StringVar(&app.envFile, "env-file", config.DefaultEnvFile, "file with environment variables")
	rootCmd.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "log level (debug, info, warning, error)")

	probeCmd := newProbeCmd(app)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(newQueryCmd(app))
	rootCmd.AddCommand(newInspectCmd(app))
	rootCmd.AddCommand(newTablesCmd(app))

	// the root command runs the probe with its flags
	rootCmd.Flags().AddFlagSet(probeCmd.Flags())
	rootCmd.RunE = probeCmd.RunE

	return rootCmd
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, args []string, env *Environment) int {
	rootCmd := NewRootCmd(env)
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// credential problems are already logged
		if !errors.Is(err, config.ErrMissingCredentials) {
			_, _ = io.WriteString(env.Stderr, "Error: "+err.Error()+"\n")
		}
		return 1
	}
	return 0
}

// Package cli provides the command-line interface for sigkat.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mahdiidarabi/sigkat/internal/config"
	"github.com/mahdiidarabi/sigkat/internal/logging"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// app is the state shared by subcommands once PersistentPreRunE has run.
type app struct {
	v      *viper.Viper
	flags  *GlobalFlags
	cfg    *config.Config
	logger zerolog.Logger
	closer io.Closer
}

// newRootCmd creates the root command. All state hangs off the returned
// command so tests can build as many independent instances as they need.
func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	a := &app{v: config.NewViper(), flags: flags, logger: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:   "sigkat",
		Short: "Known-answer conformance checks for RSA and ECDSA signatures",
		Long: `sigkat checks RSA PKCS#1 v1.5 and ECDSA implementations against
known-answer test vectors and samples fresh-key round trips.

Vector files may be JSON, YAML or CSV (ECDSA only). Settings come from
flags, SIGKAT_* environment variables, and sigkat.yaml.`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(cmd, flags)

	addRunCommand(cmd, a)
	addSoakCommand(cmd, a)
	addInspectCommand(cmd, a)
	addCurvesCommand(cmd, a)

	return cmd
}

// setup binds flags, loads configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if err := BindGlobalFlags(a.v, cmd); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	if err := bindLocalFlags(a.v, cmd); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	cfg, err := config.FromViper(a.v, a.flags.Config)
	if err != nil {
		return err
	}
	a.cfg = cfg

	opts := logging.FromConfig(cfg.Log)
	opts.Verbose = a.flags.Verbose
	opts.Quiet = a.flags.Quiet
	opts.Console = cmd.ErrOrStderr()
	logger, closer, err := logging.New(opts)
	if err != nil {
		return err
	}
	a.logger = logger
	a.closer = closer
	return nil
}

// withTimeout applies the configured run timeout to ctx.
func (a *app) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, a.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info,
// printing any error to stderr.
func Execute(ctx context.Context, info BuildInfo) error {
	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, info)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mahdiidarabi/sigkat/internal/errors"
)

// Exit codes for the CLI.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0
	// ExitError indicates a failed conformance run or a general error.
	ExitError = 1
	// ExitInvalidInput indicates invalid user input.
	ExitInvalidInput = 2
)

// Output format constants.
const (
	// OutputText is the default human-readable output format.
	OutputText = "text"
	// OutputJSON is the machine-readable JSON output format.
	OutputJSON = "json"
)

// GlobalFlags holds flags available to all commands.
type GlobalFlags struct {
	// Config is an explicit config file path.
	Config string
	// Output specifies the output format (text or json).
	Output string
	// Verbose enables debug-level logging.
	Verbose bool
	// Quiet suppresses non-essential output (warn level only).
	Quiet bool
	// Workers bounds concurrent checks.
	Workers int
}

// globalKeys maps persistent flag names to config keys.
var globalKeys = map[string]string{ //nolint:gochecknoglobals // static lookup table
	"output":  "report.format",
	"workers": "workers",
}

// AddGlobalFlags adds global flags to a command.
// These flags are available to all subcommands via PersistentFlags.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	cmd.PersistentFlags().StringVarP(&flags.Config, "config", "c", "", "config file (default ./sigkat.yaml)")
	cmd.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputText, "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress non-essential output")
	cmd.PersistentFlags().IntVarP(&flags.Workers, "workers", "w", 0, "concurrent checks (0 = one per CPU)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// BindGlobalFlags binds global flags to their config keys so that a flag
// given on the command line overrides the environment and config file.
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command) error {
	// Use Root().PersistentFlags() to find flags defined on the root command,
	// even when called from a subcommand's PersistentPreRunE.
	rootFlags := cmd.Root().PersistentFlags()
	for name, key := range globalKeys {
		if err := v.BindPFlag(key, rootFlags.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}

// bindLocalFlags binds the running command's flags annotated with a config
// key.
func bindLocalFlags(v *viper.Viper, cmd *cobra.Command) error {
	var err error
	cmd.LocalNonPersistentFlags().VisitAll(func(f *pflag.Flag) {
		keys, ok := f.Annotations[configKeyAnnotation]
		if !ok || err != nil {
			return
		}
		err = v.BindPFlag(keys[0], f)
	})
	return err
}

const configKeyAnnotation = "sigkat_config_key"

// bindKey marks a local flag as backing the given config key.
func bindKey(cmd *cobra.Command, flag, key string) {
	_ = cmd.Flags().SetAnnotation(flag, configKeyAnnotation, []string{key})
}

// ExitCodeForError returns the appropriate exit code for the given error.
// Returns ExitSuccess (0) for nil errors, ExitInvalidInput (2) for user input
// errors (invalid flags, bad arguments, bad config), and ExitError (1) for
// all other errors including failed conformance runs.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, errors.ErrInvalidConfig) {
		return ExitInvalidInput
	}
	if isInvalidInputError(err.Error()) {
		return ExitInvalidInput
	}
	return ExitError
}

// isInvalidInputError checks if an error message indicates invalid user input.
// This catches Cobra's built-in flag and argument validation errors.
func isInvalidInputError(errMsg string) bool {
	invalidInputPatterns := []string{
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"invalid argument",
		"if any flags in the group",
		"required flag",
		"unknown command",
		"requires at least",
		"accepts ",
	}

	for _, pattern := range invalidInputPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}

package cmd

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/fulmenhq/relinfo/pkg/buildinfo"
	"github.com/fulmenhq/relinfo/pkg/config"
	"github.com/fulmenhq/relinfo/pkg/exitcode"
	"github.com/fulmenhq/relinfo/pkg/logger"
	"github.com/fulmenhq/relinfo/pkg/releases"
)

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relinfo",
		Short: "Fetch GitHub release metadata into stable JSON files",
		Long: `Relinfo fetches release metadata (and optionally asset digests) from the
GitHub Releases API, removes configured fields, and writes stable JSON artifacts.
Conditional requests keep re-runs cheap: unchanged releases are skipped.

Examples:
   relinfo fetch                          # Fetch the latest release of $GITHUB_REPOSITORY
   relinfo fetch --repo octo/widgets --index
   relinfo config show --format yaml      # Show effective configuration
   relinfo cache show latest              # Show stored validators`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
	}

	// Add global flags
	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().String("config", "", "Config file (default: relinfo.{yaml,toml,json} in . or $HOME)")

	// Wire Cobra's built-in --version
	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("relinfo {{.Version}}\n")

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
// This is called from init() for production and can be called explicitly in tests.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(newFetchCommand())
	cmd.AddCommand(newConfigCommand())
	cmd.AddCommand(newCacheCommand())
	cmd.AddCommand(newVersionCommand())
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

// Execute runs the root command and exits with a code matching the failure.
// This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		logger.Error("Command execution failed", logger.Err(err))
		os.Exit(exitCodeFor(err))
	}
}

func init() {
	// Register all subcommands with the production rootCmd
	registerSubcommands(rootCmd)
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")

	config := logger.Config{
		Level:     logger.ParseLevel(logLevelStr),
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: "relinfo",
	}

	if err := logger.Initialize(config); err != nil {
		// Fallback to stderr
		_, _ = os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(exitcode.ConfigError)
	}
}

// exitCodeFor maps the first error of a (possibly combined) failure to an
// exit code.
func exitCodeFor(err error) int {
	if err == nil {
		return exitcode.Success
	}
	first := multierr.Errors(err)[0]

	var (
		cfgErr    *config.Error
		schemaErr *releases.SchemaError
		parseErr  *releases.ParseError
		statusErr *releases.StatusError
		rateErr   *releases.RateLimitError
		netErr    *releases.NetworkError
		pathErr   *fs.PathError
	)
	switch {
	case errors.As(first, &cfgErr):
		return exitcode.ConfigError
	case errors.As(first, &schemaErr), errors.As(first, &parseErr):
		return exitcode.SchemaError
	case errors.As(first, &statusErr), errors.As(first, &rateErr):
		return exitcode.StatusError
	case errors.Is(first, context.DeadlineExceeded):
		return exitcode.TimeoutError
	case errors.As(first, &netErr):
		return exitcode.NetworkError
	case errors.As(first, &pathErr):
		return exitcode.FileSystemError
	default:
		return exitcode.GeneralError
	}
}

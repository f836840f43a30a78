package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/memocache"
	"github.com/rshade/memocache/internal/config"
	"github.com/rshade/memocache/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// rootState carries the resolved configuration and logging handles from the
// root command's PersistentPreRunE to its subcommands.
type rootState struct {
	cfg       *config.Config
	logResult *logging.Result
	lookupEnv func(string) (string, bool)
}

// NewRootCmd creates the root Cobra command for the memocache CLI.
// It wires up configuration loading, logging, tracing, audit logging, and the
// demo, watch, and config subcommands.
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithEnv(ver, os.LookupEnv)
}

// NewRootCmdWithEnv creates the root command with an explicit env lookup for
// testability. This allows tests to inject custom environment variables.
func NewRootCmdWithEnv(ver string, lookupEnv func(string) (string, bool)) *cobra.Command {
	state := &rootState{lookupEnv: lookupEnv}

	cmd := &cobra.Command{
		Use:     "memocache",
		Short:   "TTL memoization cache CLI",
		Long:    "memocache: exercise and observe a TTL memoization cache from the command line",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")

			cfg, err := config.LoadWithEnv(configPath, lookupEnv)
			if err != nil {
				// config init must keep working when the current file
				// is broken, since it exists to replace it.
				if !isConfigInit(cmd) {
					return err
				}
				cmd.PrintErrf("Warning: ignoring unloadable config: %v\n", err)
				cfg = config.DefaultConfig()
			}

			// CLI flags override environment variables and config file.
			if cmd.Flags().Changed("ttl") {
				rawTTL, _ := cmd.Flags().GetString("ttl")
				ttl, parseErr := memocache.ParseTTL(rawTTL)
				if parseErr != nil {
					return fmt.Errorf("invalid --ttl: %w", parseErr)
				}
				if validateErr := memocache.ValidateTTL(ttl); validateErr != nil {
					return fmt.Errorf("invalid --ttl: %w", validateErr)
				}
				cfg.Cache.DefaultTTL = rawTTL
			}
			if cmd.Flags().Changed("singleflight") {
				cfg.Cache.Singleflight, _ = cmd.Flags().GetBool("singleflight")
			}

			state.cfg = cfg
			result := setupLogging(cmd, state)
			state.logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, state.logResult)
		},
	}

	cmd.PersistentFlags().String("config", "", "path to a config file (skips discovery)")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("log-format", "", "log output format: console or json")
	cmd.PersistentFlags().String("log-file", "", "write logs to this file instead of stderr")
	cmd.PersistentFlags().
		String("ttl", "", "default TTL for cache writes, in seconds or as a Go duration (0 = never expire)")
	cmd.PersistentFlags().
		Bool("singleflight", false, "share one computation among concurrent misses for the same key")
	cmd.AddCommand(newDemoCmd(state), newWatchCmd(state), newConfigCmd(state))

	return cmd
}

const rootCmdExample = `  # Run the synthetic workload and print a cache report
  memocache demo --tasks 200 --workers 8

  # Repeat the workload to show the warm-cache effect
  memocache demo --repeat 3

  # Same workload with concurrent misses coalesced
  memocache demo --singleflight

  # Watch the store live while a workload runs
  memocache watch

  # Initialize configuration
  memocache config init

  # Validate the resolved configuration
  memocache config validate --verbose`

// isConfigInit reports whether cmd is the "config init" subcommand.
func isConfigInit(cmd *cobra.Command) bool {
	return cmd.Name() == "init" && cmd.Parent() != nil && cmd.Parent().Name() == "config"
}

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd(state *rootState) *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(newConfigInitCmd(), newConfigValidateCmd(state))
	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/memocache/internal/config"
)

// newConfigValidateCmd creates the config validate command. It checks the
// fully resolved configuration, that is the defaults with user file, project
// file, environment variables, and flags applied.
func newConfigValidateCmd(state *rootState) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the resolved configuration",
		Long: `Validates the resolved configuration for syntax and semantic correctness.

This includes:
- Schema version compatibility
- Cache TTL syntax and bounds
- Logging level and format values
- Demo workload parameters

The resolved configuration is the merge of built-in defaults, the user and
project configuration files, MEMOCACHE_* environment variables, and command
line flags. A file that fails to parse is reported before this command runs.`,
		Example: `  # Validate the current configuration
  memocache config validate

  # Validate and show the resolved values
  memocache config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, state.cfg, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show the resolved configuration values")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, cfg *config.Config, verbose bool) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cmd.Printf("✅ Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg)
	}

	return nil
}

// printVerboseDetails prints the resolved configuration values.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Schema version: %s\n", cfg.SchemaVersion)
	cmd.Printf("  Store name: %s\n", cfg.Cache.Name)
	cmd.Printf("  Default TTL: %s\n", displayTTL(cfg.Cache.DefaultTTL))
	cmd.Printf("  Singleflight: %t\n", cfg.Cache.Singleflight)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	cmd.Printf("  Logging format: %s\n", cfg.Logging.Format)
	if cfg.Logging.File != "" {
		cmd.Printf("  Log file: %s\n", cfg.Logging.File)
	}
	cmd.Printf("  Audit logging: %t\n", cfg.Logging.Audit.Enabled)

	cmd.Println()
	cmd.Println("Demo workload:")
	cmd.Printf("  Tasks: %d\n", cfg.Demo.Tasks)
	cmd.Printf("  Workers: %d\n", cfg.Demo.Workers)
	cmd.Printf("  Keys: %d\n", cfg.Demo.Keys)
	cmd.Printf("  Failure rate: %g\n", cfg.Demo.FailureRate)
	cmd.Printf("  Seed: %d\n", cfg.Demo.Seed)
}

// displayTTL renders the configured TTL, naming the never-expire case.
func displayTTL(raw string) string {
	if raw == "" || raw == "0" {
		return "0 (entries never expire)"
	}
	return raw
}

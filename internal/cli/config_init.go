package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rshade/memocache/internal/config"
)

// newConfigInitCmd creates the config init command. Without flags it writes
// the per-user configuration file; with --project it writes a project-local
// file in the current directory instead, which walk-up discovery will find
// from any subdirectory.
func newConfigInitCmd() *cobra.Command {
	var (
		force   bool
		project bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a configuration file with default values",
		Long: `Creates a new configuration file populated with commented defaults.

By default the file is written to the per-user location, typically
~/.config/memocache/config.yaml. With --project, a ` + config.ProjectConfigName + ` file
is written to the current directory instead; it overrides the user file for
commands run anywhere inside the project tree.`,
		Example: `  # Create the per-user configuration
  memocache config init

  # Create a project-local configuration in the current directory
  memocache config init --project

  # Replace an existing file
  memocache config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if project {
				return initProjectConfig(cmd, force)
			}
			return initUserConfig(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")
	cmd.Flags().BoolVar(&project, "project", false,
		"write "+config.ProjectConfigName+" to the current directory instead of the user location")

	return cmd
}

// initProjectConfig writes a project-local starter file in the working directory.
func initProjectConfig(cmd *cobra.Command, force bool) error {
	path, err := filepath.Abs(config.ProjectConfigName)
	if err != nil {
		return fmt.Errorf("resolving project config path: %w", err)
	}

	if err := writeStarterConfig(path, force); err != nil {
		return err
	}

	cmd.Printf("Configuration initialized at %s\n", path)
	return nil
}

// initUserConfig writes the per-user starter file.
func initUserConfig(cmd *cobra.Command, force bool) error {
	path, err := config.UserConfigPath()
	if err != nil {
		return fmt.Errorf("resolving user config path: %w", err)
	}

	if err := writeStarterConfig(path, force); err != nil {
		return err
	}

	cmd.Printf("Configuration initialized successfully\n")
	cmd.Printf("Configuration file: %s\n", path)
	return nil
}

// writeStarterConfig writes the starter file, translating the exists error
// into a hint about --force.
func writeStarterConfig(path string, force bool) error {
	err := config.WriteStarter(path, force)
	if errors.Is(err, config.ErrConfigExists) {
		return errors.New("configuration file already exists, use --force to overwrite")
	}
	if err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return nil
}

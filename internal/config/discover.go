package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config file names looked for during discovery.
const (
	UserConfigName    = "config.yaml"
	userConfigSubdir  = "memocache"
	ProjectConfigName = ".memocache.yaml"
	projectConfigAlt  = ".memocache.yml"
)

// ErrNoProjectConfig indicates no project config file was found between the
// starting directory and the filesystem root.
var ErrNoProjectConfig = errors.New("no project config found")

// FindProjectConfig walks up the directory tree from dir looking for
// .memocache.yaml or .memocache.yml. Returns the path of the config file, or
// ErrNoProjectConfig if none is found before reaching the filesystem root.
func FindProjectConfig(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}

	current := absDir
	for {
		for _, name := range []string{ProjectConfigName, projectConfigAlt} {
			candidate := filepath.Join(current, name)
			if _, statErr := os.Stat(candidate); statErr == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			// Reached filesystem root.
			return "", ErrNoProjectConfig
		}
		current = parent
	}
}

// UserConfigPath returns the per-user config file location, typically
// ~/.config/memocache/config.yaml on Linux.
func UserConfigPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config directory: %w", err)
	}
	return filepath.Join(base, userConfigSubdir, UserConfigName), nil
}

// userConfigPath reports the user config file path and whether it exists.
func userConfigPath() (string, bool) {
	path, err := UserConfigPath()
	if err != nil {
		return "", false
	}
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

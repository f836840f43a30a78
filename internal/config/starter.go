package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrConfigExists indicates WriteStarter found a file at the target path and
// was not told to overwrite it.
var ErrConfigExists = errors.New("configuration file already exists")

// starterConfig is the commented template written by "memocache config init".
// It mirrors DefaultConfig so a freshly initialized file changes nothing.
const starterConfig = `# memocache configuration
schema_version: "1.0.0"

cache:
  # Store name used in log fields and metric labels.
  name: default
  # TTL applied to writes without an explicit TTL.
  # Accepts bare seconds ("3600") or a Go duration ("1h"). "0" never expires.
  default_ttl: "1h"
  # Share one in-flight computation among concurrent misses for the same key.
  singleflight: false

logging:
  # trace, debug, info, warn, error
  level: info
  # console or json
  format: console
  # Uncomment to log to a file instead of stderr.
  # file: ~/.local/state/memocache/memocache.log
  audit:
    enabled: false
    # file: ~/.local/state/memocache/audit.jsonl

demo:
  tasks: 50
  workers: 4
  keys: 8
  failure_rate: 0
  seed: 1
`

// Starter returns the commented starter configuration document.
func Starter() []byte {
	return []byte(starterConfig)
}

// WriteStarter writes the starter configuration to path, creating parent
// directories as needed. Unless force is set, an existing file is preserved
// and ErrConfigExists is returned.
func WriteStarter(path string, force bool) error {
	if !force {
		_, err := os.Stat(path)
		if err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access config path %s: %w", path, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, Starter(), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

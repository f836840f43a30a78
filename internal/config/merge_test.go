package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/memocache/internal/config"
)

// newDefaultTarget returns a Config with known non-zero defaults so tests can
// verify that absent overlay keys leave the original values intact.
func newDefaultTarget() *config.Config {
	return &config.Config{
		SchemaVersion: "1.0.0",
		Cache: config.CacheConfig{
			Name:         "warm",
			DefaultTTL:   "30m",
			Singleflight: true,
		},
		Logging: config.LoggingConfig{
			Level:  "info",
			Format: "console",
			Audit: config.AuditConfig{
				Enabled: true,
				File:    "/var/log/memocache/audit.jsonl",
			},
		},
		Demo: config.DemoConfig{
			Tasks:       50,
			Workers:     4,
			Keys:        8,
			FailureRate: 0.25,
			Seed:        7,
		},
	}
}

// writeOverlay is a test helper that writes YAML content to a temp file
// and returns its path.
func writeOverlay(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestShallowMergeYAML_SingleKeyOverride(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
cache:
  name: sessions
  default_ttl: "5m"
  singleflight: false
`)

	err := config.ShallowMergeYAML(target, overlay)
	require.NoError(t, err)

	// Cache should be replaced.
	assert.Equal(t, "sessions", target.Cache.Name)
	assert.Equal(t, "5m", target.Cache.DefaultTTL)
	assert.False(t, target.Cache.Singleflight)

	// Other sections should be unchanged.
	assert.Equal(t, "info", target.Logging.Level)
	assert.Equal(t, "console", target.Logging.Format)
	assert.Equal(t, 50, target.Demo.Tasks)
	assert.Equal(t, uint64(7), target.Demo.Seed)
}

func TestShallowMergeYAML_MultipleKeyOverride(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
cache:
  name: lookups
  default_ttl: "2h"
demo:
  tasks: 200
  workers: 16
  keys: 32
  failure_rate: 0.5
  seed: 99
`)

	err := config.ShallowMergeYAML(target, overlay)
	require.NoError(t, err)

	assert.Equal(t, "lookups", target.Cache.Name)
	assert.Equal(t, "2h", target.Cache.DefaultTTL)
	assert.Equal(t, 200, target.Demo.Tasks)
	assert.Equal(t, 16, target.Demo.Workers)
	assert.Equal(t, 32, target.Demo.Keys)
	assert.InDelta(t, 0.5, target.Demo.FailureRate, 1e-9)
	assert.Equal(t, uint64(99), target.Demo.Seed)
}

func TestShallowMergeYAML_AbsentKeysPreserved(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
logging:
  level: debug
  format: json
`)

	err := config.ShallowMergeYAML(target, overlay)
	require.NoError(t, err)

	// Cache and Demo should remain at defaults.
	assert.Equal(t, "warm", target.Cache.Name)
	assert.Equal(t, "30m", target.Cache.DefaultTTL)
	assert.True(t, target.Cache.Singleflight)
	assert.Equal(t, 50, target.Demo.Tasks)
	assert.Equal(t, 4, target.Demo.Workers)
}

func TestShallowMergeYAML_SectionFullyReplaced(t *testing.T) {
	target := newDefaultTarget()
	require.True(t, target.Cache.Singleflight, "default target should have singleflight enabled")

	// The overlay omits singleflight, so the replaced section carries the
	// zero value rather than the previous one.
	overlay := writeOverlay(t, `
cache:
  name: sessions
  default_ttl: "10m"
`)

	err := config.ShallowMergeYAML(target, overlay)
	require.NoError(t, err)

	assert.Equal(t, "sessions", target.Cache.Name)
	assert.False(t, target.Cache.Singleflight)
}

func TestShallowMergeYAML_SchemaVersionScalar(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `schema_version: "1.2.0"`)

	err := config.ShallowMergeYAML(target, overlay)
	require.NoError(t, err)

	assert.Equal(t, "1.2.0", target.SchemaVersion)
}

func TestShallowMergeYAML_EmptyOverlayFile(t *testing.T) {
	target := newDefaultTarget()
	original := *target
	overlay := writeOverlay(t, "")

	err := config.ShallowMergeYAML(target, overlay)
	require.NoError(t, err)

	// Everything should be unchanged.
	assert.Equal(t, original.Cache, target.Cache)
	assert.Equal(t, original.Logging, target.Logging)
	assert.Equal(t, original.Demo, target.Demo)
}

func TestShallowMergeYAML_CommentOnlyFile(t *testing.T) {
	target := newDefaultTarget()
	original := *target
	overlay := writeOverlay(t, "# this file is intentionally empty\n# just comments\n")

	err := config.ShallowMergeYAML(target, overlay)
	require.NoError(t, err)

	assert.Equal(t, original.Cache, target.Cache)
	assert.Equal(t, original.Logging, target.Logging)
}

func TestShallowMergeYAML_CorruptedYAMLReturnsError(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, "{{{{not valid yaml at all")

	err := config.ShallowMergeYAML(target, overlay)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing overlay YAML")
}

func TestShallowMergeYAML_MissingFileReturnsError(t *testing.T) {
	target := newDefaultTarget()

	err := config.ShallowMergeYAML(target, "/nonexistent/path/overlay.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading overlay file")
}

func TestShallowMergeYAML_NilTargetReturnsError(t *testing.T) {
	overlay := writeOverlay(t, "cache:\n  name: sessions\n")

	err := config.ShallowMergeYAML(nil, overlay)
	require.Error(t, err)
}

func TestShallowMergeYAML_ZeroValueFieldsReplaceDefaults(t *testing.T) {
	target := newDefaultTarget()

	// Verify target has non-zero defaults before merge.
	require.Equal(t, 50, target.Demo.Tasks)
	require.Equal(t, 4, target.Demo.Workers)
	require.InDelta(t, 0.25, target.Demo.FailureRate, 1e-9)

	overlay := writeOverlay(t, `
demo:
  tasks: 10
`)

	err := config.ShallowMergeYAML(target, overlay)
	require.NoError(t, err)

	// The replaced section carries zero values for everything the overlay
	// left out.
	assert.Equal(t, 10, target.Demo.Tasks)
	assert.Equal(t, 0, target.Demo.Workers)
	assert.Zero(t, target.Demo.FailureRate)
}

func TestShallowMergeYAML_UnknownKeysIgnored(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
cache:
  name: sessions
  default_ttl: "15m"
unknown_section:
  foo: bar
extra_key: 42
`)

	err := config.ShallowMergeYAML(target, overlay)
	require.NoError(t, err)

	// The known key should be applied.
	assert.Equal(t, "sessions", target.Cache.Name)
	assert.Equal(t, "15m", target.Cache.DefaultTTL)

	// Unknown keys should be silently ignored, no error.
	assert.Equal(t, "info", target.Logging.Level)
}

func TestShallowMergeYAML_AuditSubsection(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
logging:
  level: warn
  format: json
  audit:
    enabled: true
    file: /tmp/audit.jsonl
`)

	err := config.ShallowMergeYAML(target, overlay)
	require.NoError(t, err)

	assert.Equal(t, "warn", target.Logging.Level)
	assert.Equal(t, "json", target.Logging.Format)
	assert.True(t, target.Logging.Audit.Enabled)
	assert.Equal(t, "/tmp/audit.jsonl", target.Logging.Audit.File)
}

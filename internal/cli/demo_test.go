package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/memocache/internal/cli"
)

// demoPass mirrors one pass of the JSON report emitted by "demo --output json".
type demoPass struct {
	Store    string  `json:"store"`
	Calls    int     `json:"calls"`
	Computes uint64  `json:"computes"`
	Failures int     `json:"failures"`
	Hits     uint64  `json:"hits"`
	Misses   uint64  `json:"misses"`
	Entries  int     `json:"entries"`
	HitRatio float64 `json:"hit_ratio"`
}

// demoOutput wraps all passes of one demo invocation.
type demoOutput struct {
	Passes []demoPass `json:"passes"`
}

// runCommand executes the root command with an injected environment and
// returns everything written to its output streams. The working directory
// and user config location are isolated so discovery cannot pick up real
// configuration.
func runCommand(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	if env == nil {
		env = map[string]string{}
	}
	if _, ok := env["MEMOCACHE_LOG_LEVEL"]; !ok {
		env["MEMOCACHE_LOG_LEVEL"] = "error"
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	var buf bytes.Buffer
	cmd := cli.NewRootCmdWithEnv("test", lookup)
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// decodeDemoJSON parses the JSON report document from command output.
func decodeDemoJSON(t *testing.T, output string) demoOutput {
	t.Helper()

	var doc demoOutput
	require.NoError(t, json.Unmarshal([]byte(output), &doc), "output should be valid JSON: %s", output)
	return doc
}

// TestDemo_TableReport verifies the default table rendering.
func TestDemo_TableReport(t *testing.T) {
	output, err := runCommand(t, nil, "demo", "--tasks", "40", "--keys", "4", "--workers", "2", "--seed", "7")
	require.NoError(t, err)

	assert.Contains(t, output, "CACHE REPORT (store: default)")
	assert.Contains(t, output, "Hit ratio")
	assert.Contains(t, output, "Cache savings")
	assert.Contains(t, output, "HOTTEST KEYS")
}

// TestDemo_JSONReport verifies the JSON report for a sequential workload,
// where exactly one computation per key is expected.
func TestDemo_JSONReport(t *testing.T) {
	output, err := runCommand(t, nil,
		"demo", "--tasks", "30", "--keys", "3", "--workers", "1", "--seed", "1", "--output", "json")
	require.NoError(t, err)

	doc := decodeDemoJSON(t, output)
	require.Len(t, doc.Passes, 1)

	pass := doc.Passes[0]
	assert.Equal(t, "default", pass.Store)
	assert.Equal(t, 30, pass.Calls)
	assert.Equal(t, uint64(3), pass.Computes)
	assert.Equal(t, uint64(3), pass.Misses)
	assert.Equal(t, uint64(27), pass.Hits)
	assert.Equal(t, 3, pass.Entries)
	assert.Equal(t, 0, pass.Failures)
	assert.InDelta(t, 0.9, pass.HitRatio, 0.0001)
}

// TestDemo_RepeatSharesStore verifies that later passes run against a warm
// store and compute nothing.
func TestDemo_RepeatSharesStore(t *testing.T) {
	output, err := runCommand(t, nil,
		"demo", "--repeat", "2", "--tasks", "20", "--keys", "5", "--workers", "1", "--seed", "3",
		"--output", "json")
	require.NoError(t, err)

	doc := decodeDemoJSON(t, output)
	require.Len(t, doc.Passes, 2)

	assert.Equal(t, uint64(5), doc.Passes[0].Computes, "cold pass computes once per key")
	assert.Equal(t, uint64(0), doc.Passes[1].Computes, "warm pass computes nothing")
	assert.Equal(t, uint64(20), doc.Passes[1].Hits)
	assert.Equal(t, uint64(0), doc.Passes[1].Misses)
}

// TestDemo_RepeatTableShowsPassHeaders verifies per-pass headers in table mode.
func TestDemo_RepeatTableShowsPassHeaders(t *testing.T) {
	output, err := runCommand(t, nil, "demo", "--repeat", "2", "--tasks", "10", "--keys", "2", "--workers", "1")
	require.NoError(t, err)

	assert.Contains(t, output, "Pass 1/2")
	assert.Contains(t, output, "Pass 2/2")
}

// TestDemo_FailuresAreNotCached verifies that failed computations propagate
// to the caller and leave nothing in the store.
func TestDemo_FailuresAreNotCached(t *testing.T) {
	output, err := runCommand(t, nil,
		"demo", "--tasks", "10", "--keys", "2", "--workers", "1", "--seed", "1",
		"--failure-rate", "1", "--output", "json")
	require.NoError(t, err, "injected failures are reported, not returned")

	doc := decodeDemoJSON(t, output)
	require.Len(t, doc.Passes, 1)

	pass := doc.Passes[0]
	assert.Equal(t, 10, pass.Failures)
	assert.Equal(t, uint64(10), pass.Computes, "every call recomputes when nothing is cached")
	assert.Equal(t, uint64(0), pass.Hits)
	assert.Equal(t, 0, pass.Entries)
}

// TestDemo_BypassForcesRecompute verifies --bypass-every skips cache lookups.
func TestDemo_BypassForcesRecompute(t *testing.T) {
	output, err := runCommand(t, nil,
		"demo", "--tasks", "5", "--keys", "1", "--workers", "1", "--seed", "1",
		"--bypass-every", "1", "--output", "json")
	require.NoError(t, err)

	doc := decodeDemoJSON(t, output)
	require.Len(t, doc.Passes, 1)

	pass := doc.Passes[0]
	assert.Equal(t, uint64(5), pass.Computes, "bypassed calls recompute")
	assert.Equal(t, uint64(0), pass.Hits)
	assert.Equal(t, 1, pass.Entries, "bypassed calls still refresh the entry")
}

// TestDemo_InvalidOutputFormat verifies the output format guard.
func TestDemo_InvalidOutputFormat(t *testing.T) {
	_, err := runCommand(t, nil, "demo", "--output", "yaml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format: yaml")
}

// TestDemo_RepeatMustBePositive verifies the repeat guard.
func TestDemo_RepeatMustBePositive(t *testing.T) {
	_, err := runCommand(t, nil, "demo", "--repeat", "0")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "repeat must be at least 1")
}

// TestDemo_StoreNameFromEnv verifies environment variables reach the store.
func TestDemo_StoreNameFromEnv(t *testing.T) {
	env := map[string]string{"MEMOCACHE_STORE_NAME": "envstore"}

	output, err := runCommand(t, env, "demo", "--tasks", "10", "--keys", "2", "--workers", "1")
	require.NoError(t, err)

	assert.Contains(t, output, "CACHE REPORT (store: envstore)")
}

// TestDemo_ConfigFilePrecedence verifies that an explicit config file shapes
// the workload and that flags override it.
func TestDemo_ConfigFilePrecedence(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	configYAML := `schema_version: "1.0.0"
demo:
  tasks: 12
  workers: 1
  keys: 2
  seed: 5
`
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0o600))

	output, err := runCommand(t, nil, "--config", configPath, "demo", "--output", "json")
	require.NoError(t, err)
	doc := decodeDemoJSON(t, output)
	require.Len(t, doc.Passes, 1)
	assert.Equal(t, 12, doc.Passes[0].Calls, "tasks come from the config file")

	output, err = runCommand(t, nil, "--config", configPath, "demo", "--tasks", "6", "--output", "json")
	require.NoError(t, err)
	doc = decodeDemoJSON(t, output)
	require.Len(t, doc.Passes, 1)
	assert.Equal(t, 6, doc.Passes[0].Calls, "flags override the config file")
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porter-mcp/porter/internal/core"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "porter.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadParsesServersAndCLI(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[servers.weather]
slug = "weather"
transport = "stdio"
command = "weather-mcp"
args = ["--quiet"]

[servers.metrics]
slug = "metrics"
transport = "http"
url = "https://metrics.internal/mcp"

[cli.aws]
slug = "aws"
transport = "cli"
command = "aws"
profile = "aws"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Contains(t, cfg.Servers, "weather")
	assert.Equal(t, TransportStdio, cfg.Servers["weather"].Transport)
	assert.Equal(t, "weather-mcp", cfg.Servers["weather"].Command)
	assert.Equal(t, defaultHandshakeTimeoutSecs, cfg.Servers["weather"].HandshakeTimeoutSecs)
	assert.True(t, cfg.Servers["weather"].IsEnabled())

	require.Contains(t, cfg.Servers, "metrics")
	assert.Equal(t, TransportHTTP, cfg.Servers["metrics"].Transport)
	assert.Equal(t, "https://metrics.internal/mcp", cfg.Servers["metrics"].URL)

	require.Contains(t, cfg.CLI, "aws")
	assert.Equal(t, defaultCLITimeoutSecs, cfg.CLI["aws"].TimeoutSecs)
	assert.Equal(t, defaultDiscoveryBudgetSecs, cfg.CLI["aws"].DiscoveryBudgetSecs)
	// A profiled entry with no explicit help_depth defers to clirunner's
	// profile-aware fallback, so config leaves it nil rather than 2.
	assert.Nil(t, cfg.CLI["aws"].HelpDepth)
}

func TestLoadAppliesDefaultHelpDepthWhenNoProfile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[cli.custom]
slug = "custom"
transport = "cli"
command = "custom-tool"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.CLI["custom"].HelpDepth)
	assert.Equal(t, defaultHelpDepth, *cfg.CLI["custom"].HelpDepth)
}

func TestLoadRejectsDuplicateSlug(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[servers.one]
slug = "shared"
transport = "stdio"
command = "one"

[cli.two]
slug = "shared"
transport = "cli"
command = "two"
`)

	_, err := Load(path)
	require.Error(t, err)
	var dup *core.DuplicateSlugError
	assert.ErrorAs(t, err, &dup)
}

func TestLoadRejectsBareEnvValue(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[servers.one]
slug = "one"
transport = "stdio"
command = "one"

[servers.one.env]
API_KEY = "not-a-reference"
`)

	_, err := Load(path)
	require.Error(t, err)
	var invalid *core.ConfigInvalidError
	assert.ErrorAs(t, err, &invalid)
}

func TestLoadRejectsStdioMissingCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[servers.one]
slug = "one"
transport = "stdio"
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsHTTPMissingURL(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[servers.one]
slug = "one"
transport = "http"
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsHelpDepthAboveMax(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[cli.one]
slug = "one"
transport = "cli"
command = "one"
help_depth = 6
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadSkipsTransportValidationForDisabledServer(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[servers.one]
slug = "one"
transport = "stdio"
enabled = false
`)
	_, err := Load(path)
	require.NoError(t, err)
}

func TestLoadMissingFileIsFatal(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.Error(t, err)
}

func TestLoadFallsBackToCwdPorterToml(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[servers.one]
slug = "one"
transport = "stdio"
command = "one"
`)
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Contains(t, cfg.Servers, "one")
}

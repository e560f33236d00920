package clirunner

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porter-mcp/porter/internal/guard"
	"github.com/porter-mcp/porter/internal/guard/profiles"
	"github.com/porter-mcp/porter/internal/health"
)

// writeDispatchCLI writes a shell command that echoes back its own argv as a
// JSON object, so tests can assert exactly what the harness assembled.
func writeDispatchCLI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "dispatch.sh")
	body := `#!/bin/sh
if [ "$1" = "--help" ] || [ "$2" = "--help" ]; then
  echo "Commands:"
  echo "  list   List things"
  echo "  rm     Remove a thing"
  exit 0
fi
printf '{"argv":['
first=1
for a in "$@"; do
  if [ $first -eq 0 ]; then printf ','; fi
  printf '"%s"' "$a"
  first=0
done
printf ']}'
exit 0
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	return path
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func TestSpawnSingleToolMode(t *testing.T) {
	cli := writeDispatchCLI(t)
	h, err := Spawn(context.Background(), Config{
		Slug:              "dispatch",
		Command:           cli,
		TimeoutSecs:       5,
		ExpandSubcommands: boolPtr(false),
	})
	require.NoError(t, err)
	require.Len(t, h.Tools(), 1)
	assert.False(t, h.expanded)
}

func TestSpawnDiscoveryModeExposesOnlyReadOnlySubcommands(t *testing.T) {
	cli := writeDispatchCLI(t)
	h, err := Spawn(context.Background(), Config{
		Slug:        "dispatch",
		Command:     cli,
		TimeoutSecs: 5,
		HelpDepth:   intPtr(1),
	})
	require.NoError(t, err)
	assert.True(t, h.expanded)

	var names []string
	for _, tool := range h.Tools() {
		names = append(names, tool.Name)
	}
	// "list" reads, per the generic verb heuristic, and is exposed as a
	// tool; "rm" writes and is dropped from the discovered tool set rather
	// than exposed (callers must still go through an explicit allow/
	// write_access rule, never auto-discovery).
	assert.Contains(t, names, "list")
	assert.NotContains(t, names, "rm")
}

func TestCallToolExpandedReconstructsSubcommandPath(t *testing.T) {
	cli := writeDispatchCLI(t)
	h, err := Spawn(context.Background(), Config{
		Slug:        "dispatch",
		Command:     cli,
		TimeoutSecs: 5,
		HelpDepth:   intPtr(1),
	})
	require.NoError(t, err)

	args, _ := json.Marshal(map[string]any{"args": []string{"bucket-a"}})
	result, err := h.CallTool(context.Background(), "list", args)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var decoded struct {
		Argv []string `json:"argv"`
	}
	require.NoError(t, json.Unmarshal(result.Content, &decoded))
	assert.Equal(t, []string{"list", "bucket-a"}, decoded.Argv)
}

func TestCallToolInjectFlagsPlacedBeforeUserArgs(t *testing.T) {
	cli := writeDispatchCLI(t)
	h, err := Spawn(context.Background(), Config{
		Slug:        "dispatch",
		Command:     cli,
		TimeoutSecs: 5,
		HelpDepth:   intPtr(1),
		InjectFlags: []string{"--output", "json"},
	})
	require.NoError(t, err)

	args, _ := json.Marshal(map[string]any{"args": []string{"bucket-a"}})
	result, err := h.CallTool(context.Background(), "list", args)
	require.NoError(t, err)

	var decoded struct {
		Argv []string `json:"argv"`
	}
	require.NoError(t, json.Unmarshal(result.Content, &decoded))
	assert.Equal(t, []string{"list", "--output", "json", "bucket-a"}, decoded.Argv)
}

func TestCallToolDeniedByAccessRule(t *testing.T) {
	cli := writeDispatchCLI(t)
	h, err := Spawn(context.Background(), Config{
		Slug:        "dispatch",
		Command:     cli,
		TimeoutSecs: 5,
		HelpDepth:   intPtr(1),
		Rule:        guard.AccessRule{Deny: []string{"rm"}},
	})
	require.NoError(t, err)

	result, err := h.CallTool(context.Background(), "rm", nil)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, result.ErrorMsg, "explicit deny")
}

func TestCallToolInjectFlagsPlacedBeforeUserArgsInSingleToolMode(t *testing.T) {
	cli := writeDispatchCLI(t)
	h, err := Spawn(context.Background(), Config{
		Slug:              "dispatch",
		Command:           cli,
		TimeoutSecs:       5,
		ExpandSubcommands: boolPtr(false),
		InjectFlags:       []string{"--format", "json"},
	})
	require.NoError(t, err)

	args, _ := json.Marshal(map[string]any{"args": []string{"list"}})
	result, err := h.CallTool(context.Background(), "dispatch", args)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var decoded struct {
		Argv []string `json:"argv"`
	}
	require.NoError(t, json.Unmarshal(result.Content, &decoded))
	assert.Equal(t, []string{"--format", "json", "list"}, decoded.Argv)
}

func TestExtractArgsFromJSONPositionalAndFlags(t *testing.T) {
	raw, _ := json.Marshal(map[string]any{
		"args":    []string{"bucket"},
		"dry_run": true,
		"force":   false,
		"region":  "us-east-1",
	})
	argv := extractArgsFromJSON(raw)
	assert.Contains(t, argv, "bucket")
	assert.Contains(t, argv, "--dry-run")
	assert.NotContains(t, argv, "--force")
	idx := indexOf(argv, "--region")
	require.GreaterOrEqual(t, idx, 0)
	require.Less(t, idx+1, len(argv))
	assert.Equal(t, "us-east-1", argv[idx+1])
}

func TestExtractArgsFromJSONEmpty(t *testing.T) {
	assert.Empty(t, extractArgsFromJSON(nil))
	assert.Empty(t, extractArgsFromJSON(json.RawMessage(`{}`)))
}

func TestDetermineExpansionModeHelpDepthZeroDisables(t *testing.T) {
	mode, _, err := determineExpansionMode(Config{HelpDepth: intPtr(0)}, nil)
	require.NoError(t, err)
	assert.Equal(t, modeSingleTool, mode)
}

func TestDetermineExpansionModeExplicitDepthWinsOverProfile(t *testing.T) {
	p, _ := profiles.Get("aws")
	mode, depth, err := determineExpansionMode(Config{HelpDepth: intPtr(5)}, p)
	require.NoError(t, err)
	assert.Equal(t, modeDiscovery, mode)
	assert.Equal(t, 5, depth)
}

func TestDetermineExpansionModeExpandSubcommandsWithoutProfileErrors(t *testing.T) {
	_, _, err := determineExpansionMode(Config{ExpandSubcommands: boolPtr(true)}, nil)
	require.Error(t, err)
	var target *ExpandSubcommandsRequiresProfileError
	assert.ErrorAs(t, err, &target)
}

func TestSpawnUnknownProfileErrors(t *testing.T) {
	_, err := Spawn(context.Background(), Config{Slug: "x", Command: "x", Profile: "not-a-real-profile"})
	require.Error(t, err)
	var target *UnknownProfileError
	assert.ErrorAs(t, err, &target)
}

func TestHandleHealthAlwaysHealthy(t *testing.T) {
	cli := writeDispatchCLI(t)
	h, err := Spawn(context.Background(), Config{
		Slug:              "dispatch",
		Command:           cli,
		TimeoutSecs:       5,
		ExpandSubcommands: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, health.StateHealthy, h.Health())
	require.NoError(t, h.Shutdown(context.Background()))
	assert.Equal(t, "dispatch", h.Slug())
}

func indexOf(haystack []string, needle string) int {
	for i, s := range haystack {
		if s == needle {
			return i
		}
	}
	return -1
}

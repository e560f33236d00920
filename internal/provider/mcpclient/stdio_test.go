package mcpclient

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porter-mcp/porter/internal/health"
)

// helperProcessEnv, when set to "1" in this test binary's own environment,
// makes TestMain run a tiny in-process MCP server over stdio instead of the
// normal test suite. StdioHandle then spawns this same test binary as its
// subprocess — the classic os/exec "helper process" pattern, adapted so
// the helper speaks MCP instead of printing to stdout.
const helperProcessEnv = "PORTER_MCPCLIENT_FAKE_SERVER"

func TestMain(m *testing.M) {
	if os.Getenv(helperProcessEnv) == "1" {
		runFakeStdioServer()
		return
	}
	os.Exit(m.Run())
}

func runFakeStdioServer() {
	server := mcp.NewServer(&mcp.Implementation{Name: "fake-stdio", Version: "1.0.0"}, nil)
	mcp.AddTool(server, &mcp.Tool{Name: "echo", Description: "echoes the message argument"},
		func(ctx context.Context, req *mcp.CallToolRequest, input map[string]any) (*mcp.CallToolResult, map[string]any, error) {
			msg, _ := input["message"].(string)
			return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: msg}}}, nil, nil
		})
	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		os.Exit(1)
	}
}

func fakeStdioConfig(t *testing.T) StdioConfig {
	t.Helper()
	exe, err := os.Executable()
	require.NoError(t, err)
	return StdioConfig{
		Slug:    "fake",
		Command: exe,
		Env:     map[string]string{helperProcessEnv: "1"},
	}
}

func TestSpawnStdioConnectsAndListsTools(t *testing.T) {
	h, err := SpawnStdio(context.Background(), fakeStdioConfig(t))
	require.NoError(t, err)
	defer func() { _ = h.Shutdown(context.Background()) }()

	var names []string
	for _, tool := range h.Tools() {
		names = append(names, tool.Name)
	}
	assert.Contains(t, names, "echo")
	// No calls yet: too few samples for the tracker to leave Starting.
	assert.Equal(t, health.StateStarting, h.Health())
}

func TestStdioCallToolInvokesRemoteTool(t *testing.T) {
	h, err := SpawnStdio(context.Background(), fakeStdioConfig(t))
	require.NoError(t, err)
	defer func() { _ = h.Shutdown(context.Background()) }()

	args, _ := json.Marshal(map[string]any{"message": "hello"})
	result, err := h.CallTool(context.Background(), "echo", args)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var decoded string
	require.NoError(t, json.Unmarshal(result.Content, &decoded))
	assert.Equal(t, "hello", decoded)
}

func TestStdioCallToolRecordsHealthOutcome(t *testing.T) {
	h, err := SpawnStdio(context.Background(), fakeStdioConfig(t))
	require.NoError(t, err)
	defer func() { _ = h.Shutdown(context.Background()) }()

	args, _ := json.Marshal(map[string]any{"message": "hi"})
	for i := 0; i < 5; i++ {
		_, err := h.CallTool(context.Background(), "echo", args)
		require.NoError(t, err)
	}

	count, ratio := h.tracker.Snapshot()
	assert.Equal(t, 5, count)
	assert.Zero(t, ratio)
	assert.Equal(t, health.StateHealthy, h.Health())
}

func TestStdioShutdownStopsSupervisor(t *testing.T) {
	h, err := SpawnStdio(context.Background(), fakeStdioConfig(t))
	require.NoError(t, err)

	require.NoError(t, h.Shutdown(context.Background()))

	select {
	case <-h.done:
	default:
		t.Fatal("supervisor goroutine should have stopped after Shutdown")
	}
}

func TestSpawnStdioUnreachableCommandGivesUpAfterMaxFailures(t *testing.T) {
	fakeClock := clockwork.NewFakeClock()
	h, err := spawnStdioWithClock(context.Background(), StdioConfig{
		Slug:    "bad",
		Command: "/no/such/binary-porter-mcpclient-test",
	}, fakeClock)
	require.NoError(t, err)

	for i := 0; i < maxConsecutiveFailures-1; i++ {
		blockCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		require.NoError(t, fakeClock.BlockUntilContext(blockCtx, 1))
		cancel()
		fakeClock.Advance(40 * time.Second)
	}

	select {
	case <-h.done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor should have given up after max consecutive failures")
	}

	assert.Empty(t, h.Tools())
	assert.Equal(t, health.StateUnhealthy, h.Health())

	result, callErr := h.CallTool(context.Background(), "whatever", nil)
	require.NoError(t, callErr)
	assert.True(t, result.IsError)
	assert.Contains(t, result.ErrorMsg, "transiently unavailable")
}

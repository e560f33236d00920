// Package provider defines the capability set every tool provider backing
// Porter's Registry implements, whether it fronts a remote MCP server
// (STDIO or Streamable HTTP) or a local CLI program.
package provider

import (
	"context"
	"encoding/json"

	"github.com/porter-mcp/porter/internal/health"
)

// Tool is a single callable operation exposed by a provider, in its
// un-namespaced form. The Registry namespaces it before handing it to MCP
// clients.
type Tool struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

// CallResult is the outcome of invoking a tool, always returned as a
// tool-level result rather than a protocol error: spawn failures, non-zero
// exits, timeouts, and access denials are all surfaced this way so an MCP
// client sees a normal error payload.
type CallResult struct {
	Content  json.RawMessage
	IsError  bool
	ErrorMsg string
}

// Provider is the narrow capability interface every variant (STDIO
// ServerHandle, HTTP ServerHandle, CliHandle) implements. Each provider is
// a serialized actor: callers only ever observe it through this interface,
// never its internal state directly.
type Provider interface {
	// Slug is the operator-configured identifier namespacing this
	// provider's tools.
	Slug() string

	// Tools returns the provider's current tool snapshot, un-namespaced.
	// Non-suspending: readers observe a snapshot pointer, never block on
	// the transport.
	Tools() []Tool

	// CallTool invokes a tool by its original (un-namespaced) name with
	// JSON-encoded arguments and returns the tool result.
	CallTool(ctx context.Context, name string, argsJSON json.RawMessage) (CallResult, error)

	// Health reports the provider's current state, derived from its
	// ErrorRateTracker.
	Health() health.State

	// Shutdown cancels the provider's background work and waits for it to
	// stop, killing any subprocess still alive.
	Shutdown(ctx context.Context) error
}

// Package gateway exposes a reload.Handle's live Registry as a single MCP
// server, speaking both stdio and Streamable HTTP to clients.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/porter-mcp/porter/internal/core"
	"github.com/porter-mcp/porter/internal/namespace"
	"github.com/porter-mcp/porter/internal/provider"
	"github.com/porter-mcp/porter/internal/registry"
	"github.com/porter-mcp/porter/internal/reload"
)

const implName = "porter"

// Gateway owns the single long-lived *mcp.Server through which every
// registered tool is reachable, and keeps it in sync with its
// reload.Handle's current Registry. It mutates one server in place
// (AddTool/RemoveTools) rather than discarding and rebuilding it on every
// reload, so the SDK can push a tools/list_changed notification to sessions
// that are already connected — a freshly built server would only reach
// sessions established after the swap.
type Gateway struct {
	handle *reload.Handle
	server *mcp.Server

	mu         sync.Mutex
	registered map[string]bool // namespaced tool names currently added to server

	httpHandler *mcp.StreamableHTTPHandler
}

// New builds a Gateway over handle's current Registry and registers its
// initial tool set.
func New(handle *reload.Handle) *Gateway {
	g := &Gateway{
		handle:     handle,
		server:     mcp.NewServer(&mcp.Implementation{Name: implName, Version: "1.0.0"}, nil),
		registered: make(map[string]bool),
	}
	g.syncTools(handle.Current())

	g.httpHandler = mcp.NewStreamableHTTPHandler(
		func(*http.Request) *mcp.Server { return g.server },
		&mcp.StreamableHTTPOptions{Stateless: false},
	)

	return g
}

// OnConfigReload is a reload.OnSwap callback: wire it to handle.Watch so
// every hot-reload re-syncs the live server's tool set instead of building
// a parallel one.
func (g *Gateway) OnConfigReload(_ context.Context, next *registry.Registry) {
	g.syncTools(next)
}

// syncTools diffs the server's currently registered tool names against
// reg's current snapshot, removing what dropped out and adding what's new.
// AddTool/RemoveTools each trigger the SDK's own tools/list_changed
// notification to subscribed sessions — Gateway never sends one directly.
func (g *Gateway) syncTools(reg *registry.Registry) {
	tools := reg.Tools()

	wanted := make(map[string]registry.NamespacedTool, len(tools))
	for _, t := range tools {
		wanted[t.Name] = t
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var stale []string
	for name := range g.registered {
		if _, ok := wanted[name]; !ok {
			stale = append(stale, name)
		}
	}
	if len(stale) > 0 {
		g.server.RemoveTools(stale...)
		for _, name := range stale {
			delete(g.registered, name)
		}
	}

	for name, t := range wanted {
		if g.registered[name] {
			continue
		}
		g.addTool(t)
		g.registered[name] = true
	}

	zap.L().Info("gateway tool set synced",
		zap.Int("total", len(wanted)), zap.Int("removed", len(stale)))
}

func (g *Gateway) addTool(t registry.NamespacedTool) {
	var schema map[string]any
	if len(t.InputSchema) > 0 {
		if err := json.Unmarshal(t.InputSchema, &schema); err != nil {
			zap.L().Warn("tool has unparseable input schema, registering with an empty one",
				zap.String("tool", t.Name), zap.Error(err))
			schema = nil
		}
	}

	mcpTool := &mcp.Tool{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: schema,
	}

	name := t.Name
	handler := func(ctx context.Context, req *mcp.CallToolRequest, input map[string]any) (*mcp.CallToolResult, map[string]any, error) {
		return g.callTool(ctx, name, input)
	}

	mcp.AddTool(g.server, mcpTool, handler)
}

func (g *Gateway) callTool(ctx context.Context, name string, input map[string]any) (*mcp.CallToolResult, map[string]any, error) {
	argsJSON, err := json.Marshal(input)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding arguments: %w", err)
	}

	result, err := g.handle.Current().CallTool(ctx, name, argsJSON)
	if err != nil {
		if routingResult, ok := routingErrorResult(err); ok {
			return routingResult, nil, nil
		}
		return nil, nil, err
	}

	return buildToolResult(result), nil, nil
}

// routingErrorResult reports whether err is one of the Registry's routing
// failures — the client asked for a tool name the Registry itself could
// never dispatch, as opposed to a provider failing while handling a call it
// did dispatch. Those still surface as a normal tool result with IsError
// set, so a client sees "tool call failed: unknown tool" the same way it
// would see any other failed tool call, rather than a transport-level fault.
func routingErrorResult(err error) (*mcp.CallToolResult, bool) {
	var unknownTool *core.UnknownToolError
	var unhealthy *core.ProviderUnhealthyError
	var malformed *namespace.MalformedNameError

	switch {
	case errors.As(err, &unknownTool), errors.As(err, &unhealthy), errors.As(err, &malformed):
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		}, true
	default:
		return nil, false
	}
}

func buildToolResult(result provider.CallResult) *mcp.CallToolResult {
	if result.ErrorMsg != "" {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: result.ErrorMsg}},
		}
	}

	text := string(result.Content)
	if text == "" {
		text = "(no output)"
	}

	return &mcp.CallToolResult{
		IsError: result.IsError,
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// ServeStdio runs the gateway over the stdio transport until ctx is
// cancelled or the peer disconnects. Intended for `porter stdio`, a single
// short-lived client session per process.
func (g *Gateway) ServeStdio(ctx context.Context) error {
	return g.server.Run(ctx, &mcp.StdioTransport{})
}

// Serve runs the gateway's Streamable HTTP endpoint on addr until ctx is
// cancelled. Intended for `porter serve`.
func (g *Gateway) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/mcp", g.httpHandler)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("gateway HTTP shutdown error", zap.Error(err))
		}
	}()

	zap.L().Info("gateway listening", zap.String("address", addr))

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving gateway: %w", err)
	}
	return nil
}

// Shutdown tears down the underlying reload.Handle, stopping hot-reload and
// every provider it currently holds.
func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.handle.Shutdown(ctx)
}

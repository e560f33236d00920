package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/porter-mcp/porter/internal/health"
	"github.com/porter-mcp/porter/internal/provider"
)

// HTTPConfig configures one Streamable-HTTP-transport remote MCP server.
type HTTPConfig struct {
	Slug string
	URL  string

	// HandshakeTimeout bounds a single connect+initialize+tools/list
	// attempt. Defaults to 10s.
	HandshakeTimeout time.Duration
}

// HTTPHandle is a provider.Provider fronting a Streamable HTTP MCP
// server. Unlike StdioHandle there is no subprocess to restart. The
// supervisor retries connect+handshake+tools/list on the same backoff
// schedule until it succeeds or maxConsecutiveFailures is reached; once
// connected, the session is held until Shutdown. A transport failure after
// that is neither retried nor followed by a reconnect: CallTool records it
// in the health tracker, and the tool list stays as first listed.
type HTTPHandle struct {
	cfg    HTTPConfig
	logger *zap.Logger
	clock  clockwork.Clock

	mu      sync.RWMutex
	tools   []provider.Tool
	session *mcp.ClientSession
	restart bool

	tracker *health.Tracker

	cancel context.CancelFunc
	done   chan struct{}
}

// SpawnHTTP starts the supervisor goroutine and returns once the first
// connection attempt has either succeeded or entered its first backoff.
func SpawnHTTP(ctx context.Context, cfg HTTPConfig) (*HTTPHandle, error) {
	return spawnHTTPWithClock(ctx, cfg, clockwork.NewRealClock())
}

func spawnHTTPWithClock(ctx context.Context, cfg HTTPConfig, clock clockwork.Clock) (*HTTPHandle, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("mcpclient: http transport for %q requires a url", cfg.Slug)
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}

	supervisorCtx, cancel := context.WithCancel(context.Background())
	h := &HTTPHandle{
		cfg:     cfg,
		logger:  zap.L().With(zap.String("provider", cfg.Slug), zap.String("transport", "http")),
		clock:   clock,
		tracker: health.NewWithClock(clock),
		restart: true,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	ready := make(chan struct{})
	go h.supervise(supervisorCtx, ready)

	select {
	case <-ready:
	case <-ctx.Done():
	}

	return h, nil
}

func (h *HTTPHandle) supervise(ctx context.Context, ready chan struct{}) {
	defer close(h.done)

	var backoff time.Duration
	var failures int
	signaledReady := false
	signalReady := func() {
		if !signaledReady {
			signaledReady = true
			close(ready)
		}
	}

	for {
		if ctx.Err() != nil {
			signalReady()
			return
		}

		session, tools, err := h.connectOnce(ctx)
		if err != nil {
			h.logger.Warn("http connect/handshake failed", zap.Error(err), zap.Int("consecutive_failures", failures+1))
			failures++
			signalReady()
			if failures >= maxConsecutiveFailures {
				h.logger.Error("http provider exceeded max consecutive failures, giving up", zap.Int("failures", failures))
				h.setUnreachable()
				return
			}
			backoff = jittered(nextBackoff(backoff))
			if !h.sleepOrCancel(ctx, backoff) {
				return
			}
			continue
		}

		failures = 0
		backoff = 0
		h.setConnected(session, tools)
		signalReady()

		<-ctx.Done()
		_ = session.Close()
		return
	}
}

func (h *HTTPHandle) connectOnce(ctx context.Context) (*mcp.ClientSession, []provider.Tool, error) {
	handshakeCtx, cancel := context.WithTimeout(ctx, h.cfg.HandshakeTimeout)
	defer cancel()

	client := mcp.NewClient(&mcp.Implementation{Name: "porter", Version: "1.0.0"}, nil)
	transport := &mcp.StreamableClientTransport{
		Endpoint:   h.cfg.URL,
		HTTPClient: &http.Client{Timeout: h.cfg.HandshakeTimeout},
	}

	session, err := client.Connect(handshakeCtx, transport, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("mcp handshake with %q failed: %w", h.cfg.Slug, err)
	}

	listed, err := session.ListTools(handshakeCtx, &mcp.ListToolsParams{})
	if err != nil {
		_ = session.Close()
		return nil, nil, fmt.Errorf("tools/list on %q failed: %w", h.cfg.Slug, err)
	}

	return session, convertTools(listed.Tools), nil
}

func (h *HTTPHandle) setConnected(session *mcp.ClientSession, tools []provider.Tool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.session = session
	h.tools = tools
	h.restart = false
}

func (h *HTTPHandle) setDisconnected() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.session = nil
	h.tools = nil
	h.restart = true
}

// setUnreachable marks the provider as permanently dead after the
// supervisor gives up on reconnecting: it clears session state exactly
// like setDisconnected, and additionally forces the health tracker into
// StateUnhealthy so Registry.Tools/CallTool stop routing to it even though
// no call ever actually ran to accumulate real failure samples.
func (h *HTTPHandle) setUnreachable() {
	h.setDisconnected()
	h.tracker.ForceUnhealthy()
}

func (h *HTTPHandle) sleepOrCancel(ctx context.Context, d time.Duration) bool {
	select {
	case <-h.clock.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

// Slug implements provider.Provider.
func (h *HTTPHandle) Slug() string { return h.cfg.Slug }

// Tools implements provider.Provider.
func (h *HTTPHandle) Tools() []provider.Tool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.restart {
		return nil
	}
	return h.tools
}

// Health implements provider.Provider.
func (h *HTTPHandle) Health() health.State {
	return h.tracker.State()
}

// CallTool implements provider.Provider. Each call is a POST against the
// live session; a transport failure here feeds the health tracker but
// does not itself trigger a reconnect — the next call simply fails too,
// until the health state drops the provider out of routing.
func (h *HTTPHandle) CallTool(ctx context.Context, name string, argsJSON json.RawMessage) (provider.CallResult, error) {
	h.mu.RLock()
	session := h.session
	restart := h.restart
	h.mu.RUnlock()

	if restart || session == nil {
		err := &TransientlyUnavailableError{Slug: h.cfg.Slug}
		return provider.CallResult{IsError: true, ErrorMsg: err.Error()}, nil
	}

	var args map[string]any
	if len(argsJSON) > 0 {
		if err := json.Unmarshal(argsJSON, &args); err != nil {
			return provider.CallResult{IsError: true, ErrorMsg: fmt.Sprintf("invalid arguments: %v", err)}, nil
		}
	}

	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		h.tracker.Record(false)
		return provider.CallResult{IsError: true, ErrorMsg: err.Error()}, nil
	}
	h.tracker.Record(!result.IsError)

	return provider.CallResult{Content: contentToJSON(result), IsError: result.IsError}, nil
}

// Shutdown implements provider.Provider.
func (h *HTTPHandle) Shutdown(ctx context.Context) error {
	h.cancel()
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

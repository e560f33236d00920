package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/porter-mcp/porter/internal/health"
	"github.com/porter-mcp/porter/internal/provider"
)

// StdioConfig configures one STDIO-transport remote MCP server.
type StdioConfig struct {
	Slug    string
	Command string
	Args    []string
	Env     map[string]string
	Cwd     string

	// HandshakeTimeout bounds a single initialize+tools/list attempt.
	// Defaults to 10s.
	HandshakeTimeout time.Duration
}

// StdioHandle is a provider.Provider fronting a subprocess MCP server. A
// single supervisor goroutine owns the subprocess and client session;
// every other method only reads state behind the mutex, mirroring the
// "serialized actor reachable only via message-style channels" shape with
// a mutex in place of a command channel — idiomatic for Go, and
// equivalent in effect: no caller ever mutates session state directly.
type StdioHandle struct {
	cfg    StdioConfig
	logger *zap.Logger
	clock  clockwork.Clock

	mu      sync.RWMutex
	tools   []provider.Tool
	session *mcp.ClientSession
	cmd     *exec.Cmd
	restart bool // true while a restart is pending; tools()/CallTool fail fast

	tracker *health.Tracker
	stderr  *stderrRingBuffer

	cancel context.CancelFunc
	done   chan struct{}
}

// stderrBufferCapacity is the number of most-recent stderr lines retained
// per STDIO-managed subprocess, for diagnostics only.
const stderrBufferCapacity = 100

// SpawnStdio starts the supervisor goroutine and returns once the first
// connection attempt has either succeeded or entered its first backoff —
// it does not block for the full startup grace period; that is the
// Registry's concern.
func SpawnStdio(ctx context.Context, cfg StdioConfig) (*StdioHandle, error) {
	return spawnStdioWithClock(ctx, cfg, clockwork.NewRealClock())
}

func spawnStdioWithClock(ctx context.Context, cfg StdioConfig, clock clockwork.Clock) (*StdioHandle, error) {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}

	supervisorCtx, cancel := context.WithCancel(context.Background())
	h := &StdioHandle{
		cfg:     cfg,
		logger:  zap.L().With(zap.String("provider", cfg.Slug), zap.String("transport", "stdio")),
		clock:   clock,
		tracker: health.NewWithClock(clock),
		stderr:  newStderrRingBuffer(stderrBufferCapacity),
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

// heartbeatInterval is how often a connected session re-issues tools/list
// to detect a dead or hung subprocess. CommandTransport owns starting and
// reaping the child process; the supervisor never calls cmd.Wait itself to
// avoid racing the transport's own reap, so exit detection is by protocol
// failure rather than by process-exit notification.
const heartbeatInterval = 15 * time.Second

// supervise owns the subprocess and client session for the handle's
// lifetime, reconnecting with exponential backoff on abnormal exit. It
// closes ready the first time a connection attempt resolves (success or
// first failure), so Spawn can return promptly without waiting out the
// whole backoff schedule.
func (h *StdioHandle) supervise(ctx context.Context, ready chan struct{}) {
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

		session, cmd, tools, err := h.connectOnce(ctx)
		if err != nil {
			h.logger.Warn("stdio connect/handshake failed",
				zap.Error(err),
				zap.Int("consecutive_failures", failures+1),
				zap.Strings("recent_stderr", h.stderr.Lines()))
			failures++
			signalReady()
			if failures >= maxConsecutiveFailures {
				h.logger.Error("stdio provider exceeded max consecutive failures, giving up", zap.Int("failures", failures))
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
		h.setConnected(session, cmd, tools)
		signalReady()

		if !h.waitHealthyOrDead(ctx, session) {
			return
		}
		h.logger.Warn("stdio subprocess unreachable, restarting")
		h.setDisconnected()
	}
}

// waitHealthyOrDead blocks until either ctx is cancelled (returns false,
// the caller should stop entirely) or a heartbeat tools/list fails
// (returns true, the caller should reconnect). exec.CommandContext already
// arranges for the subprocess to be killed when ctx is cancelled.
func (h *StdioHandle) waitHealthyOrDead(ctx context.Context, session *mcp.ClientSession) bool {
	for {
		select {
		case <-ctx.Done():
			_ = session.Close()
			return false
		case <-h.clock.After(heartbeatInterval):
			if _, err := session.ListTools(ctx, &mcp.ListToolsParams{}); err != nil {
				h.logger.Debug("stdio heartbeat failed", zap.Error(err))
				return true
			}
		}
	}
}

// connectOnce spawns the subprocess, performs the MCP handshake, and lists
// tools once. The caller owns backoff/failure bookkeeping.
func (h *StdioHandle) connectOnce(ctx context.Context) (*mcp.ClientSession, *exec.Cmd, []provider.Tool, error) {
	handshakeCtx, cancel := context.WithTimeout(ctx, h.cfg.HandshakeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, h.cfg.Command, h.cfg.Args...)
	cmd.Dir = h.cfg.Cwd
	cmd.Env = mergeEnv(h.cfg.Env)
	cmd.Stderr = newLineWriter(h.stderr)

	client := mcp.NewClient(&mcp.Implementation{Name: "porter", Version: "1.0.0"}, nil)
	transport := &mcp.CommandTransport{Command: cmd}

	session, err := client.Connect(handshakeCtx, transport, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("mcp handshake with %q failed: %w", h.cfg.Slug, err)
	}

	listed, err := session.ListTools(handshakeCtx, &mcp.ListToolsParams{})
	if err != nil {
		_ = session.Close()
		return nil, nil, nil, fmt.Errorf("tools/list on %q failed: %w", h.cfg.Slug, err)
	}

	return session, cmd, convertTools(listed.Tools), nil
}

func (h *StdioHandle) setConnected(session *mcp.ClientSession, cmd *exec.Cmd, tools []provider.Tool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.session = session
	h.cmd = cmd
	h.tools = tools
	h.restart = false
}

func (h *StdioHandle) setDisconnected() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.session = nil
	h.cmd = nil
	h.tools = nil
	h.restart = true
}

// setUnreachable marks the provider as permanently dead after the
// supervisor gives up on reconnecting: it clears session state exactly
// like setDisconnected, and additionally forces the health tracker into
// StateUnhealthy so Registry.Tools/CallTool stop routing to it even though
// no call ever actually ran to accumulate real failure samples.
func (h *StdioHandle) setUnreachable() {
	h.setDisconnected()
	h.tracker.ForceUnhealthy()
}

// sleepOrCancel waits out d, honoring both the clock (so tests can use a
// fake one) and ctx cancellation. Returns false if ctx was cancelled.
func (h *StdioHandle) sleepOrCancel(ctx context.Context, d time.Duration) bool {
	select {
	case <-h.clock.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

// Slug implements provider.Provider.
func (h *StdioHandle) Slug() string { return h.cfg.Slug }

// Tools implements provider.Provider. Returns the empty list while a
// restart is pending.
func (h *StdioHandle) Tools() []provider.Tool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.restart {
		return nil
	}
	return h.tools
}

// Health implements provider.Provider.
func (h *StdioHandle) Health() health.State {
	return h.tracker.State()
}

// CallTool implements provider.Provider. Fails fast with
// TransientlyUnavailableError while a restart is pending; otherwise
// forwards to the live session and feeds the outcome into the health
// tracker.
func (h *StdioHandle) CallTool(ctx context.Context, name string, argsJSON json.RawMessage) (provider.CallResult, error) {
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
func (h *StdioHandle) Shutdown(ctx context.Context) error {
	h.cancel()
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

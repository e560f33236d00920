// Package reload watches porter.toml for changes and keeps a Registry
// swapped in behind a stable handle while the gateway runs.
package reload

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/porter-mcp/porter/internal/config"
	"github.com/porter-mcp/porter/internal/registry"
)

// debounceWindow absorbs the burst of write/chmod events a single save
// produces, so one edit triggers one reload rather than several.
const debounceWindow = 100 * time.Millisecond

const shutdownGrace = 5 * time.Second

// OnSwap is invoked with the freshly-swapped-in Registry immediately after
// it becomes current. Gateways use it to push a tools/list_changed
// notification to every connected peer.
type OnSwap func(ctx context.Context, next *registry.Registry)

// Handle holds the live Registry behind an atomically-swapped pointer and,
// once Watch is called, the fsnotify.Watcher keeping it that way.
//
// Current is lock-free by design: a caller captures the Registry pointer
// once at the start of a request and uses it for the whole request, even
// if a reload swaps in a new one mid-flight — in-flight calls finish
// against the Registry they started with, new calls see the new one, and
// no client session is ever disrupted by a reload. A mutex would work too,
// but holding (or repeatedly re-acquiring) one across a call that may
// suspend on a provider round-trip risks serializing unrelated in-flight
// calls behind a slow one; atomic.Pointer has no such hazard.
//
// The watcher field exists for exactly one reason: an fsnotify.Watcher whose
// last reference is dropped closes its OS-level watch silently, with no
// error and no event — Watch retains it on the Handle for as long as
// hot-reload is expected to keep working, rather than letting it fall out
// of scope at the end of the setup call.
type Handle struct {
	current    atomic.Pointer[registry.Registry]
	configPath string
	watcher    atomic.Pointer[fsnotify.Watcher]
}

// New wraps an already-built Registry for hot-reload. configPath is the
// file Watch will observe; it is always the file current was loaded from.
func New(configPath string, current *registry.Registry) *Handle {
	h := &Handle{configPath: configPath}
	h.current.Store(current)
	return h
}

// Current returns the presently active Registry. Lock-free; safe for
// concurrent use alongside Watch's swaps.
func (h *Handle) Current() *registry.Registry {
	return h.current.Load()
}

// Watch starts watching configPath's directory for changes in a background
// goroutine that runs until ctx is cancelled, and returns once the watch is
// in place. The directory, not the file itself, is watched: editors
// and deploy tooling commonly replace a config file via a rename rather
// than an in-place write, and a watch on the old inode would otherwise go
// silent after the first save.
//
// Each relevant event is debounced, the file is re-parsed and a fresh
// Registry spawned, and on success the Registry is swapped in and onSwap
// is called with it. A failed reload — bad TOML, a provider that fails to
// spawn — is logged and the previous Registry keeps serving; a bad save
// never tears down what's already running.
func (h *Handle) Watch(ctx context.Context, onSwap OnSwap) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}

	dir := filepath.Dir(h.configPath)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watching %q: %w", dir, err)
	}

	h.watcher.Store(watcher)

	zap.L().Info("hot-reload watching config file", zap.String("path", h.configPath))

	go h.loop(ctx, watcher, onSwap)
	return nil
}

func (h *Handle) loop(ctx context.Context, watcher *fsnotify.Watcher, onSwap OnSwap) {
	defer func() { _ = watcher.Close() }()

	target := filepath.Clean(h.configPath)

	var debounce *time.Timer
	var debounceC <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(debounceWindow)
			} else {
				debounce.Reset(debounceWindow)
			}
			debounceC = debounce.C

		case <-debounceC:
			debounceC = nil
			h.reload(ctx, onSwap)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			zap.L().Warn("config watcher error", zap.String("path", h.configPath), zap.Error(err))

		case <-ctx.Done():
			return
		}
	}
}

func (h *Handle) reload(ctx context.Context, onSwap OnSwap) {
	cfg, err := config.Load(h.configPath)
	if err != nil {
		zap.L().Warn("hot-reload failed, keeping previous config",
			zap.String("path", h.configPath), zap.Error(err))
		return
	}

	next, err := registry.FromConfig(ctx, cfg)
	if err != nil {
		zap.L().Warn("hot-reload failed, keeping previous config",
			zap.String("path", h.configPath), zap.Error(err))
		return
	}

	previous := h.current.Swap(next)

	zap.L().Info("config reloaded",
		zap.String("path", h.configPath), zap.Int("tools", len(next.Tools())))

	if onSwap != nil {
		onSwap(ctx, next)
	}

	// The superseded Registry's providers (subprocesses, open transports)
	// are no longer reachable from Current and must be torn down
	// explicitly — Go has no destructor to do it when the last reference
	// to previous goes out of scope.
	go func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := previous.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("error shutting down superseded registry", zap.Error(err))
		}
	}()
}

// Shutdown stops the file watcher, if one is running, and shuts down the
// currently active Registry.
func (h *Handle) Shutdown(ctx context.Context) error {
	if w := h.watcher.Load(); w != nil {
		_ = w.Close()
	}
	return h.current.Load().Shutdown(ctx)
}

// Package registry aggregates every configured provider — remote MCP
// servers and wrapped CLI tools alike — behind one namespaced tool surface,
// and routes calls back to the provider that owns the un-namespaced name.
package registry

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/agnivade/levenshtein"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	"github.com/porter-mcp/porter/internal/config"
	"github.com/porter-mcp/porter/internal/core"
	"github.com/porter-mcp/porter/internal/guard"
	"github.com/porter-mcp/porter/internal/health"
	"github.com/porter-mcp/porter/internal/namespace"
	"github.com/porter-mcp/porter/internal/provider"
	"github.com/porter-mcp/porter/internal/provider/clirunner"
	"github.com/porter-mcp/porter/internal/provider/mcpclient"
)

// startupGrace bounds how long FromConfig waits for freshly spawned
// providers to leave StateStarting before returning. Providers still
// Starting after the grace period are kept; their health continues to
// surface through Health/Tools/CallTool as it resolves.
const startupGrace = 2 * time.Second

// NamespacedTool is a provider's Tool re-labelled with the slug__name
// naming scheme and "[via slug] " description prefix, ready to hand to an
// MCP client.
type NamespacedTool struct {
	Name        string
	Description string
	InputSchema []byte
}

// Registry holds every spawned provider, keyed by slug.
type Registry struct {
	providers *xsync.MapOf[string, provider.Provider]
	slugs     []string // stable order: spawn order, which FromConfig sorts first
}

// FromConfig validates slug uniqueness across servers and cli tables
// (already enforced by config.Validate, re-asserted here defensively),
// spawns one provider per enabled entry, and returns once every provider
// has either left StateStarting or the startup grace period elapses.
func FromConfig(ctx context.Context, cfg *config.Config) (*Registry, error) {
	reg := &Registry{providers: xsync.NewMapOf[string, provider.Provider]()}

	seen := mapset.NewSet[string]()

	for _, name := range sortedKeys(cfg.Servers) {
		sc := cfg.Servers[name]
		if !sc.IsEnabled() {
			continue
		}
		if !seen.Add(sc.Slug) {
			return nil, &core.DuplicateSlugError{Slug: sc.Slug}
		}

		p, err := spawnServer(ctx, sc)
		if err != nil {
			return nil, fmt.Errorf("spawning server %q: %w", sc.Slug, err)
		}
		reg.addProvider(p)
	}

	for _, name := range sortedKeys(cfg.CLI) {
		cc := cfg.CLI[name]
		if !cc.IsEnabled() {
			continue
		}
		if !seen.Add(cc.Slug) {
			return nil, &core.DuplicateSlugError{Slug: cc.Slug}
		}

		p, err := spawnCLI(ctx, cc)
		if err != nil {
			return nil, fmt.Errorf("spawning cli tool %q: %w", cc.Slug, err)
		}
		reg.addProvider(p)
	}

	sort.Strings(reg.slugs)
	reg.awaitStartupGrace()

	return reg, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *Registry) addProvider(p provider.Provider) {
	r.providers.Store(p.Slug(), p)
	r.slugs = append(r.slugs, p.Slug())
}

func spawnServer(ctx context.Context, sc config.ServerConfig) (provider.Provider, error) {
	handshake := time.Duration(sc.HandshakeTimeoutSecs) * time.Second

	switch sc.Transport {
	case config.TransportStdio:
		return mcpclient.SpawnStdio(ctx, mcpclient.StdioConfig{
			Slug:             sc.Slug,
			Command:          sc.Command,
			Args:             sc.Args,
			Env:              sc.ResolvedEnv(),
			Cwd:              sc.Cwd,
			HandshakeTimeout: handshake,
		})
	case config.TransportHTTP:
		return mcpclient.SpawnHTTP(ctx, mcpclient.HTTPConfig{
			Slug:             sc.Slug,
			URL:              sc.URL,
			HandshakeTimeout: handshake,
		})
	default:
		return nil, fmt.Errorf("unsupported server transport %q", sc.Transport)
	}
}

func spawnCLI(ctx context.Context, cc config.CLIConfig) (provider.Provider, error) {
	schemaOverride, err := cc.SchemaOverrideJSON()
	if err != nil {
		return nil, fmt.Errorf("schema_override: %w", err)
	}

	return clirunner.Spawn(ctx, clirunner.Config{
		Slug:    cc.Slug,
		Command: cc.Command,
		Profile: cc.Profile,
		Args:    cc.Args,
		Env:     cc.ResolvedEnv(),
		Cwd:     cc.Cwd,
		Rule: guard.AccessRule{
			Allow:       cc.Allow,
			Deny:        cc.Deny,
			WriteAccess: cc.WriteAccess,
		},
		TimeoutSecs:         cc.TimeoutSecs,
		InjectFlags:         cc.InjectFlags,
		ExpandSubcommands:   cc.ExpandSubcommands,
		SchemaOverride:      schemaOverride,
		HelpDepth:           cc.HelpDepth,
		DiscoveryBudgetSecs: cc.DiscoveryBudgetSecs,
	})
}

// awaitStartupGrace polls every provider's health at a short interval until
// none remain StateStarting or the grace period elapses, whichever comes
// first. Providers still Starting afterward are kept as-is; Tools/CallTool
// already treat Starting correctly without this method's involvement.
func (r *Registry) awaitStartupGrace() {
	deadline := time.Now().Add(startupGrace)
	const pollInterval = 50 * time.Millisecond

	for time.Now().Before(deadline) {
		if !r.anyStarting() {
			return
		}
		time.Sleep(pollInterval)
	}

	r.providers.Range(func(slug string, p provider.Provider) bool {
		if p.Health() == health.StateStarting {
			zap.L().Debug("provider still starting after grace period", zap.String("slug", slug))
		}
		return true
	})
}

func (r *Registry) anyStarting() bool {
	starting := false
	r.providers.Range(func(_ string, p provider.Provider) bool {
		if p.Health() == health.StateStarting {
			starting = true
			return false
		}
		return true
	})
	return starting
}

// Tools returns the concatenation of every non-Unhealthy provider's current
// tool snapshot, namespaced and ordered by slug then original tool name.
func (r *Registry) Tools() []NamespacedTool {
	slugs := append([]string(nil), r.slugs...)
	sort.Strings(slugs)
	var out []NamespacedTool
	for _, slug := range slugs {
		p, ok := r.providers.Load(slug)
		if !ok || p.Health() == health.StateUnhealthy {
			continue
		}
		tools := p.Tools()
		sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
		for _, t := range tools {
			out = append(out, NamespacedTool{
				Name:        namespace.Namespaced(slug, t.Name),
				Description: namespace.Describe(slug, t.Description),
				InputSchema: t.InputSchema,
			})
		}
	}
	return out
}

// CallTool splits a namespaced tool name, routes to the owning provider,
// and invokes it with the un-namespaced name. Errors are returned as Go
// errors here — unlike a Provider's own CallTool, which never returns a Go
// error for a tool-level failure — because routing failures (unknown slug,
// malformed name, unhealthy provider) are Registry-level, not tool-level,
// outcomes; the caller is responsible for turning them into a normal
// tool-level result before they reach the client.
func (r *Registry) CallTool(ctx context.Context, namespacedName string, argsJSON []byte) (provider.CallResult, error) {
	slug, toolName, err := namespace.Split(namespacedName)
	if err != nil {
		return provider.CallResult{}, err
	}

	p, ok := r.providers.Load(slug)
	if !ok {
		return provider.CallResult{}, &core.UnknownToolError{
			Name:       namespacedName,
			Suggestion: r.nearestToolName(namespacedName),
		}
	}
	if p.Health() == health.StateUnhealthy {
		return provider.CallResult{}, &core.ProviderUnhealthyError{Slug: slug}
	}

	return p.CallTool(ctx, toolName, argsJSON)
}

// nearestToolName returns the currently listed namespaced tool name closest
// to want by Levenshtein edit distance, or "" if the registry has no tools
// at all. This is operator-facing polish attached to UnknownToolError, not
// a routing decision — CallTool still fails the call outright.
func (r *Registry) nearestToolName(want string) string {
	best := ""
	bestDist := -1
	for _, t := range r.Tools() {
		d := levenshtein.ComputeDistance(want, t.Name)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = t.Name
		}
	}
	return best
}

// Shutdown cancels and awaits every provider's background work, bounded by
// ctx's deadline. Subprocesses still alive are killed by each provider's
// own Shutdown.
func (r *Registry) Shutdown(ctx context.Context) error {
	var firstErr error
	r.providers.Range(func(slug string, p provider.Provider) bool {
		if err := p.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shutting down %q: %w", slug, err)
		}
		return true
	})
	return firstErr
}

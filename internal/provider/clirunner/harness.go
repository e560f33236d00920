// Package clirunner implements Porter's CLI Harness: turning one configured
// command-line program into one or more MCP tools via help-text discovery,
// and executing calls against it under the Access Guard.
package clirunner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/porter-mcp/porter/internal/guard"
	"github.com/porter-mcp/porter/internal/guard/profiles"
	"github.com/porter-mcp/porter/internal/health"
	"github.com/porter-mcp/porter/internal/provider"
)

// Config is the resolved, validated configuration for one `[cli.<name>]`
// entry — everything the harness needs to spawn and classify calls for a
// single CLI provider. internal/config is responsible for producing one of
// these from porter.toml plus env substitution.
type Config struct {
	Slug        string
	Command     string
	Profile     string // built-in profile name, "" if none
	Args        []string // fixed args always appended after user args, per config
	Env         map[string]string
	Cwd         string
	Rule        guard.AccessRule
	TimeoutSecs int
	InjectFlags []string

	// ExpandSubcommands mirrors the TOML field: nil means "unset" (defer to
	// profile/help_depth defaults), matching determine_expansion_mode's
	// precedence.
	ExpandSubcommands *bool
	SchemaOverride    json.RawMessage
	HelpDepth         *int // nil means unset

	// DiscoveryBudgetSecs bounds the wall-clock time `--help` discovery may
	// spend inside Spawn; defaults applied by internal/config.
	DiscoveryBudgetSecs int
}

// expansionMode is the internal decision of how many tools a CLI config
// produces.
type expansionMode int

const (
	modeSingleTool expansionMode = iota
	modeStaticProfile
	modeDiscovery
)

// UnknownProfileError reports a `profile` config value with no matching
// built-in.
type UnknownProfileError struct {
	Slug    string
	Profile string
}

func (e *UnknownProfileError) Error() string {
	return fmt.Sprintf("%s: unknown built-in profile %q. available profiles: %s",
		e.Slug, e.Profile, strings.Join(profiles.Available(), ", "))
}

// ExpandSubcommandsRequiresProfileError reports expand_subcommands=true
// without a resolvable profile.
type ExpandSubcommandsRequiresProfileError struct{ Slug string }

func (e *ExpandSubcommandsRequiresProfileError) Error() string {
	return fmt.Sprintf("%s: expand_subcommands = true requires a built-in profile", e.Slug)
}

// Handle is the CLI Harness's runtime Provider: one configured command plus
// its discovered/expanded tool set, access rule, and execution parameters.
// CLI handles have no persistent connection to maintain, so Health always
// reports Healthy.
type Handle struct {
	cfg      Config
	guard    guard.AccessRule
	readOnly guard.ReadOnlyChecker

	mu    sync.RWMutex
	tools []provider.Tool

	expanded bool // tool names encode a subcommand path, split on "_"

	exec *Executor
}

var _ provider.Provider = (*Handle)(nil)

func (h *Handle) Slug() string { return h.cfg.Slug }

func (h *Handle) Tools() []provider.Tool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]provider.Tool, len(h.tools))
	copy(out, h.tools)
	return out
}

// Health is always Healthy: a CLI handle is a local executable definition,
// not a connection that can degrade.
func (h *Handle) Health() health.State { return health.StateHealthy }

// Shutdown is a no-op: a CLI handle owns no background task or open
// connection, only per-call subprocesses which have already exited by the
// time CallTool returns.
func (h *Handle) Shutdown(ctx context.Context) error { return nil }

// genericArgsSchema is the input schema for every expanded subcommand
// tool: an optional array of additional positional/flag strings.
var genericArgsSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"args": {
			"type": "array",
			"items": {"type": "string"},
			"description": "Additional arguments to pass to the command"
		}
	}
}`)

// Spawn builds a Handle from a validated Config: resolves the built-in
// profile (if named), determines the expansion mode, runs `--help`
// discovery when that mode calls for it, and registers the resulting
// tool(s). Spawn fails only on an unknown profile or on
// expand_subcommands = true without a profile; help text that cannot be
// run or parsed yields an empty schema, and discovery errors for
// individual subcommand paths are logged and skipped, never fatal.
func Spawn(ctx context.Context, cfg Config) (*Handle, error) {
	var profile profiles.Profile
	if cfg.Profile != "" {
		p, ok := profiles.Get(cfg.Profile)
		if !ok {
			return nil, &UnknownProfileError{Slug: cfg.Slug, Profile: cfg.Profile}
		}
		profile = p
	}

	injectFlags := cfg.InjectFlags
	if len(injectFlags) == 0 && profile != nil {
		injectFlags = profile.DefaultInjectFlags()
	}

	mode, discoveryDepth, err := determineExpansionMode(cfg, profile)
	if err != nil {
		return nil, err
	}

	var readOnly guard.ReadOnlyChecker
	if profile != nil {
		readOnly = func(argv []string) bool { return profile.IsReadOnly(argv) }
	} else {
		readOnly = func(argv []string) bool { return guard.IsLikelyReadOnly(argv) }
	}

	cfg.InjectFlags = injectFlags

	h := &Handle{
		cfg:      cfg,
		guard:    cfg.Rule,
		readOnly: readOnly,
		exec:     NewExecutor(),
	}

	switch mode {
	case modeSingleTool:
		tool, err := h.buildSingleTool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		h.tools = []provider.Tool{tool}
		h.expanded = false

	case modeStaticProfile:
		h.tools = expandFromSubcommands(cfg.Slug, cfg.Command, profile.ReadOnlySubcommands())
		h.expanded = true

	case modeDiscovery:
		var initial [][]string
		if profile != nil {
			initial = profile.ReadOnlySubcommands()
		}
		h.tools = expandFromSubcommands(cfg.Slug, cfg.Command, initial)
		h.expanded = true

		discovered := Discover(ctx, DiscoveryConfig{
			Command:        cfg.Command,
			MaxDepth:       discoveryDepth,
			TimeoutPerHelp: minDuration(time.Duration(cfg.TimeoutSecs)*time.Second, 10*time.Second),
			TotalBudget:    discoveryBudget(cfg),
			Env:            cfg.Env,
		})
		for _, derr := range discovered.Errors {
			zap.L().Warn("help discovery failed for subcommand path",
				zap.String("slug", cfg.Slug), zap.Strings("path", derr.Path), zap.String("reason", derr.Reason))
		}

		h.mergeDiscovered(cfg, profile, discovered.Paths)
	}

	return h, nil
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

func discoveryBudget(cfg Config) time.Duration {
	if cfg.DiscoveryBudgetSecs > 0 {
		return time.Duration(cfg.DiscoveryBudgetSecs) * time.Second
	}
	return 60 * time.Second
}

// determineExpansionMode applies a fixed precedence (see DESIGN.md): an
// explicit expand_subcommands=false or help_depth=0 disables expansion
// outright; an explicit positive help_depth always wins into discovery
// mode; an unset help_depth with a profile whose ExpandByDefault is true
// falls back to depth 3; an explicit expand_subcommands=true without
// help_depth falls back to the profile's static subcommand list with no
// live discovery; anything else is a single tool.
func determineExpansionMode(cfg Config, profile profiles.Profile) (expansionMode, int, error) {
	if cfg.ExpandSubcommands != nil && !*cfg.ExpandSubcommands {
		return modeSingleTool, 0, nil
	}
	if cfg.HelpDepth != nil && *cfg.HelpDepth == 0 {
		return modeSingleTool, 0, nil
	}
	if cfg.HelpDepth != nil && *cfg.HelpDepth > 0 {
		return modeDiscovery, *cfg.HelpDepth, nil
	}
	if cfg.HelpDepth == nil && profile != nil && profile.ExpandByDefault() {
		return modeDiscovery, 3, nil
	}
	if cfg.ExpandSubcommands != nil && *cfg.ExpandSubcommands {
		if profile == nil {
			return 0, 0, &ExpandSubcommandsRequiresProfileError{Slug: cfg.Slug}
		}
		return modeStaticProfile, 0, nil
	}
	return modeSingleTool, 0, nil
}

func (h *Handle) buildSingleTool(ctx context.Context, cfg Config) (provider.Tool, error) {
	var schema json.RawMessage
	if len(cfg.SchemaOverride) > 0 {
		schema = cfg.SchemaOverride
	} else {
		timeout := time.Duration(cfg.TimeoutSecs) * time.Second
		argSchema, err := runAndParseHelp(ctx, cfg.Command, nil, cfg.Env, timeout)
		if err != nil {
			// Unparseable help yields an empty schema, not a fatal error.
			zap.L().Warn("help parsing failed, using empty schema", zap.String("slug", cfg.Slug), zap.Error(err))
			schema = json.RawMessage(`{"type":"object","properties":{}}`)
		} else {
			schema = argSchema.ToJSONSchema()
		}
	}

	return provider.Tool{
		Name:        cfg.Command,
		Description: fmt.Sprintf("CLI tool: %s (via Porter CLI harness)", cfg.Command),
		InputSchema: schema,
	}, nil
}

func runAndParseHelp(ctx context.Context, command string, prefix []string, env map[string]string, timeout time.Duration) (ArgumentSchema, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	helpText, err := captureHelpText(runCtx, command, prefix, env)
	if err != nil {
		return ArgumentSchema{}, err
	}
	return ParseFlagDefinitions(strings.Join(append([]string{command}, prefix...), " "), helpText)
}

func expandFromSubcommands(slug, command string, paths [][]string) []provider.Tool {
	tools := make([]provider.Tool, 0, len(paths))
	seen := make(map[string]bool)
	for _, path := range paths {
		name := strings.Join(path, "_")
		if seen[name] {
			continue
		}
		seen[name] = true
		tools = append(tools, provider.Tool{
			Name:        name,
			Description: fmt.Sprintf("%s %s (read-only)", command, strings.Join(path, " ")),
			InputSchema: genericArgsSchema,
		})
	}
	return tools
}

// mergeDiscovered filters discovered paths to read-only ones (per profile or
// the generic heuristic), then merges them into h.tools, with the existing
// (static-profile) entries taking precedence on name collision.
func (h *Handle) mergeDiscovered(cfg Config, profile profiles.Profile, paths []DiscoveredPath) {
	h.mu.Lock()
	defer h.mu.Unlock()

	seen := make(map[string]bool, len(h.tools))
	for _, t := range h.tools {
		seen[t.Name] = true
	}

	for _, dp := range paths {
		isReadOnly := false
		if profile != nil {
			isReadOnly = profile.IsReadOnly(dp.Path)
		} else {
			isReadOnly = guard.IsLikelyReadOnly(dp.Path)
		}
		if !isReadOnly {
			continue
		}

		name := strings.Join(dp.Path, "_")
		if seen[name] {
			continue
		}
		seen[name] = true

		h.tools = append(h.tools, provider.Tool{
			Name:        name,
			Description: fmt.Sprintf("%s %s (read-only, discovered)", cfg.Command, strings.Join(dp.Path, " ")),
			InputSchema: genericArgsSchema,
		})
	}

	zap.L().Info("CLI discovery complete",
		zap.String("slug", cfg.Slug), zap.Int("total_tools", len(h.tools)))
}

// CallTool spawns the configured command for the named tool. When the
// handle is in expanded mode, name is decoded back into its subcommand
// path (reversing the "_"-joined encoding) and prepended to the user's
// arguments before the Access Guard check and spawn.
func (h *Handle) CallTool(ctx context.Context, name string, argsJSON json.RawMessage) (provider.CallResult, error) {
	var subcommandPath []string
	if h.expanded {
		subcommandPath = strings.Split(name, "_")
	}
	userArgs := extractArgsFromJSON(argsJSON)

	guardArgv := append(append([]string{}, subcommandPath...), userArgs...)
	if err := guard.Check(h.cfg.Command, guardArgv, h.guard, h.readOnly); err != nil {
		return provider.CallResult{IsError: true, ErrorMsg: err.Error()}, nil
	}

	// argv = [fixed_subcommand_path, ...inject_flags, ...user_args,
	// ...config_args]: inject_flags sit ahead of the caller's own
	// arguments, and config.Args (the operator's fixed "args" config
	// field) is always a trailing suffix.
	fullArgv := make([]string, 0, len(subcommandPath)+len(h.cfg.InjectFlags)+len(userArgs)+len(h.cfg.Args))
	fullArgv = append(fullArgv, subcommandPath...)
	fullArgv = append(fullArgv, h.cfg.InjectFlags...)
	fullArgv = append(fullArgv, userArgs...)
	fullArgv = append(fullArgv, h.cfg.Args...)

	timeout := time.Duration(h.cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	result, err := h.exec.Run(ctx, h.cfg.Command, fullArgv, mergeEnv(h.cfg.Env), h.cfg.Cwd, timeout)
	if err != nil {
		return provider.CallResult{IsError: true, ErrorMsg: err.Error()}, nil
	}
	if result.TimedOut {
		return provider.CallResult{IsError: true, ErrorMsg: "call timed out"}, nil
	}

	content, isJSON := tryJSONContent(result.Stdout)
	isError := result.ExitCode != 0 && result.Stderr != ""

	if isJSON {
		return provider.CallResult{Content: content, IsError: isError}, nil
	}
	encoded, _ := json.Marshal(result)
	return provider.CallResult{Content: encoded, IsError: isError}, nil
}

// extractArgsFromJSON implements the CLI harness's argument convention:
// positional strings under an "args" array, plus any other key mapped to a
// "--key value" flag pair (hyphenated per JSON convention), booleans
// emitting a bare flag when true and nothing when false/null.
func extractArgsFromJSON(argsJSON json.RawMessage) []string {
	if len(argsJSON) == 0 {
		return nil
	}

	var arguments map[string]json.RawMessage
	if err := json.Unmarshal(argsJSON, &arguments); err != nil {
		return nil
	}

	var result []string

	if rawArgs, ok := arguments["args"]; ok {
		var positional []string
		if err := json.Unmarshal(rawArgs, &positional); err == nil {
			result = append(result, positional...)
		}
	}

	for key, raw := range arguments {
		if key == "args" {
			continue
		}
		flag := "--" + strings.ReplaceAll(key, "_", "-")

		var asBool bool
		if err := json.Unmarshal(raw, &asBool); err == nil {
			if asBool {
				result = append(result, flag)
			}
			continue
		}

		var asString string
		if err := json.Unmarshal(raw, &asString); err == nil {
			result = append(result, flag, asString)
			continue
		}

		if string(raw) == "null" {
			continue
		}

		result = append(result, flag, strings.Trim(string(raw), `"`))
	}

	return result
}

func tryJSONContent(stdout string) (json.RawMessage, bool) {
	trimmed := strings.TrimSpace(stdout)
	if trimmed == "" {
		return nil, false
	}
	if !json.Valid([]byte(trimmed)) {
		return nil, false
	}
	return json.RawMessage(trimmed), true
}

// captureHelpText runs "command [prefix...] --help" and returns whichever
// stream (stdout, falling back to stderr) carries the help text. A non-zero
// exit from --help is common and not itself an error.
func captureHelpText(ctx context.Context, command string, prefix []string, env map[string]string) (string, error) {
	args := append(append([]string{}, prefix...), "--help")
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Env = mergeEnv(env)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", fmt.Errorf("failed to spawn %q: %w", command, err)
		}
	}

	if strings.TrimSpace(stdout.String()) != "" {
		return stdout.String(), nil
	}
	return stderr.String(), nil
}

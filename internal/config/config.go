// Package config loads and validates porter.toml: the TOML description of
// every remote MCP server and CLI tool Porter fronts.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// TransportKind is the wire transport a [servers.*] entry speaks.
type TransportKind string

const (
	TransportStdio TransportKind = "stdio"
	TransportHTTP  TransportKind = "http"
	TransportCLI   TransportKind = "cli"
)

const (
	defaultHandshakeTimeoutSecs = 30
	defaultCLITimeoutSecs       = 30
	defaultDiscoveryBudgetSecs  = 60
	// defaultHelpDepth is applied to a [cli.*] entry that omits help_depth
	// and has no profile attached. A profiled entry instead defers to
	// clirunner's profile-aware fallback (depth 3) so that ExpandByDefault
	// profiles keep expanding the way they always have — see DESIGN.md.
	defaultHelpDepth = 2
	maxHelpDepth     = 5
)

// ServerConfig is one `[servers.<name>]` entry: a remote MCP server reached
// over STDIO or Streamable HTTP.
type ServerConfig struct {
	Slug      string        `mapstructure:"slug" validate:"required"`
	Transport TransportKind `mapstructure:"transport" validate:"required"`

	// Enabled is a pointer so an omitted field (default true) is
	// distinguishable from an explicit `enabled = false`.
	Enabled *bool `mapstructure:"enabled"`

	// STDIO fields.
	Command string            `mapstructure:"command"`
	Args    []string          `mapstructure:"args"`
	Env     map[string]string `mapstructure:"env"`
	Cwd     string            `mapstructure:"cwd"`

	// HTTP fields.
	URL string `mapstructure:"url"`

	HandshakeTimeoutSecs int `mapstructure:"handshake_timeout_secs"`
}

// IsEnabled reports whether this server should be spawned. Defaults to true.
func (c ServerConfig) IsEnabled() bool { return c.Enabled == nil || *c.Enabled }

// CLIConfig is one `[cli.<name>]` entry: a local executable wrapped as one
// or more MCP tools by the CLI Harness.
type CLIConfig struct {
	Slug      string        `mapstructure:"slug" validate:"required"`
	Transport TransportKind `mapstructure:"transport" validate:"required"`

	// Enabled is a pointer so an omitted field (default true) is
	// distinguishable from an explicit `enabled = false`.
	Enabled *bool `mapstructure:"enabled"`

	// Command's non-emptiness is checked manually, gated on Enabled — a
	// disabled entry may be a placeholder with no command yet.
	Command string            `mapstructure:"command"`
	Profile string            `mapstructure:"profile"`
	Args    []string          `mapstructure:"args"`
	Env     map[string]string `mapstructure:"env"`
	Cwd     string            `mapstructure:"cwd"`

	Allow       []string        `mapstructure:"allow"`
	Deny        []string        `mapstructure:"deny"`
	WriteAccess map[string]bool `mapstructure:"write_access"`

	TimeoutSecs int      `mapstructure:"timeout_secs"`
	InjectFlags []string `mapstructure:"inject_flags"`

	// ExpandSubcommands and HelpDepth are pointers so "unset in TOML" is
	// distinguishable from an explicit false/0, mirroring clirunner.Config.
	ExpandSubcommands *bool          `mapstructure:"expand_subcommands"`
	SchemaOverride    map[string]any `mapstructure:"schema_override"`
	HelpDepth         *int           `mapstructure:"help_depth"`

	DiscoveryBudgetSecs int `mapstructure:"discovery_budget_secs"`
}

// IsEnabled reports whether this CLI tool should be wrapped. Defaults to true.
func (c CLIConfig) IsEnabled() bool { return c.Enabled == nil || *c.Enabled }

// SchemaOverrideJSON re-marshals SchemaOverride to a json.RawMessage for
// consumers (clirunner.Config) that want it as raw JSON-Schema rather than a
// generic TOML-decoded map.
func (c CLIConfig) SchemaOverrideJSON() (json.RawMessage, error) {
	if c.SchemaOverride == nil {
		return nil, nil
	}
	return json.Marshal(c.SchemaOverride)
}

// ResolvedEnv returns Env with every "${VAR}" reference substituted for the
// current process environment's value. Validate must run first.
func (c ServerConfig) ResolvedEnv() map[string]string { return resolveEnv(c.Env) }

// ResolvedEnv returns Env with every "${VAR}" reference substituted for the
// current process environment's value. Validate must run first.
func (c CLIConfig) ResolvedEnv() map[string]string { return resolveEnv(c.Env) }

// Config is the fully-parsed, not-yet-validated contents of porter.toml.
type Config struct {
	Servers map[string]ServerConfig `mapstructure:"servers"`
	CLI     map[string]CLIConfig    `mapstructure:"cli"`
}

// Load resolves the config file path, reads and parses it as TOML, applies
// field defaults, and validates the result. path, if non-empty, is used
// verbatim (the `--config` flag); otherwise resolution falls back to
// ./porter.toml, then <user-config-dir>/porter/porter.toml. A config file
// that cannot be found at any of those locations is a fatal startup error.
func Load(path string) (*Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(resolved)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", resolved, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", resolved, err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ResolvePath applies the --config / ./porter.toml / user-config-dir
// discovery order without reading or parsing the file. Callers that need
// the resolved path ahead of Load — cmd/porter hands it to the hot-reload
// watcher, which must watch the exact file Load ends up reading — call
// this directly instead of duplicating the discovery order.
func ResolvePath(explicit string) (string, error) {
	return resolvePath(explicit)
}

// resolvePath implements the --config / ./porter.toml / user-config-dir
// discovery order. An explicit path that does not exist is still returned
// (and fails loudly at ReadInConfig) rather than silently falling through,
// since the operator asked for that file specifically.
func resolvePath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	if _, err := os.Stat("porter.toml"); err == nil {
		return "porter.toml", nil
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		candidate := filepath.Join(userConfigDir, "porter", "porter.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("no config file found: tried ./porter.toml%s",
		configDirHint(userConfigDir, err))
}

func configDirHint(dir string, err error) string {
	if err != nil {
		return ""
	}
	return fmt.Sprintf(" and %s", filepath.Join(dir, "porter", "porter.toml"))
}

func applyDefaults(cfg *Config) {
	for name, sc := range cfg.Servers {
		if sc.HandshakeTimeoutSecs == 0 {
			sc.HandshakeTimeoutSecs = defaultHandshakeTimeoutSecs
		}
		cfg.Servers[name] = sc
	}

	for name, cc := range cfg.CLI {
		if cc.TimeoutSecs == 0 {
			cc.TimeoutSecs = defaultCLITimeoutSecs
		}
		if cc.DiscoveryBudgetSecs == 0 {
			cc.DiscoveryBudgetSecs = defaultDiscoveryBudgetSecs
		}
		if cc.HelpDepth == nil && cc.Profile == "" {
			depth := defaultHelpDepth
			cc.HelpDepth = &depth
		}
		cfg.CLI[name] = cc
	}
}

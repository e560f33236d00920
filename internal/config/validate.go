package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/porter-mcp/porter/internal/core"
	"github.com/porter-mcp/porter/internal/namespace"
)

var validate = validator.New()

// Validate fails fast on a misconfigured porter.toml before any provider is
// spawned: duplicate slugs across servers and cli tables, required-field
// presence, transport-specific field requirements, slug format, env
// reference syntax, and help_depth bounds.
func Validate(cfg *Config) error {
	seenSlugs := make(map[string]bool)

	for name, sc := range cfg.Servers {
		if err := validate.Struct(sc); err != nil {
			return &core.ConfigInvalidError{Slug: name, Detail: err.Error()}
		}
		if err := validateSlug(seenSlugs, sc.Slug); err != nil {
			return err
		}
		if !sc.IsEnabled() {
			continue
		}
		if err := validateServerTransport(sc); err != nil {
			return err
		}
		if err := validateEnvRefs(sc.Slug, sc.Env); err != nil {
			return err
		}
	}

	for name, cc := range cfg.CLI {
		if err := validate.Struct(cc); err != nil {
			return &core.ConfigInvalidError{Slug: name, Detail: err.Error()}
		}
		if err := validateSlug(seenSlugs, cc.Slug); err != nil {
			return err
		}
		if !cc.IsEnabled() {
			continue
		}
		if cc.Command == "" {
			return &core.ConfigInvalidError{Slug: cc.Slug, Detail: "cli transport requires non-empty 'command'"}
		}
		if cc.Transport != TransportCLI {
			return &core.ConfigInvalidError{Slug: cc.Slug, Detail: `cli tool must have transport = "cli"`}
		}
		if err := validateEnvRefs(cc.Slug, cc.Env); err != nil {
			return err
		}
		if err := validateHelpDepth(cc); err != nil {
			return err
		}
	}

	return nil
}

func validateSlug(seen map[string]bool, slug string) error {
	if err := namespace.ValidateSlug(slug); err != nil {
		return &core.ConfigInvalidError{Slug: slug, Detail: err.Error()}
	}
	if seen[slug] {
		return &core.DuplicateSlugError{Slug: slug}
	}
	seen[slug] = true
	return nil
}

func validateServerTransport(sc ServerConfig) error {
	switch sc.Transport {
	case TransportStdio:
		if sc.Command == "" {
			return &core.ConfigInvalidError{Slug: sc.Slug, Detail: "stdio transport requires 'command'"}
		}
		if sc.URL != "" {
			return &core.ConfigInvalidError{Slug: sc.Slug, Detail: "stdio transport should not have 'url'"}
		}
	case TransportHTTP:
		if sc.URL == "" {
			return &core.ConfigInvalidError{Slug: sc.Slug, Detail: "http transport requires 'url'"}
		}
		if sc.Command != "" {
			return &core.ConfigInvalidError{Slug: sc.Slug, Detail: "http transport should not have 'command'"}
		}
	case TransportCLI:
		return &core.ConfigInvalidError{Slug: sc.Slug, Detail: "cli transport must be configured under [cli.*], not [servers.*]"}
	default:
		return &core.ConfigInvalidError{Slug: sc.Slug, Detail: fmt.Sprintf("unknown transport %q", sc.Transport)}
	}
	return nil
}

// validateEnvRefs requires every env table value to be a "${VAR}" reference
// so a bare literal secret can never end up in porter.toml by construction.
func validateEnvRefs(slug string, env map[string]string) error {
	for key, value := range env {
		if _, ok := parseEnvRef(value); !ok {
			return &core.ConfigInvalidError{
				Slug:   slug,
				Detail: fmt.Sprintf("env value for key %q must be a ${VAR} reference, got %q", key, value),
			}
		}
	}
	return nil
}

func validateHelpDepth(cc CLIConfig) error {
	if cc.HelpDepth == nil {
		return nil
	}
	depth := *cc.HelpDepth
	if depth > maxHelpDepth {
		return &core.ConfigInvalidError{Slug: cc.Slug, Detail: fmt.Sprintf("help_depth %d exceeds maximum of %d", depth, maxHelpDepth)}
	}
	if depth > 0 && cc.DiscoveryBudgetSecs == 0 {
		return &core.ConfigInvalidError{Slug: cc.Slug, Detail: "discovery_budget_secs must be > 0 when help_depth > 0"}
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/porter-mcp/porter/internal/config"
)

// newValidateCmd is a no-network config lint: it runs the same loader and
// validator porter serve/stdio use, but never spawns a provider, so it's
// safe to run in CI against a config that names commands or servers the CI
// environment doesn't have.
func newValidateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate porter.toml without starting any provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to porter.toml (default: ./porter.toml, then <user-config-dir>/porter/porter.toml)")

	return cmd
}

func runValidate(configPath string) error {
	resolved, err := config.ResolvePath(configPath)
	if err != nil {
		return err
	}

	cfg, err := config.Load(resolved)
	if err != nil {
		return fmt.Errorf("%s: %w", resolved, err)
	}

	fmt.Printf("%s is valid: %d server(s), %d cli tool(s)\n", resolved, len(cfg.Servers), len(cfg.CLI))
	return nil
}

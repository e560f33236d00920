package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/porter-mcp/porter/internal/banner"
	"github.com/porter-mcp/porter/internal/core"
)

func newStdioCmd() *cobra.Command {
	var (
		configPath string
		prettyLog  bool
	)

	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Speak MCP over stdin/stdout",
		Long: `Start Porter speaking MCP over its own stdin/stdout — the transport an MCP
client spawns as a subprocess rather than connects to over the network.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(configPath, prettyLog)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to porter.toml (default: ./porter.toml, then <user-config-dir>/porter/porter.toml)")
	cmd.Flags().BoolVar(&prettyLog, "pretty", false, "Use pretty-printed console logs instead of JSON")

	return cmd
}

func runStdio(configPath string, prettyLog bool) error {
	// stdout is the MCP wire; logs must never land there. core.Init's zap
	// configs write to stderr in both the JSON and the pretty mode.
	if err := core.Init(prettyLog); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer core.LogDeferredError(zap.L().Sync)

	ctx, finishSignals := withSignalHandling(context.Background())

	resolvedPath, handle, gw, err := bootstrap(ctx, configPath)
	if err != nil {
		return err
	}

	banner.Print(os.Stderr, banner.Info{
		Version:    version,
		Mode:       "stdio",
		ConfigPath: resolvedPath,
		ToolCount:  len(handle.Current().Tools()),
	})

	serveErr := gw.ServeStdio(ctx)

	shutdownErr := gw.Shutdown(context.Background())
	sigErr := finishSignals()

	if sigErr != nil {
		return sigErr
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		return fmt.Errorf("gateway serve: %w", serveErr)
	}
	if shutdownErr != nil {
		return fmt.Errorf("gateway shutdown: %w", shutdownErr)
	}
	return nil
}

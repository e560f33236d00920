package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/porter-mcp/porter/internal/banner"
	"github.com/porter-mcp/porter/internal/core"
)

const (
	defaultHost = "127.0.0.1"
	defaultPort = 3000
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		host       string
		port       int
		prettyLog  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Porter Streamable HTTP MCP server",
		Long: `Start Porter's Streamable HTTP MCP server, aggregating every configured
remote MCP server and CLI tool behind http://HOST:PORT/mcp.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, host, port, prettyLog)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to porter.toml (default: ./porter.toml, then <user-config-dir>/porter/porter.toml)")
	cmd.Flags().StringVar(&host, "host", defaultHost, "Host to listen on")
	cmd.Flags().IntVar(&port, "port", defaultPort, "Port to listen on")
	cmd.Flags().BoolVar(&prettyLog, "pretty", false, "Use pretty-printed console logs instead of JSON")

	return cmd
}

func runServe(configPath, host string, port int, prettyLog bool) error {
	if err := core.Init(prettyLog); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer core.LogDeferredError(zap.L().Sync)

	ctx, finishSignals := withSignalHandling(context.Background())

	resolvedPath, handle, gw, err := bootstrap(ctx, configPath)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	banner.Print(os.Stderr, banner.Info{
		Version:    version,
		Mode:       "http",
		Address:    fmt.Sprintf("%s/mcp", addr),
		ConfigPath: resolvedPath,
		ToolCount:  len(handle.Current().Tools()),
	})

	serveErr := gw.Serve(ctx, addr)

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

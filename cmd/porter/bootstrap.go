package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/porter-mcp/porter/internal/config"
	"github.com/porter-mcp/porter/internal/gateway"
	"github.com/porter-mcp/porter/internal/reload"
	"github.com/porter-mcp/porter/internal/registry"
)

// bootstrap loads porter.toml, spawns every configured provider into an
// initial Registry, and wraps it in a reload.Handle watching the exact
// file the config was resolved from — the same sequence porter serve and
// porter stdio both need before they differ on transport.
func bootstrap(ctx context.Context, configFlag string) (resolvedPath string, handle *reload.Handle, gw *gateway.Gateway, err error) {
	resolvedPath, err = config.ResolvePath(configFlag)
	if err != nil {
		return "", nil, nil, fmt.Errorf("resolving config path: %w", err)
	}

	cfg, err := config.Load(resolvedPath)
	if err != nil {
		return "", nil, nil, fmt.Errorf("loading config: %w", err)
	}

	reg, err := registry.FromConfig(ctx, cfg)
	if err != nil {
		return "", nil, nil, fmt.Errorf("building registry: %w", err)
	}

	handle = reload.New(resolvedPath, reg)
	gw = gateway.New(handle)

	if err := handle.Watch(ctx, gw.OnConfigReload); err != nil {
		zap.L().Warn("hot-reload watcher failed to start; continuing without it",
			zap.String("path", resolvedPath), zap.Error(err))
	}

	return resolvedPath, handle, gw, nil
}

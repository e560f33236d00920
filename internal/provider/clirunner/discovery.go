package clirunner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// DiscoveryConfig parameterizes one BFS `--help` discovery run.
type DiscoveryConfig struct {
	Command       string
	MaxDepth      int // 0 disables discovery entirely
	TimeoutPerHelp time.Duration
	TotalBudget    time.Duration
	Env            map[string]string
}

// DiscoveredPath is one subcommand path found while walking the help tree.
type DiscoveredPath struct {
	Path   []string
	IsLeaf bool
}

// DiscoveryResult is the outcome of a Discover run: possibly partial if the
// total budget was exceeded, with per-path soft errors recorded rather than
// aborting the whole walk.
type DiscoveryResult struct {
	Paths     []DiscoveredPath
	Errors    []DiscoveryPathError
	TimedOut  bool
}

// DiscoveryPathError pairs a subcommand path with why --help failed there.
type DiscoveryPathError struct {
	Path   []string
	Reason string
}

// discoveryConcurrency caps in-flight `--help` invocations per BFS tier.
const discoveryConcurrency = 8

type queueEntry struct {
	prefix []string
	depth  int
}

// Discover walks the `--help` tree breadth-first up to cfg.MaxDepth,
// bounding concurrency per tier with a semaphore and the whole run with a
// wall-clock budget. It never returns an error: a `--help` invocation that
// cannot be started at one path is recorded in Errors and the walk
// continues elsewhere; help that exits non-zero or lists no subcommands
// makes that path a leaf.
func Discover(ctx context.Context, cfg DiscoveryConfig) DiscoveryResult {
	var result DiscoveryResult
	if cfg.MaxDepth <= 0 {
		return result
	}

	deadline := time.Now().Add(cfg.TotalBudget)
	queue := []queueEntry{{prefix: nil, depth: 0}}
	sem := semaphore.NewWeighted(discoveryConcurrency)

	type tierResult struct {
		prefix      []string
		depth       int
		subcommands []DiscoveredSubcommand
		err         string
	}

	for len(queue) > 0 {
		if time.Now().After(deadline) {
			result.TimedOut = true
			zap.L().Warn("discovery budget exceeded, using partial results", zap.String("command", cfg.Command))
			break
		}

		tier := queue
		queue = nil

		results := make([]tierResult, len(tier))
		done := make(chan struct{}, len(tier))

		for i, entry := range tier {
			i, entry := i, entry
			go func() {
				defer func() { done <- struct{}{} }()
				if err := sem.Acquire(ctx, 1); err != nil {
					results[i] = tierResult{prefix: entry.prefix, depth: entry.depth, err: err.Error()}
					return
				}
				defer sem.Release(1)

				subs, err := runHelpAndParse(ctx, cfg.Command, entry.prefix, cfg.Env, cfg.TimeoutPerHelp)
				if err != nil {
					results[i] = tierResult{prefix: entry.prefix, depth: entry.depth, err: err.Error()}
					return
				}
				results[i] = tierResult{prefix: entry.prefix, depth: entry.depth, subcommands: subs}
			}()
		}
		for range tier {
			<-done
		}

		for _, r := range results {
			if r.err != "" {
				result.Errors = append(result.Errors, DiscoveryPathError{Path: r.prefix, Reason: r.err})
				continue
			}
			if len(r.subcommands) == 0 {
				if len(r.prefix) > 0 {
					result.Paths = append(result.Paths, DiscoveredPath{Path: r.prefix, IsLeaf: true})
				}
				continue
			}
			for _, sub := range r.subcommands {
				childPath := append(append([]string{}, r.prefix...), sub.Name)
				if r.depth+1 < cfg.MaxDepth {
					queue = append(queue, queueEntry{prefix: childPath, depth: r.depth + 1})
					result.Paths = append(result.Paths, DiscoveredPath{Path: childPath, IsLeaf: false})
				} else {
					result.Paths = append(result.Paths, DiscoveredPath{Path: childPath, IsLeaf: true})
				}
			}
		}
	}

	return result
}

// runHelpAndParse runs `command [prefix...] --help` and parses the
// subcommand names out of whichever stream (stdout or stderr) carries the
// help text.
func runHelpAndParse(ctx context.Context, command string, prefix []string, env map[string]string, timeout time.Duration) ([]DiscoveredSubcommand, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string{}, prefix...), "--help")
	cmd := exec.CommandContext(runCtx, command, args...)
	cmd.Env = mergeEnv(env)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// A non-zero exit from --help is common and not itself an error; only a
	// process that could not be run at all is.
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("running %s --help: %w", command, err)
		}
	}

	helpText := stdout.String()
	if strings.TrimSpace(helpText) == "" {
		helpText = stderr.String()
	}

	return ParseSubcommands(helpText), nil
}

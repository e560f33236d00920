package clirunner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/jonboulle/clockwork"
)

// maxCaptureBytes bounds how much of a spawned process's stdout/stderr is
// retained in memory. Exceeding it truncates with an explicit tail marker
// rather than growing unbounded.
const maxCaptureBytes = 1 << 20

const truncationMarker = "\n...[truncated, output exceeded 1 MiB]...\n"

// boundedBuffer is an io.Writer that stops retaining bytes past its limit,
// appending truncationMarker once, instead of growing without bound.
type boundedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func newBoundedBuffer(limit int) *boundedBuffer {
	return &boundedBuffer{limit: limit}
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if b.truncated {
		return n, nil
	}
	remaining := b.limit - b.buf.Len()
	if remaining <= 0 {
		b.truncated = true
		b.buf.WriteString(truncationMarker)
		return n, nil
	}
	if len(p) > remaining {
		b.buf.Write(p[:remaining])
		b.truncated = true
		b.buf.WriteString(truncationMarker)
		return n, nil
	}
	b.buf.Write(p)
	return n, nil
}

func (b *boundedBuffer) String() string { return b.buf.String() }

// ExecResult is the raw outcome of spawning a single process: the shape
// returned as a CLI tool's JSON call result.
type ExecResult struct {
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	TimedOut bool   `json:"timed_out"`
}

// Executor spawns CLI subprocesses with a bounded timeout, killing the
// process (not merely abandoning the future) when the deadline passes, and
// captures output into size-bounded buffers.
type Executor struct {
	clock clockwork.Clock
}

// NewExecutor creates an Executor using the real wall clock.
func NewExecutor() *Executor {
	return &Executor{clock: clockwork.NewRealClock()}
}

// NewExecutorWithClock creates an Executor using the given clock, so tests
// can control timeout behavior deterministically.
func NewExecutorWithClock(clock clockwork.Clock) *Executor {
	return &Executor{clock: clock}
}

// Run spawns command with argv, the given working directory and
// environment, races it against timeout, and returns the captured result.
// Spawn failures (command not found, permission denied) are returned as an
// error; everything else — non-zero exit, timeout, process output — is
// reported inside ExecResult, never as a Go error.
func (e *Executor) Run(ctx context.Context, command string, argv []string, env []string, cwd string, timeout time.Duration) (ExecResult, error) {
	runCtx, cancel := clockwork.WithTimeout(ctx, e.clock, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, command, argv...)
	cmd.Env = env
	cmd.Dir = cwd

	stdout := newBoundedBuffer(maxCaptureBytes)
	stderr := newBoundedBuffer(maxCaptureBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()

	result := ExecResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if runCtx.Err() != nil {
		result.TimedOut = true
		return result, nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("failed to spawn %q: %w", command, err)
	}

	return result, nil
}

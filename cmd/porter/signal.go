package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// errInterrupted is returned by the serve and stdio commands when the
// process is stopped by SIGINT, so run can map it to exit code 130 instead
// of the generic exit-1 path every other error takes.
var errInterrupted = errors.New("interrupted")

// withSignalHandling derives a context cancelled on SIGINT or SIGTERM and
// returns a function to call after the server loop returns, translating
// whichever signal fired into run's error convention: SIGINT becomes
// errInterrupted, SIGTERM (or no signal at all) becomes nil.
func withSignalHandling(parent context.Context) (ctx context.Context, finish func() error) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	received := make(chan os.Signal, 1)
	go func() {
		select {
		case sig := <-sigChan:
			zap.L().Info("received shutdown signal", zap.String("signal", sig.String()))
			received <- sig
			cancel()
		case <-ctx.Done():
		}
	}()

	finish = func() error {
		signal.Stop(sigChan)
		select {
		case sig := <-received:
			if sig == syscall.SIGINT {
				return errInterrupted
			}
		default:
		}
		return nil
	}

	return ctx, finish
}

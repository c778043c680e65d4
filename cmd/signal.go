package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vexide/arm-toolchain/logging"
)

var errInterrupted = errors.New("interrupted")

// interruptContext returns a context cancelled by the first interrupt. A
// second interrupt exits immediately without waiting for cleanup.
func interruptContext() (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(context.Background())

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigs:
			logging.LogDebug("Signal received: %s, cancelling", sig)
			cancel(errInterrupted)
		case <-done:
			return
		}

		select {
		case <-sigs:
			fmt.Fprintln(os.Stderr, "\nForce quitting.")
			os.Exit(exitCancelled)
		case <-done:
		}
	}()

	stop := func() {
		signal.Stop(sigs)
		close(done)
		cancel(nil)
	}
	return ctx, stop
}

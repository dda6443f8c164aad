package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vvka-141/pairload/pkg/pairload"
)

// runContext bounds a run by timeout (0 = none) and cancels it on
// Ctrl+C or SIGTERM. The returned cancel func also stops signal handling.
func runContext(parent context.Context, timeout time.Duration, logger pairload.Logger) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}

	var ctx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			logger.Error("Received interrupt signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

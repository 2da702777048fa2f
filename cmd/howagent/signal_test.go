package main

// Notes:
// - Only stop() and parent cancellation are covered; raising a real signal
//   would end the test binary once the handler is released.

import (
	"context"
	"os"
	"testing"
)

// ---------------------------------------------------------------------------
// TestNotifyContext - Context cancellation
// ---------------------------------------------------------------------------

func TestNotifyContext(t *testing.T) {
	t.Parallel()

	t.Run("stop cancels", func(t *testing.T) {
		t.Parallel()

		ctx, stop := notifyContext(context.Background())
		if ctx.Err() != nil {
			t.Fatal("context should start live")
		}
		stop()
		<-ctx.Done()
	})

	t.Run("parent cancellation propagates", func(t *testing.T) {
		t.Parallel()

		parent, cancel := context.WithCancel(context.Background())
		ctx, stop := notifyContext(parent)
		defer stop()

		cancel()
		<-ctx.Done()
		if ctx.Err() != context.Canceled {
			t.Errorf("ctx.Err() = %v, want context.Canceled", ctx.Err())
		}
	})
}

func TestShutdownSignals(t *testing.T) {
	t.Parallel()

	if len(shutdownSignals) == 0 || shutdownSignals[0] != os.Interrupt {
		t.Errorf("shutdownSignals = %v, want os.Interrupt first", shutdownSignals)
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// shutdownSignals end a running command. Windows never delivers SIGTERM,
// so only Ctrl+C applies there.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// notifyContext derives a context that ends on the first shutdown signal.
// A second signal falls through to the default handler and kills the
// process, so a stuck browser cannot hold the CLI.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, shutdownSignals...)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx, stop
}

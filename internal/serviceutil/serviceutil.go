package serviceutil

import (
	"context"
	"ctfrank/internal/apperr"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// SignalContext returns a context that will live until Ctrl+C is pressed
// or the process is asked to terminate.
func SignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()

	return ctx
}

// Fatal logs err with its kind and exits with status 1.
func Fatal(message string, err error) {
	kind := "unknown"
	if k := apperr.KindOf(err); k != nil {
		kind = k.Error()
	}
	slog.Error(message, "kind", kind, "err", err.Error())
	os.Exit(1)
}

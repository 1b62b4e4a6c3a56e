package cli

import (
	"log/slog"
	"os"
)

// configureLogging routes slog through a text handler on stderr, at
// debug level when verbose. Commands call this before doing work so
// package logs (store, mirror, httpapi) share one destination.
func configureLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

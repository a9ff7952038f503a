package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs a text handler on stderr as the default logger. Debug
// records are only emitted when verbose is set.
func InitSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

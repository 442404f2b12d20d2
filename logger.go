package stitch

import (
	"log/slog"

	"github.com/gogpu/stitch/internal/logging"
)

// SetLogger configures the logger for stitch and all its sub-packages.
// By default, stitch produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by stitch:
//   - [slog.LevelDebug]: per-commit details (stroke ids, stamp counts)
//   - [slog.LevelInfo]: lifecycle events (document opened, export finished)
//   - [slog.LevelWarn]: degraded paths (placeholder fallbacks, unsafe blend modes)
//
// Example:
//
//	stitch.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by stitch.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Logger()
}

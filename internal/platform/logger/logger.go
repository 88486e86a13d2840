package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. LOG_FORMAT=json switches to
// JSON output for log shipping; text is the development default.
func New() *slog.Logger {
	var handler slog.Handler
	if os.Getenv("LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	return slog.New(handler)
}

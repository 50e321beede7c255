package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup initializes the global slog logger with JSON output to stdout.
// extra handlers (the database sink) receive the same records.
func Setup(appEnv string, extra ...slog.Handler) {
	slog.SetDefault(slog.New(NewHandler(os.Stdout, appEnv, extra...)))
}

// NewHandler builds the JSON handler for w, fanned out to extra when given.
// Development environments log at debug level.
func NewHandler(w io.Writer, appEnv string, extra ...slog.Handler) slog.Handler {
	level := slog.LevelInfo
	if strings.EqualFold(appEnv, "development") {
		level = slog.LevelDebug
	}
	var h slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	if len(extra) > 0 {
		h = NewMultiHandler(append([]slog.Handler{h}, extra...)...)
	}
	return h
}

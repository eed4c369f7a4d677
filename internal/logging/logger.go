package logging

import (
	"log/slog"
	"os"
)

func stdoutHandler() slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
}

// Setup initializes the global slog logger with JSON output to stdout.
func Setup() {
	slog.SetDefault(slog.New(stdoutHandler()))
}

// AttachPG fans the global logger out to stdout and h.
func AttachPG(h *PGHandler) {
	slog.SetDefault(slog.New(NewMultiHandler(stdoutHandler(), h)))
}

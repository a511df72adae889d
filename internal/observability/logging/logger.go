package logging

import (
	"log/slog"
	"os"
	"strings"
)

func NewJSONLogger(service, level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With("service", service)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ProgressReporter logs one line per processed image. It is the default
// progress sink; the CLI swaps in a console reporter.
type ProgressReporter struct {
	logger *slog.Logger
}

func NewProgressReporter(logger *slog.Logger) *ProgressReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressReporter{logger: logger}
}

func (p *ProgressReporter) Report(current, total int, filename string) {
	p.logger.Info("batch.progress", "current", current, "total", total, "filename", filename)
}

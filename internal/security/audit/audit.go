package audit

import (
	"context"
	"log/slog"
	"time"
)

// Logger emits a structured audit trail of mutating requests
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger}
}

// LogRequest records a mutating HTTP request with the acting identity.
func (al *Logger) LogRequest(ctx context.Context, actor, method, path string) {
	al.logger.Info("audit",
		slog.String("actor", actor),
		slog.String("method", method),
		slog.String("path", path),
		slog.Time("timestamp", time.Now()),
	)
}

package arenapool

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with arenapool-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithSession adds a session field to the logger.
func (l *Logger) WithSession(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("session", name),
	}
}

// WithPool adds a pool field to the logger.
func (l *Logger) WithPool(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("pool", name),
	}
}

// LogPool logs the creation of a pool.
func (l *Logger) LogPool(ctx context.Context, shards, retention int) {
	l.DebugContext(ctx, "pool created",
		"shards", shards,
		"retention", retention,
	)
}

// LogPrewarm logs a prewarm of all session pools.
func (l *Logger) LogPrewarm(ctx context.Context, pools, perShard int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "prewarm failed",
			"pools", pools,
			"per_shard", perShard,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "prewarm completed",
			"pools", pools,
			"per_shard", perShard,
			"elapsed", elapsed,
		)
	}
}

// LogClose logs the teardown of a session.
func (l *Logger) LogClose(ctx context.Context, pools int, inFlight int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "close failed",
			"pools", pools,
			"error", err,
		)
		return
	}
	if inFlight > 0 {
		l.WarnContext(ctx, "session closed with borrowed items",
			"pools", pools,
			"in_flight", inFlight,
		)
		return
	}
	l.DebugContext(ctx, "session closed",
		"pools", pools,
	)
}

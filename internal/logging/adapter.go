package logging

import (
	"context"
	"io"
	"log/slog"
)

// Logger is the logging surface the domain packages depend on.
// *slog.Logger satisfies it, so does SlogAdapter.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps an slog.Logger and pins a set of attributes to every record.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter wrapping the given slog.Logger.
// If logger is nil, slog.Default() is used.
func NewSlogAdapter(logger *slog.Logger, attrs ...slog.Attr) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	if len(attrs) > 0 {
		logger = slog.New(logger.Handler().WithAttrs(attrs))
	}
	return &SlogAdapter{logger: logger}
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *SlogAdapter {
	return &SlogAdapter{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (a *SlogAdapter) Debug(msg string, args ...any) { a.log(slog.LevelDebug, msg, args) }
func (a *SlogAdapter) Info(msg string, args ...any)  { a.log(slog.LevelInfo, msg, args) }
func (a *SlogAdapter) Warn(msg string, args ...any)  { a.log(slog.LevelWarn, msg, args) }
func (a *SlogAdapter) Error(msg string, args ...any) { a.log(slog.LevelError, msg, args) }

func (a *SlogAdapter) log(level slog.Level, msg string, args []any) {
	a.logger.Log(context.Background(), level, msg, args...)
}

// Logger returns the underlying slog.Logger for direct access when needed.
func (a *SlogAdapter) Logger() *slog.Logger {
	return a.logger
}

package logger_i

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/akolanti/TenderExtract/internal/config"
)

type Logger struct {
	inner *slog.Logger
}

// Init installs the process-wide handler. The CLI passes os.Stderr so stdout
// stays clean for JSON output and the MCP stdio transport.
func Init(settings config.Settings, out ...io.Writer) {
	var w io.Writer = os.Stdout
	if len(out) > 0 && out[0] != nil {
		w = out[0]
	}
	options := &slog.HandlerOptions{
		Level: settings.LogLevel,
	}

	var handler slog.Handler
	if settings.IsProd {
		options.Level = config.LOG_LEVEL_PROD
		if settings.LogLevel > config.LOG_LEVEL_PROD {
			options.Level = settings.LogLevel
		}
		handler = slog.NewJSONHandler(w, options)
	} else {
		handler = slog.NewTextHandler(w, options)
	}
	slog.SetDefault(slog.New(handler))
}

func NewLogger(section string) *Logger {
	return &Logger{
		inner: slog.Default().With("component", section),
	}
}

func (l *Logger) Info(msg string, args ...any) {
	l.inner.Info(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log(slog.LevelError, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, msg, args...)
}

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	if !l.inner.Enabled(context.Background(), level) {
		return
	}
	l.inner.Log(context.Background(), level, msg, args...)
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		inner: l.inner.With(args...),
	}
}

// WithTrace attaches the trace id carried by ctx, if any.
func (l *Logger) WithTrace(ctx context.Context) *Logger {
	if trace, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok && trace != "" {
		return l.With("traceId", trace)
	}
	return l
}

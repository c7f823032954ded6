package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
)

// ParseLevel accepts debug, info, warn and error.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("telemetry: unknown log level %q", level)
	}
	return l, nil
}

// NewLogger writes JSON records to w and, when exportOTel is set, also hands
// them to the global OpenTelemetry logger provider.
func NewLogger(name string, w io.Writer, level slog.Level, exportOTel bool) *slog.Logger {
	handlers := []slog.Handler{
		slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}),
	}

	if exportOTel {
		handlers = append(handlers, otelslog.NewHandler(name,
			otelslog.WithLoggerProvider(global.GetLoggerProvider()),
		))
	}

	return slog.New(&fanoutHandler{level: level, handlers: handlers})
}

type fanoutHandler struct {
	level    slog.Leveler
	handlers []slog.Handler
}

func (h *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level < h.level.Level() {
		return false
	}
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &fanoutHandler{level: h.level, handlers: handlers}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &fanoutHandler{level: h.level, handlers: handlers}
}

package http

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/freekieb7/rawhttp/session/storage"
	"github.com/freekieb7/rawhttp/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/freekieb7/rawhttp/http"

const (
	DiagnosticHeaderName  = "X-Example"
	DiagnosticHeaderValue = "It works! :D"
)

// DiagnosticHeader stamps a fixed header on every response.
func DiagnosticHeader(name, value string) Middleware {
	return MiddlewareFunc(func(req Request, next Next) Response {
		return next.Call(req).WithHeader(name, value)
	})
}

// Timer reports the time spent downstream in X-Duration, in nanoseconds.
func Timer() Middleware {
	return MiddlewareFunc(func(req Request, next Next) Response {
		start := time.Now()
		res := next.Call(req)
		return res.WithHeader(HeaderDuration, strconv.FormatInt(time.Since(start).Nanoseconds(), 10))
	})
}

// Logger writes one record per request and records its metrics and span.
func Logger(logger *slog.Logger, metrics *telemetry.Metrics) Middleware {
	tracer := otel.Tracer(tracerName)

	return MiddlewareFunc(func(req Request, next Next) Response {
		ctx, span := tracer.Start(req.Context(), "http.request", trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		start := time.Now()
		res := next.Call(req.WithContext(ctx))
		elapsed := time.Since(start)

		span.SetAttributes(
			attribute.String("http.request.method", req.Method.String()),
			attribute.String("url.path", req.Path),
			attribute.Int("http.response.status_code", res.Status.Code()),
		)
		metrics.RecordRequest(ctx, req.Method.String(), res.Status.Code(), elapsed)

		logger.InfoContext(ctx, "request_received",
			"method", req.Method.String(),
			"path", req.Path,
			"query", req.Query,
			"status", res.Status.Code(),
			"duration", elapsed,
		)

		return res
	})
}

// Auth rejects requests without an Authorization header before they reach
// anything downstream.
func Auth() Middleware {
	return MiddlewareFunc(func(req Request, next Next) Response {
		if _, found := req.HeaderValue(HeaderAuthorization); !found {
			return NewResponse().WithStatus(StatusUnauthorized)
		}
		return next.Call(req)
	})
}

// SessionTracker issues a session cookie on first contact and refreshes the
// session on every later request that presents a known id.
func SessionTracker(store storage.SessionStore) Middleware {
	return MiddlewareFunc(func(req Request, next Next) Response {
		now := time.Now()

		id, err := req.Cookie(SessionCookieName)
		if err != nil || !store.Touch(id, now) {
			sess := store.Create(map[string]any{"init": "true"}, now)
			id = sess.GetId()
		}

		return next.Call(req).WithCookie(NewCookie(SessionCookieName, id))
	})
}

// Recover turns a panic downstream into a 500.
func Recover(logger *slog.Logger) Middleware {
	return MiddlewareFunc(func(req Request, next Next) (res Response) {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(req.Context(), "middleware panic recovered",
					"path", req.Path,
					"panic", fmt.Sprint(r),
				)
				res = NewResponse().WithStatus(StatusInternalError).WithText("500 Internal Error")
			}
		}()

		return next.Call(req)
	})
}

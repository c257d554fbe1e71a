package observability

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. LOG_LEVEL=debug switches to a
// colorized console encoder for local runs; any other level logs JSON.
// An unknown level falls back to info.
func NewLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.InitialFields = map[string]any{"service": "sparkhub-bfa"}
	if lvl == zapcore.DebugLevel {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := cfg.Build()
	if err != nil {
		panic("observability: build logger: " + err.Error())
	}
	return logger
}

// ZapLoggerMiddleware writes one line per request. Health checks and the metrics
// scrape are demoted to debug unless they fail.
func ZapLoggerMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				if ce := logger.Check(requestLevel(r.URL.Path, status), "http request"); ce != nil {
					ce.Write(
						zap.String("method", r.Method),
						zap.String("route", routePattern(r)),
						zap.String("path", r.URL.Path),
						zap.Int("status", status),
						zap.Int("bytes", ww.BytesWritten()),
						zap.Duration("latency", time.Since(start)),
						zap.String("request_id", middleware.GetReqID(r.Context())),
						zap.String("remote_addr", r.RemoteAddr),
					)
				}
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

func requestLevel(path string, status int) zapcore.Level {
	switch {
	case status >= 500:
		return zapcore.ErrorLevel
	case status >= 400:
		return zapcore.WarnLevel
	case healthPath(path):
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

func healthPath(p string) bool {
	switch p {
	case "/healthz", "/readyz", "/metrics", "/ping":
		return true
	}
	return false
}

func routePattern(r *http.Request) string {
	rc := chi.RouteContext(r.Context())
	if rc == nil {
		return ""
	}
	return rc.RoutePattern()
}

// TracingMiddleware continues a trace started by the caller (W3C
// traceparent), so handler spans join it.
func TracingMiddleware(next http.Handler) http.Handler {
	var prop propagation.TextMapPropagator = propagation.TraceContext{}
	if p := otel.GetTextMapPropagator(); p != nil && len(p.Fields()) > 0 {
		prop = p
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := prop.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

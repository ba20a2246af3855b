package obs

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/cartsync/internal/common"
)

// NewLogger builds the process logger on stdout.
func NewLogger(format, level string) zerolog.Logger {
	return NewLoggerTo(os.Stdout, format, level)
}

// NewLoggerTo builds a logger on w. format "console" or "text" selects the
// human readable writer; anything else logs JSON. Unknown levels mean info.
func NewLoggerTo(w io.Writer, format, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if f := strings.ToLower(strings.TrimSpace(format)); f == "console" || f == "text" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// RequestLogger writes one access log line per request.
type RequestLogger struct {
	Logger zerolog.Logger
}

// Middleware logs after the handler so the matched route and status are known.
func (l RequestLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := NewStatusRecorder(w)
		next.ServeHTTP(rec, r)

		status := rec.Status()
		evt := l.Logger.Info()
		if status >= http.StatusInternalServerError {
			evt = l.Logger.Warn()
		}
		evt = evt.
			Str("method", r.Method).
			Str("route", routeLabel(r, r.URL.Path)).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("elapsed", time.Since(start)).
			Int64("bytes", rec.BytesWritten())
		if id := middleware.GetReqID(r.Context()); id != "" {
			evt = evt.Str("request_id", id)
		}
		if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
			evt = evt.Str("trace_id", sc.TraceID().String()).Str("span_id", sc.SpanID().String())
		}
		if ip := common.ClientIP(r); ip != "" {
			evt = evt.Str("client_ip", ip)
		}
		evt.Msg("http_request")
	})
}

package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/noah-isme/cartsync/internal/common"
)

// Config describes how to derive a rate limit key and thresholds.
type Config struct {
	Key    func(*http.Request) string
	Window time.Duration
	Max    int
}

// Handler enforces rate limits before delegating to the next handler.
type Handler struct {
	Limiter Limiter
	Config  Config
	OnError func(error)
}

// SessionOrIPKey keys clicks by cart session, falling back to the client IP.
func SessionOrIPKey(r *http.Request) string {
	if id, ok := common.SessionID(r.Context()); ok {
		return "session:" + id
	}
	return "ip:" + common.ClientIP(r)
}

// Middleware rejects requests over the limit with 429. Limiter failures let
// the request through.
func (h Handler) Middleware(next http.Handler) http.Handler {
	if h.Config.Key == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, err := h.Limiter.Allow(r.Context(), h.Config.Key(r), h.Config.Window, h.Config.Max)
		if err != nil {
			if h.OnError != nil {
				h.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		headers.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

		if !d.Allowed {
			wait := time.Until(d.ResetAt).Round(time.Second)
			headers.Set("Retry-After", strconv.Itoa(max(int(wait.Seconds()), 1)))
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many cart actions", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

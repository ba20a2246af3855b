// Package middleware holds HTTP middleware specific to the cart widget.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/cartsync/internal/common"
	"github.com/noah-isme/cartsync/internal/obs"
)

// DefaultSessionCookie names the cookie carrying the cart session id.
const DefaultSessionCookie = "cart_session"

// Session issues and reads the browser session that scopes a persisted cart.
type Session struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Middleware attaches the session id to the request context, minting a new
// one when the cookie is missing or not a UUID.
func (s Session) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := s.cookieName()
		id := ""
		if c, err := r.Cookie(name); err == nil {
			if parsed, err := uuid.Parse(strings.TrimSpace(c.Value)); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			cookie := &http.Cookie{
				Name:     name,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.Secure,
				SameSite: http.SameSiteLaxMode,
			}
			if s.TTL > 0 {
				cookie.MaxAge = int(s.TTL.Seconds())
				cookie.Expires = time.Now().Add(s.TTL)
			}
			http.SetCookie(w, cookie)
			if obs.CartSessionsTotal != nil {
				obs.CartSessionsTotal.Inc()
			}
		}
		trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("cart.session_id", id))
		next.ServeHTTP(w, r.WithContext(common.WithSessionID(r.Context(), id)))
	})
}

func (s Session) cookieName() string {
	if strings.TrimSpace(s.CookieName) == "" {
		return DefaultSessionCookie
	}
	return s.CookieName
}

// RequireSession rejects requests that reached it without a session id.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := common.SessionID(r.Context()); !ok {
			common.JSONError(w, http.StatusBadRequest, "SESSION_REQUIRED", "cart session is required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

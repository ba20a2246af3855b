package common

import (
	"context"
	"strings"
)

type ctxKey string

const sessionIDKey ctxKey = "cart/session-id"

// WithSessionID stores the cart session identifier on the provided context.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionID extracts the cart session identifier from the context if present.
func SessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	if !ok || strings.TrimSpace(id) == "" {
		return "", false
	}
	return id, true
}

// Package store provides backends for the persisted cart slot.
package store

import (
	"context"
	"errors"
	"strings"
)

// ErrNotConfigured is returned when a backend has no client.
var ErrNotConfigured = errors.New("store: backend not configured")

// Backend is a slot store that can also delete keys and report health.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// Scoped prefixes every key with a namespace such as a session id.
type Scoped struct {
	Backend Backend
	Prefix  string
}

// Key returns the namespaced key.
func (s Scoped) Key(key string) string {
	prefix := strings.TrimSpace(s.Prefix)
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}

// Get reads key within the scope.
func (s Scoped) Get(ctx context.Context, key string) (string, bool, error) {
	if s.Backend == nil {
		return "", false, ErrNotConfigured
	}
	return s.Backend.Get(ctx, s.Key(key))
}

// Set writes key within the scope.
func (s Scoped) Set(ctx context.Context, key, value string) error {
	if s.Backend == nil {
		return ErrNotConfigured
	}
	return s.Backend.Set(ctx, s.Key(key), value)
}

// Delete removes key within the scope.
func (s Scoped) Delete(ctx context.Context, key string) error {
	if s.Backend == nil {
		return ErrNotConfigured
	}
	return s.Backend.Delete(ctx, s.Key(key))
}

// Ping delegates to the backend.
func (s Scoped) Ping(ctx context.Context) error {
	if s.Backend == nil {
		return ErrNotConfigured
	}
	return s.Backend.Ping(ctx)
}

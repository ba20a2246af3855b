package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Local serialises callers within one process, one mutex per key. Entries
// are dropped once no caller holds or waits for them.
type Local struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// WithLock executes fn while holding the in-process lock for key. ttl is
// ignored; the lock is held until fn returns.
func (l *Local) WithLock(ctx context.Context, key string, _ time.Duration, fn func(context.Context) error) error {
	if fn == nil {
		return errors.New("lock: callback not provided")
	}
	s := l.acquire(key)
	defer l.release(key, s)

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.ch }()
	return fn(ctx)
}

func (l *Local) acquire(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.slots == nil {
		l.slots = map[string]*slot{}
	}
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *Local) release(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

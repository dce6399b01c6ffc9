package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

type entry[T any] struct {
	v    T
	seen time.Time
}

// MemoryStore keeps sessions in process memory. Sessions idle for longer
// than the TTL are dropped on the next Sweep; a zero TTL keeps them forever.
type MemoryStore[T any] struct {
	mu  sync.RWMutex
	m   map[string]entry[T]
	ttl time.Duration
	now func() time.Time
}

func NewMemoryStore[T any](ttl time.Duration) *MemoryStore[T] {
	return &MemoryStore[T]{m: map[string]entry[T]{}, ttl: ttl, now: time.Now}
}

func (s *MemoryStore[T]) Get(_ context.Context, id string) (T, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.m[id]
	if ok && s.expired(e, s.now()) {
		var zero T
		return zero, false, nil
	}
	return clone(e.v), ok, nil
}

func (s *MemoryStore[T]) Put(_ context.Context, id string, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = entry[T]{v: clone(v), seen: s.now()}
	return nil
}

// Update holds the store lock while fn runs, so fn should not block.
func (s *MemoryStore[T]) Update(_ context.Context, id string, fn func(v *T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var v T
	if e, ok := s.m[id]; ok && !s.expired(e, s.now()) {
		v = clone(e.v)
	}
	if err := fn(&v); err != nil {
		return err
	}
	s.m[id] = entry[T]{v: v, seen: s.now()}
	return nil
}

func (s *MemoryStore[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

func (s *MemoryStore[T]) NewID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Len returns the number of stored sessions, expired or not.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// Sweep removes expired sessions and returns how many were dropped.
func (s *MemoryStore[T]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, e := range s.m {
		if s.expired(e, now) {
			delete(s.m, id)
			n++
		}
	}
	return n
}

// Janitor sweeps every interval until ctx is done.
func (s *MemoryStore[T]) Janitor(ctx context.Context, interval time.Duration, onSweep func(dropped int)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}

func (s *MemoryStore[T]) expired(e entry[T], now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.seen) > s.ttl
}

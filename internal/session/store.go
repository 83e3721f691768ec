// Package session holds in-memory conversation state keyed by tenant and
// session id. Entries expire after a fixed TTL; sweeping happens inline on
// request paths and from a coarse background ticker.
package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jkindrix/shopquote/internal/clock"
)

// Key identifies one conversation slot.
type Key struct {
	Tenant string
	SID    string
}

// entry pairs a value with its creation time for TTL checks. The store owns
// the timestamp so values do not have to carry one.
type entry[T any] struct {
	createdAt time.Time
	value     T
}

// Store is a TTL-bounded map of conversation state. All operations are safe
// for concurrent use; Update runs its callback under the store lock so a
// read-modify-write of one session is atomic with respect to other requests.
type Store[T any] struct {
	ttl    time.Duration
	clk    clock.Clock
	logger *zap.Logger

	mu      sync.Mutex
	entries map[Key]*entry[T]
}

// NewStore creates a Store with the given TTL.
func NewStore[T any](ttl time.Duration, clk clock.Clock, logger *zap.Logger) *Store[T] {
	return &Store[T]{
		ttl:     ttl,
		clk:     clk,
		logger:  logger,
		entries: make(map[Key]*entry[T]),
	}
}

// Get returns the live value for k. Expired entries are deleted on sight.
func (s *Store[T]) Get(k Key) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(k)
}

// Put stores v under k with a fresh TTL.
func (s *Store[T]) Put(k Key, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[k] = &entry[T]{createdAt: s.clk.Now(), value: v}
}

// Delete removes k if present.
func (s *Store[T]) Delete(k Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, k)
}

// Take returns the live value for k and removes it in the same step. Used
// for one-shot state like a pending FAQ branch.
func (s *Store[T]) Take(k Key) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.getLocked(k)
	if ok {
		delete(s.entries, k)
	}
	return v, ok
}

// Update runs fn against the live value for k under the store lock. fn
// receives the value and whether it existed, and returns the value to store
// back, or keep=false to delete the slot.
func (s *Store[T]) Update(k Key, fn func(v T, ok bool) (T, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.getLocked(k)
	next, keep := fn(v, ok)
	if !keep {
		delete(s.entries, k)
		return
	}
	created := s.clk.Now()
	if ok {
		created = s.entries[k].createdAt
	}
	s.entries[k] = &entry[T]{createdAt: created, value: next}
}

// Len reports the number of live entries. Expired ones still count until
// swept.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep removes all expired entries and returns how many were dropped.
func (s *Store[T]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for k, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, k)
			removed++
		}
	}
	if removed > 0 && s.logger != nil {
		s.logger.Debug("expired sessions swept", zap.Int("removed", removed))
	}
	return removed
}

// RunSweeper sweeps on every tick until stop is closed. Inline sweeps on the
// request path keep stores tidy under load; this catches idle periods.
func (s *Store[T]) RunSweeper(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-stop:
			return
		}
	}
}

func (s *Store[T]) getLocked(k Key) (T, bool) {
	e, ok := s.entries[k]
	if !ok {
		var zero T
		return zero, false
	}
	if s.expired(e) {
		delete(s.entries, k)
		var zero T
		return zero, false
	}
	return e.value, true
}

func (s *Store[T]) expired(e *entry[T]) bool {
	return s.clk.Now().Sub(e.createdAt) > s.ttl
}

// Package cache is an in-memory TTL cache. The marketplace keeps
// Idempotency-Key reservations of booking requests in it.
package cache

import (
	"sync"
	"time"

	"github.com/boddenberg/sparkhub-bfa/internal/port"
)

var _ port.Cache[string] = (*InMemory[string])(nil)

type item[T any] struct {
	val T
	exp time.Time
}

func (it item[T]) expired(now time.Time) bool { return !now.Before(it.exp) }

// InMemory is safe for concurrent use. Expired entries are invisible to
// readers right away and reclaimed by a sweeper running every TTL.
type InMemory[T any] struct {
	ttl time.Duration

	mu    sync.Mutex
	items map[string]item[T]
	now   func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// New starts a cache with the given TTL (one minute when ttl <= 0).
// Call Stop to end the sweeper.
func New[T any](ttl time.Duration) *InMemory[T] {
	if ttl <= 0 {
		ttl = time.Minute
	}
	c := &InMemory[T]{
		ttl:   ttl,
		items: map[string]item[T]{},
		now:   time.Now,
		done:  make(chan struct{}),
	}
	go c.sweepEvery(ttl)
	return c
}

// WithClock replaces the time source. Intended for tests.
func (c *InMemory[T]) WithClock(now func() time.Time) *InMemory[T] {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
	return c
}

func (c *InMemory[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.items[key]
	if !ok || it.expired(c.now()) {
		var zero T
		return zero, false
	}
	return it.val, true
}

func (c *InMemory[T]) Set(key string, value T) {
	c.mu.Lock()
	c.items[key] = item[T]{val: value, exp: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// SetIfAbsent stores value unless a live entry exists, in which case that
// entry is returned with stored=false. The check and the write are atomic.
func (c *InMemory[T]) SetIfAbsent(key string, value T) (current T, stored bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if it, ok := c.items[key]; ok && !it.expired(now) {
		return it.val, false
	}
	c.items[key] = item[T]{val: value, exp: now.Add(c.ttl)}
	return value, true
}

func (c *InMemory[T]) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Len counts stored entries, including expired ones not yet swept.
func (c *InMemory[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Sweep drops expired entries.
func (c *InMemory[T]) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, it := range c.items {
		if it.expired(now) {
			delete(c.items, k)
		}
	}
}

// Stop ends the sweeper. Safe to call more than once.
func (c *InMemory[T]) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

func (c *InMemory[T]) sweepEvery(d time.Duration) {
	t := time.NewTicker(d)
	defer t.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-t.C:
			c.Sweep()
		}
	}
}

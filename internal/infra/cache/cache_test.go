package cache_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boddenberg/sparkhub-bfa/internal/infra/cache"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Stop()

	c.Set("key1", "job-1")
	val, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if val != "job-1" {
		t.Errorf("expected 'job-1', got '%s'", val)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Stop()

	if _, ok := c.Get("nonexistent"); ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	c := cache.New[string](time.Minute).WithClock(func() time.Time { return now })
	defer c.Stop()

	c.Set("key1", "job-1")
	now = now.Add(2 * time.Minute)

	if _, ok := c.Get("key1"); ok {
		t.Fatal("expected cache entry to be expired")
	}
	c.Sweep()
	if c.Len() != 0 {
		t.Errorf("expected sweep to drop expired entry, %d left", c.Len())
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Stop()

	c.Set("key1", "job-1")
	c.Delete("key1")

	if _, ok := c.Get("key1"); ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestCache_StopTwice(t *testing.T) {
	c := cache.New[int](time.Minute)
	c.Stop()
	c.Stop()
}

func TestCache_SetIfAbsent(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	c := cache.New[string](time.Minute).WithClock(func() time.Time { return now })
	defer c.Stop()

	if cur, stored := c.SetIfAbsent("k", "job-1"); !stored || cur != "job-1" {
		t.Fatalf("expected first reservation to win, got %q %v", cur, stored)
	}
	if cur, stored := c.SetIfAbsent("k", "job-2"); stored || cur != "job-1" {
		t.Fatalf("expected the existing entry, got %q %v", cur, stored)
	}

	now = now.Add(time.Minute)
	if cur, stored := c.SetIfAbsent("k", "job-3"); !stored || cur != "job-3" {
		t.Errorf("expected an expired entry to be replaced, got %q %v", cur, stored)
	}
}

func TestCache_SetIfAbsentConcurrent(t *testing.T) {
	c := cache.New[int](time.Minute)
	defer c.Stop()

	var wg sync.WaitGroup
	var winners atomic.Int32
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			if _, stored := c.SetIfAbsent("same", v); stored {
				winners.Add(1)
			}
		}(i)
	}
	wg.Wait()
	if winners.Load() != 1 {
		t.Errorf("expected exactly one reservation, got %d", winners.Load())
	}
}

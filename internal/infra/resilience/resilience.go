// Package resilience provides fault-tolerance patterns for outbound calls
// (Twilio, Redis): retry with exponential backoff, circuit breaker, and
// bulkhead, combined in a Guard.
package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
)

// Config holds resilience parameters.
type Config struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int
}

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// RetryWithBackoff calls fn up to MaxRetries+1 times, sleeping an
// exponentially growing, jittered delay between attempts. A Permanent
// error or a done context ends it early.
func RetryWithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err = fn(); err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if attempt >= cfg.MaxRetries {
			return err
		}

		timer := time.NewTimer(backoffDelay(cfg.InitialBackoff, attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// backoffDelay is base*2^attempt plus up to 50% jitter.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt))) * base
	if half := int64(d / 2); half > 0 {
		d += time.Duration(rand.Int63n(half))
	}
	return d
}

// NewCircuitBreaker creates a circuit breaker that trips at 60% failures
// over at least 5 requests. State changes are logged when logger is set.
func NewCircuitBreaker(name string, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,                // half-open: allow 3 requests
		Interval:    30 * time.Second, // closed: reset counters every 30s
		Timeout:     10 * time.Second, // open -> half-open after 10s
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Warn("circuit breaker state change",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			}
		},
	})
}

// Bulkhead limits concurrent access to a resource.
type Bulkhead struct {
	sem chan struct{}
}

// NewBulkhead creates a bulkhead with the given max concurrency.
func NewBulkhead(maxConcurrency int) *Bulkhead {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &Bulkhead{sem: make(chan struct{}, maxConcurrency)}
}

// Acquire blocks until a slot is available or context is cancelled.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	select {
	case b.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot.
func (b *Bulkhead) Release() {
	<-b.sem
}

// Guard wraps calls to one dependency.
type Guard struct {
	name string
	cfg  Config
	cb   *gobreaker.CircuitBreaker
	bh   *Bulkhead
}

// NewGuard builds a guard with its own breaker and bulkhead.
func NewGuard(name string, cfg Config, logger *zap.Logger) *Guard {
	return &Guard{
		name: name,
		cfg:  cfg,
		cb:   NewCircuitBreaker(name, logger),
		bh:   NewBulkhead(cfg.MaxConcurrency),
	}
}

// State reports the breaker state, e.g. for health checks.
func (g *Guard) State() gobreaker.State {
	return g.cb.State()
}

// Do runs fn under the bulkhead, through the breaker, with retries.
// An open breaker surfaces as *domain.ErrCircuitOpen and is not retried.
func (g *Guard) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := g.bh.Acquire(ctx); err != nil {
		return &domain.ErrTimeout{Operation: g.name + ": waiting for slot"}
	}
	defer g.bh.Release()

	return RetryWithBackoff(ctx, g.cfg, func() error {
		_, err := g.cb.Execute(func() (any, error) {
			return nil, fn(ctx)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Permanent(&domain.ErrCircuitOpen{Service: g.name})
		}
		return err
	})
}

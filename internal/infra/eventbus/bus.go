// Package eventbus is the typed in-process pub/sub that lets every open
// dashboard learn about marketplace changes made elsewhere.
package eventbus

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/observability"
	"github.com/boddenberg/sparkhub-bfa/internal/port"
)

var _ port.EventPublisher = (*Bus)(nil)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 32

// Subscription is one live consumer, typically an SSE stream.
type Subscription struct {
	C      <-chan domain.Event
	ch     chan domain.Event
	id     string
	userID string
	role   domain.Role
}

// UserID returns the subscriber's user.
func (s *Subscription) UserID() string { return s.userID }

// Listener observes every published event synchronously.
type Listener func(domain.Event)

// Bus fans events out to subscribers. Publish never blocks: an event that
// does not fit in a subscriber's buffer is dropped for that subscriber.
type Bus struct {
	mu        sync.RWMutex
	subs      map[string]*Subscription
	listeners []Listener
	buffer    int
	closed    bool

	lastUpdate  atomic.Int64 // unix nanos, 0 = never
	updateCount atomic.Int64
	dropped     atomic.Int64

	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a bus. metrics may be nil.
func New(buffer int, metrics *observability.Metrics, logger *zap.Logger) *Bus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	b := &Bus{
		subs:    make(map[string]*Subscription),
		buffer:  buffer,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
	b.listeners = append(b.listeners, b.track)
	return b
}

// track is the built-in listener: it logs the event and counts updates.
func (b *Bus) track(ev domain.Event) {
	b.lastUpdate.Store(ev.Timestamp.UnixNano())
	b.updateCount.Add(1)
	b.logger.Debug("sync event",
		zap.String("event_id", ev.ID),
		zap.String("type", string(ev.Type)),
		zap.Strings("audience", ev.Audience),
		zap.Bool("broadcast", ev.Broadcast),
	)
}

// Listen registers an additional synchronous listener.
func (b *Bus) Listen(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

// Subscribe opens a buffered subscription for a user. After Close the
// returned subscription is already closed.
func (b *Bus) Subscribe(userID string, role domain.Role) *Subscription {
	ch := make(chan domain.Event, b.buffer)
	sub := &Subscription{C: ch, ch: ch, id: uuid.NewString(), userID: userID, role: role}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return sub
	}
	b.subs[sub.id] = sub
	return sub
}

// Unsubscribe closes the subscription channel. Calling it twice is safe.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub.id]; ok {
		delete(b.subs, sub.id)
		close(sub.ch)
	}
}

// Close ends every subscription so open streams return. Meant to run on
// server shutdown; safe to call more than once.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
	b.logger.Info("event bus closed")
}

// Publish stamps and delivers an event.
func (b *Bus) Publish(ev domain.Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = b.now()
	}

	b.mu.RLock()
	listeners := b.listeners
	dropped := 0
	for _, sub := range b.subs {
		if !ev.Visible(sub.userID, sub.role) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			dropped++
		}
	}
	b.mu.RUnlock()

	for _, l := range listeners {
		l(ev)
	}

	if b.metrics != nil {
		b.metrics.IncrEventPublished(ev.Type)
	}
	if dropped > 0 {
		b.dropped.Add(int64(dropped))
		if b.metrics != nil {
			for i := 0; i < dropped; i++ {
				b.metrics.IncrEventDropped()
			}
		}
		b.logger.Warn("sync event dropped for slow subscribers",
			zap.String("type", string(ev.Type)),
			zap.Int("dropped", dropped),
		)
	}
}

// Status reports the sync bridge counters.
func (b *Bus) Status() domain.SyncStatus {
	b.mu.RLock()
	subs := len(b.subs)
	b.mu.RUnlock()

	st := domain.SyncStatus{
		UpdateCount: b.updateCount.Load(),
		IsLive:      subs > 0,
		Subscribers: subs,
		Dropped:     b.dropped.Load(),
	}
	if n := b.lastUpdate.Load(); n != 0 {
		t := time.Unix(0, n)
		st.LastUpdate = &t
	}
	return st
}

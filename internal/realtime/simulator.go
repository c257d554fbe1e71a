// Package realtime simulates the live channel between the backend and the
// dashboards: per-user connection state, delayed deliveries of messages and
// notifications, and a periodic tick that makes the marketplace feel busy.
package realtime

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/observability"
	"github.com/boddenberg/sparkhub-bfa/internal/port"
	"github.com/boddenberg/sparkhub-bfa/internal/service"
)

var tracer = otel.Tracer("realtime/simulator")

// Config tunes the simulation. Chances are probabilities in [0, 1].
type Config struct {
	Tick               string
	ConnectDelay       time.Duration
	MessageDelay       time.Duration
	NotifyDelay        time.Duration
	JobNotifyDelay     time.Duration
	ErrorChance        float64
	NotificationChance float64
	AdvanceChance      float64
	PingChance         float64
}

// DefaultConfig mirrors the timings the dashboards were built against.
func DefaultConfig() Config {
	return Config{
		Tick:               "@every 4s",
		ConnectDelay:       1200 * time.Millisecond,
		MessageDelay:       time.Second,
		NotifyDelay:        300 * time.Millisecond,
		JobNotifyDelay:     500 * time.Millisecond,
		ErrorChance:        0,
		NotificationChance: 0.05,
		AdvanceChance:      0.02,
		PingChance:         0.05,
	}
}

type connection struct {
	role        domain.Role
	state       domain.ConnectionState
	connectedAt *time.Time
	pending     *time.Timer
}

// Simulator implements the chat MessageDeliverer and the dashboard
// PresenceReader.
type Simulator struct {
	market  *service.Marketplace
	events  port.EventPublisher
	metrics *observability.Metrics
	logger  *zap.Logger
	cfg     Config
	now     func() time.Time

	cron *cron.Cron

	mu      sync.Mutex
	conns   map[string]*connection
	streams map[string]int // open event streams per user
	timers  map[*time.Timer]struct{}
	stopped bool
	bg      sync.WaitGroup

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// New creates a simulator. Call Start to run the tick.
func New(market *service.Marketplace, events port.EventPublisher, cfg Config, metrics *observability.Metrics, logger *zap.Logger) *Simulator {
	if cfg.Tick == "" {
		cfg.Tick = DefaultConfig().Tick
	}
	return &Simulator{
		market:  market,
		events:  events,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
		conns:   make(map[string]*connection),
		streams: make(map[string]int),
		timers:  make(map[*time.Timer]struct{}),
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithRand replaces the random source. Intended for tests.
func (s *Simulator) WithRand(r *rand.Rand) *Simulator {
	s.rnd = r
	return s
}

// Start schedules the tick.
func (s *Simulator) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(s.cfg.Tick, s.Tick); err != nil {
		return fmt.Errorf("schedule realtime tick %q: %w", s.cfg.Tick, err)
	}
	c.Start()
	s.cron = c
	s.logger.Info("realtime simulator started", zap.String("tick", s.cfg.Tick))
	return nil
}

// Stop cancels the tick and every pending delivery. It waits for a tick
// already running to finish.
func (s *Simulator) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	s.mu.Lock()
	s.stopped = true
	for t := range s.timers {
		if t.Stop() {
			s.bg.Done()
		}
		delete(s.timers, t)
	}
	for _, c := range s.conns {
		c.pending = nil
	}
	s.mu.Unlock()

	s.logger.Info("realtime simulator stopped")
}

// Wait blocks until every scheduled delivery has fired or been cancelled.
func (s *Simulator) Wait() { s.bg.Wait() }

// ============================================================
// Connection state
// ============================================================

// Connect opens the live channel of a user. The link reaches connected
// (or error) after the connect delay.
func (s *Simulator) Connect(p domain.Principal) domain.RealtimeStatus {
	s.mu.Lock()
	c, ok := s.conns[p.UserID]
	if ok && (c.state == domain.StateConnected || c.state == domain.StateConnecting) {
		s.mu.Unlock()
		return s.Status(p.UserID)
	}
	c = &connection{role: p.Role, state: domain.StateConnecting}
	s.conns[p.UserID] = c
	c.pending = s.afterLocked(s.cfg.ConnectDelay, func() { s.finishConnect(p.UserID, c) })
	s.mu.Unlock()

	s.logger.Debug("realtime connecting", zap.String("user_id", p.UserID))
	s.publishState(p.UserID, domain.StateConnecting)
	return s.Status(p.UserID)
}

func (s *Simulator) finishConnect(userID string, c *connection) {
	failed := s.chance(s.cfg.ErrorChance)

	s.mu.Lock()
	if s.conns[userID] != c || c.state != domain.StateConnecting {
		s.mu.Unlock()
		return
	}
	c.pending = nil
	if failed {
		c.state = domain.StateError
	} else {
		at := s.now()
		c.state = domain.StateConnected
		c.connectedAt = &at
	}
	state := c.state
	s.mu.Unlock()

	if failed {
		s.logger.Warn("realtime connection failed", zap.String("user_id", userID))
	} else {
		s.logger.Info("realtime connection established", zap.String("user_id", userID))
	}
	s.updateGauge()
	s.publishState(userID, state)
}

// Disconnect closes the live channel of a user.
func (s *Simulator) Disconnect(userID string) domain.RealtimeStatus {
	s.mu.Lock()
	c, ok := s.conns[userID]
	if ok {
		if c.pending != nil && c.pending.Stop() {
			delete(s.timers, c.pending)
			s.bg.Done()
		}
		delete(s.conns, userID)
	}
	s.mu.Unlock()

	if ok {
		s.logger.Info("realtime connection closed", zap.String("user_id", userID))
		s.updateGauge()
		s.publishState(userID, domain.StateDisconnected)
	}
	return s.Status(userID)
}

// AttachStream counts one more open event stream for p and connects.
func (s *Simulator) AttachStream(p domain.Principal) domain.RealtimeStatus {
	s.mu.Lock()
	s.streams[p.UserID]++
	s.mu.Unlock()
	return s.Connect(p)
}

// DetachStream releases one event stream. The user stays connected while
// another stream of theirs is open.
func (s *Simulator) DetachStream(userID string) domain.RealtimeStatus {
	s.mu.Lock()
	left := s.streams[userID] - 1
	if left > 0 {
		s.streams[userID] = left
		s.mu.Unlock()
		return s.Status(userID)
	}
	delete(s.streams, userID)
	s.mu.Unlock()
	return s.Disconnect(userID)
}

// Status reports the connection of a user and how many users are online.
func (s *Simulator) Status(userID string) domain.RealtimeStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := domain.RealtimeStatus{UserID: userID, State: domain.StateDisconnected, OnlineUsers: s.onlineLocked()}
	if c, ok := s.conns[userID]; ok {
		st.State = c.state
		st.IsConnected = c.state == domain.StateConnected
		st.ConnectedAt = c.connectedAt
	}
	return st
}

func (s *Simulator) onlineLocked() int {
	n := 0
	for _, c := range s.conns {
		if c.state == domain.StateConnected {
			n++
		}
	}
	return n
}

// online returns the connected users sorted by id.
func (s *Simulator) online() []domain.Principal {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Principal, 0, len(s.conns))
	for id, c := range s.conns {
		if c.state == domain.StateConnected {
			out = append(out, domain.Principal{UserID: id, Role: c.role})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

func (s *Simulator) updateGauge() {
	if s.metrics == nil {
		return
	}
	s.mu.Lock()
	n := s.onlineLocked()
	s.mu.Unlock()
	s.metrics.SetRealtimeConnections(n)
}

func (s *Simulator) publishState(userID string, state domain.ConnectionState) {
	if s.events == nil {
		return
	}
	s.events.Publish(domain.Event{
		Type:      domain.EventConnectionState,
		Data:      domain.ConnectionChange{UserID: userID, State: state},
		Timestamp: s.now(),
		Audience:  []string{userID},
	})
}

// ============================================================
// Internal helpers
// ============================================================

// after runs fn once d has elapsed unless the simulator stops first.
func (s *Simulator) after(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.afterLocked(d, fn)
}

func (s *Simulator) afterLocked(d time.Duration, fn func()) *time.Timer {
	if s.stopped {
		return nil
	}
	s.bg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		defer s.bg.Done()
		s.mu.Lock()
		_, live := s.timers[t]
		delete(s.timers, t)
		s.mu.Unlock()
		if live {
			fn()
		}
	})
	s.timers[t] = struct{}{}
	return t
}

func (s *Simulator) chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return s.rnd.Float64() < p
}

func (s *Simulator) pick(n int) int {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return s.rnd.Intn(n)
}

// localeOf returns the language of the user, or an error when the id
// belongs to nobody.
func (s *Simulator) localeOf(ctx context.Context, userID string) (domain.Locale, error) {
	if u, err := s.market.GetUser(ctx, userID); err == nil {
		return u.Language, nil
	}
	a, err := s.market.Store().GetApplication(ctx, userID)
	if err != nil {
		return "", &domain.ErrNotFound{Resource: "user", ID: userID}
	}
	return a.Language, nil
}

func (s *Simulator) addNotification(ctx context.Context, in domain.NotificationInput) {
	if _, err := s.market.AddNotification(ctx, in); err != nil {
		s.logger.Warn("realtime notification not stored",
			zap.String("user_id", in.UserID),
			zap.String("title", in.Title),
			zap.Error(err),
		)
	}
}

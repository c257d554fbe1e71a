package observability

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
)

// Metrics holds all Prometheus metrics for the marketplace.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration     *prometheus.HistogramVec
	jobTransitions      *prometheus.CounterVec
	notifications       *prometheus.CounterVec
	eventsPublished     *prometheus.CounterVec
	eventsDropped       prometheus.Counter
	sms                 *prometheus.CounterVec
	cacheHits           *prometheus.CounterVec
	cacheMisses         *prometheus.CounterVec
	logins              *prometheus.CounterVec
	realtimeConnections prometheus.Gauge
}

// Job statuses tracked by the transition counter.
var trackedStatuses = []domain.JobStatus{
	domain.JobAccepted, domain.JobInProgress, domain.JobCompleted, domain.JobCancelled,
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sparkhub_request_duration_seconds",
				Help:    "Duration of HTTP requests by route and status class.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "code"},
		),
		jobTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sparkhub_job_transitions_total",
				Help: "Job status changes by target status.",
			},
			[]string{"status"},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sparkhub_notifications_total",
				Help: "Notifications written by type.",
			},
			[]string{"type"},
		),
		eventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sparkhub_events_published_total",
				Help: "Sync events published by type.",
			},
			[]string{"type"},
		),
		eventsDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "sparkhub_events_dropped_total",
				Help: "Sync events dropped because a subscriber buffer was full.",
			},
		),
		sms: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sparkhub_sms_total",
				Help: "SMS delivery attempts by outcome.",
			},
			[]string{"outcome"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sparkhub_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sparkhub_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		logins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sparkhub_logins_total",
				Help: "Login attempts by outcome.",
			},
			[]string{"outcome"},
		),
		realtimeConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sparkhub_realtime_connections",
				Help: "Users currently connected to the live channel.",
			},
		),
	}
}

// RecordRequestDuration records the duration of an HTTP request.
func (m *Metrics) RecordRequestDuration(route, code string, d time.Duration) {
	m.requestDuration.WithLabelValues(route, code).Observe(d.Seconds())
}

// IncrJobTransition counts a job moving to status.
func (m *Metrics) IncrJobTransition(status domain.JobStatus) {
	m.jobTransitions.WithLabelValues(string(status)).Inc()
}

// IncrNotification counts a stored notification.
func (m *Metrics) IncrNotification(t domain.NotificationType) {
	m.notifications.WithLabelValues(string(t)).Inc()
}

// IncrEventPublished counts a published sync event.
func (m *Metrics) IncrEventPublished(t domain.EventType) {
	m.eventsPublished.WithLabelValues(string(t)).Inc()
}

// IncrEventDropped counts one undelivered event.
func (m *Metrics) IncrEventDropped() {
	m.eventsDropped.Inc()
}

// IncrSMS counts an SMS attempt; outcome is "sent" or "failed".
func (m *Metrics) IncrSMS(outcome string) {
	m.sms.WithLabelValues(outcome).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrLogin counts a login attempt; outcome is "success" or "failure".
func (m *Metrics) IncrLogin(outcome string) {
	m.logins.WithLabelValues(outcome).Inc()
}

// SetRealtimeConnections sets the connected-user gauge.
func (m *Metrics) SetRealtimeConnections(n int) {
	m.realtimeConnections.Set(float64(n))
}

// Snapshot reads the counters back for the admin stats view.
func (m *Metrics) Snapshot() domain.PlatformMetrics {
	transitions := make(map[string]float64, len(trackedStatuses))
	for _, s := range trackedStatuses {
		transitions[string(s)] = metricValue(m.jobTransitions.WithLabelValues(string(s)))
	}

	hits := metricValue(m.cacheHits.WithLabelValues("idempotency"))
	misses := metricValue(m.cacheMisses.WithLabelValues("idempotency"))
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return domain.PlatformMetrics{
		JobTransitions:      transitions,
		NotificationsSent:   sumVec(m.notifications),
		EventsPublished:     sumVec(m.eventsPublished),
		EventsDropped:       metricValue(m.eventsDropped),
		SMSSent:             metricValue(m.sms.WithLabelValues("sent")),
		SMSFailed:           metricValue(m.sms.WithLabelValues("failed")),
		LoginsSucceeded:     metricValue(m.logins.WithLabelValues("success")),
		LoginsFailed:        metricValue(m.logins.WithLabelValues("failure")),
		CacheHitRate:        hitRate,
		RealtimeConnections: metricValue(m.realtimeConnections),
	}
}

// Middleware records request duration under the matched chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		code := "2xx"
		switch s := ww.Status(); {
		case s >= 500:
			code = "5xx"
		case s >= 400:
			code = "4xx"
		case s >= 300:
			code = "3xx"
		}
		m.RecordRequestDuration(route, code, time.Since(start))
	})
}

// metricValue extracts the current value of a counter or gauge.
func metricValue(c prometheus.Metric) float64 {
	out := &dto.Metric{}
	if err := c.Write(out); err != nil {
		return 0
	}
	switch {
	case out.Counter != nil && out.Counter.Value != nil:
		return *out.Counter.Value
	case out.Gauge != nil && out.Gauge.Value != nil:
		return *out.Gauge.Value
	}
	return 0
}

// sumVec adds up every child of a counter vector.
func sumVec(cv *prometheus.CounterVec) float64 {
	ch := make(chan prometheus.Metric, 32)
	go func() {
		cv.Collect(ch)
		close(ch)
	}()
	total := float64(0)
	for metric := range ch {
		total += metricValue(metric)
	}
	return total
}

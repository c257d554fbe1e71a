package observability_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/observability"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := observability.NewMetrics()

	m.IncrJobTransition(domain.JobAccepted)
	m.IncrJobTransition(domain.JobAccepted)
	m.IncrJobTransition(domain.JobCompleted)
	m.IncrNotification(domain.NotifyJob)
	m.IncrNotification(domain.NotifySystem)
	m.IncrEventPublished(domain.EventJobCreated)
	m.IncrEventDropped()
	m.IncrSMS("sent")
	m.IncrLogin("success")
	m.IncrLogin("failure")
	m.IncrCacheHit("idempotency")
	m.IncrCacheMiss("idempotency")
	m.SetRealtimeConnections(3)

	snap := m.Snapshot()

	if snap.JobTransitions["accepted"] != 2 || snap.JobTransitions["completed"] != 1 {
		t.Errorf("unexpected transitions: %+v", snap.JobTransitions)
	}
	if snap.NotificationsSent != 2 {
		t.Errorf("expected 2 notifications, got %v", snap.NotificationsSent)
	}
	if snap.EventsPublished != 1 || snap.EventsDropped != 1 {
		t.Errorf("unexpected event counters: %+v", snap)
	}
	if snap.SMSSent != 1 || snap.SMSFailed != 0 {
		t.Errorf("unexpected sms counters: %+v", snap)
	}
	if snap.LoginsSucceeded != 1 || snap.LoginsFailed != 1 {
		t.Errorf("unexpected login counters: %+v", snap)
	}
	if snap.CacheHitRate != 0.5 {
		t.Errorf("expected 0.5 hit rate, got %v", snap.CacheHitRate)
	}
	if snap.RealtimeConnections != 3 {
		t.Errorf("expected 3 connections, got %v", snap.RealtimeConnections)
	}
}

func TestMetrics_MiddlewareUsesRoutePattern(t *testing.T) {
	m := observability.NewMetrics()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/v1/jobs/{jobID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/jobs/job1", nil))

	scrape := httptest.NewRecorder()
	promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}).
		ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := scrape.Body.String()
	if !strings.Contains(body, `route="/v1/jobs/{jobID}"`) || !strings.Contains(body, `code="4xx"`) {
		t.Errorf("expected labelled histogram, got:\n%s", body)
	}
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info"} {
		if observability.NewLogger(level) == nil {
			t.Fatalf("nil logger for level %s", level)
		}
	}
}

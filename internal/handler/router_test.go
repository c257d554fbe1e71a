package handler_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	chatservice "github.com/boddenberg/sparkhub-bfa/internal/chat/service"
	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/handler"
	"github.com/boddenberg/sparkhub-bfa/internal/i18n"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/cache"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/eventbus"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/memstore"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/observability"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/sessionstore"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/sms"
	"github.com/boddenberg/sparkhub-bfa/internal/realtime"
	"github.com/boddenberg/sparkhub-bfa/internal/service"
)

type stack struct {
	router http.Handler
	market *service.Marketplace
	sim    *realtime.Simulator
}

type options struct {
	devAuth   bool
	rateLimit float64
	rateBurst int
}

func newStack(t *testing.T, opts options) *stack {
	t.Helper()
	logger := zap.NewNop()
	catalog := i18n.New()

	store := memstore.New()
	if err := memstore.Seed(store, time.Now()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	metrics := observability.NewMetrics()
	bus := eventbus.New(eventbus.DefaultBuffer, metrics, logger)
	idem := cache.New[string](time.Minute)
	t.Cleanup(idem.Stop)

	market := service.NewMarketplace(service.MarketplaceDeps{
		Store: store, Events: bus, SMS: sms.NewLogSender(logger),
		Idempotency: idem, Catalog: catalog, Metrics: metrics, Logger: logger,
	})
	sessions := sessionstore.NewMemoryStore()
	auth := service.NewAuthService(market, sessions, service.AuthConfig{
		JWTSecret:  "router-test-secret",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: time.Hour,
		DevAuth:    opts.devAuth,
		BcryptCost: 4,
	}, metrics, logger)

	sim := realtime.New(market, bus, realtime.Config{
		Tick:           "@every 1h",
		ConnectDelay:   time.Millisecond,
		MessageDelay:   time.Millisecond,
		NotifyDelay:    time.Millisecond,
		JobNotifyDelay: time.Millisecond,
	}, metrics, logger)
	chat := chatservice.NewChatService(store, sim, bus,
		[]chatservice.ReplyStrategy{chatservice.NewAutoReplyStrategy(false, catalog)},
		time.Millisecond, logger)

	t.Cleanup(func() {
		chat.Close()
		sim.Stop()
		market.Wait()
	})

	router := handler.NewRouter(handler.Deps{
		Market:         market,
		Auth:           auth,
		Dashboard:      service.NewDashboard(market, sim, logger),
		Chat:           chat,
		Realtime:       sim,
		Bus:            bus,
		Catalog:        catalog,
		Sessions:       sessions,
		Metrics:        metrics,
		Logger:         logger,
		DevAuth:        opts.devAuth,
		LoginRateLimit: opts.rateLimit,
		LoginRateBurst: opts.rateBurst,
		KeepAlive:      time.Hour,
	})
	return &stack{router: router, market: market, sim: sim}
}

func (s *stack) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *stack) login(t *testing.T, email string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/v1/auth/login", "", domain.LoginRequest{Email: email, Password: memstore.DemoPassword})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", email, rec.Code, rec.Body.String())
	}
	var resp domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return resp.AccessToken
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

// --- Operational endpoints ---

func TestHealthz(t *testing.T) {
	s := newStack(t, options{})

	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	expectStatus(t, rec, http.StatusOK)

	var hs domain.HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&hs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if hs.Status != "healthy" {
		t.Errorf("expected healthy, got %s", hs.Status)
	}
	if len(hs.Services) != 3 || hs.Services[1].Name != "session-store" {
		t.Errorf("expected api, session store and event bus, got %+v", hs.Services)
	}
}

func TestReadyz(t *testing.T) {
	s := newStack(t, options{})
	expectStatus(t, s.do(t, http.MethodGet, "/readyz", "", nil), http.StatusOK)
}

func TestMetrics(t *testing.T) {
	s := newStack(t, options{})
	s.do(t, http.MethodGet, "/readyz", "", nil)

	rec := s.do(t, http.MethodGet, "/metrics", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "sparkhub_request_duration_seconds") {
		t.Error("expected the request duration histogram in the scrape")
	}
}

func TestPing(t *testing.T) {
	s := newStack(t, options{})
	expectStatus(t, s.do(t, http.MethodGet, "/ping", "", nil), http.StatusOK)
}

func TestUnconfiguredRouter(t *testing.T) {
	router := handler.NewRouter(handler.Deps{Metrics: observability.NewMetrics()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/jobs", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 from healthz, got %d", rec.Code)
	}
}

// --- Auth & roles ---

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newStack(t, options{})

	expectStatus(t, s.do(t, http.MethodGet, "/v1/jobs", "", nil), http.StatusUnauthorized)
	expectStatus(t, s.do(t, http.MethodGet, "/v1/jobs", "not-a-jwt", nil), http.StatusUnauthorized)

	req := httptest.NewRequest(http.MethodGet, "/v1/jobs", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestLoginAndMe(t *testing.T) {
	s := newStack(t, options{})
	token := s.login(t, "customer@example.com")

	rec := s.do(t, http.MethodGet, "/v1/me", token, nil)
	expectStatus(t, rec, http.StatusOK)
	var u domain.User
	if err := json.NewDecoder(rec.Body).Decode(&u); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if u.ID != memstore.CustomerID {
		t.Errorf("expected %s, got %s", memstore.CustomerID, u.ID)
	}

	expectStatus(t, s.do(t, http.MethodPost, "/v1/auth/logout", token, nil), http.StatusNoContent)
	expectStatus(t, s.do(t, http.MethodGet, "/v1/me", token, nil), http.StatusUnauthorized)
}

func TestLogin_BadBodyAndCredentials(t *testing.T) {
	s := newStack(t, options{})

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = s.do(t, http.MethodPost, "/v1/auth/login", "", domain.LoginRequest{Email: "customer@example.com", Password: "nope"})
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestRegister_ElectricianPending(t *testing.T) {
	s := newStack(t, options{})

	rec := s.do(t, http.MethodPost, "/v1/auth/register", "", domain.RegisterRequest{
		Name: "Amit", Email: "amit@example.com", Phone: "9000000003", Password: "secret1", Role: domain.RoleElectrician,
	})
	expectStatus(t, rec, http.StatusCreated)
	var resp domain.RegisterResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "pending_approval" || resp.Session != nil {
		t.Errorf("expected a pending application, got %+v", resp)
	}

	rec = s.do(t, http.MethodPost, "/v1/auth/login", "", domain.LoginRequest{Email: "amit@example.com", Password: "secret1"})
	expectStatus(t, rec, http.StatusForbidden)
}

func TestAdminOnlyRoutes(t *testing.T) {
	s := newStack(t, options{})
	customer := s.login(t, "customer@example.com")
	admin := s.login(t, "admin@example.com")

	expectStatus(t, s.do(t, http.MethodGet, "/v1/admin/stats", customer, nil), http.StatusForbidden)
	expectStatus(t, s.do(t, http.MethodPost, "/v1/electricians/electrician2/approve", customer, nil), http.StatusForbidden)
	expectStatus(t, s.do(t, http.MethodGet, "/v1/electricians?pending=true", customer, nil), http.StatusForbidden)

	rec := s.do(t, http.MethodGet, "/v1/admin/stats", admin, nil)
	expectStatus(t, rec, http.StatusOK)
	var st domain.AdminStats
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.TotalJobs != 2 {
		t.Errorf("expected 2 jobs, got %d", st.TotalJobs)
	}

	expectStatus(t, s.do(t, http.MethodPost, "/v1/electricians/electrician2/approve", admin, nil), http.StatusOK)
	expectStatus(t, s.do(t, http.MethodGet, "/v1/electricians/electrician2", customer, nil), http.StatusOK)
}

func TestLoginRateLimit(t *testing.T) {
	s := newStack(t, options{rateLimit: 1, rateBurst: 2})
	body := domain.LoginRequest{Email: "customer@example.com", Password: memstore.DemoPassword}

	expectStatus(t, s.do(t, http.MethodPost, "/v1/auth/login", "", body), http.StatusOK)
	expectStatus(t, s.do(t, http.MethodPost, "/v1/auth/login", "", body), http.StatusOK)

	rec := s.do(t, http.MethodPost, "/v1/auth/login", "", body)
	expectStatus(t, rec, http.StatusTooManyRequests)
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected a Retry-After header")
	}
}

// --- Jobs ---

func TestCreateJob_IdempotentReplay(t *testing.T) {
	s := newStack(t, options{})
	token := s.login(t, "customer@example.com")
	distance := 2.0
	in := domain.JobInput{
		ElectricianID: memstore.ElectricianID,
		ServiceID:     memstore.FanRepairID,
		Description:   "Fan making noise",
		Address:       "Sector 62, Noida",
		Distance:      &distance,
		ScheduledDate: "2030-01-02",
	}

	post := func() *httptest.ResponseRecorder {
		b, _ := json.Marshal(in)
		req := httptest.NewRequest(http.MethodPost, "/v1/jobs", bytes.NewReader(b))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set(handler.IdempotencyHeader, "booking-1")
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		return rec
	}

	first := post()
	expectStatus(t, first, http.StatusCreated)
	second := post()
	expectStatus(t, second, http.StatusOK)
	if second.Header().Get("Idempotent-Replayed") != "true" {
		t.Error("expected the replay header")
	}

	var a, b domain.Job
	json.NewDecoder(first.Body).Decode(&a)
	json.NewDecoder(second.Body).Decode(&b)
	if a.ID == "" || a.ID != b.ID {
		t.Errorf("expected the same job, got %q and %q", a.ID, b.ID)
	}
}

func TestJobLifecycle(t *testing.T) {
	s := newStack(t, options{})
	customer := s.login(t, "customer@example.com")
	electrician := s.login(t, "electrician@example.com")
	admin := s.login(t, "admin@example.com")

	expectStatus(t, s.do(t, http.MethodPost, "/v1/jobs/job1/accept", customer, nil), http.StatusForbidden)

	rec := s.do(t, http.MethodPost, "/v1/jobs/job1/accept", electrician, nil)
	expectStatus(t, rec, http.StatusOK)
	var j domain.Job
	json.NewDecoder(rec.Body).Decode(&j)
	if j.Status != domain.JobAccepted {
		t.Errorf("expected accepted, got %s", j.Status)
	}

	rec = s.do(t, http.MethodPut, "/v1/jobs/job1/status", electrician, domain.JobStatusRequest{Status: domain.JobInProgress})
	expectStatus(t, rec, http.StatusOK)

	rec = s.do(t, http.MethodPost, "/v1/jobs/job1/complete", electrician, nil)
	expectStatus(t, rec, http.StatusOK)
	json.NewDecoder(rec.Body).Decode(&j)
	if j.Status != domain.JobCompleted {
		t.Errorf("expected completed, got %s", j.Status)
	}

	// a completed job cannot go back
	expectStatus(t, s.do(t, http.MethodPost, "/v1/jobs/job1/cancel", admin, nil), http.StatusConflict)
	expectStatus(t, s.do(t, http.MethodPut, "/v1/jobs/job1/status", admin, domain.JobStatusRequest{Status: "paused"}), http.StatusBadRequest)
	expectStatus(t, s.do(t, http.MethodGet, "/v1/jobs/nope", customer, nil), http.StatusNotFound)
	expectStatus(t, s.do(t, http.MethodGet, "/v1/jobs?status=paused", customer, nil), http.StatusBadRequest)

	rec = s.do(t, http.MethodGet, "/v1/jobs?status=completed", customer, nil)
	expectStatus(t, rec, http.StatusOK)
	var list domain.ListResponse[domain.Job]
	json.NewDecoder(rec.Body).Decode(&list)
	if list.Total != 2 {
		t.Errorf("expected 2 completed jobs, got %d", list.Total)
	}
}

func TestPayForJob(t *testing.T) {
	s := newStack(t, options{})
	customer := s.login(t, "customer@example.com")

	expectStatus(t, s.do(t, http.MethodPost, "/v1/jobs/job2/pay", customer, domain.PayRequest{Method: "cheque"}), http.StatusBadRequest)
	expectStatus(t, s.do(t, http.MethodPost, "/v1/jobs/job1/pay", customer, domain.PayRequest{Method: domain.PayWallet}), http.StatusConflict)
	expectStatus(t, s.do(t, http.MethodPost, "/v1/wallet/add", customer, domain.AddMoneyRequest{Amount: 50}), http.StatusBadRequest)
	expectStatus(t, s.do(t, http.MethodGet, "/v1/wallet", customer, nil), http.StatusOK)
}

// --- Notifications & realtime ---

func TestAdminSendsNotification(t *testing.T) {
	s := newStack(t, options{})
	admin := s.login(t, "admin@example.com")
	customer := s.login(t, "customer@example.com")

	in := domain.NotificationInput{UserID: memstore.CustomerID, Title: "Hello", Message: "From admin"}
	expectStatus(t, s.do(t, http.MethodPost, "/v1/notifications", customer, in), http.StatusForbidden)
	expectStatus(t, s.do(t, http.MethodPost, "/v1/notifications", admin, in), http.StatusAccepted)
	s.sim.Wait()

	rec := s.do(t, http.MethodGet, "/v1/notifications", customer, nil)
	expectStatus(t, rec, http.StatusOK)
	var list domain.NotificationList
	json.NewDecoder(rec.Body).Decode(&list)
	if list.UnreadCount != 1 || list.Notifications[0].Title != "Hello" {
		t.Fatalf("expected the admin notification, got %+v", list)
	}

	rec = s.do(t, http.MethodPost, "/v1/notifications/read-all", customer, nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `"updated":1`) {
		t.Errorf("expected one notification marked read, got %s", rec.Body.String())
	}
}

func TestRealtimeConnect(t *testing.T) {
	s := newStack(t, options{})
	token := s.login(t, "customer@example.com")

	expectStatus(t, s.do(t, http.MethodPost, "/v1/realtime/connect", token, nil), http.StatusAccepted)
	s.sim.Wait()

	rec := s.do(t, http.MethodGet, "/v1/realtime/status", token, nil)
	expectStatus(t, rec, http.StatusOK)
	var st domain.RealtimeStatus
	json.NewDecoder(rec.Body).Decode(&st)
	if !st.IsConnected || st.OnlineUsers != 1 {
		t.Errorf("expected connected, got %+v", st)
	}

	expectStatus(t, s.do(t, http.MethodPost, "/v1/realtime/messages", token,
		domain.RealtimeMessageRequest{RecipientID: "ghost", Message: "hi"}), http.StatusNotFound)
	expectStatus(t, s.do(t, http.MethodPost, "/v1/realtime/disconnect", token, nil), http.StatusOK)
}

func TestJobChat(t *testing.T) {
	s := newStack(t, options{})
	customer := s.login(t, "customer@example.com")
	electrician := s.login(t, "electrician@example.com")
	admin := s.login(t, "admin@example.com")

	expectStatus(t, s.do(t, http.MethodPost, "/v1/jobs/job1/messages", customer,
		map[string]string{"message": "Can you come at 5pm?"}), http.StatusCreated)
	expectStatus(t, s.do(t, http.MethodPost, "/v1/jobs/job1/messages", customer,
		map[string]string{"message": "  "}), http.StatusBadRequest)
	expectStatus(t, s.do(t, http.MethodGet, "/v1/jobs/nope/messages", customer, nil), http.StatusNotFound)
	expectStatus(t, s.do(t, http.MethodGet, "/v1/jobs/job1/messages", admin, nil), http.StatusForbidden)

	rec := s.do(t, http.MethodGet, "/v1/jobs/job1/messages", electrician, nil)
	expectStatus(t, rec, http.StatusOK)
	var conv struct {
		Messages    []domain.Message `json:"messages"`
		UnreadCount int              `json:"unreadCount"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&conv); err != nil {
		t.Fatalf("decode conversation: %v", err)
	}
	if len(conv.Messages) != 1 || conv.UnreadCount != 1 {
		t.Fatalf("expected one unread message, got %+v", conv)
	}

	rec = s.do(t, http.MethodPost, "/v1/jobs/job1/messages/read", electrician, nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `"marked":1`) {
		t.Errorf("expected one message marked read, got %s", rec.Body.String())
	}
}

func TestSyncForce(t *testing.T) {
	s := newStack(t, options{})
	customer := s.login(t, "customer@example.com")
	admin := s.login(t, "admin@example.com")

	expectStatus(t, s.do(t, http.MethodPost, "/v1/sync/force", customer, nil), http.StatusForbidden)
	expectStatus(t, s.do(t, http.MethodPost, "/v1/sync/force", admin, nil), http.StatusAccepted)

	rec := s.do(t, http.MethodGet, "/v1/sync/status", customer, nil)
	expectStatus(t, rec, http.StatusOK)
	var st domain.SyncStatus
	json.NewDecoder(rec.Body).Decode(&st)
	if st.UpdateCount == 0 || st.LastUpdate == nil {
		t.Errorf("expected the forced update to be counted, got %+v", st)
	}
}

func TestEventStream(t *testing.T) {
	s := newStack(t, options{})
	token := s.login(t, "customer@example.com")
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/events/stream?access_token="+token, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected text/event-stream, got %q", ct)
	}
	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.TrimSpace(line) != "event: connection.established" {
		t.Errorf("expected the established event first, got %q", line)
	}
}

// --- Dev tools ---

func TestDevTools(t *testing.T) {
	s := newStack(t, options{})
	admin := s.login(t, "admin@example.com")
	body := domain.DevAddBalanceRequest{UserID: memstore.CustomerID, Amount: 50}
	expectStatus(t, s.do(t, http.MethodPost, "/v1/dev/add-balance", admin, body), http.StatusNotFound)

	dev := newStack(t, options{devAuth: true})
	admin = dev.login(t, "admin@example.com")
	customer := dev.login(t, "customer@example.com")
	expectStatus(t, dev.do(t, http.MethodPost, "/v1/dev/add-balance", customer, body), http.StatusForbidden)
	expectStatus(t, dev.do(t, http.MethodPost, "/v1/dev/add-balance", admin, body), http.StatusOK)
}

// --- Translations ---

func TestI18n(t *testing.T) {
	s := newStack(t, options{})

	expectStatus(t, s.do(t, http.MethodGet, "/v1/i18n/hi", "", nil), http.StatusOK)
	expectStatus(t, s.do(t, http.MethodGet, "/v1/i18n/fr", "", nil), http.StatusNotFound)

	req := httptest.NewRequest(http.MethodGet, "/v1/i18n/auto", nil)
	req.Header.Set("Accept-Language", "hi-IN,hi;q=0.9")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusOK)
	if got := rec.Header().Get("Content-Language"); got != "hi" {
		t.Errorf("expected hi, got %q", got)
	}

	rec = s.do(t, http.MethodGet, "/v1/i18n/en/no.such.key", "", nil)
	expectStatus(t, rec, http.StatusOK)
	var tr struct {
		Value string `json:"value"`
		Found bool   `json:"found"`
	}
	json.NewDecoder(rec.Body).Decode(&tr)
	if tr.Found || tr.Value != "no.such.key" {
		t.Errorf("expected the key as fallback, got %+v", tr)
	}
}

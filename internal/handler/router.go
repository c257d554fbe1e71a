package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	chathandler "github.com/boddenberg/sparkhub-bfa/internal/chat/handler"
	chatservice "github.com/boddenberg/sparkhub-bfa/internal/chat/service"
	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/i18n"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/eventbus"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/observability"
	"github.com/boddenberg/sparkhub-bfa/internal/port"
	"github.com/boddenberg/sparkhub-bfa/internal/realtime"
	"github.com/boddenberg/sparkhub-bfa/internal/service"
)

var tracer = otel.Tracer("handler")

const healthCheckTimeout = 2 * time.Second

// Deps is everything the router serves. Sessions is only used by the
// health check and may be nil.
type Deps struct {
	Market    *service.Marketplace
	Auth      *service.AuthService
	Dashboard *service.Dashboard
	Chat      *chatservice.ChatService
	Realtime  *realtime.Simulator
	Bus       *eventbus.Bus
	Catalog   *i18n.Catalog
	Sessions  port.SessionStore
	Metrics   *observability.Metrics
	Logger    *zap.Logger

	DevAuth     bool
	CORSOrigins []string

	// LoginRateLimit is requests per minute per client address on the
	// credential endpoints. Zero disables the limiter.
	LoginRateLimit float64
	LoginRateBurst int

	KeepAlive time.Duration
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	catalog := d.Catalog
	if catalog == nil {
		catalog = i18n.New()
	}

	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins(d.CORSOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type", IdempotencyHeader},
		ExposedHeaders:   []string{"Idempotent-Replayed", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(d.Sessions, d.Bus))
	r.Get("/readyz", readyzHandler())
	if d.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Translations (public)
		// =============================================
		r.Get("/i18n/{locale}", dictionaryHandler(catalog))
		r.Get("/i18n/{locale}/{key}", translateHandler(catalog))

		if d.Auth == nil || d.Market == nil {
			r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeError(w, http.StatusServiceUnavailable, "marketplace not configured")
			}))
			return
		}
		market, sim := d.Market, d.Realtime

		// =============================================
		// Authentication
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if d.LoginRateLimit > 0 {
					r.Use(NewIPRateLimiter(d.LoginRateLimit, d.LoginRateBurst).Middleware(logger))
				}
				r.Post("/register", authRegisterHandler(d.Auth, logger))
				r.Post("/login", authLoginHandler(d.Auth, logger))
				r.Post("/refresh", authRefreshHandler(d.Auth, logger))
			})

			r.Group(func(r chi.Router) {
				r.Use(AuthMiddleware(d.Auth, logger))
				r.Post("/logout", authLogoutHandler(d.Auth, logger))
				r.Post("/password", authChangePasswordHandler(d.Auth, logger))
			})
		})

		// =============================================
		// Event stream (token may come in the query)
		// =============================================
		if d.Bus != nil && sim != nil {
			r.With(tokenFromQuery, AuthMiddleware(d.Auth, logger)).
				Get("/events/stream", eventStreamHandler(d.Bus, sim, d.KeepAlive, logger))
		}

		// =============================================
		// Protected routes
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(d.Auth, logger))
			admin := RequireRole(domain.RoleAdmin)

			// Profile
			r.Get("/me", meHandler(d.Auth, logger))
			r.Patch("/me", updateMeHandler(d.Auth, logger))
			if d.Dashboard != nil {
				r.Get("/me/dashboard", dashboardHandler(d.Dashboard, logger))
			}

			// Electricians
			r.Get("/electricians", listElectriciansHandler(market, logger))
			r.Get("/electricians/nearby", nearbyElectriciansHandler(market, logger))
			r.Get("/electricians/{id}", getElectricianHandler(market, logger))
			r.Patch("/electricians/{id}", updateElectricianHandler(market, logger))
			r.Put("/electricians/{id}/availability", availabilityHandler(market, logger))
			r.With(admin).Post("/electricians/{id}/approve", approveElectricianHandler(market, logger))
			r.With(admin).Post("/electricians/{id}/reject", rejectElectricianHandler(market, logger))

			// Service catalog
			r.Get("/services", listServicesHandler(market, logger))
			r.With(RequireRole(domain.RoleElectrician)).Post("/services", addServiceHandler(market, logger))
			r.With(admin).Post("/services/{id}/approve", approveServiceHandler(market, logger))
			r.With(admin).Post("/services/{id}/reject", rejectServiceHandler(market, logger))

			// Jobs
			r.Post("/jobs", createJobHandler(market, logger))
			r.Get("/jobs", listJobsHandler(market, logger))
			r.Post("/jobs/quote", quoteJobHandler(market, logger))
			r.Get("/jobs/{id}", getJobHandler(market, logger))
			r.Post("/jobs/{id}/complete", completeJobHandler(market, logger))
			r.Post("/jobs/{id}/pay", payJobHandler(market, logger))
			if sim != nil {
				r.Post("/jobs/{id}/accept", jobTransitionHandler(sim, domain.JobAccepted, logger))
				r.Post("/jobs/{id}/start", jobTransitionHandler(sim, domain.JobInProgress, logger))
				r.Post("/jobs/{id}/cancel", jobTransitionHandler(sim, domain.JobCancelled, logger))
				r.Put("/jobs/{id}/status", jobStatusHandler(sim, logger))
			}

			// Job conversation
			if d.Chat != nil {
				chathandler.Routes(r, d.Chat, logger)
			}

			// Notifications
			r.Get("/notifications", listNotificationsHandler(market, logger))
			r.Post("/notifications/read-all", markAllNotificationsReadHandler(market, logger))
			r.Post("/notifications/{id}/read", markNotificationReadHandler(market, logger))
			if sim != nil {
				r.With(admin).Post("/notifications", sendNotificationHandler(sim, logger))
			}

			// Wallet
			r.Get("/wallet", getWalletHandler(market, logger))
			r.Post("/wallet/add", addMoneyHandler(market, logger))
			r.Get("/wallet/offers", listOffersHandler(market))
			r.Post("/wallet/offers/apply", applyOfferHandler(market, logger))

			// Admin
			r.With(admin).Get("/admin/stats", adminStatsHandler(market, logger))

			// Realtime
			if sim != nil {
				r.Get("/realtime/status", realtimeStatusHandler(sim))
				r.Post("/realtime/connect", realtimeConnectHandler(sim))
				r.Post("/realtime/disconnect", realtimeDisconnectHandler(sim))
				r.Post("/realtime/messages", realtimeMessageHandler(sim, logger))
			}

			// Sync bridge
			if d.Bus != nil {
				r.Get("/sync/status", syncStatusHandler(d.Bus))
				r.With(admin).Post("/sync/force", syncForceHandler(d.Bus, logger))
			}

			// =============================================
			// Dev Tools (DEV_AUTH only)
			// =============================================
			if d.DevAuth {
				r.Group(func(r chi.Router) {
					r.Use(admin)
					r.Post("/dev/add-balance", devAddBalanceHandler(market, logger))
					r.Post("/dev/generate-jobs", devGenerateJobsHandler(market, logger))
				})
			}
		})
	})

	return r
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000", "http://localhost:5173"}
	}
	return origins
}

// ============================================================
// Health checks
// ============================================================

func healthzHandler(sessions port.SessionStore, bus *eventbus.Bus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "bfa-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if sessions != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			start := time.Now()
			err := sessions.Ping(ctx)
			cancel()
			sh := domain.ServiceHealth{
				Name: "session-store", Status: "healthy",
				LatencyMs: time.Since(start).Milliseconds(), LastChecked: now,
			}
			if err != nil {
				sh.Status = "degraded"
				sh.Error = err.Error()
			}
			services = append(services, sh)
		}

		if bus != nil {
			services = append(services, domain.ServiceHealth{Name: "event-bus", Status: "healthy", LastChecked: now})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

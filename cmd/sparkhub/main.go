package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	chatservice "github.com/boddenberg/sparkhub-bfa/internal/chat/service"
	"github.com/boddenberg/sparkhub-bfa/internal/config"
	"github.com/boddenberg/sparkhub-bfa/internal/handler"
	"github.com/boddenberg/sparkhub-bfa/internal/i18n"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/cache"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/eventbus"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/memstore"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/observability"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/resilience"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/sessionstore"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/sms"
	"github.com/boddenberg/sparkhub-bfa/internal/port"
	"github.com/boddenberg/sparkhub-bfa/internal/realtime"
	"github.com/boddenberg/sparkhub-bfa/internal/service"
)

func main() {
	// --- Load .env file (for local development) ---
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
	}

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("session_backend", cfg.SessionBackend),
		zap.Bool("dev_auth", cfg.DevAuth),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Duration("jwt_refresh_ttl", cfg.JWTRefreshTTL),
		zap.String("realtime_tick", cfg.RealtimeTick),
	)
	if cfg.DevAuth {
		logger.Warn("DEV_AUTH is on: any password signs in a known email and /v1/dev is mounted")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "sparkhub-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}

	// --- Store ---
	store := memstore.New()
	if err := memstore.Seed(store, time.Now()); err != nil {
		logger.Fatal("failed to seed marketplace", zap.Error(err))
	}

	// --- Sessions ---
	sessions := newSessionStore(cfg, resilienceCfg, logger)

	// --- SMS ---
	var sender port.SMSSender
	twilioCfg := sms.TwilioConfig{
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		FromNumber: cfg.TwilioFromNumber,
	}
	if twilioCfg.Enabled() {
		sender = sms.NewTwilioSender(twilioCfg, resilience.NewGuard("twilio", resilienceCfg, logger), metrics, logger)
		logger.Info("emergency SMS via Twilio enabled")
	} else {
		sender = sms.NewLogSender(logger)
		logger.Info("Twilio not configured, emergency SMS will only be logged")
	}

	// --- Cache & events ---
	idempotency := cache.New[string](cfg.CacheTTL)
	defer idempotency.Stop()
	bus := eventbus.New(eventbus.DefaultBuffer, metrics, logger)
	catalog := i18n.New()

	// --- Services ---
	market := service.NewMarketplace(service.MarketplaceDeps{
		Store:       store,
		Events:      bus,
		SMS:         sender,
		Idempotency: idempotency,
		Catalog:     catalog,
		Metrics:     metrics,
		Logger:      logger,
	})

	authSvc := service.NewAuthService(market, sessions, service.AuthConfig{
		JWTSecret:  cfg.JWTSecret,
		AccessTTL:  cfg.JWTAccessTTL,
		RefreshTTL: min(cfg.JWTRefreshTTL, cfg.SessionTTL),
		DevAuth:    cfg.DevAuth,
		BcryptCost: cfg.BcryptCost,
	}, metrics, logger)

	sim := realtime.New(market, bus, realtime.Config{
		Tick:               cfg.RealtimeTick,
		ConnectDelay:       cfg.RealtimeConnectDelay,
		MessageDelay:       cfg.RealtimeMessageDelay,
		NotifyDelay:        cfg.RealtimeNotifyDelay,
		JobNotifyDelay:     cfg.RealtimeJobNotifyDelay,
		ErrorChance:        cfg.RealtimeErrorChance,
		NotificationChance: cfg.RealtimeNotificationChance,
		AdvanceChance:      cfg.RealtimeAdvanceChance,
		PingChance:         cfg.RealtimePingChance,
	}, metrics, logger)
	if err := sim.Start(); err != nil {
		logger.Fatal("failed to start realtime simulator", zap.Error(err))
	}

	chat := chatservice.NewChatService(store, sim, bus,
		[]chatservice.ReplyStrategy{chatservice.NewAutoReplyStrategy(cfg.RealtimeAutoReply, catalog)},
		cfg.RealtimeReplyDelay, logger)

	dashboard := service.NewDashboard(market, sim, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Deps{
		Market:         market,
		Auth:           authSvc,
		Dashboard:      dashboard,
		Chat:           chat,
		Realtime:       sim,
		Bus:            bus,
		Catalog:        catalog,
		Sessions:       sessions,
		Metrics:        metrics,
		Logger:         logger,
		DevAuth:        cfg.DevAuth,
		CORSOrigins:    cfg.CORSOrigins,
		LoginRateLimit: cfg.LoginRateLimit,
		LoginRateBurst: cfg.LoginRateBurst,
	})

	// --- Server ---
	// No WriteTimeout: /v1/events/stream holds the response open.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	// Shutdown waits for active connections; closing the bus ends open event streams.
	srv.RegisterOnShutdown(bus.Close)

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced shutdown", zap.Error(err))
	}

	sim.Stop()
	chat.Close()
	market.Wait()

	logger.Info("server stopped")
}

// newSessionStore picks Redis when configured and reachable, memory
// otherwise.
func newSessionStore(cfg *config.Config, rc resilience.Config, logger *zap.Logger) port.SessionStore {
	if cfg.SessionBackend != "redis" {
		logger.Info("using in-memory session store")
		return sessionstore.NewMemoryStore()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	store := sessionstore.NewRedisStore(client, resilience.NewGuard("redis", rc, logger))

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		logger.Warn("redis unreachable, falling back to in-memory sessions",
			zap.String("addr", cfg.RedisAddr),
			zap.Error(err),
		)
		client.Close()
		return sessionstore.NewMemoryStore()
	}

	logger.Info("using redis session store", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
	return store
}

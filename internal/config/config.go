package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port        int
	LogLevel    string
	CORSOrigins []string

	// JWT / Auth
	JWTSecret     string
	JWTAccessTTL  time.Duration
	JWTRefreshTTL time.Duration
	BcryptCost    int

	// Dev mode
	DevAuth bool // DEV_AUTH=true accepts any password for a known email and enables /v1/dev

	// Sessions
	SessionBackend string // memory | redis
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	SessionTTL     time.Duration

	// Cache
	CacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// Realtime simulation
	RealtimeConnectDelay       time.Duration
	RealtimeTick               string
	RealtimeMessageDelay       time.Duration
	RealtimeNotifyDelay        time.Duration
	RealtimeJobNotifyDelay     time.Duration
	RealtimeErrorChance        float64
	RealtimeNotificationChance float64
	RealtimeAdvanceChance      float64
	RealtimePingChance         float64
	RealtimeAutoReply          bool
	RealtimeReplyDelay         time.Duration

	// Rate limiting (per client address, credential endpoints)
	LoginRateLimit float64 // requests per minute
	LoginRateBurst int

	// Twilio
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:        getEnvInt("PORT", 8080),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),

		JWTSecret:     getEnv("JWT_SECRET", "sparkhub-default-dev-secret-change-me"),
		JWTAccessTTL:  getEnvDuration("JWT_ACCESS_TTL", 15*time.Minute),
		JWTRefreshTTL: getEnvDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		BcryptCost:    getEnvInt("BCRYPT_COST", 10),

		DevAuth: getEnvBool("DEV_AUTH", false),

		SessionBackend: strings.ToLower(getEnv("SESSION_BACKEND", "memory")),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		SessionTTL:     getEnvDuration("SESSION_TTL", 7*24*time.Hour),

		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		RealtimeConnectDelay:       getEnvDuration("REALTIME_CONNECT_DELAY", 1200*time.Millisecond),
		RealtimeTick:               getEnv("REALTIME_TICK", "@every 4s"),
		RealtimeMessageDelay:       getEnvDuration("REALTIME_MESSAGE_DELAY", time.Second),
		RealtimeNotifyDelay:        getEnvDuration("REALTIME_NOTIFY_DELAY", 300*time.Millisecond),
		RealtimeJobNotifyDelay:     getEnvDuration("REALTIME_JOB_NOTIFY_DELAY", 500*time.Millisecond),
		RealtimeErrorChance:        getEnvFloat("REALTIME_ERROR_CHANCE", 0),
		RealtimeNotificationChance: getEnvFloat("REALTIME_NOTIFICATION_CHANCE", 0.05),
		RealtimeAdvanceChance:      getEnvFloat("REALTIME_ADVANCE_CHANCE", 0.02),
		RealtimePingChance:         getEnvFloat("REALTIME_PING_CHANCE", 0.05),
		RealtimeAutoReply:          getEnvBool("REALTIME_AUTO_REPLY", true),
		RealtimeReplyDelay:         getEnvDuration("REALTIME_REPLY_DELAY", 2*time.Second),

		LoginRateLimit: getEnvFloat("LOGIN_RATE_LIMIT", 20),
		LoginRateBurst: getEnvInt("LOGIN_RATE_BURST", 5),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

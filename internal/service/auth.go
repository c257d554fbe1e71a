// Package service: AuthService handles registration, login, JWT token
// management, sessions and profile updates.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/observability"
	"github.com/boddenberg/sparkhub-bfa/internal/port"
)

var authTracer = otel.Tracer("service/auth")

const (
	maxFailedAttempts = 5
	lockDuration      = 30 * time.Minute
	bcryptCost        = 12
	minPasswordLen    = 6
)

// AuthConfig holds the token settings of the AuthService.
type AuthConfig struct {
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// DevAuth accepts any password for a known email.
	DevAuth bool
	// BcryptCost defaults to 12.
	BcryptCost int
}

// AuthService orchestrates authentication flows.
type AuthService struct {
	market     *Marketplace
	store      port.MarketStore
	sessions   port.SessionStore
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	devAuth    bool
	cost       int
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new auth service.
func NewAuthService(market *Marketplace, sessions port.SessionStore, cfg AuthConfig, metrics *observability.Metrics, logger *zap.Logger) *AuthService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcryptCost
	}
	return &AuthService{
		market:     market,
		store:      market.Store(),
		sessions:   sessions,
		jwtSecret:  []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		devAuth:    cfg.DevAuth,
		cost:       cfg.BcryptCost,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// ============================================================
// Register: POST /v1/auth/register
// ============================================================

// Register signs a customer up and in. Electricians are filed as pending
// applications and get no session until an admin approves them.
func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.RegisterResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Register")
	defer span.End()

	req.Name = strings.TrimSpace(req.Name)
	req.Email = domain.NormalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Role == "" {
		req.Role = domain.RoleCustomer
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := validatePassword("password", req.Password); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("role", string(req.Role)))

	// Hash before creating anything so a failure leaves no account behind.
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if req.Role == domain.RoleElectrician {
		e, err := s.market.SubmitElectricianApplication(ctx, req.Application())
		if err != nil {
			return nil, err
		}
		if err := s.store.SaveCredential(ctx, &domain.Credential{UserID: e.ID, PasswordHash: string(hash)}); err != nil {
			return nil, fmt.Errorf("save credential: %w", err)
		}
		s.logger.Info("electrician registered", zap.String("user_id", e.ID))
		return &domain.RegisterResponse{
			UserID:  e.ID,
			Status:  "pending_approval",
			Message: "Application submitted, awaiting admin approval",
		}, nil
	}

	u, err := s.market.AddUser(ctx, domain.User{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Role:       domain.RoleCustomer,
		IsVerified: true,
		Language:   req.Language,
	})
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveCredential(ctx, &domain.Credential{UserID: u.ID, PasswordHash: string(hash)}); err != nil {
		return nil, fmt.Errorf("save credential: %w", err)
	}

	session, err := s.issueSession(ctx, u)
	if err != nil {
		return nil, err
	}
	s.logger.Info("customer registered", zap.String("user_id", u.ID))
	return &domain.RegisterResponse{
		UserID:  u.ID,
		Status:  "active",
		Message: "Account created",
		Session: session,
	}, nil
}

// ============================================================
// Me / UpdateProfile: GET/PATCH /v1/me
// ============================================================

func (s *AuthService) Me(ctx context.Context, p domain.Principal) (*domain.User, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Me")
	defer span.End()

	return s.market.GetUser(ctx, p.UserID)
}

// UpdateProfile merges the patch into the user record and refreshes the
// snapshot kept in every session of the user.
func (s *AuthService) UpdateProfile(ctx context.Context, p domain.Principal, patch domain.UserPatch) (*domain.User, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.UpdateProfile")
	defer span.End()

	u, err := s.market.UpdateProfile(ctx, p.UserID, patch)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.UpdateSessionUser(ctx, *u); err != nil {
		s.logger.Warn("failed to refresh session snapshot",
			zap.String("user_id", u.ID),
			zap.Error(err),
		)
	}
	return u, nil
}

func validatePassword(field, pw string) error {
	if len(pw) < minPasswordLen {
		return &domain.ErrValidation{Field: field, Message: fmt.Sprintf("password must have at least %d characters", minPasswordLen)}
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
)

// ============================================================
// Login: POST /v1/auth/login
// ============================================================

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	email := domain.NormalizeEmail(req.Email)
	if email == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "email is required"}
	}

	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, s.loginWithoutAccount(ctx, email, req.Password)
	}

	cred, err := s.store.GetCredential(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}
	if cred == nil || s.devAuth {
		if s.devAuth {
			return s.devLoginFallback(ctx, u)
		}
		// An account without a password cannot sign in.
		s.logger.Warn("login: credential missing for existing user", zap.String("user_id", u.ID))
		s.countLogin(false)
		return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
	}

	if err := s.checkPassword(ctx, cred, req.Password); err != nil {
		s.countLogin(false)
		return nil, err
	}

	resp, err := s.issueSession(ctx, u)
	if err != nil {
		return nil, err
	}
	s.countLogin(true)
	s.logger.Info("user logged in", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return resp, nil
}

// loginWithoutAccount handles emails that have no user record: either a
// pending electrician or nobody at all.
func (s *AuthService) loginWithoutAccount(ctx context.Context, email, password string) error {
	s.countLogin(false)

	app, err := s.store.FindApplicationByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find application: %w", err)
	}
	if app == nil {
		return &domain.ErrUnauthorized{Message: "invalid credentials"}
	}
	if !s.devAuth {
		cred, err := s.store.GetCredential(ctx, app.ID)
		if err != nil {
			return fmt.Errorf("get credential: %w", err)
		}
		if cred == nil || bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
			return &domain.ErrUnauthorized{Message: "invalid credentials"}
		}
	}
	s.logger.Info("login: electrician awaiting approval", zap.String("user_id", app.ID))
	return &domain.ErrForbidden{Action: "sign in before admin approval"}
}

// checkPassword verifies pw against the stored hash. The failed-attempt
// counter and the lock are updated inside one store closure, so parallel
// guesses cannot slip past the limit.
func (s *AuthService) checkPassword(ctx context.Context, cred *domain.Credential, pw string) error {
	now := s.now()
	if err := s.lockedError(cred, now); err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(pw)) == nil {
		_, err := s.store.UpdateCredential(ctx, cred.UserID, func(c *domain.Credential) error {
			if err := s.lockedError(c, now); err != nil {
				return err
			}
			c.FailedAttempts = 0
			c.LockedUntil = nil
			c.LastLoginAt = &now
			return nil
		})
		return err
	}

	var attempts int
	locked := false
	_, err := s.store.UpdateCredential(ctx, cred.UserID, func(c *domain.Credential) error {
		if err := s.lockedError(c, now); err != nil {
			return err
		}
		c.FailedAttempts++
		attempts = c.FailedAttempts
		if c.FailedAttempts >= maxFailedAttempts {
			until := now.Add(lockDuration)
			c.LockedUntil = &until
			c.FailedAttempts = 0
			locked = true
		}
		return nil
	})
	if err != nil {
		return err
	}

	if locked {
		s.logger.Warn("login: account locked after max attempts",
			zap.String("user_id", cred.UserID),
			zap.Int("attempts", attempts),
			zap.Duration("lock_duration", lockDuration),
		)
		return &domain.ErrUnauthorized{
			Message: fmt.Sprintf("account locked for %d minutes after %d attempts", int(lockDuration.Minutes()), maxFailedAttempts),
		}
	}
	s.logger.Warn("login: failed password attempt",
		zap.String("user_id", cred.UserID),
		zap.Int("attempts", attempts),
		zap.Int("max", maxFailedAttempts),
	)
	return &domain.ErrUnauthorized{
		Message: fmt.Sprintf("invalid credentials, %d attempt(s) left", maxFailedAttempts-attempts),
	}
}

// lockedError reports an active temporary lock on c.
func (s *AuthService) lockedError(c *domain.Credential, now time.Time) error {
	if c.LockedUntil == nil || !c.LockedUntil.After(now) {
		return nil
	}
	remaining := c.LockedUntil.Sub(now).Minutes()
	s.logger.Warn("login: account temporarily locked",
		zap.String("user_id", c.UserID),
		zap.Float64("remaining_minutes", remaining),
	)
	return &domain.ErrUnauthorized{
		Message: fmt.Sprintf("account temporarily locked, try again in %.0f minutes", remaining),
	}
}

// devLoginFallback is used when DEV_AUTH=true: any password signs a known
// email in, and a real session is issued so the rest of the flow works
// normally.
func (s *AuthService) devLoginFallback(ctx context.Context, u *domain.User) (*domain.LoginResponse, error) {
	s.logger.Warn("DEV_AUTH: password check skipped", zap.String("user_id", u.ID))

	resp, err := s.issueSession(ctx, u)
	if err != nil {
		return nil, err
	}
	s.countLogin(true)
	return resp, nil
}

// issueSession persists a new session and signs its token pair.
func (s *AuthService) issueSession(ctx context.Context, u *domain.User) (*domain.LoginResponse, error) {
	refreshToken, refreshHash, err := s.generateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	now := s.now()
	session := &domain.Session{
		ID:          uuid.NewString(),
		UserID:      u.ID,
		User:        *u,
		RefreshHash: refreshHash,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.refreshTTL),
	}
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	accessToken, err := s.signAccessToken(u.ID, session.ID, u.Role, now)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &domain.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.accessTTL / time.Second),
		User:         *u,
	}, nil
}

func (s *AuthService) countLogin(ok bool) {
	if s.metrics == nil {
		return
	}
	if ok {
		s.metrics.IncrLogin("success")
	} else {
		s.metrics.IncrLogin("failure")
	}
}

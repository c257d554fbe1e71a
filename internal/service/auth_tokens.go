package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
)

const tokenIssuer = "sparkhub-bfa"

// ============================================================
// Refresh: POST /v1/auth/refresh
// ============================================================

// Refresh rotates the refresh token of a session. A refresh token can be
// redeemed once; replaying it fails.
func (s *AuthService) Refresh(ctx context.Context, req *domain.RefreshRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Refresh")
	defer span.End()

	if req.RefreshToken == "" {
		return nil, &domain.ErrValidation{Field: "refreshToken", Message: "refreshToken is required"}
	}
	tokenHash := hashToken(req.RefreshToken)

	session, err := s.sessions.GetSessionByRefreshHash(ctx, tokenHash)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid refresh token"}
	}

	if session.Expired(s.now()) {
		s.logger.Warn("refresh: expired session used", zap.String("user_id", session.UserID))
		_ = s.sessions.DeleteSession(ctx, session.ID)
		return nil, &domain.ErrUnauthorized{Message: "refresh token expired"}
	}

	// The user record is the source of truth for role and profile.
	u, err := s.market.GetUser(ctx, session.UserID)
	if err != nil {
		if isNotFound(err) {
			_ = s.sessions.DeleteSession(ctx, session.ID)
			return nil, &domain.ErrUnauthorized{Message: "account no longer exists"}
		}
		return nil, err
	}

	newRefreshToken, newRefreshHash, err := s.generateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.sessions.RotateRefresh(ctx, session.ID, tokenHash, newRefreshHash); err != nil {
		s.logger.Warn("refresh: rotation rejected", zap.String("session_id", session.ID), zap.Error(err))
		return nil, &domain.ErrUnauthorized{Message: "invalid refresh token"}
	}

	accessToken, err := s.signAccessToken(u.ID, session.ID, u.Role, s.now())
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &domain.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    int(s.accessTTL / time.Second),
		User:         *u,
	}, nil
}

// ============================================================
// Logout: POST /v1/auth/logout
// ============================================================

// Logout ends every session of the caller.
func (s *AuthService) Logout(ctx context.Context, p domain.Principal) error {
	ctx, span := authTracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	if err := s.sessions.DeleteUserSessions(ctx, p.UserID); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}

	s.logger.Info("user logged out", zap.String("user_id", p.UserID))
	return nil
}

// ============================================================
// Authenticate: used by middleware
// ============================================================

// JWTClaims represents the custom claims in access tokens. The user id
// travels in the registered "sub" claim.
type JWTClaims struct {
	SID  string      `json:"sid"`
	Role domain.Role `json:"role"`
	Type string      `json:"type"`
	jwt.RegisteredClaims
}

func (s *AuthService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid token"}
	}

	if claims.Type != "access" {
		return nil, &domain.ErrUnauthorized{Message: "invalid token type"}
	}

	return claims, nil
}

// Authenticate validates an access token and checks its session is still
// alive, so logging out revokes tokens that have not expired yet.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (domain.Principal, error) {
	claims, err := s.ValidateAccessToken(tokenString)
	if err != nil {
		return domain.Principal{}, err
	}

	session, err := s.sessions.GetSession(ctx, claims.SID)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("get session: %w", err)
	}
	if session == nil || session.UserID != claims.Subject {
		return domain.Principal{}, &domain.ErrUnauthorized{Message: "session ended"}
	}

	return domain.Principal{UserID: claims.Subject, SessionID: claims.SID, Role: claims.Role}, nil
}

// ============================================================
// Internal JWT helpers
// ============================================================

func (s *AuthService) signAccessToken(userID, sessionID string, role domain.Role, now time.Time) (string, error) {
	claims := JWTClaims{
		SID:  sessionID,
		Role: role,
		Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Issuer:    tokenIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) generateRefreshToken() (raw string, hashed string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(b)
	hashed = hashToken(raw)
	return raw, hashed, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
)

// ============================================================
// ChangePassword: POST /v1/auth/password
// ============================================================

// ChangePassword replaces the caller's password and signs every device
// out, including the current one.
func (s *AuthService) ChangePassword(ctx context.Context, p domain.Principal, req *domain.ChangePasswordRequest) error {
	ctx, span := authTracer.Start(ctx, "AuthService.ChangePassword")
	defer span.End()

	cred, err := s.store.GetCredential(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("get credential: %w", err)
	}
	if cred == nil {
		return &domain.ErrUnauthorized{Message: "no password set for this account"}
	}

	// Verify current password
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		s.logger.Warn("password change: wrong current password", zap.String("user_id", p.UserID))
		return &domain.ErrUnauthorized{Message: "current password is incorrect"}
	}

	if err := validatePassword("newPassword", req.NewPassword); err != nil {
		return err
	}
	if req.NewPassword == req.CurrentPassword {
		return &domain.ErrValidation{Field: "newPassword", Message: "new password must differ from the current one"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	cred.PasswordHash = string(hash)
	cred.FailedAttempts = 0
	cred.LockedUntil = nil
	if err := s.store.SaveCredential(ctx, cred); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}

	// Revoke all sessions (force re-login on other devices)
	_ = s.sessions.DeleteUserSessions(ctx, p.UserID)

	if u, err := s.store.GetUser(ctx, p.UserID); err == nil {
		s.logger.Info("password changed", zap.String("user_id", p.UserID), zap.String("email", maskEmail(u.Email)))
	}
	return nil
}

// ============================================================
// Internal helpers
// ============================================================

func maskEmail(email string) string {
	if email == "" {
		return "***@***.com"
	}
	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "***@***.com"
	}
	local := parts[0]

	masked := string(local[0])
	if len(local) > 1 {
		masked += strings.Repeat("*", len(local)-2)
		masked += string(local[len(local)-1])
	} else {
		masked += "***"
	}
	return masked + "@" + parts[1]
}

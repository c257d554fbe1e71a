package service

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/i18n"
)

// ============================================================
// Users
// ============================================================

// AddUser registers a customer or admin account. Emails are unique across
// users and pending electrician applications.
func (m *Marketplace) AddUser(ctx context.Context, u domain.User) (*domain.User, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.AddUser")
	defer span.End()

	u.Name = strings.TrimSpace(u.Name)
	u.Email = domain.NormalizeEmail(u.Email)
	if u.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "name is required"}
	}
	if u.Email == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "email is required"}
	}
	if !u.Role.Valid() {
		u.Role = domain.RoleCustomer
	}
	if u.ID == "" {
		u.ID = m.newID()
	}
	u.Language = domain.ParseLocale(string(u.Language))
	u.CreatedAt = m.now()

	if err := m.store.CreateUser(ctx, &u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	span.SetAttributes(attribute.String("user.id", u.ID))

	m.logger.Info("user added", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	m.publish(domain.EventUserAdded, u, u.ID)
	m.notify(ctx, u.ID, domain.NotifySystem, i18n.KeyWelcomeTitle, i18n.KeyWelcomeMessage, u.Name)
	return &u, nil
}

func (m *Marketplace) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.GetUser")
	defer span.End()

	return m.store.GetUser(ctx, userID)
}

// ListUsers returns all accounts of a role, or every account when role is empty.
func (m *Marketplace) ListUsers(ctx context.Context, role domain.Role) ([]domain.User, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.ListUsers")
	defer span.End()

	return m.store.ListUsers(ctx, role)
}

// UpdateProfile shallow-merges the provided fields into the user record.
func (m *Marketplace) UpdateProfile(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.UpdateProfile")
	defer span.End()

	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "name cannot be empty"}
	}
	if patch.Phone != nil && strings.TrimSpace(*patch.Phone) == "" {
		return nil, &domain.ErrValidation{Field: "phone", Message: "phone cannot be empty"}
	}

	u, err := m.store.UpdateUser(ctx, userID, func(u *domain.User) error {
		patch.Apply(u)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	m.logger.Info("profile updated", zap.String("user_id", userID))
	m.publish(domain.EventUserUpdated, u, u.ID)
	return u, nil
}

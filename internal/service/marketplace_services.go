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
// Services: catalog proposals and approvals
// ============================================================

// AddService files a catalog proposal for admin review.
func (m *Marketplace) AddService(ctx context.Context, actor domain.Principal, in domain.ServiceInput) (*domain.Service, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.AddService")
	defer span.End()

	if err := requireRole(actor, "propose a service", domain.RoleElectrician, domain.RoleAdmin); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleElectrician {
		if _, err := m.store.GetElectrician(ctx, actor.UserID); err != nil {
			if isNotFound(err) {
				return nil, &domain.ErrForbidden{Action: "propose a service before approval"}
			}
			return nil, err
		}
	}

	svc := domain.Service{
		ID:                m.newID(),
		OwnerID:           actor.UserID,
		Name:              in.Name,
		Category:          in.Category,
		BasePrice:         in.BasePrice,
		Description:       in.Description,
		WholeHousePricing: in.WholeHousePricing,
		Status:            domain.ServicePending,
		CreatedAt:         m.now(),
	}
	if svc.WholeHousePricing == nil {
		svc.WholeHousePricing = &domain.WholeHousePricing{}
	}
	if err := m.store.AddService(ctx, &svc); err != nil {
		return nil, fmt.Errorf("add service: %w", err)
	}
	span.SetAttributes(attribute.String("service.id", svc.ID))

	m.logger.Info("service proposed",
		zap.String("service_id", svc.ID),
		zap.String("owner_id", svc.OwnerID),
		zap.Float64("base_price", svc.BasePrice),
	)
	m.publish(domain.EventServiceAdded, svc, svc.OwnerID)
	m.notify(ctx, svc.OwnerID, domain.NotifySystem, i18n.KeyServiceSubmittedTitle, i18n.KeyServiceSubmittedMessage, svc.Name)
	m.notifyAdmins(ctx, domain.NotifySystem, i18n.KeyServiceNewTitle, i18n.KeyServiceNewMessage, svc.Name)
	return &svc, nil
}

// ApproveService activates a pending service and adds it to its owner's
// offerings.
func (m *Marketplace) ApproveService(ctx context.Context, id string) (*domain.Service, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.ApproveService")
	defer span.End()
	span.SetAttributes(attribute.String("service.id", id))

	svc, err := m.store.ApproveService(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("approve service: %w", err)
	}

	if svc.OwnerID != "" {
		_, err := m.store.UpdateElectrician(ctx, svc.OwnerID, func(e *domain.ElectricianProfile) error {
			if !e.Offers(svc.ID) {
				e.ServiceIDs = append(e.ServiceIDs, svc.ID)
			}
			return nil
		})
		if err != nil && !isNotFound(err) {
			m.logger.Warn("failed to attach service to owner",
				zap.String("service_id", id),
				zap.String("owner_id", svc.OwnerID),
				zap.Error(err),
			)
		}
	}

	m.logger.Info("service approved", zap.String("service_id", id))
	m.publish(domain.EventServiceApproved, svc, svc.OwnerID)
	if svc.OwnerID != "" {
		m.notify(ctx, svc.OwnerID, domain.NotifySystem, i18n.KeyServiceApprovedTitle, i18n.KeyServiceApprovedMessage, svc.Name)
	}
	return svc, nil
}

// RejectService discards a pending service.
func (m *Marketplace) RejectService(ctx context.Context, id string) (*domain.Service, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.RejectService")
	defer span.End()
	span.SetAttributes(attribute.String("service.id", id))

	svc, err := m.store.RejectService(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reject service: %w", err)
	}

	m.logger.Info("service rejected", zap.String("service_id", id))
	m.publish(domain.EventServiceRejected, svc, svc.OwnerID)
	if svc.OwnerID != "" {
		m.notify(ctx, svc.OwnerID, domain.NotifySystem, i18n.KeyServiceRejectedTitle, i18n.KeyServiceRejectedMessage, svc.Name)
	}
	return svc, nil
}

// ListServices returns active services by default. Pending entries are
// visible to admins and to the electrician who proposed them.
func (m *Marketplace) ListServices(ctx context.Context, actor domain.Principal, status domain.ServiceStatus, ownerID string) ([]domain.Service, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.ListServices")
	defer span.End()

	switch status {
	case "":
		status = domain.ServiceActive
	case domain.ServiceActive, domain.ServicePending:
	case "all":
		status = ""
	default:
		return nil, &domain.ErrValidation{Field: "status", Message: "status must be active, pending or all"}
	}
	if status != domain.ServiceActive && actor.Role != domain.RoleAdmin {
		if ownerID == "" || ownerID != actor.UserID {
			return nil, &domain.ErrForbidden{Action: "list pending services"}
		}
	}

	all, err := m.store.ListServices(ctx, status)
	if err != nil {
		return nil, err
	}
	if ownerID == "" {
		return all, nil
	}
	out := make([]domain.Service, 0, len(all))
	for _, s := range all {
		if s.OwnerID == ownerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *Marketplace) GetService(ctx context.Context, id string) (*domain.Service, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.GetService")
	defer span.End()

	return m.store.GetService(ctx, id)
}

package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/i18n"
)

// ============================================================
// Electricians: applications and approved profiles
// ============================================================

// SubmitElectricianApplication files a signup as pending. The applicant
// cannot be booked until an admin approves it.
func (m *Marketplace) SubmitElectricianApplication(ctx context.Context, app domain.ElectricianApplication) (*domain.ElectricianProfile, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.SubmitElectricianApplication")
	defer span.End()

	app.Name = strings.TrimSpace(app.Name)
	app.Phone = strings.TrimSpace(app.Phone)
	app.Email = domain.NormalizeEmail(app.Email)
	switch {
	case app.Name == "":
		return nil, &domain.ErrValidation{Field: "name", Message: "name is required"}
	case app.Email == "":
		return nil, &domain.ErrValidation{Field: "email", Message: "email is required"}
	case app.Phone == "":
		return nil, &domain.ErrValidation{Field: "phone", Message: "phone is required"}
	}

	now := m.now()
	e := domain.ElectricianProfile{
		User: domain.User{
			ID:        m.newID(),
			Name:      app.Name,
			Email:     app.Email,
			Phone:     app.Phone,
			Role:      domain.RoleElectrician,
			Language:  domain.ParseLocale(string(app.Language)),
			CreatedAt: now,
		},
		Age:          app.Age,
		Experience:   app.Experience,
		Education:    strings.TrimSpace(app.Specialization),
		ServiceIDs:   append([]string{}, app.ServiceIDs...),
		Portfolio:    []string{},
		Location:     domain.Location{Lat: app.Lat, Lng: app.Lng, Address: strings.TrimSpace(app.Address)},
		Availability: true,
		AppliedAt:    now,
	}
	if e.Age <= 0 {
		e.Age = domain.DefaultApplicantAge
	}
	if e.Education == "" {
		e.Education = domain.DefaultApplicantEducation
	}
	if e.Location.Address == "" {
		e.Location.Address = domain.DefaultApplicantAddress
	}

	if err := m.store.AddApplication(ctx, &e); err != nil {
		return nil, fmt.Errorf("add application: %w", err)
	}
	span.SetAttributes(attribute.String("electrician.id", e.ID))

	m.logger.Info("electrician application submitted",
		zap.String("electrician_id", e.ID),
		zap.String("email", e.Email),
	)
	m.publish(domain.EventElectricianApplied, e, e.ID)
	m.notify(ctx, e.ID, domain.NotifySystem, i18n.KeyApplicationReceivedTitle, i18n.KeyApplicationReceivedMessage)
	m.notifyAdmins(ctx, domain.NotifySystem, i18n.KeyApplicationNewTitle, i18n.KeyApplicationNewMessage, e.Name)
	return &e, nil
}

// ApproveElectrician moves a pending application into the approved set.
func (m *Marketplace) ApproveElectrician(ctx context.Context, id string) (*domain.ElectricianProfile, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.ApproveElectrician")
	defer span.End()
	span.SetAttributes(attribute.String("electrician.id", id))

	e, err := m.store.ApproveApplication(ctx, id, func(e *domain.ElectricianProfile) {
		e.IsApproved = true
		e.IsVerified = true
	})
	if err != nil {
		return nil, fmt.Errorf("approve electrician: %w", err)
	}

	m.logger.Info("electrician approved", zap.String("electrician_id", id))
	m.publish(domain.EventElectricianApproved, e, id)
	m.notify(ctx, id, domain.NotifySystem, i18n.KeyApplicationApprovedTitle, i18n.KeyApplicationApprovedMessage)
	return e, nil
}

// RejectElectrician drops a pending application.
func (m *Marketplace) RejectElectrician(ctx context.Context, id string) (*domain.ElectricianProfile, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.RejectElectrician")
	defer span.End()
	span.SetAttributes(attribute.String("electrician.id", id))

	// The applicant's language is gone once the record is removed.
	locale := m.localeOf(ctx, id)

	e, err := m.store.RejectApplication(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reject electrician: %w", err)
	}

	m.logger.Info("electrician rejected", zap.String("electrician_id", id))
	m.publish(domain.EventElectricianRejected, e, id)

	n := domain.Notification{
		ID:        m.newID(),
		UserID:    id,
		Title:     m.i18n.T(locale, i18n.KeyApplicationRejectedTitle),
		Message:   m.i18n.T(locale, i18n.KeyApplicationRejectedMessage),
		Type:      domain.NotifySystem,
		Timestamp: m.now(),
	}
	if err := m.store.AddNotification(ctx, &n); err != nil {
		m.logger.Error("failed to store rejection notification", zap.String("electrician_id", id), zap.Error(err))
	} else {
		if m.metrics != nil {
			m.metrics.IncrNotification(n.Type)
		}
		m.publish(domain.EventNotificationAdded, n, id)
	}
	return e, nil
}

// GetElectrician returns an approved profile, falling back to a pending
// application for admins.
func (m *Marketplace) GetElectrician(ctx context.Context, actor domain.Principal, id string) (*domain.ElectricianProfile, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.GetElectrician")
	defer span.End()

	e, err := m.store.GetElectrician(ctx, id)
	if err == nil || !isNotFound(err) {
		return e, err
	}
	if actor.Role == domain.RoleAdmin || actor.UserID == id {
		return m.store.GetApplication(ctx, id)
	}
	return nil, err
}

func (m *Marketplace) ListElectricians(ctx context.Context) ([]domain.ElectricianProfile, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.ListElectricians")
	defer span.End()

	return m.store.ListElectricians(ctx)
}

func (m *Marketplace) ListApplications(ctx context.Context) ([]domain.ElectricianProfile, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.ListApplications")
	defer span.End()

	return m.store.ListApplications(ctx)
}

// UpdateElectrician shallow-merges a patch. Electricians edit themselves;
// admins may edit anyone.
func (m *Marketplace) UpdateElectrician(ctx context.Context, actor domain.Principal, id string, patch domain.ElectricianPatch) (*domain.ElectricianProfile, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.UpdateElectrician")
	defer span.End()
	span.SetAttributes(attribute.String("electrician.id", id))

	if actor.Role != domain.RoleAdmin && actor.UserID != id {
		return nil, &domain.ErrForbidden{Action: "update another electrician"}
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "name cannot be empty"}
	}
	if patch.Experience != nil && *patch.Experience < 0 {
		return nil, &domain.ErrValidation{Field: "experience", Message: "experience cannot be negative"}
	}

	e, err := m.store.UpdateElectrician(ctx, id, func(e *domain.ElectricianProfile) error {
		patch.Apply(e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update electrician: %w", err)
	}

	m.logger.Info("electrician updated", zap.String("electrician_id", id), zap.String("by", actor.UserID))
	m.publish(domain.EventElectricianUpdated, e, id)
	m.notify(ctx, id, domain.NotifySystem, i18n.KeyProfileUpdatedTitle, i18n.KeyProfileUpdatedMessage)
	return e, nil
}

// SetAvailability toggles whether an approved electrician takes new jobs.
func (m *Marketplace) SetAvailability(ctx context.Context, actor domain.Principal, id string, available bool) (*domain.ElectricianProfile, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.SetAvailability")
	defer span.End()

	if actor.UserID != id {
		return nil, &domain.ErrForbidden{Action: "change another electrician's availability"}
	}
	if _, err := m.store.GetElectrician(ctx, id); err != nil {
		return nil, err
	}

	e, err := m.store.UpdateElectrician(ctx, id, func(e *domain.ElectricianProfile) error {
		e.Availability = available
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("set availability: %w", err)
	}

	label := "unavailable"
	if available {
		label = "available"
	}
	m.logger.Info("availability changed", zap.String("electrician_id", id), zap.Bool("available", available))
	m.publish(domain.EventElectricianUpdated, e, id)
	m.notify(ctx, id, domain.NotifySystem, i18n.KeyAvailabilityTitle, i18n.KeyAvailabilityMessage, labelArg(label))
	return e, nil
}

// FindNearby lists available approved electricians offering a service (or
// any active service of a category), closest first.
func (m *Marketplace) FindNearby(ctx context.Context, q domain.NearbyQuery) ([]domain.NearbyElectrician, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.FindNearby")
	defer span.End()

	if q.ServiceID == "" && q.Category == "" {
		return nil, &domain.ErrValidation{Field: "serviceId", Message: "serviceId or category is required"}
	}

	services, err := m.store.ListServices(ctx, domain.ServiceActive)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	prices := map[string]float64{}
	for _, s := range services {
		if (q.ServiceID != "" && s.ID == q.ServiceID) ||
			(q.ServiceID == "" && strings.EqualFold(s.Category, q.Category)) {
			prices[s.ID] = s.BasePrice
		}
	}
	if len(prices) == 0 {
		return nil, &domain.ErrNotFound{Resource: "available electrician", ID: firstNonEmpty(q.ServiceID, q.Category)}
	}

	all, err := m.store.ListElectricians(ctx)
	if err != nil {
		return nil, fmt.Errorf("list electricians: %w", err)
	}
	out := make([]domain.NearbyElectrician, 0)
	for _, e := range all {
		if !e.Availability || !e.IsApproved {
			continue
		}
		price, offers := 0.0, false
		for _, sid := range e.ServiceIDs {
			if p, ok := prices[sid]; ok && (!offers || p < price) {
				price, offers = p, true
			}
		}
		if !offers {
			continue
		}
		d := domain.Haversine(q.Lat, q.Lng, e.Location.Lat, e.Location.Lng)
		out = append(out, domain.NearbyElectrician{ElectricianProfile: e, DistanceKm: roundKm(d), BasePrice: price})
	}
	if len(out) == 0 {
		return nil, &domain.ErrNotFound{Resource: "available electrician", ID: firstNonEmpty(q.ServiceID, q.Category)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out, nil
}

func roundKm(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

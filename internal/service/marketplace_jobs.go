package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/i18n"
)

// SystemPrincipal acts for background jobs such as the realtime simulator.
var SystemPrincipal = domain.Principal{UserID: "system", Role: domain.RoleAdmin}

const smsTimeout = 10 * time.Second

// ============================================================
// Jobs: quotes, bookings and the status lifecycle
// ============================================================

// QuoteJob prices a booking without creating it.
func (m *Marketplace) QuoteJob(ctx context.Context, in domain.JobInput) (*domain.Quote, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.QuoteJob")
	defer span.End()

	if in.ServiceID == "" {
		return nil, &domain.ErrValidation{Field: "serviceId", Message: "serviceId is required"}
	}
	if in.ElectricianID == "" {
		return nil, &domain.ErrValidation{Field: "electricianId", Message: "electricianId is required"}
	}
	q, _, _, err := m.quote(ctx, in)
	return q, err
}

func (m *Marketplace) quote(ctx context.Context, in domain.JobInput) (*domain.Quote, *domain.Service, *domain.ElectricianProfile, error) {
	svc, err := m.store.GetService(ctx, in.ServiceID)
	if err != nil {
		return nil, nil, nil, err
	}
	if svc.Status != domain.ServiceActive {
		return nil, nil, nil, &domain.ErrValidation{Field: "serviceId", Message: "service is not active"}
	}
	e, err := m.store.GetElectrician(ctx, in.ElectricianID)
	if err != nil {
		return nil, nil, nil, err
	}

	distance := 0.0
	switch {
	case in.Distance != nil:
		if *in.Distance < 0 {
			return nil, nil, nil, &domain.ErrValidation{Field: "distance", Message: "distance cannot be negative"}
		}
		distance = *in.Distance
	case !in.Location.IsZero() && !e.Location.IsZero():
		distance = domain.Haversine(in.Location.Lat, in.Location.Lng, e.Location.Lat, e.Location.Lng)
	}

	urgency := in.Urgency
	if urgency == "" {
		urgency = domain.UrgencyNormal
	}
	q := domain.QuoteJob(svc, urgency, distance, in.AreaSqFt)
	return &q, svc, e, nil
}

// CreateJob books an electrician. A repeated idempotency key from the same
// customer returns the job created the first time and replayed=true.
func (m *Marketplace) CreateJob(ctx context.Context, actor domain.Principal, in domain.JobInput, idempotencyKey string) (job *domain.Job, replayed bool, err error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.CreateJob")
	defer span.End()

	if err := requireRole(actor, "book a job", domain.RoleCustomer); err != nil {
		return nil, false, err
	}
	if err := in.Validate(); err != nil {
		return nil, false, err
	}

	jobID := m.newID()
	if idempotencyKey != "" && m.idem != nil {
		cacheKey := actor.UserID + ":" + idempotencyKey
		current, stored := m.idem.SetIfAbsent(cacheKey, jobID)
		m.cacheHit(!stored)
		if !stored {
			existing, err := m.store.GetJob(ctx, current)
			if err != nil {
				// The first request with this key is still booking.
				return nil, false, &domain.ErrConflict{Message: "a booking with this Idempotency-Key is in progress"}
			}
			m.logger.Info("job booking replayed",
				zap.String("job_id", current),
				zap.String("idempotency_key", idempotencyKey),
			)
			return existing, true, nil
		}
		defer func() {
			if err != nil {
				m.idem.Delete(cacheKey)
			}
		}()
	}

	q, svc, e, err := m.quote(ctx, in)
	if err != nil {
		return nil, false, err
	}

	urgency := in.Urgency
	if urgency == "" {
		urgency = domain.UrgencyNormal
	}
	j := domain.Job{
		ID:            jobID,
		CustomerID:    actor.UserID,
		ElectricianID: e.ID,
		ServiceID:     svc.ID,
		Status:        domain.JobPending,
		Description:   strings.TrimSpace(in.Description),
		Address:       strings.TrimSpace(in.Address),
		Location:      in.Location,
		Distance:      q.DistanceKm,
		TotalPrice:    q.Total,
		ScheduledDate: in.ScheduledDate,
		ScheduledTime: in.ScheduledTime,
		Urgency:       urgency,
		IsEmergency:   urgency == domain.UrgencyEmergency,
		AreaSqFt:      in.AreaSqFt,
		CreatedAt:     m.now(),
	}
	if j.Location.Address == "" {
		j.Location.Address = j.Address
	}
	if err := m.store.CreateJob(ctx, &j); err != nil {
		return nil, false, fmt.Errorf("create job: %w", err)
	}
	span.SetAttributes(attribute.String("job.id", j.ID), attribute.Float64("job.total", j.TotalPrice))

	m.logger.Info("job created",
		zap.String("job_id", j.ID),
		zap.String("customer_id", j.CustomerID),
		zap.String("electrician_id", j.ElectricianID),
		zap.Float64("total_price", j.TotalPrice),
		zap.Bool("emergency", j.IsEmergency),
	)
	m.publish(domain.EventJobCreated, j, j.CustomerID, j.ElectricianID)
	m.notify(ctx, j.ElectricianID, domain.NotifyJob, i18n.KeyJobNewTitle, i18n.KeyJobNewMessage)
	m.notify(ctx, j.CustomerID, domain.NotifyJob, i18n.KeyJobBookedTitle, i18n.KeyJobBookedMessage, svc.Name)
	if j.IsEmergency {
		m.alertEmergency(ctx, j, e, svc)
	}
	return &j, false, nil
}

// alertEmergency texts the electrician in the background.
func (m *Marketplace) alertEmergency(ctx context.Context, j domain.Job, e *domain.ElectricianProfile, svc *domain.Service) {
	if m.sms == nil || e.Phone == "" {
		return
	}
	body := m.i18n.T(e.Language, i18n.KeySMSEmergency, svc.Name, j.Description, j.Address)
	ctx = context.WithoutCancel(ctx)

	m.bg.Add(1)
	go func() {
		defer m.bg.Done()
		ctx, cancel := context.WithTimeout(ctx, smsTimeout)
		defer cancel()
		if err := m.sms.Send(ctx, e.Phone, body); err != nil {
			m.logger.Warn("emergency sms not delivered",
				zap.String("job_id", j.ID),
				zap.String("electrician_id", e.ID),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until background deliveries have finished.
func (m *Marketplace) Wait() { m.bg.Wait() }

func (m *Marketplace) cacheHit(hit bool) {
	if m.metrics == nil {
		return
	}
	if hit {
		m.metrics.IncrCacheHit("idempotency")
	} else {
		m.metrics.IncrCacheMiss("idempotency")
	}
}

// authorizeTransition decides whether actor may move j to `to`.
func authorizeTransition(actor domain.Principal, j *domain.Job, to domain.JobStatus) error {
	switch actor.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleElectrician:
		if j.ElectricianID != actor.UserID {
			return &domain.ErrForbidden{Action: "update a job assigned to someone else"}
		}
		if to == domain.JobCancelled && j.Status != domain.JobPending {
			return &domain.ErrForbidden{Action: "cancel an accepted job"}
		}
		return nil
	case domain.RoleCustomer:
		if j.CustomerID != actor.UserID {
			return &domain.ErrForbidden{Action: "update another customer's job"}
		}
		if to != domain.JobCancelled {
			return &domain.ErrForbidden{Action: "change job status other than cancelling"}
		}
		return nil
	}
	return &domain.ErrForbidden{Action: "update job"}
}

// UpdateJobStatus applies one lifecycle step. Completion is routed through
// CompleteJob so the electrician is credited.
func (m *Marketplace) UpdateJobStatus(ctx context.Context, actor domain.Principal, id string, to domain.JobStatus) (*domain.Job, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.UpdateJobStatus")
	defer span.End()
	span.SetAttributes(attribute.String("job.id", id), attribute.String("job.status", string(to)))

	if !to.Valid() {
		return nil, &domain.ErrValidation{Field: "status", Message: "unknown job status: " + string(to)}
	}
	if to == domain.JobCompleted {
		return m.CompleteJob(ctx, actor, id, domain.CompletionInput{})
	}

	now := m.now()
	j, err := m.store.UpdateJob(ctx, id, func(j *domain.Job) error {
		if err := authorizeTransition(actor, j, to); err != nil {
			return err
		}
		if err := domain.ApplyTransition(j, to, now); err != nil {
			return err
		}
		if to == domain.JobCancelled {
			j.CancelledBy = actor.UserID
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update job status: %w", err)
	}

	if m.metrics != nil {
		m.metrics.IncrJobTransition(to)
	}
	m.logger.Info("job status updated",
		zap.String("job_id", id),
		zap.String("status", string(to)),
		zap.String("by", actor.UserID),
	)
	m.publish(domain.EventJobUpdated, j, j.CustomerID, j.ElectricianID)
	m.notify(ctx, j.CustomerID, domain.NotifyJob, i18n.KeyJobUpdateTitle, i18n.KeyJobUpdateMessage, statusArg(to))
	m.notify(ctx, j.ElectricianID, domain.NotifyJob, i18n.KeyJobUpdateTitle, i18n.KeyJobUpdateMessage, statusArg(to))
	return j, nil
}

// CompleteJob finishes an in-progress job, records the optional images,
// rating and review, and credits the electrician.
func (m *Marketplace) CompleteJob(ctx context.Context, actor domain.Principal, id string, in domain.CompletionInput) (*domain.Job, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.CompleteJob")
	defer span.End()
	span.SetAttributes(attribute.String("job.id", id))

	if in.Rating < 0 || in.Rating > 5 {
		return nil, &domain.ErrValidation{Field: "rating", Message: "rating must be between 1 and 5"}
	}

	now := m.now()
	j, err := m.store.UpdateJob(ctx, id, func(j *domain.Job) error {
		if err := authorizeTransition(actor, j, domain.JobCompleted); err != nil {
			return err
		}
		if err := domain.ApplyTransition(j, domain.JobCompleted, now); err != nil {
			return err
		}
		if len(in.Images) > 0 {
			j.CompletedImages = append([]string(nil), in.Images...)
		}
		if in.Rating > 0 {
			j.Rating = in.Rating
		}
		if in.Review != "" {
			j.Review = in.Review
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("complete job: %w", err)
	}

	if _, err := m.store.UpdateElectrician(ctx, j.ElectricianID, func(e *domain.ElectricianProfile) error {
		e.RecordCompletion(j.TotalPrice, j.Rating)
		return nil
	}); err != nil {
		m.logger.Error("failed to credit electrician",
			zap.String("job_id", id),
			zap.String("electrician_id", j.ElectricianID),
			zap.Error(err),
		)
	} else if e, err := m.store.GetElectrician(ctx, j.ElectricianID); err == nil {
		m.publish(domain.EventElectricianUpdated, e, e.ID)
	}

	if m.metrics != nil {
		m.metrics.IncrJobTransition(domain.JobCompleted)
	}
	m.logger.Info("job completed",
		zap.String("job_id", id),
		zap.String("electrician_id", j.ElectricianID),
		zap.Float64("total_price", j.TotalPrice),
		zap.Int("rating", j.Rating),
	)

	serviceName := j.ServiceID
	if svc, err := m.store.GetService(ctx, j.ServiceID); err == nil {
		serviceName = svc.Name
	}
	m.publish(domain.EventJobCompleted, j, j.CustomerID, j.ElectricianID)
	m.notify(ctx, j.CustomerID, domain.NotifyJob, i18n.KeyJobCompletedTitle, i18n.KeyJobCompletedMessage, serviceName)
	m.notify(ctx, j.ElectricianID, domain.NotifyJob, i18n.KeyJobCompletedTitle, i18n.KeyJobCompletedMessage, serviceName)
	return j, nil
}

// GetJob returns a job to its customer, its electrician or an admin.
func (m *Marketplace) GetJob(ctx context.Context, actor domain.Principal, id string) (*domain.Job, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.GetJob")
	defer span.End()

	j, err := m.store.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && !j.Involves(actor.UserID) {
		return nil, &domain.ErrForbidden{Action: "view another user's job"}
	}
	return j, nil
}

// ListJobs returns the caller's jobs, newest first: a customer sees their
// bookings, an electrician their assignments, an admin everything.
func (m *Marketplace) ListJobs(ctx context.Context, actor domain.Principal, status domain.JobStatus) ([]domain.Job, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.ListJobs")
	defer span.End()

	if status != "" && !status.Valid() {
		return nil, &domain.ErrValidation{Field: "status", Message: "unknown job status: " + string(status)}
	}
	f := domain.JobFilter{Status: status}
	switch actor.Role {
	case domain.RoleCustomer:
		f.CustomerID = actor.UserID
	case domain.RoleElectrician:
		f.ElectricianID = actor.UserID
	case domain.RoleAdmin:
	default:
		return nil, &domain.ErrForbidden{Action: "list jobs"}
	}
	return m.store.ListJobs(ctx, f)
}

package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
)

// ============================================================
// Dev Tools
// ============================================================

var devDescriptions = []string{
	"Fan not spinning",
	"Switchboard sparking",
	"Tube light flickering",
	"MCB trips every evening",
	"New socket for the kitchen",
	"Inverter wiring check",
}

// DevAddBalance credits a customer wallet without the top-up minimum or
// offers.
func (m *Marketplace) DevAddBalance(ctx context.Context, req *domain.DevAddBalanceRequest) (*domain.DevAddBalanceResponse, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.DevAddBalance")
	defer span.End()

	if req.UserID == "" {
		return nil, &domain.ErrValidation{Field: "userId", Message: "required"}
	}
	if req.Amount <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if _, err := m.store.GetUser(ctx, req.UserID); err != nil {
		return nil, err
	}

	w, err := m.store.UpdateWallet(ctx, req.UserID, func(w *domain.Wallet) error {
		w.Credit(domain.WalletTransaction{
			ID:          m.newID(),
			Amount:      req.Amount,
			Description: "Dev credit",
			CreatedAt:   m.now(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update wallet: %w", err)
	}

	m.logger.Info("DEV: balance added",
		zap.String("user_id", req.UserID),
		zap.Float64("amount", req.Amount),
		zap.Float64("new_balance", w.Balance),
	)
	m.publish(domain.EventWalletUpdated, w, req.UserID)

	return &domain.DevAddBalanceResponse{
		UserID:     req.UserID,
		NewBalance: w.Balance,
		Added:      req.Amount,
		Message:    fmt.Sprintf("₹%.2f added", req.Amount),
	}, nil
}

// DevGenerateJobs books random jobs between a customer and an electrician
// and moves each one a random number of steps along the lifecycle.
func (m *Marketplace) DevGenerateJobs(ctx context.Context, req *domain.DevGenerateJobsRequest) (*domain.DevGenerateJobsResponse, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.DevGenerateJobs")
	defer span.End()

	if req.CustomerID == "" || req.ElectricianID == "" {
		return nil, &domain.ErrValidation{Field: "customerId", Message: "customerId and electricianId are required"}
	}
	if req.Count <= 0 || req.Count > 50 {
		return nil, &domain.ErrValidation{Field: "count", Message: "must be between 1 and 50"}
	}

	e, err := m.store.GetElectrician(ctx, req.ElectricianID)
	if err != nil {
		return nil, err
	}
	var services []string
	for _, id := range e.ServiceIDs {
		if svc, err := m.store.GetService(ctx, id); err == nil && svc.Status == domain.ServiceActive {
			services = append(services, id)
		}
	}
	if len(services) == 0 {
		return nil, &domain.ErrValidation{Field: "electricianId", Message: "electrician offers no active service"}
	}

	customer := domain.Principal{UserID: req.CustomerID, Role: domain.RoleCustomer}
	urgencies := []domain.Urgency{domain.UrgencyNormal, domain.UrgencyNormal, domain.UrgencyUrgent}
	resp := &domain.DevGenerateJobsResponse{JobIDs: []string{}}

	for i := 0; i < req.Count; i++ {
		distance := float64(rand.Intn(1000)) / 100
		in := domain.JobInput{
			ElectricianID: e.ID,
			ServiceID:     services[rand.Intn(len(services))],
			Description:   devDescriptions[rand.Intn(len(devDescriptions))],
			Address:       e.Location.Address,
			Distance:      &distance,
			ScheduledDate: m.now().AddDate(0, 0, rand.Intn(7)).Format(time.DateOnly),
			Urgency:       urgencies[rand.Intn(len(urgencies))],
		}
		j, _, err := m.CreateJob(ctx, customer, in, "")
		if err != nil {
			m.logger.Warn("DEV: failed to create job", zap.Int("index", i), zap.Error(err))
			continue
		}
		for steps := rand.Intn(3); steps > 0; steps-- {
			advanced, err := m.UpdateJobStatus(ctx, SystemPrincipal, j.ID, domain.NextStatus(j.Status))
			if err != nil {
				m.logger.Warn("DEV: failed to advance job", zap.String("job_id", j.ID), zap.Error(err))
				break
			}
			j = advanced
		}
		resp.JobIDs = append(resp.JobIDs, j.ID)
		resp.Generated++
	}

	m.logger.Info("DEV: jobs generated",
		zap.String("customer_id", req.CustomerID),
		zap.Int("generated", resp.Generated),
	)
	resp.Message = fmt.Sprintf("%d jobs generated", resp.Generated)
	return resp, nil
}

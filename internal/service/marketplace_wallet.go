package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/i18n"
)

// ============================================================
// Wallet: top-ups, offers and job payments
// ============================================================

func (m *Marketplace) GetWallet(ctx context.Context, actor domain.Principal) (*domain.Wallet, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.GetWallet")
	defer span.End()

	if err := requireRole(actor, "use a wallet", domain.RoleCustomer); err != nil {
		return nil, err
	}
	return m.store.GetWallet(ctx, actor.UserID)
}

// AddMoney credits the caller's wallet. A pending ADD500 offer adds its
// bonus when the top-up reaches the offer minimum.
func (m *Marketplace) AddMoney(ctx context.Context, actor domain.Principal, amount float64) (*domain.Wallet, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.AddMoney")
	defer span.End()
	span.SetAttributes(attribute.Float64("wallet.amount", amount))

	if err := requireRole(actor, "use a wallet", domain.RoleCustomer); err != nil {
		return nil, err
	}
	if amount < domain.MinTopUp {
		return nil, &domain.ErrValidation{Field: "amount", Message: fmt.Sprintf("add minimum ₹%.0f", domain.MinTopUp)}
	}

	locale := m.localeOf(ctx, actor.UserID)
	now := m.now()
	bonus := 0.0
	w, err := m.store.UpdateWallet(ctx, actor.UserID, func(w *domain.Wallet) error {
		w.Credit(domain.WalletTransaction{
			ID:          m.newID(),
			Amount:      amount,
			Description: m.i18n.T(locale, i18n.KeyTxTopUp),
			CreatedAt:   now,
		})
		offer, _ := domain.FindOffer(domain.OfferAdd500)
		if w.AppliedOffer == offer.Code && amount >= offer.MinAmount && !w.OfferUsed(offer.Code) {
			bonus = offer.BonusAmount
			w.Credit(domain.WalletTransaction{
				ID:          m.newID(),
				Amount:      bonus,
				Description: m.i18n.T(locale, i18n.KeyTxBonus),
				CreatedAt:   now,
			})
			w.UsedOffers = append(w.UsedOffers, offer.Code)
			w.AppliedOffer = ""
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add money: %w", err)
	}

	m.logger.Info("wallet topped up",
		zap.String("user_id", actor.UserID),
		zap.Float64("amount", amount),
		zap.Float64("bonus", bonus),
	)
	m.publish(domain.EventWalletUpdated, w, actor.UserID)
	m.notify(ctx, actor.UserID, domain.NotifyPayment, i18n.KeyWalletCreditedTitle, i18n.KeyWalletCreditedMessage, amountArg(amount+bonus))
	return w, nil
}

// ListOffers returns the promotion catalog in the caller's language.
func (m *Marketplace) ListOffers(ctx context.Context, actor domain.Principal) []domain.Offer {
	locale := m.localeOf(ctx, actor.UserID)
	out := make([]domain.Offer, len(domain.Offers))
	for i, o := range domain.Offers {
		o.Title = m.i18n.T(locale, o.Title)
		o.Description = m.i18n.T(locale, o.Description)
		out[i] = o
	}
	return out
}

// ApplyOffer marks an offer to be consumed by the next qualifying wallet
// operation. Only one offer can be pending at a time.
func (m *Marketplace) ApplyOffer(ctx context.Context, actor domain.Principal, code string) (*domain.Wallet, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.ApplyOffer")
	defer span.End()

	if err := requireRole(actor, "use a wallet", domain.RoleCustomer); err != nil {
		return nil, err
	}
	offer, ok := domain.FindOffer(code)
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "offer", ID: code}
	}

	w, err := m.store.UpdateWallet(ctx, actor.UserID, func(w *domain.Wallet) error {
		if w.OfferUsed(offer.Code) {
			return &domain.ErrConflict{Message: "offer " + offer.Code + " was already used"}
		}
		w.AppliedOffer = offer.Code
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.publish(domain.EventWalletUpdated, w, actor.UserID)
	m.notify(ctx, actor.UserID, domain.NotifyPromotion, i18n.KeyOfferAppliedTitle, i18n.KeyOfferAppliedMessage, offer.Code)
	return w, nil
}

// PayForJob settles a completed job. The job is flagged paid first so two
// concurrent payments cannot both go through; a failed wallet debit
// releases the flag again.
func (m *Marketplace) PayForJob(ctx context.Context, actor domain.Principal, jobID string, method domain.PaymentMethod) (*domain.PaymentReceipt, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.PayForJob")
	defer span.End()
	span.SetAttributes(attribute.String("job.id", jobID), attribute.String("payment.method", string(method)))

	if err := (domain.PayRequest{Method: method}).Validate(); err != nil {
		return nil, err
	}
	if err := requireRole(actor, "pay for a job", domain.RoleCustomer); err != nil {
		return nil, err
	}

	job, err := m.store.UpdateJob(ctx, jobID, func(j *domain.Job) error {
		switch {
		case j.CustomerID != actor.UserID:
			return &domain.ErrForbidden{Action: "pay for another customer's job"}
		case j.Status != domain.JobCompleted:
			return &domain.ErrConflict{Message: "only completed jobs can be paid"}
		case j.Paid:
			return &domain.ErrDuplicate{Key: "payment:" + j.ID}
		}
		j.Paid = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	var (
		wallet   *domain.Wallet
		cashback float64
	)
	if method == domain.PayWallet {
		wallet, cashback, err = m.debitForJob(ctx, job)
		if err != nil {
			m.releasePaid(ctx, job.ID)
			return nil, err
		}
	}

	p := domain.Payment{
		ID:        m.newID(),
		JobID:     job.ID,
		Amount:    job.TotalPrice,
		Cashback:  cashback,
		Method:    method,
		Status:    domain.PaymentCompleted,
		Timestamp: m.now(),
	}
	if err := m.store.SavePayment(ctx, &p); err != nil {
		var dup *domain.ErrDuplicate
		if !errors.As(err, &dup) {
			m.releasePaid(ctx, job.ID)
		}
		if wallet != nil {
			m.refund(ctx, job, cashback)
		}
		return nil, fmt.Errorf("save payment: %w", err)
	}

	m.logger.Info("job paid",
		zap.String("job_id", job.ID),
		zap.String("method", string(method)),
		zap.Float64("amount", p.Amount),
		zap.Float64("cashback", cashback),
	)
	if wallet != nil {
		m.publish(domain.EventWalletUpdated, wallet, job.CustomerID)
	}
	m.publish(domain.EventPaymentCompleted, p, job.CustomerID, job.ElectricianID)
	m.notify(ctx, job.CustomerID, domain.NotifyPayment, i18n.KeyPaymentMadeTitle, i18n.KeyPaymentMadeMessage, amountArg(p.Amount))
	if cashback > 0 {
		m.notify(ctx, job.CustomerID, domain.NotifyPromotion, i18n.KeyWalletCreditedTitle, i18n.KeyCashbackMessage, amountArg(cashback))
	}
	m.notify(ctx, job.ElectricianID, domain.NotifyPayment, i18n.KeyPaymentReceivedTitle, i18n.KeyPaymentReceivedMessage, amountArg(p.Amount))

	return &domain.PaymentReceipt{Payment: p, Job: *job, Wallet: wallet}, nil
}

// debitForJob charges the job price and redeems a pending FIRST20 offer.
func (m *Marketplace) debitForJob(ctx context.Context, job *domain.Job) (*domain.Wallet, float64, error) {
	locale := m.localeOf(ctx, job.CustomerID)
	serviceName := job.ServiceID
	if svc, err := m.store.GetService(ctx, job.ServiceID); err == nil {
		serviceName = svc.Name
	}
	electricianName := ""
	if u, err := m.store.GetUser(ctx, job.ElectricianID); err == nil {
		electricianName = u.Name
	}

	now := m.now()
	cashback := 0.0
	w, err := m.store.UpdateWallet(ctx, job.CustomerID, func(w *domain.Wallet) error {
		err := w.Debit(domain.WalletTransaction{
			ID:           m.newID(),
			Amount:       job.TotalPrice,
			Description:  m.i18n.T(locale, i18n.KeyTxJobPayment, serviceName),
			JobID:        job.ID,
			Counterparty: electricianName,
			CreatedAt:    now,
		})
		if err != nil {
			return err
		}
		offer, _ := domain.FindOffer(domain.OfferFirst20)
		if w.AppliedOffer == offer.Code && !w.OfferUsed(offer.Code) {
			cashback = domain.CashbackFor(job.TotalPrice, offer.DiscountPercent)
			w.Credit(domain.WalletTransaction{
				ID:          m.newID(),
				Amount:      cashback,
				Description: m.i18n.T(locale, i18n.KeyTxCashback),
				JobID:       job.ID,
				CreatedAt:   now,
			})
			w.UsedOffers = append(w.UsedOffers, offer.Code)
			w.AppliedOffer = ""
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return w, cashback, nil
}

func (m *Marketplace) releasePaid(ctx context.Context, jobID string) {
	_, err := m.store.UpdateJob(ctx, jobID, func(j *domain.Job) error {
		j.Paid = false
		return nil
	})
	if err != nil {
		m.logger.Error("failed to release payment flag", zap.String("job_id", jobID), zap.Error(err))
	}
}

// refund returns a wallet debit that could not be recorded.
func (m *Marketplace) refund(ctx context.Context, job *domain.Job, cashback float64) {
	_, err := m.store.UpdateWallet(ctx, job.CustomerID, func(w *domain.Wallet) error {
		w.Credit(domain.WalletTransaction{
			ID:          m.newID(),
			Amount:      job.TotalPrice - cashback,
			Description: "Refund",
			JobID:       job.ID,
			CreatedAt:   m.now(),
		})
		return nil
	})
	if err != nil {
		m.logger.Error("failed to refund wallet", zap.String("job_id", job.ID), zap.Error(err))
	}
}

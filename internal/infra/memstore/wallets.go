package memstore

import (
	"context"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
)

// ============================================================
// Wallets & Payments
// ============================================================

func (s *Store) GetWallet(_ context.Context, userID string) (*domain.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.wallets[userID]
	if !ok {
		return &domain.Wallet{UserID: userID, Transactions: []domain.WalletTransaction{}}, nil
	}
	c := cloneWallet(w)
	return &c, nil
}

// UpdateWallet opens a wallet on first use.
func (s *Store) UpdateWallet(_ context.Context, userID string, fn func(*domain.Wallet) error) (*domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[userID]
	if !ok {
		w = &domain.Wallet{UserID: userID, Transactions: []domain.WalletTransaction{}}
	}
	c := cloneWallet(w)
	if err := fn(&c); err != nil {
		return nil, err
	}
	c.UserID = userID
	s.wallets[userID] = &c

	out := cloneWallet(&c)
	return &out, nil
}

func (s *Store) SavePayment(_ context.Context, p *domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.payments[p.JobID]; ok && existing.Status == domain.PaymentCompleted {
		return &domain.ErrDuplicate{Key: "payment:" + p.JobID}
	}
	c := *p
	s.payments[p.JobID] = &c
	return nil
}

func (s *Store) FindPaymentByJob(_ context.Context, jobID string) (*domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.payments[jobID]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

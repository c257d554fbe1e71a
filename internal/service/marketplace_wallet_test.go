package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/memstore"
)

// completeSeededJob walks job1 (₹450) through the lifecycle.
func completeSeededJob(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	for _, to := range []domain.JobStatus{domain.JobAccepted, domain.JobInProgress, domain.JobCompleted} {
		if _, err := f.market.UpdateJobStatus(ctx, electrician, "job1", to); err != nil {
			t.Fatalf("move job1 to %s: %v", to, err)
		}
	}
}

func TestAddMoney_Minimum(t *testing.T) {
	f := newFixture(t)

	_, err := f.market.AddMoney(context.Background(), customer, 99)
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	w, err := f.market.AddMoney(context.Background(), customer, 100)
	if err != nil {
		t.Fatalf("add money: %v", err)
	}
	if w.Balance != 2600 {
		t.Errorf("expected balance 2600, got %v", w.Balance)
	}
	if w.Transactions[0].Type != domain.TxCredit || w.Transactions[0].Amount != 100 {
		t.Errorf("expected the credit first, got %+v", w.Transactions[0])
	}
	if !f.events.has(domain.EventWalletUpdated) {
		t.Error("expected WALLET_UPDATED event")
	}
}

func TestAddMoney_OnlyCustomers(t *testing.T) {
	f := newFixture(t)

	_, err := f.market.AddMoney(context.Background(), electrician, 500)
	var forbidden *domain.ErrForbidden
	if !errors.As(err, &forbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestADD500_BonusOnQualifyingTopUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.market.ApplyOffer(ctx, customer, "add500"); err != nil {
		t.Fatalf("apply offer: %v", err)
	}

	// Below the offer minimum the offer stays pending.
	w, err := f.market.AddMoney(ctx, customer, 200)
	if err != nil {
		t.Fatalf("add money: %v", err)
	}
	if w.Balance != 2700 || w.AppliedOffer != domain.OfferAdd500 {
		t.Fatalf("expected no bonus yet, got balance=%v applied=%q", w.Balance, w.AppliedOffer)
	}

	w, err = f.market.AddMoney(ctx, customer, 500)
	if err != nil {
		t.Fatalf("add money: %v", err)
	}
	if w.Balance != 3300 {
		t.Errorf("expected 2700 + 500 + 100 bonus = 3300, got %v", w.Balance)
	}
	if w.AppliedOffer != "" || !w.OfferUsed(domain.OfferAdd500) {
		t.Errorf("expected ADD500 consumed, got applied=%q used=%v", w.AppliedOffer, w.UsedOffers)
	}

	_, err = f.market.ApplyOffer(ctx, customer, domain.OfferAdd500)
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Errorf("expected ErrConflict for a used offer, got %v", err)
	}
}

func TestApplyOffer_Unknown(t *testing.T) {
	f := newFixture(t)

	_, err := f.market.ApplyOffer(context.Background(), customer, "NOPE")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListOffers_Localized(t *testing.T) {
	f := newFixture(t)

	offers := f.market.ListOffers(context.Background(), customer)
	if len(offers) != len(domain.Offers) {
		t.Fatalf("expected %d offers, got %d", len(domain.Offers), len(offers))
	}
	for _, o := range offers {
		if o.Title == "" || o.Title == "offer.first20.title" || o.Title == "offer.add500.title" {
			t.Errorf("expected a translated title, got %q", o.Title)
		}
	}
}

func TestPayForJob_AlreadyPaid(t *testing.T) {
	f := newFixture(t)

	_, err := f.market.PayForJob(context.Background(), customer, "job2", domain.PayWallet)
	var dup *domain.ErrDuplicate
	if !errors.As(err, &dup) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	w, _ := f.market.GetWallet(context.Background(), customer)
	if w.Balance != 2500 {
		t.Errorf("expected balance untouched, got %v", w.Balance)
	}
}

func TestPayForJob_NotCompleted(t *testing.T) {
	f := newFixture(t)

	_, err := f.market.PayForJob(context.Background(), customer, "job1", domain.PayCash)
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestPayForJob_InvalidMethod(t *testing.T) {
	f := newFixture(t)

	_, err := f.market.PayForJob(context.Background(), customer, "job1", "cheque")
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestPayForJob_WalletWithFirst20Cashback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	completeSeededJob(t, f)

	if _, err := f.market.ApplyOffer(ctx, customer, domain.OfferFirst20); err != nil {
		t.Fatalf("apply offer: %v", err)
	}
	receipt, err := f.market.PayForJob(ctx, customer, "job1", domain.PayWallet)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if receipt.Payment.Cashback != 90 {
		t.Errorf("expected 20%% of 450 = 90 cashback, got %v", receipt.Payment.Cashback)
	}
	if receipt.Wallet == nil || receipt.Wallet.Balance != 2140 {
		t.Fatalf("expected balance 2500 - 450 + 90 = 2140, got %+v", receipt.Wallet)
	}
	if !receipt.Job.Paid {
		t.Error("expected the job flagged paid")
	}
	debit := receipt.Wallet.Transactions[1]
	if debit.Type != domain.TxDebit || debit.JobID != "job1" || debit.Counterparty != "राम कुमार" {
		t.Errorf("unexpected debit row: %+v", debit)
	}
	if !f.events.has(domain.EventPaymentCompleted) {
		t.Error("expected PAYMENT_COMPLETED event")
	}

	ns := notificationsOf(t, f, memstore.ElectricianID)
	paid := false
	for _, n := range ns {
		paid = paid || n.Type == domain.NotifyPayment
	}
	if !paid {
		t.Error("expected the electrician to be told about the payment")
	}

	_, err = f.market.PayForJob(ctx, customer, "job1", domain.PayWallet)
	var dup *domain.ErrDuplicate
	if !errors.As(err, &dup) {
		t.Errorf("expected a second payment to be refused, got %v", err)
	}
}

func TestPayForJob_InsufficientFundsReleasesJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 300 base + 300km * 10 = 3300, more than the seeded 2500.
	distance := 300.0
	j, _, err := f.market.CreateJob(ctx, customer, domain.JobInput{
		ElectricianID: memstore.ElectricianID,
		ServiceID:     memstore.FanRepairID,
		Address:       "Far away",
		Distance:      &distance,
		ScheduledDate: "2024-06-03",
	}, "")
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	for _, to := range []domain.JobStatus{domain.JobAccepted, domain.JobInProgress, domain.JobCompleted} {
		if _, err := f.market.UpdateJobStatus(ctx, electrician, j.ID, to); err != nil {
			t.Fatalf("move to %s: %v", to, err)
		}
	}

	_, err = f.market.PayForJob(ctx, customer, j.ID, domain.PayWallet)
	var insufficient *domain.ErrInsufficientFunds
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	after, _ := f.market.GetJob(ctx, customer, j.ID)
	if after.Paid {
		t.Error("expected the paid flag released after a failed debit")
	}
	if _, err := f.market.PayForJob(ctx, customer, j.ID, domain.PayCash); err != nil {
		t.Errorf("expected a cash payment to go through afterwards, got %v", err)
	}
}

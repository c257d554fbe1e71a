package memstore_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/memstore"
)

func seeded(t *testing.T) *memstore.Store {
	t.Helper()
	s := memstore.New()
	if err := memstore.Seed(s, time.Now()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return s
}

func TestSeed_Roster(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	u, err := s.FindUserByEmail(ctx, "Customer@Example.com ")
	if err != nil || u == nil || u.ID != memstore.CustomerID {
		t.Fatalf("expected customer1 by email, got %+v, %v", u, err)
	}
	if _, err := s.GetElectrician(ctx, memstore.ElectricianID); err != nil {
		t.Fatalf("electrician1 must be approved: %v", err)
	}
	if _, err := s.GetApplication(ctx, memstore.ApplicantID); err != nil {
		t.Fatalf("electrician2 must be pending: %v", err)
	}
	if u, _ := s.FindUserByEmail(ctx, "vikas@example.com"); u != nil {
		t.Error("pending applicant must not be a user yet")
	}
	w, _ := s.GetWallet(ctx, memstore.CustomerID)
	if w.Balance != 2500 || len(w.Transactions) != 3 {
		t.Errorf("unexpected wallet %+v", w)
	}
}

func TestApproveApplication_ExclusiveMembership(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	e, err := s.ApproveApplication(ctx, memstore.ApplicantID, func(e *domain.ElectricianProfile) {
		e.IsApproved = true
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !e.IsApproved {
		t.Error("expected approved flag")
	}

	approved, _ := s.ListElectricians(ctx)
	count := 0
	for _, a := range approved {
		if a.ID == memstore.ApplicantID {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected applicant exactly once in approved, got %d", count)
	}
	pending, _ := s.ListApplications(ctx)
	for _, p := range pending {
		if p.ID == memstore.ApplicantID {
			t.Fatal("applicant still pending after approval")
		}
	}
	if u, _ := s.FindUserByEmail(ctx, "vikas@example.com"); u == nil || u.Role != domain.RoleElectrician {
		t.Error("approval must register the electrician as a user")
	}

	var nf *domain.ErrNotFound
	if _, err := s.ApproveApplication(ctx, memstore.ApplicantID, nil); !errors.As(err, &nf) {
		t.Errorf("second approval must fail with not found, got %v", err)
	}
}

func TestRejectApplication(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	if _, err := s.RejectApplication(ctx, memstore.ApplicantID); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := s.GetApplication(ctx, memstore.ApplicantID); err == nil {
		t.Error("rejected application must be gone")
	}
	if _, err := s.GetElectrician(ctx, memstore.ApplicantID); err == nil {
		t.Error("rejected application must not be approved")
	}
}

func TestServices_MoveBetweenCollections(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	svc, err := s.ApproveService(ctx, memstore.WiringRepairID)
	if err != nil {
		t.Fatalf("approve service: %v", err)
	}
	if svc.Status != domain.ServiceActive {
		t.Errorf("expected active, got %s", svc.Status)
	}
	pending, _ := s.ListServices(ctx, domain.ServicePending)
	if len(pending) != 0 {
		t.Errorf("expected no pending services, got %d", len(pending))
	}
	active, _ := s.ListServices(ctx, domain.ServiceActive)
	if len(active) != 2 {
		t.Errorf("expected 2 active services, got %d", len(active))
	}
}

func TestAddService_KeepsUnsetRates(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	flat := 25000.0

	in := &domain.Service{ID: "s1", Name: "Rewire", Category: "wiring", BasePrice: 500,
		WholeHousePricing: &domain.WholeHousePricing{Enabled: true, FlatRate: &flat}}
	if err := s.AddService(ctx, in); err != nil {
		t.Fatalf("add: %v", err)
	}
	got, err := s.GetService(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.ServicePending {
		t.Errorf("new services start pending, got %s", got.Status)
	}
	if got.WholeHousePricing.PerSquareFoot != nil {
		t.Error("perSquareFoot must stay unset")
	}
	if got.WholeHousePricing.FlatRate == nil || *got.WholeHousePricing.FlatRate != 25000 {
		t.Error("flatRate must be preserved")
	}
}

func TestUpdateJob_ErrorLeavesRecord(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	_, err := s.UpdateJob(ctx, "job1", func(j *domain.Job) error {
		j.Status = domain.JobCompleted
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	j, _ := s.GetJob(ctx, "job1")
	if j.Status != domain.JobPending {
		t.Errorf("job must be untouched, got %s", j.Status)
	}
}

func TestMarkNotificationRead_Idempotent(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	_ = s.AddNotification(ctx, &domain.Notification{ID: "n1", UserID: "u1", Title: "t", Timestamp: time.Now()})

	for i := 0; i < 2; i++ {
		n, err := s.MarkNotificationRead(ctx, "n1")
		if err != nil || !n.IsRead {
			t.Fatalf("mark read #%d: %+v, %v", i, n, err)
		}
	}
	list, _ := s.ListNotifications(ctx, "u1")
	if len(list) != 1 || !list[0].IsRead {
		t.Errorf("expected exactly one read notification, got %+v", list)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := seeded(t)
	err := s.CreateUser(context.Background(), &domain.User{ID: "x", Email: "ADMIN@example.com"})
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestUpdateUser_SyncsElectrician(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	_, err := s.UpdateUser(ctx, memstore.ElectricianID, func(u *domain.User) error {
		u.Name = "Ram Kumar"
		u.Role = domain.RoleAdmin
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	e, _ := s.GetElectrician(ctx, memstore.ElectricianID)
	if e.Name != "Ram Kumar" {
		t.Errorf("electrician profile not synced: %s", e.Name)
	}
	if e.Role != domain.RoleElectrician {
		t.Error("role must not be editable through UpdateUser")
	}
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	e, _ := s.GetElectrician(ctx, memstore.ElectricianID)
	e.ServiceIDs[0] = "mutated"

	again, _ := s.GetElectrician(ctx, memstore.ElectricianID)
	if again.ServiceIDs[0] != memstore.FanRepairID {
		t.Error("callers must not be able to mutate stored slices")
	}
}

func TestUpdateWallet_Concurrent(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.UpdateWallet(ctx, "u1", func(w *domain.Wallet) error {
				w.Credit(domain.WalletTransaction{Amount: 10})
				return nil
			})
		}()
	}
	wg.Wait()

	w, _ := s.GetWallet(ctx, "u1")
	if w.Balance != 500 || len(w.Transactions) != 50 {
		t.Errorf("expected 500 over 50 rows, got %.0f over %d", w.Balance, len(w.Transactions))
	}
}

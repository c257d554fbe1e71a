package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/cache"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/memstore"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/observability"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/sessionstore"
	"github.com/boddenberg/sparkhub-bfa/internal/service"
)

// --- Mocks ---

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (m *mockPublisher) Publish(ev domain.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *mockPublisher) types() []domain.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.EventType, len(m.events))
	for i, ev := range m.events {
		out[i] = ev.Type
	}
	return out
}

func (m *mockPublisher) has(t domain.EventType) bool {
	for _, got := range m.types() {
		if got == t {
			return true
		}
	}
	return false
}

type sms struct{ to, body string }

type mockSMS struct {
	mu   sync.Mutex
	sent []sms
	err  error
}

func (m *mockSMS) Send(_ context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sms{to, body})
	return m.err
}

type fixture struct {
	market  *service.Marketplace
	store   *memstore.Store
	events  *mockPublisher
	sms     *mockSMS
	metrics *observability.Metrics
	now     time.Time

	sessions *sessionstore.MemoryStore // set by newAuth
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := memstore.New()
	if err := memstore.Seed(store, now); err != nil {
		t.Fatalf("seed: %v", err)
	}
	idem := cache.New[string](time.Minute)
	t.Cleanup(idem.Stop)

	f := &fixture{
		store:   store,
		events:  &mockPublisher{},
		sms:     &mockSMS{},
		metrics: observability.NewMetrics(),
		now:     now,
	}
	f.market = service.NewMarketplace(service.MarketplaceDeps{
		Store:       store,
		Events:      f.events,
		SMS:         f.sms,
		Idempotency: idem,
		Metrics:     f.metrics,
		Logger:      zap.NewNop(),
	}).WithClock(func() time.Time { return now })
	return f
}

var (
	admin       = domain.Principal{UserID: memstore.AdminID, Role: domain.RoleAdmin}
	customer    = domain.Principal{UserID: memstore.CustomerID, Role: domain.RoleCustomer}
	electrician = domain.Principal{UserID: memstore.ElectricianID, Role: domain.RoleElectrician}
)

func bookFan(t *testing.T, f *fixture, urgency domain.Urgency, key string) (*domain.Job, bool) {
	t.Helper()
	distance := 2.0
	j, replayed, err := f.market.CreateJob(context.Background(), customer, domain.JobInput{
		ElectricianID: memstore.ElectricianID,
		ServiceID:     memstore.FanRepairID,
		Description:   "Fan making noise",
		Address:       "Sector 62, Noida",
		Distance:      &distance,
		ScheduledDate: "2024-06-02",
		Urgency:       urgency,
	}, key)
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return j, replayed
}

func notificationsOf(t *testing.T, f *fixture, userID string) []domain.Notification {
	t.Helper()
	list, err := f.market.ListNotifications(context.Background(), userID)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	return list.Notifications
}

// --- Electricians ---

func TestApproveElectrician_MovesBetweenCollections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.market.ApproveElectrician(ctx, memstore.ApplicantID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !e.IsApproved || !e.IsVerified {
		t.Errorf("expected approved and verified, got %+v", e)
	}

	apps, _ := f.market.ListApplications(ctx)
	for _, a := range apps {
		if a.ID == memstore.ApplicantID {
			t.Fatal("applicant still pending after approval")
		}
	}
	approved, _ := f.market.ListElectricians(ctx)
	found := false
	for _, a := range approved {
		found = found || a.ID == memstore.ApplicantID
	}
	if !found {
		t.Fatal("applicant missing from approved electricians")
	}
	if _, err := f.market.GetUser(ctx, memstore.ApplicantID); err != nil {
		t.Errorf("expected a user account after approval, got %v", err)
	}
	if len(notificationsOf(t, f, memstore.ApplicantID)) == 0 {
		t.Error("expected the applicant to be notified")
	}
	if !f.events.has(domain.EventElectricianApproved) {
		t.Error("expected ELECTRICIAN_APPROVED event")
	}

	_, err = f.market.ApproveElectrician(ctx, memstore.ApplicantID)
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Errorf("expected ErrNotFound on second approval, got %v", err)
	}
}

func TestRejectElectrician_RemovesApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.market.RejectElectrician(ctx, memstore.ApplicantID); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := f.market.GetElectrician(ctx, admin, memstore.ApplicantID); err == nil {
		t.Error("expected rejected applicant to be gone")
	}
	ns := notificationsOf(t, f, memstore.ApplicantID)
	if len(ns) != 1 {
		t.Fatalf("expected one rejection notification, got %d", len(ns))
	}
}

func TestSubmitApplication_Defaults(t *testing.T) {
	f := newFixture(t)

	e, err := f.market.SubmitElectricianApplication(context.Background(), domain.ElectricianApplication{
		Name:  "Suresh Yadav",
		Email: "SURESH@example.com",
		Phone: "9000000001",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if e.Age != domain.DefaultApplicantAge || e.Education != domain.DefaultApplicantEducation || e.Location.Address != domain.DefaultApplicantAddress {
		t.Errorf("expected defaults, got age=%d education=%q address=%q", e.Age, e.Education, e.Location.Address)
	}
	if e.Email != "suresh@example.com" {
		t.Errorf("expected normalized email, got %q", e.Email)
	}
	if e.IsApproved {
		t.Error("new applications must be pending")
	}
	if len(notificationsOf(t, f, memstore.AdminID)) == 0 {
		t.Error("expected admins to hear about the application")
	}
}

func TestUpdateElectrician_OnlySelfOrAdmin(t *testing.T) {
	f := newFixture(t)
	name := "Ram K."

	_, err := f.market.UpdateElectrician(context.Background(), customer, memstore.ElectricianID, domain.ElectricianPatch{Name: &name})
	var forbidden *domain.ErrForbidden
	if !errors.As(err, &forbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	e, err := f.market.UpdateElectrician(context.Background(), electrician, memstore.ElectricianID, domain.ElectricianPatch{Name: &name})
	if err != nil {
		t.Fatalf("self update: %v", err)
	}
	if e.Name != name {
		t.Errorf("expected name %q, got %q", name, e.Name)
	}
}

func TestFindNearby(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.market.FindNearby(ctx, domain.NearbyQuery{ServiceID: memstore.FanRepairID, Lat: 28.62, Lng: 77.21})
	if err != nil {
		t.Fatalf("find nearby: %v", err)
	}
	if len(got) != 1 || got[0].ID != memstore.ElectricianID {
		t.Fatalf("expected the seeded electrician, got %+v", got)
	}
	if got[0].BasePrice != 300 {
		t.Errorf("expected base price 300, got %v", got[0].BasePrice)
	}

	if _, err := f.market.SetAvailability(ctx, electrician, memstore.ElectricianID, false); err != nil {
		t.Fatalf("set availability: %v", err)
	}
	_, err = f.market.FindNearby(ctx, domain.NearbyQuery{ServiceID: memstore.FanRepairID})
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Errorf("expected ErrNotFound once unavailable, got %v", err)
	}
}

// --- Services ---

func TestServiceApproval_AttachesToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	svc, err := f.market.AddService(ctx, electrician, domain.ServiceInput{Name: "Switch Repair", Category: "Repair", BasePrice: 150})
	if err != nil {
		t.Fatalf("add service: %v", err)
	}
	if svc.Status != domain.ServicePending {
		t.Fatalf("expected pending, got %s", svc.Status)
	}

	if _, err := f.market.ListServices(ctx, customer, domain.ServicePending, ""); err == nil {
		t.Error("customers must not list pending services")
	}
	pending, err := f.market.ListServices(ctx, electrician, domain.ServicePending, memstore.ElectricianID)
	if err != nil || len(pending) != 2 {
		t.Fatalf("expected the owner to see 2 pending services, got %d (%v)", len(pending), err)
	}

	if _, err := f.market.ApproveService(ctx, svc.ID); err != nil {
		t.Fatalf("approve service: %v", err)
	}
	e, _ := f.market.GetElectrician(ctx, admin, memstore.ElectricianID)
	if !e.Offers(svc.ID) {
		t.Error("expected the approved service on the owner's profile")
	}
	active, _ := f.market.ListServices(ctx, customer, "", "")
	if len(active) != 2 {
		t.Errorf("expected 2 active services, got %d", len(active))
	}
}

func TestAddService_PendingApplicantForbidden(t *testing.T) {
	f := newFixture(t)
	applicant := domain.Principal{UserID: memstore.ApplicantID, Role: domain.RoleElectrician}

	_, err := f.market.AddService(context.Background(), applicant, domain.ServiceInput{Name: "X", Category: "Y", BasePrice: 10})
	var forbidden *domain.ErrForbidden
	if !errors.As(err, &forbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

// --- Jobs ---

func TestCreateJob_PricingAndNotifications(t *testing.T) {
	f := newFixture(t)

	j, replayed := bookFan(t, f, domain.UrgencyUrgent, "")
	if replayed {
		t.Error("first booking must not be a replay")
	}
	// 300 base + 100 urgent + 2km * 10
	if j.TotalPrice != 420 {
		t.Errorf("expected total 420, got %v", j.TotalPrice)
	}
	if j.Status != domain.JobPending {
		t.Errorf("expected pending, got %s", j.Status)
	}
	if !f.events.has(domain.EventJobCreated) {
		t.Error("expected JOB_CREATED event")
	}
	if len(notificationsOf(t, f, memstore.ElectricianID)) == 0 {
		t.Error("expected the electrician to be notified")
	}
	if len(f.sms.sent) != 0 {
		t.Error("non-emergency bookings must not text")
	}
}

func TestCreateJob_IdempotencyReplay(t *testing.T) {
	f := newFixture(t)

	first, _ := bookFan(t, f, domain.UrgencyNormal, "key-1")
	second, replayed := bookFan(t, f, domain.UrgencyNormal, "key-1")
	if !replayed || second.ID != first.ID {
		t.Fatalf("expected replay of %s, got %s (replayed=%v)", first.ID, second.ID, replayed)
	}
	jobs, _ := f.market.ListJobs(context.Background(), customer, domain.JobPending)
	if len(jobs) != 2 {
		t.Errorf("expected the seeded job plus one booking, got %d", len(jobs))
	}
	if f.metrics.Snapshot().CacheHitRate != 0.5 {
		t.Errorf("expected hit rate 0.5, got %v", f.metrics.Snapshot().CacheHitRate)
	}
}

func TestCreateJob_FailedBookingReleasesKey(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.market.CreateJob(context.Background(), customer, domain.JobInput{
		ElectricianID: memstore.ElectricianID,
		ServiceID:     memstore.WiringRepairID,
		Description:   "Rewire the kitchen",
		Address:       "Sector 62, Noida",
		ScheduledDate: "2024-06-02",
	}, "key-2")
	if err == nil {
		t.Fatal("expected booking a pending service to fail")
	}

	_, replayed := bookFan(t, f, domain.UrgencyNormal, "key-2")
	if replayed {
		t.Error("a failed booking must not hold its Idempotency-Key")
	}
}

func TestCreateJob_EmergencyTextsElectrician(t *testing.T) {
	f := newFixture(t)

	j, _ := bookFan(t, f, domain.UrgencyEmergency, "")
	f.market.Wait()

	if !j.IsEmergency {
		t.Error("expected IsEmergency")
	}
	if len(f.sms.sent) != 1 || f.sms.sent[0].to != "9876543212" {
		t.Fatalf("expected one SMS to the electrician, got %+v", f.sms.sent)
	}
}

func TestCreateJob_OnlyCustomers(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.market.CreateJob(context.Background(), electrician, domain.JobInput{}, "")
	var forbidden *domain.ErrForbidden
	if !errors.As(err, &forbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestJobLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before, _ := f.market.GetElectrician(ctx, admin, memstore.ElectricianID)

	j, _ := bookFan(t, f, domain.UrgencyNormal, "")

	_, err := f.market.UpdateJobStatus(ctx, customer, j.ID, domain.JobAccepted)
	var forbidden *domain.ErrForbidden
	if !errors.As(err, &forbidden) {
		t.Fatalf("expected customers to be unable to accept, got %v", err)
	}

	_, err = f.market.UpdateJobStatus(ctx, electrician, j.ID, domain.JobCompleted)
	var invalid *domain.ErrInvalidTransition
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidTransition from pending to completed, got %v", err)
	}

	for _, to := range []domain.JobStatus{domain.JobAccepted, domain.JobInProgress} {
		if _, err := f.market.UpdateJobStatus(ctx, electrician, j.ID, to); err != nil {
			t.Fatalf("move to %s: %v", to, err)
		}
	}

	done, err := f.market.CompleteJob(ctx, electrician, j.ID, domain.CompletionInput{
		Images: []string{"after.jpg"}, Rating: 4, Review: "Quick fix",
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != domain.JobCompleted || done.CompletedAt == nil || done.Rating != 4 || len(done.CompletedImages) != 1 {
		t.Errorf("unexpected completed job: %+v", done)
	}

	after, _ := f.market.GetElectrician(ctx, admin, memstore.ElectricianID)
	if after.Earnings != before.Earnings+done.TotalPrice {
		t.Errorf("expected earnings %v, got %v", before.Earnings+done.TotalPrice, after.Earnings)
	}
	if after.TotalJobs != before.TotalJobs+1 {
		t.Errorf("expected %d total jobs, got %d", before.TotalJobs+1, after.TotalJobs)
	}
	if !f.events.has(domain.EventJobCompleted) {
		t.Error("expected JOB_COMPLETED event")
	}

	_, err = f.market.UpdateJobStatus(ctx, customer, j.ID, domain.JobCancelled)
	if !errors.As(err, &invalid) {
		t.Errorf("expected completed jobs to be final, got %v", err)
	}
}

func TestCancelJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	j, err := f.market.UpdateJobStatus(ctx, customer, "job1", domain.JobCancelled)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if j.CancelledBy != memstore.CustomerID {
		t.Errorf("expected CancelledBy %s, got %q", memstore.CustomerID, j.CancelledBy)
	}
}

func TestCompleteJob_RatingRange(t *testing.T) {
	f := newFixture(t)

	_, err := f.market.CompleteJob(context.Background(), electrician, "job1", domain.CompletionInput{Rating: 6})
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestGetJob_Visibility(t *testing.T) {
	f := newFixture(t)
	other := domain.Principal{UserID: "someone", Role: domain.RoleCustomer}

	if _, err := f.market.GetJob(context.Background(), other, "job1"); err == nil {
		t.Error("expected outsiders to be refused")
	}
	if _, err := f.market.GetJob(context.Background(), admin, "job1"); err != nil {
		t.Errorf("expected admins to see every job, got %v", err)
	}
}

// --- Notifications & stats ---

func TestNotifications_ReadFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.market.AddNotification(ctx, domain.NotificationInput{UserID: memstore.CustomerID, Title: "Hello", Message: "World"})
	if err != nil {
		t.Fatalf("add notification: %v", err)
	}
	if n.Type != domain.NotifySystem {
		t.Errorf("expected default type system, got %s", n.Type)
	}

	if _, err := f.market.MarkNotificationRead(ctx, electrician, n.ID); err == nil {
		t.Error("expected other users to be unable to read it")
	}
	read, err := f.market.MarkNotificationRead(ctx, customer, n.ID)
	if err != nil || !read.IsRead {
		t.Fatalf("expected read notification, got %+v (%v)", read, err)
	}

	list, _ := f.market.ListNotifications(ctx, memstore.CustomerID)
	if list.UnreadCount != 0 {
		t.Errorf("expected no unread notifications, got %d", list.UnreadCount)
	}

	_, err = f.market.AddNotification(ctx, domain.NotificationInput{UserID: "ghost", Title: "x"})
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Errorf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestMutations_LeaveUnreadNotifications(t *testing.T) {
	name := "Ravi Kumar"
	tests := []struct {
		name     string
		mutate   func(ctx context.Context, m *service.Marketplace) error
		notified []string
	}{
		{
			name: "approve service notifies owner",
			mutate: func(ctx context.Context, m *service.Marketplace) error {
				_, err := m.ApproveService(ctx, memstore.WiringRepairID)
				return err
			},
			notified: []string{memstore.ElectricianID},
		},
		{
			name: "reject service notifies owner",
			mutate: func(ctx context.Context, m *service.Marketplace) error {
				_, err := m.RejectService(ctx, memstore.WiringRepairID)
				return err
			},
			notified: []string{memstore.ElectricianID},
		},
		{
			name: "availability change notifies electrician",
			mutate: func(ctx context.Context, m *service.Marketplace) error {
				_, err := m.SetAvailability(ctx, electrician, memstore.ElectricianID, false)
				return err
			},
			notified: []string{memstore.ElectricianID},
		},
		{
			name: "profile update notifies electrician",
			mutate: func(ctx context.Context, m *service.Marketplace) error {
				_, err := m.UpdateElectrician(ctx, admin, memstore.ElectricianID, domain.ElectricianPatch{Name: &name})
				return err
			},
			notified: []string{memstore.ElectricianID},
		},
		{
			name: "accepting a job notifies both parties",
			mutate: func(ctx context.Context, m *service.Marketplace) error {
				_, err := m.UpdateJobStatus(ctx, electrician, "job1", domain.JobAccepted)
				return err
			},
			notified: []string{memstore.CustomerID, memstore.ElectricianID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			before := map[string]int{}
			for _, id := range tt.notified {
				list, err := f.market.ListNotifications(ctx, id)
				if err != nil {
					t.Fatalf("list notifications: %v", err)
				}
				before[id] = list.UnreadCount
			}

			if err := tt.mutate(ctx, f.market); err != nil {
				t.Fatalf("mutate: %v", err)
			}

			for _, id := range tt.notified {
				list, err := f.market.ListNotifications(ctx, id)
				if err != nil {
					t.Fatalf("list notifications: %v", err)
				}
				if list.UnreadCount <= before[id] {
					t.Errorf("expected a new unread notification for %s, unread went %d -> %d", id, before[id], list.UnreadCount)
				}
			}
		})
	}
}

func TestMarkAllNotificationsRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bookFan(t, f, domain.UrgencyNormal, "")
	count, err := f.market.MarkAllNotificationsRead(ctx, memstore.CustomerID)
	if err != nil || count == 0 {
		t.Fatalf("expected some notifications marked, got %d (%v)", count, err)
	}
	again, _ := f.market.MarkAllNotificationsRead(ctx, memstore.CustomerID)
	if again != 0 {
		t.Errorf("expected nothing left to mark, got %d", again)
	}
}

func TestStats(t *testing.T) {
	f := newFixture(t)

	st, err := f.market.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := domain.Stats{
		TotalUsers:        3,
		TotalElectricians: 1,
		TotalJobs:         2,
		Revenue:           800,
		PendingApprovals:  2,
		CompletedJobs:     1,
	}
	if *st != want {
		t.Errorf("expected %+v, got %+v", want, *st)
	}

	adminStats, err := f.market.AdminStats(context.Background())
	if err != nil {
		t.Fatalf("admin stats: %v", err)
	}
	if adminStats.Stats != want {
		t.Errorf("expected admin stats to embed %+v", want)
	}
}

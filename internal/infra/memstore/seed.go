package memstore

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
)

// DemoPassword signs in every seeded account.
const DemoPassword = "password123"

// Demo roster ids.
const (
	AdminID        = "admin1"
	CustomerID     = "customer1"
	ElectricianID  = "electrician1"
	ApplicantID    = "electrician2"
	FanRepairID    = "1"
	WiringRepairID = "2"
)

// Seed loads the demo roster: one admin, one customer, one approved and
// one pending electrician, an active and a pending service, two jobs and
// the customer's wallet.
func Seed(s *Store, now time.Time) error {
	ctx := context.Background()
	// Seeded hashes use the minimum cost; bcrypt reads the cost from the hash.
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}
	since := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	noida := domain.Location{Lat: 28.6139, Lng: 77.2090, Address: "नोएडा, उत्तर प्रदेश"}

	users := []domain.User{
		{ID: AdminID, Name: "Admin User", Email: "admin@example.com", Phone: "9876543210", Role: domain.RoleAdmin, IsVerified: true, Language: domain.LocaleHI, CreatedAt: since},
		{ID: CustomerID, Name: "राम शर्मा", Email: "customer@example.com", Phone: "9876543211", Role: domain.RoleCustomer, IsVerified: true, Language: domain.LocaleHI, CreatedAt: since.Add(time.Minute)},
	}
	for i := range users {
		if err := s.CreateUser(ctx, &users[i]); err != nil {
			return err
		}
	}

	approved := domain.ElectricianProfile{
		User: domain.User{
			ID: ElectricianID, Name: "राम कुमार", Email: "electrician@example.com", Phone: "9876543212",
			Role: domain.RoleElectrician, Language: domain.LocaleHI, CreatedAt: since.Add(2 * time.Minute),
		},
		Age:          35,
		Experience:   5,
		Education:    "ITI Electrical",
		ServiceIDs:   []string{FanRepairID},
		Portfolio:    []string{},
		Rating:       4.8,
		RatingCount:  120,
		RatingTotal:  576,
		TotalJobs:    120,
		Location:     noida,
		Availability: true,
		Earnings:     45000,
		AppliedAt:    since.Add(2 * time.Minute),
	}
	if err := s.AddApplication(ctx, &approved); err != nil {
		return err
	}
	if _, err := s.ApproveApplication(ctx, ElectricianID, func(e *domain.ElectricianProfile) {
		e.IsApproved, e.IsVerified = true, true
	}); err != nil {
		return err
	}

	applicant := domain.ElectricianProfile{
		User: domain.User{
			ID: ApplicantID, Name: "विकास कुमार", Email: "vikas@example.com", Phone: "9876543213",
			Role: domain.RoleElectrician, Language: domain.LocaleHI, CreatedAt: now.Add(-24 * time.Hour),
		},
		Age:          28,
		Experience:   3,
		Education:    "Diploma Electrical",
		ServiceIDs:   []string{},
		Portfolio:    []string{},
		Location:     noida,
		Availability: true,
		AppliedAt:    now.Add(-24 * time.Hour),
	}
	if err := s.AddApplication(ctx, &applicant); err != nil {
		return err
	}

	for _, id := range []string{AdminID, CustomerID, ElectricianID, ApplicantID} {
		if err := s.SaveCredential(ctx, &domain.Credential{UserID: id, PasswordHash: string(hash)}); err != nil {
			return err
		}
	}

	perSqFt, flat := 50.0, 5000.0
	services := []domain.Service{
		{
			ID: FanRepairID, OwnerID: ElectricianID, Name: "फैन रिपेयर", Category: "रिपेयर", BasePrice: 300,
			Description: "सीलिंग फैन की मरम्मत", WholeHousePricing: &domain.WholeHousePricing{Enabled: false},
			Status: domain.ServiceActive, CreatedAt: since,
		},
		{
			ID: WiringRepairID, OwnerID: ElectricianID, Name: "वायरिंग रिपेयर", Category: "रिपेयर", BasePrice: 500,
			Description: "घरेलू वायरिंग की मरम्मत", WholeHousePricing: &domain.WholeHousePricing{Enabled: true, PerSquareFoot: &perSqFt, FlatRate: &flat},
			Status: domain.ServicePending, CreatedAt: now.Add(-2 * time.Hour),
		},
	}
	for i := range services {
		if err := s.AddService(ctx, &services[i]); err != nil {
			return err
		}
	}

	done := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	finished := done.Add(2 * time.Hour)
	jobs := []domain.Job{
		{
			ID: "job1", CustomerID: CustomerID, ElectricianID: ElectricianID, ServiceID: FanRepairID,
			Status: domain.JobPending, Description: "फैन नहीं चल रहा", Address: "नोएडा सेक्टर 62",
			Location: domain.Location{Lat: 28.6139, Lng: 77.2090}, Distance: 2.5, TotalPrice: 450,
			ScheduledDate: now.Format("2006-01-02"), Urgency: domain.UrgencyNormal, CreatedAt: now.Add(-time.Hour),
		},
		{
			ID: "job2", CustomerID: CustomerID, ElectricianID: ElectricianID, ServiceID: FanRepairID,
			Status: domain.JobCompleted, Description: "AC की वायरिंग", Address: "नोएडा सेक्टर 63",
			Location: domain.Location{Lat: 28.6139, Lng: 77.2090}, Distance: 3.0, TotalPrice: 800,
			ScheduledDate: "2024-01-15", Urgency: domain.UrgencyNormal, CreatedAt: done,
			AcceptedAt: &done, StartedAt: &done, CompletedAt: &finished,
			Rating: 5, Review: "बहुत अच्छी सेवा", Paid: true,
		},
	}
	for i := range jobs {
		if err := s.CreateJob(ctx, &jobs[i]); err != nil {
			return err
		}
	}

	_, err = s.UpdateWallet(ctx, CustomerID, func(w *domain.Wallet) error {
		w.Balance = 2500
		w.UsedOffers = []string{}
		w.Transactions = []domain.WalletTransaction{
			{ID: "1", Type: domain.TxDebit, Amount: 450, Description: "Fan Repair Payment", Counterparty: "राम कुमार", CreatedAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
			{ID: "2", Type: domain.TxCredit, Amount: 1000, Description: "Wallet Recharge", CreatedAt: time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)},
			{ID: "3", Type: domain.TxDebit, Amount: 300, Description: "Wiring Check Payment", Counterparty: "सुनील वर्मा", CreatedAt: time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)},
		}
		return nil
	})
	return err
}

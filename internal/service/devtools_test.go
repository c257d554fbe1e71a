package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/memstore"
)

func TestDevAddBalance(t *testing.T) {
	f := newFixture(t)

	resp, err := f.market.DevAddBalance(context.Background(), &domain.DevAddBalanceRequest{UserID: memstore.CustomerID, Amount: 50})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.NewBalance != 2550 || resp.Added != 50 {
		t.Errorf("unexpected response: %+v", resp)
	}

	_, err = f.market.DevAddBalance(context.Background(), &domain.DevAddBalanceRequest{UserID: "ghost", Amount: 50})
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDevGenerateJobs(t *testing.T) {
	f := newFixture(t)

	resp, err := f.market.DevGenerateJobs(context.Background(), &domain.DevGenerateJobsRequest{
		CustomerID:    memstore.CustomerID,
		ElectricianID: memstore.ElectricianID,
		Count:         4,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Generated != 4 || len(resp.JobIDs) != 4 {
		t.Fatalf("expected 4 jobs, got %+v", resp)
	}
	jobs, _ := f.market.ListJobs(context.Background(), customer, "")
	if len(jobs) != 6 {
		t.Errorf("expected 2 seeded + 4 generated jobs, got %d", len(jobs))
	}
}

func TestDevGenerateJobs_CountBounds(t *testing.T) {
	f := newFixture(t)

	for _, count := range []int{0, 51} {
		_, err := f.market.DevGenerateJobs(context.Background(), &domain.DevGenerateJobsRequest{
			CustomerID: memstore.CustomerID, ElectricianID: memstore.ElectricianID, Count: count,
		})
		var validation *domain.ErrValidation
		if !errors.As(err, &validation) {
			t.Errorf("count %d: expected ErrValidation, got %v", count, err)
		}
	}
}

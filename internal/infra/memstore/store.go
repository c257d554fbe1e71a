// Package memstore is the in-memory implementation of port.MarketStore.
// Every collection lives behind a single mutex, so each call, including the
// Update* read-modify-write closures, is atomic with respect to the others.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/port"
)

var _ port.MarketStore = (*Store)(nil)

// Store holds all marketplace state.
type Store struct {
	mu sync.RWMutex

	users        map[string]*domain.User
	emails       map[string]string // normalized email -> user id
	credentials  map[string]*domain.Credential
	electricians map[string]*domain.ElectricianProfile
	applications map[string]*domain.ElectricianProfile
	services     map[string]*domain.Service
	pendingSvcs  map[string]*domain.Service
	jobs         map[string]*domain.Job
	notes        map[string]*domain.Notification
	messages     map[string][]*domain.Message // job id -> conversation
	wallets      map[string]*domain.Wallet
	payments     map[string]*domain.Payment // job id -> payment
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:        make(map[string]*domain.User),
		emails:       make(map[string]string),
		credentials:  make(map[string]*domain.Credential),
		electricians: make(map[string]*domain.ElectricianProfile),
		applications: make(map[string]*domain.ElectricianProfile),
		services:     make(map[string]*domain.Service),
		pendingSvcs:  make(map[string]*domain.Service),
		jobs:         make(map[string]*domain.Job),
		notes:        make(map[string]*domain.Notification),
		messages:     make(map[string][]*domain.Message),
		wallets:      make(map[string]*domain.Wallet),
		payments:     make(map[string]*domain.Payment),
	}
}

// Snapshot copies every collection the statistics derive from.
func (s *Store) Snapshot(_ context.Context) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := domain.Snapshot{
		Users:               make([]domain.User, 0, len(s.users)),
		Electricians:        electricianList(s.electricians),
		PendingElectricians: electricianList(s.applications),
		Services:            serviceList(s.services),
		PendingServices:     serviceList(s.pendingSvcs),
		Jobs:                make([]domain.Job, 0, len(s.jobs)),
	}
	for _, u := range s.users {
		snap.Users = append(snap.Users, *u)
	}
	sortUsers(snap.Users)
	for _, j := range s.jobs {
		snap.Jobs = append(snap.Jobs, cloneJob(j))
	}
	sortJobs(snap.Jobs)
	return snap, nil
}

// ============================================================
// copy helpers: callers never share memory with the store
// ============================================================

func cloneElectrician(e *domain.ElectricianProfile) domain.ElectricianProfile {
	c := *e
	c.ServiceIDs = append([]string(nil), e.ServiceIDs...)
	c.Portfolio = append([]string(nil), e.Portfolio...)
	return c
}

func cloneService(s *domain.Service) domain.Service {
	c := *s
	if s.WholeHousePricing != nil {
		w := *s.WholeHousePricing
		if w.PerSquareFoot != nil {
			v := *w.PerSquareFoot
			w.PerSquareFoot = &v
		}
		if w.FlatRate != nil {
			v := *w.FlatRate
			w.FlatRate = &v
		}
		c.WholeHousePricing = &w
	}
	return c
}

func cloneJob(j *domain.Job) domain.Job {
	c := *j
	c.CompletedImages = append([]string(nil), j.CompletedImages...)
	return c
}

func cloneWallet(w *domain.Wallet) domain.Wallet {
	c := *w
	c.UsedOffers = append([]string(nil), w.UsedOffers...)
	c.Transactions = append([]domain.WalletTransaction(nil), w.Transactions...)
	return c
}

func electricianList(m map[string]*domain.ElectricianProfile) []domain.ElectricianProfile {
	out := make([]domain.ElectricianProfile, 0, len(m))
	for _, e := range m {
		out = append(out, cloneElectrician(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AppliedAt.Equal(out[j].AppliedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].AppliedAt.Before(out[j].AppliedAt)
	})
	return out
}

func serviceList(m map[string]*domain.Service) []domain.Service {
	out := make([]domain.Service, 0, len(m))
	for _, v := range m {
		out = append(out, cloneService(v))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func sortUsers(us []domain.User) {
	sort.Slice(us, func(i, j int) bool {
		if us[i].CreatedAt.Equal(us[j].CreatedAt) {
			return us[i].ID < us[j].ID
		}
		return us[i].CreatedAt.Before(us[j].CreatedAt)
	})
}

// sortJobs orders newest first.
func sortJobs(js []domain.Job) {
	sort.Slice(js, func(i, j int) bool {
		if js[i].CreatedAt.Equal(js[j].CreatedAt) {
			return js[i].ID > js[j].ID
		}
		return js[i].CreatedAt.After(js[j].CreatedAt)
	})
}

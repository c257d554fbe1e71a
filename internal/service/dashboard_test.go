package service_test

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/service"
)

type fakePresence struct{ online int }

func (p fakePresence) Status(userID string) domain.RealtimeStatus {
	return domain.RealtimeStatus{UserID: userID, State: domain.StateConnected, IsConnected: true, OnlineUsers: p.online}
}

func TestDashboard_PerRolePanel(t *testing.T) {
	f := newFixture(t)
	d := service.NewDashboard(f.market, fakePresence{online: 2}, zap.NewNop())
	ctx := context.Background()

	t.Run("customer", func(t *testing.T) {
		got, err := d.ForUser(ctx, customer)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Wallet == nil || got.Wallet.Balance != 2500 {
			t.Errorf("expected the wallet panel, got %+v", got.Wallet)
		}
		if len(got.Jobs) != 2 || got.ActiveJobs != 1 {
			t.Errorf("expected 2 jobs with 1 active, got %d and %d", len(got.Jobs), got.ActiveJobs)
		}
		if got.Stats != nil || got.Electrician != nil {
			t.Error("customers must not get other panels")
		}
		if got.Realtime == nil || got.Realtime.OnlineUsers != 2 {
			t.Errorf("expected realtime status, got %+v", got.Realtime)
		}
	})

	t.Run("electrician", func(t *testing.T) {
		got, err := d.ForUser(ctx, electrician)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Electrician == nil || got.Electrician.Earnings != 45000 {
			t.Errorf("expected the profile panel, got %+v", got.Electrician)
		}
	})

	t.Run("admin", func(t *testing.T) {
		got, err := d.ForUser(ctx, admin)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Stats == nil || got.Stats.TotalJobs != 2 {
			t.Errorf("expected the stats panel, got %+v", got.Stats)
		}
	})
}

func TestDashboard_CapsNotifications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		if _, err := f.market.AddNotification(ctx, domain.NotificationInput{UserID: customer.UserID, Title: "n"}); err != nil {
			t.Fatalf("add notification: %v", err)
		}
	}

	got, err := service.NewDashboard(f.market, nil, zap.NewNop()).ForUser(ctx, customer)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got.Notifications) != 5 || got.UnreadCount != 7 {
		t.Errorf("expected 5 recent of 7 unread, got %d of %d", len(got.Notifications), got.UnreadCount)
	}
	if got.Realtime != nil {
		t.Error("expected no realtime section without a presence reader")
	}
}

func TestDashboard_UnknownUser(t *testing.T) {
	f := newFixture(t)
	ghost := domain.Principal{UserID: "ghost", Role: domain.RoleCustomer}

	if _, err := service.NewDashboard(f.market, nil, zap.NewNop()).ForUser(context.Background(), ghost); err == nil {
		t.Fatal("expected an error for an unknown user")
	}
}

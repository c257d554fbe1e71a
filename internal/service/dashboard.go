package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
)

var dashboardTracer = otel.Tracer("service/dashboard")

// recentNotifications is how many notifications the dashboard carries.
const recentNotifications = 5

// PresenceReader reports the live connection of a user.
type PresenceReader interface {
	Status(userID string) domain.RealtimeStatus
}

// Dashboard assembles the landing summary of each role.
type Dashboard struct {
	market   *Marketplace
	presence PresenceReader
	logger   *zap.Logger
}

// NewDashboard creates the dashboard service. presence may be nil.
func NewDashboard(market *Marketplace, presence PresenceReader, logger *zap.Logger) *Dashboard {
	return &Dashboard{market: market, presence: presence, logger: logger}
}

// ForUser loads everything the caller's home screen shows, concurrently.
func (d *Dashboard) ForUser(ctx context.Context, actor domain.Principal) (*domain.Dashboard, error) {
	ctx, span := dashboardTracer.Start(ctx, "Dashboard.ForUser")
	defer span.End()

	out := &domain.Dashboard{}

	// --- Step 1: data every role needs ---
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		u, err := d.market.GetUser(gCtx, actor.UserID)
		if err != nil {
			return fmt.Errorf("user fetch: %w", err)
		}
		out.User = *u
		return nil
	})

	g.Go(func() error {
		jobs, err := d.market.ListJobs(gCtx, actor, "")
		if err != nil {
			return fmt.Errorf("jobs fetch: %w", err)
		}
		out.Jobs = jobs
		for _, j := range jobs {
			if j.Status.Active() {
				out.ActiveJobs++
			}
		}
		return nil
	})

	g.Go(func() error {
		list, err := d.market.ListNotifications(gCtx, actor.UserID)
		if err != nil {
			return fmt.Errorf("notifications fetch: %w", err)
		}
		out.UnreadCount = list.UnreadCount
		n := list.Notifications
		if len(n) > recentNotifications {
			n = n[:recentNotifications]
		}
		out.Notifications = n
		return nil
	})

	// --- Step 2: the role-specific panel ---
	g.Go(func() error {
		switch actor.Role {
		case domain.RoleCustomer:
			w, err := d.market.GetWallet(gCtx, actor)
			if err != nil {
				return fmt.Errorf("wallet fetch: %w", err)
			}
			out.Wallet = w
		case domain.RoleElectrician:
			e, err := d.market.GetElectrician(gCtx, actor, actor.UserID)
			if err != nil {
				return fmt.Errorf("electrician fetch: %w", err)
			}
			out.Electrician = e
		case domain.RoleAdmin:
			st, err := d.market.Stats(gCtx)
			if err != nil {
				return fmt.Errorf("stats fetch: %w", err)
			}
			out.Stats = st
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		d.logger.Error("dashboard fan-out failed",
			zap.String("user_id", actor.UserID),
			zap.Error(err),
		)
		return nil, err
	}

	if d.presence != nil {
		st := d.presence.Status(actor.UserID)
		out.Realtime = &st
	}
	return out, nil
}

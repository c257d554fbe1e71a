package realtime

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/i18n"
	"github.com/boddenberg/sparkhub-bfa/internal/service"
)

const tickTimeout = 3 * time.Second

// ============================================================
// Tick: simulated activity for connected users
// ============================================================

// Tick runs one round of simulated activity. The cron schedule calls it;
// tests call it directly.
func (s *Simulator) Tick() {
	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()
	ctx, span := tracer.Start(ctx, "Simulator.Tick")
	defer span.End()

	for _, p := range s.online() {
		if s.chance(s.cfg.NotificationChance) {
			s.cannedNotification(ctx, p)
		}
		if s.chance(s.cfg.AdvanceChance) {
			s.advanceJob(ctx, p)
		}
		if p.Role == domain.RoleElectrician && s.chance(s.cfg.PingChance) {
			s.earningsPing(ctx, p)
		}
	}
}

// cannedNotification adds a role-flavored update in the user's language.
func (s *Simulator) cannedNotification(ctx context.Context, p domain.Principal) {
	locale, err := s.localeOf(ctx, p.UserID)
	if err != nil {
		return
	}
	c := s.market.Catalog()

	in := domain.NotificationInput{UserID: p.UserID, Type: domain.NotifySystem}
	switch p.Role {
	case domain.RoleElectrician:
		in.Title = c.T(locale, i18n.KeyRealtimeRequestTitle)
		in.Message = c.T(locale, i18n.KeyRealtimeRequestMessage)
		in.Type = domain.NotifyJob
	case domain.RoleAdmin:
		st, err := s.market.Stats(ctx)
		if err != nil {
			return
		}
		in.Title = c.T(locale, i18n.KeyRealtimeApprovalsTitle)
		in.Message = c.T(locale, i18n.KeyRealtimeApprovalsMessage, st.PendingApprovals)
	default:
		if s.pick(2) == 0 {
			in.Title = c.T(locale, i18n.KeyRealtimeUpdateTitle)
			in.Message = c.T(locale, i18n.KeyRealtimeUpdateMessage)
		} else {
			in.Title = c.T(locale, i18n.KeyRealtimeJobTitle)
			in.Message = c.T(locale, i18n.KeyRealtimeJobMessage)
			in.Type = domain.NotifyJob
		}
	}
	s.addNotification(ctx, in)
}

// advanceJob moves one random active job of the user a single step.
func (s *Simulator) advanceJob(ctx context.Context, p domain.Principal) {
	if p.Role == domain.RoleAdmin {
		return
	}
	jobs, err := s.market.ListJobs(ctx, p, "")
	if err != nil {
		s.logger.Warn("tick: list jobs failed", zap.String("user_id", p.UserID), zap.Error(err))
		return
	}
	active := jobs[:0]
	for _, j := range jobs {
		if j.Status.Active() {
			active = append(active, j)
		}
	}
	if len(active) == 0 {
		return
	}

	j := active[s.pick(len(active))]
	next := domain.NextStatus(j.Status)
	if _, err := s.market.UpdateJobStatus(ctx, service.SystemPrincipal, j.ID, next); err != nil {
		s.logger.Warn("tick: advance job failed", zap.String("job_id", j.ID), zap.Error(err))
		return
	}
	s.logger.Debug("tick: job advanced", zap.String("job_id", j.ID), zap.String("status", string(next)))
}

// earningsPing reminds an electrician of their earnings.
func (s *Simulator) earningsPing(ctx context.Context, p domain.Principal) {
	e, err := s.market.GetElectrician(ctx, p, p.UserID)
	if err != nil {
		return
	}
	c := s.market.Catalog()
	s.addNotification(ctx, domain.NotificationInput{
		UserID:  p.UserID,
		Title:   c.T(e.Language, i18n.KeyRealtimeEarningsTitle),
		Message: c.T(e.Language, i18n.KeyRealtimeEarningsMessage, c.Amount(e.Language, e.Earnings)),
		Type:    domain.NotifyPayment,
	})
}

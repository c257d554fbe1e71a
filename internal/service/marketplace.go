// Package service provides the business logic layer (use cases).
// Marketplace owns every mutation of the shared marketplace state: each
// mutator validates, writes through the store, publishes a sync event and
// notifies the affected users in their own language.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/i18n"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/observability"
	"github.com/boddenberg/sparkhub-bfa/internal/port"
)

var marketTracer = otel.Tracer("service/marketplace")

// Marketplace orchestrates users, electricians, services, jobs and
// notifications over a port.MarketStore.
type Marketplace struct {
	store   port.MarketStore
	events  port.EventPublisher
	sms     port.SMSSender
	idem    port.Cache[string]
	i18n    *i18n.Catalog
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string

	bg sync.WaitGroup
}

// MarketplaceDeps groups the collaborators of a Marketplace. Events, SMS,
// Idempotency and Metrics are optional.
type MarketplaceDeps struct {
	Store       port.MarketStore
	Events      port.EventPublisher
	SMS         port.SMSSender
	Idempotency port.Cache[string]
	Catalog     *i18n.Catalog
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// NewMarketplace creates the marketplace service.
func NewMarketplace(d MarketplaceDeps) *Marketplace {
	if d.Catalog == nil {
		d.Catalog = i18n.New()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &Marketplace{
		store:   d.Store,
		events:  d.Events,
		sms:     d.SMS,
		idem:    d.Idempotency,
		i18n:    d.Catalog,
		metrics: d.Metrics,
		logger:  d.Logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// WithClock replaces the time source. Intended for tests.
func (m *Marketplace) WithClock(now func() time.Time) *Marketplace {
	m.now = now
	return m
}

// Catalog exposes the string tables used for notifications.
func (m *Marketplace) Catalog() *i18n.Catalog { return m.i18n }

// Store exposes the underlying store for read-only collaborators.
func (m *Marketplace) Store() port.MarketStore { return m.store }

// ============================================================
// Internal helpers
// ============================================================

func (m *Marketplace) publish(t domain.EventType, data any, audience ...string) {
	if m.events == nil {
		return
	}
	m.events.Publish(domain.Event{
		Type:      t,
		Data:      data,
		Timestamp: m.now(),
		Audience:  audience,
	})
}

// localeOf returns the language of a user or applicant, English when unknown.
func (m *Marketplace) localeOf(ctx context.Context, userID string) domain.Locale {
	if u, err := m.store.GetUser(ctx, userID); err == nil {
		return u.Language
	}
	if a, err := m.store.GetApplication(ctx, userID); err == nil {
		return a.Language
	}
	return domain.LocaleEN
}

// notify stores a localized notification. args are rendered into the
// message entry. Failures are logged, never returned: a notification is a
// side effect of a mutation that already succeeded.
func (m *Marketplace) notify(ctx context.Context, userID string, typ domain.NotificationType, titleKey, msgKey string, args ...any) {
	locale := m.localeOf(ctx, userID)
	n := domain.Notification{
		ID:        m.newID(),
		UserID:    userID,
		Title:     m.i18n.T(locale, titleKey),
		Message:   m.i18n.T(locale, msgKey, localizeArgs(m.i18n, locale, args)...),
		Type:      typ,
		Timestamp: m.now(),
	}
	if err := m.store.AddNotification(ctx, &n); err != nil {
		m.logger.Error("failed to store notification",
			zap.String("user_id", userID),
			zap.String("title_key", titleKey),
			zap.Error(err),
		)
		return
	}
	if m.metrics != nil {
		m.metrics.IncrNotification(typ)
	}
	m.publish(domain.EventNotificationAdded, n, userID)
}

// notifyAdmins sends the same notification to every admin.
func (m *Marketplace) notifyAdmins(ctx context.Context, typ domain.NotificationType, titleKey, msgKey string, args ...any) {
	admins, err := m.store.ListUsers(ctx, domain.RoleAdmin)
	if err != nil {
		m.logger.Error("failed to list admins", zap.Error(err))
		return
	}
	for _, a := range admins {
		m.notify(ctx, a.ID, typ, titleKey, msgKey, args...)
	}
}

// Localized argument wrappers used by notify.
type (
	amountArg float64
	statusArg domain.JobStatus
	labelArg  string
)

func localizeArgs(c *i18n.Catalog, locale domain.Locale, args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case amountArg:
			out[i] = c.Amount(locale, float64(v))
		case statusArg:
			out[i] = c.Status(locale, domain.JobStatus(v))
		case labelArg:
			out[i] = c.T(locale, string(v))
		default:
			out[i] = a
		}
	}
	return out
}

func isNotFound(err error) bool {
	var nf *domain.ErrNotFound
	return errors.As(err, &nf)
}

func requireRole(p domain.Principal, action string, roles ...domain.Role) error {
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return &domain.ErrForbidden{Action: action}
}

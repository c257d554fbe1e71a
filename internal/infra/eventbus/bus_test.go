package eventbus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/eventbus"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/observability"
)

func TestBus_AudienceRouting(t *testing.T) {
	bus := eventbus.New(4, nil, zap.NewNop())

	customer := bus.Subscribe("customer1", domain.RoleCustomer)
	electrician := bus.Subscribe("electrician1", domain.RoleElectrician)
	admin := bus.Subscribe("admin1", domain.RoleAdmin)

	bus.Publish(domain.Event{Type: domain.EventJobCreated, Audience: []string{"electrician1"}})

	select {
	case ev := <-electrician.C:
		assert.Equal(t, domain.EventJobCreated, ev.Type)
		assert.NotEmpty(t, ev.ID)
		assert.False(t, ev.Timestamp.IsZero())
	default:
		t.Fatal("electrician should have received the event")
	}
	select {
	case <-admin.C:
	default:
		t.Fatal("admins receive every event")
	}
	select {
	case ev := <-customer.C:
		t.Fatalf("customer must not see %s", ev.Type)
	default:
	}
}

func TestBus_BroadcastReachesEveryone(t *testing.T) {
	bus := eventbus.New(4, nil, zap.NewNop())
	a := bus.Subscribe("customer1", domain.RoleCustomer)
	b := bus.Subscribe("electrician1", domain.RoleElectrician)

	bus.Publish(domain.Event{Type: domain.EventForceUpdate, Broadcast: true})

	assert.Len(t, a.C, 1)
	assert.Len(t, b.C, 1)
}

func TestBus_NonBlockingPublishCountsDrops(t *testing.T) {
	metrics := observability.NewMetrics()
	bus := eventbus.New(1, metrics, zap.NewNop())
	sub := bus.Subscribe("customer1", domain.RoleCustomer)

	for i := 0; i < 3; i++ {
		bus.Publish(domain.Event{Type: domain.EventNotificationAdded, Audience: []string{"customer1"}})
	}

	assert.Len(t, sub.C, 1)
	st := bus.Status()
	assert.Equal(t, int64(2), st.Dropped)
	assert.Equal(t, int64(3), st.UpdateCount)
	assert.Equal(t, float64(2), metrics.Snapshot().EventsDropped)
}

func TestBus_StatusAndUnsubscribe(t *testing.T) {
	bus := eventbus.New(4, nil, zap.NewNop())

	st := bus.Status()
	assert.Nil(t, st.LastUpdate)
	assert.False(t, st.IsLive)

	sub := bus.Subscribe("customer1", domain.RoleCustomer)
	bus.Publish(domain.Event{Type: domain.EventUserUpdated, Audience: []string{"customer1"}})

	st = bus.Status()
	require.NotNil(t, st.LastUpdate)
	assert.True(t, st.IsLive)
	assert.Equal(t, 1, st.Subscribers)

	bus.Unsubscribe(sub)
	bus.Unsubscribe(sub)
	<-sub.C // buffered event still readable
	_, open := <-sub.C
	assert.False(t, open, "channel must be closed after unsubscribe")
	assert.Equal(t, 0, bus.Status().Subscribers)
}

func TestBus_Listener(t *testing.T) {
	bus := eventbus.New(4, nil, zap.NewNop())
	var seen []domain.EventType
	bus.Listen(func(ev domain.Event) { seen = append(seen, ev.Type) })

	bus.Publish(domain.Event{Type: domain.EventServiceAdded})
	bus.Publish(domain.Event{Type: domain.EventServiceApproved})

	assert.Equal(t, []domain.EventType{domain.EventServiceAdded, domain.EventServiceApproved}, seen)
}

func TestBus_CloseEndsSubscriptions(t *testing.T) {
	bus := eventbus.New(4, nil, zap.NewNop())
	first := bus.Subscribe("customer1", domain.RoleCustomer)
	second := bus.Subscribe("admin1", domain.RoleAdmin)

	bus.Close()
	bus.Close()

	for _, sub := range []*eventbus.Subscription{first, second} {
		_, open := <-sub.C
		assert.False(t, open, "channel must be closed after Close")
	}
	assert.Equal(t, 0, bus.Status().Subscribers)

	require.NotPanics(t, func() {
		bus.Publish(domain.Event{Type: domain.EventJobCreated, Broadcast: true})
		bus.Unsubscribe(first)
	})

	late := bus.Subscribe("electrician1", domain.RoleElectrician)
	_, open := <-late.C
	assert.False(t, open, "subscribing after Close yields a closed channel")
}

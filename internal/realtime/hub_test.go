package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/pkg/messaging"
	"github.com/jwalitptl/clinic-directory/pkg/metrics"
)

// fakeBroker hands out a single channel the test feeds directly.
type fakeBroker struct {
	msgs     chan messaging.Message
	patterns []string
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{msgs: make(chan messaging.Message, 8)}
}

func (b *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}
	b.msgs <- messaging.Message{Channel: channel, Payload: payload}
	return nil
}

func (b *fakeBroker) Subscribe(ctx context.Context, channels ...string) (<-chan messaging.Message, error) {
	return b.msgs, nil
}

func (b *fakeBroker) PSubscribe(ctx context.Context, patterns ...string) (<-chan messaging.Message, error) {
	b.patterns = patterns
	return b.msgs, nil
}

func (b *fakeBroker) Close() error { return nil }

func eventMessage(t *testing.T, channelClinic uuid.UUID, ev model.BookingEvent) messaging.Message {
	t.Helper()
	payload, err := json.Marshal(ev)
	require.NoError(t, err)
	return messaging.Message{Channel: messaging.BookingChannel(channelClinic.String()), Payload: payload}
}

func TestHubDeliversToClinicSubscribers(t *testing.T) {
	hub := NewHub(newFakeBroker(), metrics.NewNop())
	clinicA, clinicB := uuid.New(), uuid.New()
	a := hub.register(clinicA)
	b := hub.register(clinicB)

	ev := model.BookingEvent{Op: model.BookingOpInsert, Booking: &model.Booking{Base: model.Base{ID: uuid.New()}, ClinicID: clinicA}}
	hub.dispatch(eventMessage(t, clinicA, ev))

	select {
	case got := <-a.events:
		assert.Equal(t, ev.Booking.ID, got.Booking.ID)
	default:
		t.Fatal("expected event for clinic A")
	}
	assert.Len(t, b.events, 0)
}

func TestHubRejectsMismatchedChannel(t *testing.T) {
	hub := NewHub(newFakeBroker(), nil)
	clinicA := uuid.New()
	a := hub.register(clinicA)

	ev := model.BookingEvent{Op: model.BookingOpInsert, Booking: &model.Booking{Base: model.Base{ID: uuid.New()}, ClinicID: uuid.New()}}
	hub.dispatch(eventMessage(t, clinicA, ev))
	hub.dispatch(messaging.Message{Channel: "bookings.not-a-uuid", Payload: []byte(`{}`)})
	hub.dispatch(messaging.Message{Channel: messaging.BookingChannel(clinicA.String()), Payload: []byte(`{`)})

	assert.Len(t, a.events, 0)
}

func TestHubDropsSlowSubscriber(t *testing.T) {
	m := metrics.NewNop()
	hub := NewHub(newFakeBroker(), m)
	clinicID := uuid.New()
	s := hub.register(clinicID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WebsocketClients.WithLabelValues(feedBookings)))

	ev := model.BookingEvent{Op: model.BookingOpUpdate, Booking: &model.Booking{Base: model.Base{ID: uuid.New()}, ClinicID: clinicID}}
	for i := 0; i < clientBuffer+1; i++ {
		hub.dispatch(eventMessage(t, clinicID, ev))
	}

	assert.Equal(t, 0, hub.Subscribers(clinicID))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.WebsocketClients.WithLabelValues(feedBookings)))

	drained := 0
	for range s.events {
		drained++
	}
	assert.Equal(t, clientBuffer, drained)

	// A second unregister from the connection's defer is a no-op.
	hub.unregister(s)
}

func TestHubRunSubscribesToPatternAndClosesOnShutdown(t *testing.T) {
	broker := newFakeBroker()
	hub := NewHub(broker, nil)
	clinicID := uuid.New()
	s := hub.register(clinicID)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.Run(ctx) }()

	ev := model.BookingEvent{Op: model.BookingOpInsert, Booking: &model.Booking{Base: model.Base{ID: uuid.New()}, ClinicID: clinicID}}
	require.NoError(t, broker.Publish(ctx, messaging.BookingChannel(clinicID.String()), ev))

	select {
	case got := <-s.events:
		assert.Equal(t, ev.Booking.ID, got.Booking.ID)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []string{messaging.BookingChannelPattern}, broker.patterns)
	_, open := <-s.events
	assert.False(t, open)
}

// Package realtime pushes booking changes and debounced search results to
// browsers over websockets.
package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/pkg/messaging"
	"github.com/jwalitptl/clinic-directory/pkg/metrics"
)

const (
	feedBookings = "bookings"
	feedSearch   = "search"

	clientBuffer = 32
)

// subscriber is one open booking feed. The hub only ever writes to events;
// the connection goroutine owns everything else.
type subscriber struct {
	clinicID uuid.UUID
	events   chan model.BookingEvent
}

// Hub fans booking change events out to the subscribers of each clinic.
type Hub struct {
	broker  messaging.Broker
	metrics *metrics.Metrics

	mu      sync.RWMutex
	clinics map[uuid.UUID]map[*subscriber]struct{}
}

func NewHub(broker messaging.Broker, m *metrics.Metrics) *Hub {
	if m == nil {
		m = metrics.NewNop()
	}
	return &Hub{
		broker:  broker,
		metrics: m,
		clinics: make(map[uuid.UUID]map[*subscriber]struct{}),
	}
}

// Run consumes the booking channels until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	msgs, err := h.broker.PSubscribe(ctx, messaging.BookingChannelPattern)
	if err != nil {
		return err
	}

	log.Info().Msg("booking feed hub started")
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil
		case msg, ok := <-msgs:
			if !ok {
				h.closeAll()
				return nil
			}
			h.dispatch(msg)
		}
	}
}

func (h *Hub) dispatch(msg messaging.Message) {
	clinicID, err := uuid.Parse(strings.TrimPrefix(msg.Channel, messaging.BookingChannel("")))
	if err != nil {
		log.Warn().Str("channel", msg.Channel).Msg("booking event on unexpected channel")
		return
	}

	var ev model.BookingEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil || ev.Booking == nil {
		log.Warn().Err(err).Str("channel", msg.Channel).Msg("malformed booking event")
		return
	}
	if ev.Booking.ClinicID != clinicID {
		log.Warn().Str("channel", msg.Channel).Msg("booking event for another clinic")
		return
	}

	var slow []*subscriber
	h.mu.RLock()
	for s := range h.clinics[clinicID] {
		select {
		case s.events <- ev:
		default:
			slow = append(slow, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range slow {
		log.Warn().Str("clinic_id", clinicID.String()).Msg("dropping slow booking feed subscriber")
		h.unregister(s)
	}
}

func (h *Hub) register(clinicID uuid.UUID) *subscriber {
	s := &subscriber{clinicID: clinicID, events: make(chan model.BookingEvent, clientBuffer)}

	h.mu.Lock()
	set, ok := h.clinics[clinicID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.clinics[clinicID] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()

	h.metrics.WebsocketClients.WithLabelValues(feedBookings).Inc()
	return s
}

// unregister closes the subscriber's channel. Calling it twice is harmless.
func (h *Hub) unregister(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.clinics[s.clinicID]
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	close(s.events)
	h.metrics.WebsocketClients.WithLabelValues(feedBookings).Dec()
	if len(set) == 0 {
		delete(h.clinics, s.clinicID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for clinicID, set := range h.clinics {
		for s := range set {
			close(s.events)
			h.metrics.WebsocketClients.WithLabelValues(feedBookings).Dec()
		}
		delete(h.clinics, clinicID)
	}
}

// Subscribers reports how many feeds are open for a clinic.
func (h *Hub) Subscribers(clinicID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clinics[clinicID])
}

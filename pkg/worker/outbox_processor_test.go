package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/internal/repository/mocks"
	"github.com/jwalitptl/clinic-directory/pkg/logger"
	"github.com/jwalitptl/clinic-directory/pkg/messaging"
	"github.com/jwalitptl/clinic-directory/pkg/metrics"
)

type published struct {
	channel string
	payload []byte
}

type recordingPublisher struct {
	sent []published
	err  error
}

func (p *recordingPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{channel: channel, payload: message.(json.RawMessage)})
	return nil
}

func newProcessor(repo *mocks.OutboxRepository, pub *recordingPublisher) (*OutboxProcessor, *metrics.Metrics) {
	m := metrics.NewNop()
	p := NewOutboxProcessor(repo, pub, OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}, logger.Nop(), m)
	p.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return p, m
}

func TestBookingEventsFanOutToClinicChannel(t *testing.T) {
	repo := &mocks.OutboxRepository{}
	pub := &recordingPublisher{}
	p, m := newProcessor(repo, pub)

	clinicID := uuid.New()
	payload, err := json.Marshal(model.BookingEvent{Op: model.BookingOpInsert, Booking: &model.Booking{Base: model.Base{ID: uuid.New()}, ClinicID: clinicID}})
	require.NoError(t, err)
	event := &model.OutboxEvent{ID: uuid.New(), EventType: model.EventBookingCreated, Payload: payload}

	repo.On("ClaimPendingEvents", mock.Anything, 10, 10*time.Second).Return([]*model.OutboxEvent{event}, nil)
	repo.On("UpdateStatus", mock.Anything, event.ID, model.OutboxStatusProcessed, (*string)(nil), (*time.Time)(nil)).Return(nil)

	require.NoError(t, p.ProcessBatch(context.Background()))

	require.Len(t, pub.sent, 2)
	assert.Equal(t, model.EventBookingCreated, pub.sent[0].channel)
	assert.Equal(t, messaging.BookingChannel(clinicID.String()), pub.sent[1].channel)
	assert.JSONEq(t, string(payload), string(pub.sent[1].payload))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxEventsProcessed))
	repo.AssertExpectations(t)
}

func TestLeadEventPublishesOnTypeChannelOnly(t *testing.T) {
	repo := &mocks.OutboxRepository{}
	pub := &recordingPublisher{}
	p, _ := newProcessor(repo, pub)

	event := &model.OutboxEvent{ID: uuid.New(), EventType: model.EventLeadCreated, Payload: json.RawMessage(`{"clinic_name":"Bright Smile"}`)}
	repo.On("ClaimPendingEvents", mock.Anything, 10, mock.Anything).Return([]*model.OutboxEvent{event}, nil)
	repo.On("UpdateStatus", mock.Anything, event.ID, model.OutboxStatusProcessed, mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, p.ProcessBatch(context.Background()))
	require.Len(t, pub.sent, 1)
	assert.Equal(t, model.EventLeadCreated, pub.sent[0].channel)
}

func TestPublishFailureSchedulesRetryWithBackoff(t *testing.T) {
	repo := &mocks.OutboxRepository{}
	pub := &recordingPublisher{err: errors.New("redis down")}
	p, m := newProcessor(repo, pub)

	event := &model.OutboxEvent{ID: uuid.New(), EventType: model.EventLeadCreated, Payload: json.RawMessage(`{}`), RetryCount: 1}
	want := p.now().Add(2 * time.Second)

	repo.On("ClaimPendingEvents", mock.Anything, 10, mock.Anything).Return([]*model.OutboxEvent{event}, nil)
	repo.On("UpdateStatus", mock.Anything, event.ID, model.OutboxStatusRetry,
		mock.MatchedBy(func(msg *string) bool { return msg != nil && *msg == "redis down" }),
		mock.MatchedBy(func(at *time.Time) bool { return at != nil && at.Equal(want) }),
	).Return(nil)

	require.NoError(t, p.ProcessBatch(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxRetries.WithLabelValues(model.EventLeadCreated)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.OutboxEventsFailed))
	repo.AssertExpectations(t)
}

func TestPublishFailureOnLastAttemptMarksFailed(t *testing.T) {
	repo := &mocks.OutboxRepository{}
	pub := &recordingPublisher{err: errors.New("redis down")}
	p, m := newProcessor(repo, pub)

	event := &model.OutboxEvent{ID: uuid.New(), EventType: model.EventLeadCreated, Payload: json.RawMessage(`{}`), RetryCount: 2}
	repo.On("ClaimPendingEvents", mock.Anything, 10, mock.Anything).Return([]*model.OutboxEvent{event}, nil)
	repo.On("UpdateStatus", mock.Anything, event.ID, model.OutboxStatusFailed, mock.Anything, (*time.Time)(nil)).Return(nil)

	require.NoError(t, p.ProcessBatch(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxEventsFailed))
	repo.AssertExpectations(t)
}

func TestMalformedBookingPayloadIsRetried(t *testing.T) {
	repo := &mocks.OutboxRepository{}
	pub := &recordingPublisher{}
	p, _ := newProcessor(repo, pub)

	event := &model.OutboxEvent{ID: uuid.New(), EventType: model.EventBookingUpdated, Payload: json.RawMessage(`{"op":"UPDATE"}`)}
	repo.On("ClaimPendingEvents", mock.Anything, 10, mock.Anything).Return([]*model.OutboxEvent{event}, nil)
	repo.On("UpdateStatus", mock.Anything, event.ID, model.OutboxStatusRetry, mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, p.ProcessBatch(context.Background()))
	repo.AssertExpectations(t)
}

func TestClaimErrorIsReturned(t *testing.T) {
	repo := &mocks.OutboxRepository{}
	p, _ := newProcessor(repo, &recordingPublisher{})
	repo.On("ClaimPendingEvents", mock.Anything, 10, mock.Anything).Return(nil, errors.New("db gone"))

	assert.Error(t, p.ProcessBatch(context.Background()))
}

func TestBackoffDoubles(t *testing.T) {
	assert.Equal(t, time.Second, backoff(time.Second, 0))
	assert.Equal(t, 4*time.Second, backoff(time.Second, 2))
	assert.Equal(t, 1024*time.Second, backoff(time.Second, 50))
}

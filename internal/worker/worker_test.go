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

	"github.com/jwalitptl/clinic-directory/internal/email"
	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/internal/repository/mocks"
	"github.com/jwalitptl/clinic-directory/pkg/logger"
	"github.com/jwalitptl/clinic-directory/pkg/messaging"
	"github.com/jwalitptl/clinic-directory/pkg/metrics"
)

func TestOutboxCleanupUsesRetentionCutoff(t *testing.T) {
	repo := &mocks.OutboxRepository{}
	m := metrics.NewNop()
	w := NewOutboxCleanup(repo, 7*24*time.Hour, logger.Nop(), m)
	now := time.Date(2026, 5, 8, 0, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	repo.On("DeleteProcessedBefore", mock.Anything, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)).Return(int64(12), nil)

	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.OutboxCleaned))
	repo.AssertExpectations(t)
}

func TestOutboxCleanupError(t *testing.T) {
	repo := &mocks.OutboxRepository{}
	w := NewOutboxCleanup(repo, time.Hour, logger.Nop(), metrics.NewNop())
	repo.On("DeleteProcessedBefore", mock.Anything, mock.Anything).Return(int64(0), errors.New("db gone"))

	assert.Error(t, w.Run(context.Background()))
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(logger.Nop())
	err := s.Add("every now and then", "cleanup", func(ctx context.Context) error { return nil })
	assert.Error(t, err)
	assert.NoError(t, s.Add("@daily", "cleanup", func(ctx context.Context) error { return nil }))
}

type captureSender struct {
	sent []email.Message
	err  error
}

func (s *captureSender) Send(ctx context.Context, msg email.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func TestNotifierDispatchesByEventType(t *testing.T) {
	sender := &captureSender{}
	m := metrics.NewNop()
	n := NewNotifier(nil, sender, []string{"ops@example.com"}, logger.Nop(), m)

	lead, err := json.Marshal(model.PartnerLead{ClinicName: "Bright Smile", ContactName: "Ana", Email: "ana@example.com", Country: "Turkey"})
	require.NoError(t, err)
	rejected, err := json.Marshal(model.ModerationEvent{ClinicID: uuid.New(), ClinicName: "Bright Smile", Reason: "Missing photos"})
	require.NoError(t, err)

	msgs := make(chan messaging.Message, 3)
	msgs <- messaging.Message{Channel: model.EventLeadCreated, Payload: lead}
	msgs <- messaging.Message{Channel: model.EventDraftRejected, Payload: rejected}
	msgs <- messaging.Message{Channel: model.EventBookingCreated, Payload: []byte(`{}`)}
	close(msgs)

	messaging.Dispatch(context.Background(), msgs, n.handlers(), nil)

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "New partner lead: Bright Smile", sender.sent[0].Subject)
	assert.Equal(t, "Changes rejected: Bright Smile", sender.sent[1].Subject)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmailsSent.WithLabelValues("lead", "sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmailsSent.WithLabelValues("rejected", "sent")))
}

func TestNotifierCountsSendFailures(t *testing.T) {
	sender := &captureSender{err: errors.New("smtp down")}
	m := metrics.NewNop()
	n := NewNotifier(nil, sender, []string{"ops@example.com"}, logger.Nop(), m)

	payload, err := json.Marshal(model.ModerationEvent{ClinicName: "Bright Smile", Slug: "bright-smile"})
	require.NoError(t, err)

	err = n.handlers()[model.EventClinicPublished](context.Background(), messaging.Message{Channel: model.EventClinicPublished, Payload: payload})
	assert.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmailsSent.WithLabelValues("published", "error")))
}

func TestNotifierDisabledWithoutRecipients(t *testing.T) {
	n := NewNotifier(nil, &captureSender{}, nil, logger.Nop(), metrics.NewNop())
	assert.NoError(t, n.Run(context.Background()))
}

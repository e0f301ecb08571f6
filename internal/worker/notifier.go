package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jwalitptl/clinic-directory/internal/email"
	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/pkg/logger"
	"github.com/jwalitptl/clinic-directory/pkg/messaging"
	"github.com/jwalitptl/clinic-directory/pkg/metrics"
)

// Notifier mails the operations inbox about leads and moderation activity.
type Notifier struct {
	broker  messaging.Broker
	sender  email.Sender
	to      []string
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewNotifier(broker messaging.Broker, sender email.Sender, to []string, log *logger.Logger, m *metrics.Metrics) *Notifier {
	return &Notifier{broker: broker, sender: sender, to: to, logger: log, metrics: m}
}

func (n *Notifier) handlers() map[string]messaging.HandlerFunc {
	return map[string]messaging.HandlerFunc{
		model.EventLeadCreated: func(ctx context.Context, msg messaging.Message) error {
			var lead model.PartnerLead
			if err := json.Unmarshal(msg.Payload, &lead); err != nil {
				return fmt.Errorf("decode lead: %w", err)
			}
			return n.send(ctx, "lead", func() (email.Message, error) { return email.LeadCreated(n.to, &lead) })
		},
		model.EventDraftSubmitted:  n.moderation("submitted", email.DraftSubmitted),
		model.EventClinicPublished: n.moderation("published", email.ClinicPublished),
		model.EventDraftRejected:   n.moderation("rejected", email.DraftRejected),
	}
}

func (n *Notifier) moderation(kind string, build func([]string, *model.ModerationEvent) (email.Message, error)) messaging.HandlerFunc {
	return func(ctx context.Context, msg messaging.Message) error {
		var ev model.ModerationEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return fmt.Errorf("decode moderation event: %w", err)
		}
		return n.send(ctx, kind, func() (email.Message, error) { return build(n.to, &ev) })
	}
}

func (n *Notifier) send(ctx context.Context, kind string, build func() (email.Message, error)) error {
	msg, err := build()
	if err == nil {
		err = n.sender.Send(ctx, msg)
	}
	if err != nil {
		n.metrics.EmailsSent.WithLabelValues(kind, "error").Inc()
		return err
	}
	n.metrics.EmailsSent.WithLabelValues(kind, "sent").Inc()
	return nil
}

// Run subscribes to the notification topics and blocks until ctx is done.
// With no recipients configured it returns immediately.
func (n *Notifier) Run(ctx context.Context) error {
	if len(n.to) == 0 {
		n.logger.Warn("No notification recipients configured; notifier disabled")
		return nil
	}

	handlers := n.handlers()
	channels := make([]string, 0, len(handlers))
	for ch := range handlers {
		channels = append(channels, ch)
	}

	msgs, err := n.broker.Subscribe(ctx, channels...)
	if err != nil {
		return fmt.Errorf("notifier subscribe: %w", err)
	}

	n.logger.Info("Starting notifier", "channels", len(channels))
	messaging.Dispatch(ctx, msgs, handlers, func(msg messaging.Message, err error) {
		n.logger.Error(err, "Failed to send notification", "channel", msg.Channel)
	})
	return nil
}

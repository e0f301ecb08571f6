package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/clinic-directory/internal/repository"
	"github.com/jwalitptl/clinic-directory/pkg/logger"
	"github.com/jwalitptl/clinic-directory/pkg/metrics"
)

// OutboxCleanup deletes processed outbox events past their retention.
type OutboxCleanup struct {
	repo      repository.OutboxRepository
	retention time.Duration
	logger    *logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewOutboxCleanup(repo repository.OutboxRepository, retention time.Duration, log *logger.Logger, m *metrics.Metrics) *OutboxCleanup {
	return &OutboxCleanup{
		repo:      repo,
		retention: retention,
		logger:    log,
		metrics:   m,
		now:       time.Now,
	}
}

func (w *OutboxCleanup) Run(ctx context.Context) error {
	cutoff := w.now().Add(-w.retention)

	rows, err := w.repo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		w.metrics.DatabaseOperations.WithLabelValues("delete_processed_events", "error").Inc()
		return fmt.Errorf("failed to clean up outbox events: %w", err)
	}
	w.metrics.DatabaseOperations.WithLabelValues("delete_processed_events", "success").Inc()
	w.metrics.OutboxCleaned.Add(float64(rows))

	w.logger.Info("Cleaned up outbox events", "deleted", rows, "cutoff", cutoff)
	return nil
}

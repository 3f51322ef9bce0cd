package events

import (
	"context"
	"log/slog"
	"time"

	portsrepo "github.com/SscSPs/mobile_money_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mobile_money_core/internal/core/ports/services"
)

// OutboxWorker relays committed audit events from the outbox to the publisher.
// Delivery is at least once: a record is marked published only after the
// publisher accepted it.
type OutboxWorker struct {
	logger    *slog.Logger
	outbox    portsrepo.AuditOutboxRepositoryFacade
	publisher portssvc.EventPublisher
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

func NewOutboxWorker(
	logger *slog.Logger,
	outbox portsrepo.AuditOutboxRepositoryFacade,
	publisher portssvc.EventPublisher,
	interval time.Duration,
	batchSize int,
) *OutboxWorker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxWorker{
		logger:    logger,
		outbox:    outbox,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run polls until ctx is cancelled.
func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.ProcessOnce(ctx); err != nil {
			w.logger.ErrorContext(ctx, "outbox iteration failed",
				"operation", "outbox_process_once",
				"error", err,
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ProcessOnce publishes one batch and returns how many records were published.
// A failed record keeps its place and is retried on the next tick.
func (w *OutboxWorker) ProcessOnce(ctx context.Context) (int, error) {
	records, err := w.outbox.FetchUnpublished(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}

	published, failed := 0, 0
	for _, rec := range records {
		if err := w.publisher.Publish(ctx, rec.EventType, rec.PartitionKey, rec.Payload); err != nil {
			failed++
			w.logger.WarnContext(ctx, "audit event publish failed",
				"outbox_id", rec.OutboxID,
				"event_type", rec.EventType,
				"attempts", rec.Attempts+1,
				"error", err,
			)
			if markErr := w.outbox.MarkFailed(ctx, rec.OutboxID, err.Error(), w.now()); markErr != nil {
				return published, markErr
			}
			continue
		}
		if err := w.outbox.MarkPublished(ctx, rec.OutboxID, w.now()); err != nil {
			return published, err
		}
		published++
	}

	if len(records) > 0 {
		w.logger.InfoContext(ctx, "outbox batch processed",
			"batch_size", len(records),
			"published_count", published,
			"failed_count", failed,
		)
	}
	return published, nil
}

// Package worker runs the background consumer that records submitted orders
// into the audit trail.
package worker

import (
	"context"

	"ordering-service/internal/broker"
	"ordering-service/internal/models"
	"ordering-service/internal/util"

	"go.uber.org/zap"
)

// EventLog is the slice of the store the audit worker needs for consumer
// idempotency.
type EventLog interface {
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// AuditWorker consumes order lifecycle events and records each one exactly
// once. Redelivered events are skipped via the processed-events log.
type AuditWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	events       EventLog
	logger       *zap.Logger
}

// NewAuditWorker creates a new audit worker
func NewAuditWorker(consumer *broker.Consumer, events EventLog) *AuditWorker {
	w := &AuditWorker{
		consumer: consumer,
		events:   events,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderSubmitted(w.handleOrderSubmitted)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *AuditWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting audit worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *AuditWorker) Stop() error {
	w.logger.Info("Stopping audit worker")
	return w.consumer.Close()
}

func (w *AuditWorker) handleOrderSubmitted(ctx context.Context, event *models.OrderSubmittedEvent) error {
	processed, err := w.events.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		w.logger.Debug("Skipping already processed event", zap.String("event_id", event.EventID))
		return nil
	}

	w.logger.Info("Order submitted",
		zap.String("order_id", event.OrderID),
		zap.Float64("total_amount", event.TotalAmount),
		zap.Int("item_count", len(event.Items)))

	if err := w.events.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		return err
	}

	util.OrdersAuditedTotal.Inc()
	return nil
}

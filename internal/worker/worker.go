package worker

import (
	"context"
	"encoding/json"

	"warehouse-service/internal/broker"
	"warehouse-service/internal/models"
	"warehouse-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ReorderWorker watches StockAdjusted events and raises an alert when a
// product falls to or below its reorder level.
type ReorderWorker struct {
	consumer *broker.Consumer
	logger   *zap.Logger
}

// NewReorderWorker creates a new reorder worker.
func NewReorderWorker(consumer *broker.Consumer) *ReorderWorker {
	return &ReorderWorker{
		consumer: consumer,
		logger:   util.GetLogger(),
	}
}

// Start consumes events until the context is cancelled.
func (w *ReorderWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting reorder worker")
	return w.consumer.StartConsuming(ctx, w.handleMessage)
}

// Stop closes the underlying consumer.
func (w *ReorderWorker) Stop() error {
	w.logger.Info("Stopping reorder worker")
	return w.consumer.Close()
}

func (w *ReorderWorker) handleMessage(ctx context.Context, msg kafka.Message) error {
	var base models.BaseEvent
	if err := json.Unmarshal(msg.Value, &base); err != nil {
		// Malformed payloads are skipped, not retried.
		w.logger.Error("Failed to unmarshal event", zap.Error(err))
		return nil
	}

	if base.EventType != models.EventTypeStockAdjusted {
		return nil
	}

	var event models.StockAdjustedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		w.logger.Error("Failed to unmarshal StockAdjusted event", zap.Error(err))
		return nil
	}

	if event.NewQuantity <= event.ReorderLevel {
		util.LowStockAlertsTotal.Inc()
		w.logger.Warn("Product at or below reorder level",
			zap.String("sku", event.SKU),
			zap.Int("quantity_available", event.NewQuantity),
			zap.Int("reorder_level", event.ReorderLevel),
			zap.String("change_type", event.ChangeType))
	}
	return nil
}

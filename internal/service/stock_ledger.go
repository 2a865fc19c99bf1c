package service

import (
	"context"
	"fmt"
	"time"

	"warehouse-service/internal/models"
	"warehouse-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher publishes domain events after a mutation commits.
// Publishing is best effort and never fails the operation.
type EventPublisher interface {
	PublishStockAdjusted(ctx context.Context, event *models.StockAdjustedEvent) error
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderCompleted(ctx context.Context, event *models.OrderCompletedEvent) error
	PublishOrderDeleted(ctx context.Context, event *models.OrderDeletedEvent) error
}

// StockLedger is the sole authority for mutating product stock levels.
// Every quantity change is written together with a StockTransaction in
// one database transaction, so the audit trail reconciles with the
// current quantity at all times.
type StockLedger struct {
	repo   Repository
	events EventPublisher
	logger *zap.Logger
}

// NewStockLedger creates a new stock ledger.
func NewStockLedger(repo Repository, events EventPublisher) *StockLedger {
	return &StockLedger{
		repo:   repo,
		events: events,
		logger: util.GetLogger(),
	}
}

// Adjust applies a signed quantity delta to a product and appends the
// matching stock transaction. Fails with ErrNotFound if the sku is
// unknown and ErrInsufficientStock if the delta would drive the
// quantity negative.
func (l *StockLedger) Adjust(ctx context.Context, sku string, delta int, changeType string, actor models.Actor) (int, error) {
	ctx, span := util.StartSpan(ctx, "StockLedger.Adjust")
	defer span.End()

	var product *models.Product
	err := l.repo.WithinTx(ctx, func(tx Tx) error {
		var txErr error
		product, txErr = l.adjustTx(ctx, tx, sku, delta, changeType, actor.ID)
		return txErr
	})
	if err != nil {
		return 0, err
	}

	l.logger.Info("Stock adjusted",
		zap.String("sku", sku),
		zap.Int("delta", delta),
		zap.String("change_type", changeType),
		zap.Int("new_quantity", product.QuantityAvailable))

	l.publishAdjusted(ctx, product, delta, changeType, actor.ID)
	return product.QuantityAvailable, nil
}

// adjustTx is the transaction-scoped core shared with the order
// workflow. It locks the product row, checks the non-negative
// invariant, writes the new quantity and appends the audit record.
// The returned product carries the post-adjustment quantity.
func (l *StockLedger) adjustTx(ctx context.Context, tx Tx, sku string, delta int, changeType, performedBy string) (*models.Product, error) {
	product, err := tx.ProductBySKUForUpdate(ctx, sku)
	if err != nil {
		return nil, err
	}

	newQty := product.QuantityAvailable + delta
	if newQty < 0 {
		util.InsufficientStockTotal.WithLabelValues(changeType).Inc()
		return nil, fmt.Errorf("stock for %s: available=%d, delta=%d: %w",
			sku, product.QuantityAvailable, delta, ErrInsufficientStock)
	}

	now := time.Now().UTC()
	if err := tx.SetProductQuantity(ctx, sku, newQty, now); err != nil {
		return nil, fmt.Errorf("failed to update stock for %s: %w", sku, err)
	}

	txn := &models.StockTransaction{
		ID:              uuid.New().String(),
		SKU:             sku,
		ChangeType:      changeType,
		QuantityChanged: delta,
		PerformedBy:     performedBy,
		Timestamp:       now,
	}
	if err := tx.AppendStockTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to append stock transaction for %s: %w", sku, err)
	}

	util.StockAdjustmentsTotal.WithLabelValues(changeType).Inc()

	product.QuantityAvailable = newQty
	product.LastUpdated = now
	return product, nil
}

// publishAdjusted emits a StockAdjusted event after the enclosing
// transaction has committed.
func (l *StockLedger) publishAdjusted(ctx context.Context, product *models.Product, delta int, changeType, performedBy string) {
	if l.events == nil {
		return
	}

	event := &models.StockAdjustedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeStockAdjusted,
			Timestamp: time.Now().UTC(),
		},
		SKU:             product.SKU,
		ChangeType:      changeType,
		QuantityChanged: delta,
		NewQuantity:     product.QuantityAvailable,
		ReorderLevel:    product.ReorderLevel,
		PerformedBy:     performedBy,
	}
	if err := l.events.PublishStockAdjusted(ctx, event); err != nil {
		l.logger.Error("Failed to publish StockAdjusted event",
			zap.String("sku", product.SKU), zap.Error(err))
	}
}

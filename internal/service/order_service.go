package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"warehouse-service/internal/models"
	"warehouse-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService owns the order/item lifecycle and drives the stock
// ledger and modification log as side effects. Every multi-step
// operation runs in a single datastore transaction.
type OrderService struct {
	repo   Repository
	ledger *StockLedger
	alloc  *OrderNumberAllocator
	events EventPublisher
	logger *zap.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(repo Repository, ledger *StockLedger, alloc *OrderNumberAllocator, events EventPublisher) *OrderService {
	return &OrderService{
		repo:   repo,
		ledger: ledger,
		alloc:  alloc,
		events: events,
		logger: util.GetLogger(),
	}
}

// CreateOrderRequest is the payload for creating an order.
type CreateOrderRequest struct {
	CustomerName string             `json:"customer_name" binding:"required"`
	Items        []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	OrderID      string             `json:"order_id"`
}

// OrderItemRequest is one requested line on a new order.
type OrderItemRequest struct {
	SKU              string `json:"sku" binding:"required"`
	QuantityRequired int    `json:"quantity_required" binding:"required,min=1"`
}

// CreateOrder validates every sku, allocates an order number and
// persists the order with all items in pending state. Stock is not
// deducted here; deduction happens at pick time. Creation writes no
// modification log entry.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest, actor models.Actor) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	customer := strings.TrimSpace(req.CustomerName)
	if customer == "" {
		return nil, fmt.Errorf("customer name cannot be empty: %w", ErrInvalidInput)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("order needs at least one item: %w", ErrInvalidInput)
	}

	seen := make(map[string]bool, len(req.Items))
	for _, item := range req.Items {
		if item.QuantityRequired < 1 {
			return nil, fmt.Errorf("quantity for %s must be at least 1: %w", item.SKU, ErrInvalidInput)
		}
		if seen[item.SKU] {
			return nil, fmt.Errorf("duplicate SKU %s in order: %w", item.SKU, ErrConflict)
		}
		seen[item.SKU] = true
	}

	orderNumber, err := s.alloc.Resolve(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:            uuid.New().String(),
		OrderNumber:   orderNumber,
		CustomerName:  customer,
		CreatedBy:     actor.ID,
		CreatedByName: actor.Name,
		Status:        models.OrderStatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	for _, item := range req.Items {
		product, err := s.repo.ProductBySKU(ctx, item.SKU)
		if err != nil {
			return nil, fmt.Errorf("product with SKU %s: %w", item.SKU, err)
		}
		order.Items = append(order.Items, models.OrderItem{
			ID:                uuid.New().String(),
			OrderID:           order.ID,
			SKU:               product.SKU,
			ProductName:       product.ProductName,
			FullLocationCode:  product.FullLocationCode,
			QuantityRequired:  item.QuantityRequired,
			QuantityAvailable: product.QuantityAvailable,
			PickingStatus:     models.PickingStatusPending,
		})
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int("items", len(order.Items)))

	if s.events != nil {
		event := &models.OrderCreatedEvent{
			BaseEvent:   newBaseEvent(models.EventTypeOrderCreated),
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			CreatedBy:   actor.ID,
			ItemCount:   len(order.Items),
		}
		if err := s.events.PublishOrderCreated(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
		}
	}

	return order, nil
}

// PickItem marks an item picked, deducting its quantity from stock.
// Returns the amount of stock deducted. The conditional picked update
// and the stock movement share one transaction, so two concurrent
// pickers cannot double-deduct.
func (s *OrderService) PickItem(ctx context.Context, orderID, itemID string, actor models.Actor) (int, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.PickItem")
	defer span.End()

	var (
		product   *models.Product
		deducted  int
		completed bool
		order     *models.Order
	)
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		var err error
		order, err = tx.OrderByID(ctx, orderID)
		if err != nil {
			return err
		}

		item, err := findItem(order, itemID)
		if err != nil {
			return err
		}
		if item.PickingStatus == models.PickingStatusPicked {
			return fmt.Errorf("item %s: %w", itemID, ErrAlreadyPicked)
		}

		product, err = s.ledger.adjustTx(ctx, tx, item.SKU, -item.QuantityRequired, models.ChangeTypeSale, actor.ID)
		if err != nil {
			return err
		}
		deducted = item.QuantityRequired

		picked, err := tx.MarkItemPicked(ctx, orderID, itemID)
		if err != nil {
			return err
		}
		if !picked {
			// Lost the race to another picker.
			return fmt.Errorf("item %s: %w", itemID, ErrAlreadyPicked)
		}

		remaining, err := tx.UnpickedItemCount(ctx, orderID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			if err := tx.SetOrderStatus(ctx, orderID, models.OrderStatusCompleted); err != nil {
				return err
			}
			completed = true
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	util.ItemsPickedTotal.Inc()
	s.ledger.publishAdjusted(ctx, product, -deducted, models.ChangeTypeSale, actor.ID)

	if completed {
		util.OrdersCompletedTotal.Inc()
		s.logger.Info("Order completed",
			zap.String("order_id", orderID),
			zap.String("order_number", order.OrderNumber))
		if s.events != nil {
			event := &models.OrderCompletedEvent{
				BaseEvent:   newBaseEvent(models.EventTypeOrderCompleted),
				OrderID:     orderID,
				OrderNumber: order.OrderNumber,
			}
			if err := s.events.PublishOrderCompleted(ctx, event); err != nil {
				s.logger.Error("Failed to publish OrderCompleted event", zap.Error(err))
			}
		}
	}

	return deducted, nil
}

// UpdateCustomerName changes the customer on an order. Staff cannot
// edit completed orders. Returns the old and new values.
func (s *OrderService) UpdateCustomerName(ctx context.Context, orderID, newName, reason string, actor models.Actor) (string, string, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateCustomerName")
	defer span.End()

	name := strings.TrimSpace(newName)
	if name == "" {
		return "", "", fmt.Errorf("customer name cannot be empty: %w", ErrInvalidInput)
	}

	var old string
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		order, err := tx.OrderByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := canModify(actor, order); err != nil {
			return err
		}

		old = order.CustomerName
		if err := tx.SetOrderCustomer(ctx, orderID, name); err != nil {
			return err
		}
		return tx.AppendModificationLog(ctx, newModLog(order, actor,
			models.ModTypeCustomerChange, "customer_name", old, name, reason))
	})
	if err != nil {
		return "", "", err
	}
	return old, name, nil
}

// UpdateStatus sets the order status directly. Admin only; reopening a
// completed order back to pending is allowed.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, newStatus, reason string, actor models.Actor) (string, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	if !actor.IsAdmin() {
		return "", fmt.Errorf("admin access required: %w", ErrForbidden)
	}
	if newStatus != models.OrderStatusPending && newStatus != models.OrderStatusCompleted {
		return "", fmt.Errorf("invalid status %q: %w", newStatus, ErrInvalidInput)
	}

	var old string
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		order, err := tx.OrderByID(ctx, orderID)
		if err != nil {
			return err
		}

		old = order.Status
		if err := tx.SetOrderStatus(ctx, orderID, newStatus); err != nil {
			return err
		}
		return tx.AppendModificationLog(ctx, newModLog(order, actor,
			models.ModTypeStatusChange, "status", old, newStatus, reason))
	})
	if err != nil {
		return "", err
	}
	return old, nil
}

// AddItem appends a new pending item to an order, snapshotting the
// product fields at this moment. Adding always forces the order back to
// pending. A sku already present on the order is rejected.
func (s *OrderService) AddItem(ctx context.Context, orderID, sku string, quantity int, reason string, actor models.Actor) (string, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.AddItem")
	defer span.End()

	if quantity < 1 {
		return "", fmt.Errorf("quantity must be at least 1: %w", ErrInvalidInput)
	}

	itemID := uuid.New().String()
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		order, err := tx.OrderByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := canModify(actor, order); err != nil {
			return err
		}

		product, err := tx.ProductBySKUForUpdate(ctx, sku)
		if err != nil {
			return fmt.Errorf("product with SKU %s: %w", sku, err)
		}

		for _, existing := range order.Items {
			if existing.SKU == sku {
				return fmt.Errorf("item %s already exists, use quantity update instead: %w", sku, ErrConflict)
			}
		}

		item := &models.OrderItem{
			ID:                itemID,
			OrderID:           orderID,
			SKU:               product.SKU,
			ProductName:       product.ProductName,
			FullLocationCode:  product.FullLocationCode,
			QuantityRequired:  quantity,
			QuantityAvailable: product.QuantityAvailable,
			PickingStatus:     models.PickingStatusPending,
		}
		if err := tx.InsertOrderItem(ctx, item); err != nil {
			return err
		}
		if err := tx.SetOrderStatus(ctx, orderID, models.OrderStatusPending); err != nil {
			return err
		}
		return tx.AppendModificationLog(ctx, newModLog(order, actor,
			models.ModTypeAddItem, "items", "", fmt.Sprintf("%s x%d", sku, quantity), reason))
	})
	if err != nil {
		return "", err
	}
	return itemID, nil
}

// RemoveItem deletes an item from an order. If the item was already
// picked its stock deduction is reversed first. Returns the amount of
// stock restored (0 for unpicked items).
func (s *OrderService) RemoveItem(ctx context.Context, orderID, itemID, reason string, actor models.Actor) (int, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.RemoveItem")
	defer span.End()

	var (
		restored int
		product  *models.Product
	)
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		order, err := tx.OrderByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := canModify(actor, order); err != nil {
			return err
		}

		item, err := findItem(order, itemID)
		if err != nil {
			return err
		}

		if item.PickingStatus == models.PickingStatusPicked {
			product, err = s.ledger.adjustTx(ctx, tx, item.SKU, item.QuantityRequired, models.ChangeTypeReversalRemoveItem, actor.ID)
			if err != nil {
				return err
			}
			restored = item.QuantityRequired
		}

		if err := tx.DeleteOrderItem(ctx, orderID, itemID); err != nil {
			return err
		}
		return tx.AppendModificationLog(ctx, newModLog(order, actor,
			models.ModTypeRemoveItem, "items",
			fmt.Sprintf("%s x%d", item.SKU, item.QuantityRequired), "", reason))
	})
	if err != nil {
		return 0, err
	}

	if restored > 0 {
		s.ledger.publishAdjusted(ctx, product, restored, models.ChangeTypeReversalRemoveItem, actor.ID)
	}
	return restored, nil
}

// UpdateItemQuantity changes the required quantity of an item. For a
// picked item the stock delta -(new-old) is applied through the ledger;
// an increase beyond available stock aborts the whole operation with
// ErrInsufficientStock. Returns the stock delta applied (0 for unpicked
// items).
func (s *OrderService) UpdateItemQuantity(ctx context.Context, orderID, itemID string, newQty int, reason string, actor models.Actor) (int, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateItemQuantity")
	defer span.End()

	if newQty < 1 {
		return 0, fmt.Errorf("quantity must be at least 1: %w", ErrInvalidInput)
	}

	var (
		adjusted int
		product  *models.Product
	)
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		order, err := tx.OrderByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := canModify(actor, order); err != nil {
			return err
		}

		item, err := findItem(order, itemID)
		if err != nil {
			return err
		}

		oldQty := item.QuantityRequired
		diff := newQty - oldQty

		if item.PickingStatus == models.PickingStatusPicked {
			product, err = s.ledger.adjustTx(ctx, tx, item.SKU, -diff, models.ChangeTypeQtyAdjustment, actor.ID)
			if err != nil {
				return err
			}
			adjusted = diff
		}

		if err := tx.SetItemQuantity(ctx, orderID, itemID, newQty); err != nil {
			return err
		}
		return tx.AppendModificationLog(ctx, newModLog(order, actor,
			models.ModTypeQtyChange, fmt.Sprintf("quantity (%s)", item.SKU),
			fmt.Sprintf("%d", oldQty), fmt.Sprintf("%d", newQty), reason))
	})
	if err != nil {
		return 0, err
	}

	if product != nil {
		s.ledger.publishAdjusted(ctx, product, -adjusted, models.ChangeTypeQtyAdjustment, actor.ID)
	}
	return adjusted, nil
}

// DeleteOrder removes an order and all its items, reversing the stock
// deduction of every picked item. Admin only. The deletion is logged
// before the order disappears.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID, reason string, actor models.Actor) (string, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.DeleteOrder")
	defer span.End()

	if !actor.IsAdmin() {
		return "", fmt.Errorf("admin access required: %w", ErrForbidden)
	}

	type reversal struct {
		product *models.Product
		qty     int
	}
	var (
		order     *models.Order
		reversals []reversal
	)
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		var err error
		order, err = tx.OrderByID(ctx, orderID)
		if err != nil {
			return err
		}

		if err := tx.AppendModificationLog(ctx, newModLog(order, actor,
			models.ModTypeDeleteOrder, "order",
			fmt.Sprintf("Order %s with %d items", order.OrderNumber, len(order.Items)),
			"DELETED", reason)); err != nil {
			return err
		}

		for _, item := range order.Items {
			if item.PickingStatus != models.PickingStatusPicked {
				continue
			}
			product, err := s.ledger.adjustTx(ctx, tx, item.SKU, item.QuantityRequired, models.ChangeTypeReversalOrderDelete, actor.ID)
			if err != nil {
				return err
			}
			reversals = append(reversals, reversal{product: product, qty: item.QuantityRequired})
		}

		return tx.DeleteOrder(ctx, orderID)
	})
	if err != nil {
		return "", err
	}

	util.OrdersDeletedTotal.Inc()
	s.logger.Info("Order deleted",
		zap.String("order_id", orderID),
		zap.String("order_number", order.OrderNumber),
		zap.Int("reversals", len(reversals)))

	for _, r := range reversals {
		s.ledger.publishAdjusted(ctx, r.product, r.qty, models.ChangeTypeReversalOrderDelete, actor.ID)
	}
	if s.events != nil {
		event := &models.OrderDeletedEvent{
			BaseEvent:   newBaseEvent(models.EventTypeOrderDeleted),
			OrderID:     orderID,
			OrderNumber: order.OrderNumber,
			ItemCount:   len(order.Items),
		}
		if err := s.events.PublishOrderDeleted(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderDeleted event", zap.Error(err))
		}
	}

	return order.OrderNumber, nil
}

// GetOrder retrieves an order with its items.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return s.repo.OrderByID(ctx, orderID)
}

// ListOrders lists orders newest first, optionally filtered by status.
func (s *OrderService) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	return s.repo.ListOrders(ctx, f)
}

// NextOrderNumber previews the next auto-generated order number.
func (s *OrderService) NextOrderNumber(ctx context.Context) (string, error) {
	return s.alloc.Next(ctx)
}

// ModificationHistory lists the modification log for an order, newest
// first.
func (s *OrderService) ModificationHistory(ctx context.Context, orderID string) ([]models.ModificationLog, error) {
	return s.repo.ModificationLogs(ctx, orderID, 100)
}

// canModify rejects staff edits on completed orders.
func canModify(actor models.Actor, order *models.Order) error {
	if !actor.IsAdmin() && order.Status == models.OrderStatusCompleted {
		return fmt.Errorf("staff cannot edit completed orders: %w", ErrForbidden)
	}
	return nil
}

func findItem(order *models.Order, itemID string) (*models.OrderItem, error) {
	for i := range order.Items {
		if order.Items[i].ID == itemID {
			return &order.Items[i], nil
		}
	}
	return nil, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
}

func newModLog(order *models.Order, actor models.Actor, modType, field, oldVal, newVal, reason string) *models.ModificationLog {
	return &models.ModificationLog{
		ID:               uuid.New().String(),
		OrderID:          order.ID,
		OrderNumber:      order.OrderNumber,
		ModifiedBy:       actor.ID,
		ModifiedByName:   actor.Name,
		ModificationType: modType,
		FieldChanged:     field,
		OldValue:         oldVal,
		NewValue:         newVal,
		Reason:           reason,
		Timestamp:        time.Now().UTC(),
	}
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
}

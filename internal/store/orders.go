package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"warehouse-service/internal/models"
	"warehouse-service/internal/service"

	"github.com/jmoiron/sqlx"
)

const orderColumns = `id, order_number, customer_name, created_by, created_by_name, status, created_at`

const itemColumns = `id, order_id, sku, product_name, full_location_code,
	quantity_required, quantity_available, picking_status, seq`

// CreateOrder inserts the order and all of its items in one
// transaction. A duplicate order number surfaces as service.ErrConflict.
func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (id, order_number, customer_name, created_by, created_by_name, status, created_at)
		VALUES (:id, :order_number, :customer_name, :created_by, :created_by_name, :status, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, o); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("order number %s: %w", o.OrderNumber, service.ErrConflict)
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	for i := range o.Items {
		if err := insertOrderItem(ctx, tx, &o.Items[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

// OrderByID fetches an order with its items in insertion order.
func (s *Store) OrderByID(ctx context.Context, id string) (*models.Order, error) {
	return orderByID(ctx, s.db, id)
}

// ListOrders lists orders newest first, items included.
func (s *Store) ListOrders(ctx context.Context, f service.OrderFilter) ([]models.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE 1=1`, orderColumns)
	args := []interface{}{}
	idx := 1

	if f.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, f.Status)
		idx++
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, f.Limit, f.Skip)

	orders := []models.Order{}
	if err := s.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	for i := range orders {
		items, err := orderItems(ctx, s.db, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

// OrderNumberExists reports whether an order already uses the number.
func (s *Store) OrderNumberExists(ctx context.Context, orderNumber string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM orders WHERE order_number = $1`, orderNumber)
	if err != nil {
		return false, fmt.Errorf("failed to check order number: %w", err)
	}
	return count > 0, nil
}

// MaxOrderNumberSeq returns the highest sequence used by an
// auto-generated order number. Custom order numbers that do not match
// the generated pattern are ignored.
func (s *Store) MaxOrderNumberSeq(ctx context.Context) (int, error) {
	var max int
	err := s.db.GetContext(ctx, &max, `
		SELECT COALESCE(MAX(CAST(SUBSTRING(order_number FROM 5) AS INTEGER)), 0)
		FROM orders
		WHERE order_number ~ '^ORD-\d{4}$'`)
	if err != nil {
		return 0, fmt.Errorf("failed to read max order number: %w", err)
	}
	return max, nil
}

// ModificationLogs lists an order's modification history, newest first.
func (s *Store) ModificationLogs(ctx context.Context, orderID string, limit int) ([]models.ModificationLog, error) {
	logs := []models.ModificationLog{}
	err := s.db.SelectContext(ctx, &logs, `
		SELECT id, order_id, order_number, modified_by, modified_by_name, modification_type,
			field_changed, old_value, new_value, reason, timestamp
		FROM order_modification_logs
		WHERE order_id = $1
		ORDER BY timestamp DESC
		LIMIT $2`, orderID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list modification logs: %w", err)
	}
	return logs, nil
}

// OrderByID fetches an order within the transaction.
func (t *txStore) OrderByID(ctx context.Context, orderID string) (*models.Order, error) {
	return orderByID(ctx, t.tx, orderID)
}

// MarkItemPicked flips a pending item to picked. Returns false when the
// item was already picked, so a concurrent pick cannot deduct twice.
func (t *txStore) MarkItemPicked(ctx context.Context, orderID, itemID string) (bool, error) {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE order_items SET picking_status = $1
		WHERE order_id = $2 AND id = $3 AND picking_status = $4`,
		models.PickingStatusPicked, orderID, itemID, models.PickingStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to mark item picked: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return rows > 0, nil
}

// UnpickedItemCount counts items still pending on the order.
func (t *txStore) UnpickedItemCount(ctx context.Context, orderID string) (int, error) {
	var count int
	err := t.tx.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM order_items
		WHERE order_id = $1 AND picking_status = $2`,
		orderID, models.PickingStatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to count unpicked items: %w", err)
	}
	return count, nil
}

// SetOrderStatus writes the order status.
func (t *txStore) SetOrderStatus(ctx context.Context, orderID, status string) error {
	result, err := t.tx.ExecContext(ctx,
		`UPDATE orders SET status = $1 WHERE id = $2`, status, orderID)
	if err != nil {
		return fmt.Errorf("failed to set order status: %w", err)
	}
	return requireRow(result, fmt.Sprintf("order %s", orderID))
}

// SetOrderCustomer writes the customer name.
func (t *txStore) SetOrderCustomer(ctx context.Context, orderID, name string) error {
	result, err := t.tx.ExecContext(ctx,
		`UPDATE orders SET customer_name = $1 WHERE id = $2`, name, orderID)
	if err != nil {
		return fmt.Errorf("failed to set customer name: %w", err)
	}
	return requireRow(result, fmt.Sprintf("order %s", orderID))
}

// InsertOrderItem adds one item to an order. A duplicate sku on the
// same order surfaces as service.ErrConflict.
func (t *txStore) InsertOrderItem(ctx context.Context, item *models.OrderItem) error {
	return insertOrderItem(ctx, t.tx, item)
}

// SetItemQuantity writes the required quantity on an item.
func (t *txStore) SetItemQuantity(ctx context.Context, orderID, itemID string, quantity int) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE order_items SET quantity_required = $1
		WHERE order_id = $2 AND id = $3`, quantity, orderID, itemID)
	if err != nil {
		return fmt.Errorf("failed to set item quantity: %w", err)
	}
	return requireRow(result, fmt.Sprintf("order item %s", itemID))
}

// DeleteOrderItem removes one item from an order.
func (t *txStore) DeleteOrderItem(ctx context.Context, orderID, itemID string) error {
	result, err := t.tx.ExecContext(ctx,
		`DELETE FROM order_items WHERE order_id = $1 AND id = $2`, orderID, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete order item: %w", err)
	}
	return requireRow(result, fmt.Sprintf("order item %s", itemID))
}

// DeleteOrder removes the order; items cascade via the foreign key.
// Modification logs are retained.
func (t *txStore) DeleteOrder(ctx context.Context, orderID string) error {
	result, err := t.tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return requireRow(result, fmt.Sprintf("order %s", orderID))
}

// AppendModificationLog records one order audit entry.
func (t *txStore) AppendModificationLog(ctx context.Context, entry *models.ModificationLog) error {
	query := `
		INSERT INTO order_modification_logs (id, order_id, order_number, modified_by, modified_by_name,
			modification_type, field_changed, old_value, new_value, reason, timestamp)
		VALUES (:id, :order_id, :order_number, :modified_by, :modified_by_name,
			:modification_type, :field_changed, :old_value, :new_value, :reason, :timestamp)`
	if _, err := t.tx.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("failed to append modification log: %w", err)
	}
	return nil
}

func orderByID(ctx context.Context, q sqlx.ExtContext, id string) (*models.Order, error) {
	var o models.Order
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)
	if err := sqlx.GetContext(ctx, q, &o, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", id, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := orderItems(ctx, q, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func orderItems(ctx context.Context, q sqlx.ExtContext, orderID string) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	query := fmt.Sprintf(`SELECT %s FROM order_items WHERE order_id = $1 ORDER BY seq`, itemColumns)
	if err := sqlx.SelectContext(ctx, q, &items, query, orderID); err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	return items, nil
}

func insertOrderItem(ctx context.Context, tx *sqlx.Tx, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (id, order_id, sku, product_name, full_location_code,
			quantity_required, quantity_available, picking_status)
		VALUES (:id, :order_id, :sku, :product_name, :full_location_code,
			:quantity_required, :quantity_available, :picking_status)`
	if _, err := tx.NamedExecContext(ctx, query, item); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("item %s on order %s: %w", item.SKU, item.OrderID, service.ErrConflict)
		}
		return fmt.Errorf("failed to insert order item: %w", err)
	}
	return nil
}

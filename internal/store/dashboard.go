package store

import (
	"context"
	"fmt"

	"warehouse-service/internal/models"
)

// DashboardStats computes the aggregate dashboard snapshot. Sales today
// sums sale transactions since UTC midnight.
func (s *Store) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats

	err := s.db.GetContext(ctx, &stats.TotalProducts, `SELECT COUNT(*) FROM products`)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	err = s.db.GetContext(ctx, &stats.TotalStockUnits,
		`SELECT COALESCE(SUM(quantity_available), 0) FROM products`)
	if err != nil {
		return nil, fmt.Errorf("failed to sum stock: %w", err)
	}

	err = s.db.GetContext(ctx, &stats.LowStockItems,
		`SELECT COUNT(*) FROM products WHERE quantity_available <= reorder_level`)
	if err != nil {
		return nil, fmt.Errorf("failed to count low stock: %w", err)
	}

	err = s.db.GetContext(ctx, &stats.SalesToday, `
		SELECT COALESCE(SUM(-quantity_changed), 0)
		FROM stock_transactions
		WHERE change_type = $1 AND timestamp >= date_trunc('day', now() AT TIME ZONE 'utc')`,
		models.ChangeTypeSale)
	if err != nil {
		return nil, fmt.Errorf("failed to sum sales: %w", err)
	}

	err = s.db.GetContext(ctx, &stats.OrdersPending,
		`SELECT COUNT(*) FROM orders WHERE status = $1`, models.OrderStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending orders: %w", err)
	}

	err = s.db.GetContext(ctx, &stats.OrdersCompleted,
		`SELECT COUNT(*) FROM orders WHERE status = $1`, models.OrderStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed orders: %w", err)
	}

	return &stats, nil
}

// ZoneDistribution groups product count and stock by zone.
func (s *Store) ZoneDistribution(ctx context.Context) ([]models.ZoneStats, error) {
	zones := []models.ZoneStats{}
	err := s.db.SelectContext(ctx, &zones, `
		SELECT zone, COUNT(*) AS count, COALESCE(SUM(quantity_available), 0) AS stock
		FROM products
		GROUP BY zone
		ORDER BY zone`)
	if err != nil {
		return nil, fmt.Errorf("failed to group by zone: %w", err)
	}
	return zones, nil
}

// CategoryDistribution groups product count by category, largest first.
func (s *Store) CategoryDistribution(ctx context.Context, limit int) ([]models.CategoryStats, error) {
	categories := []models.CategoryStats{}
	err := s.db.SelectContext(ctx, &categories, `
		SELECT category, COUNT(*) AS count
		FROM products
		GROUP BY category
		ORDER BY count DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to group by category: %w", err)
	}
	return categories, nil
}

// RecentStockTransactions lists the latest ledger entries.
func (s *Store) RecentStockTransactions(ctx context.Context, limit int) ([]models.StockTransaction, error) {
	txns := []models.StockTransaction{}
	err := s.db.SelectContext(ctx, &txns, `
		SELECT id, sku, change_type, quantity_changed, performed_by, timestamp
		FROM stock_transactions
		ORDER BY timestamp DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock transactions: %w", err)
	}
	return txns, nil
}

// LowStockProducts lists products at or below reorder level, most
// depleted first.
func (s *Store) LowStockProducts(ctx context.Context, limit int) ([]models.LowStockProduct, error) {
	products := []models.LowStockProduct{}
	err := s.db.SelectContext(ctx, &products, `
		SELECT sku, product_name, quantity_available, reorder_level, full_location_code
		FROM products
		WHERE quantity_available <= reorder_level
		ORDER BY quantity_available - reorder_level
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	return products, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"warehouse-service/internal/models"
	"warehouse-service/internal/service"

	"github.com/lib/pq"
)

const productColumns = `id, sku, product_name, category, brand, zone, aisle, rack, shelf, bin,
	full_location_code, quantity_available, reorder_level, supplier, image_url,
	selling_price, mrp, unit, gst_percentage, last_updated`

// CreateProduct inserts a new product. A duplicate sku surfaces as
// service.ErrConflict via the unique index.
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (id, sku, product_name, category, brand, zone, aisle, rack, shelf, bin,
			full_location_code, quantity_available, reorder_level, supplier, image_url,
			selling_price, mrp, unit, gst_percentage, last_updated)
		VALUES (:id, :sku, :product_name, :category, :brand, :zone, :aisle, :rack, :shelf, :bin,
			:full_location_code, :quantity_available, :reorder_level, :supplier, :image_url,
			:selling_price, :mrp, :unit, :gst_percentage, :last_updated)`

	if _, err := s.db.NamedExecContext(ctx, query, p); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("product sku %s: %w", p.SKU, service.ErrConflict)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// ProductByID fetches a product by id.
func (s *Store) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	if err := s.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", id, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

// ProductBySKU fetches a product by sku.
func (s *Store) ProductBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var p models.Product
	query := fmt.Sprintf(`SELECT %s FROM products WHERE sku = $1`, productColumns)
	if err := s.db.GetContext(ctx, &p, query, sku); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", sku, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

// ListProducts lists products with optional search and filters, newest
// update first.
func (s *Store) ListProducts(ctx context.Context, f service.ProductFilter) ([]models.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE 1=1`, productColumns)
	args := []interface{}{}
	idx := 1

	if f.Search != "" {
		query += fmt.Sprintf(` AND (product_name ILIKE $%d OR sku ILIKE $%d OR brand ILIKE $%d)`, idx, idx, idx)
		args = append(args, "%"+f.Search+"%")
		idx++
	}
	if f.Category != "" {
		query += fmt.Sprintf(` AND category = $%d`, idx)
		args = append(args, f.Category)
		idx++
	}
	if f.Zone != "" {
		query += fmt.Sprintf(` AND zone = $%d`, idx)
		args = append(args, f.Zone)
		idx++
	}
	if f.LowStock {
		query += ` AND quantity_available <= reorder_level`
	}

	query += fmt.Sprintf(` ORDER BY last_updated DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, f.Limit, f.Skip)

	products := []models.Product{}
	if err := s.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// UpdateProduct rewrites all editable product fields.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products SET
			sku = :sku, product_name = :product_name, category = :category, brand = :brand,
			zone = :zone, aisle = :aisle, rack = :rack, shelf = :shelf, bin = :bin,
			full_location_code = :full_location_code, quantity_available = :quantity_available,
			reorder_level = :reorder_level, supplier = :supplier, image_url = :image_url,
			selling_price = :selling_price, mrp = :mrp, unit = :unit,
			gst_percentage = :gst_percentage, last_updated = :last_updated
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, query, p)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("product sku %s: %w", p.SKU, service.ErrConflict)
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	return requireRow(result, fmt.Sprintf("product %s", p.ID))
}

// DeleteProduct removes a product by id.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return requireRow(result, fmt.Sprintf("product %s", id))
}

// ProductSKUTaken reports whether another product already uses the sku.
func (s *Store) ProductSKUTaken(ctx context.Context, sku, excludeID string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM products WHERE sku = $1 AND id <> $2`, sku, excludeID)
	if err != nil {
		return false, fmt.Errorf("failed to check sku: %w", err)
	}
	return count > 0, nil
}

// Categories returns the distinct product categories.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := s.db.SelectContext(ctx, &categories,
		`SELECT DISTINCT category FROM products WHERE category <> '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Zones returns the distinct storage zones.
func (s *Store) Zones(ctx context.Context) ([]string, error) {
	zones := []string{}
	err := s.db.SelectContext(ctx, &zones,
		`SELECT DISTINCT zone FROM products WHERE zone <> '' ORDER BY zone`)
	if err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}
	return zones, nil
}

// PublicCatalogue lists products in the unauthenticated catalogue shape.
func (s *Store) PublicCatalogue(ctx context.Context, f service.CatalogueFilter) ([]models.PublicProduct, error) {
	query := `SELECT sku, product_name, category, brand, image_url, selling_price, mrp, unit
		FROM products WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if f.Search != "" {
		query += fmt.Sprintf(` AND (product_name ILIKE $%d OR brand ILIKE $%d)`, idx, idx)
		args = append(args, "%"+f.Search+"%")
		idx++
	}
	if f.Category != "" {
		query += fmt.Sprintf(` AND category = $%d`, idx)
		args = append(args, f.Category)
		idx++
	}

	query += fmt.Sprintf(` ORDER BY product_name LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, f.Limit, f.Skip)

	products := []models.PublicProduct{}
	if err := s.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list catalogue: %w", err)
	}
	return products, nil
}

// ProductBySKUForUpdate locks the product row for the rest of the
// transaction. Concurrent adjustments to the same sku serialize here.
func (t *txStore) ProductBySKUForUpdate(ctx context.Context, sku string) (*models.Product, error) {
	var p models.Product
	query := fmt.Sprintf(`SELECT %s FROM products WHERE sku = $1 FOR UPDATE`, productColumns)
	if err := t.tx.GetContext(ctx, &p, query, sku); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", sku, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}
	return &p, nil
}

// SetProductQuantity writes the new on-hand quantity.
func (t *txStore) SetProductQuantity(ctx context.Context, sku string, quantity int, at time.Time) error {
	result, err := t.tx.ExecContext(ctx,
		`UPDATE products SET quantity_available = $1, last_updated = $2 WHERE sku = $3`,
		quantity, at, sku)
	if err != nil {
		return fmt.Errorf("failed to set quantity: %w", err)
	}
	return requireRow(result, fmt.Sprintf("product %s", sku))
}

// AppendStockTransaction records one ledger entry.
func (t *txStore) AppendStockTransaction(ctx context.Context, txn *models.StockTransaction) error {
	query := `
		INSERT INTO stock_transactions (id, sku, change_type, quantity_changed, performed_by, timestamp)
		VALUES (:id, :sku, :change_type, :quantity_changed, :performed_by, :timestamp)`
	if _, err := t.tx.NamedExecContext(ctx, query, txn); err != nil {
		return fmt.Errorf("failed to append stock transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func requireRow(result sql.Result, what string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", what, service.ErrNotFound)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"warehouse-service/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(t *testing.T, store *memStore, sku string, qty, reorder int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:                uuid.New().String(),
		SKU:               sku,
		ProductName:       "Product " + sku,
		Category:          "General",
		Zone:              "A",
		Aisle:             1,
		Rack:              2,
		Shelf:             3,
		Bin:               4,
		FullLocationCode:  LocationCode("A", 1, 2, 3, 4),
		QuantityAvailable: qty,
		ReorderLevel:      reorder,
		Unit:              "piece",
		LastUpdated:       time.Now().UTC(),
	}
	require.NoError(t, store.CreateProduct(context.Background(), product))
	return product
}

func adminActor() models.Actor {
	return models.Actor{ID: uuid.New().String(), Email: "admin@test.local", Role: models.RoleAdmin, Name: "Admin"}
}

func staffActor() models.Actor {
	return models.Actor{ID: uuid.New().String(), Email: "staff@test.local", Role: models.RoleStaff, Name: "Staff"}
}

func TestStockLedger_Adjust(t *testing.T) {
	store := newMemStore()
	ledger := NewStockLedger(store, nil)
	ctx := context.Background()
	seedProduct(t, store, "SKU-1", 10, 2)

	newQty, err := ledger.Adjust(ctx, "SKU-1", -4, models.ChangeTypeManualAdjustment, adminActor())
	require.NoError(t, err)
	assert.Equal(t, 6, newQty)

	newQty, err = ledger.Adjust(ctx, "SKU-1", 10, models.ChangeTypeManualAdjustment, adminActor())
	require.NoError(t, err)
	assert.Equal(t, 16, newQty)

	txns, err := store.RecentStockTransactions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, 10, txns[0].QuantityChanged)
	assert.Equal(t, -4, txns[1].QuantityChanged)
	assert.Equal(t, models.ChangeTypeManualAdjustment, txns[0].ChangeType)
}

func TestStockLedger_AdjustInsufficientStock(t *testing.T) {
	store := newMemStore()
	ledger := NewStockLedger(store, nil)
	ctx := context.Background()
	seedProduct(t, store, "SKU-1", 3, 0)

	_, err := ledger.Adjust(ctx, "SKU-1", -5, models.ChangeTypeSale, adminActor())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientStock))

	// The failed movement must leave no trace.
	product, err := store.ProductBySKU(ctx, "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, 3, product.QuantityAvailable)

	txns, err := store.RecentStockTransactions(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestStockLedger_AdjustUnknownSKU(t *testing.T) {
	store := newMemStore()
	ledger := NewStockLedger(store, nil)

	_, err := ledger.Adjust(context.Background(), "MISSING", 1, models.ChangeTypeManualAdjustment, adminActor())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStockLedger_AdjustToZeroAllowed(t *testing.T) {
	store := newMemStore()
	ledger := NewStockLedger(store, nil)

	seedProduct(t, store, "SKU-1", 5, 0)
	newQty, err := ledger.Adjust(context.Background(), "SKU-1", -5, models.ChangeTypeSale, adminActor())
	require.NoError(t, err)
	assert.Equal(t, 0, newQty)
}

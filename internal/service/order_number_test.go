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

func seedOrder(t *testing.T, store *memStore, orderNumber string) {
	t.Helper()
	err := store.CreateOrder(context.Background(), &models.Order{
		ID:           uuid.New().String(),
		OrderNumber:  orderNumber,
		CustomerName: "Customer",
		Status:       models.OrderStatusPending,
		CreatedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestOrderNumberAllocator_Next(t *testing.T) {
	store := newMemStore()
	alloc := NewOrderNumberAllocator(store)
	ctx := context.Background()

	next, err := alloc.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ORD-0001", next)

	seedOrder(t, store, "ORD-0001")
	seedOrder(t, store, "ORD-0007")

	next, err = alloc.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ORD-0008", next)
}

func TestOrderNumberAllocator_NextIgnoresCustomNumbers(t *testing.T) {
	store := newMemStore()
	alloc := NewOrderNumberAllocator(store)

	seedOrder(t, store, "ORD-0002")
	seedOrder(t, store, "CUSTOM-9999")
	seedOrder(t, store, "ORD-123")

	next, err := alloc.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ORD-0003", next)
}

func TestOrderNumberAllocator_ResolveCustom(t *testing.T) {
	store := newMemStore()
	alloc := NewOrderNumberAllocator(store)
	ctx := context.Background()

	resolved, err := alloc.Resolve(ctx, "  abc-123  ")
	require.NoError(t, err)
	assert.Equal(t, "ABC-123", resolved)

	seedOrder(t, store, "ABC-123")

	_, err = alloc.Resolve(ctx, "abc-123")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestOrderNumberAllocator_ResolveEmptyFallsBack(t *testing.T) {
	store := newMemStore()
	alloc := NewOrderNumberAllocator(store)

	resolved, err := alloc.Resolve(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, "ORD-0001", resolved)
}

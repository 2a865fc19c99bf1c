package service

import (
	"context"
	"fmt"
	"strings"
)

const orderNumberPrefix = "ORD-"

// OrderNumberAllocator produces unique human-readable order numbers.
type OrderNumberAllocator struct {
	repo Repository
}

// NewOrderNumberAllocator creates a new allocator.
func NewOrderNumberAllocator(repo Repository) *OrderNumberAllocator {
	return &OrderNumberAllocator{repo: repo}
}

// Next returns the next sequential order number: ORD-0001, ORD-0002, ...
// Only numbers matching the ORD-#### pattern count toward the sequence.
func (a *OrderNumberAllocator) Next(ctx context.Context) (string, error) {
	max, err := a.repo.MaxOrderNumberSeq(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to scan order numbers: %w", err)
	}
	return fmt.Sprintf("%s%04d", orderNumberPrefix, max+1), nil
}

// Resolve returns the order number for a new order. A caller-supplied id
// is trimmed and upper-cased and must not collide with an existing order;
// an empty or whitespace-only id falls back to the generated sequence.
//
// Two concurrent Resolve calls can race on the same number; the unique
// index on orders.order_number catches that on insert and the store
// surfaces it as ErrConflict for the caller to retry.
func (a *OrderNumberAllocator) Resolve(ctx context.Context, customID string) (string, error) {
	custom := strings.ToUpper(strings.TrimSpace(customID))
	if custom == "" {
		return a.Next(ctx)
	}

	exists, err := a.repo.OrderNumberExists(ctx, custom)
	if err != nil {
		return "", fmt.Errorf("failed to check order number: %w", err)
	}
	if exists {
		return "", fmt.Errorf("order number %s already exists: %w", custom, ErrConflict)
	}
	return custom, nil
}

package models

import "time"

// Event types published to the warehouse event topic
const (
	EventTypeOrderCreated   = "ORDER_CREATED"
	EventTypeOrderCompleted = "ORDER_COMPLETED"
	EventTypeOrderDeleted   = "ORDER_DELETED"
	EventTypeStockAdjusted  = "STOCK_ADJUSTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published when an order is created
type OrderCreatedEvent struct {
	BaseEvent
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	CreatedBy   string `json:"created_by"`
	ItemCount   int    `json:"item_count"`
}

// OrderCompletedEvent published when the last item of an order is picked
type OrderCompletedEvent struct {
	BaseEvent
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
}

// OrderDeletedEvent published when an admin deletes an order
type OrderDeletedEvent struct {
	BaseEvent
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	ItemCount   int    `json:"item_count"`
}

// StockAdjustedEvent published for every stock ledger movement
type StockAdjustedEvent struct {
	BaseEvent
	SKU             string `json:"sku"`
	ChangeType      string `json:"change_type"`
	QuantityChanged int    `json:"quantity_changed"`
	NewQuantity     int    `json:"new_quantity"`
	ReorderLevel    int    `json:"reorder_level"`
	PerformedBy     string `json:"performed_by"`
}

package models

import "time"

// Product is a stocked item with a physical storage location.
type Product struct {
	ID                string    `db:"id" json:"id"`
	SKU               string    `db:"sku" json:"sku"`
	ProductName       string    `db:"product_name" json:"product_name"`
	Category          string    `db:"category" json:"category"`
	Brand             string    `db:"brand" json:"brand"`
	Zone              string    `db:"zone" json:"zone"`
	Aisle             int       `db:"aisle" json:"aisle"`
	Rack              int       `db:"rack" json:"rack"`
	Shelf             int       `db:"shelf" json:"shelf"`
	Bin               int       `db:"bin" json:"bin"`
	FullLocationCode  string    `db:"full_location_code" json:"full_location_code"`
	QuantityAvailable int       `db:"quantity_available" json:"quantity_available"`
	ReorderLevel      int       `db:"reorder_level" json:"reorder_level"`
	Supplier          string    `db:"supplier" json:"supplier"`
	ImageURL          string    `db:"image_url" json:"image_url"`
	SellingPrice      float64   `db:"selling_price" json:"selling_price"`
	MRP               float64   `db:"mrp" json:"mrp"`
	Unit              string    `db:"unit" json:"unit"`
	GSTPercentage     float64   `db:"gst_percentage" json:"gst_percentage"`
	LastUpdated       time.Time `db:"last_updated" json:"last_updated"`
}

// Employee is a warehouse user account.
type Employee struct {
	ID                string     `db:"id" json:"id"`
	Name              string     `db:"name" json:"name"`
	Email             string     `db:"email" json:"email"`
	Role              string     `db:"role" json:"role"`
	Status            string     `db:"status" json:"status"`
	PresenceStatus    string     `db:"presence_status" json:"presence_status"`
	PresenceUpdatedAt *time.Time `db:"presence_updated_at" json:"presence_updated_at,omitempty"`
	PresenceUpdatedBy string     `db:"presence_updated_by" json:"presence_updated_by,omitempty"`
	PasswordHash      string     `db:"password_hash" json:"-"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}

// EmployeeView is Employee plus resolved display fields for listings.
type EmployeeView struct {
	Employee
	PresenceUpdatedByName string `json:"presence_updated_by_name,omitempty"`
}

// Order is a customer picking order.
type Order struct {
	ID            string      `db:"id" json:"id"`
	OrderNumber   string      `db:"order_number" json:"order_number"`
	CustomerName  string      `db:"customer_name" json:"customer_name"`
	CreatedBy     string      `db:"created_by" json:"created_by"`
	CreatedByName string      `db:"created_by_name" json:"created_by_name"`
	Status        string      `db:"status" json:"status"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	Items         []OrderItem `db:"-" json:"items"`
}

// OrderItem is a single line on an order. Product fields are snapshots
// taken when the item was added and are never re-synced.
type OrderItem struct {
	ID                string `db:"id" json:"id"`
	OrderID           string `db:"order_id" json:"-"`
	SKU               string `db:"sku" json:"sku"`
	ProductName       string `db:"product_name" json:"product_name"`
	FullLocationCode  string `db:"full_location_code" json:"full_location_code"`
	QuantityRequired  int    `db:"quantity_required" json:"quantity_required"`
	QuantityAvailable int    `db:"quantity_available" json:"quantity_available"`
	PickingStatus     string `db:"picking_status" json:"picking_status"`
	Seq               int64  `db:"seq" json:"-"`
}

// StockTransaction is an append-only audit record of a quantity change.
type StockTransaction struct {
	ID              string    `db:"id" json:"id"`
	SKU             string    `db:"sku" json:"sku"`
	ChangeType      string    `db:"change_type" json:"change_type"`
	QuantityChanged int       `db:"quantity_changed" json:"quantity_changed"`
	PerformedBy     string    `db:"performed_by" json:"performed_by"`
	Timestamp       time.Time `db:"timestamp" json:"timestamp"`
}

// ModificationLog is an append-only audit record of an order mutation.
type ModificationLog struct {
	ID               string    `db:"id" json:"id"`
	OrderID          string    `db:"order_id" json:"order_id"`
	OrderNumber      string    `db:"order_number" json:"order_number"`
	ModifiedBy       string    `db:"modified_by" json:"modified_by"`
	ModifiedByName   string    `db:"modified_by_name" json:"modified_by_name"`
	ModificationType string    `db:"modification_type" json:"modification_type"`
	FieldChanged     string    `db:"field_changed" json:"field_changed"`
	OldValue         string    `db:"old_value" json:"old_value"`
	NewValue         string    `db:"new_value" json:"new_value"`
	Reason           string    `db:"reason" json:"reason,omitempty"`
	Timestamp        time.Time `db:"timestamp" json:"timestamp"`
}

// PresenceLog records a staff presence status change.
type PresenceLog struct {
	ID             string    `db:"id" json:"id"`
	EmployeeID     string    `db:"employee_id" json:"employee_id"`
	EmployeeName   string    `db:"employee_name" json:"employee_name"`
	PreviousStatus string    `db:"previous_status" json:"previous_status"`
	NewStatus      string    `db:"new_status" json:"new_status"`
	ChangedBy      string    `db:"changed_by" json:"changed_by"`
	ChangedByName  string    `db:"changed_by_name" json:"changed_by_name"`
	Timestamp      time.Time `db:"timestamp" json:"timestamp"`
}

// Actor identifies the authenticated caller of an operation.
type Actor struct {
	ID    string
	Email string
	Role  string
	Name  string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// DashboardStats is the aggregate snapshot shown on the dashboard.
type DashboardStats struct {
	TotalProducts   int `json:"total_products"`
	TotalStockUnits int `json:"total_stock_units"`
	LowStockItems   int `json:"low_stock_items"`
	SalesToday      int `json:"sales_today"`
	OrdersPending   int `json:"orders_pending"`
	OrdersCompleted int `json:"orders_completed"`
}

// ZoneStats is product count and stock grouped by zone.
type ZoneStats struct {
	Zone  string `db:"zone" json:"zone"`
	Count int    `db:"count" json:"count"`
	Stock int    `db:"stock" json:"stock"`
}

// CategoryStats is product count grouped by category.
type CategoryStats struct {
	Category string `db:"category" json:"category"`
	Count    int    `db:"count" json:"count"`
}

// LowStockProduct is a product at or below its reorder level.
type LowStockProduct struct {
	SKU               string `db:"sku" json:"sku"`
	ProductName       string `db:"product_name" json:"product_name"`
	QuantityAvailable int    `db:"quantity_available" json:"quantity_available"`
	ReorderLevel      int    `db:"reorder_level" json:"reorder_level"`
	FullLocationCode  string `db:"full_location_code" json:"full_location_code"`
}

// PublicProduct is the catalogue view exposed without authentication.
// No stock and no location fields.
type PublicProduct struct {
	SKU          string  `db:"sku" json:"sku"`
	ProductName  string  `db:"product_name" json:"product_name"`
	Category     string  `db:"category" json:"category"`
	Brand        string  `db:"brand" json:"brand"`
	ImageURL     string  `db:"image_url" json:"image_url"`
	SellingPrice float64 `db:"selling_price" json:"selling_price"`
	MRP          float64 `db:"mrp" json:"mrp"`
	Unit         string  `db:"unit" json:"unit"`
}

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
)

// Item picking statuses
const (
	PickingStatusPending = "pending"
	PickingStatusPicked  = "picked"
)

// Employee roles
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Employee account statuses
const (
	EmployeeStatusActive   = "active"
	EmployeeStatusInactive = "inactive"
)

// Presence statuses
const (
	PresencePresent    = "present"
	PresencePermission = "permission"
	PresenceOnField    = "on_field"
	PresenceAbsent     = "absent"
	PresenceOnLeave    = "on_leave"
)

// Stock transaction change types
const (
	ChangeTypeManualAdjustment    = "manual_adjustment"
	ChangeTypeSale                = "sale"
	ChangeTypeReversalRemoveItem  = "reversal_remove_item"
	ChangeTypeReversalOrderDelete = "reversal_order_delete"
	ChangeTypeQtyAdjustment       = "qty_adjustment"
)

// Modification types
const (
	ModTypeAddItem        = "add_item"
	ModTypeRemoveItem     = "remove_item"
	ModTypeQtyChange      = "qty_change"
	ModTypeStatusChange   = "status_change"
	ModTypeCustomerChange = "customer_change"
	ModTypeDeleteOrder    = "delete_order"
)

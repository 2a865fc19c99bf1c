package service

import (
	"context"
	"time"

	"warehouse-service/internal/models"
)

// ProductFilter narrows product listings.
type ProductFilter struct {
	Search   string
	Category string
	Zone     string
	LowStock bool
	Limit    int
	Skip     int
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	Status string
	Limit  int
	Skip   int
}

// CatalogueFilter narrows the public catalogue listing.
type CatalogueFilter struct {
	Search   string
	Category string
	Limit    int
	Skip     int
}

// Tx gives transaction-scoped access to the datastore. Every write made
// through a Tx commits or rolls back as one unit; the services rely on
// this to keep stock movements paired with their audit records.
type Tx interface {
	ProductBySKUForUpdate(ctx context.Context, sku string) (*models.Product, error)
	SetProductQuantity(ctx context.Context, sku string, quantity int, at time.Time) error
	AppendStockTransaction(ctx context.Context, txn *models.StockTransaction) error

	OrderByID(ctx context.Context, orderID string) (*models.Order, error)
	MarkItemPicked(ctx context.Context, orderID, itemID string) (bool, error)
	UnpickedItemCount(ctx context.Context, orderID string) (int, error)
	SetOrderStatus(ctx context.Context, orderID, status string) error
	SetOrderCustomer(ctx context.Context, orderID, name string) error
	InsertOrderItem(ctx context.Context, item *models.OrderItem) error
	SetItemQuantity(ctx context.Context, orderID, itemID string, quantity int) error
	DeleteOrderItem(ctx context.Context, orderID, itemID string) error
	DeleteOrder(ctx context.Context, orderID string) error
	AppendModificationLog(ctx context.Context, entry *models.ModificationLog) error
}

// Repository is the persistence contract consumed by the services.
// internal/store implements it on postgres; tests substitute an
// in-memory implementation.
type Repository interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	CreateProduct(ctx context.Context, p *models.Product) error
	ProductByID(ctx context.Context, id string) (*models.Product, error)
	ProductBySKU(ctx context.Context, sku string) (*models.Product, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error)
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	ProductSKUTaken(ctx context.Context, sku, excludeID string) (bool, error)
	Categories(ctx context.Context) ([]string, error)
	Zones(ctx context.Context) ([]string, error)
	PublicCatalogue(ctx context.Context, f CatalogueFilter) ([]models.PublicProduct, error)

	CreateOrder(ctx context.Context, o *models.Order) error
	OrderByID(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error)
	OrderNumberExists(ctx context.Context, orderNumber string) (bool, error)
	MaxOrderNumberSeq(ctx context.Context) (int, error)
	ModificationLogs(ctx context.Context, orderID string, limit int) ([]models.ModificationLog, error)

	CreateEmployee(ctx context.Context, e *models.Employee) error
	EmployeeByID(ctx context.Context, id string) (*models.Employee, error)
	EmployeeByEmail(ctx context.Context, email string) (*models.Employee, error)
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
	SetEmployeeStatus(ctx context.Context, id, status string) error
	SetEmployeePresence(ctx context.Context, id, status, updatedBy string, at time.Time) error
	AppendPresenceLog(ctx context.Context, entry *models.PresenceLog) error
	PresenceLogs(ctx context.Context, limit int) ([]models.PresenceLog, error)

	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
	ZoneDistribution(ctx context.Context) ([]models.ZoneStats, error)
	CategoryDistribution(ctx context.Context, limit int) ([]models.CategoryStats, error)
	RecentStockTransactions(ctx context.Context, limit int) ([]models.StockTransaction, error)
	LowStockProducts(ctx context.Context, limit int) ([]models.LowStockProduct, error)
}

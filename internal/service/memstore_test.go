package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"warehouse-service/internal/models"
)

// memStore is an in-memory Repository used by the service tests.
// WithinTx snapshots the whole state up front and restores it when the
// callback fails, matching the rollback semantics of the postgres store.
type memStore struct {
	mu        sync.Mutex
	products  map[string]*models.Product
	orders    map[string]*models.Order
	employees map[string]*models.Employee
	stockTxns []models.StockTransaction
	modLogs   []models.ModificationLog
	presence  []models.PresenceLog
	nextSeq   int64
}

func newMemStore() *memStore {
	return &memStore{
		products:  make(map[string]*models.Product),
		orders:    make(map[string]*models.Order),
		employees: make(map[string]*models.Employee),
	}
}

type memSnapshot struct {
	products  map[string]*models.Product
	orders    map[string]*models.Order
	employees map[string]*models.Employee
	stockTxns []models.StockTransaction
	modLogs   []models.ModificationLog
	presence  []models.PresenceLog
	nextSeq   int64
}

func copyProduct(p *models.Product) *models.Product {
	cp := *p
	return &cp
}

func copyOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	return &cp
}

func copyEmployee(e *models.Employee) *models.Employee {
	cp := *e
	return &cp
}

func (m *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		products:  make(map[string]*models.Product, len(m.products)),
		orders:    make(map[string]*models.Order, len(m.orders)),
		employees: make(map[string]*models.Employee, len(m.employees)),
		stockTxns: append([]models.StockTransaction(nil), m.stockTxns...),
		modLogs:   append([]models.ModificationLog(nil), m.modLogs...),
		presence:  append([]models.PresenceLog(nil), m.presence...),
		nextSeq:   m.nextSeq,
	}
	for id, p := range m.products {
		snap.products[id] = copyProduct(p)
	}
	for id, o := range m.orders {
		snap.orders[id] = copyOrder(o)
	}
	for id, e := range m.employees {
		snap.employees[id] = copyEmployee(e)
	}
	return snap
}

func (m *memStore) restore(snap memSnapshot) {
	m.products = snap.products
	m.orders = snap.orders
	m.employees = snap.employees
	m.stockTxns = snap.stockTxns
	m.modLogs = snap.modLogs
	m.presence = snap.presence
	m.nextSeq = snap.nextSeq
}

func (m *memStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(&memTx{s: m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *memStore) productBySKULocked(sku string) (*models.Product, error) {
	for _, p := range m.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, fmt.Errorf("product %s: %w", sku, ErrNotFound)
}

func (m *memStore) CreateProduct(ctx context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.productBySKULocked(p.SKU); err == nil {
		return fmt.Errorf("product sku %s: %w", p.SKU, ErrConflict)
	}
	m.products[p.ID] = copyProduct(p)
	return nil
}

func (m *memStore) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return copyProduct(p), nil
}

func (m *memStore) ProductBySKU(ctx context.Context, sku string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.productBySKULocked(sku)
	if err != nil {
		return nil, err
	}
	return copyProduct(p), nil
}

func (m *memStore) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Product{}
	for _, p := range m.products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Zone != "" && p.Zone != f.Zone {
			continue
		}
		if f.LowStock && p.QuantityAvailable > p.ReorderLevel {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.ProductName), strings.ToLower(f.Search)) &&
			!strings.Contains(strings.ToLower(p.SKU), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, *copyProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastUpdated.After(out[j].LastUpdated) })
	return out, nil
}

func (m *memStore) UpdateProduct(ctx context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return fmt.Errorf("product %s: %w", p.ID, ErrNotFound)
	}
	m.products[p.ID] = copyProduct(p)
	return nil
}

func (m *memStore) DeleteProduct(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	delete(m.products, id)
	return nil
}

func (m *memStore) ProductSKUTaken(ctx context.Context, sku, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.SKU == sku && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Categories(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, p := range m.products {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memStore) Zones(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, p := range m.products {
		if p.Zone != "" && !seen[p.Zone] {
			seen[p.Zone] = true
			out = append(out, p.Zone)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memStore) PublicCatalogue(ctx context.Context, f CatalogueFilter) ([]models.PublicProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.PublicProduct{}
	for _, p := range m.products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.ProductName), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, models.PublicProduct{
			SKU:          p.SKU,
			ProductName:  p.ProductName,
			Category:     p.Category,
			Brand:        p.Brand,
			ImageURL:     p.ImageURL,
			SellingPrice: p.SellingPrice,
			MRP:          p.MRP,
			Unit:         p.Unit,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
	return out, nil
}

func (m *memStore) CreateOrder(ctx context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.orders {
		if existing.OrderNumber == o.OrderNumber {
			return fmt.Errorf("order number %s: %w", o.OrderNumber, ErrConflict)
		}
	}
	cp := copyOrder(o)
	for i := range cp.Items {
		m.nextSeq++
		cp.Items[i].Seq = m.nextSeq
	}
	m.orders[o.ID] = cp
	return nil
}

func (m *memStore) orderByIDLocked(id string) (*models.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return o, nil
}

func (m *memStore) OrderByID(ctx context.Context, id string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, err := m.orderByIDLocked(id)
	if err != nil {
		return nil, err
	}
	return copyOrder(o), nil
}

func (m *memStore) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Order{}
	for _, o := range m.orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, *copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) OrderNumberExists(ctx context.Context, orderNumber string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.OrderNumber == orderNumber {
			return true, nil
		}
	}
	return false, nil
}

var orderNumberPattern = regexp.MustCompile(`^ORD-(\d{4})$`)

func (m *memStore) MaxOrderNumberSeq(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	max := 0
	for _, o := range m.orders {
		match := orderNumberPattern.FindStringSubmatch(o.OrderNumber)
		if match == nil {
			continue
		}
		n, _ := strconv.Atoi(match[1])
		if n > max {
			max = n
		}
	}
	return max, nil
}

func (m *memStore) ModificationLogs(ctx context.Context, orderID string, limit int) ([]models.ModificationLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ModificationLog{}
	for i := len(m.modLogs) - 1; i >= 0 && len(out) < limit; i-- {
		if m.modLogs[i].OrderID == orderID {
			out = append(out, m.modLogs[i])
		}
	}
	return out, nil
}

func (m *memStore) CreateEmployee(ctx context.Context, e *models.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.employees {
		if existing.Email == e.Email {
			return fmt.Errorf("employee email %s: %w", e.Email, ErrConflict)
		}
	}
	m.employees[e.ID] = copyEmployee(e)
	return nil
}

func (m *memStore) EmployeeByID(ctx context.Context, id string) (*models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.employees[id]
	if !ok {
		return nil, fmt.Errorf("employee %s: %w", id, ErrNotFound)
	}
	return copyEmployee(e), nil
}

func (m *memStore) EmployeeByEmail(ctx context.Context, email string) (*models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.employees {
		if e.Email == email {
			return copyEmployee(e), nil
		}
	}
	return nil, fmt.Errorf("employee %s: %w", email, ErrNotFound)
}

func (m *memStore) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Employee{}
	for _, e := range m.employees {
		out = append(out, *copyEmployee(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) DeleteEmployee(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[id]; !ok {
		return fmt.Errorf("employee %s: %w", id, ErrNotFound)
	}
	delete(m.employees, id)
	return nil
}

func (m *memStore) SetEmployeeStatus(ctx context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.employees[id]
	if !ok {
		return fmt.Errorf("employee %s: %w", id, ErrNotFound)
	}
	e.Status = status
	return nil
}

func (m *memStore) SetEmployeePresence(ctx context.Context, id, status, updatedBy string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.employees[id]
	if !ok {
		return fmt.Errorf("employee %s: %w", id, ErrNotFound)
	}
	e.PresenceStatus = status
	e.PresenceUpdatedAt = &at
	e.PresenceUpdatedBy = updatedBy
	return nil
}

func (m *memStore) AppendPresenceLog(ctx context.Context, entry *models.PresenceLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.presence = append(m.presence, *entry)
	return nil
}

func (m *memStore) PresenceLogs(ctx context.Context, limit int) ([]models.PresenceLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.PresenceLog{}
	for i := len(m.presence) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.presence[i])
	}
	return out, nil
}

func (m *memStore) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &models.DashboardStats{TotalProducts: len(m.products)}
	for _, p := range m.products {
		stats.TotalStockUnits += p.QuantityAvailable
		if p.QuantityAvailable <= p.ReorderLevel {
			stats.LowStockItems++
		}
	}
	for _, o := range m.orders {
		switch o.Status {
		case models.OrderStatusPending:
			stats.OrdersPending++
		case models.OrderStatusCompleted:
			stats.OrdersCompleted++
		}
	}
	for _, txn := range m.stockTxns {
		if txn.ChangeType == models.ChangeTypeSale {
			stats.SalesToday += -txn.QuantityChanged
		}
	}
	return stats, nil
}

func (m *memStore) ZoneDistribution(ctx context.Context) ([]models.ZoneStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byZone := map[string]*models.ZoneStats{}
	for _, p := range m.products {
		zs, ok := byZone[p.Zone]
		if !ok {
			zs = &models.ZoneStats{Zone: p.Zone}
			byZone[p.Zone] = zs
		}
		zs.Count++
		zs.Stock += p.QuantityAvailable
	}
	out := []models.ZoneStats{}
	for _, zs := range byZone {
		out = append(out, *zs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Zone < out[j].Zone })
	return out, nil
}

func (m *memStore) CategoryDistribution(ctx context.Context, limit int) ([]models.CategoryStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byCategory := map[string]int{}
	for _, p := range m.products {
		byCategory[p.Category]++
	}
	out := []models.CategoryStats{}
	for category, count := range byCategory {
		out = append(out, models.CategoryStats{Category: category, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) RecentStockTransactions(ctx context.Context, limit int) ([]models.StockTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.StockTransaction{}
	for i := len(m.stockTxns) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.stockTxns[i])
	}
	return out, nil
}

func (m *memStore) LowStockProducts(ctx context.Context, limit int) ([]models.LowStockProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.LowStockProduct{}
	for _, p := range m.products {
		if p.QuantityAvailable > p.ReorderLevel {
			continue
		}
		out = append(out, models.LowStockProduct{
			SKU:               p.SKU,
			ProductName:       p.ProductName,
			QuantityAvailable: p.QuantityAvailable,
			ReorderLevel:      p.ReorderLevel,
			FullLocationCode:  p.FullLocationCode,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].QuantityAvailable-out[i].ReorderLevel < out[j].QuantityAvailable-out[j].ReorderLevel
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// memTx operates on the store while WithinTx holds the lock.
type memTx struct {
	s *memStore
}

func (t *memTx) ProductBySKUForUpdate(ctx context.Context, sku string) (*models.Product, error) {
	p, err := t.s.productBySKULocked(sku)
	if err != nil {
		return nil, err
	}
	return copyProduct(p), nil
}

func (t *memTx) SetProductQuantity(ctx context.Context, sku string, quantity int, at time.Time) error {
	p, err := t.s.productBySKULocked(sku)
	if err != nil {
		return err
	}
	p.QuantityAvailable = quantity
	p.LastUpdated = at
	return nil
}

func (t *memTx) AppendStockTransaction(ctx context.Context, txn *models.StockTransaction) error {
	t.s.stockTxns = append(t.s.stockTxns, *txn)
	return nil
}

func (t *memTx) OrderByID(ctx context.Context, orderID string) (*models.Order, error) {
	o, err := t.s.orderByIDLocked(orderID)
	if err != nil {
		return nil, err
	}
	return copyOrder(o), nil
}

func (t *memTx) MarkItemPicked(ctx context.Context, orderID, itemID string) (bool, error) {
	o, err := t.s.orderByIDLocked(orderID)
	if err != nil {
		return false, err
	}
	for i := range o.Items {
		if o.Items[i].ID == itemID && o.Items[i].PickingStatus == models.PickingStatusPending {
			o.Items[i].PickingStatus = models.PickingStatusPicked
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) UnpickedItemCount(ctx context.Context, orderID string) (int, error) {
	o, err := t.s.orderByIDLocked(orderID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, item := range o.Items {
		if item.PickingStatus == models.PickingStatusPending {
			count++
		}
	}
	return count, nil
}

func (t *memTx) SetOrderStatus(ctx context.Context, orderID, status string) error {
	o, err := t.s.orderByIDLocked(orderID)
	if err != nil {
		return err
	}
	o.Status = status
	return nil
}

func (t *memTx) SetOrderCustomer(ctx context.Context, orderID, name string) error {
	o, err := t.s.orderByIDLocked(orderID)
	if err != nil {
		return err
	}
	o.CustomerName = name
	return nil
}

func (t *memTx) InsertOrderItem(ctx context.Context, item *models.OrderItem) error {
	o, err := t.s.orderByIDLocked(item.OrderID)
	if err != nil {
		return err
	}
	for _, existing := range o.Items {
		if existing.SKU == item.SKU {
			return fmt.Errorf("item %s on order %s: %w", item.SKU, item.OrderID, ErrConflict)
		}
	}
	cp := *item
	t.s.nextSeq++
	cp.Seq = t.s.nextSeq
	o.Items = append(o.Items, cp)
	return nil
}

func (t *memTx) SetItemQuantity(ctx context.Context, orderID, itemID string, quantity int) error {
	o, err := t.s.orderByIDLocked(orderID)
	if err != nil {
		return err
	}
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			o.Items[i].QuantityRequired = quantity
			return nil
		}
	}
	return fmt.Errorf("order item %s: %w", itemID, ErrNotFound)
}

func (t *memTx) DeleteOrderItem(ctx context.Context, orderID, itemID string) error {
	o, err := t.s.orderByIDLocked(orderID)
	if err != nil {
		return err
	}
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			o.Items = append(o.Items[:i], o.Items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("order item %s: %w", itemID, ErrNotFound)
}

func (t *memTx) DeleteOrder(ctx context.Context, orderID string) error {
	if _, err := t.s.orderByIDLocked(orderID); err != nil {
		return err
	}
	delete(t.s.orders, orderID)
	return nil
}

func (t *memTx) AppendModificationLog(ctx context.Context, entry *models.ModificationLog) error {
	t.s.modLogs = append(t.s.modLogs, *entry)
	return nil
}

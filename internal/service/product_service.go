package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"warehouse-service/internal/models"
	"warehouse-service/internal/redisclient"
	"warehouse-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductService handles product catalogue and stock endpoints.
type ProductService struct {
	repo   Repository
	ledger *StockLedger
	cache  *redisclient.Client
	logger *zap.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo Repository, ledger *StockLedger, cache *redisclient.Client) *ProductService {
	return &ProductService{
		repo:   repo,
		ledger: ledger,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// ProductRequest is the payload for creating or fully updating a product.
type ProductRequest struct {
	SKU               string  `json:"sku" binding:"required"`
	ProductName       string  `json:"product_name" binding:"required"`
	Category          string  `json:"category" binding:"required"`
	Brand             string  `json:"brand"`
	Zone              string  `json:"zone" binding:"required"`
	Aisle             int     `json:"aisle" binding:"required,min=1,max=99"`
	Rack              int     `json:"rack" binding:"required,min=1,max=99"`
	Shelf             int     `json:"shelf" binding:"required,min=1,max=9"`
	Bin               int     `json:"bin" binding:"required,min=1,max=99"`
	QuantityAvailable int     `json:"quantity_available" binding:"min=0"`
	ReorderLevel      int     `json:"reorder_level" binding:"min=0"`
	Supplier          string  `json:"supplier"`
	ImageURL          string  `json:"image_url"`
	SellingPrice      float64 `json:"selling_price" binding:"min=0"`
	MRP               float64 `json:"mrp" binding:"min=0"`
	Unit              string  `json:"unit"`
	GSTPercentage     float64 `json:"gst_percentage" binding:"min=0,max=100"`
}

// LocationCode derives the human-readable storage coordinate string:
// {Zone}-{Aisle 2d}-R{Rack 2d}-S{Shelf}-B{Bin 2d}, e.g. A-03-R12-S2-B07.
func LocationCode(zone string, aisle, rack, shelf, bin int) string {
	return fmt.Sprintf("%s-%02d-R%02d-S%d-B%02d", zone, aisle, rack, shelf, bin)
}

func (r *ProductRequest) validate() error {
	if strings.TrimSpace(r.SKU) == "" || strings.TrimSpace(r.ProductName) == "" ||
		strings.TrimSpace(r.Category) == "" || strings.TrimSpace(r.Zone) == "" {
		return fmt.Errorf("sku, product_name, category and zone are required: %w", ErrInvalidInput)
	}
	if r.Aisle < 1 || r.Aisle > 99 || r.Rack < 1 || r.Rack > 99 {
		return fmt.Errorf("aisle and rack must be within 1..99: %w", ErrInvalidInput)
	}
	if r.Shelf < 1 || r.Shelf > 9 {
		return fmt.Errorf("shelf must be within 1..9: %w", ErrInvalidInput)
	}
	if r.Bin < 1 || r.Bin > 99 {
		return fmt.Errorf("bin must be within 1..99: %w", ErrInvalidInput)
	}
	if r.QuantityAvailable < 0 || r.ReorderLevel < 0 {
		return fmt.Errorf("quantities cannot be negative: %w", ErrInvalidInput)
	}
	if r.SellingPrice < 0 || r.MRP < 0 {
		return fmt.Errorf("prices cannot be negative: %w", ErrInvalidInput)
	}
	if r.GSTPercentage < 0 || r.GSTPercentage > 100 {
		return fmt.Errorf("gst_percentage must be within 0..100: %w", ErrInvalidInput)
	}
	return nil
}

func (r *ProductRequest) toProduct(id string, now time.Time) *models.Product {
	unit := r.Unit
	if unit == "" {
		unit = "piece"
	}
	return &models.Product{
		ID:                id,
		SKU:               strings.TrimSpace(r.SKU),
		ProductName:       strings.TrimSpace(r.ProductName),
		Category:          strings.TrimSpace(r.Category),
		Brand:             r.Brand,
		Zone:              strings.TrimSpace(r.Zone),
		Aisle:             r.Aisle,
		Rack:              r.Rack,
		Shelf:             r.Shelf,
		Bin:               r.Bin,
		FullLocationCode:  LocationCode(strings.TrimSpace(r.Zone), r.Aisle, r.Rack, r.Shelf, r.Bin),
		QuantityAvailable: r.QuantityAvailable,
		ReorderLevel:      r.ReorderLevel,
		Supplier:          r.Supplier,
		ImageURL:          r.ImageURL,
		SellingPrice:      r.SellingPrice,
		MRP:               r.MRP,
		Unit:              unit,
		GSTPercentage:     r.GSTPercentage,
		LastUpdated:       now,
	}
}

// Create adds a product. Duplicate skus are rejected with ErrConflict.
// Admin only.
func (s *ProductService) Create(ctx context.Context, req *ProductRequest, actor models.Actor) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.Create")
	defer span.End()

	if !actor.IsAdmin() {
		return nil, fmt.Errorf("admin access required: %w", ErrForbidden)
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	taken, err := s.repo.ProductSKUTaken(ctx, strings.TrimSpace(req.SKU), "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("SKU %s already exists: %w", req.SKU, ErrConflict)
	}

	product := req.toProduct(uuid.New().String(), time.Now().UTC())
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidateCatalogueCache(ctx)
	return product, nil
}

// Get retrieves a product by id.
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.ProductByID(ctx, id)
}

// List returns products matching the filter. Limits are capped at 500.
func (s *ProductService) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	if f.Limit <= 0 {
		f.Limit = 100
	}
	if f.Limit > 500 {
		f.Limit = 500
	}
	return s.repo.ListProducts(ctx, f)
}

// Update replaces all editable fields of a product, recomputing the
// location code. Admin only.
func (s *ProductService) Update(ctx context.Context, id string, req *ProductRequest, actor models.Actor) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.Update")
	defer span.End()

	if !actor.IsAdmin() {
		return nil, fmt.Errorf("admin access required: %w", ErrForbidden)
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.ProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.ProductSKUTaken(ctx, strings.TrimSpace(req.SKU), id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("SKU %s already exists: %w", req.SKU, ErrConflict)
	}

	product := req.toProduct(existing.ID, time.Now().UTC())
	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.invalidateCatalogueCache(ctx)
	return product, nil
}

// Delete removes a product. Admin only.
func (s *ProductService) Delete(ctx context.Context, id string, actor models.Actor) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("admin access required: %w", ErrForbidden)
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidateCatalogueCache(ctx)
	return nil
}

// Categories lists distinct product categories.
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

// Zones lists distinct warehouse zones.
func (s *ProductService) Zones(ctx context.Context) ([]string, error) {
	return s.repo.Zones(ctx)
}

// AdjustStock applies a direct signed stock correction through the
// ledger. The reason becomes the transaction change type; empty reasons
// default to manual_adjustment. Admin only.
func (s *ProductService) AdjustStock(ctx context.Context, productID string, quantity int, reason string, actor models.Actor) (int, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.AdjustStock")
	defer span.End()

	if !actor.IsAdmin() {
		return 0, fmt.Errorf("admin access required: %w", ErrForbidden)
	}

	product, err := s.repo.ProductByID(ctx, productID)
	if err != nil {
		return 0, err
	}

	changeType := strings.TrimSpace(reason)
	if changeType == "" {
		changeType = models.ChangeTypeManualAdjustment
	}

	newQty, err := s.ledger.Adjust(ctx, product.SKU, quantity, changeType, actor)
	if err != nil {
		return 0, err
	}

	s.invalidateCatalogueCache(ctx)
	return newQty, nil
}

// PublicCatalogue returns the unauthenticated catalogue view, served
// from cache when possible.
func (s *ProductService) PublicCatalogue(ctx context.Context, f CatalogueFilter) ([]models.PublicProduct, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 100 {
		f.Limit = 100
	}

	key := fmt.Sprintf("catalogue:%s:%s:%d:%d", f.Search, f.Category, f.Limit, f.Skip)
	if s.cache != nil {
		var cached []models.PublicProduct
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("Catalogue cache read failed", zap.Error(err))
		} else if hit {
			return cached, nil
		}
	}

	products, err := s.repo.PublicCatalogue(ctx, f)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, products, time.Minute); err != nil {
			s.logger.Warn("Catalogue cache write failed", zap.Error(err))
		}
	}
	return products, nil
}

func (s *ProductService) invalidateCatalogueCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePrefix(ctx, "catalogue:"); err != nil {
		s.logger.Warn("Catalogue cache invalidation failed", zap.Error(err))
	}
	if err := s.cache.Delete(ctx, "dashboard:stats"); err != nil {
		s.logger.Warn("Dashboard cache invalidation failed", zap.Error(err))
	}
}

package service

import (
	"context"
	"time"

	"warehouse-service/internal/models"
	"warehouse-service/internal/redisclient"
	"warehouse-service/internal/util"

	"go.uber.org/zap"
)

const statsCacheKey = "dashboard:stats"

// DashboardService serves the read-only aggregates for the dashboard.
type DashboardService struct {
	repo   Repository
	cache  *redisclient.Client
	logger *zap.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(repo Repository, cache *redisclient.Client) *DashboardService {
	return &DashboardService{
		repo:   repo,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// Stats returns the dashboard summary, served from cache when fresh.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.Stats")
	defer span.End()

	if s.cache != nil {
		var cached models.DashboardStats
		hit, err := s.cache.GetJSON(ctx, statsCacheKey, &cached)
		if err != nil {
			s.logger.Warn("Stats cache read failed", zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	stats, err := s.repo.DashboardStats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, statsCacheKey, stats, 30*time.Second); err != nil {
			s.logger.Warn("Stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// ZoneDistribution returns product count and stock per zone.
func (s *DashboardService) ZoneDistribution(ctx context.Context) ([]models.ZoneStats, error) {
	return s.repo.ZoneDistribution(ctx)
}

// CategoryDistribution returns the top product categories by count.
func (s *DashboardService) CategoryDistribution(ctx context.Context) ([]models.CategoryStats, error) {
	return s.repo.CategoryDistribution(ctx, 10)
}

// RecentTransactions returns the latest stock movements.
func (s *DashboardService) RecentTransactions(ctx context.Context) ([]models.StockTransaction, error) {
	return s.repo.RecentStockTransactions(ctx, 20)
}

// LowStockItems returns products at or below their reorder level.
func (s *DashboardService) LowStockItems(ctx context.Context) ([]models.LowStockProduct, error) {
	return s.repo.LowStockProducts(ctx, 20)
}

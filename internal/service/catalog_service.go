package service

import (
	"context"
	"encoding/json"
	"time"

	"ordering-service/internal/models"
	"ordering-service/internal/redisclient"
	"ordering-service/internal/util"

	"go.uber.org/zap"
)

// CatalogStore is the slice of the store the catalog service depends on
type CatalogStore interface {
	GetCategories(ctx context.Context) ([]models.Category, error)
}

// CatalogService serves the read-only category/product catalog with a
// read-through Redis cache. A cache outage degrades to database reads.
type CatalogService struct {
	store  CatalogStore
	cache  *redisclient.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store CatalogStore, cache *redisclient.Client, ttl time.Duration) *CatalogService {
	return &CatalogService{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: util.GetLogger(),
	}
}

// ListCategories returns all categories with their products
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	if s.cache != nil {
		payload, ok, err := s.cache.GetCatalog(ctx)
		if err != nil {
			s.logger.Warn("Catalog cache read failed", zap.Error(err))
		} else if ok {
			var categories []models.Category
			if uerr := json.Unmarshal(payload, &categories); uerr == nil {
				util.CatalogCacheHitsTotal.Inc()
				return categories, nil
			} else {
				s.logger.Warn("Discarding undecodable catalog cache entry", zap.Error(uerr))
			}
		}
	}

	categories, err := s.store.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	util.CatalogCacheMissesTotal.Inc()

	if s.cache != nil {
		if payload, err := json.Marshal(categories); err == nil {
			if err := s.cache.SetCatalog(ctx, payload, s.ttl); err != nil {
				s.logger.Warn("Catalog cache write failed", zap.Error(err))
			}
		}
	}

	return categories, nil
}

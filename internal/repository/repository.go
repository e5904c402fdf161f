package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"pos-backoffice-service/internal/models"
)

// Cache TTL constants
const (
	InventoryCacheTTL     = 5 * time.Minute  // Single-record lookups - invalidated on every mutation
	InventoryListCacheTTL = 2 * time.Minute  // List cache - shorter due to frequent changes
	AlertCacheTTL         = 1 * time.Minute  // Alert lists - needs to be fresh
	SummaryCacheTTL       = 30 * time.Second // Org dashboards poll this
)

type InventoryRepository struct {
	db    *gorm.DB
	redis *redis.Client
	cache *cache.CacheLayer
}

func NewInventoryRepository(db *gorm.DB, redisClient *redis.Client) *InventoryRepository {
	repo := &InventoryRepository{
		db:    db,
		redis: redisClient,
	}

	// Initialize CacheLayer with the existing Redis client
	if redisClient != nil {
		cacheConfig := cache.CacheConfig{
			L1Enabled:  true,
			L1MaxItems: 5000,
			L1TTL:      30 * time.Second,
			DefaultTTL: InventoryCacheTTL,
			KeyPrefix:  "pos:inventory:",
		}
		repo.cache = cache.NewCacheLayerFromClient(redisClient, cacheConfig)
	}

	return repo
}

// WithTransaction runs fn against a repository bound to a single database
// transaction. Every mutating path on one (store, product) key goes through
// here so that layer reads and writes happen in one atomic unit of work.
func (r *InventoryRepository) WithTransaction(ctx context.Context, fn func(tx Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(txDB *gorm.DB) error {
		txRepo := &InventoryRepository{
			db:    txDB,
			redis: r.redis,
			cache: r.cache,
		}
		return fn(txRepo)
	})
}

// generateInventoryCacheKey creates a cache key for single-record lookups
func generateInventoryCacheKey(tenantID string, storeID, productID uuid.UUID) string {
	return fmt.Sprintf("record:%s:%s:%s", tenantID, storeID.String(), productID.String())
}

// invalidateInventoryCaches invalidates all caches related to one inventory key
func (r *InventoryRepository) invalidateInventoryCaches(ctx context.Context, tenantID string, storeID, productID uuid.UUID) {
	if r.cache == nil {
		return
	}

	_ = r.cache.Delete(ctx, generateInventoryCacheKey(tenantID, storeID, productID))

	// Invalidate list, alert and summary caches for this tenant (pattern-based)
	_ = r.cache.DeletePattern(ctx, fmt.Sprintf("record:list:%s:*", tenantID))
	_ = r.cache.DeletePattern(ctx, fmt.Sprintf("alerts:%s:*", tenantID))
	_ = r.cache.DeletePattern(ctx, fmt.Sprintf("summary:%s", tenantID))
}

// RedisHealth returns the health status of the Redis connection
func (r *InventoryRepository) RedisHealth(ctx context.Context) error {
	if r.redis == nil {
		return fmt.Errorf("redis not configured")
	}
	return r.redis.Ping(ctx).Err()
}

// CacheStats returns cache statistics
func (r *InventoryRepository) CacheStats() *cache.CacheStats {
	if r.cache == nil {
		return nil
	}
	stats := r.cache.Stats()
	return &stats
}

// Migrate creates or updates the schema for every table this service owns.
func (r *InventoryRepository) Migrate() error {
	return r.db.AutoMigrate(
		&models.InventoryRecord{},
		&models.CostLayer{},
		&models.StockMovement{},
		&models.LowStockAlert{},
		&models.PriceChangeEvent{},
		&models.InventoryRevaluationEvent{},
		&models.NotificationOutbox{},
		&models.Product{},
		&models.Store{},
		&models.Transaction{},
		&models.TransactionItem{},
	)
}

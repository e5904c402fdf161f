package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"

	"pos-backoffice-service/internal/models"
)

// ========== Inventory Record Operations ==========

// CreateRecord creates a new inventory record
func (r *InventoryRepository) CreateRecord(ctx context.Context, tenantID string, record *models.InventoryRecord) error {
	record.TenantID = tenantID
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return err
	}

	r.invalidateInventoryCaches(ctx, tenantID, record.StoreID, record.ProductID)
	return nil
}

// GetRecordByID retrieves an inventory record by ID
func (r *InventoryRepository) GetRecordByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.InventoryRecord, error) {
	var record models.InventoryRecord
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetRecordByKey retrieves the inventory record for a (store, product) pair
// with caching.
func (r *InventoryRepository) GetRecordByKey(ctx context.Context, tenantID string, storeID, productID uuid.UUID) (*models.InventoryRecord, error) {
	cacheKey := generateInventoryCacheKey(tenantID, storeID, productID)

	if r.redis != nil {
		val, err := r.redis.Get(ctx, "pos:inventory:"+cacheKey).Result()
		if err == nil {
			var record models.InventoryRecord
			if err := json.Unmarshal([]byte(val), &record); err == nil {
				return &record, nil
			}
		}
	}

	var record models.InventoryRecord
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND store_id = ? AND product_id = ?", tenantID, storeID, productID).
		First(&record).Error
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, marshalErr := json.Marshal(record); marshalErr == nil {
			r.redis.Set(ctx, "pos:inventory:"+cacheKey, data, InventoryCacheTTL)
		}
	}

	return &record, nil
}

// GetRecordByIDForUpdate loads a record under a row lock. Must run inside
// WithTransaction; the lock serializes all mutations for the key until commit.
func (r *InventoryRepository) GetRecordByIDForUpdate(ctx context.Context, tenantID string, id uuid.UUID) (*models.InventoryRecord, error) {
	var record models.InventoryRecord
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetRecordByKeyForUpdate loads a (store, product) record under a row lock.
func (r *InventoryRepository) GetRecordByKeyForUpdate(ctx context.Context, tenantID string, storeID, productID uuid.UUID) (*models.InventoryRecord, error) {
	var record models.InventoryRecord
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND store_id = ? AND product_id = ?", tenantID, storeID, productID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// SaveRecord persists the full record state and invalidates caches
func (r *InventoryRepository) SaveRecord(ctx context.Context, tenantID string, record *models.InventoryRecord) error {
	record.TenantID = tenantID
	record.UpdatedAt = time.Now()

	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return err
	}

	r.invalidateInventoryCaches(ctx, tenantID, record.StoreID, record.ProductID)
	return nil
}

// DeleteRecord soft deletes an inventory record and hard deletes its layers.
// Movement and event logs are retained.
func (r *InventoryRepository) DeleteRecord(ctx context.Context, tenantID string, id uuid.UUID) error {
	record, err := r.GetRecordByID(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND store_id = ? AND product_id = ?", tenantID, record.StoreID, record.ProductID).
		Delete(&models.CostLayer{}).Error; err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.InventoryRecord{}).Error; err != nil {
		return err
	}

	r.invalidateInventoryCaches(ctx, tenantID, record.StoreID, record.ProductID)
	return nil
}

// ListRecords retrieves inventory records with pagination
func (r *InventoryRepository) ListRecords(ctx context.Context, tenantID string, storeID *uuid.UUID, page, limit int) ([]models.InventoryRecord, int64, error) {
	var records []models.InventoryRecord
	var total int64
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)

	if storeID != nil {
		query = query.Where("store_id = ?", *storeID)
	}

	if err := query.Model(&models.InventoryRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page > 0 && limit > 0 {
		offset := (page - 1) * limit
		query = query.Offset(offset).Limit(limit)
	}

	err := query.Order("store_id ASC, product_id ASC").Find(&records).Error
	return records, total, err
}

// ========== Catalog Projections ==========

// GetProduct retrieves a catalog product (fallback-cost source)
func (r *InventoryRepository) GetProduct(ctx context.Context, tenantID string, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProductCost propagates a cost override to the catalog product
func (r *InventoryRepository) UpdateProductCost(ctx context.Context, tenantID string, productID uuid.UUID, cost decimal.Decimal, salePrice *decimal.Decimal) error {
	updates := map[string]interface{}{
		"cost":       cost,
		"updated_at": time.Now(),
	}
	if salePrice != nil {
		updates["sale_price"] = *salePrice
	}

	return r.db.WithContext(ctx).Model(&models.Product{}).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		Updates(updates).Error
}

// GetStore retrieves a store projection
func (r *InventoryRepository) GetStore(ctx context.Context, tenantID string, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

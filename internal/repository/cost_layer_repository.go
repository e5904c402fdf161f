package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pos-backoffice-service/internal/models"
)

// ========== Cost Layer Operations ==========

// CreateLayer creates a new FIFO cost layer
func (r *InventoryRepository) CreateLayer(ctx context.Context, tenantID string, layer *models.CostLayer) error {
	layer.TenantID = tenantID
	if layer.CreatedAt.IsZero() {
		layer.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(layer).Error
}

// ListLayers returns the non-empty layers for a key in FIFO consumption order:
// oldest created_at first, insertion sequence as the tiebreak.
func (r *InventoryRepository) ListLayers(ctx context.Context, tenantID string, storeID, productID uuid.UUID) ([]models.CostLayer, error) {
	var layers []models.CostLayer
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND store_id = ? AND product_id = ? AND quantity_remaining > 0",
			tenantID, storeID, productID).
		Order("created_at ASC, seq ASC").
		Find(&layers).Error
	return layers, err
}

// SaveLayer persists an updated quantity_remaining
func (r *InventoryRepository) SaveLayer(ctx context.Context, tenantID string, layer *models.CostLayer) error {
	layer.TenantID = tenantID
	return r.db.WithContext(ctx).Save(layer).Error
}

// DeleteLayer removes a fully consumed layer
func (r *InventoryRepository) DeleteLayer(ctx context.Context, tenantID string, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.CostLayer{}).Error
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pos-backoffice-service/internal/models"
)

// ========== Alert Operations ==========

// GetActiveAlert returns the single unresolved alert for a key, or
// gorm.ErrRecordNotFound when the key is healthy.
func (r *InventoryRepository) GetActiveAlert(ctx context.Context, tenantID string, storeID, productID uuid.UUID) (*models.LowStockAlert, error) {
	var alert models.LowStockAlert
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND store_id = ? AND product_id = ? AND is_resolved = ?",
			tenantID, storeID, productID, false).
		First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// CreateAlert creates a new alert
func (r *InventoryRepository) CreateAlert(ctx context.Context, tenantID string, alert *models.LowStockAlert) error {
	alert.TenantID = tenantID
	alert.CreatedAt = time.Now()
	alert.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Create(alert).Error
}

// SaveAlert persists alert updates (quantity ticks, status changes, resolution)
func (r *InventoryRepository) SaveAlert(ctx context.Context, tenantID string, alert *models.LowStockAlert) error {
	alert.TenantID = tenantID
	alert.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(alert).Error
}

// ListAlerts retrieves alerts with pagination and filtering
func (r *InventoryRepository) ListAlerts(ctx context.Context, tenantID string, status *models.AlertStatus, includeResolved bool, page, limit int) ([]models.LowStockAlert, int64, error) {
	var alerts []models.LowStockAlert
	var total int64

	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)

	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if !includeResolved {
		query = query.Where("is_resolved = ?", false)
	}

	if err := query.Model(&models.LowStockAlert{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page > 0 && limit > 0 {
		offset := (page - 1) * limit
		query = query.Offset(offset).Limit(limit)
	}

	err := query.Order("updated_at DESC").Find(&alerts).Error
	return alerts, total, err
}

// ResolveAlertsForKey force-resolves any unresolved alert for a key. Used when
// the inventory record itself is deleted.
func (r *InventoryRepository) ResolveAlertsForKey(ctx context.Context, tenantID string, storeID, productID uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.LowStockAlert{}).
		Where("tenant_id = ? AND store_id = ? AND product_id = ? AND is_resolved = ?",
			tenantID, storeID, productID, false).
		Updates(map[string]interface{}{
			"is_resolved": true,
			"resolved_at": &now,
			"updated_at":  now,
		}).Error
}

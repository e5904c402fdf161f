package repository

import (
	"context"
	"time"

	"pos-backoffice-service/internal/models"
)

// ========== Stock Movement Ledger ==========

// AppendMovement inserts one immutable audit row. Rows are never updated or
// deleted; failures here are the caller's AuditWriteFailure case.
func (r *InventoryRepository) AppendMovement(ctx context.Context, tenantID string, movement *models.StockMovement) error {
	movement.TenantID = tenantID
	if movement.OccurredAt.IsZero() {
		movement.OccurredAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(movement).Error
}

// QueryMovements reads the ledger with filtering and pagination, newest first
func (r *InventoryRepository) QueryMovements(ctx context.Context, tenantID string, query models.MovementQuery) ([]models.StockMovement, int64, error) {
	var movements []models.StockMovement
	var total int64

	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)

	if query.StoreID != nil {
		q = q.Where("store_id = ?", *query.StoreID)
	}
	if query.ProductID != nil {
		q = q.Where("product_id = ?", *query.ProductID)
	}
	if query.ActionType != nil {
		q = q.Where("action_type = ?", *query.ActionType)
	}
	if query.UserID != nil {
		q = q.Where("user_id = ?", *query.UserID)
	}
	if query.StartDate != nil {
		q = q.Where("occurred_at >= ?", *query.StartDate)
	}
	if query.EndDate != nil {
		q = q.Where("occurred_at <= ?", *query.EndDate)
	}

	if err := q.Model(&models.StockMovement{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if query.Page > 0 && query.Limit > 0 {
		offset := (query.Page - 1) * query.Limit
		q = q.Offset(offset).Limit(query.Limit)
	}

	err := q.Order("occurred_at DESC").Find(&movements).Error
	return movements, total, err
}

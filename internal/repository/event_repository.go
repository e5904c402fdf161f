package repository

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pos-backoffice-service/internal/models"
)

// ========== Valuation Event Logs ==========

// CreatePriceChangeEvent appends an immutable price/cost edit record
func (r *InventoryRepository) CreatePriceChangeEvent(ctx context.Context, tenantID string, event *models.PriceChangeEvent) error {
	event.TenantID = tenantID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

// CreateRevaluationEvent appends an immutable inventory value change record
func (r *InventoryRepository) CreateRevaluationEvent(ctx context.Context, tenantID string, event *models.InventoryRevaluationEvent) error {
	event.TenantID = tenantID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

// ListPriceHistory merges the price-change and revaluation streams for a
// product into one timeline, newest first.
func (r *InventoryRepository) ListPriceHistory(ctx context.Context, tenantID string, productID uuid.UUID, storeID *uuid.UUID, limit int) ([]models.PriceHistoryEntry, error) {
	priceQuery := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID)
	revalQuery := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID)

	if storeID != nil {
		priceQuery = priceQuery.Where("store_id = ? OR store_id IS NULL", *storeID)
		revalQuery = revalQuery.Where("store_id = ?", *storeID)
	}

	var priceEvents []models.PriceChangeEvent
	if err := priceQuery.Order("occurred_at DESC").Limit(limit).Find(&priceEvents).Error; err != nil {
		return nil, err
	}

	var revalEvents []models.InventoryRevaluationEvent
	if err := revalQuery.Order("occurred_at DESC").Limit(limit).Find(&revalEvents).Error; err != nil {
		return nil, err
	}

	entries := make([]models.PriceHistoryEntry, 0, len(priceEvents)+len(revalEvents))
	for _, e := range priceEvents {
		entries = append(entries, models.PriceHistoryEntry{
			Kind:         models.PriceHistoryKindPriceChange,
			OccurredAt:   e.OccurredAt,
			Source:       e.Source,
			OldCost:      e.OldCost,
			NewCost:      e.NewCost,
			OldSalePrice: e.OldSalePrice,
			NewSalePrice: e.NewSalePrice,
		})
	}
	for _, e := range revalEvents {
		delta := e.DeltaValue
		entries = append(entries, models.PriceHistoryEntry{
			Kind:       models.PriceHistoryKindRevaluation,
			OccurredAt: e.OccurredAt,
			Source:     e.Source,
			DeltaValue: &delta,
			Metadata:   e.Metadata,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].OccurredAt.After(entries[j].OccurredAt)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// ListRevaluationsInWindow returns all revaluation events for a store in a
// time window, for profit/loss aggregation.
func (r *InventoryRepository) ListRevaluationsInWindow(ctx context.Context, tenantID string, storeID uuid.UUID, start, end time.Time) ([]models.InventoryRevaluationEvent, error) {
	var events []models.InventoryRevaluationEvent
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND store_id = ? AND occurred_at >= ? AND occurred_at <= ?",
			tenantID, storeID, start, end).
		Order("occurred_at ASC").
		Find(&events).Error
	return events, err
}

// ========== Notification Outbox ==========

// EnqueueNotification appends an outbox row. Called inside the same
// transaction as the alert transition that produced it.
func (r *InventoryRepository) EnqueueNotification(ctx context.Context, tenantID string, notification *models.NotificationOutbox) error {
	notification.TenantID = tenantID
	notification.CreatedAt = time.Now()
	return r.db.WithContext(ctx).Create(notification).Error
}

// PendingNotifications returns unpublished outbox rows across all tenants,
// oldest first.
func (r *InventoryRepository) PendingNotifications(ctx context.Context, limit int) ([]models.NotificationOutbox, error) {
	var rows []models.NotificationOutbox
	err := r.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// MarkNotificationPublished stamps an outbox row as delivered
func (r *InventoryRepository) MarkNotificationPublished(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.NotificationOutbox{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"published_at": &now,
			"attempts":     gorm.Expr("attempts + 1"),
		}).Error
}

// BumpNotificationAttempts records a failed delivery attempt
func (r *InventoryRepository) BumpNotificationAttempts(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.NotificationOutbox{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}

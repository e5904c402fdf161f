package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pos-backoffice-service/internal/models"
)

// ========== Profit/Loss Aggregates ==========

// SalesTotals sums completed SALE transactions in a window: revenue from
// transaction totals, COGS from the FIFO cost captured on each item at sale
// time.
func (r *InventoryRepository) SalesTotals(ctx context.Context, tenantID string, storeID uuid.UUID, start, end time.Time) (decimal.Decimal, decimal.Decimal, error) {
	var revenueRow struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("COALESCE(SUM(total), 0) as total").
		Where("tenant_id = ? AND store_id = ? AND kind = ? AND status = ? AND created_at >= ? AND created_at <= ?",
			tenantID, storeID, models.TransactionKindSale, models.TransactionStatusCompleted, start, end).
		Scan(&revenueRow).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	var cogsRow struct {
		Total decimal.Decimal
	}
	err = r.db.WithContext(ctx).Model(&models.TransactionItem{}).
		Select("COALESCE(SUM(transaction_items.total_cost), 0) as total").
		Joins("JOIN transactions ON transactions.id = transaction_items.transaction_id").
		Where("transactions.tenant_id = ? AND transactions.store_id = ? AND transactions.kind = ? AND transactions.status = ? AND transactions.created_at >= ? AND transactions.created_at <= ?",
			tenantID, storeID, models.TransactionKindSale, models.TransactionStatusCompleted, start, end).
		Scan(&cogsRow).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return revenueRow.Total, cogsRow.Total, nil
}

// RefundTotals sums completed REFUND transactions in a window
func (r *InventoryRepository) RefundTotals(ctx context.Context, tenantID string, storeID uuid.UUID, start, end time.Time) (decimal.Decimal, int64, error) {
	var row struct {
		Total decimal.Decimal
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("COALESCE(SUM(total), 0) as total, COUNT(*) as count").
		Where("tenant_id = ? AND store_id = ? AND kind = ? AND status = ? AND created_at >= ? AND created_at <= ?",
			tenantID, storeID, models.TransactionKindRefund, models.TransactionStatusCompleted, start, end).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	return row.Total, row.Count, nil
}

// ========== Org Inventory Summary ==========

type storeAggRow struct {
	StoreID        uuid.UUID
	Records        int64
	TotalQuantity  int64
	TotalCostValue decimal.Decimal
}

type alertCountRow struct {
	StoreID uuid.UUID
	Status  models.AlertStatus
	Count   int64
}

// OrgInventorySummary computes the per-store aggregates behind org dashboards,
// cached briefly since every mutation would otherwise invalidate it anyway.
func (r *InventoryRepository) OrgInventorySummary(ctx context.Context, tenantID string) (*models.InventorySummary, error) {
	cacheKey := "pos:inventory:summary:" + tenantID
	if r.redis != nil {
		if val, err := r.redis.Get(ctx, cacheKey).Result(); err == nil {
			var summary models.InventorySummary
			if err := json.Unmarshal([]byte(val), &summary); err == nil {
				return &summary, nil
			}
		}
	}

	var aggs []storeAggRow
	err := r.db.WithContext(ctx).Model(&models.InventoryRecord{}).
		Select("store_id, COUNT(*) as records, COALESCE(SUM(quantity), 0) as total_quantity, COALESCE(SUM(total_cost_value), 0) as total_cost_value").
		Where("tenant_id = ?", tenantID).
		Group("store_id").
		Scan(&aggs).Error
	if err != nil {
		return nil, err
	}

	var alertCounts []alertCountRow
	err = r.db.WithContext(ctx).Model(&models.LowStockAlert{}).
		Select("store_id, status, COUNT(*) as count").
		Where("tenant_id = ? AND is_resolved = ?", tenantID, false).
		Group("store_id, status").
		Scan(&alertCounts).Error
	if err != nil {
		return nil, err
	}

	storeIDs := make([]uuid.UUID, 0, len(aggs))
	for _, a := range aggs {
		storeIDs = append(storeIDs, a.StoreID)
	}
	storeNames := make(map[uuid.UUID]string, len(storeIDs))
	if len(storeIDs) > 0 {
		var stores []models.Store
		if err := r.db.WithContext(ctx).
			Select("id, name").
			Where("tenant_id = ? AND id IN ?", tenantID, storeIDs).
			Find(&stores).Error; err != nil {
			return nil, err
		}
		for _, s := range stores {
			storeNames[s.ID] = s.Name
		}
	}

	summary := &models.InventorySummary{
		ActiveAlerts: make(map[string]int64),
		Stores:       make([]models.StoreInventorySummary, 0, len(aggs)),
	}
	perStoreAlerts := make(map[uuid.UUID]map[models.AlertStatus]int64)
	for _, ac := range alertCounts {
		summary.ActiveAlerts[string(ac.Status)] += ac.Count
		if perStoreAlerts[ac.StoreID] == nil {
			perStoreAlerts[ac.StoreID] = make(map[models.AlertStatus]int64)
		}
		perStoreAlerts[ac.StoreID][ac.Status] = ac.Count
	}

	totalCost := decimal.Zero
	for _, a := range aggs {
		counts := perStoreAlerts[a.StoreID]
		summary.Stores = append(summary.Stores, models.StoreInventorySummary{
			StoreID:        a.StoreID,
			StoreName:      storeNames[a.StoreID],
			Records:        a.Records,
			TotalQuantity:  a.TotalQuantity,
			TotalCostValue: a.TotalCostValue,
			LowStock:       counts[models.AlertStatusLowStock],
			OutOfStock:     counts[models.AlertStatusOutOfStock],
			Overstocked:    counts[models.AlertStatusOverstocked],
		})
		summary.TotalRecords += a.Records
		summary.TotalQuantity += a.TotalQuantity
		totalCost = totalCost.Add(a.TotalCostValue)
	}
	summary.TotalCostValue = totalCost

	if r.redis != nil {
		if data, marshalErr := json.Marshal(summary); marshalErr == nil {
			r.redis.Set(ctx, cacheKey, data, SummaryCacheTTL)
		}
	}

	return summary, nil
}

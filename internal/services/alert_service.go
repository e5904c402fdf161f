package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pos-backoffice-service/internal/models"
	"pos-backoffice-service/internal/repository"
)

// AlertEngine keeps the persisted alert state of every (store, product) pair in
// sync with its derived stock-health category and enqueues notifications on
// category transitions only, never on quantity ticks within a category.
type AlertEngine struct {
	repo repository.Store
}

// NewAlertEngine creates a new AlertEngine
func NewAlertEngine(repo repository.Store) *AlertEngine {
	return &AlertEngine{repo: repo}
}

// SyncTx reconciles alert state for a record inside the caller's transaction.
// Calling it twice with no intervening mutation changes nothing and enqueues
// nothing. Returns the active alert after reconciliation, nil when healthy.
func (e *AlertEngine) SyncTx(ctx context.Context, tx repository.Store, tenantID string, record *models.InventoryRecord) (*models.LowStockAlert, error) {
	status := models.DeriveAlertStatus(record.Quantity, record.MinStockLevel, record.MaxStockLevel)

	active, err := tx.GetActiveAlert(ctx, tenantID, record.StoreID, record.ProductID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	switch {
	case status.IsAlerting() && active == nil:
		alert := &models.LowStockAlert{
			StoreID:       record.StoreID,
			ProductID:     record.ProductID,
			Status:        status,
			CurrentStock:  record.Quantity,
			MinStockLevel: record.MinStockLevel,
			MaxStockLevel: record.MaxStockLevel,
		}
		if err := tx.CreateAlert(ctx, tenantID, alert); err != nil {
			return nil, err
		}
		if err := e.enqueueNotification(ctx, tx, tenantID, record, status); err != nil {
			return nil, err
		}
		return alert, nil

	case status.IsAlerting() && active != nil:
		statusChanged := active.Status != status
		changed := statusChanged ||
			active.CurrentStock != record.Quantity ||
			!intPtrEqual(active.MinStockLevel, record.MinStockLevel) ||
			!intPtrEqual(active.MaxStockLevel, record.MaxStockLevel)
		if !changed {
			return active, nil
		}

		active.Status = status
		active.CurrentStock = record.Quantity
		active.MinStockLevel = record.MinStockLevel
		active.MaxStockLevel = record.MaxStockLevel
		if err := tx.SaveAlert(ctx, tenantID, active); err != nil {
			return nil, err
		}
		if statusChanged {
			if err := e.enqueueNotification(ctx, tx, tenantID, record, status); err != nil {
				return nil, err
			}
		}
		return active, nil

	case !status.IsAlerting() && active != nil:
		now := time.Now()
		active.Status = models.AlertStatusHealthy
		active.CurrentStock = record.Quantity
		active.IsResolved = true
		active.ResolvedAt = &now
		if err := tx.SaveAlert(ctx, tenantID, active); err != nil {
			return nil, err
		}
		if err := e.enqueueNotification(ctx, tx, tenantID, record, models.AlertStatusHealthy); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return nil, nil
}

// Sync reconciles alert state for a record by ID as its own unit of work.
func (e *AlertEngine) Sync(ctx context.Context, tenantID string, recordID uuid.UUID) (*models.LowStockAlert, error) {
	var result *models.LowStockAlert
	err := e.repo.WithTransaction(ctx, func(tx repository.Store) error {
		record, err := tx.GetRecordByIDForUpdate(ctx, tenantID, recordID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return err
		}
		result, err = e.SyncTx(ctx, tx, tenantID, record)
		return err
	})
	return result, err
}

// List retrieves alerts with pagination and filtering
func (e *AlertEngine) List(ctx context.Context, tenantID string, status *models.AlertStatus, includeResolved bool, page, limit int) ([]models.LowStockAlert, int64, error) {
	return e.repo.ListAlerts(ctx, tenantID, status, includeResolved, page, limit)
}

func (e *AlertEngine) enqueueNotification(ctx context.Context, tx repository.Store, tenantID string, record *models.InventoryRecord, status models.AlertStatus) error {
	notification := buildNotification(record, status)
	return tx.EnqueueNotification(ctx, tenantID, notification)
}

func buildNotification(record *models.InventoryRecord, status models.AlertStatus) *models.NotificationOutbox {
	n := &models.NotificationOutbox{
		StoreID:   record.StoreID,
		ProductID: record.ProductID,
		Data: &models.JSON{
			"storeId":      record.StoreID.String(),
			"productId":    record.ProductID.String(),
			"currentStock": record.Quantity,
		},
	}

	switch status {
	case models.AlertStatusOutOfStock:
		n.Type = models.NotificationTypeOutOfStock
		n.Priority = "critical"
		n.Title = "Out of Stock"
		n.Message = fmt.Sprintf("Product %s is out of stock at store %s", record.ProductID, record.StoreID)
	case models.AlertStatusLowStock:
		n.Type = models.NotificationTypeLowStock
		n.Priority = "high"
		n.Title = "Low Stock Alert"
		min := 0
		if record.MinStockLevel != nil {
			min = *record.MinStockLevel
		}
		n.Message = fmt.Sprintf("Product %s at store %s is down to %d units (minimum %d)",
			record.ProductID, record.StoreID, record.Quantity, min)
	case models.AlertStatusOverstocked:
		n.Type = models.NotificationTypeOverstocked
		n.Priority = "medium"
		n.Title = "Overstock Alert"
		max := 0
		if record.MaxStockLevel != nil {
			max = *record.MaxStockLevel
		}
		n.Message = fmt.Sprintf("Product %s at store %s holds %d units (maximum %d)",
			record.ProductID, record.StoreID, record.Quantity, max)
	default:
		n.Type = models.NotificationTypeResolved
		n.Priority = "low"
		n.Title = "Stock Level Recovered"
		n.Message = fmt.Sprintf("Product %s at store %s is back to a healthy stock level (%d units)",
			record.ProductID, record.StoreID, record.Quantity)
	}

	return n
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

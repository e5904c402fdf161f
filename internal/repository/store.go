package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pos-backoffice-service/internal/models"
)

// Store is the persistence contract the service layer depends on. The gorm
// implementation is InventoryRepository; tests substitute a mock.
type Store interface {
	WithTransaction(ctx context.Context, fn func(tx Store) error) error

	// Inventory records
	CreateRecord(ctx context.Context, tenantID string, record *models.InventoryRecord) error
	GetRecordByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.InventoryRecord, error)
	GetRecordByKey(ctx context.Context, tenantID string, storeID, productID uuid.UUID) (*models.InventoryRecord, error)
	GetRecordByIDForUpdate(ctx context.Context, tenantID string, id uuid.UUID) (*models.InventoryRecord, error)
	GetRecordByKeyForUpdate(ctx context.Context, tenantID string, storeID, productID uuid.UUID) (*models.InventoryRecord, error)
	SaveRecord(ctx context.Context, tenantID string, record *models.InventoryRecord) error
	DeleteRecord(ctx context.Context, tenantID string, id uuid.UUID) error
	ListRecords(ctx context.Context, tenantID string, storeID *uuid.UUID, page, limit int) ([]models.InventoryRecord, int64, error)

	// Cost layers
	CreateLayer(ctx context.Context, tenantID string, layer *models.CostLayer) error
	ListLayers(ctx context.Context, tenantID string, storeID, productID uuid.UUID) ([]models.CostLayer, error)
	SaveLayer(ctx context.Context, tenantID string, layer *models.CostLayer) error
	DeleteLayer(ctx context.Context, tenantID string, id uuid.UUID) error

	// Stock movement ledger
	AppendMovement(ctx context.Context, tenantID string, movement *models.StockMovement) error
	QueryMovements(ctx context.Context, tenantID string, query models.MovementQuery) ([]models.StockMovement, int64, error)

	// Alerts
	GetActiveAlert(ctx context.Context, tenantID string, storeID, productID uuid.UUID) (*models.LowStockAlert, error)
	CreateAlert(ctx context.Context, tenantID string, alert *models.LowStockAlert) error
	SaveAlert(ctx context.Context, tenantID string, alert *models.LowStockAlert) error
	ListAlerts(ctx context.Context, tenantID string, status *models.AlertStatus, includeResolved bool, page, limit int) ([]models.LowStockAlert, int64, error)
	ResolveAlertsForKey(ctx context.Context, tenantID string, storeID, productID uuid.UUID) error

	// Valuation event logs
	CreatePriceChangeEvent(ctx context.Context, tenantID string, event *models.PriceChangeEvent) error
	CreateRevaluationEvent(ctx context.Context, tenantID string, event *models.InventoryRevaluationEvent) error
	ListPriceHistory(ctx context.Context, tenantID string, productID uuid.UUID, storeID *uuid.UUID, limit int) ([]models.PriceHistoryEntry, error)
	ListRevaluationsInWindow(ctx context.Context, tenantID string, storeID uuid.UUID, start, end time.Time) ([]models.InventoryRevaluationEvent, error)

	// Notification outbox
	EnqueueNotification(ctx context.Context, tenantID string, notification *models.NotificationOutbox) error
	PendingNotifications(ctx context.Context, limit int) ([]models.NotificationOutbox, error)
	MarkNotificationPublished(ctx context.Context, id uuid.UUID) error
	BumpNotificationAttempts(ctx context.Context, id uuid.UUID) error

	// Catalog projections
	GetProduct(ctx context.Context, tenantID string, id uuid.UUID) (*models.Product, error)
	UpdateProductCost(ctx context.Context, tenantID string, productID uuid.UUID, cost decimal.Decimal, salePrice *decimal.Decimal) error
	GetStore(ctx context.Context, tenantID string, id uuid.UUID) (*models.Store, error)

	// Profit/loss aggregates
	SalesTotals(ctx context.Context, tenantID string, storeID uuid.UUID, start, end time.Time) (revenue, cogs decimal.Decimal, err error)
	RefundTotals(ctx context.Context, tenantID string, storeID uuid.UUID, start, end time.Time) (amount decimal.Decimal, count int64, err error)
	OrgInventorySummary(ctx context.Context, tenantID string) (*models.InventorySummary, error)
}

var _ Store = (*InventoryRepository)(nil)

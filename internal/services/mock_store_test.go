package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"pos-backoffice-service/internal/models"
	"pos-backoffice-service/internal/repository"
)

// MockStore is a mock implementation of repository.Store
type MockStore struct {
	mock.Mock
}

// Ensure MockStore implements the interface
var _ repository.Store = (*MockStore)(nil)

// WithTransaction executes the callback with the mock itself, simulating a
// transaction so business logic can be tested without a real database.
func (m *MockStore) WithTransaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return fn(m)
}

func (m *MockStore) CreateRecord(ctx context.Context, tenantID string, record *models.InventoryRecord) error {
	args := m.Called(ctx, tenantID, record)
	if args.Error(0) == nil && record.ID == uuid.Nil {
		record.ID = uuid.New()
		record.CreatedAt = time.Now()
	}
	return args.Error(0)
}

func (m *MockStore) GetRecordByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.InventoryRecord, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryRecord), args.Error(1)
}

func (m *MockStore) GetRecordByKey(ctx context.Context, tenantID string, storeID, productID uuid.UUID) (*models.InventoryRecord, error) {
	args := m.Called(ctx, tenantID, storeID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryRecord), args.Error(1)
}

func (m *MockStore) GetRecordByIDForUpdate(ctx context.Context, tenantID string, id uuid.UUID) (*models.InventoryRecord, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryRecord), args.Error(1)
}

func (m *MockStore) GetRecordByKeyForUpdate(ctx context.Context, tenantID string, storeID, productID uuid.UUID) (*models.InventoryRecord, error) {
	args := m.Called(ctx, tenantID, storeID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryRecord), args.Error(1)
}

func (m *MockStore) SaveRecord(ctx context.Context, tenantID string, record *models.InventoryRecord) error {
	args := m.Called(ctx, tenantID, record)
	return args.Error(0)
}

func (m *MockStore) DeleteRecord(ctx context.Context, tenantID string, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockStore) ListRecords(ctx context.Context, tenantID string, storeID *uuid.UUID, page, limit int) ([]models.InventoryRecord, int64, error) {
	args := m.Called(ctx, tenantID, storeID, page, limit)
	return args.Get(0).([]models.InventoryRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockStore) CreateLayer(ctx context.Context, tenantID string, layer *models.CostLayer) error {
	args := m.Called(ctx, tenantID, layer)
	if args.Error(0) == nil && layer.ID == uuid.Nil {
		layer.ID = uuid.New()
		layer.CreatedAt = time.Now()
	}
	return args.Error(0)
}

func (m *MockStore) ListLayers(ctx context.Context, tenantID string, storeID, productID uuid.UUID) ([]models.CostLayer, error) {
	args := m.Called(ctx, tenantID, storeID, productID)
	return args.Get(0).([]models.CostLayer), args.Error(1)
}

func (m *MockStore) SaveLayer(ctx context.Context, tenantID string, layer *models.CostLayer) error {
	args := m.Called(ctx, tenantID, layer)
	return args.Error(0)
}

func (m *MockStore) DeleteLayer(ctx context.Context, tenantID string, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockStore) AppendMovement(ctx context.Context, tenantID string, movement *models.StockMovement) error {
	args := m.Called(ctx, tenantID, movement)
	return args.Error(0)
}

func (m *MockStore) QueryMovements(ctx context.Context, tenantID string, query models.MovementQuery) ([]models.StockMovement, int64, error) {
	args := m.Called(ctx, tenantID, query)
	return args.Get(0).([]models.StockMovement), args.Get(1).(int64), args.Error(2)
}

func (m *MockStore) GetActiveAlert(ctx context.Context, tenantID string, storeID, productID uuid.UUID) (*models.LowStockAlert, error) {
	args := m.Called(ctx, tenantID, storeID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LowStockAlert), args.Error(1)
}

func (m *MockStore) CreateAlert(ctx context.Context, tenantID string, alert *models.LowStockAlert) error {
	args := m.Called(ctx, tenantID, alert)
	if args.Error(0) == nil && alert.ID == uuid.Nil {
		alert.ID = uuid.New()
		alert.CreatedAt = time.Now()
	}
	return args.Error(0)
}

func (m *MockStore) SaveAlert(ctx context.Context, tenantID string, alert *models.LowStockAlert) error {
	args := m.Called(ctx, tenantID, alert)
	return args.Error(0)
}

func (m *MockStore) ListAlerts(ctx context.Context, tenantID string, status *models.AlertStatus, includeResolved bool, page, limit int) ([]models.LowStockAlert, int64, error) {
	args := m.Called(ctx, tenantID, status, includeResolved, page, limit)
	return args.Get(0).([]models.LowStockAlert), args.Get(1).(int64), args.Error(2)
}

func (m *MockStore) ResolveAlertsForKey(ctx context.Context, tenantID string, storeID, productID uuid.UUID) error {
	args := m.Called(ctx, tenantID, storeID, productID)
	return args.Error(0)
}

func (m *MockStore) CreatePriceChangeEvent(ctx context.Context, tenantID string, event *models.PriceChangeEvent) error {
	args := m.Called(ctx, tenantID, event)
	return args.Error(0)
}

func (m *MockStore) CreateRevaluationEvent(ctx context.Context, tenantID string, event *models.InventoryRevaluationEvent) error {
	args := m.Called(ctx, tenantID, event)
	return args.Error(0)
}

func (m *MockStore) ListPriceHistory(ctx context.Context, tenantID string, productID uuid.UUID, storeID *uuid.UUID, limit int) ([]models.PriceHistoryEntry, error) {
	args := m.Called(ctx, tenantID, productID, storeID, limit)
	return args.Get(0).([]models.PriceHistoryEntry), args.Error(1)
}

func (m *MockStore) ListRevaluationsInWindow(ctx context.Context, tenantID string, storeID uuid.UUID, start, end time.Time) ([]models.InventoryRevaluationEvent, error) {
	args := m.Called(ctx, tenantID, storeID, start, end)
	return args.Get(0).([]models.InventoryRevaluationEvent), args.Error(1)
}

func (m *MockStore) EnqueueNotification(ctx context.Context, tenantID string, notification *models.NotificationOutbox) error {
	args := m.Called(ctx, tenantID, notification)
	return args.Error(0)
}

func (m *MockStore) PendingNotifications(ctx context.Context, limit int) ([]models.NotificationOutbox, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]models.NotificationOutbox), args.Error(1)
}

func (m *MockStore) MarkNotificationPublished(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) BumpNotificationAttempts(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) GetProduct(ctx context.Context, tenantID string, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockStore) UpdateProductCost(ctx context.Context, tenantID string, productID uuid.UUID, cost decimal.Decimal, salePrice *decimal.Decimal) error {
	args := m.Called(ctx, tenantID, productID, cost, salePrice)
	return args.Error(0)
}

func (m *MockStore) GetStore(ctx context.Context, tenantID string, id uuid.UUID) (*models.Store, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Store), args.Error(1)
}

func (m *MockStore) SalesTotals(ctx context.Context, tenantID string, storeID uuid.UUID, start, end time.Time) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, storeID, start, end)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockStore) RefundTotals(ctx context.Context, tenantID string, storeID uuid.UUID, start, end time.Time) (decimal.Decimal, int64, error) {
	args := m.Called(ctx, tenantID, storeID, start, end)
	return args.Get(0).(decimal.Decimal), args.Get(1).(int64), args.Error(2)
}

func (m *MockStore) OrgInventorySummary(ctx context.Context, tenantID string) (*models.InventorySummary, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventorySummary), args.Error(1)
}

package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"pos-backoffice-service/internal/models"
)

func intPtr(v int) *int {
	return &v
}

func testRecord(quantity int, min, max *int) *models.InventoryRecord {
	return &models.InventoryRecord{
		ID:            uuid.New(),
		StoreID:       uuid.New(),
		ProductID:     uuid.New(),
		Quantity:      quantity,
		MinStockLevel: min,
		MaxStockLevel: max,
	}
}

// ===========================================
// Status Derivation Tests
// ===========================================

func TestDeriveAlertStatus(t *testing.T) {
	assert.Equal(t, models.AlertStatusOutOfStock, models.DeriveAlertStatus(0, intPtr(10), nil))
	assert.Equal(t, models.AlertStatusOutOfStock, models.DeriveAlertStatus(-2, nil, nil))
	assert.Equal(t, models.AlertStatusLowStock, models.DeriveAlertStatus(8, intPtr(10), nil))
	assert.Equal(t, models.AlertStatusLowStock, models.DeriveAlertStatus(10, intPtr(10), nil))
	assert.Equal(t, models.AlertStatusOverstocked, models.DeriveAlertStatus(120, intPtr(10), intPtr(100)))
	assert.Equal(t, models.AlertStatusHealthy, models.DeriveAlertStatus(50, intPtr(10), intPtr(100)))
	// Max of zero means unset, never overstocked
	assert.Equal(t, models.AlertStatusHealthy, models.DeriveAlertStatus(50, nil, intPtr(0)))
	assert.Equal(t, models.AlertStatusHealthy, models.DeriveAlertStatus(5, nil, nil))
}

// ===========================================
// Sync Transition Tests
// ===========================================

func TestSyncTx_DropBelowMinCreatesAlertAndNotifies(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant-123"

	mockStore := new(MockStore)
	engine := NewAlertEngine(mockStore)

	record := testRecord(8, intPtr(10), nil)

	mockStore.On("GetActiveAlert", ctx, tenantID, record.StoreID, record.ProductID).
		Return(nil, gorm.ErrRecordNotFound)
	mockStore.On("CreateAlert", ctx, tenantID, mock.AnythingOfType("*models.LowStockAlert")).
		Return(nil)
	mockStore.On("EnqueueNotification", ctx, tenantID, mock.AnythingOfType("*models.NotificationOutbox")).
		Return(nil)

	alert, err := engine.SyncTx(ctx, mockStore, tenantID, record)

	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, models.AlertStatusLowStock, alert.Status)
	assert.Equal(t, 8, alert.CurrentStock)

	notification := mockStore.Calls[len(mockStore.Calls)-1].Arguments.Get(2).(*models.NotificationOutbox)
	assert.Equal(t, models.NotificationTypeLowStock, notification.Type)
	assert.Equal(t, "high", notification.Priority)
	mockStore.AssertExpectations(t)
}

func TestSyncTx_UnchangedStateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant-123"

	mockStore := new(MockStore)
	engine := NewAlertEngine(mockStore)

	record := testRecord(8, intPtr(10), nil)
	active := &models.LowStockAlert{
		ID:            uuid.New(),
		StoreID:       record.StoreID,
		ProductID:     record.ProductID,
		Status:        models.AlertStatusLowStock,
		CurrentStock:  8,
		MinStockLevel: intPtr(10),
	}

	mockStore.On("GetActiveAlert", ctx, tenantID, record.StoreID, record.ProductID).
		Return(active, nil)

	alert, err := engine.SyncTx(ctx, mockStore, tenantID, record)

	require.NoError(t, err)
	assert.Equal(t, active.ID, alert.ID)
	mockStore.AssertNotCalled(t, "SaveAlert", mock.Anything, mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "EnqueueNotification", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncTx_FurtherDropUpdatesWithoutSecondNotification(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant-123"

	mockStore := new(MockStore)
	engine := NewAlertEngine(mockStore)

	// 8 -> 3 stays low_stock: the alert row tracks the new quantity but the
	// category did not change, so no new notification goes out.
	record := testRecord(3, intPtr(10), nil)
	active := &models.LowStockAlert{
		ID:            uuid.New(),
		StoreID:       record.StoreID,
		ProductID:     record.ProductID,
		Status:        models.AlertStatusLowStock,
		CurrentStock:  8,
		MinStockLevel: intPtr(10),
	}

	mockStore.On("GetActiveAlert", ctx, tenantID, record.StoreID, record.ProductID).
		Return(active, nil)
	mockStore.On("SaveAlert", ctx, tenantID, active).Return(nil)

	alert, err := engine.SyncTx(ctx, mockStore, tenantID, record)

	require.NoError(t, err)
	assert.Equal(t, 3, alert.CurrentStock)
	assert.Equal(t, models.AlertStatusLowStock, alert.Status)
	mockStore.AssertNotCalled(t, "EnqueueNotification", mock.Anything, mock.Anything, mock.Anything)
	mockStore.AssertExpectations(t)
}

func TestSyncTx_CategoryTransitionNotifies(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant-123"

	mockStore := new(MockStore)
	engine := NewAlertEngine(mockStore)

	record := testRecord(0, intPtr(10), nil)
	active := &models.LowStockAlert{
		ID:            uuid.New(),
		StoreID:       record.StoreID,
		ProductID:     record.ProductID,
		Status:        models.AlertStatusLowStock,
		CurrentStock:  3,
		MinStockLevel: intPtr(10),
	}

	mockStore.On("GetActiveAlert", ctx, tenantID, record.StoreID, record.ProductID).
		Return(active, nil)
	mockStore.On("SaveAlert", ctx, tenantID, active).Return(nil)
	mockStore.On("EnqueueNotification", ctx, tenantID, mock.AnythingOfType("*models.NotificationOutbox")).
		Return(nil)

	alert, err := engine.SyncTx(ctx, mockStore, tenantID, record)

	require.NoError(t, err)
	assert.Equal(t, models.AlertStatusOutOfStock, alert.Status)

	notification := mockStore.Calls[len(mockStore.Calls)-1].Arguments.Get(2).(*models.NotificationOutbox)
	assert.Equal(t, models.NotificationTypeOutOfStock, notification.Type)
	assert.Equal(t, "critical", notification.Priority)
	mockStore.AssertExpectations(t)
}

func TestSyncTx_RecoveryResolvesAlert(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant-123"

	mockStore := new(MockStore)
	engine := NewAlertEngine(mockStore)

	record := testRecord(25, intPtr(10), nil)
	active := &models.LowStockAlert{
		ID:            uuid.New(),
		StoreID:       record.StoreID,
		ProductID:     record.ProductID,
		Status:        models.AlertStatusLowStock,
		CurrentStock:  3,
		MinStockLevel: intPtr(10),
	}

	mockStore.On("GetActiveAlert", ctx, tenantID, record.StoreID, record.ProductID).
		Return(active, nil)
	mockStore.On("SaveAlert", ctx, tenantID, active).Return(nil)
	mockStore.On("EnqueueNotification", ctx, tenantID, mock.AnythingOfType("*models.NotificationOutbox")).
		Return(nil)

	alert, err := engine.SyncTx(ctx, mockStore, tenantID, record)

	require.NoError(t, err)
	assert.Nil(t, alert)
	assert.True(t, active.IsResolved)
	assert.NotNil(t, active.ResolvedAt)

	notification := mockStore.Calls[len(mockStore.Calls)-1].Arguments.Get(2).(*models.NotificationOutbox)
	assert.Equal(t, models.NotificationTypeResolved, notification.Type)
	mockStore.AssertExpectations(t)
}

func TestSyncTx_HealthyWithNoAlertIsNoOp(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant-123"

	mockStore := new(MockStore)
	engine := NewAlertEngine(mockStore)

	record := testRecord(50, intPtr(10), intPtr(100))

	mockStore.On("GetActiveAlert", ctx, tenantID, record.StoreID, record.ProductID).
		Return(nil, gorm.ErrRecordNotFound)

	alert, err := engine.SyncTx(ctx, mockStore, tenantID, record)

	require.NoError(t, err)
	assert.Nil(t, alert)
	mockStore.AssertNotCalled(t, "CreateAlert", mock.Anything, mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "EnqueueNotification", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncTx_OverstockedNotifies(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant-123"

	mockStore := new(MockStore)
	engine := NewAlertEngine(mockStore)

	record := testRecord(150, intPtr(10), intPtr(100))

	mockStore.On("GetActiveAlert", ctx, tenantID, record.StoreID, record.ProductID).
		Return(nil, gorm.ErrRecordNotFound)
	mockStore.On("CreateAlert", ctx, tenantID, mock.AnythingOfType("*models.LowStockAlert")).
		Return(nil)
	mockStore.On("EnqueueNotification", ctx, tenantID, mock.AnythingOfType("*models.NotificationOutbox")).
		Return(nil)

	alert, err := engine.SyncTx(ctx, mockStore, tenantID, record)

	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, models.AlertStatusOverstocked, alert.Status)

	notification := mockStore.Calls[len(mockStore.Calls)-1].Arguments.Get(2).(*models.NotificationOutbox)
	assert.Equal(t, models.NotificationTypeOverstocked, notification.Type)
	mockStore.AssertExpectations(t)
}

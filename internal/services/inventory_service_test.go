package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"pos-backoffice-service/internal/models"
)

func testProduct(cost, salePrice string) *models.Product {
	return &models.Product{
		ID:        uuid.New(),
		Name:      "Test Product",
		Cost:      decimal.RequireFromString(cost),
		SalePrice: decimal.RequireFromString(salePrice),
	}
}

// ===========================================
// Create Tests
// ===========================================

func TestCreate_WithCostOverride(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant-123"
	storeID := uuid.New()
	productID := uuid.New()

	mockStore := new(MockStore)
	service := NewInventoryService(mockStore, NewAlertEngine(mockStore))

	mockStore.On("GetRecordByKeyForUpdate", ctx, tenantID, storeID, productID).
		Return(nil, gorm.ErrRecordNotFound)
	mockStore.On("GetProduct", ctx, tenantID, productID).
		Return(testProduct("2.00", "5.00"), nil)
	mockStore.On("CreateRecord", ctx, tenantID, mock.AnythingOfType("*models.InventoryRecord")).
		Return(nil)

	var createdLayer *models.CostLayer
	mockStore.On("CreateLayer", ctx, tenantID, mock.AnythingOfType("*models.CostLayer")).
		Run(func(args mock.Arguments) {
			createdLayer = args.Get(2).(*models.CostLayer)
		}).Return(nil)

	mockStore.On("CreatePriceChangeEvent", ctx, tenantID, mock.AnythingOfType("*models.PriceChangeEvent")).
		Return(nil)
	mockStore.On("UpdateProductCost", ctx, tenantID, productID, mock.Anything, mock.Anything).
		Return(nil)
	mockStore.On("GetActiveAlert", ctx, tenantID, storeID, productID).
		Return(nil, gorm.ErrRecordNotFound)
	mockStore.On("AppendMovement", ctx, tenantID, mock.AnythingOfType("*models.StockMovement")).
		Return(nil)

	record, err := service.Create(ctx, tenantID, nil, &models.CreateInventoryRequest{
		StoreID:         storeID,
		ProductID:       productID,
		InitialQuantity: 100,
		CostOverride:    &models.CostUpdate{UnitCost: decimal.RequireFromString("2.50")},
	})

	require.NoError(t, err)
	assert.Equal(t, 100, record.Quantity)
	assert.True(t, record.AvgCost.Equal(decimal.RequireFromString("2.50")))
	assert.True(t, record.TotalCostValue.Equal(decimal.RequireFromString("250.00")))
	assert.NotNil(t, record.LastCostUpdate)

	require.NotNil(t, createdLayer)
	assert.Equal(t, models.CostLayerSourceInitial, createdLayer.Source)
	assert.Equal(t, 100, createdLayer.QuantityRemaining)
	assert.True(t, createdLayer.UnitCost.Equal(decimal.RequireFromString("2.50")))
	mockStore.AssertExpectations(t)
}

func TestCreate_ZeroQuantitySkipsLayer(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant-123"
	storeID := uuid.New()
	productID := uuid.New()

	mockStore := new(MockStore)
	service := NewInventoryService(mockStore, NewAlertEngine(mockStore))

	mockStore.On("GetRecordByKeyForUpdate", ctx, tenantID, storeID, productID).
		Return(nil, gorm.ErrRecordNotFound)
	mockStore.On("GetProduct", ctx, tenantID, productID).
		Return(testProduct("2.00", "5.00"), nil)
	mockStore.On("CreateRecord", ctx, tenantID, mock.AnythingOfType("*models.InventoryRecord")).
		Return(nil)
	// Quantity zero derives out_of_stock, so an alert opens immediately
	mockStore.On("GetActiveAlert", ctx, tenantID, storeID, productID).
		Return(nil, gorm.ErrRecordNotFound)
	mockStore.On("CreateAlert", ctx, tenantID, mock.AnythingOfType("*models.LowStockAlert")).
		Return(nil)
	mockStore.On("EnqueueNotification", ctx, tenantID, mock.AnythingOfType("*models.NotificationOutbox")).
		Return(nil)
	mockStore.On("AppendMovement", ctx, tenantID, mock.AnythingOfType("*models.StockMovement")).
		Return(nil)

	record, err := service.Create(ctx, tenantID, nil, &models.CreateInventoryRequest{
		StoreID:   storeID,
		ProductID: productID,
	})

	require.NoError(t, err)
	assert.Equal(t, 0, record.Quantity)
	mockStore.AssertNotCalled(t, "CreateLayer", mock.Anything, mock.Anything, mock.Anything)
	mockStore.AssertExpectations(t)
}

func TestCreate_DuplicateKey(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant-123"
	storeID := uuid.New()
	productID := uuid.New()

	mockStore := new(MockStore)
	service := NewInventoryService(mockStore, NewAlertEngine(mockStore))

	existing := &models.InventoryRecord{ID: uuid.New(), StoreID: storeID, ProductID: productID}
	mockStore.On("GetRecordByKeyForUpdate", ctx, tenantID, storeID, productID).
		Return(existing, nil)

	_, err := service.Create(ctx, tenantID, nil, &models.CreateInventoryRequest{
		StoreID:         storeID,
		ProductID:       productID,
		InitialQuantity: 10,
	})

	assert.ErrorIs(t, err, ErrDuplicateRecord)
	mockStore.AssertNotCalled(t, "CreateRecord", mock.Anything, mock.Anything, mock.Anything)
	// The guard reads the row under lock, never through the cache
	mockStore.AssertNotCalled(t, "GetRecordByKey", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_RacingInsertMapsUniqueViolation(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant-123"
	storeID := uuid.New()
	productID := uuid.New()

	mockStore := new(MockStore)
	service := NewInventoryService(mockStore, NewAlertEngine(mockStore))

	// The pre-insert check sees nothing, then a concurrent create wins the
	// insert and the unique index rejects this one.
	mockStore.On("GetRecordByKeyForUpdate", ctx, tenantID, storeID, productID).
		Return(nil, gorm.ErrRecordNotFound)
	mockStore.On("GetProduct", ctx, tenantID, productID).
		Return(nil, gorm.ErrRecordNotFound)
	mockStore.On("CreateRecord", ctx, tenantID, mock.AnythingOfType("*models.InventoryRecord")).
		Return(gorm.ErrDuplicatedKey)

	_, err := service.Create(ctx, tenantID, nil, &models.CreateInventoryRequest{
		StoreID:         storeID,
		ProductID:       productID,
		InitialQuantity: 10,
	})

	assert.ErrorIs(t, err, ErrDuplicateRecord)
	mockStore.AssertNotCalled(t, "CreateLayer", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_ImportTagsLayerSource(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant-123"
	storeID := uuid.New()
	productID := uuid.New()

	mockStore := new(MockStore)
	service := NewInventoryService(mockStore, NewAlertEngine(mockStore))

	mockStore.On("GetRecordByKeyForUpdate", ctx, tenantID, storeID, productID).
		Return(nil, gorm.ErrRecordNotFound)
	mockStore.On("GetProduct", ctx, tenantID, productID).
		Return(testProduct("2.00", "5.00"), nil)
	mockStore.On("CreateRecord", ctx, tenantID, mock.AnythingOfType("*models.InventoryRecord")).
		Return(nil)

	var createdLayer *models.CostLayer
	mockStore.On("CreateLayer", ctx, tenantID, mock.AnythingOfType("*models.CostLayer")).
		Run(func(args mock.Arguments) {
			createdLayer = args.Get(2).(*models.CostLayer)
		}).Return(nil)
	mockStore.On("GetActiveAlert", ctx, tenantID, storeID, productID).
		Return(nil, gorm.ErrRecordNotFound)
	mockStore.On("AppendMovement", ctx, tenantID, mock.AnythingOfType("*models.StockMovement")).
		Return(nil)

	_, err := service.Create(ctx, tenantID, nil, &models.CreateInventoryRequest{
		StoreID:         storeID,
		ProductID:       productID,
		InitialQuantity: 25,
		Source:          "import",
	})

	require.NoError(t, err)
	require.NotNil(t, createdLayer)
	assert.Equal(t, models.CostLayerSourceImport, createdLayer.Source)
}

func TestCreate_NegativeCostRejected(t *testing.T) {
	ctx := context.Background()

	mockStore := new(MockStore)
	service := NewInventoryService(mockStore, NewAlertEngine(mockStore))

	_, err := service.Create(ctx, "tenant-123", nil, &models.CreateInventoryRequest{
		StoreID:      uuid.New(),
		ProductID:    uuid.New(),
		CostOverride: &models.CostUpdate{UnitCost: decimal.RequireFromString("-1.00")},
	})

	assert.ErrorIs(t, err, ErrValidation)
}

// ===========================================
// Update Tests
// ===========================================

func TestUpdate_CostOnlyDoesNotRelayer(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant-123"
	recordID := uuid.New()

	mockStore := new(MockStore)
	service := NewInventoryService(mockStore, NewAlertEngine(mockStore))

	record := &models.InventoryRecord{
		ID:             recordID,
		StoreID:        uuid.New(),
		ProductID:      uuid.New(),
		Quantity:       10,
		AvgCost:        decimal.RequireFromString("2.00"),
		TotalCostValue: decimal.RequireFromString("20.00"),
	}

	mockStore.On("GetRecordByIDForUpdate", ctx, tenantID, recordID).
		Return(record, nil)
	mockStore.On("GetProduct", ctx, tenantID, record.ProductID).
		Return(testProduct("2.00", "5.00"), nil)
	mockStore.On("CreatePriceChangeEvent", ctx, tenantID, mock.AnythingOfType("*models.PriceChangeEvent")).
		Return(nil)
	mockStore.On("UpdateProductCost", ctx, tenantID, record.ProductID, mock.Anything, mock.Anything).
		Return(nil)

	var revaluation *models.InventoryRevaluationEvent
	mockStore.On("CreateRevaluationEvent", ctx, tenantID, mock.AnythingOfType("*models.InventoryRevaluationEvent")).
		Run(func(args mock.Arguments) {
			revaluation = args.Get(2).(*models.InventoryRevaluationEvent)
		}).Return(nil)

	mockStore.On("SaveRecord", ctx, tenantID, record).Return(nil)
	mockStore.On("GetActiveAlert", ctx, tenantID, record.StoreID, record.ProductID).
		Return(nil, gorm.ErrRecordNotFound)
	mockStore.On("AppendMovement", ctx, tenantID, mock.AnythingOfType("*models.StockMovement")).
		Return(nil)

	updated, err := service.Update(ctx, tenantID, nil, recordID, &models.UpdateInventoryRequest{
		CostUpdate: &models.CostUpdate{UnitCost: decimal.RequireFromString("3.00")},
	})

	require.NoError(t, err)
	assert.Equal(t, 10, updated.Quantity)
	assert.True(t, updated.AvgCost.Equal(decimal.RequireFromString("3.00")))
	assert.True(t, updated.TotalCostValue.Equal(decimal.RequireFromString("30.00")))

	// Existing layers keep their acquisition cost: nothing is created or read
	mockStore.AssertNotCalled(t, "CreateLayer", mock.Anything, mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "ListLayers", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	require.NotNil(t, revaluation)
	assert.Equal(t, "cost_update", revaluation.Source)
	assert.True(t, revaluation.DeltaValue.Equal(decimal.RequireFromString("10.00")))
	mockStore.AssertExpectations(t)
}

func TestUpdate_QuantityDecreaseConsumesFIFO(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant-123"
	recordID := uuid.New()

	mockStore := new(MockStore)
	service := NewInventoryService(mockStore, NewAlertEngine(mockStore))

	record := &models.InventoryRecord{
		ID:             recordID,
		StoreID:        uuid.New(),
		ProductID:      uuid.New(),
		Quantity:       100,
		AvgCost:        decimal.RequireFromString("2.50"),
		TotalCostValue: decimal.RequireFromString("250.00"),
	}
	layers := testLayers(layerSpec(50, "2.00"), layerSpec(50, "3.00"))

	mockStore.On("GetRecordByIDForUpdate", ctx, tenantID, recordID).
		Return(record, nil)
	mockStore.On("GetProduct", ctx, tenantID, record.ProductID).
		Return(nil, gorm.ErrRecordNotFound)
	mockStore.On("ListLayers", ctx, tenantID, record.StoreID, record.ProductID).
		Return(layers, nil)
	mockStore.On("DeleteLayer", ctx, tenantID, mock.Anything).Return(nil)
	mockStore.On("SaveLayer", ctx, tenantID, mock.AnythingOfType("*models.CostLayer")).Return(nil)
	mockStore.On("SaveRecord", ctx, tenantID, record).Return(nil)
	mockStore.On("GetActiveAlert", ctx, tenantID, record.StoreID, record.ProductID).
		Return(nil, gorm.ErrRecordNotFound)
	mockStore.On("AppendMovement", ctx, tenantID, mock.AnythingOfType("*models.StockMovement")).
		Return(nil)

	newQuantity := 40
	updated, err := service.Update(ctx, tenantID, nil, recordID, &models.UpdateInventoryRequest{
		Quantity: &newQuantity,
	})

	require.NoError(t, err)
	assert.Equal(t, 40, updated.Quantity)
	// The 50 @ 2.00 layer is gone, 40 @ 3.00 remains
	assert.True(t, updated.TotalCostValue.Equal(decimal.RequireFromString("120.00")))
	assert.True(t, updated.AvgCost.Equal(decimal.RequireFromString("3.00")))
	assert.Equal(t, 0, layers[0].QuantityRemaining)
	assert.Equal(t, 40, layers[1].QuantityRemaining)
	mockStore.AssertExpectations(t)
}

// ===========================================
// Adjust Tests
// ===========================================

func TestAdjust_UpsertsMissingRecord(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant-123"
	storeID := uuid.New()
	productID := uuid.New()

	mockStore := new(MockStore)
	service := NewInventoryService(mockStore, NewAlertEngine(mockStore))

	mockStore.On("GetRecordByKeyForUpdate", ctx, tenantID, storeID, productID).
		Return(nil, gorm.ErrRecordNotFound)
	mockStore.On("CreateRecord", ctx, tenantID, mock.AnythingOfType("*models.InventoryRecord")).
		Return(nil)
	mockStore.On("GetProduct", ctx, tenantID, productID).
		Return(testProduct("2.00", "5.00"), nil)

	var createdLayer *models.CostLayer
	mockStore.On("CreateLayer", ctx, tenantID, mock.AnythingOfType("*models.CostLayer")).
		Run(func(args mock.Arguments) {
			createdLayer = args.Get(2).(*models.CostLayer)
		}).Return(nil)
	mockStore.On("ListLayers", ctx, tenantID, storeID, productID).
		Return(testLayers(layerSpec(10, "2.00")), nil)
	mockStore.On("SaveRecord", ctx, tenantID, mock.AnythingOfType("*models.InventoryRecord")).
		Return(nil)
	mockStore.On("GetActiveAlert", ctx, tenantID, storeID, productID).
		Return(nil, gorm.ErrRecordNotFound)
	mockStore.On("AppendMovement", ctx, tenantID, mock.AnythingOfType("*models.StockMovement")).
		Return(nil)

	record, err := service.Adjust(ctx, tenantID, nil, &models.AdjustStockRequest{
		StoreID:   storeID,
		ProductID: productID,
		Delta:     10,
	})

	require.NoError(t, err)
	assert.Equal(t, 10, record.Quantity)
	assert.True(t, record.TotalCostValue.Equal(decimal.RequireFromString("20.00")))

	require.NotNil(t, createdLayer)
	assert.Equal(t, models.CostLayerSourceAdjustment, createdLayer.Source)
	assert.True(t, createdLayer.UnitCost.Equal(decimal.RequireFromString("2.00")))
	mockStore.AssertExpectations(t)
}

func TestAdjust_CostUpdatePropagatesToCatalog(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant-123"
	storeID := uuid.New()
	productID := uuid.New()

	mockStore := new(MockStore)
	service := NewInventoryService(mockStore, NewAlertEngine(mockStore))

	record := &models.InventoryRecord{
		ID:        uuid.New(),
		StoreID:   storeID,
		ProductID: productID,
		Quantity:  10,
		AvgCost:   decimal.RequireFromString("2.00"),
	}
	mockStore.On("GetRecordByKeyForUpdate", ctx, tenantID, storeID, productID).
		Return(record, nil)
	mockStore.On("GetProduct", ctx, tenantID, productID).
		Return(testProduct("2.00", "5.00"), nil)

	var createdLayer *models.CostLayer
	mockStore.On("CreateLayer", ctx, tenantID, mock.AnythingOfType("*models.CostLayer")).
		Run(func(args mock.Arguments) {
			createdLayer = args.Get(2).(*models.CostLayer)
		}).Return(nil)

	var priceEvent *models.PriceChangeEvent
	mockStore.On("CreatePriceChangeEvent", ctx, tenantID, mock.AnythingOfType("*models.PriceChangeEvent")).
		Run(func(args mock.Arguments) {
			priceEvent = args.Get(2).(*models.PriceChangeEvent)
		}).Return(nil)
	mockStore.On("UpdateProductCost", ctx, tenantID, productID, mock.Anything, mock.Anything).
		Return(nil)

	mockStore.On("ListLayers", ctx, tenantID, storeID, productID).
		Return(testLayers(layerSpec(10, "2.00"), layerSpec(5, "2.75")), nil)
	mockStore.On("SaveRecord", ctx, tenantID, record).Return(nil)
	mockStore.On("GetActiveAlert", ctx, tenantID, storeID, productID).
		Return(nil, gorm.ErrRecordNotFound)
	mockStore.On("AppendMovement", ctx, tenantID, mock.AnythingOfType("*models.StockMovement")).
		Return(nil)

	updated, err := service.Adjust(ctx, tenantID, nil, &models.AdjustStockRequest{
		StoreID:    storeID,
		ProductID:  productID,
		Delta:      5,
		CostUpdate: &models.CostUpdate{UnitCost: decimal.RequireFromString("2.75")},
	})

	require.NoError(t, err)
	assert.Equal(t, 15, updated.Quantity)
	assert.NotNil(t, updated.LastCostUpdate)

	require.NotNil(t, createdLayer)
	assert.True(t, createdLayer.UnitCost.Equal(decimal.RequireFromString("2.75")))

	require.NotNil(t, priceEvent)
	require.NotNil(t, priceEvent.NewCost)
	assert.True(t, priceEvent.NewCost.Equal(decimal.RequireFromString("2.75")))
	mockStore.AssertExpectations(t)
}

func TestAdjust_DecreaseBeyondOnHandFails(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant-123"
	storeID := uuid.New()
	productID := uuid.New()

	mockStore := new(MockStore)
	service := NewInventoryService(mockStore, NewAlertEngine(mockStore))

	record := &models.InventoryRecord{
		ID:        uuid.New(),
		StoreID:   storeID,
		ProductID: productID,
		Quantity:  5,
	}
	mockStore.On("GetRecordByKeyForUpdate", ctx, tenantID, storeID, productID).
		Return(record, nil)
	mockStore.On("GetProduct", ctx, tenantID, productID).
		Return(nil, gorm.ErrRecordNotFound)

	_, err := service.Adjust(ctx, tenantID, nil, &models.AdjustStockRequest{
		StoreID:   storeID,
		ProductID: productID,
		Delta:     -10,
	})

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 5, record.Quantity)
	mockStore.AssertNotCalled(t, "SaveRecord", mock.Anything, mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "AppendMovement", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdjust_ZeroDeltaRejected(t *testing.T) {
	mockStore := new(MockStore)
	service := NewInventoryService(mockStore, NewAlertEngine(mockStore))

	_, err := service.Adjust(context.Background(), "tenant-123", nil, &models.AdjustStockRequest{
		StoreID:   uuid.New(),
		ProductID: uuid.New(),
		Delta:     0,
	})

	assert.ErrorIs(t, err, ErrValidation)
}

// ===========================================
// Delete Tests
// ===========================================

func TestDelete_ResolvesAlertsAndLogsMovement(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant-123"
	recordID := uuid.New()

	mockStore := new(MockStore)
	service := NewInventoryService(mockStore, NewAlertEngine(mockStore))

	record := &models.InventoryRecord{
		ID:        recordID,
		StoreID:   uuid.New(),
		ProductID: uuid.New(),
		Quantity:  15,
	}

	mockStore.On("GetRecordByIDForUpdate", ctx, tenantID, recordID).
		Return(record, nil)
	mockStore.On("DeleteRecord", ctx, tenantID, recordID).Return(nil)
	mockStore.On("ResolveAlertsForKey", ctx, tenantID, record.StoreID, record.ProductID).
		Return(nil)

	var movement *models.StockMovement
	mockStore.On("AppendMovement", ctx, tenantID, mock.AnythingOfType("*models.StockMovement")).
		Run(func(args mock.Arguments) {
			movement = args.Get(2).(*models.StockMovement)
		}).Return(nil)

	err := service.Delete(ctx, tenantID, nil, recordID)

	require.NoError(t, err)
	require.NotNil(t, movement)
	assert.Equal(t, models.MovementActionDelete, movement.ActionType)
	assert.Equal(t, 15, movement.QuantityBefore)
	assert.Equal(t, 0, movement.QuantityAfter)
	mockStore.AssertExpectations(t)
}

func TestDelete_ThenRecreateSameKey(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant-123"
	recordID := uuid.New()
	storeID := uuid.New()
	productID := uuid.New()

	mockStore := new(MockStore)
	service := NewInventoryService(mockStore, NewAlertEngine(mockStore))

	record := &models.InventoryRecord{
		ID:        recordID,
		StoreID:   storeID,
		ProductID: productID,
		Quantity:  15,
	}
	mockStore.On("GetRecordByIDForUpdate", ctx, tenantID, recordID).
		Return(record, nil)
	mockStore.On("DeleteRecord", ctx, tenantID, recordID).Return(nil)
	mockStore.On("ResolveAlertsForKey", ctx, tenantID, storeID, productID).
		Return(nil)
	mockStore.On("AppendMovement", ctx, tenantID, mock.AnythingOfType("*models.StockMovement")).
		Return(nil)

	require.NoError(t, service.Delete(ctx, tenantID, nil, recordID))

	// The soft-deleted row is invisible to the key lookup and excluded from
	// the partial unique index, so the pair can be created again.
	mockStore.On("GetRecordByKeyForUpdate", ctx, tenantID, storeID, productID).
		Return(nil, gorm.ErrRecordNotFound)
	mockStore.On("GetProduct", ctx, tenantID, productID).
		Return(testProduct("2.00", "5.00"), nil)
	mockStore.On("CreateRecord", ctx, tenantID, mock.AnythingOfType("*models.InventoryRecord")).
		Return(nil)
	mockStore.On("CreateLayer", ctx, tenantID, mock.AnythingOfType("*models.CostLayer")).
		Return(nil)
	mockStore.On("GetActiveAlert", ctx, tenantID, storeID, productID).
		Return(nil, gorm.ErrRecordNotFound)

	recreated, err := service.Create(ctx, tenantID, nil, &models.CreateInventoryRequest{
		StoreID:         storeID,
		ProductID:       productID,
		InitialQuantity: 5,
	})

	require.NoError(t, err)
	assert.Equal(t, 5, recreated.Quantity)
	mockStore.AssertExpectations(t)
}

func TestDelete_NotFound(t *testing.T) {
	ctx := context.Background()
	recordID := uuid.New()

	mockStore := new(MockStore)
	service := NewInventoryService(mockStore, NewAlertEngine(mockStore))

	mockStore.On("GetRecordByIDForUpdate", ctx, "tenant-123", recordID).
		Return(nil, gorm.ErrRecordNotFound)

	err := service.Delete(ctx, "tenant-123", nil, recordID)

	assert.ErrorIs(t, err, ErrRecordNotFound)
}

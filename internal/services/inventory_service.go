package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"pos-backoffice-service/internal/models"
	"pos-backoffice-service/internal/repository"
)

const (
	defaultMovementSource = "manual"
	importSource          = "import"
)

// InventoryService owns every mutation of inventory records and their FIFO
// cost layers. Each mutating operation is one transaction per (store, product)
// key: the record row is locked, layers are read and written under that lock,
// and alert state is reconciled before commit. The audit ledger is appended
// after commit; a ledger failure is logged but never rolls back the mutation.
type InventoryService struct {
	repo   repository.Store
	alerts *AlertEngine
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(repo repository.Store, alerts *AlertEngine) *InventoryService {
	return &InventoryService{
		repo:   repo,
		alerts: alerts,
	}
}

// Create creates an inventory record for a (store, product) pair, together
// with its initial cost layer when the starting quantity is positive.
func (s *InventoryService) Create(ctx context.Context, tenantID string, userID *string, req *models.CreateInventoryRequest) (*models.InventoryRecord, error) {
	if req.InitialQuantity < 0 {
		return nil, fmt.Errorf("%w: initial quantity must not be negative", ErrValidation)
	}
	if err := validateCostUpdate(req.CostOverride); err != nil {
		return nil, err
	}

	var record *models.InventoryRecord
	var movement *models.StockMovement

	err := s.repo.WithTransaction(ctx, func(tx repository.Store) error {
		// Locking read, never the cache: a stale cached record must not fail
		// a legitimate create, and two racing creates must both reach the
		// insert so the unique index can pick the loser.
		if _, err := tx.GetRecordByKeyForUpdate(ctx, tenantID, req.StoreID, req.ProductID); err == nil {
			return ErrDuplicateRecord
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		product := s.lookupProduct(ctx, tx, tenantID, req.ProductID)

		unitCost := decimal.Zero
		if req.CostOverride != nil {
			unitCost = req.CostOverride.UnitCost
		} else if product != nil {
			unitCost = product.Cost
		}

		record = &models.InventoryRecord{
			StoreID:        req.StoreID,
			ProductID:      req.ProductID,
			Quantity:       req.InitialQuantity,
			MinStockLevel:  req.MinStockLevel,
			MaxStockLevel:  req.MaxStockLevel,
			ReorderLevel:   req.ReorderLevel,
			AvgCost:        unitCost,
			TotalCostValue: unitCost.Mul(decimal.NewFromInt(int64(req.InitialQuantity))).Round(2),
		}
		if req.CostOverride != nil {
			now := time.Now()
			record.LastCostUpdate = &now
		}
		if err := tx.CreateRecord(ctx, tenantID, record); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateRecord
			}
			return err
		}

		if req.InitialQuantity > 0 {
			layerSource := models.CostLayerSourceInitial
			if req.Source == importSource {
				layerSource = models.CostLayerSourceImport
			}
			layer := &models.CostLayer{
				StoreID:           req.StoreID,
				ProductID:         req.ProductID,
				QuantityRemaining: req.InitialQuantity,
				UnitCost:          unitCost,
				Source:            layerSource,
				ReferenceID:       req.ReferenceID,
				Notes:             req.Notes,
			}
			if err := tx.CreateLayer(ctx, tenantID, layer); err != nil {
				return err
			}
		}

		if req.CostOverride != nil {
			if err := s.recordCostChange(ctx, tx, tenantID, userID, record, product, req.CostOverride, movementSource(req.Source)); err != nil {
				return err
			}
		}

		if _, err := s.alerts.SyncTx(ctx, tx, tenantID, record); err != nil {
			return err
		}

		movement = buildMovement(record, 0, record.Quantity, models.MovementActionCreate, movementSource(req.Source), req.ReferenceID, userID, req.Notes, models.JSON{
			"unitCost": unitCost.String(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	appendMovementBestEffort(ctx, s.repo, tenantID, movement)
	return record, nil
}

// Update applies quantity, threshold and cost changes to an existing record.
// A quantity increase opens a new cost layer; a decrease consumes layers in
// FIFO order. A cost-only update never re-layers existing stock: layers keep
// their acquisition cost, and the on-hand value change is logged as a
// revaluation event instead.
func (s *InventoryService) Update(ctx context.Context, tenantID string, userID *string, recordID uuid.UUID, req *models.UpdateInventoryRequest) (*models.InventoryRecord, error) {
	if err := validateCostUpdate(req.CostUpdate); err != nil {
		return nil, err
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}

	var record *models.InventoryRecord
	var movement *models.StockMovement

	err := s.repo.WithTransaction(ctx, func(tx repository.Store) error {
		var err error
		record, err = tx.GetRecordByIDForUpdate(ctx, tenantID, recordID)
		if err != nil {
			return mapNotFound(err)
		}

		before := record.Quantity
		product := s.lookupProduct(ctx, tx, tenantID, record.ProductID)
		meta := models.JSON{}

		if req.MinStockLevel != nil {
			record.MinStockLevel = req.MinStockLevel
		}
		if req.MaxStockLevel != nil {
			record.MaxStockLevel = req.MaxStockLevel
		}
		if req.ReorderLevel != nil {
			record.ReorderLevel = req.ReorderLevel
		}

		if req.CostUpdate != nil {
			meta["oldCost"] = record.AvgCost.String()
			meta["newCost"] = req.CostUpdate.UnitCost.String()
			if err := s.recordCostChange(ctx, tx, tenantID, userID, record, product, req.CostUpdate, movementSource(req.Source)); err != nil {
				return err
			}
		}

		if req.Quantity != nil && *req.Quantity != before {
			delta := *req.Quantity - before
			if delta > 0 {
				layerCost := s.restockCost(record, product, req.CostUpdate)
				layer := &models.CostLayer{
					StoreID:           record.StoreID,
					ProductID:         record.ProductID,
					QuantityRemaining: delta,
					UnitCost:          layerCost,
					Source:            models.CostLayerSourceRestock,
					ReferenceID:       req.ReferenceID,
					Notes:             req.Notes,
				}
				if err := tx.CreateLayer(ctx, tenantID, layer); err != nil {
					return err
				}
			} else {
				fallback := resolveFallbackCost(record, product)
				if _, err := ConsumeLayers(ctx, tx, tenantID, record.StoreID, record.ProductID, -delta, fallback); err != nil {
					return err
				}
			}
			record.Quantity = *req.Quantity
		}

		if req.CostUpdate != nil {
			// Value the whole on-hand quantity at the new cost and log the
			// difference; layers themselves are left untouched.
			oldTotal := record.TotalCostValue
			newTotal := req.CostUpdate.UnitCost.Mul(decimal.NewFromInt(int64(record.Quantity))).Round(2)
			record.AvgCost = req.CostUpdate.UnitCost
			record.TotalCostValue = newTotal

			deltaValue := newTotal.Sub(oldTotal)
			if !deltaValue.IsZero() {
				event := &models.InventoryRevaluationEvent{
					StoreID:    record.StoreID,
					ProductID:  record.ProductID,
					DeltaValue: deltaValue,
					Source:     "cost_update",
					UserID:     userID,
					Metadata: &models.JSON{
						"oldTotalValue": oldTotal.String(),
						"newTotalValue": newTotal.String(),
					},
				}
				if err := tx.CreateRevaluationEvent(ctx, tenantID, event); err != nil {
					return err
				}
			}
		} else if req.Quantity != nil && *req.Quantity != before {
			if err := s.refreshValuation(ctx, tx, tenantID, record); err != nil {
				return err
			}
		}

		if err := tx.SaveRecord(ctx, tenantID, record); err != nil {
			return err
		}
		if _, err := s.alerts.SyncTx(ctx, tx, tenantID, record); err != nil {
			return err
		}

		movement = buildMovement(record, before, record.Quantity, models.MovementActionUpdate, movementSource(req.Source), req.ReferenceID, userID, req.Notes, meta)
		return nil
	})
	if err != nil {
		return nil, err
	}

	appendMovementBestEffort(ctx, s.repo, tenantID, movement)
	return record, nil
}

// Adjust applies a signed delta to a key. A missing record is not an error:
// adjust upserts, starting the record at zero before applying the delta.
func (s *InventoryService) Adjust(ctx context.Context, tenantID string, userID *string, req *models.AdjustStockRequest) (*models.InventoryRecord, error) {
	if req.Delta == 0 {
		return nil, fmt.Errorf("%w: delta must not be zero", ErrValidation)
	}
	if err := validateCostUpdate(req.CostUpdate); err != nil {
		return nil, err
	}

	var record *models.InventoryRecord
	var movement *models.StockMovement

	err := s.repo.WithTransaction(ctx, func(tx repository.Store) error {
		var err error
		record, err = tx.GetRecordByKeyForUpdate(ctx, tenantID, req.StoreID, req.ProductID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			record = &models.InventoryRecord{
				StoreID:   req.StoreID,
				ProductID: req.ProductID,
			}
			if err := tx.CreateRecord(ctx, tenantID, record); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		before := record.Quantity
		product := s.lookupProduct(ctx, tx, tenantID, req.ProductID)

		if req.Delta > 0 {
			layer := &models.CostLayer{
				StoreID:           req.StoreID,
				ProductID:         req.ProductID,
				QuantityRemaining: req.Delta,
				UnitCost:          s.restockCost(record, product, req.CostUpdate),
				Source:            models.CostLayerSourceAdjustment,
				ReferenceID:       req.ReferenceID,
				Notes:             req.Notes,
			}
			if err := tx.CreateLayer(ctx, tenantID, layer); err != nil {
				return err
			}
		} else {
			if -req.Delta > record.Quantity {
				return fmt.Errorf("%w: on hand %d, requested decrease %d", ErrInsufficientStock, record.Quantity, -req.Delta)
			}
			fallback := resolveFallbackCost(record, product)
			if _, err := ConsumeLayers(ctx, tx, tenantID, req.StoreID, req.ProductID, -req.Delta, fallback); err != nil {
				return err
			}
		}

		record.Quantity = before + req.Delta
		if req.CostUpdate != nil {
			if err := s.recordCostChange(ctx, tx, tenantID, userID, record, product, req.CostUpdate, movementSource(req.Source)); err != nil {
				return err
			}
		}
		if err := s.refreshValuation(ctx, tx, tenantID, record); err != nil {
			return err
		}
		if err := tx.SaveRecord(ctx, tenantID, record); err != nil {
			return err
		}
		if _, err := s.alerts.SyncTx(ctx, tx, tenantID, record); err != nil {
			return err
		}

		movement = buildMovement(record, before, record.Quantity, models.MovementActionAdjustment, movementSource(req.Source), req.ReferenceID, userID, req.Notes, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}

	appendMovementBestEffort(ctx, s.repo, tenantID, movement)
	return record, nil
}

// Delete removes a record and its layers. Movement and event logs survive.
func (s *InventoryService) Delete(ctx context.Context, tenantID string, userID *string, recordID uuid.UUID) error {
	var movement *models.StockMovement

	err := s.repo.WithTransaction(ctx, func(tx repository.Store) error {
		record, err := tx.GetRecordByIDForUpdate(ctx, tenantID, recordID)
		if err != nil {
			return mapNotFound(err)
		}

		if err := tx.DeleteRecord(ctx, tenantID, recordID); err != nil {
			return err
		}
		if err := tx.ResolveAlertsForKey(ctx, tenantID, record.StoreID, record.ProductID); err != nil {
			return err
		}

		movement = buildMovement(record, record.Quantity, 0, models.MovementActionDelete, defaultMovementSource, nil, userID, nil, nil)
		return nil
	})
	if err != nil {
		return err
	}

	appendMovementBestEffort(ctx, s.repo, tenantID, movement)
	return nil
}

// GetByID retrieves a record by ID
func (s *InventoryService) GetByID(ctx context.Context, tenantID string, recordID uuid.UUID) (*models.InventoryRecord, error) {
	record, err := s.repo.GetRecordByID(ctx, tenantID, recordID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return record, nil
}

// GetByKey retrieves the record for a (store, product) pair
func (s *InventoryService) GetByKey(ctx context.Context, tenantID string, storeID, productID uuid.UUID) (*models.InventoryRecord, error) {
	record, err := s.repo.GetRecordByKey(ctx, tenantID, storeID, productID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return record, nil
}

// List retrieves records with pagination
func (s *InventoryService) List(ctx context.Context, tenantID string, storeID *uuid.UUID, page, limit int) ([]models.InventoryRecord, int64, error) {
	return s.repo.ListRecords(ctx, tenantID, storeID, page, limit)
}

// Movements reads the audit ledger
func (s *InventoryService) Movements(ctx context.Context, tenantID string, query models.MovementQuery) ([]models.StockMovement, int64, error) {
	return s.repo.QueryMovements(ctx, tenantID, query)
}

// Layers returns the remaining FIFO layers for a key, oldest first
func (s *InventoryService) Layers(ctx context.Context, tenantID string, storeID, productID uuid.UUID) ([]models.CostLayer, error) {
	return s.repo.ListLayers(ctx, tenantID, storeID, productID)
}

// recordCostChange logs a price-change event and propagates the new cost to
// the catalog product.
func (s *InventoryService) recordCostChange(ctx context.Context, tx repository.Store, tenantID string, userID *string, record *models.InventoryRecord, product *models.Product, update *models.CostUpdate, source string) error {
	event := &models.PriceChangeEvent{
		StoreID:   &record.StoreID,
		ProductID: record.ProductID,
		NewCost:   &update.UnitCost,
		Source:    source,
		UserID:    userID,
	}
	if product != nil {
		oldCost := product.Cost
		oldPrice := product.SalePrice
		event.OldCost = &oldCost
		event.OldSalePrice = &oldPrice
	}
	if update.SalePrice != nil {
		event.NewSalePrice = update.SalePrice
	}
	if err := tx.CreatePriceChangeEvent(ctx, tenantID, event); err != nil {
		return err
	}

	now := time.Now()
	record.LastCostUpdate = &now
	return tx.UpdateProductCost(ctx, tenantID, record.ProductID, update.UnitCost, update.SalePrice)
}

// refreshValuation recomputes the record's value snapshot from its layers
func (s *InventoryService) refreshValuation(ctx context.Context, tx repository.Store, tenantID string, record *models.InventoryRecord) error {
	layers, err := tx.ListLayers(ctx, tenantID, record.StoreID, record.ProductID)
	if err != nil {
		return err
	}
	totalValue, totalQuantity := LayerValuation(layers)
	record.TotalCostValue = totalValue.Round(2)
	if totalQuantity > 0 {
		record.AvgCost = totalValue.Div(decimal.NewFromInt(int64(totalQuantity))).Round(4)
	}
	return nil
}

func (s *InventoryService) lookupProduct(ctx context.Context, tx repository.Store, tenantID string, productID uuid.UUID) *models.Product {
	product, err := tx.GetProduct(ctx, tenantID, productID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).WithField("product_id", productID).Warn("Product lookup failed; falling back to record cost")
		}
		return nil
	}
	return product
}

// restockCost prices a newly created layer: explicit cost update first, then
// the catalog cost, then the record's current average.
func (s *InventoryService) restockCost(record *models.InventoryRecord, product *models.Product, update *models.CostUpdate) decimal.Decimal {
	if update != nil {
		return update.UnitCost
	}
	if product != nil && product.Cost.IsPositive() {
		return product.Cost
	}
	return record.AvgCost
}

// resolveFallbackCost determines the unit cost charged for consumption beyond
// the available layers: record average first, then catalog cost, then zero.
func resolveFallbackCost(record *models.InventoryRecord, product *models.Product) decimal.Decimal {
	if record.AvgCost.IsPositive() {
		return record.AvgCost
	}
	if product != nil && product.Cost.IsPositive() {
		return product.Cost
	}
	return decimal.Zero
}

func validateCostUpdate(update *models.CostUpdate) error {
	if update == nil {
		return nil
	}
	if update.UnitCost.IsNegative() {
		return fmt.Errorf("%w: unit cost must not be negative", ErrValidation)
	}
	if update.SalePrice != nil && update.SalePrice.IsNegative() {
		return fmt.Errorf("%w: sale price must not be negative", ErrValidation)
	}
	return nil
}

func movementSource(source string) string {
	if source == "" {
		return defaultMovementSource
	}
	return source
}

func buildMovement(record *models.InventoryRecord, before, after int, action models.MovementAction, source string, referenceID *uuid.UUID, userID *string, notes *string, metadata models.JSON) *models.StockMovement {
	m := &models.StockMovement{
		StoreID:        record.StoreID,
		ProductID:      record.ProductID,
		QuantityBefore: before,
		QuantityAfter:  after,
		Delta:          after - before,
		ActionType:     action,
		Source:         source,
		ReferenceID:    referenceID,
		UserID:         userID,
		Notes:          notes,
		OccurredAt:     time.Now(),
	}
	if len(metadata) > 0 {
		m.Metadata = &metadata
	}
	return m
}

// appendMovementBestEffort writes the audit row after the primary mutation
// committed. Inventory-state correctness wins over audit completeness, so a
// failed append is logged and swallowed.
func appendMovementBestEffort(ctx context.Context, repo repository.Store, tenantID string, movement *models.StockMovement) {
	if movement == nil {
		return
	}
	if err := repo.AppendMovement(ctx, tenantID, movement); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"tenant_id":   tenantID,
			"store_id":    movement.StoreID,
			"product_id":  movement.ProductID,
			"action_type": movement.ActionType,
		}).Error("Failed to append stock movement")
	}
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	return err
}

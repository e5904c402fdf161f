package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"pos-backoffice-service/internal/models"
	"pos-backoffice-service/internal/repository"
)

// RemovalService handles deliberate non-sale stock decreases (damage, expiry,
// theft, manufacturer returns) with loss and refund accounting against the
// FIFO cost of the removed units.
type RemovalService struct {
	repo   repository.Store
	alerts *AlertEngine
}

// NewRemovalService creates a new RemovalService
func NewRemovalService(repo repository.Store, alerts *AlertEngine) *RemovalService {
	return &RemovalService{
		repo:   repo,
		alerts: alerts,
	}
}

// RemoveStock removes quantity units from a key. The removed units are priced
// at FIFO cost, the refund is resolved from the refund type, and
// lossAmount = max(0, cost - refund). A loss is additionally logged as a
// revaluation event tagged stock_removal_<reason> for the profit/loss
// aggregator. Fails with ErrInsufficientStock when quantity exceeds on-hand;
// nothing is applied in that case.
func (s *RemovalService) RemoveStock(ctx context.Context, tenantID string, userID *string, req *models.RemoveStockRequest) (*models.RemovalResult, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: removal quantity must be positive", ErrValidation)
	}
	if !req.Reason.IsValid() {
		return nil, fmt.Errorf("%w: unknown removal reason %q", ErrValidation, req.Reason)
	}
	if !req.RefundType.IsValid() {
		return nil, fmt.Errorf("%w: unknown refund type %q", ErrValidation, req.RefundType)
	}
	if req.RefundType == models.RefundTypePartial && req.RefundAmount == nil && req.RefundPerUnit == nil {
		return nil, fmt.Errorf("%w: partial refund requires refundAmount or refundPerUnit", ErrValidation)
	}
	if req.RefundAmount != nil && req.RefundAmount.IsNegative() {
		return nil, fmt.Errorf("%w: refund amount must not be negative", ErrValidation)
	}
	if req.RefundPerUnit != nil && req.RefundPerUnit.IsNegative() {
		return nil, fmt.Errorf("%w: refund per unit must not be negative", ErrValidation)
	}

	var result *models.RemovalResult
	var movement *models.StockMovement

	err := s.repo.WithTransaction(ctx, func(tx repository.Store) error {
		record, err := tx.GetRecordByKeyForUpdate(ctx, tenantID, req.StoreID, req.ProductID)
		if err != nil {
			return mapNotFound(err)
		}

		if req.Quantity > record.Quantity {
			return fmt.Errorf("%w: on hand %d, requested removal %d", ErrInsufficientStock, record.Quantity, req.Quantity)
		}

		var product *models.Product
		if p, err := tx.GetProduct(ctx, tenantID, record.ProductID); err == nil {
			product = p
		}
		fallback := resolveFallbackCost(record, product)

		cost, err := PreviewLayerCost(ctx, tx, tenantID, req.StoreID, req.ProductID, req.Quantity, fallback)
		if err != nil {
			return err
		}

		refund := resolveRefund(req, cost)
		loss := cost.Sub(refund)
		if loss.IsNegative() {
			loss = decimal.Zero
		}

		if _, err := ConsumeLayers(ctx, tx, tenantID, req.StoreID, req.ProductID, req.Quantity, fallback); err != nil {
			return err
		}

		before := record.Quantity
		record.Quantity = before - req.Quantity

		layers, err := tx.ListLayers(ctx, tenantID, record.StoreID, record.ProductID)
		if err != nil {
			return err
		}
		totalValue, totalQuantity := LayerValuation(layers)
		record.TotalCostValue = totalValue.Round(2)
		if totalQuantity > 0 {
			record.AvgCost = totalValue.Div(decimal.NewFromInt(int64(totalQuantity))).Round(4)
		}
		if err := tx.SaveRecord(ctx, tenantID, record); err != nil {
			return err
		}

		if loss.IsPositive() {
			event := &models.InventoryRevaluationEvent{
				StoreID:    record.StoreID,
				ProductID:  record.ProductID,
				DeltaValue: loss.Neg(),
				Source:     models.StockRemovalSourcePrefix + string(req.Reason),
				UserID:     userID,
				Metadata: &models.JSON{
					"reason":             string(req.Reason),
					"refundType":         string(req.RefundType),
					"quantity":           req.Quantity,
					"costOfRemovedItems": cost.String(),
					"refundAmount":       refund.String(),
					"lossAmount":         loss.String(),
				},
			}
			if err := tx.CreateRevaluationEvent(ctx, tenantID, event); err != nil {
				return err
			}
		}

		if _, err := s.alerts.SyncTx(ctx, tx, tenantID, record); err != nil {
			return err
		}

		movement = buildMovement(record, before, record.Quantity, models.MovementActionRemoval, string(req.Reason), nil, userID, req.Notes, models.JSON{
			"reason":             string(req.Reason),
			"refundType":         string(req.RefundType),
			"costOfRemovedItems": cost.String(),
			"refundAmount":       refund.String(),
			"lossAmount":         loss.String(),
		})

		result = &models.RemovalResult{
			Inventory:          record,
			QuantityRemoved:    req.Quantity,
			CostOfRemovedItems: cost,
			RefundAmount:       refund,
			LossAmount:         loss,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	appendMovementBestEffort(ctx, s.repo, tenantID, movement)
	return result, nil
}

func resolveRefund(req *models.RemoveStockRequest, cost decimal.Decimal) decimal.Decimal {
	switch req.RefundType {
	case models.RefundTypeFull:
		return cost
	case models.RefundTypePartial:
		if req.RefundAmount != nil {
			return *req.RefundAmount
		}
		return req.RefundPerUnit.Mul(decimal.NewFromInt(int64(req.Quantity)))
	default:
		return decimal.Zero
	}
}

package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pos-backoffice-service/internal/models"
	"pos-backoffice-service/internal/repository"
)

// LayerConsumption is one layer's share of a planned consumption.
type LayerConsumption struct {
	Layer    *models.CostLayer
	Quantity int
}

// ConsumptionPlan is the outcome of walking the FIFO layers for a requested
// quantity. Shortfall units beyond the available layers are priced at the
// fallback cost instead of failing, so a record whose layers drifted from its
// quantity still gets a defensible valuation.
type ConsumptionPlan struct {
	Consumptions []LayerConsumption
	TotalCost    decimal.Decimal
	FromLayers   int
	Shortfall    int
	FallbackCost decimal.Decimal
}

// PlanConsumption computes which layers a consumption of quantity units would
// touch and what it would cost, without mutating anything. Layers must already
// be in FIFO order (oldest first).
func PlanConsumption(layers []models.CostLayer, quantity int, fallbackCost decimal.Decimal) (*ConsumptionPlan, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: consumption quantity must be positive, got %d", ErrValidation, quantity)
	}

	plan := &ConsumptionPlan{
		TotalCost:    decimal.Zero,
		FallbackCost: fallbackCost,
	}

	remaining := quantity
	for i := range layers {
		if remaining == 0 {
			break
		}
		layer := &layers[i]
		if layer.QuantityRemaining <= 0 {
			continue
		}

		take := layer.QuantityRemaining
		if take > remaining {
			take = remaining
		}

		plan.Consumptions = append(plan.Consumptions, LayerConsumption{
			Layer:    layer,
			Quantity: take,
		})
		plan.TotalCost = plan.TotalCost.Add(layer.UnitCost.Mul(decimal.NewFromInt(int64(take))))
		plan.FromLayers += take
		remaining -= take
	}

	if remaining > 0 {
		plan.Shortfall = remaining
		plan.TotalCost = plan.TotalCost.Add(fallbackCost.Mul(decimal.NewFromInt(int64(remaining))))
	}

	return plan, nil
}

// PreviewLayerCost prices a consumption without mutating layer state.
func PreviewLayerCost(ctx context.Context, store repository.Store, tenantID string, storeID, productID uuid.UUID, quantity int, fallbackCost decimal.Decimal) (decimal.Decimal, error) {
	layers, err := store.ListLayers(ctx, tenantID, storeID, productID)
	if err != nil {
		return decimal.Zero, err
	}
	plan, err := PlanConsumption(layers, quantity, fallbackCost)
	if err != nil {
		return decimal.Zero, err
	}
	return plan.TotalCost, nil
}

// ConsumeLayers applies a FIFO consumption for real: partially consumed layers
// are saved with their reduced remainder, exhausted layers are deleted.
// Must be called on a transactional store holding the record's row lock.
func ConsumeLayers(ctx context.Context, tx repository.Store, tenantID string, storeID, productID uuid.UUID, quantity int, fallbackCost decimal.Decimal) (decimal.Decimal, error) {
	layers, err := tx.ListLayers(ctx, tenantID, storeID, productID)
	if err != nil {
		return decimal.Zero, err
	}
	plan, err := PlanConsumption(layers, quantity, fallbackCost)
	if err != nil {
		return decimal.Zero, err
	}

	for _, c := range plan.Consumptions {
		c.Layer.QuantityRemaining -= c.Quantity
		if c.Layer.QuantityRemaining <= 0 {
			if err := tx.DeleteLayer(ctx, tenantID, c.Layer.ID); err != nil {
				return decimal.Zero, err
			}
		} else {
			if err := tx.SaveLayer(ctx, tenantID, c.Layer); err != nil {
				return decimal.Zero, err
			}
		}
	}

	return plan.TotalCost, nil
}

// LayerValuation sums the remaining value and quantity across layers.
func LayerValuation(layers []models.CostLayer) (totalValue decimal.Decimal, totalQuantity int) {
	totalValue = decimal.Zero
	for _, l := range layers {
		if l.QuantityRemaining <= 0 {
			continue
		}
		totalValue = totalValue.Add(l.RemainingValue())
		totalQuantity += l.QuantityRemaining
	}
	return totalValue, totalQuantity
}

package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"pos-backoffice-service/internal/models"
	"pos-backoffice-service/internal/repository"
)

var oneHundred = decimal.NewFromInt(100)

// MarginService evaluates a proposed sale price against the current FIFO cost
// layers. Read-only: callers use it to warn before committing a price change,
// never to block one.
type MarginService struct {
	repo repository.Store
}

// NewMarginService creates a new MarginService
func NewMarginService(repo repository.Store) *MarginService {
	return &MarginService{repo: repo}
}

// AnalyzeMargin computes per-layer and aggregate profitability at the proposed
// price. recommendedMinPrice is the highest layer cost, the cheapest price at
// which no remaining unit sells at a loss.
func (s *MarginService) AnalyzeMargin(ctx context.Context, tenantID string, req *models.MarginAnalysisRequest) (*models.MarginAnalysis, error) {
	if req.ProposedSalePrice.IsNegative() {
		return nil, fmt.Errorf("%w: proposed sale price must not be negative", ErrValidation)
	}

	record, err := s.repo.GetRecordByKey(ctx, tenantID, req.StoreID, req.ProductID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	layers, err := s.repo.ListLayers(ctx, tenantID, req.StoreID, req.ProductID)
	if err != nil {
		return nil, err
	}

	price := req.ProposedSalePrice
	analysis := &models.MarginAnalysis{
		StoreID:             req.StoreID,
		ProductID:           req.ProductID,
		ProposedSalePrice:   price,
		Layers:              make([]models.LayerMargin, 0, len(layers)),
		WeightedAverageCost: record.AvgCost,
		RecommendedMinPrice: record.AvgCost,
	}

	totalValue := decimal.Zero
	maxCost := decimal.Zero
	for _, layer := range layers {
		margin := price.Sub(layer.UnitCost)
		losing := margin.IsNegative()

		analysis.Layers = append(analysis.Layers, models.LayerMargin{
			LayerID:           layer.ID,
			QuantityRemaining: layer.QuantityRemaining,
			UnitCost:          layer.UnitCost,
			Margin:            margin,
			MarginPercent:     marginPercent(margin, price),
			WouldLoseMoney:    losing,
			CreatedAt:         layer.CreatedAt,
		})

		analysis.TotalQuantity += layer.QuantityRemaining
		totalValue = totalValue.Add(layer.RemainingValue())
		if layer.UnitCost.GreaterThan(maxCost) {
			maxCost = layer.UnitCost
		}
		if losing {
			analysis.LayersAtLoss++
			analysis.QuantityAtLoss += layer.QuantityRemaining
		}
	}

	if analysis.TotalQuantity > 0 {
		analysis.WeightedAverageCost = totalValue.Div(decimal.NewFromInt(int64(analysis.TotalQuantity))).Round(4)
		analysis.RecommendedMinPrice = maxCost
	}

	analysis.Margin = price.Sub(analysis.WeightedAverageCost)
	analysis.MarginPercent = marginPercent(analysis.Margin, price)
	analysis.WouldLoseMoney = analysis.Margin.IsNegative()

	return analysis, nil
}

// marginPercent returns margin/price*100, or zero for a zero price
func marginPercent(margin, price decimal.Decimal) decimal.Decimal {
	if price.IsZero() {
		return decimal.Zero
	}
	return margin.Div(price).Mul(oneHundred).Round(2)
}

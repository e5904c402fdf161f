package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pos-backoffice-service/internal/models"
	"pos-backoffice-service/internal/repository"
)

// ReportingService reconciles sales, refunds, revaluations and stock-removal
// losses into a profit/loss view, and serves the read-only history and
// summary endpoints.
type ReportingService struct {
	repo repository.Store
}

// NewReportingService creates a new ReportingService
func NewReportingService(repo repository.Store) *ReportingService {
	return &ReportingService{repo: repo}
}

// GetProfitLoss aggregates a store's window:
//
//	netCost = cogsFromSales + inventoryAdjustments
//	profit  = (revenue - refunds - netCost) - stockRemovalLoss + manufacturerRefunds
//
// where inventoryAdjustments is the negated sum of revaluation deltas
// excluding stock-removal sourced events: a write-down (negative delta) is
// absorbed cost and raises netCost, a write-up lowers it. Stock-removal
// events are instead broken out into loss and refund totals from their
// metadata.
func (s *ReportingService) GetProfitLoss(ctx context.Context, tenantID string, storeID uuid.UUID, start, end time.Time) (*models.ProfitLossResult, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end must be after start", ErrValidation)
	}

	revenue, cogs, err := s.repo.SalesTotals(ctx, tenantID, storeID, start, end)
	if err != nil {
		return nil, err
	}
	refunds, refundCount, err := s.repo.RefundTotals(ctx, tenantID, storeID, start, end)
	if err != nil {
		return nil, err
	}
	revaluations, err := s.repo.ListRevaluationsInWindow(ctx, tenantID, storeID, start, end)
	if err != nil {
		return nil, err
	}

	result := &models.ProfitLossResult{
		StoreID:              storeID,
		Start:                start,
		End:                  end,
		Revenue:              revenue,
		CogsFromSales:        cogs,
		InventoryAdjustments: decimal.Zero,
		RefundAmount:         refunds,
		RefundCount:          refundCount,
		StockRemovalLoss:     decimal.Zero,
		ManufacturerRefunds:  decimal.Zero,
	}

	for _, event := range revaluations {
		if !strings.HasPrefix(event.Source, models.StockRemovalSourcePrefix) {
			result.InventoryAdjustments = result.InventoryAdjustments.Sub(event.DeltaValue)
			continue
		}

		result.StockRemovalCount++
		loss := metadataDecimal(event.Metadata, "lossAmount")
		if loss.IsZero() {
			loss = event.DeltaValue.Neg()
		}
		result.StockRemovalLoss = result.StockRemovalLoss.Add(loss)

		if strings.TrimPrefix(event.Source, models.StockRemovalSourcePrefix) == string(models.RemovalReasonReturnedToManufacturer) {
			refund := metadataDecimal(event.Metadata, "refundAmount")
			if refund.IsPositive() {
				result.ManufacturerRefunds = result.ManufacturerRefunds.Add(refund)
				result.ManufacturerRefundCount++
			}
		}
	}

	result.NetCost = result.CogsFromSales.Add(result.InventoryAdjustments)
	result.Profit = result.Revenue.
		Sub(result.RefundAmount).
		Sub(result.NetCost).
		Sub(result.StockRemovalLoss).
		Add(result.ManufacturerRefunds)

	return result, nil
}

// PriceHistory returns the merged price-change and revaluation timeline for a
// product, newest first.
func (s *ReportingService) PriceHistory(ctx context.Context, tenantID string, productID uuid.UUID, storeID *uuid.UUID, limit int) ([]models.PriceHistoryEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListPriceHistory(ctx, tenantID, productID, storeID, limit)
}

// Summary returns the org-wide inventory rollup for dashboards
func (s *ReportingService) Summary(ctx context.Context, tenantID string) (*models.InventorySummary, error) {
	return s.repo.OrgInventorySummary(ctx, tenantID)
}

// metadataDecimal reads a decimal value out of event metadata, tolerating both
// the string form written by this service and raw JSON numbers.
func metadataDecimal(metadata *models.JSON, key string) decimal.Decimal {
	if metadata == nil {
		return decimal.Zero
	}
	raw, ok := (*metadata)[key]
	if !ok {
		return decimal.Zero
	}
	switch v := raw.(type) {
	case string:
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(v)
	}
	return decimal.Zero
}

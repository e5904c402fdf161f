package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ============================================================================
// Request models
// ============================================================================

// CostUpdate carries a new acquisition cost (and optionally a new sale price)
// supplied alongside a stock operation.
type CostUpdate struct {
	UnitCost  decimal.Decimal  `json:"unitCost" binding:"required"`
	SalePrice *decimal.Decimal `json:"salePrice,omitempty"`
}

type CreateInventoryRequest struct {
	StoreID         uuid.UUID   `json:"storeId" binding:"required"`
	ProductID       uuid.UUID   `json:"productId" binding:"required"`
	InitialQuantity int         `json:"initialQuantity" binding:"gte=0"`
	CostOverride    *CostUpdate `json:"costOverride,omitempty"`
	MinStockLevel   *int        `json:"minStockLevel,omitempty"`
	MaxStockLevel   *int        `json:"maxStockLevel,omitempty"`
	ReorderLevel    *int        `json:"reorderLevel,omitempty"`
	Source          string      `json:"source,omitempty"`
	ReferenceID     *uuid.UUID  `json:"referenceId,omitempty"`
	Notes           *string     `json:"notes,omitempty"`
}

type UpdateInventoryRequest struct {
	Quantity      *int        `json:"quantity,omitempty" binding:"omitempty,gte=0"`
	MinStockLevel *int        `json:"minStockLevel,omitempty"`
	MaxStockLevel *int        `json:"maxStockLevel,omitempty"`
	ReorderLevel  *int        `json:"reorderLevel,omitempty"`
	CostUpdate    *CostUpdate `json:"costUpdate,omitempty"`
	Source        string      `json:"source,omitempty"`
	ReferenceID   *uuid.UUID  `json:"referenceId,omitempty"`
	Notes         *string     `json:"notes,omitempty"`
}

type AdjustStockRequest struct {
	StoreID     uuid.UUID   `json:"storeId" binding:"required"`
	ProductID   uuid.UUID   `json:"productId" binding:"required"`
	Delta       int         `json:"delta" binding:"required"`
	CostUpdate  *CostUpdate `json:"costUpdate,omitempty"`
	Source      string      `json:"source,omitempty"`
	ReferenceID *uuid.UUID  `json:"referenceId,omitempty"`
	Notes       *string     `json:"notes,omitempty"`
}

type RemoveStockRequest struct {
	StoreID       uuid.UUID        `json:"storeId" binding:"required"`
	ProductID     uuid.UUID        `json:"productId" binding:"required"`
	Quantity      int              `json:"quantity" binding:"required,gt=0"`
	Reason        RemovalReason    `json:"reason" binding:"required"`
	RefundType    RefundType       `json:"refundType" binding:"required"`
	RefundAmount  *decimal.Decimal `json:"refundAmount,omitempty"`
	RefundPerUnit *decimal.Decimal `json:"refundPerUnit,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}

type MarginAnalysisRequest struct {
	StoreID           uuid.UUID       `json:"storeId" binding:"required"`
	ProductID         uuid.UUID       `json:"productId" binding:"required"`
	ProposedSalePrice decimal.Decimal `json:"proposedSalePrice"`
}

// MovementQuery filters ledger reads; results always order occurred_at DESC.
type MovementQuery struct {
	StoreID    *uuid.UUID
	ProductID  *uuid.UUID
	ActionType *MovementAction
	UserID     *string
	StartDate  *time.Time
	EndDate    *time.Time
	Page       int
	Limit      int
}

// ============================================================================
// Result models
// ============================================================================

// RemovalResult is the outcome of a stock removal with loss/refund accounting.
type RemovalResult struct {
	Inventory          *InventoryRecord `json:"inventory"`
	QuantityRemoved    int              `json:"quantityRemoved"`
	CostOfRemovedItems decimal.Decimal  `json:"costOfRemovedItems"`
	RefundAmount       decimal.Decimal  `json:"refundAmount"`
	LossAmount         decimal.Decimal  `json:"lossAmount"`
}

// LayerMargin is the per-cohort profitability of one remaining cost layer at a
// proposed sale price.
type LayerMargin struct {
	LayerID           uuid.UUID       `json:"layerId"`
	QuantityRemaining int             `json:"quantityRemaining"`
	UnitCost          decimal.Decimal `json:"unitCost"`
	Margin            decimal.Decimal `json:"margin"`
	MarginPercent     decimal.Decimal `json:"marginPercent"`
	WouldLoseMoney    bool            `json:"wouldLoseMoney"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// MarginAnalysis aggregates per-layer margins for a proposed sale price.
type MarginAnalysis struct {
	StoreID             uuid.UUID       `json:"storeId"`
	ProductID           uuid.UUID       `json:"productId"`
	ProposedSalePrice   decimal.Decimal `json:"proposedSalePrice"`
	Layers              []LayerMargin   `json:"layers"`
	TotalQuantity       int             `json:"totalQuantity"`
	WeightedAverageCost decimal.Decimal `json:"weightedAverageCost"`
	Margin              decimal.Decimal `json:"margin"`
	MarginPercent       decimal.Decimal `json:"marginPercent"`
	RecommendedMinPrice decimal.Decimal `json:"recommendedMinPrice"`
	LayersAtLoss        int             `json:"layersAtLoss"`
	QuantityAtLoss      int             `json:"quantityAtLoss"`
	WouldLoseMoney      bool            `json:"wouldLoseMoney"`
}

// ProfitLossResult reconciles sales revenue against FIFO COGS, revaluations and
// stock-removal losses over a time window.
type ProfitLossResult struct {
	StoreID uuid.UUID `json:"storeId"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`

	Revenue              decimal.Decimal `json:"revenue"`
	CogsFromSales        decimal.Decimal `json:"cogsFromSales"`
	InventoryAdjustments decimal.Decimal `json:"inventoryAdjustments"`
	NetCost              decimal.Decimal `json:"netCost"`

	RefundAmount decimal.Decimal `json:"refundAmount"`
	RefundCount  int64           `json:"refundCount"`

	StockRemovalLoss        decimal.Decimal `json:"stockRemovalLoss"`
	StockRemovalCount       int64           `json:"stockRemovalCount"`
	ManufacturerRefunds     decimal.Decimal `json:"manufacturerRefunds"`
	ManufacturerRefundCount int64           `json:"manufacturerRefundCount"`

	Profit decimal.Decimal `json:"profit"`
}

// StoreInventorySummary is the per-store aggregate exposed for org dashboards.
type StoreInventorySummary struct {
	StoreID        uuid.UUID       `json:"storeId"`
	StoreName      string          `json:"storeName"`
	Records        int64           `json:"records"`
	TotalQuantity  int64           `json:"totalQuantity"`
	TotalCostValue decimal.Decimal `json:"totalCostValue"`
	LowStock       int64           `json:"lowStock"`
	OutOfStock     int64           `json:"outOfStock"`
	Overstocked    int64           `json:"overstocked"`
}

// InventorySummary is the org-wide rollup of per-store aggregates.
type InventorySummary struct {
	TotalRecords   int64                   `json:"totalRecords"`
	TotalQuantity  int64                   `json:"totalQuantity"`
	TotalCostValue decimal.Decimal         `json:"totalCostValue"`
	ActiveAlerts   map[string]int64        `json:"activeAlerts"`
	Stores         []StoreInventorySummary `json:"stores"`
}

// PriceHistoryKind distinguishes the two merged event streams
type PriceHistoryKind string

const (
	PriceHistoryKindPriceChange PriceHistoryKind = "price_change"
	PriceHistoryKindRevaluation PriceHistoryKind = "revaluation"
)

// PriceHistoryEntry is one point of the merged price/cost timeline per product.
type PriceHistoryEntry struct {
	Kind       PriceHistoryKind `json:"kind"`
	OccurredAt time.Time        `json:"occurredAt"`
	Source     string           `json:"source"`

	OldCost      *decimal.Decimal `json:"oldCost,omitempty"`
	NewCost      *decimal.Decimal `json:"newCost,omitempty"`
	OldSalePrice *decimal.Decimal `json:"oldSalePrice,omitempty"`
	NewSalePrice *decimal.Decimal `json:"newSalePrice,omitempty"`
	DeltaValue   *decimal.Decimal `json:"deltaValue,omitempty"`
	Metadata     *JSON            `json:"metadata,omitempty"`
}

// ============================================================================
// Response envelopes
// ============================================================================

type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}

// PaginationMeta represents pagination metadata
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

type InventoryResponse struct {
	Success bool             `json:"success"`
	Data    *InventoryRecord `json:"data,omitempty"`
	Message *string          `json:"message,omitempty"`
}

type InventoryListResponse struct {
	Success    bool              `json:"success"`
	Data       []InventoryRecord `json:"data"`
	Pagination *PaginationMeta   `json:"pagination,omitempty"`
}

type MovementListResponse struct {
	Success    bool            `json:"success"`
	Data       []StockMovement `json:"data"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
}

type LayerListResponse struct {
	Success bool        `json:"success"`
	Data    []CostLayer `json:"data"`
}

type AlertResponse struct {
	Success bool           `json:"success"`
	Data    *LowStockAlert `json:"data,omitempty"`
	Message *string        `json:"message,omitempty"`
}

type AlertListResponse struct {
	Success    bool            `json:"success"`
	Data       []LowStockAlert `json:"data"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
}

type RemovalResponse struct {
	Success bool           `json:"success"`
	Data    *RemovalResult `json:"data,omitempty"`
}

type MarginResponse struct {
	Success bool            `json:"success"`
	Data    *MarginAnalysis `json:"data,omitempty"`
}

type ProfitLossResponse struct {
	Success bool              `json:"success"`
	Data    *ProfitLossResult `json:"data,omitempty"`
}

type SummaryResponse struct {
	Success bool              `json:"success"`
	Data    *InventorySummary `json:"data,omitempty"`
}

type PriceHistoryResponse struct {
	Success bool                `json:"success"`
	Data    []PriceHistoryEntry `json:"data"`
}

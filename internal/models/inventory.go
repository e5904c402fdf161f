package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// JSON type for PostgreSQL JSONB
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// InventoryRecord is the current-state stock projection per (store, product).
// Quantity is authoritative; AvgCost/TotalCostValue are convenience snapshots that
// may drift from the FIFO layer total after cost-only updates (layers keep their
// original acquisition cost).
type InventoryRecord struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	// The key index is partial so a soft-deleted row never blocks re-creating
	// the same (store, product) pair.
	TenantID  string    `json:"tenantId" gorm:"type:varchar(255);not null;index;uniqueIndex:idx_inventory_key,where:deleted_at IS NULL"`
	StoreID   uuid.UUID `json:"storeId" gorm:"type:uuid;not null;index;uniqueIndex:idx_inventory_key,where:deleted_at IS NULL"`
	ProductID uuid.UUID `json:"productId" gorm:"type:uuid;not null;index;uniqueIndex:idx_inventory_key,where:deleted_at IS NULL"`

	Quantity int `json:"quantity" gorm:"not null;default:0"`

	// Thresholds driving the alert state machine. Nil means unset.
	MinStockLevel *int `json:"minStockLevel,omitempty"`
	MaxStockLevel *int `json:"maxStockLevel,omitempty"`
	ReorderLevel  *int `json:"reorderLevel,omitempty"`

	AvgCost        decimal.Decimal `json:"avgCost" gorm:"type:decimal(12,4);not null;default:0"`
	TotalCostValue decimal.Decimal `json:"totalCostValue" gorm:"type:decimal(14,2);not null;default:0"`
	LastCostUpdate *time.Time      `json:"lastCostUpdate,omitempty"`

	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

func (InventoryRecord) TableName() string {
	return "inventory_records"
}

// CostLayerSource identifies what created a cost layer
type CostLayerSource string

const (
	CostLayerSourceInitial    CostLayerSource = "INITIAL"
	CostLayerSourceRestock    CostLayerSource = "RESTOCK"
	CostLayerSourceAdjustment CostLayerSource = "ADJUSTMENT"
	CostLayerSourceImport     CostLayerSource = "IMPORT"
)

// CostLayer is a FIFO valuation cohort: a quantity of stock acquired at a fixed
// unit cost. QuantityRemaining only decreases; the row is deleted at zero.
// UnitCost is never edited after creation.
type CostLayer struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID  string    `json:"tenantId" gorm:"type:varchar(255);not null;index"`
	StoreID   uuid.UUID `json:"storeId" gorm:"type:uuid;not null;index:idx_cost_layers_key"`
	ProductID uuid.UUID `json:"productId" gorm:"type:uuid;not null;index:idx_cost_layers_key"`

	QuantityRemaining int             `json:"quantityRemaining" gorm:"not null"`
	UnitCost          decimal.Decimal `json:"unitCost" gorm:"type:decimal(12,4);not null"`

	Source      CostLayerSource `json:"source" gorm:"type:varchar(30);not null"`
	ReferenceID *uuid.UUID      `json:"referenceId,omitempty" gorm:"type:uuid"`
	Notes       *string         `json:"notes,omitempty" gorm:"type:text"`

	// CreatedAt defines FIFO order; Seq breaks ties between layers created in
	// the same instant (monotonic per insert).
	Seq       int64     `json:"-" gorm:"autoIncrement;uniqueIndex"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

func (CostLayer) TableName() string {
	return "cost_layers"
}

// RemainingValue returns quantityRemaining x unitCost.
func (l CostLayer) RemainingValue() decimal.Decimal {
	return l.UnitCost.Mul(decimal.NewFromInt(int64(l.QuantityRemaining)))
}

// MovementAction classifies a stock movement
type MovementAction string

const (
	MovementActionCreate     MovementAction = "create"
	MovementActionUpdate     MovementAction = "update"
	MovementActionAdjustment MovementAction = "adjustment"
	MovementActionRemoval    MovementAction = "removal"
	MovementActionDelete     MovementAction = "delete"
)

// StockMovement is one append-only audit row per mutating operation on an
// InventoryRecord. Delta may be zero for cost-only updates; metadata captures
// what changed in that case.
type StockMovement struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID  string    `json:"tenantId" gorm:"type:varchar(255);not null;index"`
	StoreID   uuid.UUID `json:"storeId" gorm:"type:uuid;not null;index:idx_stock_movements_key"`
	ProductID uuid.UUID `json:"productId" gorm:"type:uuid;not null;index:idx_stock_movements_key"`

	QuantityBefore int `json:"quantityBefore" gorm:"not null"`
	QuantityAfter  int `json:"quantityAfter" gorm:"not null"`
	Delta          int `json:"delta" gorm:"not null"`

	ActionType  MovementAction `json:"actionType" gorm:"type:varchar(20);not null;index"`
	Source      string         `json:"source" gorm:"type:varchar(50)"`
	ReferenceID *uuid.UUID     `json:"referenceId,omitempty" gorm:"type:uuid"`
	UserID      *string        `json:"userId,omitempty" gorm:"type:varchar(255);index"`
	Notes       *string        `json:"notes,omitempty" gorm:"type:text"`
	Metadata    *JSON          `json:"metadata,omitempty" gorm:"type:jsonb"`

	OccurredAt time.Time `json:"occurredAt" gorm:"not null;index"`
}

func (StockMovement) TableName() string {
	return "stock_movements"
}

// AlertStatus is the derived stock-health category of a (store, product) pair
type AlertStatus string

const (
	AlertStatusHealthy     AlertStatus = "healthy"
	AlertStatusLowStock    AlertStatus = "low_stock"
	AlertStatusOutOfStock  AlertStatus = "out_of_stock"
	AlertStatusOverstocked AlertStatus = "overstocked"
)

// IsAlerting reports whether the status requires an active alert.
func (s AlertStatus) IsAlerting() bool {
	return s == AlertStatusLowStock || s == AlertStatusOutOfStock || s == AlertStatusOverstocked
}

// DeriveAlertStatus computes the alert category from a record's current state.
// out_of_stock wins over everything; overstock only applies when a max is set.
func DeriveAlertStatus(quantity int, minStockLevel, maxStockLevel *int) AlertStatus {
	if quantity <= 0 {
		return AlertStatusOutOfStock
	}
	if minStockLevel != nil && quantity <= *minStockLevel {
		return AlertStatusLowStock
	}
	if maxStockLevel != nil && *maxStockLevel > 0 && quantity > *maxStockLevel {
		return AlertStatusOverstocked
	}
	return AlertStatusHealthy
}

// LowStockAlert is the persisted alert state for a (store, product) pair.
// At most one unresolved alert exists per key; it is updated in place while the
// record stays in an alerting category and soft-closed when it returns to healthy.
type LowStockAlert struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID  string    `json:"tenantId" gorm:"type:varchar(255);not null;index"`
	StoreID   uuid.UUID `json:"storeId" gorm:"type:uuid;not null;index:idx_low_stock_alerts_key"`
	ProductID uuid.UUID `json:"productId" gorm:"type:uuid;not null;index:idx_low_stock_alerts_key"`

	Status        AlertStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	CurrentStock  int         `json:"currentStock" gorm:"not null"`
	MinStockLevel *int        `json:"minStockLevel,omitempty"`
	MaxStockLevel *int        `json:"maxStockLevel,omitempty"`

	IsResolved bool       `json:"isResolved" gorm:"not null;default:false;index"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (LowStockAlert) TableName() string {
	return "low_stock_alerts"
}

// PriceChangeEvent records a cost/price edit on a product. Immutable.
type PriceChangeEvent struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID  string     `json:"tenantId" gorm:"type:varchar(255);not null;index"`
	StoreID   *uuid.UUID `json:"storeId,omitempty" gorm:"type:uuid;index"`
	ProductID uuid.UUID  `json:"productId" gorm:"type:uuid;not null;index"`

	OldCost      *decimal.Decimal `json:"oldCost,omitempty" gorm:"type:decimal(12,4)"`
	NewCost      *decimal.Decimal `json:"newCost,omitempty" gorm:"type:decimal(12,4)"`
	OldSalePrice *decimal.Decimal `json:"oldSalePrice,omitempty" gorm:"type:decimal(12,2)"`
	NewSalePrice *decimal.Decimal `json:"newSalePrice,omitempty" gorm:"type:decimal(12,2)"`

	Source     string    `json:"source" gorm:"type:varchar(50);not null"`
	UserID     *string   `json:"userId,omitempty" gorm:"type:varchar(255)"`
	OccurredAt time.Time `json:"occurredAt" gorm:"not null;index"`
}

func (PriceChangeEvent) TableName() string {
	return "price_change_events"
}

// InventoryRevaluationEvent records a change in inventory value that is not a
// sale: cost edits on on-hand stock and stock-removal losses. Immutable.
// Stock-removal events carry source "stock_removal_<reason>" and metadata with
// the refund/loss breakdown consumed by the profit/loss aggregator.
type InventoryRevaluationEvent struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID  string    `json:"tenantId" gorm:"type:varchar(255);not null;index"`
	StoreID   uuid.UUID `json:"storeId" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `json:"productId" gorm:"type:uuid;not null;index"`

	DeltaValue decimal.Decimal `json:"deltaValue" gorm:"type:decimal(14,2);not null"`
	Source     string          `json:"source" gorm:"type:varchar(60);not null;index"`
	UserID     *string         `json:"userId,omitempty" gorm:"type:varchar(255)"`
	Metadata   *JSON           `json:"metadata,omitempty" gorm:"type:jsonb"`
	OccurredAt time.Time       `json:"occurredAt" gorm:"not null;index"`
}

func (InventoryRevaluationEvent) TableName() string {
	return "inventory_revaluation_events"
}

// StockRemovalSourcePrefix tags revaluation events created by stock removals.
const StockRemovalSourcePrefix = "stock_removal_"

// RemovalReason is the closed set of non-sale stock decrease reasons
type RemovalReason string

const (
	RemovalReasonExpired                RemovalReason = "expired"
	RemovalReasonDamaged                RemovalReason = "damaged"
	RemovalReasonLowSales               RemovalReason = "low_sales"
	RemovalReasonReturnedToManufacturer RemovalReason = "returned_to_manufacturer"
	RemovalReasonTheft                  RemovalReason = "theft"
	RemovalReasonOther                  RemovalReason = "other"
)

// IsValid checks membership in the closed reason enumeration
func (r RemovalReason) IsValid() bool {
	switch r {
	case RemovalReasonExpired, RemovalReasonDamaged, RemovalReasonLowSales,
		RemovalReasonReturnedToManufacturer, RemovalReasonTheft, RemovalReasonOther:
		return true
	}
	return false
}

// RefundType controls how much of a removal's FIFO cost is recovered
type RefundType string

const (
	RefundTypeNone    RefundType = "none"
	RefundTypePartial RefundType = "partial"
	RefundTypeFull    RefundType = "full"
)

// IsValid checks membership in the refund type enumeration
func (t RefundType) IsValid() bool {
	switch t {
	case RefundTypeNone, RefundTypePartial, RefundTypeFull:
		return true
	}
	return false
}

// NotificationType is the outward notification contract's event type
type NotificationType string

const (
	NotificationTypeLowStock    NotificationType = "low_stock"
	NotificationTypeOutOfStock  NotificationType = "out_of_stock"
	NotificationTypeOverstocked NotificationType = "overstocked"
	NotificationTypeResolved    NotificationType = "resolved"
)

// NotificationOutbox rows are appended in the same transaction as the alert
// transition that caused them; a background dispatcher delivers them
// best-effort and stamps PublishedAt. Delivery failure never affects the
// mutation that enqueued the row.
type NotificationOutbox struct {
	ID        uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID  string           `json:"tenantId" gorm:"type:varchar(255);not null;index"`
	StoreID   uuid.UUID        `json:"storeId" gorm:"type:uuid;not null"`
	ProductID uuid.UUID        `json:"productId" gorm:"type:uuid;not null"`
	Type      NotificationType `json:"type" gorm:"type:varchar(20);not null"`

	Title    string `json:"title" gorm:"type:varchar(255);not null"`
	Message  string `json:"message" gorm:"type:text;not null"`
	Priority string `json:"priority" gorm:"type:varchar(20);not null;default:'medium'"`
	Data     *JSON  `json:"data,omitempty" gorm:"type:jsonb"`

	Attempts    int        `json:"attempts" gorm:"not null;default:0"`
	PublishedAt *time.Time `json:"publishedAt,omitempty" gorm:"index"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (NotificationOutbox) TableName() string {
	return "notification_outbox"
}

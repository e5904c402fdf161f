package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Read models owned by collaborating services. This service reads them for
// fallback costs, currency and profit/loss aggregation; the only write it ever
// performs against them is propagating a cost override to products.cost.

// Product is the catalog projection: the fallback-cost source and the target
// of cost-override propagation.
type Product struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID string    `json:"tenantId" gorm:"type:varchar(255);not null;index"`

	SKU  string `json:"sku" gorm:"type:varchar(100);index"`
	Name string `json:"name" gorm:"type:varchar(255);not null"`

	Cost      decimal.Decimal `json:"cost" gorm:"type:decimal(12,4);not null;default:0"`
	SalePrice decimal.Decimal `json:"salePrice" gorm:"type:decimal(12,2);not null;default:0"`

	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

func (Product) TableName() string {
	return "products"
}

// Store is the store projection used for org-level aggregation and currency.
type Store struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID string    `json:"tenantId" gorm:"type:varchar(255);not null;index"`

	Name     string `json:"name" gorm:"type:varchar(255);not null"`
	Currency string `json:"currency" gorm:"type:varchar(3);not null;default:'USD'"`

	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

func (Store) TableName() string {
	return "stores"
}

// TransactionKind distinguishes sales from refunds
type TransactionKind string

const (
	TransactionKindSale   TransactionKind = "SALE"
	TransactionKindRefund TransactionKind = "REFUND"
)

// TransactionStatus gates profit/loss aggregation; only completed
// transactions count.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusVoided    TransactionStatus = "VOIDED"
)

// Transaction is the sales/refund projection consumed by the profit/loss
// aggregator. Written by the POS transaction service, read-only here.
type Transaction struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID string    `json:"tenantId" gorm:"type:varchar(255);not null;index"`
	StoreID  uuid.UUID `json:"storeId" gorm:"type:uuid;not null;index"`

	Kind   TransactionKind   `json:"kind" gorm:"type:varchar(10);not null;index"`
	Status TransactionStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	Total  decimal.Decimal   `json:"total" gorm:"type:decimal(14,2);not null"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`

	Items []TransactionItem `json:"items,omitempty" gorm:"foreignKey:TransactionID"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// TransactionItem carries the FIFO cost captured at sale time
// (TotalCost is priced via cost-layer consumption when the sale commits).
type TransactionItem struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID      string    `json:"tenantId" gorm:"type:varchar(255);not null;index"`
	TransactionID uuid.UUID `json:"transactionId" gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID `json:"productId" gorm:"type:uuid;not null;index"`

	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unitPrice" gorm:"type:decimal(12,2);not null"`
	TotalCost decimal.Decimal `json:"totalCost" gorm:"type:decimal(14,2);not null;default:0"`

	CreatedAt time.Time `json:"createdAt"`
}

func (TransactionItem) TableName() string {
	return "transaction_items"
}

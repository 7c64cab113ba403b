package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
)

// StockIn is the reference document for inbound stock movements. Each line
// generates one inventory transaction inside the same database transaction.
type StockIn struct {
	ID              int             `gorm:"primary_key" json:"id"`
	ReceiptNumber   string          `gorm:"size:40;not null;uniqueIndex" json:"receipt_number"`
	SequenceNo      int64           `gorm:"index" json:"sequence_no"`
	Type            StockInType     `gorm:"size:20;not null" json:"type"`
	SupplierId      int             `gorm:"index;default:0" json:"supplier_id"`
	PurchaseOrderId int             `gorm:"index;default:0" json:"purchase_order_id"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Notes           string          `gorm:"type:text" json:"notes"`
	CreatedBy       int             `json:"created_by"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	Items           []StockInItem   `gorm:"foreignKey:StockInId" json:"items"`
}

type StockInItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	StockInId   int             `gorm:"index;not null" json:"stock_in_id"`
	ProductId   int             `gorm:"index;not null" json:"product_id"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"subtotal"`
	BatchNumber string          `gorm:"size:50" json:"batch_number"`
	ExpiryDate  *time.Time      `json:"expiry_date"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewStockLine struct {
	ProductId   int             `json:"product_id" binding:"required"`
	Quantity    int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	BatchNumber string          `json:"batch_number"`
	ExpiryDate  *time.Time      `json:"expiry_date"`
}

type NewStockIn struct {
	Type       StockInType    `json:"type" binding:"required"`
	SupplierId int            `json:"supplier_id"`
	Items      []NewStockLine `json:"items" binding:"required,min=1,dive"`
	Notes      string         `json:"notes"`
}

func GetStockIn(ctx context.Context, id int) (*StockIn, error) {
	return utils.FetchModel[StockIn](ctx, id, "Items")
}

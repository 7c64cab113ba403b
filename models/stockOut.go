package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
)

// StockOut is the reference document for outbound stock movements outside the
// order path (damage, manual sale, other).
type StockOut struct {
	ID            int             `gorm:"primary_key" json:"id"`
	ReceiptNumber string          `gorm:"size:40;not null;uniqueIndex" json:"receipt_number"`
	SequenceNo    int64           `gorm:"index" json:"sequence_no"`
	Type          StockOutType    `gorm:"size:20;not null" json:"type"`
	OrderId       int             `gorm:"index;default:0" json:"order_id"`
	CustomerId    int             `gorm:"index;default:0" json:"customer_id"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedBy     int             `json:"created_by"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	Items         []StockOutItem  `gorm:"foreignKey:StockOutId" json:"items"`
}

type StockOutItem struct {
	ID         int             `gorm:"primary_key" json:"id"`
	StockOutId int             `gorm:"index;not null" json:"stock_out_id"`
	ProductId  int             `gorm:"index;not null" json:"product_id"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"subtotal"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewStockOut struct {
	Type       StockOutType   `json:"type" binding:"required"`
	OrderId    int            `json:"order_id"`
	CustomerId int            `json:"customer_id"`
	Items      []NewStockLine `json:"items" binding:"required,min=1,dive"`
	Notes      string         `json:"notes"`
}

func GetStockOut(ctx context.Context, id int) (*StockOut, error) {
	return utils.FetchModel[StockOut](ctx, id, "Items")
}

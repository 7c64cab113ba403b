package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
)

type PurchaseOrder struct {
	ID           int                 `gorm:"primary_key" json:"id"`
	OrderNumber  string              `gorm:"size:40;not null;uniqueIndex" json:"order_number"`
	SequenceNo   int64               `gorm:"index" json:"sequence_no"`
	SupplierId   int                 `gorm:"index;not null" json:"supplier_id"`
	Status       PurchaseOrderStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	TotalAmount  decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	ExpectedDate *time.Time          `json:"expected_date"`
	ReceivedAt   *time.Time          `json:"received_at"`
	Notes        string              `gorm:"type:text" json:"notes"`
	CreatedBy    int                 `json:"created_by"`
	CreatedAt    time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
	Items        []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderId" json:"items"`
}

// PurchaseOrderItem tracks ordered vs received quantity so a purchase order
// can be received across several deliveries.
type PurchaseOrderItem struct {
	ID               int             `gorm:"primary_key" json:"id"`
	PurchaseOrderId  int             `gorm:"index;not null" json:"purchase_order_id"`
	ProductId        int             `gorm:"index;not null" json:"product_id"`
	Quantity         int             `gorm:"not null" json:"quantity"`
	ReceivedQuantity int             `gorm:"default:0" json:"received_quantity"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"subtotal"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewPurchaseOrderItem struct {
	ProductId int             `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type NewPurchaseOrder struct {
	SupplierId   int                    `json:"supplier_id" binding:"required"`
	Items        []NewPurchaseOrderItem `json:"items" binding:"required,min=1,dive"`
	ExpectedDate *time.Time             `json:"expected_date"`
	Notes        string                 `json:"notes"`
}

type ReceivedItem struct {
	ProductId   int             `json:"product_id" binding:"required"`
	Quantity    int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	BatchNumber string          `json:"batch_number"`
	ExpiryDate  *time.Time      `json:"expiry_date"`
}

type ReceivePurchaseOrderInput struct {
	ReceivedItems []ReceivedItem `json:"received_items" binding:"required,min=1,dive"`
	Notes         string         `json:"notes"`
}

func GetPurchaseOrder(ctx context.Context, id int) (*PurchaseOrder, error) {
	return utils.FetchModel[PurchaseOrder](ctx, id, "Items")
}

// FullyReceived reports whether every line has received at least its ordered
// quantity.
func (po PurchaseOrder) FullyReceived() bool {
	for _, item := range po.Items {
		if item.ReceivedQuantity < item.Quantity {
			return false
		}
	}
	return len(po.Items) > 0
}

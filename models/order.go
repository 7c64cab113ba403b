package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Order struct {
	ID                   int                       `gorm:"primary_key" json:"id"`
	OrderNumber          string                    `gorm:"size:40;not null;uniqueIndex" json:"order_number"`
	SequenceNo           int64                     `gorm:"index" json:"sequence_no"`
	CustomerId           int                       `gorm:"index;default:0" json:"customer_id"` // 0 = walk-in
	Status               OrderStatus               `gorm:"size:20;not null;default:'pending'" json:"status"`
	PaymentMethod        PaymentMethod             `gorm:"size:20;not null" json:"payment_method"`
	TotalAmount          decimal.Decimal           `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	ShippingCost         decimal.Decimal           `gorm:"type:decimal(20,4);default:0" json:"shipping_cost"`
	DiscountAmount       decimal.Decimal           `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	FinalAmount          decimal.Decimal           `gorm:"type:decimal(20,4);default:0" json:"final_amount"`
	CustomerPaid         decimal.Decimal           `gorm:"type:decimal(20,4);default:0" json:"customer_paid"`
	CODAmount            decimal.Decimal           `gorm:"type:decimal(20,4);default:0" json:"cod_amount"`
	PromotionId          int                       `gorm:"default:0" json:"promotion_id"`
	ShippingMethodId     int                       `gorm:"default:0" json:"shipping_method_id"`
	ShippingAddress      string                    `gorm:"size:255" json:"shipping_address"`
	ShippingPhone        string                    `gorm:"size:20" json:"shipping_phone"`
	TrackingNumber       string                    `gorm:"size:50;index" json:"tracking_number"`
	SalesChannel         string                    `gorm:"size:50;index" json:"sales_channel"`
	ReconciliationStatus OrderReconciliationStatus `gorm:"size:20;default:''" json:"reconciliation_status"`
	Notes                string                    `gorm:"type:text" json:"notes"`
	CreatedBy            int                       `json:"created_by"`
	CreatedAt            time.Time                 `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time                 `gorm:"autoUpdateTime" json:"updated_at"`
	Items                []OrderItem               `gorm:"foreignKey:OrderId" json:"items"`
}

// OrderItem snapshots the product price at order time; rows are never mutated
// after creation, so later product price changes don't rewrite history.
type OrderItem struct {
	ID        int             `gorm:"primary_key" json:"id"`
	OrderId   int             `gorm:"index;not null" json:"order_id"`
	ProductId int             `gorm:"index;not null" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"subtotal"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewOrderItem struct {
	ProductId int `json:"product_id" binding:"required"`
	Quantity  int `json:"quantity" binding:"required,gt=0"`
}

type NewOrder struct {
	CustomerId       int            `json:"customer_id"`
	Items            []NewOrderItem `json:"items" binding:"required,min=1,dive"`
	PaymentMethod    PaymentMethod  `json:"payment_method" binding:"required"`
	ShippingMethodId int            `json:"shipping_method_id"`
	ShippingAddress  string         `json:"shipping_address"`
	ShippingPhone    string         `json:"shipping_phone"`
	PromotionCode    string         `json:"promotion_code"`
	SalesChannel     string         `json:"sales_channel"`
	TrackingNumber   string         `json:"tracking_number"`
	Notes            string         `json:"notes"`
}

func GetOrder(ctx context.Context, id int) (*Order, error) {
	return utils.FetchModel[Order](ctx, id, "Items")
}

func FindOrderByTrackingNumber(tx *gorm.DB, trackingNumber string) (*Order, error) {
	var order Order
	err := tx.Where("tracking_number = ?", trackingNumber).First(&order).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &order, nil
}

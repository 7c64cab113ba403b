package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ShippingMethod struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Name      string          `gorm:"size:100;not null" json:"name"`
	CarrierId int             `gorm:"index;default:0" json:"carrier_id"`
	Cost      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost"`
	IsActive  *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetShippingMethod(ctx context.Context, id int) (*ShippingMethod, error) {
	return utils.FetchModel[ShippingMethod](ctx, id)
}

// Shipment tracks one parcel handed to a carrier for an order. Carrier
// reconciliation matches settlement-file rows against these by tracking number.
type Shipment struct {
	ID                   int                       `gorm:"primary_key" json:"id"`
	OrderId              int                       `gorm:"index;not null" json:"order_id"`
	CarrierId            int                       `gorm:"index;not null" json:"carrier_id"`
	TrackingNumber       string                    `gorm:"size:50;index" json:"tracking_number"`
	CODAmount            decimal.Decimal           `gorm:"type:decimal(20,4);default:0" json:"cod_amount"`
	ShippingCost         decimal.Decimal           `gorm:"type:decimal(20,4);default:0" json:"shipping_cost"`
	ReturnFee            decimal.Decimal           `gorm:"type:decimal(20,4);default:0" json:"return_fee"`
	Status               string                    `gorm:"size:30;default:'pending'" json:"status"`
	ReconciliationStatus OrderReconciliationStatus `gorm:"size:20;default:''" json:"reconciliation_status"`
	ShippedAt            *time.Time                `json:"shipped_at"`
	DeliveredAt          *time.Time                `json:"delivered_at"`
	CreatedAt            time.Time                 `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time                 `gorm:"autoUpdateTime" json:"updated_at"`
}

func FindShipmentByTrackingNumber(tx *gorm.DB, trackingNumber string) (*Shipment, error) {
	var shipment Shipment
	err := tx.Where("tracking_number = ?", trackingNumber).First(&shipment).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &shipment, nil
}

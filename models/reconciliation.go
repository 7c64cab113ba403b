package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Reconciliation is a generated settlement record for one (type, partner,
// period) tuple. Generation reads orders/shipments and materializes line
// items; it never mutates them.
type Reconciliation struct {
	ID                int                  `gorm:"primary_key" json:"id"`
	Code              string               `gorm:"size:40;not null;uniqueIndex" json:"code"`
	SequenceNo        int64                `gorm:"index" json:"sequence_no"`
	Type              ReconciliationType   `gorm:"size:20;not null" json:"type"`
	PartnerId         int                  `gorm:"index;default:0" json:"partner_id"`
	PartnerName       string               `gorm:"size:100" json:"partner_name"`
	PeriodStart       time.Time            `gorm:"not null" json:"period_start"`
	PeriodEnd         time.Time            `gorm:"not null" json:"period_end"`
	Status            ReconciliationStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	TotalAmount       decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	TotalShippingFee  decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"total_shipping_fee"`
	TotalCOD          decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"total_cod"`
	TotalReturnFee    decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"total_return_fee"`
	TotalOtherCharges decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"total_other_charges"`
	TotalDeductions   decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"total_deductions"`
	NetAmount         decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"net_amount"`
	Notes             string               `gorm:"type:text" json:"notes"`
	CreatedBy         int                  `json:"created_by"`
	ConfirmedBy       int                  `gorm:"default:0" json:"confirmed_by"`
	ConfirmedAt       *time.Time           `json:"confirmed_at"`
	ApprovedBy        int                  `gorm:"default:0" json:"approved_by"`
	ApprovedAt        *time.Time           `json:"approved_at"`
	PaidBy            int                  `gorm:"default:0" json:"paid_by"`
	PaidAt            *time.Time           `json:"paid_at"`
	CreatedAt         time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
	Items             []ReconciliationItem `gorm:"foreignKey:ReconciliationId" json:"items"`
}

type ReconciliationItem struct {
	ID               int             `gorm:"primary_key" json:"id"`
	ReconciliationId int             `gorm:"index;not null" json:"reconciliation_id"`
	OrderId          int             `gorm:"index;default:0" json:"order_id"`
	ShipmentId       int             `gorm:"index;default:0" json:"shipment_id"`
	TrackingNumber   string          `gorm:"size:50" json:"tracking_number"`
	OrderAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"order_amount"`
	ShippingFee      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"shipping_fee"`
	CODAmount        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cod_amount"`
	ReturnFee        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"return_fee"`
	OtherCharges     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"other_charges"`
	Deductions       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"deductions"`
	NetAmount        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"net_amount"`
	Notes            string          `gorm:"size:255" json:"notes"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewReconciliation struct {
	Type        string    `json:"type" binding:"required"`
	PartnerId   int       `json:"partner_id"`
	PartnerName string    `json:"partner_name"`
	PeriodStart time.Time `json:"period_start" binding:"required"`
	PeriodEnd   time.Time `json:"period_end" binding:"required"`
	Notes       string    `json:"notes"`
}

func GetReconciliation(ctx context.Context, id int) (*Reconciliation, error) {
	return utils.FetchModel[Reconciliation](ctx, id, "Items")
}

// nextStatus defines the one-way lifecycle; there is no reversal transition.
func (r Reconciliation) nextStatus() (ReconciliationStatus, bool) {
	switch r.Status {
	case ReconciliationStatusPending:
		return ReconciliationStatusConfirmed, true
	case ReconciliationStatusConfirmed:
		return ReconciliationStatusApproved, true
	case ReconciliationStatusApproved:
		return ReconciliationStatusPaid, true
	}
	return "", false
}

// AdvanceStatus moves the reconciliation to target, stamping actor and time.
// Only the immediate next status is accepted.
func (r *Reconciliation) AdvanceStatus(tx *gorm.DB, target ReconciliationStatus, actorId int, now time.Time) error {
	next, ok := r.nextStatus()
	if !ok || next != target {
		return utils.ErrorAlreadyProcessed
	}

	updates := map[string]interface{}{"status": target}
	switch target {
	case ReconciliationStatusConfirmed:
		updates["confirmed_by"] = actorId
		updates["confirmed_at"] = now
	case ReconciliationStatusApproved:
		updates["approved_by"] = actorId
		updates["approved_at"] = now
	case ReconciliationStatusPaid:
		updates["paid_by"] = actorId
		updates["paid_at"] = now
	}

	// guard on current status so two concurrent transitions can't both win
	result := tx.Model(&Reconciliation{}).
		Where("id = ? AND status = ?", r.ID, r.Status).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorAlreadyProcessed
	}
	r.Status = target
	return nil
}

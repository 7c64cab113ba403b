package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Customer struct {
	ID             int             `gorm:"primary_key" json:"id"`
	Name           string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Email          string          `gorm:"size:100" json:"email"`
	Phone          string          `gorm:"size:20" json:"phone"`
	Address        string          `gorm:"size:255" json:"address"`
	// DebtAmount is a read model over debt_transactions; the ledger is the
	// source of truth and cmd/debt-rebuild recomputes this column.
	DebtAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"debt_amount"`
	TotalPurchases decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_purchases"`
	TotalOrders    int             `gorm:"default:0" json:"total_orders"`
	Notes          string          `gorm:"type:text" json:"notes"`
	IsActive       *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	return utils.FetchModel[Customer](ctx, id)
}

// ApplyCustomerPurchase bumps the purchase stats (and debt column for credit
// sales) inside the caller's order transaction.
func ApplyCustomerPurchase(tx *gorm.DB, customerId int, amount decimal.Decimal, onCredit bool) error {
	updates := map[string]interface{}{
		"total_purchases": gorm.Expr("total_purchases + ?", amount),
		"total_orders":    gorm.Expr("total_orders + 1"),
	}
	if onCredit {
		updates["debt_amount"] = gorm.Expr("debt_amount + ?", amount)
	}
	result := tx.Model(&Customer{}).Where("id = ?", customerId).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

func DecrementCustomerDebt(tx *gorm.DB, customerId int, amount decimal.Decimal) error {
	result := tx.Model(&Customer{}).Where("id = ?", customerId).
		Update("debt_amount", gorm.Expr("debt_amount - ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

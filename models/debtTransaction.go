package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/sales_backend/config"
	"github.com/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DebtTransaction is the append-only debt ledger for both customers and
// suppliers. The current balance is always derivable by summing signed
// amounts; customers additionally carry a denormalized column for listing
// screens, updated in the same transaction as the ledger row.
type DebtTransaction struct {
	ID              int                 `gorm:"primary_key" json:"id"`
	EntityType      DebtEntityType      `gorm:"size:20;not null;index:idx_debt_entity" json:"entity_type"`
	EntityId        int                 `gorm:"not null;index:idx_debt_entity" json:"entity_id"`
	TransactionType DebtTransactionType `gorm:"size:20;not null" json:"transaction_type"`
	Amount          decimal.Decimal     `gorm:"type:decimal(20,4);not null" json:"amount"`
	OrderId         int                 `gorm:"default:0" json:"order_id"`
	PurchaseOrderId int                 `gorm:"default:0" json:"purchase_order_id"`
	PaymentMethod   PaymentMethod       `gorm:"size:20" json:"payment_method"`
	Notes           string              `gorm:"type:text" json:"notes"`
	CreatedBy       int                 `json:"created_by"`
	CreatedAt       time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

// DebtPayment is the input for settling part of an outstanding balance.
type DebtPayment struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaymentMethod PaymentMethod   `json:"payment_method" binding:"required"`
	Notes         string          `json:"notes"`
}

func AppendDebtTransaction(tx *gorm.DB, record *DebtTransaction) error {
	if record.Amount.IsNegative() || record.Amount.IsZero() {
		return utils.ErrorValidation
	}
	if err := tx.Create(record).Error; err != nil {
		return err
	}
	// ledger changed: drop the cached balance so the next read recomputes
	_ = utils.ClearDebtBalanceCache(string(record.EntityType), record.EntityId)
	return nil
}

// SumDebtBalance computes the outstanding balance from the ledger inside the
// caller's transaction (uncommitted rows included).
func SumDebtBalance(tx *gorm.DB, entityType DebtEntityType, entityId int) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.Model(&DebtTransaction{}).
		Select("COALESCE(SUM(CASE WHEN transaction_type = 'increase' THEN amount ELSE -amount END), 0)").
		Where("entity_type = ? AND entity_id = ?", entityType, entityId).
		Scan(&balance).Error
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// GetDebtBalance is the read path: cached in Redis, invalidated whenever a
// ledger row is appended.
func GetDebtBalance(ctx context.Context, entityType DebtEntityType, entityId int) (decimal.Decimal, error) {
	cacheKey := utils.DebtBalanceCacheKey(string(entityType), entityId)
	var cached string
	exists, err := config.GetRedisObject(cacheKey, &cached)
	if err == nil && exists {
		if balance, perr := decimal.NewFromString(cached); perr == nil {
			return balance, nil
		}
	}

	db := config.GetDB()
	balance, err := SumDebtBalance(db.WithContext(ctx), entityType, entityId)
	if err != nil {
		return decimal.Zero, err
	}
	_ = config.SetRedisObject(cacheKey, balance.String(), utils.GetCacheLifespan())
	return balance, nil
}

func ListDebtTransactions(ctx context.Context, entityType DebtEntityType, entityId int, limit int) ([]*DebtTransaction, error) {
	db := config.GetDB()
	if limit <= 0 || limit > 200 {
		limit = config.SearchLimit * 5
	}
	var records []*DebtTransaction
	err := db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityId).
		Order("id DESC").Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

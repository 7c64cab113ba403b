package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/sales_backend/config"
	"github.com/mmdatafocus/sales_backend/utils"
	"gorm.io/gorm"
)

// InventoryTransaction is the append-only stock movement ledger. Rows are
// never updated or deleted; product.stock is the derived balance and can be
// rebuilt from this table (cmd/stock-rebuild).
type InventoryTransaction struct {
	ID            int                      `gorm:"primary_key" json:"id"`
	ProductId     int                      `gorm:"index;not null" json:"product_id"`
	Type          InventoryTransactionType `gorm:"size:20;not null" json:"type"`
	Quantity      int                      `gorm:"not null" json:"quantity"`
	ReferenceType InventoryReferenceType   `gorm:"size:30;index:idx_inventory_reference" json:"reference_type"`
	ReferenceId   int                      `gorm:"index:idx_inventory_reference" json:"reference_id"`
	Notes         string                   `gorm:"type:text" json:"notes"`
	CreatedBy     int                      `json:"created_by"`
	CreatedAt     time.Time                `gorm:"autoCreateTime" json:"created_at"`
}

// StockAdjustment is the input for a direct single-product stock change.
// Quantity is a delta for in/out/return but the new absolute stock level for
// type adjustment.
type StockAdjustment struct {
	ProductId     int                      `json:"product_id" binding:"required"`
	Type          InventoryTransactionType `json:"type" binding:"required"`
	Quantity      int                      `json:"quantity"`
	ReferenceType InventoryReferenceType   `json:"reference_type"`
	ReferenceId   int                      `json:"reference_id"`
	Notes         string                   `json:"notes"`
}

// StockAdjustmentResult reports the applied movement together with the stock
// levels around it.
type StockAdjustmentResult struct {
	Transaction   InventoryTransaction `json:"transaction"`
	PreviousStock int                  `json:"previous_stock"`
	NewStock      int                  `json:"new_stock"`
}

// SignedQuantity maps the movement to its effect on stock: in/return are
// positive, out is negative, adjustment carries its own sign.
func (t InventoryTransaction) SignedQuantity() int {
	switch t.Type {
	case InventoryTransactionTypeIn, InventoryTransactionTypeReturn:
		if t.Quantity < 0 {
			return -t.Quantity
		}
		return t.Quantity
	case InventoryTransactionTypeOut:
		if t.Quantity < 0 {
			return t.Quantity
		}
		return -t.Quantity
	default:
		return t.Quantity
	}
}

func AppendInventoryTransaction(tx *gorm.DB, record *InventoryTransaction) error {
	if !record.Type.Valid() || !record.ReferenceType.Valid() {
		return utils.ErrorValidation
	}
	return tx.Create(record).Error
}

func ListInventoryTransactions(ctx context.Context, productId int, limit int) ([]*InventoryTransaction, error) {
	db := config.GetDB()
	if limit <= 0 || limit > 200 {
		limit = config.SearchLimit * 5
	}
	dbCtx := db.WithContext(ctx).Order("id DESC").Limit(limit)
	if productId > 0 {
		dbCtx = dbCtx.Where("product_id = ?", productId)
	}
	var records []*InventoryTransaction
	if err := dbCtx.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

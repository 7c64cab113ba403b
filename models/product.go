package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/sales_backend/config"
	"github.com/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID                int             `gorm:"primary_key" json:"id"`
	Name              string          `gorm:"size:200;not null" json:"name" binding:"required"`
	Sku               string          `gorm:"size:50;index" json:"sku"`
	Price             decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"price"`
	CostPrice         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost_price"`
	Stock             int             `gorm:"not null;default:0" json:"stock"`
	LowStockThreshold int             `gorm:"default:0" json:"low_stock_threshold"`
	ImageURL          string          `gorm:"size:500" json:"image_url"`
	IsActive          *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	return utils.FetchModel[Product](ctx, id)
}

// DeductProductStock is the single code path that takes stock out of a product.
// The conditional WHERE makes check-and-decrement one atomic statement: zero
// rows affected means another transaction got there first, surfaced as
// ErrorInsufficientStock (spec'd behavior for concurrent low-stock orders).
func DeductProductStock(tx *gorm.DB, productId int, qty int) error {
	if qty <= 0 {
		return utils.ErrorValidation
	}
	result := tx.Model(&Product{}).
		Where("id = ? AND stock >= ?", productId, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// distinguish missing product from shortage so callers can report NotFound
		var count int64
		if err := tx.Model(&Product{}).Where("id = ?", productId).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return utils.ErrorRecordNotFound
		}
		return utils.ErrorInsufficientStock
	}
	return nil
}

// AddProductStock increases stock; qty must be positive.
func AddProductStock(tx *gorm.DB, productId int, qty int) error {
	if qty <= 0 {
		return utils.ErrorValidation
	}
	result := tx.Model(&Product{}).
		Where("id = ?", productId).
		Update("stock", gorm.Expr("stock + ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

// SetProductStock sets the absolute stock value (stocktaking completion and
// absolute adjustments only).
func SetProductStock(tx *gorm.DB, productId int, stock int) error {
	if stock < 0 {
		return utils.ErrorInsufficientStock
	}
	result := tx.Model(&Product{}).
		Where("id = ?", productId).
		Update("stock", stock)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

// ListLowStockProducts returns active products at or below their threshold.
func ListLowStockProducts(ctx context.Context) ([]*Product, error) {
	db := config.GetDB()
	var products []*Product
	err := db.WithContext(ctx).
		Where("is_active = 1 AND low_stock_threshold > 0 AND stock <= low_stock_threshold").
		Order("stock ASC").
		Limit(config.SearchLimit * 5).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

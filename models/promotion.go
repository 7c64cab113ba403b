package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Promotion struct {
	ID                int             `gorm:"primary_key" json:"id"`
	Code              string          `gorm:"size:50;not null;uniqueIndex" json:"code"`
	Name              string          `gorm:"size:100" json:"name"`
	Type              PromotionType   `gorm:"size:20;not null" json:"type"`
	Value             decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"value"`
	MinPurchaseAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"min_purchase_amount"`
	MaxDiscountAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"max_discount_amount"`
	StartDate         time.Time       `json:"start_date"`
	EndDate           time.Time       `json:"end_date"`
	UsageLimit        int             `gorm:"default:0" json:"usage_limit"` // 0 = unlimited
	UsedCount         int             `gorm:"default:0" json:"used_count"`
	IsActive          *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

var (
	ErrPromotionInactive    = errors.New("promotion is not active")
	ErrPromotionExpired     = errors.New("promotion is outside its validity period")
	ErrPromotionUsedUp      = errors.New("promotion usage limit reached")
	ErrPromotionMinPurchase = errors.New("order total below promotion minimum")
)

// EligibleFor checks all eligibility rules against an order subtotal at a
// point in time.
func (p Promotion) EligibleFor(orderAmount decimal.Decimal, now time.Time) error {
	if p.IsActive != nil && !*p.IsActive {
		return ErrPromotionInactive
	}
	if now.Before(p.StartDate) || now.After(p.EndDate) {
		return ErrPromotionExpired
	}
	if p.UsageLimit > 0 && p.UsedCount >= p.UsageLimit {
		return ErrPromotionUsedUp
	}
	if orderAmount.LessThan(p.MinPurchaseAmount) {
		return ErrPromotionMinPurchase
	}
	return nil
}

// DiscountFor computes the discount for an order subtotal. Percentage
// promotions cap at MaxDiscountAmount when set; fixed promotions never exceed
// the order amount.
func (p Promotion) DiscountFor(orderAmount decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch p.Type {
	case PromotionTypePercentage:
		discount = orderAmount.Mul(p.Value).Div(decimal.NewFromInt(100))
		if p.MaxDiscountAmount.IsPositive() && discount.GreaterThan(p.MaxDiscountAmount) {
			discount = p.MaxDiscountAmount
		}
	case PromotionTypeFixed:
		discount = p.Value
		if discount.GreaterThan(orderAmount) {
			discount = orderAmount
		}
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount
}

// FindPromotionByCode loads a promotion inside the caller's transaction so
// eligibility and used_count increment see a consistent row.
func FindPromotionByCode(tx *gorm.DB, code string) (*Promotion, error) {
	var promotion Promotion
	err := tx.Where("code = ?", code).First(&promotion).Error
	if err != nil {
		return nil, err
	}
	return &promotion, nil
}

// IncrementPromotionUsage records one application. The conditional WHERE keeps
// concurrent orders from pushing used_count past the limit.
func IncrementPromotionUsage(tx *gorm.DB, promotionId int) error {
	result := tx.Model(&Promotion{}).
		Where("id = ? AND (usage_limit = 0 OR used_count < usage_limit)", promotionId).
		Update("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPromotionUsedUp
	}
	return nil
}

package models

import (
	"testing"
	"time"

	"github.com/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
)

func activePromotion(pType PromotionType, value int64) Promotion {
	return Promotion{
		Type:      pType,
		Value:     decimal.NewFromInt(value),
		StartDate: time.Now().Add(-24 * time.Hour),
		EndDate:   time.Now().Add(24 * time.Hour),
		IsActive:  utils.NewTrue(),
	}
}

func TestPromotionDiscountFor_PercentageCap(t *testing.T) {
	p := activePromotion(PromotionTypePercentage, 20)
	p.MaxDiscountAmount = decimal.NewFromInt(100000)

	// 20% of 1,000,000 is 200,000, capped at 100,000
	discount := p.DiscountFor(decimal.NewFromInt(1000000))
	if !discount.Equal(decimal.NewFromInt(100000)) {
		t.Fatalf("expected capped discount 100000, got %s", discount.String())
	}

	// under the cap the percentage applies as-is
	discount = p.DiscountFor(decimal.NewFromInt(400000))
	if !discount.Equal(decimal.NewFromInt(80000)) {
		t.Fatalf("expected 80000, got %s", discount.String())
	}
}

func TestPromotionDiscountFor_PercentageNoCap(t *testing.T) {
	p := activePromotion(PromotionTypePercentage, 10)
	discount := p.DiscountFor(decimal.NewFromInt(1000000))
	if !discount.Equal(decimal.NewFromInt(100000)) {
		t.Fatalf("expected 100000, got %s", discount.String())
	}
}

func TestPromotionDiscountFor_FixedCappedAtOrderAmount(t *testing.T) {
	p := activePromotion(PromotionTypeFixed, 50000)

	discount := p.DiscountFor(decimal.NewFromInt(30000))
	if !discount.Equal(decimal.NewFromInt(30000)) {
		t.Fatalf("fixed discount must not exceed order amount, got %s", discount.String())
	}

	discount = p.DiscountFor(decimal.NewFromInt(200000))
	if !discount.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("expected 50000, got %s", discount.String())
	}
}

func TestPromotionEligibleFor(t *testing.T) {
	now := time.Now()

	p := activePromotion(PromotionTypeFixed, 10000)
	if err := p.EligibleFor(decimal.NewFromInt(100000), now); err != nil {
		t.Fatalf("expected eligible, got %v", err)
	}

	inactive := activePromotion(PromotionTypeFixed, 10000)
	inactive.IsActive = utils.NewFalse()
	if err := inactive.EligibleFor(decimal.NewFromInt(100000), now); err != ErrPromotionInactive {
		t.Fatalf("expected ErrPromotionInactive, got %v", err)
	}

	expired := activePromotion(PromotionTypeFixed, 10000)
	expired.EndDate = now.Add(-time.Hour)
	if err := expired.EligibleFor(decimal.NewFromInt(100000), now); err != ErrPromotionExpired {
		t.Fatalf("expected ErrPromotionExpired, got %v", err)
	}

	notStarted := activePromotion(PromotionTypeFixed, 10000)
	notStarted.StartDate = now.Add(time.Hour)
	if err := notStarted.EligibleFor(decimal.NewFromInt(100000), now); err != ErrPromotionExpired {
		t.Fatalf("expected ErrPromotionExpired before start, got %v", err)
	}

	usedUp := activePromotion(PromotionTypeFixed, 10000)
	usedUp.UsageLimit = 5
	usedUp.UsedCount = 5
	if err := usedUp.EligibleFor(decimal.NewFromInt(100000), now); err != ErrPromotionUsedUp {
		t.Fatalf("expected ErrPromotionUsedUp, got %v", err)
	}

	minPurchase := activePromotion(PromotionTypeFixed, 10000)
	minPurchase.MinPurchaseAmount = decimal.NewFromInt(500000)
	if err := minPurchase.EligibleFor(decimal.NewFromInt(100000), now); err != ErrPromotionMinPurchase {
		t.Fatalf("expected ErrPromotionMinPurchase, got %v", err)
	}
}

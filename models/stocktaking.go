package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/sales_backend/utils"
)

// Stocktaking snapshots system quantities at count time; stock is only
// adjusted when the count is completed, never on creation.
type Stocktaking struct {
	ID          int               `gorm:"primary_key" json:"id"`
	Code        string            `gorm:"size:40;not null;uniqueIndex" json:"code"`
	SequenceNo  int64             `gorm:"index" json:"sequence_no"`
	Status      StocktakingStatus `gorm:"size:20;not null;default:'draft'" json:"status"`
	Notes       string            `gorm:"type:text" json:"notes"`
	CreatedBy   int               `json:"created_by"`
	CompletedBy int               `gorm:"default:0" json:"completed_by"`
	CompletedAt *time.Time        `json:"completed_at"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
	Items       []StocktakingItem `gorm:"foreignKey:StocktakingId" json:"items"`
}

type StocktakingItem struct {
	ID              int       `gorm:"primary_key" json:"id"`
	StocktakingId   int       `gorm:"index;not null" json:"stocktaking_id"`
	ProductId       int       `gorm:"index;not null" json:"product_id"`
	SystemQuantity  int       `gorm:"not null" json:"system_quantity"`
	CountedQuantity int       `gorm:"not null" json:"counted_quantity"`
	Difference      int       `gorm:"not null" json:"difference"` // counted - system
	Notes           string    `gorm:"size:255" json:"notes"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewStocktakingItem struct {
	ProductId       int    `json:"product_id" binding:"required"`
	CountedQuantity int    `json:"counted_quantity" binding:"gte=0"`
	Notes           string `json:"notes"`
}

type NewStocktaking struct {
	Items []NewStocktakingItem `json:"items" binding:"required,min=1,dive"`
	Notes string               `json:"notes"`
}

func GetStocktaking(ctx context.Context, id int) (*Stocktaking, error) {
	return utils.FetchModel[Stocktaking](ctx, id, "Items")
}

package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
)

// ReconciliationUpload represents one uploaded settlement file. Processing is
// asynchronous: the HTTP response returns as soon as the file is stored and
// the job row is committed; callers poll the status.
type ReconciliationUpload struct {
	ID               int                `gorm:"primary_key" json:"id"`
	ReconciliationId int                `gorm:"index;default:0" json:"reconciliation_id"`
	UploadType       ReconciliationType `gorm:"size:20;not null" json:"upload_type"`
	PartnerId        int                `gorm:"default:0" json:"partner_id"`
	FileName         string             `gorm:"size:255" json:"file_name"`
	FileLocation     string             `gorm:"size:500" json:"file_location"`
	PeriodStart      *time.Time         `json:"period_start"`
	PeriodEnd        *time.Time         `json:"period_end"`
	Status           UploadStatus       `gorm:"size:20;not null;default:'uploaded'" json:"status"`
	ErrorMessage     string             `gorm:"type:text" json:"error_message"`
	TotalRows        int                `gorm:"default:0" json:"total_rows"`
	MatchedRows      int                `gorm:"default:0" json:"matched_rows"`
	MismatchedRows   int                `gorm:"default:0" json:"mismatched_rows"`
	NotFoundRows     int                `gorm:"default:0" json:"not_found_rows"`
	FileTotal        decimal.Decimal    `gorm:"type:decimal(20,4);default:0" json:"file_total"`
	SystemTotal      decimal.Decimal    `gorm:"type:decimal(20,4);default:0" json:"system_total"`
	TotalDifference  decimal.Decimal    `gorm:"type:decimal(20,4);default:0" json:"total_difference"`
	CreatedBy        int                `json:"created_by"`
	CreatedAt        time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

// ReconciliationFileItem is one settlement-file row compared against system
// records. A row is persisted for every parsed line regardless of outcome.
type ReconciliationFileItem struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	UploadId           int             `gorm:"index;not null" json:"upload_id"`
	RowNumber          int             `json:"row_number"`
	TrackingNumber     string          `gorm:"size:50;index" json:"tracking_number"`
	Status             MatchStatus     `gorm:"size:20;not null" json:"status"`
	OrderId            int             `gorm:"default:0" json:"order_id"`
	ShipmentId         int             `gorm:"default:0" json:"shipment_id"`
	FileCODAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"file_cod_amount"`
	FileShippingFee    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"file_shipping_fee"`
	FileCODFee         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"file_cod_fee"`
	FileReturnFee      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"file_return_fee"`
	FilePartialFee     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"file_partial_fee"`
	FileAdjustment     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"file_adjustment"`
	FileNetAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"file_net_amount"`
	SystemCODAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"system_cod_amount"`
	SystemShippingFee  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"system_shipping_fee"`
	SystemNetAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"system_net_amount"`
	CODDifference      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cod_difference"`
	ShippingDifference decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"shipping_difference"`
	NetDifference      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"net_difference"`
	Notes              string          `gorm:"size:255" json:"notes"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func GetReconciliationUpload(ctx context.Context, id int) (*ReconciliationUpload, error) {
	return utils.FetchModel[ReconciliationUpload](ctx, id)
}

func ListReconciliationFileItems(ctx context.Context, uploadId int) ([]*ReconciliationFileItem, error) {
	db := configDB(ctx)
	var items []*ReconciliationFileItem
	if err := db.Where("upload_id = ?", uploadId).Order("row_number ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

package models

import "errors"

type InventoryTransactionType string

const (
	InventoryTransactionTypeIn         InventoryTransactionType = "in"
	InventoryTransactionTypeOut        InventoryTransactionType = "out"
	InventoryTransactionTypeAdjustment InventoryTransactionType = "adjustment"
	InventoryTransactionTypeReturn     InventoryTransactionType = "return"
)

func (t InventoryTransactionType) Valid() bool {
	switch t {
	case InventoryTransactionTypeIn, InventoryTransactionTypeOut,
		InventoryTransactionTypeAdjustment, InventoryTransactionTypeReturn:
		return true
	}
	return false
}

// InventoryReferenceType is the closed set of documents that may cause a stock
// movement. The reference columns stay relational (type + id) but only these
// values are accepted at the model layer.
type InventoryReferenceType string

const (
	InventoryReferenceTypeStockIn       InventoryReferenceType = "stock_in"
	InventoryReferenceTypeStockOut      InventoryReferenceType = "stock_out"
	InventoryReferenceTypeOrder         InventoryReferenceType = "order"
	InventoryReferenceTypePurchaseOrder InventoryReferenceType = "purchase_order"
	InventoryReferenceTypeStocktaking   InventoryReferenceType = "stocktaking"
	InventoryReferenceTypeManual        InventoryReferenceType = "manual"
)

func (t InventoryReferenceType) Valid() bool {
	switch t {
	case InventoryReferenceTypeStockIn, InventoryReferenceTypeStockOut,
		InventoryReferenceTypeOrder, InventoryReferenceTypePurchaseOrder,
		InventoryReferenceTypeStocktaking, InventoryReferenceTypeManual:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodCOD      PaymentMethod = "cod"
	PaymentMethodCredit   PaymentMethod = "credit"
)

type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPending   PurchaseOrderStatus = "pending"
	PurchaseOrderStatusConfirmed PurchaseOrderStatus = "confirmed"
	PurchaseOrderStatusPartial   PurchaseOrderStatus = "partial"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "received"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
)

type StocktakingStatus string

const (
	StocktakingStatusDraft     StocktakingStatus = "draft"
	StocktakingStatusCompleted StocktakingStatus = "completed"
)

type DebtEntityType string

const (
	DebtEntityTypeCustomer DebtEntityType = "customer"
	DebtEntityTypeSupplier DebtEntityType = "supplier"
)

type DebtTransactionType string

const (
	DebtTransactionTypeIncrease DebtTransactionType = "increase"
	DebtTransactionTypeDecrease DebtTransactionType = "decrease"
)

type PromotionType string

const (
	PromotionTypePercentage PromotionType = "percentage"
	PromotionTypeFixed      PromotionType = "fixed"
)

type ReconciliationType string

const (
	ReconciliationTypeCarrier  ReconciliationType = "carrier"
	ReconciliationTypePlatform ReconciliationType = "platform"
)

func ParseReconciliationType(s string) (ReconciliationType, error) {
	switch ReconciliationType(s) {
	case ReconciliationTypeCarrier:
		return ReconciliationTypeCarrier, nil
	case ReconciliationTypePlatform:
		return ReconciliationTypePlatform, nil
	}
	return "", errors.New("invalid reconciliation type")
}

type ReconciliationStatus string

const (
	ReconciliationStatusPending   ReconciliationStatus = "pending"
	ReconciliationStatusConfirmed ReconciliationStatus = "confirmed"
	ReconciliationStatusApproved  ReconciliationStatus = "approved"
	ReconciliationStatusPaid      ReconciliationStatus = "paid"
)

// MatchStatus classifies one settlement-file row against system records.
type MatchStatus string

const (
	MatchStatusMatched    MatchStatus = "matched"
	MatchStatusMismatched MatchStatus = "mismatched"
	MatchStatusNotFound   MatchStatus = "not_found"
)

// OrderReconciliationStatus lives on orders/shipments; empty means never reconciled.
type OrderReconciliationStatus string

const (
	OrderReconciliationStatusUnset      OrderReconciliationStatus = ""
	OrderReconciliationStatusMatched    OrderReconciliationStatus = "matched"
	OrderReconciliationStatusMismatched OrderReconciliationStatus = "mismatched"
)

type UploadStatus string

const (
	UploadStatusUploaded   UploadStatus = "uploaded"
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusCompleted  UploadStatus = "completed"
	UploadStatusFailed     UploadStatus = "failed"
)

// Reprocessable reports whether an upload in this status may be claimed by a
// worker. Failed uploads stay claimable so the job retry schedule can run
// them again; only a completed upload is final.
func (s UploadStatus) Reprocessable() bool {
	switch s {
	case UploadStatusUploaded, UploadStatusProcessing, UploadStatusFailed:
		return true
	}
	return false
}

// ReprocessableUploadStatuses is the SQL-side form of Reprocessable, for
// conditional claim updates.
var ReprocessableUploadStatuses = []UploadStatus{
	UploadStatusUploaded, UploadStatusProcessing, UploadStatusFailed,
}

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusDone       JobStatus = "done"
	JobStatusFailed     JobStatus = "failed"
)

type JobType string

const (
	JobTypeReconciliationUpload JobType = "reconciliation_upload"
)

type StockInType string

const (
	StockInTypePurchase StockInType = "purchase"
	StockInTypeReturn   StockInType = "return"
	StockInTypeOther    StockInType = "other"
)

func (t StockInType) Valid() bool {
	switch t {
	case StockInTypePurchase, StockInTypeReturn, StockInTypeOther:
		return true
	}
	return false
}

type StockOutType string

const (
	StockOutTypeSale   StockOutType = "sale"
	StockOutTypeDamage StockOutType = "damage"
	StockOutTypeOther  StockOutType = "other"
)

func (t StockOutType) Valid() bool {
	switch t {
	case StockOutTypeSale, StockOutTypeDamage, StockOutTypeOther:
		return true
	}
	return false
}

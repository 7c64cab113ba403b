package workflow

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mmdatafocus/sales_backend/config"
	"github.com/mmdatafocus/sales_backend/models"
	"github.com/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CreateReconciliation materializes a settlement record for one partner and
// period. Carrier reconciliations walk the partner's shipments joined to
// their orders; platform reconciliations walk orders by sales channel. The
// source orders and shipments are only read, never mutated.
func CreateReconciliation(ctx context.Context, logger *logrus.Logger, input *models.NewReconciliation) (*models.Reconciliation, error) {

	userId, _ := utils.GetUserIdFromContext(ctx)

	reconciliationType, err := models.ParseReconciliationType(input.Type)
	if err != nil {
		return nil, utils.ErrorValidation
	}
	if input.PeriodEnd.Before(input.PeriodStart) {
		return nil, utils.ErrorValidation
	}

	seqNo, err := utils.GetSequence[models.Reconciliation](ctx)
	if err != nil {
		config.LogError(logger, "reconciliationWorkflow.go", "CreateReconciliation", "GetSequence", nil, err)
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()
	defer func() { _ = tx.Rollback().Error }()

	reconciliation := models.Reconciliation{
		Code:        fmt.Sprintf("RC-%06d", seqNo),
		SequenceNo:  seqNo,
		Type:        reconciliationType,
		PartnerId:   input.PartnerId,
		PartnerName: input.PartnerName,
		PeriodStart: input.PeriodStart,
		PeriodEnd:   input.PeriodEnd,
		Status:      models.ReconciliationStatusPending,
		Notes:       input.Notes,
		CreatedBy:   userId,
	}

	var items []models.ReconciliationItem
	switch reconciliationType {
	case models.ReconciliationTypeCarrier:
		items, err = buildCarrierItems(tx, input.PartnerId, input.PeriodStart, input.PeriodEnd)
	case models.ReconciliationTypePlatform:
		items, err = buildPlatformItems(tx, input.PartnerId, input.PartnerName, input.PeriodStart, input.PeriodEnd)
	}
	if err != nil {
		config.LogError(logger, "reconciliationWorkflow.go", "CreateReconciliation", "BuildItems", input, err)
		return nil, err
	}

	for _, item := range items {
		reconciliation.TotalAmount = reconciliation.TotalAmount.Add(item.OrderAmount)
		reconciliation.TotalShippingFee = reconciliation.TotalShippingFee.Add(item.ShippingFee)
		reconciliation.TotalCOD = reconciliation.TotalCOD.Add(item.CODAmount)
		reconciliation.TotalReturnFee = reconciliation.TotalReturnFee.Add(item.ReturnFee)
		reconciliation.TotalOtherCharges = reconciliation.TotalOtherCharges.Add(item.OtherCharges)
		reconciliation.TotalDeductions = reconciliation.TotalDeductions.Add(item.Deductions)
		reconciliation.NetAmount = reconciliation.NetAmount.Add(item.NetAmount)
	}
	reconciliation.Items = items

	if err := tx.Create(&reconciliation).Error; err != nil {
		config.LogError(logger, "reconciliationWorkflow.go", "CreateReconciliation", "CreateReconciliation", reconciliation.Code, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "reconciliationWorkflow.go", "CreateReconciliation", "Commit", reconciliation.Code, err)
		return nil, err
	}

	return models.GetReconciliation(ctx, reconciliation.ID)
}

func buildCarrierItems(tx *gorm.DB, carrierId int, periodStart, periodEnd time.Time) ([]models.ReconciliationItem, error) {
	var shipments []models.Shipment
	err := tx.Where("carrier_id = ? AND created_at >= ? AND created_at <= ?",
		carrierId, periodStart, periodEnd).
		Order("id ASC").
		Find(&shipments).Error
	if err != nil {
		return nil, err
	}

	items := make([]models.ReconciliationItem, 0, len(shipments))
	for _, shipment := range shipments {
		var order models.Order
		orderAmount := decimal.Zero
		if shipment.OrderId > 0 {
			if err := tx.First(&order, shipment.OrderId).Error; err == nil {
				orderAmount = order.FinalAmount
			}
		}
		items = append(items, models.ReconciliationItem{
			OrderId:        shipment.OrderId,
			ShipmentId:     shipment.ID,
			TrackingNumber: shipment.TrackingNumber,
			OrderAmount:    orderAmount,
			ShippingFee:    shipment.ShippingCost,
			CODAmount:      shipment.CODAmount,
			ReturnFee:      shipment.ReturnFee,
			NetAmount:      CarrierNetAmount(orderAmount, shipment.ShippingCost, shipment.CODAmount, shipment.ReturnFee),
		})
	}
	return items, nil
}

func buildPlatformItems(tx *gorm.DB, partnerId int, partnerName string, periodStart, periodEnd time.Time) ([]models.ReconciliationItem, error) {
	channel := partnerName
	if channel == "" {
		channel = strconv.Itoa(partnerId)
	}

	var orders []models.Order
	err := tx.Where("sales_channel = ? AND created_at >= ? AND created_at <= ?",
		channel, periodStart, periodEnd).
		Order("id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	items := make([]models.ReconciliationItem, 0, len(orders))
	for _, order := range orders {
		deductions := order.DiscountAmount
		net, disagrees := PlatformNetAmount(order.FinalAmount, decimal.Zero, deductions, order.CustomerPaid)
		item := models.ReconciliationItem{
			OrderId:        order.ID,
			TrackingNumber: order.TrackingNumber,
			OrderAmount:    order.FinalAmount,
			Deductions:     deductions,
			NetAmount:      net,
		}
		if disagrees {
			item.Notes = "customer_paid differs from computed net"
		}
		items = append(items, item)
	}
	return items, nil
}

// ConfirmReconciliation moves pending to confirmed.
func ConfirmReconciliation(ctx context.Context, logger *logrus.Logger, id int) (*models.Reconciliation, error) {
	return advanceReconciliation(ctx, logger, id, models.ReconciliationStatusConfirmed)
}

// ApproveReconciliation moves confirmed to approved.
func ApproveReconciliation(ctx context.Context, logger *logrus.Logger, id int) (*models.Reconciliation, error) {
	return advanceReconciliation(ctx, logger, id, models.ReconciliationStatusApproved)
}

// PayReconciliation moves approved to paid, the terminal state.
func PayReconciliation(ctx context.Context, logger *logrus.Logger, id int) (*models.Reconciliation, error) {
	return advanceReconciliation(ctx, logger, id, models.ReconciliationStatusPaid)
}

func advanceReconciliation(ctx context.Context, logger *logrus.Logger, id int, target models.ReconciliationStatus) (*models.Reconciliation, error) {

	userId, _ := utils.GetUserIdFromContext(ctx)

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()
	defer func() { _ = tx.Rollback().Error }()

	var reconciliation models.Reconciliation
	if err := tx.First(&reconciliation, id).Error; err != nil {
		config.LogError(logger, "reconciliationWorkflow.go", "advanceReconciliation", "GetReconciliation", id, err)
		return nil, utils.ErrorRecordNotFound
	}

	if err := reconciliation.AdvanceStatus(tx, target, userId, time.Now()); err != nil {
		if err != utils.ErrorAlreadyProcessed {
			config.LogError(logger, "reconciliationWorkflow.go", "advanceReconciliation", "AdvanceStatus", id, err)
		}
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "reconciliationWorkflow.go", "advanceReconciliation", "Commit", id, err)
		return nil, err
	}

	return models.GetReconciliation(ctx, reconciliation.ID)
}

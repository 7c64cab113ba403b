package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/sales_backend/config"
	"github.com/mmdatafocus/sales_backend/models"
	"github.com/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CreatePurchaseOrder records an order to a supplier. Stock is not affected
// until goods are received.
func CreatePurchaseOrder(ctx context.Context, logger *logrus.Logger, input *models.NewPurchaseOrder) (*models.PurchaseOrder, error) {

	userId, _ := utils.GetUserIdFromContext(ctx)

	if err := utils.ValidateResourceId[models.Supplier](ctx, input.SupplierId); err != nil {
		config.LogError(logger, "purchaseOrderWorkflow.go", "CreatePurchaseOrder", "ValidateSupplier", input.SupplierId, err)
		return nil, err
	}

	seqNo, err := utils.GetSequence[models.PurchaseOrder](ctx)
	if err != nil {
		config.LogError(logger, "purchaseOrderWorkflow.go", "CreatePurchaseOrder", "GetSequence", nil, err)
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

	purchaseOrder := models.PurchaseOrder{
		OrderNumber:  fmt.Sprintf("PO-%06d", seqNo),
		SequenceNo:   seqNo,
		SupplierId:   input.SupplierId,
		Status:       models.PurchaseOrderStatusPending,
		ExpectedDate: input.ExpectedDate,
		Notes:        input.Notes,
		CreatedBy:    userId,
	}

	totalAmount := decimal.Zero
	for _, line := range input.Items {
		if err := validateProductInTx(tx, line.ProductId); err != nil {
			config.LogError(logger, "purchaseOrderWorkflow.go", "CreatePurchaseOrder", "ValidateProduct", line.ProductId, err)
			return nil, err
		}
		subtotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		purchaseOrder.Items = append(purchaseOrder.Items, models.PurchaseOrderItem{
			ProductId: line.ProductId,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  subtotal,
		})
		totalAmount = totalAmount.Add(subtotal)
	}
	purchaseOrder.TotalAmount = totalAmount

	if err := tx.Create(&purchaseOrder).Error; err != nil {
		config.LogError(logger, "purchaseOrderWorkflow.go", "CreatePurchaseOrder", "CreatePurchaseOrder", purchaseOrder.OrderNumber, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "purchaseOrderWorkflow.go", "CreatePurchaseOrder", "Commit", purchaseOrder.OrderNumber, err)
		return nil, err
	}

	return models.GetPurchaseOrder(ctx, purchaseOrder.ID)
}

// ReceivePurchaseOrder books a (possibly partial) delivery against a purchase
// order: it creates a stock-in receipt, increments stock and received
// quantities, appends a supplier debt ledger entry for the delivered value,
// and recomputes the order status (partial vs received).
func ReceivePurchaseOrder(ctx context.Context, logger *logrus.Logger, purchaseOrderId int, input *models.ReceivePurchaseOrderInput) (*models.PurchaseOrder, error) {

	userId, _ := utils.GetUserIdFromContext(ctx)

	seqNo, err := utils.GetSequence[models.StockIn](ctx)
	if err != nil {
		config.LogError(logger, "purchaseOrderWorkflow.go", "ReceivePurchaseOrder", "GetSequence", nil, err)
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

	var purchaseOrder models.PurchaseOrder
	if err := tx.Preload("Items").First(&purchaseOrder, purchaseOrderId).Error; err != nil {
		config.LogError(logger, "purchaseOrderWorkflow.go", "ReceivePurchaseOrder", "GetPurchaseOrder", purchaseOrderId, err)
		return nil, utils.ErrorRecordNotFound
	}
	if purchaseOrder.Status == models.PurchaseOrderStatusReceived ||
		purchaseOrder.Status == models.PurchaseOrderStatusCancelled {
		return nil, utils.ErrorAlreadyProcessed
	}

	lineByProduct := make(map[int]*models.PurchaseOrderItem, len(purchaseOrder.Items))
	for i := range purchaseOrder.Items {
		lineByProduct[purchaseOrder.Items[i].ProductId] = &purchaseOrder.Items[i]
	}

	stockIn := models.StockIn{
		ReceiptNumber:   fmt.Sprintf("SI-%06d", seqNo),
		SequenceNo:      seqNo,
		Type:            models.StockInTypePurchase,
		SupplierId:      purchaseOrder.SupplierId,
		PurchaseOrderId: purchaseOrder.ID,
		Notes:           input.Notes,
		CreatedBy:       userId,
	}

	totalAmount := decimal.Zero
	for _, received := range input.ReceivedItems {
		line, ok := lineByProduct[received.ProductId]
		if !ok {
			config.LogError(logger, "purchaseOrderWorkflow.go", "ReceivePurchaseOrder", "ProductNotOnOrder", received.ProductId, utils.ErrorValidation)
			return nil, utils.ErrorValidation
		}

		unitPrice := received.UnitPrice
		if unitPrice.IsZero() {
			unitPrice = line.UnitPrice
		}
		subtotal := unitPrice.Mul(decimal.NewFromInt(int64(received.Quantity)))
		stockIn.Items = append(stockIn.Items, models.StockInItem{
			ProductId:   received.ProductId,
			Quantity:    received.Quantity,
			UnitPrice:   unitPrice,
			Subtotal:    subtotal,
			BatchNumber: received.BatchNumber,
			ExpiryDate:  received.ExpiryDate,
		})
		totalAmount = totalAmount.Add(subtotal)

		line.ReceivedQuantity += received.Quantity
		result := tx.Model(&models.PurchaseOrderItem{}).
			Where("id = ?", line.ID).
			Update("received_quantity", gorm.Expr("received_quantity + ?", received.Quantity))
		if result.Error != nil {
			config.LogError(logger, "purchaseOrderWorkflow.go", "ReceivePurchaseOrder", "IncrementReceived", line.ID, result.Error)
			return nil, result.Error
		}
	}
	stockIn.TotalAmount = totalAmount

	if err := tx.Create(&stockIn).Error; err != nil {
		config.LogError(logger, "purchaseOrderWorkflow.go", "ReceivePurchaseOrder", "CreateStockIn", stockIn.ReceiptNumber, err)
		return nil, err
	}

	for _, item := range stockIn.Items {
		if err := models.AddProductStock(tx, item.ProductId, item.Quantity); err != nil {
			config.LogError(logger, "purchaseOrderWorkflow.go", "ReceivePurchaseOrder", "AddProductStock", item, err)
			return nil, err
		}
		record := receiptInventoryRecord(&stockIn, item, userId)
		if err := models.AppendInventoryTransaction(tx, &record); err != nil {
			config.LogError(logger, "purchaseOrderWorkflow.go", "ReceivePurchaseOrder", "AppendInventoryTransaction", record, err)
			return nil, err
		}
	}

	// the delivered value becomes payable to the supplier
	if totalAmount.IsPositive() {
		debt := models.DebtTransaction{
			EntityType:      models.DebtEntityTypeSupplier,
			EntityId:        purchaseOrder.SupplierId,
			TransactionType: models.DebtTransactionTypeIncrease,
			Amount:          totalAmount,
			PurchaseOrderId: purchaseOrder.ID,
			Notes:           "goods received " + stockIn.ReceiptNumber,
			CreatedBy:       userId,
		}
		if err := models.AppendDebtTransaction(tx, &debt); err != nil {
			config.LogError(logger, "purchaseOrderWorkflow.go", "ReceivePurchaseOrder", "AppendDebtTransaction", debt, err)
			return nil, err
		}
	}

	status := models.PurchaseOrderStatusPartial
	updates := map[string]interface{}{"status": status}
	if purchaseOrder.FullyReceived() {
		status = models.PurchaseOrderStatusReceived
		now := time.Now()
		updates["status"] = status
		updates["received_at"] = now
	}
	if err := tx.Model(&models.PurchaseOrder{}).Where("id = ?", purchaseOrder.ID).Updates(updates).Error; err != nil {
		config.LogError(logger, "purchaseOrderWorkflow.go", "ReceivePurchaseOrder", "UpdateStatus", purchaseOrder.ID, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "purchaseOrderWorkflow.go", "ReceivePurchaseOrder", "Commit", purchaseOrder.OrderNumber, err)
		return nil, err
	}

	return models.GetPurchaseOrder(ctx, purchaseOrder.ID)
}

// receiptInventoryRecord builds the ledger row for one received line. The
// reference is the generated stock-in receipt; the stock-in itself carries
// the purchase-order link, so the chain stays one document deep.
func receiptInventoryRecord(stockIn *models.StockIn, item models.StockInItem, userId int) models.InventoryTransaction {
	return models.InventoryTransaction{
		ProductId:     item.ProductId,
		Type:          models.InventoryTransactionTypeIn,
		Quantity:      item.Quantity,
		ReferenceType: models.InventoryReferenceTypeStockIn,
		ReferenceId:   stockIn.ID,
		CreatedBy:     userId,
	}
}

package workflow

import (
	"context"
	"fmt"

	"github.com/mmdatafocus/sales_backend/config"
	"github.com/mmdatafocus/sales_backend/models"
	"github.com/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CreateStockIn records an inbound receipt and increments stock for every
// line in a single transaction.
func CreateStockIn(ctx context.Context, logger *logrus.Logger, input *models.NewStockIn) (*models.StockIn, error) {

	userId, _ := utils.GetUserIdFromContext(ctx)

	if !input.Type.Valid() {
		return nil, utils.ErrorValidation
	}
	if input.SupplierId > 0 {
		if err := utils.ValidateResourceId[models.Supplier](ctx, input.SupplierId); err != nil {
			config.LogError(logger, "stockWorkflow.go", "CreateStockIn", "ValidateSupplier", input.SupplierId, err)
			return nil, err
		}
	}

	seqNo, err := utils.GetSequence[models.StockIn](ctx)
	if err != nil {
		config.LogError(logger, "stockWorkflow.go", "CreateStockIn", "GetSequence", nil, err)
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

	stockIn := models.StockIn{
		ReceiptNumber: fmt.Sprintf("SI-%06d", seqNo),
		SequenceNo:    seqNo,
		Type:          input.Type,
		SupplierId:    input.SupplierId,
		Notes:         input.Notes,
		CreatedBy:     userId,
	}

	totalAmount := decimal.Zero
	for _, line := range input.Items {
		if err := validateProductInTx(tx, line.ProductId); err != nil {
			config.LogError(logger, "stockWorkflow.go", "CreateStockIn", "ValidateProduct", line.ProductId, err)
			return nil, err
		}
		subtotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		stockIn.Items = append(stockIn.Items, models.StockInItem{
			ProductId:   line.ProductId,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    subtotal,
			BatchNumber: line.BatchNumber,
			ExpiryDate:  line.ExpiryDate,
		})
		totalAmount = totalAmount.Add(subtotal)
	}
	stockIn.TotalAmount = totalAmount

	if err := tx.Create(&stockIn).Error; err != nil {
		config.LogError(logger, "stockWorkflow.go", "CreateStockIn", "CreateStockIn", stockIn.ReceiptNumber, err)
		return nil, err
	}

	for _, item := range stockIn.Items {
		if err := models.AddProductStock(tx, item.ProductId, item.Quantity); err != nil {
			config.LogError(logger, "stockWorkflow.go", "CreateStockIn", "AddProductStock", item, err)
			return nil, err
		}
		record := models.InventoryTransaction{
			ProductId:     item.ProductId,
			Type:          models.InventoryTransactionTypeIn,
			Quantity:      item.Quantity,
			ReferenceType: models.InventoryReferenceTypeStockIn,
			ReferenceId:   stockIn.ID,
			CreatedBy:     userId,
		}
		if err := models.AppendInventoryTransaction(tx, &record); err != nil {
			config.LogError(logger, "stockWorkflow.go", "CreateStockIn", "AppendInventoryTransaction", record, err)
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "stockWorkflow.go", "CreateStockIn", "Commit", stockIn.ReceiptNumber, err)
		return nil, err
	}

	return models.GetStockIn(ctx, stockIn.ID)
}

// CreateStockOut records an outbound receipt and deducts stock for every line
// in a single transaction. Insufficient stock on any line rejects the whole
// document.
func CreateStockOut(ctx context.Context, logger *logrus.Logger, input *models.NewStockOut) (*models.StockOut, error) {

	userId, _ := utils.GetUserIdFromContext(ctx)

	if !input.Type.Valid() {
		return nil, utils.ErrorValidation
	}

	seqNo, err := utils.GetSequence[models.StockOut](ctx)
	if err != nil {
		config.LogError(logger, "stockWorkflow.go", "CreateStockOut", "GetSequence", nil, err)
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

	stockOut := models.StockOut{
		ReceiptNumber: fmt.Sprintf("SO-%06d", seqNo),
		SequenceNo:    seqNo,
		Type:          input.Type,
		OrderId:       input.OrderId,
		CustomerId:    input.CustomerId,
		Notes:         input.Notes,
		CreatedBy:     userId,
	}

	totalAmount := decimal.Zero
	for _, line := range input.Items {
		subtotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		stockOut.Items = append(stockOut.Items, models.StockOutItem{
			ProductId: line.ProductId,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  subtotal,
		})
		totalAmount = totalAmount.Add(subtotal)
	}
	stockOut.TotalAmount = totalAmount

	if err := tx.Create(&stockOut).Error; err != nil {
		config.LogError(logger, "stockWorkflow.go", "CreateStockOut", "CreateStockOut", stockOut.ReceiptNumber, err)
		return nil, err
	}

	for _, item := range stockOut.Items {
		if err := models.DeductProductStock(tx, item.ProductId, item.Quantity); err != nil {
			config.LogError(logger, "stockWorkflow.go", "CreateStockOut", "DeductProductStock", item, err)
			return nil, err
		}
		record := models.InventoryTransaction{
			ProductId:     item.ProductId,
			Type:          models.InventoryTransactionTypeOut,
			Quantity:      item.Quantity,
			ReferenceType: models.InventoryReferenceTypeStockOut,
			ReferenceId:   stockOut.ID,
			CreatedBy:     userId,
		}
		if err := models.AppendInventoryTransaction(tx, &record); err != nil {
			config.LogError(logger, "stockWorkflow.go", "CreateStockOut", "AppendInventoryTransaction", record, err)
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "stockWorkflow.go", "CreateStockOut", "Commit", stockOut.ReceiptNumber, err)
		return nil, err
	}

	return models.GetStockOut(ctx, stockOut.ID)
}

// AdjustStock applies a direct single-product movement. Types in and return
// add the quantity, out subtracts it (rejecting if stock would go negative),
// and adjustment sets stock to the given absolute value with the delta
// recorded in the ledger.
func AdjustStock(ctx context.Context, logger *logrus.Logger, input *models.StockAdjustment) (*models.StockAdjustmentResult, error) {

	userId, _ := utils.GetUserIdFromContext(ctx)

	if !input.Type.Valid() {
		return nil, utils.ErrorValidation
	}
	referenceType := input.ReferenceType
	if referenceType == "" {
		referenceType = models.InventoryReferenceTypeManual
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

	var product models.Product
	if err := tx.First(&product, input.ProductId).Error; err != nil {
		config.LogError(logger, "stockWorkflow.go", "AdjustStock", "GetProduct", input.ProductId, err)
		return nil, utils.ErrorRecordNotFound
	}
	previousStock := product.Stock

	qty := input.Quantity
	if qty < 0 && input.Type != models.InventoryTransactionTypeAdjustment {
		qty = -qty
	}

	var newStock, ledgerQty int
	switch input.Type {
	case models.InventoryTransactionTypeIn, models.InventoryTransactionTypeReturn:
		if err := models.AddProductStock(tx, product.ID, qty); err != nil {
			config.LogError(logger, "stockWorkflow.go", "AdjustStock", "AddProductStock", input, err)
			return nil, err
		}
		newStock = previousStock + qty
		ledgerQty = qty
	case models.InventoryTransactionTypeOut:
		if err := models.DeductProductStock(tx, product.ID, qty); err != nil {
			config.LogError(logger, "stockWorkflow.go", "AdjustStock", "DeductProductStock", input, err)
			return nil, err
		}
		newStock = previousStock - qty
		ledgerQty = qty
	case models.InventoryTransactionTypeAdjustment:
		// quantity is the new absolute stock level, not a delta
		if qty < 0 {
			return nil, utils.ErrorValidation
		}
		if err := models.SetProductStock(tx, product.ID, qty); err != nil {
			config.LogError(logger, "stockWorkflow.go", "AdjustStock", "SetProductStock", input, err)
			return nil, err
		}
		newStock = qty
		ledgerQty = qty - previousStock
	}

	record := models.InventoryTransaction{
		ProductId:     product.ID,
		Type:          input.Type,
		Quantity:      ledgerQty,
		ReferenceType: referenceType,
		ReferenceId:   input.ReferenceId,
		Notes:         input.Notes,
		CreatedBy:     userId,
	}
	if err := models.AppendInventoryTransaction(tx, &record); err != nil {
		config.LogError(logger, "stockWorkflow.go", "AdjustStock", "AppendInventoryTransaction", record, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "stockWorkflow.go", "AdjustStock", "Commit", input, err)
		return nil, err
	}

	return &models.StockAdjustmentResult{
		Transaction:   record,
		PreviousStock: previousStock,
		NewStock:      newStock,
	}, nil
}

func validateProductInTx(tx *gorm.DB, productId int) error {
	var count int64
	if err := tx.Model(&models.Product{}).Where("id = ?", productId).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

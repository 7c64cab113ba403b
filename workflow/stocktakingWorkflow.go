package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/sales_backend/config"
	"github.com/mmdatafocus/sales_backend/models"
	"github.com/mmdatafocus/sales_backend/utils"
	"github.com/sirupsen/logrus"
)

// CreateStocktaking snapshots the current system quantity for every counted
// product and stores the count as a draft. Stock is not touched here.
func CreateStocktaking(ctx context.Context, logger *logrus.Logger, input *models.NewStocktaking) (*models.Stocktaking, error) {

	userId, _ := utils.GetUserIdFromContext(ctx)

	seqNo, err := utils.GetSequence[models.Stocktaking](ctx)
	if err != nil {
		config.LogError(logger, "stocktakingWorkflow.go", "CreateStocktaking", "GetSequence", nil, err)
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

	stocktaking := models.Stocktaking{
		Code:       fmt.Sprintf("ST-%06d", seqNo),
		SequenceNo: seqNo,
		Status:     models.StocktakingStatusDraft,
		Notes:      input.Notes,
		CreatedBy:  userId,
	}

	for _, line := range input.Items {
		var product models.Product
		if err := tx.First(&product, line.ProductId).Error; err != nil {
			config.LogError(logger, "stocktakingWorkflow.go", "CreateStocktaking", "GetProduct", line.ProductId, err)
			return nil, utils.ErrorRecordNotFound
		}
		stocktaking.Items = append(stocktaking.Items, models.StocktakingItem{
			ProductId:       product.ID,
			SystemQuantity:  product.Stock,
			CountedQuantity: line.CountedQuantity,
			Difference:      line.CountedQuantity - product.Stock,
			Notes:           line.Notes,
		})
	}

	if err := tx.Create(&stocktaking).Error; err != nil {
		config.LogError(logger, "stocktakingWorkflow.go", "CreateStocktaking", "CreateStocktaking", stocktaking.Code, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "stocktakingWorkflow.go", "CreateStocktaking", "Commit", stocktaking.Code, err)
		return nil, err
	}

	return models.GetStocktaking(ctx, stocktaking.ID)
}

// CompleteStocktaking applies a draft count: each non-zero difference sets the
// product stock to the counted quantity and writes an adjustment ledger row.
// The draft-to-completed flip is a conditional update, so completing the same
// count twice (or racing completions) fails with ErrorAlreadyProcessed and
// cannot double-apply adjustments.
func CompleteStocktaking(ctx context.Context, logger *logrus.Logger, stocktakingId int) (*models.Stocktaking, error) {

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

	var stocktaking models.Stocktaking
	if err := tx.Preload("Items").First(&stocktaking, stocktakingId).Error; err != nil {
		config.LogError(logger, "stocktakingWorkflow.go", "CompleteStocktaking", "GetStocktaking", stocktakingId, err)
		return nil, utils.ErrorRecordNotFound
	}

	now := time.Now()
	result := tx.Model(&models.Stocktaking{}).
		Where("id = ? AND status = ?", stocktakingId, models.StocktakingStatusDraft).
		Updates(map[string]interface{}{
			"status":       models.StocktakingStatusCompleted,
			"completed_by": userId,
			"completed_at": now,
		})
	if result.Error != nil {
		config.LogError(logger, "stocktakingWorkflow.go", "CompleteStocktaking", "MarkCompleted", stocktakingId, result.Error)
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, utils.ErrorAlreadyProcessed
	}

	for _, item := range stocktaking.Items {
		if item.Difference == 0 {
			continue
		}
		if err := models.SetProductStock(tx, item.ProductId, item.CountedQuantity); err != nil {
			config.LogError(logger, "stocktakingWorkflow.go", "CompleteStocktaking", "SetProductStock", item, err)
			return nil, err
		}
		record := models.InventoryTransaction{
			ProductId:     item.ProductId,
			Type:          models.InventoryTransactionTypeAdjustment,
			Quantity:      item.Difference,
			ReferenceType: models.InventoryReferenceTypeStocktaking,
			ReferenceId:   stocktaking.ID,
			Notes:         item.Notes,
			CreatedBy:     userId,
		}
		if err := models.AppendInventoryTransaction(tx, &record); err != nil {
			config.LogError(logger, "stocktakingWorkflow.go", "CompleteStocktaking", "AppendInventoryTransaction", record, err)
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "stocktakingWorkflow.go", "CompleteStocktaking", "Commit", stocktaking.Code, err)
		return nil, err
	}

	return models.GetStocktaking(ctx, stocktaking.ID)
}

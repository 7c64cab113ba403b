package workflow

import (
	"context"
	"fmt"

	"github.com/mmdatafocus/sales_backend/config"
	"github.com/mmdatafocus/sales_backend/models"
	"github.com/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// AcceptReconciliationUpload stores the settlement file and commits the
// upload record together with its processing job in one transaction. The
// HTTP caller gets the upload id back immediately and polls for results.
func AcceptReconciliationUpload(ctx context.Context, logger *logrus.Logger, upload *models.ReconciliationUpload) (*models.ReconciliationUpload, error) {

	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()
	defer func() { _ = tx.Rollback().Error }()

	upload.Status = models.UploadStatusUploaded
	if err := tx.Create(upload).Error; err != nil {
		config.LogError(logger, "uploadWorkflow.go", "AcceptReconciliationUpload", "CreateUpload", upload.FileName, err)
		return nil, err
	}

	job := models.ProcessingJob{
		Type:          models.JobTypeReconciliationUpload,
		ReferenceId:   upload.ID,
		CorrelationId: correlationId,
	}
	if err := models.EnqueueJob(tx, &job); err != nil {
		config.LogError(logger, "uploadWorkflow.go", "AcceptReconciliationUpload", "EnqueueJob", upload.ID, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "uploadWorkflow.go", "AcceptReconciliationUpload", "Commit", upload.ID, err)
		return nil, err
	}

	// best-effort wakeup; the poller picks the job up regardless
	if config.PubSubConfigured() {
		_, err := config.PublishJob(ctx, config.JobMessage{
			JobId:         job.ID,
			JobType:       string(job.Type),
			ReferenceId:   upload.ID,
			CorrelationId: correlationId,
		})
		if err != nil {
			config.LogError(logger, "uploadWorkflow.go", "AcceptReconciliationUpload", "PublishJob", job.ID, err)
		}
	}

	return upload, nil
}

// ProcessReconciliationUpload parses the stored settlement file and compares
// every row against system records by tracking number. One file item row is
// written per parsed line; matched and mismatched outcomes stamp the source
// order/shipment's reconciliation status, not_found leaves it untouched.
// Any failure marks the upload failed with the error message.
func ProcessReconciliationUpload(ctx context.Context, logger *logrus.Logger, uploadId int) error {

	db := config.GetDB()

	var upload models.ReconciliationUpload
	if err := db.WithContext(ctx).First(&upload, uploadId).Error; err != nil {
		config.LogError(logger, "uploadWorkflow.go", "ProcessReconciliationUpload", "GetUpload", uploadId, err)
		return utils.ErrorRecordNotFound
	}

	// the claim is conditional so a reclaimed job cannot race a live worker
	// into double-processing; failed stays claimable for job retries
	result := db.WithContext(ctx).Model(&models.ReconciliationUpload{}).
		Where("id = ? AND status IN ?", uploadId, models.ReprocessableUploadStatuses).
		Update("status", models.UploadStatusProcessing)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorAlreadyProcessed
	}

	if err := processUploadRows(ctx, logger, db, &upload); err != nil {
		markErr := db.WithContext(ctx).Model(&models.ReconciliationUpload{}).
			Where("id = ?", uploadId).
			Updates(map[string]interface{}{
				"status":        models.UploadStatusFailed,
				"error_message": err.Error(),
			}).Error
		if markErr != nil {
			config.LogError(logger, "uploadWorkflow.go", "ProcessReconciliationUpload", "MarkFailed", uploadId, markErr)
		}
		return err
	}
	return nil
}

func processUploadRows(ctx context.Context, logger *logrus.Logger, db *gorm.DB, upload *models.ReconciliationUpload) error {

	reader, err := utils.OpenUploadObject(ctx, upload.FileLocation)
	if err != nil {
		config.LogError(logger, "uploadWorkflow.go", "processUploadRows", "OpenUploadObject", upload.FileLocation, err)
		return err
	}
	defer reader.Close()

	file, err := excelize.OpenReader(reader)
	if err != nil {
		config.LogError(logger, "uploadWorkflow.go", "processUploadRows", "OpenSpreadsheet", upload.FileName, err)
		return err
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("spreadsheet has no sheets")
	}
	rawRows, err := file.GetRows(sheets[0])
	if err != nil {
		return err
	}
	rows := ParseSettlementRows(rawRows)
	if rows == nil {
		return fmt.Errorf("no tracking-number column recognized in %s", upload.FileName)
	}

	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()
	defer func() { _ = tx.Rollback().Error }()

	// a retried upload starts from a clean slate of file items
	if err := tx.Where("upload_id = ?", upload.ID).
		Delete(&models.ReconciliationFileItem{}).Error; err != nil {
		config.LogError(logger, "uploadWorkflow.go", "processUploadRows", "ClearFileItems", upload.ID, err)
		return err
	}

	var matched, mismatched, notFound int
	fileTotal := decimal.Zero
	systemTotal := decimal.Zero

	for _, row := range rows {
		item := models.ReconciliationFileItem{
			UploadId:        upload.ID,
			RowNumber:       row.RowNumber,
			TrackingNumber:  row.TrackingNumber,
			FileCODAmount:   row.CODAmount,
			FileShippingFee: row.ShippingFee,
			FileCODFee:      row.CODFee,
			FileReturnFee:   row.ReturnFee,
			FilePartialFee:  row.PartialFee,
			FileAdjustment:  row.Adjustment,
			FileNetAmount:   row.NetAmount(),
		}
		fileTotal = fileTotal.Add(item.FileNetAmount)

		systemCOD, systemShipping, orderId, shipmentId, found := lookupSystemRecord(tx, upload.UploadType, row.TrackingNumber)
		if !found {
			item.Status = models.MatchStatusNotFound
			notFound++
		} else {
			item.OrderId = orderId
			item.ShipmentId = shipmentId
			item.SystemCODAmount = systemCOD
			item.SystemShippingFee = systemShipping
			item.SystemNetAmount = systemCOD.Sub(systemShipping)
			systemTotal = systemTotal.Add(item.SystemNetAmount)

			status, diff := ClassifySettlementRow(
				item.FileCODAmount, item.FileShippingFee, item.FileNetAmount,
				item.SystemCODAmount, item.SystemShippingFee, item.SystemNetAmount)
			item.Status = status
			item.CODDifference = diff.COD
			item.ShippingDifference = diff.Shipping
			item.NetDifference = diff.Net

			recStatus := models.OrderReconciliationStatusMatched
			if status == models.MatchStatusMismatched {
				recStatus = models.OrderReconciliationStatusMismatched
				mismatched++
			} else {
				matched++
			}
			if err := stampReconciliationStatus(tx, orderId, shipmentId, recStatus); err != nil {
				config.LogError(logger, "uploadWorkflow.go", "processUploadRows", "StampStatus", row.TrackingNumber, err)
				return err
			}
		}

		if err := tx.Create(&item).Error; err != nil {
			config.LogError(logger, "uploadWorkflow.go", "processUploadRows", "CreateFileItem", row.TrackingNumber, err)
			return err
		}
	}

	updates := map[string]interface{}{
		"status":           models.UploadStatusCompleted,
		"total_rows":       len(rows),
		"matched_rows":     matched,
		"mismatched_rows":  mismatched,
		"not_found_rows":   notFound,
		"file_total":       fileTotal,
		"system_total":     systemTotal,
		"total_difference": fileTotal.Sub(systemTotal),
		"error_message":    "",
	}
	if err := tx.Model(&models.ReconciliationUpload{}).Where("id = ?", upload.ID).Updates(updates).Error; err != nil {
		config.LogError(logger, "uploadWorkflow.go", "processUploadRows", "CompleteUpload", upload.ID, err)
		return err
	}

	return tx.Commit().Error
}

// lookupSystemRecord resolves a tracking number to its shipment (carrier
// uploads) or order (platform uploads) and returns the system-side amounts.
func lookupSystemRecord(tx *gorm.DB, uploadType models.ReconciliationType, trackingNumber string) (cod, shipping decimal.Decimal, orderId, shipmentId int, found bool) {
	if uploadType == models.ReconciliationTypeCarrier {
		shipment, err := models.FindShipmentByTrackingNumber(tx, trackingNumber)
		if err != nil {
			return decimal.Zero, decimal.Zero, 0, 0, false
		}
		return shipment.CODAmount, shipment.ShippingCost, shipment.OrderId, shipment.ID, true
	}

	order, err := models.FindOrderByTrackingNumber(tx, trackingNumber)
	if err != nil {
		return decimal.Zero, decimal.Zero, 0, 0, false
	}
	return order.CODAmount, order.ShippingCost, order.ID, 0, true
}

func stampReconciliationStatus(tx *gorm.DB, orderId, shipmentId int, status models.OrderReconciliationStatus) error {
	if shipmentId > 0 {
		if err := tx.Model(&models.Shipment{}).Where("id = ?", shipmentId).
			Update("reconciliation_status", status).Error; err != nil {
			return err
		}
	}
	if orderId > 0 {
		if err := tx.Model(&models.Order{}).Where("id = ?", orderId).
			Update("reconciliation_status", status).Error; err != nil {
			return err
		}
	}
	return nil
}

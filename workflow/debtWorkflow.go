package workflow

import (
	"context"

	"github.com/mmdatafocus/sales_backend/config"
	"github.com/mmdatafocus/sales_backend/models"
	"github.com/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PayCustomerDebt books a payment received from a customer against their
// outstanding balance. The balance check reads the ledger inside the same
// transaction, so a payment can never push the balance negative even under
// concurrent settlements.
func PayCustomerDebt(ctx context.Context, logger *logrus.Logger, customerId int, input *models.DebtPayment) (*models.DebtTransaction, error) {

	userId, _ := utils.GetUserIdFromContext(ctx)

	if !input.Amount.IsPositive() {
		return nil, utils.ErrorValidation
	}
	if err := utils.ValidateResourceId[models.Customer](ctx, customerId); err != nil {
		config.LogError(logger, "debtWorkflow.go", "PayCustomerDebt", "ValidateCustomer", customerId, err)
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

	balance, err := models.SumDebtBalance(tx, models.DebtEntityTypeCustomer, customerId)
	if err != nil {
		config.LogError(logger, "debtWorkflow.go", "PayCustomerDebt", "SumDebtBalance", customerId, err)
		return nil, err
	}
	if input.Amount.GreaterThan(balance) {
		return nil, utils.ErrorPaymentExceedsDebt
	}

	debt := models.DebtTransaction{
		EntityType:      models.DebtEntityTypeCustomer,
		EntityId:        customerId,
		TransactionType: models.DebtTransactionTypeDecrease,
		Amount:          input.Amount,
		PaymentMethod:   input.PaymentMethod,
		Notes:           input.Notes,
		CreatedBy:       userId,
	}
	if err := models.AppendDebtTransaction(tx, &debt); err != nil {
		config.LogError(logger, "debtWorkflow.go", "PayCustomerDebt", "AppendDebtTransaction", debt, err)
		return nil, err
	}
	if err := models.DecrementCustomerDebt(tx, customerId, input.Amount); err != nil {
		config.LogError(logger, "debtWorkflow.go", "PayCustomerDebt", "DecrementCustomerDebt", customerId, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "debtWorkflow.go", "PayCustomerDebt", "Commit", customerId, err)
		return nil, err
	}

	return &debt, nil
}

// PaySupplierDebt books a payment made to a supplier. Same over-payment guard
// as the customer side; suppliers have no denormalized balance column, the
// ledger is the only source.
func PaySupplierDebt(ctx context.Context, logger *logrus.Logger, supplierId int, input *models.DebtPayment) (*models.DebtTransaction, error) {

	userId, _ := utils.GetUserIdFromContext(ctx)

	if !input.Amount.IsPositive() {
		return nil, utils.ErrorValidation
	}
	if err := utils.ValidateResourceId[models.Supplier](ctx, supplierId); err != nil {
		config.LogError(logger, "debtWorkflow.go", "PaySupplierDebt", "ValidateSupplier", supplierId, err)
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

	balance, err := models.SumDebtBalance(tx, models.DebtEntityTypeSupplier, supplierId)
	if err != nil {
		config.LogError(logger, "debtWorkflow.go", "PaySupplierDebt", "SumDebtBalance", supplierId, err)
		return nil, err
	}
	if input.Amount.GreaterThan(balance) {
		return nil, utils.ErrorPaymentExceedsDebt
	}

	debt := models.DebtTransaction{
		EntityType:      models.DebtEntityTypeSupplier,
		EntityId:        supplierId,
		TransactionType: models.DebtTransactionTypeDecrease,
		Amount:          input.Amount,
		PaymentMethod:   input.PaymentMethod,
		Notes:           input.Notes,
		CreatedBy:       userId,
	}
	if err := models.AppendDebtTransaction(tx, &debt); err != nil {
		config.LogError(logger, "debtWorkflow.go", "PaySupplierDebt", "AppendDebtTransaction", debt, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "debtWorkflow.go", "PaySupplierDebt", "Commit", supplierId, err)
		return nil, err
	}

	return &debt, nil
}

// RebuildCustomerDebt recomputes a customer's denormalized debt column from
// the ledger. Used by cmd/debt-rebuild after manual data repairs.
func RebuildCustomerDebt(ctx context.Context, logger *logrus.Logger, customerId int) (decimal.Decimal, error) {
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() { _ = tx.Rollback().Error }()

	balance, err := models.SumDebtBalance(tx, models.DebtEntityTypeCustomer, customerId)
	if err != nil {
		config.LogError(logger, "debtWorkflow.go", "RebuildCustomerDebt", "SumDebtBalance", customerId, err)
		return decimal.Zero, err
	}
	if err := tx.Model(&models.Customer{}).Where("id = ?", customerId).
		Update("debt_amount", balance).Error; err != nil {
		config.LogError(logger, "debtWorkflow.go", "RebuildCustomerDebt", "UpdateDebtAmount", customerId, err)
		return decimal.Zero, err
	}
	if err := tx.Commit().Error; err != nil {
		return decimal.Zero, err
	}
	_ = utils.ClearDebtBalanceCache(string(models.DebtEntityTypeCustomer), customerId)
	return balance, nil
}

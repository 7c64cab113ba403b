package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/mmdatafocus/sales_backend/config"
	"github.com/mmdatafocus/sales_backend/models"
	"github.com/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const orderNumberAttempts = 3

// CreateOrder runs the whole order intake in one transaction: price snapshot,
// atomic stock deduction, promotion application, debt ledger entry for credit
// sales, customer stats. Any line failure rejects the entire order.
func CreateOrder(ctx context.Context, logger *logrus.Logger, input *models.NewOrder) (*models.Order, error) {

	userId, _ := utils.GetUserIdFromContext(ctx)

	if len(input.Items) == 0 {
		return nil, utils.ErrorValidation
	}
	if input.CustomerId > 0 {
		if err := utils.ValidateResourceId[models.Customer](ctx, input.CustomerId); err != nil {
			config.LogError(logger, "orderWorkflow.go", "CreateOrder", "ValidateCustomer", input.CustomerId, err)
			return nil, err
		}
	}

	shippingCost := decimal.Zero
	if input.ShippingMethodId > 0 {
		method, err := models.GetShippingMethod(ctx, input.ShippingMethodId)
		if err != nil {
			config.LogError(logger, "orderWorkflow.go", "CreateOrder", "GetShippingMethod", input.ShippingMethodId, err)
			return nil, err
		}
		shippingCost = method.Cost
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	// always rollback on early-return or panic to avoid leaking DB locks
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()
	defer func() { _ = tx.Rollback().Error }()

	var orderItems []models.OrderItem
	totalAmount := decimal.Zero

	for _, line := range input.Items {
		var product models.Product
		if err := tx.First(&product, line.ProductId).Error; err != nil {
			config.LogError(logger, "orderWorkflow.go", "CreateOrder", "GetProduct", line.ProductId, err)
			return nil, utils.ErrorRecordNotFound
		}

		// conditional decrement: check-and-deduct is one statement, so two
		// concurrent orders cannot both drain the same low stock
		if err := models.DeductProductStock(tx, product.ID, line.Quantity); err != nil {
			config.LogError(logger, "orderWorkflow.go", "CreateOrder", "DeductProductStock", line, err)
			return nil, err
		}

		subtotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		orderItems = append(orderItems, models.OrderItem{
			ProductId: product.ID,
			Quantity:  line.Quantity,
			Price:     product.Price,
			Subtotal:  subtotal,
		})
		totalAmount = totalAmount.Add(subtotal)
	}

	// promotion, if any, applies to the pre-shipping subtotal
	discountAmount := decimal.Zero
	promotionId := 0
	if input.PromotionCode != "" {
		promotion, err := models.FindPromotionByCode(tx, input.PromotionCode)
		if err != nil {
			config.LogError(logger, "orderWorkflow.go", "CreateOrder", "FindPromotion", input.PromotionCode, err)
			return nil, utils.ErrorRecordNotFound
		}
		if err := promotion.EligibleFor(totalAmount, time.Now()); err != nil {
			return nil, err
		}
		discountAmount = promotion.DiscountFor(totalAmount)
		if err := models.IncrementPromotionUsage(tx, promotion.ID); err != nil {
			config.LogError(logger, "orderWorkflow.go", "CreateOrder", "IncrementPromotionUsage", promotion.ID, err)
			return nil, err
		}
		promotionId = promotion.ID
	}

	finalAmount := orderFinalAmount(totalAmount, shippingCost, discountAmount)

	order := models.Order{
		CustomerId:       input.CustomerId,
		Status:           models.OrderStatusPending,
		PaymentMethod:    input.PaymentMethod,
		TotalAmount:      totalAmount,
		ShippingCost:     shippingCost,
		DiscountAmount:   discountAmount,
		FinalAmount:      finalAmount,
		PromotionId:      promotionId,
		ShippingMethodId: input.ShippingMethodId,
		ShippingAddress:  input.ShippingAddress,
		ShippingPhone:    utils.NormalizePhoneNumber(input.ShippingPhone, utils.CountryCode),
		TrackingNumber:   input.TrackingNumber,
		SalesChannel:     input.SalesChannel,
		Notes:            input.Notes,
		CreatedBy:        userId,
		Items:            orderItems,
	}
	if input.PaymentMethod == models.PaymentMethodCOD {
		order.CODAmount = finalAmount
	}

	// the unique index on order_number backstops the sequence; regenerate and
	// retry instead of failing the whole order on a collision
	var createErr error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		seqNo, err := utils.GetSequence[models.Order](ctx)
		if err != nil {
			config.LogError(logger, "orderWorkflow.go", "CreateOrder", "GetSequence", nil, err)
			return nil, err
		}
		order.SequenceNo = seqNo
		order.OrderNumber = formatOrderNumber(seqNo)

		createErr = tx.Create(&order).Error
		if createErr == nil {
			break
		}
		if !isDuplicateKeyError(createErr) {
			config.LogError(logger, "orderWorkflow.go", "CreateOrder", "CreateOrder", order.OrderNumber, createErr)
			return nil, createErr
		}
		order.ID = 0
	}
	if createErr != nil {
		config.LogError(logger, "orderWorkflow.go", "CreateOrder", "CreateOrderRetriesExhausted", order.OrderNumber, createErr)
		return nil, createErr
	}

	if input.CustomerId > 0 {
		onCredit := input.PaymentMethod == models.PaymentMethodCredit
		if onCredit {
			debt := models.DebtTransaction{
				EntityType:      models.DebtEntityTypeCustomer,
				EntityId:        input.CustomerId,
				TransactionType: models.DebtTransactionTypeIncrease,
				Amount:          finalAmount,
				OrderId:         order.ID,
				PaymentMethod:   input.PaymentMethod,
				Notes:           "credit sale " + order.OrderNumber,
				CreatedBy:       userId,
			}
			if err := models.AppendDebtTransaction(tx, &debt); err != nil {
				config.LogError(logger, "orderWorkflow.go", "CreateOrder", "AppendDebtTransaction", debt, err)
				return nil, err
			}
		}
		if err := models.ApplyCustomerPurchase(tx, input.CustomerId, finalAmount, onCredit); err != nil {
			config.LogError(logger, "orderWorkflow.go", "CreateOrder", "ApplyCustomerPurchase", input.CustomerId, err)
			return nil, err
		}
	}

	// one ledger row per line; the causing document is this order
	for _, item := range order.Items {
		record := models.InventoryTransaction{
			ProductId:     item.ProductId,
			Type:          models.InventoryTransactionTypeOut,
			Quantity:      item.Quantity,
			ReferenceType: models.InventoryReferenceTypeOrder,
			ReferenceId:   order.ID,
			CreatedBy:     userId,
		}
		if err := models.AppendInventoryTransaction(tx, &record); err != nil {
			config.LogError(logger, "orderWorkflow.go", "CreateOrder", "AppendInventoryTransaction", record, err)
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "orderWorkflow.go", "CreateOrder", "Commit", order.OrderNumber, err)
		return nil, err
	}

	return models.GetOrder(ctx, order.ID)
}

// orderFinalAmount is what the customer owes: line subtotals plus shipping
// minus the promotion discount. COD orders collect exactly this amount.
func orderFinalAmount(itemsTotal, shippingCost, discount decimal.Decimal) decimal.Decimal {
	return itemsTotal.Add(shippingCost).Sub(discount)
}

// formatOrderNumber renders a sequence number as the customer-facing order
// number. Zero-padded to six digits, widening past a million orders.
func formatOrderNumber(seq int64) string {
	return fmt.Sprintf("ORD-%06d", seq)
}

func isDuplicateKeyError(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/mmdatafocus/sales_backend/config"
	"github.com/mmdatafocus/sales_backend/models"
	"github.com/mmdatafocus/sales_backend/utils"
	"github.com/mmdatafocus/sales_backend/workflow"
)

// respondError maps workflow errors onto HTTP statuses. Validation shapes are
// rejected by gin binding before any transaction starts.
func respondError(c *gin.Context, err error) {
	switch err {
	case utils.ErrorRecordNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case utils.ErrorAlreadyProcessed:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case utils.ErrorInsufficientStock,
		utils.ErrorPaymentExceedsDebt,
		utils.ErrorValidation,
		models.ErrPromotionInactive,
		models.ErrPromotionExpired,
		models.ErrPromotionUsedUp,
		models.ErrPromotionMinPurchase:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func respondBindError(c *gin.Context, err error) {
	if verr, ok := err.(validator.ValidationErrors); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": utils.ProcessValidationErrors(verr)})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func adjustStockHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.StockAdjustment
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		result, err := workflow.AdjustStock(c.Request.Context(), config.GetLogger(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
	}
}

func createStockInHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewStockIn
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		stockIn, err := workflow.CreateStockIn(c.Request.Context(), config.GetLogger(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": stockIn})
	}
}

func createStockOutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewStockOut
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		stockOut, err := workflow.CreateStockOut(c.Request.Context(), config.GetLogger(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": stockOut})
	}
}

func createStocktakingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewStocktaking
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		stocktaking, err := workflow.CreateStocktaking(c.Request.Context(), config.GetLogger(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": stocktaking})
	}
}

func completeStocktakingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		stocktaking, err := workflow.CompleteStocktaking(c.Request.Context(), config.GetLogger(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": stocktaking})
	}
}

func lowStockHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := models.ListLowStockProducts(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": products})
	}
}

func inventoryTransactionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		productId, _ := strconv.Atoi(c.Query("product_id"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(config.SearchLimit)))
		records, err := models.ListInventoryTransactions(c.Request.Context(), productId, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": records})
	}
}

func createOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewOrder
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		order, err := workflow.CreateOrder(c.Request.Context(), config.GetLogger(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": order})
	}
}

func getOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		order, err := models.GetOrder(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": order})
	}
}

func getStocktakingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		stocktaking, err := models.GetStocktaking(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": stocktaking})
	}
}

func getPurchaseOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		po, err := models.GetPurchaseOrder(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": po})
	}
}

func createPurchaseOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewPurchaseOrder
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		purchaseOrder, err := workflow.CreatePurchaseOrder(c.Request.Context(), config.GetLogger(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": purchaseOrder})
	}
}

func receivePurchaseOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.ReceivePurchaseOrderInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		purchaseOrder, err := workflow.ReceivePurchaseOrder(c.Request.Context(), config.GetLogger(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": purchaseOrder})
	}
}

func payCustomerDebtHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.DebtPayment
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		debt, err := workflow.PayCustomerDebt(c.Request.Context(), config.GetLogger(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": debt})
	}
}

func paySupplierDebtHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.DebtPayment
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		debt, err := workflow.PaySupplierDebt(c.Request.Context(), config.GetLogger(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": debt})
	}
}

func debtBalanceHandler(entityType models.DebtEntityType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}

		var entity interface{}
		var err error
		switch entityType {
		case models.DebtEntityTypeSupplier:
			entity, err = models.GetSupplier(c.Request.Context(), id)
		default:
			entity, err = models.GetCustomer(c.Request.Context(), id)
		}
		if err != nil {
			respondError(c, err)
			return
		}

		balance, err := models.GetDebtBalance(c.Request.Context(), entityType, id)
		if err != nil {
			respondError(c, err)
			return
		}
		transactions, err := models.ListDebtTransactions(c.Request.Context(), entityType, id, config.SearchLimit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": gin.H{
			string(entityType): entity,
			"balance":          balance,
			"transactions":     transactions,
		}})
	}
}

func createReconciliationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewReconciliation
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		reconciliation, err := workflow.CreateReconciliation(c.Request.Context(), config.GetLogger(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": reconciliation})
	}
}

func getReconciliationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		reconciliation, err := models.GetReconciliation(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": reconciliation})
	}
}

func reconciliationTransitionHandler(transition func(c *gin.Context, id int) (*models.Reconciliation, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		reconciliation, err := transition(c, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": reconciliation})
	}
}

func confirmReconciliationHandler() gin.HandlerFunc {
	return reconciliationTransitionHandler(func(c *gin.Context, id int) (*models.Reconciliation, error) {
		return workflow.ConfirmReconciliation(c.Request.Context(), config.GetLogger(), id)
	})
}

func approveReconciliationHandler() gin.HandlerFunc {
	return reconciliationTransitionHandler(func(c *gin.Context, id int) (*models.Reconciliation, error) {
		return workflow.ApproveReconciliation(c.Request.Context(), config.GetLogger(), id)
	})
}

func payReconciliationHandler() gin.HandlerFunc {
	return reconciliationTransitionHandler(func(c *gin.Context, id int) (*models.Reconciliation, error) {
		return workflow.PayReconciliation(c.Request.Context(), config.GetLogger(), id)
	})
}

func getUploadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		upload, err := models.GetReconciliationUpload(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		items, err := models.ListReconciliationFileItems(c.Request.Context(), upload.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": gin.H{
			"upload": upload,
			"items":  items,
		}})
	}
}

package models

import (
	"context"

	"github.com/mmdatafocus/sales_backend/config"
	"gorm.io/gorm"
)

func configDB(ctx context.Context) *gorm.DB {
	return config.GetDB().WithContext(ctx)
}

// AutoMigrate creates/updates the schema for every entity this service owns.
// Maintenance commands call this too so they can run against a fresh database.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Product{},
		&Customer{},
		&Supplier{},
		&InventoryTransaction{},
		&DebtTransaction{},
		&Order{},
		&OrderItem{},
		&Promotion{},
		&ShippingMethod{},
		&Shipment{},
		&PurchaseOrder{},
		&PurchaseOrderItem{},
		&StockIn{},
		&StockInItem{},
		&StockOut{},
		&StockOutItem{},
		&Stocktaking{},
		&StocktakingItem{},
		&Reconciliation{},
		&ReconciliationItem{},
		&ReconciliationUpload{},
		&ReconciliationFileItem{},
		&ProcessingJob{},
	)
}

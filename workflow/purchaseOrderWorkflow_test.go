package workflow

import (
	"testing"

	"github.com/mmdatafocus/sales_backend/models"
)

func TestReceiptInventoryRecord(t *testing.T) {
	stockIn := &models.StockIn{ID: 12, PurchaseOrderId: 4}
	item := models.StockInItem{ProductId: 3, Quantity: 8}

	record := receiptInventoryRecord(stockIn, item, 99)

	if record.Type != models.InventoryTransactionTypeIn {
		t.Fatalf("receipt ledger type = %q, want %q", record.Type, models.InventoryTransactionTypeIn)
	}
	// the ledger traces to the stock-in receipt, not the purchase order
	if record.ReferenceType != models.InventoryReferenceTypeStockIn {
		t.Fatalf("receipt ledger reference type = %q, want %q", record.ReferenceType, models.InventoryReferenceTypeStockIn)
	}
	if record.ReferenceId != stockIn.ID {
		t.Fatalf("receipt ledger reference id = %d, want %d", record.ReferenceId, stockIn.ID)
	}
	if record.ProductId != 3 || record.Quantity != 8 || record.CreatedBy != 99 {
		t.Fatalf("unexpected ledger row: %+v", record)
	}
	if !record.ReferenceType.Valid() || !record.Type.Valid() {
		t.Fatalf("ledger row must pass enum validation: %+v", record)
	}
}

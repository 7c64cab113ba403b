package models

import "testing"

func TestInventoryTransactionSignedQuantity(t *testing.T) {
	cases := []struct {
		record   InventoryTransaction
		expected int
	}{
		{InventoryTransaction{Type: InventoryTransactionTypeIn, Quantity: 5}, 5},
		{InventoryTransaction{Type: InventoryTransactionTypeReturn, Quantity: 3}, 3},
		{InventoryTransaction{Type: InventoryTransactionTypeOut, Quantity: 4}, -4},
		{InventoryTransaction{Type: InventoryTransactionTypeAdjustment, Quantity: -3}, -3},
		{InventoryTransaction{Type: InventoryTransactionTypeAdjustment, Quantity: 7}, 7},
	}
	for _, tc := range cases {
		if got := tc.record.SignedQuantity(); got != tc.expected {
			t.Fatalf("%s qty %d: expected %d, got %d", tc.record.Type, tc.record.Quantity, tc.expected, got)
		}
	}
}

func TestReferenceTypeValid(t *testing.T) {
	for _, rt := range []InventoryReferenceType{
		InventoryReferenceTypeStockIn, InventoryReferenceTypeStockOut,
		InventoryReferenceTypeOrder, InventoryReferenceTypePurchaseOrder,
		InventoryReferenceTypeStocktaking, InventoryReferenceTypeManual,
	} {
		if !rt.Valid() {
			t.Fatalf("%s should be valid", rt)
		}
	}
	if InventoryReferenceType("invoice").Valid() {
		t.Fatalf("unknown reference type must be invalid")
	}
	if InventoryReferenceType("").Valid() {
		t.Fatalf("empty reference type must be invalid")
	}
}

func TestPurchaseOrderFullyReceived(t *testing.T) {
	po := PurchaseOrder{Items: []PurchaseOrderItem{
		{Quantity: 10, ReceivedQuantity: 10},
		{Quantity: 5, ReceivedQuantity: 7},
	}}
	if !po.FullyReceived() {
		t.Fatalf("all lines at or over quantity should be fully received")
	}

	po.Items[1].ReceivedQuantity = 4
	if po.FullyReceived() {
		t.Fatalf("a short line should keep the order partial")
	}

	empty := PurchaseOrder{}
	if empty.FullyReceived() {
		t.Fatalf("an order without lines is never fully received")
	}
}

// stock-rebuild recomputes products' stock column from the inventory ledger
// (sum of signed quantities). Reports drift before fixing it; run with -check
// to only report.
//
// Usage:
//   go run ./cmd/stock-rebuild
//   go run ./cmd/stock-rebuild -product-id 12
//   go run ./cmd/stock-rebuild -check
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mmdatafocus/sales_backend/config"
	"github.com/mmdatafocus/sales_backend/models"
)

func main() {
	productID := flag.Int("product-id", 0, "Optional: rebuild a single product")
	checkOnly := flag.Bool("check", false, "Report drift without writing")
	flag.Parse()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	var products []models.Product
	q := db.WithContext(ctx).Select("id", "name", "stock")
	if *productID > 0 {
		q = q.Where("id = ?", *productID)
	}
	if err := q.Find(&products).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to list products: %v\n", err)
		os.Exit(1)
	}

	var drifted int
	for _, product := range products {
		var records []models.InventoryTransaction
		err := db.WithContext(ctx).
			Where("product_id = ?", product.ID).
			Find(&records).Error
		if err != nil {
			fmt.Fprintf(os.Stderr, "product %d: %v\n", product.ID, err)
			os.Exit(1)
		}

		derived := 0
		for _, record := range records {
			derived += record.SignedQuantity()
		}
		if derived == product.Stock {
			continue
		}
		drifted++
		fmt.Printf("product %d (%s): stock=%d ledger=%d\n", product.ID, product.Name, product.Stock, derived)

		if *checkOnly {
			continue
		}
		if derived < 0 {
			fmt.Fprintf(os.Stderr, "product %d: ledger sums negative (%d), refusing to write\n", product.ID, derived)
			continue
		}
		if err := db.WithContext(ctx).Model(&models.Product{}).
			Where("id = ?", product.ID).
			Update("stock", derived).Error; err != nil {
			fmt.Fprintf(os.Stderr, "product %d: %v\n", product.ID, err)
			os.Exit(1)
		}
	}

	fmt.Printf("done: %d products, %d drifted\n", len(products), drifted)
}

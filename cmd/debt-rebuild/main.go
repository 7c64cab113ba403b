// debt-rebuild recomputes customers' denormalized debt_amount column from the
// debt ledger. Run after manual data repairs or suspected drift.
//
// Usage:
//   go run ./cmd/debt-rebuild                 # all customers with ledger rows
//   go run ./cmd/debt-rebuild -customer-id 7  # one customer
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mmdatafocus/sales_backend/config"
	"github.com/mmdatafocus/sales_backend/models"
	"github.com/mmdatafocus/sales_backend/workflow"
)

func main() {
	customerID := flag.Int("customer-id", 0, "Optional: rebuild a single customer")
	continueOnError := flag.Bool("continue-on-error", false, "Skip failing customers and continue")
	flag.Parse()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	logger := config.GetLogger()

	var ids []int
	if *customerID > 0 {
		ids = append(ids, *customerID)
	} else {
		err := db.WithContext(ctx).Model(&models.DebtTransaction{}).
			Where("entity_type = ?", models.DebtEntityTypeCustomer).
			Distinct("entity_id").
			Pluck("entity_id", &ids).Error
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to list customers: %v\n", err)
			os.Exit(1)
		}
	}

	var failed int
	for _, id := range ids {
		balance, err := workflow.RebuildCustomerDebt(ctx, logger, id)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "customer %d: %v\n", id, err)
			if !*continueOnError {
				os.Exit(1)
			}
			continue
		}
		fmt.Printf("customer %d: debt_amount=%s\n", id, balance.String())
	}

	fmt.Printf("done: %d customers, %d failed\n", len(ids), failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// Command vaultdb-demo walks through the standard transfer, rollback,
// conflict-restart, and cross-resource order scenarios against a fresh
// in-memory Vault.
package main

import (
	"fmt"
	"log"

	"github.com/vaultdb/vaultdb/pkg/seed"
	"github.com/vaultdb/vaultdb/pkg/service"
	"github.com/vaultdb/vaultdb/pkg/txn"
	"github.com/vaultdb/vaultdb/pkg/vault"
)

func main() {
	fmt.Println("VaultDB Demo")
	fmt.Println("============")
	fmt.Println()

	v := vault.New(vault.Options{})
	defer v.Close()

	fmt.Println("1. Loading fixture data (2 accounts, 3 products)...")
	if err := seed.Load(v); err != nil {
		log.Fatalf("failed to load fixture data: %v", err)
	}
	printBalances(v)
	fmt.Println()

	bank := service.NewBankService(v.Manager)
	inventory := service.NewInventoryService(v.Manager)

	fmt.Println("2. Simple transfer: account 1 -> account 2, 250.00")
	if err := bank.Transfer("demo-transfer", "1", "2", 250, "rent", v.MaxRetries()); err != nil {
		log.Fatalf("transfer failed: %v", err)
	}
	printBalances(v)
	fmt.Println()

	fmt.Println("3. Rejected transfer: insufficient funds, rolled back internally")
	if err := bank.Transfer("demo-insufficient", "1", "2", 999999, "too much", v.MaxRetries()); err != nil {
		fmt.Printf("   transfer rejected as expected: %v\n", err)
	} else {
		log.Fatalf("expected transfer to be rejected")
	}
	printBalances(v)
	fmt.Println()

	fmt.Println("4. Conflicting writers: manual begin/execute showing an internal restart")
	runConflictDemo(v)
	fmt.Println()

	fmt.Println("5. Cross-resource order: reserve stock and record the order")
	orderID, err := inventory.PlaceOrder("demo-order", "1", 5, v.MaxRetries())
	if err != nil {
		log.Fatalf("order failed: %v", err)
	}
	fmt.Printf("   order placed: id=%s\n", orderID)
	printStock(v)
	fmt.Println()

	stats := v.Statistics()
	fmt.Println("6. Manager statistics")
	fmt.Printf("   active=%d total=%d log_entries=%d versioned_resources=%d\n",
		stats.Active, stats.Total, stats.LogEntries, stats.VersionedResources)
}

func runConflictDemo(v *vault.Vault) {
	m := v.Manager

	if _, err := m.Begin("demo-c1"); err != nil {
		log.Fatalf("begin c1: %v", err)
	}
	if _, err := m.Execute("demo-c1", txn.OpSelect, "financial", "accounts", "2", nil); err != nil {
		log.Fatalf("c1 read: %v", err)
	}

	if _, err := m.Begin("demo-c2"); err != nil {
		log.Fatalf("begin c2: %v", err)
	}
	if _, err := m.Execute("demo-c2", txn.OpUpdate, "financial", "accounts", "2", map[string]any{"balance": 1.0}); err != nil {
		log.Fatalf("c2 write: %v", err)
	}
	if err := m.Commit("demo-c2"); err != nil {
		log.Fatalf("c2 commit: %v", err)
	}
	fmt.Println("   c2 committed account 2's balance to 1.00")

	_, err := m.Execute("demo-c1", txn.OpUpdate, "financial", "accounts", "2", map[string]any{"balance": 2.0})
	if err != nil {
		fmt.Printf("   c1's write was restarted as expected: %v\n", err)
	} else {
		log.Fatalf("expected c1's write to restart")
	}

	result, err := m.Execute("demo-c1", txn.OpSelect, "financial", "accounts", "2", nil)
	if err != nil {
		log.Fatalf("c1 retry read: %v", err)
	}
	fmt.Printf("   c1's retry observes account 2's committed balance: %v\n", result.Row["balance"])
	if err := m.Rollback("demo-c1"); err != nil {
		log.Fatalf("c1 rollback: %v", err)
	}
}

func printBalances(v *vault.Vault) {
	for _, id := range []string{"1", "2"} {
		row, found, err := v.Store.SelectByKey("financial", "accounts", id)
		if err != nil {
			log.Fatalf("read account %s: %v", id, err)
		}
		if !found {
			continue
		}
		fmt.Printf("   account %s (%v): balance %v\n", id, row["owner"], row["balance"])
	}
}

func printStock(v *vault.Vault) {
	row, found, err := v.Store.SelectByKey("inventory", "products", "1")
	if err != nil {
		log.Fatalf("read product 1: %v", err)
	}
	if !found {
		return
	}
	fmt.Printf("   product %s (%v): stock %v\n", "1", row["name"], row["stock"])
}

// Package seed populates a fresh Vault with fixture data: two financial
// accounts and a small inventory catalog, enough to exercise transfers,
// rollbacks, conflict restarts, and cross-resource orders without any
// caller having to hand-assemble rows first.
package seed

import (
	"fmt"

	"github.com/vaultdb/vaultdb/pkg/entity"
	"github.com/vaultdb/vaultdb/pkg/vault"
)

// Load creates the financial and inventory databases and inserts the
// standard fixture rows: account 1 with balance 1000, account 2 with
// balance 5000, and three inventory products. The transactions and
// orders tables are created empty.
func Load(v *vault.Vault) error {
	if err := v.CreateDatabase("financial"); err != nil {
		return fmt.Errorf("seed: create financial database: %w", err)
	}
	if err := v.CreateTable("financial", "accounts", "id"); err != nil {
		return fmt.Errorf("seed: create accounts table: %w", err)
	}
	if err := v.CreateTable("financial", "transactions", "id"); err != nil {
		return fmt.Errorf("seed: create transactions table: %w", err)
	}

	if err := v.CreateDatabase("inventory"); err != nil {
		return fmt.Errorf("seed: create inventory database: %w", err)
	}
	if err := v.CreateTable("inventory", "products", "id"); err != nil {
		return fmt.Errorf("seed: create products table: %w", err)
	}
	if err := v.CreateTable("inventory", "orders", "id"); err != nil {
		return fmt.Errorf("seed: create orders table: %w", err)
	}

	accounts := []entity.Account{
		{ID: "1", Owner: "alice", Balance: 1000, Active: true},
		{ID: "2", Owner: "bob", Balance: 5000, Active: true},
	}
	for _, a := range accounts {
		if _, err := v.Store.Insert("financial", "accounts", a.AsMap()); err != nil {
			return fmt.Errorf("seed: insert account %s: %w", a.ID, err)
		}
	}

	products := []entity.Product{
		{ID: "1", Name: "widget", Price: 9.99, Stock: 50},
		{ID: "2", Name: "gadget", Price: 24.50, Stock: 20},
		{ID: "3", Name: "gizmo", Price: 149.00, Stock: 5},
	}
	for _, p := range products {
		if _, err := v.Store.Insert("inventory", "products", p.AsMap()); err != nil {
			return fmt.Errorf("seed: insert product %s: %w", p.ID, err)
		}
	}

	return nil
}

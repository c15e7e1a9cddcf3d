// Package vault is VaultDB's top-level facade: it wires the schema
// registry, the Resource Store, the audit log, and the Transaction
// Manager into one handle so callers never touch those pieces directly.
package vault

import (
	"fmt"

	"github.com/vaultdb/vaultdb/pkg/auditlog"
	"github.com/vaultdb/vaultdb/pkg/catalog"
	"github.com/vaultdb/vaultdb/pkg/store"
	"github.com/vaultdb/vaultdb/pkg/txn"
)

// Options configures a Vault. The zero value is usable.
type Options struct {
	// MaxRetries is the default retry budget handed to business-layer
	// helpers built on top of the manager (pkg/service.WithRetry).
	MaxRetries int
	// AuditBackend configures the audit log; its Backend field, if set,
	// is where events persist (e.g. storage.OpenDisk's result). Defaults
	// to an in-memory backend.
	AuditBackend auditlog.Options
}

// Vault is a running in-memory instance: one catalog, one Resource Store,
// one audit log, one Transaction Manager.
type Vault struct {
	Catalog *catalog.Catalog
	Store   *store.Store
	Audit   *auditlog.Log
	Manager *txn.Manager

	maxRetries int
}

// New creates an empty Vault with no databases registered.
func New(opts Options) *Vault {
	cat := catalog.New()
	st := store.New()
	audit := auditlog.New(opts.AuditBackend)

	manager := txn.NewManager(st, &txn.ManagerOptions{
		Logger:     audit,
		MaxRetries: opts.MaxRetries,
	})

	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &Vault{
		Catalog:    cat,
		Store:      st,
		Audit:      audit,
		Manager:    manager,
		maxRetries: maxRetries,
	}
}

// MaxRetries returns the configured default retry budget.
func (v *Vault) MaxRetries() int {
	return v.maxRetries
}

// CreateDatabase registers a database in both the catalog and the store.
func (v *Vault) CreateDatabase(name string) error {
	if err := v.Catalog.CreateDatabase(name); err != nil {
		return err
	}
	v.Store.CreateDatabase(name)
	return nil
}

// CreateTable registers a table in both the catalog and the store.
func (v *Vault) CreateTable(db, name, primaryKey string) error {
	if err := v.Catalog.CreateTable(db, name, primaryKey); err != nil {
		return err
	}
	v.Store.CreateTable(db, name, primaryKey)
	return nil
}

// Statistics reports a snapshot of the manager's counters alongside the
// registered schema size.
type Statistics struct {
	txn.Statistics
	Databases int
	Tables    int
}

// Statistics returns a snapshot of vault-wide counters.
func (v *Vault) Statistics() Statistics {
	dbs := v.Catalog.Databases()
	tableCount := 0
	for _, db := range dbs {
		tableCount += len(v.Catalog.Tables(db))
	}
	return Statistics{
		Statistics: v.Manager.Statistics(),
		Databases:  len(dbs),
		Tables:     tableCount,
	}
}

// Close releases the audit log's backend.
func (v *Vault) Close() error {
	if err := v.Audit.Close(); err != nil {
		return fmt.Errorf("vault: close audit log: %w", err)
	}
	return nil
}

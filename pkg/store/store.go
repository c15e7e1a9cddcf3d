// Package store is VaultDB's Resource Store adapter: a thin, in-memory
// multi-database/multi-table row store addressed by the same
// (database, table, key) triple the transaction manager validates
// against. It owns no concurrency-control logic of its own — calls come
// from the transaction manager applying an already validated operation,
// the undo log replaying a rollback, or callers such as pkg/seed that
// load or inspect rows directly, outside any transaction. One primary-key
// index lives per table name, grouped under a map per database.
package store

import (
	"fmt"
	"sort"
	"sync"
)

// Store groups tables under database names, matching the
// (database, table, key) resource triple used throughout the system.
type Store struct {
	mu  sync.RWMutex
	dbs map[string]map[string]*table
}

// New creates an empty store with no databases registered.
func New() *Store {
	return &Store{dbs: make(map[string]map[string]*table)}
}

// CreateDatabase registers a database name, a no-op if it already exists.
func (s *Store) CreateDatabase(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dbs[name]; !ok {
		s.dbs[name] = make(map[string]*table)
	}
}

// CreateTable registers a table with the given primary-key field name
// (defaulting to "id") inside an existing or implicitly created database.
func (s *Store) CreateTable(db, name, primaryKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables, ok := s.dbs[db]
	if !ok {
		tables = make(map[string]*table)
		s.dbs[db] = tables
	}
	if _, ok := tables[name]; !ok {
		tables[name] = newTable(name, primaryKey)
	}
}

// Databases lists the known database names, sorted.
func (s *Store) Databases() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.dbs))
	for name := range s.dbs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tables lists the table names registered in db, sorted.
func (s *Store) Tables(db string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tables, ok := s.dbs[db]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) lookup(db, tableName string) (*table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tables, ok := s.dbs[db]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, db)
	}
	t, ok := tables[tableName]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrTableNotFound, db, tableName)
	}
	return t, nil
}

// SelectByKey implements txn.ResourceStore.
func (s *Store) SelectByKey(db, tableName, key string) (map[string]any, bool, error) {
	t, err := s.lookup(db, tableName)
	if err != nil {
		return nil, false, err
	}
	return t.selectByKey(key)
}

// SelectAll implements txn.ResourceStore.
func (s *Store) SelectAll(db, tableName string) ([]map[string]any, error) {
	t, err := s.lookup(db, tableName)
	if err != nil {
		return nil, err
	}
	return t.selectAll()
}

// Insert implements txn.ResourceStore.
func (s *Store) Insert(db, tableName string, row map[string]any) (string, error) {
	t, err := s.lookup(db, tableName)
	if err != nil {
		return "", err
	}
	return t.insert(row)
}

// Update implements txn.ResourceStore.
func (s *Store) Update(db, tableName, key string, patch map[string]any) (bool, error) {
	t, err := s.lookup(db, tableName)
	if err != nil {
		return false, err
	}
	return t.update(key, patch)
}

// Delete implements txn.ResourceStore.
func (s *Store) Delete(db, tableName, key string) (bool, error) {
	t, err := s.lookup(db, tableName)
	if err != nil {
		return false, err
	}
	return t.delete(key), nil
}

package store

import (
	"errors"
	"sync"
)

// index is the primary-key lookup structure backing one table. The
// transaction manager only ever asks the Resource Store for a point
// lookup by key or a full scan of every row in a table (no range
// queries, no secondary indexes), so a plain map is the whole of what's
// needed here — no page pool, no disk format, no ordered tree.
type index struct {
	mu   sync.RWMutex
	rows map[string][]byte
}

var errInvalidKey = errors.New("store: invalid key")

func newIndex() *index {
	return &index{rows: make(map[string][]byte)}
}

// Get retrieves the value stored at key.
func (x *index) Get(key []byte) ([]byte, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	v, ok := x.rows[string(key)]
	return v, ok
}

// Has reports whether key exists without copying its value.
func (x *index) Has(key []byte) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.rows[string(key)]
	return ok
}

// Put inserts or updates key -> value.
func (x *index) Put(key, value []byte) error {
	if len(key) == 0 {
		return errInvalidKey
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.rows[string(key)] = value
	return nil
}

// Delete removes key, reporting whether it was present.
func (x *index) Delete(key []byte) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.rows[string(key)]; !ok {
		return false
	}
	delete(x.rows, string(key))
	return true
}

// All returns a snapshot of every value in the table, for full-table
// scans — the only multi-row read this store supports (no secondary
// indexes, no range queries).
func (x *index) All() [][]byte {
	x.mu.RLock()
	defer x.mu.RUnlock()

	values := make([][]byte, 0, len(x.rows))
	for _, v := range x.rows {
		cp := make([]byte, len(v))
		copy(cp, v)
		values = append(values, cp)
	}
	return values
}

// Size returns the number of keys stored.
func (x *index) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.rows)
}

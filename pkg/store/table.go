package store

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/vaultdb/vaultdb/pkg/payload"
)

// table is one table's row storage: a primary-key index plus an
// auto-increment counter that every row inserted without an explicit
// key flows through.
type table struct {
	name       string
	primaryKey string
	rows       *index
	nextID     atomic.Int64
}

func newTable(name, primaryKey string) *table {
	if primaryKey == "" {
		primaryKey = "id"
	}
	return &table{
		name:       name,
		primaryKey: primaryKey,
		rows:       newIndex(),
	}
}

func (t *table) selectByKey(key string) (map[string]any, bool, error) {
	raw, ok := t.rows.Get([]byte(key))
	if !ok {
		return nil, false, nil
	}
	row, err := payload.Decode(raw)
	if err != nil {
		return nil, false, err
	}
	return row, true, nil
}

func (t *table) selectAll() ([]map[string]any, error) {
	rows := make([]map[string]any, 0)
	for _, raw := range t.rows.All() {
		row, err := payload.Decode(raw)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (t *table) insert(row map[string]any) (string, error) {
	key, hasKey := row[t.primaryKey]
	var keyStr string
	if hasKey && key != nil {
		keyStr = formatKey(key)
		if t.rows.Has([]byte(keyStr)) {
			return "", ErrKeyExists
		}
	} else {
		for {
			keyStr = strconv.FormatInt(t.nextID.Add(1), 10)
			if !t.rows.Has([]byte(keyStr)) {
				break
			}
		}
	}

	stored := cloneRow(row)
	stored[t.primaryKey] = keyStr

	raw, err := payload.Encode(stored)
	if err != nil {
		return "", err
	}
	if err := t.rows.Put([]byte(keyStr), raw); err != nil {
		return "", err
	}
	return keyStr, nil
}

func (t *table) update(key string, patch map[string]any) (bool, error) {
	existing, ok := t.rows.Get([]byte(key))
	if !ok {
		return false, nil
	}
	row, err := payload.Decode(existing)
	if err != nil {
		return false, err
	}

	for k, v := range patch {
		row[k] = v
	}
	row[t.primaryKey] = key // primary key never changes via patch

	raw, err := payload.Encode(row)
	if err != nil {
		return false, err
	}
	if err := t.rows.Put([]byte(key), raw); err != nil {
		return false, err
	}
	return true, nil
}

func (t *table) delete(key string) bool {
	return t.rows.Delete([]byte(key))
}

func cloneRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// formatKey normalizes a caller-supplied primary key value (which may have
// arrived as a JSON number, a string, or an int) to its canonical string
// form used as the index key.
func formatKey(v any) string {
	switch k := v.(type) {
	case string:
		return k
	case int:
		return strconv.Itoa(k)
	case int64:
		return strconv.FormatInt(k, 10)
	case float64:
		return strconv.FormatInt(int64(k), 10)
	default:
		return fmt.Sprint(v)
	}
}

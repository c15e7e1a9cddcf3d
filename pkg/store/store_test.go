package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	s := New()
	s.CreateDatabase("financial")
	s.CreateTable("financial", "accounts", "id")
	return s
}

func TestStoreInsertAndSelect(t *testing.T) {
	s := newTestStore()

	key, err := s.Insert("financial", "accounts", map[string]any{"id": "1", "balance": 1000})
	require.NoError(t, err)
	assert.Equal(t, "1", key)

	row, found, err := s.SelectByKey("financial", "accounts", "1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1000, row["balance"])
}

func TestStoreInsertAutoAssignsKey(t *testing.T) {
	s := newTestStore()

	key, err := s.Insert("financial", "accounts", map[string]any{"balance": 500})
	require.NoError(t, err)
	assert.NotEmpty(t, key)

	row, found, err := s.SelectByKey("financial", "accounts", key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, key, row["id"])
}

func TestStoreInsertRejectsDuplicateKey(t *testing.T) {
	s := newTestStore()

	_, err := s.Insert("financial", "accounts", map[string]any{"id": "1", "balance": 1000})
	require.NoError(t, err)

	_, err = s.Insert("financial", "accounts", map[string]any{"id": "1", "balance": 2000})
	assert.ErrorIs(t, err, ErrKeyExists)
}

func TestStoreUpdate(t *testing.T) {
	s := newTestStore()
	_, err := s.Insert("financial", "accounts", map[string]any{"id": "1", "balance": 1000})
	require.NoError(t, err)

	matched, err := s.Update("financial", "accounts", "1", map[string]any{"balance": 1500})
	require.NoError(t, err)
	assert.True(t, matched)

	row, _, err := s.SelectByKey("financial", "accounts", "1")
	require.NoError(t, err)
	assert.Equal(t, 1500, row["balance"])

	matched, err = s.Update("financial", "accounts", "missing", map[string]any{"balance": 1})
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestStoreDelete(t *testing.T) {
	s := newTestStore()
	_, err := s.Insert("financial", "accounts", map[string]any{"id": "1", "balance": 1000})
	require.NoError(t, err)

	deleted, err := s.Delete("financial", "accounts", "1")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, found, err := s.SelectByKey("financial", "accounts", "1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStoreSelectAll(t *testing.T) {
	s := newTestStore()
	_, err := s.Insert("financial", "accounts", map[string]any{"id": "1", "balance": 1000})
	require.NoError(t, err)
	_, err = s.Insert("financial", "accounts", map[string]any{"id": "2", "balance": 5000})
	require.NoError(t, err)

	rows, err := s.SelectAll("financial", "accounts")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestStoreUnknownDatabaseOrTable(t *testing.T) {
	s := New()

	_, _, err := s.SelectByKey("nope", "accounts", "1")
	assert.ErrorIs(t, err, ErrDatabaseNotFound)

	s.CreateDatabase("financial")
	_, _, err = s.SelectByKey("financial", "nope", "1")
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestIndexBasicOperations(t *testing.T) {
	idx := newIndex()

	require.NoError(t, idx.Put([]byte("a"), []byte("1")))
	require.NoError(t, idx.Put([]byte("b"), []byte("2")))
	assert.True(t, idx.Has([]byte("a")))
	assert.Equal(t, 2, idx.Size())

	v, ok := idx.Get([]byte("a"))
	require.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	assert.True(t, idx.Delete([]byte("a")))
	assert.False(t, idx.Has([]byte("a")))
	assert.Equal(t, 1, idx.Size())
}

func TestIndexManyKeys(t *testing.T) {
	idx := newIndex()
	for i := 0; i < 500; i++ {
		key := []byte{byte(i >> 8), byte(i)}
		require.NoError(t, idx.Put(key, key))
	}
	assert.Equal(t, 500, idx.Size())
	assert.Len(t, idx.All(), 500)
}

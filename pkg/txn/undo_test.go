package txn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUndoUpdateRestoresPreviousRow(t *testing.T) {
	s := newMemStore()
	s.table("financial", "accounts")["1"] = map[string]any{"id": "1", "balance": 1000}

	tx := newTransaction("tid-1", 1, "client-a")
	res := ResourceID{Database: "financial", Table: "accounts", Key: "1"}

	require.NoError(t, prepareUndo(s, tx, OpUpdate, res))
	_, err := s.Update("financial", "accounts", "1", map[string]any{"balance": 500})
	require.NoError(t, err)

	errs := rollback(s, tx)
	assert.Empty(t, errs)

	row, _, _ := s.SelectByKey("financial", "accounts", "1")
	assert.Equal(t, 1000, row["balance"])
}

func TestUndoDeleteReinsertsRow(t *testing.T) {
	s := newMemStore()
	s.table("inventory", "products")["p1"] = map[string]any{"id": "p1", "stock": 10}

	tx := newTransaction("tid-1", 1, "client-a")
	res := ResourceID{Database: "inventory", Table: "products", Key: "p1"}

	require.NoError(t, prepareUndo(s, tx, OpDelete, res))
	_, err := s.Delete("inventory", "products", "p1")
	require.NoError(t, err)

	errs := rollback(s, tx)
	assert.Empty(t, errs)

	row, found, _ := s.SelectByKey("inventory", "products", "p1")
	require.True(t, found)
	assert.Equal(t, 10, row["stock"])
}

func TestUndoInsertDeletesAssignedKey(t *testing.T) {
	s := newMemStore()
	tx := newTransaction("tid-1", 1, "client-a")
	res := ResourceID{Database: "inventory", Table: "products", Key: ""}

	key, err := s.Insert("inventory", "products", map[string]any{"name": "widget"})
	require.NoError(t, err)
	recordInsertUndo(tx, res, key)

	errs := rollback(s, tx)
	assert.Empty(t, errs)

	_, found, _ := s.SelectByKey("inventory", "products", key)
	assert.False(t, found)
}

func TestPrepareUndoFailsOnMissingRow(t *testing.T) {
	s := newMemStore()
	tx := newTransaction("tid-1", 1, "client-a")
	res := ResourceID{Database: "financial", Table: "accounts", Key: "missing"}

	err := prepareUndo(s, tx, OpUpdate, res)
	assert.ErrorIs(t, err, ErrStore)
}

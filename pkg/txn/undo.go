package txn

import "fmt"

// undoEntry is one inverse operation recorded before a mutating op is
// applied to the Resource Store:
//
//	INSERT -> DELETE(db, table, assigned-key)
//	UPDATE -> UPDATE(db, table, key, previous-full-row)
//	DELETE -> INSERT(db, table, previous-full-row)
type undoEntry struct {
	inverse OpType
	res     ResourceID
	row     map[string]any // previous-full-row for UPDATE/DELETE undo
}

// prepareUndo reads whatever the inverse operation needs from the store
// *before* the forward operation mutates it, and appends it to the
// transaction's undo log. For UPDATE/DELETE it requires the current row to
// exist; a missing row is a StoreError surfaced to the caller, with
// nothing recorded.
func prepareUndo(store ResourceStore, tx *Transaction, op OpType, res ResourceID) error {
	switch op {
	case OpInsert:
		// The assigned key isn't known until after Insert runs; the
		// manager fills it in via recordInsertUndo once the store
		// returns it.
		return nil

	case OpUpdate, OpDelete:
		previous, ok, err := store.SelectByKey(res.Database, res.Table, res.Key)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStore, err)
		}
		if !ok {
			return fmt.Errorf("%w: no row at %s to %s", ErrStore, res, op)
		}
		inverse := OpUpdate
		if op == OpDelete {
			inverse = OpInsert
		}
		tx.UndoLog = append(tx.UndoLog, undoEntry{inverse: inverse, res: res, row: previous})
		return nil

	default:
		return nil
	}
}

// recordInsertUndo appends the DELETE-back undo entry for an INSERT, once
// the assigned key is known.
func recordInsertUndo(tx *Transaction, res ResourceID, assignedKey string) {
	res.Key = assignedKey
	tx.UndoLog = append(tx.UndoLog, undoEntry{inverse: OpDelete, res: res})
}

// rollback executes the undo log top-down (reverse of append), applying
// each inverse operation directly to the store. Undo operations bypass
// the concurrency controller entirely — they are internal effects of an
// already-lost transaction.
func rollback(store ResourceStore, tx *Transaction) []error {
	var errs []error
	for i := len(tx.UndoLog) - 1; i >= 0; i-- {
		entry := tx.UndoLog[i]
		var err error
		switch entry.inverse {
		case OpInsert:
			_, err = store.Insert(entry.res.Database, entry.res.Table, cloneRow(entry.row))
		case OpUpdate:
			_, err = store.Update(entry.res.Database, entry.res.Table, entry.res.Key, cloneRow(entry.row))
		case OpDelete:
			_, err = store.Delete(entry.res.Database, entry.res.Table, entry.res.Key)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("undo %s on %s: %w", entry.inverse, entry.res, err))
		}
	}
	tx.UndoLog = nil
	return errs
}

package txn

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Logger receives an audit trail of manager-level events (BEGIN, EXECUTE,
// COMMIT, ROLLBACK, RESTART, DEADLOCK). It is optional and out-of-band —
// never a correctness dependency. pkg/auditlog.Log implements this
// interface.
type Logger interface {
	Log(kind, tid string, details map[string]any)
}

// ManagerOptions configures a Manager. The zero value is usable; Logger
// nil means no audit trail.
type ManagerOptions struct {
	Logger     Logger
	MaxRetries int // not read by Manager; WithRetry takes its budget as an argument
}

func (o *ManagerOptions) logger() Logger {
	if o == nil {
		return nil
	}
	return o.Logger
}

// Manager is the Transaction Manager facade: the public entry points
// begin/execute/commit/rollback, orchestrating validation, store
// mutation, undo-log append, and transaction-table state updates. It
// owns exactly one Resource Store, one Transaction Table, one Concurrency
// Controller, and one Version Log — a long-lived instance the service
// layer holds, never a process-wide singleton.
type Manager struct {
	store      ResourceStore
	table      *Table
	controller *Controller
	versions   *VersionLog
	logger     Logger

	logEntries atomic.Int64
}

// NewManager wires a Transaction Manager around a Resource Store.
func NewManager(store ResourceStore, opts *ManagerOptions) *Manager {
	table := NewTable()
	return &Manager{
		store:      store,
		table:      table,
		controller: NewController(table),
		versions:   NewVersionLog(),
		logger:     opts.logger(),
	}
}

func (m *Manager) log(kind, tid string, details map[string]any) {
	m.logEntries.Add(1)
	if m.logger != nil {
		m.logger.Log(kind, tid, details)
	}
}

// Begin starts a new transaction for client. Fails with ErrAlreadyActive
// if client already has a live transaction.
func (m *Manager) Begin(client string) (string, error) {
	tid := uuid.NewString()
	startTS := m.controller.NextTimestamp()
	tx := newTransaction(tid, startTS, client)

	if err := m.table.Insert(client, tx); err != nil {
		return "", err
	}

	m.log("BEGIN", tid, map[string]any{"client": client, "start_ts": startTS})
	return tid, nil
}

// Result is the outcome of Execute: only the fields belonging to the
// operation type that produced it are set.
type Result struct {
	Key    string           // INSERT: assigned primary key
	Row    map[string]any   // SELECT by key: the row, nil if absent
	Rows   []map[string]any // SELECT table scan
	Scan   bool             // true if this Result came from a table scan
	Found  bool             // SELECT by key: whether a row was present
	Matched bool            // UPDATE/DELETE: whether a row matched
}

// Execute runs one database operation within the client's active
// transaction. op must be one of OpSelect/OpInsert/OpUpdate/OpDelete.
// key is required for SELECT-by-id, UPDATE, and DELETE;
// pass "" (or WildcardKey for a table scan) otherwise. payload is the new
// row for INSERT, the patch for UPDATE, and ignored otherwise.
func (m *Manager) Execute(client string, op OpType, db, table string, key string, payload map[string]any) (Result, error) {
	tx, ok := m.table.Lookup(client)
	if !ok {
		return Result{}, ErrNoActiveTransaction
	}
	if tx.Status != StatusActive {
		return Result{}, ErrNotActive
	}

	res := ResourceID{Database: db, Table: table, Key: key}
	if key == "" && (op == OpSelect) {
		res.Key = WildcardKey
	}

	if op == OpSelect {
		if !m.controller.ValidateRead(tx.TID, tx.StartTS, res) {
			m.restart(client, tx, "read validation failed")
			return Result{}, ErrRestartRequired
		}
	} else {
		if !m.controller.ValidateWrite(tx.TID, tx.StartTS, res) {
			m.restart(client, tx, "write validation failed")
			return Result{}, ErrRestartRequired
		}
	}

	if victim, found := m.controller.DetectDeadlock(); found && victim == tx.TID {
		m.log("DEADLOCK", tx.TID, map[string]any{"op": op.String(), "resource": res.String()})
		m.restart(client, tx, "deadlock victim")
		return Result{}, ErrDeadlock
	}

	if op.isMutating() && !res.IsTableScan() {
		if err := prepareUndo(m.store, tx, op, res); err != nil {
			return Result{}, err
		}
	}

	result, assignedKey, err := m.applyToStore(op, db, table, res.Key, payload)
	if err != nil {
		m.log("OPERATION_ERROR", tx.TID, map[string]any{"op": op.String(), "resource": res.String(), "error": err.Error()})
		return Result{}, err
	}

	if op == OpInsert {
		res.Key = assignedKey
		recordInsertUndo(tx, res, assignedKey)
		m.versions.Write(res, payload, tx.StartTS, tx.TID)
		tx.WriteSet[res] = struct{}{}
	} else if op.isMutating() {
		m.versions.Write(res, payload, tx.StartTS, tx.TID)
		tx.WriteSet[res] = struct{}{}
	} else {
		tx.ReadSet[res] = struct{}{}
	}

	tx.addOp(op, res, payload)
	m.log("EXECUTE", tx.TID, map[string]any{"op": op.String(), "resource": res.String()})
	return result, nil
}

// applyToStore dispatches one operation to the Resource Store and shapes
// its Result per the per-operation result contract.
func (m *Manager) applyToStore(op OpType, db, table, key string, payload map[string]any) (Result, string, error) {
	switch op {
	case OpSelect:
		if key == WildcardKey {
			rows, err := m.store.SelectAll(db, table)
			if err != nil {
				return Result{}, "", fmt.Errorf("%w: %v", ErrStore, err)
			}
			return Result{Rows: rows, Scan: true}, "", nil
		}
		row, found, err := m.store.SelectByKey(db, table, key)
		if err != nil {
			return Result{}, "", fmt.Errorf("%w: %v", ErrStore, err)
		}
		return Result{Row: row, Found: found}, "", nil

	case OpInsert:
		assigned, err := m.store.Insert(db, table, cloneRow(payload))
		if err != nil {
			return Result{}, "", fmt.Errorf("%w: %v", ErrStore, err)
		}
		return Result{Key: assigned}, assigned, nil

	case OpUpdate:
		matched, err := m.store.Update(db, table, key, cloneRow(payload))
		if err != nil {
			return Result{}, "", fmt.Errorf("%w: %v", ErrStore, err)
		}
		return Result{Matched: matched}, "", nil

	case OpDelete:
		matched, err := m.store.Delete(db, table, key)
		if err != nil {
			return Result{}, "", fmt.Errorf("%w: %v", ErrStore, err)
		}
		return Result{Matched: matched}, "", nil

	default:
		return Result{}, "", fmt.Errorf("%w: unsupported operation", ErrStore)
	}
}

// Commit attempts to finalize client's transaction. It re-validates the full read/write set, and on success commits every
// written resource's versions and clears the transaction's undo log. On
// validation failure the transaction is aborted; the caller decides
// whether to retry from scratch — there is no automatic restart on commit.
func (m *Manager) Commit(client string) error {
	tx, ok := m.table.Lookup(client)
	if !ok {
		return ErrNoActiveTransaction
	}
	if tx.Status != StatusActive {
		return ErrNotActive
	}

	tx.Status = StatusPreparing

	for res := range tx.ReadSet {
		if !m.controller.ValidateRead(tx.TID, tx.StartTS, res) {
			m.abort(client, tx)
			return ErrValidationFailed
		}
	}
	for res := range tx.WriteSet {
		if !m.controller.ValidateWrite(tx.TID, tx.StartTS, res) {
			m.abort(client, tx)
			return ErrValidationFailed
		}
	}

	for res := range tx.WriteSet {
		m.versions.Commit(res, tx.TID)
	}

	tx.CommitTS = m.controller.NextTimestamp()
	tx.Status = StatusCommitted
	tx.UndoLog = nil
	m.controller.RemoveWaitEdges(tx.TID)
	m.table.RemoveClient(client)

	m.log("COMMIT", tx.TID, map[string]any{"client": client, "ops": len(tx.Ops), "commit_ts": tx.CommitTS})

	if oldest, ok := m.table.OldestActiveStartTS(); ok {
		m.versions.Compact(oldest)
	}
	return nil
}

// Rollback aborts client's transaction, undoing every mutation applied so
// far. Idempotent: returns nil if client has no active transaction.
func (m *Manager) Rollback(client string) error {
	tx, ok := m.table.Lookup(client)
	if !ok {
		return nil
	}
	m.abort(client, tx)
	return nil
}

// abort performs the shared rollback mechanics used by Rollback, Commit's
// validation-failure path, and internal restart.
func (m *Manager) abort(client string, tx *Transaction) {
	undoErrs := rollback(m.store, tx)
	for res := range tx.WriteSet {
		m.versions.Abort(res, tx.TID)
	}

	tx.Status = StatusAborted
	m.controller.RemoveWaitEdges(tx.TID)
	m.table.RemoveClient(client)

	details := map[string]any{"client": client, "ops": len(tx.Ops)}
	if len(undoErrs) > 0 {
		// Rollback errors are logged and swallowed: the transaction is
		// already lost, and the store's partial mutations are undone
		// best-effort.
		msgs := make([]string, len(undoErrs))
		for i, e := range undoErrs {
			msgs[i] = e.Error()
		}
		details["undo_errors"] = msgs
		m.log("ROLLBACK_ERROR", tx.TID, details)
	}
	m.log("ROLLBACK", tx.TID, details)
}

// restart is the internal-restart mechanism: roll back the current
// attempt, then immediately allocate a new tid under the same client so
// the retry is positioned later in timestamp order.
func (m *Manager) restart(client string, tx *Transaction, reason string) {
	m.abort(client, tx)

	newTID, err := m.Begin(client)
	details := map[string]any{"old_tid": tx.TID, "reason": reason}
	if err == nil {
		details["new_tid"] = newTID
	}
	m.log("RESTART", tx.TID, details)
}

// Statistics reports the counters exposed by the Manager API.
type Statistics struct {
	Active             int
	Total              int
	LogEntries         int
	VersionedResources int
}

// Statistics returns a snapshot of manager-wide counters.
func (m *Manager) Statistics() Statistics {
	return Statistics{
		Active:             m.table.ActiveCount(),
		Total:              m.table.Count(),
		LogEntries:         int(m.logEntries.Load()),
		VersionedResources: m.versions.ResourceCount(),
	}
}

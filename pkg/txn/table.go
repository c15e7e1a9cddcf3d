package txn

import "sync"

// Table is the process-wide transaction table: tid -> *Transaction, plus a
// client -> tid index for active transactions. Both indices share one
// coarse mutex; this controller is not performance-tuned, correctness
// dominates.
type Table struct {
	mu      sync.Mutex
	byTID   map[string]*Transaction
	byClient map[string]string
}

// NewTable creates an empty transaction table.
func NewTable() *Table {
	return &Table{
		byTID:    make(map[string]*Transaction),
		byClient: make(map[string]string),
	}
}

// Insert registers a new transaction and indexes it under client. Returns
// ErrAlreadyActive if client already maps to a live transaction — the
// client -> tid mapping is injective.
func (t *Table) Insert(client string, tx *Transaction) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.byClient[client]; ok {
		return ErrAlreadyActive
	}
	t.byTID[tx.TID] = tx
	t.byClient[client] = tx.TID
	return nil
}

// Lookup resolves a client token to its active transaction.
func (t *Table) Lookup(client string) (*Transaction, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tid, ok := t.byClient[client]
	if !ok {
		return nil, false
	}
	return t.byTID[tid], true
}

// Get resolves a tid to its transaction record, active or terminal.
func (t *Table) Get(tid string) (*Transaction, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tx, ok := t.byTID[tid]
	return tx, ok
}

// RemoveClient drops the client -> tid index entry, used when a
// transaction reaches a terminal state. The tid -> Transaction record is
// kept so the deadlock detector and statistics can still see it; callers
// that want to fully forget a terminal transaction use Forget.
func (t *Table) RemoveClient(client string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.byClient, client)
}

// Forget removes a terminal transaction from the table entirely.
func (t *Table) Forget(tid string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.byTID, tid)
}

// Active returns every transaction still in ACTIVE or PREPARING status.
func (t *Table) Active() []*Transaction {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*Transaction, 0, len(t.byTID))
	for _, tx := range t.byTID {
		if tx.Status == StatusActive || tx.Status == StatusPreparing {
			out = append(out, tx)
		}
	}
	return out
}

// All returns every transaction this table still remembers, active or
// terminal. The concurrency controller validates against this full set,
// not just the active one: a committed transaction's read/write sets
// stay significant forever, because its write_ts is now part of
// permanent history that a slower, older transaction must not be allowed
// to overwrite or invalidate.
func (t *Table) All() []*Transaction {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*Transaction, 0, len(t.byTID))
	for _, tx := range t.byTID {
		out = append(out, tx)
	}
	return out
}

// OldestActiveStartTS returns the smallest start_ts among active
// transactions, or ok=false if none are active. Used by the version log's
// GC policy.
func (t *Table) OldestActiveStartTS() (uint64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var oldest uint64
	found := false
	for _, tx := range t.byTID {
		if tx.Status != StatusActive && tx.Status != StatusPreparing {
			continue
		}
		if !found || tx.StartTS < oldest {
			oldest = tx.StartTS
			found = true
		}
	}
	return oldest, found
}

// Count returns the total number of transactions ever recorded (active or
// terminal but not yet forgotten).
func (t *Table) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byTID)
}

// ActiveCount returns the number of transactions in ACTIVE or PREPARING
// status.
func (t *Table) ActiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, tx := range t.byTID {
		if tx.Status == StatusActive || tx.Status == StatusPreparing {
			n++
		}
	}
	return n
}

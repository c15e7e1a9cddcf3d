package txn

import "fmt"

// OpType is the kind of operation executed against a resource.
type OpType uint8

const (
	OpSelect OpType = iota + 1
	OpInsert
	OpUpdate
	OpDelete
)

func (t OpType) String() string {
	switch t {
	case OpSelect:
		return "SELECT"
	case OpInsert:
		return "INSERT"
	case OpUpdate:
		return "UPDATE"
	case OpDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

func (t OpType) isMutating() bool {
	return t == OpInsert || t == OpUpdate || t == OpDelete
}

// Status is the lifecycle state of a transaction.
type Status uint8

const (
	StatusActive Status = iota + 1
	StatusPreparing
	StatusCommitted
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "ACTIVE"
	case StatusPreparing:
		return "PREPARING"
	case StatusCommitted:
		return "COMMITTED"
	case StatusAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// ResourceID names one row, or a whole table when Key is the wildcard "*".
// A resource is uniquely identified by (database, table, primary key).
type ResourceID struct {
	Database string
	Table    string
	Key      string
}

// WildcardKey denotes a whole-table read (enumerate all rows).
const WildcardKey = "*"

func (r ResourceID) String() string {
	return fmt.Sprintf("%s.%s.%s", r.Database, r.Table, r.Key)
}

// IsTableScan reports whether this resource names a whole table rather than
// a single primary key.
func (r ResourceID) IsTableScan() bool {
	return r.Key == WildcardKey
}

// Operation is one audit/undo-ordering entry in a transaction's history.
type Operation struct {
	Seq      int
	Type     OpType
	Resource ResourceID
	Payload  map[string]any
}

// Transaction is the Transaction Table's per-tid record.
type Transaction struct {
	TID       string
	StartTS   uint64
	CommitTS  uint64
	Status    Status
	ReadSet   map[ResourceID]struct{}
	WriteSet  map[ResourceID]struct{}
	Ops       []Operation
	UndoLog   []undoEntry
	Client    string
}

func newTransaction(tid string, startTS uint64, client string) *Transaction {
	return &Transaction{
		TID:      tid,
		StartTS:  startTS,
		Status:   StatusActive,
		ReadSet:  make(map[ResourceID]struct{}),
		WriteSet: make(map[ResourceID]struct{}),
		Client:   client,
	}
}

func (t *Transaction) addOp(typ OpType, res ResourceID, payload map[string]any) {
	t.Ops = append(t.Ops, Operation{
		Seq:      len(t.Ops),
		Type:     typ,
		Resource: res,
		Payload:  payload,
	})
}

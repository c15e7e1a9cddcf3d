// Package auditlog is the one piece of transactional activity this system
// persists: an append-only, checksum-verified record of what happened.
// It never feeds back into begin/commit/rollback — durability of
// transaction state itself is out of scope, this is observability only.
//
// Framing follows the same append-only shape as a write-ahead log: a
// length-prefixed, checksummed record per event, written through a
// storage.Backend. Events are named by kind (BEGIN, COMMIT, ROLLBACK,
// RESTART, ...) rather than page-level operations, since there is no
// buffer pool here to replay against.
package auditlog

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/crypto/blake2b"

	"github.com/vaultdb/vaultdb/pkg/storage"
)

// ErrCorrupted is returned when a record's stored checksum does not match
// its contents.
var ErrCorrupted = errors.New("auditlog: record checksum mismatch")

// Event is one entry in the log: a transaction manager action together
// with whatever details the caller thought worth recording.
type Event struct {
	Seq     uint64
	Kind    string
	TID     string
	Details map[string]any
}

// Options configures a Log.
type Options struct {
	// Backend is where records are appended. Defaults to an in-memory
	// backend; callers that want a file on disk pass storage.OpenDisk's
	// result.
	Backend storage.Backend
}

func (o Options) backend() storage.Backend {
	if o.Backend != nil {
		return o.Backend
	}
	return storage.NewMemory()
}

// Log is an append-only, checksummed record of every BEGIN, EXECUTE,
// COMMIT, ROLLBACK, RESTART and DEADLOCK the transaction manager reports
// through the txn.Logger interface.
type Log struct {
	mu      sync.Mutex
	backend storage.Backend
	offset  int64
	seq     atomic.Uint64
}

// New creates a Log over the backend named in opts (or an in-memory one).
// New records are appended after whatever the backend already holds.
func New(opts Options) *Log {
	b := opts.backend()
	return &Log{backend: b, offset: b.Size()}
}

// Log implements txn.Logger: it appends one record per call and never
// returns an error to the caller. Observability must not perturb the
// operation it observes.
func (l *Log) Log(kind, tid string, details map[string]any) {
	_ = l.append(Event{
		Seq:     l.seq.Add(1),
		Kind:    kind,
		TID:     tid,
		Details: details,
	})
}

func (l *Log) append(ev Event) error {
	payload, err := msgpack.Marshal(ev)
	if err != nil {
		return fmt.Errorf("auditlog: encode event: %w", err)
	}

	sum := blake2b.Sum256(payload)

	// record framing: [length:4][checksum:32][payload:length]
	header := make([]byte, 4+len(sum))
	binary.LittleEndian.PutUint32(header[0:4], uint32(len(payload)))
	copy(header[4:], sum[:])

	l.mu.Lock()
	defer l.mu.Unlock()

	n, err := l.backend.WriteAt(header, l.offset)
	if err != nil {
		return fmt.Errorf("auditlog: write header: %w", err)
	}
	l.offset += int64(n)

	n, err = l.backend.WriteAt(payload, l.offset)
	if err != nil {
		return fmt.Errorf("auditlog: write payload: %w", err)
	}
	l.offset += int64(n)

	return l.backend.Sync()
}

// Replay reads every event currently in the log, in append order,
// verifying each checksum.
func (l *Log) Replay() ([]Event, error) {
	l.mu.Lock()
	size := l.backend.Size()
	l.mu.Unlock()

	events := make([]Event, 0)
	var offset int64
	for offset < size {
		header := make([]byte, 4+blake2b.Size256)
		if _, err := l.backend.ReadAt(header, offset); err != nil {
			return nil, fmt.Errorf("auditlog: read header: %w", err)
		}
		offset += int64(len(header))

		length := binary.LittleEndian.Uint32(header[0:4])
		wantSum := header[4:]

		payload := make([]byte, length)
		if _, err := l.backend.ReadAt(payload, offset); err != nil {
			return nil, fmt.Errorf("auditlog: read payload: %w", err)
		}
		offset += int64(length)

		gotSum := blake2b.Sum256(payload)
		if !equal(gotSum[:], wantSum) {
			return nil, ErrCorrupted
		}

		var ev Event
		if err := msgpack.Unmarshal(payload, &ev); err != nil {
			return nil, fmt.Errorf("auditlog: decode event: %w", err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// Reset discards every record written so far, truncating the backend
// back to empty. Intended for callers that have just durably persisted
// a snapshot of the state the log was recording and no longer need the
// history behind it (a demo resetting between runs, a test starting
// clean without reopening the backend).
func (l *Log) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.backend.Truncate(0); err != nil {
		return fmt.Errorf("auditlog: truncate: %w", err)
	}
	l.offset = 0
	l.seq.Store(0)
	return nil
}

// Close closes the underlying backend.
func (l *Log) Close() error {
	return l.backend.Close()
}

func equal(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

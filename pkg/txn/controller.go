package txn

import (
	"sync"
	"time"
)

// timestampEpsilon is the minimum increment between consecutive
// timestamps; it keeps the allocator monotonic even when two calls land on
// the same wall-clock tick, and across small amounts of clock skew.
const timestampEpsilon = 1

// Controller is the timestamp-ordering concurrency controller: it issues
// monotonically increasing timestamps, runs the read/write validation
// predicates, and owns the wait-for graph and cycle detection.
type Controller struct {
	table *Table

	tsMu       sync.Mutex
	lastIssued uint64

	wfMu     sync.Mutex
	waitsFor map[string]map[string]struct{} // tid -> set<tid> it waits for
}

// NewController creates a controller bound to the given transaction table.
func NewController(table *Table) *Controller {
	return &Controller{
		table:    table,
		waitsFor: make(map[string]map[string]struct{}),
	}
}

// NextTimestamp allocates the next start_ts: max(last_issued + epsilon,
// wall_now), serialized so timestamps stay unique and totally ordered.
func (c *Controller) NextTimestamp() uint64 {
	c.tsMu.Lock()
	defer c.tsMu.Unlock()

	now := uint64(time.Now().UnixNano())
	next := c.lastIssued + timestampEpsilon
	if now > next {
		next = now
	}
	c.lastIssued = next
	return next
}

// ValidateRead fails iff any younger transaction — active or already
// committed — has res in its write set: T reading res at T.start_ts would
// otherwise be serialized after a writer that ought to come later. A
// committed transaction's write set is permanent history, so it is
// checked alongside the active set, not instead of it.
func (c *Controller) ValidateRead(tid string, startTS uint64, res ResourceID) bool {
	for _, other := range c.table.All() {
		if other.TID == tid || other.StartTS <= startTS || other.Status == StatusAborted {
			continue
		}
		if _, wrote := other.WriteSet[res]; wrote {
			return false
		}
	}
	return true
}

// ValidateWrite fails iff any younger transaction — active or already
// committed — has res in its read set or write set: T writing res would
// either invalidate a later read or be overwritten by a later write.
func (c *Controller) ValidateWrite(tid string, startTS uint64, res ResourceID) bool {
	for _, other := range c.table.All() {
		if other.TID == tid || other.StartTS <= startTS || other.Status == StatusAborted {
			continue
		}
		if _, read := other.ReadSet[res]; read {
			return false
		}
		if _, wrote := other.WriteSet[res]; wrote {
			return false
		}
	}
	return true
}

// AddWaitEdge records that waiter is blocked on holder. The baseline
// policy is restart-on-conflict, so the manager never actually calls this
// in normal flow — it exists so a future lock-based extension has
// somewhere to record edges, and so the cycle detector below has a
// defined contract to test against.
func (c *Controller) AddWaitEdge(waiter, holder string) {
	c.wfMu.Lock()
	defer c.wfMu.Unlock()

	if _, ok := c.waitsFor[waiter]; !ok {
		c.waitsFor[waiter] = make(map[string]struct{})
	}
	c.waitsFor[waiter][holder] = struct{}{}
}

// RemoveWaitEdges clears every edge touching tid, both outgoing and
// incoming, called when a transaction reaches a terminal state.
func (c *Controller) RemoveWaitEdges(tid string) {
	c.wfMu.Lock()
	defer c.wfMu.Unlock()

	delete(c.waitsFor, tid)
	for _, edges := range c.waitsFor {
		delete(edges, tid)
	}
}

// DetectDeadlock runs DFS cycle detection over the wait-for graph. If a
// cycle exists, it returns the tid with the largest start_ts among the
// cycle's members: the youngest transaction along the cycle is the
// victim, minimizing wasted work already done by older participants.
func (c *Controller) DetectDeadlock() (string, bool) {
	c.wfMu.Lock()
	graph := make(map[string][]string, len(c.waitsFor))
	for tid, edges := range c.waitsFor {
		for to := range edges {
			graph[tid] = append(graph[tid], to)
		}
	}
	c.wfMu.Unlock()

	visited := make(map[string]bool)

	var dfs func(tid string, stack []string) []string
	dfs = func(tid string, stack []string) []string {
		for i, s := range stack {
			if s == tid {
				return stack[i:] // cycle members
			}
		}
		if visited[tid] {
			return nil
		}
		visited[tid] = true
		stack = append(stack, tid)

		for _, next := range graph[tid] {
			if cycle := dfs(next, stack); cycle != nil {
				return cycle
			}
		}
		return nil
	}

	var cycle []string
	for tid := range graph {
		if visited[tid] {
			continue
		}
		if found := dfs(tid, nil); found != nil {
			cycle = found
			break
		}
	}
	if cycle == nil {
		return "", false
	}

	victim := cycle[0]
	var victimTS uint64
	if tx, ok := c.table.Get(victim); ok {
		victimTS = tx.StartTS
	}
	for _, tid := range cycle[1:] {
		tx, ok := c.table.Get(tid)
		if !ok {
			continue
		}
		if tx.StartTS > victimTS {
			victim, victimTS = tid, tx.StartTS
		}
	}
	return victim, true
}

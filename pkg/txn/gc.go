package txn

import (
	"context"
	"math"
	"time"
)

// RunGC periodically compacts the version log against the oldest active
// transaction's start_ts, or, when no transaction is active, down to each
// resource's youngest committed version. Compaction also runs
// synchronously after a commit that leaves another transaction active
// (see Manager.Commit); this loop covers long-idle managers where no
// commits are happening to trigger it, and mirrors the
// background-collector shape used elsewhere in the retrieved examples
// for multiversion stores. Returns when ctx is done.
func (m *Manager) RunGC(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			oldest, ok := m.table.OldestActiveStartTS()
			if !ok {
				oldest = math.MaxUint64
			}
			m.versions.Compact(oldest)
		}
	}
}

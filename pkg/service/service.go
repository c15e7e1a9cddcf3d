// Package service is the business layer on top of pkg/txn: multi-step
// operations (a transfer, an order) composed as one transaction against
// VaultDB's Manager.Begin/Execute/Commit/Rollback.
package service

import (
	"errors"
	"fmt"

	"github.com/vaultdb/vaultdb/pkg/txn"
)

// ErrBusiness wraps every business-rule error this package returns.
var ErrBusiness = errors.New("service: business rule violated")

func businessErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBusiness, fmt.Sprintf(format, args...))
}

// WithRetry runs fn inside a fresh transaction, retrying the whole
// operation when the manager reports an internal restart or a deadlock
// victim selection, or when Commit fails validation. The caller, not the
// manager, decides whether and how many times to retry. fn takes no
// arguments and should call the manager's Execute using client as its
// transaction handle; WithRetry owns Begin/Commit/Rollback around it.
func WithRetry(m *txn.Manager, client string, maxRetries int, fn func() error) error {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	needsBegin := true
	for attempt := 0; attempt < maxRetries; attempt++ {
		if needsBegin {
			if _, err := m.Begin(client); err != nil {
				return fmt.Errorf("service: begin: %w", err)
			}
		}

		err := fn()
		if err == nil {
			if err := m.Commit(client); err != nil {
				if errors.Is(err, txn.ErrValidationFailed) {
					lastErr = err
					needsBegin = true
					continue
				}
				return fmt.Errorf("service: commit: %w", err)
			}
			return nil
		}

		if errors.Is(err, txn.ErrRestartRequired) || errors.Is(err, txn.ErrDeadlock) {
			// Manager.Execute already performed the internal restart: the
			// client has a fresh active transaction under a new tid, so
			// the next attempt runs fn again without a new Begin.
			lastErr = err
			needsBegin = false
			continue
		}

		_ = m.Rollback(client)
		return err
	}

	_ = m.Rollback(client)
	return fmt.Errorf("service: exhausted %d attempts, last error %v: %w", maxRetries, lastErr, txn.ErrBudgetExhausted)
}

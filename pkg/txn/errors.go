package txn

import "errors"

// Sentinel errors surfaced to callers of the Transaction Manager facade.
// Propagation policy: validation failures trigger automatic internal
// rollback; store errors leave the transaction ACTIVE so the caller can
// decide whether to retry the operation or abandon the transaction.
var (
	ErrNoActiveTransaction = errors.New("txn: no active transaction for client")
	ErrAlreadyActive       = errors.New("txn: client already has an active transaction")
	ErrNotActive           = errors.New("txn: transaction is not active")
	ErrRestartRequired     = errors.New("txn: restart required, transaction rolled back and reissued")
	ErrDeadlock            = errors.New("txn: deadlock detected, transaction rolled back and reissued")
	ErrValidationFailed    = errors.New("txn: commit-time validation failed")
	ErrStore               = errors.New("txn: resource store error")
	ErrBudgetExhausted     = errors.New("txn: retry budget exhausted")
)

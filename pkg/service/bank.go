package service

import (
	"github.com/vaultdb/vaultdb/pkg/entity"
	"github.com/vaultdb/vaultdb/pkg/txn"
)

// FinancialDatabase is the database name every BankService operation
// targets.
const FinancialDatabase = "financial"

const accountsTable = "accounts"
const transactionsTable = "transactions"

// BankService implements money movement against the financial database:
// read both accounts, validate funds, debit, credit, record the ledger
// entry, all inside one transaction.
type BankService struct {
	manager *txn.Manager
}

// NewBankService wraps a transaction manager for bank operations.
func NewBankService(m *txn.Manager) *BankService {
	return &BankService{manager: m}
}

// Transfer moves amount from one account to another, recording a ledger
// transaction, and retries internally up to maxRetries times if the
// transaction manager requests a restart.
func (b *BankService) Transfer(client, fromAccountID, toAccountID string, amount float64, description string, maxRetries int) error {
	return WithRetry(b.manager, client, maxRetries, func() error {
		fromResult, err := b.manager.Execute(client, txn.OpSelect, FinancialDatabase, accountsTable, fromAccountID, nil)
		if err != nil {
			return err
		}
		if !fromResult.Found {
			return businessErr("source account %s does not exist", fromAccountID)
		}
		fromAccount := entity.AccountFromMap(fromResult.Row)
		if fromAccount.Balance < amount {
			return businessErr("insufficient funds in account %s", fromAccountID)
		}

		toResult, err := b.manager.Execute(client, txn.OpSelect, FinancialDatabase, accountsTable, toAccountID, nil)
		if err != nil {
			return err
		}
		if !toResult.Found {
			return businessErr("destination account %s does not exist", toAccountID)
		}
		toAccount := entity.AccountFromMap(toResult.Row)

		if _, err := b.manager.Execute(client, txn.OpUpdate, FinancialDatabase, accountsTable, fromAccountID,
			map[string]any{"balance": fromAccount.Balance - amount}); err != nil {
			return err
		}
		if _, err := b.manager.Execute(client, txn.OpUpdate, FinancialDatabase, accountsTable, toAccountID,
			map[string]any{"balance": toAccount.Balance + amount}); err != nil {
			return err
		}

		ledger := entity.LedgerTransaction{
			FromAccountID: fromAccountID,
			ToAccountID:   toAccountID,
			Amount:        amount,
			Kind:          "transfer",
			Description:   description,
			Status:        "completed",
		}
		_, err = b.manager.Execute(client, txn.OpInsert, FinancialDatabase, transactionsTable, "", ledger.AsMap())
		return err
	})
}

// Deposit credits an account and records the ledger entry.
func (b *BankService) Deposit(client, accountID string, amount float64, description string, maxRetries int) error {
	return WithRetry(b.manager, client, maxRetries, func() error {
		result, err := b.manager.Execute(client, txn.OpSelect, FinancialDatabase, accountsTable, accountID, nil)
		if err != nil {
			return err
		}
		if !result.Found {
			return businessErr("account %s does not exist", accountID)
		}
		account := entity.AccountFromMap(result.Row)

		if _, err := b.manager.Execute(client, txn.OpUpdate, FinancialDatabase, accountsTable, accountID,
			map[string]any{"balance": account.Balance + amount}); err != nil {
			return err
		}

		ledger := entity.LedgerTransaction{
			ToAccountID: accountID,
			Amount:      amount,
			Kind:        "deposit",
			Description: description,
			Status:      "completed",
		}
		_, err = b.manager.Execute(client, txn.OpInsert, FinancialDatabase, transactionsTable, "", ledger.AsMap())
		return err
	})
}

// Withdraw debits an account after checking funds, and records the
// ledger entry.
func (b *BankService) Withdraw(client, accountID string, amount float64, description string, maxRetries int) error {
	return WithRetry(b.manager, client, maxRetries, func() error {
		result, err := b.manager.Execute(client, txn.OpSelect, FinancialDatabase, accountsTable, accountID, nil)
		if err != nil {
			return err
		}
		if !result.Found {
			return businessErr("account %s does not exist", accountID)
		}
		account := entity.AccountFromMap(result.Row)
		if account.Balance < amount {
			return businessErr("insufficient funds in account %s", accountID)
		}

		if _, err := b.manager.Execute(client, txn.OpUpdate, FinancialDatabase, accountsTable, accountID,
			map[string]any{"balance": account.Balance - amount}); err != nil {
			return err
		}

		ledger := entity.LedgerTransaction{
			FromAccountID: accountID,
			Amount:        amount,
			Kind:          "withdrawal",
			Description:   description,
			Status:        "completed",
		}
		_, err = b.manager.Execute(client, txn.OpInsert, FinancialDatabase, transactionsTable, "", ledger.AsMap())
		return err
	})
}

// Balance reads a single account's current balance outside of any
// caller-managed transaction (its own single-operation transaction).
func (b *BankService) Balance(client, accountID string) (float64, error) {
	var balance float64
	err := WithRetry(b.manager, client, 3, func() error {
		result, err := b.manager.Execute(client, txn.OpSelect, FinancialDatabase, accountsTable, accountID, nil)
		if err != nil {
			return err
		}
		if !result.Found {
			return businessErr("account %s does not exist", accountID)
		}
		balance = entity.AccountFromMap(result.Row).Balance
		return nil
	})
	return balance, err
}

package repositories

import (
	"context"

	"github.com/SscSPs/mobile_money_core/internal/core/domain"
)

// LedgerReader defines read operations over the append-only ledger.
type LedgerReader interface {
	// NetBalance returns sum(CREDIT) - sum(DEBIT) for the account.
	NetBalance(ctx context.Context, ref domain.AccountRef) (domain.Money, error)

	// FindEntriesByTransaction returns entries ordered by (createdAt, id).
	FindEntriesByTransaction(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error)

	// FindTransactionByID returns ErrNotFound when absent.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ExistsReversalFor reports whether a REVERSAL already points at the transaction.
	ExistsReversalFor(ctx context.Context, transactionID string) (bool, error)

	// AgentCashExposure returns sum(DEBIT) - sum(CREDIT) over every AGENT_CASH_CLEARING account.
	AgentCashExposure(ctx context.Context) (domain.Money, error)

	// ListEntriesByAccount pages through an account's entries ordered by (createdAt, id).
	ListEntriesByAccount(ctx context.Context, ref domain.AccountRef, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)
}

// LedgerWriter appends transactions.
type LedgerWriter interface {
	// SaveTransaction persists the transaction row and its entries as one batch.
	SaveTransaction(ctx context.Context, txn domain.Transaction, entries []domain.LedgerEntry) error

	// LockTransaction holds an exclusive lock on a transaction row until the unit of work ends.
	LockTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)
}

type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}

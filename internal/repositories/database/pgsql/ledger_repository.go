package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/mobile_money_core/internal/apperrors"
	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	portsrepo "github.com/SscSPs/mobile_money_core/internal/core/ports/repositories"
	"github.com/SscSPs/mobile_money_core/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool) *PgxLedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

const (
	entryColumns       = `entry_id, transaction_id, account_type, owner_ref, entry_type, amount, leg, created_at`
	transactionColumns = `transaction_id, transaction_type, amount, original_transaction_id, initiated_by_type, initiated_by, created_at`
)

func scanEntry(row pgx.Row) (domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	err := row.Scan(
		&e.EntryID,
		&e.TransactionID,
		&e.Account.Type,
		&e.Account.OwnerRef,
		&e.EntryType,
		&e.Amount,
		&e.Leg,
		&e.CreatedAt,
	)
	return e, err
}

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(
		&t.TransactionID,
		&t.Type,
		&t.Amount,
		&t.OriginalTransactionID,
		&t.InitiatedByType,
		&t.InitiatedBy,
		&t.CreatedAt,
	)
	return t, err
}

func collectEntries(rows pgx.Rows) ([]domain.LedgerEntry, error) {
	defer rows.Close()
	var entries []domain.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PgxLedgerRepository) NetBalance(ctx context.Context, ref domain.AccountRef) (domain.Money, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN entry_type = 'CREDIT' THEN amount ELSE -amount END), 0)
		FROM ledger_entries
		WHERE account_type = $1 AND owner_ref = $2;
	`
	var balance domain.Money
	if err := r.db(ctx).QueryRow(ctx, query, ref.Type, ref.OwnerRef).Scan(&balance); err != nil {
		return domain.Zero, mapPgError(err, "failed to compute balance of "+ref.String())
	}
	return balance, nil
}

func (r *PgxLedgerRepository) AgentCashExposure(ctx context.Context) (domain.Money, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN entry_type = 'DEBIT' THEN amount ELSE -amount END), 0)
		FROM ledger_entries
		WHERE account_type = $1;
	`
	var exposure domain.Money
	if err := r.db(ctx).QueryRow(ctx, query, domain.AccountAgentCashClearing).Scan(&exposure); err != nil {
		return domain.Zero, mapPgError(err, "failed to compute agent cash exposure")
	}
	return exposure, nil
}

func (r *PgxLedgerRepository) FindEntriesByTransaction(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE transaction_id = $1 ORDER BY created_at, entry_id;`
	rows, err := r.db(ctx).Query(ctx, query, transactionID)
	if err != nil {
		return nil, mapPgError(err, "failed to query entries of transaction "+transactionID)
	}
	entries, err := collectEntries(rows)
	if err != nil {
		return nil, mapPgError(err, "failed to scan entries of transaction "+transactionID)
	}
	return entries, nil
}

func (r *PgxLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	t, err := scanTransaction(r.db(ctx).QueryRow(ctx, query, transactionID))
	if err != nil {
		return nil, mapPgError(err, "failed to find transaction "+transactionID)
	}
	return &t, nil
}

func (r *PgxLedgerRepository) ExistsReversalFor(ctx context.Context, transactionID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM transactions WHERE original_transaction_id = $1);`
	var exists bool
	if err := r.db(ctx).QueryRow(ctx, query, transactionID).Scan(&exists); err != nil {
		return false, mapPgError(err, "failed to check reversal of "+transactionID)
	}
	return exists, nil
}

// ListEntriesByAccount uses keyset pagination on (created_at, entry_id), fetching one
// extra row to decide whether another page exists.
func (r *PgxLedgerRepository) ListEntriesByAccount(ctx context.Context, ref domain.AccountRef, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	var (
		cursorAt *time.Time
		cursorID string
	)
	if nextToken != nil && *nextToken != "" {
		at, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.Validationf("%v", err)
		}
		cursorAt, cursorID = &at, id
	}

	query := `
		SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE account_type = $1 AND owner_ref = $2
		  AND ($3::timestamptz IS NULL OR (created_at, entry_id) > ($3, $4))
		ORDER BY created_at, entry_id
		LIMIT $5;
	`
	rows, err := r.db(ctx).Query(ctx, query, ref.Type, ref.OwnerRef, cursorAt, cursorID, limit+1)
	if err != nil {
		return nil, nil, mapPgError(err, "failed to list entries of "+ref.String())
	}
	entries, err := collectEntries(rows)
	if err != nil {
		return nil, nil, mapPgError(err, "failed to scan entries of "+ref.String())
	}

	if len(entries) <= limit {
		return entries, nil, nil
	}
	page := entries[:limit]
	last := page[len(page)-1]
	token := pagination.EncodeToken(last.CreatedAt, last.EntryID)
	return page, &token, nil
}

// SaveTransaction inserts the transaction and its entries in one batch.
func (r *PgxLedgerRepository) SaveTransaction(ctx context.Context, txn domain.Transaction, entries []domain.LedgerEntry) error {
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7);`,
		txn.TransactionID,
		txn.Type,
		txn.Amount,
		txn.OriginalTransactionID,
		txn.InitiatedByType,
		txn.InitiatedBy,
		txn.CreatedAt,
	)
	for _, e := range entries {
		batch.Queue(`
			INSERT INTO ledger_entries (`+entryColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
			e.EntryID,
			e.TransactionID,
			e.Account.Type,
			e.Account.OwnerRef,
			e.EntryType,
			e.Amount,
			e.Leg,
			e.CreatedAt,
		)
	}

	br := r.db(ctx).SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return mapPgError(err, fmt.Sprintf("failed to save transaction %s (statement %d)", txn.TransactionID, i))
		}
	}
	if err := br.Close(); err != nil {
		return mapPgError(err, "failed to save transaction "+txn.TransactionID)
	}
	return nil
}

func (r *PgxLedgerRepository) LockTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1 FOR UPDATE;`
	t, err := scanTransaction(r.db(ctx).QueryRow(ctx, query, transactionID))
	if err != nil {
		return nil, mapPgError(err, "failed to lock transaction "+transactionID)
	}
	return &t, nil
}

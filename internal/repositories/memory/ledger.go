package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/mobile_money_core/internal/apperrors"
	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	"github.com/SscSPs/mobile_money_core/internal/utils/pagination"
)

func (s *Store) NetBalance(ctx context.Context, ref domain.AccountRef) (domain.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	balance := domain.Zero
	key := ref.Key()
	for _, e := range s.entries {
		if e.Account.Key() == key {
			balance = balance.Add(e.SignedAmount())
		}
	}
	return balance, nil
}

func (s *Store) AgentCashExposure(ctx context.Context) (domain.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exposure := domain.Zero
	for _, e := range s.entries {
		if e.Account.Type == domain.AccountAgentCashClearing {
			exposure = exposure.Sub(e.SignedAmount())
		}
	}
	return exposure, nil
}

func sortEntries(entries []domain.LedgerEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].EntryID < entries[j].EntryID
	})
}

func (s *Store) FindEntriesByTransaction(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.LedgerEntry
	for _, e := range s.entries {
		if e.TransactionID == transactionID {
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out, nil
}

func (s *Store) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.transactions[transactionID]
	if !ok {
		return nil, notFound("transaction %s", transactionID)
	}
	return &txn, nil
}

func (s *Store) ExistsReversalFor(ctx context.Context, transactionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.reversals[transactionID]
	return ok, nil
}

func (s *Store) ListEntriesByAccount(ctx context.Context, ref domain.AccountRef, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	var (
		hasCursor bool
		cursorAt  time.Time
		cursorID  string
	)
	if nextToken != nil && *nextToken != "" {
		at, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.Validationf("%v", err)
		}
		hasCursor, cursorAt, cursorID = true, at, id
	}

	s.mu.Lock()
	var matched []domain.LedgerEntry
	key := ref.Key()
	for _, e := range s.entries {
		if e.Account.Key() != key {
			continue
		}
		if hasCursor && !pagination.After(e.CreatedAt, e.EntryID, cursorAt, cursorID) {
			continue
		}
		matched = append(matched, e)
	}
	s.mu.Unlock()

	sortEntries(matched)
	if len(matched) <= limit {
		return matched, nil, nil
	}
	page := matched[:limit]
	last := page[len(page)-1]
	token := pagination.EncodeToken(last.CreatedAt, last.EntryID)
	return page, &token, nil
}

func (s *Store) SaveTransaction(ctx context.Context, txn domain.Transaction, entries []domain.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[txn.TransactionID]; ok {
		return duplicate("transaction %s", txn.TransactionID)
	}
	if txn.OriginalTransactionID != nil {
		if _, ok := s.reversals[*txn.OriginalTransactionID]; ok {
			return duplicate("reversal of %s", *txn.OriginalTransactionID)
		}
		original := *txn.OriginalTransactionID
		s.reversals[original] = txn.TransactionID
		onRollback(ctx, func() { delete(s.reversals, original) })
	}

	s.transactions[txn.TransactionID] = txn
	s.entries = append(s.entries, entries...)
	onRollback(ctx, func() {
		delete(s.transactions, txn.TransactionID)
		kept := s.entries[:0]
		for _, e := range s.entries {
			if e.TransactionID != txn.TransactionID {
				kept = append(kept, e)
			}
		}
		s.entries = kept
	})
	return nil
}

func (s *Store) LockTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	if _, err := s.FindTransactionByID(ctx, transactionID); err != nil {
		return nil, err
	}
	if err := s.acquire(ctx, "txn:"+transactionID); err != nil {
		return nil, err
	}
	return s.FindTransactionByID(ctx, transactionID)
}

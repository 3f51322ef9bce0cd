package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/SscSPs/mobile_money_core/internal/apperrors"
	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	portsrepo "github.com/SscSPs/mobile_money_core/internal/core/ports/repositories"
)

var (
	// ErrUnbalancedBatch is a programming-contract violation, never a business error.
	ErrUnbalancedBatch = errors.New("ledger batch debits and credits do not balance")
	ErrBatchMinEntries = errors.New("ledger batch must have at least two entries")
)

// LedgerService is the posting engine: it appends balanced entry batches and
// answers balance queries. Callers lock every account they decide on first.
type LedgerService struct {
	BaseService
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	profileRepo portsrepo.AccountProfileRepositoryFacade
}

func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade, profileRepo portsrepo.AccountProfileRepositoryFacade) *LedgerService {
	return &LedgerService{ledgerRepo: ledgerRepo, profileRepo: profileRepo}
}

// Post validates the batch and persists the transaction with its entries atomically.
func (s *LedgerService) Post(ctx context.Context, txn domain.Transaction, entries []domain.LedgerEntry) ([]domain.LedgerEntry, error) {
	if err := validateBatch(entries); err != nil {
		s.LogError(ctx, err, "Rejected ledger batch", "transaction_id", txn.TransactionID, "transaction_type", string(txn.Type))
		return nil, apperrors.Technical("ledger batch rejected", err)
	}

	stamped := make([]domain.LedgerEntry, len(entries))
	for i, e := range entries {
		e.EntryID = newID()
		e.TransactionID = txn.TransactionID
		e.CreatedAt = txn.CreatedAt
		stamped[i] = e
	}

	if err := s.ledgerRepo.SaveTransaction(ctx, txn, stamped); err != nil {
		return nil, err
	}
	s.LogDebug(ctx, "Transaction posted", "transaction_id", txn.TransactionID, "entries", len(stamped))
	return stamped, nil
}

// validateBatch enforces the posting contract: two or more strictly positive
// entries with at most two fractional digits, debits equal to credits.
func validateBatch(entries []domain.LedgerEntry) error {
	if len(entries) < 2 {
		return ErrBatchMinEntries
	}
	for i, e := range entries {
		if !e.Amount.IsPositive() {
			return fmt.Errorf("entry %d on %s: amount must be positive", i, e.Account)
		}
		if !e.Amount.Decimal().Equal(e.Amount.Decimal().Round(domain.MoneyScale)) {
			return fmt.Errorf("entry %d on %s: amount exceeds money scale", i, e.Account)
		}
		if e.EntryType != domain.Debit && e.EntryType != domain.Credit {
			return fmt.Errorf("entry %d on %s: unknown entry type %q", i, e.Account, e.EntryType)
		}
		if err := e.Account.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	debits, credits := domain.EntryTotals(entries)
	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits %s, credits %s", ErrUnbalancedBatch, debits, credits)
	}
	return nil
}

// Lock acquires the profile row locks for refs in canonical order. Any batch that
// touches an agent cash account first takes the cash exposure lock, so exposure
// reads under that lock never race a concurrent cash movement. Commands that
// move no agent cash never wait on it.
func (s *LedgerService) Lock(ctx context.Context, refs ...domain.AccountRef) (map[string]domain.AccountProfile, error) {
	if touchesAgentCash(refs) {
		if err := s.profileRepo.LockCashExposure(ctx); err != nil {
			return nil, err
		}
	}
	seen := make(map[string]struct{}, len(refs))
	unique := make([]domain.AccountRef, 0, len(refs))
	for _, r := range refs {
		if _, ok := seen[r.Key()]; ok {
			continue
		}
		seen[r.Key()] = struct{}{}
		unique = append(unique, r)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i].Key() < unique[j].Key() })
	return s.profileRepo.LockProfiles(ctx, unique)
}

func touchesAgentCash(refs []domain.AccountRef) bool {
	for _, r := range refs {
		if r.Type == domain.AccountAgentCashClearing {
			return true
		}
	}
	return false
}

func (s *LedgerService) NetBalance(ctx context.Context, ref domain.AccountRef) (domain.Money, error) {
	return s.ledgerRepo.NetBalance(ctx, ref)
}

func (s *LedgerService) FindByTransaction(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error) {
	return s.ledgerRepo.FindEntriesByTransaction(ctx, transactionID)
}

// History pages through an account statement ordered by (createdAt, id).
func (s *LedgerService) History(ctx context.Context, ref domain.AccountRef, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	return s.ledgerRepo.ListEntriesByAccount(ctx, ref, limit, nextToken)
}

func (s *LedgerService) AgentCashExposure(ctx context.Context) (domain.Money, error) {
	return s.ledgerRepo.AgentCashExposure(ctx)
}

// newTransaction stamps a transaction row for a command.
func (s *LedgerService) newTransaction(txnType domain.TransactionType, amount domain.Money, actor domain.Actor) domain.Transaction {
	return domain.Transaction{
		TransactionID:   newID(),
		Type:            txnType,
		Amount:          amount,
		CreatedAt:       s.Now(),
		InitiatedByType: actor.Type,
		InitiatedBy:     actor.ID,
	}
}

// posting accumulates an entry batch. Zero legs are dropped.
type posting struct {
	entries []domain.LedgerEntry
}

func (p *posting) debit(ref domain.AccountRef, amount domain.Money, leg domain.Leg) *posting {
	return p.add(ref, domain.Debit, amount, leg)
}

func (p *posting) credit(ref domain.AccountRef, amount domain.Money, leg domain.Leg) *posting {
	return p.add(ref, domain.Credit, amount, leg)
}

func (p *posting) add(ref domain.AccountRef, entryType domain.EntryType, amount domain.Money, leg domain.Leg) *posting {
	if amount.IsZero() {
		return p
	}
	p.entries = append(p.entries, domain.LedgerEntry{Account: ref, EntryType: entryType, Amount: amount, Leg: leg})
	return p
}

// cashDelta is the change in agent cash exposure a batch causes.
func cashDelta(entries []domain.LedgerEntry) domain.Money {
	delta := domain.Zero
	for _, e := range entries {
		if e.Account.Type != domain.AccountAgentCashClearing {
			continue
		}
		delta = delta.Sub(e.SignedAmount())
	}
	return delta
}

// requireActive rejects postings to accounts that are not ACTIVE. Platform singletons are exempt.
func requireActive(profiles map[string]domain.AccountProfile, refs ...domain.AccountRef) error {
	for _, ref := range refs {
		if ref.Type.IsPlatform() {
			continue
		}
		p, ok := profiles[ref.Key()]
		if !ok {
			return apperrors.NotFoundf("account %s not found", ref)
		}
		if !p.IsActive() {
			return apperrors.Forbiddenf("account %s is %s", ref, p.Status)
		}
	}
	return nil
}

// requireOpen rejects postings to CLOSED accounts; SUSPENDED accounts still accept settlement postings.
func requireOpen(profiles map[string]domain.AccountProfile, refs ...domain.AccountRef) error {
	for _, ref := range refs {
		p, ok := profiles[ref.Key()]
		if !ok {
			return apperrors.NotFoundf("account %s not found", ref)
		}
		if p.Status == domain.AccountClosed {
			return apperrors.Forbiddenf("account %s is closed", ref)
		}
	}
	return nil
}

package services

import (
	"context"
	"errors"

	"github.com/SscSPs/mobile_money_core/internal/apperrors"
	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	portsrepo "github.com/SscSPs/mobile_money_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mobile_money_core/internal/core/ports/services"
	"github.com/SscSPs/mobile_money_core/internal/dto"
)

// ReversalService compensates posted transactions.
type ReversalService struct {
	BaseService
	dispatcher *Dispatcher
	ledger     *LedgerService
	ledgerRepo portsrepo.LedgerRepositoryFacade
	guard      *CashLimitGuard
	config     *ConfigService
}

func NewReversalService(
	dispatcher *Dispatcher,
	ledger *LedgerService,
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	guard *CashLimitGuard,
	config *ConfigService,
) *ReversalService {
	return &ReversalService{
		dispatcher: dispatcher,
		ledger:     ledger,
		ledgerRepo: ledgerRepo,
		guard:      guard,
		config:     config,
	}
}

var _ portssvc.ReversalSvcFacade = (*ReversalService)(nil)

// refundability is the reversal policy read from the current fee and commission config.
type refundability struct {
	// hasFee is set when the transaction type charges a configured fee.
	hasFee               bool
	feeRefundable        bool
	commissionRefundable bool
}

// compensate builds the inverse of entries. Non-refundable fee legs stay with the
// platform. Commission carved from a retained fee stays with the agent; otherwise
// a non-refundable commission is absorbed by the platform instead of clawed back.
func (r refundability) compensate(entries []domain.LedgerEntry) []domain.LedgerEntry {
	platform := domain.PlatformAccount(domain.AccountPlatform)
	p := &posting{}
	for _, e := range entries {
		switch e.Leg {
		case domain.LegFee:
			if !r.feeRefundable {
				continue
			}
		case domain.LegCommission:
			if r.hasFee && !r.feeRefundable {
				continue
			}
			if !r.commissionRefundable {
				p.add(platform, e.EntryType.Opposite(), e.Amount, domain.LegCommission)
				continue
			}
		}
		p.add(e.Account, e.EntryType.Opposite(), e.Amount, e.Leg)
	}
	return p.entries
}

func (s *ReversalService) refundabilityFor(ctx context.Context, txnType domain.TransactionType) (refundability, error) {
	var r refundability
	var feeType domain.FeeType
	var commissionType domain.CommissionType

	switch txnType {
	case domain.TxnCardPayment:
		feeType = domain.FeeCardPayment
	case domain.TxnMerchantWithdrawal:
		feeType = domain.FeeMerchantWithdrawal
		commissionType = domain.CommissionMerchantWithdrawal
	case domain.TxnCardEnrollment:
		commissionType = domain.CommissionCardEnrollment
	}

	if feeType != "" {
		cfg, err := s.config.GetFeeConfig(ctx, feeType)
		if err != nil {
			return r, err
		}
		r.hasFee = true
		r.feeRefundable = cfg.Refundable
	}
	if commissionType != "" {
		cfg, err := s.config.GetCommissionConfig(ctx, commissionType)
		if err != nil {
			return r, err
		}
		r.commissionRefundable = cfg.Refundable
	}
	return r, nil
}

// ReverseTransaction posts the compensating transaction for an original one. A
// transaction can be reversed at most once.
func (s *ReversalService) ReverseTransaction(ctx context.Context, actor domain.Actor, cmd dto.ReversalCommand) (*dto.ReversalResult, error) {
	if err := s.Authorize(actor, domain.ActorAdmin); err != nil {
		return nil, err
	}
	return dispatch(ctx, s.dispatcher, command[dto.ReversalResult]{
		actor:      actor,
		action:     "TRANSACTION_REVERSED",
		resultType: dto.ResultReversal,
		payload:    cmd,
		execute: func(ctx context.Context) (*dto.ReversalResult, map[string]string, error) {
			original, err := s.ledgerRepo.LockTransaction(ctx, cmd.TransactionID)
			if err != nil {
				return nil, nil, err
			}
			if original.Type == domain.TxnReversal {
				return nil, nil, apperrors.Forbiddenf("a reversal cannot be reversed")
			}
			if original.Type.IsSettlementLifecycle() {
				return nil, nil, apperrors.Forbiddenf("%s transactions are compensated through their settlement lifecycle", original.Type)
			}
			reversed, err := s.ledgerRepo.ExistsReversalFor(ctx, original.TransactionID)
			if err != nil {
				return nil, nil, err
			}
			if reversed {
				return nil, nil, apperrors.Forbiddenf("transaction %s is already reversed", original.TransactionID)
			}

			entries, err := s.ledger.FindByTransaction(ctx, original.TransactionID)
			if err != nil {
				return nil, nil, err
			}
			if len(entries) == 0 {
				return nil, nil, apperrors.Forbiddenf("transaction %s has no entries", original.TransactionID)
			}

			rules, err := s.refundabilityFor(ctx, original.Type)
			if err != nil {
				return nil, nil, err
			}
			compensating := rules.compensate(entries)
			if len(compensating) < 2 {
				return nil, nil, apperrors.Forbiddenf("transaction %s has nothing refundable", original.TransactionID)
			}

			refs := make([]domain.AccountRef, 0, len(compensating))
			for _, e := range compensating {
				refs = append(refs, e.Account)
			}
			delta := cashDelta(compensating)
			profiles, err := s.ledger.Lock(ctx, refs...)
			if err != nil {
				return nil, nil, err
			}
			if err := requireOpen(profiles, refs...); err != nil {
				return nil, nil, err
			}
			if err := s.guard.Check(ctx, delta); err != nil {
				return nil, nil, err
			}

			txn := s.ledger.newTransaction(domain.TxnReversal, original.Amount, actor)
			txn.OriginalTransactionID = &original.TransactionID
			posted, err := s.ledger.Post(ctx, txn, compensating)
			if err != nil {
				if errors.Is(err, apperrors.ErrDuplicate) {
					return nil, nil, apperrors.Forbiddenf("transaction %s is already reversed", original.TransactionID)
				}
				return nil, nil, err
			}

			metadata := map[string]string{
				"transactionId":         txn.TransactionID,
				"originalTransactionId": original.TransactionID,
				"originalType":          string(original.Type),
				"amount":                original.Amount.String(),
			}
			if cmd.Reason != "" {
				metadata["reason"] = cmd.Reason
			}
			return &dto.ReversalResult{
				TransactionID:         txn.TransactionID,
				OriginalTransactionID: original.TransactionID,
				Entries:               posted,
			}, metadata, nil
		},
	})
}

func (s *ReversalService) GetTransactionEntries(ctx context.Context, actor domain.Actor, transactionID string) ([]domain.LedgerEntry, error) {
	if err := s.Authorize(actor, domain.ActorAdmin); err != nil {
		return nil, err
	}
	if _, err := s.ledgerRepo.FindTransactionByID(ctx, transactionID); err != nil {
		return nil, err
	}
	return s.ledger.FindByTransaction(ctx, transactionID)
}

package services

import (
	"context"

	"github.com/SscSPs/mobile_money_core/internal/apperrors"
	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	portsrepo "github.com/SscSPs/mobile_money_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mobile_money_core/internal/core/ports/services"
	"github.com/SscSPs/mobile_money_core/internal/dto"
)

// PayoutService settles agent wallet balances to the bank.
type PayoutService struct {
	BaseService
	dispatcher *Dispatcher
	ledger     *LedgerService
	payoutRepo portsrepo.PayoutRepositoryFacade
	partyRepo  portsrepo.PartyRepositoryFacade
}

func NewPayoutService(
	dispatcher *Dispatcher,
	ledger *LedgerService,
	payoutRepo portsrepo.PayoutRepositoryFacade,
	partyRepo portsrepo.PartyRepositoryFacade,
) *PayoutService {
	return &PayoutService{
		dispatcher: dispatcher,
		ledger:     ledger,
		payoutRepo: payoutRepo,
		partyRepo:  partyRepo,
	}
}

var _ portssvc.PayoutSvcFacade = (*PayoutService)(nil)

// RequestAgentPayout moves the agent's whole wallet balance, read under lock,
// into platform clearing. That amount is frozen on the payout.
func (s *PayoutService) RequestAgentPayout(ctx context.Context, actor domain.Actor, cmd dto.RequestAgentPayoutCommand) (*domain.Payout, error) {
	if err := s.Authorize(actor, domain.ActorAgent, domain.ActorAdmin); err != nil {
		return nil, err
	}
	if actor.Type == domain.ActorAgent && actor.ID != cmd.AgentID {
		return nil, apperrors.Forbiddenf("agents may only request their own payout")
	}

	return dispatch(ctx, s.dispatcher, command[domain.Payout]{
		actor:      actor,
		action:     "AGENT_PAYOUT_REQUESTED",
		resultType: dto.ResultPayout,
		payload:    cmd,
		execute: func(ctx context.Context) (*domain.Payout, map[string]string, error) {
			if _, err := s.partyRepo.FindAgentByID(ctx, cmd.AgentID); err != nil {
				return nil, nil, err
			}

			wallet := domain.AgentWalletAccount(cmd.AgentID)
			clearing := domain.PlatformAccount(domain.AccountPlatformClearing)

			profiles, err := s.ledger.Lock(ctx, wallet, clearing)
			if err != nil {
				return nil, nil, err
			}
			if err := requireOpen(profiles, wallet); err != nil {
				return nil, nil, err
			}

			due, err := s.ledger.NetBalance(ctx, wallet)
			if err != nil {
				return nil, nil, err
			}
			if !due.IsPositive() {
				return nil, nil, apperrors.Forbiddenf("agent wallet has nothing due (%s)", due)
			}

			p := &posting{}
			p.debit(wallet, due, domain.LegPrincipal).
				credit(clearing, due, domain.LegPrincipal)

			txn := s.ledger.newTransaction(domain.TxnAgentPayoutRequest, due, actor)
			if _, err := s.ledger.Post(ctx, txn, p.entries); err != nil {
				return nil, nil, err
			}

			payout := domain.Payout{
				PayoutID: newID(),
				AgentID:  cmd.AgentID,
				Settlement: domain.Settlement{
					TransactionID: txn.TransactionID,
					Amount:        due,
					Status:        domain.SettlementRequested,
					CreatedAt:     txn.CreatedAt,
				},
			}
			if err := s.payoutRepo.SavePayout(ctx, payout); err != nil {
				return nil, nil, err
			}

			return &payout, map[string]string{
				"payoutId":      payout.PayoutID,
				"agentId":       payout.AgentID,
				"transactionId": txn.TransactionID,
				"amount":        due.String(),
			}, nil
		},
	})
}

// CompleteAgentPayout records the bank transfer leaving platform clearing.
func (s *PayoutService) CompleteAgentPayout(ctx context.Context, actor domain.Actor, cmd dto.CompleteAgentPayoutCommand) (*domain.Payout, error) {
	if err := s.Authorize(actor, domain.ActorAdmin); err != nil {
		return nil, err
	}
	return dispatch(ctx, s.dispatcher, command[domain.Payout]{
		actor:      actor,
		action:     "AGENT_PAYOUT_COMPLETED",
		resultType: dto.ResultPayout,
		payload:    cmd,
		execute: func(ctx context.Context) (*domain.Payout, map[string]string, error) {
			return s.finalize(ctx, actor, cmd.PayoutID, domain.TxnAgentPayoutCompletion,
				func(*domain.Payout) domain.AccountRef { return domain.PlatformAccount(domain.AccountPlatformBank) },
				func(payout *domain.Payout, txnID string) error { return payout.Complete(txnID, s.Now()) },
			)
		},
	})
}

// FailAgentPayout returns the frozen amount to the agent's wallet.
func (s *PayoutService) FailAgentPayout(ctx context.Context, actor domain.Actor, cmd dto.FailAgentPayoutCommand) (*domain.Payout, error) {
	if err := s.Authorize(actor, domain.ActorAdmin); err != nil {
		return nil, err
	}
	return dispatch(ctx, s.dispatcher, command[domain.Payout]{
		actor:      actor,
		action:     "AGENT_PAYOUT_FAILED",
		resultType: dto.ResultPayout,
		payload:    cmd,
		execute: func(ctx context.Context) (*domain.Payout, map[string]string, error) {
			return s.finalize(ctx, actor, cmd.PayoutID, domain.TxnAgentPayoutFailure,
				func(payout *domain.Payout) domain.AccountRef { return domain.AgentWalletAccount(payout.AgentID) },
				func(payout *domain.Payout, txnID string) error { return payout.Fail(txnID, cmd.Reason, s.Now()) },
			)
		},
	})
}

// finalize drains the payout's amount out of platform clearing. A payout that is
// already terminal is returned unchanged and nothing is audited.
func (s *PayoutService) finalize(
	ctx context.Context,
	actor domain.Actor,
	payoutID string,
	txnType domain.TransactionType,
	target func(*domain.Payout) domain.AccountRef,
	transition func(payout *domain.Payout, txnID string) error,
) (*domain.Payout, map[string]string, error) {
	payout, err := s.payoutRepo.LockPayout(ctx, payoutID)
	if err != nil {
		return nil, nil, err
	}
	if payout.Status.IsTerminal() {
		s.LogInfo(ctx, "Payout already finalized", "payout_id", payout.PayoutID, "status", string(payout.Status))
		return payout, nil, nil
	}

	clearing := domain.PlatformAccount(domain.AccountPlatformClearing)
	credited := target(payout)

	profiles, err := s.ledger.Lock(ctx, clearing, credited)
	if err != nil {
		return nil, nil, err
	}
	if err := requireOpen(profiles, clearing, credited); err != nil {
		return nil, nil, err
	}

	p := &posting{}
	p.debit(clearing, payout.Amount, domain.LegPrincipal).
		credit(credited, payout.Amount, domain.LegPrincipal)

	txn := s.ledger.newTransaction(txnType, payout.Amount, actor)
	if _, err := s.ledger.Post(ctx, txn, p.entries); err != nil {
		return nil, nil, err
	}
	if err := transition(payout, txn.TransactionID); err != nil {
		return nil, nil, apperrors.Forbiddenf("payout %s: %v", payout.PayoutID, err)
	}
	if err := s.payoutRepo.UpdatePayout(ctx, *payout); err != nil {
		return nil, nil, err
	}

	metadata := map[string]string{
		"payoutId":      payout.PayoutID,
		"agentId":       payout.AgentID,
		"transactionId": txn.TransactionID,
		"amount":        payout.Amount.String(),
		"status":        string(payout.Status),
	}
	if payout.FailureReason != nil {
		metadata["reason"] = *payout.FailureReason
	}
	return payout, metadata, nil
}

func (s *PayoutService) GetPayout(ctx context.Context, actor domain.Actor, payoutID string) (*domain.Payout, error) {
	if err := s.Authorize(actor, domain.ActorAgent, domain.ActorAdmin); err != nil {
		return nil, err
	}
	payout, err := s.payoutRepo.FindPayoutByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	if actor.Type == domain.ActorAgent && payout.AgentID != actor.ID {
		return nil, apperrors.NotFoundf("payout %s not found", payoutID)
	}
	return payout, nil
}

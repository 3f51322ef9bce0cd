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

// RefundService returns a client's whole wallet balance through the refund clearing account.
type RefundService struct {
	BaseService
	dispatcher *Dispatcher
	ledger     *LedgerService
	refundRepo portsrepo.ClientRefundRepositoryFacade
	partyRepo  portsrepo.PartyRepositoryFacade
}

func NewRefundService(
	dispatcher *Dispatcher,
	ledger *LedgerService,
	refundRepo portsrepo.ClientRefundRepositoryFacade,
	partyRepo portsrepo.PartyRepositoryFacade,
) *RefundService {
	return &RefundService{
		dispatcher: dispatcher,
		ledger:     ledger,
		refundRepo: refundRepo,
		partyRepo:  partyRepo,
	}
}

var _ portssvc.RefundSvcFacade = (*RefundService)(nil)

func (s *RefundService) RequestClientRefund(ctx context.Context, actor domain.Actor, cmd dto.RequestClientRefundCommand) (*domain.ClientRefund, error) {
	if err := s.Authorize(actor, domain.ActorAdmin); err != nil {
		return nil, err
	}
	return dispatch(ctx, s.dispatcher, command[domain.ClientRefund]{
		actor:      actor,
		action:     "CLIENT_REFUND_REQUESTED",
		resultType: dto.ResultClientRefund,
		payload:    cmd,
		execute: func(ctx context.Context) (*domain.ClientRefund, map[string]string, error) {
			if _, err := s.partyRepo.FindClientByID(ctx, cmd.ClientID); err != nil {
				return nil, nil, err
			}

			client := domain.ClientAccount(cmd.ClientID)
			clearing := domain.PlatformAccount(domain.AccountPlatformClientRefundClearing)

			// The client profile lock also serializes concurrent requests for one client.
			profiles, err := s.ledger.Lock(ctx, client, clearing)
			if err != nil {
				return nil, nil, err
			}
			if err := requireOpen(profiles, client); err != nil {
				return nil, nil, err
			}

			pending, err := s.refundRepo.ExistsRequestedRefundForClient(ctx, cmd.ClientID)
			if err != nil {
				return nil, nil, err
			}
			if pending {
				return nil, nil, apperrors.Forbiddenf("client %s already has a refund in progress", cmd.ClientID)
			}

			due, err := s.ledger.NetBalance(ctx, client)
			if err != nil {
				return nil, nil, err
			}
			if !due.IsPositive() {
				return nil, nil, apperrors.Forbiddenf("client wallet has nothing to refund (%s)", due)
			}

			p := &posting{}
			p.debit(client, due, domain.LegPrincipal).
				credit(clearing, due, domain.LegPrincipal)

			txn := s.ledger.newTransaction(domain.TxnClientRefundRequest, due, actor)
			if _, err := s.ledger.Post(ctx, txn, p.entries); err != nil {
				return nil, nil, err
			}

			refund := domain.ClientRefund{
				RefundID: newID(),
				ClientID: cmd.ClientID,
				Settlement: domain.Settlement{
					TransactionID: txn.TransactionID,
					Amount:        due,
					Status:        domain.SettlementRequested,
					CreatedAt:     txn.CreatedAt,
				},
			}
			if err := s.refundRepo.SaveClientRefund(ctx, refund); err != nil {
				if errors.Is(err, apperrors.ErrDuplicate) {
					return nil, nil, apperrors.Forbiddenf("client %s already has a refund in progress", cmd.ClientID)
				}
				return nil, nil, err
			}

			return &refund, map[string]string{
				"refundId":      refund.RefundID,
				"clientId":      refund.ClientID,
				"transactionId": txn.TransactionID,
				"amount":        due.String(),
			}, nil
		},
	})
}

func (s *RefundService) CompleteClientRefund(ctx context.Context, actor domain.Actor, cmd dto.CompleteClientRefundCommand) (*domain.ClientRefund, error) {
	if err := s.Authorize(actor, domain.ActorAdmin); err != nil {
		return nil, err
	}
	return dispatch(ctx, s.dispatcher, command[domain.ClientRefund]{
		actor:      actor,
		action:     "CLIENT_REFUND_COMPLETED",
		resultType: dto.ResultClientRefund,
		payload:    cmd,
		execute: func(ctx context.Context) (*domain.ClientRefund, map[string]string, error) {
			return s.finalize(ctx, actor, cmd.RefundID, domain.TxnClientRefundCompletion,
				func(*domain.ClientRefund) domain.AccountRef { return domain.PlatformAccount(domain.AccountPlatformBank) },
				func(refund *domain.ClientRefund, txnID string) error { return refund.Complete(txnID, s.Now()) },
			)
		},
	})
}

func (s *RefundService) FailClientRefund(ctx context.Context, actor domain.Actor, cmd dto.FailClientRefundCommand) (*domain.ClientRefund, error) {
	if err := s.Authorize(actor, domain.ActorAdmin); err != nil {
		return nil, err
	}
	return dispatch(ctx, s.dispatcher, command[domain.ClientRefund]{
		actor:      actor,
		action:     "CLIENT_REFUND_FAILED",
		resultType: dto.ResultClientRefund,
		payload:    cmd,
		execute: func(ctx context.Context) (*domain.ClientRefund, map[string]string, error) {
			return s.finalize(ctx, actor, cmd.RefundID, domain.TxnClientRefundFailure,
				func(refund *domain.ClientRefund) domain.AccountRef { return domain.ClientAccount(refund.ClientID) },
				func(refund *domain.ClientRefund, txnID string) error { return refund.Fail(txnID, cmd.Reason, s.Now()) },
			)
		},
	})
}

func (s *RefundService) finalize(
	ctx context.Context,
	actor domain.Actor,
	refundID string,
	txnType domain.TransactionType,
	target func(*domain.ClientRefund) domain.AccountRef,
	transition func(refund *domain.ClientRefund, txnID string) error,
) (*domain.ClientRefund, map[string]string, error) {
	refund, err := s.refundRepo.LockClientRefund(ctx, refundID)
	if err != nil {
		return nil, nil, err
	}
	if refund.Status.IsTerminal() {
		s.LogInfo(ctx, "Client refund already finalized", "refund_id", refund.RefundID, "status", string(refund.Status))
		return refund, nil, nil
	}

	clearing := domain.PlatformAccount(domain.AccountPlatformClientRefundClearing)
	credited := target(refund)

	profiles, err := s.ledger.Lock(ctx, clearing, credited)
	if err != nil {
		return nil, nil, err
	}
	if err := requireOpen(profiles, clearing, credited); err != nil {
		return nil, nil, err
	}

	p := &posting{}
	p.debit(clearing, refund.Amount, domain.LegPrincipal).
		credit(credited, refund.Amount, domain.LegPrincipal)

	txn := s.ledger.newTransaction(txnType, refund.Amount, actor)
	if _, err := s.ledger.Post(ctx, txn, p.entries); err != nil {
		return nil, nil, err
	}
	if err := transition(refund, txn.TransactionID); err != nil {
		return nil, nil, apperrors.Forbiddenf("refund %s: %v", refund.RefundID, err)
	}
	if err := s.refundRepo.UpdateClientRefund(ctx, *refund); err != nil {
		return nil, nil, err
	}

	metadata := map[string]string{
		"refundId":      refund.RefundID,
		"clientId":      refund.ClientID,
		"transactionId": txn.TransactionID,
		"amount":        refund.Amount.String(),
		"status":        string(refund.Status),
	}
	if refund.FailureReason != nil {
		metadata["reason"] = *refund.FailureReason
	}
	return refund, metadata, nil
}

func (s *RefundService) GetClientRefund(ctx context.Context, actor domain.Actor, refundID string) (*domain.ClientRefund, error) {
	if err := s.Authorize(actor, domain.ActorClient, domain.ActorAdmin); err != nil {
		return nil, err
	}
	refund, err := s.refundRepo.FindClientRefundByID(ctx, refundID)
	if err != nil {
		return nil, err
	}
	if actor.Type == domain.ActorClient && refund.ClientID != actor.ID {
		return nil, apperrors.NotFoundf("refund %s not found", refundID)
	}
	return refund, nil
}

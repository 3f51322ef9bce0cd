package services

import (
	"context"
	"time"

	"github.com/SscSPs/mobile_money_core/internal/apperrors"
	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	portsrepo "github.com/SscSPs/mobile_money_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mobile_money_core/internal/core/ports/services"
	"github.com/SscSPs/mobile_money_core/internal/dto"
)

// AccountService onboards agents and merchants, administers account status and
// serves balance and statement reads.
type AccountService struct {
	BaseService
	dispatcher *Dispatcher
	ledger     *LedgerService
	profiles   portsrepo.AccountProfileRepositoryFacade
	partyRepo  portsrepo.PartyRepositoryFacade
	payoutRepo portsrepo.PayoutRepositoryFacade
	refundRepo portsrepo.ClientRefundRepositoryFacade
}

func NewAccountService(
	dispatcher *Dispatcher,
	ledger *LedgerService,
	profiles portsrepo.AccountProfileRepositoryFacade,
	partyRepo portsrepo.PartyRepositoryFacade,
	payoutRepo portsrepo.PayoutRepositoryFacade,
	refundRepo portsrepo.ClientRefundRepositoryFacade,
) *AccountService {
	return &AccountService{
		dispatcher: dispatcher,
		ledger:     ledger,
		profiles:   profiles,
		partyRepo:  partyRepo,
		payoutRepo: payoutRepo,
		refundRepo: refundRepo,
	}
}

var _ portssvc.AccountSvcFacade = (*AccountService)(nil)

func (s *AccountService) CreateAgent(ctx context.Context, actor domain.Actor, cmd dto.CreateAgentCommand) (*dto.AgentResult, error) {
	if err := s.Authorize(actor, domain.ActorAdmin); err != nil {
		return nil, err
	}
	return dispatch(ctx, s.dispatcher, command[dto.AgentResult]{
		actor:      actor,
		action:     "AGENT_CREATED",
		resultType: dto.ResultAgent,
		payload:    cmd,
		execute: func(ctx context.Context) (*dto.AgentResult, map[string]string, error) {
			now := s.Now()
			agent := domain.Agent{
				AgentID:     newID(),
				DisplayName: cmd.DisplayName,
				Phone:       cmd.Phone,
				AuditFields: domain.AuditFields{CreatedAt: now, CreatedBy: actor.ID, LastUpdatedAt: now, LastUpdatedBy: actor.ID},
			}
			if err := s.partyRepo.SaveAgent(ctx, agent); err != nil {
				return nil, nil, err
			}
			accounts, err := s.openAccounts(ctx, now, actor.ID,
				domain.AgentWalletAccount(agent.AgentID),
				domain.AgentCashAccount(agent.AgentID),
			)
			if err != nil {
				return nil, nil, err
			}
			return &dto.AgentResult{Agent: agent, Accounts: accounts}, map[string]string{
				"agentId": agent.AgentID,
			}, nil
		},
	})
}

func (s *AccountService) CreateMerchant(ctx context.Context, actor domain.Actor, cmd dto.CreateMerchantCommand) (*dto.MerchantResult, error) {
	if err := s.Authorize(actor, domain.ActorAdmin); err != nil {
		return nil, err
	}
	return dispatch(ctx, s.dispatcher, command[dto.MerchantResult]{
		actor:      actor,
		action:     "MERCHANT_CREATED",
		resultType: dto.ResultMerchant,
		payload:    cmd,
		execute: func(ctx context.Context) (*dto.MerchantResult, map[string]string, error) {
			now := s.Now()
			merchant := domain.Merchant{
				MerchantID:  newID(),
				DisplayName: cmd.DisplayName,
				Phone:       cmd.Phone,
				AuditFields: domain.AuditFields{CreatedAt: now, CreatedBy: actor.ID, LastUpdatedAt: now, LastUpdatedBy: actor.ID},
			}
			if err := s.partyRepo.SaveMerchant(ctx, merchant); err != nil {
				return nil, nil, err
			}
			accounts, err := s.openAccounts(ctx, now, actor.ID, domain.MerchantAccount(merchant.MerchantID))
			if err != nil {
				return nil, nil, err
			}
			return &dto.MerchantResult{Merchant: merchant, Accounts: accounts}, map[string]string{
				"merchantId": merchant.MerchantID,
			}, nil
		},
	})
}

func (s *AccountService) openAccounts(ctx context.Context, now time.Time, by string, refs ...domain.AccountRef) ([]domain.AccountProfile, error) {
	profiles := make([]domain.AccountProfile, 0, len(refs))
	for _, ref := range refs {
		profile := domain.NewAccountProfile(ref, now, by)
		if err := s.profiles.SaveProfile(ctx, profile); err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// UpdateAccountStatus suspends, reactivates or closes an account. Closing requires
// a zero balance read under the account lock; CLOSED is terminal.
func (s *AccountService) UpdateAccountStatus(ctx context.Context, actor domain.Actor, cmd dto.UpdateAccountStatusCommand) (*domain.AccountProfile, error) {
	if err := s.Authorize(actor, domain.ActorAdmin); err != nil {
		return nil, err
	}
	return dispatch(ctx, s.dispatcher, command[domain.AccountProfile]{
		actor:      actor,
		action:     "ACCOUNT_STATUS_UPDATED",
		resultType: dto.ResultAccountProfile,
		payload:    cmd,
		execute: func(ctx context.Context) (*domain.AccountProfile, map[string]string, error) {
			if err := cmd.Account.Validate(); err != nil {
				return nil, nil, apperrors.Validationf("%v", err)
			}
			if cmd.Account.Type.IsPlatform() {
				return nil, nil, apperrors.Forbiddenf("platform account status cannot be changed")
			}

			locked, err := s.ledger.Lock(ctx, cmd.Account)
			if err != nil {
				return nil, nil, err
			}
			profile := locked[cmd.Account.Key()]
			previous := profile.Status
			if err := profile.CanTransitionTo(cmd.Status); err != nil {
				return nil, nil, apperrors.Forbiddenf("%v", err)
			}

			if cmd.Status == domain.AccountClosed {
				balance, err := s.ledger.NetBalance(ctx, cmd.Account)
				if err != nil {
					return nil, nil, err
				}
				if !balance.IsZero() {
					return nil, nil, apperrors.BalanceMustBeZerof("account %s has balance %s", cmd.Account, balance)
				}
				if err := s.requireNoOpenSettlement(ctx, cmd.Account); err != nil {
					return nil, nil, err
				}
			}

			profile.Status = cmd.Status
			profile.LastUpdatedAt = s.Now()
			profile.LastUpdatedBy = actor.ID
			if err := s.profiles.UpdateProfileStatus(ctx, profile); err != nil {
				return nil, nil, err
			}
			return &profile, map[string]string{
				"accountType":    string(cmd.Account.Type),
				"ownerRef":       cmd.Account.OwnerRef,
				"previousStatus": string(previous),
				"status":         string(profile.Status),
			}, nil
		},
	})
}

// requireNoOpenSettlement blocks closing a wallet whose funds sit in a REQUESTED
// payout or refund; failing it has to post back into this account.
func (s *AccountService) requireNoOpenSettlement(ctx context.Context, ref domain.AccountRef) error {
	var (
		open bool
		err  error
	)
	switch ref.Type {
	case domain.AccountAgentWallet:
		open, err = s.payoutRepo.ExistsRequestedPayoutForAgent(ctx, ref.OwnerRef)
	case domain.AccountClient:
		open, err = s.refundRepo.ExistsRequestedRefundForClient(ctx, ref.OwnerRef)
	}
	if err != nil {
		return err
	}
	if open {
		return apperrors.Forbiddenf("account %s has a settlement in progress", ref)
	}
	return nil
}

// canRead lets admins read any account and other actors only the accounts they own.
func canRead(actor domain.Actor, ref domain.AccountRef) bool {
	if actor.Type == domain.ActorAdmin {
		return true
	}
	if ref.OwnerRef == "" || ref.OwnerRef != actor.ID {
		return false
	}
	switch ref.Type {
	case domain.AccountClient:
		return actor.Type == domain.ActorClient
	case domain.AccountMerchant:
		return actor.Type == domain.ActorMerchant
	case domain.AccountAgentWallet, domain.AccountAgentCashClearing:
		return actor.Type == domain.ActorAgent
	}
	return false
}

func (s *AccountService) readable(ctx context.Context, actor domain.Actor, ref domain.AccountRef) error {
	if err := s.Authorize(actor, domain.ActorAdmin, domain.ActorAgent, domain.ActorMerchant, domain.ActorClient); err != nil {
		return err
	}
	if err := ref.Validate(); err != nil {
		return apperrors.Validationf("%v", err)
	}
	if !canRead(actor, ref) {
		return apperrors.Forbiddenf("account %s is not readable by %s", ref, actor.Type)
	}
	if _, err := s.profiles.FindProfile(ctx, ref); err != nil {
		return err
	}
	return nil
}

func (s *AccountService) GetBalance(ctx context.Context, actor domain.Actor, ref domain.AccountRef) (*dto.BalanceResult, error) {
	if err := s.readable(ctx, actor, ref); err != nil {
		return nil, err
	}
	balance, err := s.ledger.NetBalance(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &dto.BalanceResult{Account: ref, Balance: balance}, nil
}

func (s *AccountService) ListEntries(ctx context.Context, actor domain.Actor, ref domain.AccountRef, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	if err := s.readable(ctx, actor, ref); err != nil {
		return nil, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	entries, next, err := s.ledger.History(ctx, ref, limit, params.NextToken)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.LedgerEntry{}
	}
	return &dto.ListEntriesResponse{Entries: entries, NextToken: next}, nil
}

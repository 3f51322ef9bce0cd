package services

import (
	"context"

	"github.com/SscSPs/mobile_money_core/internal/apperrors"
	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	"github.com/SscSPs/mobile_money_core/internal/core/policy"
	portsrepo "github.com/SscSPs/mobile_money_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mobile_money_core/internal/core/ports/services"
	"github.com/SscSPs/mobile_money_core/internal/dto"
)

// CashService handles the commands that move physical cash through agents.
type CashService struct {
	BaseService
	dispatcher *Dispatcher
	ledger     *LedgerService
	guard      *CashLimitGuard
	config     *ConfigService
	partyRepo  portsrepo.PartyRepositoryFacade
}

func NewCashService(
	dispatcher *Dispatcher,
	ledger *LedgerService,
	guard *CashLimitGuard,
	config *ConfigService,
	partyRepo portsrepo.PartyRepositoryFacade,
) *CashService {
	return &CashService{
		dispatcher: dispatcher,
		ledger:     ledger,
		guard:      guard,
		config:     config,
		partyRepo:  partyRepo,
	}
}

var _ portssvc.CashSvcFacade = (*CashService)(nil)

// MerchantWithdrawAtAgent pays a merchant cash out of the agent's till. The
// merchant bears the fee; the agent's commission is carved out of it.
func (s *CashService) MerchantWithdrawAtAgent(ctx context.Context, actor domain.Actor, cmd dto.MerchantWithdrawCommand) (*dto.WithdrawalResult, error) {
	if err := s.Authorize(actor, domain.ActorAgent); err != nil {
		return nil, err
	}
	agentID := actor.ID

	return dispatch(ctx, s.dispatcher, command[dto.WithdrawalResult]{
		actor:      actor,
		action:     "MERCHANT_WITHDRAWAL",
		resultType: dto.ResultWithdrawal,
		payload:    cmd,
		execute: func(ctx context.Context) (*dto.WithdrawalResult, map[string]string, error) {
			if _, err := s.partyRepo.FindAgentByID(ctx, agentID); err != nil {
				return nil, nil, notFoundAsForbidden(err, "agent is not registered")
			}
			if _, err := s.partyRepo.FindMerchantByID(ctx, cmd.MerchantID); err != nil {
				return nil, nil, notFoundAsForbidden(err, "merchant is not registered")
			}

			feeCfg, err := s.config.GetFeeConfig(ctx, domain.FeeMerchantWithdrawal)
			if err != nil {
				return nil, nil, err
			}
			commissionCfg, err := s.config.GetCommissionConfig(ctx, domain.CommissionMerchantWithdrawal)
			if err != nil {
				return nil, nil, err
			}
			fee := policy.Fee(cmd.Amount, feeCfg.RateSchedule)
			commission := policy.Commission(fee, commissionCfg.RateSchedule)
			total := cmd.Amount.Add(fee)

			merchant := domain.MerchantAccount(cmd.MerchantID)
			cash := domain.AgentCashAccount(agentID)
			wallet := domain.AgentWalletAccount(agentID)
			platform := domain.PlatformAccount(domain.AccountPlatform)

			profiles, err := s.ledger.Lock(ctx, merchant, cash, wallet, platform)
			if err != nil {
				return nil, nil, notFoundAsForbidden(err, "withdrawal accounts are not provisioned")
			}
			if err := requireActive(profiles, merchant, wallet, cash); err != nil {
				return nil, nil, err
			}

			balance, err := s.ledger.NetBalance(ctx, merchant)
			if err != nil {
				return nil, nil, err
			}
			if balance.LessThan(total) {
				return nil, nil, apperrors.InsufficientFundsf("merchant balance %s is below %s", balance, total)
			}

			p := &posting{}
			p.debit(merchant, cmd.Amount, domain.LegPrincipal).
				debit(merchant, fee, domain.LegFee).
				credit(cash, cmd.Amount, domain.LegPrincipal).
				credit(wallet, commission, domain.LegCommission).
				credit(platform, fee.Sub(commission), domain.LegFee)

			if err := s.guard.Check(ctx, cashDelta(p.entries)); err != nil {
				return nil, nil, err
			}

			txn := s.ledger.newTransaction(domain.TxnMerchantWithdrawal, cmd.Amount, actor)
			if _, err := s.ledger.Post(ctx, txn, p.entries); err != nil {
				return nil, nil, err
			}

			return &dto.WithdrawalResult{
					TransactionID: txn.TransactionID,
					MerchantID:    cmd.MerchantID,
					AgentID:       agentID,
					Amount:        cmd.Amount,
					Fee:           fee,
					Commission:    commission,
				}, map[string]string{
					"transactionId": txn.TransactionID,
					"merchantId":    cmd.MerchantID,
					"agentId":       agentID,
					"amount":        cmd.Amount.String(),
					"fee":           fee.String(),
					"commission":    commission.String(),
				}, nil
		},
	})
}

// CashInByAgent credits a client's wallet against cash the agent received.
func (s *CashService) CashInByAgent(ctx context.Context, actor domain.Actor, cmd dto.CashInCommand) (*dto.PostingResult, error) {
	if err := s.Authorize(actor, domain.ActorAgent); err != nil {
		return nil, err
	}
	agentID := actor.ID

	return dispatch(ctx, s.dispatcher, command[dto.PostingResult]{
		actor:      actor,
		action:     "AGENT_CASH_IN",
		resultType: dto.ResultPosting,
		payload:    cmd,
		execute: func(ctx context.Context) (*dto.PostingResult, map[string]string, error) {
			if _, err := s.partyRepo.FindAgentByID(ctx, agentID); err != nil {
				return nil, nil, notFoundAsForbidden(err, "agent is not registered")
			}
			if _, err := s.partyRepo.FindClientByID(ctx, cmd.ClientID); err != nil {
				return nil, nil, err
			}

			cash := domain.AgentCashAccount(agentID)
			wallet := domain.AgentWalletAccount(agentID)
			client := domain.ClientAccount(cmd.ClientID)

			profiles, err := s.ledger.Lock(ctx, cash, wallet, client)
			if err != nil {
				return nil, nil, notFoundAsForbidden(err, "cash-in accounts are not provisioned")
			}
			if err := requireActive(profiles, wallet, cash, client); err != nil {
				return nil, nil, err
			}

			p := &posting{}
			p.debit(cash, cmd.Amount, domain.LegPrincipal).
				credit(client, cmd.Amount, domain.LegPrincipal)

			if err := s.guard.Check(ctx, cashDelta(p.entries)); err != nil {
				return nil, nil, err
			}

			txn := s.ledger.newTransaction(domain.TxnAgentCashIn, cmd.Amount, actor)
			if _, err := s.ledger.Post(ctx, txn, p.entries); err != nil {
				return nil, nil, err
			}

			return &dto.PostingResult{TransactionID: txn.TransactionID, Type: txn.Type, Amount: cmd.Amount},
				map[string]string{
					"transactionId": txn.TransactionID,
					"agentId":       agentID,
					"clientId":      cmd.ClientID,
					"amount":        cmd.Amount.String(),
				}, nil
		},
	})
}

// AgentBankDepositReceipt records the platform receiving an agent's cash at the bank.
func (s *CashService) AgentBankDepositReceipt(ctx context.Context, actor domain.Actor, cmd dto.BankDepositCommand) (*dto.PostingResult, error) {
	if err := s.Authorize(actor, domain.ActorAdmin); err != nil {
		return nil, err
	}
	return dispatch(ctx, s.dispatcher, command[dto.PostingResult]{
		actor:      actor,
		action:     "AGENT_BANK_DEPOSIT",
		resultType: dto.ResultPosting,
		payload:    cmd,
		execute: func(ctx context.Context) (*dto.PostingResult, map[string]string, error) {
			if _, err := s.partyRepo.FindAgentByID(ctx, cmd.AgentID); err != nil {
				return nil, nil, err
			}

			cash := domain.AgentCashAccount(cmd.AgentID)
			bank := domain.PlatformAccount(domain.AccountPlatformBank)

			profiles, err := s.ledger.Lock(ctx, cash, bank)
			if err != nil {
				return nil, nil, err
			}
			if err := requireOpen(profiles, cash, bank); err != nil {
				return nil, nil, err
			}

			balance, err := s.ledger.NetBalance(ctx, cash)
			if err != nil {
				return nil, nil, err
			}
			exposure := balance.Neg()
			if cmd.Amount.GreaterThan(exposure) {
				return nil, nil, apperrors.Forbiddenf("deposit %s exceeds agent cash held %s", cmd.Amount, exposure)
			}

			p := &posting{}
			p.debit(bank, cmd.Amount, domain.LegPrincipal).
				credit(cash, cmd.Amount, domain.LegPrincipal)

			txn := s.ledger.newTransaction(domain.TxnAgentBankDeposit, cmd.Amount, actor)
			if _, err := s.ledger.Post(ctx, txn, p.entries); err != nil {
				return nil, nil, err
			}

			metadata := map[string]string{
				"transactionId": txn.TransactionID,
				"agentId":       cmd.AgentID,
				"amount":        cmd.Amount.String(),
			}
			if cmd.BankReference != "" {
				metadata["bankReference"] = cmd.BankReference
			}
			return &dto.PostingResult{TransactionID: txn.TransactionID, Type: txn.Type, Amount: cmd.Amount}, metadata, nil
		},
	})
}

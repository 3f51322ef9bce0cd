package services

import (
	"context"

	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	"github.com/SscSPs/mobile_money_core/internal/dto"
)

// CardSvcFacade covers enrollment and the card state machine.
type CardSvcFacade interface {
	EnrollCard(ctx context.Context, actor domain.Actor, cmd dto.EnrollCardCommand) (*dto.CardEnrollmentResult, error)
	UpdateCardStatus(ctx context.Context, actor domain.Actor, cmd dto.UpdateCardStatusCommand) (*domain.Card, error)
	UnblockCard(ctx context.Context, actor domain.Actor, cmd dto.UnblockCardCommand) (*domain.Card, error)
}

type PaymentSvcFacade interface {
	PayByCard(ctx context.Context, actor domain.Actor, cmd dto.PayByCardCommand) (*dto.CardPaymentResult, error)
}

// CashSvcFacade covers the commands that move physical cash through agents.
type CashSvcFacade interface {
	MerchantWithdrawAtAgent(ctx context.Context, actor domain.Actor, cmd dto.MerchantWithdrawCommand) (*dto.WithdrawalResult, error)
	CashInByAgent(ctx context.Context, actor domain.Actor, cmd dto.CashInCommand) (*dto.PostingResult, error)
	AgentBankDepositReceipt(ctx context.Context, actor domain.Actor, cmd dto.BankDepositCommand) (*dto.PostingResult, error)
}

type PayoutSvcFacade interface {
	RequestAgentPayout(ctx context.Context, actor domain.Actor, cmd dto.RequestAgentPayoutCommand) (*domain.Payout, error)
	CompleteAgentPayout(ctx context.Context, actor domain.Actor, cmd dto.CompleteAgentPayoutCommand) (*domain.Payout, error)
	FailAgentPayout(ctx context.Context, actor domain.Actor, cmd dto.FailAgentPayoutCommand) (*domain.Payout, error)
	GetPayout(ctx context.Context, actor domain.Actor, payoutID string) (*domain.Payout, error)
}

type RefundSvcFacade interface {
	RequestClientRefund(ctx context.Context, actor domain.Actor, cmd dto.RequestClientRefundCommand) (*domain.ClientRefund, error)
	CompleteClientRefund(ctx context.Context, actor domain.Actor, cmd dto.CompleteClientRefundCommand) (*domain.ClientRefund, error)
	FailClientRefund(ctx context.Context, actor domain.Actor, cmd dto.FailClientRefundCommand) (*domain.ClientRefund, error)
	GetClientRefund(ctx context.Context, actor domain.Actor, refundID string) (*domain.ClientRefund, error)
}

type ReversalSvcFacade interface {
	ReverseTransaction(ctx context.Context, actor domain.Actor, cmd dto.ReversalCommand) (*dto.ReversalResult, error)
	GetTransactionEntries(ctx context.Context, actor domain.Actor, transactionID string) ([]domain.LedgerEntry, error)
}

// AccountSvcFacade covers party onboarding, account status and read APIs.
type AccountSvcFacade interface {
	CreateAgent(ctx context.Context, actor domain.Actor, cmd dto.CreateAgentCommand) (*dto.AgentResult, error)
	CreateMerchant(ctx context.Context, actor domain.Actor, cmd dto.CreateMerchantCommand) (*dto.MerchantResult, error)
	UpdateAccountStatus(ctx context.Context, actor domain.Actor, cmd dto.UpdateAccountStatusCommand) (*domain.AccountProfile, error)
	GetBalance(ctx context.Context, actor domain.Actor, ref domain.AccountRef) (*dto.BalanceResult, error)
	ListEntries(ctx context.Context, actor domain.Actor, ref domain.AccountRef, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}

type ConfigSvcFacade interface {
	UpsertFeeConfig(ctx context.Context, actor domain.Actor, cmd dto.UpsertFeeConfigCommand) (*domain.FeeConfig, error)
	UpsertCommissionConfig(ctx context.Context, actor domain.Actor, cmd dto.UpsertCommissionConfigCommand) (*domain.CommissionConfig, error)
	UpsertPlatformConfig(ctx context.Context, actor domain.Actor, cmd dto.UpsertPlatformConfigCommand) (*domain.PlatformConfig, error)
	GetFeeConfig(ctx context.Context, feeType domain.FeeType) (*domain.FeeConfig, error)
	GetCommissionConfig(ctx context.Context, commissionType domain.CommissionType) (*domain.CommissionConfig, error)
	GetPlatformConfig(ctx context.Context) (*domain.PlatformConfig, error)
}

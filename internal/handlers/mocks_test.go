package handlers_test

import (
	"context"

	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	portssvc "github.com/SscSPs/mobile_money_core/internal/core/ports/services"
	"github.com/SscSPs/mobile_money_core/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock CardService ---
type MockCardService struct {
	mock.Mock
}

func (m *MockCardService) EnrollCard(ctx context.Context, actor domain.Actor, cmd dto.EnrollCardCommand) (*dto.CardEnrollmentResult, error) {
	args := m.Called(ctx, actor, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CardEnrollmentResult), args.Error(1)
}
func (m *MockCardService) UpdateCardStatus(ctx context.Context, actor domain.Actor, cmd dto.UpdateCardStatusCommand) (*domain.Card, error) {
	args := m.Called(ctx, actor, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Card), args.Error(1)
}
func (m *MockCardService) UnblockCard(ctx context.Context, actor domain.Actor, cmd dto.UnblockCardCommand) (*domain.Card, error) {
	args := m.Called(ctx, actor, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Card), args.Error(1)
}

var _ portssvc.CardSvcFacade = (*MockCardService)(nil)

// --- Mock PaymentService ---
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) PayByCard(ctx context.Context, actor domain.Actor, cmd dto.PayByCardCommand) (*dto.CardPaymentResult, error) {
	args := m.Called(ctx, actor, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CardPaymentResult), args.Error(1)
}

var _ portssvc.PaymentSvcFacade = (*MockPaymentService)(nil)

// --- Mock CashService ---
type MockCashService struct {
	mock.Mock
}

func (m *MockCashService) MerchantWithdrawAtAgent(ctx context.Context, actor domain.Actor, cmd dto.MerchantWithdrawCommand) (*dto.WithdrawalResult, error) {
	args := m.Called(ctx, actor, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.WithdrawalResult), args.Error(1)
}
func (m *MockCashService) CashInByAgent(ctx context.Context, actor domain.Actor, cmd dto.CashInCommand) (*dto.PostingResult, error) {
	args := m.Called(ctx, actor, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PostingResult), args.Error(1)
}
func (m *MockCashService) AgentBankDepositReceipt(ctx context.Context, actor domain.Actor, cmd dto.BankDepositCommand) (*dto.PostingResult, error) {
	args := m.Called(ctx, actor, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PostingResult), args.Error(1)
}

var _ portssvc.CashSvcFacade = (*MockCashService)(nil)

// --- Mock PayoutService ---
type MockPayoutService struct {
	mock.Mock
}

func (m *MockPayoutService) RequestAgentPayout(ctx context.Context, actor domain.Actor, cmd dto.RequestAgentPayoutCommand) (*domain.Payout, error) {
	args := m.Called(ctx, actor, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payout), args.Error(1)
}
func (m *MockPayoutService) CompleteAgentPayout(ctx context.Context, actor domain.Actor, cmd dto.CompleteAgentPayoutCommand) (*domain.Payout, error) {
	args := m.Called(ctx, actor, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payout), args.Error(1)
}
func (m *MockPayoutService) FailAgentPayout(ctx context.Context, actor domain.Actor, cmd dto.FailAgentPayoutCommand) (*domain.Payout, error) {
	args := m.Called(ctx, actor, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payout), args.Error(1)
}
func (m *MockPayoutService) GetPayout(ctx context.Context, actor domain.Actor, payoutID string) (*domain.Payout, error) {
	args := m.Called(ctx, actor, payoutID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payout), args.Error(1)
}

var _ portssvc.PayoutSvcFacade = (*MockPayoutService)(nil)

// --- Mock RefundService ---
type MockRefundService struct {
	mock.Mock
}

func (m *MockRefundService) RequestClientRefund(ctx context.Context, actor domain.Actor, cmd dto.RequestClientRefundCommand) (*domain.ClientRefund, error) {
	args := m.Called(ctx, actor, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClientRefund), args.Error(1)
}
func (m *MockRefundService) CompleteClientRefund(ctx context.Context, actor domain.Actor, cmd dto.CompleteClientRefundCommand) (*domain.ClientRefund, error) {
	args := m.Called(ctx, actor, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClientRefund), args.Error(1)
}
func (m *MockRefundService) FailClientRefund(ctx context.Context, actor domain.Actor, cmd dto.FailClientRefundCommand) (*domain.ClientRefund, error) {
	args := m.Called(ctx, actor, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClientRefund), args.Error(1)
}
func (m *MockRefundService) GetClientRefund(ctx context.Context, actor domain.Actor, refundID string) (*domain.ClientRefund, error) {
	args := m.Called(ctx, actor, refundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClientRefund), args.Error(1)
}

var _ portssvc.RefundSvcFacade = (*MockRefundService)(nil)

// --- Mock ReversalService ---
type MockReversalService struct {
	mock.Mock
}

func (m *MockReversalService) ReverseTransaction(ctx context.Context, actor domain.Actor, cmd dto.ReversalCommand) (*dto.ReversalResult, error) {
	args := m.Called(ctx, actor, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReversalResult), args.Error(1)
}
func (m *MockReversalService) GetTransactionEntries(ctx context.Context, actor domain.Actor, transactionID string) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, actor, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

var _ portssvc.ReversalSvcFacade = (*MockReversalService)(nil)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAgent(ctx context.Context, actor domain.Actor, cmd dto.CreateAgentCommand) (*dto.AgentResult, error) {
	args := m.Called(ctx, actor, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AgentResult), args.Error(1)
}
func (m *MockAccountService) CreateMerchant(ctx context.Context, actor domain.Actor, cmd dto.CreateMerchantCommand) (*dto.MerchantResult, error) {
	args := m.Called(ctx, actor, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.MerchantResult), args.Error(1)
}
func (m *MockAccountService) UpdateAccountStatus(ctx context.Context, actor domain.Actor, cmd dto.UpdateAccountStatusCommand) (*domain.AccountProfile, error) {
	args := m.Called(ctx, actor, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountProfile), args.Error(1)
}
func (m *MockAccountService) GetBalance(ctx context.Context, actor domain.Actor, ref domain.AccountRef) (*dto.BalanceResult, error) {
	args := m.Called(ctx, actor, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BalanceResult), args.Error(1)
}
func (m *MockAccountService) ListEntries(ctx context.Context, actor domain.Actor, ref domain.AccountRef, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	args := m.Called(ctx, actor, ref, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListEntriesResponse), args.Error(1)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock ConfigService ---
type MockConfigService struct {
	mock.Mock
}

func (m *MockConfigService) UpsertFeeConfig(ctx context.Context, actor domain.Actor, cmd dto.UpsertFeeConfigCommand) (*domain.FeeConfig, error) {
	args := m.Called(ctx, actor, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeeConfig), args.Error(1)
}
func (m *MockConfigService) UpsertCommissionConfig(ctx context.Context, actor domain.Actor, cmd dto.UpsertCommissionConfigCommand) (*domain.CommissionConfig, error) {
	args := m.Called(ctx, actor, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommissionConfig), args.Error(1)
}
func (m *MockConfigService) UpsertPlatformConfig(ctx context.Context, actor domain.Actor, cmd dto.UpsertPlatformConfigCommand) (*domain.PlatformConfig, error) {
	args := m.Called(ctx, actor, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlatformConfig), args.Error(1)
}
func (m *MockConfigService) GetFeeConfig(ctx context.Context, feeType domain.FeeType) (*domain.FeeConfig, error) {
	args := m.Called(ctx, feeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeeConfig), args.Error(1)
}
func (m *MockConfigService) GetCommissionConfig(ctx context.Context, commissionType domain.CommissionType) (*domain.CommissionConfig, error) {
	args := m.Called(ctx, commissionType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommissionConfig), args.Error(1)
}
func (m *MockConfigService) GetPlatformConfig(ctx context.Context) (*domain.PlatformConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlatformConfig), args.Error(1)
}

var _ portssvc.ConfigSvcFacade = (*MockConfigService)(nil)

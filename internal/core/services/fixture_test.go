package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	portssvc "github.com/SscSPs/mobile_money_core/internal/core/ports/services"
	"github.com/SscSPs/mobile_money_core/internal/core/services"
	"github.com/SscSPs/mobile_money_core/internal/dto"
	"github.com/SscSPs/mobile_money_core/internal/repositories/memory"
	"github.com/SscSPs/mobile_money_core/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

// --- Mock AuditPort ---
type MockAuditPort struct {
	mock.Mock
}

var _ portssvc.AuditPort = (*MockAuditPort)(nil)

func (m *MockAuditPort) Publish(ctx context.Context, event domain.AuditEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// delayedAuditPort holds every command's unit of work open a little longer,
// so concurrent duplicates overlap.
type delayedAuditPort struct {
	next  portssvc.AuditPort
	delay time.Duration
}

func (p *delayedAuditPort) Publish(ctx context.Context, event domain.AuditEvent) error {
	time.Sleep(p.delay)
	return p.next.Publish(ctx, event)
}

// engineSuite runs commands end to end against the in-memory store.
type engineSuite struct {
	suite.Suite
	ctx   context.Context
	store *memory.Store
	svc   *portssvc.ServiceContainer

	admin      domain.Actor
	agent      domain.Actor
	merchant   domain.Actor
	agentID    string
	merchantID string

	// auditDelay, when set before setup, slows every audit publish.
	auditDelay time.Duration
}

func (s *engineSuite) SetupTest() {
	s.setup()
}

func (s *engineSuite) setup(opts ...services.ContainerOption) {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	if s.auditDelay > 0 {
		opts = append(opts, services.WithAuditPort(&delayedAuditPort{
			next:  services.NewOutboxAuditPort(s.store),
			delay: s.auditDelay,
		}))
	}
	s.svc = services.NewServiceContainer(
		memory.NewRepositoryProvider(s.store),
		utils.NewBcryptPinHasher(bcrypt.MinCost),
		opts...,
	)
	s.admin = domain.Actor{Type: domain.ActorAdmin, ID: "admin-1"}

	agent, err := s.svc.Account.CreateAgent(s.ctx, s.admin, dto.CreateAgentCommand{
		CommandMeta: meta(), DisplayName: "Agent One", Phone: "+250700000001",
	})
	s.Require().NoError(err)
	s.agentID = agent.Agent.AgentID
	s.agent = domain.Actor{Type: domain.ActorAgent, ID: s.agentID}

	merchant, err := s.svc.Account.CreateMerchant(s.ctx, s.admin, dto.CreateMerchantCommand{
		CommandMeta: meta(), DisplayName: "Shop", Phone: "+250700000002",
	})
	s.Require().NoError(err)
	s.merchantID = merchant.Merchant.MerchantID
	s.merchant = domain.Actor{Type: domain.ActorMerchant, ID: s.merchantID}
}

func meta() dto.CommandMeta {
	return dto.CommandMeta{IdempotencyKey: uuid.NewString()}
}

func money(s string) domain.Money { return domain.MustParseMoney(s) }

// enroll enrolls a new client card with PIN 1234 and returns the enrollment result and card UID.
func (s *engineSuite) enroll() (*dto.CardEnrollmentResult, string) {
	uid := "UID-" + uuid.NewString()
	res, err := s.svc.Card.EnrollCard(s.ctx, s.agent, dto.EnrollCardCommand{
		CommandMeta: meta(), ClientName: "Client", ClientPhone: "+250788000000", CardUID: uid, PIN: "1234",
	})
	s.Require().NoError(err)
	return res, uid
}

func (s *engineSuite) cashIn(clientID, amount string) {
	_, err := s.svc.Cash.CashInByAgent(s.ctx, s.agent, dto.CashInCommand{
		CommandMeta: meta(), ClientID: clientID, Amount: money(amount),
	})
	s.Require().NoError(err)
}

func (s *engineSuite) pay(uid, pin, amount string) (*dto.CardPaymentResult, error) {
	return s.svc.Payment.PayByCard(s.ctx, s.merchant, dto.PayByCardCommand{
		CommandMeta: meta(), CardUID: uid, PIN: pin, Amount: money(amount),
	})
}

func (s *engineSuite) balance(ref domain.AccountRef) string {
	res, err := s.svc.Account.GetBalance(s.ctx, s.admin, ref)
	s.Require().NoError(err)
	return res.Balance.String()
}

func (s *engineSuite) setPlatformConfig(price, commission, limit string, maxPIN int) {
	_, err := s.svc.Config.UpsertPlatformConfig(s.ctx, s.admin, dto.UpsertPlatformConfigCommand{
		CommandMeta:                   meta(),
		CardEnrollmentPrice:           money(price),
		CardEnrollmentAgentCommission: money(commission),
		AgentCashLimitGlobal:          money(limit),
		MaxFailedPINAttempts:          maxPIN,
	})
	s.Require().NoError(err)
}

func (s *engineSuite) setFeeConfig(feeType domain.FeeType, rate, min, max string, refundable bool) {
	_, err := s.svc.Config.UpsertFeeConfig(s.ctx, s.admin, dto.UpsertFeeConfigCommand{
		CommandMeta: meta(),
		FeeType:     feeType,
		Rate:        decimal.RequireFromString(rate),
		Min:         money(min),
		Max:         money(max),
		Refundable:  refundable,
	})
	s.Require().NoError(err)
}

func (s *engineSuite) setCommissionConfig(commissionType domain.CommissionType, rate, min, max string, refundable bool) {
	_, err := s.svc.Config.UpsertCommissionConfig(s.ctx, s.admin, dto.UpsertCommissionConfigCommand{
		CommandMeta:    meta(),
		CommissionType: commissionType,
		Rate:           decimal.RequireFromString(rate),
		Min:            money(min),
		Max:            money(max),
		Refundable:     refundable,
	})
	s.Require().NoError(err)
}

func (s *engineSuite) auditActions(action string) int {
	n := 0
	for _, r := range s.store.OutboxRecords() {
		if r.EventType == action {
			n++
		}
	}
	return n
}

var platform = domain.PlatformAccount(domain.AccountPlatform)

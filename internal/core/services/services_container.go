package services

import (
	"time"

	portsrepo "github.com/SscSPs/mobile_money_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mobile_money_core/internal/core/ports/services"
	"github.com/SscSPs/mobile_money_core/internal/dto"
	"github.com/go-playground/validator/v10"
)

// DefaultIdempotencyTTL is how long idempotency records are kept before an
// external retention job may purge them.
const DefaultIdempotencyTTL = 72 * time.Hour

type containerOptions struct {
	clock    func() time.Time
	audit    portssvc.AuditPort
	validate *validator.Validate
	ttl      time.Duration
}

// ContainerOption configures NewServiceContainer.
type ContainerOption func(*containerOptions)

// WithClock overrides the time source used to stamp transactions and records.
func WithClock(clock func() time.Time) ContainerOption {
	return func(o *containerOptions) { o.clock = clock }
}

// WithAuditPort replaces the outbox-backed audit port.
func WithAuditPort(audit portssvc.AuditPort) ContainerOption {
	return func(o *containerOptions) { o.audit = audit }
}

func WithValidator(v *validator.Validate) ContainerOption {
	return func(o *containerOptions) { o.validate = v }
}

func WithIdempotencyTTL(ttl time.Duration) ContainerOption {
	return func(o *containerOptions) { o.ttl = ttl }
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider, pinHasher portssvc.PinHasher, opts ...ContainerOption) *portssvc.ServiceContainer {
	o := containerOptions{ttl: DefaultIdempotencyTTL}
	for _, opt := range opts {
		opt(&o)
	}
	if o.audit == nil {
		o.audit = NewOutboxAuditPort(repos.OutboxRepo)
	}
	if o.validate == nil {
		o.validate = dto.NewValidator()
	}
	base := BaseService{Clock: o.clock}

	dispatcher := NewDispatcher(repos.TxManager, repos.IdempotencyRepo, o.audit, o.validate, o.ttl)
	dispatcher.BaseService = base

	// Config, ledger and guard are shared by the command services.
	config := NewConfigService(repos.ConfigRepo, dispatcher)
	config.BaseService = base
	ledger := NewLedgerService(repos.LedgerRepo, repos.ProfileRepo)
	ledger.BaseService = base
	guard := NewCashLimitGuard(ledger, config)
	guard.BaseService = base

	card := NewCardService(dispatcher, ledger, guard, config, repos.CardRepo, repos.PartyRepo, repos.ProfileRepo, pinHasher)
	card.BaseService = base
	payment := NewPaymentService(dispatcher, repos.TxManager, ledger, config, config, repos.CardRepo, repos.PartyRepo, pinHasher)
	payment.BaseService = base
	cash := NewCashService(dispatcher, ledger, guard, config, repos.PartyRepo)
	cash.BaseService = base
	payout := NewPayoutService(dispatcher, ledger, repos.PayoutRepo, repos.PartyRepo)
	payout.BaseService = base
	refund := NewRefundService(dispatcher, ledger, repos.RefundRepo, repos.PartyRepo)
	refund.BaseService = base
	reversal := NewReversalService(dispatcher, ledger, repos.LedgerRepo, guard, config)
	reversal.BaseService = base
	account := NewAccountService(dispatcher, ledger, repos.ProfileRepo, repos.PartyRepo, repos.PayoutRepo, repos.RefundRepo)
	account.BaseService = base

	return &portssvc.ServiceContainer{
		Card:     card,
		Payment:  payment,
		Cash:     cash,
		Payout:   payout,
		Refund:   refund,
		Reversal: reversal,
		Account:  account,
		Config:   config,
	}
}

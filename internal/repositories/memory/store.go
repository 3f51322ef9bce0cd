// Package memory is an in-process implementation of the repository ports. It
// honours the same unit-of-work and row-locking contract as the PostgreSQL
// adapter: per-key exclusive locks held until the unit of work ends, and an
// undo log that rolls back every write of a failed unit of work.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SscSPs/mobile_money_core/internal/apperrors"
	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	portsrepo "github.com/SscSPs/mobile_money_core/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// DefaultLockTimeout bounds how long a unit of work waits for a row lock.
const DefaultLockTimeout = 5 * time.Second

// Store holds every table in memory.
type Store struct {
	mu          sync.Mutex
	locks       map[string]chan struct{}
	lockTimeout time.Duration

	profiles  map[string]domain.AccountProfile
	clients   map[string]domain.Client
	agents    map[string]domain.Agent
	merchants map[string]domain.Merchant

	transactions map[string]domain.Transaction
	reversals    map[string]string
	entries      []domain.LedgerEntry

	cards     map[string]domain.Card
	cardByUID map[string]string
	payouts   map[string]domain.Payout
	refunds   map[string]domain.ClientRefund

	idempotency map[string]domain.IdempotencyRecord
	feeConfigs  map[domain.FeeType]domain.FeeConfig
	commissions map[domain.CommissionType]domain.CommissionConfig
	platform    *domain.PlatformConfig
	outbox      []domain.OutboxRecord
}

// Option configures a Store.
type Option func(*Store)

func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) { s.lockTimeout = d }
}

// WithoutSeed leaves platform profiles and configuration empty.
func WithoutSeed() Option {
	return func(s *Store) {
		s.profiles = map[string]domain.AccountProfile{}
		s.feeConfigs = map[domain.FeeType]domain.FeeConfig{}
		s.commissions = map[domain.CommissionType]domain.CommissionConfig{}
		s.platform = nil
	}
}

// NewStore returns a store seeded with the platform singleton accounts and the
// default configuration, mirroring the initial migration.
func NewStore(opts ...Option) *Store {
	s := &Store{
		locks:        map[string]chan struct{}{},
		lockTimeout:  DefaultLockTimeout,
		profiles:     map[string]domain.AccountProfile{},
		clients:      map[string]domain.Client{},
		agents:       map[string]domain.Agent{},
		merchants:    map[string]domain.Merchant{},
		transactions: map[string]domain.Transaction{},
		reversals:    map[string]string{},
		cards:        map[string]domain.Card{},
		cardByUID:    map[string]string{},
		payouts:      map[string]domain.Payout{},
		refunds:      map[string]domain.ClientRefund{},
		idempotency:  map[string]domain.IdempotencyRecord{},
		feeConfigs:   map[domain.FeeType]domain.FeeConfig{},
		commissions:  map[domain.CommissionType]domain.CommissionConfig{},
	}
	s.seed(time.Now().UTC())
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) seed(now time.Time) {
	for _, t := range domain.PlatformAccountTypes {
		ref := domain.PlatformAccount(t)
		s.profiles[ref.Key()] = domain.NewAccountProfile(ref, now, "system")
	}
	s.feeConfigs[domain.FeeCardPayment] = domain.FeeConfig{
		FeeType:       domain.FeeCardPayment,
		RateSchedule:  domain.RateSchedule{Rate: decimal.RequireFromString("0.02"), Min: domain.MustParseMoney("10.00"), Max: domain.MustParseMoney("500.00")},
		LastUpdatedAt: now,
		LastUpdatedBy: "system",
	}
	s.feeConfigs[domain.FeeMerchantWithdrawal] = domain.FeeConfig{
		FeeType:       domain.FeeMerchantWithdrawal,
		RateSchedule:  domain.RateSchedule{Rate: decimal.RequireFromString("0.01"), Min: domain.MustParseMoney("5.00"), Max: domain.MustParseMoney("250.00")},
		LastUpdatedAt: now,
		LastUpdatedBy: "system",
	}
	s.commissions[domain.CommissionMerchantWithdrawal] = domain.CommissionConfig{
		CommissionType: domain.CommissionMerchantWithdrawal,
		RateSchedule:   domain.RateSchedule{Rate: decimal.RequireFromString("0.50"), Min: domain.Zero, Max: domain.MustParseMoney("125.00")},
		LastUpdatedAt:  now,
		LastUpdatedBy:  "system",
	}
	s.commissions[domain.CommissionCardEnrollment] = domain.CommissionConfig{
		CommissionType: domain.CommissionCardEnrollment,
		RateSchedule:   domain.RateSchedule{Rate: decimal.Zero, Min: domain.Zero, Max: domain.Zero},
		LastUpdatedAt:  now,
		LastUpdatedBy:  "system",
	}
	s.platform = &domain.PlatformConfig{
		CardEnrollmentPrice:           domain.MustParseMoney("500.00"),
		CardEnrollmentAgentCommission: domain.MustParseMoney("200.00"),
		AgentCashLimitGlobal:          domain.MustParseMoney("1000000.00"),
		MaxFailedPINAttempts:          3,
		LastUpdatedAt:                 now,
		LastUpdatedBy:                 "system",
	}
}

// NewRepositoryProvider wires one store behind every repository port.
func NewRepositoryProvider(s *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:       s,
		LedgerRepo:      s,
		ProfileRepo:     s,
		PartyRepo:       s,
		CardRepo:        s,
		PayoutRepo:      s,
		RefundRepo:      s,
		IdempotencyRepo: s,
		ConfigRepo:      s,
		OutboxRepo:      s,
	}
}

type uowKey struct{}

// unitOfWork tracks the locks held and the undo log of one WithinTx call.
type unitOfWork struct {
	held map[string]chan struct{}
	undo []func()
}

func uowFromCtx(ctx context.Context) *unitOfWork {
	u, _ := ctx.Value(uowKey{}).(*unitOfWork)
	return u
}

// WithinTx runs fn in a unit of work. A nested call joins the outer one.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if uowFromCtx(ctx) != nil {
		return fn(ctx)
	}
	u := &unitOfWork{held: map[string]chan struct{}{}}
	txCtx := context.WithValue(ctx, uowKey{}, u)

	defer func() {
		if p := recover(); p != nil {
			s.rollback(u)
			s.release(u)
			panic(p)
		}
		if err != nil {
			s.rollback(u)
		}
		s.release(u)
	}()

	return fn(txCtx)
}

func (s *Store) rollback(u *unitOfWork) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(u.undo) - 1; i >= 0; i-- {
		u.undo[i]()
	}
	u.undo = nil
}

func (s *Store) release(u *unitOfWork) {
	for key, ch := range u.held {
		<-ch
		delete(u.held, key)
	}
}

// acquire takes the exclusive lock on key for the unit of work in ctx. Outside a
// unit of work it is a no-op, like SELECT ... FOR UPDATE in autocommit mode.
func (s *Store) acquire(ctx context.Context, key string) error {
	u := uowFromCtx(ctx)
	if u == nil {
		return nil
	}
	if _, ok := u.held[key]; ok {
		return nil
	}

	s.mu.Lock()
	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	s.mu.Unlock()

	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		u.held[key] = ch
		return nil
	case <-ctx.Done():
		return apperrors.Technical("lock wait cancelled", ctx.Err())
	case <-timer.C:
		return apperrors.Technical(fmt.Sprintf("lock wait timeout on %s", key), nil)
	}
}

// onRollback registers an undo step. Callers hold s.mu.
func onRollback(ctx context.Context, undo func()) {
	if u := uowFromCtx(ctx); u != nil {
		u.undo = append(u.undo, undo)
	}
}

func notFound(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), apperrors.ErrNotFound)
}

func duplicate(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), apperrors.ErrDuplicate)
}

package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/mobile_money_core/internal/core/domain"
)

// IdempotencyRepositoryFacade is the durable at-most-once result cache.
type IdempotencyRepositoryFacade interface {
	// FindByKey returns ErrNotFound when the key is unknown.
	FindByKey(ctx context.Context, key string) (*domain.IdempotencyRecord, error)

	// LockKey holds an exclusive lock on key until the unit of work in ctx ends.
	// Commands sharing a key run one at a time.
	LockKey(ctx context.Context, key string) error

	// InsertIfAbsent writes the record unless the key exists. It reports whether this call won.
	InsertIfAbsent(ctx context.Context, record domain.IdempotencyRecord) (bool, error)
}

// ConfigRepositoryFacade backs the fee, commission and platform config ports.
type ConfigRepositoryFacade interface {
	GetFeeConfig(ctx context.Context, feeType domain.FeeType) (*domain.FeeConfig, error)
	UpsertFeeConfig(ctx context.Context, cfg domain.FeeConfig) error
	GetCommissionConfig(ctx context.Context, commissionType domain.CommissionType) (*domain.CommissionConfig, error)
	UpsertCommissionConfig(ctx context.Context, cfg domain.CommissionConfig) error
	GetPlatformConfig(ctx context.Context) (*domain.PlatformConfig, error)
	UpsertPlatformConfig(ctx context.Context, cfg domain.PlatformConfig) error
}

// AuditOutboxRepositoryFacade stores audit events transactionally until a worker ships them.
type AuditOutboxRepositoryFacade interface {
	Append(ctx context.Context, record domain.OutboxRecord) error
	FetchUnpublished(ctx context.Context, limit int) ([]domain.OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID string, at time.Time) error
	MarkFailed(ctx context.Context, outboxID string, reason string, at time.Time) error
}

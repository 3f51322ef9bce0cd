package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	portsrepo "github.com/SscSPs/mobile_money_core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxIdempotencyRepository struct {
	BaseRepository
}

func newPgxIdempotencyRepository(pool *pgxpool.Pool) *PgxIdempotencyRepository {
	return &PgxIdempotencyRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.IdempotencyRepositoryFacade = (*PgxIdempotencyRepository)(nil)

func (r *PgxIdempotencyRepository) FindByKey(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	query := `
		SELECT idempotency_key, request_hash, result_type, result_json, created_at, expires_at
		FROM idempotency_records WHERE idempotency_key = $1;
	`
	var rec domain.IdempotencyRecord
	err := r.db(ctx).QueryRow(ctx, query, key).Scan(
		&rec.IdempotencyKey,
		&rec.RequestHash,
		&rec.ResultType,
		&rec.ResultJSON,
		&rec.CreatedAt,
		&rec.ExpiresAt,
	)
	if err != nil {
		return nil, mapPgError(err, "failed to find idempotency record")
	}
	return &rec, nil
}

// Advisory lock classes; the first int4 of the two-key form.
const (
	advisoryIdempotencyKey int32 = 1
	advisoryCashExposure   int32 = 2
)

// LockKey takes a transaction-scoped advisory lock on the key's hash. It is
// released on commit or rollback.
func (r *PgxIdempotencyRepository) LockKey(ctx context.Context, key string) error {
	if _, err := r.db(ctx).Exec(ctx, `SELECT pg_advisory_xact_lock($1, hashtext($2));`, advisoryIdempotencyKey, key); err != nil {
		return mapPgError(err, "failed to lock idempotency key")
	}
	return nil
}

// InsertIfAbsent relies on the primary key: a concurrent inserter of the same key
// blocks until the first commits, then inserts nothing.
func (r *PgxIdempotencyRepository) InsertIfAbsent(ctx context.Context, rec domain.IdempotencyRecord) (bool, error) {
	query := `
		INSERT INTO idempotency_records (idempotency_key, request_hash, result_type, result_json, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (idempotency_key) DO NOTHING;
	`
	tag, err := r.db(ctx).Exec(ctx, query,
		rec.IdempotencyKey,
		rec.RequestHash,
		rec.ResultType,
		[]byte(rec.ResultJSON),
		rec.CreatedAt,
		rec.ExpiresAt,
	)
	if err != nil {
		return false, mapPgError(err, "failed to insert idempotency record")
	}
	return tag.RowsAffected() == 1, nil
}

type PgxConfigRepository struct {
	BaseRepository
}

func newPgxConfigRepository(pool *pgxpool.Pool) *PgxConfigRepository {
	return &PgxConfigRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ConfigRepositoryFacade = (*PgxConfigRepository)(nil)

func (r *PgxConfigRepository) GetFeeConfig(ctx context.Context, feeType domain.FeeType) (*domain.FeeConfig, error) {
	query := `
		SELECT fee_type, rate, min_amount, max_amount, refundable, last_updated_at, last_updated_by
		FROM fee_configs WHERE fee_type = $1;
	`
	var cfg domain.FeeConfig
	err := r.db(ctx).QueryRow(ctx, query, feeType).Scan(
		&cfg.FeeType,
		&cfg.Rate,
		&cfg.Min,
		&cfg.Max,
		&cfg.Refundable,
		&cfg.LastUpdatedAt,
		&cfg.LastUpdatedBy,
	)
	if err != nil {
		return nil, mapPgError(err, "failed to get fee config "+string(feeType))
	}
	return &cfg, nil
}

func (r *PgxConfigRepository) UpsertFeeConfig(ctx context.Context, cfg domain.FeeConfig) error {
	query := `
		INSERT INTO fee_configs (fee_type, rate, min_amount, max_amount, refundable, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (fee_type) DO UPDATE SET
			rate = EXCLUDED.rate,
			min_amount = EXCLUDED.min_amount,
			max_amount = EXCLUDED.max_amount,
			refundable = EXCLUDED.refundable,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.db(ctx).Exec(ctx, query, cfg.FeeType, cfg.Rate, cfg.Min, cfg.Max, cfg.Refundable, cfg.LastUpdatedAt, cfg.LastUpdatedBy)
	return mapPgError(err, "failed to upsert fee config "+string(cfg.FeeType))
}

func (r *PgxConfigRepository) GetCommissionConfig(ctx context.Context, commissionType domain.CommissionType) (*domain.CommissionConfig, error) {
	query := `
		SELECT commission_type, rate, min_amount, max_amount, refundable, last_updated_at, last_updated_by
		FROM commission_configs WHERE commission_type = $1;
	`
	var cfg domain.CommissionConfig
	err := r.db(ctx).QueryRow(ctx, query, commissionType).Scan(
		&cfg.CommissionType,
		&cfg.Rate,
		&cfg.Min,
		&cfg.Max,
		&cfg.Refundable,
		&cfg.LastUpdatedAt,
		&cfg.LastUpdatedBy,
	)
	if err != nil {
		return nil, mapPgError(err, "failed to get commission config "+string(commissionType))
	}
	return &cfg, nil
}

func (r *PgxConfigRepository) UpsertCommissionConfig(ctx context.Context, cfg domain.CommissionConfig) error {
	query := `
		INSERT INTO commission_configs (commission_type, rate, min_amount, max_amount, refundable, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (commission_type) DO UPDATE SET
			rate = EXCLUDED.rate,
			min_amount = EXCLUDED.min_amount,
			max_amount = EXCLUDED.max_amount,
			refundable = EXCLUDED.refundable,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.db(ctx).Exec(ctx, query, cfg.CommissionType, cfg.Rate, cfg.Min, cfg.Max, cfg.Refundable, cfg.LastUpdatedAt, cfg.LastUpdatedBy)
	return mapPgError(err, "failed to upsert commission config "+string(cfg.CommissionType))
}

func (r *PgxConfigRepository) GetPlatformConfig(ctx context.Context) (*domain.PlatformConfig, error) {
	query := `
		SELECT card_enrollment_price, card_enrollment_agent_commission, agent_cash_limit_global,
		       max_failed_pin_attempts, last_updated_at, last_updated_by
		FROM platform_config WHERE id = 1;
	`
	var cfg domain.PlatformConfig
	err := r.db(ctx).QueryRow(ctx, query).Scan(
		&cfg.CardEnrollmentPrice,
		&cfg.CardEnrollmentAgentCommission,
		&cfg.AgentCashLimitGlobal,
		&cfg.MaxFailedPINAttempts,
		&cfg.LastUpdatedAt,
		&cfg.LastUpdatedBy,
	)
	if err != nil {
		return nil, mapPgError(err, "failed to get platform config")
	}
	return &cfg, nil
}

func (r *PgxConfigRepository) UpsertPlatformConfig(ctx context.Context, cfg domain.PlatformConfig) error {
	query := `
		INSERT INTO platform_config (id, card_enrollment_price, card_enrollment_agent_commission, agent_cash_limit_global,
		                             max_failed_pin_attempts, last_updated_at, last_updated_by)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			card_enrollment_price = EXCLUDED.card_enrollment_price,
			card_enrollment_agent_commission = EXCLUDED.card_enrollment_agent_commission,
			agent_cash_limit_global = EXCLUDED.agent_cash_limit_global,
			max_failed_pin_attempts = EXCLUDED.max_failed_pin_attempts,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.db(ctx).Exec(ctx, query,
		cfg.CardEnrollmentPrice,
		cfg.CardEnrollmentAgentCommission,
		cfg.AgentCashLimitGlobal,
		cfg.MaxFailedPINAttempts,
		cfg.LastUpdatedAt,
		cfg.LastUpdatedBy,
	)
	return mapPgError(err, "failed to upsert platform config")
}

// PgxOutboxRepository is the transactional audit outbox.
type PgxOutboxRepository struct {
	BaseRepository
}

func newPgxOutboxRepository(pool *pgxpool.Pool) *PgxOutboxRepository {
	return &PgxOutboxRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditOutboxRepositoryFacade = (*PgxOutboxRepository)(nil)

func (r *PgxOutboxRepository) Append(ctx context.Context, rec domain.OutboxRecord) error {
	query := `
		INSERT INTO audit_outbox (outbox_id, event_type, partition_key, payload, attempts, created_at)
		VALUES ($1, $2, $3, $4, 0, $5);
	`
	_, err := r.db(ctx).Exec(ctx, query, rec.OutboxID, rec.EventType, rec.PartitionKey, rec.Payload, rec.CreatedAt)
	return mapPgError(err, "failed to append audit outbox record")
}

func (r *PgxOutboxRepository) FetchUnpublished(ctx context.Context, limit int) ([]domain.OutboxRecord, error) {
	query := `
		SELECT outbox_id, event_type, partition_key, payload, attempts, last_error, created_at, published_at
		FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY created_at, outbox_id
		LIMIT $1;
	`
	rows, err := r.db(ctx).Query(ctx, query, limit)
	if err != nil {
		return nil, mapPgError(err, "failed to fetch audit outbox")
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.OutboxRecord, error) {
		var rec domain.OutboxRecord
		err := row.Scan(
			&rec.OutboxID,
			&rec.EventType,
			&rec.PartitionKey,
			&rec.Payload,
			&rec.Attempts,
			&rec.LastError,
			&rec.CreatedAt,
			&rec.PublishedAt,
		)
		return rec, err
	})
	if err != nil {
		return nil, mapPgError(err, "failed to scan audit outbox")
	}
	return records, nil
}

func (r *PgxOutboxRepository) MarkPublished(ctx context.Context, outboxID string, at time.Time) error {
	tag, err := r.db(ctx).Exec(ctx, `UPDATE audit_outbox SET published_at = $2 WHERE outbox_id = $1;`, outboxID, at)
	if err != nil {
		return mapPgError(err, "failed to mark outbox record published")
	}
	if tag.RowsAffected() == 0 {
		return mapPgError(pgx.ErrNoRows, "failed to mark outbox record "+outboxID+" published")
	}
	return nil
}

func (r *PgxOutboxRepository) MarkFailed(ctx context.Context, outboxID string, reason string, at time.Time) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE audit_outbox SET attempts = attempts + 1, last_error = $2 WHERE outbox_id = $1;`,
		outboxID, reason)
	if err != nil {
		return mapPgError(err, "failed to mark outbox record failed")
	}
	if tag.RowsAffected() == 0 {
		return mapPgError(pgx.ErrNoRows, "failed to mark outbox record "+outboxID+" failed")
	}
	return nil
}

package memory

import (
	"context"
	"time"

	"github.com/SscSPs/mobile_money_core/internal/core/domain"
)

func (s *Store) FindByKey(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.idempotency[key]
	if !ok {
		return nil, notFound("idempotency key %s", key)
	}
	return &r, nil
}

func (s *Store) LockKey(ctx context.Context, key string) error {
	return s.acquire(ctx, "idem:"+key)
}

// InsertIfAbsent serializes writers of one key on a lock, the way a unique index
// makes a second inserter wait for the first to commit or roll back.
func (s *Store) InsertIfAbsent(ctx context.Context, record domain.IdempotencyRecord) (bool, error) {
	if err := s.acquire(ctx, "idem:"+record.IdempotencyKey); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.idempotency[record.IdempotencyKey]; ok {
		return false, nil
	}
	s.idempotency[record.IdempotencyKey] = record
	onRollback(ctx, func() { delete(s.idempotency, record.IdempotencyKey) })
	return true, nil
}

func (s *Store) GetFeeConfig(ctx context.Context, feeType domain.FeeType) (*domain.FeeConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.feeConfigs[feeType]
	if !ok {
		return nil, notFound("fee config %s", feeType)
	}
	return &cfg, nil
}

func (s *Store) UpsertFeeConfig(ctx context.Context, cfg domain.FeeConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, existed := s.feeConfigs[cfg.FeeType]
	s.feeConfigs[cfg.FeeType] = cfg
	onRollback(ctx, func() {
		if existed {
			s.feeConfigs[cfg.FeeType] = old
		} else {
			delete(s.feeConfigs, cfg.FeeType)
		}
	})
	return nil
}

func (s *Store) GetCommissionConfig(ctx context.Context, commissionType domain.CommissionType) (*domain.CommissionConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.commissions[commissionType]
	if !ok {
		return nil, notFound("commission config %s", commissionType)
	}
	return &cfg, nil
}

func (s *Store) UpsertCommissionConfig(ctx context.Context, cfg domain.CommissionConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, existed := s.commissions[cfg.CommissionType]
	s.commissions[cfg.CommissionType] = cfg
	onRollback(ctx, func() {
		if existed {
			s.commissions[cfg.CommissionType] = old
		} else {
			delete(s.commissions, cfg.CommissionType)
		}
	})
	return nil
}

func (s *Store) GetPlatformConfig(ctx context.Context) (*domain.PlatformConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.platform == nil {
		return nil, notFound("platform config")
	}
	cfg := *s.platform
	return &cfg, nil
}

func (s *Store) UpsertPlatformConfig(ctx context.Context, cfg domain.PlatformConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.platform
	s.platform = &cfg
	onRollback(ctx, func() { s.platform = old })
	return nil
}

func (s *Store) Append(ctx context.Context, record domain.OutboxRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox = append(s.outbox, record)
	onRollback(ctx, func() {
		kept := s.outbox[:0]
		for _, r := range s.outbox {
			if r.OutboxID != record.OutboxID {
				kept = append(kept, r)
			}
		}
		s.outbox = kept
	})
	return nil
}

func (s *Store) FetchUnpublished(ctx context.Context, limit int) ([]domain.OutboxRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.OutboxRecord
	for _, r := range s.outbox {
		if r.PublishedAt != nil {
			continue
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkPublished(ctx context.Context, outboxID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.outbox {
		if s.outbox[i].OutboxID == outboxID {
			s.outbox[i].PublishedAt = &at
			return nil
		}
	}
	return notFound("outbox record %s", outboxID)
}

func (s *Store) MarkFailed(ctx context.Context, outboxID string, reason string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.outbox {
		if s.outbox[i].OutboxID == outboxID {
			s.outbox[i].Attempts++
			s.outbox[i].LastError = &reason
			return nil
		}
	}
	return notFound("outbox record %s", outboxID)
}

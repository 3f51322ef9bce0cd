package pgsql

import (
	"time"

	portsrepo "github.com/SscSPs/mobile_money_core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every repository port to the pool. lockTimeout is
// applied to each unit of work with SET LOCAL lock_timeout.
func NewRepositoryProvider(dbPool *pgxpool.Pool, lockTimeout time.Duration) portsrepo.RepositoryProvider {
	settlementRepo := newPgxSettlementRepository(dbPool)

	return portsrepo.RepositoryProvider{
		TxManager:       newTxManager(dbPool, lockTimeout),
		LedgerRepo:      newPgxLedgerRepository(dbPool),
		ProfileRepo:     newPgxAccountProfileRepository(dbPool),
		PartyRepo:       newPgxPartyRepository(dbPool),
		CardRepo:        newPgxCardRepository(dbPool),
		PayoutRepo:      settlementRepo,
		RefundRepo:      settlementRepo,
		IdempotencyRepo: newPgxIdempotencyRepository(dbPool),
		ConfigRepo:      newPgxConfigRepository(dbPool),
		OutboxRepo:      newPgxOutboxRepository(dbPool),
	}
}

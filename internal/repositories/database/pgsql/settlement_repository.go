package pgsql

import (
	"context"

	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	portsrepo "github.com/SscSPs/mobile_money_core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxSettlementRepository stores agent payouts and client refunds, which share
// the settlement lifecycle columns.
type PgxSettlementRepository struct {
	BaseRepository
}

func newPgxSettlementRepository(pool *pgxpool.Pool) *PgxSettlementRepository {
	return &PgxSettlementRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var (
	_ portsrepo.PayoutRepositoryFacade       = (*PgxSettlementRepository)(nil)
	_ portsrepo.ClientRefundRepositoryFacade = (*PgxSettlementRepository)(nil)
)

const settlementColumns = `transaction_id, finalize_transaction_id, amount, status, created_at, completed_at, failed_at, failure_reason`

func settlementArgs(s domain.Settlement) []any {
	return []any{
		s.TransactionID,
		s.FinalizeTransactionID,
		s.Amount,
		s.Status,
		s.CreatedAt,
		s.CompletedAt,
		s.FailedAt,
		s.FailureReason,
	}
}

func settlementDest(s *domain.Settlement) []any {
	return []any{
		&s.TransactionID,
		&s.FinalizeTransactionID,
		&s.Amount,
		&s.Status,
		&s.CreatedAt,
		&s.CompletedAt,
		&s.FailedAt,
		&s.FailureReason,
	}
}

func scanPayout(row pgx.Row) (domain.Payout, error) {
	var p domain.Payout
	dest := append([]any{&p.PayoutID, &p.AgentID}, settlementDest(&p.Settlement)...)
	return p, row.Scan(dest...)
}

func scanClientRefund(row pgx.Row) (domain.ClientRefund, error) {
	var c domain.ClientRefund
	dest := append([]any{&c.RefundID, &c.ClientID}, settlementDest(&c.Settlement)...)
	return c, row.Scan(dest...)
}

func (r *PgxSettlementRepository) SavePayout(ctx context.Context, payout domain.Payout) error {
	query := `
		INSERT INTO payouts (payout_id, agent_id, ` + settlementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	args := append([]any{payout.PayoutID, payout.AgentID}, settlementArgs(payout.Settlement)...)
	_, err := r.db(ctx).Exec(ctx, query, args...)
	return mapPgError(err, "failed to save payout "+payout.PayoutID)
}

func (r *PgxSettlementRepository) FindPayoutByID(ctx context.Context, payoutID string) (*domain.Payout, error) {
	query := `SELECT payout_id, agent_id, ` + settlementColumns + ` FROM payouts WHERE payout_id = $1;`
	p, err := scanPayout(r.db(ctx).QueryRow(ctx, query, payoutID))
	if err != nil {
		return nil, mapPgError(err, "failed to find payout "+payoutID)
	}
	return &p, nil
}

func (r *PgxSettlementRepository) LockPayout(ctx context.Context, payoutID string) (*domain.Payout, error) {
	query := `SELECT payout_id, agent_id, ` + settlementColumns + ` FROM payouts WHERE payout_id = $1 FOR UPDATE;`
	p, err := scanPayout(r.db(ctx).QueryRow(ctx, query, payoutID))
	if err != nil {
		return nil, mapPgError(err, "failed to lock payout "+payoutID)
	}
	return &p, nil
}

func (r *PgxSettlementRepository) UpdatePayout(ctx context.Context, payout domain.Payout) error {
	query := `
		UPDATE payouts
		SET finalize_transaction_id = $2, status = $3, completed_at = $4, failed_at = $5, failure_reason = $6
		WHERE payout_id = $1;
	`
	return r.update(ctx, "failed to update payout "+payout.PayoutID, query, payout.PayoutID, payout.Settlement)
}

func (r *PgxSettlementRepository) SaveClientRefund(ctx context.Context, refund domain.ClientRefund) error {
	query := `
		INSERT INTO client_refunds (refund_id, client_id, ` + settlementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	args := append([]any{refund.RefundID, refund.ClientID}, settlementArgs(refund.Settlement)...)
	_, err := r.db(ctx).Exec(ctx, query, args...)
	return mapPgError(err, "failed to save client refund "+refund.RefundID)
}

func (r *PgxSettlementRepository) FindClientRefundByID(ctx context.Context, refundID string) (*domain.ClientRefund, error) {
	query := `SELECT refund_id, client_id, ` + settlementColumns + ` FROM client_refunds WHERE refund_id = $1;`
	c, err := scanClientRefund(r.db(ctx).QueryRow(ctx, query, refundID))
	if err != nil {
		return nil, mapPgError(err, "failed to find client refund "+refundID)
	}
	return &c, nil
}

func (r *PgxSettlementRepository) LockClientRefund(ctx context.Context, refundID string) (*domain.ClientRefund, error) {
	query := `SELECT refund_id, client_id, ` + settlementColumns + ` FROM client_refunds WHERE refund_id = $1 FOR UPDATE;`
	c, err := scanClientRefund(r.db(ctx).QueryRow(ctx, query, refundID))
	if err != nil {
		return nil, mapPgError(err, "failed to lock client refund "+refundID)
	}
	return &c, nil
}

func (r *PgxSettlementRepository) UpdateClientRefund(ctx context.Context, refund domain.ClientRefund) error {
	query := `
		UPDATE client_refunds
		SET finalize_transaction_id = $2, status = $3, completed_at = $4, failed_at = $5, failure_reason = $6
		WHERE refund_id = $1;
	`
	return r.update(ctx, "failed to update client refund "+refund.RefundID, query, refund.RefundID, refund.Settlement)
}

func (r *PgxSettlementRepository) ExistsRequestedPayoutForAgent(ctx context.Context, agentID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM payouts WHERE agent_id = $1 AND status = $2);`
	var exists bool
	if err := r.db(ctx).QueryRow(ctx, query, agentID, domain.SettlementRequested).Scan(&exists); err != nil {
		return false, mapPgError(err, "failed to check requested payout of agent "+agentID)
	}
	return exists, nil
}

func (r *PgxSettlementRepository) ExistsRequestedRefundForClient(ctx context.Context, clientID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM client_refunds WHERE client_id = $1 AND status = $2);`
	var exists bool
	if err := r.db(ctx).QueryRow(ctx, query, clientID, domain.SettlementRequested).Scan(&exists); err != nil {
		return false, mapPgError(err, "failed to check requested refund of client "+clientID)
	}
	return exists, nil
}

func (r *PgxSettlementRepository) update(ctx context.Context, op, query, id string, s domain.Settlement) error {
	tag, err := r.db(ctx).Exec(ctx, query, id, s.FinalizeTransactionID, s.Status, s.CompletedAt, s.FailedAt, s.FailureReason)
	if err != nil {
		return mapPgError(err, op)
	}
	if tag.RowsAffected() == 0 {
		return mapPgError(pgx.ErrNoRows, op)
	}
	return nil
}

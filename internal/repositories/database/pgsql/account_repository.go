package pgsql

import (
	"context"

	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	portsrepo "github.com/SscSPs/mobile_money_core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAccountProfileRepository struct {
	BaseRepository
}

func newPgxAccountProfileRepository(pool *pgxpool.Pool) *PgxAccountProfileRepository {
	return &PgxAccountProfileRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountProfileRepositoryFacade = (*PgxAccountProfileRepository)(nil)

const profileColumns = `account_type, owner_ref, status, created_at, created_by, last_updated_at, last_updated_by`

func scanProfile(row pgx.Row) (domain.AccountProfile, error) {
	var p domain.AccountProfile
	var createdBy string
	err := row.Scan(
		&p.Ref.Type,
		&p.Ref.OwnerRef,
		&p.Status,
		&p.CreatedAt,
		&createdBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	return p, err
}

func (r *PgxAccountProfileRepository) FindProfile(ctx context.Context, ref domain.AccountRef) (*domain.AccountProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM account_profiles WHERE account_type = $1 AND owner_ref = $2;`
	p, err := scanProfile(r.db(ctx).QueryRow(ctx, query, ref.Type, ref.OwnerRef))
	if err != nil {
		return nil, mapPgError(err, "failed to find account profile "+ref.String())
	}
	return &p, nil
}

func (r *PgxAccountProfileRepository) SaveProfile(ctx context.Context, profile domain.AccountProfile) error {
	query := `
		INSERT INTO account_profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		profile.Ref.Type,
		profile.Ref.OwnerRef,
		profile.Status,
		profile.CreatedAt,
		profile.LastUpdatedBy,
		profile.LastUpdatedAt,
		profile.LastUpdatedBy,
	)
	return mapPgError(err, "failed to save account profile "+profile.Ref.String())
}

// LockProfiles takes row locks one ref at a time in the order given; callers sort refs.
func (r *PgxAccountProfileRepository) LockProfiles(ctx context.Context, refs []domain.AccountRef) (map[string]domain.AccountProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM account_profiles WHERE account_type = $1 AND owner_ref = $2 FOR UPDATE;`
	out := make(map[string]domain.AccountProfile, len(refs))
	for _, ref := range refs {
		p, err := scanProfile(r.db(ctx).QueryRow(ctx, query, ref.Type, ref.OwnerRef))
		if err != nil {
			return nil, mapPgError(err, "failed to lock account profile "+ref.String())
		}
		out[ref.Key()] = p
	}
	return out, nil
}

// LockCashExposure takes a transaction-scoped advisory lock in its own key space,
// apart from idempotency key locks.
func (r *PgxAccountProfileRepository) LockCashExposure(ctx context.Context) error {
	if _, err := r.db(ctx).Exec(ctx, `SELECT pg_advisory_xact_lock($1, 0);`, advisoryCashExposure); err != nil {
		return mapPgError(err, "failed to lock cash exposure")
	}
	return nil
}

func (r *PgxAccountProfileRepository) UpdateProfileStatus(ctx context.Context, profile domain.AccountProfile) error {
	query := `
		UPDATE account_profiles
		SET status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE account_type = $1 AND owner_ref = $2;
	`
	tag, err := r.db(ctx).Exec(ctx, query,
		profile.Ref.Type,
		profile.Ref.OwnerRef,
		profile.Status,
		profile.LastUpdatedAt,
		profile.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, "failed to update account profile "+profile.Ref.String())
	}
	if tag.RowsAffected() == 0 {
		return mapPgError(pgx.ErrNoRows, "failed to update account profile "+profile.Ref.String())
	}
	return nil
}

// PgxPartyRepository stores clients, agents and merchants.
type PgxPartyRepository struct {
	BaseRepository
}

func newPgxPartyRepository(pool *pgxpool.Pool) *PgxPartyRepository {
	return &PgxPartyRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PartyRepositoryFacade = (*PgxPartyRepository)(nil)

func (r *PgxPartyRepository) SaveClient(ctx context.Context, client domain.Client) error {
	query := `
		INSERT INTO clients (client_id, display_name, phone, enrolled_by, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		client.ClientID,
		client.DisplayName,
		client.Phone,
		client.EnrolledBy,
		client.CreatedAt,
		client.CreatedBy,
		client.LastUpdatedAt,
		client.LastUpdatedBy,
	)
	return mapPgError(err, "failed to save client "+client.ClientID)
}

func (r *PgxPartyRepository) FindClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	query := `
		SELECT client_id, display_name, phone, enrolled_by, created_at, created_by, last_updated_at, last_updated_by
		FROM clients WHERE client_id = $1;
	`
	var c domain.Client
	err := r.db(ctx).QueryRow(ctx, query, clientID).Scan(
		&c.ClientID,
		&c.DisplayName,
		&c.Phone,
		&c.EnrolledBy,
		&c.CreatedAt,
		&c.CreatedBy,
		&c.LastUpdatedAt,
		&c.LastUpdatedBy,
	)
	if err != nil {
		return nil, mapPgError(err, "failed to find client "+clientID)
	}
	return &c, nil
}

func (r *PgxPartyRepository) SaveAgent(ctx context.Context, agent domain.Agent) error {
	query := `
		INSERT INTO agents (agent_id, display_name, phone, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		agent.AgentID,
		agent.DisplayName,
		agent.Phone,
		agent.CreatedAt,
		agent.CreatedBy,
		agent.LastUpdatedAt,
		agent.LastUpdatedBy,
	)
	return mapPgError(err, "failed to save agent "+agent.AgentID)
}

func (r *PgxPartyRepository) FindAgentByID(ctx context.Context, agentID string) (*domain.Agent, error) {
	query := `
		SELECT agent_id, display_name, phone, created_at, created_by, last_updated_at, last_updated_by
		FROM agents WHERE agent_id = $1;
	`
	var a domain.Agent
	err := r.db(ctx).QueryRow(ctx, query, agentID).Scan(
		&a.AgentID,
		&a.DisplayName,
		&a.Phone,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.LastUpdatedAt,
		&a.LastUpdatedBy,
	)
	if err != nil {
		return nil, mapPgError(err, "failed to find agent "+agentID)
	}
	return &a, nil
}

func (r *PgxPartyRepository) SaveMerchant(ctx context.Context, merchant domain.Merchant) error {
	query := `
		INSERT INTO merchants (merchant_id, display_name, phone, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		merchant.MerchantID,
		merchant.DisplayName,
		merchant.Phone,
		merchant.CreatedAt,
		merchant.CreatedBy,
		merchant.LastUpdatedAt,
		merchant.LastUpdatedBy,
	)
	return mapPgError(err, "failed to save merchant "+merchant.MerchantID)
}

func (r *PgxPartyRepository) FindMerchantByID(ctx context.Context, merchantID string) (*domain.Merchant, error) {
	query := `
		SELECT merchant_id, display_name, phone, created_at, created_by, last_updated_at, last_updated_by
		FROM merchants WHERE merchant_id = $1;
	`
	var m domain.Merchant
	err := r.db(ctx).QueryRow(ctx, query, merchantID).Scan(
		&m.MerchantID,
		&m.DisplayName,
		&m.Phone,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, mapPgError(err, "failed to find merchant "+merchantID)
	}
	return &m, nil
}

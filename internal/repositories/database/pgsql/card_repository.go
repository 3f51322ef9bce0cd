package pgsql

import (
	"context"

	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	portsrepo "github.com/SscSPs/mobile_money_core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCardRepository struct {
	BaseRepository
}

func newPgxCardRepository(pool *pgxpool.Pool) *PgxCardRepository {
	return &PgxCardRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CardRepositoryFacade = (*PgxCardRepository)(nil)

const cardColumns = `card_id, client_id, card_uid, hashed_pin, status, failed_pin_attempts, created_at, created_by, last_updated_at, last_updated_by`

func scanCard(row pgx.Row) (domain.Card, error) {
	var c domain.Card
	err := row.Scan(
		&c.CardID,
		&c.ClientID,
		&c.CardUID,
		&c.HashedPIN,
		&c.Status,
		&c.FailedPINAttempts,
		&c.CreatedAt,
		&c.CreatedBy,
		&c.LastUpdatedAt,
		&c.LastUpdatedBy,
	)
	return c, err
}

func (r *PgxCardRepository) findOne(ctx context.Context, op, query string, arg string) (*domain.Card, error) {
	c, err := scanCard(r.db(ctx).QueryRow(ctx, query, arg))
	if err != nil {
		return nil, mapPgError(err, op)
	}
	return &c, nil
}

func (r *PgxCardRepository) FindCardByID(ctx context.Context, cardID string) (*domain.Card, error) {
	return r.findOne(ctx, "failed to find card "+cardID,
		`SELECT `+cardColumns+` FROM cards WHERE card_id = $1;`, cardID)
}

func (r *PgxCardRepository) FindCardByUID(ctx context.Context, cardUID string) (*domain.Card, error) {
	return r.findOne(ctx, "failed to find card by uid",
		`SELECT `+cardColumns+` FROM cards WHERE card_uid = $1;`, cardUID)
}

func (r *PgxCardRepository) ExistsByCardUID(ctx context.Context, cardUID string) (bool, error) {
	var exists bool
	err := r.db(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM cards WHERE card_uid = $1);`, cardUID).Scan(&exists)
	if err != nil {
		return false, mapPgError(err, "failed to check card uid")
	}
	return exists, nil
}

func (r *PgxCardRepository) SaveCard(ctx context.Context, card domain.Card) error {
	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		card.CardID,
		card.ClientID,
		card.CardUID,
		card.HashedPIN,
		card.Status,
		card.FailedPINAttempts,
		card.CreatedAt,
		card.CreatedBy,
		card.LastUpdatedAt,
		card.LastUpdatedBy,
	)
	return mapPgError(err, "failed to save card "+card.CardID)
}

func (r *PgxCardRepository) LockCardByUID(ctx context.Context, cardUID string) (*domain.Card, error) {
	return r.findOne(ctx, "failed to lock card by uid",
		`SELECT `+cardColumns+` FROM cards WHERE card_uid = $1 FOR UPDATE;`, cardUID)
}

func (r *PgxCardRepository) LockCardByID(ctx context.Context, cardID string) (*domain.Card, error) {
	return r.findOne(ctx, "failed to lock card "+cardID,
		`SELECT `+cardColumns+` FROM cards WHERE card_id = $1 FOR UPDATE;`, cardID)
}

func (r *PgxCardRepository) UpdateCard(ctx context.Context, card domain.Card) error {
	query := `
		UPDATE cards
		SET status = $2, failed_pin_attempts = $3, last_updated_at = $4, last_updated_by = $5
		WHERE card_id = $1;
	`
	tag, err := r.db(ctx).Exec(ctx, query,
		card.CardID,
		card.Status,
		card.FailedPINAttempts,
		card.LastUpdatedAt,
		card.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, "failed to update card "+card.CardID)
	}
	if tag.RowsAffected() == 0 {
		return mapPgError(pgx.ErrNoRows, "failed to update card "+card.CardID)
	}
	return nil
}

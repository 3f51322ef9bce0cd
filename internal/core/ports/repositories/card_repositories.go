package repositories

import (
	"context"

	"github.com/SscSPs/mobile_money_core/internal/core/domain"
)

type CardReader interface {
	FindCardByID(ctx context.Context, cardID string) (*domain.Card, error)
	FindCardByUID(ctx context.Context, cardUID string) (*domain.Card, error)
	ExistsByCardUID(ctx context.Context, cardUID string) (bool, error)
}

type CardWriter interface {
	// SaveCard returns ErrDuplicate when the card UID is taken.
	SaveCard(ctx context.Context, card domain.Card) error
	// LockCardByUID locks the card row until the unit of work ends.
	LockCardByUID(ctx context.Context, cardUID string) (*domain.Card, error)
	LockCardByID(ctx context.Context, cardID string) (*domain.Card, error)
	UpdateCard(ctx context.Context, card domain.Card) error
}

type CardRepositoryFacade interface {
	CardReader
	CardWriter
}

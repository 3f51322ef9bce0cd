package memory

import (
	"context"

	"github.com/SscSPs/mobile_money_core/internal/core/domain"
)

func (s *Store) FindCardByID(ctx context.Context, cardID string) (*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[cardID]
	if !ok {
		return nil, notFound("card %s", cardID)
	}
	return &c, nil
}

func (s *Store) FindCardByUID(ctx context.Context, cardUID string) (*domain.Card, error) {
	s.mu.Lock()
	id, ok := s.cardByUID[cardUID]
	s.mu.Unlock()
	if !ok {
		return nil, notFound("card uid %s", cardUID)
	}
	return s.FindCardByID(ctx, id)
}

func (s *Store) ExistsByCardUID(ctx context.Context, cardUID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cardByUID[cardUID]
	return ok, nil
}

func (s *Store) SaveCard(ctx context.Context, card domain.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cardByUID[card.CardUID]; ok {
		return duplicate("card uid %s", card.CardUID)
	}
	s.cards[card.CardID] = card
	s.cardByUID[card.CardUID] = card.CardID
	onRollback(ctx, func() {
		delete(s.cards, card.CardID)
		delete(s.cardByUID, card.CardUID)
	})
	return nil
}

func (s *Store) LockCardByUID(ctx context.Context, cardUID string) (*domain.Card, error) {
	card, err := s.FindCardByUID(ctx, cardUID)
	if err != nil {
		return nil, err
	}
	return s.LockCardByID(ctx, card.CardID)
}

func (s *Store) LockCardByID(ctx context.Context, cardID string) (*domain.Card, error) {
	if _, err := s.FindCardByID(ctx, cardID); err != nil {
		return nil, err
	}
	if err := s.acquire(ctx, "card:"+cardID); err != nil {
		return nil, err
	}
	return s.FindCardByID(ctx, cardID)
}

func (s *Store) UpdateCard(ctx context.Context, card domain.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.cards[card.CardID]
	if !ok {
		return notFound("card %s", card.CardID)
	}
	s.cards[card.CardID] = card
	onRollback(ctx, func() { s.cards[card.CardID] = old })
	return nil
}

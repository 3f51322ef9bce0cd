package memory

import (
	"context"

	"github.com/SscSPs/mobile_money_core/internal/core/domain"
)

func (s *Store) SavePayout(ctx context.Context, payout domain.Payout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payouts[payout.PayoutID]; ok {
		return duplicate("payout %s", payout.PayoutID)
	}
	s.payouts[payout.PayoutID] = payout
	onRollback(ctx, func() { delete(s.payouts, payout.PayoutID) })
	return nil
}

func (s *Store) FindPayoutByID(ctx context.Context, payoutID string) (*domain.Payout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payouts[payoutID]
	if !ok {
		return nil, notFound("payout %s", payoutID)
	}
	return &p, nil
}

func (s *Store) LockPayout(ctx context.Context, payoutID string) (*domain.Payout, error) {
	if _, err := s.FindPayoutByID(ctx, payoutID); err != nil {
		return nil, err
	}
	if err := s.acquire(ctx, "payout:"+payoutID); err != nil {
		return nil, err
	}
	return s.FindPayoutByID(ctx, payoutID)
}

func (s *Store) UpdatePayout(ctx context.Context, payout domain.Payout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.payouts[payout.PayoutID]
	if !ok {
		return notFound("payout %s", payout.PayoutID)
	}
	s.payouts[payout.PayoutID] = payout
	onRollback(ctx, func() { s.payouts[payout.PayoutID] = old })
	return nil
}

func (s *Store) ExistsRequestedPayoutForAgent(ctx context.Context, agentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payouts {
		if p.AgentID == agentID && p.Status == domain.SettlementRequested {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) SaveClientRefund(ctx context.Context, refund domain.ClientRefund) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.refunds[refund.RefundID]; ok {
		return duplicate("client refund %s", refund.RefundID)
	}
	if refund.Status == domain.SettlementRequested && s.requestedRefundExists(refund.ClientID) {
		return duplicate("requested refund for client %s", refund.ClientID)
	}
	s.refunds[refund.RefundID] = refund
	onRollback(ctx, func() { delete(s.refunds, refund.RefundID) })
	return nil
}

func (s *Store) FindClientRefundByID(ctx context.Context, refundID string) (*domain.ClientRefund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.refunds[refundID]
	if !ok {
		return nil, notFound("client refund %s", refundID)
	}
	return &r, nil
}

func (s *Store) LockClientRefund(ctx context.Context, refundID string) (*domain.ClientRefund, error) {
	if _, err := s.FindClientRefundByID(ctx, refundID); err != nil {
		return nil, err
	}
	if err := s.acquire(ctx, "refund:"+refundID); err != nil {
		return nil, err
	}
	return s.FindClientRefundByID(ctx, refundID)
}

func (s *Store) UpdateClientRefund(ctx context.Context, refund domain.ClientRefund) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.refunds[refund.RefundID]
	if !ok {
		return notFound("client refund %s", refund.RefundID)
	}
	s.refunds[refund.RefundID] = refund
	onRollback(ctx, func() { s.refunds[refund.RefundID] = old })
	return nil
}

func (s *Store) ExistsRequestedRefundForClient(ctx context.Context, clientID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requestedRefundExists(clientID), nil
}

func (s *Store) requestedRefundExists(clientID string) bool {
	for _, r := range s.refunds {
		if r.ClientID == clientID && r.Status == domain.SettlementRequested {
			return true
		}
	}
	return false
}

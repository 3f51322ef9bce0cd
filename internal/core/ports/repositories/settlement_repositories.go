package repositories

import (
	"context"

	"github.com/SscSPs/mobile_money_core/internal/core/domain"
)

type PayoutRepositoryFacade interface {
	SavePayout(ctx context.Context, payout domain.Payout) error
	FindPayoutByID(ctx context.Context, payoutID string) (*domain.Payout, error)
	LockPayout(ctx context.Context, payoutID string) (*domain.Payout, error)
	UpdatePayout(ctx context.Context, payout domain.Payout) error
	ExistsRequestedPayoutForAgent(ctx context.Context, agentID string) (bool, error)
}

type ClientRefundRepositoryFacade interface {
	// SaveClientRefund returns ErrDuplicate if the client already has a REQUESTED refund.
	SaveClientRefund(ctx context.Context, refund domain.ClientRefund) error
	FindClientRefundByID(ctx context.Context, refundID string) (*domain.ClientRefund, error)
	LockClientRefund(ctx context.Context, refundID string) (*domain.ClientRefund, error)
	UpdateClientRefund(ctx context.Context, refund domain.ClientRefund) error
	ExistsRequestedRefundForClient(ctx context.Context, clientID string) (bool, error)
}

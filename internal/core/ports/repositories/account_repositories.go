package repositories

import (
	"context"

	"github.com/SscSPs/mobile_money_core/internal/core/domain"
)

// AccountProfileReader defines read operations for account profiles.
type AccountProfileReader interface {
	FindProfile(ctx context.Context, ref domain.AccountRef) (*domain.AccountProfile, error)
}

// AccountProfileWriter defines write and locking operations for account profiles.
type AccountProfileWriter interface {
	SaveProfile(ctx context.Context, profile domain.AccountProfile) error

	// LockProfiles acquires exclusive row locks on every ref in canonical order and
	// returns the locked profiles keyed by AccountRef.Key. Locks are held until the
	// unit of work ends; locking a ref twice in one unit of work is a no-op.
	// A missing profile yields ErrNotFound.
	LockProfiles(ctx context.Context, refs []domain.AccountRef) (map[string]domain.AccountProfile, error)

	// LockCashExposure holds the single aggregate cash exposure lock until the
	// unit of work ends. It is taken before any profile lock.
	LockCashExposure(ctx context.Context) error

	UpdateProfileStatus(ctx context.Context, profile domain.AccountProfile) error
}

type AccountProfileRepositoryFacade interface {
	AccountProfileReader
	AccountProfileWriter
}

// PartyRepositoryFacade stores clients, agents and merchants.
type PartyRepositoryFacade interface {
	SaveClient(ctx context.Context, client domain.Client) error
	FindClientByID(ctx context.Context, clientID string) (*domain.Client, error)
	SaveAgent(ctx context.Context, agent domain.Agent) error
	FindAgentByID(ctx context.Context, agentID string) (*domain.Agent, error)
	SaveMerchant(ctx context.Context, merchant domain.Merchant) error
	FindMerchantByID(ctx context.Context, merchantID string) (*domain.Merchant, error)
}

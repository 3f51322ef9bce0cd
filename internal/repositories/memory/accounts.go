package memory

import (
	"context"

	"github.com/SscSPs/mobile_money_core/internal/core/domain"
)

func (s *Store) FindProfile(ctx context.Context, ref domain.AccountRef) (*domain.AccountProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[ref.Key()]
	if !ok {
		return nil, notFound("account profile %s", ref)
	}
	return &p, nil
}

func (s *Store) SaveProfile(ctx context.Context, profile domain.AccountProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := profile.Ref.Key()
	if _, ok := s.profiles[key]; ok {
		return duplicate("account profile %s", profile.Ref)
	}
	s.profiles[key] = profile
	onRollback(ctx, func() { delete(s.profiles, key) })
	return nil
}

// LockProfiles locks refs in the order given; callers sort them.
func (s *Store) LockProfiles(ctx context.Context, refs []domain.AccountRef) (map[string]domain.AccountProfile, error) {
	out := make(map[string]domain.AccountProfile, len(refs))
	for _, ref := range refs {
		if _, err := s.FindProfile(ctx, ref); err != nil {
			return nil, err
		}
		if err := s.acquire(ctx, "profile:"+ref.Key()); err != nil {
			return nil, err
		}
		p, err := s.FindProfile(ctx, ref)
		if err != nil {
			return nil, err
		}
		out[ref.Key()] = *p
	}
	return out, nil
}

func (s *Store) LockCashExposure(ctx context.Context) error {
	return s.acquire(ctx, "cash-exposure")
}

func (s *Store) UpdateProfileStatus(ctx context.Context, profile domain.AccountProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := profile.Ref.Key()
	old, ok := s.profiles[key]
	if !ok {
		return notFound("account profile %s", profile.Ref)
	}
	updated := old
	updated.Status, updated.LastUpdatedAt, updated.LastUpdatedBy = profile.Status, profile.LastUpdatedAt, profile.LastUpdatedBy
	s.profiles[key] = updated
	onRollback(ctx, func() { s.profiles[key] = old })
	return nil
}

func (s *Store) SaveClient(ctx context.Context, client domain.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[client.ClientID]; ok {
		return duplicate("client %s", client.ClientID)
	}
	s.clients[client.ClientID] = client
	onRollback(ctx, func() { delete(s.clients, client.ClientID) })
	return nil
}

func (s *Store) FindClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[clientID]
	if !ok {
		return nil, notFound("client %s", clientID)
	}
	return &c, nil
}

func (s *Store) SaveAgent(ctx context.Context, agent domain.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agents[agent.AgentID]; ok {
		return duplicate("agent %s", agent.AgentID)
	}
	s.agents[agent.AgentID] = agent
	onRollback(ctx, func() { delete(s.agents, agent.AgentID) })
	return nil
}

func (s *Store) FindAgentByID(ctx context.Context, agentID string) (*domain.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[agentID]
	if !ok {
		return nil, notFound("agent %s", agentID)
	}
	return &a, nil
}

func (s *Store) SaveMerchant(ctx context.Context, merchant domain.Merchant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.merchants[merchant.MerchantID]; ok {
		return duplicate("merchant %s", merchant.MerchantID)
	}
	s.merchants[merchant.MerchantID] = merchant
	onRollback(ctx, func() { delete(s.merchants, merchant.MerchantID) })
	return nil
}

func (s *Store) FindMerchantByID(ctx context.Context, merchantID string) (*domain.Merchant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.merchants[merchantID]
	if !ok {
		return nil, notFound("merchant %s", merchantID)
	}
	return &m, nil
}

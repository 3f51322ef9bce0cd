package memory

import "github.com/SscSPs/mobile_money_core/internal/core/domain"

// TransactionCount returns the number of persisted transactions.
func (s *Store) TransactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transactions)
}

// EntryCount returns the number of persisted ledger entries.
func (s *Store) EntryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// OutboxRecords returns a copy of the outbox in append order.
func (s *Store) OutboxRecords() []domain.OutboxRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.OutboxRecord(nil), s.outbox...)
}

// Transactions returns every persisted transaction of the given type.
func (s *Store) Transactions(txnType domain.TransactionType) []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for _, t := range s.transactions {
		if t.Type == txnType {
			out = append(out, t)
		}
	}
	return out
}

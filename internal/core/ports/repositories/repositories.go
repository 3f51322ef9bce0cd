package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	TxManager       TransactionManager
	LedgerRepo      LedgerRepositoryFacade
	ProfileRepo     AccountProfileRepositoryFacade
	PartyRepo       PartyRepositoryFacade
	CardRepo        CardRepositoryFacade
	PayoutRepo      PayoutRepositoryFacade
	RefundRepo      ClientRefundRepositoryFacade
	IdempotencyRepo IdempotencyRepositoryFacade
	ConfigRepo      ConfigRepositoryFacade
	OutboxRepo      AuditOutboxRepositoryFacade
}

package repositories

import "context"

// TransactionManager runs a function inside one unit of work.
// Repositories called with the context passed to fn take part in it; nested
// calls join the outer unit of work. Returning an error rolls everything back.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

package shared

import "context"

// TransactionManager runs a function within a single database transaction.
// Repositories called inside fn observe the transaction through the context,
// so multi-aggregate writes (e.g. a payout record plus its ledger debit)
// either all commit or all roll back.
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Filter represents query filter options
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}
}

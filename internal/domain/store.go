package domain

import "context"

// Store aggregates the repositories behind a single transactional boundary.
type Store interface {
	Accounts() AccountRepository
	Issues() IssueRepository
	Comments() CommentRepository
	// InTx runs fn against a store whose repositories share one transaction.
	// If fn returns an error the transaction is rolled back and the error is
	// returned unchanged; otherwise the transaction commits.
	InTx(ctx context.Context, fn func(Store) error) error
}

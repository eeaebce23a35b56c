package mintbatch

import "context"

// RepositoryPort persists mint results. Append-only: no update or
// delete path exists by design of the reconciliation model.
type RepositoryPort interface {
	Create(ctx context.Context, m MintResult) (MintResult, error)
	GetByID(ctx context.Context, id string) (MintResult, error)
	ListByCollectionID(ctx context.Context, collectionID string) ([]MintResult, error)
}

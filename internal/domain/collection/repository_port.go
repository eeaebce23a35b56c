package collection

import "context"

// RepositoryPort persists collection records. Rows are write-once within
// the minting pipeline's scope.
type RepositoryPort interface {
	Create(ctx context.Context, c Collection) (Collection, error)
	GetByID(ctx context.Context, id string) (Collection, error)
}

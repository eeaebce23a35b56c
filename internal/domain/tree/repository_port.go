package tree

import "context"

// RepositoryPort persists allocated tree accounts. Rows are write-once;
// there is no update path because an allocated tree is immutable.
type RepositoryPort interface {
	Create(ctx context.Context, t Tree) (Tree, error)
	GetByAddress(ctx context.Context, address string) (Tree, error)
	ListByCollectionID(ctx context.Context, collectionID string) ([]Tree, error)
}

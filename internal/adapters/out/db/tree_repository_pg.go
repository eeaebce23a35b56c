package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	dbcommon "mintpress/internal/adapters/out/db/common"
	tdom "mintpress/internal/domain/tree"
)

type TreeRepositoryPG struct {
	DB *sql.DB
}

func NewTreeRepositoryPG(db *sql.DB) *TreeRepositoryPG {
	return &TreeRepositoryPG{DB: db}
}

// ========================================
// RepositoryPort implementation
// ========================================

func (r *TreeRepositoryPG) Create(ctx context.Context, t tdom.Tree) (tdom.Tree, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	const q = `
INSERT INTO trees (
  address, authority_secret, collection_id,
  depth, buffer_size, canopy_depth, cost_lamports,
  created_by, created_at
) VALUES (
  $1, $2, $3, $4, $5, $6, $7, $8, $9
)
RETURNING
  address, authority_secret, collection_id,
  depth, buffer_size, canopy_depth, cost_lamports,
  created_by, created_at
`
	row := run.QueryRowContext(ctx, q,
		t.Address, t.AuthoritySecret, t.CollectionID,
		t.Depth, t.BufferSize, t.CanopyDepth, t.CostLamports,
		t.CreatedBy, t.CreatedAt,
	)
	out, err := scanTree(row)
	if err != nil {
		return tdom.Tree{}, err
	}
	return out, nil
}

func (r *TreeRepositoryPG) GetByAddress(ctx context.Context, address string) (tdom.Tree, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	const q = `
SELECT
  address, authority_secret, collection_id,
  depth, buffer_size, canopy_depth, cost_lamports,
  created_by, created_at
FROM trees
WHERE address = $1
LIMIT 1`
	row := run.QueryRowContext(ctx, q, strings.TrimSpace(address))
	out, err := scanTree(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tdom.Tree{}, tdom.ErrNotFound
		}
		return tdom.Tree{}, err
	}
	return out, nil
}

func (r *TreeRepositoryPG) ListByCollectionID(ctx context.Context, collectionID string) ([]tdom.Tree, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	const q = `
SELECT
  address, authority_secret, collection_id,
  depth, buffer_size, canopy_depth, cost_lamports,
  created_by, created_at
FROM trees
WHERE collection_id = $1
ORDER BY created_at DESC, address ASC`
	rows, err := run.QueryContext(ctx, q, strings.TrimSpace(collectionID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []tdom.Tree
	for rows.Next() {
		t, err := scanTree(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ========================================
// Helpers
// ========================================

func scanTree(s dbcommon.RowScanner) (tdom.Tree, error) {
	var (
		t         tdom.Tree
		createdAt time.Time
	)
	if err := s.Scan(
		&t.Address, &t.AuthoritySecret, &t.CollectionID,
		&t.Depth, &t.BufferSize, &t.CanopyDepth, &t.CostLamports,
		&t.CreatedBy, &createdAt,
	); err != nil {
		return tdom.Tree{}, err
	}
	t.CreatedAt = createdAt.UTC()
	return t, nil
}

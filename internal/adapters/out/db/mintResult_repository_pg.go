package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"

	dbcommon "mintpress/internal/adapters/out/db/common"
	mdom "mintpress/internal/domain/mintbatch"
)

type MintResultRepositoryPG struct {
	DB *sql.DB
}

func NewMintResultRepositoryPG(db *sql.DB) *MintResultRepositoryPG {
	return &MintResultRepositoryPG{DB: db}
}

// ========================================
// RepositoryPort implementation
// ========================================

func (r *MintResultRepositoryPG) Create(ctx context.Context, m mdom.MintResult) (mdom.MintResult, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	const q = `
INSERT INTO mint_results (
  id, collection_id, signatures, created_by, created_at
) VALUES (
  $1, $2, $3, $4, $5
)
RETURNING
  id, collection_id, signatures, created_by, created_at
`
	row := run.QueryRowContext(ctx, q,
		m.ID, m.CollectionID, pq.Array(m.Signatures), m.CreatedBy, m.CreatedAt,
	)
	out, err := scanMintResult(row)
	if err != nil {
		return mdom.MintResult{}, err
	}
	return out, nil
}

func (r *MintResultRepositoryPG) GetByID(ctx context.Context, id string) (mdom.MintResult, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	const q = `
SELECT
  id, collection_id, signatures, created_by, created_at
FROM mint_results
WHERE id = $1
LIMIT 1`
	row := run.QueryRowContext(ctx, q, strings.TrimSpace(id))
	out, err := scanMintResult(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return mdom.MintResult{}, mdom.ErrNotFound
		}
		return mdom.MintResult{}, err
	}
	return out, nil
}

func (r *MintResultRepositoryPG) ListByCollectionID(ctx context.Context, collectionID string) ([]mdom.MintResult, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	const q = `
SELECT
  id, collection_id, signatures, created_by, created_at
FROM mint_results
WHERE collection_id = $1
ORDER BY created_at DESC, id ASC`
	rows, err := run.QueryContext(ctx, q, strings.TrimSpace(collectionID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []mdom.MintResult
	for rows.Next() {
		m, err := scanMintResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ========================================
// Helpers
// ========================================

func scanMintResult(s dbcommon.RowScanner) (mdom.MintResult, error) {
	var (
		m          mdom.MintResult
		signatures []string
		createdAt  time.Time
	)
	if err := s.Scan(
		&m.ID, &m.CollectionID, pq.Array(&signatures), &m.CreatedBy, &createdAt,
	); err != nil {
		return mdom.MintResult{}, err
	}
	m.Signatures = signatures
	m.CreatedAt = createdAt.UTC()
	return m, nil
}

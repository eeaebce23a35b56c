package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	dbcommon "mintpress/internal/adapters/out/db/common"
	cdom "mintpress/internal/domain/collection"
)

type CollectionRepositoryPG struct {
	DB *sql.DB
}

func NewCollectionRepositoryPG(db *sql.DB) *CollectionRepositoryPG {
	return &CollectionRepositoryPG{DB: db}
}

// ========================================
// RepositoryPort implementation
// ========================================

func (r *CollectionRepositoryPG) Create(ctx context.Context, c cdom.Collection) (cdom.Collection, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	const q = `
INSERT INTO collections (
  id, name, symbol, image_uri, metadata_uri,
  mint_address, metadata_account, master_edition_account,
  creator_address, created_by, created_at
) VALUES (
  $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
)
RETURNING
  id, name, symbol, image_uri, metadata_uri,
  mint_address, metadata_account, master_edition_account,
  creator_address, created_by, created_at
`
	row := run.QueryRowContext(ctx, q,
		c.ID, c.Name, c.Symbol, c.ImageURI, c.MetadataURI,
		c.MintAddress, c.MetadataAccount, c.MasterEditionAccount,
		c.CreatorAddress, c.CreatedBy, c.CreatedAt,
	)
	out, err := scanCollection(row)
	if err != nil {
		if dbcommon.IsUniqueViolation(err) {
			return cdom.Collection{}, cdom.ErrConflict
		}
		return cdom.Collection{}, err
	}
	return out, nil
}

func (r *CollectionRepositoryPG) GetByID(ctx context.Context, id string) (cdom.Collection, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	const q = `
SELECT
  id, name, symbol, image_uri, metadata_uri,
  mint_address, metadata_account, master_edition_account,
  creator_address, created_by, created_at
FROM collections
WHERE id = $1
LIMIT 1`
	row := run.QueryRowContext(ctx, q, strings.TrimSpace(id))
	out, err := scanCollection(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cdom.Collection{}, cdom.ErrNotFound
		}
		return cdom.Collection{}, err
	}
	return out, nil
}

// ========================================
// Helpers
// ========================================

func scanCollection(s dbcommon.RowScanner) (cdom.Collection, error) {
	var (
		c         cdom.Collection
		imageURI  sql.NullString
		metaURI   sql.NullString
		createdAt time.Time
	)
	if err := s.Scan(
		&c.ID, &c.Name, &c.Symbol, &imageURI, &metaURI,
		&c.MintAddress, &c.MetadataAccount, &c.MasterEditionAccount,
		&c.CreatorAddress, &c.CreatedBy, &createdAt,
	); err != nil {
		return cdom.Collection{}, err
	}
	c.ImageURI = imageURI.String
	c.MetadataURI = metaURI.String
	c.CreatedAt = createdAt.UTC()
	return c, nil
}

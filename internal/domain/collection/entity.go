package collection

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidID            = errors.New("collection: invalid id")
	ErrInvalidName          = errors.New("collection: invalid name")
	ErrInvalidSymbol        = errors.New("collection: invalid symbol")
	ErrInvalidMintAddress   = errors.New("collection: invalid mint address")
	ErrInvalidMetadata      = errors.New("collection: invalid metadata account")
	ErrInvalidMasterEdition = errors.New("collection: invalid master edition account")
	ErrInvalidCreator       = errors.New("collection: invalid creator address")
	ErrInvalidCreatedBy     = errors.New("collection: invalid createdBy")
	ErrNotFound             = errors.New("collection: not found")
	ErrConflict             = errors.New("collection: conflict")
)

// Collection is the application-side record of an on-chain NFT collection:
// the token mint plus its metadata and master-edition accounts. Created
// exactly once per successful registration and immutable afterwards.
type Collection struct {
	ID                   string
	Name                 string
	Symbol               string
	ImageURI             string
	MetadataURI          string
	MintAddress          string
	MetadataAccount      string
	MasterEditionAccount string
	CreatorAddress       string
	CreatedBy            string
	CreatedAt            time.Time
}

// New validates and constructs a Collection record.
func New(
	id, name, symbol string,
	imageURI, metadataURI string,
	mintAddress, metadataAccount, masterEditionAccount string,
	creatorAddress string,
	createdBy string,
	createdAt time.Time,
) (Collection, error) {
	c := Collection{
		ID:                   strings.TrimSpace(id),
		Name:                 strings.TrimSpace(name),
		Symbol:               strings.TrimSpace(symbol),
		ImageURI:             strings.TrimSpace(imageURI),
		MetadataURI:          strings.TrimSpace(metadataURI),
		MintAddress:          strings.TrimSpace(mintAddress),
		MetadataAccount:      strings.TrimSpace(metadataAccount),
		MasterEditionAccount: strings.TrimSpace(masterEditionAccount),
		CreatorAddress:       strings.TrimSpace(creatorAddress),
		CreatedBy:            strings.TrimSpace(createdBy),
		CreatedAt:            createdAt.UTC(),
	}
	if err := c.validate(); err != nil {
		return Collection{}, err
	}
	return c, nil
}

func (c Collection) validate() error {
	if c.ID == "" {
		return ErrInvalidID
	}
	if c.Name == "" {
		return ErrInvalidName
	}
	if c.Symbol == "" {
		return ErrInvalidSymbol
	}
	if c.MintAddress == "" {
		return ErrInvalidMintAddress
	}
	if c.MetadataAccount == "" {
		return ErrInvalidMetadata
	}
	if c.MasterEditionAccount == "" {
		return ErrInvalidMasterEdition
	}
	if c.CreatorAddress == "" {
		return ErrInvalidCreator
	}
	if c.CreatedBy == "" {
		return ErrInvalidCreatedBy
	}
	return nil
}

// CollectionsTableDDL defines the SQL for the collections table migration.
const CollectionsTableDDL = `
CREATE TABLE IF NOT EXISTS collections (
  id UUID PRIMARY KEY,
  name TEXT NOT NULL,
  symbol TEXT NOT NULL,
  image_uri TEXT,
  metadata_uri TEXT,
  mint_address TEXT NOT NULL UNIQUE,
  metadata_account TEXT NOT NULL,
  master_edition_account TEXT NOT NULL,
  creator_address TEXT NOT NULL,
  created_by TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL,

  CONSTRAINT chk_collections_non_empty CHECK (
    char_length(trim(name)) > 0
    AND char_length(trim(symbol)) > 0
    AND char_length(trim(mint_address)) > 0
  )
);

CREATE INDEX IF NOT EXISTS idx_collections_created_by ON collections(created_by);
CREATE INDEX IF NOT EXISTS idx_collections_created_at ON collections(created_at);
`

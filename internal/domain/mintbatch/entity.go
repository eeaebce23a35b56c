package mintbatch

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mr-tron/base58"
)

var (
	ErrInvalidItemCount  = errors.New("mintbatch: item count does not match items")
	ErrNoItems           = errors.New("mintbatch: at least one item is required")
	ErrInvalidName       = errors.New("mintbatch: invalid name")
	ErrInvalidSymbol     = errors.New("mintbatch: invalid symbol")
	ErrInvalidImageRef   = errors.New("mintbatch: invalid image reference")
	ErrInvalidAddress    = errors.New("mintbatch: invalid recipient address")
	ErrInvalidID         = errors.New("mintbatch: invalid id")
	ErrInvalidCollection = errors.New("mintbatch: invalid collectionId")
	ErrNoSignatures      = errors.New("mintbatch: at least one signature is required")
	ErrInvalidCreatedBy  = errors.New("mintbatch: invalid createdBy")
	ErrNotFound          = errors.New("mintbatch: not found")
)

// CollectionInput is the collection descriptor of a batch request.
type CollectionInput struct {
	Name      string
	Symbol    string
	ItemCount int
	// MintAllTo is the default recipient for items without an override.
	MintAllTo string
	// ImageRef optionally carries collection artwork to upload before
	// registration (base64 payload or an already-public URL).
	ImageRef string
}

// ItemInput describes one item to mint. Recipient, when set, overrides
// the collection-level MintAllTo address.
type ItemInput struct {
	Name        string
	Symbol      string
	Description string
	ImageRef    string
	Recipient   *string
}

// BatchRequest is the validated input of one pipeline run.
type BatchRequest struct {
	Collection CollectionInput
	Items      []ItemInput
}

// Validate enforces the request invariants: declared count equals the
// item sequence length, and every recipient address parses as a 32-byte
// base58 public key.
func (r BatchRequest) Validate() error {
	if len(r.Items) == 0 {
		return ErrNoItems
	}
	if r.Collection.ItemCount != len(r.Items) {
		return fmt.Errorf("%w: declared=%d actual=%d",
			ErrInvalidItemCount, r.Collection.ItemCount, len(r.Items))
	}
	if strings.TrimSpace(r.Collection.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(r.Collection.Symbol) == "" {
		return ErrInvalidSymbol
	}
	if err := ValidateAddress(r.Collection.MintAllTo); err != nil {
		return err
	}
	for i, it := range r.Items {
		if strings.TrimSpace(it.Name) == "" {
			return fmt.Errorf("%w: item %d", ErrInvalidName, i)
		}
		if strings.TrimSpace(it.Symbol) == "" {
			return fmt.Errorf("%w: item %d", ErrInvalidSymbol, i)
		}
		if strings.TrimSpace(it.ImageRef) == "" {
			return fmt.Errorf("%w: item %d", ErrInvalidImageRef, i)
		}
		if it.Recipient != nil {
			if err := ValidateAddress(*it.Recipient); err != nil {
				return fmt.Errorf("%w (item %d)", ErrInvalidAddress, i)
			}
		}
	}
	return nil
}

// RecipientAt resolves the effective recipient for item index i.
func (r BatchRequest) RecipientAt(i int) string {
	if i >= 0 && i < len(r.Items) && r.Items[i].Recipient != nil {
		if v := strings.TrimSpace(*r.Items[i].Recipient); v != "" {
			return v
		}
	}
	return strings.TrimSpace(r.Collection.MintAllTo)
}

// ValidateAddress checks that s decodes as a 32-byte base58 public key.
func ValidateAddress(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return ErrInvalidAddress
	}
	raw, err := base58.Decode(s)
	if err != nil || len(raw) != 32 {
		return ErrInvalidAddress
	}
	return nil
}

// MintResult records the transaction signatures of one completed batch.
// Signatures are index-aligned with the request's item sequence.
// Append-only.
type MintResult struct {
	ID           string
	CollectionID string
	Signatures   []string
	CreatedBy    string
	CreatedAt    time.Time
}

// NewMintResult validates and constructs a MintResult.
func NewMintResult(id, collectionID string, signatures []string, createdBy string, createdAt time.Time) (MintResult, error) {
	m := MintResult{
		ID:           strings.TrimSpace(id),
		CollectionID: strings.TrimSpace(collectionID),
		Signatures:   signatures,
		CreatedBy:    strings.TrimSpace(createdBy),
		CreatedAt:    createdAt.UTC(),
	}
	if m.ID == "" {
		return MintResult{}, ErrInvalidID
	}
	if m.CollectionID == "" {
		return MintResult{}, ErrInvalidCollection
	}
	if len(m.Signatures) == 0 {
		return MintResult{}, ErrNoSignatures
	}
	for _, s := range m.Signatures {
		if strings.TrimSpace(s) == "" {
			return MintResult{}, ErrNoSignatures
		}
	}
	if m.CreatedBy == "" {
		return MintResult{}, ErrInvalidCreatedBy
	}
	return m, nil
}

// MintResultsTableDDL defines the SQL for the mint_results table migration.
const MintResultsTableDDL = `
CREATE TABLE IF NOT EXISTS mint_results (
  id UUID PRIMARY KEY,
  collection_id UUID NOT NULL REFERENCES collections(id) ON DELETE RESTRICT,
  signatures TEXT[] NOT NULL CHECK (array_length(signatures, 1) > 0),
  created_by TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_mint_results_collection_id ON mint_results(collection_id);
CREATE INDEX IF NOT EXISTS idx_mint_results_created_by    ON mint_results(created_by);
CREATE INDEX IF NOT EXISTS idx_mint_results_created_at    ON mint_results(created_at);
`

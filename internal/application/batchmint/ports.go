package batchmint

import (
	"context"

	"mintpress/internal/domain/tree"
)

// Payer is the funding identity of one pipeline run, passed explicitly
// through every ledger call. The secret key never leaves the ledger
// adapter; the pipeline only handles the public address.
type Payer struct {
	Address string
}

// CreateTreeInput carries the sizing parameters for allocating a
// concurrent merkle tree account on the ledger.
type CreateTreeInput struct {
	Sizing        tree.Sizing
	RequiredBytes uint64
	Lamports      uint64
}

// CreateTreeResult is the outcome of a confirmed tree allocation.
// AuthoritySecret is the base64 keypair of the fresh tree account.
type CreateTreeResult struct {
	TreeAddress     string
	AuthoritySecret string
	Signature       string
}

// CreateCollectionInput carries the collection-level metadata for the
// registration transaction.
type CreateCollectionInput struct {
	Name                 string
	Symbol               string
	MetadataURI          string
	SellerFeeBasisPoints uint16
	CreatorAddress       string
}

// CollectionLedgerIDs are the three accounts a registered collection
// lives in on the ledger.
type CollectionLedgerIDs struct {
	MintAddress          string
	MetadataAccount      string
	MasterEditionAccount string
	Signature            string
}

// ItemMetadata is the per-item metadata submitted with each compressed
// mint instruction.
type ItemMetadata struct {
	Name   string
	Symbol string
	URI    string
}

// MintCompressedInput mints one item as a leaf of the allocated tree.
type MintCompressedInput struct {
	TreeAddress string
	Collection  CollectionLedgerIDs
	Metadata    ItemMetadata
	Recipient   string
}

// LedgerPort is the boundary to the underlying ledger. Instruction
// building, signing and encoding are the adapter's concern; the pipeline
// only sees addresses and signatures.
type LedgerPort interface {
	Balance(ctx context.Context, address string) (uint64, error)
	MinimumRentExemptBalance(ctx context.Context, sizeBytes uint64) (uint64, error)
	CreateTree(ctx context.Context, payer Payer, in CreateTreeInput) (CreateTreeResult, error)
	CreateCollection(ctx context.Context, payer Payer, in CreateCollectionInput) (CollectionLedgerIDs, error)
	MintCompressed(ctx context.Context, payer Payer, in MintCompressedInput) (string, error)
}

// BlobStore uploads raw bytes and returns a public URL.
type BlobStore interface {
	PutObject(ctx context.Context, data []byte, contentType string) (string, error)
}

// ReconcileLog records intent/confirmation pairs around irreversible
// ledger calls so a background sweep can flag intents that never got a
// confirmation. An intent write failure aborts the pipeline before the
// mutation; a confirmation write failure is logged and swallowed.
type ReconcileLog interface {
	Intent(ctx context.Context, stage Stage, refs map[string]string) (string, error)
	Confirm(ctx context.Context, intentID string, refs map[string]string) error
}

// TxRunner groups repository writes into one atomic unit. A nil runner
// degrades to non-transactional writes (used by tests with fakes).
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier reports a completed batch to the requesting user.
// Best-effort: failures never abort the pipeline.
type Notifier interface {
	BatchMinted(ctx context.Context, recipientEmail, collectionName string, minted int, signatures []string) error
}

package batchmint

import (
	"context"
	"log"
	"strings"
	"time"

	"mintpress/internal/domain/mintbatch"
)

// Royalty taken on collection-level metadata, in basis points.
const collectionSellerFeeBasisPoints = 100

// Registrar issues the ledger transaction that creates the collection's
// token mint, metadata account and master edition. Irreversible once
// confirmed, same as allocation.
type Registrar struct {
	Ledger    LedgerPort
	Reconcile ReconcileLog
}

// Register creates the collection on the ledger. The collection record
// references no parent collection: this call creates the collection
// itself.
func (r Registrar) Register(ctx context.Context, payer Payer, in mintbatch.CollectionInput, metadataURI string) (CollectionLedgerIDs, error) {
	intentID, err := r.Reconcile.Intent(ctx, StageRegistering, map[string]string{
		"payer":  payer.Address,
		"name":   strings.TrimSpace(in.Name),
		"symbol": strings.TrimSpace(in.Symbol),
	})
	if err != nil {
		return CollectionLedgerIDs{}, stageErr(StageRegistering, CodeRegistrationFailed, err)
	}

	start := time.Now()
	ids, err := r.Ledger.CreateCollection(ctx, payer, CreateCollectionInput{
		Name:                 strings.TrimSpace(in.Name),
		Symbol:               strings.TrimSpace(in.Symbol),
		MetadataURI:          metadataURI,
		SellerFeeBasisPoints: collectionSellerFeeBasisPoints,
		CreatorAddress:       strings.TrimSpace(in.MintAllTo),
	})
	if err != nil {
		return CollectionLedgerIDs{}, stageErr(StageRegistering, CodeRegistrationFailed, err)
	}

	if cerr := r.Reconcile.Confirm(ctx, intentID, map[string]string{
		"mintAddress": ids.MintAddress,
		"signature":   ids.Signature,
	}); cerr != nil {
		log.Printf("[registrar] WARN: confirm write failed intentId=%s mint=%s err=%v",
			intentID, ids.MintAddress, cerr)
	}

	log.Printf("[registrar] collection registered mint=%s metadata=%s edition=%s elapsed=%s",
		ids.MintAddress, ids.MetadataAccount, ids.MasterEditionAccount, time.Since(start))
	return ids, nil
}

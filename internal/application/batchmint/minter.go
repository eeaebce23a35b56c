package batchmint

import (
	"context"
	"log"
	"strings"
	"time"

	"mintpress/internal/domain/mintbatch"
)

// Minter drives the per-item compressed mints. Items are minted strictly
// in order, one transaction each; the first failure stops the batch and
// reports how far it got.
type Minter struct {
	Ledger LedgerPort
}

// MintAll mints every item into the allocated tree under the registered
// collection. The returned signatures are index-aligned with the items;
// on error the StageError carries the failing index and the signatures
// collected so far.
func (m Minter) MintAll(ctx context.Context, payer Payer, treeAddress string, col CollectionLedgerIDs, items []mintbatch.ItemInput, metadataURIs []string, fallbackRecipient string) ([]string, error) {
	start := time.Now()
	signatures := make([]string, 0, len(items))

	for i, it := range items {
		recipient := fallbackRecipient
		if it.Recipient != nil && strings.TrimSpace(*it.Recipient) != "" {
			recipient = strings.TrimSpace(*it.Recipient)
		}

		sig, err := m.Ledger.MintCompressed(ctx, payer, MintCompressedInput{
			TreeAddress: treeAddress,
			Collection:  col,
			Metadata: ItemMetadata{
				Name:   strings.TrimSpace(it.Name),
				Symbol: strings.TrimSpace(it.Symbol),
				URI:    metadataURIs[i],
			},
			Recipient: recipient,
		})
		if err != nil {
			serr := stageErr(StageMinting, CodeMintFailed, err)
			serr.Index = i
			serr.Signatures = append([]string(nil), signatures...)
			serr.TreeAddress = treeAddress
			serr.CollectionMint = col.MintAddress
			log.Printf("[minter] mint failed index=%d tree=%s minted=%d err=%v",
				i, treeAddress, len(signatures), err)
			return signatures, serr
		}
		signatures = append(signatures, sig)
	}

	log.Printf("[minter] batch minted count=%d tree=%s elapsed=%s",
		len(signatures), treeAddress, time.Since(start))
	return signatures, nil
}

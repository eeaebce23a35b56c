package batchmint

import (
	"context"
	"fmt"
	"log"
	"time"

	"mintpress/internal/domain/tree"
)

// Allocator issues the single ledger transaction that creates and
// initializes the merkle tree account. The mutation is irreversible once
// confirmed; there is no rollback path.
type Allocator struct {
	Ledger    LedgerPort
	Reconcile ReconcileLog
}

// Allocate creates the tree account on the ledger. On failure no tree is
// considered to exist and the pipeline must not proceed.
func (a Allocator) Allocate(ctx context.Context, payer Payer, sizing tree.Sizing, est Estimate) (CreateTreeResult, error) {
	intentID, err := a.Reconcile.Intent(ctx, StageAllocating, map[string]string{
		"payer": payer.Address,
		"depth": fmt.Sprint(sizing.Depth),
		"bytes": fmt.Sprint(est.RequiredBytes),
	})
	if err != nil {
		// No mutation happened yet; failing closed here is safe.
		return CreateTreeResult{}, stageErr(StageAllocating, CodeAllocationFailed,
			fmt.Errorf("write allocation intent: %w", err))
	}

	start := time.Now()
	res, err := a.Ledger.CreateTree(ctx, payer, CreateTreeInput{
		Sizing:        sizing,
		RequiredBytes: est.RequiredBytes,
		Lamports:      est.RequiredBalance,
	})
	if err != nil {
		return CreateTreeResult{}, stageErr(StageAllocating, CodeAllocationFailed, err)
	}

	if cerr := a.Reconcile.Confirm(ctx, intentID, map[string]string{
		"treeAddress": res.TreeAddress,
		"signature":   res.Signature,
	}); cerr != nil {
		log.Printf("[allocator] WARN: confirm write failed intentId=%s tree=%s err=%v",
			intentID, res.TreeAddress, cerr)
	}

	log.Printf("[allocator] tree allocated address=%s depth=%d lamports=%d elapsed=%s",
		res.TreeAddress, sizing.Depth, est.RequiredBalance, time.Since(start))
	return res, nil
}

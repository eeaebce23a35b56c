package batchmint

import (
	"context"
	"fmt"
	"log"

	"mintpress/internal/domain/tree"
)

// Estimate is the provisioning requirement for one sizing decision.
type Estimate struct {
	RequiredBytes   uint64
	RequiredBalance uint64
}

// Estimator computes the storage size for a sizing decision and asks the
// ledger for the rent-exempt minimum. The only side effect is read-only
// ledger queries.
type Estimator struct {
	Ledger LedgerPort
}

// Estimate derives the byte size locally and fetches the rent-exempt
// balance for it from the ledger.
func (e Estimator) Estimate(ctx context.Context, sizing tree.Sizing) (Estimate, error) {
	requiredBytes := tree.AccountSize(sizing.Depth, sizing.BufferSize, sizing.CanopyDepth)

	balance, err := e.Ledger.MinimumRentExemptBalance(ctx, requiredBytes)
	if err != nil {
		return Estimate{}, stageErr(StageEstimating, CodeLedgerUnavailable,
			fmt.Errorf("rent exemption query: %w", err))
	}

	log.Printf("[estimator] requiredBytes=%d requiredBalance=%d depth=%d canopy=%d",
		requiredBytes, balance, sizing.Depth, sizing.CanopyDepth)

	return Estimate{RequiredBytes: requiredBytes, RequiredBalance: balance}, nil
}

// VerifyFunds checks the payer's balance against the estimate. It must
// run, and pass, before the first ledger mutation.
func (e Estimator) VerifyFunds(ctx context.Context, payer Payer, est Estimate) error {
	balance, err := e.Ledger.Balance(ctx, payer.Address)
	if err != nil {
		return stageErr(StageEstimating, CodeLedgerUnavailable,
			fmt.Errorf("balance query: %w", err))
	}

	log.Printf("[estimator] payer=%s balance=%d required=%d", payer.Address, balance, est.RequiredBalance)

	if balance < est.RequiredBalance {
		return stageErr(StageEstimating, CodeInsufficientFunds,
			fmt.Errorf("payer balance %d below required %d", balance, est.RequiredBalance))
	}
	return nil
}

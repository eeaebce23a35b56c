package batchmint

import (
	"errors"
	"log"

	"mintpress/internal/domain/tree"
)

// Planner sizes the merkle tree for a requested item count against the
// injected depth policy. Pure: identical inputs yield identical outputs.
type Planner struct {
	Policy tree.DepthPolicy
}

// Plan returns the sizing decision for itemCount items.
func (p Planner) Plan(itemCount int) (tree.Sizing, error) {
	if itemCount <= 0 {
		return tree.Sizing{}, stageErr(StagePlanning, CodeInvalidRequest, tree.ErrInvalidItemCount)
	}

	sizing, err := tree.PlanSizing(uint64(itemCount), p.Policy)
	if err != nil {
		if errors.Is(err, tree.ErrQuotaExceeded) {
			return tree.Sizing{}, stageErr(StagePlanning, CodeQuotaExceeded, err)
		}
		return tree.Sizing{}, stageErr(StagePlanning, CodeInvalidRequest, err)
	}

	log.Printf("[planner] sized items=%d depth=%d buffer=%d canopy=%d capacity=%d",
		itemCount, sizing.Depth, sizing.BufferSize, sizing.CanopyDepth, tree.Capacity(sizing.Depth))
	return sizing, nil
}

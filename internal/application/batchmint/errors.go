package batchmint

import (
	"errors"
	"fmt"
)

// Stage identifies where in the pipeline a request currently is. The
// pipeline is strictly linear; Failed is absorbing.
type Stage string

const (
	StagePlanning    Stage = "planning"
	StageUploading   Stage = "uploading"
	StageEstimating  Stage = "estimating"
	StageAllocating  Stage = "allocating"
	StageRegistering Stage = "registering"
	StagePersisting  Stage = "persisting"
	StageMinting     Stage = "minting"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// Stable error codes surfaced to HTTP clients.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidAddress     = "INVALID_ADDRESS"
	CodeQuotaExceeded      = "QUOTA_EXCEEDED"
	CodeUploadFailed       = "UPLOAD_FAILED"
	CodeLedgerUnavailable  = "LEDGER_UNAVAILABLE"
	CodeInsufficientFunds  = "INSUFFICIENT_FUNDS"
	CodeAllocationFailed   = "ALLOCATION_FAILED"
	CodeRegistrationFailed = "REGISTRATION_FAILED"
	CodeMintFailed         = "MINT_FAILED"
	CodePersistenceFailed  = "PERSISTENCE_FAILED"
)

// StageError is the single failure type the pipeline returns. Everything
// needed for reconciliation after an irreversible ledger mutation rides
// on it: the ledger artifacts already created and the signatures already
// confirmed.
type StageError struct {
	Stage Stage
	Code  string
	// Index is the first failing item for CodeMintFailed, -1 otherwise.
	Index int
	// Signatures confirmed before the failure (index-aligned prefix of
	// the item sequence).
	Signatures []string
	// Ledger artifacts created before the failure, if any.
	TreeAddress    string
	CollectionMint string

	Err error
}

func (e *StageError) Error() string {
	if e.Code == CodeMintFailed {
		return fmt.Sprintf("batchmint: stage=%s code=%s index=%d: %v", e.Stage, e.Code, e.Index, e.Err)
	}
	return fmt.Sprintf("batchmint: stage=%s code=%s: %v", e.Stage, e.Code, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Recoverable reports whether the failure happened before any ledger
// mutation, i.e. the client may simply retry.
func (e *StageError) Recoverable() bool {
	switch e.Stage {
	case StagePlanning, StageUploading, StageEstimating:
		return true
	default:
		return false
	}
}

func stageErr(stage Stage, code string, err error) *StageError {
	return &StageError{Stage: stage, Code: code, Index: -1, Err: err}
}

// AsStageError unwraps err into a *StageError when possible.
func AsStageError(err error) (*StageError, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

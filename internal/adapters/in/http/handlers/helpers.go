// internal/adapters/in/http/handlers/helpers.go
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"mintpress/internal/application/batchmint"
)

const timeFormat = time.RFC3339

type errorDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Index is set for per-item failures (first failing item).
	Index *int `json:"index,omitempty"`
	// Partial ledger state, so clients can reconcile a half-done batch.
	Signatures     []string `json:"signatures,omitempty"`
	TreeAddress    string   `json:"treeAddress,omitempty"`
	CollectionMint string   `json:"collectionMint,omitempty"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func writeErrors(w http.ResponseWriter, status int, errs ...errorDTO) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"errors": errs})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeErrors(w, http.StatusMethodNotAllowed, errorDTO{
		Code:    "METHOD_NOT_ALLOWED",
		Message: "method not allowed",
	})
}

// stageErrorDTO flattens a pipeline failure into the wire error shape.
func stageErrorDTO(se *batchmint.StageError) errorDTO {
	e := errorDTO{
		Code:           se.Code,
		Message:        se.Error(),
		Signatures:     se.Signatures,
		TreeAddress:    se.TreeAddress,
		CollectionMint: se.CollectionMint,
	}
	if se.Code == batchmint.CodeMintFailed && se.Index >= 0 {
		idx := se.Index
		e.Index = &idx
	}
	return e
}

// statusForCode maps pipeline error codes to HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case batchmint.CodeInvalidRequest, batchmint.CodeInvalidAddress, batchmint.CodeQuotaExceeded:
		return http.StatusBadRequest
	case batchmint.CodeInsufficientFunds:
		return http.StatusPaymentRequired
	case batchmint.CodeLedgerUnavailable:
		return http.StatusServiceUnavailable
	case batchmint.CodeUploadFailed, batchmint.CodeAllocationFailed,
		batchmint.CodeRegistrationFailed, batchmint.CodeMintFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

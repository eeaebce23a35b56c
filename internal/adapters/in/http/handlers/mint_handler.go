// internal/adapters/in/http/handlers/mint_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"mintpress/internal/adapters/in/http/middleware"
	"mintpress/internal/application/batchmint"
	cdom "mintpress/internal/domain/collection"
	mdom "mintpress/internal/domain/mintbatch"
)

// 1リクエストあたりのボディ上限。インライン base64 画像を許すため大きめ。
const maxBatchBodyBytes = 64 << 20

type MintHandler struct {
	uc    *batchmint.UseCase
	payer batchmint.Payer
}

func NewMintHandler(uc *batchmint.UseCase, payer batchmint.Payer) http.Handler {
	return &MintHandler{uc: uc, payer: payer}
}

func (h *MintHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	log.Printf("[mint_handler] request method=%s path=%s", r.Method, r.URL.Path)

	switch {
	// POST /nft/collections/mint
	case r.Method == http.MethodPost && r.URL.Path == "/nft/collections/mint":
		h.mintBatch(w, r)
		return

	// GET /nft/collections/{id}/mints
	case r.Method == http.MethodGet &&
		strings.HasPrefix(r.URL.Path, "/nft/collections/") &&
		strings.HasSuffix(r.URL.Path, "/mints"):
		h.listMints(w, r)
		return

	default:
		methodNotAllowed(w)
	}
}

func (h *MintHandler) mintBatch(w http.ResponseWriter, r *http.Request) {
	uid, email, ok := middleware.CurrentUserUIDAndEmail(r)
	if !ok {
		writeErrors(w, http.StatusUnauthorized, errorDTO{
			Code:    "UNAUTHORIZED",
			Message: "authentication required",
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBatchBodyBytes)
	var dto batchMintRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeErrors(w, http.StatusBadRequest, errorDTO{
			Code:    batchmint.CodeInvalidRequest,
			Message: "invalid json body: " + err.Error(),
		})
		return
	}

	outcome, err := h.uc.Execute(r.Context(), h.payer, dto.toDomain(), uid, email)
	if err != nil {
		if se, isStage := batchmint.AsStageError(err); isStage {
			log.Printf("[mint_handler] batch failed stage=%s code=%s uid=%s", se.Stage, se.Code, uid)
			writeErrors(w, statusForCode(se.Code), stageErrorDTO(se))
			return
		}
		log.Printf("[mint_handler] batch failed uid=%s err=%v", uid, err)
		writeErrors(w, http.StatusInternalServerError, errorDTO{
			Code:    "INTERNAL",
			Message: err.Error(),
		})
		return
	}

	writeData(w, http.StatusCreated, toBatchOutcomeDTO(outcome))
}

func (h *MintHandler) listMints(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.CurrentUserUID(r); !ok {
		writeErrors(w, http.StatusUnauthorized, errorDTO{
			Code:    "UNAUTHORIZED",
			Message: "authentication required",
		})
		return
	}

	// /nft/collections/{id}/mints
	rest := strings.TrimPrefix(r.URL.Path, "/nft/collections/")
	id := strings.TrimSuffix(rest, "/mints")
	id = strings.Trim(id, "/")
	if id == "" {
		writeErrors(w, http.StatusBadRequest, errorDTO{
			Code:    batchmint.CodeInvalidRequest,
			Message: "collection id is required",
		})
		return
	}

	col, results, err := h.uc.ListMints(r.Context(), id)
	if err != nil {
		if errors.Is(err, cdom.ErrNotFound) || errors.Is(err, mdom.ErrNotFound) {
			writeErrors(w, http.StatusNotFound, errorDTO{
				Code:    "NOT_FOUND",
				Message: "collection not found",
			})
			return
		}
		log.Printf("[mint_handler] list mints failed collectionId=%s err=%v", id, err)
		writeErrors(w, http.StatusInternalServerError, errorDTO{
			Code:    "INTERNAL",
			Message: err.Error(),
		})
		return
	}

	writeData(w, http.StatusOK, toCollectionMintsDTO(col, results))
}

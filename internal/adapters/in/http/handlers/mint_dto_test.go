package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mintpress/internal/application/batchmint"
	"mintpress/internal/domain/collection"
	"mintpress/internal/domain/mintbatch"
)

func TestBatchMintRequestDecode(t *testing.T) {
	body := `{
	  "collection": {
	    "name": "Spring Drop",
	    "symbol": "SPR",
	    "itemCount": 2,
	    "mintAllTo": "11111111111111111111111111111111",
	    "image": "https://example.com/cover.png"
	  },
	  "nft": [
	    {"name": "Item 1", "symbol": "SPR", "image": "https://example.com/1.png"},
	    {"name": "Item 2", "symbol": "SPR", "image": "https://example.com/2.png",
	     "recipient": "noopb9bkMVfRPU8AsbpTUg8AQkHtKwMYZiFUjNRtMmV"}
	  ]
	}`

	var dto batchMintRequestDTO
	require.NoError(t, json.Unmarshal([]byte(body), &dto))

	req := dto.toDomain()
	require.NoError(t, req.Validate())
	assert.Equal(t, "Spring Drop", req.Collection.Name)
	assert.Equal(t, 2, req.Collection.ItemCount)
	require.Len(t, req.Items, 2)
	assert.Nil(t, req.Items[0].Recipient)
	require.NotNil(t, req.Items[1].Recipient)
	assert.Equal(t, "noopb9bkMVfRPU8AsbpTUg8AQkHtKwMYZiFUjNRtMmV", *req.Items[1].Recipient)
	assert.Equal(t, "https://example.com/1.png", req.Items[0].ImageRef)
}

func TestToCollectionMintsDTO(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	col := collection.Collection{
		ID: "col-1", Name: "Spring Drop", Symbol: "SPR",
		MintAddress: "Mint1111", MetadataAccount: "Meta1111", MasterEditionAccount: "Edition1111",
		CreatorAddress: "Creator1111", CreatedBy: "user-1", CreatedAt: at,
	}
	results := []mintbatch.MintResult{
		{ID: "res-1", CollectionID: "col-1", Signatures: []string{"sig-0", "sig-1"}, CreatedBy: "user-1", CreatedAt: at},
	}

	dto := toCollectionMintsDTO(col, results)
	assert.Equal(t, "col-1", dto.Collection.ID)
	assert.Equal(t, "2026-03-01T10:00:00Z", dto.Collection.CreatedAt)
	require.Len(t, dto.Results, 1)
	assert.Equal(t, []string{"sig-0", "sig-1"}, dto.Results[0].Signatures)

	// results なしでも null でなく空配列に落ちる
	empty := toCollectionMintsDTO(col, nil)
	raw, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"results":[]`)
}

func TestStatusForCode(t *testing.T) {
	cases := map[string]int{
		batchmint.CodeInvalidRequest:     http.StatusBadRequest,
		batchmint.CodeInvalidAddress:     http.StatusBadRequest,
		batchmint.CodeQuotaExceeded:      http.StatusBadRequest,
		batchmint.CodeInsufficientFunds:  http.StatusPaymentRequired,
		batchmint.CodeLedgerUnavailable:  http.StatusServiceUnavailable,
		batchmint.CodeUploadFailed:       http.StatusBadGateway,
		batchmint.CodeAllocationFailed:   http.StatusBadGateway,
		batchmint.CodeRegistrationFailed: http.StatusBadGateway,
		batchmint.CodeMintFailed:         http.StatusBadGateway,
		batchmint.CodePersistenceFailed:  http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, statusForCode(code), code)
	}
}

func TestStageErrorDTOIndex(t *testing.T) {
	se := &batchmint.StageError{
		Stage:          batchmint.StageMinting,
		Code:           batchmint.CodeMintFailed,
		Index:          3,
		Signatures:     []string{"sig-0", "sig-1", "sig-2"},
		TreeAddress:    "Tree1111",
		CollectionMint: "Mint1111",
	}
	dto := stageErrorDTO(se)
	require.NotNil(t, dto.Index)
	assert.Equal(t, 3, *dto.Index)
	assert.Equal(t, "Tree1111", dto.TreeAddress)

	// mint 以外の失敗では index を出さない
	se = &batchmint.StageError{Stage: batchmint.StageEstimating, Code: batchmint.CodeInsufficientFunds, Index: -1}
	assert.Nil(t, stageErrorDTO(se).Index)
}

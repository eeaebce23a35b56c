package mintbatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 32 バイト base58 の実在アドレス（system / noop program id）
const (
	addrA = "11111111111111111111111111111111"
	addrB = "noopb9bkMVfRPU8AsbpTUg8AQkHtKwMYZiFUjNRtMmV"
)

func validRequest(n int) BatchRequest {
	items := make([]ItemInput, n)
	for i := range items {
		items[i] = ItemInput{
			Name:     "Item",
			Symbol:   "ITM",
			ImageRef: "https://example.com/img.png",
		}
	}
	return BatchRequest{
		Collection: CollectionInput{
			Name:      "Col",
			Symbol:    "COL",
			ItemCount: n,
			MintAllTo: addrA,
		},
		Items: items,
	}
}

func TestValidateOK(t *testing.T) {
	require.NoError(t, validRequest(3).Validate())
}

func TestValidateCountMismatch(t *testing.T) {
	r := validRequest(3)
	r.Collection.ItemCount = 5
	assert.ErrorIs(t, r.Validate(), ErrInvalidItemCount)
}

func TestValidateNoItems(t *testing.T) {
	r := BatchRequest{Collection: CollectionInput{Name: "Col", Symbol: "COL", MintAllTo: addrA}}
	assert.ErrorIs(t, r.Validate(), ErrNoItems)
}

func TestValidateBadAddresses(t *testing.T) {
	r := validRequest(1)
	r.Collection.MintAllTo = "not-base58-%%"
	assert.ErrorIs(t, r.Validate(), ErrInvalidAddress)

	r = validRequest(1)
	bad := "tooshort"
	r.Items[0].Recipient = &bad
	assert.ErrorIs(t, r.Validate(), ErrInvalidAddress)
}

func TestValidateItemFields(t *testing.T) {
	r := validRequest(2)
	r.Items[1].Name = "  "
	assert.ErrorIs(t, r.Validate(), ErrInvalidName)

	r = validRequest(2)
	r.Items[0].ImageRef = ""
	assert.ErrorIs(t, r.Validate(), ErrInvalidImageRef)
}

func TestRecipientAt(t *testing.T) {
	r := validRequest(3)
	override := addrB
	r.Items[1].Recipient = &override

	assert.Equal(t, addrA, r.RecipientAt(0))
	assert.Equal(t, addrB, r.RecipientAt(1))
	assert.Equal(t, addrA, r.RecipientAt(2))
	// 範囲外はデフォルトにフォールバック
	assert.Equal(t, addrA, r.RecipientAt(99))
}

func TestValidateAddress(t *testing.T) {
	assert.NoError(t, ValidateAddress(addrA))
	assert.NoError(t, ValidateAddress(" "+addrB+" "))
	assert.ErrorIs(t, ValidateAddress(""), ErrInvalidAddress)
	assert.ErrorIs(t, ValidateAddress("abc"), ErrInvalidAddress)
}

func TestNewMintResult(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	m, err := NewMintResult("id-1", "col-1", []string{"sig1", "sig2"}, "user-1", now)
	require.NoError(t, err)
	assert.Len(t, m.Signatures, 2)
	assert.Equal(t, now, m.CreatedAt)

	_, err = NewMintResult("id-1", "col-1", nil, "user-1", now)
	assert.ErrorIs(t, err, ErrNoSignatures)

	_, err = NewMintResult("id-1", "col-1", []string{"sig1", " "}, "user-1", now)
	assert.ErrorIs(t, err, ErrNoSignatures)

	_, err = NewMintResult("", "col-1", []string{"sig1"}, "user-1", now)
	assert.ErrorIs(t, err, ErrInvalidID)
}

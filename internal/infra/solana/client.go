// internal/infra/solana/client.go
package solana

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
)

// Program IDs for compressed mints.
const (
	BubblegumProgramID   = "BGUmAp9Gq7iTEuizy4pqaxsTyUCBK68MDfK752saRPUY"
	CompressionProgramID = "cmtDvXumGCrqC1Age74AVPhSRVXJMd8PJS91L8KbNCK"
	NoopProgramID        = "noopb9bkMVfRPU8AsbpTUg8AQkHtKwMYZiFUjNRtMmV"
)

// Ledger は Solana RPC と payer 鍵をまとめた ledger アダプタです。
// 署名・instruction 構築はすべてここに閉じ、上位レイヤはアドレスと
// シグネチャだけを扱います。
type Ledger struct {
	client *client.Client
	payer  types.Account
}

// NewLedger creates the ledger adapter. Empty rpcURL falls back to devnet.
func NewLedger(rpcURL string, payer types.Account) *Ledger {
	if rpcURL == "" {
		rpcURL = rpc.DevnetRPCEndpoint
	}
	return &Ledger{
		client: client.NewClient(rpcURL),
		payer:  payer,
	}
}

// PayerAddress returns the configured payer's base58 public key.
func (l *Ledger) PayerAddress() string {
	return l.payer.PublicKey.ToBase58()
}

// Balance returns the lamport balance of address.
func (l *Ledger) Balance(ctx context.Context, address string) (uint64, error) {
	balance, err := l.client.GetBalance(ctx, address)
	if err != nil {
		return 0, fmt.Errorf("GetBalance: %w", err)
	}
	return balance, nil
}

// MinimumRentExemptBalance returns the rent-exempt minimum for an account
// of sizeBytes.
func (l *Ledger) MinimumRentExemptBalance(ctx context.Context, sizeBytes uint64) (uint64, error) {
	lamports, err := l.client.GetMinimumBalanceForRentExemption(ctx, sizeBytes)
	if err != nil {
		return 0, fmt.Errorf("GetMinimumBalanceForRentExemption: %w", err)
	}
	return lamports, nil
}

// checkPayer guards against a request signed for a payer this adapter does
// not hold the key for.
func (l *Ledger) checkPayer(address string) error {
	if address != l.PayerAddress() {
		return fmt.Errorf("unknown payer %s", address)
	}
	return nil
}

// anchorDiscriminator は Anchor プログラムの instruction discriminator
// (sha256("global:<name>") の先頭8バイト) を返します。
func anchorDiscriminator(name string) []byte {
	h := sha256.Sum256([]byte("global:" + name))
	return h[:8]
}

// treeAuthorityPDA derives the tree-config PDA bubblegum owns for a tree.
func treeAuthorityPDA(merkleTree common.PublicKey) (common.PublicKey, error) {
	pda, _, err := common.FindProgramAddress(
		[][]byte{merkleTree.Bytes()},
		common.PublicKeyFromString(BubblegumProgramID),
	)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("FindProgramAddress(tree authority): %w", err)
	}
	return pda, nil
}

// bubblegumSignerPDA derives bubblegum's collection-verification signer.
func bubblegumSignerPDA() (common.PublicKey, error) {
	pda, _, err := common.FindProgramAddress(
		[][]byte{[]byte("collection_cpi")},
		common.PublicKeyFromString(BubblegumProgramID),
	)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("FindProgramAddress(bubblegum signer): %w", err)
	}
	return pda, nil
}

// internal/infra/solana/tree.go
package solana

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/near/borsh-go"

	"mintpress/internal/application/batchmint"
)

// create_tree の Anchor 引数。Public は Option<bool> (常に None)。
type createTreeArgs struct {
	MaxDepth      uint32
	MaxBufferSize uint32
	Public        *bool
}

// CreateTree allocates the merkle tree account and initializes it through
// bubblegum's create_tree in a single transaction. The fresh tree keypair
// signs the allocation; its secret is returned for persistence.
func (l *Ledger) CreateTree(ctx context.Context, payer batchmint.Payer, in batchmint.CreateTreeInput) (batchmint.CreateTreeResult, error) {
	if err := l.checkPayer(payer.Address); err != nil {
		return batchmint.CreateTreeResult{}, err
	}

	treeAccount := types.NewAccount()

	treeAuthority, err := treeAuthorityPDA(treeAccount.PublicKey)
	if err != nil {
		return batchmint.CreateTreeResult{}, err
	}

	args, err := borsh.Serialize(createTreeArgs{
		MaxDepth:      in.Sizing.Depth,
		MaxBufferSize: in.Sizing.BufferSize,
		Public:        nil,
	})
	if err != nil {
		return batchmint.CreateTreeResult{}, fmt.Errorf("serialize create_tree args: %w", err)
	}
	data := append(anchorDiscriminator("create_tree"), args...)

	recent, err := l.client.GetLatestBlockhash(ctx)
	if err != nil {
		return batchmint.CreateTreeResult{}, fmt.Errorf("GetLatestBlockhash: %w", err)
	}

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: []types.Account{l.payer, treeAccount},
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        l.payer.PublicKey,
			RecentBlockhash: recent.Blockhash,
			Instructions: []types.Instruction{
				// 1) tree アカウント作成 (owner = compression program)
				system.CreateAccount(system.CreateAccountParam{
					From:     l.payer.PublicKey,
					New:      treeAccount.PublicKey,
					Owner:    common.PublicKeyFromString(CompressionProgramID),
					Lamports: in.Lamports,
					Space:    in.RequiredBytes,
				}),
				// 2) bubblegum create_tree
				{
					ProgramID: common.PublicKeyFromString(BubblegumProgramID),
					Accounts: []types.AccountMeta{
						{PubKey: treeAuthority, IsSigner: false, IsWritable: true},
						{PubKey: treeAccount.PublicKey, IsSigner: true, IsWritable: true},
						{PubKey: l.payer.PublicKey, IsSigner: true, IsWritable: true},
						{PubKey: l.payer.PublicKey, IsSigner: true, IsWritable: false},
						{PubKey: common.PublicKeyFromString(NoopProgramID), IsSigner: false, IsWritable: false},
						{PubKey: common.PublicKeyFromString(CompressionProgramID), IsSigner: false, IsWritable: false},
						{PubKey: common.SystemProgramID, IsSigner: false, IsWritable: false},
					},
					Data: data,
				},
			},
		}),
	})
	if err != nil {
		return batchmint.CreateTreeResult{}, fmt.Errorf("NewTransaction: %w", err)
	}

	sig, err := l.client.SendTransaction(ctx, tx)
	if err != nil {
		return batchmint.CreateTreeResult{}, fmt.Errorf("SendTransaction: %w", err)
	}

	return batchmint.CreateTreeResult{
		TreeAddress:     treeAccount.PublicKey.ToBase58(),
		AuthoritySecret: base64.StdEncoding.EncodeToString(treeAccount.PrivateKey),
		Signature:       sig,
	}, nil
}

// internal/infra/solana/collection.go
package solana

import (
	"context"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"

	"mintpress/internal/application/batchmint"
)

// CreateCollection mints the collection NFT: token mint + metadata v3 +
// master edition, with the single copy held by the payer. The payer stays
// update/collection authority so compressed mints can verify against it.
func (l *Ledger) CreateCollection(ctx context.Context, payer batchmint.Payer, in batchmint.CreateCollectionInput) (batchmint.CollectionLedgerIDs, error) {
	if err := l.checkPayer(payer.Address); err != nil {
		return batchmint.CollectionLedgerIDs{}, err
	}

	feePayer := l.payer
	mint := types.NewAccount()

	// コレクション NFT は payer 自身が保持する
	ata, _, err := common.FindAssociatedTokenAddress(feePayer.PublicKey, mint.PublicKey)
	if err != nil {
		return batchmint.CollectionLedgerIDs{}, fmt.Errorf("FindAssociatedTokenAddress: %w", err)
	}

	metadataPubkey, err := token_metadata.GetTokenMetaPubkey(mint.PublicKey)
	if err != nil {
		return batchmint.CollectionLedgerIDs{}, fmt.Errorf("GetTokenMetaPubkey: %w", err)
	}
	masterEditionPubkey, err := token_metadata.GetMasterEdition(mint.PublicKey)
	if err != nil {
		return batchmint.CollectionLedgerIDs{}, fmt.Errorf("GetMasterEdition: %w", err)
	}

	mintRent, err := l.client.GetMinimumBalanceForRentExemption(ctx, token.MintAccountSize)
	if err != nil {
		return batchmint.CollectionLedgerIDs{}, fmt.Errorf("GetMinimumBalanceForRentExemption: %w", err)
	}

	recent, err := l.client.GetLatestBlockhash(ctx)
	if err != nil {
		return batchmint.CollectionLedgerIDs{}, fmt.Errorf("GetLatestBlockhash: %w", err)
	}

	// ロイヤリティの受取先はリクエストの creator、payer は検証済み署名者
	creators := &[]token_metadata.Creator{
		{
			Address:  feePayer.PublicKey,
			Verified: true,
			Share:    0,
		},
		{
			Address:  common.PublicKeyFromString(in.CreatorAddress),
			Verified: false,
			Share:    100,
		},
	}

	// コレクション NFT は増刷不可 (MaxSupply = 0)
	maxSupply := uint64(0)

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: []types.Account{mint, feePayer},
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        feePayer.PublicKey,
			RecentBlockhash: recent.Blockhash,
			Instructions: []types.Instruction{
				// 1) Mint アカウント作成
				system.CreateAccount(system.CreateAccountParam{
					From:     feePayer.PublicKey,
					New:      mint.PublicKey,
					Owner:    common.TokenProgramID,
					Lamports: mintRent,
					Space:    token.MintAccountSize,
				}),
				// 2) Mint 初期化 (decimals = 0)
				token.InitializeMint(token.InitializeMintParam{
					Decimals:   0,
					Mint:       mint.PublicKey,
					MintAuth:   feePayer.PublicKey,
					FreezeAuth: &feePayer.PublicKey,
				}),
				// 3) Metadata アカウント作成
				token_metadata.CreateMetadataAccountV3(
					token_metadata.CreateMetadataAccountV3Param{
						Metadata:                metadataPubkey,
						Mint:                    mint.PublicKey,
						MintAuthority:           feePayer.PublicKey,
						UpdateAuthority:         feePayer.PublicKey,
						Payer:                   feePayer.PublicKey,
						UpdateAuthorityIsSigner: true,
						IsMutable:               true,
						Data: token_metadata.DataV2{
							Name:                 in.Name,
							Symbol:               in.Symbol,
							Uri:                  in.MetadataURI,
							SellerFeeBasisPoints: in.SellerFeeBasisPoints,
							Creators:             creators,
						},
						CollectionDetails: nil,
					},
				),
				// 4) payer の ATA 作成
				associated_token_account.CreateAssociatedTokenAccount(
					associated_token_account.CreateAssociatedTokenAccountParam{
						Funder:                 feePayer.PublicKey,
						Owner:                  feePayer.PublicKey,
						Mint:                   mint.PublicKey,
						AssociatedTokenAccount: ata,
					},
				),
				// 5) コレクション NFT を 1 枚ミント
				token.MintTo(token.MintToParam{
					Mint:   mint.PublicKey,
					To:     ata,
					Auth:   feePayer.PublicKey,
					Amount: 1,
				}),
				// 6) MasterEdition v3 作成
				token_metadata.CreateMasterEditionV3(
					token_metadata.CreateMasterEditionParam{
						Edition:         masterEditionPubkey,
						Mint:            mint.PublicKey,
						UpdateAuthority: feePayer.PublicKey,
						MintAuthority:   feePayer.PublicKey,
						Metadata:        metadataPubkey,
						Payer:           feePayer.PublicKey,
						MaxSupply:       &maxSupply,
					},
				),
			},
		}),
	})
	if err != nil {
		return batchmint.CollectionLedgerIDs{}, fmt.Errorf("NewTransaction: %w", err)
	}

	sig, err := l.client.SendTransaction(ctx, tx)
	if err != nil {
		return batchmint.CollectionLedgerIDs{}, fmt.Errorf("SendTransaction: %w", err)
	}

	return batchmint.CollectionLedgerIDs{
		MintAddress:          mint.PublicKey.ToBase58(),
		MetadataAccount:      metadataPubkey.ToBase58(),
		MasterEditionAccount: masterEditionPubkey.ToBase58(),
		Signature:            sig,
	}, nil
}

// internal/infra/solana/mint.go
package solana

import (
	"context"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/near/borsh-go"

	"mintpress/internal/application/batchmint"
)

// mint_to_collection_v1 の MetadataArgs。フィールド順は bubblegum の
// borsh レイアウトそのまま。Option はポインタで表現する。
type metadataArgs struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	PrimarySaleHappened  bool
	IsMutable            bool
	EditionNonce         *uint8
	TokenStandard        *uint8
	Collection           *collectionRef
	Uses                 *usesRef
	TokenProgramVersion  uint8
	Creators             []creatorRef
}

type collectionRef struct {
	Verified bool
	Key      common.PublicKey
}

type usesRef struct {
	UseMethod uint8
	Remaining uint64
	Total     uint64
}

type creatorRef struct {
	Address  common.PublicKey
	Verified bool
	Share    uint8
}

const tokenStandardNonFungible = uint8(0)

// newItemMetadataArgs builds the MetadataArgs for one compressed mint.
// editionNonce は Some(0)、token standard は NonFungible 固定。
func newItemMetadataArgs(meta batchmint.ItemMetadata, collectionMint, creator common.PublicKey) metadataArgs {
	editionNonce := uint8(0)
	tokenStandard := tokenStandardNonFungible
	return metadataArgs{
		Name:                 meta.Name,
		Symbol:               meta.Symbol,
		URI:                  meta.URI,
		SellerFeeBasisPoints: 0,
		PrimarySaleHappened:  false,
		IsMutable:            true,
		EditionNonce:         &editionNonce,
		TokenStandard:        &tokenStandard,
		// bubblegum が CPI で verified=true に書き換える
		Collection:          &collectionRef{Verified: false, Key: collectionMint},
		TokenProgramVersion: 0,
		Creators: []creatorRef{
			{Address: creator, Verified: true, Share: 100},
		},
	}
}

// MintCompressed mints one leaf into the tree under the registered
// collection via bubblegum's mint_to_collection_v1. One transaction per
// item; the leaf owner is the recipient.
func (l *Ledger) MintCompressed(ctx context.Context, payer batchmint.Payer, in batchmint.MintCompressedInput) (string, error) {
	if err := l.checkPayer(payer.Address); err != nil {
		return "", err
	}

	merkleTree := common.PublicKeyFromString(in.TreeAddress)
	leafOwner := common.PublicKeyFromString(in.Recipient)
	collectionMint := common.PublicKeyFromString(in.Collection.MintAddress)
	collectionMetadata := common.PublicKeyFromString(in.Collection.MetadataAccount)
	collectionEdition := common.PublicKeyFromString(in.Collection.MasterEditionAccount)
	bubblegum := common.PublicKeyFromString(BubblegumProgramID)

	treeAuthority, err := treeAuthorityPDA(merkleTree)
	if err != nil {
		return "", err
	}
	bgSigner, err := bubblegumSignerPDA()
	if err != nil {
		return "", err
	}

	args, err := borsh.Serialize(newItemMetadataArgs(in.Metadata, collectionMint, l.payer.PublicKey))
	if err != nil {
		return "", fmt.Errorf("serialize metadata args: %w", err)
	}
	data := append(anchorDiscriminator("mint_to_collection_v1"), args...)

	recent, err := l.client.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("GetLatestBlockhash: %w", err)
	}

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: []types.Account{l.payer},
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        l.payer.PublicKey,
			RecentBlockhash: recent.Blockhash,
			Instructions: []types.Instruction{
				{
					ProgramID: bubblegum,
					Accounts: []types.AccountMeta{
						{PubKey: treeAuthority, IsSigner: false, IsWritable: true},
						{PubKey: leafOwner, IsSigner: false, IsWritable: false},
						{PubKey: leafOwner, IsSigner: false, IsWritable: false},
						{PubKey: merkleTree, IsSigner: false, IsWritable: true},
						{PubKey: l.payer.PublicKey, IsSigner: true, IsWritable: false},
						{PubKey: l.payer.PublicKey, IsSigner: true, IsWritable: false},
						{PubKey: l.payer.PublicKey, IsSigner: true, IsWritable: false},
						// collection_authority_record_pda なし (program id を置く規約)
						{PubKey: bubblegum, IsSigner: false, IsWritable: false},
						{PubKey: collectionMint, IsSigner: false, IsWritable: false},
						{PubKey: collectionMetadata, IsSigner: false, IsWritable: true},
						{PubKey: collectionEdition, IsSigner: false, IsWritable: false},
						{PubKey: bgSigner, IsSigner: false, IsWritable: false},
						{PubKey: common.PublicKeyFromString(NoopProgramID), IsSigner: false, IsWritable: false},
						{PubKey: common.PublicKeyFromString(CompressionProgramID), IsSigner: false, IsWritable: false},
						{PubKey: common.MetaplexTokenMetaProgramID, IsSigner: false, IsWritable: false},
						{PubKey: common.SystemProgramID, IsSigner: false, IsWritable: false},
					},
					Data: data,
				},
			},
		}),
	})
	if err != nil {
		return "", fmt.Errorf("NewTransaction: %w", err)
	}

	sig, err := l.client.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("SendTransaction: %w", err)
	}
	return sig, nil
}

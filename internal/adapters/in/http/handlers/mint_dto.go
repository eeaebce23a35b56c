// internal/adapters/in/http/handlers/mint_dto.go
package handlers

import (
	"mintpress/internal/application/batchmint"
	"mintpress/internal/domain/collection"
	"mintpress/internal/domain/mintbatch"
)

// ==============================
// Request DTOs
// ==============================

type batchMintRequestDTO struct {
	Collection collectionInputDTO `json:"collection"`
	NFT        []itemInputDTO     `json:"nft"`
}

type collectionInputDTO struct {
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	ItemCount int    `json:"itemCount"`
	MintAllTo string `json:"mintAllTo"`
	Image     string `json:"image,omitempty"`
}

type itemInputDTO struct {
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	Description string  `json:"description,omitempty"`
	Image       string  `json:"image"`
	Recipient   *string `json:"recipient,omitempty"`
}

func (d batchMintRequestDTO) toDomain() mintbatch.BatchRequest {
	items := make([]mintbatch.ItemInput, 0, len(d.NFT))
	for _, it := range d.NFT {
		items = append(items, mintbatch.ItemInput{
			Name:        it.Name,
			Symbol:      it.Symbol,
			Description: it.Description,
			ImageRef:    it.Image,
			Recipient:   it.Recipient,
		})
	}
	return mintbatch.BatchRequest{
		Collection: mintbatch.CollectionInput{
			Name:      d.Collection.Name,
			Symbol:    d.Collection.Symbol,
			ItemCount: d.Collection.ItemCount,
			MintAllTo: d.Collection.MintAllTo,
			ImageRef:  d.Collection.Image,
		},
		Items: items,
	}
}

// ==============================
// Response DTOs
// ==============================

type batchOutcomeDTO struct {
	CollectionID         string   `json:"collectionId"`
	CollectionMint       string   `json:"collectionMint"`
	MetadataAccount      string   `json:"metadataAccount"`
	MasterEditionAccount string   `json:"masterEditionAccount"`
	TreeAddress          string   `json:"treeAddress"`
	Signatures           []string `json:"signatures"`
	Minted               int      `json:"minted"`
}

func toBatchOutcomeDTO(out batchmint.BatchOutcome) batchOutcomeDTO {
	return batchOutcomeDTO{
		CollectionID:         out.CollectionID,
		CollectionMint:       out.CollectionMint,
		MetadataAccount:      out.MetadataAccount,
		MasterEditionAccount: out.MasterEditionAccount,
		TreeAddress:          out.TreeAddress,
		Signatures:           out.Signatures,
		Minted:               out.Minted,
	}
}

type collectionDTO struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Symbol               string `json:"symbol"`
	ImageURI             string `json:"imageUri,omitempty"`
	MetadataURI          string `json:"metadataUri,omitempty"`
	MintAddress          string `json:"mintAddress"`
	MetadataAccount      string `json:"metadataAccount"`
	MasterEditionAccount string `json:"masterEditionAccount"`
	CreatorAddress       string `json:"creatorAddress"`
	CreatedBy            string `json:"createdBy"`
	CreatedAt            string `json:"createdAt"`
}

type mintResultDTO struct {
	ID         string   `json:"id"`
	Signatures []string `json:"signatures"`
	CreatedBy  string   `json:"createdBy"`
	CreatedAt  string   `json:"createdAt"`
}

type collectionMintsDTO struct {
	Collection collectionDTO   `json:"collection"`
	Results    []mintResultDTO `json:"results"`
}

func toCollectionMintsDTO(col collection.Collection, results []mintbatch.MintResult) collectionMintsDTO {
	rs := make([]mintResultDTO, 0, len(results))
	for _, m := range results {
		rs = append(rs, mintResultDTO{
			ID:         m.ID,
			Signatures: m.Signatures,
			CreatedBy:  m.CreatedBy,
			CreatedAt:  m.CreatedAt.Format(timeFormat),
		})
	}
	return collectionMintsDTO{
		Collection: collectionDTO{
			ID:                   col.ID,
			Name:                 col.Name,
			Symbol:               col.Symbol,
			ImageURI:             col.ImageURI,
			MetadataURI:          col.MetadataURI,
			MintAddress:          col.MintAddress,
			MetadataAccount:      col.MetadataAccount,
			MasterEditionAccount: col.MasterEditionAccount,
			CreatorAddress:       col.CreatorAddress,
			CreatedBy:            col.CreatedBy,
			CreatedAt:            col.CreatedAt.Format(timeFormat),
		},
		Results: rs,
	}
}

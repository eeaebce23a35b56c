package batchmint

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"mintpress/internal/domain/mintbatch"
)

// itemMetadataJSON is the off-chain metadata document uploaded per item
// (and for the collection itself). Shape matches the token-metadata
// convention wallets read.
type itemMetadataJSON struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Uploader resolves every item's artwork and metadata document to public
// URLs before any ledger work starts. Uploads fan out with bounded
// concurrency; the output slice stays index-aligned with the items.
type Uploader struct {
	Blobs       BlobStore
	Concurrency int
}

// UploadItems returns one metadata URI per item, index-aligned.
func (u Uploader) UploadItems(ctx context.Context, items []mintbatch.ItemInput) ([]string, error) {
	limit := u.Concurrency
	if limit <= 0 {
		limit = 4
	}

	start := time.Now()
	uris := make([]string, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, it := range items {
		g.Go(func() error {
			uri, err := u.uploadOne(gctx, it)
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			uris[i] = uri
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stageErr(StageUploading, CodeUploadFailed, err)
	}

	log.Printf("[uploader] items uploaded count=%d concurrency=%d elapsed=%s",
		len(items), limit, time.Since(start))
	return uris, nil
}

// UploadCollection uploads the collection artwork (when inline) and its
// metadata document, returning (imageURL, metadataURI).
func (u Uploader) UploadCollection(ctx context.Context, in mintbatch.CollectionInput) (string, string, error) {
	imageURL, err := u.resolveImage(ctx, in.ImageRef)
	if err != nil {
		return "", "", stageErr(StageUploading, CodeUploadFailed,
			fmt.Errorf("collection image: %w", err))
	}

	doc := itemMetadataJSON{
		Name:   strings.TrimSpace(in.Name),
		Symbol: strings.TrimSpace(in.Symbol),
		Image:  imageURL,
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", "", stageErr(StageUploading, CodeUploadFailed, err)
	}

	metadataURI, err := u.Blobs.PutObject(ctx, raw, "application/json")
	if err != nil {
		return "", "", stageErr(StageUploading, CodeUploadFailed,
			fmt.Errorf("collection metadata: %w", err))
	}
	return imageURL, metadataURI, nil
}

func (u Uploader) uploadOne(ctx context.Context, it mintbatch.ItemInput) (string, error) {
	imageURL, err := u.resolveImage(ctx, it.ImageRef)
	if err != nil {
		return "", fmt.Errorf("image: %w", err)
	}

	doc := itemMetadataJSON{
		Name:        strings.TrimSpace(it.Name),
		Symbol:      strings.TrimSpace(it.Symbol),
		Description: strings.TrimSpace(it.Description),
		Image:       imageURL,
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}

	uri, err := u.Blobs.PutObject(ctx, raw, "application/json")
	if err != nil {
		return "", fmt.Errorf("metadata: %w", err)
	}
	return uri, nil
}

// resolveImage accepts either an already-public URL (passed through) or
// an inline base64 payload (optionally a data: URI), which gets uploaded.
func (u Uploader) resolveImage(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref, nil
	}

	contentType := "image/png"
	payload := ref
	if strings.HasPrefix(ref, "data:") {
		rest := strings.TrimPrefix(ref, "data:")
		semi := strings.Index(rest, ";base64,")
		if semi < 0 {
			return "", fmt.Errorf("unsupported data uri")
		}
		contentType = rest[:semi]
		payload = rest[semi+len(";base64,"):]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("decode image payload: %w", err)
	}
	return u.Blobs.PutObject(ctx, raw, contentType)
}

// internal/adapters/out/gcs/artwork_repository_gcs.go
package gcs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// =====================================================
// GCS-based blob store for artwork and metadata.json
// =====================================================

type ArtworkRepositoryGCS struct {
	Client *storage.Client
	Bucket string
	// Prefix groups this service's objects inside a shared bucket.
	Prefix string
}

func NewArtworkRepositoryGCS(client *storage.Client, bucket string) *ArtworkRepositoryGCS {
	return &ArtworkRepositoryGCS{
		Client: client,
		Bucket: strings.TrimSpace(bucket),
		Prefix: "mint-artifacts",
	}
}

func (r *ArtworkRepositoryGCS) bucketName() (string, error) {
	if r.Client == nil {
		return "", errors.New("artwork: GCS client is nil")
	}
	b := strings.TrimSpace(r.Bucket)
	if b == "" {
		return "", errors.New("artwork: bucket is empty")
	}
	return b, nil
}

// PutObject uploads data under a fresh object name and returns the public
// URL. Object names carry the date so the bucket stays browsable.
func (r *ArtworkRepositoryGCS) PutObject(ctx context.Context, data []byte, contentType string) (string, error) {
	b, err := r.bucketName()
	if err != nil {
		return "", err
	}

	obj := fmt.Sprintf("%s/%s/%s%s",
		strings.Trim(r.Prefix, "/"),
		time.Now().UTC().Format("2006-01-02"),
		uuid.NewString(),
		extensionFor(contentType),
	)

	w := r.Client.Bucket(b).Object(obj).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("artwork: write object %s: %w", obj, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("artwork: close object %s: %w", obj, err)
	}

	return gcsPublicURL(b, obj), nil
}

func extensionFor(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "application/json":
		return ".json"
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}

func gcsPublicURL(bucket, objectPath string) string {
	b := strings.TrimSpace(bucket)
	obj := strings.TrimLeft(strings.TrimSpace(objectPath), "/")
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", b, obj)
}

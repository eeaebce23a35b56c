// internal/adapters/out/firestore/reconcile_log_fs.go
package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	"mintpress/internal/application/batchmint"
)

const intentCollection = "mint_intents"

// ReconcileLogFS records intent/confirmation pairs in Firestore. A sweep
// job can query status == "pending" older than some cutoff to find ledger
// mutations whose outcome was never recorded.
type ReconcileLogFS struct {
	Client *firestore.Client
}

func NewReconcileLogFS(client *firestore.Client) *ReconcileLogFS {
	return &ReconcileLogFS{Client: client}
}

func (r *ReconcileLogFS) Intent(ctx context.Context, stage batchmint.Stage, refs map[string]string) (string, error) {
	if r == nil || r.Client == nil {
		return "", errors.New("reconcile log: firestore client is nil")
	}

	doc := r.Client.Collection(intentCollection).NewDoc()
	_, err := doc.Set(ctx, map[string]any{
		"stage":     string(stage),
		"status":    "pending",
		"refs":      sanitizeRefs(refs),
		"createdAt": time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("reconcile log: write intent: %w", err)
	}
	return doc.ID, nil
}

func (r *ReconcileLogFS) Confirm(ctx context.Context, intentID string, refs map[string]string) error {
	if r == nil || r.Client == nil {
		return errors.New("reconcile log: firestore client is nil")
	}
	id := strings.TrimSpace(intentID)
	if id == "" {
		return errors.New("reconcile log: intentID is empty")
	}

	_, err := r.Client.Collection(intentCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: "confirmed"},
		{Path: "confirmRefs", Value: sanitizeRefs(refs)},
		{Path: "confirmedAt", Value: time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("reconcile log: confirm intent %s: %w", id, err)
	}
	return nil
}

func sanitizeRefs(refs map[string]string) map[string]string {
	out := make(map[string]string, len(refs))
	for k, v := range refs {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(v)
	}
	return out
}

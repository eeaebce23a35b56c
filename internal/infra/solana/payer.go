// internal/infra/solana/payer.go
package solana

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	smpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/blocto/solana-go-sdk/types"
)

// LoadPayer は payer 鍵を解決します。Secret Manager の secretID が設定されて
// いればそちらを使い、未設定ならローカルの keypair ファイルにフォールバック
// します（ローカル開発用）。
func LoadPayer(ctx context.Context, projectID, secretID, keypairFile string) (types.Account, error) {
	if secretID != "" {
		return loadPayerFromSecretManager(ctx, projectID, secretID)
	}
	if keypairFile != "" {
		return loadPayerFromFile(keypairFile)
	}
	return types.Account{}, fmt.Errorf("payer key not configured: set PAYER_SECRET_ID or PAYER_KEYPAIR_FILE")
}

// loadPayerFromSecretManager は GCP Secret Manager から keypair JSON
// ([int,int,...] の配列) を読み込み、署名可能なアカウントとして復元します。
func loadPayerFromSecretManager(ctx context.Context, projectID, secretID string) (types.Account, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return types.Account{}, fmt.Errorf("secretmanager.NewClient: %w", err)
	}
	defer client.Close()

	name := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, secretID)

	res, err := client.AccessSecretVersion(ctx, &smpb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		return types.Account{}, fmt.Errorf("access secret version %s: %w", name, err)
	}

	return accountFromKeypairJSON(res.Payload.Data)
}

// loadPayerFromFile は solana-keygen が出力する keypair ファイルを読み込みます。
func loadPayerFromFile(path string) (types.Account, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.Account{}, fmt.Errorf("read keypair file %s: %w", path, err)
	}
	return accountFromKeypairJSON(raw)
}

func accountFromKeypairJSON(raw []byte) (types.Account, error) {
	var ints []int
	if err := json.Unmarshal(raw, &ints); err != nil {
		return types.Account{}, fmt.Errorf("unmarshal keypair json: %w", err)
	}
	if len(ints) != ed25519.PrivateKeySize {
		return types.Account{}, fmt.Errorf("unexpected keypair length: got %d, want %d", len(ints), ed25519.PrivateKeySize)
	}

	b := make([]byte, len(ints))
	for i, v := range ints {
		b[i] = byte(v)
	}

	acc, err := types.AccountFromBytes(b)
	if err != nil {
		return types.Account{}, fmt.Errorf("AccountFromBytes: %w", err)
	}
	return acc, nil
}

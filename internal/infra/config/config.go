// internal/infra/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"

	"mintpress/internal/domain/tree"
)

// Config はアプリケーション全体の環境変数設定を保持します。
type Config struct {
	Port     string
	GCPCreds string

	// PostgreSQL
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// GCS (アートワーク / metadata.json の置き場)
	GCSBucket string

	// Firestore (mint intent の照合ログ)
	FirestoreProjectID       string
	FirestoreCredentialsFile string

	// Firebase Auth 用のプロジェクトID
	FirebaseProjectID string

	// Solana
	SolanaRPCEndpoint string
	// Secret Manager 上の payer 鍵 (JSON int array)。未設定ならローカルファイルに
	// フォールバックする。
	PayerSecretID    string
	PayerKeypairFile string

	// SendGrid (バッチ完了メール)。未設定なら通知はスキップされる。
	SendGridAPIKey string
	MailFrom       string

	// アップロードの同時実行数
	UploadConcurrency int

	// ツリーサイズ方針。TREE_* 環境変数で再デプロイなしに調整できる。
	TreeAllowedDepths []uint32
	TreeMaxBufferSize uint32
	TreeCanopyOffset  uint32
	TreeMaxItems      uint64
}

// Load は環境変数を読み込み Config を返します。
func Load() *Config {
	defaultProject := getenvDefault("GCP_PROJECT_ID", "mintpress-dev")

	cfg := &Config{
		Port:     getenvDefault("PORT", "8080"),
		GCPCreds: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		DBHost:     getenvDefault("DB_HOST", "localhost"),
		DBPort:     getenvDefault("DB_PORT", "5432"),
		DBUser:     getenvDefault("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getenvDefault("DB_NAME", "mintpress"),

		GCSBucket: os.Getenv("GCS_BUCKET"),

		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),

		// FIREBASE_PROJECT_ID が未指定なら GCP のデフォルトを使う
		FirebaseProjectID: getenvDefault("FIREBASE_PROJECT_ID", defaultProject),

		SolanaRPCEndpoint: os.Getenv("SOLANA_RPC_ENDPOINT"),
		PayerSecretID:     os.Getenv("PAYER_SECRET_ID"),
		PayerKeypairFile:  os.Getenv("PAYER_KEYPAIR_FILE"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       getenvDefault("MAIL_FROM", "no-reply@mintpress.dev"),

		UploadConcurrency: getenvInt("UPLOAD_CONCURRENCY", 4),
	}

	policy := tree.DefaultPolicy()
	cfg.TreeAllowedDepths = getenvDepths("TREE_ALLOWED_DEPTHS", policy.AllowedDepths)
	cfg.TreeMaxBufferSize = uint32(getenvUint("TREE_MAX_BUFFER_SIZE", uint64(policy.MaxBufferSize)))
	cfg.TreeCanopyOffset = uint32(getenvUint("TREE_CANOPY_OFFSET", uint64(policy.CanopyOffset)))
	cfg.TreeMaxItems = getenvUint("TREE_MAX_ITEMS", policy.MaxItems)

	return cfg
}

// TreePolicy は capacity planner に渡すサイズ方針を組み立てます。
func (c *Config) TreePolicy() tree.DepthPolicy {
	return tree.DepthPolicy{
		AllowedDepths: c.TreeAllowedDepths,
		MaxBufferSize: c.TreeMaxBufferSize,
		CanopyOffset:  c.TreeCanopyOffset,
		MaxItems:      c.TreeMaxItems,
	}
}

// GetFirestoreProjectID は Firestore/GCP プロジェクト ID を返します。
func (c *Config) GetFirestoreProjectID() string {
	return c.FirestoreProjectID
}

// Firebase 用の ProjectID を返すヘルパー
func (c *Config) GetFirebaseProjectID() string {
	return c.FirebaseProjectID
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvUint(key string, def uint64) uint64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

// getenvDepths は "3,5,14" 形式の CSV を読む。パース失敗時は def に戻す。
func getenvDepths(key string, def []uint32) []uint32 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	var out []uint32
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil || n == 0 {
			return def
		}
		out = append(out, uint32(n))
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n := 0
	for _, r := range v {
		if r < '0' || r > '9' {
			return def
		}
		n = n*10 + int(r-'0')
	}
	if n == 0 {
		return def
	}
	return n
}

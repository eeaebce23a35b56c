// internal/platform/di/container.go
package di

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	httpin "mintpress/internal/adapters/in/http"
	"mintpress/internal/adapters/in/http/middleware"
	dbadapter "mintpress/internal/adapters/out/db"
	fsadapter "mintpress/internal/adapters/out/firestore"
	gcsadapter "mintpress/internal/adapters/out/gcs"
	mailadapter "mintpress/internal/adapters/out/mail"
	"mintpress/internal/application/batchmint"
	"mintpress/internal/infra/config"
	"mintpress/internal/infra/database"
	firestoreinfra "mintpress/internal/infra/firestore"
	solanainfra "mintpress/internal/infra/solana"
)

// Container は main.go から使う依存オブジェクトの束。
// main.go を極限まで薄くするのが目的。
type Container struct {
	Config *config.Config

	BatchMintUC  *batchmint.UseCase
	Payer        batchmint.Payer
	FirebaseAuth *middleware.FirebaseAuthClient

	db        *database.DB
	firestore *firestoreinfra.ClientWrapper
	gcs       *storage.Client
}

// NewContainer は外部リソースを初期化し、パイプラインを配線して返す。
func NewContainer(ctx context.Context) (*Container, error) {
	cfg := config.Load()

	// ------------------------------------------------------------
	// 外部リソース初期化 (DB / GCS / Firestore / Solana / Firebase)
	// ------------------------------------------------------------

	db, err := database.NewConnection(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("di: database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("di: migrate: %w", err)
	}

	var gcsOpts []option.ClientOption
	if cfg.GCPCreds != "" {
		gcsOpts = append(gcsOpts, option.WithCredentialsFile(cfg.GCPCreds))
	}
	gcsClient, err := storage.NewClient(ctx, gcsOpts...)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("di: gcs: %w", err)
	}

	fsClient, err := firestoreinfra.NewClient(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile)
	if err != nil {
		db.Close()
		_ = gcsClient.Close()
		return nil, fmt.Errorf("di: firestore: %w", err)
	}

	payerAccount, err := solanainfra.LoadPayer(ctx, cfg.FirestoreProjectID, cfg.PayerSecretID, cfg.PayerKeypairFile)
	if err != nil {
		db.Close()
		_ = gcsClient.Close()
		_ = fsClient.Close()
		return nil, fmt.Errorf("di: payer: %w", err)
	}
	ledger := solanainfra.NewLedger(cfg.SolanaRPCEndpoint, payerAccount)
	log.Printf("[di] payer loaded address=%s", ledger.PayerAddress())

	// Firebase Auth は任意。未設定ならローカル開発モードで認証なし。
	var fbAuth *middleware.FirebaseAuthClient
	if cfg.FirebaseProjectID != "" {
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID})
		if err != nil {
			log.Printf("[di] WARN: firebase app init failed: %v (auth disabled)", err)
		} else if client, err := app.Auth(ctx); err != nil {
			log.Printf("[di] WARN: firebase auth init failed: %v (auth disabled)", err)
		} else {
			fbAuth = client
		}
	}

	// ------------------------------------------------------------
	// アダプタとユースケースの配線
	// ------------------------------------------------------------

	collections := dbadapter.NewCollectionRepositoryPG(db.Client)
	trees := dbadapter.NewTreeRepositoryPG(db.Client)
	results := dbadapter.NewMintResultRepositoryPG(db.Client)

	blobs := gcsadapter.NewArtworkRepositoryGCS(gcsClient, cfg.GCSBucket)
	reconcile := fsadapter.NewReconcileLogFS(fsClient.Client)

	var notifier batchmint.Notifier
	if cfg.SendGridAPIKey != "" {
		notifier = mailadapter.NewMintNotifier(
			mailadapter.NewSendGridClient(cfg.SendGridAPIKey),
			cfg.MailFrom,
		)
	} else {
		log.Printf("[di] SENDGRID_API_KEY not set; completion mail disabled")
	}

	uc := batchmint.NewUseCase(
		batchmint.Planner{Policy: cfg.TreePolicy()},
		batchmint.Uploader{Blobs: blobs, Concurrency: cfg.UploadConcurrency},
		batchmint.Estimator{Ledger: ledger},
		batchmint.Allocator{Ledger: ledger, Reconcile: reconcile},
		batchmint.Registrar{Ledger: ledger, Reconcile: reconcile},
		batchmint.Minter{Ledger: ledger},
		collections,
		trees,
		results,
		dbadapter.NewTxRunnerPG(db.Client),
		notifier,
	)

	return &Container{
		Config:       cfg,
		BatchMintUC:  uc,
		Payer:        batchmint.Payer{Address: ledger.PayerAddress()},
		FirebaseAuth: fbAuth,
		db:           db,
		firestore:    fsClient,
		gcs:          gcsClient,
	}, nil
}

// RouterDeps は HTTP ルータに渡す依存をまとめる。
func (c *Container) RouterDeps() httpin.RouterDeps {
	return httpin.RouterDeps{
		BatchMintUC:  c.BatchMintUC,
		Payer:        c.Payer,
		FirebaseAuth: c.FirebaseAuth,
	}
}

// Close は Cloud Run 終了時などに呼んで安全にリソースを閉じる。
func (c *Container) Close() {
	if c.db != nil {
		_ = c.db.Close()
	}
	if c.firestore != nil {
		_ = c.firestore.Close()
	}
	if c.gcs != nil {
		_ = c.gcs.Close()
	}
}

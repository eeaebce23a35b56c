package httpin

import (
	"net/http"

	"mintpress/internal/adapters/in/http/handlers"
	"mintpress/internal/adapters/in/http/middleware"
	"mintpress/internal/application/batchmint"
)

// RouterDeps collects the dependencies injected from main.go.
type RouterDeps struct {
	BatchMintUC *batchmint.UseCase
	Payer       batchmint.Payer

	// FirebaseAuth が nil のときは認証なしでマウントされる（ローカル開発用）。
	FirebaseAuth *middleware.FirebaseAuthClient
}

// NewRouter sets up HTTP routing for the minting endpoints.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	// Health check (always on)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if deps.BatchMintUC != nil {
		var mint http.Handler = handlers.NewMintHandler(deps.BatchMintUC, deps.Payer)
		if deps.FirebaseAuth != nil {
			auth := &middleware.UserAuthMiddleware{FirebaseAuth: deps.FirebaseAuth}
			mint = auth.Handler(mint)
		} else {
			mint = middleware.LocalUser("local-dev")(mint)
		}
		mux.Handle("/nft/", mint)
	}

	return mux
}

// internal/adapters/in/http/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
)

// FirebaseAuthClient は firebase auth クライアントのエイリアス。
// RouterDeps などからは *middleware.FirebaseAuthClient 型で受けられます。
type FirebaseAuthClient = fbauth.Client

// context key は string を使わず、衝突回避のため独自型を使用（SA1029 対策）
type ctxKey struct{ name string }

var (
	ctxKeyUID   = ctxKey{name: "uid"}
	ctxKeyEmail = ctxKey{name: "email"}
)

// UserAuthMiddleware verifies Firebase ID token and stores uid/email in
// context. Minting endpoints require an authenticated user.
type UserAuthMiddleware struct {
	FirebaseAuth *FirebaseAuthClient
}

func (m *UserAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.FirebaseAuth == nil {
			http.Error(w, "auth middleware not initialized", http.StatusServiceUnavailable)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "unauthorized: missing bearer token", http.StatusUnauthorized)
			return
		}

		idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if idToken == "" {
			http.Error(w, "unauthorized: empty bearer token", http.StatusUnauthorized)
			return
		}

		// Firebase ID トークン検証
		token, err := m.FirebaseAuth.VerifyIDToken(r.Context(), idToken)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		uid := strings.TrimSpace(token.UID)
		if uid == "" {
			http.Error(w, "invalid uid in token", http.StatusUnauthorized)
			return
		}

		// email (optional)
		email := ""
		if emailRaw, ok := token.Claims["email"]; ok {
			if e, ok2 := emailRaw.(string); ok2 {
				email = strings.TrimSpace(e)
			}
		}

		ctx := context.WithValue(r.Context(), ctxKeyUID, uid)
		if email != "" {
			ctx = context.WithValue(ctx, ctxKeyEmail, email)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LocalUser injects a fixed uid without token verification. ローカル開発
// 専用（Firebase プロジェクトが無い環境でのみ使う）。
func LocalUser(uid string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ctxKeyUID, uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUserUID returns the authenticated Firebase UID.
func CurrentUserUID(r *http.Request) (string, bool) {
	vUID := r.Context().Value(ctxKeyUID)
	u, ok := vUID.(string)
	if !ok || strings.TrimSpace(u) == "" {
		return "", false
	}
	return strings.TrimSpace(u), true
}

// CurrentUserUIDAndEmail returns uid/email (email can be empty).
func CurrentUserUIDAndEmail(r *http.Request) (uid string, email string, ok bool) {
	uid, ok = CurrentUserUID(r)
	if !ok {
		return "", "", false
	}

	if vEmail := r.Context().Value(ctxKeyEmail); vEmail != nil {
		if e, okEmail := vEmail.(string); okEmail {
			email = strings.TrimSpace(e)
		}
	}

	return uid, email, true
}

// internal/adapters/out/db/common/sqlutil.go
package common

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// RowScanner は *sql.Row, *sql.Rows の両方に共通の Scan() メソッドを持つ抽象型です。
type RowScanner interface {
	Scan(dest ...any) error
}

// IsUniqueViolation は PostgreSQL 一意制約違反（duplicate key）を検知します。
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}

// Runner は *sql.DB と *sql.Tx の共通インターフェースです。
type Runner interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// TxKey は context に *sql.Tx を格納するためのキーです。
type TxKey struct{}

// CtxWithTx は ctx に tx を格納して返します。
func CtxWithTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, TxKey{}, tx)
}

// TxFromCtx は ctx から *sql.Tx を取り出します（無ければ nil）。
func TxFromCtx(ctx context.Context) *sql.Tx {
	if v := ctx.Value(TxKey{}); v != nil {
		if tx, ok := v.(*sql.Tx); ok {
			return tx
		}
	}
	return nil
}

// GetRunner は ctx に Tx があればそれを、無ければ *sql.DB を返します。
func GetRunner(ctx context.Context, db *sql.DB) Runner {
	if tx := TxFromCtx(ctx); tx != nil {
		return tx
	}
	return db
}

// internal/adapters/out/db/tx_runner_pg.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	dbcommon "mintpress/internal/adapters/out/db/common"
)

// TxRunnerPG は複数リポジトリの書き込みを 1 トランザクションにまとめる。
// fn に渡す ctx に Tx を格納し、各リポジトリは GetRunner 経由で拾う。
type TxRunnerPG struct {
	DB *sql.DB
}

func NewTxRunnerPG(db *sql.DB) *TxRunnerPG {
	return &TxRunnerPG{DB: db}
}

// WithinTx runs fn inside a transaction; fn error rolls back, nil commits.
func (t *TxRunnerPG) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := t.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(dbcommon.CtxWithTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("[db] WARN: rollback failed: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

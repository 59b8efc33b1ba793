// Package tr передаёт открытую транзакцию pgx через контекст от юзкейса
// к репозиториям, чтобы несколько записей легли в один коммит.
package tr

import (
	"context"

	"github.com/DRSN-tech/wardrobe-backend/pkg/e"
	"github.com/jackc/pgx/v5"
)

type txKey struct{}

// WithTx кладёт транзакцию в контекст.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromCtx достаёт транзакцию из контекста.
func TxFromCtx(ctx context.Context) (pgx.Tx, error) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	if !ok {
		return nil, e.ErrTransactionNotFound
	}

	return tx, nil
}

package repo

import (
	"context"

	extctx "github.com/indexdata/crosslink/econtent/common"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnOrTx is what the generated-style query sets run against.
type ConnOrTx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type Transactional[T any] interface {
	// WithTxFunc runs fn with a copy of the repo bound to one transaction
	WithTxFunc(ctx extctx.ExtendedContext, fn func(T) error) error
}

// Rebinder is implemented by each store so the base can hand fn a tx-bound copy.
type Rebinder[T any] interface {
	CreateWithPgBaseRepo(base *PgBaseRepo[T]) T
}

// PgBaseRepo is embedded by the patron, settings, catalog and usage stores.
type PgBaseRepo[T any] struct {
	Pool *pgxpool.Pool
	Tx   pgx.Tx
}

// WithTxFunc commits when fn returns nil and rolls back on error or panic. A repo that
// is already bound to a transaction joins it.
func (r *PgBaseRepo[T]) WithTxFunc(ctx extctx.ExtendedContext, store Rebinder[T], fn func(T) error) error {
	if r.Tx != nil {
		return fn(store.CreateWithPgBaseRepo(r))
	}
	err := pgx.BeginFunc(ctx, r.Pool, func(tx pgx.Tx) error {
		return fn(store.CreateWithPgBaseRepo(&PgBaseRepo[T]{Pool: r.Pool, Tx: tx}))
	})
	if err != nil {
		ctx.Logger().Debug("db transaction not committed", "error", err)
	}
	return err
}

func (r *PgBaseRepo[T]) GetConnOrTx() ConnOrTx {
	if r.Tx != nil {
		return r.Tx
	}
	return r.Pool
}

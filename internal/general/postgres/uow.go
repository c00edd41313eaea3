package postgres

import (
	"context"
	"errors"

	"courier-dispatch/internal/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// txKeyType keeps the context key private to this package so nothing outside
// can smuggle a transaction in.
type txKeyType struct{}

var txKey = txKeyType{}

// unitOfWork runs callbacks inside a pgx transaction carried via context.
// Repositories never see the pool, only the tx of the call they are part of.
type unitOfWork struct {
	pool *pgxpool.Pool
}

// NewUnitOfWork binds a unit of work to the given pool.
func NewUnitOfWork(pool *pgxpool.Pool) ports.UnitOfWork {
	return &unitOfWork{pool: pool}
}

// WithinTx runs fn inside a transaction. A call made while a transaction is
// already open joins it instead of nesting, so service methods can compose
// freely. The transaction commits iff fn returns nil; a panic rolls back and
// is rethrown.
func (uow *unitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := uow.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey, tx)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

// TxFromContext reports the transaction the current call participates in.
func TxFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey).(pgx.Tx)
	return tx, ok
}

// MustTxFromContext is the repository-side guard: every query method starts
// here so a repo call outside WithinTx fails loudly instead of grabbing its
// own connection.
func MustTxFromContext(ctx context.Context) (pgx.Tx, error) {
	if tx, ok := TxFromContext(ctx); ok {
		return tx, nil
	}
	return nil, errors.New("no transaction in context: call repositories through UnitOfWork.WithinTx")
}

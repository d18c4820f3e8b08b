package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNoPool is returned when a transaction is requested without a database.
	ErrNoPool = errors.New("postgres pool not configured")
	// ErrNoTx is returned by writes that must join a caller owned transaction.
	ErrNoTx = errors.New("no transaction in context")
)

// Tx is a storage transaction owned by one unit of work.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Transactor opens transactions and returns a context carrying them, so
// repositories called with that context join the transaction.
type Transactor interface {
	Begin(ctx context.Context) (context.Context, Tx, error)
}

type txKey struct{}

// WithTx stores a pgx transaction in context for downstream repositories.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFrom extracts a pgx transaction from context if present.
func TxFrom(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}

// PgTransactor begins serializable pgx transactions.
type PgTransactor struct {
	pool *pgxpool.Pool
}

// NewPgTransactor builds a transactor over the pool.
func NewPgTransactor(pool *pgxpool.Pool) *PgTransactor {
	return &PgTransactor{pool: pool}
}

func (t *PgTransactor) Begin(ctx context.Context) (context.Context, Tx, error) {
	if t == nil || t.pool == nil {
		return ctx, nil, ErrNoPool
	}
	tx, err := t.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return ctx, nil, err
	}
	return WithTx(ctx, tx), tx, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pdc-service/internal/persistence"
	apperrors "github.com/spec-kit/pdc-service/pkg/util/errorutil"
)

// executor is satisfied by both *pgxpool.Pool and pgx.Tx.
type executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// conn returns the transaction carried by ctx, falling back to the pool.
func conn(ctx context.Context, pool *pgxpool.Pool) executor {
	if tx, ok := persistence.TxFrom(ctx); ok {
		return tx
	}
	return pool
}

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// mapWriteError turns constraint violations into domain errors.
func mapWriteError(resource string, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case uniqueViolation:
		return apperrors.NewConflict(fmt.Sprintf("%s already exists", resource), map[string]any{"constraint": pgErr.ConstraintName})
	case foreignKeyViolation:
		return apperrors.NewConflict(fmt.Sprintf("%s references or is referenced by another record", resource), map[string]any{"constraint": pgErr.ConstraintName})
	}
	return err
}

func expectOne(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

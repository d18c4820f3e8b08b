// Package memory is a process-local storage engine with the transaction
// semantics of the Postgres repositories. Transactions are serialized by a
// single reader/writer semaphore and undone from a log on rollback.
package memory

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/spec-kit/pdc-service/internal/persistence"
)

// writerWeight is the semaphore weight held by a transaction; readers take 1.
const writerWeight = 1 << 30

var errTxDone = errors.New("transaction already closed")

// DB owns every table and serializes their transactions.
type DB struct {
	lock *semaphore.Weighted

	hookMu     sync.Mutex
	commitHook func() error
}

// NewDB returns an empty database.
func NewDB() *DB {
	return &DB{lock: semaphore.NewWeighted(writerWeight)}
}

// FailCommitsWith makes subsequent commits fail with err and roll back.
// Passing nil restores normal behavior.
func (d *DB) FailCommitsWith(err error) {
	d.hookMu.Lock()
	defer d.hookMu.Unlock()
	if err == nil {
		d.commitHook = nil
		return
	}
	d.commitHook = func() error { return err }
}

type txKey struct{}

type tx struct {
	db   *DB
	undo []func()
	done bool
}

// Begin takes the write lock for the lifetime of the transaction. Waiting for
// it ends with ctx.
func (d *DB) Begin(ctx context.Context) (context.Context, persistence.Tx, error) {
	if err := ctx.Err(); err != nil {
		return ctx, nil, err
	}
	if err := d.lock.Acquire(ctx, writerWeight); err != nil {
		return ctx, nil, err
	}
	t := &tx{db: d}
	return context.WithValue(ctx, txKey{}, t), t, nil
}

func (t *tx) Commit(context.Context) error {
	if t.done {
		return errTxDone
	}
	t.done = true
	defer t.db.lock.Release(writerWeight)

	t.db.hookMu.Lock()
	hook := t.db.commitHook
	t.db.hookMu.Unlock()
	if hook != nil {
		if err := hook(); err != nil {
			t.revert()
			return err
		}
	}
	t.undo = nil
	return nil
}

func (t *tx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	defer t.db.lock.Release(writerWeight)
	t.revert()
	return nil
}

func (t *tx) revert() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (d *DB) txFrom(ctx context.Context) (*tx, bool) {
	t, ok := ctx.Value(txKey{}).(*tx)
	if !ok || t.db != d || t.done {
		return nil, false
	}
	return t, true
}

// read runs fn under the read lock unless ctx already holds the write lock.
func (d *DB) read(ctx context.Context, fn func()) {
	if _, ok := d.txFrom(ctx); ok {
		fn()
		return
	}
	_ = d.lock.Acquire(context.Background(), 1)
	defer d.lock.Release(1)
	fn()
}

// atomic runs fn in the transaction carried by ctx, or in a new one that
// commits when fn succeeds.
func (d *DB) atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := d.txFrom(ctx); ok {
		return fn(ctx)
	}
	txCtx, t, err := d.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(txCtx); err != nil {
		_ = t.Rollback(txCtx)
		return err
	}
	return t.Commit(txCtx)
}

// write applies fn inside a transaction and logs the function reversing it.
func (d *DB) write(ctx context.Context, fn func() (undo func(), err error)) error {
	return d.atomic(ctx, func(ctx context.Context) error {
		t, _ := d.txFrom(ctx)
		undo, err := fn()
		if err != nil {
			return err
		}
		if undo != nil {
			t.undo = append(t.undo, undo)
		}
		return nil
	})
}

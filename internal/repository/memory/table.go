package memory

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"
)

var errDuplicateKey = errors.New("duplicate key")

// Table is an id keyed row set. Ids come from a sequence that, as in
// Postgres, is not rewound by rollbacks.
type Table[T any] struct {
	db   *DB
	rows map[int64]T
	seq  int64
}

// NewTable creates a table bound to db.
func NewTable[T any](db *DB) *Table[T] {
	return &Table[T]{db: db, rows: make(map[int64]T)}
}

// Insert stores the row built by build for the next id.
func (t *Table[T]) Insert(ctx context.Context, build func(id int64) (T, error)) (T, error) {
	var row T
	err := t.db.write(ctx, func() (func(), error) {
		t.seq++
		id := t.seq
		built, err := build(id)
		if err != nil {
			return nil, err
		}
		row = built
		t.rows[id] = built
		return func() { delete(t.rows, id) }, nil
	})
	return row, err
}

// Put stores row under an id taken from another table, as variant rows
// share the id of their base row.
func (t *Table[T]) Put(ctx context.Context, id int64, row T) error {
	return t.db.write(ctx, func() (func(), error) {
		if _, exists := t.rows[id]; exists {
			return nil, errDuplicateKey
		}
		t.rows[id] = row
		return func() { delete(t.rows, id) }, nil
	})
}

// Update replaces the row stored under id.
func (t *Table[T]) Update(ctx context.Context, id int64, mutate func(current T) (T, error)) (T, error) {
	var row T
	err := t.db.write(ctx, func() (func(), error) {
		prev, ok := t.rows[id]
		if !ok {
			return nil, pgx.ErrNoRows
		}
		next, err := mutate(prev)
		if err != nil {
			return nil, err
		}
		row = next
		t.rows[id] = next
		return func() { t.rows[id] = prev }, nil
	})
	return row, err
}

// Delete removes the row stored under id.
func (t *Table[T]) Delete(ctx context.Context, id int64) error {
	return t.db.write(ctx, func() (func(), error) {
		prev, ok := t.rows[id]
		if !ok {
			return nil, pgx.ErrNoRows
		}
		delete(t.rows, id)
		return func() { t.rows[id] = prev }, nil
	})
}

// Get returns the row stored under id.
func (t *Table[T]) Get(ctx context.Context, id int64) (T, error) {
	var (
		row T
		ok  bool
	)
	t.db.read(ctx, func() { row, ok = t.rows[id] })
	if !ok {
		return row, pgx.ErrNoRows
	}
	return row, nil
}

// Find returns the first row, by id, accepted by match.
func (t *Table[T]) Find(ctx context.Context, match func(T) bool) (T, error) {
	for _, row := range t.Select(ctx, match) {
		return row, nil
	}
	var zero T
	return zero, pgx.ErrNoRows
}

// Select returns rows accepted by match ordered by id. A nil match accepts all.
func (t *Table[T]) Select(ctx context.Context, match func(T) bool) []T {
	var out []T
	t.db.read(ctx, func() {
		ids := make([]int64, 0, len(t.rows))
		for id := range t.rows {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			if match == nil || match(t.rows[id]) {
				out = append(out, t.rows[id])
			}
		}
	})
	return out
}

// Exists reports whether any row other than skipID matches.
func (t *Table[T]) Exists(ctx context.Context, skipID int64, match func(T) bool) bool {
	found := false
	t.db.read(ctx, func() {
		for id, row := range t.rows {
			if id != skipID && match(row) {
				found = true
				return
			}
		}
	})
	return found
}

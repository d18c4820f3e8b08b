package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pdc-service/internal/domain"
	"github.com/spec-kit/pdc-service/internal/persistence"
)

// ChangesetRepository is the Postgres audit ledger. Rows are only ever
// inserted; triggers reject updates and deletes.
type ChangesetRepository struct {
	pool *pgxpool.Pool
}

// NewChangesetRepository builds the repository.
func NewChangesetRepository(pool *pgxpool.Pool) *ChangesetRepository {
	return &ChangesetRepository{pool: pool}
}

// Append inserts cs and its changes in the transaction carried by ctx.
func (r *ChangesetRepository) Append(ctx context.Context, cs *domain.Changeset) error {
	tx, ok := persistence.TxFrom(ctx)
	if !ok {
		return persistence.ErrNoTx
	}

	const insertChangeset = `
        INSERT INTO changesets (author, request_id, comment, committed_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id`
	if err := tx.QueryRow(ctx, insertChangeset, cs.Author, cs.RequestID, cs.Comment, cs.CommittedAt).Scan(&cs.ID); err != nil {
		return fmt.Errorf("insert changeset: %w", err)
	}

	const insertChange = `
        INSERT INTO changes (changeset_id, position, model_name, object_id, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	batch := &pgx.Batch{}
	for i := range cs.Changes {
		ch := &cs.Changes[i]
		ch.ChangesetID = cs.ID
		batch.Queue(insertChange, cs.ID, i, ch.ModelName, ch.ObjectID, string(valueOrNone(ch.OldValue)), string(valueOrNone(ch.NewValue))).
			QueryRow(func(row pgx.Row) error {
				return row.Scan(&ch.ID)
			})
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert changes of changeset %d: %w", cs.ID, err)
	}
	return nil
}

// Get loads one changeset with its changes in mutation order.
func (r *ChangesetRepository) Get(ctx context.Context, id int64) (*domain.Changeset, error) {
	const query = `SELECT id, author, request_id, comment, committed_at FROM changesets WHERE id=$1`
	db := conn(ctx, r.pool)

	var cs domain.Changeset
	if err := db.QueryRow(ctx, query, id).Scan(&cs.ID, &cs.Author, &cs.RequestID, &cs.Comment, &cs.CommittedAt); err != nil {
		return nil, err
	}
	changes, err := r.loadChanges(ctx, []int64{cs.ID})
	if err != nil {
		return nil, err
	}
	cs.Changes = changes[cs.ID]
	return &cs, nil
}

// List returns changesets ordered by commit time.
func (r *ChangesetRepository) List(ctx context.Context, filter domain.ChangesetFilter) ([]domain.Changeset, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Author != nil {
		args = append(args, *filter.Author)
		clauses = append(clauses, fmt.Sprintf("cs.author=$%d", len(args)))
	}
	if filter.ChangedSince != nil {
		args = append(args, *filter.ChangedSince)
		clauses = append(clauses, fmt.Sprintf("cs.committed_at >= $%d", len(args)))
	}
	if filter.ChangedUntil != nil {
		args = append(args, *filter.ChangedUntil)
		clauses = append(clauses, fmt.Sprintf("cs.committed_at <= $%d", len(args)))
	}
	if filter.Model != nil {
		args = append(args, *filter.Model)
		clauses = append(clauses, fmt.Sprintf("EXISTS (SELECT 1 FROM changes ch WHERE ch.changeset_id = cs.id AND ch.model_name=$%d)", len(args)))
	}

	order := "ASC"
	if filter.NewestFirst {
		order = "DESC"
	}
	query := fmt.Sprintf(`SELECT cs.id, cs.author, cs.request_id, cs.comment, cs.committed_at
             FROM changesets cs WHERE %s ORDER BY cs.committed_at %s, cs.id %s`,
		strings.Join(clauses, " AND "), order, order)
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Changeset, error) {
		var cs domain.Changeset
		err := row.Scan(&cs.ID, &cs.Author, &cs.RequestID, &cs.Comment, &cs.CommittedAt)
		return cs, err
	})
	if err != nil || len(result) == 0 {
		return result, err
	}

	ids := make([]int64, len(result))
	for i := range result {
		ids[i] = result[i].ID
	}
	changes, err := r.loadChanges(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].Changes = changes[result[i].ID]
	}
	return result, nil
}

// ChangesForObject returns every change of one object, oldest first.
func (r *ChangesetRepository) ChangesForObject(ctx context.Context, model string, objectID int64) ([]domain.ObjectChange, error) {
	const query = `
        SELECT ch.id, ch.changeset_id, ch.model_name, ch.object_id, ch.old_value, ch.new_value,
               cs.author, cs.comment, cs.committed_at
        FROM changes ch JOIN changesets cs ON cs.id = ch.changeset_id
        WHERE ch.model_name=$1 AND ch.object_id=$2
        ORDER BY cs.committed_at ASC, ch.changeset_id ASC, ch.position ASC`
	rows, err := conn(ctx, r.pool).Query(ctx, query, model, objectID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ObjectChange, error) {
		var (
			oc       domain.ObjectChange
			oldValue, newValue string
		)
		err := row.Scan(&oc.ID, &oc.ChangesetID, &oc.ModelName, &oc.ObjectID, &oldValue, &newValue, &oc.Author, &oc.Comment, &oc.CommittedAt)
		oc.OldValue = json.RawMessage(oldValue)
		oc.NewValue = json.RawMessage(newValue)
		return oc, err
	})
}

func (r *ChangesetRepository) loadChanges(ctx context.Context, changesetIDs []int64) (map[int64][]domain.Change, error) {
	const query = `
        SELECT id, changeset_id, model_name, object_id, old_value, new_value
        FROM changes WHERE changeset_id = ANY($1)
        ORDER BY changeset_id, position`
	rows, err := conn(ctx, r.pool).Query(ctx, query, changesetIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]domain.Change, len(changesetIDs))
	for rows.Next() {
		var (
			ch       domain.Change
			oldValue, newValue string
		)
		if err := rows.Scan(&ch.ID, &ch.ChangesetID, &ch.ModelName, &ch.ObjectID, &oldValue, &newValue); err != nil {
			return nil, err
		}
		ch.OldValue = json.RawMessage(oldValue)
		ch.NewValue = json.RawMessage(newValue)
		out[ch.ChangesetID] = append(out[ch.ChangesetID], ch)
	}
	return out, rows.Err()
}

func valueOrNone(v json.RawMessage) json.RawMessage {
	if len(v) == 0 {
		return domain.NoneValue
	}
	return v
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pdc-service/internal/domain"
)

type globalComponentRepository struct {
	pool *pgxpool.Pool
}

// NewGlobalComponentRepository builds the repository.
func NewGlobalComponentRepository(pool *pgxpool.Pool) GlobalComponentRepository {
	return &globalComponentRepository{pool: pool}
}

func (r *globalComponentRepository) Create(ctx context.Context, c *domain.GlobalComponent) error {
	const query = `
        INSERT INTO global_components (name, dist_git_path)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query, c.Name, c.DistGitPath).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapWriteError("global component", err)
}

func (r *globalComponentRepository) Update(ctx context.Context, c *domain.GlobalComponent) error {
	const query = `
        UPDATE global_components SET name=$1, dist_git_path=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query, c.Name, c.DistGitPath, c.ID).Scan(&c.UpdatedAt)
	return mapWriteError("global component", err)
}

func (r *globalComponentRepository) Delete(ctx context.Context, id int64) error {
	return expectOne(conn(ctx, r.pool).Exec(ctx, `DELETE FROM global_components WHERE id=$1`, id))
}

func (r *globalComponentRepository) GetByID(ctx context.Context, id int64) (*domain.GlobalComponent, error) {
	const query = `SELECT id, name, dist_git_path, created_at, updated_at FROM global_components WHERE id=$1`
	var c domain.GlobalComponent
	if err := conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.DistGitPath, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *globalComponentRepository) List(ctx context.Context) ([]domain.GlobalComponent, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT id, name, dist_git_path, created_at, updated_at FROM global_components ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.GlobalComponent, error) {
		var c domain.GlobalComponent
		err := row.Scan(&c.ID, &c.Name, &c.DistGitPath, &c.CreatedAt, &c.UpdatedAt)
		return c, err
	})
}

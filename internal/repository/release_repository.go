package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pdc-service/internal/domain"
)

const releaseColumns = `id, release_id, short, version, name, release_type, product_id, active, created_at, updated_at`

type releaseRepository struct {
	pool *pgxpool.Pool
}

// NewReleaseRepository builds the repository.
func NewReleaseRepository(pool *pgxpool.Pool) ReleaseRepository {
	return &releaseRepository{pool: pool}
}

func (r *releaseRepository) Create(ctx context.Context, release *domain.Release) error {
	const query = `
        INSERT INTO releases (release_id, short, version, name, release_type, product_id, active)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		release.ReleaseID,
		release.Short,
		release.Version,
		release.Name,
		release.ReleaseType,
		release.ProductID,
		release.Active,
	).Scan(&release.ID, &release.CreatedAt, &release.UpdatedAt)
	return mapWriteError("release", err)
}

func (r *releaseRepository) Update(ctx context.Context, release *domain.Release) error {
	const query = `
        UPDATE releases SET release_id=$1, short=$2, version=$3, name=$4, release_type=$5,
            product_id=$6, active=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		release.ReleaseID,
		release.Short,
		release.Version,
		release.Name,
		release.ReleaseType,
		release.ProductID,
		release.Active,
		release.ID,
	).Scan(&release.UpdatedAt)
	return mapWriteError("release", err)
}

func (r *releaseRepository) Delete(ctx context.Context, id int64) error {
	err := expectOne(conn(ctx, r.pool).Exec(ctx, `DELETE FROM releases WHERE id=$1`, id))
	return mapWriteError("release", err)
}

func (r *releaseRepository) GetByID(ctx context.Context, id int64) (*domain.Release, error) {
	return r.fetchSingle(ctx, `SELECT `+releaseColumns+` FROM releases WHERE id=$1`, id)
}

func (r *releaseRepository) GetByReleaseID(ctx context.Context, releaseID string) (*domain.Release, error) {
	return r.fetchSingle(ctx, `SELECT `+releaseColumns+` FROM releases WHERE release_id=$1`, releaseID)
}

func (r *releaseRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Release, error) {
	rel, err := scanRelease(conn(ctx, r.pool).QueryRow(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *releaseRepository) List(ctx context.Context) ([]domain.Release, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+releaseColumns+` FROM releases ORDER BY release_id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Release, error) {
		return scanRelease(row)
	})
}

func scanRelease(row pgx.Row) (domain.Release, error) {
	var rel domain.Release
	err := row.Scan(
		&rel.ID,
		&rel.ReleaseID,
		&rel.Short,
		&rel.Version,
		&rel.Name,
		&rel.ReleaseType,
		&rel.ProductID,
		&rel.Active,
		&rel.CreatedAt,
		&rel.UpdatedAt,
	)
	return rel, err
}

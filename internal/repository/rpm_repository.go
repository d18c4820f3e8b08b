package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pdc-service/internal/domain"
)

type rpmRepository struct {
	pool *pgxpool.Pool
}

// NewRPMRepository builds the repository.
func NewRPMRepository(pool *pgxpool.Pool) RPMRepository {
	return &rpmRepository{pool: pool}
}

func (r *rpmRepository) Create(ctx context.Context, rpm *domain.RPM) error {
	const query = `
        INSERT INTO rpms (name, epoch, version, release, arch, srpm_name)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	err := conn(ctx, r.pool).QueryRow(ctx, query, rpm.Name, rpm.Epoch, rpm.Version, rpm.Release, rpm.Arch, rpm.SRPMName).Scan(&rpm.ID)
	return mapWriteError("rpm "+rpm.NVRA(), err)
}

func (r *rpmRepository) Delete(ctx context.Context, id int64) error {
	return expectOne(conn(ctx, r.pool).Exec(ctx, `DELETE FROM rpms WHERE id=$1`, id))
}

func (r *rpmRepository) GetByID(ctx context.Context, id int64) (*domain.RPM, error) {
	const query = `SELECT id, name, epoch, version, release, arch, srpm_name FROM rpms WHERE id=$1`
	var rpm domain.RPM
	if err := conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(&rpm.ID, &rpm.Name, &rpm.Epoch, &rpm.Version, &rpm.Release, &rpm.Arch, &rpm.SRPMName); err != nil {
		return nil, err
	}
	return &rpm, nil
}

func (r *rpmRepository) List(ctx context.Context) ([]domain.RPM, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT id, name, epoch, version, release, arch, srpm_name FROM rpms ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.RPM, error) {
		var rpm domain.RPM
		err := row.Scan(&rpm.ID, &rpm.Name, &rpm.Epoch, &rpm.Version, &rpm.Release, &rpm.Arch, &rpm.SRPMName)
		return rpm, err
	})
}

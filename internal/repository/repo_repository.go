package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pdc-service/internal/domain"
)

const repoColumns = `id, release_id, variant_uid, arch, service, repo_family, content_format,
               content_category, name, shadow, product_id, created_at`

type repoRepository struct {
	pool *pgxpool.Pool
}

// NewRepoRepository builds the repository.
func NewRepoRepository(pool *pgxpool.Pool) RepoRepository {
	return &repoRepository{pool: pool}
}

func (r *repoRepository) Create(ctx context.Context, repo *domain.Repo) error {
	const query = `
        INSERT INTO repos (release_id, variant_uid, arch, service, repo_family, content_format,
            content_category, name, shadow, product_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		repo.ReleaseID,
		repo.VariantUID,
		repo.Arch,
		repo.Service,
		repo.RepoFamily,
		repo.ContentFormat,
		repo.ContentCategory,
		repo.Name,
		repo.Shadow,
		repo.ProductID,
	).Scan(&repo.ID, &repo.CreatedAt)
	return mapWriteError("repo", err)
}

func (r *repoRepository) Delete(ctx context.Context, id int64) error {
	return expectOne(conn(ctx, r.pool).Exec(ctx, `DELETE FROM repos WHERE id=$1`, id))
}

func (r *repoRepository) GetByID(ctx context.Context, id int64) (*domain.Repo, error) {
	repo, err := scanRepo(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+repoColumns+` FROM repos WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	return &repo, nil
}

func (r *repoRepository) List(ctx context.Context, filter RepoFilter) ([]domain.Repo, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.ReleaseID != nil {
		args = append(args, *filter.ReleaseID)
		clauses = append(clauses, fmt.Sprintf("release_id=$%d", len(args)))
	}
	if filter.Arch != nil {
		args = append(args, *filter.Arch)
		clauses = append(clauses, fmt.Sprintf("arch=$%d", len(args)))
	}
	query := fmt.Sprintf(`SELECT %s FROM repos WHERE %s ORDER BY id`, repoColumns, strings.Join(clauses, " AND "))

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Repo, error) {
		return scanRepo(row)
	})
}

func scanRepo(row pgx.Row) (domain.Repo, error) {
	var repo domain.Repo
	err := row.Scan(
		&repo.ID,
		&repo.ReleaseID,
		&repo.VariantUID,
		&repo.Arch,
		&repo.Service,
		&repo.RepoFamily,
		&repo.ContentFormat,
		&repo.ContentCategory,
		&repo.Name,
		&repo.Shadow,
		&repo.ProductID,
		&repo.CreatedAt,
	)
	return repo, err
}

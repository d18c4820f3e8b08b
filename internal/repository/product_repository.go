package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pdc-service/internal/domain"
)

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository builds the repository.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	const query = `
        INSERT INTO products (short, name)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query, product.Short, product.Name).
		Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	return mapWriteError("product", err)
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	const query = `
        UPDATE products SET short=$1, name=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query, product.Short, product.Name, product.ID).Scan(&product.UpdatedAt)
	return mapWriteError("product", err)
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	err := expectOne(conn(ctx, r.pool).Exec(ctx, `DELETE FROM products WHERE id=$1`, id))
	return mapWriteError("product", err)
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	const query = `SELECT id, short, name, created_at, updated_at FROM products WHERE id=$1`
	var p domain.Product
	if err := conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(&p.ID, &p.Short, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT id, short, name, created_at, updated_at FROM products ORDER BY short`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Product, error) {
		var p domain.Product
		err := row.Scan(&p.ID, &p.Short, &p.Name, &p.CreatedAt, &p.UpdatedAt)
		return p, err
	})
}

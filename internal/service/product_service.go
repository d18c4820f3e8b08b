package service

import (
	"context"

	"github.com/spec-kit/pdc-service/internal/changeset"
	"github.com/spec-kit/pdc-service/internal/domain"
	"github.com/spec-kit/pdc-service/internal/repository"
)

// ProductInput carries writable product fields. Nil fields are left untouched
// on update.
type ProductInput struct {
	Short *string
	Name  *string
}

// ProductService manages products and records every mutation.
type ProductService struct {
	products repository.ProductRepository
	recorder *changeset.Recorder
}

// NewProductService constructs the service.
func NewProductService(products repository.ProductRepository, recorder *changeset.Recorder) *ProductService {
	return &ProductService{products: products, recorder: recorder}
}

// Create inserts a product.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	product := &domain.Product{Short: deref(in.Short), Name: deref(in.Name)}
	if err := requireFields("short", product.Short, "name", product.Name); err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	if err := s.recorder.Created(ctx, *product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update applies in to the product.
func (s *ProductService) Update(ctx context.Context, id int64, in ProductInput) (*domain.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	before, err := s.recorder.Snapshot(ctx, *product)
	if err != nil {
		return nil, err
	}

	setIf(&product.Short, in.Short)
	setIf(&product.Name, in.Name)
	if err := requireFields("short", product.Short, "name", product.Name); err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, product); err != nil {
		return nil, lookupError("product", id, err)
	}
	if err := s.recorder.Updated(ctx, before, *product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes the product.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	product, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	before, err := s.recorder.Snapshot(ctx, *product)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return lookupError("product", id, err)
	}
	return s.recorder.Deleted(ctx, before, *product)
}

// Get fetches a product.
func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("product", id, err)
	}
	return product, nil
}

// List returns all products.
func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

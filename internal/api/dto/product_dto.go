package dto

import "github.com/spec-kit/pdc-service/internal/domain"

// ProductRequest is the body of product writes. Omitted fields keep their
// value on PATCH.
type ProductRequest struct {
	Short *string `json:"short"`
	Name  *string `json:"name"`
}

// ProductResponse renders a product.
type ProductResponse struct {
	ID    int64  `json:"id"`
	Short string `json:"short"`
	Name  string `json:"name"`
}

func NewProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{ID: p.ID, Short: p.Short, Name: p.Name}
}

// ReleaseRequest is the body of release writes.
type ReleaseRequest struct {
	Short       *string `json:"short"`
	Version     *string `json:"version"`
	Name        *string `json:"name"`
	ReleaseType *string `json:"release_type"`
	ProductID   *int64  `json:"product_id"`
	Active      *bool   `json:"active"`
}

// ReleaseResponse renders a release.
type ReleaseResponse struct {
	ReleaseID   string `json:"release_id"`
	Short       string `json:"short"`
	Version     string `json:"version"`
	Name        string `json:"name"`
	ReleaseType string `json:"release_type"`
	ProductID   *int64 `json:"product_id"`
	Active      bool   `json:"active"`
}

func NewReleaseResponse(r domain.Release) ReleaseResponse {
	return ReleaseResponse{
		ReleaseID:   r.ReleaseID,
		Short:       r.Short,
		Version:     r.Version,
		Name:        r.Name,
		ReleaseType: r.ReleaseType,
		ProductID:   r.ProductID,
		Active:      r.Active,
	}
}

// ComponentRequest is the body of global component writes.
type ComponentRequest struct {
	Name        *string `json:"name"`
	DistGitPath *string `json:"dist_git_path"`
}

// ComponentResponse renders a global component.
type ComponentResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	DistGitPath *string `json:"dist_git_path"`
}

func NewComponentResponse(c domain.GlobalComponent) ComponentResponse {
	return ComponentResponse{ID: c.ID, Name: c.Name, DistGitPath: c.DistGitPath}
}

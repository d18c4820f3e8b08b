package domain

import (
	"time"

	"github.com/spec-kit/pdc-service/internal/export"
)

// ModelProduct is the audit model name of products.
const ModelProduct = "product"

var productFields = []string{"id", "short", "name"}

// Product groups releases under a short name such as "rhel".
type Product struct {
	ID        int64
	Short     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Product) ModelName() string { return ModelProduct }
func (p Product) ObjectID() int64   { return p.ID }

// Export returns the audit representation of the product.
func (p Product) Export(fields ...string) export.Record {
	return export.Build(productFields, fields, func(field string) (any, bool) {
		switch field {
		case "id":
			return p.ID, true
		case "short":
			return p.Short, true
		case "name":
			return p.Name, true
		}
		return nil, false
	})
}

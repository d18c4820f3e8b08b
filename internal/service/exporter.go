package service

import (
	"context"

	"github.com/spec-kit/pdc-service/internal/domain"
	"github.com/spec-kit/pdc-service/internal/export"
	"github.com/spec-kit/pdc-service/internal/repository"
)

// NewExporter registers the contact variants so base contact handles export
// with their leaf fields.
func NewExporter(contacts repository.ContactRepository) *export.Exporter {
	exp := export.NewExporter()
	exp.RegisterLeaf(domain.ContactTypePerson, func(ctx context.Context, id int64) (export.Exportable, error) {
		person, err := contacts.GetPerson(ctx, id)
		if err != nil {
			return nil, err
		}
		return *person, nil
	})
	exp.RegisterLeaf(domain.ContactTypeMaillist, func(ctx context.Context, id int64) (export.Exportable, error) {
		list, err := contacts.GetMaillist(ctx, id)
		if err != nil {
			return nil, err
		}
		return *list, nil
	})
	return exp
}

package changeset

import (
	"context"

	"github.com/spec-kit/pdc-service/internal/domain"
	"github.com/spec-kit/pdc-service/internal/export"
)

// Recorder turns entity mutations into changes on the request's handle.
type Recorder struct {
	exporter *export.Exporter
}

func NewRecorder(exporter *export.Exporter) *Recorder {
	return &Recorder{exporter: exporter}
}

// Snapshot exports obj before it is mutated.
func (r *Recorder) Snapshot(ctx context.Context, obj export.Exportable) (export.Record, error) {
	return r.exporter.Export(ctx, obj)
}

// Created records obj as newly inserted.
func (r *Recorder) Created(ctx context.Context, obj export.Exportable) error {
	leaf, next, err := r.current(ctx, obj)
	if err != nil {
		return err
	}
	return r.add(ctx, leaf, export.None, next)
}

// Updated records obj against the snapshot taken before the write. Updates
// that leave the export untouched are not recorded.
func (r *Recorder) Updated(ctx context.Context, before export.Record, obj export.Exportable) error {
	leaf, next, err := r.current(ctx, obj)
	if err != nil {
		return err
	}
	if before.Equal(next) {
		return nil
	}
	return r.add(ctx, leaf, before, next)
}

// Deleted records the removal of obj. before must be taken prior to the delete.
func (r *Recorder) Deleted(ctx context.Context, before export.Record, obj export.Exportable) error {
	return r.add(ctx, obj, before, export.None)
}

func (r *Recorder) current(ctx context.Context, obj export.Exportable) (export.Exportable, export.Record, error) {
	leaf, err := r.exporter.Resolve(ctx, obj)
	if err != nil {
		return nil, export.None, err
	}
	rec, err := r.exporter.Export(ctx, leaf)
	if err != nil {
		return nil, export.None, err
	}
	return leaf, rec, nil
}

func (r *Recorder) add(ctx context.Context, obj export.Exportable, before, after export.Record) error {
	h, ok := FromContext(ctx)
	if !ok {
		return ErrNoChangeset
	}
	return h.Add(domain.Change{
		ModelName: obj.ModelName(),
		ObjectID:  obj.ObjectID(),
		OldValue:  before.JSON(),
		NewValue:  after.JSON(),
	})
}

// Package export produces canonical dictionary representations of domain
// entities. The same representation is stored as a change's old and new value.
package export

import (
	"context"
	"errors"
	"fmt"
	"sync"

	apperrors "github.com/spec-kit/pdc-service/pkg/util/errorutil"
)

// ErrUnknownTypeTag is wrapped in an IntegrityError when a stored type tag has
// no registered resolver.
var ErrUnknownTypeTag = errors.New("unknown type tag")

// Exportable is implemented by every audited entity.
type Exportable interface {
	ModelName() string
	ObjectID() int64
	Export(fields ...string) Record
}

// Polymorphic entities carry the discriminant of their concrete variant.
type Polymorphic interface {
	Exportable
	TypeTag() string
	BaseTag() string
}

// Nested entities embed the exports of related entities and need the exporter
// to resolve them.
type Nested interface {
	ExportNested(ctx context.Context, exp *Exporter, fields ...string) (Record, error)
}

// LeafResolver loads the variant record stored under a base id.
type LeafResolver func(ctx context.Context, id int64) (Exportable, error)

// Exporter resolves polymorphic handles to their leaf type before exporting.
type Exporter struct {
	mu     sync.RWMutex
	leaves map[string]LeafResolver
}

// NewExporter returns an exporter without registered variants.
func NewExporter() *Exporter {
	return &Exporter{leaves: make(map[string]LeafResolver)}
}

// RegisterLeaf binds a type tag to the loader of its variant rows.
func (e *Exporter) RegisterLeaf(tag string, resolve LeafResolver) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.leaves[tag] = resolve
}

// Resolve returns the leaf entity behind obj. Non-polymorphic entities, base
// tagged rows and already resolved leaves are returned unchanged.
func (e *Exporter) Resolve(ctx context.Context, obj Exportable) (Exportable, error) {
	poly, ok := obj.(Polymorphic)
	if !ok {
		return obj, nil
	}
	tag := poly.TypeTag()
	if tag == "" || tag == poly.BaseTag() || tag == obj.ModelName() {
		return obj, nil
	}

	e.mu.RLock()
	resolve, found := e.leaves[tag]
	e.mu.RUnlock()
	if !found {
		return nil, &apperrors.IntegrityError{Model: obj.ModelName(), ObjectID: obj.ObjectID(), TypeTag: tag, Err: ErrUnknownTypeTag}
	}

	leaf, err := resolve(ctx, obj.ObjectID())
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, &apperrors.IntegrityError{Model: obj.ModelName(), ObjectID: obj.ObjectID(), TypeTag: tag, Err: err}
		}
		return nil, fmt.Errorf("resolve %s %d as %s: %w", obj.ModelName(), obj.ObjectID(), tag, err)
	}
	if leaf == nil {
		return nil, &apperrors.IntegrityError{Model: obj.ModelName(), ObjectID: obj.ObjectID(), TypeTag: tag}
	}
	return leaf, nil
}

// Export returns the canonical record of obj.
func (e *Exporter) Export(ctx context.Context, obj Exportable, fields ...string) (Record, error) {
	leaf, err := e.Resolve(ctx, obj)
	if err != nil {
		return None, err
	}
	if nested, ok := leaf.(Nested); ok {
		return nested.ExportNested(ctx, e, fields...)
	}
	return leaf.Export(fields...), nil
}

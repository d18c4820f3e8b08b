package export

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/pdc-service/pkg/util/errorutil"
)

type shape struct {
	id  int64
	tag string
}

func (s shape) ModelName() string { return "shape" }
func (s shape) ObjectID() int64   { return s.id }
func (s shape) TypeTag() string   { return s.tag }
func (s shape) BaseTag() string   { return "shape" }
func (s shape) Export(fields ...string) Record {
	return Build([]string{"kind"}, fields, func(field string) (any, bool) {
		if field == "kind" {
			return "generic", true
		}
		return nil, false
	})
}

type circle struct {
	shape
	x, y int
}

func (c circle) ModelName() string { return "circle" }
func (c circle) Export(fields ...string) Record {
	return Build([]string{"x", "y"}, fields, func(field string) (any, bool) {
		switch field {
		case "x":
			return c.x, true
		case "y":
			return c.y, true
		}
		return nil, false
	})
}

type label struct {
	text  string
	shape shape
}

func (l label) ModelName() string             { return "label" }
func (l label) ObjectID() int64               { return 99 }
func (l label) Export(fields ...string) Record { return NewRecord().Set("text", l.text) }
func (l label) ExportNested(ctx context.Context, exp *Exporter, fields ...string) (Record, error) {
	inner, err := exp.Export(ctx, l.shape, fields...)
	if err != nil {
		return None, err
	}
	return NewRecord().Set("shape", inner).Set("text", l.text), nil
}

func newShapeExporter(circles map[int64]circle) *Exporter {
	exp := NewExporter()
	exp.RegisterLeaf("circle", func(_ context.Context, id int64) (Exportable, error) {
		c, ok := circles[id]
		if !ok {
			return nil, pgx.ErrNoRows
		}
		return c, nil
	})
	return exp
}

func TestExporter_ResolvesLeafFromBaseHandle(t *testing.T) {
	exp := newShapeExporter(map[int64]circle{1: {shape: shape{id: 1, tag: "circle"}, x: 3, y: 4}})

	rec, err := exp.Export(context.Background(), shape{id: 1, tag: "circle"})

	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, rec.Keys())
	assert.JSONEq(t, `{"x":3,"y":4}`, string(rec.JSON()))
}

func TestExporter_BaseTagExportsBaseFields(t *testing.T) {
	exp := newShapeExporter(nil)

	rec, err := exp.Export(context.Background(), shape{id: 2, tag: "shape"})

	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"generic"}`, string(rec.JSON()))
}

func TestExporter_LeafHandleIsNotReloaded(t *testing.T) {
	exp := NewExporter()
	exp.RegisterLeaf("circle", func(context.Context, int64) (Exportable, error) {
		t.Fatal("leaf handle must not be resolved again")
		return nil, nil
	})

	rec, err := exp.Export(context.Background(), circle{shape: shape{id: 5, tag: "circle"}, x: 1, y: 2})

	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1,"y":2}`, string(rec.JSON()))
}

func TestExporter_MissingLeafIsIntegrityError(t *testing.T) {
	exp := newShapeExporter(map[int64]circle{})

	_, err := exp.Export(context.Background(), shape{id: 8, tag: "circle"})

	var integrityErr *apperrors.IntegrityError
	require.ErrorAs(t, err, &integrityErr)
	assert.Equal(t, int64(8), integrityErr.ObjectID)
	assert.Equal(t, "circle", integrityErr.TypeTag)
}

func TestExporter_UnknownTagIsIntegrityError(t *testing.T) {
	exp := NewExporter()

	_, err := exp.Export(context.Background(), shape{id: 4, tag: "triangle"})

	var integrityErr *apperrors.IntegrityError
	require.ErrorAs(t, err, &integrityErr)
	assert.ErrorIs(t, err, ErrUnknownTypeTag)
}

func TestExporter_ResolverFailureIsNotIntegrity(t *testing.T) {
	boom := errors.New("connection reset")
	exp := NewExporter()
	exp.RegisterLeaf("circle", func(context.Context, int64) (Exportable, error) { return nil, boom })

	_, err := exp.Export(context.Background(), shape{id: 4, tag: "circle"})

	require.ErrorIs(t, err, boom)
	var integrityErr *apperrors.IntegrityError
	assert.False(t, errors.As(err, &integrityErr))
}

func TestExporter_NestedExportResolvesInnerLeaf(t *testing.T) {
	exp := newShapeExporter(map[int64]circle{1: {shape: shape{id: 1, tag: "circle"}, x: 0, y: 9}})

	rec, err := exp.Export(context.Background(), label{text: "origin", shape: shape{id: 1, tag: "circle"}})

	require.NoError(t, err)
	assert.Equal(t, `{"shape":{"x":0,"y":9},"text":"origin"}`, string(rec.JSON()))
}

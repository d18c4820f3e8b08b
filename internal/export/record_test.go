package export

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_MarshalKeepsInsertionOrder(t *testing.T) {
	rec := NewRecord().
		Set("username", "alice").
		Set("email", "alice@example.com").
		Set("active", true)

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	assert.Equal(t, `{"username":"alice","email":"alice@example.com","active":true}`, string(raw))
	assert.Equal(t, []string{"username", "email", "active"}, rec.Keys())
}

func TestRecord_NoneIsNull(t *testing.T) {
	raw, err := json.Marshal(None)
	require.NoError(t, err)

	assert.Equal(t, "null", string(raw))
	assert.True(t, None.IsNone())
	assert.False(t, NewRecord().IsNone())
	assert.Equal(t, "{}", string(NewRecord().JSON()))
}

func TestRecord_UnmarshalRoundTripPreservesOrder(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(`{"zeta":1,"alpha":"a"}`), &rec))

	assert.Equal(t, []string{"zeta", "alpha"}, rec.Keys())
	assert.JSONEq(t, `{"zeta":1,"alpha":"a"}`, string(rec.JSON()))

	var none Record
	require.NoError(t, json.Unmarshal([]byte(`null`), &none))
	assert.True(t, none.IsNone())
}

func TestRecord_Equal(t *testing.T) {
	a := NewRecord().Set("name", "a")
	b := NewRecord().Set("name", "a")
	c := NewRecord().Set("name", "b")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(None))
	assert.True(t, None.Equal(Record{}))
}

func TestBuild_DefaultsAndSelection(t *testing.T) {
	values := map[string]any{"name": "bash", "dist_git_path": "rpms/bash", "id": int64(3)}
	get := func(field string) (any, bool) {
		v, ok := values[field]
		return v, ok
	}

	def := Build([]string{"name", "dist_git_path"}, nil, get)
	assert.Equal(t, []string{"name", "dist_git_path"}, def.Keys())

	picked := Build([]string{"name", "dist_git_path"}, []string{"id", "unknown", "name"}, get)
	assert.Equal(t, []string{"id", "name"}, picked.Keys())
}

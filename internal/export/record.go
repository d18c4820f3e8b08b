package export

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var nullJSON = []byte("null")

// Record is the canonical, insertion-ordered export of an entity. The zero
// value is None: the "no value" side of a create or delete.
type Record struct {
	fields *orderedmap.OrderedMap[string, any]
}

// None marks the missing side of a change.
var None = Record{}

// NewRecord returns an empty, non-None record.
func NewRecord() Record {
	return Record{fields: orderedmap.New[string, any]()}
}

// IsNone reports whether r is the None sentinel.
func (r Record) IsNone() bool {
	return r.fields == nil
}

// Set stores value under key, keeping the first insertion position.
func (r Record) Set(key string, value any) Record {
	if r.fields == nil {
		r = NewRecord()
	}
	r.fields.Set(key, value)
	return r
}

// Get returns the value stored under key.
func (r Record) Get(key string) (any, bool) {
	if r.fields == nil {
		return nil, false
	}
	return r.fields.Get(key)
}

// Keys lists field names in export order.
func (r Record) Keys() []string {
	if r.fields == nil {
		return nil
	}
	keys := make([]string, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

func (r Record) Len() int {
	if r.fields == nil {
		return 0
	}
	return r.fields.Len()
}

// MarshalJSON encodes fields in export order; None encodes as null.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.fields == nil {
		return nullJSON, nil
	}
	return r.fields.MarshalJSON()
}

// UnmarshalJSON decodes an object preserving key order; null decodes to None.
func (r *Record) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), nullJSON) {
		*r = None
		return nil
	}
	fields := orderedmap.New[string, any]()
	if err := fields.UnmarshalJSON(data); err != nil {
		return err
	}
	r.fields = fields
	return nil
}

// JSON returns the encoded record. Encoding plain field values cannot fail, so
// errors collapse to null.
func (r Record) JSON() json.RawMessage {
	raw, err := r.MarshalJSON()
	if err != nil {
		return json.RawMessage(nullJSON)
	}
	return json.RawMessage(raw)
}

// Equal compares two records by their encoded form, field order included.
func (r Record) Equal(other Record) bool {
	return bytes.Equal(r.JSON(), other.JSON())
}

// Build assembles a record from an entity's field accessor. When requested is
// empty the type's default field list is used. Unknown fields are skipped.
func Build(defaults, requested []string, value func(field string) (any, bool)) Record {
	fields := requested
	if len(fields) == 0 {
		fields = defaults
	}
	rec := NewRecord()
	for _, field := range fields {
		if v, ok := value(field); ok {
			rec.Set(field, v)
		}
	}
	return rec
}

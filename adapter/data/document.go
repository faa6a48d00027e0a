// Package data contains the default [domain.Document] implementations: the
// map-backed [M] and the insertion-ordered [D], plus conversions from Go
// values, JSON text and BSON.
package data

import (
	"iter"
	"maps"
	"slices"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vinicius-lino-figueiredo/docops/domain"
)

// M implements domain.Document by using a hashed map. Iteration happens in
// ascending key order so that results do not depend on map ordering.
type M map[string]any

// Get implements domain.Document.
func (d M) Get(key string) any {
	return d[key]
}

// GetOk implements domain.Document.
func (d M) GetOk(key string) (any, bool) {
	v, ok := d[key]
	return v, ok
}

// Set implements domain.Document.
func (d M) Set(key string, value any) {
	d[key] = value
}

// Unset implements domain.Document.
func (d M) Unset(key string) {
	delete(d, key)
}

// Has implements domain.Document.
func (d M) Has(key string) bool {
	_, has := d[key]
	return has
}

// Iter implements domain.Document.
func (d M) Iter() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, k := range slices.Sorted(maps.Keys(d)) {
			if !yield(k, d[k]) {
				return
			}
		}
	}
}

// Keys implements domain.Document.
func (d M) Keys() iter.Seq[string] {
	return slices.Values(slices.Sorted(maps.Keys(d)))
}

// Len implements domain.Document.
func (d M) Len() int {
	return len(d)
}

// D implements domain.Document keeping keys in insertion order. It shares its
// layout with [bson.D], so a *bson.D can be used as a *D without copying.
type D []bson.E

// Ordered creates a new [D] from pairs in the form Ordered(key1, value1,
// key2, value2, ...). Pairs whose key is not a string are ignored.
func Ordered(pairs ...any) *D {
	d := make(D, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if key, ok := pairs[i].(string); ok {
			d.Set(key, pairs[i+1])
		}
	}
	return &d
}

func (d *D) index(key string) int {
	for n, e := range *d {
		if e.Key == key {
			return n
		}
	}
	return -1
}

// Get implements domain.Document.
func (d *D) Get(key string) any {
	v, _ := d.GetOk(key)
	return v
}

// GetOk implements domain.Document.
func (d *D) GetOk(key string) (any, bool) {
	if i := d.index(key); i >= 0 {
		return (*d)[i].Value, true
	}
	return nil, false
}

// Set implements domain.Document. Existing keys keep their position.
func (d *D) Set(key string, value any) {
	if i := d.index(key); i >= 0 {
		(*d)[i].Value = value
		return
	}
	*d = append(*d, bson.E{Key: key, Value: value})
}

// Unset implements domain.Document.
func (d *D) Unset(key string) {
	if i := d.index(key); i >= 0 {
		*d = slices.Delete(*d, i, i+1)
	}
}

// Has implements domain.Document.
func (d *D) Has(key string) bool {
	return d.index(key) >= 0
}

// Iter implements domain.Document.
func (d *D) Iter() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, e := range *d {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// Keys implements domain.Document.
func (d *D) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, e := range *d {
			if !yield(e.Key) {
				return
			}
		}
	}
}

// Len implements domain.Document.
func (d *D) Len() int {
	return len(*d)
}

// AsDocument returns v as a [domain.Document] without copying it. Maps with
// string keys ([M], map[string]any, [bson.M]) and *[bson.D] share their
// storage with the returned document. A [bson.D] value shares its elements,
// but keys added through the returned document are not visible in v.
func AsDocument(v any) (domain.Document, bool) {
	switch t := v.(type) {
	case *D:
		return t, t != nil
	case M:
		return t, t != nil
	case domain.Document:
		return t, true
	case map[string]any:
		return M(t), t != nil
	case bson.M:
		return M(t), t != nil
	case *bson.D:
		return (*D)(t), t != nil
	case bson.D:
		d := D(t)
		return &d, true
	case D:
		return &t, true
	default:
		return nil, false
	}
}

// IsDocument reports whether [AsDocument] accepts v.
func IsDocument(v any) bool {
	_, ok := AsDocument(v)
	return ok
}

// AsList returns v as a slice of any, if it is a [bson.A] or []any.
func AsList(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case bson.A:
		return []any(t), true
	default:
		return nil, false
	}
}

// NewEmpty returns a new empty document of the same flavour as like: an
// ordered document if like is ordered, a map otherwise.
func NewEmpty(like domain.Document) domain.Document {
	switch like.(type) {
	case *D:
		return &D{}
	default:
		return M{}
	}
}

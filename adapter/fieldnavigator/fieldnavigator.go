// Package fieldnavigator reads and writes values inside documents through
// dotted paths.
package fieldnavigator

import (
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vinicius-lino-figueiredo/docops/adapter/data"
	"github.com/vinicius-lino-figueiredo/docops/domain"
)

// FieldNavigator implements [domain.FieldNavigator].
type FieldNavigator struct{}

// NewFieldNavigator returns a new instance of [domain.FieldNavigator].
func NewFieldNavigator() domain.FieldNavigator {
	return &FieldNavigator{}
}

// GetAddress implements [domain.FieldNavigator].
func (fn *FieldNavigator) GetAddress(path string) []string {
	return strings.Split(path, ".")
}

// GetPath implements [domain.FieldNavigator]. Any intermediate value that is
// not a document (including zero values, lists and the tombstone) makes the
// whole path undefined. The leaf is returned as stored.
func (fn *FieldNavigator) GetPath(doc domain.Document, path string) (any, bool) {
	if doc == nil {
		return nil, false
	}
	var curr any = doc
	for _, part := range fn.GetAddress(path) {
		d, ok := data.AsDocument(curr)
		if !ok {
			return nil, false
		}
		v, ok := d.GetOk(part)
		if !ok || domain.IsTombstone(v) {
			return nil, false
		}
		curr = v
	}
	return curr, true
}

// SetPath implements [domain.FieldNavigator].
func (fn *FieldNavigator) SetPath(doc domain.Document, path string, value any) domain.Document {
	parent, key, ok := fn.ensureParent(doc, path)
	if ok {
		parent.Set(key, value)
	}
	return doc
}

// DeletePath implements [domain.FieldNavigator].
func (fn *FieldNavigator) DeletePath(doc domain.Document, path string, tombstone bool) domain.Document {
	parent, key, ok := fn.ensureParent(doc, path)
	if !ok {
		return doc
	}
	if tombstone {
		parent.Set(key, domain.Tombstone)
	} else {
		parent.Unset(key)
	}
	return doc
}

// ensureParent walks to the document holding the last segment of path,
// creating every missing link on the way. It fails if a link holds a value
// that is neither empty nor a document.
func (fn *FieldNavigator) ensureParent(doc domain.Document, path string) (domain.Document, string, bool) {
	if doc == nil {
		return nil, "", false
	}
	parts := fn.GetAddress(path)
	curr := doc
	for _, part := range parts[:len(parts)-1] {
		v, has := curr.GetOk(part)
		if !has || isEmpty(v) {
			next := data.NewEmpty(curr)
			curr.Set(part, next)
			curr = next
			continue
		}
		next, ok := data.AsDocument(v)
		if !ok {
			return nil, "", false
		}
		// ordered values cannot grow in place, so their parent gets
		// the pointer the writes go through.
		switch v.(type) {
		case bson.D, data.D:
			curr.Set(part, next)
		}
		curr = next
	}
	return curr, parts[len(parts)-1], true
}

func isEmpty(v any) bool {
	switch v.(type) {
	case nil, bson.Null, bson.Undefined:
		return true
	}
	return false
}

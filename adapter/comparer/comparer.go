// Package comparer classifies values into type classes and orders them.
package comparer

import (
	"bytes"
	"cmp"
	"iter"
	"reflect"
	"regexp"
	"time"

	goreflect "github.com/goccy/go-reflect"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vinicius-lino-figueiredo/docops/adapter/data"
	"github.com/vinicius-lino-figueiredo/docops/domain"
	"github.com/vinicius-lino-figueiredo/docops/pkg/structure"
)

// Comparer implements domain.Comparer.
type Comparer struct{}

// NewComparer returns a new implementation of domain.Comparer.
func NewComparer() domain.Comparer {
	return &Comparer{}
}

// Classify implements domain.Comparer.
func (c *Comparer) Classify(v any) domain.TypeClass {
	switch t := v.(type) {
	case nil, bson.Null:
		return domain.TypeNull
	case bson.Undefined:
		return domain.TypeUnknown
	case *regexp.Regexp:
		if t == nil {
			return domain.TypeNull
		}
		return domain.TypeRegex
	case bson.Regex:
		return domain.TypeRegex
	case *time.Time:
		if t == nil {
			return domain.TypeNull
		}
		return domain.TypeDate
	case time.Time, bson.DateTime, bson.Timestamp:
		return domain.TypeDate
	case bool:
		return domain.TypeBoolean
	case []byte, bson.Binary, bson.ObjectID, uuid.UUID:
		return domain.TypeBuffer
	case string:
		return domain.TypeString
	}
	if structure.IsNumber(v) {
		return domain.TypeNumber
	}
	if structure.IsNil(v) {
		return domain.TypeNull
	}
	if _, ok := data.AsList(v); ok {
		return domain.TypeArray
	}
	if data.IsDocument(v) {
		return domain.TypeObject
	}
	return c.classifyReflect(v)
}

func (c *Comparer) classifyReflect(v any) domain.TypeClass {
	r := goreflect.ValueNoEscapeOf(v)
	switch r.Kind() {
	case goreflect.Slice, goreflect.Array:
		return domain.TypeArray
	case goreflect.Map:
		if r.Type().Key().Kind() == goreflect.String {
			return domain.TypeObject
		}
	case goreflect.Struct:
		return domain.TypeObject
	}
	return domain.TypeUnknown
}

// Compare implements domain.Comparer. Values of different type classes are
// ordered by their class, the class placed later in [domain.TypeOrder]
// being the smaller one.
func (c *Comparer) Compare(a any, b any) (int, error) {
	ca, cb := c.Classify(a), c.Classify(b)
	if ca != cb {
		return cmp.Compare(cb.Weight(), ca.Weight()), nil
	}

	switch ca {
	case domain.TypeNumber:
		x, okA := structure.AsNumber(a)
		y, okB := structure.AsNumber(b)
		// NaN sorts before every other number.
		if !okA || !okB {
			return cmp.Compare(boolInt(okA), boolInt(okB)), nil
		}
		return x.Cmp(y), nil
	case domain.TypeString:
		return cmp.Compare(a.(string), b.(string)), nil
	case domain.TypeBoolean:
		return c.compareBool(a.(bool), b.(bool)), nil
	case domain.TypeDate:
		x, _ := AsTime(a)
		y, _ := AsTime(b)
		return x.Compare(y), nil
	case domain.TypeBuffer:
		return bytes.Compare(asBytes(a), asBytes(b)), nil
	case domain.TypeRegex:
		return cmp.Compare(pattern(a), pattern(b)), nil
	case domain.TypeArray:
		return c.compareArray(AsList(a), AsList(b))
	case domain.TypeObject:
		x, err := asDoc(a)
		if err != nil {
			return 0, err
		}
		y, err := asDoc(b)
		if err != nil {
			return 0, err
		}
		return c.compareDoc(x, y)
	default:
		return 0, nil
	}
}

func (c *Comparer) compareArray(a, b []any) (int, error) {
	minLength := min(len(a), len(b))

	var comp int
	var err error
	for i := range minLength {
		comp, err = c.Compare(a[i], b[i])
		if err != nil {
			return 0, err
		}

		if comp != 0 {
			return comp, nil
		}
	}

	// Common section was identical, longest one wins
	return cmp.Compare(len(a), len(b)), nil
}

func (c *Comparer) compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if a {
		return 1
	}
	return -1
}

// compareDoc compares documents field by field in iteration order, first by
// key and then by value.
func (c *Comparer) compareDoc(a domain.Document, b domain.Document) (int, error) {
	nextB, stop := iter.Pull2(b.Iter())
	defer stop()
	for ka, va := range a.Iter() {
		kb, vb, ok := nextB()
		if !ok {
			return 1, nil
		}
		if comp := cmp.Compare(ka, kb); comp != 0 {
			return comp, nil
		}
		comp, err := c.Compare(va, vb)
		if err != nil || comp != 0 {
			return comp, err
		}
	}
	return cmp.Compare(a.Len(), b.Len()), nil
}

// RankMin implements domain.Comparer. Numbers are compared numerically and
// dates by instant, ties returning a. Any other pair is ranked by type
// class: a is returned only if its class is placed later in
// [domain.TypeOrder] than the class of b.
func (c *Comparer) RankMin(a, b any) any {
	if comp, ok := c.compareScalar(a, b); ok {
		if comp <= 0 {
			return a
		}
		return b
	}
	if c.Classify(a).Weight() > c.Classify(b).Weight() {
		return a
	}
	return b
}

// RankMax implements domain.Comparer. It mirrors [Comparer.RankMin]: a is
// returned for a different pair only if its class is placed earlier in
// [domain.TypeOrder] than the class of b.
func (c *Comparer) RankMax(a, b any) any {
	if comp, ok := c.compareScalar(a, b); ok {
		if comp >= 0 {
			return a
		}
		return b
	}
	if c.Classify(a).Weight() < c.Classify(b).Weight() {
		return a
	}
	return b
}

func (c *Comparer) compareScalar(a, b any) (int, bool) {
	if x, ok := structure.AsNumber(a); ok {
		if y, ok := structure.AsNumber(b); ok {
			return x.Cmp(y), true
		}
		return 0, false
	}
	if x, ok := AsTime(a); ok {
		if y, ok := AsTime(b); ok {
			return x.Compare(y), true
		}
	}
	return 0, false
}

// StrictEqual implements domain.Comparer. Numbers are equal across Go
// numeric types, dates are equal if they represent the same instant and
// buffers if they hold the same bytes. Lists and documents are only equal
// to themselves.
func (c *Comparer) StrictEqual(a, b any) bool {
	ca, cb := c.Classify(a), c.Classify(b)
	if ca != cb {
		return false
	}
	switch ca {
	case domain.TypeNull:
		return true
	case domain.TypeNumber:
		x, okA := structure.AsNumber(a)
		y, okB := structure.AsNumber(b)
		return okA && okB && x.Cmp(y) == 0
	case domain.TypeString:
		return a.(string) == b.(string)
	case domain.TypeBoolean:
		return a.(bool) == b.(bool)
	case domain.TypeDate:
		x, _ := AsTime(a)
		y, _ := AsTime(b)
		return x.Equal(y)
	case domain.TypeBuffer:
		return bytes.Equal(asBytes(a), asBytes(b))
	case domain.TypeRegex:
		if x, ok := a.(*regexp.Regexp); ok {
			y, ok := b.(*regexp.Regexp)
			return ok && x == y
		}
		return sameIdentity(a, b)
	default:
		return sameIdentity(a, b)
	}
}

func sameIdentity(a, b any) bool {
	ra := reflect.ValueOf(a)
	rb := reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Slice:
		return ra.Len() == rb.Len() && ra.Pointer() == rb.Pointer()
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.Func:
		return ra.Pointer() == rb.Pointer()
	default:
		// Comparable types may still hold uncomparable values in
		// interface fields.
		return ra.Comparable() && rb.Comparable() && a == b
	}
}

// AsTime returns the instant represented by a date value.
func AsTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case bson.DateTime:
		return t.Time(), true
	case bson.Timestamp:
		return time.Unix(int64(t.T), 0), true
	default:
		return time.Time{}, false
	}
}

// AsList returns the elements of any list value.
func AsList(v any) []any {
	if l, ok := data.AsList(v); ok {
		return l
	}
	r := goreflect.ValueNoEscapeOf(v)
	switch r.Kind() {
	case goreflect.Slice, goreflect.Array:
		res := make([]any, r.Len())
		for i := range res {
			res[i] = r.Index(i).Interface()
		}
		return res
	default:
		return nil
	}
}

func asDoc(v any) (domain.Document, error) {
	if d, ok := data.AsDocument(v); ok {
		return d, nil
	}
	return data.NewDocument(v)
}

func asBytes(v any) []byte {
	switch t := v.(type) {
	case []byte:
		return t
	case bson.Binary:
		return t.Data
	case bson.ObjectID:
		return t[:]
	case uuid.UUID:
		return t[:]
	default:
		return nil
	}
}

func pattern(v any) string {
	switch t := v.(type) {
	case *regexp.Regexp:
		return t.String()
	case bson.Regex:
		return t.Pattern
	default:
		return ""
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package data

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	goreflect "github.com/goccy/go-reflect"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vinicius-lino-figueiredo/docops/domain"
)

// TagName is the struct tag read when converting structs into documents. If a
// field has no such tag, its bson tag is used instead.
const TagName = "docops"

const fallbackTagName = "bson"

// ErrMapKeyType is returned when a map being converted into a document has
// keys that are not strings.
var ErrMapKeyType = errors.New("map keys should be strings")

var (
	timeTyp = goreflect.TypeOf(*new(time.Time))
)

// NewDocument returns a new [domain.Document] holding a deep copy of in.
// Maps and structs become [M], [bson.D] becomes [D], and lists become []any.
// Values that have a meaning of their own (dates, regular expressions,
// binary data, BSON scalars) are kept as they are.
func NewDocument(in any) (domain.Document, error) {
	if in == nil {
		return M{}, nil
	}

	r := goreflect.ValueNoEscapeOf(in)
	k := r.Kind()
	for k == goreflect.Interface || k == goreflect.Ptr {
		if r.IsNil() {
			return M{}, nil
		}
		if _, ok := r.Interface().(*bson.D); ok {
			break
		}
		r = r.Elem()
		k = r.Kind()
	}
	if k != goreflect.Struct && k != goreflect.Map && k != goreflect.Slice && k != goreflect.Ptr {
		return nil, domain.ErrDocumentType{Actual: in}
	}
	v, err := parseReflect(r)
	if err != nil {
		return nil, err
	}
	doc, ok := v.(domain.Document)
	if !ok {
		return nil, domain.ErrDocumentType{Actual: in}
	}
	return doc, nil
}

// Normalize returns a deep copy of v in which every document is a
// [domain.Document] and every list is a []any.
func Normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return parseReflect(goreflect.ValueNoEscapeOf(v))
}

func parseScalar(v any) (any, bool) {
	switch t := v.(type) {
	case string, bool, time.Time, *regexp.Regexp, []byte, uuid.UUID,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		bson.Regex, bson.DateTime, bson.Binary, bson.ObjectID,
		bson.Timestamp, bson.Undefined, bson.Null, bson.Decimal128:
		return t, true
	default:
		return nil, false
	}
}

func parseDocs(v any) (any, bool, error) {
	switch t := v.(type) {
	case *D:
		res, err := parseOrdered(*t)
		return res, true, err
	case D:
		res, err := parseOrdered(t)
		return res, true, err
	case bson.D:
		res, err := parseOrdered(D(t))
		return res, true, err
	case *bson.D:
		res, err := parseOrdered(D(*t))
		return res, true, err
	case domain.Document:
		res := make(M, t.Len())
		for k, v := range t.Iter() {
			var err error
			if res[k], err = Normalize(v); err != nil {
				return nil, true, err
			}
		}
		return res, true, nil
	default:
		return nil, false, nil
	}
}

func parseOrdered(d D) (*D, error) {
	res := make(D, len(d))
	for n, e := range d {
		value, err := Normalize(e.Value)
		if err != nil {
			return nil, err
		}
		res[n] = bson.E{Key: e.Key, Value: value}
	}
	return &res, nil
}

func parseReflect(r goreflect.Value) (any, error) {
	for r.Kind() == goreflect.Ptr || r.Kind() == goreflect.Interface {
		if r.IsNil() {
			return nil, nil
		}
		if r.Kind() == goreflect.Ptr && r.CanInterface() {
			if res, ok, err := parseDocs(r.Interface()); ok {
				return res, err
			}
			if re, ok := r.Interface().(*regexp.Regexp); ok {
				return re, nil
			}
		}
		r = r.Elem()
	}
	if r.Kind() == goreflect.Invalid {
		return nil, nil
	}
	if r.CanInterface() {
		iface := r.Interface()
		if v, ok := parseScalar(iface); ok {
			return v, nil
		}
		if res, ok, err := parseDocs(iface); ok {
			return res, err
		}
	}
	switch r.Kind() {
	case goreflect.Slice:
		if r.IsNil() {
			return nil, nil
		}
		fallthrough
	case goreflect.Array:
		return parseList(r)
	case goreflect.Struct:
		if r.Type() == timeTyp {
			return r.Interface(), nil
		}
		return parseStruct(r)
	case goreflect.Map:
		if r.IsNil() {
			return nil, nil
		}
		return parseMapReflect(r)
	case goreflect.Chan, goreflect.Func:
		if r.IsNil() {
			return nil, nil
		}
		return r.Interface(), nil
	default:
		return r.Interface(), nil
	}
}

func parseStruct(r goreflect.Value) (domain.Document, error) {
	typ := r.Type()
	numField := r.NumField()

	res := make(M, numField)

	for n := range numField {
		field := typ.Field(n)
		if field.PkgPath != "" {
			continue
		}
		fieldValue := r.Field(n)

		fieldInfo, err := parseField(fieldValue, field)
		if err != nil {
			return nil, err
		}

		if fieldInfo == nil {
			continue
		}
		res[fieldInfo.name] = fieldInfo.value
	}
	return res, nil
}

func parseMapReflect(v goreflect.Value) (domain.Document, error) {
	res := make(M, v.Len())
	for _, k := range v.MapKeys() {
		if k.Kind() != goreflect.String {
			return nil, fmt.Errorf("%w, got %s", ErrMapKeyType, k.Type().String())
		}
		str := k.String()
		var err error
		if res[str], err = parseReflect(v.MapIndex(k)); err != nil {
			return nil, err
		}
	}
	return res, nil
}

type field struct {
	name  string
	value any
}

func parseField(r goreflect.Value, typ goreflect.StructField) (*field, error) {
	name := typ.Name
	var tagSegments []string
	tag, ok := typ.Tag.Lookup(TagName)
	if !ok {
		tag, ok = typ.Tag.Lookup(fallbackTagName)
	}
	if ok {
		if tag == "-" {
			return nil, nil
		}
		tagSegments = strings.Split(tag, ",")
		if tagSegments[0] != "" {
			name = tagSegments[0]
		}
		tagSegments = tagSegments[1:]
	}
	if slices.Contains(tagSegments, "omitempty") && isNullable(typ.Type) && r.IsNil() {
		return nil, nil
	}
	if slices.Contains(tagSegments, "omitzero") && r.IsZero() {
		return nil, nil
	}

	value, err := parseReflect(r)
	if err != nil {
		return nil, err
	}

	return &field{name: name, value: value}, nil
}

func parseList(r goreflect.Value) (any, error) {
	length := r.Len()
	res := make([]any, length)
	for i := range length {
		var err error
		if res[i], err = parseReflect(r.Index(i)); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func isNullable(t goreflect.Type) bool {
	k := t.Kind()
	return k == goreflect.Ptr ||
		k == goreflect.Slice ||
		k == goreflect.Map ||
		k == goreflect.Interface ||
		k == goreflect.Func ||
		k == goreflect.Chan
}

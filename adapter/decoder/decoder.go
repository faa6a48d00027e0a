// Package decoder contains the default [domain.Decoder] implementation.
package decoder

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vinicius-lino-figueiredo/docops/adapter/data"
	"github.com/vinicius-lino-figueiredo/docops/domain"
)

var docType = reflect.TypeOf((*domain.Document)(nil)).Elem()

// Decoder implements domain.Decoder.
type Decoder struct {
	timeLayout string
}

// NewDecoder returns a new implementation of domain.Decoder.
func NewDecoder(options ...Option) domain.Decoder {
	d := &Decoder{timeLayout: time.RFC3339Nano}
	for _, option := range options {
		option(d)
	}
	return d
}

// Decode implements domain.Decoder. Struct fields are matched by their
// docops tag. Tombstoned fields are left out, as if they were never set.
// Strings are decoded into [time.Time] fields using the configured layout.
func (d *Decoder) Decode(source any, target any) error {
	if target == nil {
		return domain.ErrTargetNil
	}
	if reflect.ValueOf(target).Kind() != reflect.Pointer {
		return domain.ErrNonPointer
	}

	// plainHook may produce nil, so it has to run last.
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: data.TagName,
		Result:  target,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(d.timeLayout),
			d.plainHook,
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(source); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDecode{Source: source, Target: target}, err)
	}
	return nil
}

func (d *Decoder) plainHook(_ reflect.Type, to reflect.Type, v any) (any, error) {
	if to.Implements(docType) {
		return v, nil
	}
	return d.plain(v), nil
}

// plain replaces documents with maps and lists with []any, recursively.
func (d *Decoder) plain(value any) any {
	if doc, ok := data.AsDocument(value); ok {
		res := make(map[string]any, doc.Len())
		for k, v := range doc.Iter() {
			if !domain.IsTombstone(v) {
				res[k] = d.plain(v)
			}
		}
		return res
	}
	if l, ok := data.AsList(value); ok {
		res := make([]any, len(l))
		for n, v := range l {
			res[n] = d.plain(v)
		}
		return res
	}
	switch t := value.(type) {
	case bson.DateTime:
		return t.Time()
	case bson.Null, bson.Undefined:
		return nil
	default:
		return value
	}
}

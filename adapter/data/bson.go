package data

import (
	"regexp"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vinicius-lino-figueiredo/docops/domain"
)

// uuidSubtype is the BSON binary subtype of RFC 4122 UUIDs.
const uuidSubtype byte = 0x04

// ToBSON converts v into the representation used by the BSON driver.
// Documents become [bson.D], lists become [bson.A], UUIDs become binary
// subtype 4 and compiled regular expressions become [bson.Regex]. Any other
// value is returned unchanged.
func ToBSON(v any) any {
	if doc, ok := AsDocument(v); ok {
		res := make(bson.D, 0, doc.Len())
		for k, v := range doc.Iter() {
			res = append(res, bson.E{Key: k, Value: ToBSON(v)})
		}
		return res
	}
	if list, ok := AsList(v); ok {
		res := make(bson.A, len(list))
		for n, item := range list {
			res[n] = ToBSON(item)
		}
		return res
	}
	switch t := v.(type) {
	case uuid.UUID:
		return bson.Binary{Subtype: uuidSubtype, Data: t[:]}
	case *regexp.Regexp:
		if t == nil {
			return nil
		}
		return bson.Regex{Pattern: t.String()}
	default:
		return v
	}
}

// FromBSON converts a value decoded by the BSON driver into the
// representation used by this package. Documents become [*D], arrays become
// []any, dates become [time.Time] and binary subtype 4 becomes a
// [uuid.UUID].
func FromBSON(v any) any {
	switch t := v.(type) {
	case bson.D:
		res := make(D, len(t))
		for n, e := range t {
			res[n] = bson.E{Key: e.Key, Value: FromBSON(e.Value)}
		}
		return &res
	case bson.M:
		res := make(M, len(t))
		for k, v := range t {
			res[k] = FromBSON(v)
		}
		return res
	case bson.A:
		res := make([]any, len(t))
		for n, item := range t {
			res[n] = FromBSON(item)
		}
		return res
	case bson.DateTime:
		return t.Time()
	case bson.Binary:
		if t.Subtype == uuidSubtype && len(t.Data) == 16 {
			if u, err := uuid.FromBytes(t.Data); err == nil {
				return u
			}
		}
		return t
	default:
		return v
	}
}

// Marshal encodes doc as a BSON document.
func Marshal(doc domain.Document) ([]byte, error) {
	return bson.Marshal(ToBSON(doc))
}

// Unmarshal decodes a BSON document into an ordered document.
func Unmarshal(b []byte) (domain.Document, error) {
	var d bson.D
	if err := bson.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	return FromBSON(d).(*D), nil
}

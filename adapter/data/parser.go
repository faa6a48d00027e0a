package data

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vinicius-lino-figueiredo/docops/domain"
)

// ErrInvalidJSON wraps every error found while parsing JSON.
var ErrInvalidJSON = errors.New("invalid JSON")

// ParseJSON parses a single relaxed Extended JSON value. Objects become
// ordered documents ([*D]) so that the key order of the text is kept, arrays
// become []any and values are converted as in [FromBSON]. Whole numbers that
// fit become int32, larger ones int64, and any other number float64.
// {"$date": "2024-01-02T03:04:05Z"} becomes a [time.Time].
func ParseJSON(data []byte) (any, error) {
	wrapped := make([]byte, 0, len(data)+6)
	wrapped = append(wrapped, `{"v":`...)
	wrapped = append(wrapped, data...)
	wrapped = append(wrapped, '}')

	var d bson.D
	if err := bson.UnmarshalExtJSON(wrapped, false, &d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	if len(d) != 1 {
		return nil, fmt.Errorf("%w: more than one value", ErrInvalidJSON)
	}
	return FromBSON(d[0].Value), nil
}

// ParseDocuments parses either a JSON array of objects or a sequence of
// whitespace separated JSON objects.
func ParseDocuments(data []byte) ([]domain.Document, error) {
	if trimmed := bytes.TrimLeftFunc(data, unicode.IsSpace); len(trimmed) > 0 && trimmed[0] == '[' {
		val, err := ParseJSON(trimmed)
		if err != nil {
			return nil, err
		}
		list, _ := val.([]any)
		docs := make([]domain.Document, len(list))
		for n, item := range list {
			if docs[n], err = asParsedDoc(item); err != nil {
				return nil, err
			}
		}
		return docs, nil
	}

	var docs []domain.Document
	dec := json.NewDecoder(bytes.NewReader(data))
	for {
		var raw json.RawMessage
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
		}
		val, err := ParseJSON(raw)
		if err != nil {
			return nil, err
		}
		doc, err := asParsedDoc(val)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
}

func asParsedDoc(v any) (domain.Document, error) {
	doc, ok := v.(*D)
	if !ok {
		return nil, domain.ErrDocumentType{Actual: v}
	}
	return doc, nil
}

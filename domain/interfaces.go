// Package domain contains domain-specific interfaces, shared types and option
// types for docops.
//
// This package defines the interfaces implemented by the adapters (path
// navigation, type ordering, delta application, query matching, validation
// and projection) as well as the functional options used to configure them.
package domain

import (
	"iter"
	"time"
)

// Document is a nested mapping of string keys to values. Implementations are
// not required to be concurrency safe: a document being modified by a
// [Modifier] must not be shared with other goroutines.
type Document interface {
	// Get returns the value under the given key, or nil if unset.
	Get(string) any
	// GetOk returns the value under the given key and whether the key is
	// set at all.
	GetOk(string) (any, bool)
	// Set sets the value under the given key.
	Set(string, any)
	// Unset removes the given key.
	Unset(string)
	// Has reports whether a value is set under the given key.
	Has(string) bool
	// Iter returns the key-value pairs of the document in iteration order.
	// Ordered implementations yield insertion order.
	Iter() iter.Seq2[string, any]
	// Keys returns the keys of the document in iteration order.
	Keys() iter.Seq[string]
	// Len returns the number of set fields in the document.
	Len() int
}

// FieldNavigator addresses values inside a [Document] through dotted paths.
type FieldNavigator interface {
	// GetAddress splits a dotted path into its segments.
	GetAddress(path string) []string
	// GetPath returns the value at path and whether it is defined.
	GetPath(doc Document, path string) (any, bool)
	// SetPath writes value at path, creating missing intermediate
	// documents, and returns doc.
	SetPath(doc Document, path string, value any) Document
	// DeletePath removes the value at path, or replaces it with
	// [Tombstone] if tombstone is true, and returns doc.
	DeletePath(doc Document, path string, tombstone bool) Document
}

// Comparer classifies values and orders them.
type Comparer interface {
	// Classify returns the [TypeClass] of a value.
	Classify(any) TypeClass
	// Compare returns -1, 0, or 1 based on the comparison of two values.
	Compare(any, any) (int, error)
	// RankMin returns the smaller of two values.
	RankMin(a, b any) any
	// RankMax returns the greater of two values.
	RankMax(a, b any) any
	// StrictEqual reports whether two values are the same value.
	StrictEqual(a, b any) bool
}

// TimeGetter provides current time for timestamping operations.
type TimeGetter interface {
	// GetTime returns the current time.
	GetTime() time.Time
}

// Modifier applies update deltas to documents.
type Modifier interface {
	// Modify applies delta to target in place and returns target.
	Modify(target any, delta any, options ...ApplyOption) any
}

// Matcher evaluates whether a single document matches a query.
type Matcher interface {
	// Match returns true if doc matches query.
	Match(query any, doc any) (bool, error)
}

// Querier filters collections of documents.
type Querier interface {
	// Query returns the documents of docs that match query.
	Query(docs []any, query any) ([]any, error)
	// Indices returns the positions in docs of the matching documents,
	// in result order.
	Indices(docs []any, query any) ([]int, error)
}

// Validator checks deltas against operator and path allow-lists.
type Validator interface {
	// Validate returns nil if the delta only uses allowed operators and
	// paths, or an error listing every violation.
	Validate(deltaOrValue any, allowedOperators []string, allowedPaths []string) error
}

// Projector rewrites the paths of deltas and queries through an alias table.
type Projector interface {
	// ProjectDelta renames the operand paths of every operator.
	ProjectDelta(delta any, aliases map[string]string) any
	// ProjectQuery renames the query fields.
	ProjectQuery(query any, aliases map[string]string) any
}

// Decoder converts between different data representations.
type Decoder interface {
	// Decode converts from one data format to another.
	Decode(any, any) error
}

// DocumentFactory represents a function that constructs [Document] instances
// from structured data types. If nil is provided, returns an empty document.
type DocumentFactory = func(any) (Document, error)

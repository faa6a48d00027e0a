// Package docops applies MongoDB-style update operators and queries to plain
// in-memory documents.
//
// A delta such as {$set: {"a.b": 1}, $inc: {n: 2}} is applied to a document
// with [ApplyDelta], a collection is filtered with [ApplyQuery], deltas are
// checked against allow-lists of operators and paths with [ValidateDelta],
// and field names are rewritten through an alias table with [ProjectDelta]
// and [ProjectQuery]. Nothing here talks to a database.
//
// Documents can be maps with string keys ([M], map[string]any, bson.M) or
// ordered documents ([D], bson.D). Maps are modified in place. Structs are
// accepted wherever a document is only read, and [Decode] turns documents
// back into structs.
//
// The package level functions use a default [Engine]. Use [NewEngine] to
// replace any of its components.
package docops

import (
	"context"
	"io"

	"github.com/vinicius-lino-figueiredo/docops/adapter/data"
	"github.com/vinicius-lino-figueiredo/docops/adapter/matcher"
	"github.com/vinicius-lino-figueiredo/docops/adapter/modifier"
	"github.com/vinicius-lino-figueiredo/docops/adapter/validator"
	"github.com/vinicius-lino-figueiredo/docops/domain"
)

var (
	// ErrTargetNil is returned when user provides a nil value as a target
	// to decode data, for example, calling [Decode].
	ErrTargetNil = domain.ErrTargetNil
	// ErrNonPointer is returned by [Decode] when the target is not a
	// pointer.
	ErrNonPointer = domain.ErrNonPointer
	// ErrMapKeyType is returned when a map with non-string keys is used as
	// a document.
	ErrMapKeyType = data.ErrMapKeyType
)

// Tombstone is the value left behind by deletes when tombstones are enabled.
// Reads treat it as a missing field.
var Tombstone = domain.Tombstone

// ErrDocumentType is returned when an user passes a value that is invalid or
// contains an invalid sub value for creating a document.
type ErrDocumentType = domain.ErrDocumentType

// ErrDecode is returned by [Decode] to easily wrap third party decoding
// errors.
type ErrDecode = domain.ErrDecode

// ErrCompArgType is returned when a query operator is given an operand of
// the wrong shape, such as $in with a value that is not a list.
type ErrCompArgType = matcher.ErrCompArgType

// ErrModDivisor is returned when $mod is given a zero divisor.
type ErrModDivisor = matcher.ErrModDivisor

// ValidationError is returned by [ValidateDelta] with every [Violation]
// found.
type ValidationError = validator.ValidationError

// Violation is a single disallowed operator or path.
type Violation = validator.Violation

// ViolationKind tells which allow-list a [Violation] failed.
type ViolationKind = validator.Kind

// Violation kinds.
const (
	KindDisallowedOperator = validator.KindDisallowedOperator
	KindDisallowedPath     = validator.KindDisallowedPath
)

// Policy holds allow-lists of operators and path patterns, and can be read
// from a configuration file or the environment.
type Policy = validator.Policy

// Document is a nested mapping of string keys to values.
type Document = domain.Document

// M is a map-backed [Document]. It iterates in ascending key order.
type M = data.M

// D is an ordered [Document]. It shares its layout with bson.D.
type D = data.D

// A is a list of values.
type A = []any

// TypeClass is the coarse type of a value, used to order values of
// different Go types.
type TypeClass = domain.TypeClass

// Comparer provides ordering and comparison for different data types.
type Comparer = domain.Comparer

// TimeGetter provides current time for $currentDate.
type TimeGetter = domain.TimeGetter

// FieldNavigator provides field access operations with dot notation support.
type FieldNavigator = domain.FieldNavigator

// Modifier applies deltas to documents.
type Modifier = domain.Modifier

// Matcher evaluates whether a document matches a query.
type Matcher = domain.Matcher

// Querier filters collections of documents.
type Querier = domain.Querier

// Validator checks deltas against allow-lists.
type Validator = domain.Validator

// Projector rewrites the paths of deltas and queries.
type Projector = domain.Projector

// Decoder converts documents into Go values.
type Decoder = domain.Decoder

// ApplyOption configures [ApplyDelta] through the functional options
// pattern.
type ApplyOption = domain.ApplyOption

// WithAsInsert marks the delta application as an insert, which enables
// $setOnInsert. Defaults to false.
func WithAsInsert(i bool) ApplyOption {
	return domain.WithApplyAsInsert(i)
}

// WithTombstone makes deletes leave [Tombstone] behind instead of removing
// the key. Defaults to true.
func WithTombstone(t bool) ApplyOption {
	return domain.WithApplyTombstone(t)
}

// WithRootSet makes deltas without operators behave as $set. If false, they
// replace the contents of the target instead. Defaults to true.
func WithRootSet(r bool) ApplyOption {
	return domain.WithApplyRootSet(r)
}

var std = NewEngine()

// ApplyDelta applies delta to target in place and returns it. Operations on
// fields of the wrong type are skipped. If target is a bson.D value, a
// modified copy is returned instead.
func ApplyDelta(target any, delta any, options ...ApplyOption) any {
	return std.ApplyDelta(target, delta, options...)
}

// ApplyQuery returns the documents in docs that match query, grouped by the
// stage that matched them: root fields and $and first, then $nor, then $or.
func ApplyQuery[T any](docs []T, query any) ([]T, error) {
	return Filter(std, docs, query)
}

// Filter is [ApplyQuery] running on the given engine.
func Filter[T any](e *Engine, docs []T, query any) ([]T, error) {
	values := make([]any, len(docs))
	for n, doc := range docs {
		values[n] = doc
	}
	idx, err := e.querier.Indices(values, query)
	if err != nil {
		return nil, err
	}
	res := make([]T, len(idx))
	for n, i := range idx {
		res[n] = docs[i]
	}
	return res, nil
}

// Match reports whether a single document matches query.
func Match(query any, doc any) (bool, error) {
	return std.Match(query, doc)
}

// ValidateDelta returns a *[ValidationError] listing every operator not in
// allowedOperators and every path not matching allowedPaths. Path patterns
// accept "*" for a single segment and a trailing "**" for any remainder.
func ValidateDelta(deltaOrValue any, allowedOperators []string, allowedPaths []string) error {
	return std.ValidateDelta(deltaOrValue, allowedOperators, allowedPaths)
}

// NormalizeDelta wraps values without operators as {$set: value}.
func NormalizeDelta(v any) any {
	return modifier.NormalizeDelta(v)
}

// ProjectDelta renames the operand paths of delta through aliases.
func ProjectDelta(delta any, aliases map[string]string) any {
	return std.ProjectDelta(delta, aliases)
}

// ProjectQuery renames the fields of query through aliases.
func ProjectQuery(query any, aliases map[string]string) any {
	return std.ProjectQuery(query, aliases)
}

// Decode decodes a document into target, which must be a pointer.
func Decode(doc any, target any) error {
	return std.Decode(doc, target)
}

// ReadPolicy reads a [Policy] from the given configuration file or, if none
// is given, from DOCOPS_ALLOWED_OPERATORS and DOCOPS_ALLOWED_PATHS.
func ReadPolicy(fileName ...string) (Policy, error) {
	var p Policy
	err := p.Read(fileName...)
	return p, err
}

// ReadDocuments reads a JSON array or a stream of JSON objects into ordered
// documents. Reading stops when ctx is done.
func ReadDocuments(ctx context.Context, r io.Reader) ([]Document, error) {
	return data.ReadDocuments(ctx, r)
}

// NewDocument returns a deep copy of a map, struct or ordered document as a
// [Document].
func NewDocument(v any) (Document, error) {
	return data.NewDocument(v)
}

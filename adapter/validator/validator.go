// Package validator checks deltas against allow-lists of operators and
// path patterns.
package validator

import (
	"log/slog"
	"slices"

	"github.com/vinicius-lino-figueiredo/docops/adapter/data"
	"github.com/vinicius-lino-figueiredo/docops/adapter/fieldnavigator"
	"github.com/vinicius-lino-figueiredo/docops/adapter/modifier"
	"github.com/vinicius-lino-figueiredo/docops/domain"
)

const (
	anySegment = "*"
	anySuffix  = "**"
)

// Validator implements [domain.Validator].
type Validator struct {
	fieldNavigator domain.FieldNavigator
	logger         *slog.Logger
}

// NewValidator returns a new implementation of [domain.Validator].
func NewValidator(options ...Option) domain.Validator {
	v := &Validator{
		fieldNavigator: fieldnavigator.NewFieldNavigator(),
		logger:         slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(v)
	}
	return v
}

// Validate implements [domain.Validator]. A value without operator keys is
// validated as {$set: value}. Every disallowed operator is reported, and
// so is every disallowed path under the allowed operators, as a
// *[ValidationError]. Values that are not documents are rejected with
// [domain.ErrDocumentType].
func (v *Validator) Validate(deltaOrValue any, allowedOperators []string, allowedPaths []string) error {
	if deltaOrValue == nil {
		return nil
	}
	doc, ok := data.AsDocument(deltaOrValue)
	if !ok {
		var err error
		if doc, err = data.NewDocument(deltaOrValue); err != nil {
			return domain.ErrDocumentType{Actual: deltaOrValue}
		}
	}
	delta, _ := data.AsDocument(modifier.NormalizeDelta(doc))

	patterns := make([][]string, len(allowedPaths))
	for n, p := range allowedPaths {
		patterns[n] = v.fieldNavigator.GetAddress(p)
	}

	var violations []Violation
	for op, operands := range delta.Iter() {
		if !slices.Contains(allowedOperators, op) {
			violations = append(violations, operatorViolation(op))
			continue
		}
		for _, path := range v.leafPaths(operands, "") {
			if !v.allowed(path, patterns) {
				violations = append(violations, pathViolation(op+"."+path))
			}
		}
	}

	if len(violations) == 0 {
		return nil
	}
	v.logger.Debug("delta rejected", slog.Int("violations", len(violations)))
	return &ValidationError{Violations: violations}
}

// Check validates a delta against a [Policy].
func (v *Validator) Check(deltaOrValue any, p Policy) error {
	return v.Validate(deltaOrValue, p.Operators, p.Paths)
}

// leafPaths lists the dotted paths of every leaf under operands. Lists and
// empty documents are leaves. Modifier records are walked like any other
// document, so {tags: {$each: [1]}} yields "tags.$each".
func (v *Validator) leafPaths(operands any, prefix string) []string {
	doc, ok := data.AsDocument(operands)
	if !ok {
		return nil
	}
	var res []string
	for k, val := range doc.Iter() {
		path := prefix + k
		if sub, ok := data.AsDocument(val); ok && sub.Len() > 0 {
			res = append(res, v.leafPaths(sub, path+".")...)
			continue
		}
		res = append(res, path)
	}
	return res
}

func (v *Validator) allowed(path string, patterns [][]string) bool {
	segments := v.fieldNavigator.GetAddress(path)
	for _, pattern := range patterns {
		if matchPattern(segments, pattern) {
			return true
		}
	}
	return false
}

// matchPattern requires as many segments as the pattern has, unless the
// pattern ends with "**".
func matchPattern(segments, pattern []string) bool {
	for i, p := range pattern {
		if p == anySuffix && i == len(pattern)-1 {
			return true
		}
		if i >= len(segments) {
			return false
		}
		if p != anySegment && p != segments[i] {
			return false
		}
	}
	return len(segments) == len(pattern)
}

package validator

import (
	"fmt"
	"strings"
)

// StatusBadRequest is the status code carried by every [Violation].
const StatusBadRequest = 400

// Kind tells which allow-list a [Violation] failed.
type Kind string

// Violation kinds.
const (
	KindDisallowedOperator Kind = "disallowedOperator"
	KindDisallowedPath     Kind = "disallowedPath"
)

// Violation describes a single operator or path that is not allowed.
type Violation struct {
	Kind       Kind
	Path       string
	Message    string
	StatusCode int
}

// Error implements [error].
func (v Violation) Error() string {
	return v.Message
}

func operatorViolation(op string) Violation {
	return Violation{
		Kind:       KindDisallowedOperator,
		Path:       op,
		Message:    fmt.Sprintf("%s is a disallowed operator", op),
		StatusCode: StatusBadRequest,
	}
}

func pathViolation(path string) Violation {
	return Violation{
		Kind:       KindDisallowedPath,
		Path:       path,
		Message:    fmt.Sprintf("%s is a disallowed path", path),
		StatusCode: StatusBadRequest,
	}
}

// ValidationError holds every [Violation] found in a delta.
type ValidationError struct {
	Violations []Violation
}

// Error implements [error].
func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for n, v := range e.Violations {
		msgs[n] = v.Message
	}
	return fmt.Sprintf("invalid delta: %s", strings.Join(msgs, "; "))
}

// Unwrap returns the violations, so that [errors.As] can reach each one.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Violations))
	for n, v := range e.Violations {
		errs[n] = v
	}
	return errs
}

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTargetNil is returned when the passed target, which should be a
	// pointer, is passed as a nil value.
	ErrTargetNil = errors.New("target interface is nil")
	// ErrNonPointer is returned when the passed target is not a pointer.
	ErrNonPointer = errors.New("target should be a pointer")
)

// ErrDecode is returned when a document cannot be decoded into the given
// target.
type ErrDecode struct {
	Source any
	Target any
}

// Error implements [error].
func (e ErrDecode) Error() string {
	return fmt.Sprintf("cannot decode %T into %T", e.Source, e.Target)
}

// ErrDocumentType is returned when a value that should be a document is of
// some other type.
type ErrDocumentType struct {
	Actual any
}

// Error implements [error].
func (e ErrDocumentType) Error() string {
	return fmt.Sprintf("expected map or struct, got %T", e.Actual)
}

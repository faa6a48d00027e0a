package matcher

import (
	"log/slog"

	"github.com/vinicius-lino-figueiredo/docops/domain"
)

// WithComparer sets the comparer implementation for value comparisons during
// matching.
func WithComparer(c domain.Comparer) Option {
	return func(mo *Matcher) {
		mo.comparer = c
	}
}

// WithFieldNavigator sets the field getter for accessing document fields during
// matching.
func WithFieldNavigator(f domain.FieldNavigator) Option {
	return func(mo *Matcher) {
		mo.fieldNavigator = f
	}
}

// WithLogger sets the logger that receives warnings about unsupported
// operators.
func WithLogger(l *slog.Logger) Option {
	return func(mo *Matcher) {
		mo.logger = l
	}
}

// Option configures matcher behavior through the functional options pattern.
type Option func(*Matcher)

package validator

import (
	"log/slog"

	"github.com/vinicius-lino-figueiredo/docops/domain"
)

// WithFieldNavigator sets the navigator used to split paths and patterns
// into segments.
func WithFieldNavigator(f domain.FieldNavigator) Option {
	return func(v *Validator) {
		v.fieldNavigator = f
	}
}

// WithLogger sets the logger that receives rejected deltas.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = l
	}
}

// Option configures validator behavior through the functional options
// pattern.
type Option func(*Validator)

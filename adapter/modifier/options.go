package modifier

import (
	"log/slog"

	"github.com/vinicius-lino-figueiredo/docops/domain"
)

// WithComparer sets the comparer used by $min, $max, $push sorting and the
// equality checks of $addToSet, $pull and $pullAll.
func WithComparer(c domain.Comparer) Option {
	return func(m *Modifier) {
		m.comp = c
	}
}

// WithFieldNavigator sets the field navigator used to read and write paths.
func WithFieldNavigator(f domain.FieldNavigator) Option {
	return func(m *Modifier) {
		m.fieldNavigator = f
	}
}

// WithTimeGetter sets the clock used by $currentDate.
func WithTimeGetter(t domain.TimeGetter) Option {
	return func(m *Modifier) {
		m.timeGetter = t
	}
}

// WithLogger sets the logger that reports skipped operations.
func WithLogger(l *slog.Logger) Option {
	return func(m *Modifier) {
		m.logger = l
	}
}

// Option configures modifier behavior through the functional options pattern.
type Option func(*Modifier)

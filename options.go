package docops

import "log/slog"

// Option configures an [Engine] through the functional options pattern.
type Option func(*Engine)

// WithLogger sets the logger shared by every default component. Skipped
// operations are logged at debug level and unsupported query operators at
// warn level.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithComparer sets the comparer for value comparison operations.
func WithComparer(c Comparer) Option {
	return func(e *Engine) {
		e.comparer = c
	}
}

// WithFieldNavigator sets the field navigator used to read and write dotted
// paths.
func WithFieldNavigator(f FieldNavigator) Option {
	return func(e *Engine) {
		e.fieldNavigator = f
	}
}

// WithTimeGetter sets the clock used by $currentDate.
func WithTimeGetter(t TimeGetter) Option {
	return func(e *Engine) {
		e.timeGetter = t
	}
}

// WithModifier sets the modifier used by [Engine.ApplyDelta].
func WithModifier(m Modifier) Option {
	return func(e *Engine) {
		e.modifier = m
	}
}

// WithMatcher sets the matcher used by [Engine.Match] and, unless
// [WithQuerier] is given, by the querier.
func WithMatcher(m Matcher) Option {
	return func(e *Engine) {
		e.matcher = m
	}
}

// WithQuerier sets the querier used by [Engine.Query] and [Filter].
func WithQuerier(q Querier) Option {
	return func(e *Engine) {
		e.querier = q
	}
}

// WithValidator sets the validator used by [Engine.ValidateDelta].
func WithValidator(v Validator) Option {
	return func(e *Engine) {
		e.validator = v
	}
}

// WithProjector sets the projector used by [Engine.ProjectDelta] and
// [Engine.ProjectQuery].
func WithProjector(p Projector) Option {
	return func(e *Engine) {
		e.projector = p
	}
}

// WithDecoder sets the decoder used by [Engine.Decode].
func WithDecoder(d Decoder) Option {
	return func(e *Engine) {
		e.decoder = d
	}
}

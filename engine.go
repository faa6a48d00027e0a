package docops

import (
	"log/slog"

	"github.com/vinicius-lino-figueiredo/docops/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/docops/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/docops/adapter/fieldnavigator"
	"github.com/vinicius-lino-figueiredo/docops/adapter/matcher"
	"github.com/vinicius-lino-figueiredo/docops/adapter/modifier"
	"github.com/vinicius-lino-figueiredo/docops/adapter/projector"
	"github.com/vinicius-lino-figueiredo/docops/adapter/querier"
	"github.com/vinicius-lino-figueiredo/docops/adapter/timegetter"
	"github.com/vinicius-lino-figueiredo/docops/adapter/validator"
)

// Engine bundles the components used by the package level functions. It
// holds no state of its own, so it can be shared between goroutines as long
// as its components can.
type Engine struct {
	comparer       Comparer
	fieldNavigator FieldNavigator
	timeGetter     TimeGetter
	logger         *slog.Logger
	modifier       Modifier
	matcher        Matcher
	querier        Querier
	validator      Validator
	projector      Projector
	decoder        Decoder
}

// NewEngine creates a new Engine with the provided options:
//
// - [WithLogger]: sets the logger shared by every component.
//
// - [WithComparer]: sets the comparer for value comparison operations.
//
// - [WithFieldNavigator]: sets the field navigator for dotted paths.
//
// - [WithTimeGetter]: sets the clock used by $currentDate.
//
// - [WithModifier], [WithMatcher], [WithQuerier], [WithValidator],
// [WithProjector], [WithDecoder]: replace a whole component.
//
// Components not given are built from the ones that are.
func NewEngine(options ...Option) *Engine {
	e := &Engine{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(e)
	}

	if e.comparer == nil {
		e.comparer = comparer.NewComparer()
	}
	if e.fieldNavigator == nil {
		e.fieldNavigator = fieldnavigator.NewFieldNavigator()
	}
	if e.timeGetter == nil {
		e.timeGetter = timegetter.NewTimeGetter()
	}
	if e.modifier == nil {
		e.modifier = modifier.NewModifier(
			modifier.WithComparer(e.comparer),
			modifier.WithFieldNavigator(e.fieldNavigator),
			modifier.WithTimeGetter(e.timeGetter),
			modifier.WithLogger(e.logger),
		)
	}
	if e.matcher == nil {
		e.matcher = matcher.NewMatcher(
			matcher.WithComparer(e.comparer),
			matcher.WithFieldNavigator(e.fieldNavigator),
			matcher.WithLogger(e.logger),
		)
	}
	if e.querier == nil {
		e.querier = querier.NewQuerier(
			querier.WithMatcher(e.matcher),
			querier.WithComparer(e.comparer),
			querier.WithLogger(e.logger),
		)
	}
	if e.validator == nil {
		e.validator = validator.NewValidator(
			validator.WithFieldNavigator(e.fieldNavigator),
			validator.WithLogger(e.logger),
		)
	}
	if e.projector == nil {
		e.projector = projector.NewProjector(projector.WithLogger(e.logger))
	}
	if e.decoder == nil {
		e.decoder = decoder.NewDecoder()
	}
	return e
}

// ApplyDelta is [ApplyDelta] running on e.
func (e *Engine) ApplyDelta(target any, delta any, options ...ApplyOption) any {
	return e.modifier.Modify(target, delta, options...)
}

// Query is [ApplyQuery] running on e, for untyped collections.
func (e *Engine) Query(docs []any, query any) ([]any, error) {
	return e.querier.Query(docs, query)
}

// Match is [Match] running on e.
func (e *Engine) Match(query any, doc any) (bool, error) {
	return e.matcher.Match(query, doc)
}

// ValidateDelta is [ValidateDelta] running on e.
func (e *Engine) ValidateDelta(deltaOrValue any, allowedOperators []string, allowedPaths []string) error {
	return e.validator.Validate(deltaOrValue, allowedOperators, allowedPaths)
}

// ValidatePolicy validates a delta against a [Policy].
func (e *Engine) ValidatePolicy(deltaOrValue any, p Policy) error {
	return e.validator.Validate(deltaOrValue, p.Operators, p.Paths)
}

// ProjectDelta is [ProjectDelta] running on e.
func (e *Engine) ProjectDelta(delta any, aliases map[string]string) any {
	return e.projector.ProjectDelta(delta, aliases)
}

// ProjectQuery is [ProjectQuery] running on e.
func (e *Engine) ProjectQuery(query any, aliases map[string]string) any {
	return e.projector.ProjectQuery(query, aliases)
}

// Decode is [Decode] running on e.
func (e *Engine) Decode(doc any, target any) error {
	return e.decoder.Decode(doc, target)
}

package querier

import (
	"log/slog"

	"github.com/vinicius-lino-figueiredo/docops/domain"
)

// WithMatcher sets the matcher implementation for querier evaluations.
func WithMatcher(m domain.Matcher) Option {
	return func(q *Querier) {
		q.mtchr = m
	}
}

// WithComparer sets the comparer used to recognize predicate lists and,
// unless [WithMatcher] is given, by the default matcher.
func WithComparer(c domain.Comparer) Option {
	return func(q *Querier) {
		q.cmpr = c
	}
}

// WithLogger sets the logger that receives per-stage debug records.
func WithLogger(l *slog.Logger) Option {
	return func(q *Querier) {
		q.logger = l
	}
}

// Option configures querier behavior through the functional options
// pattern.
type Option func(*Querier)

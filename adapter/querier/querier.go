// Package querier contains the default [domain.Querier] implementation.
package querier

import (
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vinicius-lino-figueiredo/docops/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/docops/adapter/data"
	"github.com/vinicius-lino-figueiredo/docops/adapter/matcher"
	"github.com/vinicius-lino-figueiredo/docops/domain"
)

// Querier implements [domain.Querier]. The root of a query is not evaluated
// as a single boolean expression. Documents are moved from a working pool
// into the result by three stages, in order:
//
//   - AND: documents matching the root fields and every $and predicate;
//   - NOR: remaining documents matching none of the $nor predicates;
//   - OR: remaining documents matching at least one $or predicate.
//
// A stage without predicates is skipped. When both $nor and $or are given,
// only the NOR survivors are offered to the OR stage.
type Querier struct {
	mtchr  domain.Matcher
	cmpr   domain.Comparer
	logger *slog.Logger
}

// NewQuerier returns a new implementation of [domain.Querier].
func NewQuerier(opts ...Option) domain.Querier {
	q := Querier{
		cmpr:   comparer.NewComparer(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&q)
	}
	if q.mtchr == nil {
		q.mtchr = matcher.NewMatcher(
			matcher.WithComparer(q.cmpr),
			matcher.WithLogger(q.logger),
		)
	}
	return &q
}

type stages struct {
	and []any
	nor []any
	or  []any
}

// Query implements [domain.Querier].
func (q *Querier) Query(docs []any, query any) ([]any, error) {
	idx, err := q.Indices(docs, query)
	if err != nil {
		return nil, err
	}
	res := make([]any, len(idx))
	for n, i := range idx {
		res[n] = docs[i]
	}
	return res, nil
}

// Indices implements [domain.Querier]. Every predicate is compiled once,
// before any document is matched.
func (q *Querier) Indices(docs []any, query any) ([]int, error) {
	st, err := q.makeStages(query)
	if err != nil {
		return nil, err
	}
	and, err := q.compile(domain.QAnd, st.and)
	if err != nil {
		return nil, err
	}
	nor, err := q.compile(domain.QNor, st.nor)
	if err != nil {
		return nil, err
	}
	or, err := q.compile(domain.QOr, st.or)
	if err != nil {
		return nil, err
	}

	pool := make([]int, len(docs))
	for n := range pool {
		pool[n] = n
	}
	res := make([]int, 0, len(docs))

	if len(and) > 0 {
		var matched []int
		pool, matched, err = q.partition(docs, pool, and, allOf)
		if err != nil {
			return nil, err
		}
		q.logStage(domain.QAnd, matched)
		res = append(res, matched...)
	}

	if len(nor) > 0 {
		var survivors []int
		pool, survivors, err = q.partition(docs, pool, nor, noneOf)
		if err != nil {
			return nil, err
		}
		q.logStage(domain.QNor, survivors)
		if len(or) == 0 {
			return append(res, survivors...), nil
		}
		pool = survivors
	}

	if len(or) > 0 {
		var matched []int
		if _, matched, err = q.partition(docs, pool, or, anyOf); err != nil {
			return nil, err
		}
		q.logStage(domain.QOr, matched)
		res = append(res, matched...)
	}

	return res, nil
}

func (q *Querier) makeStages(query any) (st stages, err error) {
	if query == nil {
		return st, nil
	}
	qry, ok := data.AsDocument(query)
	if !ok {
		if qry, err = data.NewDocument(query); err != nil {
			return st, domain.ErrDocumentType{Actual: query}
		}
	}

	root := make(data.D, 0, qry.Len())
	for k, v := range qry.Iter() {
		var dst *[]any
		switch k {
		case domain.QAnd:
			dst = &st.and
		case domain.QNor:
			dst = &st.nor
		case domain.QOr:
			dst = &st.or
		default:
			root = append(root, bson.E{Key: k, Value: v})
			continue
		}
		if q.cmpr.Classify(v) != domain.TypeArray {
			return st, matcher.ErrCompArgType{Comp: k, Want: "array", Actual: v}
		}
		*dst = append(*dst, comparer.AsList(v)...)
	}
	if len(root) > 0 {
		st.and = append([]any{&root}, st.and...)
	}
	return st, nil
}

// compiler is implemented by matchers that can parse a query once and
// evaluate it many times, such as [matcher.Matcher].
type compiler interface {
	Compile(query any) (matcher.Query, error)
	MatchQuery(qry matcher.Query, doc any) bool
}

type predicate func(doc any) (bool, error)

// compile turns the predicates of a stage into functions. Matchers that are
// not a [compiler] are called with the raw predicate for every document.
func (q *Querier) compile(stage string, preds []any) ([]predicate, error) {
	c, ok := q.mtchr.(compiler)
	res := make([]predicate, len(preds))
	for n, p := range preds {
		if !ok {
			res[n] = func(doc any) (bool, error) { return q.mtchr.Match(p, doc) }
			continue
		}
		qry, err := c.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling %s predicate %d: %w", stage, n, err)
		}
		res[n] = func(doc any) (bool, error) { return c.MatchQuery(qry, doc), nil }
	}
	return res, nil
}

type combinator func(preds []predicate, doc any) (bool, error)

// partition splits pool into the documents that do not satisfy comb and
// the ones that do, keeping their relative order.
func (q *Querier) partition(docs []any, pool []int, preds []predicate, comb combinator) (rest, matched []int, err error) {
	for _, i := range pool {
		ok, err := comb(preds, docs[i])
		if err != nil {
			return nil, nil, fmt.Errorf("matching document %d: %w", i, err)
		}
		if ok {
			matched = append(matched, i)
		} else {
			rest = append(rest, i)
		}
	}
	return rest, matched, nil
}

func allOf(preds []predicate, doc any) (bool, error) {
	for _, p := range preds {
		if ok, err := p(doc); err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func noneOf(preds []predicate, doc any) (bool, error) {
	ok, err := anyOf(preds, doc)
	return !ok && err == nil, err
}

func anyOf(preds []predicate, doc any) (bool, error) {
	for _, p := range preds {
		if ok, err := p(doc); err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func (q *Querier) logStage(stage string, matched []int) {
	q.logger.Debug("query stage done", slog.String("stage", stage), slog.Int("matched", len(matched)))
}

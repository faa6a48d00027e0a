// Package projector contains the default [domain.Projector] implementation.
// It renames the paths used by deltas and queries, so that code written
// against one field naming can run against documents stored with another.
package projector

import (
	"log/slog"

	"github.com/vinicius-lino-figueiredo/docops/adapter/data"
	"github.com/vinicius-lino-figueiredo/docops/domain"
)

// Projector implements [domain.Projector].
type Projector struct {
	logger *slog.Logger
}

// NewProjector returns a new implementation of [domain.Projector].
func NewProjector(opts ...Option) domain.Projector {
	p := Projector{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&p)
	}
	return &p
}

// ProjectDelta implements [domain.Projector]. The operand keys of every
// operator are replaced by their alias, and so are the destinations of
// $rename. A value without operator keys has its own keys replaced. The
// input is not modified and ordered documents stay ordered.
func (p *Projector) ProjectDelta(delta any, aliases map[string]string) any {
	d, ok := data.AsDocument(delta)
	if !ok {
		return delta
	}
	if !hasOperator(d) {
		return p.projectKeys(d, aliases, false)
	}

	res := data.NewEmpty(d)
	for op, operands := range d.Iter() {
		ops, ok := data.AsDocument(operands)
		if !ok {
			res.Set(op, operands)
			continue
		}
		res.Set(op, p.projectKeys(ops, aliases, op == domain.OpRename))
	}
	return res
}

func (p *Projector) projectKeys(d domain.Document, aliases map[string]string, values bool) domain.Document {
	res := data.NewEmpty(d)
	for k, v := range d.Iter() {
		if dst, ok := v.(string); ok && values {
			v = alias(dst, aliases)
		}
		p.set(res, alias(k, aliases), v)
	}
	return res
}

// ProjectQuery implements [domain.Projector]. Field names are replaced by
// their alias, including the ones inside $and, $or and $nor. Operator keys
// and operands are kept as they are.
func (p *Projector) ProjectQuery(query any, aliases map[string]string) any {
	q, ok := data.AsDocument(query)
	if !ok {
		return query
	}
	res := data.NewEmpty(q)
	for k, v := range q.Iter() {
		switch k {
		case domain.QAnd, domain.QOr, domain.QNor:
			if l, ok := data.AsList(v); ok {
				sub := make([]any, len(l))
				for n, item := range l {
					sub[n] = p.ProjectQuery(item, aliases)
				}
				v = sub
			}
		}
		p.set(res, alias(k, aliases), v)
	}
	return res
}

// set logs keys projected onto an existing one. The last one wins.
func (p *Projector) set(d domain.Document, key string, value any) {
	if d.Has(key) {
		p.logger.Debug("projected keys collide", slog.String("key", key))
	}
	d.Set(key, value)
}

func alias(key string, aliases map[string]string) string {
	if domain.IsOperator(key) {
		return key
	}
	if a, ok := aliases[key]; ok {
		return a
	}
	return key
}

func hasOperator(d domain.Document) bool {
	for k := range d.Keys() {
		if domain.IsOperator(k) {
			return true
		}
	}
	return false
}

// Package matcher contains the default implementation of [domain.Matcher]
// using basic mongo-like match API.
package matcher

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vinicius-lino-figueiredo/docops/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/docops/adapter/data"
	"github.com/vinicius-lino-figueiredo/docops/adapter/fieldnavigator"
	"github.com/vinicius-lino-figueiredo/docops/domain"
	"github.com/vinicius-lino-figueiredo/docops/pkg/structure"
)

// ErrCompArgType is returned when a comparison operator is called with an
// argument of invalid type.
type ErrCompArgType struct {
	Comp   string
	Want   string
	Actual any
}

// Error implements [error].
func (e ErrCompArgType) Error() string {
	return fmt.Sprintf(
		"%s value should be of type %s, got %T",
		e.Comp, e.Want, e.Actual,
	)
}

// ErrModDivisor is returned when $mod is given a zero divisor.
type ErrModDivisor struct {
	Divisor any
}

// Error implements [error].
func (e ErrModDivisor) Error() string {
	return fmt.Sprintf("%s divisor should be a non-zero integer, got %v", domain.QMod, e.Divisor)
}

// Matcher implements [domain.Matcher].
type Matcher struct {
	comparer       domain.Comparer
	fieldNavigator domain.FieldNavigator
	logger         *slog.Logger
}

// NewMatcher returns a new implementation of domain.Matcher.
func NewMatcher(options ...Option) domain.Matcher {

	m := &Matcher{
		comparer:       comparer.NewComparer(),
		fieldNavigator: fieldnavigator.NewFieldNavigator(),
		logger:         slog.New(slog.DiscardHandler),
	}

	for _, option := range options {
		option(m)
	}

	return m
}

// Match implements [domain.Matcher]. Malformed operands are reported before
// doc is looked at, so the same query fails for every document.
func (m *Matcher) Match(query any, doc any) (bool, error) {
	qry, err := m.Compile(query)
	if err != nil {
		return false, err
	}
	return m.MatchQuery(qry, doc), nil
}

// Compile converts a query into a [Query], validating every operand. A nil
// query matches every document.
func (m *Matcher) Compile(query any) (qry Query, err error) {
	if query == nil {
		return qry, nil
	}
	q, err := asDocument(query)
	if err != nil {
		return qry, ErrCompArgType{Comp: "query", Want: "object", Actual: query}
	}

	for k, v := range q.Iter() {
		switch k {
		case domain.QAnd, domain.QOr, domain.QNor:
			lo, err := m.makeLogicOp(k, v)
			if err != nil {
				return qry, err
			}
			qry.Lo = append(qry.Lo, lo)
		case domain.QExpr, domain.QJSONSchema, domain.QText, domain.QWhere:
			qry.Unsupported = append(qry.Unsupported, k)
		default:
			rule, err := m.makeFieldRule(k, v)
			if err != nil {
				return qry, err
			}
			qry.Rules = append(qry.Rules, rule)
		}
	}
	return qry, nil
}

func (m *Matcher) makeLogicOp(op string, v any) (LogicOp, error) {
	lo := LogicOp{Type: logicTypes[op]}
	if !m.isList(v) {
		return lo, ErrCompArgType{Comp: op, Want: "array", Actual: v}
	}
	items := comparer.AsList(v)
	lo.Sub = make([]Query, len(items))
	for n, item := range items {
		var err error
		if lo.Sub[n], err = m.Compile(item); err != nil {
			return lo, err
		}
	}
	return lo, nil
}

var logicTypes = map[string]uint8{
	domain.QAnd: And,
	domain.QOr:  Or,
	domain.QNor: Nor,
}

func (m *Matcher) makeFieldRule(path string, v any) (FieldRule, error) {
	rule := FieldRule{Path: path}

	switch t := v.(type) {
	case *regexp.Regexp, bson.Regex:
		re, err := makeRegex(t, "")
		if err != nil {
			return rule, err
		}
		rule.Conds = []Cond{{Op: Regex, Name: domain.QRegex, Pattern: re}}
		return rule, nil
	}

	ops, ok := data.AsDocument(v)
	if !ok || !hasOperator(ops) {
		rule.Conds = []Cond{{Op: Eq, Name: domain.QEq, Val: v}}
		return rule, nil
	}

	var options string
	if o, ok := ops.GetOk(domain.QOptions); ok {
		if options, ok = o.(string); !ok {
			return rule, ErrCompArgType{Comp: domain.QOptions, Want: "string", Actual: o}
		}
	}

	for k, arg := range ops.Iter() {
		cond, ok, err := m.makeCond(k, arg, options)
		if err != nil {
			return rule, err
		}
		if ok {
			rule.Conds = append(rule.Conds, cond)
		}
	}
	return rule, nil
}

func hasOperator(d domain.Document) bool {
	for k := range d.Keys() {
		if domain.IsOperator(k) {
			return true
		}
	}
	return false
}

// makeCond returns false if k does not name a field operator, in which case
// it is ignored.
func (m *Matcher) makeCond(k string, arg any, options string) (Cond, bool, error) {
	cond := Cond{Name: k, Val: arg}
	switch k {
	case domain.QEq:
		cond.Op = Eq
	case domain.QNe:
		cond.Op = Ne
	case domain.QGt:
		cond.Op = Gt
	case domain.QGte:
		cond.Op = Gte
	case domain.QLt:
		cond.Op = Lt
	case domain.QLte:
		cond.Op = Lte
	case domain.QIn, domain.QNin:
		cond.Op = In
		if k == domain.QNin {
			cond.Op = Nin
		}
		if !m.isList(arg) {
			return cond, false, ErrCompArgType{Comp: k, Want: "array", Actual: arg}
		}
		cond.List = comparer.AsList(arg)
	case domain.QExists:
		cond.Op = Exists
		cond.Val = structure.Truthy(arg)
	case domain.QType:
		cond.Op = Type
		cond.Types = m.makeTypes(arg)
	case domain.QMod:
		cond.Op = Mod
		var err error
		if cond.Divisor, cond.Remainder, err = m.makeMod(arg); err != nil {
			return cond, false, err
		}
	case domain.QRegex:
		cond.Op = Regex
		var err error
		if cond.Pattern, err = makeRegex(arg, options); err != nil {
			return cond, false, err
		}
	case domain.QExpr, domain.QJSONSchema, domain.QText, domain.QWhere:
		cond.Op = Unsupported
	default:
		return cond, false, nil
	}
	return cond, true, nil
}

func (m *Matcher) isList(v any) bool {
	return m.comparer.Classify(v) == domain.TypeArray
}

// makeTypes accepts a class name, a MongoDB type alias, an example value
// of the wanted class, or a list of any of them.
func (m *Matcher) makeTypes(arg any) []domain.TypeClass {
	items := []any{arg}
	if m.isList(arg) {
		items = comparer.AsList(arg)
	}
	res := make([]domain.TypeClass, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			if c, ok := domain.ParseTypeClass(s); ok {
				res = append(res, c)
				continue
			}
		}
		res = append(res, m.comparer.Classify(item))
	}
	return res
}

func (m *Matcher) makeMod(arg any) (int64, int64, error) {
	errArg := ErrCompArgType{Comp: domain.QMod, Want: "[divisor, remainder]", Actual: arg}
	if !m.isList(arg) {
		return 0, 0, errArg
	}
	l := comparer.AsList(arg)
	if len(l) != 2 {
		return 0, 0, errArg
	}
	divisor, okD := structure.AsFloat(l[0])
	remainder, okR := structure.AsFloat(l[1])
	if !okD || !okR || math.IsNaN(divisor) || math.IsNaN(remainder) {
		return 0, 0, errArg
	}
	if math.Trunc(divisor) == 0 {
		return 0, 0, ErrModDivisor{Divisor: l[0]}
	}
	return int64(divisor), int64(remainder), nil
}

func makeRegex(v any, options string) (*regexp.Regexp, error) {
	var src string
	switch t := v.(type) {
	case *regexp.Regexp:
		if t == nil {
			return nil, ErrCompArgType{Comp: domain.QRegex, Want: "string or regular expression", Actual: v}
		}
		if options == "" {
			return t, nil
		}
		src = t.String()
	case bson.Regex:
		src, options = t.Pattern, t.Options+options
	case string:
		src = t
	default:
		return nil, ErrCompArgType{Comp: domain.QRegex, Want: "string or regular expression", Actual: v}
	}
	re, err := regexp.Compile(regexFlags(options) + src)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", domain.QRegex, err)
	}
	return re, nil
}

// regexFlags keeps the options understood by package regexp.
func regexFlags(options string) string {
	var flags []byte
	for _, f := range []byte("ims") {
		if strings.IndexByte(options, f) >= 0 {
			flags = append(flags, f)
		}
	}
	if len(flags) == 0 {
		return ""
	}
	return "(?" + string(flags) + ")"
}

// MatchQuery reports whether doc matches a compiled query. Values that are
// not documents are matched as an empty document.
func (m *Matcher) MatchQuery(qry Query, doc any) bool {
	d, err := asDocument(doc)
	if err != nil {
		d = nil
	}
	return m.matchQuery(qry, d)
}

func (m *Matcher) matchQuery(qry Query, doc domain.Document) bool {
	if len(qry.Unsupported) > 0 {
		m.warnUnsupported(qry.Unsupported[0])
		return false
	}
	for _, rule := range qry.Rules {
		if !m.matchRule(rule, doc) {
			return false
		}
	}
	for _, lo := range qry.Lo {
		if !m.matchLogicOp(lo, doc) {
			return false
		}
	}
	return true
}

func (m *Matcher) matchLogicOp(lo LogicOp, doc domain.Document) bool {
	switch lo.Type {
	case Or:
		for _, sub := range lo.Sub {
			if m.matchQuery(sub, doc) {
				return true
			}
		}
		return false
	case Nor:
		for _, sub := range lo.Sub {
			if m.matchQuery(sub, doc) {
				return false
			}
		}
		return true
	default:
		for _, sub := range lo.Sub {
			if !m.matchQuery(sub, doc) {
				return false
			}
		}
		return true
	}
}

func (m *Matcher) matchRule(rule FieldRule, doc domain.Document) bool {
	v, defined := m.fieldNavigator.GetPath(doc, rule.Path)
	for _, cond := range rule.Conds {
		if !m.matchCond(cond, v, defined) {
			return false
		}
	}
	return true
}

func (m *Matcher) matchCond(cond Cond, v any, defined bool) bool {
	switch cond.Op {
	case Eq:
		return defined && m.MatchesEq(v, cond.Val)
	case Ne:
		return !defined || !m.MatchesEq(v, cond.Val)
	case Exists:
		return defined == cond.Val.(bool)
	case Lt, Lte, Gt, Gte:
		return defined && m.compare(cond.Op, v, cond.Val)
	case In:
		return defined && m.in(v, cond.List)
	case Nin:
		return !defined || !m.in(v, cond.List)
	case Type:
		return defined && m.hasType(v, cond.Types)
	case Mod:
		return defined && m.mod(v, cond.Divisor, cond.Remainder)
	case Regex:
		return defined && m.regex(v, cond.Pattern)
	default:
		m.warnUnsupported(cond.Name)
		return false
	}
}

func (m *Matcher) warnUnsupported(op string) {
	m.logger.Warn("unsupported query operator never matches", slog.String("operator", op))
}

// MatchesEq reports whether a document value equals a query value. Lists
// match if any of their items does, or if both sides are lists of equal
// structure. Documents are equal if they hold equal values under the same
// keys, in the same order. Other values are compared as scalars: numbers by
// value, dates by instant and regular expressions by identity.
func (m *Matcher) MatchesEq(a, b any) bool {
	if m.isList(a) {
		items := comparer.AsList(a)
		if m.isList(b) && m.listsEqual(items, comparer.AsList(b)) {
			return true
		}
		for _, item := range items {
			if m.MatchesEq(item, b) {
				return true
			}
		}
		return false
	}
	return m.deepEqual(a, b)
}

func (m *Matcher) deepEqual(a, b any) bool {
	ca, cb := m.comparer.Classify(a), m.comparer.Classify(b)
	if ca != cb {
		return false
	}
	switch ca {
	case domain.TypeArray:
		return m.listsEqual(comparer.AsList(a), comparer.AsList(b))
	case domain.TypeObject:
		x, errA := asDocument(a)
		y, errB := asDocument(b)
		return errA == nil && errB == nil && m.docsEqual(x, y)
	default:
		return m.comparer.StrictEqual(a, b)
	}
}

func (m *Matcher) listsEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for n := range a {
		if !m.deepEqual(a[n], b[n]) {
			return false
		}
	}
	return true
}

func (m *Matcher) docsEqual(a, b domain.Document) bool {
	if a.Len() != b.Len() {
		return false
	}
	keys := make([]string, 0, b.Len())
	values := make([]any, 0, b.Len())
	for k, v := range b.Iter() {
		keys = append(keys, k)
		values = append(values, v)
	}
	n := 0
	for k, v := range a.Iter() {
		if keys[n] != k || !m.deepEqual(v, values[n]) {
			return false
		}
		n++
	}
	return true
}

// compare only orders values of the same type class.
func (m *Matcher) compare(op uint8, a, b any) bool {
	if m.comparer.Classify(a) != m.comparer.Classify(b) {
		return false
	}
	comp, err := m.comparer.Compare(a, b)
	if err != nil {
		return false
	}
	switch op {
	case Lt:
		return comp < 0
	case Lte:
		return comp <= 0
	case Gt:
		return comp > 0
	default:
		return comp >= 0
	}
}

func (m *Matcher) in(v any, list []any) bool {
	ok, _ := structure.Contains(list, v, func(item, v any) (bool, error) {
		return m.MatchesEq(v, item), nil
	})
	return ok
}

func (m *Matcher) hasType(v any, types []domain.TypeClass) bool {
	class := m.comparer.Classify(v)
	for _, t := range types {
		if t == class {
			return true
		}
	}
	return false
}

func (m *Matcher) mod(v any, divisor, remainder int64) bool {
	f, ok := structure.AsFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	return int64(f)%divisor == remainder
}

// regex matches strings, or lists holding at least one matching string.
func (m *Matcher) regex(v any, re *regexp.Regexp) bool {
	switch t := v.(type) {
	case string:
		return re.MatchString(t)
	default:
		if !m.isList(v) {
			return false
		}
		for _, item := range comparer.AsList(v) {
			if s, ok := item.(string); ok && re.MatchString(s) {
				return true
			}
		}
		return false
	}
}

func asDocument(v any) (domain.Document, error) {
	if d, ok := data.AsDocument(v); ok {
		return d, nil
	}
	return data.NewDocument(v)
}

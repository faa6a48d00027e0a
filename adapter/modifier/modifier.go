// Package modifier contains a [domain.Modifier] implementation to apply changes
// to a doc based on a mongo-like API.
package modifier

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/maxbolgarin/lang"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vinicius-lino-figueiredo/docops/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/docops/adapter/data"
	"github.com/vinicius-lino-figueiredo/docops/adapter/fieldnavigator"
	"github.com/vinicius-lino-figueiredo/docops/adapter/timegetter"
	"github.com/vinicius-lino-figueiredo/docops/domain"
	"github.com/vinicius-lino-figueiredo/docops/pkg/structure"
)

// ErrModFieldType is reported when a modification function runs on a
// document field of a type that is not accepted. The operation is skipped.
type ErrModFieldType struct {
	Mod    string
	Want   string
	Actual any
}

// Error implements [error].
func (e ErrModFieldType) Error() string {
	return fmt.Sprintf("%s expects %s field, got %T", e.Mod, e.Want, e.Actual)
}

// ErrModArgType is reported when a modification function is called with an
// argument of a type that is not accepted. The operation is skipped.
type ErrModArgType struct {
	Mod    string
	Want   string
	Actual any
}

// Error implements [error].
func (e ErrModArgType) Error() string {
	return fmt.Sprintf("%s expects %s arg, got %T", e.Mod, e.Want, e.Actual)
}

type modFunc func(doc domain.Document, operands domain.Document, opts *domain.ApplyOptions)

// Modifier implements [domain.Modifier].
type Modifier struct {
	comp           domain.Comparer
	fieldNavigator domain.FieldNavigator
	timeGetter     domain.TimeGetter
	logger         *slog.Logger
	mods           map[string]modFunc
}

// NewModifier returns a new implementation of [domain.Modifier].
func NewModifier(options ...Option) domain.Modifier {
	m := &Modifier{
		comp:           comparer.NewComparer(),
		fieldNavigator: fieldnavigator.NewFieldNavigator(),
		timeGetter:     timegetter.NewTimeGetter(),
		logger:         slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(m)
	}

	m.mods = map[string]modFunc{
		domain.OpCurrentDate: m.currentDate,
		domain.OpInc:         m.inc,
		domain.OpMin:         m.min,
		domain.OpMax:         m.max,
		domain.OpMul:         m.mul,
		domain.OpRename:      m.rename,
		domain.OpSet:         m.set,
		domain.OpSetOnInsert: m.setOnInsert,
		domain.OpUnset:       m.unset,
		domain.OpAddToSet:    m.addToSet,
		domain.OpPop:         m.pop,
		domain.OpPull:        m.pull,
		domain.OpPush:        m.push,
		domain.OpPullAll:     m.pullAll,
	}

	return m
}

// Modify implements [domain.Modifier]. Target is changed in place and
// returned. If target or delta are not documents, target is returned
// untouched. If target is a [bson.D] value, the modified copy is returned
// instead, since a slice value cannot grow in place.
func (m *Modifier) Modify(target any, delta any, options ...domain.ApplyOption) any {
	opts := domain.NewApplyOptions(options...)

	doc, ok := data.AsDocument(target)
	if !ok {
		m.logger.Debug("skipping delta on non-document target", slog.String("type", fmt.Sprintf("%T", target)))
		return target
	}
	mod, ok := data.AsDocument(delta)
	if !ok {
		m.logger.Debug("skipping non-document delta", slog.String("type", fmt.Sprintf("%T", delta)))
		return target
	}

	if !m.isOperatorDelta(mod) {
		if !opts.AllowRootSet {
			m.replace(doc, mod)
			return m.result(target, doc)
		}
		mod = data.Ordered(domain.OpSet, mod)
	}

	for op, arg := range mod.Iter() {
		operands, ok := data.AsDocument(arg)
		if !ok {
			m.skip(op, "", ErrModArgType{Mod: op, Want: "object", Actual: arg})
			continue
		}
		m.mods[op](doc, operands, &opts)
	}

	return m.result(target, doc)
}

func (m *Modifier) isOperatorDelta(mod domain.Document) bool {
	for k := range mod.Keys() {
		if _, ok := m.mods[k]; !ok {
			return false
		}
	}
	return true
}

func (m *Modifier) result(target any, doc domain.Document) any {
	switch target.(type) {
	case bson.D:
		return bson.D(*doc.(*data.D))
	case data.D:
		return *doc.(*data.D)
	default:
		return target
	}
}

// replace clears doc and copies every field of value into it, keeping the
// reference held by the caller.
func (m *Modifier) replace(doc domain.Document, value domain.Document) {
	for _, k := range slices.Collect(doc.Keys()) {
		doc.Unset(k)
	}
	for k, v := range value.Iter() {
		doc.Set(k, v)
	}
}

func (m *Modifier) skip(op, path string, err error) {
	m.logger.Debug("skipping operation",
		slog.String("operator", op),
		slog.String("path", path),
		slog.Any("reason", err),
	)
}

func (m *Modifier) get(doc domain.Document, path string) (any, bool) {
	return m.fieldNavigator.GetPath(doc, path)
}

func (m *Modifier) put(doc domain.Document, path string, value any) {
	m.fieldNavigator.SetPath(doc, path, value)
}

func (m *Modifier) currentDate(doc domain.Document, operands domain.Document, _ *domain.ApplyOptions) {
	for path, arg := range operands.Iter() {
		now := m.timeGetter.GetTime()
		var value any = now
		if d, ok := data.AsDocument(arg); ok && d.Get(domain.ModType) == "timestamp" {
			value = bson.Timestamp{T: uint32(now.Unix()), I: 1}
		}
		m.put(doc, path, value)
	}
}

func (m *Modifier) inc(doc domain.Document, operands domain.Document, _ *domain.ApplyOptions) {
	for path, arg := range operands.Iter() {
		curr, ok := m.get(doc, path)
		if !ok {
			m.put(doc, path, arg)
			continue
		}
		sum, ok := structure.Add(curr, arg)
		if !ok {
			m.skip(domain.OpInc, path, ErrModFieldType{Mod: domain.OpInc, Want: "number", Actual: curr})
			continue
		}
		m.put(doc, path, sum)
	}
}

func (m *Modifier) mul(doc domain.Document, operands domain.Document, _ *domain.ApplyOptions) {
	for path, arg := range operands.Iter() {
		curr, ok := m.get(doc, path)
		if !ok {
			m.put(doc, path, structure.Zero(arg))
			continue
		}
		prod, ok := structure.Mul(curr, arg)
		if !ok {
			m.skip(domain.OpMul, path, ErrModFieldType{Mod: domain.OpMul, Want: "number", Actual: curr})
			continue
		}
		m.put(doc, path, prod)
	}
}

func (m *Modifier) min(doc domain.Document, operands domain.Document, _ *domain.ApplyOptions) {
	for path, arg := range operands.Iter() {
		curr, ok := m.get(doc, path)
		m.put(doc, path, lang.If(ok, m.comp.RankMin(curr, arg), arg))
	}
}

func (m *Modifier) max(doc domain.Document, operands domain.Document, _ *domain.ApplyOptions) {
	for path, arg := range operands.Iter() {
		curr, ok := m.get(doc, path)
		m.put(doc, path, lang.If(ok, m.comp.RankMax(curr, arg), arg))
	}
}

// rename reads the source, deletes it and then writes the destination, in
// the order the pairs are given.
func (m *Modifier) rename(doc domain.Document, operands domain.Document, opts *domain.ApplyOptions) {
	for src, arg := range operands.Iter() {
		dst, ok := arg.(string)
		if !ok {
			m.skip(domain.OpRename, src, ErrModArgType{Mod: domain.OpRename, Want: "string", Actual: arg})
			continue
		}
		value, defined := m.get(doc, src)
		m.fieldNavigator.DeletePath(doc, src, opts.UseTombstone)
		switch {
		case defined:
			m.put(doc, dst, value)
		case opts.UseTombstone:
			m.put(doc, dst, domain.Tombstone)
		default:
			m.fieldNavigator.DeletePath(doc, dst, false)
		}
	}
}

func (m *Modifier) set(doc domain.Document, operands domain.Document, _ *domain.ApplyOptions) {
	for path, arg := range operands.Iter() {
		m.put(doc, path, arg)
	}
}

func (m *Modifier) setOnInsert(doc domain.Document, operands domain.Document, opts *domain.ApplyOptions) {
	if !opts.AsInsert {
		return
	}
	m.set(doc, operands, opts)
}

func (m *Modifier) unset(doc domain.Document, operands domain.Document, opts *domain.ApplyOptions) {
	for path := range operands.Keys() {
		m.fieldNavigator.DeletePath(doc, path, opts.UseTombstone)
	}
}

// list returns the array stored at path. The flag is false if the path holds
// anything else, including nothing.
func (m *Modifier) list(doc domain.Document, op, path string) ([]any, bool, bool) {
	curr, defined := m.get(doc, path)
	if !defined {
		return nil, false, false
	}
	l, ok := data.AsList(curr)
	if !ok {
		m.skip(op, path, ErrModFieldType{Mod: op, Want: "array", Actual: curr})
	}
	return l, true, ok
}

func (m *Modifier) contains(l []any, item any) bool {
	return slices.ContainsFunc(l, func(v any) bool { return m.comp.StrictEqual(v, item) })
}

func (m *Modifier) addToSet(doc domain.Document, operands domain.Document, _ *domain.ApplyOptions) {
	for path, arg := range operands.Iter() {
		items := []any{arg}
		if d, ok := data.AsDocument(arg); ok {
			if each, ok := data.AsList(d.Get(domain.ModEach)); ok {
				items = each
			}
		}

		l, defined, ok := m.list(doc, domain.OpAddToSet, path)
		if defined && !ok {
			continue
		}

		res := slices.Clone(l)
		if res == nil {
			res = make([]any, 0, len(items))
		}
		for _, item := range items {
			if !m.contains(res, item) {
				res = append(res, item)
			}
		}
		m.put(doc, path, res)
	}
}

func (m *Modifier) pop(doc domain.Document, operands domain.Document, _ *domain.ApplyOptions) {
	for path, arg := range operands.Iter() {
		l, _, ok := m.list(doc, domain.OpPop, path)
		if !ok || len(l) == 0 {
			continue
		}
		if n, isInt := structure.AsInteger(arg); isInt && n == -1 {
			m.put(doc, path, slices.Clone(l[1:]))
		} else {
			m.put(doc, path, slices.Clone(l[:len(l)-1]))
		}
	}
}

func (m *Modifier) pull(doc domain.Document, operands domain.Document, _ *domain.ApplyOptions) {
	for path, arg := range operands.Iter() {
		l, _, ok := m.list(doc, domain.OpPull, path)
		if !ok {
			continue
		}
		res := slices.DeleteFunc(slices.Clone(l), func(v any) bool {
			return m.comp.StrictEqual(v, arg)
		})
		m.put(doc, path, res)
	}
}

func (m *Modifier) pullAll(doc domain.Document, operands domain.Document, _ *domain.ApplyOptions) {
	for path, arg := range operands.Iter() {
		remove, ok := data.AsList(arg)
		if !ok {
			m.skip(domain.OpPullAll, path, ErrModArgType{Mod: domain.OpPullAll, Want: "array", Actual: arg})
			continue
		}
		l, _, ok := m.list(doc, domain.OpPullAll, path)
		if !ok {
			continue
		}
		res := slices.DeleteFunc(slices.Clone(l), func(v any) bool {
			return m.contains(remove, v)
		})
		m.put(doc, path, res)
	}
}

func (m *Modifier) push(doc domain.Document, operands domain.Document, _ *domain.ApplyOptions) {
	for path, arg := range operands.Iter() {
		l, _, ok := m.list(doc, domain.OpPush, path)
		if !ok {
			continue
		}

		props := m.getPushProps(arg)
		res := slices.Clone(l)
		if props.hasPosition {
			pos := min(max(props.position, 0), len(res))
			res = slices.Insert(res, pos, props.each...)
		} else {
			res = append(res, props.each...)
		}

		if props.sort != nil {
			m.sortItems(res, props.sort)
		}

		if props.hasSlice {
			if props.slice >= 0 {
				res = res[:min(props.slice, len(res))]
			} else {
				res = res[max(len(res)+props.slice, 0):]
			}
		}

		if res == nil {
			res = []any{}
		}
		m.put(doc, path, res)
	}
}

type pushProps struct {
	each        []any
	position    int
	hasPosition bool
	slice       int
	hasSlice    bool
	sort        any
}

// getPushProps reads the modifiers of a $push operand. An operand is a
// modifier record if it is a document holding any of $each, $slice, $sort or
// $position. Anything else is a single item to append.
func (m *Modifier) getPushProps(arg any) pushProps {
	d, ok := data.AsDocument(arg)
	if !ok || !(d.Has(domain.ModEach) || d.Has(domain.ModSlice) || d.Has(domain.ModSort) || d.Has(domain.ModPosition)) {
		return pushProps{each: []any{arg}}
	}

	var props pushProps
	if each, ok := d.GetOk(domain.ModEach); ok {
		if props.each, ok = data.AsList(each); !ok {
			props.each = []any{each}
		}
	}
	if pos, ok := d.GetOk(domain.ModPosition); ok {
		props.position, props.hasPosition = structure.AsInteger(pos)
	}
	if slice, ok := d.GetOk(domain.ModSlice); ok {
		props.slice, props.hasSlice = structure.AsInteger(slice)
	}
	props.sort = d.Get(domain.ModSort)
	return props
}

// sortItems sorts items in place. order is either 1 or -1, sorting the items
// themselves, or a document mapping fields to 1 or -1, compared in order.
func (m *Modifier) sortItems(items []any, order any) {
	if dir, ok := structure.AsInteger(order); ok {
		slices.SortStableFunc(items, func(a, b any) int {
			comp, _ := m.comp.Compare(a, b)
			return lang.If(dir < 0, -comp, comp)
		})
		return
	}

	fields, ok := data.AsDocument(order)
	if !ok {
		return
	}
	type key struct {
		path string
		dir  int
	}
	var keys []key
	for path, dir := range fields.Iter() {
		n, _ := structure.AsInteger(dir)
		keys = append(keys, key{path: path, dir: lang.If(n < 0, -1, 1)})
	}

	slices.SortStableFunc(items, func(a, b any) int {
		da, _ := data.AsDocument(a)
		db, _ := data.AsDocument(b)
		for _, k := range keys {
			var va, vb any
			if da != nil {
				va, _ = m.get(da, k.path)
			}
			if db != nil {
				vb, _ = m.get(db, k.path)
			}
			if comp, _ := m.comp.Compare(va, vb); comp != 0 {
				return comp * k.dir
			}
		}
		return 0
	})
}

// NormalizeDelta returns v as a delta: a document holding any key that
// starts with "$" is returned as is, any other document is wrapped as
// {$set: v}. Values that are not documents are returned unchanged.
func NormalizeDelta(v any) any {
	d, ok := data.AsDocument(v)
	if !ok {
		return v
	}
	for k := range d.Keys() {
		if domain.IsOperator(k) {
			return v
		}
	}
	return data.Ordered(domain.OpSet, v)
}

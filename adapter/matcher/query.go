package matcher

import (
	"regexp"

	"github.com/vinicius-lino-figueiredo/docops/domain"
)

// Numeric representations of supported logic operators.
const (
	And uint8 = iota
	Or
	Nor
)

// Numeric representations of supported operators.
const (
	Eq uint8 = iota
	Ne
	Exists
	Lt
	Lte
	Gt
	Gte
	In
	Nin
	Type
	Mod
	Regex
	Unsupported
)

// Query stores a query in a typed and easier to iterate struct. A document
// matches a query if it satisfies every rule and every logic operator, and
// the query names no unsupported operator.
type Query struct {
	Rules       []FieldRule
	Lo          []LogicOp
	Unsupported []string
}

// LogicOp stores a logic operator ($and, $or, $nor) and the queries it
// combines.
type LogicOp struct {
	Type uint8
	Sub  []Query
}

// FieldRule stores a set of conditions used to match a given document field.
type FieldRule struct {
	Path  string
	Conds []Cond
}

// Cond stores a single operation on a document field (such as $gt, $in).
type Cond struct {
	Op        uint8
	Name      string
	Val       any
	List      []any
	Types     []domain.TypeClass
	Pattern   *regexp.Regexp
	Divisor   int64
	Remainder int64
}

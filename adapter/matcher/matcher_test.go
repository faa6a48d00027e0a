package matcher

import (
	"bytes"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vinicius-lino-figueiredo/docops/adapter/data"
	"github.com/vinicius-lino-figueiredo/docops/domain"
)

type M = data.M

type A = []any

type fieldNavigatorMock struct{ mock.Mock }

// GetAddress implements [domain.FieldNavigator].
func (f *fieldNavigatorMock) GetAddress(path string) []string {
	return f.Called(path).Get(0).([]string)
}

// GetPath implements [domain.FieldNavigator].
func (f *fieldNavigatorMock) GetPath(doc domain.Document, path string) (any, bool) {
	call := f.Called(doc, path)
	return call.Get(0), call.Bool(1)
}

// SetPath implements [domain.FieldNavigator].
func (f *fieldNavigatorMock) SetPath(doc domain.Document, path string, value any) domain.Document {
	return f.Called(doc, path, value).Get(0).(domain.Document)
}

// DeletePath implements [domain.FieldNavigator].
func (f *fieldNavigatorMock) DeletePath(doc domain.Document, path string, tombstone bool) domain.Document {
	return f.Called(doc, path, tombstone).Get(0).(domain.Document)
}

type MatcherTestSuite struct {
	suite.Suite
	mtchr *Matcher
}

// Can find documents with simple fields.
func (s *MatcherTestSuite) TestSimpleFieldEquality() {
	s.NotMatches(s.mtchr.Match(M{"test": "yeah"}, M{"test": "yea"}))
	s.NotMatches(s.mtchr.Match(M{"test": "yeah"}, M{"test": "yeahh"}))
	s.Matches(s.mtchr.Match(M{"test": "yeah"}, M{"test": "yeah"}))
	s.Matches(s.mtchr.Match(M{"test": "yeah", "n": 1}, M{"test": "yeah", "n": 1.0}))
}

func (s *MatcherTestSuite) TestDotNotation() {
	doc := M{"test": M{"ooo": "yeah"}}
	s.NotMatches(s.mtchr.Match(M{"test.ooo": "yea"}, doc))
	s.NotMatches(s.mtchr.Match(M{"test.oo": "yeah"}, doc))
	s.NotMatches(s.mtchr.Match(M{"tst.ooo": "yeah"}, doc))
	s.Matches(s.mtchr.Match(M{"test.ooo": "yeah"}, doc))
}

// Absent fields never equal anything, not even nil.
func (s *MatcherTestSuite) TestUndefined() {
	s.NotMatches(s.mtchr.Match(M{"a": nil}, M{}))
	s.Matches(s.mtchr.Match(M{"a": nil}, M{"a": nil}))
	s.Matches(s.mtchr.Match(M{"a": nil}, M{"a": bson.Null{}}))
	s.NotMatches(s.mtchr.Match(M{"a": nil}, M{"a": domain.Tombstone}))
	s.Matches(s.mtchr.Match(M{"a": M{"$exists": false}}, M{"a": domain.Tombstone}))
}

// Nested objects are deep-equality matched and not treated as sub-queries.
func (s *MatcherTestSuite) TestNestedObjectsAreDeepEqual() {
	s.Matches(s.mtchr.Match(M{"a": M{"b": 5}}, M{"a": M{"b": 5}}))
	s.NotMatches(s.mtchr.Match(M{"a": M{"b": 5}}, M{"a": M{"b": 5, "c": 3}}))
	s.NotMatches(s.mtchr.Match(M{"a": M{"b": M{"$lt": 10}}}, M{"a": M{"b": 5}}))

	ordered := data.Ordered("b", 1, "c", 2)
	s.Matches(s.mtchr.Match(M{"a": data.Ordered("b", 1, "c", 2)}, M{"a": ordered}))
	s.NotMatches(s.mtchr.Match(M{"a": data.Ordered("c", 2, "b", 1)}, M{"a": ordered}))
}

func (s *MatcherTestSuite) TestArrays() {
	doc := M{"tags": A{"x", "y"}}
	s.Matches(s.mtchr.Match(M{"tags": "x"}, doc))
	s.Matches(s.mtchr.Match(M{"tags": A{"x", "y"}}, doc))
	s.NotMatches(s.mtchr.Match(M{"tags": A{"y", "x"}}, doc))
	s.NotMatches(s.mtchr.Match(M{"tags": "z"}, doc))

	s.Matches(s.mtchr.Match(M{"l": A{1, 2}}, M{"l": A{A{1, 2}, 3}}))
	s.Matches(s.mtchr.Match(M{"l": A{1, 2}}, M{"l": []int{1, 2}}))
}

func (s *MatcherTestSuite) TestDates() {
	now := time.Now()
	s.Matches(s.mtchr.Match(M{"d": now}, M{"d": now.In(time.UTC)}))
	s.Matches(s.mtchr.Match(M{"d": M{"$lt": now}}, M{"d": now.Add(-time.Second)}))
	s.NotMatches(s.mtchr.Match(M{"d": M{"$lt": now}}, M{"d": now}))
}

func (s *MatcherTestSuite) TestComparisons() {
	s.Matches(s.mtchr.Match(M{"a": M{"$lt": 10}}, M{"a": 5}))
	s.NotMatches(s.mtchr.Match(M{"a": M{"$lt": 10}}, M{"a": 10}))
	s.Matches(s.mtchr.Match(M{"a": M{"$lte": 10}}, M{"a": 10.0}))
	s.Matches(s.mtchr.Match(M{"a": M{"$gt": 10}}, M{"a": int8(11)}))
	s.NotMatches(s.mtchr.Match(M{"a": M{"$gte": 10}}, M{"a": 9}))
	s.Matches(s.mtchr.Match(M{"a": M{"$gt": "abc"}}, M{"a": "abd"}))
	s.Matches(s.mtchr.Match(M{"a": M{"$gt": 1, "$lt": 3}}, M{"a": 2}))
	s.NotMatches(s.mtchr.Match(M{"a": M{"$gt": 1, "$lt": 3}}, M{"a": 3}))
}

// Range operators never match values of different type classes.
func (s *MatcherTestSuite) TestComparisonsAcrossClasses() {
	s.NotMatches(s.mtchr.Match(M{"a": M{"$gt": 1}}, M{"a": "2"}))
	s.NotMatches(s.mtchr.Match(M{"a": M{"$lt": 1}}, M{"a": "2"}))
	s.NotMatches(s.mtchr.Match(M{"a": M{"$gte": nil}}, M{"a": 0}))
	s.NotMatches(s.mtchr.Match(M{"a": M{"$lt": 1}}, M{}))
}

func (s *MatcherTestSuite) TestEqNe() {
	s.Matches(s.mtchr.Match(M{"a": M{"$eq": 1}}, M{"a": 1}))
	s.NotMatches(s.mtchr.Match(M{"a": M{"$eq": 1}}, M{}))
	s.Matches(s.mtchr.Match(M{"a": M{"$ne": 1}}, M{"a": 2}))
	s.Matches(s.mtchr.Match(M{"a": M{"$ne": 1}}, M{}))
	s.NotMatches(s.mtchr.Match(M{"a": M{"$ne": 1}}, M{"a": A{2, 1}}))
}

func (s *MatcherTestSuite) TestInNin() {
	s.Matches(s.mtchr.Match(M{"a": M{"$in": A{1, 2}}}, M{"a": 2}))
	s.NotMatches(s.mtchr.Match(M{"a": M{"$in": A{1, 2}}}, M{"a": 3}))
	s.NotMatches(s.mtchr.Match(M{"a": M{"$in": A{}}}, M{"a": 3}))
	s.Matches(s.mtchr.Match(M{"a": M{"$in": []string{"x"}}}, M{"a": A{"y", "x"}}))
	s.Matches(s.mtchr.Match(M{"a": M{"$nin": A{1, 2}}}, M{"a": 3}))
	s.Matches(s.mtchr.Match(M{"a": M{"$nin": A{1, 2}}}, M{}))
	s.NotMatches(s.mtchr.Match(M{"a": M{"$nin": A{1, 2}}}, M{"a": 1}))

	_, err := s.mtchr.Match(M{"a": M{"$in": 1}}, M{"a": 1})
	s.ErrorIs(err, ErrCompArgType{Comp: "$in", Want: "array", Actual: 1})

	_, err = s.mtchr.Match(M{"a": M{"$nin": "x"}}, M{"a": 1})
	s.ErrorIs(err, ErrCompArgType{Comp: "$nin", Want: "array", Actual: "x"})
}

func (s *MatcherTestSuite) TestExists() {
	s.Matches(s.mtchr.Match(M{"a": M{"$exists": true}}, M{"a": nil}))
	s.NotMatches(s.mtchr.Match(M{"a": M{"$exists": true}}, M{}))
	s.Matches(s.mtchr.Match(M{"a": M{"$exists": 0}}, M{}))
	s.Matches(s.mtchr.Match(M{"a": M{"$exists": "yes"}}, M{"a": false}))
	s.NotMatches(s.mtchr.Match(M{"a.b": M{"$exists": true}}, M{"a": 1}))
}

func (s *MatcherTestSuite) TestType() {
	s.Matches(s.mtchr.Match(M{"a": M{"$type": "string"}}, M{"a": "x"}))
	s.Matches(s.mtchr.Match(M{"a": M{"$type": "double"}}, M{"a": 1}))
	s.Matches(s.mtchr.Match(M{"a": M{"$type": A{"string", "null"}}}, M{"a": nil}))
	s.Matches(s.mtchr.Match(M{"a": M{"$type": 5}}, M{"a": 1.5}))
	s.Matches(s.mtchr.Match(M{"a": M{"$type": "array"}}, M{"a": A{}}))
	s.Matches(s.mtchr.Match(M{"a": M{"$type": "object"}}, M{"a": M{}}))
	s.Matches(s.mtchr.Match(M{"a": M{"$type": "date"}}, M{"a": time.Now()}))
	s.NotMatches(s.mtchr.Match(M{"a": M{"$type": "number"}}, M{"a": "1"}))
	s.NotMatches(s.mtchr.Match(M{"a": M{"$type": "undefined"}}, M{}))
}

func (s *MatcherTestSuite) TestMod() {
	s.Matches(s.mtchr.Match(M{"a": M{"$mod": A{4, 0}}}, M{"a": 8}))
	s.Matches(s.mtchr.Match(M{"a": M{"$mod": A{4, 0}}}, M{"a": 8.7}))
	s.Matches(s.mtchr.Match(M{"a": M{"$mod": A{4, 3}}}, M{"a": 7}))
	s.NotMatches(s.mtchr.Match(M{"a": M{"$mod": A{4, 0}}}, M{"a": 7}))
	s.NotMatches(s.mtchr.Match(M{"a": M{"$mod": A{4, 0}}}, M{"a": "8"}))

	_, err := s.mtchr.Match(M{"a": M{"$mod": A{0, 1}}}, M{"a": 8})
	s.ErrorIs(err, ErrModDivisor{Divisor: 0})

	_, err = s.mtchr.Match(M{"a": M{"$mod": A{4}}}, M{"a": 8})
	s.ErrorAs(err, &ErrCompArgType{})

	_, err = s.mtchr.Match(M{"a": M{"$mod": 4}}, M{"a": 8})
	s.ErrorIs(err, ErrCompArgType{Comp: "$mod", Want: "[divisor, remainder]", Actual: 4})
}

func (s *MatcherTestSuite) TestRegex() {
	s.Matches(s.mtchr.Match(M{"a": regexp.MustCompile("^ab")}, M{"a": "abc"}))
	s.NotMatches(s.mtchr.Match(M{"a": regexp.MustCompile("^ab")}, M{"a": "cab"}))
	s.NotMatches(s.mtchr.Match(M{"a": regexp.MustCompile("^ab")}, M{"a": 12}))
	s.NotMatches(s.mtchr.Match(M{"a": regexp.MustCompile("^ab")}, M{}))
	s.Matches(s.mtchr.Match(M{"a": M{"$regex": "^AB"}}, M{"a": "ABC"}))
	s.Matches(s.mtchr.Match(M{"a": M{"$regex": "^ab", "$options": "i"}}, M{"a": "ABC"}))
	s.Matches(s.mtchr.Match(M{"a": bson.Regex{Pattern: "^ab", Options: "i"}}, M{"a": "ABC"}))
	s.Matches(s.mtchr.Match(M{"a": M{"$regex": "b$"}}, M{"a": A{1, "ab"}}))
	s.Matches(s.mtchr.Match(M{"a": M{"$regex": "a", "$nin": A{"abc"}}}, M{"a": "ab"}))
	s.NotMatches(s.mtchr.Match(M{"a": M{"$regex": "a", "$nin": A{"abc"}}}, M{"a": "abc"}))

	_, err := s.mtchr.Match(M{"a": M{"$regex": "("}}, M{"a": "x"})
	s.Error(err)

	_, err = s.mtchr.Match(M{"a": M{"$regex": 1}}, M{"a": "x"})
	s.ErrorIs(err, ErrCompArgType{Comp: "$regex", Want: "string or regular expression", Actual: 1})

	_, err = s.mtchr.Match(M{"a": M{"$regex": "a", "$options": 1}}, M{"a": "x"})
	s.ErrorIs(err, ErrCompArgType{Comp: "$options", Want: "string", Actual: 1})
}

func (s *MatcherTestSuite) TestLogicalOperators() {
	doc := M{"a": 1, "b": 2}
	s.Matches(s.mtchr.Match(M{"$and": A{M{"a": 1}, M{"b": 2}}}, doc))
	s.NotMatches(s.mtchr.Match(M{"$and": A{M{"a": 1}, M{"b": 3}}}, doc))
	s.Matches(s.mtchr.Match(M{"$or": A{M{"a": 5}, M{"b": 2}}}, doc))
	s.NotMatches(s.mtchr.Match(M{"$or": A{}}, doc))
	s.Matches(s.mtchr.Match(M{"$nor": A{M{"a": 5}, M{"b": 5}}}, doc))
	s.NotMatches(s.mtchr.Match(M{"$nor": A{M{"a": 1}}}, doc))
	s.Matches(s.mtchr.Match(M{"a": 1, "$or": A{M{"$and": A{M{"b": 2}}}}}, doc))
	s.NotMatches(s.mtchr.Match(M{"a": 2, "$or": A{M{"b": 2}}}, doc))

	_, err := s.mtchr.Match(M{"$or": M{"a": 1}}, doc)
	var argErr ErrCompArgType
	s.ErrorAs(err, &argErr)
	s.Equal("$or", argErr.Comp)
}

// Operators without an implementation never match and are logged.
func (s *MatcherTestSuite) TestUnsupportedOperators() {
	var buf bytes.Buffer
	s.mtchr = NewMatcher(WithLogger(slog.New(slog.NewTextHandler(&buf, nil)))).(*Matcher)

	s.NotMatches(s.mtchr.Match(M{"$where": "true"}, M{"a": 1}))
	s.Contains(buf.String(), "operator=$where")

	s.NotMatches(s.mtchr.Match(M{"a": M{"$expr": M{}}}, M{"a": 1}))
	s.Contains(buf.String(), "operator=$expr")
	s.Contains(buf.String(), "level=WARN")
}

func (s *MatcherTestSuite) TestUnknownOperatorsAreIgnored() {
	s.Matches(s.mtchr.Match(M{"a": M{"$foo": 1, "$eq": 1}}, M{"a": 1}))
	s.Matches(s.mtchr.Match(M{"a": M{"$foo": 1}}, M{"a": 1}))
}

func (s *MatcherTestSuite) TestDocumentKinds() {
	type person struct {
		Name string `docops:"name"`
		Age  int    `bson:"age"`
	}
	s.Matches(s.mtchr.Match(M{"name": "x", "age": 3}, person{Name: "x", Age: 3}))
	s.Matches(s.mtchr.Match(M{"name": "x"}, &person{Name: "x"}))
	s.Matches(s.mtchr.Match(M{"a.b": 1}, bson.D{{Key: "a", Value: bson.D{{Key: "b", Value: 1}}}}))
	s.Matches(s.mtchr.Match(bson.M{"a": 1}, map[string]any{"a": 1}))
	s.NotMatches(s.mtchr.Match(M{"a": 1}, 12))
	s.Matches(s.mtchr.Match(M{}, 12))
}

func (s *MatcherTestSuite) TestQueryKinds() {
	s.Matches(s.mtchr.Match(nil, M{"a": 1}))
	s.Matches(s.mtchr.Match(M{}, M{"a": 1}))

	_, err := s.mtchr.Match(1, M{"a": 1})
	s.ErrorIs(err, ErrCompArgType{Comp: "query", Want: "object", Actual: 1})
}

// Every field is read through the configured navigator.
func (s *MatcherTestSuite) TestUsesFieldNavigator() {
	fn := new(fieldNavigatorMock)
	s.mtchr = NewMatcher(WithFieldNavigator(fn)).(*Matcher)

	doc := M{"a": M{"b": 2}}
	fn.On("GetPath", doc, "a.b").Return(1, true).Once()

	s.Matches(s.mtchr.Match(M{"a.b": 1}, doc))
	fn.AssertExpectations(s.T())
}

func (s *MatcherTestSuite) TestCompile() {
	qry, err := s.mtchr.Compile(M{"a": M{"$gt": 1}, "$or": A{M{"b": 1}}})
	s.NoError(err)
	s.Equal(Query{
		Rules: []FieldRule{{Path: "a", Conds: []Cond{{Op: Gt, Name: "$gt", Val: 1}}}},
		Lo: []LogicOp{{Type: Or, Sub: []Query{{
			Rules: []FieldRule{{Path: "b", Conds: []Cond{{Op: Eq, Name: "$eq", Val: 1}}}},
		}}}},
	}, qry)

	s.True(s.mtchr.MatchQuery(qry, M{"a": 2, "b": 1}))
	s.False(s.mtchr.MatchQuery(qry, M{"a": 2, "b": 2}))
}

func (s *MatcherTestSuite) TestMatchesEq() {
	s.True(s.mtchr.MatchesEq(A{1, 2}, 2))
	s.True(s.mtchr.MatchesEq(M{"a": A{1}}, M{"a": A{1.0}}))
	s.False(s.mtchr.MatchesEq(M{"a": 1}, M{"b": 1}))
	s.False(s.mtchr.MatchesEq(1, "1"))
	s.False(s.mtchr.MatchesEq(regexp.MustCompile("a"), regexp.MustCompile("a")))
}

func (s *MatcherTestSuite) Matches(matches bool, err error) {
	s.NoError(err)
	s.True(matches)
}

func (s *MatcherTestSuite) NotMatches(matches bool, err error) {
	s.NoError(err)
	s.False(matches)
}

func (s *MatcherTestSuite) SetupTest() {
	s.mtchr = NewMatcher().(*Matcher)
}

func (s *MatcherTestSuite) SetupSubTest() {
	s.SetupTest()
}

func TestMatcherTestSuite(t *testing.T) {
	suite.Run(t, new(MatcherTestSuite))
}

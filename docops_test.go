package docops_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vinicius-lino-figueiredo/docops"
	"github.com/vinicius-lino-figueiredo/docops/adapter/timegetter"
)

type DocopsTestSuite struct {
	suite.Suite
}

// Operator-less deltas behave exactly as the same delta wrapped in $set.
func (s *DocopsTestSuite) TestRootSet() {
	docs := []func() M{
		func() M { return M{} },
		func() M { return M{"a": 1, "b": M{"c": 2}} },
		func() M { return M{"a": A{1, 2}, "z": "z"} },
	}
	deltas := []M{
		{"a": 3},
		{"b.c": 4, "d": "x"},
		{"a": M{"nested": true}},
	}
	for _, doc := range docs {
		for _, delta := range deltas {
			plain := docops.ApplyDelta(doc(), delta)
			wrapped := docops.ApplyDelta(doc(), docops.NormalizeDelta(delta))
			s.Equal(wrapped, plain)
		}
	}
}

// Without root set, operator-less deltas replace the whole document.
func (s *DocopsTestSuite) TestRootReplace() {
	doc := M{"a": 1, "b": 2}
	docops.ApplyDelta(doc, M{"c": 3}, docops.WithRootSet(false))
	s.Equal(M{"c": 3}, doc)
}

// Two increments give the same result as one increment of their sum.
func (s *DocopsTestSuite) TestIncAssociative() {
	for _, pair := range [][2]any{{1, 2}, {-4, 4}, {1.5, 2}, {int64(3), 7}} {
		twice := M{"p": 10}
		docops.ApplyDelta(twice, M{"$inc": M{"p": pair[0]}})
		docops.ApplyDelta(twice, M{"$inc": M{"p": pair[1]}})

		sum, _ := docops.ApplyDelta(M{"p": pair[0]}, M{"$inc": M{"p": pair[1]}}).(M)
		once := M{"p": 10}
		docops.ApplyDelta(once, M{"$inc": M{"p": sum["p"]}})

		s.EqualValues(once["p"], twice["p"])
	}
}

// Pushing the popped value back restores the array length.
func (s *DocopsTestSuite) TestPopPush() {
	for _, side := range []int{1, -1} {
		doc := M{"l": A{1, 2, 3}}
		popped := doc["l"].(A)[0]
		if side == 1 {
			popped = doc["l"].(A)[2]
		}
		docops.ApplyDelta(doc, M{"$pop": M{"l": side}})
		s.Len(doc["l"], 2)
		docops.ApplyDelta(doc, M{"$push": M{"l": popped}})
		s.Len(doc["l"], 3)
		s.ElementsMatch(A{1, 2, 3}, doc["l"])
	}
}

// Pulling the same list twice changes nothing the second time.
func (s *DocopsTestSuite) TestPullAllIdempotent() {
	obj := M{"x": 1}
	delta := M{"$pullAll": M{"l": A{1, "a", obj}}}
	doc := M{"l": A{1, 2, "a", "b", obj, M{"x": 1}, 1}}

	docops.ApplyDelta(doc, delta)
	once := append(A(nil), doc["l"].([]any)...)
	docops.ApplyDelta(doc, delta)

	s.Equal(A{2, "b", M{"x": 1}}, once)
	s.Equal(once, doc["l"])
}

// Adding an item already present never grows the array. Documents are the
// same item only if they are the same reference.
func (s *DocopsTestSuite) TestAddToSet() {
	obj := M{"x": 1}
	doc := M{"l": A{1, "a", obj}}
	for _, item := range (A{1, "a", obj}) {
		docops.ApplyDelta(doc, M{"$addToSet": M{"l": item}})
		s.Len(doc["l"], 3)
	}
	docops.ApplyDelta(doc, M{"$addToSet": M{"l": M{"$each": A{2, 2, 1}}}})
	s.Equal(A{1, "a", obj, 2}, doc["l"])
}

// $mul creates missing fields with zero.
func (s *DocopsTestSuite) TestMulScenario() {
	s.Equal(M{"a": 10, "b": 0}, docops.ApplyDelta(M{"a": 5}, M{"$mul": M{"a": 2, "b": 3}}))
}

// Ordered targets keep their key order and come back as copies.
func (s *DocopsTestSuite) TestOrderedTarget() {
	doc := bson.D{{Key: "b", Value: 1}, {Key: "a", Value: 2}}
	res := docops.ApplyDelta(doc, M{"$set": M{"c": 3}})
	s.Equal(bson.D{{Key: "b", Value: 1}, {Key: "a", Value: 2}, {Key: "c", Value: 3}}, res)
	s.Len(doc, 2)
}

// Targets that are not documents are returned unchanged.
func (s *DocopsTestSuite) TestStructTarget() {
	type item struct {
		Name string `docops:"name"`
	}
	it := item{Name: "a"}
	s.Equal(it, docops.ApplyDelta(it, M{"$set": M{"name": "b"}}))
}

// Query results keep the collection order within a stage and never hold
// documents that were not given.
func (s *DocopsTestSuite) TestQuerySubset() {
	docs := []M{{"x": 3}, {"x": 1}, {"x": 3, "y": 1}, {"x": 2}, {"x": 3, "y": 2}}
	res, err := docops.ApplyQuery(docs, M{"x": 3})
	s.NoError(err)
	s.Equal([]M{docs[0], docs[2], docs[4]}, res)
}

// Documents removed by $nor are not considered by $or.
func (s *DocopsTestSuite) TestNorGatesOr() {
	docs := []M{{"x": 1}, {"x": 2}, {"x": 3}}
	res, err := docops.ApplyQuery(docs, M{"$nor": A{M{"x": 1}}, "$or": A{M{"x": 3}}})
	s.NoError(err)
	s.Equal([]M{{"x": 3}}, res)

	res, err = docops.ApplyQuery(docs, M{"$nor": A{M{"x": 1}}, "$or": A{M{"x": 1}}})
	s.NoError(err)
	s.Empty(res)
}

// Typed collections come back with their own element type.
func (s *DocopsTestSuite) TestQueryTyped() {
	docs := []bson.D{
		{{Key: "n", Value: "a"}, {Key: "v", Value: 1}},
		{{Key: "n", Value: "b"}, {Key: "v", Value: 5}},
	}
	res, err := docops.ApplyQuery(docs, M{"v": M{"$gt": 2}})
	s.NoError(err)
	s.Equal(docs[1:], res)
}

// Malformed operands are returned as errors.
func (s *DocopsTestSuite) TestQueryErrors() {
	_, err := docops.ApplyQuery([]M{{"x": 1}}, M{"x": M{"$in": 1}})
	var argErr docops.ErrCompArgType
	s.ErrorAs(err, &argErr)

	_, err = docops.Match(M{"x": M{"$mod": A{0, 1}}}, M{"x": 1})
	var modErr docops.ErrModDivisor
	s.ErrorAs(err, &modErr)

	_, err = docops.ApplyQuery([]M{{"x": 1}}, 1)
	var docErr docops.ErrDocumentType
	s.ErrorAs(err, &docErr)
}

// Match evaluates a single document.
func (s *DocopsTestSuite) TestMatch() {
	ok, err := docops.Match(M{"a.b": M{"$regex": "^x", "$options": "i"}}, M{"a": M{"b": "XY"}})
	s.NoError(err)
	s.True(ok)

	ok, err = docops.Match(M{"a": M{"$exists": false}}, M{"a": 1})
	s.NoError(err)
	s.False(ok)
}

// Paths under a "**" pattern are allowed, a "*" only covers one segment.
func (s *DocopsTestSuite) TestValidatePatterns() {
	delta := M{"$set": M{"a.b.c": 1}}
	s.NoError(docops.ValidateDelta(delta, []string{"$set"}, []string{"a.**"}))

	err := docops.ValidateDelta(delta, []string{"$set"}, []string{"a.*"})
	var verr *docops.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Require().Len(verr.Violations, 1)
	s.Equal(docops.KindDisallowedPath, verr.Violations[0].Kind)
	s.Equal("$set.a.b.c", verr.Violations[0].Path)
}

// Every violation is reported and each can be reached with errors.As.
func (s *DocopsTestSuite) TestValidateViolations() {
	err := docops.ValidateDelta(M{"$inc": M{"n": 1}, "$set": M{"a": 1, "b": 2}}, []string{"$set"}, []string{"a"})

	var verr *docops.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Len(verr.Violations, 2)

	var v docops.Violation
	s.True(errors.As(err, &v))
	s.Equal(400, v.StatusCode)
	s.Contains(err.Error(), "$inc is a disallowed operator")
	s.Contains(err.Error(), "$set.b is a disallowed path")
}

// Engines validate against policies read from the environment.
func (s *DocopsTestSuite) TestReadPolicy() {
	s.T().Setenv("DOCOPS_ALLOWED_OPERATORS", "$set,$inc")
	s.T().Setenv("DOCOPS_ALLOWED_PATHS", "profile.*,count")

	p, err := docops.ReadPolicy()
	s.Require().NoError(err)
	s.Equal([]string{"$set", "$inc"}, p.Operators)

	e := docops.NewEngine()
	s.NoError(e.ValidatePolicy(M{"$set": M{"profile.name": "x"}, "$inc": M{"count": 1}}, p))
	s.Error(e.ValidatePolicy(M{"$unset": M{"count": ""}}, p))
}

// Projection renames paths of deltas and queries.
func (s *DocopsTestSuite) TestProject() {
	aliases := map[string]string{"a": "x", "b": "y"}
	s.Equal(
		M{"$set": M{"x": 1}, "$rename": M{"y": "x"}},
		docops.ProjectDelta(M{"$set": M{"a": 1}, "$rename": M{"b": "a"}}, aliases),
	)
	s.Equal(
		M{"$or": A{M{"x": 1}, M{"y": M{"$gt": 2}}}},
		docops.ProjectQuery(M{"$or": A{M{"a": 1}, M{"b": M{"$gt": 2}}}}, aliases),
	)
}

// Engines share their logger and clock with every component.
func (s *DocopsTestSuite) TestEngineOptions() {
	buf := new(bytes.Buffer)
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	e := docops.NewEngine(
		docops.WithLogger(logger),
		docops.WithTimeGetter(timegetter.NewTimeGetter(timegetter.WithClock(func() time.Time { return now }))),
	)

	doc := M{"n": "x"}
	e.ApplyDelta(doc, M{"$inc": M{"n": 1}, "$currentDate": M{"at": true}})
	s.Equal("x", doc["n"])
	s.True(now.Equal(doc["at"].(time.Time)))
	s.Contains(buf.String(), "operator=$inc")

	buf.Reset()
	res, err := docops.Filter(e, []M{{"a": 1}}, M{"$where": "true"})
	s.NoError(err)
	s.Empty(res)
	s.True(strings.Contains(buf.String(), "operator=$where"))
}

// Documents read from JSON can be modified and decoded.
func (s *DocopsTestSuite) TestReadAndDecode() {
	docs, err := docops.ReadDocuments(s.T().Context(), strings.NewReader(`[{"name":"a","n":1},{"name":"b","n":2}]`))
	s.Require().NoError(err)
	s.Require().Len(docs, 2)

	docops.ApplyDelta(docs[1], M{"$inc": M{"n": 3}})

	var out struct {
		Name string `docops:"name"`
		N    int    `docops:"n"`
	}
	s.Require().NoError(docops.Decode(docs[1], &out))
	s.Equal("b", out.Name)
	s.Equal(5, out.N)

	s.ErrorIs(docops.Decode(docs[0], nil), docops.ErrTargetNil)
	s.ErrorIs(docops.Decode(docs[0], out), docops.ErrNonPointer)
}

func TestDocopsTestSuite(t *testing.T) {
	suite.Run(t, new(DocopsTestSuite))
}

package domain_test

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vinicius-lino-figueiredo/docops/domain"
)

type DomainTestSuite struct {
	suite.Suite
}

// Defaults enable tombstones and root set, and leave insert mode off.
func (s *DomainTestSuite) TestApplyOptionsDefaults() {
	s.Equal(domain.ApplyOptions{
		AsInsert:     false,
		UseTombstone: true,
		AllowRootSet: true,
	}, domain.NewApplyOptions())
}

func (s *DomainTestSuite) TestApplyOptions() {
	ao := domain.NewApplyOptions(
		domain.WithApplyAsInsert(true),
		domain.WithApplyTombstone(false),
		domain.WithApplyRootSet(false),
	)
	s.Equal(domain.ApplyOptions{
		AsInsert:     true,
		UseTombstone: false,
		AllowRootSet: false,
	}, ao)
}

// The type order is fixed and each class knows its own weight.
func (s *DomainTestSuite) TestTypeOrder() {
	names := make([]string, len(domain.TypeOrder))
	for n, c := range domain.TypeOrder {
		names[n] = c.String()
		s.Equal(n, c.Weight())
	}
	s.Equal([]string{
		"unknown", "regex", "date", "boolean", "buffer",
		"array", "object", "string", "number", "null",
	}, names)
}

func (s *DomainTestSuite) TestParseTypeClass() {
	for name, want := range map[string]domain.TypeClass{
		"number":    domain.TypeNumber,
		"double":    domain.TypeNumber,
		"long":      domain.TypeNumber,
		"bool":      domain.TypeBoolean,
		"binData":   domain.TypeBuffer,
		"timestamp": domain.TypeDate,
		"null":      domain.TypeNull,
		"array":     domain.TypeArray,
	} {
		c, ok := domain.ParseTypeClass(name)
		s.True(ok, name)
		s.Equal(want, c, name)
	}

	_, ok := domain.ParseTypeClass("nope")
	s.False(ok)
}

func (s *DomainTestSuite) TestOperators() {
	s.True(domain.IsOperator("$set"))
	s.False(domain.IsOperator("set"))
	s.False(domain.IsOperator(""))

	s.True(domain.IsDeltaOperator(domain.OpPullAll))
	s.False(domain.IsDeltaOperator(domain.QAnd))
	s.Len(domain.DeltaOperators, 14)
}

// The tombstone is the BSON undefined value.
func (s *DomainTestSuite) TestTombstone() {
	s.True(domain.IsTombstone(domain.Tombstone))
	s.True(domain.IsTombstone(bson.Undefined{}))
	s.False(domain.IsTombstone(nil))
}

func TestDomainTestSuite(t *testing.T) {
	suite.Run(t, new(DomainTestSuite))
}

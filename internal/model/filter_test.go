package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFilterSpec(t *testing.T) {
	year := 2024
	spec := NewFilterSpec([]string{"b", " a ", "", "b"}, &year, "asc")
	year = 1999

	assert.Equal(t, []string{"a", "b"}, spec.Types())
	y, ok := spec.Year()
	assert.True(t, ok)
	assert.Equal(t, 2024, y)
	assert.Equal(t, OrderAsc, spec.Order())

	types := spec.Types()
	types[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, spec.Types())
}

func TestFilterSpec_Defaults(t *testing.T) {
	var zero FilterSpec
	assert.Equal(t, OrderDesc, zero.Order())
	_, ok := zero.Year()
	assert.False(t, ok)

	assert.Equal(t, OrderDesc, NewFilterSpec(nil, nil, "bogus").Order())
}

func TestFilterSpec_MatchesTypes(t *testing.T) {
	assert.True(t, NewFilterSpec(nil, nil, OrderDesc).MatchesTypes(nil))

	spec := NewFilterSpec([]string{"reports", "filings"}, nil, OrderDesc)
	assert.True(t, spec.MatchesTypes([]string{"press", "filings"}))
	assert.False(t, spec.MatchesTypes([]string{"press"}))
	assert.False(t, spec.MatchesTypes(nil))
}

func TestFilterSpec_KeyPartsStable(t *testing.T) {
	a := NewFilterSpec([]string{"x", "y"}, nil, OrderDesc)
	b := NewFilterSpec([]string{"y", "x", "x"}, nil, "desc")

	assert.Equal(t, a.KeyParts(), b.KeyParts())
	assert.Nil(t, a.KeyParts().Year)
}

func TestFilterSpec_KeyPartsYearZeroIsNotAllYears(t *testing.T) {
	zero := 0
	all := NewFilterSpec([]string{"x"}, nil, OrderDesc).KeyParts()
	yearZero := NewFilterSpec([]string{"x"}, &zero, OrderDesc).KeyParts()

	assert.NotEqual(t, all, yearZero)
	require.NotNil(t, yearZero.Year)
	assert.Equal(t, 0, *yearZero.Year)
}

func TestNormalizeOrder(t *testing.T) {
	assert.Equal(t, OrderAsc, NormalizeOrder(" Asc ", OrderDesc))
	assert.Equal(t, OrderDesc, NormalizeOrder("DESC", OrderAsc))
	assert.Equal(t, OrderAsc, NormalizeOrder("sideways", OrderAsc))
}

package filter

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/search-core/internal/schema"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-core/pkg/errors"
)

func TestExtractComparator(t *testing.T) {
	tests := []struct {
		in   string
		want Comparator
	}{
		{"5", Equals},
		{"-12", Equals},
		{"<=5", LessThanEquals},
		{">=5", GreaterThanEquals},
		{"<5", LessThan},
		{">5", GreaterThan},
		{"<=", LessThanEquals},
		{">abc", GreaterThan},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExtractComparator(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractComparatorInvalid(t *testing.T) {
	for _, in := range []string{"abc", "", "=5", "5.5", "!5", " 5"} {
		t.Run(in, func(t *testing.T) {
			_, err := ExtractComparator(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidComparator)
			assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatusCode(err))
			assert.Equal(t, "Numerical field has an invalid comparator.", apperrors.Message(err))
		})
	}
}

func TestOperand(t *testing.T) {
	assert.Equal(t, "5", Operand("<=5", LessThanEquals))
	assert.Equal(t, "5", Operand(">5", GreaterThan))
	assert.Equal(t, "-5", Operand("-5", Equals))
}

func TestCompare(t *testing.T) {
	assert.True(t, LessThan.CompareInt(4, 5))
	assert.False(t, LessThan.CompareInt(5, 5))
	assert.True(t, LessThanEquals.CompareInt(5, 5))
	assert.True(t, GreaterThan.CompareInt(6, 5))
	assert.True(t, GreaterThanEquals.CompareInt(5, 5))
	assert.True(t, Equals.CompareInt(5, 5))
	assert.True(t, GreaterThan.CompareFloat(1.5, 1.25))
	assert.False(t, Equals.CompareFloat(1.5, 1.25))
}

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New(
		schema.NewField("points", schema.TypeInt32, false),
		schema.NewField("price", schema.TypeFloat, false),
		schema.NewField("in_stock", schema.TypeBool, false),
		schema.NewField("tags", schema.TypeStringArray, true),
		schema.NewField("title", schema.TypeString, false),
	)
	require.NoError(t, err)
	return s
}

func TestParse(t *testing.T) {
	s := testSchema(t)
	tests := []struct {
		expr string
		want Filter
	}{
		{"points:10", Filter{"points", []string{"10"}, Equals}},
		{"points: >=10", Filter{"points", []string{"10"}, GreaterThanEquals}},
		{"points:<3", Filter{"points", []string{"3"}, LessThan}},
		{"points:[1, 2,3]", Filter{"points", []string{"1", "2", "3"}, Equals}},
		{"price:2.5", Filter{"price", []string{"2.5"}, Equals}},
		{"price:>2.5", Filter{"price", []string{"2.5"}, GreaterThan}},
		{"in_stock:true", Filter{"in_stock", []string{"true"}, Equals}},
		{"tags:[red, blue]", Filter{"tags", []string{"red", "blue"}, Equals}},
		{"tags:red", Filter{"tags", []string{"red"}, Equals}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Parse(s, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	s := testSchema(t)
	tests := []struct {
		expr     string
		sentinel error
	}{
		{"points", apperrors.ErrInvalidInput},
		{":5", apperrors.ErrInvalidInput},
		{"points:", apperrors.ErrInvalidInput},
		{"missing:5", apperrors.ErrUnknownField},
		{"points:abc", apperrors.ErrInvalidComparator},
		{"points:>=abc", apperrors.ErrInvalidInput},
		{"points:[1, x]", apperrors.ErrInvalidInput},
		{"price:=2.5", apperrors.ErrInvalidComparator},
		{"in_stock:maybe", apperrors.ErrInvalidInput},
		{"title:hello", apperrors.ErrInvalidInput},
		{"tags:[]", apperrors.ErrInvalidInput},
		{"title:[ , ]", apperrors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := Parse(s, tt.expr)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/search-core/internal/indexer/facet"
	"github.com/Adithya-Monish-Kumar-K/search-core/internal/schema"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-core/pkg/errors"
)

func newTestCollection(t *testing.T) *Collection {
	t.Helper()
	s, err := schema.New(
		schema.NewField("title", schema.TypeString, false),
		schema.NewField("points", schema.TypeInt32, false),
		schema.NewField("ratings", schema.TypeInt64Array, false),
		schema.NewField("price", schema.TypeFloat, false),
		schema.NewField("in_stock", schema.TypeBool, true),
		schema.NewField("tags", schema.TypeStringArray, true),
	)
	require.NoError(t, err)
	return New("products", s)
}

func TestIndexStoresTypedAttributes(t *testing.T) {
	c := newTestCollection(t)
	err := c.Index(Document{ID: 1, Fields: map[string]any{
		"title":    "Red shoes",
		"points":   float64(42),
		"ratings":  []any{float64(3), float64(5)},
		"price":    19.5,
		"in_stock": true,
		"tags":     []string{"red", "shoes"},
		"extra":    "ignored",
	}})
	require.NoError(t, err)

	assert.Equal(t, []int64{42}, c.Ints("points", 1))
	assert.Equal(t, []int64{3, 5}, c.Ints("ratings", 1))
	assert.Equal(t, []float64{19.5}, c.Floats("price", 1))
	assert.Equal(t, []bool{true}, c.Bools("in_stock", 1))
	assert.Equal(t, 1, c.Count())

	tags := c.Facet("tags")
	require.NotNil(t, tags)
	codes, ok := tags.DocCodes(1)
	require.True(t, ok)
	assert.Equal(t, []uint32{0, 1}, codes)

	stock := c.Facet("in_stock")
	require.NotNil(t, stock)
	code, ok := stock.Code("true")
	require.True(t, ok)
	assert.True(t, stock.HasCode(1, code))

	assert.Nil(t, c.Facet("title"))
}

func TestIndexMissingFieldsAllowed(t *testing.T) {
	c := newTestCollection(t)
	require.NoError(t, c.Index(Document{ID: 9, Fields: map[string]any{"points": 1}}))
	assert.Nil(t, c.Floats("price", 9))
	_, ok := c.Facet("tags").DocCodes(9)
	assert.False(t, ok)
}

func TestIndexRejectsDuplicateID(t *testing.T) {
	c := newTestCollection(t)
	require.NoError(t, c.Index(Document{ID: 1, Fields: map[string]any{"points": 1}}))
	err := c.Index(Document{ID: 1, Fields: map[string]any{"points": 2}})
	assert.ErrorIs(t, err, apperrors.ErrDocumentExists)
	assert.Equal(t, []int64{1}, c.Ints("points", 1))
}

func TestIndexAcceptsAnyGoNumber(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"int8", int8(7)},
		{"int16", int16(7)},
		{"uint", uint(7)},
		{"uint8", uint8(7)},
		{"uint16", uint16(7)},
		{"uint32", uint32(7)},
		{"uint64", uint64(7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCollection(t)
			require.NoError(t, c.Index(Document{ID: 1, Fields: map[string]any{
				"points": tt.value,
				"price":  tt.value,
			}}))
			assert.Equal(t, []int64{7}, c.Ints("points", 1))
			assert.Equal(t, []float64{7}, c.Floats("price", 1))
		})
	}
}

func TestIndexTypeErrors(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
	}{
		{"string for int", map[string]any{"points": "ten"}},
		{"fractional int", map[string]any{"points": 1.5}},
		{"int32 overflow", map[string]any{"points": int64(1) << 40}},
		{"scalar for array", map[string]any{"tags": "red"}},
		{"array for scalar", map[string]any{"points": []int{1}}},
		{"bad array element", map[string]any{"ratings": []any{1, "x"}}},
		{"string for bool", map[string]any{"in_stock": "yes"}},
		{"number for string", map[string]any{"title": 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCollection(t)
			err := c.Index(Document{ID: 1, Fields: tt.fields})
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			assert.Equal(t, 0, c.Count())
		})
	}
}

func TestReadFacets(t *testing.T) {
	c := newTestCollection(t)
	require.NoError(t, c.Index(Document{ID: 1, Fields: map[string]any{"tags": []any{"a", "b"}}}))
	require.NoError(t, c.Index(Document{ID: 2, Fields: map[string]any{"tags": []any{"b"}}}))

	var distinct int
	c.ReadFacets(func(facets map[string]*facet.ValueIndex) {
		distinct = facets["tags"].Len()
	})
	assert.Equal(t, 2, distinct)
}

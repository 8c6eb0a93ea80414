package facet

import (
	"fmt"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateCodeStable(t *testing.T) {
	idx := NewValueIndex()
	for i := 0; i < 50; i++ {
		code := idx.GetOrCreateCode(fmt.Sprintf("v%d", i))
		assert.Equal(t, uint32(i), code)
	}
	for i := 0; i < 50; i++ {
		assert.Equal(t, uint32(i), idx.GetOrCreateCode(fmt.Sprintf("v%d", i)))
	}
	assert.Equal(t, 50, idx.Len())
}

func TestIndexValuesScenario(t *testing.T) {
	idx := NewValueIndex()
	idx.IndexValues(1, []string{"red", "blue"})
	idx.IndexValues(2, []string{"red"})

	red, ok := idx.Code("red")
	require.True(t, ok)
	blue, ok := idx.Code("blue")
	require.True(t, ok)
	assert.Equal(t, uint32(0), red)
	assert.Equal(t, uint32(1), blue)

	codes, ok := idx.DocCodes(1)
	require.True(t, ok)
	assert.Equal(t, []uint32{0, 1}, codes)
	codes, ok = idx.DocCodes(2)
	require.True(t, ok)
	assert.Equal(t, []uint32{0}, codes)
	assert.Equal(t, 2, idx.Docs())
}

// Re-recording a document keeps the first code list. The new values are
// still interned.
func TestIndexValuesFirstWriteWins(t *testing.T) {
	idx := NewValueIndex()
	idx.IndexValues(7, []string{"red"})
	idx.IndexValues(7, []string{"green", "blue"})

	codes, _ := idx.DocCodes(7)
	assert.Equal(t, []uint32{0}, codes)

	green, ok := idx.Code("green")
	require.True(t, ok)
	assert.Equal(t, uint32(1), green)
	assert.Equal(t, 3, idx.Len())
}

func TestDocCodesReturnsCopy(t *testing.T) {
	idx := NewValueIndex()
	idx.IndexValues(3, []string{"red", "blue"})

	codes, ok := idx.DocCodes(3)
	require.True(t, ok)
	codes[0] = 99

	again, _ := idx.DocCodes(3)
	assert.Equal(t, []uint32{0, 1}, again)
	assert.True(t, idx.HasCode(3, 0))
}

func TestFacetTrim(t *testing.T) {
	f := Facet{FieldName: "tags", Counts: map[string]int{"red": 3, "blue": 1, "green": 1, "shoes": 2}}

	trimmed := f.Trim(2)
	assert.Equal(t, "tags", trimmed.FieldName)
	assert.Equal(t, map[string]int{"red": 3, "shoes": 2}, trimmed.Counts)
	assert.Len(t, f.Counts, 4, "trim leaves the original untouched")
}

func TestForwardBackwardAgree(t *testing.T) {
	idx := NewValueIndex()
	idx.IndexValues(1, []string{"a", "b", "a", "c"})
	for _, value := range []string{"a", "b", "c"} {
		code, ok := idx.Code(value)
		require.True(t, ok)
		back, ok := idx.Value(code)
		require.True(t, ok)
		assert.Equal(t, value, back)
	}
	_, ok := idx.Value(99)
	assert.False(t, ok)
	_, ok = idx.Code("z")
	assert.False(t, ok)
	assert.True(t, idx.HasCode(1, 2))
	assert.False(t, idx.HasCode(2, 0))
}

func TestCount(t *testing.T) {
	idx := NewValueIndex()
	idx.IndexValues(1, []string{"red", "blue"})
	idx.IndexValues(2, []string{"red"})
	idx.IndexValues(3, []string{"green"})
	idx.IndexValues(4, []string{"red", "red"})

	f := Count("color", idx, roaring.BitmapOf(1, 2, 4, 100))
	assert.Equal(t, "color", f.FieldName)
	assert.Equal(t, map[string]int{"red": 4, "blue": 1}, f.Counts)

	assert.Equal(t, []ValueCount{{"red", 4}, {"blue", 1}}, f.Top(0))
	assert.Equal(t, []ValueCount{{"red", 4}}, f.Top(1))

	empty := Count("color", idx, roaring.New())
	assert.Empty(t, empty.Counts)
}

func TestTopTiesByValue(t *testing.T) {
	f := Facet{Counts: map[string]int{"b": 2, "a": 2, "c": 5}}
	assert.Equal(t, []ValueCount{{"c", 5}, {"a", 2}, {"b", 2}}, f.Top(0))
}

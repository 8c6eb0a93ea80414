package facet

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// Facet is the aggregated result for one field: how often each value occurs
// across the matched documents.
type Facet struct {
	FieldName string         `json:"field_name"`
	Counts    map[string]int `json:"counts"`
}

// ValueCount is one entry of a Facet ordered for display.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Tally counts code occurrences over the documents in matched. A document
// that lists the same value twice contributes two.
func (v *ValueIndex) Tally(matched *roaring.Bitmap) map[uint32]int {
	counts := make(map[uint32]int)
	it := matched.Iterator()
	for it.HasNext() {
		for _, code := range v.docValues[it.Next()] {
			counts[code]++
		}
	}
	return counts
}

// Count builds the Facet for fieldName from the matched documents.
func Count(fieldName string, idx *ValueIndex, matched *roaring.Bitmap) Facet {
	f := Facet{FieldName: fieldName, Counts: make(map[string]int)}
	for code, n := range idx.Tally(matched) {
		if value, ok := idx.Value(code); ok {
			f.Counts[value] = n
		}
	}
	return f
}

// Trim returns a copy of f holding only its Top(n) values.
func (f Facet) Trim(n int) Facet {
	top := f.Top(n)
	out := Facet{FieldName: f.FieldName, Counts: make(map[string]int, len(top))}
	for _, vc := range top {
		out.Counts[vc.Value] = vc.Count
	}
	return out
}

// Top returns up to n values by descending count, ties broken by value.
// n <= 0 returns all values.
func (f Facet) Top(n int) []ValueCount {
	out := make([]ValueCount, 0, len(f.Counts))
	for value, count := range f.Counts {
		out = append(out, ValueCount{Value: value, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

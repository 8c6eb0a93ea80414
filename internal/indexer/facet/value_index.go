// Package facet interns facet string values into dense uint32 codes per field
// and records which codes each document carries.
package facet

import "slices"

// ValueIndex holds the interned values of one facet field.
//
// Every entry in codes has exactly one counterpart in values and vice versa.
// Codes are assigned in insertion order starting at 0 and are never reused.
// ValueIndex is not safe for concurrent use; callers must serialise writers
// against readers.
type ValueIndex struct {
	codes     map[string]uint32
	values    map[uint32]string
	docValues map[uint32][]uint32
}

func NewValueIndex() *ValueIndex {
	return &ValueIndex{
		codes:     make(map[string]uint32),
		values:    make(map[uint32]string),
		docValues: make(map[uint32][]uint32),
	}
}

// GetOrCreateCode returns the code for value, allocating the next one if the
// value has not been seen before.
func (v *ValueIndex) GetOrCreateCode(value string) uint32 {
	if code, ok := v.codes[value]; ok {
		return code
	}
	code := uint32(len(v.codes))
	v.codes[value] = code
	v.values[code] = value
	return code
}

// IndexValues interns values and records their codes for docID.
//
// First write wins: if docID already has codes recorded, the document map is
// left untouched, although the new values are still interned. Re-indexing a
// document through this path does not update it.
func (v *ValueIndex) IndexValues(docID uint32, values []string) {
	codes := make([]uint32, len(values))
	for i, value := range values {
		codes[i] = v.GetOrCreateCode(value)
	}
	if _, exists := v.docValues[docID]; exists {
		return
	}
	v.docValues[docID] = codes
}

// Code looks up value without allocating.
func (v *ValueIndex) Code(value string) (uint32, bool) {
	code, ok := v.codes[value]
	return code, ok
}

func (v *ValueIndex) Value(code uint32) (string, bool) {
	value, ok := v.values[code]
	return value, ok
}

// DocCodes returns a copy of the codes recorded for docID, in the order the
// values were given.
func (v *ValueIndex) DocCodes(docID uint32) ([]uint32, bool) {
	codes, ok := v.docValues[docID]
	if !ok {
		return nil, false
	}
	return slices.Clone(codes), true
}

// HasCode reports whether docID carries code.
func (v *ValueIndex) HasCode(docID uint32, code uint32) bool {
	for _, c := range v.docValues[docID] {
		if c == code {
			return true
		}
	}
	return false
}

// Len returns the number of distinct values interned.
func (v *ValueIndex) Len() int {
	return len(v.codes)
}

// Docs returns the number of documents with recorded values.
func (v *ValueIndex) Docs() int {
	return len(v.docValues)
}

// Package filter models numeric and facet filter conditions: the relational
// comparator attached to a value and the parsed filter itself.
package filter

import (
	"net/http"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-core/pkg/errors"
)

type Comparator uint8

const (
	Equals Comparator = iota
	LessThan
	LessThanEquals
	GreaterThan
	GreaterThanEquals
)

const invalidComparatorMessage = "Numerical field has an invalid comparator."

// prefixes is checked in order: two-character operators must come before
// their one-character prefixes.
var prefixes = []struct {
	token string
	cmp   Comparator
}{
	{"<=", LessThanEquals},
	{">=", GreaterThanEquals},
	{"<", LessThan},
	{">", GreaterThan},
}

func (c Comparator) String() string {
	switch c {
	case Equals:
		return "="
	case LessThan:
		return "<"
	case LessThanEquals:
		return "<="
	case GreaterThan:
		return ">"
	case GreaterThanEquals:
		return ">="
	default:
		return "?"
	}
}

// ExtractComparator returns the comparator encoded in a numeric filter value.
// A bare integer literal means Equals. Anything else must start with one of
// <=, >=, < or >. Only the comparator is returned; see Operand for the rest.
func ExtractComparator(compAndValue string) (Comparator, error) {
	if isInteger(compAndValue) {
		return Equals, nil
	}
	for _, p := range prefixes {
		if strings.HasPrefix(compAndValue, p.token) {
			return p.cmp, nil
		}
	}
	return 0, apperrors.New(apperrors.ErrInvalidComparator, http.StatusBadRequest, invalidComparatorMessage)
}

// Operand strips the comparator prefix from compAndValue.
func Operand(compAndValue string, c Comparator) string {
	if c == Equals {
		return compAndValue
	}
	return strings.TrimPrefix(compAndValue, c.String())
}

func (c Comparator) CompareInt(docValue, operand int64) bool {
	switch c {
	case Equals:
		return docValue == operand
	case LessThan:
		return docValue < operand
	case LessThanEquals:
		return docValue <= operand
	case GreaterThan:
		return docValue > operand
	case GreaterThanEquals:
		return docValue >= operand
	}
	return false
}

func (c Comparator) CompareFloat(docValue, operand float64) bool {
	switch c {
	case Equals:
		return docValue == operand
	case LessThan:
		return docValue < operand
	case LessThanEquals:
		return docValue <= operand
	case GreaterThan:
		return docValue > operand
	case GreaterThanEquals:
		return docValue >= operand
	}
	return false
}

// isInteger reports whether s is an optionally negative run of decimal digits.
func isInteger(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

package filter

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/search-core/internal/schema"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-core/pkg/errors"
)

// Filter is a single condition on one field. Values hold the raw operand
// tokens with any comparator prefix already removed; a document matches when
// any one of them matches.
type Filter struct {
	FieldName  string
	Values     []string
	Comparator Comparator
}

// Parse reads a "field:value" expression against the schema. The value may
// be a list in brackets ("tags:[red, blue]"), in which case every element is
// compared with Equals. Numeric single values accept a comparator prefix
// ("points:>=10").
func Parse(s *schema.Schema, expr string) (Filter, error) {
	name, raw, ok := strings.Cut(expr, ":")
	name = strings.TrimSpace(name)
	raw = strings.TrimSpace(raw)
	if !ok || name == "" || raw == "" {
		return Filter{}, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
			"filter %q must have the form field:value", expr)
	}

	field, found := s.Field(name)
	if !found {
		return Filter{}, apperrors.Newf(apperrors.ErrUnknownField, http.StatusNotFound,
			"could not find a filter field named %q in the schema", name)
	}

	if list, isList := splitList(raw); isList {
		if len(list) == 0 {
			return Filter{}, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
				"filter %q has an empty value list", expr)
		}
		if err := validateOperands(field, list); err != nil {
			return Filter{}, err
		}
		return Filter{FieldName: name, Values: list, Comparator: Equals}, nil
	}

	switch {
	case field.IsInteger(), field.IsFloat():
		cmp, err := numericComparator(field, raw)
		if err != nil {
			return Filter{}, err
		}
		operand := Operand(raw, cmp)
		if err := validateOperands(field, []string{operand}); err != nil {
			return Filter{}, err
		}
		return Filter{FieldName: name, Values: []string{operand}, Comparator: cmp}, nil
	default:
		if err := validateOperands(field, []string{raw}); err != nil {
			return Filter{}, err
		}
		return Filter{FieldName: name, Values: []string{raw}, Comparator: Equals}, nil
	}
}

// numericComparator lets a bare float literal on a float field mean Equals;
// everything else goes through ExtractComparator.
func numericComparator(field schema.Field, raw string) (Comparator, error) {
	if field.IsFloat() {
		if _, err := strconv.ParseFloat(raw, 64); err == nil {
			return Equals, nil
		}
	}
	return ExtractComparator(raw)
}

func validateOperands(field schema.Field, values []string) error {
	for _, v := range values {
		var err error
		switch {
		case field.IsInteger():
			_, err = strconv.ParseInt(v, 10, 64)
		case field.IsFloat():
			_, err = strconv.ParseFloat(v, 64)
		case field.IsBool():
			_, err = strconv.ParseBool(v)
		case field.IsString():
			if !field.IsFacet() {
				return apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
					"string field %q must be a facet to be filtered on", field.Name)
			}
		}
		if err != nil {
			return apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
				"value %q is not a valid %s for field %q", v, field.Type, field.Name)
		}
	}
	return nil
}

func splitList(raw string) ([]string, bool) {
	if len(raw) < 2 || raw[0] != '[' || raw[len(raw)-1] != ']' {
		return nil, false
	}
	parts := strings.Split(raw[1:len(raw)-1], ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values, true
}

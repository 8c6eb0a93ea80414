package schema

import (
	"fmt"
	"net/http"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-core/pkg/errors"
)

// Schema is the ordered set of fields declared for a collection.
type Schema struct {
	fields []Field
	byName map[string]int
}

// New builds a Schema, rejecting empty and duplicate field names.
func New(fields ...Field) (*Schema, error) {
	s := &Schema{
		fields: make([]Field, 0, len(fields)),
		byName: make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest,
				"field name is required")
		}
		if _, dup := s.byName[f.Name]; dup {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
				"field %q declared more than once", f.Name)
		}
		s.byName[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// Parse decodes a YAML (or JSON) document of the form
//
//	fields:
//	  - {name: title, type: string}
//	  - {name: tags, type: "string[]", facet: true}
func Parse(data []byte) (*Schema, error) {
	var doc struct {
		Fields []Field `yaml:"fields"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}
	return New(doc.Fields...)
}

func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Fields returns the declared fields in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// FacetFields returns the fields flagged for facet aggregation.
func (s *Schema) FacetFields() []Field {
	out := make([]Field, 0)
	for _, f := range s.fields {
		if f.Facet {
			out = append(out, f)
		}
	}
	return out
}

// Package schema describes the typed value slots of a collection: field
// types, facet eligibility, and sort specifications.
package schema

import (
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-core/pkg/errors"
)

// Kind is the scalar type of a field, independent of the array flag.
type Kind uint8

const (
	KindString Kind = iota
	KindInt32
	KindInt64
	KindFloat
	KindBool
)

const arraySuffix = "[]"

var kindTokens = [...]string{
	KindString: "string",
	KindInt32:  "int32",
	KindInt64:  "int64",
	KindFloat:  "float",
	KindBool:   "bool",
}

func (k Kind) String() string {
	if int(k) < len(kindTokens) {
		return kindTokens[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// FieldType is a scalar kind plus an array flag. Its String form is the
// schema token used on the wire, e.g. "int32" or "string[]".
type FieldType struct {
	Kind  Kind
	Array bool
}

var (
	TypeString      = FieldType{Kind: KindString}
	TypeInt32       = FieldType{Kind: KindInt32}
	TypeInt64       = FieldType{Kind: KindInt64}
	TypeFloat       = FieldType{Kind: KindFloat}
	TypeBool        = FieldType{Kind: KindBool}
	TypeStringArray = FieldType{Kind: KindString, Array: true}
	TypeInt32Array  = FieldType{Kind: KindInt32, Array: true}
	TypeInt64Array  = FieldType{Kind: KindInt64, Array: true}
	TypeFloatArray  = FieldType{Kind: KindFloat, Array: true}
	TypeBoolArray   = FieldType{Kind: KindBool, Array: true}
)

func (t FieldType) String() string {
	if t.Array {
		return t.Kind.String() + arraySuffix
	}
	return t.Kind.String()
}

// ParseFieldType maps a schema token to its FieldType. Tokens are case
// sensitive.
func ParseFieldType(token string) (FieldType, error) {
	base, isArray := strings.CutSuffix(token, arraySuffix)
	for k, tok := range kindTokens {
		if tok == base {
			return FieldType{Kind: Kind(k), Array: isArray}, nil
		}
	}
	return FieldType{}, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
		"unknown field type %q", token)
}

func (t FieldType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *FieldType) UnmarshalText(text []byte) error {
	parsed, err := ParseFieldType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Field is a named value slot. It is a plain value and never changes after
// construction.
type Field struct {
	Name  string    `json:"name" yaml:"name"`
	Type  FieldType `json:"type" yaml:"type"`
	Facet bool      `json:"facet" yaml:"facet"`
}

func NewField(name string, typ FieldType, facet bool) Field {
	return Field{Name: name, Type: typ, Facet: facet}
}

func (f Field) IsSingleInteger() bool {
	return !f.Type.Array && f.isIntegerKind()
}

func (f Field) IsSingleFloat() bool {
	return f.Type == TypeFloat
}

func (f Field) IsSingleBool() bool {
	return f.Type == TypeBool
}

func (f Field) IsInteger() bool {
	return f.isIntegerKind()
}

func (f Field) IsFloat() bool {
	return f.Type.Kind == KindFloat
}

func (f Field) IsBool() bool {
	return f.Type.Kind == KindBool
}

func (f Field) IsString() bool {
	return f.Type.Kind == KindString
}

func (f Field) IsArray() bool {
	return f.Type.Array
}

func (f Field) IsFacet() bool {
	return f.Facet
}

func (f Field) isIntegerKind() bool {
	return f.Type.Kind == KindInt32 || f.Type.Kind == KindInt64
}

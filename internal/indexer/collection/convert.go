package collection

import (
	"encoding/json"
	"math"
	"net/http"
	"reflect"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/search-core/internal/schema"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-core/pkg/errors"
)

type parsedDoc struct {
	ints   map[string][]int64
	floats map[string][]float64
	bools  map[string][]bool
	facets map[string][]string
}

func (c *Collection) convert(doc Document) (parsedDoc, error) {
	p := parsedDoc{
		ints:   make(map[string][]int64),
		floats: make(map[string][]float64),
		bools:  make(map[string][]bool),
		facets: make(map[string][]string),
	}
	for _, f := range c.schema.Fields() {
		raw, ok := doc.Fields[f.Name]
		if !ok || raw == nil {
			continue
		}
		elems, err := elements(f, raw)
		if err != nil {
			return parsedDoc{}, err
		}
		labels := make([]string, 0, len(elems))
		switch {
		case f.IsInteger():
			vals := make([]int64, len(elems))
			for i, e := range elems {
				v, ok := toInt64(e, f.Type.Kind)
				if !ok {
					return parsedDoc{}, typeError(f, e)
				}
				vals[i] = v
				labels = append(labels, strconv.FormatInt(v, 10))
			}
			p.ints[f.Name] = vals
		case f.IsFloat():
			vals := make([]float64, len(elems))
			for i, e := range elems {
				v, ok := toFloat64(e)
				if !ok {
					return parsedDoc{}, typeError(f, e)
				}
				vals[i] = v
				labels = append(labels, strconv.FormatFloat(v, 'f', -1, 64))
			}
			p.floats[f.Name] = vals
		case f.IsBool():
			vals := make([]bool, len(elems))
			for i, e := range elems {
				v, ok := e.(bool)
				if !ok {
					return parsedDoc{}, typeError(f, e)
				}
				vals[i] = v
				labels = append(labels, strconv.FormatBool(v))
			}
			p.bools[f.Name] = vals
		case f.IsString():
			for _, e := range elems {
				v, ok := e.(string)
				if !ok {
					return parsedDoc{}, typeError(f, e)
				}
				labels = append(labels, v)
			}
		}
		if f.IsFacet() {
			p.facets[f.Name] = labels
		}
	}
	return p, nil
}

// elements unpacks raw into its values: the slice elements for array fields,
// or raw itself for single fields.
func elements(f schema.Field, raw any) ([]any, error) {
	rv := reflect.ValueOf(raw)
	isSlice := rv.Kind() == reflect.Slice
	if f.IsArray() != isSlice {
		return nil, typeError(f, raw)
	}
	if !isSlice {
		return []any{raw}, nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

func typeError(f schema.Field, v any) error {
	return apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
		"field %q must be %s, got %T", f.Name, f.Type, v)
}

func toInt64(v any, kind schema.Kind) (int64, bool) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, false
		}
		n = int64(x)
	case uint8:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		n = int64(x)
	case float64:
		if x != math.Trunc(x) || x < math.MinInt64 || x >= math.MaxInt64 {
			return 0, false
		}
		n = int64(x)
	case json.Number:
		parsed, err := x.Int64()
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if kind == schema.KindInt32 && (n < math.MinInt32 || n > math.MaxInt32) {
		return 0, false
	}
	return n, true
}

func toFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

package executor

import (
	"math"
	"net/http"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/search-core/internal/indexer/collection"
	"github.com/Adithya-Monish-Kumar-K/search-core/internal/schema"
	"github.com/Adithya-Monish-Kumar-K/search-core/internal/searcher/filter"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-core/pkg/errors"
)

// predicate reports whether a document satisfies one filter.
type predicate func(docID uint32) bool

// sortKey maps a document to a tiebreak value where larger sorts first.
type sortKey func(docID uint32) int64

// maxSortFields is the number of tiebreak slots a Topster entry carries.
const maxSortFields = 2

type plan struct {
	limit      int
	predicates []predicate
	tiebreaks  [maxSortFields]sortKey
	facetBy    []string
}

func noTiebreak(uint32) int64 { return 0 }

func (e *Executor) compile(q Query) (*plan, error) {
	p := &plan{tiebreaks: [2]sortKey{noTiebreak, noTiebreak}}

	switch {
	case q.Limit < 0:
		return nil, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest,
			"limit must not be negative")
	case q.Limit == 0:
		p.limit = e.cfg.DefaultLimit
	case q.Limit > e.cfg.MaxResults:
		p.limit = e.cfg.MaxResults
	default:
		p.limit = q.Limit
	}

	s := e.coll.Schema()
	for _, expr := range q.Filters {
		f, err := filter.Parse(s, expr)
		if err != nil {
			return nil, err
		}
		field, _ := s.Field(f.FieldName)
		p.predicates = append(p.predicates, compileFilter(e.coll, field, f))
	}

	if len(q.SortBy) > e.cfg.MaxSortFields {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
			"at most %d sort fields are allowed", e.cfg.MaxSortFields)
	}
	for i, raw := range q.SortBy {
		sf, err := schema.ParseSortField(raw)
		if err != nil {
			return nil, err
		}
		field, ok := s.Field(sf.Name)
		if !ok {
			return nil, apperrors.Newf(apperrors.ErrUnknownField, http.StatusNotFound,
				"could not find a sort field named %q in the schema", sf.Name)
		}
		if !field.IsSingleInteger() {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
				"sort field %q must be a single int32 or int64 field", sf.Name)
		}
		p.tiebreaks[i] = compileSort(e.coll, sf)
	}

	for _, name := range q.FacetBy {
		field, ok := s.Field(name)
		if !ok {
			return nil, apperrors.Newf(apperrors.ErrUnknownField, http.StatusNotFound,
				"could not find a facet field named %q in the schema", name)
		}
		if !field.IsFacet() {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
				"field %q is not declared as a facet", name)
		}
		p.facetBy = append(p.facetBy, name)
	}
	return p, nil
}

// compileFilter turns a parsed filter into a predicate. Operand tokens have
// already been validated by filter.Parse, so conversion errors cannot occur.
func compileFilter(coll *collection.Collection, field schema.Field, f filter.Filter) predicate {
	switch {
	case field.IsInteger():
		operands := make([]int64, len(f.Values))
		for i, v := range f.Values {
			operands[i], _ = strconv.ParseInt(v, 10, 64)
		}
		return func(docID uint32) bool {
			for _, dv := range coll.Ints(field.Name, docID) {
				for _, op := range operands {
					if f.Comparator.CompareInt(dv, op) {
						return true
					}
				}
			}
			return false
		}
	case field.IsFloat():
		operands := make([]float64, len(f.Values))
		for i, v := range f.Values {
			operands[i], _ = strconv.ParseFloat(v, 64)
		}
		return func(docID uint32) bool {
			for _, dv := range coll.Floats(field.Name, docID) {
				for _, op := range operands {
					if f.Comparator.CompareFloat(dv, op) {
						return true
					}
				}
			}
			return false
		}
	case field.IsBool():
		operands := make([]bool, len(f.Values))
		for i, v := range f.Values {
			operands[i], _ = strconv.ParseBool(v)
		}
		return func(docID uint32) bool {
			for _, dv := range coll.Bools(field.Name, docID) {
				for _, op := range operands {
					if dv == op {
						return true
					}
				}
			}
			return false
		}
	default:
		codes := make([]uint32, 0, len(f.Values))
		for _, v := range f.Values {
			if code, ok := coll.FacetCode(field.Name, v); ok {
				codes = append(codes, code)
			}
		}
		return func(docID uint32) bool {
			for _, code := range codes {
				if coll.HasFacetCode(field.Name, docID, code) {
					return true
				}
			}
			return false
		}
	}
}

// missingSortValue is the key of a document without a sort value. Present
// values never map to it, so such documents sort last in either direction.
const missingSortValue = math.MinInt64

// compileSort reads the first value of an integer field. ASC is mapped
// through bitwise complement, which reverses the order without overflowing.
// A present value that would land on missingSortValue (MaxInt64 ascending,
// MinInt64 descending) is lifted by one so it still outranks a missing one.
func compileSort(coll *collection.Collection, sf schema.SortField) sortKey {
	return func(docID uint32) int64 {
		vals := coll.Ints(sf.Name, docID)
		if len(vals) == 0 {
			return missingSortValue
		}
		v := vals[0]
		if sf.Order == schema.Asc {
			v = ^v
		}
		if v == missingSortValue {
			v++
		}
		return v
	}
}

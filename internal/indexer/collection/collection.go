// Package collection stores the typed attributes of indexed documents that
// the ranking pass filters, sorts and facets on. Text postings live
// elsewhere; this package only keeps numeric, bool and facet values keyed by
// the document's sequence id.
package collection

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/search-core/internal/indexer/facet"
	"github.com/Adithya-Monish-Kumar-K/search-core/internal/schema"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-core/pkg/errors"
)

// Document is an input record. Fields holds decoded JSON-like values:
// numbers (any Go integer or float type), strings, bools, or slices of them
// for array fields.
type Document struct {
	ID     uint32         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Collection is safe for concurrent use. Index takes the write lock for the
// whole document so a facet field's forward and backward maps are always
// updated together.
type Collection struct {
	name   string
	schema *schema.Schema

	mu     sync.RWMutex
	ints   map[string]map[uint32][]int64
	floats map[string]map[uint32][]float64
	bools  map[string]map[uint32][]bool
	facets map[string]*facet.ValueIndex
	docs   map[uint32]struct{}

	logger *slog.Logger
}

func New(name string, s *schema.Schema) *Collection {
	c := &Collection{
		name:   name,
		schema: s,
		ints:   make(map[string]map[uint32][]int64),
		floats: make(map[string]map[uint32][]float64),
		bools:  make(map[string]map[uint32][]bool),
		facets: make(map[string]*facet.ValueIndex),
		docs:   make(map[uint32]struct{}),
		logger: slog.Default().With("component", "collection", "collection", name),
	}
	for _, f := range s.Fields() {
		switch {
		case f.IsInteger():
			c.ints[f.Name] = make(map[uint32][]int64)
		case f.IsFloat():
			c.floats[f.Name] = make(map[uint32][]float64)
		case f.IsBool():
			c.bools[f.Name] = make(map[uint32][]bool)
		}
		if f.IsFacet() {
			c.facets[f.Name] = facet.NewValueIndex()
		}
	}
	return c
}

func (c *Collection) Name() string { return c.name }

func (c *Collection) Schema() *schema.Schema { return c.schema }

// Index records the attributes of doc. Fields missing from the document are
// left empty; fields not in the schema are ignored. A document id can only
// be indexed once.
func (c *Collection) Index(doc Document) error {
	parsed, err := c.convert(doc)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.docs[doc.ID]; exists {
		return apperrors.Newf(apperrors.ErrDocumentExists, http.StatusConflict,
			"document %d is already indexed in %q", doc.ID, c.name)
	}
	c.docs[doc.ID] = struct{}{}
	for name, v := range parsed.ints {
		c.ints[name][doc.ID] = v
	}
	for name, v := range parsed.floats {
		c.floats[name][doc.ID] = v
	}
	for name, v := range parsed.bools {
		c.bools[name][doc.ID] = v
	}
	for name, v := range parsed.facets {
		c.facets[name].IndexValues(doc.ID, v)
	}
	c.logger.Debug("document attributes indexed", "doc_id", doc.ID, "fields", len(doc.Fields))
	return nil
}

// Count returns the number of indexed documents.
func (c *Collection) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

func (c *Collection) Ints(field string, docID uint32) []int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ints[field][docID]
}

func (c *Collection) Floats(field string, docID uint32) []float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.floats[field][docID]
}

func (c *Collection) Bools(field string, docID uint32) []bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bools[field][docID]
}

// Facet returns the value index of a facet field, or nil. The returned index
// must not be read while documents are being indexed; use ReadFacets for
// that.
func (c *Collection) Facet(field string) *facet.ValueIndex {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.facets[field]
}

// FacetCode looks up the code of value in a facet field.
func (c *Collection) FacetCode(field, value string) (uint32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := c.facets[field]
	if !ok {
		return 0, false
	}
	return idx.Code(value)
}

// HasFacetCode reports whether docID carries code in a facet field.
func (c *Collection) HasFacetCode(field string, docID, code uint32) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := c.facets[field]
	return ok && idx.HasCode(docID, code)
}

// ReadFacets runs fn with the collection read-locked so the facet indexes
// stay consistent for the duration of fn.
func (c *Collection) ReadFacets(fn func(facets map[string]*facet.ValueIndex)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn(c.facets)
}

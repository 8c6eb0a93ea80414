package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestNewIsolatedRegistries(t *testing.T) {
	a := New(nil)
	b := New(nil)
	a.SearchQueriesTotal.WithLabelValues("hit").Inc()

	assert.Contains(t, scrape(t, a), `search_queries_total{result_type="hit"} 1`)
	assert.NotContains(t, scrape(t, b), `search_queries_total{result_type="hit"}`)
}

func TestHandlerServesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.FacetValuesDistinct.WithLabelValues("tags").Set(3)

	assert.Contains(t, scrape(t, m), `facet_values_distinct{field="tags"} 3`)
}

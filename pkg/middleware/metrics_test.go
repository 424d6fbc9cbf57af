package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue reads the current value of httpRequestsTotal for the given labels.
func counterValue(t *testing.T, method, route, status string) float64 {
	t.Helper()
	c, err := httpRequestsTotal.GetMetricWith(prometheus.Labels{
		"method": method,
		"route":  route,
		"status": status,
	})
	require.NoError(t, err)

	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestMetrics_RecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics())
	r.Get("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	before := counterValue(t, "GET", "/products/{id}", "200")

	req := httptest.NewRequest(http.MethodGet, "/products/p-1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, before+1, counterValue(t, "GET", "/products/{id}", "200"))
}

func TestMetrics_RecordsErrorStatus(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics())
	r.Get("/cart", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	before := counterValue(t, "GET", "/cart", "400")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))

	assert.Equal(t, before+1, counterValue(t, "GET", "/cart", "400"))
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/MDC-ScheduleService/pkg/metrics"
)

func TestAuth(t *testing.T) {
	var gotUserID int64
	var gotOK bool

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, gotOK = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid user id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules", nil)
		req.Header.Set("X-User-ID", "42")
		rec := httptest.NewRecorder()

		Auth(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, gotOK)
		assert.Equal(t, int64(42), gotUserID)
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules", nil)
		rec := httptest.NewRecorder()

		Auth(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-numeric header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules", nil)
		req.Header.Set("X-User-ID", "abc")
		rec := httptest.NewRecorder()

		Auth(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequestID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("honors provided id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules", nil)
		req.Header.Set("X-Request-ID", "req-123")
		rec := httptest.NewRecorder()

		RequestID(next).ServeHTTP(rec, req)

		assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	})

	t.Run("generates id when absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules", nil)
		rec := httptest.NewRecorder()

		RequestID(next).ServeHTTP(rec, req)

		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New("test-service")

	r := mux.NewRouter()
	r.Use(MetricsMiddleware(m, "test-service"))
	r.HandleFunc("/api/v1/schedules/{scheduleId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules/42", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	var requests *dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == "http_requests_total" {
			requests = mf
		}
	}
	require.NotNil(t, requests)
	require.Len(t, requests.GetMetric(), 1)

	labels := map[string]string{}
	for _, lp := range requests.GetMetric()[0].GetLabel() {
		labels[lp.GetName()] = lp.GetValue()
	}

	// Путь берётся из шаблона роута, статус ответа из перехватчика
	assert.Equal(t, http.MethodGet, labels["method"])
	assert.Equal(t, "/api/v1/schedules/{scheduleId}", labels["path"])
	assert.Equal(t, "404", labels["status"])
	assert.Equal(t, float64(1), requests.GetMetric()[0].GetCounter().GetValue())
}

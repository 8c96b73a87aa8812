package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics("triage")

	m.Classifications.WithLabelValues("Cardiology", "high").Inc()
	m.Classifications.WithLabelValues("Cardiology", "high").Inc()
	m.ObserveFeedback("save", nil)
	m.ObserveFeedback("save", errors.New("boom"))
	m.ActiveSessions.Set(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Classifications.WithLabelValues("Cardiology", "high")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeedbackOperations.WithLabelValues("save", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeedbackOperations.WithLabelValues("save", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ActiveSessions))
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	first := NewMetrics("triage")
	second := NewMetrics("triage")

	first.SessionsTotal.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(first.SessionsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(second.SessionsTotal))
}

func TestMetrics_MiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics("triage")

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	router.GET("/metrics", m.Handler())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestTotal.WithLabelValues("GET", "/ping", "200")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "triage_http_requests_total")
}

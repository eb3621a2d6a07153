package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"eventhub/internal/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusMetrics_CountsByRoute(t *testing.T) {
	e := echo.New()
	e.Use(PrometheusMetrics)
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})
	e.GET("/denied", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusForbidden, "no")
	})

	before := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/ping", "200"))
	deniedBefore := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/denied", "403"))

	for _, path := range []string{"/ping", "/ping", "/denied"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, before+2, testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/ping", "200")))
	assert.Equal(t, deniedBefore+1, testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/denied", "403")))
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMetricsApp(t *testing.T) (*fiber.App, *PrometheusMiddleware, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(m.Handler())
	return app, m, reg
}

func TestPrometheusMiddleware_CountsByRoutePattern(t *testing.T) {
	app, m, _ := newMetricsApp(t)
	app.Get("/documents/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Post("/documents/:id/downloads", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	for _, id := range []string{"a", "b", "c"} {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id, nil))
		require.NoError(t, err)
	}
	_, err := app.Test(httptest.NewRequest(http.MethodPost, "/documents/a/downloads", nil))
	require.NoError(t, err)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/documents/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues("POST", "/documents/:id/downloads", "204")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.requestDuration))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
}

func TestPrometheusMiddleware_MethodLabelsSurviveLaterRequests(t *testing.T) {
	app, _, reg := newMetricsApp(t)
	app.Get("/documents/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Post("/documents/:id/downloads", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	for _, r := range []struct{ method, path string }{
		{http.MethodPost, "/documents/a/downloads"},
		{http.MethodGet, "/documents/a"},
		{http.MethodGet, "/documents/b"},
	} {
		_, err := app.Test(httptest.NewRequest(r.method, r.path, nil))
		require.NoError(t, err)
	}

	families, err := reg.Gather()
	require.NoError(t, err)

	series := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "http_requests_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			series[labels["method"]+" "+labels["path"]] = metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{
		"POST /documents/:id/downloads": 1,
		"GET /documents/:id":            2,
	}, series)
}

func TestPrometheusMiddleware_ErrorStatus(t *testing.T) {
	app, m, _ := newMetricsApp(t)
	app.Get("/documents/types", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadRequest, "bad orderby")
	})

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents/types", nil))
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/documents/types", "400")))
}

func TestPrometheusMiddleware_UnmatchedPathsShareOneSeries(t *testing.T) {
	app, m, _ := newMetricsApp(t)
	app.Get("/documents", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for _, p := range []string{"/wp-login.php", "/.env", "/admin"} {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, p, nil))
		require.NoError(t, err)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", UnmatchedPath, "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestCount))
}

func TestPrometheusMiddleware_ExcludeMetrics(t *testing.T) {
	app, _, reg := newMetricsApp(t)
	app.Get(MetricsPath, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	_, err := app.Test(httptest.NewRequest(http.MethodGet, MetricsPath, nil))
	require.NoError(t, err)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		switch mf.GetName() {
		case "http_requests_total", "http_request_duration_seconds":
			assert.Empty(t, mf.GetMetric(), mf.GetName())
		}
	}
}

func TestNewPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	_, err = NewPrometheusMiddleware(reg)
	assert.Error(t, err)
}

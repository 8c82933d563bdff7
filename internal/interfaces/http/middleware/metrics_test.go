package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestHTTPMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	r := gin.New()
	r.Use(HTTPMetrics(provider.Meter("test"), zap.NewNop()))
	r.GET("/programs/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	perform(r, httptest.NewRequest(http.MethodGet, "/programs/a", nil))
	perform(r, httptest.NewRequest(http.MethodGet, "/programs/b", nil))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	total := findMetric(rm, "http_server_request_total")
	require.NotNil(t, total)
	sum := total.Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1, "route pattern keeps one series per route")
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)
	route, ok := sum.DataPoints[0].Attributes.Value("http.route")
	require.True(t, ok)
	assert.Equal(t, "/programs/:id", route.AsString())
	status, _ := sum.DataPoints[0].Attributes.Value("http.status_code")
	assert.Equal(t, int64(http.StatusNotFound), status.AsInt64())

	duration := findMetric(rm, "http_server_request_duration_seconds")
	require.NotNil(t, duration)
	hist := duration.Data.(metricdata.Histogram[float64])
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
}

func TestHTTPMetrics_NilMeter(t *testing.T) {
	r := gin.New()
	r.Use(HTTPMetrics(nil, zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, httptest.NewRequest(http.MethodGet, "/ping", nil)).Code)
}

package middleware

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	api "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Metrics struct {
	meter         api.Meter
	apiTimeMetric api.Float64Histogram
}

// SetupMetrics bootstraps the OpenTelemetry pipeline with a Prometheus
// exporter.
func SetupMetrics() (*Metrics, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}
	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	meter := provider.Meter("github.com/meloserve/meloserve")

	apiTimeMetric, err := meter.Float64Histogram("api_call", api.WithDescription("api call durations"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		meter:         meter,
		apiTimeMetric: apiTimeMetric,
	}, nil
}

func (m *Metrics) ObserveAPICall(method string, path string, duration float64) {
	opts := api.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
	)
	m.apiTimeMetric.Record(context.Background(), duration, opts)
}

// MetricsHandler serves the Prometheus scrape endpoint.
func MetricsHandler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

// APIMiddleware records call durations for every non-scrape request.
func APIMiddleware(metrics *Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == "/metrics" {
				return next(c)
			}

			start := time.Now()
			err := next(c)
			metrics.ObserveAPICall(c.Request().Method, c.Path(), time.Since(start).Seconds())
			return err
		}
	}
}

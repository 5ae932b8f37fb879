package otel

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelglobal "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const meterName = "github.com/ankittk/agentsquad"

var (
	providerOnce sync.Once
	registry     *prometheus.Registry
	handler      http.Handler
	providerErr  error
)

// InitMeterProvider initializes the global MeterProvider with a Prometheus exporter
// and returns an http.Handler that serves /metrics. Only the first call has an effect; later
// calls return the same handler.
func InitMeterProvider(ctx context.Context, serviceName string) (http.Handler, error) {
	providerOnce.Do(func() {
		handler, providerErr = initMeterProvider(ctx, serviceName)
	})
	return handler, providerErr
}

func initMeterProvider(ctx context.Context, serviceName string) (http.Handler, error) {
	if serviceName == "" {
		serviceName = "agentsquad"
	}
	reg := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	otelglobal.SetMeterProvider(provider)
	registry = reg
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true}), nil
}

// WriteTextfile writes the current metrics in Prometheus text format to path (node_exporter
// textfile collector layout). Used by short-lived commands that exit before any scrape.
func WriteTextfile(path string) error {
	if registry == nil {
		return errors.New("metrics not initialized")
	}
	return prometheus.WriteToTextfile(path, registry)
}

// Meter returns the global meter (a no-op meter until InitMeterProvider runs).
func Meter() metric.Meter {
	return otelglobal.Meter(meterName)
}

// Common attribute keys for metrics.
var (
	AttrSession = attribute.Key("session")
	AttrAgent   = attribute.Key("agent")
	AttrOutcome = attribute.Key("outcome")
)

package config

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// SetupTelemetry installs a global tracer provider exporting over OTLP/HTTP.
// Without OTEL_EXPORTER_OTLP_ENDPOINT it does nothing and the otel no-op
// provider stays in place.
func SetupTelemetry(ctx context.Context, cfg *Config) (func(), error) {
	if cfg.GetOTLPEndpoint() == "" {
		slog.Debug("Telemetry disabled", "reason", "OTEL_EXPORTER_OTLP_ENDPOINT not set")
		return func() {}, nil
	}
	exp, err := otlptracehttp.New(ctx)
	if err != nil {
		return func() {}, err
	}
	res, rerr := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.GetServiceName()),
		),
	)
	if rerr != nil {
		return func() {}, rerr
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	slog.Info("Telemetry enabled", "service", cfg.GetServiceName())
	return func() { _ = tp.Shutdown(context.Background()) }, nil
}

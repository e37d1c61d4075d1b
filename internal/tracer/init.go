package tracer

import (
	"context"

	"ai-notes-assistant/internal/config"
	"ai-notes-assistant/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const ServiceName = "ai-notes-assistant"

// InitTracer installs the OTLP HTTP exporter (Jaeger-compatible) as the global
// tracer provider. Tracing is off unless OTEL_ENABLED=true; spans then go to the no-op provider.
// The returned function flushes and shuts the provider down.
func InitTracer(cfg config.AppConfig, log logger.ILogger) func(context.Context) error {
	if !cfg.OtelEnabled {
		log.Info("Tracer", "OpenTelemetry tracing is disabled", nil)
		return func(context.Context) error { return nil }
	}

	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(cfg.OtelEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		log.Warn("Tracer", "Failed to create OTLP exporter, tracing disabled", map[string]interface{}{"error": err.Error()})
		return func(context.Context) error { return nil }
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(ServiceName),
		)),
	)

	otel.SetTracerProvider(tp)
	log.Info("Tracer", "OpenTelemetry tracer initialized", map[string]interface{}{"endpoint": cfg.OtelEndpoint})

	return tp.Shutdown
}

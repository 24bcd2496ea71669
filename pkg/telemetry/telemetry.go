// Package telemetry wires OpenTelemetry tracing for simulator runs.
//
// Tracing is off unless OTEL_ENABLED=true. When enabled, Init installs a
// global TracerProvider that exports over OTLP (gRPC by default,
// OTEL_EXPORTER_OTLP_PROTOCOL=http/protobuf for HTTP). Replays, collections,
// comparisons and bench cases open spans through StartSpan; with tracing
// off those spans are no-ops.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// InstrumentationName names the tracer used by simulator spans.
const InstrumentationName = "github.com/mandrykarina/GC"

var (
	globalConfig *Config
	configOnce   sync.Once
)

// ShutdownFunc flushes and stops the TracerProvider.
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(_ context.Context) error {
	return nil
}

// Init initializes tracing from the environment. Only the first call reads
// the environment.
func Init(ctx context.Context) (ShutdownFunc, error) {
	return InitWithConfig(ctx, loadConfig())
}

// InitWithConfig initializes tracing from cfg. A disabled config leaves the
// global no-op provider in place.
func InitWithConfig(ctx context.Context, cfg *Config) (ShutdownFunc, error) {
	if cfg == nil || !cfg.Enabled {
		return noopShutdown, nil
	}

	res, err := buildResource(ctx, cfg)
	if err != nil {
		return noopShutdown, err
	}

	exporter, err := createExporter(ctx, cfg)
	if err != nil {
		return noopShutdown, err
	}

	tp := trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithBatcher(exporter),
		trace.WithSampler(createSampler(cfg)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

// Enabled returns whether OpenTelemetry tracing is enabled.
func Enabled() bool {
	return loadConfig().Enabled
}

// GetConfig returns the current telemetry configuration.
func GetConfig() *Config {
	return loadConfig()
}

func loadConfig() *Config {
	configOnce.Do(func() {
		globalConfig = LoadFromEnv()
	})
	return globalConfig
}

// Tracer returns the simulator tracer from the global provider.
func Tracer() oteltrace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// StartSpan opens a span named name with the given attributes.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, oteltrace.Span) {
	return Tracer().Start(ctx, name, oteltrace.WithAttributes(attrs...))
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span oteltrace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

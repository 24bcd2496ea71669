package telemetry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"google.golang.org/grpc/credentials/insecure"
)

// createExporter creates the OTLP exporter selected by cfg.Protocol.
// Anything other than http defaults to gRPC.
func createExporter(ctx context.Context, cfg *Config) (*otlptrace.Exporter, error) {
	switch strings.ToLower(cfg.Protocol) {
	case "http/protobuf", "http":
		return createHTTPExporter(ctx, cfg)
	default:
		return createGRPCExporter(ctx, cfg)
	}
}

// splitEndpoint strips the scheme from an OTLP endpoint and reports whether
// it asked for plaintext.
func splitEndpoint(endpoint string) (hostPort string, plaintext bool) {
	if rest, ok := strings.CutPrefix(endpoint, "http://"); ok {
		return rest, true
	}
	return strings.TrimPrefix(endpoint, "https://"), false
}

func createGRPCExporter(ctx context.Context, cfg *Config) (*otlptrace.Exporter, error) {
	var opts []otlptracegrpc.Option
	plaintext := cfg.Insecure
	if cfg.Endpoint != "" {
		hostPort, plain := splitEndpoint(cfg.Endpoint)
		plaintext = plaintext || plain
		opts = append(opts, otlptracegrpc.WithEndpoint(hostPort))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
	}
	if plaintext {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
	}
	return otlptracegrpc.New(ctx, opts...)
}

func createHTTPExporter(ctx context.Context, cfg *Config) (*otlptrace.Exporter, error) {
	var opts []otlptracehttp.Option
	plaintext := cfg.Insecure
	if cfg.Endpoint != "" {
		hostPort, plain := splitEndpoint(cfg.Endpoint)
		plaintext = plaintext || plain
		opts = append(opts, otlptracehttp.WithEndpoint(hostPort))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}
	if plaintext {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return otlptracehttp.New(ctx, opts...)
}

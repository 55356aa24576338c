package exporters

import (
	"context"
	"fmt"
	"time"

	"taskforge-controlplane/pkg/config"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
)

const dialTimeout = 10 * time.Second

// New builds the OTLP span exporter for OTEL.PROTOCOL ("grpc" when empty).
// The collector is expected on a plaintext sidecar address.
func New(cfg *config.Config) (*otlptrace.Exporter, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	var client otlptrace.Client
	switch cfg.Otel.Protocol {
	case "", "grpc":
		client = otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(cfg.Otel.Addr),
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithCompressor("gzip"),
		)
	case "http":
		client = otlptracehttp.NewClient(
			otlptracehttp.WithEndpoint(cfg.Otel.Addr),
			otlptracehttp.WithInsecure(),
			otlptracehttp.WithCompression(otlptracehttp.GzipCompression),
		)
	default:
		return nil, fmt.Errorf("unsupported OTEL.PROTOCOL %q", cfg.Otel.Protocol)
	}

	return otlptrace.New(ctx, client)
}

package otelcol

import (
	"context"
	"fmt"

	"taskforge-controlplane/pkg/config"
	"taskforge-controlplane/pkg/otelcol/exporters"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("otelcol", fx.Invoke(Register))

func ProvideTrace(exporter trace.SpanExporter, opts ...trace.TracerProviderOption) *trace.TracerProvider {
	if len(opts) == 0 {
		opts = []trace.TracerProviderOption{trace.WithResource(resource.Default())}
	}

	opts = append(opts, trace.WithBatcher(exporter))

	return trace.NewTracerProvider(opts...)
}

// Register installs the global tracer provider when OTEL.ADDR is set. Without
// it the otel API stays on its no-op provider.
func Register(lc fx.Lifecycle, cfg *config.Config) error {
	if cfg.Otel.Addr == "" {
		return nil
	}

	exporter, err := exporters.New(cfg)
	if err != nil {
		return fmt.Errorf("otlp exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", cfg.AppName),
		attribute.String("service.version", cfg.AppVersion),
		attribute.String("deployment.environment", cfg.AppEnv),
	))
	if err != nil {
		return err
	}

	tp := ProvideTrace(exporter, trace.WithResource(res))
	otel.SetTracerProvider(tp)
	zap.L().Info("OpenTelemetry tracing enabled", zap.String("addr", cfg.Otel.Addr), zap.String("protocol", cfg.Otel.Protocol))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})
	return nil
}

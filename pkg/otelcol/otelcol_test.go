package otelcol

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/fx/fxtest"

	"taskforge-controlplane/pkg/config"
)

func TestRegisterDisabled(t *testing.T) {
	require.NoError(t, Register(fxtest.NewLifecycle(t), &config.Config{}))
}

func TestProvideTrace(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := ProvideTrace(exp)
	_, span := tp.Tracer("test").Start(t.Context(), "op")
	span.End()
	require.NoError(t, tp.ForceFlush(t.Context()))
	require.Len(t, exp.GetSpans(), 1)
}

func TestRegisterUnknownProtocol(t *testing.T) {
	cfg := &config.Config{}
	cfg.Otel.Addr = "localhost:4317"
	cfg.Otel.Protocol = "udp"
	require.ErrorContains(t, Register(fxtest.NewLifecycle(t), cfg), "unsupported")
}

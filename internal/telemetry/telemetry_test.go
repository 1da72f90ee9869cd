package telemetry

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func TestInitTracerProviderWithoutEndpoint(t *testing.T) {
	ctx := context.Background()
	tp, err := InitTracerProvider(ctx, Options{ServiceName: "cart-manager", ServiceVersion: "test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(ctx) })

	ctx, span := otel.Tracer("test").Start(ctx, "op")
	defer span.End()
	assert.True(t, span.SpanContext().IsValid())

	header := http.Header{}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(header))
	assert.NotEmpty(t, header.Get("traceparent"))
}

func TestInitTracerProviderWithEndpoint(t *testing.T) {
	ctx := context.Background()

	// The gRPC exporter connects lazily, so no collector is needed here.
	tp, err := InitTracerProvider(ctx, Options{ServiceName: "cart-manager", Endpoint: "127.0.0.1:4317"})
	require.NoError(t, err)
	assert.NotNil(t, tp)

	shutdownCtx, cancel := context.WithCancel(ctx)
	cancel()
	_ = tp.Shutdown(shutdownCtx)
}

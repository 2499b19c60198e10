package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/evstack/zerog-da/pkg/config"
)

func setupPropagation(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp, sr
}

func TestInjectTraceContext(t *testing.T) {
	tp, _ := setupPropagation(t)

	parentCtx, parent := tp.Tracer("test").Start(context.Background(), "parent")
	defer parent.End()
	parentCtx = metadata.AppendToOutgoingContext(parentCtx, "x-caller", "zgda")

	var sent metadata.MD
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		sent, _ = metadata.FromOutgoingContext(ctx)
		return nil
	}

	err := InjectTraceContext()(parentCtx, "/disperser.Disperser/GetBlobStatus", nil, nil, nil, invoker)
	require.NoError(t, err)

	require.Equal(t, []string{"zgda"}, sent.Get("x-caller"), "existing metadata is kept")
	traceparent := sent.Get("traceparent")
	require.Len(t, traceparent, 1)
	require.Contains(t, traceparent[0], parent.SpanContext().TraceID().String())

	original, _ := metadata.FromOutgoingContext(parentCtx)
	require.Empty(t, original.Get("traceparent"), "caller metadata is not mutated")
}

func TestExtractTraceContext_WithParentTrace(t *testing.T) {
	tp, _ := setupPropagation(t)
	tracer := tp.Tracer("test")

	parentCtx, parent := tracer.Start(context.Background(), "parent")
	parent.End()

	md := metadata.MD{}
	otel.GetTextMapPropagator().Inject(parentCtx, metadataCarrier(md))
	incoming := metadata.NewIncomingContext(context.Background(), md)

	var child trace.SpanContext
	handler := func(ctx context.Context, req any) (any, error) {
		_, span := tracer.Start(ctx, "child")
		child = span.SpanContext()
		span.End()
		return "ok", nil
	}

	resp, err := ExtractTraceContext()(incoming, nil, &grpc.UnaryServerInfo{FullMethod: "/test"}, handler)
	require.NoError(t, err)
	require.Equal(t, "ok", resp)
	require.True(t, child.IsValid())
	require.Equal(t, parent.SpanContext().TraceID(), child.TraceID(), "child should have same trace ID as parent")
}

func TestExtractTraceContext_WithoutParentTrace(t *testing.T) {
	tp, sr := setupPropagation(t)
	tracer := tp.Tracer("test")

	handler := func(ctx context.Context, req any) (any, error) {
		_, span := tracer.Start(ctx, "root")
		span.End()
		return nil, nil
	}

	_, err := ExtractTraceContext()(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/test"}, handler)
	require.NoError(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	require.False(t, spans[0].Parent().IsValid(), "span should be a root span with no parent")
}

func TestDialOptionsFromConfig(t *testing.T) {
	require.Nil(t, DialOptionsFromConfig(nil))
	require.Nil(t, DialOptionsFromConfig(&config.InstrumentationConfig{Tracing: false}))

	cfg := config.DefaultInstrumentationConfig()
	cfg.Tracing = true
	require.Len(t, DialOptionsFromConfig(cfg), 1)
}

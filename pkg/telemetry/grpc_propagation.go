package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/evstack/zerog-da/pkg/config"
)

// metadataCarrier adapts gRPC metadata to a propagation.TextMapCarrier.
type metadataCarrier metadata.MD

func (c metadataCarrier) Get(key string) string {
	vals := metadata.MD(c).Get(key)
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func (c metadataCarrier) Set(key, value string) {
	metadata.MD(c).Set(key, value)
}

func (c metadataCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

// InjectTraceContext returns a unary client interceptor that writes W3C Trace
// Context (traceparent, tracestate) from the call context into the outgoing
// metadata. It does not create spans; propagation only.
func InjectTraceContext() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		md, ok := metadata.FromOutgoingContext(ctx)
		if ok {
			md = md.Copy()
		} else {
			md = metadata.MD{}
		}
		otel.GetTextMapPropagator().Inject(ctx, metadataCarrier(md))
		return invoker(metadata.NewOutgoingContext(ctx, md), method, req, reply, cc, opts...)
	}
}

// ExtractTraceContext returns a unary server interceptor that reads W3C Trace
// Context from the incoming metadata so spans created by the handler are
// children of the caller's trace.
func ExtractTraceContext() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			ctx = otel.GetTextMapPropagator().Extract(ctx, metadataCarrier(md))
		}
		return handler(ctx, req)
	}
}

// DialOptionsFromConfig returns the dial options that propagate trace context
// to the disperser when tracing is enabled, and nil otherwise.
func DialOptionsFromConfig(cfg *config.InstrumentationConfig) []grpc.DialOption {
	if !cfg.IsTracingEnabled() {
		return nil
	}
	return []grpc.DialOption{grpc.WithChainUnaryInterceptor(InjectTraceContext())}
}

var _ propagation.TextMapCarrier = metadataCarrier(nil)

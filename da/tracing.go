package da

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracedDA decorates a BlobStore with OpenTelemetry spans.
type tracedDA struct {
	inner  BlobStore
	tracer trace.Tracer
}

// WithTracing decorates the provided store with tracing spans.
func WithTracing(inner BlobStore) BlobStore {
	return &tracedDA{inner: inner, tracer: otel.Tracer("zerog-da/da")}
}

func (t *tracedDA) Publish(ctx context.Context, blob Blob) (string, error) {
	ctx, span := t.tracer.Start(ctx, "DA.Publish",
		trace.WithAttributes(attribute.Int("blob.size_bytes", len(blob))),
	)
	defer span.End()

	key, err := t.inner.Publish(ctx, blob)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.Int("da.key_length", len(key)))
	return key, nil
}

func (t *tracedDA) Verify(ctx context.Context, key string) (VerificationStatus, error) {
	ctx, span := t.tracer.Start(ctx, "DA.Verify",
		trace.WithAttributes(attribute.Int("da.key_length", len(key))),
	)
	defer span.End()

	status, err := t.inner.Verify(ctx, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return status, err
	}
	span.SetAttributes(attribute.String("da.status", status.String()))
	return status, nil
}

func (t *tracedDA) Retrieve(ctx context.Context, key string) (Blob, error) {
	ctx, span := t.tracer.Start(ctx, "DA.Retrieve",
		trace.WithAttributes(attribute.Int("da.key_length", len(key))),
	)
	defer span.End()

	blob, err := t.inner.Retrieve(ctx, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("blob.size_bytes", len(blob)))
	return blob, nil
}

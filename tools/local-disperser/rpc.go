package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/evstack/zerog-da/da/zerog/disperser"
	"github.com/evstack/zerog-da/pkg/telemetry"
)

// newServer returns a gRPC server exposing disp as the disperser service.
func newServer(logger zerolog.Logger, disp disperser.DisperserServer) *grpc.Server {
	srv := disperser.NewServer(grpc.ChainUnaryInterceptor(
		telemetry.ExtractTraceContext(),
		logRequests(logger),
	))
	disperser.RegisterDisperserServer(srv, disp)
	return srv
}

// logRequests logs every call with its outcome and latency.
func logRequests(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		ev := logger.Debug()
		if err != nil {
			ev = logger.Warn().Err(err)
		}
		ev.Str("method", info.FullMethod).
			Str("code", status.Code(err).String()).
			Dur("took", time.Since(start)).
			Msg("handled request")
		return resp, err
	}
}

package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/evstack/zerog-da/da"
	"github.com/evstack/zerog-da/da/compression"
	"github.com/evstack/zerog-da/da/zerog"
	"github.com/evstack/zerog-da/pkg/config"
	"github.com/evstack/zerog-da/pkg/telemetry"
)

// BlobStoreFactory opens the store a command talks to. The returned func
// releases it.
type BlobStoreFactory func(ctx context.Context, cfg config.Config, logger zerolog.Logger) (da.BlobStore, func() error, error)

// OpenBlobStore builds the disperser client described by cfg and layers
// compression and tracing on top of it when they are enabled.
func OpenBlobStore(_ context.Context, cfg config.Config, logger zerolog.Logger) (da.BlobStore, func() error, error) {
	opts := []zerog.Option{zerog.WithDialOptions(telemetry.DialOptionsFromConfig(cfg.Instrumentation)...)}
	if cfg.Instrumentation.IsPrometheusEnabled() {
		opts = append(opts, zerog.WithMetrics(zerog.PrometheusMetrics(cfg.Instrumentation.Namespace)))
	}

	client, err := zerog.NewClient(cfg.DA.ClientConfig(), logger, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create disperser client: %w", err)
	}

	var store da.BlobStore = client
	if cfg.DA.Compression.Enabled {
		compressed, err := compression.NewCompressibleDA(store, cfg.DA.Compression)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		store = compressed
	}

	if cfg.Instrumentation.IsTracingEnabled() {
		store = da.WithTracing(store)
	}

	return store, client.Close, nil
}

// runWithBlobStore loads the configuration, starts the instrumentation it
// asks for, opens the store and hands it to fn. Everything is torn down when
// fn returns.
func runWithBlobStore(
	cmd *cobra.Command,
	open BlobStoreFactory,
	fn func(ctx context.Context, store da.BlobStore, cfg config.Config, logger zerolog.Logger) error,
) error {
	cfg, err := ParseConfig(cmd)
	if err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}

	logger := SetupLogger(cfg.Log)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Instrumentation, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("failed to flush traces")
		}
	}()

	metricsSrv, err := StartMetricsServer(cfg.Instrumentation, logger)
	if err != nil {
		return err
	}
	if metricsSrv != nil {
		defer func() {
			_ = metricsSrv.Shutdown(context.Background())
		}()
	}

	if open == nil {
		open = OpenBlobStore
	}
	store, closeStore, err := open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn().Err(err).Msg("failed to close blob store")
		}
	}()

	return fn(ctx, store, cfg, logger)
}

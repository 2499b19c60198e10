package cmd

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/evstack/zerog-da/pkg/config"
)

const readHeaderTimeout = 10 * time.Second

// StartMetricsServer serves the default Prometheus registry under /metrics.
// It returns nil when Prometheus is disabled. The listener is bound before
// returning so address errors surface to the caller; Addr holds the bound
// address.
func StartMetricsServer(cfg *config.InstrumentationConfig, logger zerolog.Logger) (*http.Server, error) {
	if !cfg.IsPrometheusEnabled() {
		return nil, nil
	}

	ln, err := net.Listen("tcp", cfg.PrometheusListenAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.PrometheusListenAddr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer, promhttp.HandlerFor(
			prometheus.DefaultGatherer,
			promhttp.HandlerOpts{MaxRequestsInFlight: cfg.MaxOpenConnections},
		),
	))

	srv := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Prometheus HTTP server Serve")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Msg("Started Prometheus HTTP server")
	return srv, nil
}

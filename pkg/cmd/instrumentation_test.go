package cmd

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evstack/zerog-da/pkg/config"
)

func TestStartMetricsServer_Disabled(t *testing.T) {
	srv, err := StartMetricsServer(config.DefaultInstrumentationConfig(), zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, srv)
}

func TestStartMetricsServer(t *testing.T) {
	cfg := config.DefaultInstrumentationConfig()
	cfg.Prometheus = true
	cfg.PrometheusListenAddr = "127.0.0.1:0"

	srv, err := StartMetricsServer(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, srv)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	resp, err := http.Get("http://" + srv.Addr + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestStartMetricsServer_BadAddress(t *testing.T) {
	cfg := config.DefaultInstrumentationConfig()
	cfg.Prometheus = true
	cfg.PrometheusListenAddr = "not-an-address"

	_, err := StartMetricsServer(cfg, zerolog.Nop())
	require.Error(t, err)
}

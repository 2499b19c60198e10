package zerog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.Second, cfg.DisperserRetryDelay)
	assert.Equal(t, time.Second, cfg.StatusRetryDelay)
	assert.EqualValues(t, 1, cfg.MaxConcurrentSubmissions)
	assert.Equal(t, 1, cfg.Connections)
	assert.Zero(t, cfg.StatusQueryTimeout, "status queries have no deadline by default")
}

func TestConfig_Validate(t *testing.T) {
	cases := map[string]func(*Config){
		"empty url":                func(c *Config) { c.URL = "" },
		"negative disperser delay": func(c *Config) { c.DisperserRetryDelay = -time.Second },
		"negative status delay":    func(c *Config) { c.StatusRetryDelay = -time.Second },
		"zero submissions":         func(c *Config) { c.MaxConcurrentSubmissions = 0 },
		"zero connections":         func(c *Config) { c.Connections = 0 },
		"negative request timeout": func(c *Config) { c.RequestTimeout = -1 },
		"negative status timeout":  func(c *Config) { c.StatusQueryTimeout = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}

	cfg := DefaultConfig()
	cfg.URL = ""
	cfg.Connections = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "url")
	assert.Contains(t, err.Error(), "connections")
}

package config

import (
	"os"
	"path/filepath"

	"github.com/evstack/zerog-da/da/compression"
	"github.com/evstack/zerog-da/da/zerog"
)

const (
	// ConfigFileName is the base name of the zgda configuration file without extension.
	ConfigFileName = "zgda"
	// ConfigExtension is the file extension for the configuration file without the leading dot.
	ConfigExtension = "yaml"
	// ConfigName is the filename for the zgda configuration file.
	ConfigName = ConfigFileName + "." + ConfigExtension
	// AppConfigDir is the directory name for the app configuration.
	AppConfigDir = "config"
	// EnvPrefix prefixes the environment variable of every flag.
	EnvPrefix = "ZGDA"
)

// DefaultRootDir returns the default root directory for zgda
var DefaultRootDir = DefaultRootDirWithName(ConfigFileName)

// DefaultRootDirWithName returns the default root directory for an application,
// based on the app name and the user's home directory
func DefaultRootDirWithName(appName string) string {
	if appName == "" {
		appName = ConfigFileName
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, "."+appName)
}

// DefaultConfig keeps default values of Config
func DefaultConfig() Config {
	client := zerog.DefaultConfig()

	comp := compression.DefaultConfig()
	// compressed blobs are only readable by clients that decompress them
	comp.Enabled = false

	return Config{
		RootDir: DefaultRootDir,
		DA: DAConfig{
			URL:                      client.URL,
			DisperserRetryDelay:      client.DisperserRetryDelay,
			StatusRetryDelay:         client.StatusRetryDelay,
			MaxConcurrentSubmissions: client.MaxConcurrentSubmissions,
			Connections:              client.Connections,
			RequestTimeout:           client.RequestTimeout,
			StatusQueryTimeout:       client.StatusQueryTimeout,
			MaxBlobSize:              client.MaxBlobSize,
			Compression:              comp,
		},
		Instrumentation: DefaultInstrumentationConfig(),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Trace:  false,
		},
	}
}

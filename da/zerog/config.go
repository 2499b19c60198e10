package zerog

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultURL is the endpoint of a disperser running next to the client.
	DefaultURL = "http://localhost:51001"
	// DefaultDisperserRetryDelay is the fixed delay between submission attempts.
	DefaultDisperserRetryDelay = time.Second
	// DefaultStatusRetryDelay is the fixed delay between status polls.
	DefaultStatusRetryDelay = time.Second
)

// Config configures a Client. It is read once at construction.
type Config struct {
	// URL of the disperser: host:port, http://host:port (plaintext) or
	// https://host:port (TLS). gRPC targets such as passthrough:///name are
	// used verbatim over plaintext.
	URL string

	// DisperserRetryDelay is the fixed delay before a failed submission is retried.
	DisperserRetryDelay time.Duration
	// StatusRetryDelay is the fixed delay between two status polls.
	StatusRetryDelay time.Duration

	// MaxConcurrentSubmissions bounds the submissions admitted at once.
	MaxConcurrentSubmissions int64
	// Connections is the number of transport channels. Each one carries at
	// most one RPC at a time, so this bounds RPC concurrency.
	Connections int

	// RequestTimeout bounds a single DisperseBlob or RetrieveBlob RPC. Zero
	// means no deadline beyond the caller's context.
	RequestTimeout time.Duration
	// StatusQueryTimeout bounds a single GetBlobStatus RPC. Zero means no
	// deadline beyond the caller's context.
	StatusQueryTimeout time.Duration

	// MaxBlobSize rejects larger blobs locally. Zero disables the check.
	MaxBlobSize uint64
}

// DefaultConfig returns a Config with a single connection and a single
// submission slot.
func DefaultConfig() Config {
	return Config{
		URL:                      DefaultURL,
		DisperserRetryDelay:      DefaultDisperserRetryDelay,
		StatusRetryDelay:         DefaultStatusRetryDelay,
		MaxConcurrentSubmissions: 1,
		Connections:              1,
	}
}

// Validate checks the configuration for values the client cannot work with.
func (c Config) Validate() error {
	var errs []error
	if c.URL == "" {
		errs = append(errs, errors.New("disperser url is required"))
	}
	if c.DisperserRetryDelay < 0 {
		errs = append(errs, fmt.Errorf("disperser retry delay must not be negative, got %s", c.DisperserRetryDelay))
	}
	if c.StatusRetryDelay < 0 {
		errs = append(errs, fmt.Errorf("status retry delay must not be negative, got %s", c.StatusRetryDelay))
	}
	if c.MaxConcurrentSubmissions < 1 {
		errs = append(errs, fmt.Errorf("max concurrent submissions must be at least 1, got %d", c.MaxConcurrentSubmissions))
	}
	if c.Connections < 1 {
		errs = append(errs, fmt.Errorf("connections must be at least 1, got %d", c.Connections))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout))
	}
	if c.StatusQueryTimeout < 0 {
		errs = append(errs, fmt.Errorf("status query timeout must not be negative, got %s", c.StatusQueryTimeout))
	}
	return errors.Join(errs...)
}

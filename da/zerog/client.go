// Package zerog implements the da.DA interface on top of a 0G disperser.
//
// Publish admits the blob through a bounded gate, submits it until the
// disperser accepts it, polls its status until it is confirmed and returns a
// self-contained reference key. Verify decodes such a key and classifies the
// blob's status with a single query, so it can run in any process at any
// later time.
package zerog

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/evstack/zerog-da/da"
	"github.com/evstack/zerog-da/da/zerog/disperser"
)

var _ da.BlobStore = (*Client)(nil)

// Client publishes and verifies blobs against a 0G disperser.
type Client struct {
	cfg     Config
	logger  zerolog.Logger
	metrics *Metrics

	pool      *connPool
	submitter *submitter
	poller    *poller
}

type options struct {
	metrics  *Metrics
	dialOpts []grpc.DialOption
}

// Option configures optional Client dependencies.
type Option func(*options)

// WithMetrics records client metrics in m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithDialOptions appends gRPC dial options to every connection.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(o *options) { o.dialOpts = append(o.dialOpts, opts...) }
}

// NewClient validates cfg and prepares the connections. It does not contact
// the disperser; an unreachable endpoint shows up as retried RPC failures.
func NewClient(cfg Config, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid 0g da config: %w", err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	pool, err := dialPool(cfg.URL, cfg.Connections, o.dialOpts)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("url", cfg.URL).
		Int("connections", cfg.Connections).
		Int64("max_concurrent_submissions", cfg.MaxConcurrentSubmissions).
		Msg("0g da client created")
	return newClient(cfg, logger, pool, o.metrics), nil
}

func newClient(cfg Config, logger zerolog.Logger, pool *connPool, m *Metrics) *Client {
	if m == nil {
		m = NopMetrics()
	}
	logger = logger.With().Str("component", "zerog_da").Logger()

	return &Client{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		pool:    pool,
		submitter: &submitter{
			gate:           newAdmissionGate(cfg.MaxConcurrentSubmissions),
			pool:           pool,
			logger:         logger.With().Str("stage", "submit").Logger(),
			metrics:        m,
			retryDelay:     cfg.DisperserRetryDelay,
			requestTimeout: cfg.RequestTimeout,
			maxBlobSize:    cfg.MaxBlobSize,
		},
		poller: &poller{
			pool:         pool,
			logger:       logger.With().Str("stage", "confirm").Logger(),
			metrics:      m,
			retryDelay:   cfg.StatusRetryDelay,
			queryTimeout: cfg.StatusQueryTimeout,
		},
	}
}

// Publish submits blob, waits until the disperser confirms it and returns the
// encoded reference key. Transport failures are retried until ctx ends.
func (c *Client) Publish(ctx context.Context, blob da.Blob) (string, error) {
	start := time.Now()

	requestID, err := c.submitter.submit(ctx, blob)
	if err != nil {
		return "", err
	}

	reply, err := c.poller.awaitConfirmation(ctx, requestID)
	if err != nil {
		return "", err
	}

	header := reply.GetInfo().GetBlobHeader()
	if header == nil {
		return "", fmt.Errorf("%w: confirmed status reply carries no blob header", da.ErrProtocolInvariant)
	}

	key, err := ReferenceKey{
		RequestID: requestID,
		DataRoot:  header.DataRoot,
		Epoch:     header.Epoch,
		QuorumID:  header.QuorumID,
	}.Encode()
	if err != nil {
		return "", err
	}

	elapsed := time.Since(start)
	c.metrics.PublishDuration.Observe(elapsed.Seconds())
	c.logger.Info().
		Int("size", len(blob)).
		Hex("request_id", requestID).
		Uint32("epoch", header.Epoch).
		Uint32("quorum_id", header.QuorumID).
		Dur("elapsed", elapsed).
		Msg("blob published")
	return key, nil
}

// Retrieve fetches the blob behind key with a single RetrieveBlob call.
func (c *Client) Retrieve(ctx context.Context, key string) (da.Blob, error) {
	ref, err := DecodeReferenceKey(key)
	if err != nil {
		return nil, err
	}

	h, err := c.pool.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer c.pool.release(h)

	if c.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}

	reply, err := h.RetrieveBlob(ctx, &disperser.RetrieveBlobRequest{
		DataRoot: ref.DataRoot,
		Epoch:    ref.Epoch,
		QuorumID: ref.QuorumID,
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %v", da.ErrBlobNotFound, err)
		}
		return nil, fmt.Errorf("failed to retrieve blob: %w", err)
	}
	if reply == nil || len(reply.Data) == 0 {
		return nil, da.ErrBlobNotFound
	}
	return reply.Data, nil
}

// Close closes the disperser connections. Pending and later calls fail with
// da.ErrClientClosed.
func (c *Client) Close() error {
	return c.pool.Close()
}

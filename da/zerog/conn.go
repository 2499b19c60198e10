package zerog

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/evstack/zerog-da/da"
	"github.com/evstack/zerog-da/da/zerog/disperser"
)

// connPool hands out exclusive access to disperser connections. A handle
// carries at most one RPC at a time; callers wait for a free one.
type connPool struct {
	conns   []*grpc.ClientConn
	handles chan disperser.DisperserClient

	closeOnce sync.Once
	closed    chan struct{}
}

// dialPool creates n lazily connecting channels to rawURL. It never blocks on
// the network: failures to reach the disperser surface on the first RPC.
func dialPool(rawURL string, n int, opts []grpc.DialOption) (*connPool, error) {
	target, creds, err := parseTarget(rawURL)
	if err != nil {
		return nil, err
	}

	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(creds)}, opts...)
	conns := make([]*grpc.ClientConn, 0, n)
	clients := make([]disperser.DisperserClient, 0, n)
	for i := 0; i < n; i++ {
		conn, err := grpc.NewClient(target, dialOpts...)
		if err != nil {
			for _, c := range conns {
				_ = c.Close()
			}
			return nil, fmt.Errorf("failed to create disperser connection to %s: %w", target, err)
		}
		conns = append(conns, conn)
		clients = append(clients, disperser.NewDisperserClient(conn))
	}

	p := newConnPool(clients)
	p.conns = conns
	return p, nil
}

func newConnPool(clients []disperser.DisperserClient) *connPool {
	p := &connPool{
		handles: make(chan disperser.DisperserClient, len(clients)),
		closed:  make(chan struct{}),
	}
	for _, c := range clients {
		p.handles <- c
	}
	return p
}

// acquire waits for a free handle. It fails with ctx.Err() when the caller
// gives up and with da.ErrClientClosed once the pool is closed.
func (p *connPool) acquire(ctx context.Context) (disperser.DisperserClient, error) {
	select {
	case <-p.closed:
		return nil, da.ErrClientClosed
	default:
	}

	select {
	case h := <-p.handles:
		return h, nil
	case <-p.closed:
		return nil, da.ErrClientClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *connPool) release(h disperser.DisperserClient) {
	p.handles <- h
}

// Close closes every underlying connection. Waiting callers are released with
// da.ErrClientClosed; RPCs already in flight fail with a transport error.
func (p *connPool) Close() error {
	var errs []error
	p.closeOnce.Do(func() {
		close(p.closed)
		for _, c := range p.conns {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}

// parseTarget maps the configured URL to a gRPC target and transport
// credentials.
func parseTarget(rawURL string) (string, credentials.TransportCredentials, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", nil, errors.New("empty disperser url")
	}

	if !strings.Contains(rawURL, "://") || strings.Contains(rawURL, ":///") {
		return rawURL, insecure.NewCredentials(), nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", nil, fmt.Errorf("invalid disperser url %q: %w", rawURL, err)
	}
	if u.Host == "" {
		return "", nil, fmt.Errorf("invalid disperser url %q: missing host", rawURL)
	}

	switch u.Scheme {
	case "http", "grpc":
		return u.Host, insecure.NewCredentials(), nil
	case "https", "grpcs":
		return u.Host, credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12}), nil
	default:
		return "", nil, fmt.Errorf("invalid disperser url %q: unsupported scheme %q", rawURL, u.Scheme)
	}
}

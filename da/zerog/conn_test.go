package zerog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evstack/zerog-da/da"
	"github.com/evstack/zerog-da/da/zerog/disperser"
)

func TestParseTarget(t *testing.T) {
	cases := []struct {
		url        string
		target     string
		secure     bool
		shouldFail bool
	}{
		{url: "localhost:51001", target: "localhost:51001"},
		{url: " 10.0.0.1:51001 ", target: "10.0.0.1:51001"},
		{url: "http://localhost:51001", target: "localhost:51001"},
		{url: "grpc://disperser:51001", target: "disperser:51001"},
		{url: "https://disperser.0g.ai:443", target: "disperser.0g.ai:443", secure: true},
		{url: "https://disperser.0g.ai", target: "disperser.0g.ai", secure: true},
		{url: "passthrough:///bufnet", target: "passthrough:///bufnet"},
		{url: "dns:///disperser:51001", target: "dns:///disperser:51001"},
		{url: "", shouldFail: true},
		{url: "http://", shouldFail: true},
		{url: "ftp://disperser:21", shouldFail: true},
	}

	for _, tc := range cases {
		t.Run(tc.url, func(t *testing.T) {
			target, creds, err := parseTarget(tc.url)
			if tc.shouldFail {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.target, target)
			if tc.secure {
				assert.Equal(t, "tls", creds.Info().SecurityProtocol)
			} else {
				assert.Equal(t, "insecure", creds.Info().SecurityProtocol)
			}
		})
	}
}

func TestConnPool_ExclusiveAccess(t *testing.T) {
	p := newConnPool([]disperser.DisperserClient{&fakeDisperser{}})
	ctx := context.Background()

	h, err := p.acquire(ctx)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = p.acquire(waitCtx)
	require.ErrorIs(t, err, context.DeadlineExceeded, "second caller waits while the handle is held")

	p.release(h)
	h2, err := p.acquire(ctx)
	require.NoError(t, err)
	assert.Same(t, h, h2)
	p.release(h2)
}

func TestConnPool_Close(t *testing.T) {
	p := newConnPool([]disperser.DisperserClient{&fakeDisperser{}})

	h, err := p.acquire(context.Background())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := p.acquire(context.Background())
		done <- err
	}()

	require.NoError(t, p.Close())
	require.NoError(t, p.Close(), "close is idempotent")
	select {
	case err := <-done:
		require.ErrorIs(t, err, da.ErrClientClosed)
	case <-time.After(time.Second):
		t.Fatal("waiter not released")
	}

	p.release(h)
	_, err = p.acquire(context.Background())
	require.ErrorIs(t, err, da.ErrClientClosed)
}

func TestDialPool(t *testing.T) {
	p, err := dialPool("http://127.0.0.1:1", 3, nil)
	require.NoError(t, err)
	assert.Len(t, p.conns, 3)
	assert.Len(t, p.handles, 3)
	require.NoError(t, p.Close())

	_, err = dialPool("gopher://x", 1, nil)
	require.Error(t, err)
}

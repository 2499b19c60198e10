package zerog_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"github.com/evstack/zerog-da/da"
	"github.com/evstack/zerog-da/da/zerog"
	"github.com/evstack/zerog-da/da/zerog/disperser"
	"github.com/evstack/zerog-da/test/testdisperser"
)

const bufSize = 1 << 20

// startDisperser serves srv over an in-memory listener and returns a client
// configured to reach it.
func startDisperser(t *testing.T, srv disperser.DisperserServer, mutate func(*zerog.Config)) *zerog.Client {
	t.Helper()

	lis := bufconn.Listen(bufSize)
	gs := disperser.NewServer()
	disperser.RegisterDisperserServer(gs, srv)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	cfg := zerog.DefaultConfig()
	cfg.URL = "passthrough:///bufnet"
	cfg.DisperserRetryDelay = time.Millisecond
	cfg.StatusRetryDelay = time.Millisecond
	if mutate != nil {
		mutate(&cfg)
	}

	c, err := zerog.NewClient(cfg, zerolog.Nop(), zerog.WithDialOptions(
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestIntegration_PublishVerifyRetrieve(t *testing.T) {
	srv := testdisperser.New(testdisperser.WithConfirmAfter(3), testdisperser.WithEpoch(12), testdisperser.WithQuorumID(1))
	srv.FailNextDisperse(2)
	c := startDisperser(t, srv, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	payload := []byte("integration payload")
	key, err := c.Publish(ctx, payload)
	require.NoError(t, err)
	assert.EqualValues(t, 3, srv.DisperseCalls())
	assert.EqualValues(t, 4, srv.StatusCalls())

	ref, err := zerog.DecodeReferenceKey(key)
	require.NoError(t, err)
	assert.EqualValues(t, 12, ref.Epoch)
	assert.EqualValues(t, 1, ref.QuorumID)
	assert.Len(t, ref.DataRoot, 32)

	status, err := c.Verify(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, da.StatusVerified, status)

	blob, err := c.Retrieve(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, payload, blob)
}

func TestIntegration_VerifyFinalizedAndUnknown(t *testing.T) {
	srv := testdisperser.New(testdisperser.WithConfirmAfter(1), testdisperser.WithFinalizeAfter(1))
	c := startDisperser(t, srv, nil)
	ctx := context.Background()

	key, err := c.Publish(ctx, []byte("blob"))
	require.NoError(t, err)

	// confirmed during publish, finalized on the next query
	status, err := c.Verify(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, da.StatusVerified, status)

	unknown, err := zerog.ReferenceKey{RequestID: []byte("nope"), DataRoot: []byte{1}}.Encode()
	require.NoError(t, err)
	status, err = c.Verify(ctx, unknown)
	require.NoError(t, err)
	assert.Equal(t, da.StatusRejected, status, "NotFound maps to rejected")
}

func TestIntegration_Rejection(t *testing.T) {
	srv := testdisperser.New()
	srv.SetRejectDisperse(true)
	c := startDisperser(t, srv, nil)

	_, err := c.Publish(context.Background(), []byte("blob"))
	require.ErrorIs(t, err, da.ErrSubmissionRejected)
	assert.EqualValues(t, 1, srv.DisperseCalls())
}

func TestIntegration_MissingHeader(t *testing.T) {
	srv := testdisperser.New()
	srv.SetOmitHeader(true)
	c := startDisperser(t, srv, nil)

	_, err := c.Publish(context.Background(), []byte("blob"))
	require.ErrorIs(t, err, da.ErrProtocolInvariant)
}

func TestIntegration_UnreachableDisperserHonoursDeadline(t *testing.T) {
	srv := testdisperser.New()
	srv.FailNextDisperse(1 << 40)
	c := startDisperser(t, srv, func(cfg *zerog.Config) { cfg.DisperserRetryDelay = 5 * time.Millisecond })

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := c.Publish(ctx, []byte("blob"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, srv.DisperseCalls(), int64(1), "transport failures are retried")
}

func TestIntegration_ConnectionPool(t *testing.T) {
	srv := testdisperser.New(testdisperser.WithConfirmAfter(2))
	c := startDisperser(t, srv, func(cfg *zerog.Config) {
		cfg.Connections = 4
		cfg.MaxConcurrentSubmissions = 4
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	keys := make(chan string, 8)
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func(i int) {
			key, err := c.Publish(ctx, []byte{byte(i), 1, 2, 3})
			keys <- key
			errs <- err
		}(i)
	}
	seen := make(map[string]struct{})
	for i := 0; i < 8; i++ {
		require.NoError(t, <-errs)
		seen[<-keys] = struct{}{}
	}
	assert.Len(t, seen, 8)
}

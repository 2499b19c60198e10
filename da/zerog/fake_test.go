package zerog

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"github.com/evstack/zerog-da/da/zerog/disperser"
)

// fakeDisperser provides function hooks for a disperser backend and counts calls.
type fakeDisperser struct {
	disperseFn func(ctx context.Context, in *disperser.DisperseBlobRequest) (*disperser.DisperseBlobReply, error)
	statusFn   func(ctx context.Context, in *disperser.BlobStatusRequest) (*disperser.BlobStatusReply, error)
	retrieveFn func(ctx context.Context, in *disperser.RetrieveBlobRequest) (*disperser.RetrieveBlobReply, error)

	disperseCalls atomic.Int64
	statusCalls   atomic.Int64
	retrieveCalls atomic.Int64
}

var _ disperser.DisperserClient = (*fakeDisperser)(nil)

func (f *fakeDisperser) DisperseBlob(ctx context.Context, in *disperser.DisperseBlobRequest, _ ...grpc.CallOption) (*disperser.DisperseBlobReply, error) {
	f.disperseCalls.Add(1)
	if f.disperseFn != nil {
		return f.disperseFn(ctx, in)
	}
	return &disperser.DisperseBlobReply{Result: disperser.BlobStatusProcessing, RequestID: []byte("req")}, nil
}

func (f *fakeDisperser) GetBlobStatus(ctx context.Context, in *disperser.BlobStatusRequest, _ ...grpc.CallOption) (*disperser.BlobStatusReply, error) {
	f.statusCalls.Add(1)
	if f.statusFn != nil {
		return f.statusFn(ctx, in)
	}
	return confirmedReply(disperser.BlobStatusConfirmed), nil
}

func (f *fakeDisperser) RetrieveBlob(ctx context.Context, in *disperser.RetrieveBlobRequest, _ ...grpc.CallOption) (*disperser.RetrieveBlobReply, error) {
	f.retrieveCalls.Add(1)
	if f.retrieveFn != nil {
		return f.retrieveFn(ctx, in)
	}
	return &disperser.RetrieveBlobReply{}, nil
}

var testHeader = disperser.BlobHeader{DataRoot: []byte{0xde, 0xad, 0xbe, 0xef}, Epoch: 7, QuorumID: 2}

func confirmedReply(s disperser.BlobStatus) *disperser.BlobStatusReply {
	header := testHeader
	return &disperser.BlobStatusReply{
		Status: s,
		Info: &disperser.BlobInfo{
			BlobHeader:            &header,
			BlobVerificationProof: &disperser.BlobVerificationProof{BatchID: 1, BlobIndex: 3},
		},
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.URL = "passthrough:///test"
	cfg.DisperserRetryDelay = 0
	cfg.StatusRetryDelay = 0
	return cfg
}

// newTestClient builds a client whose connection pool holds one handle per backend.
func newTestClient(t *testing.T, cfg Config, backends ...disperser.DisperserClient) *Client {
	t.Helper()
	c := newClient(cfg, zerolog.Nop(), newConnPool(backends), nil)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

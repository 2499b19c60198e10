package zerog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/evstack/zerog-da/da"
	"github.com/evstack/zerog-da/da/zerog/disperser"
)

func encodedTestKey(t *testing.T) string {
	t.Helper()
	s, err := ReferenceKey{RequestID: []byte("req"), DataRoot: testHeader.DataRoot, Epoch: testHeader.Epoch, QuorumID: testHeader.QuorumID}.Encode()
	require.NoError(t, err)
	return s
}

func TestClassify(t *testing.T) {
	cases := []struct {
		status disperser.BlobStatus
		want   da.VerificationStatus
	}{
		{disperser.BlobStatusConfirmed, da.StatusVerified},
		{disperser.BlobStatusFinalized, da.StatusVerified},
		{disperser.BlobStatusProcessing, da.StatusPending},
		{disperser.BlobStatusUnknown, da.StatusRejected},
		{disperser.BlobStatusFailed, da.StatusRejected},
		{disperser.BlobStatusInsufficientSignatures, da.StatusRejected},
		{disperser.BlobStatus(42), da.StatusRejected},
		{disperser.BlobStatus(-1), da.StatusRejected},
	}
	for _, tc := range cases {
		t.Run(tc.status.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, classify(tc.status))
		})
	}
}

func TestVerify_ClassifiesSingleQuery(t *testing.T) {
	cases := []struct {
		name  string
		reply *disperser.BlobStatusReply
		err   error
		want  da.VerificationStatus
	}{
		{"confirmed", confirmedReply(disperser.BlobStatusConfirmed), nil, da.StatusVerified},
		{"finalized", confirmedReply(disperser.BlobStatusFinalized), nil, da.StatusVerified},
		{"processing", &disperser.BlobStatusReply{Status: disperser.BlobStatusProcessing}, nil, da.StatusPending},
		{"failed", &disperser.BlobStatusReply{Status: disperser.BlobStatusFailed}, nil, da.StatusRejected},
		{"unrecognised", &disperser.BlobStatusReply{Status: 17}, nil, da.StatusRejected},
		{"absent status", &disperser.BlobStatusReply{}, nil, da.StatusRejected},
		{"empty reply", nil, nil, da.StatusRejected},
		{"transport error", nil, status.Error(codes.Unavailable, "down"), da.StatusRejected},
		{"not found", nil, status.Error(codes.NotFound, "unknown request"), da.StatusRejected},
		{"plain error", nil, errors.New("boom"), da.StatusRejected},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeDisperser{
				statusFn: func(_ context.Context, in *disperser.BlobStatusRequest) (*disperser.BlobStatusReply, error) {
					assert.Equal(t, []byte("req"), in.RequestID)
					return tc.reply, tc.err
				},
			}
			c := newTestClient(t, testConfig(), fake)

			got, err := c.Verify(context.Background(), encodedTestKey(t))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.EqualValues(t, 1, fake.statusCalls.Load(), "verify must not retry")
		})
	}
}

func TestVerify_Idempotent(t *testing.T) {
	for _, s := range []disperser.BlobStatus{disperser.BlobStatusConfirmed, disperser.BlobStatusProcessing, disperser.BlobStatusFailed} {
		fake := &fakeDisperser{
			statusFn: func(context.Context, *disperser.BlobStatusRequest) (*disperser.BlobStatusReply, error) {
				return &disperser.BlobStatusReply{Status: s}, nil
			},
		}
		c := newTestClient(t, testConfig(), fake)
		key := encodedTestKey(t)

		first, err := c.Verify(context.Background(), key)
		require.NoError(t, err)
		second, err := c.Verify(context.Background(), key)
		require.NoError(t, err)
		assert.Equal(t, first, second, s.String())
	}
}

func TestVerify_MalformedKey(t *testing.T) {
	fake := &fakeDisperser{}
	c := newTestClient(t, testConfig(), fake)

	got, err := c.Verify(context.Background(), "not-a-key")
	require.ErrorIs(t, err, da.ErrMalformedReferenceKey)
	assert.Equal(t, da.StatusRejected, got)
	assert.Zero(t, fake.statusCalls.Load(), "no query for a malformed key")
}

func TestVerify_ClosedClient(t *testing.T) {
	c := newTestClient(t, testConfig(), &fakeDisperser{})
	require.NoError(t, c.Close())

	_, err := c.Verify(context.Background(), encodedTestKey(t))
	require.ErrorIs(t, err, da.ErrClientClosed)
}

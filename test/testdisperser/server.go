// Package testdisperser provides an in-memory 0G disperser for tests and local development.
package testdisperser

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"sync"
	"sync/atomic"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/evstack/zerog-da/da/zerog/disperser"
)

const (
	// DefaultMaxBlobSize mirrors the disperser's default blob limit (32MB).
	DefaultMaxBlobSize = 32 * 1024 * 1024
)

var _ disperser.DisperserServer = (*Server)(nil)

// request tracks one accepted blob through its lifecycle.
type request struct {
	data    []byte
	header  disperser.BlobHeader
	polls   int
	blobIdx uint32
}

// Server is an in-memory disperser. Every accepted blob reports PROCESSING for
// a configurable number of status queries, then CONFIRMED and optionally
// FINALIZED. Failures can be injected on DisperseBlob.
type Server struct {
	disperser.UnimplementedDisperserServer

	mu        sync.Mutex
	requests  map[string]*request
	byRoot    map[string]*request
	seq       uint64
	maxBlobSz uint64

	confirmAfter  int
	finalizeAfter int
	epoch         uint32
	quorumID      uint32

	failDisperse   atomic.Int64
	rejectDisperse atomic.Bool
	omitHeader     atomic.Bool

	disperseCalls atomic.Int64
	statusCalls   atomic.Int64
}

// Option configures a Server instance.
type Option func(*Server)

// WithMaxBlobSize sets the maximum blob size.
func WithMaxBlobSize(size uint64) Option {
	return func(s *Server) {
		s.maxBlobSz = size
	}
}

// WithConfirmAfter sets how many status queries report PROCESSING before a
// blob is confirmed.
func WithConfirmAfter(polls int) Option {
	return func(s *Server) {
		s.confirmAfter = polls
	}
}

// WithFinalizeAfter sets how many status queries after confirmation report
// CONFIRMED before the blob is finalized. Zero never finalizes.
func WithFinalizeAfter(polls int) Option {
	return func(s *Server) {
		s.finalizeAfter = polls
	}
}

// WithEpoch sets the epoch assigned to accepted blobs.
func WithEpoch(epoch uint32) Option {
	return func(s *Server) {
		s.epoch = epoch
	}
}

// WithQuorumID sets the quorum assigned to accepted blobs.
func WithQuorumID(id uint32) Option {
	return func(s *Server) {
		s.quorumID = id
	}
}

// New creates a new Server with the given options.
func New(opts ...Option) *Server {
	s := &Server{
		requests:  make(map[string]*request),
		byRoot:    make(map[string]*request),
		maxBlobSz: DefaultMaxBlobSize,
		epoch:     1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FailNextDisperse makes the next n DisperseBlob calls fail with Unavailable.
func (s *Server) FailNextDisperse(n int64) {
	s.failDisperse.Store(n)
}

// SetRejectDisperse makes DisperseBlob refuse every blob with InvalidArgument.
func (s *Server) SetRejectDisperse(reject bool) {
	s.rejectDisperse.Store(reject)
}

// SetOmitHeader drops the blob header from status replies.
func (s *Server) SetOmitHeader(omit bool) {
	s.omitHeader.Store(omit)
}

// DisperseCalls returns the number of DisperseBlob calls received.
func (s *Server) DisperseCalls() int64 { return s.disperseCalls.Load() }

// StatusCalls returns the number of GetBlobStatus calls received.
func (s *Server) StatusCalls() int64 { return s.statusCalls.Load() }

// DisperseBlob accepts a blob and assigns it a request id and header.
func (s *Server) DisperseBlob(_ context.Context, in *disperser.DisperseBlobRequest) (*disperser.DisperseBlobReply, error) {
	s.disperseCalls.Add(1)

	if s.failDisperse.Add(-1) >= 0 {
		return nil, status.Error(codes.Unavailable, "disperser temporarily unavailable")
	}
	if s.rejectDisperse.Load() {
		return nil, status.Error(codes.InvalidArgument, "blob rejected")
	}
	if len(in.Data) == 0 {
		return nil, status.Error(codes.InvalidArgument, "empty blob")
	}
	if uint64(len(in.Data)) > s.maxBlobSz {
		return nil, status.Errorf(codes.InvalidArgument, "blob size %d exceeds %d", len(in.Data), s.maxBlobSz)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	root := sha256.Sum256(in.Data)
	id := binary.BigEndian.AppendUint64(root[:8:8], s.seq)

	req := &request{
		data: append([]byte(nil), in.Data...),
		header: disperser.BlobHeader{
			DataRoot: root[:],
			Epoch:    s.epoch,
			QuorumID: s.quorumID,
		},
		blobIdx: uint32(s.seq),
	}
	s.requests[string(id)] = req
	s.byRoot[retrieveKey(root[:], s.epoch, s.quorumID)] = req

	return &disperser.DisperseBlobReply{Result: disperser.BlobStatusProcessing, RequestID: id}, nil
}

// GetBlobStatus advances the blob's lifecycle by one query and reports it.
func (s *Server) GetBlobStatus(_ context.Context, in *disperser.BlobStatusRequest) (*disperser.BlobStatusReply, error) {
	s.statusCalls.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[string(in.RequestID)]
	if !ok {
		return nil, status.Error(codes.NotFound, "unknown request id")
	}
	req.polls++

	st := disperser.BlobStatusProcessing
	switch {
	case s.finalizeAfter > 0 && req.polls > s.confirmAfter+s.finalizeAfter:
		st = disperser.BlobStatusFinalized
	case req.polls > s.confirmAfter:
		st = disperser.BlobStatusConfirmed
	}

	reply := &disperser.BlobStatusReply{Status: st}
	if st != disperser.BlobStatusProcessing && !s.omitHeader.Load() {
		header := req.header
		reply.Info = &disperser.BlobInfo{
			BlobHeader:            &header,
			BlobVerificationProof: &disperser.BlobVerificationProof{BatchID: req.header.Epoch, BlobIndex: req.blobIdx},
		}
	}
	return reply, nil
}

// RetrieveBlob returns the bytes of a confirmed blob.
func (s *Server) RetrieveBlob(_ context.Context, in *disperser.RetrieveBlobRequest) (*disperser.RetrieveBlobReply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.byRoot[retrieveKey(in.DataRoot, in.Epoch, in.QuorumID)]
	if !ok || req.polls <= s.confirmAfter {
		return nil, status.Error(codes.NotFound, "blob not found")
	}
	return &disperser.RetrieveBlobReply{Data: append([]byte(nil), req.data...)}, nil
}

func retrieveKey(root []byte, epoch, quorumID uint32) string {
	b := binary.BigEndian.AppendUint32(append([]byte(nil), root...), epoch)
	return string(binary.BigEndian.AppendUint32(b, quorumID))
}

package zerog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/evstack/zerog-da/da"
	"github.com/evstack/zerog-da/da/zerog/disperser"
)

// rejectionCodes are the gRPC codes with which a disperser refuses the
// request itself. Resending the same blob cannot succeed.
var rejectionCodes = map[codes.Code]struct{}{
	codes.InvalidArgument:    {},
	codes.FailedPrecondition: {},
	codes.PermissionDenied:   {},
	codes.Unauthenticated:    {},
	codes.Unimplemented:      {},
	codes.OutOfRange:         {},
}

// isRejection reports whether err is a service-level refusal rather than a
// transport failure.
func isRejection(err error) bool {
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	_, rejected := rejectionCodes[st.Code()]
	return rejected
}

// submitter sends blobs to the disperser, retrying transport failures with a
// fixed delay until the disperser accepts the blob or the context ends.
type submitter struct {
	gate    *admissionGate
	pool    *connPool
	logger  zerolog.Logger
	metrics *Metrics

	retryDelay     time.Duration
	requestTimeout time.Duration
	maxBlobSize    uint64
}

// submit returns the request id assigned by the disperser.
func (s *submitter) submit(ctx context.Context, data []byte) ([]byte, error) {
	if s.maxBlobSize > 0 && uint64(len(data)) > s.maxBlobSize {
		s.logger.Warn().
			Int("size", len(data)).
			Uint64("max", s.maxBlobSize).
			Msg("blob rejected: size over limit")
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", da.ErrBlobSizeOverLimit, len(data), s.maxBlobSize)
	}

	if err := s.gate.enter(ctx); err != nil {
		return nil, err
	}
	defer s.gate.leave()

	s.metrics.SubmissionsInFlight.Add(1)
	defer s.metrics.SubmissionsInFlight.Add(-1)

	// security params are negotiated by the disperser; none are requested here
	req := &disperser.DisperseBlobRequest{
		Data:           data,
		SecurityParams: []*disperser.SecurityParams{},
		TargetRowNum:   0,
	}

	for attempt := 1; ; attempt++ {
		h, err := s.pool.acquire(ctx)
		if err != nil {
			return nil, err
		}
		start := time.Now()
		reply, err := s.disperse(ctx, h, req)
		s.pool.release(h)
		s.metrics.SubmitAttempts.Add(1)

		if err == nil {
			if len(reply.RequestID) == 0 {
				return nil, fmt.Errorf("%w: disperser accepted blob without a request id", da.ErrProtocolInvariant)
			}
			s.logger.Debug().
				Int("attempts", attempt).
				Dur("elapsed", time.Since(start)).
				Hex("request_id", reply.RequestID).
				Str("result", reply.Result.String()).
				Msg("blob accepted by disperser")
			return reply.RequestID, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if isRejection(err) {
			s.metrics.SubmitRejections.Add(1)
			s.logger.Error().Err(err).Int("attempts", attempt).Msg("disperser rejected blob")
			return nil, fmt.Errorf("%w: %w", da.ErrSubmissionRejected, err)
		}

		s.metrics.SubmitRetries.Add(1)
		s.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("retry_in", s.retryDelay).
			Msg("failed to disperse blob, retrying")

		if err := waitForBackoffOrContext(ctx, s.retryDelay); err != nil {
			return nil, err
		}
	}
}

func (s *submitter) disperse(ctx context.Context, h disperser.DisperserClient, req *disperser.DisperseBlobRequest) (*disperser.DisperseBlobReply, error) {
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}
	reply, err := h.DisperseBlob(ctx, req)
	if err == nil && reply == nil {
		err = errors.New("empty disperse reply")
	}
	return reply, err
}

// waitForBackoffOrContext waits for the given backoff duration or until the context is done.
func waitForBackoffOrContext(ctx context.Context, backoff time.Duration) error {
	if backoff <= 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
	timer := time.NewTimer(backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
